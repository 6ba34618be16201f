package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/sysu-ecnc-dev/group-scheduler/backend/internal/domain"
)

func (h *Handler) logInternalServerError(r *http.Request, err error) {
	slog.Error("服务器内部错误", "method", r.Method, "path", r.URL.Path, "error", err)
}

func (h *Handler) readJSON(r *http.Request, v any) error {
	return json.NewDecoder(r.Body).Decode(v)
}

func (h *Handler) writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logInternalServerError(r, err)
		http.Error(w, "服务器内部错误", http.StatusInternalServerError)
	}
}

type Response struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    any    `json:"data"`
}

func (h *Handler) failResponse(w http.ResponseWriter, r *http.Request, status int, msg string) {
	h.writeJSON(w, r, status, Response{
		Success: false,
		Message: msg,
		Data:    nil,
	})
}

func (h *Handler) badRequest(w http.ResponseWriter, r *http.Request, err error) {
	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		h.failResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	h.failResponse(w, r, http.StatusBadRequest, validationErrors[0].Translate(h.translator))
}

// domainError 把核心返回的错误映射成响应，调用方可以根据状态码判断是否需要重试
func (h *Handler) domainError(w http.ResponseWriter, r *http.Request, err error) {
	var windowErr *domain.WindowError
	switch {
	case errors.As(err, &windowErr):
		h.failResponse(w, r, http.StatusBadRequest, fmt.Sprintf("第 %d 个时间段的结束时间必须晚于开始时间", windowErr.Index+1))
	case errors.Is(err, domain.ErrInvalidWindow):
		h.failResponse(w, r, http.StatusBadRequest, "时间段不合法")
	case errors.Is(err, domain.ErrInvalidPolicy):
		h.failResponse(w, r, http.StatusBadRequest, "查询参数不合法")
	case errors.Is(err, domain.ErrInvalidEvent):
		h.failResponse(w, r, http.StatusBadRequest, "活动信息不合法")
	case errors.Is(err, domain.ErrNotFound):
		h.failResponse(w, r, http.StatusNotFound, "活动不存在")
	case errors.Is(err, domain.ErrEventExpired):
		h.failResponse(w, r, http.StatusGone, "活动已失效")
	case errors.Is(err, domain.ErrConcurrentModification):
		h.failResponse(w, r, http.StatusConflict, "提交冲突，请重试")
	default:
		h.internalServerError(w, r, err)
	}
}

func (h *Handler) internalServerError(w http.ResponseWriter, r *http.Request, err error) {
	h.logInternalServerError(r, err)
	h.writeJSON(w, r, http.StatusInternalServerError, Response{
		Success: false,
		Message: "服务器内部错误",
		Data:    nil,
	})
}

func (h *Handler) successResponse(w http.ResponseWriter, r *http.Request, msg string, data any) {
	h.writeJSON(w, r, http.StatusOK, Response{
		Success: true,
		Message: msg,
		Data:    data,
	})
}
