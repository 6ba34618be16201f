package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/sysu-ecnc-dev/group-scheduler/backend/internal/domain"
	"github.com/sysu-ecnc-dev/group-scheduler/backend/internal/line"
	"golang.org/x/crypto/bcrypt"
)

const hostKeyHeader = "X-Host-Key"

type createdEvent struct {
	Event      *domain.Event `json:"event"`
	HostKey    string        `json:"hostKey"`
	InviteLink string        `json:"inviteLink"`
}

// createEvent 创建活动并生成主持人密钥，密钥只在这里以明文出现一次
func (h *Handler) createEvent(ctx context.Context, title, hostID, hostEmail string) (*createdEvent, error) {
	hostKey, err := gonanoid.New(h.config.Event.HostKeyLength)
	if err != nil {
		return nil, err
	}

	hostKeyHash, err := bcrypt.GenerateFromPassword([]byte(hostKey), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	event := &domain.Event{
		ID:           uuid.NewString(),
		Title:        title,
		HostID:       hostID,
		HostEmail:    hostEmail,
		HostKeyHash:  string(hostKeyHash),
		CreatedAt:    now,
		ExpiresAt:    now.AddDate(0, 0, h.config.Event.TTLDays),
		Participants: make(map[string]domain.AvailabilitySubmission),
	}
	if err := event.Validate(); err != nil {
		return nil, err
	}

	if err := h.repository.CreateEvent(ctx, event); err != nil {
		return nil, err
	}

	created := &createdEvent{
		Event:      event,
		HostKey:    hostKey,
		InviteLink: line.InviteLink(h.config.Line.LiffID, event.ID),
	}

	if hostEmail != "" {
		h.notifyContext(ctx, domain.NotificationMessage{
			Type: domain.NotificationEventCreated,
			To:   hostEmail,
			Data: domain.EventCreatedMailData{
				Title:      title,
				InviteLink: created.InviteLink,
				HostKey:    hostKey,
				ExpiresAt:  event.ExpiresAt.In(h.location).Format("2006-01-02 15:04"),
			},
		})
	}

	return created, nil
}

func (h *Handler) notify(r *http.Request, message domain.NotificationMessage) {
	h.notifyContext(r.Context(), message)
}

// notifyContext 发送失败只记录日志，不影响主流程
func (h *Handler) notifyContext(ctx context.Context, message domain.NotificationMessage) {
	if h.notifier == nil {
		return
	}
	if err := h.notifier.Publish(ctx, message); err != nil {
		slog.Warn("无法发送通知", "type", message.Type, "to", message.To, "error", err)
	}
}

func (h *Handler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Title     string `json:"title" validate:"required,max=100"`
		HostID    string `json:"hostID" validate:"required,max=128"`
		HostEmail string `json:"hostEmail" validate:"omitempty,email"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	created, err := h.createEvent(r.Context(), req.Title, req.HostID, req.HostEmail)
	if err != nil {
		h.domainError(w, r, err)
		return
	}

	h.successResponse(w, r, "成功创建活动", created)
}

func (h *Handler) GetEvent(w http.ResponseWriter, r *http.Request) {
	event := r.Context().Value(EventCtx).(*domain.Event)

	h.successResponse(w, r, "获取活动信息成功", event)
}

func (h *Handler) ListHostEvents(w http.ResponseWriter, r *http.Request) {
	hostID := chi.URLParam(r, "hostID")

	events, err := h.repository.ListEventsByHost(r.Context(), hostID)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取活动列表成功", events)
}

// DeleteEvent 只有持有主持人密钥的人才能删除活动
func (h *Handler) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	event := r.Context().Value(EventCtx).(*domain.Event)

	hostKey := r.Header.Get(hostKeyHeader)
	if hostKey == "" {
		h.failResponse(w, r, http.StatusUnauthorized, "缺少主持人密钥")
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(event.HostKeyHash), []byte(hostKey)); err != nil {
		switch {
		case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
			h.failResponse(w, r, http.StatusForbidden, "主持人密钥错误")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	if err := h.repository.DeleteEvent(r.Context(), event.ID); err != nil {
		h.domainError(w, r, err)
		return
	}

	h.successResponse(w, r, "成功删除活动", nil)
}
