package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/sysu-ecnc-dev/group-scheduler/backend/internal/domain"
	"github.com/sysu-ecnc-dev/group-scheduler/backend/internal/metrics"
	"github.com/sysu-ecnc-dev/group-scheduler/backend/internal/scheduler"
)

const tokenCookieName = "__group_scheduler_token"

type ParticipantClaims struct {
	DisplayName string `json:"displayName"`
	jwt.RegisteredClaims
}

// JoinEvent 为参与者签发 token，这里不验证身份，只是把之后的请求绑定到前端声明的参与者上
func (h *Handler) JoinEvent(w http.ResponseWriter, r *http.Request) {
	event := r.Context().Value(EventCtx).(*domain.Event)

	var req struct {
		ParticipantID string `json:"participantID" validate:"required,max=128"`
		DisplayName   string `json:"displayName" validate:"max=64"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	// token 不会比活动活得更久
	expiration := time.Now().Add(time.Duration(h.config.JWT.Expiration) * time.Hour)
	if event.ExpiresAt.Before(expiration) {
		expiration = event.ExpiresAt
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, ParticipantClaims{
		DisplayName: req.DisplayName,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiration),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			NotBefore: jwt.NewNumericDate(time.Now()),
			Subject:   req.ParticipantID,
			Audience:  jwt.ClaimStrings{event.ID},
		},
	})
	ss, err := token.SignedString([]byte(h.config.JWT.Secret))
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	cookie := &http.Cookie{
		Name:     tokenCookieName,
		Value:    ss,
		Expires:  expiration,
		Path:     "/events/" + event.ID,
		HttpOnly: true,
		Secure:   false,
	}

	if h.config.Environment == "production" {
		cookie.Secure = true
		cookie.SameSite = http.SameSiteNoneMode // LIFF 页面嵌在 LINE 的 webview 里
	}

	http.SetCookie(w, cookie)

	h.successResponse(w, r, "加入活动成功", map[string]string{"token": ss})
}

func (h *Handler) SubmitAvailability(w http.ResponseWriter, r *http.Request) {
	event := r.Context().Value(EventCtx).(*domain.Event)
	participant := r.Context().Value(ParticipantCtx).(*Participant)

	var req struct {
		Windows []struct {
			Start time.Time `json:"start" validate:"required"`
			End   time.Time `json:"end" validate:"required"`
		} `json:"windows" validate:"required,max=200,dive"`
		ExpectedVersion *int64 `json:"expectedVersion" validate:"omitempty,min=0"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	windows := make([]domain.TimeWindow, len(req.Windows))
	for i, window := range req.Windows {
		windows[i] = domain.NewTimeWindow(window.Start, window.End)
	}

	submission, err := h.coordinator.Submit(r.Context(), scheduler.SubmitRequest{
		EventID:         event.ID,
		ParticipantID:   participant.ID,
		DisplayName:     participant.DisplayName,
		Windows:         windows,
		ExpectedVersion: req.ExpectedVersion,
	})
	metrics.Submissions.WithLabelValues(submissionOutcome(err)).Inc()
	if err != nil {
		h.domainError(w, r, err)
		return
	}

	if event.HostEmail != "" {
		h.notify(r, domain.NotificationMessage{
			Type: domain.NotificationAvailabilitySubmitted,
			To:   event.HostEmail,
			Data: domain.AvailabilitySubmittedMailData{
				Title:         event.Title,
				ParticipantID: participant.ID,
				DisplayName:   participant.DisplayName,
				WindowCount:   len(submission.Windows),
			},
		})
	}

	h.successResponse(w, r, "成功提交空闲时间", submission)
}

func (h *Handler) GetMyAvailability(w http.ResponseWriter, r *http.Request) {
	event := r.Context().Value(EventCtx).(*domain.Event)
	participant := r.Context().Value(ParticipantCtx).(*Participant)

	submission, err := h.repository.GetParticipantAvailability(r.Context(), event.ID, participant.ID)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNotFound):
			h.successResponse(w, r, "你还没有提交过空闲时间", nil)
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "获取空闲时间提交成功", submission)
}

func submissionOutcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, domain.ErrInvalidWindow):
		return "invalid_window"
	case errors.Is(err, domain.ErrEventExpired):
		return "event_expired"
	case errors.Is(err, domain.ErrConcurrentModification):
		return "conflict"
	case errors.Is(err, domain.ErrNotFound):
		return "not_found"
	default:
		return "error"
	}
}
