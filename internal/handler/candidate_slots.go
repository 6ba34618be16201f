package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/sysu-ecnc-dev/group-scheduler/backend/internal/domain"
	"github.com/sysu-ecnc-dev/group-scheduler/backend/internal/metrics"
)

const defaultSlotLimit = 20

type candidateSlotsQuery struct {
	Duration        int `validate:"required,min=1,max=10080"` // 分钟
	MinParticipants int `validate:"min=1"`
	PreferEarliest  bool
	Limit           int `validate:"min=0,max=500"` // 0 表示不限制
}

func (h *Handler) parseCandidateSlotsQuery(r *http.Request) (*candidateSlotsQuery, error) {
	values := r.URL.Query()
	q := &candidateSlotsQuery{MinParticipants: 1, Limit: defaultSlotLimit}

	var err error
	if v := values.Get("duration"); v != "" {
		if q.Duration, err = strconv.Atoi(v); err != nil {
			return nil, err
		}
	}
	if v := values.Get("minParticipants"); v != "" {
		if q.MinParticipants, err = strconv.Atoi(v); err != nil {
			return nil, err
		}
	}
	if v := values.Get("preferEarliest"); v != "" {
		if q.PreferEarliest, err = strconv.ParseBool(v); err != nil {
			return nil, err
		}
	}
	if v := values.Get("limit"); v != "" {
		if q.Limit, err = strconv.Atoi(v); err != nil {
			return nil, err
		}
	}

	if err := h.validate.Struct(q); err != nil {
		return nil, err
	}

	return q, nil
}

func (h *Handler) GetCandidateSlots(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "eventID")

	q, err := h.parseCandidateSlotsQuery(r)
	if err != nil {
		h.badRequest(w, r, err)
		return
	}

	start := time.Now()
	slots, err := h.planner.CandidateSlots(r.Context(), eventID, time.Duration(q.Duration)*time.Minute, domain.SlotPolicy{
		MinParticipants: q.MinParticipants,
		PreferEarliest:  q.PreferEarliest,
	})
	metrics.CandidateSlotCompute.Observe(time.Since(start).Seconds())
	if err != nil {
		h.domainError(w, r, err)
		return
	}
	metrics.CandidateSlotQueries.Inc()

	if q.Limit > 0 && len(slots) > q.Limit {
		slots = slots[:q.Limit]
	}

	h.successResponse(w, r, "获取候选时间成功", slots)
}

func (h *Handler) GetCoverage(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "eventID")

	segments, err := h.planner.Coverage(r.Context(), eventID)
	if err != nil {
		h.domainError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取时间分布成功", segments)
}
