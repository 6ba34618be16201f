package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/locales/zh"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	zh_translations "github.com/go-playground/validator/v10/translations/zh"
	"github.com/line/line-bot-sdk-go/v7/linebot"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sysu-ecnc-dev/group-scheduler/backend/internal/config"
	"github.com/sysu-ecnc-dev/group-scheduler/backend/internal/domain"
	"github.com/sysu-ecnc-dev/group-scheduler/backend/internal/repository"
	"github.com/sysu-ecnc-dev/group-scheduler/backend/internal/scheduler"
)

type Notifier interface {
	Publish(ctx context.Context, message domain.NotificationMessage) error
}

type LineBot interface {
	ParseRequest(r *http.Request) ([]*linebot.Event, error)
	Reply(ctx context.Context, replyToken string, messages ...linebot.SendingMessage) error
}

type Handler struct {
	validate    *validator.Validate
	config      *config.Config
	repository  *repository.Repository
	coordinator *scheduler.Coordinator
	planner     *scheduler.Planner
	translator  ut.Translator
	notifier    Notifier
	lineBot     LineBot
	location    *time.Location

	Mux *chi.Mux
}

// NewHandler 中 slotCache、notifier 都可以为 nil，此时分别跳过缓存和通知
func NewHandler(cfg *config.Config, repo *repository.Repository, slotCache scheduler.SlotCache, notifier Notifier, lineBot LineBot) (*Handler, error) {
	validate := validator.New(validator.WithRequiredStructEnabled())
	zh := zh.New()
	uni := ut.New(zh, zh)
	trans, _ := uni.GetTranslator("zh")
	if err := zh_translations.RegisterDefaultTranslations(validate, trans); err != nil {
		return nil, err
	}

	location, err := time.LoadLocation(cfg.Line.TimeZone)
	if err != nil {
		return nil, err
	}

	return &Handler{
		validate:    validate,
		config:      cfg,
		repository:  repo,
		coordinator: scheduler.NewCoordinator(repo, nil),
		planner:     scheduler.NewPlanner(repo, slotCache, nil),
		translator:  trans,
		notifier:    notifier,
		lineBot:     lineBot,
		location:    location,

		Mux: chi.NewRouter(),
	}, nil
}

func (h *Handler) RegisterRoutes() {
	h.Mux.Use(h.logger)
	h.Mux.Use(h.recoverer)
	h.Mux.Use(h.metrics)

	h.Mux.Handle("/metrics", promhttp.Handler())

	h.Mux.Post("/webhook/line", h.LineWebhook)

	h.Mux.Get("/hosts/{hostID}/events", h.ListHostEvents)

	h.Mux.Route("/events", func(r chi.Router) {
		r.Post("/", h.CreateEvent)
		r.Route("/{eventID}", func(r chi.Router) {
			// 这两个查询通过 planner 自行读取并检查活动，不需要 event 中间件
			r.Get("/coverage", h.GetCoverage)
			r.Get("/candidate-slots", h.GetCandidateSlots)

			r.Group(func(r chi.Router) {
				r.Use(h.event)
				r.Get("/", h.GetEvent)
				r.Delete("/", h.DeleteEvent)
				r.Post("/join", h.JoinEvent)
				r.Route("/my-availability", func(r chi.Router) {
					r.Use(h.auth)
					r.Put("/", h.SubmitAvailability)
					r.Get("/", h.GetMyAvailability)
				})
			})
		})
	})
}
