package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/line/line-bot-sdk-go/v7/linebot"
	"github.com/sysu-ecnc-dev/group-scheduler/backend/internal/domain"
	"github.com/sysu-ecnc-dev/group-scheduler/backend/internal/line"
)

const (
	resultSlotDuration = time.Hour
	resultSlotLimit    = 3
)

// LineWebhook 处理 LINE 推送的事件，单个事件失败只记录日志，LINE 不会因此重发
func (h *Handler) LineWebhook(w http.ResponseWriter, r *http.Request) {
	events, err := h.lineBot.ParseRequest(r)
	if err != nil {
		switch {
		case errors.Is(err, linebot.ErrInvalidSignature):
			h.failResponse(w, r, http.StatusBadRequest, "签名错误")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	// 事件之间互不影响，一个失败不会取消其他事件的处理
	var wg sync.WaitGroup
	for _, event := range events {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := h.handleLineEvent(r.Context(), event); err != nil {
				slog.Error("无法处理 LINE 事件", "type", event.Type, "error", err)
			}
		}()
	}
	wg.Wait()

	h.successResponse(w, r, "ok", nil)
}

func (h *Handler) handleLineEvent(ctx context.Context, event *linebot.Event) error {
	if event.Type != linebot.EventTypeMessage {
		return nil
	}

	message, ok := event.Message.(*linebot.TextMessage)
	if !ok {
		return nil
	}

	command := line.ParseCommand(message.Text)
	switch command.Type {
	case line.CommandCreateEvent:
		hostID := ""
		if event.Source != nil {
			hostID = event.Source.UserID
		}
		created, err := h.createEvent(ctx, command.Argument, hostID, "")
		if err != nil {
			return err
		}
		return h.lineBot.Reply(ctx, event.ReplyToken, line.NewInviteMessage(command.Argument, created.InviteLink))
	case line.CommandShowResult:
		slots, err := h.planner.CandidateSlots(ctx, command.Argument, resultSlotDuration, domain.SlotPolicy{
			MinParticipants: 1,
			PreferEarliest:  true,
		})
		if err != nil {
			var text string
			switch {
			case errors.Is(err, domain.ErrNotFound):
				text = "找不到這個活動"
			case errors.Is(err, domain.ErrEventExpired):
				text = "這個活動已經失效了"
			default:
				return err
			}
			return h.lineBot.Reply(ctx, event.ReplyToken, linebot.NewTextMessage(text))
		}
		return h.lineBot.Reply(ctx, event.ReplyToken, linebot.NewTextMessage(line.FormatCandidateSlots(slots, resultSlotLimit, h.location)))
	default:
		return nil
	}
}
