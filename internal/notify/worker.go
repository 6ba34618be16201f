package notify

import (
	"context"
	"log/slog"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/wneessen/go-mail"
)

// Sender 是 *mail.Client 中发送邮件用到的部分
type Sender interface {
	DialAndSendWithContext(ctx context.Context, messages ...*mail.Msg) error
}

// Worker 消费队列中的通知并发送邮件
type Worker struct {
	mailer     *Mailer
	sender     Sender
	retryDelay time.Duration
}

func NewWorker(mailer *Mailer, sender Sender, retryDelay time.Duration) *Worker {
	return &Worker{mailer: mailer, sender: sender, retryDelay: retryDelay}
}

// Handle 处理一条消息：无法构建的消息直接丢弃，发送失败的消息等待 retryDelay 后重新入队
func (w *Worker) Handle(ctx context.Context, delivery amqp.Delivery) {
	slog.Info("收到消息", slog.String("message", string(delivery.Body)))

	m, err := w.mailer.Build(delivery.Body)
	if err != nil {
		slog.Error("无法构建邮件", slog.String("error", err.Error()))
		_ = delivery.Nack(false, false)
		return
	}

	if err := w.sender.DialAndSendWithContext(ctx, m); err != nil {
		slog.Error("邮件发送失败", slog.String("error", err.Error()), slog.Duration("retry_delay", w.retryDelay))
		// 邮件服务器不可用时，立即重新入队只会让同一条消息不停地重复投递
		select {
		case <-ctx.Done():
		case <-time.After(w.retryDelay):
		}
		_ = delivery.Nack(false, true)
		return
	}

	_ = delivery.Ack(false)
}
