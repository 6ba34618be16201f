package line

import (
	"context"
	"net/http"

	"github.com/line/line-bot-sdk-go/v7/linebot"
)

// Bot 包装 LINE Messaging API 客户端，只暴露 webhook 用到的两个操作
type Bot struct {
	client *linebot.Client
}

func NewBot(channelSecret, channelToken string) (*Bot, error) {
	client, err := linebot.New(channelSecret, channelToken)
	if err != nil {
		return nil, err
	}
	return &Bot{client: client}, nil
}

// ParseRequest 校验 X-Line-Signature 并解析事件，签名不对时返回 linebot.ErrInvalidSignature
func (b *Bot) ParseRequest(r *http.Request) ([]*linebot.Event, error) {
	return b.client.ParseRequest(r)
}

func (b *Bot) Reply(ctx context.Context, replyToken string, messages ...linebot.SendingMessage) error {
	_, err := b.client.ReplyMessage(replyToken, messages...).WithContext(ctx).Do()
	return err
}
