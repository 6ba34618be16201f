package notify

import (
	"encoding/json"
	"fmt"
	"html/template"
	"path/filepath"

	"github.com/sysu-ecnc-dev/group-scheduler/backend/internal/domain"
	"github.com/wneessen/go-mail"
)

type mailKind struct {
	template string
	subject  string
	// 把队列中的 data 解码成模板需要的结构体
	decode func(json.RawMessage) (any, error)
}

func decodeAs[T any](raw json.RawMessage) (any, error) {
	var data T
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, err
	}
	return data, nil
}

var mailKinds = map[string]mailKind{
	domain.NotificationEventCreated: {
		template: "event_created_email.html",
		subject:  "揪團排時間 - 活動已建立",
		decode:   decodeAs[domain.EventCreatedMailData],
	},
	domain.NotificationAvailabilitySubmitted: {
		template: "availability_submitted_email.html",
		subject:  "揪團排時間 - 有人填寫了時間",
		decode:   decodeAs[domain.AvailabilitySubmittedMailData],
	},
}

// Mailer 把队列中的通知渲染成邮件，模板在启动时一次性加载
type Mailer struct {
	from      string
	templates map[string]*template.Template
}

func NewMailer(from, templateDir string) (*Mailer, error) {
	templates := make(map[string]*template.Template, len(mailKinds))
	for kind, k := range mailKinds {
		tmpl, err := template.ParseFiles(filepath.Join(templateDir, k.template))
		if err != nil {
			return nil, fmt.Errorf("parse template of %s: %w", kind, err)
		}
		templates[kind] = tmpl
	}
	return &Mailer{from: from, templates: templates}, nil
}

// Build 解码队列消息并生成邮件，返回的错误都不值得重试
func (m *Mailer) Build(body []byte) (*mail.Msg, error) {
	var message struct {
		Type string          `json:"type"`
		To   string          `json:"to"`
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(body, &message); err != nil {
		return nil, err
	}

	kind, ok := mailKinds[message.Type]
	if !ok {
		return nil, fmt.Errorf("unsupported notification type %q", message.Type)
	}

	data, err := kind.decode(message.Data)
	if err != nil {
		return nil, err
	}

	msg := mail.NewMsg()
	if err := msg.From(m.from); err != nil {
		return nil, err
	}
	if err := msg.To(message.To); err != nil {
		return nil, err
	}
	if err := msg.SetBodyHTMLTemplate(m.templates[message.Type], data); err != nil {
		return nil, err
	}
	msg.Subject(kind.subject)

	return msg, nil
}
