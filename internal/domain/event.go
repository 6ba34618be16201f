package domain

import "time"

type Event struct {
	ID           string                            `json:"id"`
	Title        string                            `json:"title"`
	HostID       string                            `json:"hostID"`
	HostEmail    string                            `json:"hostEmail,omitempty"`
	HostKeyHash  string                            `json:"-"`
	CreatedAt    time.Time                         `json:"createdAt"`
	ExpiresAt    time.Time                         `json:"expiresAt"`
	Participants map[string]AvailabilitySubmission `json:"participants"`
}

// IsExpired 判断活动在 now 时刻是否已经失效，到达失效时间的那一刻即视为失效
func (e *Event) IsExpired(now time.Time) bool {
	return !now.Before(e.ExpiresAt)
}

func (e *Event) Validate() error {
	if e.Title == "" {
		return ErrInvalidEvent
	}
	if !e.ExpiresAt.After(e.CreatedAt) {
		return ErrInvalidEvent
	}
	return nil
}
