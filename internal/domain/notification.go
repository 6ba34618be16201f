package domain

const (
	NotificationEventCreated          = "event_created"
	NotificationAvailabilitySubmitted = "availability_submitted"
)

type NotificationMessage struct {
	Type string `json:"type"`
	To   string `json:"to"`
	Data any    `json:"data"`
}

type EventCreatedMailData struct {
	Title      string `json:"title"`
	InviteLink string `json:"inviteLink"`
	HostKey    string `json:"hostKey"`
	ExpiresAt  string `json:"expiresAt"`
}

type AvailabilitySubmittedMailData struct {
	Title         string `json:"title"`
	ParticipantID string `json:"participantID"`
	DisplayName   string `json:"displayName"`
	WindowCount   int    `json:"windowCount"`
}
