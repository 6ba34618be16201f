package handler

type ContextKey string

var (
	EventCtx       ContextKey = "event"
	ParticipantCtx ContextKey = "participant"
)

// Participant 是通过 token 识别出的参与者
type Participant struct {
	ID          string
	DisplayName string
}
