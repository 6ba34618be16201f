package domain

import "time"

// AvailabilitySubmission 是某个参与者对某个活动的最新一次提交
// Windows 为空表示“目前没有空闲时间”，和“还没提交过”（Event.Participants 中不存在该 key）是两回事
type AvailabilitySubmission struct {
	EventID       string       `json:"eventID"`
	ParticipantID string       `json:"participantID"`
	DisplayName   string       `json:"displayName"`
	Windows       []TimeWindow `json:"windows"`
	SubmittedAt   time.Time    `json:"submittedAt"`
	Version       int64        `json:"version"`
}
