package scheduler

import (
	"fmt"

	"github.com/sysu-ecnc-dev/group-scheduler/backend/internal/domain"
)

// NormalizeSubmission 把某个参与者的原始时间段整理成规范的提交
// 对已经规范化的提交再做一次结果不变
func NormalizeSubmission(eventID, participantID string, raw []domain.TimeWindow) (*domain.AvailabilitySubmission, error) {
	windows, err := Normalize(raw)
	if err != nil {
		return nil, fmt.Errorf("participant %s: %w", participantID, err)
	}

	return &domain.AvailabilitySubmission{
		EventID:       eventID,
		ParticipantID: participantID,
		Windows:       windows,
	}, nil
}

// normalizeAll 在计算前重新规范化存储层给出的所有提交，防止脏数据进入覆盖计算
func normalizeAll(participants map[string]domain.AvailabilitySubmission) (map[string]domain.AvailabilitySubmission, error) {
	normalized := make(map[string]domain.AvailabilitySubmission, len(participants))
	for participantID, submission := range participants {
		windows, err := Normalize(submission.Windows)
		if err != nil {
			return nil, fmt.Errorf("participant %s: %w", participantID, err)
		}
		submission.Windows = windows
		normalized[participantID] = submission
	}
	return normalized, nil
}
