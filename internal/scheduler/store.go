package scheduler

import (
	"context"

	"github.com/sysu-ecnc-dev/group-scheduler/backend/internal/domain"
)

// EventReader 读取活动及其所有参与者的提交，活动不存在时返回 domain.ErrNotFound
type EventReader interface {
	GetEvent(ctx context.Context, eventID string) (*domain.Event, error)
}

// Store 是存储层需要提供的全部能力
//
// UpdateParticipantAvailability 只能修改该参与者自己的那一项，并且只有当存储中的版本号等于
// expectedVersion 时才会写入（0 表示该参与者此前还没有提交）。成功后把新的版本号写回 submission.Version。
// 版本不一致时返回 domain.ErrConcurrentModification，活动已失效时返回 domain.ErrEventExpired。
type Store interface {
	EventReader
	UpdateParticipantAvailability(ctx context.Context, eventID, participantID string, submission *domain.AvailabilitySubmission, expectedVersion int64) error
}
