package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/sysu-ecnc-dev/group-scheduler/backend/internal/domain"
)

// Coordinator 负责把参与者的新提交写入活动，不在调用之间持有任何锁，
// 并发安全完全依赖存储层针对单个参与者的条件更新
type Coordinator struct {
	store Store
	now   func() time.Time
}

func NewCoordinator(store Store, now func() time.Time) *Coordinator {
	if now == nil {
		now = time.Now
	}
	return &Coordinator{store: store, now: now}
}

type SubmitRequest struct {
	EventID       string
	ParticipantID string
	DisplayName   string
	Windows       []domain.TimeWindow
	// 为空时使用读取到的当前版本
	ExpectedVersion *int64
}

// Submit 规范化并写入一次提交
//
// ErrInvalidWindow、ErrEventExpired、ErrNotFound 是终态错误；ErrConcurrentModification 需要调用方自行重试，
// 这里不做任何自动重试。
func (c *Coordinator) Submit(ctx context.Context, req SubmitRequest) (*domain.AvailabilitySubmission, error) {
	// 先做校验，保证脏数据不会进入存储
	submission, err := NormalizeSubmission(req.EventID, req.ParticipantID, req.Windows)
	if err != nil {
		return nil, err
	}
	submission.DisplayName = req.DisplayName

	event, err := c.store.GetEvent(ctx, req.EventID)
	if err != nil {
		return nil, fmt.Errorf("get event %s: %w", req.EventID, err)
	}

	now := c.now()
	if event.IsExpired(now) {
		return nil, domain.ErrEventExpired
	}

	expectedVersion := int64(0)
	if prior, ok := event.Participants[req.ParticipantID]; ok {
		expectedVersion = prior.Version
	}
	if req.ExpectedVersion != nil {
		expectedVersion = *req.ExpectedVersion
	}

	submission.SubmittedAt = now
	if err := c.store.UpdateParticipantAvailability(ctx, req.EventID, req.ParticipantID, submission, expectedVersion); err != nil {
		return nil, fmt.Errorf("update availability of %s: %w", req.ParticipantID, err)
	}

	return submission, nil
}
