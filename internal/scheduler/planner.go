package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/sysu-ecnc-dev/group-scheduler/backend/internal/domain"
)

// SlotCache 缓存计算好的候选时段，实现方需要保证 key 中包含所有提交的版本号
type SlotCache interface {
	Get(ctx context.Context, event *domain.Event, duration time.Duration, policy domain.SlotPolicy) ([]domain.CandidateSlot, bool)
	Set(ctx context.Context, event *domain.Event, duration time.Duration, policy domain.SlotPolicy, slots []domain.CandidateSlot)
}

// Planner 是给 bot 和前端用的查询入口，本身不做任何写操作
type Planner struct {
	store EventReader
	cache SlotCache
	now   func() time.Time
}

func NewPlanner(store EventReader, cache SlotCache, now func() time.Time) *Planner {
	if now == nil {
		now = time.Now
	}
	return &Planner{store: store, cache: cache, now: now}
}

func (p *Planner) loadEvent(ctx context.Context, eventID string) (*domain.Event, error) {
	event, err := p.store.GetEvent(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("get event %s: %w", eventID, err)
	}
	if event.IsExpired(p.now()) {
		return nil, domain.ErrEventExpired
	}
	return event, nil
}

func (p *Planner) Coverage(ctx context.Context, eventID string) ([]domain.CoverageSegment, error) {
	event, err := p.loadEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	return CoverageOf(event)
}

func (p *Planner) CandidateSlots(ctx context.Context, eventID string, duration time.Duration, policy domain.SlotPolicy) ([]domain.CandidateSlot, error) {
	event, err := p.loadEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}

	if policy.Reference.IsZero() {
		policy.Reference = event.CreatedAt
	}

	// 自定义比较函数无法作为缓存 key 的一部分
	cacheable := p.cache != nil && policy.Less == nil
	if cacheable {
		if slots, ok := p.cache.Get(ctx, event, duration, policy); ok {
			return slots, nil
		}
	}

	slots, err := ComputeCandidateSlots(event, duration, policy)
	if err != nil {
		return nil, err
	}

	if cacheable {
		p.cache.Set(ctx, event, duration, policy, slots)
	}

	return slots, nil
}

func CoverageOf(event *domain.Event) ([]domain.CoverageSegment, error) {
	participants, err := normalizeAll(event.Participants)
	if err != nil {
		return nil, err
	}
	return Merge(participants), nil
}

// ComputeCandidateSlots 是纯函数：规范化 -> 合并 -> 排序，不做任何 I/O
func ComputeCandidateSlots(event *domain.Event, duration time.Duration, policy domain.SlotPolicy) ([]domain.CandidateSlot, error) {
	segments, err := CoverageOf(event)
	if err != nil {
		return nil, err
	}
	return Rank(segments, duration, policy)
}
