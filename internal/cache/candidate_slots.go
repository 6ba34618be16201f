package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"hash/fnv"
	"log/slog"
	"slices"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sysu-ecnc-dev/group-scheduler/backend/internal/domain"
)

// CandidateSlots 把计算好的候选时段存进 redis
//
// key 里带着所有参与者提交的版本号指纹，任何一次新的提交都会换 key，所以不需要主动失效。
// redis 出错只记录日志，不影响查询结果。
type CandidateSlots struct {
	client    *redis.Client
	ttl       time.Duration
	opTimeout time.Duration
}

func NewCandidateSlots(client *redis.Client, ttl time.Duration, opTimeout time.Duration) *CandidateSlots {
	return &CandidateSlots{client: client, ttl: ttl, opTimeout: opTimeout}
}

func (c *CandidateSlots) Get(ctx context.Context, event *domain.Event, duration time.Duration, policy domain.SlotPolicy) ([]domain.CandidateSlot, bool) {
	ctx, cancel := context.WithTimeout(ctx, c.opTimeout)
	defer cancel()

	key := CandidateSlotsKey(event, duration, policy)
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			slog.Warn("读取候选时段缓存失败", "key", key, "error", err)
		}
		return nil, false
	}

	var slots []domain.CandidateSlot
	if err := json.Unmarshal(data, &slots); err != nil {
		slog.Warn("候选时段缓存数据损坏", "key", key, "error", err)
		return nil, false
	}

	return slots, true
}

func (c *CandidateSlots) Set(ctx context.Context, event *domain.Event, duration time.Duration, policy domain.SlotPolicy, slots []domain.CandidateSlot) {
	ctx, cancel := context.WithTimeout(ctx, c.opTimeout)
	defer cancel()

	data, err := json.Marshal(slots)
	if err != nil {
		slog.Warn("序列化候选时段失败", "error", err)
		return
	}

	key := CandidateSlotsKey(event, duration, policy)
	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		slog.Warn("写入候选时段缓存失败", "key", key, "error", err)
	}
}

// CandidateSlotsKey 由活动 ID、提交指纹、时长和排序策略组成
func CandidateSlotsKey(event *domain.Event, duration time.Duration, policy domain.SlotPolicy) string {
	return fmt.Sprintf("candidate_slots_%s_%s_%d_%d_%t_%d",
		event.ID,
		submissionFingerprint(event),
		duration.Milliseconds(),
		policy.MinParticipants,
		policy.PreferEarliest,
		policy.Reference.UnixMilli(),
	)
}

func submissionFingerprint(event *domain.Event) string {
	participantIDs := make([]string, 0, len(event.Participants))
	for participantID := range event.Participants {
		participantIDs = append(participantIDs, participantID)
	}
	slices.Sort(participantIDs)

	h := fnv.New64a()
	for _, participantID := range participantIDs {
		_, _ = h.Write([]byte(participantID))
		_, _ = h.Write([]byte{0})
		_, _ = h.Write([]byte(strconv.FormatInt(event.Participants[participantID].Version, 10)))
		_, _ = h.Write([]byte{0})
	}

	return strconv.FormatUint(h.Sum64(), 16)
}
