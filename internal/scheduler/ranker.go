package scheduler

import (
	"cmp"
	"slices"
	"time"

	"github.com/sysu-ecnc-dev/group-scheduler/backend/internal/domain"
)

// Rank 在覆盖时间线上找出所有长度为 duration、人数不少于 policy.MinParticipants 的候选时段
//
// 排序规则：人数多的在前；人数相同时按 policy 的次要规则排序，最后按开始时间升序。
// Rank 字段是按人数计算的名次，人数相同的时段名次相同，全部返回给调用方选择。
// 找不到满足条件的时段时返回空切片而不是错误。
func Rank(segments []domain.CoverageSegment, duration time.Duration, policy domain.SlotPolicy) ([]domain.CandidateSlot, error) {
	if err := policy.Validate(); err != nil {
		return nil, err
	}
	length := duration.Milliseconds()
	if length <= 0 {
		return nil, domain.ErrInvalidPolicy
	}

	slots := make([]domain.CandidateSlot, 0)
	for _, run := range qualifyingRuns(segments, policy.MinParticipants) {
		runEnd := run[len(run)-1].Window.End
		if runEnd-run[0].Window.Start < length {
			continue
		}

		// 候选开始时间：这段连续区间的起点，以及区间内每个参与者集合发生变化的时刻
		for i, seg := range run {
			start := seg.Window.Start
			end := start + length
			if end > runEnd {
				break
			}

			participants := intersectParticipants(run[i:], end)
			if len(participants) < policy.MinParticipants {
				continue
			}

			slots = append(slots, domain.CandidateSlot{
				Window:       domain.TimeWindow{Start: start, End: end},
				Participants: participants,
				Score:        len(participants),
			})
		}
	}

	slices.SortStableFunc(slots, slotComparator(policy))

	for i := range slots {
		switch {
		case i == 0:
			slots[i].Rank = 1
		case slots[i].Score == slots[i-1].Score:
			slots[i].Rank = slots[i-1].Rank
		default:
			slots[i].Rank = slots[i-1].Rank + 1
		}
	}

	return slots, nil
}

// qualifyingRuns 把人数达标且首尾相接的时间段归为一组
func qualifyingRuns(segments []domain.CoverageSegment, minParticipants int) [][]domain.CoverageSegment {
	var runs [][]domain.CoverageSegment
	var current []domain.CoverageSegment

	for _, seg := range segments {
		qualified := seg.Count() >= minParticipants
		if qualified && (len(current) == 0 || current[len(current)-1].Window.End == seg.Window.Start) {
			current = append(current, seg)
			continue
		}

		if len(current) > 0 {
			runs = append(runs, current)
			current = nil
		}
		if qualified {
			current = []domain.CoverageSegment{seg}
		}
	}

	if len(current) > 0 {
		runs = append(runs, current)
	}

	return runs
}

// intersectParticipants 求从 segments[0] 开始、直到 end 之前的所有时间段的参与者交集
func intersectParticipants(segments []domain.CoverageSegment, end int64) []string {
	result := slices.Clone(segments[0].Participants)
	for _, seg := range segments[1:] {
		if seg.Window.Start >= end {
			break
		}
		result = slices.DeleteFunc(result, func(p string) bool {
			_, found := slices.BinarySearch(seg.Participants, p)
			return !found
		})
	}
	return result
}

func slotComparator(policy domain.SlotPolicy) func(a, b domain.CandidateSlot) int {
	reference := policy.Reference.UnixMilli()

	return func(a, b domain.CandidateSlot) int {
		if c := cmp.Compare(b.Score, a.Score); c != 0 {
			return c
		}

		switch {
		case policy.PreferEarliest:
		case policy.Less != nil:
			if policy.Less(a, b) {
				return -1
			}
			if policy.Less(b, a) {
				return 1
			}
		case !policy.Reference.IsZero():
			if c := cmp.Compare(distance(a.Window.Start, reference), distance(b.Window.Start, reference)); c != 0 {
				return c
			}
		}

		return cmp.Compare(a.Window.Start, b.Window.Start)
	}
}

func distance(a, b int64) int64 {
	if a > b {
		return a - b
	}
	return b - a
}
