package scheduler

import (
	"cmp"
	"maps"
	"slices"
	"strings"

	"github.com/sysu-ecnc-dev/group-scheduler/backend/internal/domain"
)

type boundary struct {
	at          int64
	participant string
	isStart     bool
}

// Merge 用扫描线把所有参与者的时间段合并成一条覆盖时间线
//
// 输入中的每个提交都应当已经规范化。没有提交过的参与者不在 map 中，因此不会拉低任何时段的人数。
// 返回的时间段首尾相连、互不重叠，从最早的开始时间一直覆盖到最晚的结束时间，
// 中间没有人有空的部分也会作为参与者为空的时间段输出。
func Merge(submissions map[string]domain.AvailabilitySubmission) []domain.CoverageSegment {
	boundaries := make([]boundary, 0)
	for participantID, submission := range submissions {
		for _, w := range submission.Windows {
			boundaries = append(boundaries,
				boundary{at: w.Start, participant: participantID, isStart: true},
				boundary{at: w.End, participant: participantID, isStart: false},
			)
		}
	}

	segments := make([]domain.CoverageSegment, 0)
	if len(boundaries) == 0 {
		return segments
	}

	// 同一时刻先处理结束再处理开始：区间是左闭右开的，结束的人在这一刻已经没空了
	slices.SortFunc(boundaries, func(a, b boundary) int {
		if c := cmp.Compare(a.at, b.at); c != 0 {
			return c
		}
		if a.isStart != b.isStart {
			if !a.isStart {
				return -1
			}
			return 1
		}
		return strings.Compare(a.participant, b.participant)
	})

	// 用计数而不是布尔值，即使同一个人的区间有重叠也不会提前被移除
	active := make(map[string]int)
	prev := boundaries[0].at

	for i := 0; i < len(boundaries); {
		at := boundaries[i].at
		if at > prev {
			segments = appendSegment(segments, domain.TimeWindow{Start: prev, End: at}, active)
		}

		for ; i < len(boundaries) && boundaries[i].at == at; i++ {
			b := boundaries[i]
			if b.isStart {
				active[b.participant]++
				continue
			}
			active[b.participant]--
			if active[b.participant] <= 0 {
				delete(active, b.participant)
			}
		}

		prev = at
	}

	return segments
}

func appendSegment(segments []domain.CoverageSegment, window domain.TimeWindow, active map[string]int) []domain.CoverageSegment {
	participants := slices.Sorted(maps.Keys(active))
	if participants == nil {
		participants = []string{}
	}

	if n := len(segments); n > 0 && segments[n-1].Window.End == window.Start && slices.Equal(segments[n-1].Participants, participants) {
		segments[n-1].Window.End = window.End
		return segments
	}

	return append(segments, domain.CoverageSegment{Window: window, Participants: participants})
}

// ParticipantsAt 返回某一时刻有空的参与者，该时刻不在时间线内时返回 nil
func ParticipantsAt(segments []domain.CoverageSegment, instant int64) []string {
	i, found := slices.BinarySearchFunc(segments, instant, func(s domain.CoverageSegment, t int64) int {
		switch {
		case s.Window.End <= t:
			return -1
		case s.Window.Start > t:
			return 1
		default:
			return 0
		}
	})
	if !found {
		return nil
	}
	return segments[i].Participants
}
