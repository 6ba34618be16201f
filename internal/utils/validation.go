package utils

import (
	"fmt"
	"slices"
	"time"

	"github.com/sysu-ecnc-dev/group-scheduler/backend/internal/domain"
)

// ValidateCoverageWithSubmissions 检查覆盖时间线是否和提交记录一致
//
// 时间线必须首尾相连且参与者集合有序，任意时刻在某个时间段中的参与者都必须在那一刻确实有空，反之亦然。
// 提交记录应当已经规范化。
func ValidateCoverageWithSubmissions(segments []domain.CoverageSegment, submissions map[string]domain.AvailabilitySubmission) error {
	for i, segment := range segments {
		if segment.Window.Start >= segment.Window.End {
			return fmt.Errorf("时间段 %d 的结束时间不晚于开始时间", i)
		}
		if i > 0 && segments[i-1].Window.End != segment.Window.Start {
			return fmt.Errorf("时间段 %d 和时间段 %d 之间不连续", i-1, i)
		}
		if !slices.IsSorted(segment.Participants) {
			return fmt.Errorf("时间段 %d 的参与者没有排序", i)
		}
		if i > 0 && slices.Equal(segments[i-1].Participants, segment.Participants) {
			return fmt.Errorf("时间段 %d 和时间段 %d 的参与者相同，应当合并", i-1, i)
		}

		// 时间段内参与者不变，所以只需要检查起点
		for participantID, submission := range submissions {
			available := slices.ContainsFunc(submission.Windows, func(w domain.TimeWindow) bool {
				return w.Contains(segment.Window.Start)
			})
			if available != slices.Contains(segment.Participants, participantID) {
				return fmt.Errorf("时间段 %d 中参与者 %s 的状态与提交记录不符", i, participantID)
			}
		}
	}

	return nil
}

// ValidateCandidateSlots 检查候选时段的长度、人数和排序
func ValidateCandidateSlots(slots []domain.CandidateSlot, duration time.Duration, policy domain.SlotPolicy) error {
	for i, slot := range slots {
		if slot.Window.Duration() != duration {
			return fmt.Errorf("候选时段 %d 的长度不等于 %s", i, duration)
		}
		if slot.Score != len(slot.Participants) {
			return fmt.Errorf("候选时段 %d 的分数和人数不一致", i)
		}
		if slot.Score < policy.MinParticipants {
			return fmt.Errorf("候选时段 %d 的人数少于 %d", i, policy.MinParticipants)
		}
		if i == 0 {
			continue
		}

		prev := slots[i-1]
		switch {
		case prev.Score < slot.Score:
			return fmt.Errorf("候选时段 %d 的人数比前一个多", i)
		case prev.Score == slot.Score && prev.Rank != slot.Rank:
			return fmt.Errorf("候选时段 %d 和前一个人数相同但名次不同", i)
		case prev.Score > slot.Score && prev.Rank >= slot.Rank:
			return fmt.Errorf("候选时段 %d 的名次没有递增", i)
		case policy.PreferEarliest && prev.Score == slot.Score && prev.Window.Start > slot.Window.Start:
			return fmt.Errorf("候选时段 %d 比前一个更早", i)
		}
	}

	return nil
}
