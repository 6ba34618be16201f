package domain

import "time"

// CoverageSegment 是一段参与者集合保持不变的时间段，Participants 已排好序
type CoverageSegment struct {
	Window       TimeWindow `json:"window"`
	Participants []string   `json:"participants"`
}

func (s CoverageSegment) Count() int {
	return len(s.Participants)
}

type CandidateSlot struct {
	Window       TimeWindow `json:"window"`
	Participants []string   `json:"participants"`
	Score        int        `json:"score"`
	Rank         int        `json:"rank"`
}

// SlotPolicy 决定哪些时段能入选以及如何排序
// PreferEarliest 为 false 时，优先使用 Less；Less 为空则按与 Reference 的距离排序
type SlotPolicy struct {
	MinParticipants int                           `json:"minParticipants"`
	PreferEarliest  bool                          `json:"preferEarliest"`
	Reference       time.Time                     `json:"-"`
	Less            func(a, b CandidateSlot) bool `json:"-"`
}

func (p SlotPolicy) Validate() error {
	if p.MinParticipants < 1 {
		return ErrInvalidPolicy
	}
	return nil
}
