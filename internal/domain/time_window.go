package domain

import "time"

// TimeWindow 是一个左闭右开区间 [Start, End)，时间统一用 Unix 毫秒表示，不涉及时区
type TimeWindow struct {
	Start int64 `json:"start"`
	End   int64 `json:"end"`
}

func NewTimeWindow(start, end time.Time) TimeWindow {
	return TimeWindow{Start: start.UnixMilli(), End: end.UnixMilli()}
}

func (w TimeWindow) Duration() time.Duration {
	return time.Duration(w.End-w.Start) * time.Millisecond
}

func (w TimeWindow) Contains(instant int64) bool {
	return w.Start <= instant && instant < w.End
}

func (w TimeWindow) StartTime() time.Time {
	return time.UnixMilli(w.Start).UTC()
}

func (w TimeWindow) EndTime() time.Time {
	return time.UnixMilli(w.End).UTC()
}
