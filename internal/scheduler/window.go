package scheduler

import (
	"cmp"
	"slices"

	"github.com/sysu-ecnc-dev/group-scheduler/backend/internal/domain"
)

// Intersect 返回 a 和 b 的重叠部分，不相交或者首尾相接时 ok 为 false
func Intersect(a, b domain.TimeWindow) (domain.TimeWindow, bool) {
	start := max(a.Start, b.Start)
	end := min(a.End, b.End)
	if start >= end {
		return domain.TimeWindow{}, false
	}
	return domain.TimeWindow{Start: start, End: end}, true
}

// Normalize 按开始时间排序，并把重叠或首尾相接的区间合并成一个
// 只要有一个区间的 start >= end 就整体失败，不会跳过
func Normalize(windows []domain.TimeWindow) ([]domain.TimeWindow, error) {
	for i, w := range windows {
		if w.Start >= w.End {
			return nil, &domain.WindowError{Index: i, Window: w}
		}
	}

	sorted := slices.Clone(windows)
	slices.SortFunc(sorted, func(a, b domain.TimeWindow) int {
		if c := cmp.Compare(a.Start, b.Start); c != 0 {
			return c
		}
		return cmp.Compare(a.End, b.End)
	})

	merged := make([]domain.TimeWindow, 0, len(sorted))
	for _, w := range sorted {
		if n := len(merged); n > 0 && w.Start <= merged[n-1].End {
			merged[n-1].End = max(merged[n-1].End, w.End)
			continue
		}
		merged = append(merged, w)
	}

	return merged, nil
}
