package sweeper

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/sysu-ecnc-dev/group-scheduler/backend/internal/metrics"
)

type ExpiredEventDeleter interface {
	DeleteExpiredEvents(ctx context.Context) (int64, error)
}

// Run 每隔 interval 删除一次已失效的活动，直到 ctx 被取消
// 单次删除失败只记录日志，下一轮会重新尝试
func Run(ctx context.Context, deleter ExpiredEventDeleter, interval time.Duration) error {
	if interval <= 0 {
		return fmt.Errorf("sweep interval must be positive, got %s", interval)
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			sweep(ctx, deleter)
		}
	}
}

func sweep(ctx context.Context, deleter ExpiredEventDeleter) {
	deleted, err := deleter.DeleteExpiredEvents(ctx)
	if err != nil {
		slog.Error("无法删除已失效的活动", "error", err)
		return
	}
	if deleted > 0 {
		metrics.ExpiredEventsDeleted.Add(float64(deleted))
		slog.Info("已删除失效活动", "count", deleted)
	}
}
