package seed

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/sysu-ecnc-dev/group-scheduler/backend/internal/domain"
	"github.com/sysu-ecnc-dev/group-scheduler/backend/internal/scheduler"
	"github.com/sysu-ecnc-dev/group-scheduler/backend/internal/utils"
	"golang.org/x/crypto/bcrypt"
)

// HostKey 是所有测试活动共用的主持人密钥
const HostKey = "seed-host-key"

const (
	seedHostID = "seed"
	seedTTL    = 30 * 24 * time.Hour
	// CSV 中的时间格式，按传入的时区解析
	csvTimeLayout = "2006-01-02 15:04"
)

type Store interface {
	scheduler.Store
	CreateEvent(ctx context.Context, event *domain.Event) error
}

func createEvent(ctx context.Context, store Store, title string) (*domain.Event, error) {
	hostKeyHash, err := bcrypt.GenerateFromPassword([]byte(HostKey), bcrypt.MinCost)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	event := &domain.Event{
		ID:           uuid.NewString(),
		Title:        title,
		HostID:       seedHostID,
		HostKeyHash:  string(hostKeyHash),
		CreatedAt:    now,
		ExpiresAt:    now.Add(seedTTL),
		Participants: make(map[string]domain.AvailabilitySubmission),
	}
	if err := store.CreateEvent(ctx, event); err != nil {
		return nil, err
	}

	return event, nil
}

// SeedRandomEvent 插入一个活动以及 participants 个参与者的随机提交
func SeedRandomEvent(ctx context.Context, store Store, participants int) (*domain.Event, error) {
	event, err := createEvent(ctx, store, utils.GenerateRandomEventTitle())
	if err != nil {
		return nil, fmt.Errorf("create event: %w", err)
	}

	coordinator := scheduler.NewCoordinator(store, nil)
	from := event.CreatedAt.Truncate(24*time.Hour).AddDate(0, 0, 1)

	for i := 0; i < participants; i++ {
		participantID, displayName := utils.GenerateRandomParticipant()
		_, err := coordinator.Submit(ctx, scheduler.SubmitRequest{
			EventID:       event.ID,
			ParticipantID: participantID,
			DisplayName:   displayName,
			Windows:       utils.GenerateRandomWindows(from, 7),
		})
		if err != nil {
			return nil, fmt.Errorf("submit availability of %s: %w", participantID, err)
		}
	}

	return event, nil
}

// ImportCSV 从 CSV 中导入真实的回复
//
// 第一行是表头，之后每一行是某个参与者的一个时间段：participant_id, display_name, start, end。
// 同一个参与者的多行会合并成一次提交。
func ImportCSV(ctx context.Context, store Store, r io.Reader, title string, loc *time.Location) (*domain.Event, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = 4

	// 读取表头
	if _, err := reader.Read(); err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	type participant struct {
		displayName string
		windows     []domain.TimeWindow
	}
	participants := make(map[string]*participant)
	order := make([]string, 0)

	for {
		row, err := reader.Read()
		if err != nil {
			if err == io.EOF {
				break
			}
			return nil, err
		}

		start, err := time.ParseInLocation(csvTimeLayout, row[2], loc)
		if err != nil {
			return nil, fmt.Errorf("parse start of %s: %w", row[0], err)
		}
		end, err := time.ParseInLocation(csvTimeLayout, row[3], loc)
		if err != nil {
			return nil, fmt.Errorf("parse end of %s: %w", row[0], err)
		}

		p, ok := participants[row[0]]
		if !ok {
			p = &participant{displayName: row[1]}
			participants[row[0]] = p
			order = append(order, row[0])
		}
		p.windows = append(p.windows, domain.NewTimeWindow(start, end))
	}

	event, err := createEvent(ctx, store, title)
	if err != nil {
		return nil, fmt.Errorf("create event: %w", err)
	}

	coordinator := scheduler.NewCoordinator(store, nil)
	for _, participantID := range order {
		p := participants[participantID]
		_, err := coordinator.Submit(ctx, scheduler.SubmitRequest{
			EventID:       event.ID,
			ParticipantID: participantID,
			DisplayName:   p.displayName,
			Windows:       p.windows,
		})
		if err != nil {
			// 单个参与者的数据有问题不影响其他人
			slog.Error("导入提交失败", "participant", participantID, "error", err)
			continue
		}
	}

	return event, nil
}
