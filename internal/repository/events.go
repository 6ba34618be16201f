package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/sysu-ecnc-dev/group-scheduler/backend/internal/domain"
)

func (r *Repository) CreateEvent(ctx context.Context, event *domain.Event) error {
	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	query := `
		INSERT INTO events (id, title, host_id, host_email, host_key_hash, created_at, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	params := []any{
		event.ID,
		event.Title,
		event.HostID,
		event.HostEmail,
		event.HostKeyHash,
		event.CreatedAt,
		event.ExpiresAt,
	}
	if _, err := r.dbpool.ExecContext(ctx, query, params...); err != nil {
		return err
	}

	return nil
}

// GetEvent 返回活动以及所有参与者的最新提交，是否过期由调用方判断
func (r *Repository) GetEvent(ctx context.Context, id string) (*domain.Event, error) {
	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	query := `
		SELECT title, host_id, host_email, host_key_hash, created_at, expires_at
		FROM events
		WHERE id = $1
	`

	event := &domain.Event{
		ID:           id,
		Participants: make(map[string]domain.AvailabilitySubmission),
	}
	dst := []any{
		&event.Title,
		&event.HostID,
		&event.HostEmail,
		&event.HostKeyHash,
		&event.CreatedAt,
		&event.ExpiresAt,
	}
	if err := r.dbpool.QueryRowContext(ctx, query, id).Scan(dst...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}

	query = `
		SELECT
			pa.participant_id,
			pa.display_name,
			pa.submitted_at,
			pa.version,
			aw.start_ms,
			aw.end_ms
		FROM participant_availabilities pa
		LEFT JOIN availability_windows aw
			ON aw.event_id = pa.event_id AND aw.participant_id = pa.participant_id
		WHERE pa.event_id = $1
		ORDER BY pa.participant_id, aw.start_ms
	`

	rows, err := r.dbpool.QueryContext(ctx, query, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var row struct {
			participantID string
			displayName   string
			submittedAt   time.Time
			version       int64
			start         sql.NullInt64
			end           sql.NullInt64
		}

		dst := []any{
			&row.participantID,
			&row.displayName,
			&row.submittedAt,
			&row.version,
			&row.start,
			&row.end,
		}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}

		submission, exists := event.Participants[row.participantID]
		if !exists {
			submission = domain.AvailabilitySubmission{
				EventID:       id,
				ParticipantID: row.participantID,
				DisplayName:   row.displayName,
				SubmittedAt:   row.submittedAt,
				Version:       row.version,
				Windows:       make([]domain.TimeWindow, 0),
			}
		}

		// 没有任何时间段的提交表示“目前没空”，LEFT JOIN 会得到一行 NULL
		if row.start.Valid && row.end.Valid {
			submission.Windows = append(submission.Windows, domain.TimeWindow{Start: row.start.Int64, End: row.end.Int64})
		}

		event.Participants[row.participantID] = submission
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return event, nil
}

func (r *Repository) ListEventsByHost(ctx context.Context, hostID string) ([]*domain.Event, error) {
	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	query := `
		SELECT id, title, host_email, created_at, expires_at
		FROM events
		WHERE host_id = $1 AND expires_at > NOW()
		ORDER BY created_at DESC
	`

	rows, err := r.dbpool.QueryContext(ctx, query, hostID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	events := []*domain.Event{}
	for rows.Next() {
		event := &domain.Event{HostID: hostID}
		dst := []any{
			&event.ID,
			&event.Title,
			&event.HostEmail,
			&event.CreatedAt,
			&event.ExpiresAt,
		}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}
		events = append(events, event)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return events, nil
}

func (r *Repository) DeleteEvent(ctx context.Context, id string) error {
	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	// 参与者的提交和时间段通过外键级联删除
	result, err := r.dbpool.ExecContext(ctx, `DELETE FROM events WHERE id = $1`, id)
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return domain.ErrNotFound
	}

	return nil
}

// DeleteExpiredEvents 删除所有已经失效的活动，返回删除的数量
func (r *Repository) DeleteExpiredEvents(ctx context.Context) (int64, error) {
	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	result, err := r.dbpool.ExecContext(ctx, `DELETE FROM events WHERE expires_at <= NOW()`)
	if err != nil {
		return 0, err
	}

	return result.RowsAffected()
}
