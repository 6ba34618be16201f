package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/sysu-ecnc-dev/group-scheduler/backend/internal/domain"
)

const foreignKeyViolation = "23503"

// UpdateParticipantAvailability 用乐观锁替换某个参与者的提交
//
// 只锁住该参与者自己的那一行，不同参与者的提交互不阻塞。活动行只加共享锁，防止写入过程中活动被删除。
func (r *Repository) UpdateParticipantAvailability(ctx context.Context, eventID, participantID string, submission *domain.AvailabilitySubmission, expectedVersion int64) error {
	ctx, cancel := r.transactionContext(ctx)
	defer cancel()

	tx, err := r.dbpool.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	var expired bool
	query := `SELECT expires_at <= NOW() FROM events WHERE id = $1 FOR SHARE`
	if err := tx.QueryRowContext(ctx, query, eventID).Scan(&expired); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrNotFound
		}
		return err
	}
	if expired {
		return domain.ErrEventExpired
	}

	if expectedVersion == 0 {
		// 第一次提交，已经有人抢先插入的话 DO NOTHING 不会返回任何行
		query = `
			INSERT INTO participant_availabilities (event_id, participant_id, display_name, submitted_at, version)
			VALUES ($1, $2, $3, $4, 1)
			ON CONFLICT (event_id, participant_id) DO NOTHING
			RETURNING version
		`
		err = tx.QueryRowContext(ctx, query, eventID, participantID, submission.DisplayName, submission.SubmittedAt).Scan(&submission.Version)
	} else {
		query = `
			UPDATE participant_availabilities
			SET display_name = $1, submitted_at = $2, version = version + 1
			WHERE event_id = $3 AND participant_id = $4 AND version = $5
			RETURNING version
		`
		err = tx.QueryRowContext(ctx, query, submission.DisplayName, submission.SubmittedAt, eventID, participantID, expectedVersion).Scan(&submission.Version)
	}
	if err != nil {
		var pgErr *pgconn.PgError
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return domain.ErrConcurrentModification
		case errors.As(err, &pgErr) && pgErr.Code == foreignKeyViolation:
			return domain.ErrNotFound
		default:
			return err
		}
	}

	// 先把原先的时间段删除再插入
	query = `DELETE FROM availability_windows WHERE event_id = $1 AND participant_id = $2`
	if _, err := tx.ExecContext(ctx, query, eventID, participantID); err != nil {
		return err
	}

	query = `
		INSERT INTO availability_windows (event_id, participant_id, start_ms, end_ms)
		VALUES ($1, $2, $3, $4)
	`
	for _, window := range submission.Windows {
		if _, err := tx.ExecContext(ctx, query, eventID, participantID, window.Start, window.End); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	return nil
}

func (r *Repository) GetParticipantAvailability(ctx context.Context, eventID, participantID string) (*domain.AvailabilitySubmission, error) {
	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	query := `
		SELECT display_name, submitted_at, version
		FROM participant_availabilities
		WHERE event_id = $1 AND participant_id = $2
	`

	submission := &domain.AvailabilitySubmission{
		EventID:       eventID,
		ParticipantID: participantID,
		Windows:       make([]domain.TimeWindow, 0),
	}
	if err := r.dbpool.QueryRowContext(ctx, query, eventID, participantID).Scan(&submission.DisplayName, &submission.SubmittedAt, &submission.Version); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}

	query = `
		SELECT start_ms, end_ms
		FROM availability_windows
		WHERE event_id = $1 AND participant_id = $2
		ORDER BY start_ms
	`
	rows, err := r.dbpool.QueryContext(ctx, query, eventID, participantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var window domain.TimeWindow
		if err := rows.Scan(&window.Start, &window.End); err != nil {
			return nil, err
		}
		submission.Windows = append(submission.Windows, window)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return submission, nil
}
