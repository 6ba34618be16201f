package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sysu-ecnc-dev/group-scheduler/backend/internal/domain"
)

func TestCreateEvent(t *testing.T) {
	repo, mock := newMockRepository(t)
	createdAt := time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC)
	event := &domain.Event{
		ID:          "e1",
		Title:       "讨论会",
		HostID:      "U123",
		HostKeyHash: "hash",
		CreatedAt:   createdAt,
		ExpiresAt:   createdAt.Add(90 * 24 * time.Hour),
	}

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO events")).
		WithArgs("e1", "讨论会", "U123", "", "hash", event.CreatedAt, event.ExpiresAt).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.CreateEvent(context.Background(), event))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetEvent(t *testing.T) {
	repo, mock := newMockRepository(t)
	createdAt := time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC)
	submittedAt := createdAt.Add(time.Hour)

	mock.ExpectQuery(regexp.QuoteMeta("FROM events")).
		WithArgs("e1").
		WillReturnRows(sqlmock.NewRows([]string{"title", "host_id", "host_email", "host_key_hash", "created_at", "expires_at"}).
			AddRow("讨论会", "U123", "host@example.com", "hash", createdAt, createdAt.Add(90*24*time.Hour)))

	mock.ExpectQuery(regexp.QuoteMeta("FROM participant_availabilities pa")).
		WithArgs("e1").
		WillReturnRows(sqlmock.NewRows([]string{"participant_id", "display_name", "submitted_at", "version", "start_ms", "end_ms"}).
			AddRow("alice", "Alice", submittedAt, 2, 0, 60).
			AddRow("alice", "Alice", submittedAt, 2, 120, 180).
			AddRow("bob", "Bob", submittedAt, 1, nil, nil))

	event, err := repo.GetEvent(context.Background(), "e1")
	require.NoError(t, err)
	assert.Equal(t, "讨论会", event.Title)
	assert.Equal(t, "host@example.com", event.HostEmail)
	require.Len(t, event.Participants, 2)

	alice := event.Participants["alice"]
	assert.Equal(t, int64(2), alice.Version)
	assert.Equal(t, []domain.TimeWindow{{Start: 0, End: 60}, {Start: 120, End: 180}}, alice.Windows)

	// 提交过但没有空闲时间
	bob, ok := event.Participants["bob"]
	require.True(t, ok)
	assert.NotNil(t, bob.Windows)
	assert.Empty(t, bob.Windows)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetEventNotFound(t *testing.T) {
	repo, mock := newMockRepository(t)

	mock.ExpectQuery(regexp.QuoteMeta("FROM events")).
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows([]string{"title", "host_id", "host_email", "host_key_hash", "created_at", "expires_at"}))

	_, err := repo.GetEvent(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListEventsByHost(t *testing.T) {
	repo, mock := newMockRepository(t)
	createdAt := time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE host_id = $1 AND expires_at > NOW()")).
		WithArgs("U123").
		WillReturnRows(sqlmock.NewRows([]string{"id", "title", "host_email", "created_at", "expires_at"}).
			AddRow("e2", "第二次", "", createdAt.Add(time.Hour), createdAt.Add(91*24*time.Hour)).
			AddRow("e1", "第一次", "", createdAt, createdAt.Add(90*24*time.Hour)))

	events, err := repo.ListEventsByHost(context.Background(), "U123")
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "e2", events[0].ID)
	assert.Equal(t, "U123", events[1].HostID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteEvent(t *testing.T) {
	repo, mock := newMockRepository(t)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM events WHERE id = $1")).
		WithArgs("e1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM events WHERE id = $1")).
		WithArgs("e1").
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, repo.DeleteEvent(context.Background(), "e1"))
	assert.ErrorIs(t, repo.DeleteEvent(context.Background(), "e1"), domain.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteExpiredEvents(t *testing.T) {
	repo, mock := newMockRepository(t)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM events WHERE expires_at <= NOW()")).
		WillReturnResult(sqlmock.NewResult(0, 3))

	n, err := repo.DeleteExpiredEvents(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}
