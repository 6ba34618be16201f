package handler

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sysu-ecnc-dev/group-scheduler/backend/internal/domain"
)

const lockEventQuery = "SELECT expires_at <= NOW() FROM events WHERE id = $1 FOR SHARE"

func TestJoinEvent(t *testing.T) {
	env := newTestEnv(t)
	env.expectEvent("e1", "hash", time.Now().Add(time.Hour))

	rec, resp := env.do(t, http.MethodPost, "/events/e1/join", map[string]string{
		"participantID": "alice",
		"displayName":   "Alice",
	}, nil)
	require.True(t, resp.Success, resp.Message)

	var data struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &data))
	assert.NotEmpty(t, data.Token)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, tokenCookieName, cookies[0].Name)
	assert.Equal(t, data.Token, cookies[0].Value)
	// 活动一小时后失效，token 不能比活动活得更久
	assert.WithinDuration(t, time.Now().Add(time.Hour), cookies[0].Expires, 2*time.Second)

	// 用拿到的 token 查询自己的提交
	env.expectEvent("e1", "hash", time.Now().Add(time.Hour))
	env.mock.ExpectQuery(regexp.QuoteMeta("FROM participant_availabilities")).
		WithArgs("e1", "alice").
		WillReturnError(sql.ErrNoRows)

	_, resp = env.do(t, http.MethodGet, "/events/e1/my-availability", nil, http.Header{"Authorization": []string{"Bearer " + data.Token}})
	assert.True(t, resp.Success)
	assert.Equal(t, "null", string(resp.Data))
	assert.NoError(t, env.mock.ExpectationsWereMet())
}

func TestMyAvailabilityRequiresToken(t *testing.T) {
	tests := []struct {
		name   string
		header http.Header
	}{
		{name: "no token", header: nil},
		{name: "garbage", header: http.Header{"Authorization": []string{"Bearer garbage"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			env.expectEvent("e1", "hash", time.Now().Add(time.Hour))

			rec, _ := env.do(t, http.MethodGet, "/events/e1/my-availability", nil, tt.header)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
		})
	}
}

func TestTokenIsBoundToEvent(t *testing.T) {
	env := newTestEnv(t)
	env.expectEvent("e2", "hash", time.Now().Add(time.Hour))

	rec, _ := env.do(t, http.MethodGet, "/events/e2/my-availability", nil, env.token(t, "e1", "alice", "Alice"))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestSubmitAvailability(t *testing.T) {
	env := newTestEnv(t)
	day := time.Date(2026, 10, 20, 0, 0, 0, 0, time.UTC)
	expiresAt := time.Now().Add(time.Hour)

	env.expectEvent("e1", "hash", expiresAt)
	env.expectEvent("e1", "hash", expiresAt)
	env.mock.ExpectBegin()
	env.mock.ExpectQuery(regexp.QuoteMeta(lockEventQuery)).
		WithArgs("e1").
		WillReturnRows(sqlmock.NewRows([]string{"expired"}).AddRow(false))
	env.mock.ExpectQuery(regexp.QuoteMeta("ON CONFLICT (event_id, participant_id) DO NOTHING")).
		WithArgs("e1", "alice", "Alice", sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"version"}).AddRow(1))
	env.mock.ExpectExec(regexp.QuoteMeta("DELETE FROM availability_windows")).
		WithArgs("e1", "alice").
		WillReturnResult(sqlmock.NewResult(0, 0))
	// 两个重叠的时间段合并成 10:00-12:00
	env.mock.ExpectExec(regexp.QuoteMeta("INSERT INTO availability_windows")).
		WithArgs("e1", "alice", day.Add(10*time.Hour).UnixMilli(), day.Add(12*time.Hour).UnixMilli()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	env.mock.ExpectCommit()

	body := map[string]any{
		"windows": []map[string]time.Time{
			{"start": day.Add(10 * time.Hour), "end": day.Add(11 * time.Hour)},
			{"start": day.Add(10*time.Hour + 30*time.Minute), "end": day.Add(12 * time.Hour)},
		},
	}
	rec, resp := env.do(t, http.MethodPut, "/events/e1/my-availability", body, env.token(t, "e1", "alice", "Alice"))
	require.Equal(t, http.StatusOK, rec.Code, resp.Message)

	var submission domain.AvailabilitySubmission
	require.NoError(t, json.Unmarshal(resp.Data, &submission))
	assert.Equal(t, int64(1), submission.Version)
	assert.Equal(t, []domain.TimeWindow{domain.NewTimeWindow(day.Add(10*time.Hour), day.Add(12*time.Hour))}, submission.Windows)

	require.Len(t, env.notifier.messages, 1)
	assert.Equal(t, domain.NotificationAvailabilitySubmitted, env.notifier.messages[0].Type)
	assert.Equal(t, 1, env.notifier.messages[0].Data.(domain.AvailabilitySubmittedMailData).WindowCount)

	assert.NoError(t, env.mock.ExpectationsWereMet())
}

func TestSubmitAvailabilityInvalidWindow(t *testing.T) {
	env := newTestEnv(t)
	day := time.Date(2026, 10, 20, 0, 0, 0, 0, time.UTC)
	env.expectEvent("e1", "hash", time.Now().Add(time.Hour))

	body := map[string]any{
		"windows": []map[string]time.Time{
			{"start": day.Add(9 * time.Hour), "end": day.Add(10 * time.Hour)},
			{"start": day.Add(12 * time.Hour), "end": day.Add(11 * time.Hour)},
		},
	}
	rec, resp := env.do(t, http.MethodPut, "/events/e1/my-availability", body, env.token(t, "e1", "alice", "Alice"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "第 2 个时间段的结束时间必须晚于开始时间", resp.Message)
	assert.Empty(t, env.notifier.messages)
	// 没有任何写入
	assert.NoError(t, env.mock.ExpectationsWereMet())
}

func TestSubmitAvailabilityConflict(t *testing.T) {
	env := newTestEnv(t)
	expiresAt := time.Now().Add(time.Hour)
	prior := participantRow{id: "alice", displayName: "Alice", version: 4, windows: []domain.TimeWindow{{Start: 0, End: 60}}}

	env.expectEvent("e1", "hash", expiresAt, prior)
	env.expectEvent("e1", "hash", expiresAt, prior)
	env.mock.ExpectBegin()
	env.mock.ExpectQuery(regexp.QuoteMeta(lockEventQuery)).
		WithArgs("e1").
		WillReturnRows(sqlmock.NewRows([]string{"expired"}).AddRow(false))
	env.mock.ExpectQuery(regexp.QuoteMeta("UPDATE participant_availabilities")).
		WithArgs("Alice", sqlmock.AnyArg(), "e1", "alice", int64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"version"}))
	env.mock.ExpectRollback()

	body := map[string]any{
		"windows":         []map[string]time.Time{},
		"expectedVersion": 3,
	}
	rec, _ := env.do(t, http.MethodPut, "/events/e1/my-availability", body, env.token(t, "e1", "alice", "Alice"))
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Empty(t, env.notifier.messages)
	assert.NoError(t, env.mock.ExpectationsWereMet())
}
