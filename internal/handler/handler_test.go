package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"regexp"
	"sync"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/golang-jwt/jwt/v5"
	"github.com/line/line-bot-sdk-go/v7/linebot"
	"github.com/stretchr/testify/require"
	"github.com/sysu-ecnc-dev/group-scheduler/backend/internal/config"
	"github.com/sysu-ecnc-dev/group-scheduler/backend/internal/domain"
	"github.com/sysu-ecnc-dev/group-scheduler/backend/internal/repository"
)

type recordingNotifier struct {
	mu       sync.Mutex
	messages []domain.NotificationMessage
}

func (n *recordingNotifier) Publish(ctx context.Context, message domain.NotificationMessage) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.messages = append(n.messages, message)
	return nil
}

type lineReply struct {
	token    string
	messages []linebot.SendingMessage
}

type fakeLineBot struct {
	mu      sync.Mutex
	events  []*linebot.Event
	err     error
	replies []lineReply
}

func (b *fakeLineBot) ParseRequest(r *http.Request) ([]*linebot.Event, error) {
	return b.events, b.err
}

func (b *fakeLineBot) Reply(ctx context.Context, replyToken string, messages ...linebot.SendingMessage) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.replies = append(b.replies, lineReply{token: replyToken, messages: messages})
	return nil
}

type testEnv struct {
	handler  *Handler
	mock     sqlmock.Sqlmock
	notifier *recordingNotifier
	bot      *fakeLineBot
}

func newTestEnv(t *testing.T) *testEnv {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	cfg := &config.Config{}
	cfg.Database.QueryTimeout = 5
	cfg.Database.TransactionTimeout = 5
	cfg.Event.TTLDays = 90
	cfg.Event.HostKeyLength = 21
	cfg.JWT.Secret = "test-secret"
	cfg.JWT.Expiration = 24
	cfg.Line.LiffID = "liff-1"
	cfg.Line.TimeZone = "UTC"

	env := &testEnv{
		mock:     mock,
		notifier: &recordingNotifier{},
		bot:      &fakeLineBot{},
	}
	env.handler, err = NewHandler(cfg, repository.NewRepository(cfg, db), nil, env.notifier, env.bot)
	require.NoError(t, err)
	env.handler.RegisterRoutes()

	return env
}

type testResponse struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func (e *testEnv) do(t *testing.T, method, target string, body any, header http.Header) (*httptest.ResponseRecorder, testResponse) {
	var reader *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, target, reader)
	for k, v := range header {
		req.Header[k] = v
	}
	rec := httptest.NewRecorder()
	e.handler.Mux.ServeHTTP(rec, req)

	var resp testResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	return rec, resp
}

type participantRow struct {
	id          string
	displayName string
	version     int64
	windows     []domain.TimeWindow
}

// expectEvent 模拟一次 GetEvent 的两条查询
func (e *testEnv) expectEvent(id string, hostKeyHash string, expiresAt time.Time, participants ...participantRow) {
	createdAt := expiresAt.Add(-90 * 24 * time.Hour)
	e.mock.ExpectQuery(regexp.QuoteMeta("FROM events")).
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows([]string{"title", "host_id", "host_email", "host_key_hash", "created_at", "expires_at"}).
			AddRow("讨论会", "U123", "host@example.com", hostKeyHash, createdAt, expiresAt))

	rows := sqlmock.NewRows([]string{"participant_id", "display_name", "submitted_at", "version", "start_ms", "end_ms"})
	for _, p := range participants {
		for _, w := range p.windows {
			rows.AddRow(p.id, p.displayName, createdAt, p.version, w.Start, w.End)
		}
	}
	e.mock.ExpectQuery(regexp.QuoteMeta("FROM participant_availabilities pa")).
		WithArgs(id).
		WillReturnRows(rows)
}

func (e *testEnv) token(t *testing.T, eventID, participantID, displayName string) http.Header {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, ParticipantClaims{
		DisplayName: displayName,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			Subject:   participantID,
			Audience:  jwt.ClaimStrings{eventID},
		},
	})
	ss, err := token.SignedString([]byte(e.handler.config.JWT.Secret))
	require.NoError(t, err)

	return http.Header{"Authorization": []string{"Bearer " + ss}}
}
