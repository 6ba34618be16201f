package scheduler

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sysu-ecnc-dev/group-scheduler/backend/internal/domain"
)

func w(start, end int64) domain.TimeWindow {
	return domain.TimeWindow{Start: start, End: end}
}

func TestIntersect(t *testing.T) {
	tests := []struct {
		name string
		a, b domain.TimeWindow
		want domain.TimeWindow
		ok   bool
	}{
		{"overlap", w(0, 60), w(30, 90), w(30, 60), true},
		{"contained", w(0, 100), w(20, 40), w(20, 40), true},
		{"identical", w(10, 20), w(10, 20), w(10, 20), true},
		{"adjacent", w(0, 60), w(60, 120), domain.TimeWindow{}, false},
		{"disjoint", w(0, 10), w(20, 30), domain.TimeWindow{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Intersect(tt.a, tt.b)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)

			got, ok = Intersect(tt.b, tt.a)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   []domain.TimeWindow
		want []domain.TimeWindow
	}{
		{"empty", nil, []domain.TimeWindow{}},
		{"sorts", []domain.TimeWindow{w(50, 60), w(0, 10)}, []domain.TimeWindow{w(0, 10), w(50, 60)}},
		{"merges overlapping", []domain.TimeWindow{w(0, 30), w(20, 50)}, []domain.TimeWindow{w(0, 50)}},
		{"merges adjacent", []domain.TimeWindow{w(60, 120), w(0, 60)}, []domain.TimeWindow{w(0, 120)}},
		{"keeps contained", []domain.TimeWindow{w(0, 100), w(10, 20), w(30, 40)}, []domain.TimeWindow{w(0, 100)}},
		{"chain", []domain.TimeWindow{w(0, 10), w(5, 15), w(15, 20), w(30, 40)}, []domain.TimeWindow{w(0, 20), w(30, 40)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Normalize(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNormalizeRejectsMalformedWindow(t *testing.T) {
	for _, bad := range []domain.TimeWindow{w(10, 10), w(20, 10)} {
		_, err := Normalize([]domain.TimeWindow{w(0, 5), bad})
		require.Error(t, err)
		assert.True(t, errors.Is(err, domain.ErrInvalidWindow))

		var windowErr *domain.WindowError
		require.True(t, errors.As(err, &windowErr))
		assert.Equal(t, 1, windowErr.Index)
		assert.Equal(t, bad, windowErr.Window)
	}
}

func TestNormalizeDoesNotModifyInput(t *testing.T) {
	in := []domain.TimeWindow{w(50, 60), w(0, 10)}
	_, err := Normalize(in)
	require.NoError(t, err)
	assert.Equal(t, []domain.TimeWindow{w(50, 60), w(0, 10)}, in)
}

func randomWindows(rng *rand.Rand, n int, span int64) []domain.TimeWindow {
	windows := make([]domain.TimeWindow, n)
	for i := range windows {
		start := rng.Int63n(span)
		windows[i] = w(start, start+rng.Int63n(span/4)+1)
	}
	return windows
}

func TestNormalizeIsIdempotent(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for i := 0; i < 200; i++ {
		once, err := Normalize(randomWindows(rng, rng.Intn(12), 1000))
		require.NoError(t, err)

		twice, err := Normalize(once)
		require.NoError(t, err)
		assert.Equal(t, once, twice)

		for j := 1; j < len(once); j++ {
			assert.Less(t, once[j-1].End, once[j].Start, "windows must be disjoint and non-adjacent")
		}
	}
}

func TestNormalizeSubmission(t *testing.T) {
	sub, err := NormalizeSubmission("event-1", "alice", []domain.TimeWindow{w(60, 120), w(0, 60)})
	require.NoError(t, err)
	assert.Equal(t, "event-1", sub.EventID)
	assert.Equal(t, "alice", sub.ParticipantID)
	assert.Equal(t, []domain.TimeWindow{w(0, 120)}, sub.Windows)

	again, err := NormalizeSubmission("event-1", "alice", sub.Windows)
	require.NoError(t, err)
	assert.Equal(t, sub, again)

	empty, err := NormalizeSubmission("event-1", "bob", nil)
	require.NoError(t, err)
	assert.NotNil(t, empty.Windows)
	assert.Empty(t, empty.Windows)

	_, err = NormalizeSubmission("event-1", "carol", []domain.TimeWindow{w(0, 60), w(90, 30)})
	assert.ErrorIs(t, err, domain.ErrInvalidWindow)
}
