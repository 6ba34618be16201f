package sweeper

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sysu-ecnc-dev/group-scheduler/backend/internal/metrics"
)

type fakeDeleter struct {
	calls   atomic.Int32
	deleted int64
	err     error
}

func (d *fakeDeleter) DeleteExpiredEvents(ctx context.Context) (int64, error) {
	d.calls.Add(1)
	return d.deleted, d.err
}

func TestSweepCountsDeletedEvents(t *testing.T) {
	before := testutil.ToFloat64(metrics.ExpiredEventsDeleted)

	sweep(context.Background(), &fakeDeleter{deleted: 3})
	assert.Equal(t, before+3, testutil.ToFloat64(metrics.ExpiredEventsDeleted))

	sweep(context.Background(), &fakeDeleter{err: errors.New("connection reset")})
	assert.Equal(t, before+3, testutil.ToFloat64(metrics.ExpiredEventsDeleted))
}

func TestRunStopsOnCancel(t *testing.T) {
	deleter := &fakeDeleter{}
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() {
		done <- Run(ctx, deleter, 5*time.Millisecond)
	}()

	require.Eventually(t, func() bool { return deleter.calls.Load() >= 2 }, time.Second, 5*time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestRunRejectsNonPositiveInterval(t *testing.T) {
	deleter := &fakeDeleter{}

	for _, interval := range []time.Duration{0, -time.Second} {
		assert.Error(t, Run(context.Background(), deleter, interval))
	}
	assert.Zero(t, deleter.calls.Load())
}
