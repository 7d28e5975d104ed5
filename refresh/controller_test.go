package refresh_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jrsteele09/go-storefront/internal/metrics"
	"github.com/jrsteele09/go-storefront/refresh"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// blockingRefresher blocks every call until release is closed.
type blockingRefresher struct {
	calls   atomic.Int32
	started chan struct{}
	release chan struct{}
	err     error
}

func newBlockingRefresher() *blockingRefresher {
	return &blockingRefresher{
		started: make(chan struct{}, 16),
		release: make(chan struct{}),
	}
}

func (b *blockingRefresher) RefreshUserData(ctx context.Context) error {
	b.calls.Add(1)
	b.started <- struct{}{}
	<-b.release
	return b.err
}

func TestRefreshData_ConcurrentCallsAreDropped(t *testing.T) {
	refresher := newBlockingRefresher()
	controller := refresh.NewController(refresher, refresh.WithMetrics(metrics.New("refresh_test")))
	ctx := context.Background()

	firstDone := make(chan error, 1)
	go func() { firstDone <- controller.RefreshData(ctx) }()
	<-refresher.started

	assert.True(t, controller.IsRefreshing())
	assert.True(t, controller.IsLoading())

	var wg sync.WaitGroup
	var ran atomic.Int32
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			did, err := controller.TryRefreshData(ctx)
			assert.NoError(t, err)
			if did {
				ran.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(0), ran.Load(), "overlapping calls must be no-ops")
	assert.Equal(t, int32(1), refresher.calls.Load())
	require.NoError(t, controller.RefreshData(ctx), "dropped call reports no error")

	close(refresher.release)
	require.NoError(t, <-firstDone)

	assert.False(t, controller.IsRefreshing())
	assert.False(t, controller.IsLoading())
	assert.Equal(t, int32(1), refresher.calls.Load())
}

func TestRefreshData_SequentialCallsEachRun(t *testing.T) {
	calls := 0
	controller := refresh.NewController(refresh.UserRefresherFunc(func(context.Context) error {
		calls++
		return nil
	}))

	for i := 0; i < 3; i++ {
		require.NoError(t, controller.RefreshData(context.Background()))
	}
	assert.Equal(t, 3, calls)
}

func TestRefreshData_FailurePropagatesAndCleansUp(t *testing.T) {
	boom := errors.New("refresh failed")
	controller := refresh.NewController(refresh.UserRefresherFunc(func(context.Context) error {
		return boom
	}))

	ran, err := controller.TryRefreshData(context.Background())
	assert.True(t, ran)
	require.ErrorIs(t, err, boom)

	assert.False(t, controller.IsRefreshing())
	assert.False(t, controller.IsLoading())
	_, ok := controller.TimeSinceLastFetch()
	assert.False(t, ok, "lastFetched is only recorded on success")
}

func TestRefreshData_PanicStillCleansUp(t *testing.T) {
	controller := refresh.NewController(refresh.UserRefresherFunc(func(context.Context) error {
		panic("boom")
	}))

	assert.Panics(t, func() { _ = controller.RefreshData(context.Background()) })
	assert.False(t, controller.IsRefreshing())
	assert.False(t, controller.IsLoading())
}

func TestTimeSinceLastFetch(t *testing.T) {
	now := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)
	controller := refresh.NewController(
		refresh.UserRefresherFunc(func(context.Context) error { return nil }),
		refresh.WithNowTime(func() time.Time { return now }),
	)

	_, ok := controller.TimeSinceLastFetch()
	assert.False(t, ok, "absent before any successful refresh")
	assert.True(t, controller.IsStale(time.Hour))

	require.NoError(t, controller.RefreshData(context.Background()))
	since, ok := controller.TimeSinceLastFetch()
	require.True(t, ok)
	assert.Equal(t, time.Duration(0), since)

	last, ok := controller.LastFetched()
	require.True(t, ok)
	assert.Equal(t, now, last)

	now = now.Add(90 * time.Second)
	since, _ = controller.TimeSinceLastFetch()
	assert.Equal(t, 90*time.Second, since)
	assert.False(t, controller.IsStale(2*time.Minute))
	assert.True(t, controller.IsStale(time.Minute))

	now = now.Add(-time.Hour)
	since, _ = controller.TimeSinceLastFetch()
	assert.Equal(t, time.Duration(0), since, "never negative")
}

func TestTimeSinceLastFetch_RealClockNonNegative(t *testing.T) {
	controller := refresh.NewController(refresh.UserRefresherFunc(func(context.Context) error { return nil }))
	require.NoError(t, controller.RefreshData(context.Background()))

	since, ok := controller.TimeSinceLastFetch()
	require.True(t, ok)
	assert.GreaterOrEqual(t, since, time.Duration(0))
}
