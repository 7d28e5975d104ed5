package refresh_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	sferrors "github.com/jrsteele09/go-storefront/internal/errors"
	"github.com/jrsteele09/go-storefront/refresh"
	"github.com/jrsteele09/go-storefront/users"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCoordinator_SameKeySharesOneFetch(t *testing.T) {
	coordinator := refresh.NewCoordinator(time.Second, nil)
	var calls atomic.Int32
	started := make(chan struct{})
	release := make(chan struct{})
	want := &users.User{ID: 99}

	fetch := func(ctx context.Context) (*users.User, error) {
		if calls.Add(1) == 1 {
			close(started)
		}
		<-release
		return want, nil
	}

	const callers = 10
	results := make([]*users.User, callers)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		user, _, err := coordinator.Do(context.Background(), "session-1", fetch)
		assert.NoError(t, err)
		results[0] = user
	}()
	<-started

	for i := 1; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			user, shared, err := coordinator.Do(context.Background(), "session-1", fetch)
			assert.NoError(t, err)
			assert.True(t, shared)
			results[i] = user
		}(i)
	}
	// give the joiners time to register with the in-flight call
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, int64(1), coordinator.InFlight())
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), calls.Load())
	for _, user := range results {
		assert.Same(t, want, user)
	}
	assert.Equal(t, int64(0), coordinator.InFlight())
}

func TestCoordinator_DifferentKeysDoNotShare(t *testing.T) {
	coordinator := refresh.NewCoordinator(time.Second, nil)
	var calls atomic.Int32
	var wg sync.WaitGroup
	for _, key := range []string{"a", "b", "c"} {
		wg.Add(1)
		go func(key string) {
			defer wg.Done()
			_, _, err := coordinator.Do(context.Background(), key, func(context.Context) (*users.User, error) {
				calls.Add(1)
				time.Sleep(20 * time.Millisecond)
				return &users.User{}, nil
			})
			assert.NoError(t, err)
		}(key)
	}
	wg.Wait()
	assert.Equal(t, int32(3), calls.Load())
}

func TestCoordinator_ErrorReachesAllCallers(t *testing.T) {
	coordinator := refresh.NewCoordinator(time.Second, nil)
	boom := errors.New("backend down")

	_, _, err := coordinator.Do(context.Background(), "k", func(context.Context) (*users.User, error) {
		return nil, boom
	})
	require.ErrorIs(t, err, boom)

	user, _, err := coordinator.Do(context.Background(), "k", func(context.Context) (*users.User, error) {
		return &users.User{ID: 1}, nil
	})
	require.NoError(t, err, "a failed refresh is not cached")
	assert.Equal(t, int64(1), user.ID)
}

func TestCoordinator_PanicBecomesError(t *testing.T) {
	coordinator := refresh.NewCoordinator(time.Second, nil)
	_, _, err := coordinator.Do(context.Background(), "k", func(context.Context) (*users.User, error) {
		panic("kaboom")
	})
	require.ErrorIs(t, err, sferrors.ErrInternal)
	assert.Equal(t, int64(0), coordinator.InFlight())
}

func TestCoordinator_TimeoutBoundsHungFetch(t *testing.T) {
	coordinator := refresh.NewCoordinator(30*time.Millisecond, nil)
	_, _, err := coordinator.Do(context.Background(), "k", func(ctx context.Context) (*users.User, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	})
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestCoordinator_CallerCancellationDoesNotCancelSharedFetch(t *testing.T) {
	coordinator := refresh.NewCoordinator(time.Second, nil)
	started := make(chan struct{})
	release := make(chan struct{})
	fetchErr := make(chan error, 1)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, _, err := coordinator.Do(ctx, "k", func(fetchCtx context.Context) (*users.User, error) {
			close(started)
			<-release
			fetchErr <- fetchCtx.Err()
			return &users.User{ID: 5}, nil
		})
		done <- err
	}()
	<-started

	cancel()
	require.ErrorIs(t, <-done, context.Canceled)

	joined := make(chan *users.User, 1)
	go func() {
		user, _, err := coordinator.Do(context.Background(), "k", func(context.Context) (*users.User, error) {
			return nil, errors.New("must join the running fetch")
		})
		assert.NoError(t, err)
		joined <- user
	}()
	time.Sleep(50 * time.Millisecond)
	close(release)

	assert.NoError(t, <-fetchErr, "fetch context is detached from the first caller")
	user := <-joined
	require.NotNil(t, user)
	assert.Equal(t, int64(5), user.ID)
}
