package refresh

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	sferrors "github.com/jrsteele09/go-storefront/internal/errors"
	"github.com/jrsteele09/go-storefront/internal/metrics"
	"github.com/jrsteele09/go-storefront/users"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"
)

// FetchFunc loads the fresh user for a refresh.
type FetchFunc func(ctx context.Context) (*users.User, error)

// Coordinator is a process-wide single-flight for user refreshes keyed by session
// identity. Callers arriving while a refresh for their key is running wait for
// it and share its result.
type Coordinator struct {
	group    singleflight.Group
	timeout  time.Duration
	metrics  *metrics.Metrics
	inFlight atomic.Int64
}

// NewCoordinator bounds each shared refresh by timeout; zero means no bound.
func NewCoordinator(timeout time.Duration, m *metrics.Metrics) *Coordinator {
	return &Coordinator{timeout: timeout, metrics: m}
}

// Do runs fetch for key unless one is already running, in which case it joins it.
// shared reports whether the result was delivered to more than one caller.
// The fetch is detached from the caller's cancellation; a caller that gives up
// returns ctx.Err() while the fetch completes for the others.
func (c *Coordinator) Do(ctx context.Context, key string, fetch FetchFunc) (user *users.User, shared bool, err error) {
	ch := c.group.DoChan(key, func() (any, error) {
		return c.run(ctx, key, fetch)
	})

	select {
	case res := <-ch:
		user, _ = res.Val.(*users.User)
		switch {
		case res.Err != nil:
			c.metrics.RefreshOutcome(metrics.RefreshError)
		case res.Shared:
			c.metrics.RefreshOutcome(metrics.RefreshShared)
		default:
			c.metrics.RefreshOutcome(metrics.RefreshOK)
		}
		return user, res.Shared, res.Err
	case <-ctx.Done():
		return nil, false, ctx.Err()
	}
}

func (c *Coordinator) run(ctx context.Context, key string, fetch FetchFunc) (user *users.User, err error) {
	c.inFlight.Add(1)
	c.metrics.RefreshStarted()
	defer func() {
		// A panic escaping DoChan would crash the process.
		if r := recover(); r != nil {
			log.Error().Str("key", key).Interface("panic", r).Msg("session refresh panicked")
			user, err = nil, fmt.Errorf("[Coordinator] %w: refresh panicked: %v", sferrors.ErrInternal, r)
		}
		c.metrics.RefreshFinished()
		c.inFlight.Add(-1)
	}()

	callCtx := context.WithoutCancel(ctx)
	if c.timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(callCtx, c.timeout)
		defer cancel()
	}
	return fetch(callCtx)
}

// InFlight returns the number of refreshes currently running.
func (c *Coordinator) InFlight() int64 {
	return c.inFlight.Load()
}

// Forget drops any in-flight entry for key so the next caller starts a new refresh.
func (c *Coordinator) Forget(key string) {
	c.group.Forget(key)
}
