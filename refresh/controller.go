// Package refresh coordinates on-demand refreshes of the signed-in user's data.
package refresh

import (
	"context"
	"sync"
	"time"

	"github.com/jrsteele09/go-storefront/internal/metrics"
)

// UserRefresher fetches fresh user data, typically through the auth context.
type UserRefresher interface {
	RefreshUserData(ctx context.Context) error
}

// UserRefresherFunc adapts a function to UserRefresher.
type UserRefresherFunc func(ctx context.Context) error

func (f UserRefresherFunc) RefreshUserData(ctx context.Context) error {
	return f(ctx)
}

// Controller guards a single refresh entry point. While a refresh is in flight
// further calls are dropped, not queued. State is private to the instance.
type Controller struct {
	refresher UserRefresher
	nowTime   func() time.Time
	metrics   *metrics.Metrics

	mu          sync.Mutex
	refreshing  bool // in-flight guard
	loading     bool // indicator exposed to consumers
	lastFetched time.Time
}

// ControllerOption defines a function type to modify the Controller instance.
type ControllerOption func(*Controller)

// WithNowTime sets the now time function (primarily for testing)
func WithNowTime(nowFunc func() time.Time) ControllerOption {
	return func(c *Controller) {
		c.nowTime = nowFunc
	}
}

func WithMetrics(m *metrics.Metrics) ControllerOption {
	return func(c *Controller) {
		c.metrics = m
	}
}

func NewController(refresher UserRefresher, options ...ControllerOption) *Controller {
	c := &Controller{
		refresher: refresher,
		nowTime:   time.Now,
	}
	for _, opt := range options {
		opt(c)
	}
	return c
}

// RefreshData refreshes the user data unless a refresh is already running, in
// which case it returns nil without doing anything. Errors from the refresher
// are returned after the in-flight state has been cleared.
func (c *Controller) RefreshData(ctx context.Context) error {
	_, err := c.TryRefreshData(ctx)
	return err
}

// TryRefreshData is RefreshData that also reports whether the call ran.
func (c *Controller) TryRefreshData(ctx context.Context) (bool, error) {
	c.mu.Lock()
	if c.refreshing {
		c.mu.Unlock()
		c.metrics.RefreshOutcome(metrics.RefreshSkipped)
		return false, nil
	}
	c.refreshing = true
	c.loading = true
	c.mu.Unlock()

	c.metrics.RefreshStarted()
	defer func() {
		c.mu.Lock()
		c.refreshing = false
		c.loading = false
		c.mu.Unlock()
		c.metrics.RefreshFinished()
	}()

	if err := c.refresher.RefreshUserData(ctx); err != nil {
		c.metrics.RefreshOutcome(metrics.RefreshError)
		return true, err
	}

	c.mu.Lock()
	c.lastFetched = c.nowTime()
	c.mu.Unlock()
	c.metrics.RefreshOutcome(metrics.RefreshOK)
	return true, nil
}

func (c *Controller) IsRefreshing() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.refreshing
}

func (c *Controller) IsLoading() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loading
}

// LastFetched returns the time of the last successful refresh.
func (c *Controller) LastFetched() (time.Time, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastFetched, !c.lastFetched.IsZero()
}

// TimeSinceLastFetch is absent (false) until a refresh has succeeded. Never negative.
func (c *Controller) TimeSinceLastFetch() (time.Duration, bool) {
	last, ok := c.LastFetched()
	if !ok {
		return 0, false
	}
	since := c.nowTime().Sub(last)
	if since < 0 {
		since = 0
	}
	return since, true
}

// IsStale reports whether the data was never fetched or is older than maxAge.
func (c *Controller) IsStale(maxAge time.Duration) bool {
	since, ok := c.TimeSinceLastFetch()
	return !ok || since > maxAge
}
