package sessions

import (
	"context"
	"sync"

	sferrors "github.com/jrsteele09/go-storefront/internal/errors"
	"github.com/jrsteele09/go-storefront/users"
)

// CacheRefresher revalidates the cached user behind a session.
type CacheRefresher interface {
	RefreshCache(ctx context.Context) (*users.User, error)
}

// CacheRefresherFunc adapts a function to CacheRefresher.
type CacheRefresherFunc func(ctx context.Context) (*users.User, error)

func (f CacheRefresherFunc) RefreshCache(ctx context.Context) (*users.User, error) {
	return f(ctx)
}

// View holds the values derived from a session status and payload.
// A View is immutable once returned.
type View struct {
	Status          Status
	IsAuthenticated bool
	IsLoading       bool
	User            *users.User
	Token           string
}

// Accessor derives session views and forwards the provider's capabilities.
// View returns the same *View for unchanged inputs so callers can compare by identity.
type Accessor struct {
	refresher CacheRefresher
	update    Updater

	mu      sync.Mutex
	status  Status
	session *Session
	view    *View
}

func NewAccessor(refresher CacheRefresher, update Updater) *Accessor {
	return &Accessor{
		refresher: refresher,
		update:    update,
	}
}

func (a *Accessor) View(status Status, session *Session) *View {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.view != nil && a.status == status && a.session == session {
		return a.view
	}

	view := &View{
		Status:          status,
		IsAuthenticated: status == StatusAuthenticated && session != nil,
		IsLoading:       status == StatusLoading,
	}
	if session != nil {
		view.User = session.User
		view.Token = session.LaravelToken
	}

	a.status, a.session, a.view = status, session, view
	return view
}

// RefreshCache triggers revalidation through the configured refresher and returns its result as is.
func (a *Accessor) RefreshCache(ctx context.Context) (*users.User, error) {
	if a.refresher == nil {
		return nil, sferrors.Wrapf(sferrors.ErrUpdateUnavailable, "[Accessor RefreshCache] no cache refresher")
	}
	return a.refresher.RefreshCache(ctx)
}

// Update forwards to the provider-supplied update capability.
func (a *Accessor) Update(ctx context.Context, user *users.User) (*Session, error) {
	if a.update == nil {
		return nil, sferrors.ErrUpdateUnavailable
	}
	return a.update(ctx, user)
}
