package client

import (
	"context"
	"fmt"
	"sync"

	"github.com/jrsteele09/go-storefront/api"
	sferrors "github.com/jrsteele09/go-storefront/internal/errors"
	"github.com/jrsteele09/go-storefront/internal/utils"
	"github.com/jrsteele09/go-storefront/refresh"
	"github.com/jrsteele09/go-storefront/sessions"
	"github.com/jrsteele09/go-storefront/users"
	"github.com/rs/zerolog/log"
)

var (
	_ refresh.UserRefresher   = (*AuthContext)(nil)
	_ sessions.CacheRefresher = (*AuthContext)(nil)
)

// AuthContext is the consumer-side view of the storefront session. It starts in the
// loading state until Load resolves the session, and exposes the user-data refresh
// capability driven by a refresh.Controller.
type AuthContext struct {
	client   *Client
	accessor *sessions.Accessor

	mu      sync.RWMutex
	status  sessions.Status
	session *sessions.Session
}

func NewAuthContext(c *Client) *AuthContext {
	a := &AuthContext{
		client: c,
		status: sessions.StatusLoading,
	}
	a.accessor = sessions.NewAccessor(a, a.update)
	return a
}

// Load resolves the current session from the service.
func (a *AuthContext) Load(ctx context.Context) error {
	resp, err := a.client.Session(ctx)
	if err != nil {
		return fmt.Errorf("[AuthContext Load] %w", err)
	}
	a.apply(resp)
	return nil
}

// View returns the accessor view of the current state. The same pointer is
// returned until the state changes.
func (a *AuthContext) View() *sessions.View {
	a.mu.RLock()
	status, session := a.status, a.session
	a.mu.RUnlock()
	return a.accessor.View(status, session)
}

// RefreshCache asks the service for the session user's current profile.
func (a *AuthContext) RefreshCache(ctx context.Context) (*users.User, error) {
	return a.client.RefreshSession(ctx)
}

// RefreshUserData revalidates the cached user and stores the result in the session.
func (a *AuthContext) RefreshUserData(ctx context.Context) error {
	user, err := a.accessor.RefreshCache(ctx)
	if err != nil {
		return fmt.Errorf("[AuthContext RefreshUserData] %w", err)
	}
	if _, err := a.accessor.Update(ctx, user); err != nil {
		return fmt.Errorf("[AuthContext RefreshUserData] %w", err)
	}
	log.Debug().Int64("user_id", user.ID).Msg("user data refreshed")
	return nil
}

// Revalidate has the service re-issue the session with a freshly fetched user.
func (a *AuthContext) Revalidate(ctx context.Context) error {
	resp, err := a.client.UpdateSession(ctx)
	if err != nil {
		return fmt.Errorf("[AuthContext Revalidate] %w", err)
	}
	a.apply(resp)
	return nil
}

// update replaces the session's user with a new session value so views derived
// from the previous session stay unchanged.
func (a *AuthContext) update(_ context.Context, user *users.User) (*sessions.Session, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.session == nil {
		return nil, sferrors.ErrNoSession
	}
	updated := *a.session
	updated.User = user
	a.session = &updated
	return &updated, nil
}

func (a *AuthContext) apply(resp *api.SessionResponse) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.status = sessions.Status(resp.Status)
	if !resp.IsAuthenticated {
		a.session = nil
		return
	}
	a.session = &sessions.Session{
		User:         resp.User,
		LaravelToken: resp.LaravelToken,
		Expires:      utils.Value(resp.Expires),
	}
}
