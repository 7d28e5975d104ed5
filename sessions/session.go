package sessions

import (
	"context"
	"time"

	"github.com/jrsteele09/go-storefront/users"
)

// Status mirrors the identity session lifecycle as seen by consumers.
type Status string

const (
	StatusAuthenticated   Status = "authenticated"
	StatusLoading         Status = "loading"
	StatusUnauthenticated Status = "unauthenticated"
)

// Session is the identity provider's record of the signed-in principal.
// Consumers treat it as read-only; changes go through an Updater.
type Session struct {
	ID           string      `json:"id"`           // Session identity (JWT jti), used as the refresh single-flight key
	User         *users.User `json:"user"`         // Principal captured at sign-in or last update
	LaravelToken string      `json:"laravelToken"` // Bearer token for the backend API
	Expires      time.Time   `json:"expires"`      // Absolute expiry of the session
}

func (s *Session) Expired(now time.Time) bool {
	return s == nil || (!s.Expires.IsZero() && !now.Before(s.Expires))
}

// Updater replaces the session's user and returns the re-issued session.
// It is the only way consumers may change a session.
type Updater func(ctx context.Context, user *users.User) (*Session, error)
