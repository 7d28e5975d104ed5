package server

import (
	"context"
	"net/http"

	"github.com/jrsteele09/go-storefront/sessions"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

// ContextKeySession stores the resolved session state
const ContextKeySession ContextKey = "session"

type sessionState struct {
	status  sessions.Status
	session *sessions.Session
}

// SessionMiddleware resolves the request's session and stores it in the context.
// It never rejects; handlers decide what an absent session means for them.
func (s *Server) SessionMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status, session := s.sessions.Load(r)
		ctx := context.WithValue(r.Context(), ContextKeySession, sessionState{status: status, session: session})
		next(w, r.WithContext(ctx))
	}
}

// sessionFromContext returns the session stored by SessionMiddleware.
// Without the middleware the request counts as unauthenticated.
func sessionFromContext(ctx context.Context) (sessions.Status, *sessions.Session) {
	state, ok := ctx.Value(ContextKeySession).(sessionState)
	if !ok {
		return sessions.StatusUnauthenticated, nil
	}
	return state.status, state.session
}
