package server

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"net/http"

	"github.com/jrsteele09/go-storefront/api"
	sferrors "github.com/jrsteele09/go-storefront/internal/errors"
	"github.com/jrsteele09/go-storefront/internal/utils"
	"github.com/jrsteele09/go-storefront/sessions"
	"github.com/jrsteele09/go-storefront/users"
	"github.com/rs/zerolog"
)

// RefreshSessionHandler fetches the session user's current profile from the backend.
//
//	POST /api/auth/refresh-session
//	200 {"success":true,"user":{...}}
//	401 {"message":"No session found"}
//	405 {"message":"Method not allowed"}
//	429 {"message":"Too many requests"}
//	500 {"success":false,"message":"Failed to refresh session"}
func (s *Server) RefreshSessionHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			methodNotAllowed(w, http.MethodPost)
			return
		}

		_, session := sessionFromContext(r.Context())
		if session == nil {
			writeJSON(w, http.StatusUnauthorized, api.MessageResponse{Message: api.MessageNoSession})
			return
		}
		if !s.allowRefresh(w, r, refreshKey(session)) {
			return
		}

		user, err := s.refreshUser(r.Context(), session)
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, api.RefreshSessionResponse{
				Success: false,
				Message: api.MessageRefreshFailed,
			})
			return
		}

		writeJSON(w, http.StatusOK, api.RefreshSessionResponse{Success: true, User: user})
	}
}

// SessionHandler exposes the session accessor over HTTP.
//
//	GET    returns the current session view
//	POST   revalidates the session user against the backend and re-issues the cookie
//	DELETE clears the session cookie
func (s *Server) SessionHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status, session := sessionFromContext(r.Context())
		accessor := sessions.NewAccessor(
			sessions.CacheRefresherFunc(func(ctx context.Context) (*users.User, error) {
				return s.refreshUser(ctx, session)
			}),
			s.sessions.Updater(w, r, session),
		)

		switch r.Method {
		case http.MethodGet:
			writeJSON(w, http.StatusOK, sessionResponse(accessor.View(status, session), session))

		case http.MethodPost:
			if session == nil {
				writeJSON(w, http.StatusUnauthorized, api.MessageResponse{Message: api.MessageNoSession})
				return
			}
			user, err := accessor.RefreshCache(r.Context())
			if err != nil {
				writeJSON(w, http.StatusInternalServerError, api.MessageResponse{Message: api.MessageRefreshFailed})
				return
			}
			updated, err := accessor.Update(r.Context(), user)
			if err != nil {
				zerolog.Ctx(r.Context()).Error().Err(err).Str("session_id", session.ID).Msg("failed to update session")
				writeJSON(w, http.StatusInternalServerError, api.MessageResponse{Message: api.MessageRefreshFailed})
				return
			}
			writeJSON(w, http.StatusOK, sessionResponse(accessor.View(sessions.StatusAuthenticated, updated), updated))

		case http.MethodDelete:
			s.sessions.Clear(w, r)
			writeJSON(w, http.StatusOK, sessionResponse(accessor.View(sessions.StatusUnauthenticated, nil), nil))

		default:
			methodNotAllowed(w, "GET, POST, DELETE")
		}
	}
}

// refreshUser loads the profile for session through the coordinator so concurrent
// refreshes of one session share a single backend call.
func (s *Server) refreshUser(ctx context.Context, session *sessions.Session) (*users.User, error) {
	logger := zerolog.Ctx(ctx)
	token := session.LaravelToken

	user, shared, err := s.coordinator.Do(ctx, refreshKey(session), func(ctx context.Context) (*users.User, error) {
		user, err := s.profiles.GetProfile(ctx, token)
		if err == nil && user == nil {
			err = sferrors.Wrapf(sferrors.ErrBackendPayload, "[Server refreshUser] empty profile")
		}
		return user, err
	})
	if err != nil {
		logger.Error().Err(err).Str("session_id", session.ID).Msg("session refresh failed")
		return nil, err
	}
	logger.Info().Str("session_id", session.ID).Int64("user_id", user.ID).Bool("shared", shared).Msg("session refreshed")
	return user, nil
}

// refreshKey identifies a session for single-flight purposes. Sessions without an id
// fall back to a digest of their backend token.
func refreshKey(session *sessions.Session) string {
	if session.ID != "" {
		return "session:" + session.ID
	}
	sum := sha256.Sum256([]byte(session.LaravelToken))
	return "token:" + hex.EncodeToString(sum[:])
}

func sessionResponse(view *sessions.View, session *sessions.Session) api.SessionResponse {
	resp := api.SessionResponse{
		Status:          string(view.Status),
		IsAuthenticated: view.IsAuthenticated,
		User:            view.User,
		LaravelToken:    view.Token,
	}
	if session != nil && !session.Expires.IsZero() {
		resp.Expires = utils.Ptr(session.Expires)
	}
	return resp
}
