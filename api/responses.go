// Package api defines the JSON bodies exchanged with storefront clients.
package api

import (
	"time"

	"github.com/jrsteele09/go-storefront/settings"
	"github.com/jrsteele09/go-storefront/users"
)

// External messages. Internal error detail never appears in a response body.
const (
	MessageMethodNotAllowed    = "Method not allowed"
	MessageNoSession           = "No session found"
	MessageRefreshFailed       = "Failed to refresh session"
	MessageSettingsUnavailable = "Settings unavailable"
	MessageTooManyRequests     = "Too many requests"
	MessageInternalServerError = "Internal server error"
	MessageNotFound            = "Not found"
)

// MessageResponse is the body of simple error responses (401, 405, 429).
// Example: {"message": "No session found"}
type MessageResponse struct {
	Message string `json:"message"`
}

// RefreshSessionResponse is returned by POST /api/auth/refresh-session.
type RefreshSessionResponse struct {
	// Success is true when a fresh profile was fetched from the backend.
	// Example: true
	Success bool `json:"success"`

	// User is the freshly fetched profile.
	// Only present: on success
	// Usage: the client replaces its cached user with this value and updates its session
	User *users.User `json:"user,omitempty"`

	// Message is a generic failure description.
	// Example: "Failed to refresh session"
	// Only present: on failure. Never contains backend error detail.
	Message string `json:"message,omitempty"`
}

// SessionResponse is returned by GET /api/auth/session and mirrors the session accessor's view.
type SessionResponse struct {
	// Status is one of "authenticated", "loading" or "unauthenticated".
	Status string `json:"status"`

	// IsAuthenticated is true iff Status is "authenticated" and a session payload exists.
	IsAuthenticated bool `json:"isAuthenticated"`

	// User is the principal stored in the session at sign-in or last update.
	// This may lag behind the backend; use the refresh endpoint to revalidate.
	User *users.User `json:"user,omitempty"`

	// LaravelToken is the bearer token for direct backend calls from the browser.
	// Usage: "Authorization: Bearer <laravelToken>"
	LaravelToken string `json:"laravelToken,omitempty"`

	// Expires is when the session ends.
	// Example: "2025-04-01T12:00:00Z"
	Expires *time.Time `json:"expires,omitempty"`
}

// SettingsResponse is returned by GET /api/settings.
type SettingsResponse struct {
	// Locale is the negotiated storefront locale the settings belong to.
	// Example: "en"
	Locale string `json:"locale"`

	// Settings replaces any previously held settings wholesale.
	Settings *settings.General `json:"settings"`
}

// HealthResponse is returned by GET /healthz.
type HealthResponse struct {
	Status string `json:"status"`
}
