package errors

import (
	"errors"
	"fmt"
)

// Common error types for the storefront session service
var (
	// Session errors
	ErrNoSession         = errors.New("no session found")
	ErrInvalidSession    = errors.New("invalid session")
	ErrSessionExpired    = errors.New("session expired")
	ErrUpdateUnavailable = errors.New("session update unavailable")

	// Request errors
	ErrMethodNotAllowed = errors.New("method not allowed")
	ErrRateLimited      = errors.New("rate limited")

	// Backend errors
	ErrBackendStatus      = errors.New("backend returned non-success status")
	ErrBackendUnavailable = errors.New("backend unavailable")
	ErrBackendPayload     = errors.New("unexpected backend payload")

	// Settings errors
	ErrNoSettingsProvider  = errors.New("settings accessed outside of a settings provider")
	ErrSettingsUnavailable = errors.New("settings unavailable")
	ErrUnsupportedLocale   = errors.New("unsupported locale")

	// General errors
	ErrInternal = errors.New("internal error")
)

// Wrapf wraps an error with context using fmt.Errorf
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}

// Is reports whether any error in err's chain matches target
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
