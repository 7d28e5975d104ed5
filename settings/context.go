package settings

import (
	"context"

	sferrors "github.com/jrsteele09/go-storefront/internal/errors"
)

type contextKey struct{}

// NewContext returns a copy of ctx carrying store; it is the settings provider.
func NewContext(ctx context.Context, store *Store) context.Context {
	return context.WithValue(ctx, contextKey{}, store)
}

// FromContext returns the store provided to ctx or ErrNoSettingsProvider.
func FromContext(ctx context.Context) (*Store, error) {
	store, ok := ctx.Value(contextKey{}).(*Store)
	if !ok || store == nil {
		return nil, sferrors.ErrNoSettingsProvider
	}
	return store, nil
}

// MustFromContext is FromContext for call sites that cannot run without a provider.
// It panics instead of returning a zero value so wiring mistakes surface immediately.
func MustFromContext(ctx context.Context) *Store {
	store, err := FromContext(ctx)
	if err != nil {
		panic(err)
	}
	return store
}
