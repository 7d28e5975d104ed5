package settings_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	sferrors "github.com/jrsteele09/go-storefront/internal/errors"
	"github.com/jrsteele09/go-storefront/settings"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeFetcher returns canned settings per locale and counts calls.
type fakeFetcher struct {
	mu       sync.Mutex
	byLocale map[string]*settings.General
	errs     map[string]error
	calls    []string
}

func newFakeFetcher() *fakeFetcher {
	return &fakeFetcher{
		byLocale: map[string]*settings.General{
			"en": {
				Copyright: "© Shop",
				MenuItems: []settings.MenuItem{{Title: "Home", URL: "/"}},
				Contact:   settings.ContactInfo{Email: "help@shop.example", Phone: "+1 555"},
			},
			"ar": {
				Copyright: "© المتجر",
			},
		},
		errs: map[string]error{},
	}
}

func (f *fakeFetcher) GetGeneralSettings(_ context.Context, locale string) (*settings.General, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, locale)
	if err := f.errs[locale]; err != nil {
		return nil, err
	}
	return f.byLocale[locale], nil
}

func (f *fakeFetcher) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func TestStore_AbsentUntilFirstFetch(t *testing.T) {
	store := settings.NewStore(newFakeFetcher(), nil)
	assert.Nil(t, store.Settings())
	assert.Empty(t, store.Locale())
}

func TestStore_LocaleChangeFetchesOnceAndReplacesWholesale(t *testing.T) {
	fetcher := newFakeFetcher()
	store := settings.NewStore(fetcher, nil)
	ctx := context.Background()

	require.NoError(t, store.SetLocale(ctx, "en"))
	assert.Equal(t, 1, fetcher.callCount())
	require.NotNil(t, store.Settings())
	assert.Equal(t, "help@shop.example", store.Settings().Contact.Email)

	require.NoError(t, store.SetLocale(ctx, "en"))
	assert.Equal(t, 1, fetcher.callCount(), "same locale must not refetch")

	require.NoError(t, store.SetLocale(ctx, "ar"))
	assert.Equal(t, 2, fetcher.callCount())
	assert.Equal(t, "ar", store.Locale())
	assert.Equal(t, "© المتجر", store.Settings().Copyright)
	assert.Empty(t, store.Settings().Contact.Email, "fields absent from the new payload are not retained")
	assert.Empty(t, store.Settings().MenuItems)
}

func TestStore_FailedFetchLeavesNilUntilNextLocaleChange(t *testing.T) {
	fetcher := newFakeFetcher()
	boom := errors.New("backend down")
	store := settings.NewStore(fetcher, nil)
	ctx := context.Background()

	require.NoError(t, store.SetLocale(ctx, "en"))
	fetcher.errs["ar"] = boom

	err := store.SetLocale(ctx, "ar")
	require.ErrorIs(t, err, boom)
	assert.Nil(t, store.Settings())

	require.NoError(t, store.SetLocale(ctx, "ar"), "no retry for the active locale")
	assert.Equal(t, 2, fetcher.callCount())
	assert.Nil(t, store.Settings())

	require.NoError(t, store.SetLocale(ctx, "en"))
	assert.NotNil(t, store.Settings())
	assert.Equal(t, 3, fetcher.callCount())
}

func TestContext_AccessOutsideProviderPanics(t *testing.T) {
	_, err := settings.FromContext(context.Background())
	require.ErrorIs(t, err, sferrors.ErrNoSettingsProvider)

	assert.PanicsWithError(t, sferrors.ErrNoSettingsProvider.Error(), func() {
		settings.MustFromContext(context.Background())
	})
}

func TestContext_ProviderSuppliesStore(t *testing.T) {
	store := settings.NewStore(newFakeFetcher(), nil)
	ctx := settings.NewContext(context.Background(), store)

	got, err := settings.FromContext(ctx)
	require.NoError(t, err)
	assert.Same(t, store, got)
	assert.Same(t, store, settings.MustFromContext(ctx))
}
