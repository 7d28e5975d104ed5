package settings

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jrsteele09/go-storefront/internal/metrics"
	"github.com/rs/zerolog/log"
)

// Fetcher loads the general settings for a locale from the backend.
type Fetcher interface {
	GetGeneralSettings(ctx context.Context, locale string) (*General, error)
}

// Store holds the general settings of the active locale.
// Switching locale fetches once and replaces the stored value wholesale.
// A failed fetch leaves the value nil until the next locale change.
type Store struct {
	fetcher Fetcher
	metrics *metrics.Metrics

	mu      sync.Mutex // serialises locale switches
	locale  string
	loaded  bool
	current atomic.Pointer[General]

	lastErr  error
	failedAt time.Time
}

func NewStore(fetcher Fetcher, m *metrics.Metrics) *Store {
	return &Store{fetcher: fetcher, metrics: m}
}

// SetLocale activates locale. The first call and every change of locale trigger
// exactly one fetch; calling it again with the active locale does nothing.
func (s *Store) SetLocale(ctx context.Context, locale string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.loaded && s.locale == locale {
		return nil
	}
	s.locale = locale
	s.loaded = true
	return s.load(ctx)
}

func (s *Store) load(ctx context.Context) error {
	general, err := s.fetcher.GetGeneralSettings(ctx, s.locale)
	s.metrics.SettingsFetch(s.locale, err)
	if err != nil {
		s.current.Store(nil)
		s.lastErr = fmt.Errorf("[Store SetLocale] %s: %w", s.locale, err)
		log.Error().Err(err).Str("locale", s.locale).Msg("failed to fetch general settings")
		return s.lastErr
	}
	s.lastErr = nil
	s.current.Store(general)
	log.Debug().Str("locale", s.locale).Msg("general settings loaded")
	return nil
}

// reload fetches for locale unless the store already holds its settings. After a
// failed fetch the same error is returned until retryInterval has passed.
func (s *Store) reload(ctx context.Context, locale string, retryInterval time.Duration, now func() time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.loaded && s.locale == locale {
		if s.current.Load() != nil {
			return nil
		}
		if s.lastErr != nil && now().Sub(s.failedAt) < retryInterval {
			return s.lastErr
		}
	}
	s.locale = locale
	s.loaded = true
	if err := s.load(ctx); err != nil {
		s.failedAt = now()
		return err
	}
	return nil
}

// Settings returns the active settings, or nil when none have been fetched successfully.
func (s *Store) Settings() *General {
	return s.current.Load()
}

func (s *Store) Locale() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.locale
}
