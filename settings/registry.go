package settings

import (
	"context"
	"net/http"
	"sync"
	"time"

	sferrors "github.com/jrsteele09/go-storefront/internal/errors"
	"github.com/jrsteele09/go-storefront/internal/metrics"
	"golang.org/x/text/language"
)

// LocaleCookieName is the cookie the storefront uses to remember the chosen locale.
const LocaleCookieName = "NEXT_LOCALE"

// Registry keeps one Store per supported locale for concurrent HTTP requests.
type Registry struct {
	fetcher Fetcher
	metrics *metrics.Metrics
	locales []string
	matcher language.Matcher

	retryInterval time.Duration
	nowTime       func() time.Time

	mu     sync.RWMutex
	stores map[string]*Store
}

type RegistryOption func(*Registry)

// WithRetryInterval makes a locale whose fetch failed answer with that failure for d
// before the backend is asked again. Zero asks again on every request.
func WithRetryInterval(d time.Duration) RegistryOption {
	return func(r *Registry) {
		r.retryInterval = d
	}
}

// WithNowTime sets the now time function (primarily for testing)
func WithNowTime(nowFunc func() time.Time) RegistryOption {
	return func(r *Registry) {
		r.nowTime = nowFunc
	}
}

// NewRegistry creates a registry for locales; the first locale is the default.
func NewRegistry(fetcher Fetcher, locales []string, m *metrics.Metrics, options ...RegistryOption) (*Registry, error) {
	if len(locales) == 0 {
		return nil, sferrors.Wrapf(sferrors.ErrUnsupportedLocale, "[NewRegistry] no locales configured")
	}
	tags := make([]language.Tag, 0, len(locales))
	for _, l := range locales {
		tag, err := language.Parse(l)
		if err != nil {
			return nil, sferrors.Wrapf(err, "[NewRegistry] invalid locale %q", l)
		}
		tags = append(tags, tag)
	}
	r := &Registry{
		fetcher: fetcher,
		metrics: m,
		locales: locales,
		matcher: language.NewMatcher(tags),
		nowTime: time.Now,
		stores:  make(map[string]*Store),
	}
	for _, opt := range options {
		opt(r)
	}
	return r, nil
}

func (r *Registry) Locales() []string {
	return r.locales
}

func (r *Registry) DefaultLocale() string {
	return r.locales[0]
}

// Match maps the preferences (locale strings or Accept-Language values) to a supported locale.
func (r *Registry) Match(preferences ...string) string {
	var tags []language.Tag
	for _, pref := range preferences {
		if pref == "" {
			continue
		}
		parsed, _, err := language.ParseAcceptLanguage(pref)
		if err != nil {
			continue
		}
		tags = append(tags, parsed...)
	}
	if len(tags) == 0 {
		return r.DefaultLocale()
	}
	_, index, confidence := r.matcher.Match(tags...)
	if confidence == language.No {
		return r.DefaultLocale()
	}
	return r.locales[index]
}

// LocaleFromRequest negotiates the locale from ?locale=, the locale cookie, then Accept-Language.
func (r *Registry) LocaleFromRequest(req *http.Request) string {
	if l := req.URL.Query().Get("locale"); l != "" {
		return r.Match(l)
	}
	if c, err := req.Cookie(LocaleCookieName); err == nil && c.Value != "" {
		return r.Match(c.Value)
	}
	return r.Match(req.Header.Get("Accept-Language"))
}

// Store returns the store bound to locale, fetching its settings on first use.
// A store whose last fetch failed is asked to fetch again once the retry interval has passed.
func (r *Registry) Store(ctx context.Context, locale string) (*Store, error) {
	r.mu.RLock()
	store, ok := r.stores[locale]
	r.mu.RUnlock()
	if ok && store.Settings() != nil {
		return store, nil
	}

	if !ok {
		r.mu.Lock()
		if store, ok = r.stores[locale]; !ok {
			store = NewStore(r.fetcher, r.metrics)
			r.stores[locale] = store
		}
		r.mu.Unlock()
	}

	if err := store.reload(ctx, locale, r.retryInterval, r.nowTime); err != nil {
		return store, err
	}
	return store, nil
}
