package server

import (
	"fmt"

	"github.com/jrsteele09/go-storefront/backend"
	"github.com/jrsteele09/go-storefront/internal/config"
	"github.com/jrsteele09/go-storefront/internal/metrics"
	"github.com/jrsteele09/go-storefront/sessions"
	"github.com/jrsteele09/go-storefront/settings"
)

// Bootstrap builds a Server with the production collaborators: the signed cookie
// session provider, the backend API client and a settings registry over the supported locales.
func Bootstrap(config config.Config, m *metrics.Metrics) (*Server, error) {
	provider, err := sessions.NewCookieProvider(
		config.GetSessionSecret(),
		config.GetSessionCookieName(),
		config.GetSessionMaxAge(),
	)
	if err != nil {
		return nil, fmt.Errorf("[Server Bootstrap] failed to create session provider: %w", err)
	}

	backendClient := backend.NewClient(config.GetBackendAPIURL, config.GetBackendTimeout(), backend.WithMetrics(m))

	registry, err := settings.NewRegistry(backendClient, config.GetSupportedLocales(), m,
		settings.WithRetryInterval(config.GetSettingsRetryInterval()),
	)
	if err != nil {
		return nil, fmt.Errorf("[Server Bootstrap] failed to create settings registry: %w", err)
	}

	return New(config, Dependencies{
		Sessions: provider,
		Profiles: backendClient,
		Settings: registry,
		Metrics:  m,
	})
}
