package server

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/jrsteele09/go-storefront/internal/config"
	"github.com/jrsteele09/go-storefront/internal/metrics"
	"github.com/jrsteele09/go-storefront/refresh"
	"github.com/jrsteele09/go-storefront/sessions"
	"github.com/jrsteele09/go-storefront/settings"
	"github.com/jrsteele09/go-storefront/users"
	"github.com/rs/zerolog/log"
)

// ProfileFetcher loads the current profile of the user owning a backend token.
type ProfileFetcher interface {
	GetProfile(ctx context.Context, token string) (*users.User, error)
}

// Dependencies are the collaborators a Server is built from.
type Dependencies struct {
	Sessions *sessions.CookieProvider
	Profiles ProfileFetcher
	Settings *settings.Registry
	Metrics  *metrics.Metrics // optional
}

type Server struct {
	env         string // Environment (e.g., "DEV", "PROD")
	mux         *http.ServeMux
	routes      []string
	config      config.Config
	sessions    *sessions.CookieProvider
	profiles    ProfileFetcher
	settings    *settings.Registry
	metrics     *metrics.Metrics
	coordinator *refresh.Coordinator
	limiter     *rateLimiter
}

func New(config config.Config, deps Dependencies) (*Server, error) {
	if deps.Sessions == nil {
		return nil, fmt.Errorf("[Server New] a session provider is required")
	}
	if deps.Profiles == nil {
		return nil, fmt.Errorf("[Server New] a profile fetcher is required")
	}
	if deps.Settings == nil {
		return nil, fmt.Errorf("[Server New] a settings registry is required")
	}

	s := &Server{
		env:         config.GetEnv(),
		mux:         http.NewServeMux(),
		config:      config,
		sessions:    deps.Sessions,
		profiles:    deps.Profiles,
		settings:    deps.Settings,
		metrics:     deps.Metrics,
		coordinator: refresh.NewCoordinator(config.GetRefreshTimeout(), deps.Metrics),
	}
	s.limiter = newRateLimiter(config.GetRefreshRateLimit())

	s.initRoutes()
	s.logRoutes()

	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) RegisterRouteHandler(pattern string, handler http.Handler) {
	s.routes = append(s.routes, pattern)
	s.mux.Handle(pattern, handler)
}

func (s *Server) RegisterRouteFunc(pattern string, handler func(http.ResponseWriter, *http.Request)) {
	s.routes = append(s.routes, pattern)
	s.mux.HandleFunc(pattern, handler)
}

// Coordinator exposes the refresh single-flight, mainly for observability.
func (s *Server) Coordinator() *refresh.Coordinator {
	return s.coordinator
}

func (s *Server) logRoutes() {
	if s.env != "DEV" {
		return // Skip logging in non-development environments
	}
	for _, route := range s.routes {
		parts := strings.SplitN(route, " ", 2)
		if len(parts) > 1 {
			log.Debug().Str("method", parts[0]).Str("path", parts[1]).Msg("route registered")
		} else {
			log.Debug().Str("method", "*").Str("path", parts[0]).Msg("route registered")
		}
	}
}
