package server

// Route path constants
// All application routes are defined here to ensure consistency and prevent typos
const (
	// Auth Routes - Session
	RouteRefreshSession = "/api/auth/refresh-session"
	RouteSession        = "/api/auth/session"

	// Storefront Routes
	RouteSettings = "/api/settings"

	// Operational Routes
	RouteHealth  = "/healthz"
	RouteMetrics = "/metrics"
)
