package server

func (s *Server) initRoutes() {
	// Method checks happen in the handlers so every method gets the JSON 405 body.
	// The refresh rate limit is applied by the handler after its 405 and 401 checks.
	s.RegisterRouteHandler(RouteRefreshSession, ChainMiddleware(s.RefreshSessionHandler(), s.APIMiddleware(s.RefreshRecoverMiddleware, s.SessionMiddleware)...))
	s.RegisterRouteHandler(RouteSession, ChainMiddleware(s.SessionHandler(), s.APIMiddleware(s.SessionMiddleware)...))

	s.RegisterRouteHandler("GET "+RouteSettings, ChainMiddleware(s.SettingsHandler(), s.APIMiddleware(s.SettingsMiddleware)...))

	s.RegisterRouteHandler("GET "+RouteHealth, ChainMiddleware(s.HealthHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("GET "+RouteMetrics, s.metrics.Handler())

	s.RegisterRouteHandler("/", ChainMiddleware(s.NotFoundHandler(), s.APIMiddleware()...))
}
