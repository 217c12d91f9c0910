package server

import (
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func (s *Server) initRoutes() {
	s.RegisterRouteHandler("GET /{$}", ChainMiddleware(s.IndexHandler(), s.HTMLMiddleware()...))

	// LOGIN
	s.RegisterRouteHandler("GET "+RouteLogin, ChainMiddleware(s.LoginPageHandler(), s.HTMLMiddleware()...))
	s.RegisterRouteHandler("POST "+RouteAuthLogin, ChainMiddleware(s.LoginSubmissionHandler(), s.HTMLMiddleware()...))
	s.RegisterRouteHandler("GET "+RouteAuthLogout, ChainMiddleware(s.LogoutHandler(), s.HTMLMiddleware()...))

	// Admin routes (require session-based auth for HTML/HTMX UI)
	s.RegisterRouteHandler("GET "+RouteAdminDashboard, ChainMiddleware(s.AdminDashboardHandler(), s.HTMLMiddleware(s.RequireSessionAuth(), s.RequireAdmin())...))
	s.RegisterRouteHandler("GET "+RouteAdminSessions, ChainMiddleware(s.AdminSessionsListHandler(), s.HTMLMiddleware(s.RequireSessionAuth(), s.RequireAdmin())...))
	s.RegisterRouteHandler("POST "+RouteAdminSessionsRevoke, ChainMiddleware(s.AdminSessionRevokeHandler(), s.HTMLMiddleware(s.RequireSessionAuth(), s.RequireAdmin())...))

	// Operational routes
	s.RegisterRouteFunc("GET "+RouteHealth, s.HealthHandler())
	s.RegisterRouteHandler("GET "+RouteMetrics, promhttp.Handler())
}
