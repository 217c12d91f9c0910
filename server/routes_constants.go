package server

// Route path constants
// All application routes are defined here to ensure consistency and prevent typos
const (
	// Auth Routes - Login & Logout
	RouteLogin      = "/login"
	RouteAuthLogin  = "/auth/login"
	RouteAuthLogout = "/auth/logout"

	// Admin Routes
	RouteAdminDashboard      = "/admin/dashboard"
	RouteAdminSessions       = "/admin/sessions"
	RouteAdminSessionsRevoke = "/admin/sessions/revoke"

	// Operational Routes
	RouteHealth  = "/health"
	RouteMetrics = "/metrics"
)
