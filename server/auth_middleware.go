package server

import (
	"context"
	"net"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/nicodev/portfolio-server/accounts"
	"github.com/nicodev/portfolio-server/auth"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

// ContextKeyCurrentUser stores the authenticated user resolved from the session cookie
const ContextKeyCurrentUser ContextKey = "current_user"

// CurrentUserFromContext returns the authenticated user injected by
// RequireSessionAuth, or nil when the request is unauthenticated.
func CurrentUserFromContext(ctx context.Context) *auth.CurrentUser {
	user, _ := ctx.Value(ContextKeyCurrentUser).(*auth.CurrentUser)
	return user
}

// RequireSessionAuth is middleware for HTML/HTMX routes that validates session
// cookies. The session check carries the caller's IP and User-Agent so a
// hijacked cookie presented from elsewhere is rejected and invalidated.
func (s *Server) RequireSessionAuth() func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			sessionID, ok := ReadSessionCookie(r)
			if !ok {
				// No session cookie - redirect to login
				http.Redirect(w, r, RouteLogin+"?error=Session+expired", http.StatusSeeOther)
				return
			}

			user, err := s.auth.CurrentUserWithContext(r.Context(), sessionID, clientIP(r), r.UserAgent())
			if err != nil {
				log.Err(err).Msg("Session validation failed")
				http.Error(w, "Internal server error", http.StatusInternalServerError)
				return
			}
			if user == nil {
				// Invalid or expired session
				s.ClearSessionCookie(w, r)
				http.Redirect(w, r, RouteLogin+"?error=Session+expired", http.StatusSeeOther)
				return
			}

			ctx := context.WithValue(r.Context(), ContextKeyCurrentUser, user)
			next(w, r.WithContext(ctx))
		}
	}
}

// RequireAdmin is middleware that restricts a route to admin accounts.
// Must be chained after RequireSessionAuth so the user is present in context.
func (s *Server) RequireAdmin() func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			user := CurrentUserFromContext(r.Context())
			if user == nil || user.RoleID != accounts.RoleAdmin {
				http.Error(w, "403 - Forbidden", http.StatusForbidden)
				return
			}
			next(w, r)
		}
	}
}

// clientIP resolves the caller's IP address, preferring the first entry of
// X-Forwarded-For when the server sits behind a proxy.
func clientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		parts := strings.SplitN(forwarded, ",", 2)
		return strings.TrimSpace(parts[0])
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
