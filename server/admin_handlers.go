package server

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// sessionIDFragmentLen is how much of a session ID the admin UI ever sees.
// Enough to tell sessions apart and to address one for revocation, useless
// as a credential.
const sessionIDFragmentLen = 8

// sessionView is the client-facing shape of a session. The full ID stays
// server-side so the listing can't be harvested for live tokens.
type sessionView struct {
	SessionID    string    `json:"session_id"` // truncated fragment
	CreatedAt    time.Time `json:"created_at"`
	LastAccessed time.Time `json:"last_accessed"`
	IPAddress    string    `json:"ip_address,omitempty"`
	UserAgent    string    `json:"user_agent,omitempty"`
	Current      bool      `json:"current"`
}

func sessionFragment(sessionID string) string {
	if len(sessionID) <= sessionIDFragmentLen {
		return sessionID
	}
	return sessionID[:sessionIDFragmentLen]
}

// AdminDashboardHandler renders the admin dashboard (GET /admin/dashboard)
func (s *Server) AdminDashboardHandler() http.HandlerFunc {
	tmpl, err := ParseTemplate("admin_dashboard.html")
	if err != nil {
		panic("Failed to parse admin dashboard template: " + err.Error())
	}

	return func(w http.ResponseWriter, r *http.Request) {
		user := CurrentUserFromContext(r.Context())
		if user == nil {
			http.Error(w, "User not found", http.StatusNotFound)
			return
		}

		activeSessions, err := s.auth.Sessions().CountActive(r.Context(), user.AccountID)
		if err != nil {
			log.Err(err).Msg("Failed to count active sessions")
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		data := map[string]interface{}{
			"AppName":        s.config.GetAppName(),
			"UserName":       user.Username,
			"ActiveSessions": activeSessions,
		}

		w.Header().Set("Content-Type", contentTypeHTML)
		_ = tmpl.Execute(w, data)
	}
}

// AdminSessionsListHandler lists the caller's active sessions (GET /admin/sessions)
func (s *Server) AdminSessionsListHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := CurrentUserFromContext(r.Context())
		if user == nil {
			http.Error(w, "User not found", http.StatusNotFound)
			return
		}

		sessionList, err := s.auth.Sessions().ListActive(r.Context(), user.AccountID)
		if err != nil {
			log.Err(err).Msg("Failed to list active sessions")
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		views := make([]sessionView, 0, len(sessionList))
		for _, session := range sessionList {
			views = append(views, sessionView{
				SessionID:    sessionFragment(session.ID),
				CreatedAt:    session.CreatedAt,
				LastAccessed: session.LastAccessed,
				IPAddress:    session.IPAddress,
				UserAgent:    session.UserAgent,
				Current:      session.ID == user.SessionID,
			})
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(views); err != nil {
			log.Err(err).Msg("Failed to encode session list")
		}
	}
}

// AdminSessionRevokeHandler invalidates sessions (POST /admin/sessions/revoke).
// With all=true every session of the caller's account is invalidated
// ("log out everywhere"); otherwise session_id addresses a single session by
// the fragment shown in the listing.
func (s *Server) AdminSessionRevokeHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := CurrentUserFromContext(r.Context())
		if user == nil {
			http.Error(w, "User not found", http.StatusNotFound)
			return
		}

		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form data", http.StatusBadRequest)
			return
		}

		if r.FormValue("all") == "true" {
			if err := s.auth.Sessions().InvalidateAll(r.Context(), user.AccountID); err != nil {
				log.Err(err).Msg("Failed to revoke all sessions")
				http.Error(w, "Internal server error", http.StatusInternalServerError)
				return
			}
			s.metrics.SessionsRevoked.Inc()

			// The caller's own session is gone too
			s.ClearSessionCookie(w, r)
			redirectSuccess(w, r, RouteLogin)
			return
		}

		fragment := r.FormValue("session_id")
		if fragment == "" {
			http.Error(w, "Missing session_id", http.StatusBadRequest)
			return
		}

		sessionList, err := s.auth.Sessions().ListActive(r.Context(), user.AccountID)
		if err != nil {
			log.Err(err).Msg("Failed to list active sessions")
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		var targetID string
		for _, session := range sessionList {
			if strings.HasPrefix(session.ID, fragment) {
				if targetID != "" {
					http.Error(w, "Ambiguous session", http.StatusBadRequest)
					return
				}
				targetID = session.ID
			}
		}
		if targetID == "" {
			http.Error(w, "Unknown session", http.StatusNotFound)
			return
		}

		if err := s.auth.Sessions().Invalidate(r.Context(), targetID); err != nil {
			log.Err(err).Msg("Failed to revoke session")
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}
		s.metrics.SessionsRevoked.Inc()

		// Revoking your own current session logs you out on the next request
		redirectSuccess(w, r, RouteAdminSessions)
	}
}
