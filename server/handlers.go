package server

import (
	"net/http"
	"net/url"

	"github.com/rs/zerolog/log"

	"github.com/nicodev/portfolio-server/accounts"
)

const contentTypeHTML = "text/html; charset=utf-8"

// IndexHandler renders the home page
func (s *Server) IndexHandler() http.HandlerFunc {
	tmpl, err := ParseTemplate("index.html")
	if err != nil {
		panic("Failed to parse index template: " + err.Error())
	}

	return func(w http.ResponseWriter, r *http.Request) {
		data := map[string]interface{}{
			"AppName": s.config.GetAppName(),
		}

		w.Header().Set("Content-Type", contentTypeHTML)
		_ = tmpl.Execute(w, data)
	}
}

// LoginPageData contains data for rendering the login page
type LoginPageData struct {
	AppName  string
	Error    string
	Username string // Preserve username on error
}

// LoginPageHandler displays the login page (GET /login)
func (s *Server) LoginPageHandler() http.HandlerFunc {
	tmpl, err := ParseTemplate("login.html")
	if err != nil {
		panic("Failed to parse login template: " + err.Error())
	}

	return func(w http.ResponseWriter, r *http.Request) {
		data := LoginPageData{
			AppName:  s.config.GetAppName(),
			Error:    r.URL.Query().Get("error"),
			Username: r.URL.Query().Get("username"),
		}

		w.Header().Set("Content-Type", contentTypeHTML)
		if err := tmpl.Execute(w, data); err != nil {
			log.Err(err).Msg("Failed to render login template")
			http.Error(w, "Failed to render login page", http.StatusInternalServerError)
		}
	}
}

// LoginSubmissionHandler processes the login form submission (POST /auth/login)
func (s *Server) LoginSubmissionHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form data", http.StatusBadRequest)
			return
		}

		username := r.FormValue("username")
		password := r.FormValue("password")

		result, err := s.auth.Login(r.Context(), username, password, clientIP(r), r.UserAgent())
		if err != nil {
			log.Err(err).Msg("Login failed")
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		if !result.Success {
			s.metrics.LoginFailures.Inc()
			s.renderLoginError(w, r, result.Message, username)
			return
		}

		s.metrics.LoginSuccesses.Inc()
		s.SetSessionCookie(w, r, result.SessionID, int(s.config.GetSessionDuration().Seconds()))

		if result.User.RoleID == accounts.RoleAdmin {
			redirectSuccess(w, r, RouteAdminDashboard)
			return
		}
		redirectSuccess(w, r, "/")
	}
}

// LogoutHandler ends the caller's session (GET /auth/logout)
func (s *Server) LogoutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if sessionID, ok := ReadSessionCookie(r); ok {
			s.auth.Logout(r.Context(), sessionID)
			s.metrics.Logouts.Inc()
		}

		s.ClearSessionCookie(w, r)
		redirectSuccess(w, r, RouteLogin)
	}
}

// HealthHandler reports liveness
func (s *Server) HealthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	}
}

// renderLoginError redirects to the login page with an error message
func (s *Server) renderLoginError(w http.ResponseWriter, r *http.Request, errorMsg, username string) {
	redirectURL := RouteLogin + "?error=" + url.QueryEscape(errorMsg)
	if username != "" {
		redirectURL += "&username=" + url.QueryEscape(username)
	}

	redirectSuccess(w, r, redirectURL)
}

// redirectSuccess helper for htmx-aware redirects
func redirectSuccess(w http.ResponseWriter, r *http.Request, path string) {
	if isHTMXRequest(r) {
		w.Header().Set("HX-Redirect", path)
		w.WriteHeader(http.StatusNoContent) // 204 - no content, just redirect instruction
		return
	}
	http.Redirect(w, r, path, http.StatusSeeOther)
}

// isHTMXRequest checks if the request was initiated by HTMX
func isHTMXRequest(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}
