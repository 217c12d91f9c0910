package server

import (
	"net/http"
)

// sessionCookieName is the name of the cookie carrying the session identifier
const sessionCookieName = "session_id"

func (s *Server) SetSessionCookie(w http.ResponseWriter, r *http.Request, sessionID string, maxAge int) {
	isSecure := getScheme(r) == "https"

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    sessionID,
		Path:     "/",
		HttpOnly: true,
		Secure:   isSecure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   maxAge,
	})
}

// ClearSessionCookie expires the session cookie on the client.
func (s *Server) ClearSessionCookie(w http.ResponseWriter, r *http.Request) {
	s.SetSessionCookie(w, r, "", -1)
}

// ReadSessionCookie returns the session ID from the request cookie, if present.
func ReadSessionCookie(r *http.Request) (string, bool) {
	cookie, err := r.Cookie(sessionCookieName)
	if err != nil || cookie.Value == "" {
		return "", false
	}
	return cookie.Value, true
}
