package sessions

import "time"

// Session is a server-side session record. The ID is the sole credential
// the client presents on each request: an opaque random token with no
// structure the client is expected to parse.
type Session struct {
	ID           string    `json:"session_id"`
	AccountID    int       `json:"account_id"`
	CreatedAt    time.Time `json:"created_at"`
	ExpiresAt    time.Time `json:"expires_at"`
	LastAccessed time.Time `json:"last_accessed"`
	IPAddress    string    `json:"ip_address,omitempty"` // captured at creation, empty if unknown
	UserAgent    string    `json:"user_agent,omitempty"` // captured at creation, empty if unknown
	IsActive     bool      `json:"is_active"`
}

// IsExpiredAt returns true if the session's absolute expiry has passed at
// the given time.
func (s *Session) IsExpiredAt(t time.Time) bool {
	return !t.Before(s.ExpiresAt)
}

// IdleAt returns how long the session has been idle at the given time.
func (s *Session) IdleAt(t time.Time) time.Duration {
	return t.Sub(s.LastAccessed)
}

// Policy holds the session lifecycle and binding configuration.
type Policy struct {
	Duration        time.Duration // absolute session lifetime
	IdleTimeout     time.Duration // maximum gap between accesses
	MaxConcurrent   int           // active sessions per account; 0 disables the cap
	BindToIP        bool          // invalidate on IP change
	BindToUserAgent bool          // invalidate on User-Agent change
	ExtendOnAccess  bool          // bump last_accessed on successful validation
	CleanupOnCheck  bool          // opportunistically purge dead rows before validation
}

// DefaultPolicy returns the default session policy: 24 hour sessions,
// 30 minute idle timeout, at most 5 concurrent sessions per account, and
// both client bindings enabled.
func DefaultPolicy() Policy {
	return Policy{
		Duration:        24 * time.Hour,
		IdleTimeout:     30 * time.Minute,
		MaxConcurrent:   5,
		BindToIP:        true,
		BindToUserAgent: true,
		ExtendOnAccess:  true,
		CleanupOnCheck:  true,
	}
}
