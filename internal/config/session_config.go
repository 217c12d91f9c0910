package config

import (
	"strconv"
	"time"
)

// SessionConfig exposes the session policy knobs. Defaults follow OWASP
// session management guidance: short idle timeout, bounded absolute
// lifetime, a concurrent session cap, and client binding.
type SessionConfig interface {
	GetSessionDuration() time.Duration
	GetSessionIdleTimeout() time.Duration
	GetMaxConcurrentSessions() int
	GetBindSessionToIP() bool
	GetBindSessionToUserAgent() bool
	GetExtendSessionOnAccess() bool
	GetCleanupOnValidate() bool
}

type Sessions struct{}

var _ SessionConfig = Sessions{}

func (Sessions) GetSessionDuration() time.Duration {
	return time.Duration(getEnvInt("SESSION_DURATION_HOURS", 24)) * time.Hour
}

func (Sessions) GetSessionIdleTimeout() time.Duration {
	return time.Duration(getEnvInt("SESSION_IDLE_TIMEOUT_MINUTES", 30)) * time.Minute
}

func (Sessions) GetMaxConcurrentSessions() int {
	return getEnvInt("SESSION_MAX_CONCURRENT", 5)
}

func (Sessions) GetBindSessionToIP() bool {
	return getEnvBool("SESSION_BIND_IP", true)
}

func (Sessions) GetBindSessionToUserAgent() bool {
	return getEnvBool("SESSION_BIND_USER_AGENT", true)
}

func (Sessions) GetExtendSessionOnAccess() bool {
	return getEnvBool("SESSION_EXTEND_ON_ACCESS", true)
}

func (Sessions) GetCleanupOnValidate() bool {
	return getEnvBool("SESSION_CLEANUP_ON_VALIDATE", true)
}

func getEnvInt(envVar string, defaultValue int) int {
	v := GetEnv(envVar, "")
	if v == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return defaultValue
	}
	return n
}

func getEnvBool(envVar string, defaultValue bool) bool {
	v := GetEnv(envVar, "")
	if v == "" {
		return defaultValue
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return defaultValue
	}
	return b
}
