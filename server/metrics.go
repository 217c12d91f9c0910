package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus counters exposed on /metrics. The session
// lifecycle counters are incremented by the session manager via
// sessions.WithCounters.
type Metrics struct {
	LoginSuccesses  prometheus.Counter
	LoginFailures   prometheus.Counter
	Logouts         prometheus.Counter
	SessionsRevoked prometheus.Counter
	SessionsCreated prometheus.Counter
	SessionsEvicted prometheus.Counter
}

// NewMetrics registers the server counters with the given registerer.
// Pass prometheus.DefaultRegisterer in production.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		LoginSuccesses: factory.NewCounter(prometheus.CounterOpts{
			Name: "auth_login_successes_total",
			Help: "Number of successful logins.",
		}),
		LoginFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "auth_login_failures_total",
			Help: "Number of rejected login attempts.",
		}),
		Logouts: factory.NewCounter(prometheus.CounterOpts{
			Name: "auth_logouts_total",
			Help: "Number of logouts.",
		}),
		SessionsRevoked: factory.NewCounter(prometheus.CounterOpts{
			Name: "auth_sessions_revoked_total",
			Help: "Number of sessions revoked through the admin UI.",
		}),
		SessionsCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "auth_sessions_created_total",
			Help: "Number of sessions issued.",
		}),
		SessionsEvicted: factory.NewCounter(prometheus.CounterOpts{
			Name: "auth_sessions_evicted_total",
			Help: "Number of sessions evicted by the concurrent session cap.",
		}),
	}
}
