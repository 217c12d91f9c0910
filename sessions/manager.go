package sessions

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"

	apperrors "github.com/nicodev/portfolio-server/internal/errors"
)

// Manager creates, validates, renews, invalidates and garbage-collects
// session records. Every session moves Active -> Invalid exactly once;
// nothing transitions back. The backing store is the single source of
// truth, so each operation is an independent unit of work against it.
type Manager struct {
	repo    Repo
	policy  Policy
	nowTime func() time.Time // nowTime function (injectable for testing)

	createdCounter prometheus.Counter
	evictedCounter prometheus.Counter
}

// ManagerOption defines a function type to modify the Manager instance.
type ManagerOption func(*Manager)

// WithNowTime sets the now time function (primarily for testing)
func WithNowTime(nowFunc func() time.Time) ManagerOption {
	return func(m *Manager) {
		m.nowTime = nowFunc
	}
}

// WithCounters attaches lifecycle counters incremented on session creation
// and on oldest-session eviction. Nil counters are ignored.
func WithCounters(created, evicted prometheus.Counter) ManagerOption {
	return func(m *Manager) {
		m.createdCounter = created
		m.evictedCounter = evicted
	}
}

// NewManager initializes a new Manager with the given store and policy.
func NewManager(repo Repo, policy Policy, options ...ManagerOption) (*Manager, error) {
	if repo == nil {
		return nil, errors.New("[NewManager] session repo is required")
	}

	m := &Manager{
		repo:    repo,
		policy:  policy,
		nowTime: time.Now,
	}

	for _, opt := range options {
		opt(m)
	}

	return m, nil
}

// Policy returns the manager's active policy.
func (m *Manager) Policy() Policy {
	return m.policy
}

// Create issues a new session for the account. When the concurrent-session
// cap is reached the oldest active session is evicted first - the login
// itself always succeeds.
func (m *Manager) Create(ctx context.Context, accountID int, ipAddress, userAgent string) (*Session, error) {
	if m.policy.MaxConcurrent > 0 {
		if err := m.evictIfAtLimit(ctx, accountID); err != nil {
			return nil, errors.Wrap(err, "[Manager.Create] concurrent session limit")
		}
	}

	now := m.nowTime().UTC()
	session := &Session{
		ID:           uuid.New().String(),
		AccountID:    accountID,
		CreatedAt:    now,
		ExpiresAt:    now.Add(m.policy.Duration),
		LastAccessed: now,
		IPAddress:    ipAddress,
		UserAgent:    userAgent,
		IsActive:     true,
	}

	if err := m.repo.Insert(ctx, session); err != nil {
		return nil, errors.Wrap(err, "[Manager.Create] insert session")
	}

	if m.createdCounter != nil {
		m.createdCounter.Inc()
	}
	log.Info().Int("account_id", accountID).Str("ip", ipAddress).Msg("session created")
	return session, nil
}

// evictIfAtLimit invalidates the oldest active session when the account is
// at or above the concurrent session cap.
func (m *Manager) evictIfAtLimit(ctx context.Context, accountID int) error {
	count, err := m.repo.CountActiveForAccount(ctx, accountID)
	if err != nil {
		return errors.Wrap(err, "count active sessions")
	}
	if count < m.policy.MaxConcurrent {
		return nil
	}

	oldest, err := m.repo.GetOldestActiveForAccount(ctx, accountID)
	if err != nil {
		// Another request may have already evicted or expired it.
		if apperrors.Is(err, apperrors.ErrSessionNotFound) {
			return nil
		}
		return errors.Wrap(err, "find oldest session")
	}

	if err := m.repo.SetInactive(ctx, oldest.ID); err != nil {
		return errors.Wrap(err, "evict oldest session")
	}

	if m.evictedCounter != nil {
		m.evictedCounter.Inc()
	}
	log.Warn().Int("account_id", accountID).Int("active_sessions", count).
		Msg("concurrent session limit reached, evicted oldest session")
	return nil
}

// Validate checks a session against the binding and timeout policy and
// returns it when usable. Absent, inactive and expired sessions are all
// errors.ErrSessionNotFound. A binding mismatch or idle timeout also
// returns ErrSessionNotFound, and additionally invalidates the session so
// it can never become usable again - the caller cannot tell which check
// failed, by design.
//
// An empty stored or current IP/User-Agent means that binding dimension is
// not applicable, not a mismatch.
func (m *Manager) Validate(ctx context.Context, sessionID, currentIP, currentUserAgent string) (*Session, error) {
	if sessionID == "" {
		return nil, apperrors.ErrSessionNotFound
	}

	if m.policy.CleanupOnCheck {
		if _, err := m.CleanupExpired(ctx); err != nil {
			log.Debug().Err(err).Msg("opportunistic session cleanup failed")
		}
	}

	session, err := m.repo.GetActiveUnexpired(ctx, sessionID)
	if err != nil {
		if apperrors.Is(err, apperrors.ErrSessionNotFound) {
			return nil, err
		}
		return nil, errors.Wrap(err, "[Manager.Validate] get session")
	}

	now := m.nowTime().UTC()

	if reason := m.checkBinding(session, currentIP, currentUserAgent, now); reason != "" {
		log.Warn().Int("account_id", session.AccountID).Str("reason", reason).
			Msg("session failed security validation, invalidating")
		// Suspicious sessions must not remain usable.
		if err := m.repo.SetInactive(ctx, session.ID); err != nil {
			log.Error().Err(err).Int("account_id", session.AccountID).
				Msg("failed to invalidate suspicious session")
		}
		return nil, apperrors.ErrSessionNotFound
	}

	if m.policy.ExtendOnAccess {
		// Best effort: validation succeeds even if the touch fails.
		if err := m.repo.UpdateLastAccessed(ctx, session.ID, now); err != nil {
			log.Debug().Err(err).Msg("failed to update session last access time")
		} else {
			session.LastAccessed = now
		}
	}

	return session, nil
}

// checkBinding runs the contextual checks in order: IP binding, User-Agent
// binding, idle timeout. Returns an empty string when the session passes.
func (m *Manager) checkBinding(session *Session, currentIP, currentUserAgent string, now time.Time) string {
	if m.policy.BindToIP && session.IPAddress != "" && currentIP != "" && session.IPAddress != currentIP {
		return "ip mismatch"
	}
	if m.policy.BindToUserAgent && session.UserAgent != "" && currentUserAgent != "" && session.UserAgent != currentUserAgent {
		return "user agent mismatch"
	}
	if session.IdleAt(now) > m.policy.IdleTimeout {
		return "idle timeout"
	}
	return ""
}

// Invalidate marks a session inactive. Invalidating an already-inactive
// session is not an error.
func (m *Manager) Invalidate(ctx context.Context, sessionID string) error {
	if err := m.repo.SetInactive(ctx, sessionID); err != nil {
		return errors.Wrap(err, "[Manager.Invalidate] set inactive")
	}
	return nil
}

// InvalidateAll marks every session owned by the account inactive.
// Used for "log out everywhere" and after privilege changes.
func (m *Manager) InvalidateAll(ctx context.Context, accountID int) error {
	if err := m.repo.SetInactiveForAccount(ctx, accountID); err != nil {
		return errors.Wrap(err, "[Manager.InvalidateAll] set inactive for account")
	}
	log.Info().Int("account_id", accountID).Msg("all sessions invalidated")
	return nil
}

// Renew invalidates the old session and issues a fresh one for the same
// account. The two steps are not atomic: a crash in between leaves the old
// session invalidated and no new one, which only forces a re-login.
func (m *Manager) Renew(ctx context.Context, oldSessionID string, accountID int, ipAddress, userAgent string) (*Session, error) {
	if err := m.Invalidate(ctx, oldSessionID); err != nil {
		return nil, errors.Wrap(err, "[Manager.Renew] invalidate old session")
	}
	session, err := m.Create(ctx, accountID, ipAddress, userAgent)
	if err != nil {
		return nil, errors.Wrap(err, "[Manager.Renew] create replacement session")
	}
	return session, nil
}

// CleanupExpired physically deletes rows that are expired or inactive.
// Live rows are never touched: the validation query already excludes dead
// rows, so staleness here is bounded only by request traffic.
func (m *Manager) CleanupExpired(ctx context.Context) (int64, error) {
	deleted, err := m.repo.DeleteExpiredOrInactive(ctx)
	if err != nil {
		return 0, errors.Wrap(err, "[Manager.CleanupExpired] delete expired sessions")
	}
	if deleted > 0 {
		log.Info().Int64("deleted", deleted).Msg("cleaned up expired sessions")
	}
	return deleted, nil
}

// CountActive returns the number of active, unexpired sessions for the
// account.
func (m *Manager) CountActive(ctx context.Context, accountID int) (int, error) {
	count, err := m.repo.CountActiveForAccount(ctx, accountID)
	if err != nil {
		return 0, errors.Wrap(err, "[Manager.CountActive] count sessions")
	}
	return count, nil
}

// ListActive returns the account's active sessions, most recently accessed
// first.
func (m *Manager) ListActive(ctx context.Context, accountID int) ([]*Session, error) {
	list, err := m.repo.ListActiveForAccount(ctx, accountID)
	if err != nil {
		return nil, errors.Wrap(err, "[Manager.ListActive] list sessions")
	}
	return list, nil
}
