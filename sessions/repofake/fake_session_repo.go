package fakesessionrepo

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/nicodev/portfolio-server/internal/errors"
	"github.com/nicodev/portfolio-server/sessions"
)

var _ sessions.Repo = (*FakeSessionRepo)(nil)

// FakeSessionRepo is an in-memory session store mirroring the SQL
// adapter's filtering semantics. NowTime is exported so tests can freeze
// the clock used by the active/unexpired filters.
type FakeSessionRepo struct {
	sessions map[string]*sessions.Session
	lock     sync.RWMutex

	NowTime func() time.Time
}

func NewFakeSessionRepo() *FakeSessionRepo {
	return &FakeSessionRepo{
		sessions: make(map[string]*sessions.Session),
		NowTime:  time.Now,
	}
}

func (sr *FakeSessionRepo) Insert(_ context.Context, session *sessions.Session) error {
	sr.lock.Lock()
	defer sr.lock.Unlock()

	stored := *session
	sr.sessions[session.ID] = &stored
	return nil
}

func (sr *FakeSessionRepo) GetActiveUnexpired(_ context.Context, sessionID string) (*sessions.Session, error) {
	sr.lock.RLock()
	defer sr.lock.RUnlock()

	stored, ok := sr.sessions[sessionID]
	if !ok || !sr.usable(stored) {
		return nil, errors.ErrSessionNotFound
	}
	session := *stored
	return &session, nil
}

func (sr *FakeSessionRepo) UpdateLastAccessed(_ context.Context, sessionID string, accessedAt time.Time) error {
	sr.lock.Lock()
	defer sr.lock.Unlock()

	if stored, ok := sr.sessions[sessionID]; ok && stored.IsActive {
		stored.LastAccessed = accessedAt
	}
	return nil
}

func (sr *FakeSessionRepo) SetInactive(_ context.Context, sessionID string) error {
	sr.lock.Lock()
	defer sr.lock.Unlock()

	if stored, ok := sr.sessions[sessionID]; ok {
		stored.IsActive = false
	}
	return nil
}

func (sr *FakeSessionRepo) SetInactiveForAccount(_ context.Context, accountID int) error {
	sr.lock.Lock()
	defer sr.lock.Unlock()

	for _, stored := range sr.sessions {
		if stored.AccountID == accountID {
			stored.IsActive = false
		}
	}
	return nil
}

func (sr *FakeSessionRepo) DeleteExpiredOrInactive(_ context.Context) (int64, error) {
	sr.lock.Lock()
	defer sr.lock.Unlock()

	now := sr.NowTime().UTC()
	var deleted int64
	for id, stored := range sr.sessions {
		if !stored.IsActive || !now.Before(stored.ExpiresAt) {
			delete(sr.sessions, id)
			deleted++
		}
	}
	return deleted, nil
}

func (sr *FakeSessionRepo) ListActiveForAccount(_ context.Context, accountID int) ([]*sessions.Session, error) {
	sr.lock.RLock()
	defer sr.lock.RUnlock()

	list := make([]*sessions.Session, 0)
	for _, stored := range sr.sessions {
		if stored.AccountID == accountID && sr.usable(stored) {
			session := *stored
			list = append(list, &session)
		}
	}
	sort.Slice(list, func(i, j int) bool {
		return list[i].LastAccessed.After(list[j].LastAccessed)
	})
	return list, nil
}

func (sr *FakeSessionRepo) CountActiveForAccount(ctx context.Context, accountID int) (int, error) {
	list, err := sr.ListActiveForAccount(ctx, accountID)
	if err != nil {
		return 0, err
	}
	return len(list), nil
}

func (sr *FakeSessionRepo) GetOldestActiveForAccount(_ context.Context, accountID int) (*sessions.Session, error) {
	sr.lock.RLock()
	defer sr.lock.RUnlock()

	var oldest *sessions.Session
	for _, stored := range sr.sessions {
		if stored.AccountID != accountID || !sr.usable(stored) {
			continue
		}
		if oldest == nil || stored.CreatedAt.Before(oldest.CreatedAt) {
			oldest = stored
		}
	}
	if oldest == nil {
		return nil, errors.ErrSessionNotFound
	}
	session := *oldest
	return &session, nil
}

// Get returns a session regardless of its state. Test helper only.
func (sr *FakeSessionRepo) Get(sessionID string) (*sessions.Session, bool) {
	sr.lock.RLock()
	defer sr.lock.RUnlock()

	stored, ok := sr.sessions[sessionID]
	if !ok {
		return nil, false
	}
	session := *stored
	return &session, true
}

func (sr *FakeSessionRepo) usable(s *sessions.Session) bool {
	return s.IsActive && sr.NowTime().UTC().Before(s.ExpiresAt)
}
