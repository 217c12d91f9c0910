package sessions

import (
	"context"
	"time"
)

// Repo is the session store contract. The store owns the physical rows;
// the Manager owns the meaning of is_active and last_accessed even though
// the store performs the writes.
//
// GetActiveUnexpired and GetOldestActiveForAccount return
// errors.ErrSessionNotFound (wrapped) when no row matches. SetInactive on
// an already-inactive or missing session is not an error.
type Repo interface {
	Insert(ctx context.Context, session *Session) error
	GetActiveUnexpired(ctx context.Context, sessionID string) (*Session, error)
	UpdateLastAccessed(ctx context.Context, sessionID string, accessedAt time.Time) error
	SetInactive(ctx context.Context, sessionID string) error
	SetInactiveForAccount(ctx context.Context, accountID int) error
	DeleteExpiredOrInactive(ctx context.Context) (int64, error)
	ListActiveForAccount(ctx context.Context, accountID int) ([]*Session, error)
	CountActiveForAccount(ctx context.Context, accountID int) (int, error)
	GetOldestActiveForAccount(ctx context.Context, accountID int) (*Session, error)
}
