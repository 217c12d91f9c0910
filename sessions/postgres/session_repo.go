package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pkg/errors"

	apperrors "github.com/nicodev/portfolio-server/internal/errors"
	"github.com/nicodev/portfolio-server/sessions"
)

// DB is the subset of pgxpool.Pool the repository uses. Satisfied by
// *pgxpool.Pool in production and pgxmock pools in tests.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

const sessionColumns = "session_id, account_id, created_at, expires_at, last_accessed, ip_address, user_agent, is_active"

var _ sessions.Repo = (*SessionRepo)(nil)

// SessionRepo implements sessions.Repo using PostgreSQL. The active and
// unexpired filters live in the queries themselves, so callers never see
// rows the session manager would have to re-check for liveness.
type SessionRepo struct {
	db DB
}

// NewSessionRepo creates a new SessionRepo.
func NewSessionRepo(db DB) *SessionRepo {
	return &SessionRepo{db: db}
}

func (r *SessionRepo) Insert(ctx context.Context, session *sessions.Session) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO sessions (`+sessionColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`,
		session.ID,
		session.AccountID,
		session.CreatedAt,
		session.ExpiresAt,
		session.LastAccessed,
		session.IPAddress,
		session.UserAgent,
		session.IsActive,
	)
	if err != nil {
		return errors.Wrapf(apperrors.ErrStorage, "[Insert] insert session: %v", err)
	}
	return nil
}

func (r *SessionRepo) GetActiveUnexpired(ctx context.Context, sessionID string) (*sessions.Session, error) {
	row := r.db.QueryRow(ctx, `
		SELECT `+sessionColumns+`
		FROM sessions
		WHERE session_id = $1 AND is_active AND expires_at > NOW()
	`, sessionID)

	session, err := scanSession(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, errors.Wrap(apperrors.ErrSessionNotFound, "[GetActiveUnexpired]")
	}
	if err != nil {
		return nil, errors.Wrapf(apperrors.ErrStorage, "[GetActiveUnexpired] query session: %v", err)
	}
	return session, nil
}

func (r *SessionRepo) UpdateLastAccessed(ctx context.Context, sessionID string, accessedAt time.Time) error {
	_, err := r.db.Exec(ctx, `
		UPDATE sessions SET last_accessed = $2
		WHERE session_id = $1 AND is_active
	`, sessionID, accessedAt)
	if err != nil {
		return errors.Wrapf(apperrors.ErrStorage, "[UpdateLastAccessed] update session: %v", err)
	}
	return nil
}

// SetInactive marks a session inactive. Affecting zero rows is a valid
// outcome: invalidation is idempotent.
func (r *SessionRepo) SetInactive(ctx context.Context, sessionID string) error {
	_, err := r.db.Exec(ctx, `
		UPDATE sessions SET is_active = FALSE
		WHERE session_id = $1
	`, sessionID)
	if err != nil {
		return errors.Wrapf(apperrors.ErrStorage, "[SetInactive] update session: %v", err)
	}
	return nil
}

func (r *SessionRepo) SetInactiveForAccount(ctx context.Context, accountID int) error {
	_, err := r.db.Exec(ctx, `
		UPDATE sessions SET is_active = FALSE
		WHERE account_id = $1
	`, accountID)
	if err != nil {
		return errors.Wrapf(apperrors.ErrStorage, "[SetInactiveForAccount] update sessions: %v", err)
	}
	return nil
}

func (r *SessionRepo) DeleteExpiredOrInactive(ctx context.Context) (int64, error) {
	result, err := r.db.Exec(ctx, `
		DELETE FROM sessions
		WHERE expires_at < NOW() OR is_active = FALSE
	`)
	if err != nil {
		return 0, errors.Wrapf(apperrors.ErrStorage, "[DeleteExpiredOrInactive] delete sessions: %v", err)
	}
	return result.RowsAffected(), nil
}

func (r *SessionRepo) ListActiveForAccount(ctx context.Context, accountID int) ([]*sessions.Session, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+sessionColumns+`
		FROM sessions
		WHERE account_id = $1 AND is_active AND expires_at > NOW()
		ORDER BY last_accessed DESC
	`, accountID)
	if err != nil {
		return nil, errors.Wrapf(apperrors.ErrStorage, "[ListActiveForAccount] query sessions: %v", err)
	}
	defer rows.Close()

	var list []*sessions.Session
	for rows.Next() {
		session, err := scanSession(rows)
		if err != nil {
			return nil, errors.Wrapf(apperrors.ErrStorage, "[ListActiveForAccount] scan session: %v", err)
		}
		list = append(list, session)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrapf(apperrors.ErrStorage, "[ListActiveForAccount] iterate sessions: %v", err)
	}
	return list, nil
}

func (r *SessionRepo) CountActiveForAccount(ctx context.Context, accountID int) (int, error) {
	var count int
	err := r.db.QueryRow(ctx, `
		SELECT COUNT(*)
		FROM sessions
		WHERE account_id = $1 AND is_active AND expires_at > NOW()
	`, accountID).Scan(&count)
	if err != nil {
		return 0, errors.Wrapf(apperrors.ErrStorage, "[CountActiveForAccount] count sessions: %v", err)
	}
	return count, nil
}

func (r *SessionRepo) GetOldestActiveForAccount(ctx context.Context, accountID int) (*sessions.Session, error) {
	row := r.db.QueryRow(ctx, `
		SELECT `+sessionColumns+`
		FROM sessions
		WHERE account_id = $1 AND is_active AND expires_at > NOW()
		ORDER BY created_at ASC
		LIMIT 1
	`, accountID)

	session, err := scanSession(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, errors.Wrap(apperrors.ErrSessionNotFound, "[GetOldestActiveForAccount]")
	}
	if err != nil {
		return nil, errors.Wrapf(apperrors.ErrStorage, "[GetOldestActiveForAccount] query session: %v", err)
	}
	return session, nil
}

func scanSession(row pgx.Row) (*sessions.Session, error) {
	var session sessions.Session
	err := row.Scan(
		&session.ID,
		&session.AccountID,
		&session.CreatedAt,
		&session.ExpiresAt,
		&session.LastAccessed,
		&session.IPAddress,
		&session.UserAgent,
		&session.IsActive,
	)
	if err != nil {
		return nil, err
	}
	return &session, nil
}
