package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pkg/errors"

	"github.com/nicodev/portfolio-server/accounts"
	apperrors "github.com/nicodev/portfolio-server/internal/errors"
)

// DB is the subset of pgxpool.Pool the repository uses. Satisfied by
// *pgxpool.Pool in production and pgxmock pools in tests.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

var _ accounts.Repo = (*AccountRepo)(nil)

// AccountRepo implements accounts.Repo using PostgreSQL.
type AccountRepo struct {
	db DB
}

// NewAccountRepo creates a new AccountRepo.
func NewAccountRepo(db DB) *AccountRepo {
	return &AccountRepo{db: db}
}

func (r *AccountRepo) GetByUsername(ctx context.Context, username string) (*accounts.Account, error) {
	row := r.db.QueryRow(ctx, `
		SELECT account_id, username, password_hash, role_id
		FROM accounts
		WHERE username = $1
	`, username)

	account, err := scanAccount(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, errors.Wrapf(apperrors.ErrAccountNotFound, "[GetByUsername] username %q", username)
	}
	if err != nil {
		return nil, errors.Wrapf(apperrors.ErrStorage, "[GetByUsername] query account: %v", err)
	}
	return account, nil
}

func (r *AccountRepo) GetByID(ctx context.Context, id int) (*accounts.Account, error) {
	row := r.db.QueryRow(ctx, `
		SELECT account_id, username, password_hash, role_id
		FROM accounts
		WHERE account_id = $1
	`, id)

	account, err := scanAccount(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, errors.Wrapf(apperrors.ErrAccountNotFound, "[GetByID] account %d", id)
	}
	if err != nil {
		return nil, errors.Wrapf(apperrors.ErrStorage, "[GetByID] query account: %v", err)
	}
	return account, nil
}

// Insert stores a new account and returns it with the store-assigned id.
func (r *AccountRepo) Insert(ctx context.Context, username, passwordHash string, role accounts.Role) (*accounts.Account, error) {
	account := &accounts.Account{
		Username:     username,
		PasswordHash: passwordHash,
		RoleID:       role,
	}

	err := r.db.QueryRow(ctx, `
		INSERT INTO accounts (username, password_hash, role_id)
		VALUES ($1, $2, $3)
		RETURNING account_id
	`, username, passwordHash, int(role)).Scan(&account.ID)
	if err != nil {
		return nil, errors.Wrapf(apperrors.ErrStorage, "[Insert] insert account: %v", err)
	}

	return account, nil
}

func scanAccount(row pgx.Row) (*accounts.Account, error) {
	var (
		account accounts.Account
		roleID  int
	)
	if err := row.Scan(&account.ID, &account.Username, &account.PasswordHash, &roleID); err != nil {
		return nil, err
	}
	account.RoleID = accounts.Role(roleID)
	return &account, nil
}
