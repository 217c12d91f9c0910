package postgres_test

import (
	"context"
	"errors"
	"testing"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/require"

	"github.com/nicodev/portfolio-server/accounts"
	"github.com/nicodev/portfolio-server/accounts/postgres"
	apperrors "github.com/nicodev/portfolio-server/internal/errors"
)

func newMockRepo(t *testing.T) (pgxmock.PgxPoolIface, *postgres.AccountRepo) {
	t.Helper()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)

	return mock, postgres.NewAccountRepo(mock)
}

func TestAccountRepoGetByUsername(t *testing.T) {
	mock, repo := newMockRepo(t)

	rows := pgxmock.NewRows([]string{"account_id", "username", "password_hash", "role_id"}).
		AddRow(1, "nico", "$argon2id$...", 1)
	mock.ExpectQuery(`SELECT account_id, username, password_hash, role_id`).
		WithArgs("nico").
		WillReturnRows(rows)

	account, err := repo.GetByUsername(context.Background(), "nico")
	require.NoError(t, err)
	require.Equal(t, 1, account.ID)
	require.Equal(t, "nico", account.Username)
	require.Equal(t, accounts.RoleAdmin, account.RoleID)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAccountRepoGetByUsernameNotFound(t *testing.T) {
	mock, repo := newMockRepo(t)

	mock.ExpectQuery(`SELECT account_id, username, password_hash, role_id`).
		WithArgs("nobody").
		WillReturnRows(pgxmock.NewRows([]string{"account_id", "username", "password_hash", "role_id"}))

	_, err := repo.GetByUsername(context.Background(), "nobody")
	require.ErrorIs(t, err, apperrors.ErrAccountNotFound)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAccountRepoGetByUsernameStorageError(t *testing.T) {
	mock, repo := newMockRepo(t)

	mock.ExpectQuery(`SELECT account_id, username, password_hash, role_id`).
		WithArgs("nico").
		WillReturnError(errors.New("connection refused"))

	_, err := repo.GetByUsername(context.Background(), "nico")
	require.ErrorIs(t, err, apperrors.ErrStorage)
	require.NotErrorIs(t, err, apperrors.ErrAccountNotFound)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAccountRepoGetByID(t *testing.T) {
	mock, repo := newMockRepo(t)

	rows := pgxmock.NewRows([]string{"account_id", "username", "password_hash", "role_id"}).
		AddRow(7, "guest", "$argon2id$...", 3)
	mock.ExpectQuery(`SELECT account_id, username, password_hash, role_id`).
		WithArgs(7).
		WillReturnRows(rows)

	account, err := repo.GetByID(context.Background(), 7)
	require.NoError(t, err)
	require.Equal(t, accounts.RoleGuest, account.RoleID)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAccountRepoInsert(t *testing.T) {
	mock, repo := newMockRepo(t)

	mock.ExpectQuery(`INSERT INTO accounts`).
		WithArgs("nico", "$argon2id$...", 2).
		WillReturnRows(pgxmock.NewRows([]string{"account_id"}).AddRow(11))

	account, err := repo.Insert(context.Background(), "nico", "$argon2id$...", accounts.RoleUser)
	require.NoError(t, err)
	require.Equal(t, 11, account.ID)
	require.Equal(t, "nico", account.Username)
	require.Equal(t, accounts.RoleUser, account.RoleID)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAccountRepoInsertDuplicate(t *testing.T) {
	mock, repo := newMockRepo(t)

	mock.ExpectQuery(`INSERT INTO accounts`).
		WithArgs("nico", "$argon2id$...", 2).
		WillReturnError(errors.New(`duplicate key value violates unique constraint "accounts_username_key"`))

	_, err := repo.Insert(context.Background(), "nico", "$argon2id$...", accounts.RoleUser)
	require.ErrorIs(t, err, apperrors.ErrStorage)

	require.NoError(t, mock.ExpectationsWereMet())
}
