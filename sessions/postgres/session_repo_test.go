package postgres_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/require"

	apperrors "github.com/nicodev/portfolio-server/internal/errors"
	"github.com/nicodev/portfolio-server/sessions"
	"github.com/nicodev/portfolio-server/sessions/postgres"
)

var sessionColumns = []string{
	"session_id", "account_id", "created_at", "expires_at",
	"last_accessed", "ip_address", "user_agent", "is_active",
}

func newMockRepo(t *testing.T) (pgxmock.PgxPoolIface, *postgres.SessionRepo) {
	t.Helper()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)

	return mock, postgres.NewSessionRepo(mock)
}

func testSession(id string) *sessions.Session {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	return &sessions.Session{
		ID:           id,
		AccountID:    42,
		CreatedAt:    now,
		ExpiresAt:    now.Add(24 * time.Hour),
		LastAccessed: now,
		IPAddress:    "203.0.113.10",
		UserAgent:    "Mozilla/5.0 (test)",
		IsActive:     true,
	}
}

func sessionRow(s *sessions.Session) *pgxmock.Rows {
	return pgxmock.NewRows(sessionColumns).
		AddRow(s.ID, s.AccountID, s.CreatedAt, s.ExpiresAt, s.LastAccessed, s.IPAddress, s.UserAgent, s.IsActive)
}

func TestSessionRepoInsert(t *testing.T) {
	mock, repo := newMockRepo(t)
	session := testSession("sess-1")

	mock.ExpectExec(`INSERT INTO sessions`).
		WithArgs(session.ID, session.AccountID, session.CreatedAt, session.ExpiresAt,
			session.LastAccessed, session.IPAddress, session.UserAgent, session.IsActive).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	require.NoError(t, repo.Insert(context.Background(), session))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionRepoGetActiveUnexpired(t *testing.T) {
	mock, repo := newMockRepo(t)
	session := testSession("sess-1")

	mock.ExpectQuery(`SELECT session_id, account_id, created_at, expires_at`).
		WithArgs("sess-1").
		WillReturnRows(sessionRow(session))

	got, err := repo.GetActiveUnexpired(context.Background(), "sess-1")
	require.NoError(t, err)
	require.Equal(t, session.ID, got.ID)
	require.Equal(t, session.AccountID, got.AccountID)
	require.True(t, got.IsActive)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionRepoGetActiveUnexpiredNotFound(t *testing.T) {
	mock, repo := newMockRepo(t)

	mock.ExpectQuery(`SELECT session_id, account_id, created_at, expires_at`).
		WithArgs("sess-1").
		WillReturnRows(pgxmock.NewRows(sessionColumns))

	_, err := repo.GetActiveUnexpired(context.Background(), "sess-1")
	require.ErrorIs(t, err, apperrors.ErrSessionNotFound)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionRepoGetActiveUnexpiredStorageError(t *testing.T) {
	mock, repo := newMockRepo(t)

	mock.ExpectQuery(`SELECT session_id, account_id, created_at, expires_at`).
		WithArgs("sess-1").
		WillReturnError(errors.New("connection refused"))

	_, err := repo.GetActiveUnexpired(context.Background(), "sess-1")
	require.ErrorIs(t, err, apperrors.ErrStorage)
	require.NotErrorIs(t, err, apperrors.ErrSessionNotFound)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionRepoUpdateLastAccessed(t *testing.T) {
	mock, repo := newMockRepo(t)
	accessedAt := time.Date(2026, 3, 1, 12, 30, 0, 0, time.UTC)

	mock.ExpectExec(`UPDATE sessions SET last_accessed`).
		WithArgs("sess-1", accessedAt).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	require.NoError(t, repo.UpdateLastAccessed(context.Background(), "sess-1", accessedAt))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionRepoSetInactive(t *testing.T) {
	mock, repo := newMockRepo(t)

	mock.ExpectExec(`UPDATE sessions SET is_active = FALSE`).
		WithArgs("sess-1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	require.NoError(t, repo.SetInactive(context.Background(), "sess-1"))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionRepoSetInactiveAffectsNoRows(t *testing.T) {
	mock, repo := newMockRepo(t)

	mock.ExpectExec(`UPDATE sessions SET is_active = FALSE`).
		WithArgs("gone").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	// Invalidation is idempotent: zero affected rows is not an error
	require.NoError(t, repo.SetInactive(context.Background(), "gone"))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionRepoDeleteExpiredOrInactive(t *testing.T) {
	mock, repo := newMockRepo(t)

	mock.ExpectExec(`DELETE FROM sessions`).
		WillReturnResult(pgxmock.NewResult("DELETE", 3))

	deleted, err := repo.DeleteExpiredOrInactive(context.Background())
	require.NoError(t, err)
	require.Equal(t, int64(3), deleted)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionRepoListActiveForAccount(t *testing.T) {
	mock, repo := newMockRepo(t)
	first := testSession("sess-1")
	second := testSession("sess-2")

	rows := pgxmock.NewRows(sessionColumns).
		AddRow(first.ID, first.AccountID, first.CreatedAt, first.ExpiresAt,
			first.LastAccessed, first.IPAddress, first.UserAgent, first.IsActive).
		AddRow(second.ID, second.AccountID, second.CreatedAt, second.ExpiresAt,
			second.LastAccessed, second.IPAddress, second.UserAgent, second.IsActive)

	mock.ExpectQuery(`SELECT session_id, account_id, created_at, expires_at`).
		WithArgs(42).
		WillReturnRows(rows)

	list, err := repo.ListActiveForAccount(context.Background(), 42)
	require.NoError(t, err)
	require.Len(t, list, 2)
	require.Equal(t, "sess-1", list[0].ID)
	require.Equal(t, "sess-2", list[1].ID)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionRepoCountActiveForAccount(t *testing.T) {
	mock, repo := newMockRepo(t)

	mock.ExpectQuery(`SELECT COUNT`).
		WithArgs(42).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(5))

	count, err := repo.CountActiveForAccount(context.Background(), 42)
	require.NoError(t, err)
	require.Equal(t, 5, count)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionRepoGetOldestActiveForAccount(t *testing.T) {
	mock, repo := newMockRepo(t)
	session := testSession("sess-oldest")

	mock.ExpectQuery(`SELECT session_id, account_id, created_at, expires_at`).
		WithArgs(42).
		WillReturnRows(sessionRow(session))

	got, err := repo.GetOldestActiveForAccount(context.Background(), 42)
	require.NoError(t, err)
	require.Equal(t, "sess-oldest", got.ID)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionRepoGetOldestActiveForAccountNone(t *testing.T) {
	mock, repo := newMockRepo(t)

	mock.ExpectQuery(`SELECT session_id, account_id, created_at, expires_at`).
		WithArgs(42).
		WillReturnRows(pgxmock.NewRows(sessionColumns))

	_, err := repo.GetOldestActiveForAccount(context.Background(), 42)
	require.ErrorIs(t, err, apperrors.ErrSessionNotFound)

	require.NoError(t, mock.ExpectationsWereMet())
}
