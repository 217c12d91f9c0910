package auth_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nicodev/portfolio-server/accounts"
	fakeaccountrepo "github.com/nicodev/portfolio-server/accounts/repofake"
	"github.com/nicodev/portfolio-server/auth"
	apperrors "github.com/nicodev/portfolio-server/internal/errors"
	"github.com/nicodev/portfolio-server/sessions"
	fakesessionrepo "github.com/nicodev/portfolio-server/sessions/repofake"
)

const (
	testUsername = "nico"
	testPassword = "correct horse battery staple"
	testIP       = "203.0.113.10"
	testAgent    = "Mozilla/5.0 (test)"
)

// testFixture holds all test dependencies
type testFixture struct {
	accountRepo *fakeaccountrepo.FakeAccountRepo
	sessionRepo *fakesessionrepo.FakeSessionRepo
	service     *auth.Service
}

func setupTestFixture(t *testing.T) *testFixture {
	t.Helper()

	ar := fakeaccountrepo.NewFakeAccountRepo()
	sr := fakesessionrepo.NewFakeSessionRepo()

	manager, err := sessions.NewManager(sr, sessions.DefaultPolicy())
	require.NoError(t, err)

	service, err := auth.NewService(ar, manager, auth.NewArgon2idHasher())
	require.NoError(t, err)

	return &testFixture{
		accountRepo: ar,
		sessionRepo: sr,
		service:     service,
	}
}

// createTestAccount hashes the password and stores an account
func (f *testFixture) createTestAccount(t *testing.T, username, password string, role accounts.Role) *accounts.Account {
	t.Helper()

	passwordHash, err := f.service.HashPassword(password)
	require.NoError(t, err)

	account, err := f.accountRepo.Insert(context.Background(), username, passwordHash, role)
	require.NoError(t, err)
	return account
}

func TestNewServiceValidatesDependencies(t *testing.T) {
	sr := fakesessionrepo.NewFakeSessionRepo()
	manager, err := sessions.NewManager(sr, sessions.DefaultPolicy())
	require.NoError(t, err)

	_, err = auth.NewService(nil, manager, auth.NewArgon2idHasher())
	require.Error(t, err)

	_, err = auth.NewService(fakeaccountrepo.NewFakeAccountRepo(), nil, auth.NewArgon2idHasher())
	require.Error(t, err)

	_, err = auth.NewService(fakeaccountrepo.NewFakeAccountRepo(), manager, nil)
	require.Error(t, err)
}

func TestLoginSuccess(t *testing.T) {
	f := setupTestFixture(t)
	account := f.createTestAccount(t, testUsername, testPassword, accounts.RoleAdmin)

	result, err := f.service.Login(context.Background(), testUsername, testPassword, testIP, testAgent)
	require.NoError(t, err)
	require.True(t, result.Success)
	require.NotEmpty(t, result.SessionID)
	require.NotNil(t, result.User)
	require.Equal(t, account.ID, result.User.AccountID)
	require.Equal(t, testUsername, result.User.Username)
	require.Equal(t, accounts.RoleAdmin, result.User.RoleID)
}

func TestLoginUnknownUser(t *testing.T) {
	f := setupTestFixture(t)

	result, err := f.service.Login(context.Background(), "nobody", testPassword, testIP, testAgent)
	require.NoError(t, err)
	require.False(t, result.Success)
	require.Equal(t, auth.GenericLoginFailureMessage, result.Message)
	require.Empty(t, result.SessionID)
}

func TestLoginWrongPassword(t *testing.T) {
	f := setupTestFixture(t)
	f.createTestAccount(t, testUsername, testPassword, accounts.RoleUser)

	result, err := f.service.Login(context.Background(), testUsername, "wrong password", testIP, testAgent)
	require.NoError(t, err)
	require.False(t, result.Success)

	// Wrong password and unknown user are indistinguishable to the caller
	require.Equal(t, auth.GenericLoginFailureMessage, result.Message)
}

func TestLoginEmptyCredentials(t *testing.T) {
	f := setupTestFixture(t)
	f.createTestAccount(t, testUsername, testPassword, accounts.RoleUser)

	for _, tc := range []struct{ username, password string }{
		{"", testPassword},
		{testUsername, ""},
		{"", ""},
	} {
		result, err := f.service.Login(context.Background(), tc.username, tc.password, testIP, testAgent)
		require.NoError(t, err)
		require.False(t, result.Success)
		require.Equal(t, auth.GenericLoginFailureMessage, result.Message)
	}
}

func TestCurrentUserLifecycle(t *testing.T) {
	f := setupTestFixture(t)
	ctx := context.Background()
	account := f.createTestAccount(t, testUsername, testPassword, accounts.RoleUser)

	result, err := f.service.Login(ctx, testUsername, testPassword, testIP, testAgent)
	require.NoError(t, err)
	require.True(t, result.Success)

	user, err := f.service.CurrentUserWithContext(ctx, result.SessionID, testIP, testAgent)
	require.NoError(t, err)
	require.NotNil(t, user)
	require.Equal(t, account.ID, user.AccountID)
	require.Equal(t, result.SessionID, user.SessionID)

	f.service.Logout(ctx, result.SessionID)

	// After logout the session resolves to no user, not an error
	user, err = f.service.CurrentUserWithContext(ctx, result.SessionID, testIP, testAgent)
	require.NoError(t, err)
	require.Nil(t, user)
}

func TestCurrentUserRejectsHijackedSession(t *testing.T) {
	f := setupTestFixture(t)
	ctx := context.Background()
	f.createTestAccount(t, testUsername, testPassword, accounts.RoleUser)

	result, err := f.service.Login(ctx, testUsername, testPassword, testIP, testAgent)
	require.NoError(t, err)
	require.True(t, result.Success)

	user, err := f.service.CurrentUserWithContext(ctx, result.SessionID, "198.51.100.99", testAgent)
	require.NoError(t, err)
	require.Nil(t, user)

	// The stolen cookie is burned for the legitimate client too
	user, err = f.service.CurrentUserWithContext(ctx, result.SessionID, testIP, testAgent)
	require.NoError(t, err)
	require.Nil(t, user)
}

func TestCurrentUserUnknownSession(t *testing.T) {
	f := setupTestFixture(t)

	user, err := f.service.CurrentUser(context.Background(), "no-such-session")
	require.NoError(t, err)
	require.Nil(t, user)
}

// failingAccountRepo behaves like an unreachable backing store
type failingAccountRepo struct {
	*fakeaccountrepo.FakeAccountRepo
}

func (r *failingAccountRepo) GetByUsername(context.Context, string) (*accounts.Account, error) {
	return nil, apperrors.Wrapf(apperrors.ErrStorage, "dial tcp: connection refused")
}

func (r *failingAccountRepo) GetByID(context.Context, int) (*accounts.Account, error) {
	return nil, apperrors.Wrapf(apperrors.ErrStorage, "dial tcp: connection refused")
}

// failingSessionRepo fails session lookups like an unreachable backing store
type failingSessionRepo struct {
	*fakesessionrepo.FakeSessionRepo
}

func (r *failingSessionRepo) GetActiveUnexpired(context.Context, string) (*sessions.Session, error) {
	return nil, apperrors.Wrapf(apperrors.ErrStorage, "dial tcp: connection refused")
}

func TestLoginStorageErrorIsNotCredentialFailure(t *testing.T) {
	sr := fakesessionrepo.NewFakeSessionRepo()
	manager, err := sessions.NewManager(sr, sessions.DefaultPolicy())
	require.NoError(t, err)

	service, err := auth.NewService(
		&failingAccountRepo{fakeaccountrepo.NewFakeAccountRepo()}, manager, auth.NewArgon2idHasher())
	require.NoError(t, err)

	// A storage outage must surface as an error, never as the generic
	// credential failure
	result, err := service.Login(context.Background(), testUsername, testPassword, testIP, testAgent)
	require.Error(t, err)
	require.ErrorIs(t, err, apperrors.ErrStorage)
	require.Nil(t, result)
}

func TestCurrentUserSessionStorageError(t *testing.T) {
	sr := &failingSessionRepo{fakesessionrepo.NewFakeSessionRepo()}
	manager, err := sessions.NewManager(sr, sessions.DefaultPolicy())
	require.NoError(t, err)

	service, err := auth.NewService(fakeaccountrepo.NewFakeAccountRepo(), manager, auth.NewArgon2idHasher())
	require.NoError(t, err)

	_, err = service.CurrentUser(context.Background(), "some-session")
	require.Error(t, err)
	require.ErrorIs(t, err, apperrors.ErrStorage)
}

func TestCurrentUserAccountStorageError(t *testing.T) {
	f := setupTestFixture(t)
	ctx := context.Background()
	f.createTestAccount(t, testUsername, testPassword, accounts.RoleUser)

	result, err := f.service.Login(ctx, testUsername, testPassword, testIP, testAgent)
	require.NoError(t, err)
	require.True(t, result.Success)

	// Same session store, but the account lookup now fails
	failing, err := auth.NewService(
		&failingAccountRepo{f.accountRepo}, f.service.Sessions(), auth.NewArgon2idHasher())
	require.NoError(t, err)

	_, err = failing.CurrentUserWithContext(ctx, result.SessionID, testIP, testAgent)
	require.Error(t, err)
	require.ErrorIs(t, err, apperrors.ErrStorage)
}
