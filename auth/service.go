package auth

import (
	"context"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/nicodev/portfolio-server/accounts"
	apperrors "github.com/nicodev/portfolio-server/internal/errors"
	"github.com/nicodev/portfolio-server/sessions"
)

// GenericLoginFailureMessage is the only message shown for any credential
// failure. Unknown username and wrong password are deliberately
// indistinguishable from the outside; do not "improve" this into separate
// messages.
const GenericLoginFailureMessage = "Invalid credentials"

// dummyPasswordHash is verified against when a username doesn't exist so
// unknown-user and wrong-password attempts take comparable time. It is not
// a credential and will never match any password.
//
//nolint:gosec // G101: intentionally fake hash for timing equalization
const dummyPasswordHash = "$argon2id$v=19$m=65536,t=1,p=4$AAAAAAAAAAAAAAAAAAAAAA$AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA"

// CurrentUser is the authenticated-user view assembled after a successful
// login or session validation.
type CurrentUser struct {
	AccountID int           `json:"account_id"`
	Username  string        `json:"username"`
	RoleID    accounts.Role `json:"role_id"`
	SessionID string        `json:"session_id"`
}

// LoginResult reports the outcome of a login attempt. Success=false with
// the generic message covers every credential failure; storage problems
// are returned as errors instead, so outages are never masked as bad
// credentials.
type LoginResult struct {
	Success   bool         `json:"success"`
	Message   string       `json:"message"`
	SessionID string       `json:"session_id,omitempty"`
	User      *CurrentUser `json:"user,omitempty"`
}

// Service orchestrates credential verification and session issuance.
type Service struct {
	accounts accounts.Repo
	sessions *sessions.Manager
	hasher   PasswordHasher
}

// NewService initializes a new authentication Service.
func NewService(accountRepo accounts.Repo, sessionManager *sessions.Manager, hasher PasswordHasher) (*Service, error) {
	if accountRepo == nil {
		return nil, errors.New("[NewService] account repo is required")
	}
	if sessionManager == nil {
		return nil, errors.New("[NewService] session manager is required")
	}
	if hasher == nil {
		return nil, errors.New("[NewService] password hasher is required")
	}

	return &Service{
		accounts: accountRepo,
		sessions: sessionManager,
		hasher:   hasher,
	}, nil
}

// Sessions exposes the session manager for administrative and reporting
// operations (active-session listing, revoke-all).
func (s *Service) Sessions() *sessions.Manager {
	return s.sessions
}

// Login verifies the credentials and issues a session. Each step is a hard
// stop: unknown username and password mismatch both produce the same
// generic failure, while storage errors surface as errors.
func (s *Service) Login(ctx context.Context, username, password, ipAddress, userAgent string) (*LoginResult, error) {
	if username == "" || password == "" {
		return &LoginResult{Success: false, Message: GenericLoginFailureMessage}, nil
	}

	account, lookupErr := s.accounts.GetByUsername(ctx, username)

	// Always run password verification so response time doesn't reveal
	// whether the username exists.
	targetHash := dummyPasswordHash
	if lookupErr == nil {
		targetHash = account.PasswordHash
	} else if !apperrors.Is(lookupErr, apperrors.ErrAccountNotFound) {
		return nil, errors.Wrap(lookupErr, "[Service.Login] get account by username")
	}

	valid, verifyErr := s.hasher.Verify(password, targetHash)
	if verifyErr != nil {
		if lookupErr != nil {
			// Dummy-hash verification error; the account doesn't exist.
			log.Warn().Str("username", username).Msg("login failed")
			return &LoginResult{Success: false, Message: GenericLoginFailureMessage}, nil
		}
		return nil, errors.Wrap(verifyErr, "[Service.Login] verify password")
	}

	if lookupErr != nil || !valid {
		log.Warn().Str("username", username).Msg("login failed")
		return &LoginResult{Success: false, Message: GenericLoginFailureMessage}, nil
	}

	session, err := s.sessions.Create(ctx, account.ID, ipAddress, userAgent)
	if err != nil {
		return nil, errors.Wrap(err, "[Service.Login] create session")
	}

	log.Info().Str("username", username).Int("account_id", account.ID).Msg("login successful")

	return &LoginResult{
		Success:   true,
		Message:   "Login successful",
		SessionID: session.ID,
		User: &CurrentUser{
			AccountID: account.ID,
			Username:  account.Username,
			RoleID:    account.RoleID,
			SessionID: session.ID,
		},
	}, nil
}

// Logout invalidates the session. Best effort: the client discards its
// cookie regardless, so an invalidation failure is logged but never fails
// the caller.
func (s *Service) Logout(ctx context.Context, sessionID string) {
	if sessionID == "" {
		return
	}
	if err := s.sessions.Invalidate(ctx, sessionID); err != nil {
		log.Error().Err(err).Msg("logout failed to invalidate session")
		return
	}
	log.Info().Msg("logout successful")
}

// CurrentUser resolves the session to its account without contextual
// binding checks. Returns (nil, nil) when the session is invalid or the
// account no longer exists.
func (s *Service) CurrentUser(ctx context.Context, sessionID string) (*CurrentUser, error) {
	return s.CurrentUserWithContext(ctx, sessionID, "", "")
}

// CurrentUserWithContext additionally passes the caller's IP and
// User-Agent into session validation so the binding policy applies.
func (s *Service) CurrentUserWithContext(ctx context.Context, sessionID, currentIP, currentUserAgent string) (*CurrentUser, error) {
	session, err := s.sessions.Validate(ctx, sessionID, currentIP, currentUserAgent)
	if err != nil {
		if apperrors.Is(err, apperrors.ErrSessionNotFound) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "[Service.CurrentUser] validate session")
	}

	account, err := s.accounts.GetByID(ctx, session.AccountID)
	if err != nil {
		if apperrors.Is(err, apperrors.ErrAccountNotFound) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "[Service.CurrentUser] get account")
	}

	return &CurrentUser{
		AccountID: account.ID,
		Username:  account.Username,
		RoleID:    account.RoleID,
		SessionID: session.ID,
	}, nil
}

// HashPassword hashes a password for account storage.
func (s *Service) HashPassword(password string) (string, error) {
	return s.hasher.Hash(password)
}

// VerifyPasswordHash checks a password against a stored encoded hash.
func (s *Service) VerifyPasswordHash(password, encodedHash string) (bool, error) {
	return s.hasher.Verify(password, encodedHash)
}
