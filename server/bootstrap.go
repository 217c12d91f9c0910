package server

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/nicodev/portfolio-server/accounts"
	apperrors "github.com/nicodev/portfolio-server/internal/errors"
)

// seedAdminAccount ensures the configured admin account exists. The password
// is hashed before it touches storage and is never logged.
func (s *Server) seedAdminAccount(ctx context.Context) error {
	username := s.config.GetAdminUsername()
	if username == "" {
		log.Warn().Msg("No admin username configured, skipping admin bootstrap")
		return nil
	}

	_, err := s.accounts.GetByUsername(ctx, username)
	if err == nil {
		return nil // Admin already exists
	}
	if !apperrors.Is(err, apperrors.ErrAccountNotFound) {
		return fmt.Errorf("[seedAdminAccount] lookup admin account: %w", err)
	}

	password := s.config.GetAdminPassword()
	if password == "" {
		return fmt.Errorf("[seedAdminAccount] admin username set but no admin password configured")
	}

	passwordHash, err := s.auth.HashPassword(password)
	if err != nil {
		return fmt.Errorf("[seedAdminAccount] hash admin password: %w", err)
	}

	account, err := s.accounts.Insert(ctx, username, passwordHash, accounts.RoleAdmin)
	if err != nil {
		return fmt.Errorf("[seedAdminAccount] insert admin account: %w", err)
	}

	log.Info().Str("username", account.Username).Int("account_id", account.ID).Msg("Seeded admin account")
	return nil
}
