package accounts

import "context"

// Repo is the account store contract consumed by the authentication
// service. Lookups return errors.ErrAccountNotFound (wrapped) when no row
// matches; any other failure is a storage error.
type Repo interface {
	GetByUsername(ctx context.Context, username string) (*Account, error)
	GetByID(ctx context.Context, id int) (*Account, error)
	Insert(ctx context.Context, username, passwordHash string, role Role) (*Account, error)
}
