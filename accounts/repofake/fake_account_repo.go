package fakeaccountrepo

import (
	"context"
	"sync"

	"github.com/nicodev/portfolio-server/accounts"
	"github.com/nicodev/portfolio-server/internal/errors"
)

var _ accounts.Repo = (*FakeAccountRepo)(nil)

type FakeAccountRepo struct {
	accounts    map[int]*accounts.Account
	usernameIds map[string]int // username to account id
	nextID      int
	lock        sync.RWMutex
}

func NewFakeAccountRepo() *FakeAccountRepo {
	return &FakeAccountRepo{
		accounts:    make(map[int]*accounts.Account),
		usernameIds: make(map[string]int),
		nextID:      1,
	}
}

func (ar *FakeAccountRepo) GetByUsername(_ context.Context, username string) (*accounts.Account, error) {
	ar.lock.RLock()
	defer ar.lock.RUnlock()

	id, ok := ar.usernameIds[username]
	if !ok {
		return nil, errors.ErrAccountNotFound
	}
	account := *ar.accounts[id]
	return &account, nil
}

func (ar *FakeAccountRepo) GetByID(_ context.Context, id int) (*accounts.Account, error) {
	ar.lock.RLock()
	defer ar.lock.RUnlock()

	stored, ok := ar.accounts[id]
	if !ok {
		return nil, errors.ErrAccountNotFound
	}
	account := *stored
	return &account, nil
}

func (ar *FakeAccountRepo) Insert(_ context.Context, username, passwordHash string, role accounts.Role) (*accounts.Account, error) {
	ar.lock.Lock()
	defer ar.lock.Unlock()

	if _, exists := ar.usernameIds[username]; exists {
		return nil, errors.Wrapf(errors.ErrStorage, "[Insert] username %q already exists", username)
	}

	account := &accounts.Account{
		ID:           ar.nextID,
		Username:     username,
		PasswordHash: passwordHash,
		RoleID:       role,
	}
	ar.nextID++
	ar.accounts[account.ID] = account
	ar.usernameIds[username] = account.ID

	stored := *account
	return &stored, nil
}
