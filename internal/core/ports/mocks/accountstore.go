package mocks

import (
	"context"
	"sync"

	"lnk/internal/core/domain"
)

// MockAccountStore is an in-memory implementation of the AccountStore port.
type MockAccountStore struct {
	mu       sync.Mutex
	accounts domain.AccountSet

	LoadErr error
	SaveErr error
}

// NewMockAccountStore creates a mock registry pre-seeded with the root
// account, matching what the real store bootstraps on first run.
func NewMockAccountStore() *MockAccountStore {
	return &MockAccountStore{
		accounts: domain.AccountSet{
			domain.RootAccount: {
				IsAdmin:     true,
				DisplayName: "Administrator",
			},
		},
	}
}

// Seed installs or replaces one account entry.
func (m *MockAccountStore) Seed(username string, acct domain.Account) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.accounts[username] = acct
}

// Load returns a copy of the registry.
func (m *MockAccountStore) Load(ctx context.Context) (domain.AccountSet, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.LoadErr != nil {
		return nil, m.LoadErr
	}
	return m.accounts.Clone(), nil
}

// Save replaces the registry contents.
func (m *MockAccountStore) Save(ctx context.Context, accounts domain.AccountSet) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.SaveErr != nil {
		return m.SaveErr
	}
	m.accounts = accounts.Clone()
	return nil
}

// Mutate applies fn to the registry and saves on change.
func (m *MockAccountStore) Mutate(ctx context.Context, fn func(accounts domain.AccountSet) (bool, error)) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.LoadErr != nil {
		return m.LoadErr
	}

	changed, err := fn(m.accounts)
	if err != nil {
		return err
	}
	if changed && m.SaveErr != nil {
		return m.SaveErr
	}
	return nil
}
