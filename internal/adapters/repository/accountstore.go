package repository

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"gopkg.in/yaml.v3"

	"lnk/internal/core/domain"
	"lnk/internal/core/ports"
	"lnk/pkg/vault"
)

// accountFile is the on-disk shape of accounts/accounts.yaml.
type accountFile struct {
	Accounts domain.AccountSet `yaml:"accounts"`
}

// AccountStore persists the shared account registry. The whole registry is
// one mutex domain so a username-uniqueness check is always atomic with the
// write that follows it.
type AccountStore struct {
	vault *vault.Vault
	log   *slog.Logger

	mu       sync.Mutex
	accounts domain.AccountSet
	lastMod  time.Time
	stamped  bool
	loaded   bool
}

// NewAccountStore creates a registry store over the given vault.
func NewAccountStore(v *vault.Vault, log *slog.Logger) *AccountStore {
	return &AccountStore{
		vault:    v,
		log:      log,
		accounts: make(domain.AccountSet),
	}
}

var _ ports.AccountStore = (*AccountStore)(nil)

// Load returns a copy of the registry, reloading when the file moved. A
// missing file is bootstrapped with the root account; the root account's
// credential field is ignored even if someone has edited one in.
func (s *AccountStore) Load(ctx context.Context) (domain.AccountSet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.refreshLocked(); err != nil {
		return s.accounts.Clone(), err
	}
	return s.accounts.Clone(), nil
}

// Save replaces the registry contents and re-stamps the freshness timestamp.
func (s *AccountStore) Save(ctx context.Context, accounts domain.AccountSet) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.saveLocked(accounts)
}

// Mutate runs load, mutation, and conditional save under the registry lock.
func (s *AccountStore) Mutate(ctx context.Context, fn func(accounts domain.AccountSet) (bool, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.refreshLocked(); err != nil {
		return err
	}

	work := s.accounts.Clone()
	changed, err := fn(work)
	if err != nil {
		return err
	}
	if !changed {
		return nil
	}
	return s.saveLocked(work)
}

func (s *AccountStore) refreshLocked() error {
	path := s.vault.AccountsFile()

	fi, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s.bootstrapLocked()
		}
		s.log.Warn("cannot stat accounts file", "error", err)
		if !s.loaded {
			s.accounts = make(domain.AccountSet)
			s.loaded = true
		}
		return nil
	}

	if s.loaded && fi.ModTime().Equal(s.lastMod) {
		s.stamped = true
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		s.log.Warn("cannot read accounts file", "error", err)
		if !s.loaded {
			s.accounts = make(domain.AccountSet)
			s.loaded = true
		}
		return nil
	}

	var parsed accountFile
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		s.log.Error("accounts file is malformed, keeping previous state", "path", path, "error", err)
		if !s.loaded {
			s.accounts = make(domain.AccountSet)
			s.loaded = true
		}
		return fmt.Errorf("malformed accounts file: %w", err)
	}

	if parsed.Accounts == nil {
		parsed.Accounts = make(domain.AccountSet)
	}
	stripRootCredential(parsed.Accounts)
	s.accounts = parsed.Accounts
	s.lastMod = fi.ModTime()
	s.stamped = true
	s.loaded = true
	return nil
}

// bootstrapLocked writes the default registry containing only the root
// account. Its credential is never stored.
func (s *AccountStore) bootstrapLocked() error {
	s.log.Info("creating default account registry")

	defaults := domain.AccountSet{
		domain.RootAccount: {
			IsAdmin:     true,
			DisplayName: "Administrator",
			CreatedAt:   time.Now().Format(time.RFC3339),
		},
	}
	return s.saveLocked(defaults)
}

func (s *AccountStore) saveLocked(accounts domain.AccountSet) error {
	stripRootCredential(accounts)

	path := s.vault.AccountsFile()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create accounts directory: %w", err)
	}

	data, err := yaml.Marshal(accountFile{Accounts: accounts})
	if err != nil {
		return fmt.Errorf("failed to marshal accounts: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write accounts file: %w", err)
	}

	s.accounts = accounts.Clone()
	s.loaded = true
	if fi, err := os.Stat(path); err == nil {
		s.lastMod = fi.ModTime()
		s.stamped = true
	} else {
		s.stamped = false
	}
	return nil
}

// stripRootCredential drops any persisted credential for the root account,
// both on the way in and the way out.
func stripRootCredential(accounts domain.AccountSet) {
	if root, ok := accounts[domain.RootAccount]; ok && root.PasswordHash != "" {
		root.PasswordHash = ""
		accounts[domain.RootAccount] = root
	}
}
