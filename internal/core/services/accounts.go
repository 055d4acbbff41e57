package services

import (
	"context"
	"crypto/subtle"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strings"
	"time"

	"lnk/internal/core/domain"
	"lnk/internal/core/ports"
)

// rootSecretEnv names the environment variable holding the root account's
// credential. The value is never written to the registry file.
const rootSecretEnv = "LNK_ADMIN_PASSWORD"

// defaultRootSecret applies when the environment variable is unset.
const defaultRootSecret = "admin"

// AccountService manages the shared account registry and each account's
// storage area.
type AccountService struct {
	accounts   ports.AccountStore
	links      ports.LinkStore
	assets     ports.AssetStore
	hasher     ports.Hasher
	clock      ports.Clock
	log        *slog.Logger
	rootSecret func() string
}

// NewAccountService creates an account service. The root credential is read
// from the environment on every authentication attempt, not cached.
func NewAccountService(accounts ports.AccountStore, links ports.LinkStore, assets ports.AssetStore, hasher ports.Hasher, clock ports.Clock, log *slog.Logger) *AccountService {
	return &AccountService{
		accounts: accounts,
		links:    links,
		assets:   assets,
		hasher:   hasher,
		clock:    clock,
		log:      log,
		rootSecret: func() string {
			if v := os.Getenv(rootSecretEnv); v != "" {
				return v
			}
			return defaultRootSecret
		},
	}
}

// validateUsername enforces the account naming rules shared with short codes.
func validateUsername(username string) error {
	if username == "" || len(username) > 50 {
		return fmt.Errorf("%w: username must be 1-50 characters", domain.ErrInvalidCode)
	}
	for _, r := range username {
		switch {
		case r >= 'a' && r <= 'z':
		case r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9':
		case r == '_' || r == '-':
		default:
			return fmt.Errorf("%w: username may only contain letters, digits, '_' and '-'", domain.ErrInvalidCode)
		}
	}
	return nil
}

// Authenticate verifies a credential. The root account checks against the
// runtime secret in constant time; every other account checks its stored
// hash. A stored plaintext credential from an old registry is accepted once
// and transparently upgraded to a hash.
func (s *AccountService) Authenticate(ctx context.Context, username, secret string) error {
	if username == domain.RootAccount {
		want := s.rootSecret()
		if subtle.ConstantTimeCompare([]byte(secret), []byte(want)) != 1 {
			return domain.ErrBadCredentials
		}
		return nil
	}

	accounts, err := s.accounts.Load(ctx)
	if err != nil {
		return err
	}
	acct, ok := accounts[username]
	if !ok {
		return fmt.Errorf("%w: %q", domain.ErrAccountNotFound, username)
	}

	if s.hasher.Verify(secret, acct.PasswordHash) {
		return nil
	}

	// Registries written before hashing stored the credential verbatim.
	if subtle.ConstantTimeCompare([]byte(secret), []byte(acct.PasswordHash)) == 1 {
		if err := s.upgradeCredential(ctx, username, secret); err != nil {
			s.log.Warn("failed to upgrade legacy credential", "username", username, "error", err)
		}
		return nil
	}
	return domain.ErrBadCredentials
}

// upgradeCredential rehashes a legacy plaintext credential in place.
func (s *AccountService) upgradeCredential(ctx context.Context, username, secret string) error {
	hash, err := s.hasher.Hash(secret)
	if err != nil {
		return err
	}
	err = s.accounts.Mutate(ctx, func(accounts domain.AccountSet) (bool, error) {
		acct, ok := accounts[username]
		if !ok {
			return false, fmt.Errorf("%w: %q", domain.ErrAccountNotFound, username)
		}
		acct.PasswordHash = hash
		accounts[username] = acct
		return true, nil
	})
	if err != nil {
		return err
	}
	s.log.Info("legacy credential upgraded to hash", "username", username)
	return nil
}

// CreateAccountRequest describes a new account.
type CreateAccountRequest struct {
	Username    string
	Secret      string
	DisplayName string
	IsAdmin     bool
}

// Create registers a new account and provisions its storage area. The
// duplicate check and the registry write happen atomically under the
// registry lock.
func (s *AccountService) Create(ctx context.Context, req CreateAccountRequest) error {
	if err := validateUsername(req.Username); err != nil {
		return err
	}
	if req.Username == domain.RootAccount {
		return fmt.Errorf("%w: %q", domain.ErrAccountExists, req.Username)
	}
	if req.Secret == "" {
		return fmt.Errorf("%w: empty password", domain.ErrBadCredentials)
	}

	hash, err := s.hasher.Hash(req.Secret)
	if err != nil {
		return err
	}

	display := req.DisplayName
	if display == "" {
		display = req.Username
	}

	err = s.accounts.Mutate(ctx, func(accounts domain.AccountSet) (bool, error) {
		if _, exists := accounts[req.Username]; exists {
			return false, fmt.Errorf("%w: %q", domain.ErrAccountExists, req.Username)
		}
		accounts[req.Username] = domain.Account{
			PasswordHash: hash,
			IsAdmin:      req.IsAdmin,
			DisplayName:  display,
			CreatedAt:    s.clock.Now().UTC().Format(time.RFC3339),
		}
		return true, nil
	})
	if err != nil {
		return err
	}

	if err := s.assets.Provision(req.Username, true); err != nil {
		return fmt.Errorf("account registered but provisioning its storage failed: %w", err)
	}
	// Establish the record file so the tenant shows up in global scans.
	if _, err := s.links.Load(ctx, req.Username); err != nil {
		s.log.Warn("failed to establish record file for new account", "username", req.Username, "error", err)
	}

	s.log.Info("account created", "username", req.Username, "admin", req.IsAdmin)
	return nil
}

// DeleteAccountRequest names the account to remove and who is asking.
type DeleteAccountRequest struct {
	Actor    string
	Username string
}

// Delete removes an account, its records, and its entire storage area. Only
// a privileged actor may delete, and the root account can never be deleted.
// The returned stats describe what was destroyed.
func (s *AccountService) Delete(ctx context.Context, req DeleteAccountRequest) (*domain.TenantStats, error) {
	privileged, err := s.IsPrivileged(ctx, req.Actor)
	if err != nil {
		return nil, err
	}
	if !privileged {
		return nil, domain.ErrNotPrivileged
	}
	if req.Username == domain.RootAccount {
		return nil, domain.ErrRootAccount
	}

	stats, err := s.Preview(ctx, req.Username)
	if err != nil {
		return nil, err
	}

	if err := s.assets.RemoveArea(req.Username); err != nil {
		s.log.Warn("failed to remove account storage area", "username", req.Username, "error", err)
	}

	err = s.accounts.Mutate(ctx, func(accounts domain.AccountSet) (bool, error) {
		if _, exists := accounts[req.Username]; !exists {
			return false, fmt.Errorf("%w: %q", domain.ErrAccountNotFound, req.Username)
		}
		delete(accounts, req.Username)
		return true, nil
	})
	if err != nil {
		return nil, err
	}

	if s.links.Current() == req.Username {
		s.links.SetTenant(domain.RootAccount)
	}

	s.log.Info("account deleted", "username", req.Username, "records", stats.Records, "files", stats.Files)
	return stats, nil
}

// Preview reports what deleting an account would destroy, without touching
// anything.
func (s *AccountService) Preview(ctx context.Context, username string) (*domain.TenantStats, error) {
	accounts, err := s.accounts.Load(ctx)
	if err != nil {
		return nil, err
	}
	if _, ok := accounts[username]; !ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrAccountNotFound, username)
	}

	stats := &domain.TenantStats{Username: username}

	set, err := s.links.Load(ctx, username)
	if err != nil {
		s.log.Warn("record file unreadable during preview", "username", username, "error", err)
	} else {
		stats.Records = len(set)
	}

	files, bytes, err := s.assets.Stats(username)
	if err != nil {
		s.log.Warn("asset walk failed during preview", "username", username, "error", err)
	} else {
		stats.Files = files
		stats.TotalBytes = bytes
	}
	return stats, nil
}

// ListedAccount pairs a username with its registry entry for display.
type ListedAccount struct {
	Username string
	Account  domain.Account
}

// List returns every registered account sorted by username.
func (s *AccountService) List(ctx context.Context) ([]ListedAccount, error) {
	accounts, err := s.accounts.Load(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]ListedAccount, 0, len(accounts))
	for name, acct := range accounts {
		out = append(out, ListedAccount{Username: name, Account: acct})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	return out, nil
}

// ChangePassword replaces an account's credential. The root credential lives
// in the environment and cannot be changed here.
func (s *AccountService) ChangePassword(ctx context.Context, username, secret string) error {
	if username == domain.RootAccount {
		return domain.ErrRootCredential
	}
	if strings.TrimSpace(secret) == "" {
		return fmt.Errorf("%w: empty password", domain.ErrBadCredentials)
	}

	hash, err := s.hasher.Hash(secret)
	if err != nil {
		return err
	}

	err = s.accounts.Mutate(ctx, func(accounts domain.AccountSet) (bool, error) {
		acct, ok := accounts[username]
		if !ok {
			return false, fmt.Errorf("%w: %q", domain.ErrAccountNotFound, username)
		}
		acct.PasswordHash = hash
		accounts[username] = acct
		return true, nil
	})
	if err != nil {
		return err
	}

	s.log.Info("password changed", "username", username)
	return nil
}

// IsPrivileged reports whether an account may manage other accounts.
func (s *AccountService) IsPrivileged(ctx context.Context, username string) (bool, error) {
	if username == domain.RootAccount {
		return true, nil
	}
	accounts, err := s.accounts.Load(ctx)
	if err != nil {
		return false, err
	}
	acct, ok := accounts[username]
	if !ok {
		return false, fmt.Errorf("%w: %q", domain.ErrAccountNotFound, username)
	}
	return acct.IsAdmin, nil
}
