package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"lnk/internal/core/domain"
	"lnk/internal/core/ports/mocks"
)

func newAccountFixture() (*AccountService, *mocks.MockAccountStore, *mocks.MockLinkStore, *mocks.MockAssetStore) {
	accounts := mocks.NewMockAccountStore()
	links := mocks.NewMockLinkStore()
	assets := mocks.NewMockAssetStore()
	clock := mocks.NewMockClock(time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC))
	svc := NewAccountService(accounts, links, assets, mocks.MockHasher{}, clock, testLogger())
	return svc, accounts, links, assets
}

func TestAccountService_Create(t *testing.T) {
	svc, accounts, _, _ := newAccountFixture()
	ctx := context.Background()

	err := svc.Create(ctx, CreateAccountRequest{Username: "alice", Secret: "s3cret"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	set, _ := accounts.Load(ctx)
	acct, ok := set["alice"]
	if !ok {
		t.Fatal("account was not registered")
	}
	if acct.PasswordHash != "hashed!s3cret" {
		t.Errorf("PasswordHash = %q, want the hash, never the plaintext", acct.PasswordHash)
	}
	if acct.DisplayName != "alice" {
		t.Errorf("DisplayName = %q, want the username fallback", acct.DisplayName)
	}
	if acct.CreatedAt == "" {
		t.Error("CreatedAt not set")
	}
}

func TestAccountService_Create_Rejections(t *testing.T) {
	tests := []struct {
		name    string
		req     CreateAccountRequest
		wantErr error
	}{
		{"root username", CreateAccountRequest{Username: "admin", Secret: "x"}, domain.ErrAccountExists},
		{"empty password", CreateAccountRequest{Username: "alice"}, domain.ErrBadCredentials},
		{"bad charset", CreateAccountRequest{Username: "a b", Secret: "x"}, domain.ErrInvalidCode},
		{"empty username", CreateAccountRequest{Secret: "x"}, domain.ErrInvalidCode},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _, _, _ := newAccountFixture()
			err := svc.Create(context.Background(), tt.req)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Create() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestAccountService_Create_Duplicate(t *testing.T) {
	svc, _, _, _ := newAccountFixture()
	ctx := context.Background()

	if err := svc.Create(ctx, CreateAccountRequest{Username: "alice", Secret: "one"}); err != nil {
		t.Fatalf("first create failed: %v", err)
	}
	err := svc.Create(ctx, CreateAccountRequest{Username: "alice", Secret: "two"})
	if !errors.Is(err, domain.ErrAccountExists) {
		t.Fatalf("expected ErrAccountExists, got %v", err)
	}
}

func TestAccountService_Authenticate_RootUsesRuntimeSecret(t *testing.T) {
	svc, accounts, _, _ := newAccountFixture()
	ctx := context.Background()
	svc.rootSecret = func() string { return "from-env" }

	// A stored hash on the root entry must never matter.
	accounts.Seed(domain.RootAccount, domain.Account{
		IsAdmin:      true,
		PasswordHash: "hashed!stored-value",
	})

	if err := svc.Authenticate(ctx, domain.RootAccount, "from-env"); err != nil {
		t.Errorf("runtime secret rejected: %v", err)
	}
	if err := svc.Authenticate(ctx, domain.RootAccount, "stored-value"); !errors.Is(err, domain.ErrBadCredentials) {
		t.Errorf("stored credential accepted for root: %v", err)
	}
}

func TestAccountService_Authenticate_RegularAccount(t *testing.T) {
	svc, accounts, _, _ := newAccountFixture()
	ctx := context.Background()

	accounts.Seed("alice", domain.Account{PasswordHash: "hashed!s3cret"})

	if err := svc.Authenticate(ctx, "alice", "s3cret"); err != nil {
		t.Errorf("correct password rejected: %v", err)
	}
	if err := svc.Authenticate(ctx, "alice", "wrong"); !errors.Is(err, domain.ErrBadCredentials) {
		t.Errorf("wrong password: got %v, want ErrBadCredentials", err)
	}
	if err := svc.Authenticate(ctx, "ghost", "x"); !errors.Is(err, domain.ErrAccountNotFound) {
		t.Errorf("unknown account: got %v, want ErrAccountNotFound", err)
	}
}

func TestAccountService_Authenticate_MigratesLegacyPlaintext(t *testing.T) {
	svc, accounts, _, _ := newAccountFixture()
	ctx := context.Background()

	// An old registry stored the credential verbatim.
	accounts.Seed("carol", domain.Account{PasswordHash: "plain-password"})

	if err := svc.Authenticate(ctx, "carol", "plain-password"); err != nil {
		t.Fatalf("legacy plaintext rejected: %v", err)
	}

	set, _ := accounts.Load(ctx)
	if set["carol"].PasswordHash != "hashed!plain-password" {
		t.Errorf("PasswordHash = %q, want the upgraded hash", set["carol"].PasswordHash)
	}

	// The migrated hash keeps working, the plaintext path is gone.
	if err := svc.Authenticate(ctx, "carol", "plain-password"); err != nil {
		t.Errorf("password stopped working after migration: %v", err)
	}
}

func TestAccountService_Delete_Cascades(t *testing.T) {
	svc, accounts, links, assets := newAccountFixture()
	ctx := context.Background()

	accounts.Seed("alice", domain.Account{PasswordHash: "h"})
	links.Seed("alice", domain.LinkSet{
		"a": {Kind: domain.KindRedirect, URL: "https://a.example"},
		"b": {Kind: domain.KindFile, Path: "b.pdf"},
	})
	assets.Put("alice", "b.pdf", []byte("content"))

	stats, err := svc.Delete(ctx, DeleteAccountRequest{Actor: domain.RootAccount, Username: "alice"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stats.Records != 2 {
		t.Errorf("preview Records = %d, want 2", stats.Records)
	}
	if stats.Files != 1 {
		t.Errorf("preview Files = %d, want 1", stats.Files)
	}

	set, _ := accounts.Load(ctx)
	if _, ok := set["alice"]; ok {
		t.Error("registry entry survived deletion")
	}
	if assets.Has("alice", "b.pdf") {
		t.Error("storage area survived deletion")
	}
}

func TestAccountService_Delete_Guards(t *testing.T) {
	svc, accounts, _, _ := newAccountFixture()
	ctx := context.Background()

	accounts.Seed("alice", domain.Account{PasswordHash: "h"})
	accounts.Seed("mallory", domain.Account{PasswordHash: "h"})

	// Non-admin actor.
	_, err := svc.Delete(ctx, DeleteAccountRequest{Actor: "mallory", Username: "alice"})
	if !errors.Is(err, domain.ErrNotPrivileged) {
		t.Errorf("expected ErrNotPrivileged, got %v", err)
	}

	// The root account is untouchable.
	_, err = svc.Delete(ctx, DeleteAccountRequest{Actor: domain.RootAccount, Username: domain.RootAccount})
	if !errors.Is(err, domain.ErrRootAccount) {
		t.Errorf("expected ErrRootAccount, got %v", err)
	}

	// Missing account.
	_, err = svc.Delete(ctx, DeleteAccountRequest{Actor: domain.RootAccount, Username: "ghost"})
	if !errors.Is(err, domain.ErrAccountNotFound) {
		t.Errorf("expected ErrAccountNotFound, got %v", err)
	}
}

func TestAccountService_Delete_SwitchesContextOffDeletedTenant(t *testing.T) {
	svc, accounts, links, _ := newAccountFixture()
	ctx := context.Background()

	accounts.Seed("alice", domain.Account{PasswordHash: "h"})
	links.SetTenant("alice")

	if _, err := svc.Delete(ctx, DeleteAccountRequest{Actor: domain.RootAccount, Username: "alice"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if links.Current() == "alice" {
		t.Error("tenant context still points at the deleted account")
	}
}

func TestAccountService_ChangePassword(t *testing.T) {
	svc, accounts, _, _ := newAccountFixture()
	ctx := context.Background()

	accounts.Seed("alice", domain.Account{PasswordHash: "hashed!old"})

	if err := svc.ChangePassword(ctx, "alice", "new"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	set, _ := accounts.Load(ctx)
	if set["alice"].PasswordHash != "hashed!new" {
		t.Errorf("PasswordHash = %q", set["alice"].PasswordHash)
	}

	// Root's credential lives in the environment.
	if err := svc.ChangePassword(ctx, domain.RootAccount, "new"); !errors.Is(err, domain.ErrRootCredential) {
		t.Errorf("expected ErrRootCredential, got %v", err)
	}
}

func TestAccountService_Preview_DoesNotModify(t *testing.T) {
	svc, accounts, links, assets := newAccountFixture()
	ctx := context.Background()

	accounts.Seed("alice", domain.Account{PasswordHash: "h"})
	links.Seed("alice", domain.LinkSet{"a": {Kind: domain.KindRedirect, URL: "https://a.example"}})
	assets.Put("alice", "f.pdf", []byte("12345"))

	stats, err := svc.Preview(ctx, "alice")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stats.Records != 1 || stats.Files != 1 || stats.TotalBytes != 5 {
		t.Errorf("stats = %+v", stats)
	}

	set, _ := accounts.Load(ctx)
	if _, ok := set["alice"]; !ok {
		t.Error("preview deleted the account")
	}
	if !assets.Has("alice", "f.pdf") {
		t.Error("preview touched the storage area")
	}
}

func TestAccountService_IsPrivileged(t *testing.T) {
	svc, accounts, _, _ := newAccountFixture()
	ctx := context.Background()

	accounts.Seed("alice", domain.Account{PasswordHash: "h"})
	accounts.Seed("boss", domain.Account{PasswordHash: "h", IsAdmin: true})

	tests := []struct {
		username string
		want     bool
	}{
		{domain.RootAccount, true},
		{"boss", true},
		{"alice", false},
	}
	for _, tt := range tests {
		got, err := svc.IsPrivileged(ctx, tt.username)
		if err != nil {
			t.Fatalf("IsPrivileged(%q) error: %v", tt.username, err)
		}
		if got != tt.want {
			t.Errorf("IsPrivileged(%q) = %v, want %v", tt.username, got, tt.want)
		}
	}
}
