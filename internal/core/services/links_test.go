package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"lnk/internal/core/domain"
	"lnk/internal/core/ports/mocks"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newLinkFixture(codes ...string) (*LinkService, *mocks.MockLinkStore, *mocks.MockAccountStore, *mocks.MockAssetStore, *mocks.MockClock) {
	links := mocks.NewMockLinkStore()
	accounts := mocks.NewMockAccountStore()
	assets := mocks.NewMockAssetStore()
	clock := mocks.NewMockClock(time.Date(2026, 6, 15, 12, 0, 0, 0, time.Local))
	svc := NewLinkService(links, accounts, assets, mocks.NewMockCodeSource(codes...), clock, testLogger())
	return svc, links, accounts, assets, clock
}

func TestLinkService_Create_Redirect(t *testing.T) {
	svc, links, _, _, _ := newLinkFixture()
	ctx := context.Background()

	resp, err := svc.Create(ctx, CreateLinkRequest{
		Tenant: "alice",
		Code:   "launch",
		Kind:   domain.KindRedirect,
		URL:    "  https://example.com/long  ",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Code != "launch" {
		t.Errorf("Code = %q", resp.Code)
	}
	if resp.Link.URL != "https://example.com/long" {
		t.Errorf("URL = %q, want trimmed", resp.Link.URL)
	}

	stored, _ := links.Load(ctx, "alice")
	if _, ok := stored["launch"]; !ok {
		t.Error("record was not persisted")
	}
}

func TestLinkService_Create_GeneratesCode(t *testing.T) {
	svc, _, _, _, _ := newLinkFixture("gen-code")
	ctx := context.Background()

	resp, err := svc.Create(ctx, CreateLinkRequest{
		Tenant: "alice",
		Kind:   domain.KindRedirect,
		URL:    "https://example.com",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Code != "gen-code" {
		t.Errorf("Code = %q, want %q", resp.Code, "gen-code")
	}
}

func TestLinkService_Create_CodeUniqueAcrossTenants(t *testing.T) {
	svc, links, accounts, _, _ := newLinkFixture()
	ctx := context.Background()

	// bob already owns the code; alice must not be able to take it.
	accounts.Seed("bob", domain.Account{PasswordHash: "h"})
	links.Seed("bob", domain.LinkSet{"launch": {Kind: domain.KindRedirect, URL: "https://bob.example"}})

	_, err := svc.Create(ctx, CreateLinkRequest{
		Tenant: "alice",
		Code:   "launch",
		Kind:   domain.KindRedirect,
		URL:    "https://alice.example",
	})
	if !errors.Is(err, domain.ErrCodeTaken) {
		t.Fatalf("expected ErrCodeTaken, got %v", err)
	}
}

func TestLinkService_Create_GeneratorSkipsTakenCodes(t *testing.T) {
	svc, links, accounts, _, _ := newLinkFixture("taken", "free")
	ctx := context.Background()

	accounts.Seed("bob", domain.Account{PasswordHash: "h"})
	links.Seed("bob", domain.LinkSet{"taken": {Kind: domain.KindRedirect, URL: "https://bob.example"}})

	resp, err := svc.Create(ctx, CreateLinkRequest{
		Tenant: "alice",
		Kind:   domain.KindRedirect,
		URL:    "https://alice.example",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Code != "free" {
		t.Errorf("Code = %q, want the first free candidate", resp.Code)
	}
}

func TestLinkService_Create_GeneratorGivesUp(t *testing.T) {
	// The source repeats its last code forever, so every candidate collides.
	svc, links, accounts, _, _ := newLinkFixture("stuck")
	ctx := context.Background()

	accounts.Seed("bob", domain.Account{PasswordHash: "h"})
	links.Seed("bob", domain.LinkSet{"stuck": {Kind: domain.KindRedirect, URL: "https://bob.example"}})

	_, err := svc.Create(ctx, CreateLinkRequest{
		Tenant: "alice",
		Kind:   domain.KindRedirect,
		URL:    "https://alice.example",
	})
	if !errors.Is(err, domain.ErrCodeSpaceExhausted) {
		t.Fatalf("expected ErrCodeSpaceExhausted, got %v", err)
	}
}

func TestLinkService_Create_Rejections(t *testing.T) {
	tests := []struct {
		name    string
		req     CreateLinkRequest
		wantErr error
	}{
		{"reserved code", CreateLinkRequest{Code: "admin", Kind: domain.KindRedirect, URL: "https://x"}, domain.ErrReservedCode},
		{"bad charset", CreateLinkRequest{Code: "a b", Kind: domain.KindRedirect, URL: "https://x"}, domain.ErrInvalidCode},
		{"unknown kind", CreateLinkRequest{Code: "ok", Kind: "gopher", URL: "https://x"}, domain.ErrInvalidKind},
		{"redirect without url", CreateLinkRequest{Code: "ok", Kind: domain.KindRedirect}, domain.ErrMissingTarget},
		{"file without source", CreateLinkRequest{Code: "ok", Kind: domain.KindFile}, domain.ErrMissingTarget},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _, _, _, _ := newLinkFixture()
			_, err := svc.Create(context.Background(), tt.req)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Create() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestLinkService_Create_RejectsUnparsableExpiry(t *testing.T) {
	svc, _, _, _, _ := newLinkFixture()

	_, err := svc.Create(context.Background(), CreateLinkRequest{
		Code:      "ok",
		Kind:      domain.KindRedirect,
		URL:       "https://example.com",
		ExpiresAt: "whenever",
	})
	if err == nil {
		t.Fatal("expected an unparsable expiry to be rejected at creation")
	}
}

func TestLinkService_Create_MarkdownFromText(t *testing.T) {
	svc, _, _, assets, _ := newLinkFixture()
	ctx := context.Background()

	resp, err := svc.Create(ctx, CreateLinkRequest{
		Tenant: "alice",
		Code:   "notes",
		Kind:   domain.KindMarkdown,
		Text:   "# Hello",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Link.Path == "" {
		t.Fatal("markdown record has no stored asset")
	}
	if !assets.Has("alice", resp.Link.Path) {
		t.Error("inline content was not stored")
	}
}

func TestLinkService_Create_CleansUpAssetOnFailedWrite(t *testing.T) {
	svc, links, _, assets, _ := newLinkFixture()
	ctx := context.Background()

	links.SaveErr["alice"] = errors.New("disk full")

	resp, err := svc.Create(ctx, CreateLinkRequest{
		Tenant: "alice",
		Code:   "notes",
		Kind:   domain.KindMarkdown,
		Text:   "# orphan",
	})
	if err == nil {
		t.Fatalf("expected failure, got %+v", resp)
	}

	removed := assets.Removed()
	if len(removed) != 1 {
		t.Errorf("expected the stored asset to be cleaned up, removed = %v", removed)
	}
}

func TestLinkService_Delete_RemovesAsset(t *testing.T) {
	svc, links, _, assets, _ := newLinkFixture()
	ctx := context.Background()

	assets.Put("alice", "doc.pdf", []byte("content"))
	links.Seed("alice", domain.LinkSet{
		"report": {Kind: domain.KindFile, Path: "doc.pdf"},
	})

	resp, err := svc.Delete(ctx, "alice", "report")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !resp.AssetRemoved {
		t.Error("AssetRemoved = false")
	}
	if assets.Has("alice", "doc.pdf") {
		t.Error("asset file survived the delete")
	}

	stored, _ := links.Load(ctx, "alice")
	if _, ok := stored["report"]; ok {
		t.Error("record survived the delete")
	}
}

func TestLinkService_Delete_AssetFailureDoesNotResurrectRecord(t *testing.T) {
	svc, links, _, assets, _ := newLinkFixture()
	ctx := context.Background()

	assets.Put("alice", "doc.pdf", []byte("content"))
	assets.RemoveAssetErr = errors.New("permission denied")
	links.Seed("alice", domain.LinkSet{
		"report": {Kind: domain.KindFile, Path: "doc.pdf"},
	})

	resp, err := svc.Delete(ctx, "alice", "report")
	if err != nil {
		t.Fatalf("record removal must succeed even when the asset lingers: %v", err)
	}
	if resp.AssetRemoved {
		t.Error("AssetRemoved = true despite the failure")
	}

	stored, _ := links.Load(ctx, "alice")
	if _, ok := stored["report"]; ok {
		t.Error("record came back after asset removal failed")
	}
}

func TestLinkService_Delete_NotFound(t *testing.T) {
	svc, _, _, _, _ := newLinkFixture()

	_, err := svc.Delete(context.Background(), "alice", "missing")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestLinkService_Resolve_FindsOwnerAcrossTenants(t *testing.T) {
	svc, links, accounts, _, _ := newLinkFixture()
	ctx := context.Background()

	accounts.Seed("bob", domain.Account{PasswordHash: "h"})
	links.Seed("bob", domain.LinkSet{"launch": {Kind: domain.KindRedirect, URL: "https://bob.example"}})

	resp, err := svc.Resolve(ctx, "launch")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Owner != "bob" {
		t.Errorf("Owner = %q, want %q", resp.Owner, "bob")
	}
	if resp.Link.URL != "https://bob.example" {
		t.Errorf("URL = %q", resp.Link.URL)
	}
}

func TestLinkService_Resolve_ExpiredIsRemovedAndNotFound(t *testing.T) {
	svc, links, accounts, assets, _ := newLinkFixture()
	ctx := context.Background()

	accounts.Seed("bob", domain.Account{PasswordHash: "h"})
	assets.Put("bob", "old.pdf", []byte("stale"))
	// The clock is frozen at 2026-06-15, past the expiry.
	links.Seed("bob", domain.LinkSet{
		"old": {Kind: domain.KindFile, Path: "old.pdf", ExpiresAt: "2026-01-01"},
	})

	_, err := svc.Resolve(ctx, "old")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for an expired record, got %v", err)
	}

	// The expired record and its asset are gone.
	stored, _ := links.Load(ctx, "bob")
	if _, ok := stored["old"]; ok {
		t.Error("expired record survived resolution")
	}
	if assets.Has("bob", "old.pdf") {
		t.Error("expired asset survived resolution")
	}
}

func TestLinkService_Edit_Retarget(t *testing.T) {
	svc, links, _, _, _ := newLinkFixture()
	ctx := context.Background()

	links.Seed("alice", domain.LinkSet{
		"launch": {Kind: domain.KindRedirect, URL: "https://old.example"},
	})

	resp, err := svc.Edit(ctx, EditLinkRequest{
		Tenant: "alice",
		Code:   "launch",
		URL:    "https://new.example",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Link.URL != "https://new.example" {
		t.Errorf("URL = %q", resp.Link.URL)
	}
}

func TestLinkService_Edit_ReplacedAssetIsRemoved(t *testing.T) {
	svc, links, _, assets, _ := newLinkFixture()
	ctx := context.Background()

	assets.Put("alice", "old.pdf", []byte("v1"))
	links.Seed("alice", domain.LinkSet{
		"report": {Kind: domain.KindFile, Path: "old.pdf"},
	})

	resp, err := svc.Edit(ctx, EditLinkRequest{
		Tenant:     "alice",
		Code:       "report",
		SourceFile: "new-version.pdf",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Link.Path == "old.pdf" {
		t.Error("stored path did not change")
	}
	if assets.Has("alice", "old.pdf") {
		t.Error("replaced asset file was not removed")
	}
}

func TestLinkService_Edit_ClearExpiry(t *testing.T) {
	svc, links, _, _, _ := newLinkFixture()
	ctx := context.Background()

	links.Seed("alice", domain.LinkSet{
		"launch": {Kind: domain.KindRedirect, URL: "https://x.example", ExpiresAt: "2026-01-01"},
	})

	resp, err := svc.Edit(ctx, EditLinkRequest{
		Tenant:      "alice",
		Code:        "launch",
		ClearExpiry: true,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Link.ExpiresAt != "" {
		t.Errorf("ExpiresAt = %q, want cleared", resp.Link.ExpiresAt)
	}
}

func TestLinkService_List_SortedByCode(t *testing.T) {
	svc, links, _, _, _ := newLinkFixture()
	ctx := context.Background()

	links.Seed("alice", domain.LinkSet{
		"zulu":  {Kind: domain.KindRedirect, URL: "https://z.example"},
		"alpha": {Kind: domain.KindRedirect, URL: "https://a.example"},
		"mike":  {Kind: domain.KindRedirect, URL: "https://m.example"},
	})

	got, err := svc.List(ctx, "alice")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"alpha", "mike", "zulu"}
	for i, w := range want {
		if got[i].Code != w {
			t.Fatalf("order = %v, want %v", got, want)
		}
	}
}
