package services

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"lnk/internal/core/domain"
	"lnk/internal/core/ports"
)

// maxAllocAttempts bounds the auto-generation probe so a pathological
// collision storm fails loudly instead of looping forever.
const maxAllocAttempts = 10

// LinkService implements record creation, editing, deletion, resolution, and
// listing over the per-tenant record stores.
type LinkService struct {
	links    ports.LinkStore
	accounts ports.AccountStore
	assets   ports.AssetStore
	codes    ports.CodeSource
	clock    ports.Clock
	log      *slog.Logger
}

// NewLinkService creates a link service.
func NewLinkService(links ports.LinkStore, accounts ports.AccountStore, assets ports.AssetStore, codes ports.CodeSource, clock ports.Clock, log *slog.Logger) *LinkService {
	return &LinkService{
		links:    links,
		accounts: accounts,
		assets:   assets,
		codes:    codes,
		clock:    clock,
		log:      log,
	}
}

// CreateLinkRequest describes a record to create. Code is optional; an empty
// code is auto-generated. Exactly one target input applies per kind: URL for
// redirects, SourceFile or Text for asset-backed kinds.
type CreateLinkRequest struct {
	Tenant     string
	Code       string
	Kind       domain.Kind
	URL        string
	SourceFile string
	Text       string
	ExpiresAt  string
}

// CreateLinkResponse reports the created record.
type CreateLinkResponse struct {
	Tenant string
	Code   string
	Link   domain.Link
}

// Create validates the request, allocates a globally unique code if needed,
// stores the asset (if any), and persists the record.
func (s *LinkService) Create(ctx context.Context, req CreateLinkRequest) (*CreateLinkResponse, error) {
	tenant := s.links.ResolveTenant(req.Tenant)

	if !req.Kind.Valid() {
		return nil, domain.ErrInvalidKind
	}
	if req.ExpiresAt != "" {
		if _, ok := (domain.Link{ExpiresAt: req.ExpiresAt}).ExpiryTime(); !ok {
			return nil, fmt.Errorf("unparsable expiration date %q", req.ExpiresAt)
		}
	}

	code := strings.TrimSpace(req.Code)
	if code == "" {
		allocated, err := s.allocate(ctx)
		if err != nil {
			return nil, err
		}
		code = allocated
	} else {
		if err := domain.ValidateCode(code); err != nil {
			return nil, err
		}
		taken, err := s.codeTaken(ctx, code)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, fmt.Errorf("%w: %q", domain.ErrCodeTaken, code)
		}
	}

	link := domain.Link{Kind: req.Kind, ExpiresAt: req.ExpiresAt}
	var storedAsset string

	if req.Kind == domain.KindRedirect {
		if strings.TrimSpace(req.URL) == "" {
			return nil, domain.ErrMissingTarget
		}
		link.URL = strings.TrimSpace(req.URL)
	} else {
		filename, meta, err := s.storeAsset(tenant, code, req)
		if err != nil {
			return nil, err
		}
		link.Path = filename
		link.Asset = meta
		storedAsset = filename
	}

	err := s.links.Mutate(ctx, tenant, func(links domain.LinkSet) (bool, error) {
		if _, exists := links[code]; exists {
			return false, fmt.Errorf("%w: %q", domain.ErrCodeTaken, code)
		}
		links[code] = link
		return true, nil
	})
	if err != nil {
		// Don't leave an orphaned asset behind a failed record write.
		if storedAsset != "" {
			if rerr := s.assets.RemoveAsset(tenant, storedAsset); rerr != nil {
				s.log.Warn("failed to clean up asset after aborted create", "tenant", tenant, "asset", storedAsset, "error", rerr)
			}
		}
		return nil, err
	}

	s.log.Info("link created", "tenant", tenant, "code", code, "type", string(req.Kind))
	return &CreateLinkResponse{Tenant: tenant, Code: code, Link: link}, nil
}

// storeAsset materializes the asset for file/markdown/html records.
func (s *LinkService) storeAsset(tenant, code string, req CreateLinkRequest) (string, *domain.AssetMeta, error) {
	switch {
	case req.SourceFile != "":
		return s.assets.ImportFile(tenant, req.SourceFile)
	case req.Text != "":
		ext := "md"
		if req.Kind == domain.KindHTML {
			ext = "html"
		}
		return s.assets.WriteText(tenant, req.Text, ext, fmt.Sprintf("%s.%s", code, ext))
	default:
		return "", nil, domain.ErrMissingTarget
	}
}

// EditLinkRequest describes an in-place record edit. Zero-valued fields are
// left unchanged; ClearExpiry removes the expiration entirely.
type EditLinkRequest struct {
	Tenant      string
	Code        string
	Kind        domain.Kind
	URL         string
	SourceFile  string
	Text        string
	ExpiresAt   string
	ClearExpiry bool
}

// EditLinkResponse reports the record after the edit.
type EditLinkResponse struct {
	Tenant string
	Code   string
	Link   domain.Link
}

// Edit mutates an existing record, replacing kind, target, asset file, or
// expiry as requested. A replaced asset file is removed after the record
// write succeeds.
func (s *LinkService) Edit(ctx context.Context, req EditLinkRequest) (*EditLinkResponse, error) {
	tenant := s.links.ResolveTenant(req.Tenant)

	current, err := s.links.Load(ctx, tenant)
	if err != nil {
		return nil, err
	}
	existing, ok := current[req.Code]
	if !ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrNotFound, req.Code)
	}

	newKind := existing.Kind
	if req.Kind != "" {
		if !req.Kind.Valid() {
			return nil, domain.ErrInvalidKind
		}
		newKind = req.Kind
	}

	updated := existing
	updated.Kind = newKind

	var staleAsset string
	var freshAsset string

	if newKind == domain.KindRedirect {
		if req.URL != "" {
			updated.URL = strings.TrimSpace(req.URL)
		}
		if updated.URL == "" {
			return nil, domain.ErrMissingTarget
		}
		if existing.Kind.HasAsset() && existing.Path != "" {
			staleAsset = existing.Path
		}
		updated.Path = ""
		updated.Asset = nil
	} else {
		updated.URL = ""
		if req.SourceFile != "" || req.Text != "" {
			filename, meta, err := s.storeAsset(tenant, req.Code, CreateLinkRequest{
				Kind:       newKind,
				SourceFile: req.SourceFile,
				Text:       req.Text,
			})
			if err != nil {
				return nil, err
			}
			if existing.Kind.HasAsset() && existing.Path != "" {
				staleAsset = existing.Path
			}
			updated.Path = filename
			updated.Asset = meta
			freshAsset = filename
		}
		if updated.Path == "" {
			return nil, domain.ErrMissingTarget
		}
	}

	if req.ClearExpiry {
		updated.ExpiresAt = ""
	} else if req.ExpiresAt != "" {
		if _, ok := (domain.Link{ExpiresAt: req.ExpiresAt}).ExpiryTime(); !ok {
			return nil, fmt.Errorf("unparsable expiration date %q", req.ExpiresAt)
		}
		updated.ExpiresAt = req.ExpiresAt
	}

	err = s.links.Mutate(ctx, tenant, func(links domain.LinkSet) (bool, error) {
		if _, still := links[req.Code]; !still {
			return false, fmt.Errorf("%w: %q", domain.ErrNotFound, req.Code)
		}
		links[req.Code] = updated
		return true, nil
	})
	if err != nil {
		if freshAsset != "" {
			if rerr := s.assets.RemoveAsset(tenant, freshAsset); rerr != nil {
				s.log.Warn("failed to clean up asset after aborted edit", "tenant", tenant, "asset", freshAsset, "error", rerr)
			}
		}
		return nil, err
	}

	if staleAsset != "" {
		if rerr := s.assets.RemoveAsset(tenant, staleAsset); rerr != nil {
			s.log.Warn("failed to remove replaced asset", "tenant", tenant, "asset", staleAsset, "error", rerr)
		}
	}

	s.log.Info("link updated", "tenant", tenant, "code", req.Code)
	return &EditLinkResponse{Tenant: tenant, Code: req.Code, Link: updated}, nil
}

// DeleteLinkResponse reports what a delete removed.
type DeleteLinkResponse struct {
	Tenant       string
	Code         string
	AssetRemoved bool
}

// Delete removes a record and its backing asset file, if any. A failed asset
// removal is logged with the exact reason but never resurrects the record.
func (s *LinkService) Delete(ctx context.Context, tenant, code string) (*DeleteLinkResponse, error) {
	tenant = s.links.ResolveTenant(tenant)

	var asset string
	err := s.links.Mutate(ctx, tenant, func(links domain.LinkSet) (bool, error) {
		link, ok := links[code]
		if !ok {
			return false, fmt.Errorf("%w: %q", domain.ErrNotFound, code)
		}
		if link.Kind.HasAsset() {
			asset = link.Path
		}
		delete(links, code)
		return true, nil
	})
	if err != nil {
		return nil, err
	}

	resp := &DeleteLinkResponse{Tenant: tenant, Code: code}
	if asset != "" {
		if rerr := s.assets.RemoveAsset(tenant, asset); rerr != nil {
			s.log.Error("record removed but asset deletion failed", "tenant", tenant, "code", code, "asset", asset, "error", rerr)
		} else {
			resp.AssetRemoved = true
		}
	}

	s.log.Info("link deleted", "tenant", tenant, "code", code)
	return resp, nil
}

// ResolveResponse carries a resolved record and its owning tenant.
type ResolveResponse struct {
	Code  string
	Owner string
	Link  domain.Link
}

// Resolve finds the owning tenant for a code by scanning every tenant's
// store. An expired record is removed on the spot (request-adjacent sweep)
// and reported as not found.
func (s *LinkService) Resolve(ctx context.Context, code string) (*ResolveResponse, error) {
	for _, tenant := range s.tenantNames(ctx) {
		set, err := s.links.Load(ctx, tenant)
		if err != nil {
			s.log.Warn("skipping tenant during resolve", "tenant", tenant, "error", err)
			continue
		}
		link, ok := set[code]
		if !ok {
			continue
		}

		if link.ExpiredAt(s.clock.Now()) {
			s.expireNow(ctx, tenant, code, link)
			return nil, fmt.Errorf("%w: %q", domain.ErrNotFound, code)
		}
		return &ResolveResponse{Code: code, Owner: tenant, Link: link}, nil
	}
	return nil, fmt.Errorf("%w: %q", domain.ErrNotFound, code)
}

// expireNow lazily removes one expired record encountered during resolution.
func (s *LinkService) expireNow(ctx context.Context, tenant, code string, link domain.Link) {
	if link.Kind.HasAsset() && link.Path != "" {
		if err := s.assets.RemoveAsset(tenant, link.Path); err != nil {
			s.log.Warn("failed to remove expired asset", "tenant", tenant, "asset", link.Path, "error", err)
		}
	}
	err := s.links.Mutate(ctx, tenant, func(links domain.LinkSet) (bool, error) {
		if _, ok := links[code]; !ok {
			return false, nil
		}
		delete(links, code)
		return true, nil
	})
	if err != nil {
		s.log.Warn("failed to persist lazy expiration", "tenant", tenant, "code", code, "error", err)
		return
	}
	s.log.Info("expired link removed on access", "tenant", tenant, "code", code)
}

// ListedLink pairs a short code with its record for display.
type ListedLink struct {
	Code string
	Link domain.Link
}

// List returns a tenant's records sorted by code.
func (s *LinkService) List(ctx context.Context, tenant string) ([]ListedLink, error) {
	tenant = s.links.ResolveTenant(tenant)

	set, err := s.links.Load(ctx, tenant)
	if err != nil {
		return nil, err
	}

	out := make([]ListedLink, 0, len(set))
	for code, link := range set {
		out = append(out, ListedLink{Code: code, Link: link})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out, nil
}

// allocate generates candidate codes until one is globally unique, bounded
// by maxAllocAttempts.
func (s *LinkService) allocate(ctx context.Context) (string, error) {
	for i := 0; i < maxAllocAttempts; i++ {
		candidate, err := s.codes.NewCode()
		if err != nil {
			return "", err
		}
		if domain.ValidateCode(candidate) != nil {
			continue
		}
		taken, err := s.codeTaken(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
	}
	return "", domain.ErrCodeSpaceExhausted
}

// codeTaken probes every tenant's store for the code. Short codes share one
// flat namespace across all tenants.
func (s *LinkService) codeTaken(ctx context.Context, code string) (bool, error) {
	for _, tenant := range s.tenantNames(ctx) {
		set, err := s.links.Load(ctx, tenant)
		if err != nil {
			s.log.Warn("skipping tenant during uniqueness probe", "tenant", tenant, "error", err)
			continue
		}
		if _, exists := set[code]; exists {
			return true, nil
		}
	}
	return false, nil
}

// tenantNames returns all registered tenants plus the current context,
// sorted for deterministic scans.
func (s *LinkService) tenantNames(ctx context.Context) []string {
	seen := make(map[string]struct{})

	accounts, err := s.accounts.Load(ctx)
	if err != nil {
		s.log.Warn("account registry unavailable, scanning current tenant only", "error", err)
	}
	for name := range accounts {
		seen[name] = struct{}{}
	}
	seen[s.links.ResolveTenant("")] = struct{}{}

	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
