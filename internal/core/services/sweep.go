package services

import (
	"context"
	"log/slog"
	"sort"

	"lnk/internal/core/domain"
	"lnk/internal/core/ports"
)

// SweepService removes expired records and their backing assets.
type SweepService struct {
	links    ports.LinkStore
	accounts ports.AccountStore
	assets   ports.AssetStore
	clock    ports.Clock
	log      *slog.Logger
}

// NewSweepService creates a sweep service.
func NewSweepService(links ports.LinkStore, accounts ports.AccountStore, assets ports.AssetStore, clock ports.Clock, log *slog.Logger) *SweepService {
	return &SweepService{
		links:    links,
		accounts: accounts,
		assets:   assets,
		clock:    clock,
		log:      log,
	}
}

// SweepResult reports one tenant's sweep outcome.
type SweepResult struct {
	Tenant  string
	Removed []string
}

// Sweep removes every record of one tenant whose expiry is strictly in the
// past. Asset deletion is best-effort per record; the set is persisted once,
// and only when something was actually removed.
func (s *SweepService) Sweep(ctx context.Context, tenant string) (*SweepResult, error) {
	tenant = s.links.ResolveTenant(tenant)
	now := s.clock.Now()

	result := &SweepResult{Tenant: tenant}
	err := s.links.Mutate(ctx, tenant, func(links domain.LinkSet) (bool, error) {
		var expired []string
		for code, link := range links {
			if link.ExpiredAt(now) {
				expired = append(expired, code)
			}
		}
		sort.Strings(expired)

		for _, code := range expired {
			link := links[code]
			if link.Kind.HasAsset() && link.Path != "" {
				// A missing file must not block record removal.
				if err := s.assets.RemoveAsset(tenant, link.Path); err != nil {
					s.log.Warn("failed to remove expired asset", "tenant", tenant, "code", code, "asset", link.Path, "error", err)
				}
			}
			delete(links, code)
			s.log.Info("removed expired link", "tenant", tenant, "code", code)
			result.Removed = append(result.Removed, code)
		}
		return len(expired) > 0, nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// SweepAllResult aggregates a system-wide sweep.
type SweepAllResult struct {
	Tenants []SweepResult
	Total   int
}

// SweepAll sweeps every registered tenant. One tenant's failure is isolated
// from the rest, and the caller's tenant context is restored regardless of
// outcome.
func (s *SweepService) SweepAll(ctx context.Context) (*SweepAllResult, error) {
	original := s.links.Current()
	defer s.links.SetTenant(original)

	accounts, err := s.accounts.Load(ctx)
	if err != nil {
		s.log.Warn("sweeping with partially loaded registry", "error", err)
	}

	names := accounts.Usernames()
	sort.Strings(names)

	result := &SweepAllResult{}
	for _, tenant := range names {
		s.links.SetTenant(tenant)

		res, err := s.Sweep(ctx, tenant)
		if err != nil {
			s.log.Error("sweep failed for tenant, continuing", "tenant", tenant, "error", err)
			continue
		}
		if len(res.Removed) > 0 {
			result.Tenants = append(result.Tenants, *res)
			result.Total += len(res.Removed)
		}
	}

	if result.Total > 0 {
		s.log.Info("sweep complete", "removed", result.Total)
	}
	return result, nil
}
