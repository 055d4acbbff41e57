package services

import (
	"context"
	"log/slog"
	"sort"

	"lnk/internal/core/domain"
	"lnk/internal/core/ports"
)

// StatsService computes usage summaries over tenants' records and assets.
type StatsService struct {
	links    ports.LinkStore
	accounts ports.AccountStore
	assets   ports.AssetStore
	clock    ports.Clock
	log      *slog.Logger
}

// NewStatsService creates a stats service.
func NewStatsService(links ports.LinkStore, accounts ports.AccountStore, assets ports.AssetStore, clock ports.Clock, log *slog.Logger) *StatsService {
	return &StatsService{
		links:    links,
		accounts: accounts,
		assets:   assets,
		clock:    clock,
		log:      log,
	}
}

// UsageReport summarizes one tenant's records and storage.
type UsageReport struct {
	Tenant  string
	Total   int
	ByKind  map[domain.Kind]int
	Expired int
	Files   int
	Bytes   int64
}

// TenantUsage reports usage for a single tenant.
func (s *StatsService) TenantUsage(ctx context.Context, tenant string) (*UsageReport, error) {
	tenant = s.links.ResolveTenant(tenant)

	set, err := s.links.Load(ctx, tenant)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	report := &UsageReport{
		Tenant: tenant,
		Total:  len(set),
		ByKind: make(map[domain.Kind]int),
	}
	for _, link := range set {
		report.ByKind[link.Kind]++
		if link.ExpiredAt(now) {
			report.Expired++
		}
	}

	files, bytes, err := s.assets.Stats(tenant)
	if err != nil {
		s.log.Warn("asset walk failed during usage report", "tenant", tenant, "error", err)
	} else {
		report.Files = files
		report.Bytes = bytes
	}
	return report, nil
}

// AllUsage reports usage for every registered tenant, sorted by name. A
// tenant whose store is unreadable is skipped with a warning.
func (s *StatsService) AllUsage(ctx context.Context) ([]UsageReport, error) {
	accounts, err := s.accounts.Load(ctx)
	if err != nil {
		return nil, err
	}

	names := accounts.Usernames()
	sort.Strings(names)

	out := make([]UsageReport, 0, len(names))
	for _, tenant := range names {
		report, err := s.TenantUsage(ctx, tenant)
		if err != nil {
			s.log.Warn("skipping tenant in usage report", "tenant", tenant, "error", err)
			continue
		}
		out = append(out, *report)
	}
	return out, nil
}
