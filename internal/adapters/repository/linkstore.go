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

// linkFile is the on-disk shape of accounts/<tenant>/links.yaml.
type linkFile struct {
	Links domain.LinkSet `yaml:"links"`
}

// tenantState holds one tenant's in-memory record set and its freshness
// stamp. The mutex is the tenant's single mutual-exclusion domain: load,
// mutate, and save all run under it.
type tenantState struct {
	mu      sync.Mutex
	links   domain.LinkSet
	lastMod time.Time
	stamped bool // freshness stamp is trusted; false forces a re-stat
	loaded  bool // in-memory copy exists
}

// LinkStore is the yaml-backed record store. It is the single in-process
// authority for record state: reads are served from memory unless the backing
// file's modification time moved, and saves write through on success only.
type LinkStore struct {
	vault *vault.Vault
	log   *slog.Logger

	mu       sync.Mutex
	tenants  map[string]*tenantState
	current  string
	onSwitch []func(old string)
}

// NewLinkStore creates a record store over the given vault.
func NewLinkStore(v *vault.Vault, log *slog.Logger) *LinkStore {
	return &LinkStore{
		vault:   v,
		log:     log,
		tenants: make(map[string]*tenantState),
	}
}

var _ ports.LinkStore = (*LinkStore)(nil)

// OnTenantSwitch registers a hook invoked with the departing tenant whenever
// the context changes. Used to invalidate sibling per-tenant caches (personal
// settings) in the same motion.
func (s *LinkStore) OnTenantSwitch(fn func(old string)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onSwitch = append(s.onSwitch, fn)
}

// SetTenant switches the current tenant context. Only the departing tenant's
// freshness stamp is invalidated; its in-memory copy survives, so re-entering
// the tenant later re-stats the file and reparses only if it actually moved.
func (s *LinkStore) SetTenant(tenant string) {
	s.mu.Lock()
	if s.current == tenant {
		s.mu.Unlock()
		return
	}
	old := s.current
	s.current = tenant
	st := s.tenants[old]
	hooks := append([]func(string){}, s.onSwitch...)
	s.mu.Unlock()

	if st != nil {
		st.mu.Lock()
		st.stamped = false
		st.mu.Unlock()
	}
	for _, fn := range hooks {
		fn(old)
	}
}

// Current returns the current tenant context.
func (s *LinkStore) Current() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// ResolveTenant picks the effective tenant: explicit argument, then the
// current context, then the default tenant. Never empty.
func (s *LinkStore) ResolveTenant(explicit string) string {
	if explicit != "" {
		return explicit
	}
	if cur := s.Current(); cur != "" {
		return cur
	}
	return domain.RootAccount
}

func (s *LinkStore) state(tenant string) *tenantState {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, ok := s.tenants[tenant]
	if !ok {
		st = &tenantState{links: make(domain.LinkSet)}
		s.tenants[tenant] = st
	}
	return st
}

// Load returns a copy of the tenant's record set, reloading from disk only
// when the file's modification time differs from the last one observed for
// this tenant. A missing file is synthesized as an empty set and written to
// establish the baseline.
func (s *LinkStore) Load(ctx context.Context, tenant string) (domain.LinkSet, error) {
	st := s.state(tenant)
	st.mu.Lock()
	defer st.mu.Unlock()

	if err := s.refreshLocked(tenant, st); err != nil {
		return st.links.Clone(), err
	}
	return st.links.Clone(), nil
}

// Save persists the set and re-stamps the freshness timestamp. On write
// failure the in-memory state is left intact.
func (s *LinkStore) Save(ctx context.Context, tenant string, links domain.LinkSet) error {
	st := s.state(tenant)
	st.mu.Lock()
	defer st.mu.Unlock()

	return s.saveLocked(tenant, st, links)
}

// Mutate runs load, mutation, and conditional save as one critical section.
// A corrupted backing file aborts the mutation so it is never overwritten.
func (s *LinkStore) Mutate(ctx context.Context, tenant string, fn func(links domain.LinkSet) (bool, error)) error {
	st := s.state(tenant)
	st.mu.Lock()
	defer st.mu.Unlock()

	if err := s.refreshLocked(tenant, st); err != nil {
		return err
	}

	// fn works on a copy; the authoritative state only advances once the
	// write succeeds, so a failed save leaves memory matching disk.
	work := st.links.Clone()
	changed, err := fn(work)
	if err != nil {
		return err
	}
	if !changed {
		return nil
	}
	return s.saveLocked(tenant, st, work)
}

// refreshLocked brings st up to date with the backing file. Caller holds st.mu.
func (s *LinkStore) refreshLocked(tenant string, st *tenantState) error {
	path := s.vault.LinksFile(tenant)

	fi, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			// First access: establish an empty record file on disk.
			if werr := s.saveLocked(tenant, st, make(domain.LinkSet)); werr != nil {
				return werr
			}
			s.log.Info("created empty record file", "tenant", tenant, "path", path)
			return nil
		}
		// Transient I/O: keep whatever we have, surface to the log channel.
		s.log.Warn("cannot stat record file", "tenant", tenant, "error", err)
		if !st.loaded {
			st.links = make(domain.LinkSet)
			st.loaded = true
		}
		return nil
	}

	if st.loaded && st.stamped && fi.ModTime().Equal(st.lastMod) {
		return nil
	}
	if st.loaded && fi.ModTime().Equal(st.lastMod) {
		// Invalidated stamp but the file never moved: trust the copy.
		st.stamped = true
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		s.log.Warn("cannot read record file", "tenant", tenant, "error", err)
		if !st.loaded {
			st.links = make(domain.LinkSet)
			st.loaded = true
		}
		return nil
	}

	var parsed linkFile
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		// Corrupted file: keep the previous in-memory state and leave the
		// file untouched on disk so a human can inspect it.
		s.log.Error("record file is malformed, keeping previous state", "tenant", tenant, "path", path, "error", err)
		if !st.loaded {
			st.links = make(domain.LinkSet)
			st.loaded = true
		}
		return fmt.Errorf("malformed record file for %q: %w", tenant, err)
	}

	if parsed.Links == nil {
		parsed.Links = make(domain.LinkSet)
	}
	st.links = parsed.Links
	st.lastMod = fi.ModTime()
	st.stamped = true
	st.loaded = true
	return nil
}

// saveLocked writes the set and re-stamps on success. Caller holds st.mu.
func (s *LinkStore) saveLocked(tenant string, st *tenantState, links domain.LinkSet) error {
	path := s.vault.LinksFile(tenant)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create tenant directory: %w", err)
	}

	data, err := yaml.Marshal(linkFile{Links: links})
	if err != nil {
		return fmt.Errorf("failed to marshal records: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write record file: %w", err)
	}

	st.links = links.Clone()
	st.loaded = true
	if fi, err := os.Stat(path); err == nil {
		st.lastMod = fi.ModTime()
		st.stamped = true
	} else {
		st.stamped = false
	}
	return nil
}
