package repository

import (
	"log/slog"
	"os"
	"sync"
	"time"

	"lnk/internal/core/domain"
	"lnk/pkg/config"
	"lnk/pkg/vault"
)

// overrideState mirrors tenantState for a tenant's personal settings file.
type overrideState struct {
	mu      sync.Mutex
	data    *config.Overrides
	lastMod time.Time
	stamped bool
	loaded  bool
}

// OverrideStore caches per-tenant personal settings with the same
// modification-time gating as the record store. The root account has no
// personal file; it always reads as empty overrides.
type OverrideStore struct {
	vault *vault.Vault
	log   *slog.Logger

	mu      sync.Mutex
	tenants map[string]*overrideState
}

// NewOverrideStore creates a personal-settings store over the given vault.
func NewOverrideStore(v *vault.Vault, log *slog.Logger) *OverrideStore {
	return &OverrideStore{
		vault:   v,
		log:     log,
		tenants: make(map[string]*overrideState),
	}
}

func (s *OverrideStore) state(tenant string) *overrideState {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, ok := s.tenants[tenant]
	if !ok {
		st = &overrideState{data: &config.Overrides{}}
		s.tenants[tenant] = st
	}
	return st
}

// Invalidate drops the freshness stamp for one tenant. Wired to the link
// store's tenant-switch hook.
func (s *OverrideStore) Invalidate(tenant string) {
	s.mu.Lock()
	st := s.tenants[tenant]
	s.mu.Unlock()

	if st != nil {
		st.mu.Lock()
		st.stamped = false
		st.mu.Unlock()
	}
}

// Load returns the tenant's personal settings, re-reading only when the file
// moved since the last observation.
func (s *OverrideStore) Load(tenant string) (*config.Overrides, error) {
	if tenant == domain.RootAccount {
		return &config.Overrides{}, nil
	}

	st := s.state(tenant)
	st.mu.Lock()
	defer st.mu.Unlock()

	path := s.vault.TenantSettingsFile(tenant)
	fi, err := os.Stat(path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.log.Warn("cannot stat tenant settings", "tenant", tenant, "error", err)
		}
		// No personal file means no overrides.
		st.data = &config.Overrides{}
		st.loaded = true
		st.stamped = false
		return st.data, nil
	}

	if st.loaded && st.stamped && fi.ModTime().Equal(st.lastMod) {
		return st.data, nil
	}

	data, err := config.LoadOverrides(path)
	if err != nil {
		s.log.Error("tenant settings malformed, using empty overrides", "tenant", tenant, "error", err)
		if !st.loaded {
			st.data = &config.Overrides{}
			st.loaded = true
		}
		return st.data, err
	}

	st.data = data
	st.lastMod = fi.ModTime()
	st.stamped = true
	st.loaded = true
	return st.data, nil
}

// Save persists the tenant's personal settings and re-stamps. Root account
// settings belong in the global file, not here.
func (s *OverrideStore) Save(tenant string, o *config.Overrides) error {
	if tenant == domain.RootAccount {
		return nil
	}

	st := s.state(tenant)
	st.mu.Lock()
	defer st.mu.Unlock()

	path := s.vault.TenantSettingsFile(tenant)
	if err := o.Save(path); err != nil {
		return err
	}

	st.data = o
	st.loaded = true
	if fi, err := os.Stat(path); err == nil {
		st.lastMod = fi.ModTime()
		st.stamped = true
	} else {
		st.stamped = false
	}
	return nil
}
