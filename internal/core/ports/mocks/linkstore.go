package mocks

import (
	"context"
	"sync"

	"lnk/internal/core/domain"
)

// MockLinkStore is an in-memory implementation of the LinkStore port for
// testing. Failures can be injected per tenant via LoadErr/SaveErr.
type MockLinkStore struct {
	mu      sync.Mutex
	tenants map[string]domain.LinkSet
	current string

	LoadErr map[string]error
	SaveErr map[string]error

	// SaveCount records how many times Save ran per tenant, so tests can
	// assert that sweeps persist at most once.
	SaveCount map[string]int
}

// NewMockLinkStore creates an empty mock link store.
func NewMockLinkStore() *MockLinkStore {
	return &MockLinkStore{
		tenants:   make(map[string]domain.LinkSet),
		LoadErr:   make(map[string]error),
		SaveErr:   make(map[string]error),
		SaveCount: make(map[string]int),
	}
}

// Seed installs a tenant's record set directly.
func (m *MockLinkStore) Seed(tenant string, links domain.LinkSet) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tenants[tenant] = links.Clone()
}

// Load returns a copy of the tenant's record set.
func (m *MockLinkStore) Load(ctx context.Context, tenant string) (domain.LinkSet, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.LoadErr[tenant]; err != nil {
		return nil, err
	}
	set, ok := m.tenants[tenant]
	if !ok {
		set = make(domain.LinkSet)
		m.tenants[tenant] = set
	}
	return set.Clone(), nil
}

// Save replaces the tenant's record set.
func (m *MockLinkStore) Save(ctx context.Context, tenant string, links domain.LinkSet) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.SaveErr[tenant]; err != nil {
		return err
	}
	m.tenants[tenant] = links.Clone()
	m.SaveCount[tenant]++
	return nil
}

// Mutate applies fn to the tenant's set and saves on change.
func (m *MockLinkStore) Mutate(ctx context.Context, tenant string, fn func(links domain.LinkSet) (bool, error)) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.LoadErr[tenant]; err != nil {
		return err
	}
	set, ok := m.tenants[tenant]
	if !ok {
		set = make(domain.LinkSet)
		m.tenants[tenant] = set
	}

	changed, err := fn(set)
	if err != nil {
		return err
	}
	if changed {
		if err := m.SaveErr[tenant]; err != nil {
			return err
		}
		m.SaveCount[tenant]++
	}
	return nil
}

// SetTenant switches the current tenant context.
func (m *MockLinkStore) SetTenant(tenant string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.current = tenant
}

// Current returns the current tenant context.
func (m *MockLinkStore) Current() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current
}

// ResolveTenant picks explicit, then current, then the default tenant.
func (m *MockLinkStore) ResolveTenant(explicit string) string {
	if explicit != "" {
		return explicit
	}
	if cur := m.Current(); cur != "" {
		return cur
	}
	return domain.RootAccount
}
