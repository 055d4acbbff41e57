package mocks

import (
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"lnk/internal/core/domain"
)

// MockAssetStore is an in-memory tenant storage area double used to test
// cascading deletion without touching the filesystem.
type MockAssetStore struct {
	mu      sync.Mutex
	files   map[string]map[string][]byte // tenant -> filename -> content
	next    int
	removed []string // "tenant/filename" in removal order

	RemoveAreaErr  error
	RemoveAssetErr error
}

// NewMockAssetStore creates an empty mock asset store.
func NewMockAssetStore() *MockAssetStore {
	return &MockAssetStore{files: make(map[string]map[string][]byte)}
}

// Put stores an asset directly for test setup.
func (m *MockAssetStore) Put(tenant, filename string, content []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.area(tenant)[filename] = content
}

// Has reports whether an asset exists.
func (m *MockAssetStore) Has(tenant, filename string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.files[tenant][filename]
	return ok
}

// Removed returns the "tenant/filename" pairs removed so far.
func (m *MockAssetStore) Removed() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.removed...)
}

func (m *MockAssetStore) area(tenant string) map[string][]byte {
	if m.files[tenant] == nil {
		m.files[tenant] = make(map[string][]byte)
	}
	return m.files[tenant]
}

// Provision creates the tenant's in-memory area.
func (m *MockAssetStore) Provision(tenant string, withSettings bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.area(tenant)
	return nil
}

// RemoveArea drops the tenant's whole area.
func (m *MockAssetStore) RemoveArea(tenant string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.RemoveAreaErr != nil {
		return m.RemoveAreaErr
	}
	delete(m.files, tenant)
	return nil
}

// RemoveAsset drops one asset; absent files are a no-op.
func (m *MockAssetStore) RemoveAsset(tenant, filename string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.RemoveAssetErr != nil {
		return m.RemoveAssetErr
	}
	if _, ok := m.files[tenant][filename]; ok {
		delete(m.files[tenant], filename)
		m.removed = append(m.removed, tenant+"/"+filename)
	}
	return nil
}

// ImportFile pretends to copy sourcePath in, naming assets sequentially so
// tests are deterministic.
func (m *MockAssetStore) ImportFile(tenant, sourcePath string) (string, *domain.AssetMeta, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.next++
	ext := strings.TrimPrefix(filepath.Ext(sourcePath), ".")
	if ext == "" {
		ext = "bin"
	}
	name := fmt.Sprintf("asset-%d.%s", m.next, ext)
	m.area(tenant)[name] = []byte(sourcePath)

	return name, &domain.AssetMeta{
		OriginalFilename: filepath.Base(sourcePath),
		FileSize:         int64(len(sourcePath)),
		MimeType:         "application/octet-stream",
	}, nil
}

// WriteText stores inline content as an asset.
func (m *MockAssetStore) WriteText(tenant, content, ext, displayName string) (string, *domain.AssetMeta, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.next++
	name := fmt.Sprintf("asset-%d.%s", m.next, ext)
	m.area(tenant)[name] = []byte(content)

	return name, &domain.AssetMeta{
		OriginalFilename: displayName,
		FileSize:         int64(len(content)),
		MimeType:         "text/plain",
	}, nil
}

// Stats counts the tenant's stored assets.
func (m *MockAssetStore) Stats(tenant string) (int, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var total int64
	for _, content := range m.files[tenant] {
		total += int64(len(content))
	}
	return len(m.files[tenant]), total, nil
}
