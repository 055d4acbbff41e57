package ports

import (
	"context"
	"time"

	"lnk/internal/core/domain"
)

// LinkStore defines the port for per-tenant record persistence. Implementations
// must keep one mutual-exclusion domain per tenant: Mutate runs its callback
// with load, mutation, and save inside a single critical section so a reload
// can never race a concurrent save and drop an in-flight edit.
type LinkStore interface {
	// Load returns a tenant's record set, reloading from disk only when the
	// backing file changed since the last observation. A missing file is
	// synthesized as an empty set and written to establish it.
	Load(ctx context.Context, tenant string) (domain.LinkSet, error)

	// Save persists the set and re-stamps the freshness timestamp.
	Save(ctx context.Context, tenant string, links domain.LinkSet) error

	// Mutate loads the freshest set, applies fn, and saves when fn reports a
	// change, all under the tenant's lock.
	Mutate(ctx context.Context, tenant string, fn func(links domain.LinkSet) (bool, error)) error

	// SetTenant switches the current tenant context, invalidating only the
	// departing tenant's freshness state.
	SetTenant(tenant string)

	// Current returns the current tenant context ("" when unset).
	Current() string

	// ResolveTenant picks the effective tenant: explicit argument, then the
	// current context, then the fixed default tenant.
	ResolveTenant(explicit string) string
}

// AccountStore defines the port for the shared account registry file. One
// mutex domain for the whole registry: uniqueness checks must be atomic with
// the subsequent write.
type AccountStore interface {
	Load(ctx context.Context) (domain.AccountSet, error)
	Save(ctx context.Context, accounts domain.AccountSet) error
	Mutate(ctx context.Context, fn func(accounts domain.AccountSet) (bool, error)) error
}

// AssetStore defines the port for tenant storage areas. Kept narrow so
// cascading deletion is testable with an in-memory double.
type AssetStore interface {
	// Provision creates the tenant directory, assets subdirectory, and (for
	// non-root tenants) an empty personal settings file.
	Provision(tenant string, withSettings bool) error

	// RemoveArea recursively deletes the tenant's entire storage area.
	RemoveArea(tenant string) error

	// RemoveAsset deletes one stored asset. Removing an absent file is a
	// no-op, not an error.
	RemoveAsset(tenant, filename string) error

	// ImportFile copies a local file into the tenant's assets directory under
	// a random unique name and returns that name plus upload metadata.
	ImportFile(tenant, sourcePath string) (string, *domain.AssetMeta, error)

	// WriteText stores inline content (markdown/html) as an asset.
	WriteText(tenant, content, ext, displayName string) (string, *domain.AssetMeta, error)

	// Stats walks the tenant's assets and returns file count and total bytes.
	// Individual unreadable files are skipped, not fatal.
	Stats(tenant string) (int, int64, error)
}

// Hasher is the pluggable one-way function for account credentials.
type Hasher interface {
	Hash(secret string) (string, error)
	Verify(secret, hash string) bool
}

// Clock supplies the current time so expiration logic is testable.
type Clock interface {
	Now() time.Time
}

// CodeSource produces cryptographically unpredictable short-code candidates.
type CodeSource interface {
	NewCode() (string, error)
}
