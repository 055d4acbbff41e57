package domain

// RootAccount is the single distinguished privileged account. Its credential
// is never persisted; authentication checks a runtime-supplied secret only.
const RootAccount = "admin"

// Account is one entry in the shared account registry.
type Account struct {
	PasswordHash string `yaml:"password_hash,omitempty"`
	IsAdmin      bool   `yaml:"is_admin"`
	DisplayName  string `yaml:"display_name"`
	CreatedAt    string `yaml:"created_at"`
}

// AccountSet is the registry contents keyed by username.
type AccountSet map[string]Account

// Clone returns a shallow copy of the set.
func (s AccountSet) Clone() AccountSet {
	out := make(AccountSet, len(s))
	for name, acct := range s {
		out[name] = acct
	}
	return out
}

// Usernames returns the registered usernames in unspecified order.
func (s AccountSet) Usernames() []string {
	names := make([]string, 0, len(s))
	for name := range s {
		names = append(names, name)
	}
	return names
}

// TenantStats is a snapshot of what one tenant's storage area holds. Used
// both for usage display and as the pre-deletion preview.
type TenantStats struct {
	Username   string
	Records    int
	Files      int
	TotalBytes int64
}
