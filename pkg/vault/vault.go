package vault

import (
	"fmt"
	"os"
	"path/filepath"
)

// Vault represents the managed storage directory for lnk. All structured
// files and uploaded assets live under a single root:
//
//	<root>/config/settings.yaml
//	<root>/config/themes.yaml
//	<root>/accounts/accounts.yaml
//	<root>/accounts/<username>/links.yaml
//	<root>/accounts/<username>/settings.yaml
//	<root>/accounts/<username>/assets/<uuid>.<ext>
type Vault struct {
	RootPath     string
	ConfigPath   string
	AccountsPath string
}

// New creates a Vault rooted at the given path. An empty root resolves via
// the LNK_ROOT environment variable, then XDG data conventions.
func New(root string) (*Vault, error) {
	if root == "" {
		resolved, err := defaultRoot()
		if err != nil {
			return nil, fmt.Errorf("failed to determine vault root: %w", err)
		}
		root = resolved
	}

	return &Vault{
		RootPath:     root,
		ConfigPath:   filepath.Join(root, "config"),
		AccountsPath: filepath.Join(root, "accounts"),
	}, nil
}

func defaultRoot() (string, error) {
	if override := os.Getenv("LNK_ROOT"); override != "" {
		return override, nil
	}

	if xdgDataHome := os.Getenv("XDG_DATA_HOME"); xdgDataHome != "" {
		return filepath.Join(xdgDataHome, "lnk"), nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}

	// Windows keeps its data under APPDATA
	if appData := os.Getenv("APPDATA"); appData != "" {
		return filepath.Join(appData, "lnk"), nil
	}

	return filepath.Join(homeDir, ".local", "share", "lnk"), nil
}

// Initialize creates the top-level directory structure if it doesn't exist.
func (v *Vault) Initialize() error {
	directories := []string{
		v.RootPath,
		v.ConfigPath,
		v.AccountsPath,
	}

	for _, dir := range directories {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	return nil
}

// Exists checks if the vault has been initialized.
func (v *Vault) Exists() bool {
	info, err := os.Stat(v.RootPath)
	if err != nil {
		return false
	}
	return info.IsDir()
}

// SettingsFile returns the path to the system-wide settings file.
func (v *Vault) SettingsFile() string {
	return filepath.Join(v.ConfigPath, "settings.yaml")
}

// ThemesFile returns the path to the theme catalog file.
func (v *Vault) ThemesFile() string {
	return filepath.Join(v.ConfigPath, "themes.yaml")
}

// AccountsFile returns the path to the shared account registry file.
func (v *Vault) AccountsFile() string {
	return filepath.Join(v.AccountsPath, "accounts.yaml")
}

// TenantDir returns the storage area directory for one account.
func (v *Vault) TenantDir(username string) string {
	return filepath.Join(v.AccountsPath, username)
}

// LinksFile returns the path to a tenant's record file.
func (v *Vault) LinksFile(username string) string {
	return filepath.Join(v.TenantDir(username), "links.yaml")
}

// TenantSettingsFile returns the path to a tenant's personal settings file.
// The root account has no personal file; it edits the global settings.
func (v *Vault) TenantSettingsFile(username string) string {
	return filepath.Join(v.TenantDir(username), "settings.yaml")
}

// AssetsDir returns the path to a tenant's uploaded-assets directory.
func (v *Vault) AssetsDir(username string) string {
	return filepath.Join(v.TenantDir(username), "assets")
}

// AssetPath returns the full path for one stored asset.
func (v *Vault) AssetPath(username, filename string) string {
	return filepath.Join(v.AssetsDir(username), filename)
}
