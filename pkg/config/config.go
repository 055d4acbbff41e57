package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const (
	// DefaultTheme is applied when neither the system settings nor a
	// tenant override names one.
	DefaultTheme = "cerulean"

	defaultMaxFileSizeMB       = 100
	defaultSessionLifetimeDays = 30
)

// Settings holds the system-wide defaults stored in config/settings.yaml.
type Settings struct {
	App     AppSettings     `yaml:"app"`
	Session SessionSettings `yaml:"session"`
}

type AppSettings struct {
	Theme         string `yaml:"theme"`
	MarkdownTheme string `yaml:"markdown_theme"`
	MaxFileSizeMB int    `yaml:"max_file_size_mb"`
}

type SessionSettings struct {
	LifetimeDays int `yaml:"permanent_lifetime_days"`
}

// Overrides holds one tenant's personal settings (accounts/<user>/settings.yaml).
// Empty fields inherit the system defaults.
type Overrides struct {
	App AppOverrides `yaml:"app"`
}

type AppOverrides struct {
	Theme         string `yaml:"theme,omitempty"`
	MarkdownTheme string `yaml:"markdown_theme,omitempty"`
}

// DefaultSettings returns a Settings struct with default values.
func DefaultSettings() *Settings {
	return &Settings{
		App: AppSettings{
			Theme:         DefaultTheme,
			MarkdownTheme: DefaultTheme,
			MaxFileSizeMB: defaultMaxFileSizeMB,
		},
		Session: SessionSettings{
			LifetimeDays: defaultSessionLifetimeDays,
		},
	}
}

// LoadSettings reads the system settings file. A missing file is not an
// error: defaults are written to establish it. A malformed file surfaces an
// error and is left untouched on disk for inspection.
func LoadSettings(path string) (*Settings, error) {
	cfg := DefaultSettings()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			if err := cfg.Save(path); err != nil {
				return nil, err
			}
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read settings file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse settings file: %w", err)
	}

	// Fill in essentials a hand-edited file may have dropped.
	if cfg.App.Theme == "" {
		cfg.App.Theme = DefaultTheme
	}
	if cfg.App.MarkdownTheme == "" {
		cfg.App.MarkdownTheme = cfg.App.Theme
	}
	if cfg.App.MaxFileSizeMB <= 0 {
		cfg.App.MaxFileSizeMB = defaultMaxFileSizeMB
	}
	if cfg.Session.LifetimeDays <= 0 {
		cfg.Session.LifetimeDays = defaultSessionLifetimeDays
	}

	return cfg, nil
}

// Save persists the settings to the given path.
func (s *Settings) Save(path string) error {
	return writeYAML(path, s)
}

// MaxFileSizeBytes returns the upload size limit in bytes.
func (s *Settings) MaxFileSizeBytes() int64 {
	return int64(s.App.MaxFileSizeMB) * 1024 * 1024
}

// LoadOverrides reads a tenant's personal settings file. A missing file
// simply means no overrides.
func LoadOverrides(path string) (*Overrides, error) {
	o := &Overrides{}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return o, nil
		}
		return nil, fmt.Errorf("failed to read tenant settings: %w", err)
	}

	if err := yaml.Unmarshal(data, o); err != nil {
		return nil, fmt.Errorf("failed to parse tenant settings: %w", err)
	}

	return o, nil
}

// Save persists the overrides to the given path.
func (o *Overrides) Save(path string) error {
	return writeYAML(path, o)
}

// EffectiveTheme resolves the theme for a tenant: personal override first,
// then the system default.
func EffectiveTheme(s *Settings, o *Overrides) string {
	if o != nil && o.App.Theme != "" {
		return o.App.Theme
	}
	if s != nil && s.App.Theme != "" {
		return s.App.Theme
	}
	return DefaultTheme
}

// EffectiveMarkdownTheme resolves the markdown rendering theme for a tenant.
func EffectiveMarkdownTheme(s *Settings, o *Overrides) string {
	if o != nil && o.App.MarkdownTheme != "" {
		return o.App.MarkdownTheme
	}
	if s != nil && s.App.MarkdownTheme != "" {
		return s.App.MarkdownTheme
	}
	return DefaultTheme
}

func writeYAML(path string, v any) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
