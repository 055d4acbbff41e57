package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadSettings_EstablishesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config", "settings.yaml")

	cfg, err := LoadSettings(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.App.Theme != DefaultTheme {
		t.Errorf("Theme = %q, want %q", cfg.App.Theme, DefaultTheme)
	}
	if cfg.App.MaxFileSizeMB != 100 {
		t.Errorf("MaxFileSizeMB = %d, want 100", cfg.App.MaxFileSizeMB)
	}

	// The defaults are written so the file exists for hand editing.
	if _, err := os.Stat(path); err != nil {
		t.Errorf("settings file not established: %v", err)
	}
}

func TestLoadSettings_FillsHandEditedGaps(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")
	partial := "app:\n  theme: slate\n"
	if err := os.WriteFile(path, []byte(partial), 0644); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	cfg, err := LoadSettings(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.App.Theme != "slate" {
		t.Errorf("Theme = %q, want the edited value", cfg.App.Theme)
	}
	// Markdown theme follows the main theme when unset.
	if cfg.App.MarkdownTheme != "slate" {
		t.Errorf("MarkdownTheme = %q, want %q", cfg.App.MarkdownTheme, "slate")
	}
	if cfg.App.MaxFileSizeMB != 100 {
		t.Errorf("MaxFileSizeMB = %d, want the default restored", cfg.App.MaxFileSizeMB)
	}
	if cfg.Session.LifetimeDays != 30 {
		t.Errorf("LifetimeDays = %d, want the default restored", cfg.Session.LifetimeDays)
	}
}

func TestLoadSettings_MalformedFileIsAnError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")
	if err := os.WriteFile(path, []byte("{{{"), 0644); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	if _, err := LoadSettings(path); err == nil {
		t.Fatal("expected an error for a malformed settings file")
	}

	// The broken file must be left for inspection.
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if string(data) != "{{{" {
		t.Error("malformed file was rewritten")
	}
}

func TestEffectiveTheme_Precedence(t *testing.T) {
	system := DefaultSettings()
	system.App.Theme = "flatly"

	override := &Overrides{}
	override.App.Theme = "darkly"

	tests := []struct {
		name string
		s    *Settings
		o    *Overrides
		want string
	}{
		{"override wins", system, override, "darkly"},
		{"system when no override", system, &Overrides{}, "flatly"},
		{"system when overrides nil", system, nil, "flatly"},
		{"builtin default as last resort", nil, nil, DefaultTheme},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := EffectiveTheme(tt.s, tt.o); got != tt.want {
				t.Errorf("EffectiveTheme() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestLoadOverrides_MissingFileMeansEmpty(t *testing.T) {
	o, err := LoadOverrides(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if o.App.Theme != "" {
		t.Errorf("Theme = %q, want empty", o.App.Theme)
	}
}

func TestSettings_MaxFileSizeBytes(t *testing.T) {
	s := DefaultSettings()
	s.App.MaxFileSizeMB = 2
	if got := s.MaxFileSizeBytes(); got != 2*1024*1024 {
		t.Errorf("MaxFileSizeBytes() = %d", got)
	}
}
