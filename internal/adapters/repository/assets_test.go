package repository

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestAssetArea_ImportFile(t *testing.T) {
	v := testVault(t)
	area := NewAssetArea(v, testLogger())

	src := filepath.Join(t.TempDir(), "Quarterly Report.PDF")
	content := []byte("%PDF-1.4 fake content")
	if err := os.WriteFile(src, content, 0644); err != nil {
		t.Fatalf("failed to create source file: %v", err)
	}

	stored, meta, err := area.ImportFile("alice", src)
	if err != nil {
		t.Fatalf("import failed: %v", err)
	}

	// The stored name is a fresh UUID with a lowercased extension, never the
	// caller's filename.
	if strings.Contains(stored, "Quarterly") {
		t.Errorf("stored name leaked the original filename: %q", stored)
	}
	if !strings.HasSuffix(stored, ".pdf") {
		t.Errorf("stored name = %q, want .pdf suffix", stored)
	}

	if meta.OriginalFilename != "Quarterly Report.PDF" {
		t.Errorf("OriginalFilename = %q", meta.OriginalFilename)
	}
	if meta.FileSize != int64(len(content)) {
		t.Errorf("FileSize = %d, want %d", meta.FileSize, len(content))
	}
	if meta.UploadedAt == "" {
		t.Error("UploadedAt not set")
	}

	got, err := os.ReadFile(v.AssetPath("alice", stored))
	if err != nil {
		t.Fatalf("stored file unreadable: %v", err)
	}
	if string(got) != string(content) {
		t.Error("stored content does not match the source")
	}
}

func TestAssetArea_ImportFile_NoExtension(t *testing.T) {
	v := testVault(t)
	area := NewAssetArea(v, testLogger())

	src := filepath.Join(t.TempDir(), "LICENSE")
	if err := os.WriteFile(src, []byte("text"), 0644); err != nil {
		t.Fatalf("failed to create source file: %v", err)
	}

	stored, _, err := area.ImportFile("alice", src)
	if err != nil {
		t.Fatalf("import failed: %v", err)
	}
	if !strings.HasSuffix(stored, ".bin") {
		t.Errorf("stored name = %q, want .bin fallback", stored)
	}
}

func TestAssetArea_RemoveAsset_AbsentIsNoop(t *testing.T) {
	v := testVault(t)
	area := NewAssetArea(v, testLogger())

	if err := area.RemoveAsset("alice", "never-existed.pdf"); err != nil {
		t.Errorf("removing an absent asset must be a no-op, got %v", err)
	}
}

func TestAssetArea_Stats(t *testing.T) {
	v := testVault(t)
	area := NewAssetArea(v, testLogger())

	if err := area.Provision("alice", true); err != nil {
		t.Fatalf("provision failed: %v", err)
	}

	// Empty area.
	files, bytes, err := area.Stats("alice")
	if err != nil {
		t.Fatalf("stats failed: %v", err)
	}
	if files != 0 || bytes != 0 {
		t.Errorf("empty area: files=%d bytes=%d", files, bytes)
	}

	_, _, err = area.WriteText("alice", "# hello", "md", "hello.md")
	if err != nil {
		t.Fatalf("write failed: %v", err)
	}
	_, _, err = area.WriteText("alice", "<p>hi</p>", "html", "hi.html")
	if err != nil {
		t.Fatalf("write failed: %v", err)
	}

	files, bytes, err = area.Stats("alice")
	if err != nil {
		t.Fatalf("stats failed: %v", err)
	}
	if files != 2 {
		t.Errorf("files = %d, want 2", files)
	}
	if bytes != int64(len("# hello")+len("<p>hi</p>")) {
		t.Errorf("bytes = %d", bytes)
	}

	// A missing area reads as empty, not an error.
	files, _, err = area.Stats("ghost")
	if err != nil {
		t.Fatalf("stats on missing area failed: %v", err)
	}
	if files != 0 {
		t.Errorf("missing area: files = %d, want 0", files)
	}
}

func TestAssetArea_Provision_SettingsFile(t *testing.T) {
	v := testVault(t)
	area := NewAssetArea(v, testLogger())

	if err := area.Provision("alice", true); err != nil {
		t.Fatalf("provision failed: %v", err)
	}
	if _, err := os.Stat(v.TenantSettingsFile("alice")); err != nil {
		t.Errorf("expected personal settings file: %v", err)
	}

	// The root account gets no personal settings file.
	if err := area.Provision("admin", false); err != nil {
		t.Fatalf("provision failed: %v", err)
	}
	if _, err := os.Stat(v.TenantSettingsFile("admin")); !os.IsNotExist(err) {
		t.Error("root account must not have a personal settings file")
	}
}

func TestAssetArea_RemoveArea(t *testing.T) {
	v := testVault(t)
	area := NewAssetArea(v, testLogger())

	if err := area.Provision("alice", true); err != nil {
		t.Fatalf("provision failed: %v", err)
	}
	if _, _, err := area.WriteText("alice", "body", "md", "a.md"); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	if err := area.RemoveArea("alice"); err != nil {
		t.Fatalf("remove failed: %v", err)
	}
	if _, err := os.Stat(v.TenantDir("alice")); !os.IsNotExist(err) {
		t.Error("tenant directory survived removal")
	}
}
