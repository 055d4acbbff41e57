package repository

import (
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"mime"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"lnk/internal/core/domain"
	"lnk/internal/core/ports"
	"lnk/pkg/config"
	"lnk/pkg/vault"
)

// AssetArea manages tenant storage areas on the real filesystem. Stored
// assets are named by a random UUID, never by the user-supplied filename.
type AssetArea struct {
	vault *vault.Vault
	log   *slog.Logger
}

// NewAssetArea creates an asset area adapter over the given vault.
func NewAssetArea(v *vault.Vault, log *slog.Logger) *AssetArea {
	return &AssetArea{vault: v, log: log}
}

var _ ports.AssetStore = (*AssetArea)(nil)

// Provision creates the tenant directory and assets subdirectory, and for
// non-root tenants an empty personal settings file.
func (a *AssetArea) Provision(tenant string, withSettings bool) error {
	if err := os.MkdirAll(a.vault.AssetsDir(tenant), 0755); err != nil {
		return fmt.Errorf("failed to create tenant storage area: %w", err)
	}

	if withSettings {
		path := a.vault.TenantSettingsFile(tenant)
		if _, err := os.Stat(path); os.IsNotExist(err) {
			empty := &config.Overrides{}
			if err := empty.Save(path); err != nil {
				return err
			}
		}
	}
	return nil
}

// RemoveArea recursively deletes the tenant's entire storage area.
func (a *AssetArea) RemoveArea(tenant string) error {
	dir := a.vault.TenantDir(tenant)
	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("failed to remove tenant storage area: %w", err)
	}
	return nil
}

// RemoveAsset deletes one stored asset. Deleting an already-absent file is a
// no-op so sweeps stay idempotent.
func (a *AssetArea) RemoveAsset(tenant, filename string) error {
	path := a.vault.AssetPath(tenant, filename)
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove asset %s: %w", filename, err)
	}
	return nil
}

// ImportFile copies a local file into the tenant's assets directory under a
// fresh UUID name and returns the stored name plus upload metadata.
func (a *AssetArea) ImportFile(tenant, sourcePath string) (string, *domain.AssetMeta, error) {
	src, err := os.Open(sourcePath)
	if err != nil {
		return "", nil, fmt.Errorf("failed to open source file: %w", err)
	}
	defer src.Close()

	original := filepath.Base(sourcePath)
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(original), "."))
	if ext == "" {
		ext = "bin"
	}

	stored := fmt.Sprintf("%s.%s", uuid.NewString(), ext)
	if err := os.MkdirAll(a.vault.AssetsDir(tenant), 0755); err != nil {
		return "", nil, fmt.Errorf("failed to create assets directory: %w", err)
	}

	dstPath := a.vault.AssetPath(tenant, stored)
	dst, err := os.Create(dstPath)
	if err != nil {
		return "", nil, fmt.Errorf("failed to create asset file: %w", err)
	}

	size, err := io.Copy(dst, src)
	if cerr := dst.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(dstPath)
		return "", nil, fmt.Errorf("failed to store asset: %w", err)
	}

	a.log.Info("asset imported", "tenant", tenant, "original", original, "stored", stored, "bytes", size)

	return stored, &domain.AssetMeta{
		OriginalFilename: original,
		FileSize:         size,
		MimeType:         mimeTypeFor(ext),
		UploadedAt:       time.Now().Format(time.RFC3339),
	}, nil
}

// WriteText stores inline content (markdown or html bodies) as an asset.
func (a *AssetArea) WriteText(tenant, content, ext, displayName string) (string, *domain.AssetMeta, error) {
	if ext == "" {
		ext = "txt"
	}
	stored := fmt.Sprintf("%s.%s", uuid.NewString(), ext)

	if err := os.MkdirAll(a.vault.AssetsDir(tenant), 0755); err != nil {
		return "", nil, fmt.Errorf("failed to create assets directory: %w", err)
	}
	if err := os.WriteFile(a.vault.AssetPath(tenant, stored), []byte(content), 0644); err != nil {
		return "", nil, fmt.Errorf("failed to store content: %w", err)
	}

	return stored, &domain.AssetMeta{
		OriginalFilename: displayName,
		FileSize:         int64(len(content)),
		MimeType:         mimeTypeFor(ext),
		UploadedAt:       time.Now().Format(time.RFC3339),
	}, nil
}

// Stats walks the tenant's assets directory counting files and bytes.
// Unreadable entries are skipped so a preview never fails outright.
func (a *AssetArea) Stats(tenant string) (int, int64, error) {
	dir := a.vault.AssetsDir(tenant)

	var files int
	var total int64
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if os.IsNotExist(err) {
				return nil
			}
			a.log.Warn("skipping unreadable entry during stats", "path", path, "error", err)
			return nil
		}
		if d.IsDir() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			a.log.Warn("skipping unstattable file during stats", "path", path, "error", err)
			return nil
		}
		files++
		total += info.Size()
		return nil
	})
	if err != nil {
		return files, total, fmt.Errorf("failed to scan assets directory: %w", err)
	}
	return files, total, nil
}

func mimeTypeFor(ext string) string {
	if t := mime.TypeByExtension("." + ext); t != "" {
		return t
	}
	return "application/octet-stream"
}
