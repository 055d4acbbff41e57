package domain

import (
	"path/filepath"
	"strings"
	"time"
)

// Kind identifies what a short code resolves to.
type Kind string

const (
	KindFile     Kind = "file"
	KindRedirect Kind = "redirect"
	KindMarkdown Kind = "markdown"
	KindHTML     Kind = "html"
)

// Valid reports whether k is one of the recognized kinds.
func (k Kind) Valid() bool {
	switch k {
	case KindFile, KindRedirect, KindMarkdown, KindHTML:
		return true
	}
	return false
}

// HasAsset reports whether records of this kind reference a stored file.
func (k Kind) HasAsset() bool {
	return k == KindFile || k == KindMarkdown || k == KindHTML
}

// AssetMeta carries upload metadata for asset-backed records. Records written
// by older format versions may lack it entirely.
type AssetMeta struct {
	OriginalFilename string `yaml:"original_filename,omitempty"`
	FileSize         int64  `yaml:"file_size,omitempty"`
	MimeType         string `yaml:"mime_type,omitempty"`
	UploadedAt       string `yaml:"uploaded_at,omitempty"`
}

// Link is one short-code record. Exactly one of Path (file/markdown/html) or
// URL (redirect) is meaningful depending on Kind.
type Link struct {
	Kind      Kind       `yaml:"type"`
	Path      string     `yaml:"path,omitempty"`
	URL       string     `yaml:"url,omitempty"`
	ExpiresAt string     `yaml:"expires_at,omitempty"`
	Asset     *AssetMeta `yaml:"asset,omitempty"`
}

// LinkSet is one tenant's records keyed by short code.
type LinkSet map[string]Link

// Clone returns a shallow copy of the set so readers can't mutate the
// store's authoritative state.
func (s LinkSet) Clone() LinkSet {
	out := make(LinkSet, len(s))
	for code, link := range s {
		out[code] = link
	}
	return out
}

// Target returns the kind-dependent destination of the link.
func (l Link) Target() string {
	if l.Kind == KindRedirect {
		return l.URL
	}
	return l.Path
}

// DisplayName returns a user-facing label for the record's asset. When upload
// metadata is absent (older records), it derives a best-effort label from the
// stored filename.
func (l Link) DisplayName() string {
	if l.Asset != nil && l.Asset.OriginalFilename != "" {
		return l.Asset.OriginalFilename
	}
	if l.Path != "" {
		return filepath.Base(l.Path)
	}
	return ""
}

// ExpiryTime parses the record's expiration timestamp. The second return
// value is false when no expiry is set or the stored value is unparsable:
// a malformed value must read as "never expires" rather than destroy data.
func (l Link) ExpiryTime() (time.Time, bool) {
	if l.ExpiresAt == "" {
		return time.Time{}, false
	}

	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"} {
		if t, err := time.ParseInLocation(layout, l.ExpiresAt, time.Local); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// ExpiredAt reports whether the record is strictly past its expiry at now.
func (l Link) ExpiredAt(now time.Time) bool {
	exp, ok := l.ExpiryTime()
	if !ok {
		return false
	}
	return now.After(exp)
}

// Validate checks the kind-specific required fields. Absence of the required
// target is a creation error, never a silent default.
func (l Link) Validate() error {
	if !l.Kind.Valid() {
		return ErrInvalidKind
	}
	if l.Kind == KindRedirect {
		if strings.TrimSpace(l.URL) == "" {
			return ErrMissingTarget
		}
		return nil
	}
	if strings.TrimSpace(l.Path) == "" {
		return ErrMissingTarget
	}
	return nil
}
