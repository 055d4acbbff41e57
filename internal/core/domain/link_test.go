package domain

import (
	"testing"
	"time"
)

func TestLink_ExpiryTime_Formats(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  bool
	}{
		{"empty means never", "", false},
		{"rfc3339", "2026-01-02T15:04:05Z", true},
		{"rfc3339 with offset", "2026-01-02T15:04:05+02:00", true},
		{"local datetime", "2026-01-02T15:04:05", true},
		{"bare date", "2026-01-02", true},
		{"garbage reads as never", "next tuesday", false},
		{"partial date reads as never", "2026-13-45", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := Link{Kind: KindRedirect, URL: "https://example.com", ExpiresAt: tt.value}
			_, ok := l.ExpiryTime()
			if ok != tt.want {
				t.Errorf("ExpiryTime() ok = %v, want %v for %q", ok, tt.want, tt.value)
			}
		})
	}
}

func TestLink_ExpiredAt(t *testing.T) {
	now := time.Date(2026, 6, 15, 12, 0, 0, 0, time.Local)

	tests := []struct {
		name    string
		expires string
		want    bool
	}{
		{"no expiry never expires", "", false},
		{"future date", "2026-12-31", false},
		{"past date", "2026-01-01", true},
		{"malformed value never expires", "not-a-date", false},
		{"exact instant is not yet expired", "2026-06-15T12:00:00", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := Link{Kind: KindRedirect, URL: "https://example.com", ExpiresAt: tt.expires}
			if got := l.ExpiredAt(now); got != tt.want {
				t.Errorf("ExpiredAt() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestLink_Validate(t *testing.T) {
	tests := []struct {
		name    string
		link    Link
		wantErr error
	}{
		{"valid redirect", Link{Kind: KindRedirect, URL: "https://example.com"}, nil},
		{"valid file", Link{Kind: KindFile, Path: "abc.pdf"}, nil},
		{"valid markdown", Link{Kind: KindMarkdown, Path: "abc.md"}, nil},
		{"redirect without url", Link{Kind: KindRedirect}, ErrMissingTarget},
		{"redirect with blank url", Link{Kind: KindRedirect, URL: "   "}, ErrMissingTarget},
		{"file without path", Link{Kind: KindFile}, ErrMissingTarget},
		{"unknown kind", Link{Kind: "gopher", URL: "gopher://x"}, ErrInvalidKind},
		{"empty kind", Link{URL: "https://example.com"}, ErrInvalidKind},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.link.Validate()
			if err != tt.wantErr {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestLink_DisplayName(t *testing.T) {
	withMeta := Link{
		Kind:  KindFile,
		Path:  "3f2a-uuid.pdf",
		Asset: &AssetMeta{OriginalFilename: "report.pdf"},
	}
	if got := withMeta.DisplayName(); got != "report.pdf" {
		t.Errorf("DisplayName() = %q, want %q", got, "report.pdf")
	}

	// Records written before upload metadata existed fall back to the
	// stored filename.
	legacy := Link{Kind: KindFile, Path: "uploads/3f2a-uuid.pdf"}
	if got := legacy.DisplayName(); got != "3f2a-uuid.pdf" {
		t.Errorf("DisplayName() = %q, want %q", got, "3f2a-uuid.pdf")
	}
}

func TestLinkSet_Clone_Isolated(t *testing.T) {
	original := LinkSet{"a": {Kind: KindRedirect, URL: "https://a.example"}}
	clone := original.Clone()

	clone["b"] = Link{Kind: KindRedirect, URL: "https://b.example"}
	delete(clone, "a")

	if len(original) != 1 {
		t.Errorf("mutating the clone changed the original: %v", original)
	}
	if _, ok := original["a"]; !ok {
		t.Error("original lost its entry after clone mutation")
	}
}
