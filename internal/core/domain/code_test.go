package domain

import (
	"errors"
	"strings"
	"testing"
)

func TestValidateCode(t *testing.T) {
	tests := []struct {
		name    string
		code    string
		wantErr error
	}{
		{"simple code", "launch", nil},
		{"single char", "a", nil},
		{"digits and separators", "q3_report-2026", nil},
		{"max length", strings.Repeat("x", 50), nil},
		{"empty", "", ErrInvalidCode},
		{"too long", strings.Repeat("x", 51), ErrInvalidCode},
		{"space", "my code", ErrInvalidCode},
		{"slash", "a/b", ErrInvalidCode},
		{"unicode", "café", ErrInvalidCode},
		{"reserved word", "admin", ErrReservedCode},
		{"reserved word uppercase", "ADMIN", ErrReservedCode},
		{"reserved route", "login", ErrReservedCode},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateCode(tt.code)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("ValidateCode(%q) = %v, want nil", tt.code, err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateCode(%q) = %v, want %v", tt.code, err, tt.wantErr)
			}
		})
	}
}

func TestIsReservedCode_CaseInsensitive(t *testing.T) {
	for _, code := range []string{"settings", "Settings", "SETTINGS", "switch-user"} {
		if !IsReservedCode(code) {
			t.Errorf("IsReservedCode(%q) = false, want true", code)
		}
	}
	if IsReservedCode("launch") {
		t.Error("IsReservedCode(\"launch\") = true, want false")
	}
}
