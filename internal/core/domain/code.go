package domain

import (
	"fmt"
	"strings"
)

const (
	minCodeLength = 1
	maxCodeLength = 50
)

// reservedCodes are short codes that collide with the application's own
// routes and well-known paths. Matched case-insensitively.
var reservedCodes = map[string]struct{}{
	"settings": {}, "users": {}, "profile": {},
	"add": {}, "links": {}, "edit_link": {}, "delete_link": {}, "delete": {},
	"auth": {}, "login": {}, "logout": {}, "register": {},
	"switch-user": {}, "switch-back": {},
	"admin": {}, "api": {}, "static": {}, "assets": {},
	"edit": {}, "new": {}, "create": {}, "update": {}, "remove": {},
	"list": {}, "index": {}, "home": {}, "dashboard": {},
	"config": {}, "configuration": {}, "system": {}, "health": {}, "status": {},
	"favicon.ico": {}, "robots.txt": {}, "sitemap.xml": {},
}

// IsReservedCode reports whether code collides with a reserved word.
func IsReservedCode(code string) bool {
	_, ok := reservedCodes[strings.ToLower(code)]
	return ok
}

// ValidateCode checks length, charset, and the reserved-word blocklist.
// Codes are case-sensitive, 1-50 characters from [A-Za-z0-9_-].
func ValidateCode(code string) error {
	if len(code) < minCodeLength {
		return fmt.Errorf("%w: code cannot be empty", ErrInvalidCode)
	}
	if len(code) > maxCodeLength {
		return fmt.Errorf("%w: code must be %d characters or less", ErrInvalidCode, maxCodeLength)
	}
	for _, c := range code {
		if !isCodeChar(c) {
			return fmt.Errorf("%w: only letters, numbers, hyphens, and underscores are allowed", ErrInvalidCode)
		}
	}
	if IsReservedCode(code) {
		return fmt.Errorf("%w: %q", ErrReservedCode, code)
	}
	return nil
}

func isCodeChar(c rune) bool {
	switch {
	case c >= 'a' && c <= 'z':
		return true
	case c >= 'A' && c <= 'Z':
		return true
	case c >= '0' && c <= '9':
		return true
	case c == '-' || c == '_':
		return true
	}
	return false
}
