package domain

import "errors"

var (
	// Record errors.
	ErrNotFound      = errors.New("link not found")
	ErrCodeTaken     = errors.New("short code already exists")
	ErrInvalidCode   = errors.New("invalid short code")
	ErrReservedCode  = errors.New("short code is a reserved word")
	ErrInvalidKind   = errors.New("invalid link type")
	ErrMissingTarget = errors.New("link target is required")
	// ErrCodeSpaceExhausted signals the bounded auto-generation probe gave up.
	ErrCodeSpaceExhausted = errors.New("could not allocate a unique short code")

	// Account errors.
	ErrAccountNotFound = errors.New("account not found")
	ErrAccountExists   = errors.New("account already exists")
	ErrNotPrivileged   = errors.New("operation requires an admin account")
	ErrRootAccount     = errors.New("the admin account cannot be deleted")
	ErrRootCredential  = errors.New("the admin credential is supplied at runtime, never stored")
	ErrBadCredentials  = errors.New("invalid username or password")
)

// IsNotFound reports whether err is a record or account not-found condition.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) || errors.Is(err, ErrAccountNotFound)
}

// IsConflict reports whether err indicates a uniqueness conflict.
func IsConflict(err error) bool {
	return errors.Is(err, ErrCodeTaken) || errors.Is(err, ErrAccountExists)
}
