package identity

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"

	"lnk/internal/core/ports"
)

// BcryptHasher is the default one-way function for account credentials.
type BcryptHasher struct {
	Cost int
}

var _ ports.Hasher = (*BcryptHasher)(nil)

// NewBcryptHasher creates a hasher at the library's default cost.
func NewBcryptHasher() *BcryptHasher {
	return &BcryptHasher{Cost: bcrypt.DefaultCost}
}

func (h *BcryptHasher) Hash(secret string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(secret), h.Cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash credential: %w", err)
	}
	return string(hashed), nil
}

func (h *BcryptHasher) Verify(secret, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(secret)) == nil
}

// TokenSource generates URL-safe random short codes from crypto/rand.
// Six random bytes encode to eight characters of [A-Za-z0-9_-].
type TokenSource struct {
	Bytes int
}

var _ ports.CodeSource = (*TokenSource)(nil)

// NewTokenSource creates a source producing 8-character codes.
func NewTokenSource() *TokenSource {
	return &TokenSource{Bytes: 6}
}

func (t *TokenSource) NewCode() (string, error) {
	buf := make([]byte, t.Bytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to read random bytes: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// SystemClock reads the real time.
type SystemClock struct{}

var _ ports.Clock = SystemClock{}

func (SystemClock) Now() time.Time {
	return time.Now()
}
