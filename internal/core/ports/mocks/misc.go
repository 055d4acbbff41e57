package mocks

import (
	"sync"
	"time"
)

// MockClock returns a fixed, settable time.
type MockClock struct {
	mu  sync.Mutex
	now time.Time
}

// NewMockClock creates a clock frozen at t.
func NewMockClock(t time.Time) *MockClock {
	return &MockClock{now: t}
}

// Now returns the frozen time.
func (c *MockClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward.
func (c *MockClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// MockHasher is a transparent stand-in for the one-way hash function.
type MockHasher struct{}

func (MockHasher) Hash(secret string) (string, error) {
	return "hashed!" + secret, nil
}

func (MockHasher) Verify(secret, hash string) bool {
	return hash == "hashed!"+secret
}

// MockCodeSource hands out a fixed sequence of codes, then falls back to
// repeating the last one.
type MockCodeSource struct {
	mu    sync.Mutex
	codes []string
	idx   int
}

// NewMockCodeSource creates a source that yields codes in order.
func NewMockCodeSource(codes ...string) *MockCodeSource {
	return &MockCodeSource{codes: codes}
}

func (s *MockCodeSource) NewCode() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.codes) == 0 {
		return "generated", nil
	}
	code := s.codes[s.idx]
	if s.idx < len(s.codes)-1 {
		s.idx++
	}
	return code, nil
}
