package service

import (
	"crypto/rand"
	"crypto/subtle"
	"fmt"
	"math/big"
	"strings"
	"sync"
	"time"

	"zawawiya-store/internal/clock"
)

type otpEntry struct {
	code      string
	expiresAt time.Time
}

// OTPStore keeps one reset code per email until it expires or is consumed.
// It lives for the lifetime of the process.
type OTPStore struct {
	mu      sync.Mutex
	clock   clock.Clock
	ttl     time.Duration
	entries map[string]otpEntry
}

func NewOTPStore(c clock.Clock, ttl time.Duration) *OTPStore {
	return &OTPStore{
		clock:   c,
		ttl:     ttl,
		entries: make(map[string]otpEntry),
	}
}

// Issue creates a fresh 6-digit code for email, replacing any earlier one.
func (s *OTPStore) Issue(email string) (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
	if err != nil {
		return "", fmt.Errorf("generate code: %w", err)
	}
	code := fmt.Sprintf("%06d", n.Int64())

	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[normalizeEmail(email)] = otpEntry{
		code:      code,
		expiresAt: s.clock.Now().Add(s.ttl),
	}
	return code, nil
}

func (s *OTPStore) Verify(email, code string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.check(normalizeEmail(email), code)
}

// Consume verifies the code and removes it on success.
func (s *OTPStore) Consume(email, code string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := normalizeEmail(email)
	if !s.check(key, code) {
		return false
	}
	delete(s.entries, key)
	return true
}

func (s *OTPStore) check(key, code string) bool {
	e, ok := s.entries[key]
	if !ok {
		return false
	}
	if !s.clock.Now().Before(e.expiresAt) {
		delete(s.entries, key)
		return false
	}
	return subtle.ConstantTimeCompare([]byte(e.code), []byte(code)) == 1
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
