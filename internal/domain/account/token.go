package account

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"io"
	"time"
)

// VerificationTTL is how long a registration-confirm or password-reset token stays usable.
const VerificationTTL = 30 * time.Minute

const (
	tokenBytes       = 32
	placeholderBytes = 24
	// PlaceholderDomain suffixes the random local part stored in email while unverified.
	PlaceholderDomain = "@temp.tmp"
)

// TokenIssuer generates single-use opaque verification tokens.
type TokenIssuer struct {
	rand io.Reader
	now  func() time.Time
}

// NewTokenIssuer returns an issuer backed by crypto/rand and the given clock.
func NewTokenIssuer(now func() time.Time) *TokenIssuer {
	if now == nil {
		now = time.Now
	}
	return &TokenIssuer{rand: rand.Reader, now: now}
}

// Issue returns a fresh token and the instant it was issued.
func (i *TokenIssuer) Issue() (string, time.Time, error) {
	tok, err := i.randomString(tokenBytes)
	if err != nil {
		return "", time.Time{}, err
	}
	return tok, i.now().UTC(), nil
}

// Placeholder returns a random address that can never collide with a real one.
func (i *TokenIssuer) Placeholder() (string, error) {
	local, err := i.randomString(placeholderBytes)
	if err != nil {
		return "", err
	}
	return local + PlaceholderDomain, nil
}

func (i *TokenIssuer) randomString(n int) (string, error) {
	b := make([]byte, n)
	if _, err := io.ReadFull(i.rand, b); err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// IsValid reports whether presented matches the token on record and is within ttl of issuance.
func IsValid(onRecord *string, issuedAt *time.Time, presented string, now time.Time, ttl time.Duration) bool {
	if onRecord == nil || issuedAt == nil || presented == "" {
		return false
	}
	if subtle.ConstantTimeCompare([]byte(*onRecord), []byte(presented)) != 1 {
		return false
	}
	return now.Sub(*issuedAt) <= ttl
}
