package helpers

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	// ErrRefreshWindowClosed is returned when a token is too old to be refreshed.
	ErrRefreshWindowClosed = errors.New("jwt: refresh window closed")
	errMissingUserID       = errors.New("jwt: missing user id claim")
)

// JWTManager handles generation and validation of bearer tokens.
// A token is accepted until exp; it may be exchanged for a new one until iat+RefreshTTL.
type JWTManager struct {
	Secret     []byte
	Issuer     string
	TTL        time.Duration
	RefreshTTL time.Duration
	now        func() time.Time
}

func NewJWTManager(secret, issuer string, ttl, refreshTTL time.Duration) *JWTManager {
	return &JWTManager{
		Secret:     []byte(secret),
		Issuer:     issuer,
		TTL:        ttl,
		RefreshTTL: refreshTTL,
		now:        time.Now,
	}
}

// WithClock replaces the time source; used by tests.
func (m *JWTManager) WithClock(now func() time.Time) *JWTManager {
	if now != nil {
		m.now = now
	}
	return m
}

type Claims struct {
	UserID string `json:"uid"`
	jwt.RegisteredClaims
}

// RefreshDeadline is the last instant the token can be exchanged.
func (m *JWTManager) RefreshDeadline(c *Claims) time.Time {
	if c.IssuedAt == nil {
		return m.now()
	}
	return c.IssuedAt.Add(m.RefreshTTL)
}

// RevokeUntil is the last instant the token is accepted anywhere: the later of
// its expiry and its refresh deadline.
func (m *JWTManager) RevokeUntil(c *Claims) time.Time {
	until := m.RefreshDeadline(c)
	if c.ExpiresAt != nil && c.ExpiresAt.After(until) {
		return c.ExpiresAt.Time
	}
	return until
}

// Generate signs a new token for userID with a fresh jti.
func (m *JWTManager) Generate(userID string) (string, *Claims, error) {
	if userID == "" {
		return "", nil, errMissingUserID
	}
	now := m.now()
	claims := &Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   userID,
			Issuer:    m.Issuer,
			ExpiresAt: jwt.NewNumericDate(now.Add(m.TTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	s, err := t.SignedString(m.Secret)
	if err != nil {
		return "", nil, fmt.Errorf("jwt: sign token: %w", err)
	}
	return s, claims, nil
}

// Parse validates signature, issuer and expiry.
func (m *JWTManager) Parse(tokenStr string) (*Claims, error) {
	return m.parse(tokenStr, jwt.WithExpirationRequired(), jwt.WithTimeFunc(m.now))
}

// ParseForRefresh validates the signature and issuer but accepts an expired token
// as long as its refresh window is still open.
func (m *JWTManager) ParseForRefresh(tokenStr string) (*Claims, error) {
	claims, err := m.parse(tokenStr, jwt.WithoutClaimsValidation())
	if err != nil {
		return nil, err
	}
	if m.Issuer != "" && claims.Issuer != m.Issuer {
		return nil, fmt.Errorf("jwt: parse token: %w", jwt.ErrTokenInvalidIssuer)
	}
	if claims.IssuedAt == nil || m.now().After(m.RefreshDeadline(claims)) {
		return nil, ErrRefreshWindowClosed
	}
	return claims, nil
}

func (m *JWTManager) parse(tokenStr string, opts ...jwt.ParserOption) (*Claims, error) {
	if tokenStr == "" {
		return nil, errors.New("jwt: token string is empty")
	}
	opts = append(opts, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if m.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(m.Issuer))
	}
	claims := &Claims{}
	tkn, err := jwt.NewParser(opts...).ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		return m.Secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("jwt: parse token: %w", err)
	}
	if !tkn.Valid {
		return nil, errors.New("jwt: invalid token")
	}
	if claims.UserID == "" {
		return nil, errMissingUserID
	}
	return claims, nil
}
