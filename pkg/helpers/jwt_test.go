package helpers

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

func newTestJWT(current *time.Time) *JWTManager {
	return NewJWTManager("super-secret", "accounts", time.Hour, 24*time.Hour).
		WithClock(func() time.Time { return *current })
}

func TestGenerateAndParse(t *testing.T) {
	current := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	m := newTestJWT(&current)

	token, issued, err := m.Generate("user-123")
	require.NoError(t, err)
	require.NotEmpty(t, token)
	require.NotEmpty(t, issued.ID)

	claims, err := m.Parse(token)
	require.NoError(t, err)
	require.Equal(t, "user-123", claims.UserID)
	require.Equal(t, "user-123", claims.Subject)
	require.Equal(t, "accounts", claims.Issuer)
	require.Equal(t, issued.ID, claims.ID)
	require.True(t, claims.ExpiresAt.Time.Equal(current.Add(time.Hour)))
	require.True(t, m.RefreshDeadline(claims).Equal(current.Add(24*time.Hour)))
}

func TestGenerateRequiresUserID(t *testing.T) {
	current := time.Now()
	_, _, err := newTestJWT(&current).Generate("")
	require.Error(t, err)
}

func TestParseRejectsExpired(t *testing.T) {
	current := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	m := newTestJWT(&current)
	token, _, err := m.Generate("user-123")
	require.NoError(t, err)

	current = current.Add(time.Hour + time.Second)
	_, err = m.Parse(token)
	require.Error(t, err)
	require.True(t, errors.Is(err, jwt.ErrTokenExpired))
}

func TestParseRejectsForeignSignatureAndIssuer(t *testing.T) {
	current := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	m := newTestJWT(&current)

	other := NewJWTManager("other-secret", "accounts", time.Hour, time.Hour).
		WithClock(func() time.Time { return current })
	token, _, err := other.Generate("user-123")
	require.NoError(t, err)
	_, err = m.Parse(token)
	require.True(t, errors.Is(err, jwt.ErrTokenSignatureInvalid))

	foreign := NewJWTManager("super-secret", "someone-else", time.Hour, time.Hour).
		WithClock(func() time.Time { return current })
	token, _, err = foreign.Generate("user-123")
	require.NoError(t, err)
	_, err = m.Parse(token)
	require.True(t, errors.Is(err, jwt.ErrTokenInvalidIssuer))
}

func TestParseForRefreshWindow(t *testing.T) {
	current := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	m := newTestJWT(&current)
	token, _, err := m.Generate("user-123")
	require.NoError(t, err)

	// expired for normal use but still refreshable
	current = current.Add(2 * time.Hour)
	_, err = m.Parse(token)
	require.Error(t, err)
	claims, err := m.ParseForRefresh(token)
	require.NoError(t, err)
	require.Equal(t, "user-123", claims.UserID)

	current = time.Date(2024, 1, 2, 12, 0, 1, 0, time.UTC)
	_, err = m.ParseForRefresh(token)
	require.ErrorIs(t, err, ErrRefreshWindowClosed)
}

func TestParseForRefreshStillChecksSignature(t *testing.T) {
	current := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	m := newTestJWT(&current)
	token, _, err := m.Generate("user-123")
	require.NoError(t, err)

	_, err = m.ParseForRefresh(token + "x")
	require.Error(t, err)
	_, err = m.ParseForRefresh("")
	require.Error(t, err)
}

func TestRevokeUntilCoversLongerOfExpiryAndRefreshWindow(t *testing.T) {
	current := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

	long := newTestJWT(&current)
	_, c, err := long.Generate("user-123")
	require.NoError(t, err)
	require.True(t, long.RevokeUntil(c).Equal(current.Add(24*time.Hour)))

	// refresh window shorter than the access lifetime
	short := NewJWTManager("super-secret", "accounts", time.Hour, 15*time.Minute).
		WithClock(func() time.Time { return current })
	_, c, err = short.Generate("user-123")
	require.NoError(t, err)
	require.True(t, short.RevokeUntil(c).Equal(current.Add(time.Hour)))
}
