package application

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/oksasatya/go-jwt-account-service/internal/domain/account"
	"github.com/oksasatya/go-jwt-account-service/pkg/helpers"
)

func loggedIn(t *testing.T, h *harness) string {
	t.Helper()
	h.verifiedUser(t, "Alice", "a@x.com", "pw123456")
	st, err := h.sessions.Login(context.Background(), "a@x.com", "pw123456")
	require.NoError(t, err)
	return st.AccessToken
}

func TestLoginUnknownEmail(t *testing.T) {
	h := newHarness(t)
	_, err := h.sessions.Login(context.Background(), "ghost@x.com", "pw123456")
	require.ErrorIs(t, err, account.ErrNotVerifiedOrNotFound)
}

func TestAuthenticate(t *testing.T) {
	h := newHarness(t)
	tok := loggedIn(t, h)

	claims, err := h.sessions.Authenticate(context.Background(), tok)
	require.NoError(t, err)
	require.NotEmpty(t, claims.UserID)

	_, err = h.sessions.Authenticate(context.Background(), "garbage")
	require.ErrorIs(t, err, account.ErrUnauthenticated)

	h.advance(61 * time.Minute)
	_, err = h.sessions.Authenticate(context.Background(), tok)
	require.ErrorIs(t, err, account.ErrUnauthenticated)
}

func TestRefreshWithinWindowRevokesOldToken(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	tok := loggedIn(t, h)

	// expired but still refreshable
	h.advance(2 * time.Hour)
	st, err := h.sessions.Refresh(ctx, tok)
	require.NoError(t, err)
	require.NotEqual(t, tok, st.AccessToken)
	require.Equal(t, 3600, st.ExpiresIn)

	_, err = h.sessions.Authenticate(ctx, st.AccessToken)
	require.NoError(t, err)

	_, err = h.sessions.Refresh(ctx, tok)
	require.ErrorIs(t, err, account.ErrUnauthenticated)
}

func TestRefreshAfterWindowFails(t *testing.T) {
	h := newHarness(t)
	tok := loggedIn(t, h)

	h.advance(20160*time.Minute + time.Second)
	_, err := h.sessions.Refresh(context.Background(), tok)
	require.ErrorIs(t, err, account.ErrUnauthenticated)
}

func TestLogoutRevokesToken(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	tok := loggedIn(t, h)

	claims, err := h.sessions.Authenticate(ctx, tok)
	require.NoError(t, err)
	require.NoError(t, h.sessions.Logout(ctx, claims))

	_, err = h.sessions.Authenticate(ctx, tok)
	require.ErrorIs(t, err, account.ErrUnauthenticated)
	_, err = h.sessions.Refresh(ctx, tok)
	require.ErrorIs(t, err, account.ErrUnauthenticated)

	until := h.block.items[claims.ID]
	require.True(t, until.Equal(claims.IssuedAt.Add(20160*time.Minute)))
}

func TestLogoutHoldsUntilExpiryWhenRefreshWindowIsShorter(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.jwt = helpers.NewJWTManager("test-secret", "accounts-test", 60*time.Minute, 30*time.Minute).
		WithClock(func() time.Time { return h.now })
	h.sessions.JWT = h.jwt
	tok := loggedIn(t, h)

	claims, err := h.sessions.Authenticate(ctx, tok)
	require.NoError(t, err)
	require.NoError(t, h.sessions.Logout(ctx, claims))
	require.True(t, h.block.items[claims.ID].Equal(claims.ExpiresAt.Time))

	// refresh window closed, access token not yet expired
	h.advance(45 * time.Minute)
	_, err = h.sessions.Authenticate(ctx, tok)
	require.ErrorIs(t, err, account.ErrUnauthenticated)

	h.advance(16 * time.Minute)
	_, err = h.sessions.Authenticate(ctx, tok)
	require.ErrorIs(t, err, account.ErrUnauthenticated)
}

func TestConcurrentRefreshesOfOneTokenYieldOneSuccessor(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	tok := loggedIn(t, h)
	h.advance(2 * time.Hour)

	const n = 8
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		granted []string
		errs    []error
	)
	start := make(chan struct{})
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			st, err := h.sessions.Refresh(ctx, tok)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errs = append(errs, err)
				return
			}
			granted = append(granted, st.AccessToken)
		}()
	}
	close(start)
	wg.Wait()

	require.Len(t, granted, 1)
	require.Len(t, errs, n-1)
	for _, err := range errs {
		require.ErrorIs(t, err, account.ErrUnauthenticated)
	}
	_, err := h.sessions.Authenticate(ctx, granted[0])
	require.NoError(t, err)
}

func TestLogoutWithoutBlocklistIsStateless(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	tok := loggedIn(t, h)
	h.sessions.Blocklist = nil

	claims, err := h.sessions.Authenticate(ctx, tok)
	require.NoError(t, err)
	require.NoError(t, h.sessions.Logout(ctx, claims))

	_, err = h.sessions.Authenticate(ctx, tok)
	require.NoError(t, err)
	require.ErrorIs(t, h.sessions.Logout(ctx, nil), account.ErrUnauthenticated)
}
