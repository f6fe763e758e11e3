package application

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/oksasatya/go-jwt-account-service/internal/domain/account"
	"github.com/oksasatya/go-jwt-account-service/internal/domain/entity"
	"github.com/oksasatya/go-jwt-account-service/pkg/helpers"
	"github.com/oksasatya/go-jwt-account-service/pkg/mailer"
)

type harness struct {
	now      time.Time
	repo     *memRepo
	mail     *captureMailer
	audit    *captureAudit
	block    *memBlocklist
	jwt      *helpers.JWTManager
	auth     *AuthService
	sessions *SessionService
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		now:   time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC),
		repo:  newMemRepo(),
		mail:  &captureMailer{},
		audit: &captureAudit{},
	}
	clock := func() time.Time { return h.now }
	h.block = newMemBlocklist(clock)
	hasher := helpers.NewHasher(bcrypt.MinCost)
	machine := account.NewMachine(hasher, account.WithClock(clock))
	h.jwt = helpers.NewJWTManager("test-secret", "accounts-test", 60*time.Minute, 20160*time.Minute).WithClock(clock)
	h.auth = NewAuthService(h.repo, machine, h.mail, h.audit, quietLogger())
	h.sessions = NewSessionService(h.repo, h.jwt, hasher, h.block, quietLogger())
	return h
}

func (h *harness) advance(d time.Duration) { h.now = h.now.Add(d) }

// lastMail waits for pending hand-offs and returns the newest mail.
func (h *harness) lastMail(t *testing.T) mailer.Message {
	t.Helper()
	h.auth.Wait()
	sent := h.mail.sent()
	require.NotEmpty(t, sent)
	return sent[len(sent)-1]
}

func (h *harness) register(t *testing.T, name, email, password string) string {
	t.Helper()
	err := h.auth.Register(context.Background(), account.Registration{Name: name, Email: email, Password: password})
	require.NoError(t, err)
	msg := h.lastMail(t)
	require.Equal(t, mailer.KindRegistrationConfirm, msg.Kind)
	require.Equal(t, email, msg.To)
	return msg.Token
}

func (h *harness) verifiedUser(t *testing.T, name, email, password string) *entity.User {
	t.Helper()
	tok := h.register(t, name, email, password)
	require.NoError(t, h.auth.ConfirmRegistration(context.Background(), tok))
	u, err := h.repo.GetByEmail(context.Background(), email)
	require.NoError(t, err)
	return u
}
