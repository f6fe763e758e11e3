package application

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-jwt-account-service/internal/domain/entity"
	repo "github.com/oksasatya/go-jwt-account-service/internal/domain/repository"
	"github.com/oksasatya/go-jwt-account-service/internal/infrastructure/search"
	"github.com/oksasatya/go-jwt-account-service/pkg/mailer"
)

// memRepo is an in-memory UserRepository. Each call is atomic; InTx does not serialise
// whole transactions, so concurrent flows race exactly like read-committed ones.
type memRepo struct {
	mu    sync.Mutex
	users map[string]entity.User
}

func newMemRepo() *memRepo {
	return &memRepo{users: map[string]entity.User{}}
}

func (r *memRepo) emailOwnedByOther(email, id string) bool {
	for _, u := range r.users {
		if u.Email == email && u.ID != id {
			return true
		}
	}
	return false
}

func (r *memRepo) Insert(_ context.Context, u *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.emailOwnedByOther(u.Email, u.ID) {
		return repo.ErrDuplicateEmail
	}
	r.users[u.ID] = *u
	return nil
}

func (r *memRepo) GetByID(_ context.Context, id string) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok || u.DeletedAt != nil {
		return nil, repo.ErrNotFound
	}
	return &u, nil
}

func (r *memRepo) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email && u.DeletedAt == nil {
			cp := u
			return &cp, nil
		}
	}
	return nil, repo.ErrNotFound
}

func (r *memRepo) GetByValidToken(_ context.Context, token string, notBefore time.Time) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.DeletedAt != nil || u.VerificationToken == nil || *u.VerificationToken != token {
			continue
		}
		if u.VerificationIssuedAt.Before(notBefore) {
			continue
		}
		cp := u
		return &cp, nil
	}
	return nil, repo.ErrNotFound
}

func (r *memRepo) EmailTakenByOther(_ context.Context, email, excludeID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.emailOwnedByOther(email, excludeID), nil
}

func (r *memRepo) Update(_ context.Context, u *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if cur, ok := r.users[u.ID]; !ok || cur.DeletedAt != nil {
		return repo.ErrNotFound
	}
	if r.emailOwnedByOther(u.Email, u.ID) {
		return repo.ErrDuplicateEmail
	}
	r.users[u.ID] = *u
	return nil
}

func (r *memRepo) UpdateConsumingToken(_ context.Context, u *entity.User, expectedToken string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cur, ok := r.users[u.ID]
	if !ok || cur.DeletedAt != nil || cur.VerificationToken == nil || *cur.VerificationToken != expectedToken {
		return repo.ErrStaleToken
	}
	if r.emailOwnedByOther(u.Email, u.ID) {
		return repo.ErrDuplicateEmail
	}
	r.users[u.ID] = *u
	return nil
}

func (r *memRepo) InTx(ctx context.Context, fn func(ctx context.Context, tx repo.UserRepository) error) error {
	return fn(ctx, r)
}

// byPending returns the rows whose pending address is email.
func (r *memRepo) byPending(email string) []entity.User {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []entity.User
	for _, u := range r.users {
		if u.PendingEmail != nil && *u.PendingEmail == email {
			out = append(out, u)
		}
	}
	return out
}

// memBlocklist drops entries once the clock passes their deadline, like key TTLs.
type memBlocklist struct {
	mu    sync.Mutex
	now   func() time.Time
	items map[string]time.Time
}

func newMemBlocklist(now func() time.Time) *memBlocklist {
	return &memBlocklist{now: now, items: map[string]time.Time{}}
}

func (b *memBlocklist) Add(_ context.Context, jti string, until time.Time) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.items[jti] = until
	return nil
}

func (b *memBlocklist) Claim(_ context.Context, jti string, until time.Time) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.live(jti) {
		return false, nil
	}
	b.items[jti] = until
	return true, nil
}

func (b *memBlocklist) Contains(_ context.Context, jti string) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.live(jti), nil
}

func (b *memBlocklist) live(jti string) bool {
	until, ok := b.items[jti]
	return ok && !b.now().After(until)
}

type captureMailer struct {
	mu   sync.Mutex
	msgs []mailer.Message
	err  error
}

func (c *captureMailer) Send(_ context.Context, msg mailer.Message) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.msgs = append(c.msgs, msg)
	return c.err
}

func (c *captureMailer) sent() []mailer.Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]mailer.Message(nil), c.msgs...)
}

type captureAudit struct {
	mu     sync.Mutex
	events []search.AuditEvent
}

func (c *captureAudit) Record(_ context.Context, ev search.AuditEvent) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, ev)
}

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}
