package repository

import (
	"context"
	"errors"
	"time"

	"github.com/oksasatya/go-jwt-account-service/internal/domain/entity"
)

var (
	// ErrNotFound is returned when no live row matches a lookup.
	ErrNotFound = errors.New("repository: not found")
	// ErrStaleToken is returned by UpdateConsumingToken when the row's token no longer matches.
	ErrStaleToken = errors.New("repository: verification token changed")
	// ErrDuplicateEmail is returned when a write would violate the unique email column.
	ErrDuplicateEmail = errors.New("repository: duplicate email")
)

// UserRepository defines the persistence operations the account flows depend on.
// Soft-deleted rows are invisible to every method.
type UserRepository interface {
	Insert(ctx context.Context, u *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	// GetByValidToken returns the row holding token whose issued-at is not before notBefore.
	GetByValidToken(ctx context.Context, token string, notBefore time.Time) (*entity.User, error)
	// EmailTakenByOther reports whether a row other than excludeID already owns email.
	EmailTakenByOther(ctx context.Context, email, excludeID string) (bool, error)
	Update(ctx context.Context, u *entity.User) error
	// UpdateConsumingToken writes u only if the stored token still equals expectedToken.
	UpdateConsumingToken(ctx context.Context, u *entity.User, expectedToken string) error
	// InTx runs fn against a repository bound to one read-committed transaction.
	InTx(ctx context.Context, fn func(ctx context.Context, tx UserRepository) error) error
}
