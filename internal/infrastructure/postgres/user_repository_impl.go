package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/oksasatya/go-jwt-account-service/internal/domain/entity"
	"github.com/oksasatya/go-jwt-account-service/internal/domain/repository"
)

// querier is satisfied by both *pgxpool.Pool and pgx.Tx.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type UserRepository struct {
	pool *pgxpool.Pool
	q    querier
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool, q: pool}
}

var _ repository.UserRepository = (*UserRepository)(nil)

const userColumns = `
	id, name, email, pending_email, password_hash,
	email_verified, email_verified_at, verification_token, verification_issued_at,
	name_kana, birthday, gender, zip_cd, pref_id, address1, address2, address3, phone_number, memo,
	created_at, updated_at, deleted_at`

func scanUser(row pgx.Row) (*entity.User, error) {
	u := &entity.User{}
	err := row.Scan(
		&u.ID, &u.Name, &u.Email, &u.PendingEmail, &u.PasswordHash,
		&u.EmailVerified, &u.EmailVerifiedAt, &u.VerificationToken, &u.VerificationIssuedAt,
		&u.NameKana, &u.Birthday, &u.Gender, &u.ZipCode, &u.PrefID,
		&u.Address1, &u.Address2, &u.Address3, &u.PhoneNumber, &u.Memo,
		&u.CreatedAt, &u.UpdatedAt, &u.DeletedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return u, nil
}

func mapWriteErr(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return repository.ErrDuplicateEmail
	}
	return err
}

func (r *UserRepository) Insert(ctx context.Context, u *entity.User) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO users (
			id, name, email, pending_email, password_hash,
			email_verified, email_verified_at, verification_token, verification_issued_at,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`, u.ID, u.Name, u.Email, u.PendingEmail, u.PasswordHash,
		u.EmailVerified, u.EmailVerifiedAt, u.VerificationToken, u.VerificationIssuedAt,
		u.CreatedAt, u.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert user: %w", mapWriteErr(err))
	}
	return nil
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*entity.User, error) {
	return scanUser(r.q.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1 AND deleted_at IS NULL`, id))
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	return scanUser(r.q.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = $1 AND deleted_at IS NULL`, email))
}

// the TTL bound is inclusive: a token issued exactly notBefore is still valid
const selectByValidTokenSQL = `
	SELECT ` + userColumns + ` FROM users
	WHERE verification_token = $1
	  AND verification_issued_at >= $2
	  AND deleted_at IS NULL
	LIMIT 1`

func (r *UserRepository) GetByValidToken(ctx context.Context, token string, notBefore time.Time) (*entity.User, error) {
	return scanUser(r.q.QueryRow(ctx, selectByValidTokenSQL, token, notBefore))
}

// EmailTakenByOther counts soft-deleted rows too; the unique index covers them.
func (r *UserRepository) EmailTakenByOther(ctx context.Context, email, excludeID string) (bool, error) {
	var exists bool
	err := r.q.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM users WHERE email = $1 AND id::text <> $2)
	`, email, excludeID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check email: %w", err)
	}
	return exists, nil
}

const updateSet = `
	SET name = $2, email = $3, pending_email = $4, password_hash = $5,
	    email_verified = $6, email_verified_at = $7,
	    verification_token = $8, verification_issued_at = $9,
	    name_kana = $10, birthday = $11, gender = $12, zip_cd = $13, pref_id = $14,
	    address1 = $15, address2 = $16, address3 = $17, phone_number = $18, memo = $19,
	    updated_at = $20`

func updateArgs(u *entity.User) []any {
	return []any{
		u.ID, u.Name, u.Email, u.PendingEmail, u.PasswordHash,
		u.EmailVerified, u.EmailVerifiedAt,
		u.VerificationToken, u.VerificationIssuedAt,
		u.NameKana, u.Birthday, u.Gender, u.ZipCode, u.PrefID,
		u.Address1, u.Address2, u.Address3, u.PhoneNumber, u.Memo,
		u.UpdatedAt,
	}
}

func (r *UserRepository) Update(ctx context.Context, u *entity.User) error {
	tag, err := r.q.Exec(ctx, `UPDATE users`+updateSet+` WHERE id = $1 AND deleted_at IS NULL`, updateArgs(u)...)
	if err != nil {
		return fmt.Errorf("update user: %w", mapWriteErr(err))
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// compare-and-set on the token the caller loaded
const consumeTokenSQL = `UPDATE users` + updateSet + `
	WHERE id = $1 AND verification_token = $21 AND deleted_at IS NULL`

func (r *UserRepository) UpdateConsumingToken(ctx context.Context, u *entity.User, expectedToken string) error {
	args := append(updateArgs(u), expectedToken)
	tag, err := r.q.Exec(ctx, consumeTokenSQL, args...)
	if err != nil {
		return fmt.Errorf("update user: %w", mapWriteErr(err))
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrStaleToken
	}
	return nil
}

func (r *UserRepository) InTx(ctx context.Context, fn func(ctx context.Context, tx repository.UserRepository) error) error {
	if r.pool == nil {
		// already inside a transaction
		return fn(ctx, r)
	}
	return pgx.BeginTxFunc(ctx, r.pool, pgx.TxOptions{IsoLevel: pgx.ReadCommitted}, func(tx pgx.Tx) error {
		return fn(ctx, &UserRepository{q: tx})
	})
}
