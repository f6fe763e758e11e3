package postgres

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/go-jwt-account-service/internal/domain/entity"
	"github.com/oksasatya/go-jwt-account-service/internal/domain/repository"
)

// recordingQuerier captures the last statement and answers with canned results.
type recordingQuerier struct {
	sql  string
	args []any
	tag  pgconn.CommandTag
	err  error
}

func (q *recordingQuerier) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	q.sql, q.args = sql, args
	return q.tag, q.err
}

func (q *recordingQuerier) QueryRow(_ context.Context, sql string, args ...any) pgx.Row {
	q.sql, q.args = sql, args
	return noRow{}
}

type noRow struct{}

func (noRow) Scan(...any) error { return pgx.ErrNoRows }

func squash(sql string) string { return strings.Join(strings.Fields(sql), " ") }

func TestGetByValidTokenBindsInclusiveLowerBound(t *testing.T) {
	q := &recordingQuerier{}
	r := &UserRepository{q: q}
	notBefore := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	_, err := r.GetByValidToken(context.Background(), "tok", notBefore)
	require.ErrorIs(t, err, repository.ErrNotFound)

	sql := squash(q.sql)
	require.Contains(t, sql, "WHERE verification_token = $1")
	require.Contains(t, sql, "AND verification_issued_at >= $2")
	require.Contains(t, sql, "AND deleted_at IS NULL")
	require.Equal(t, []any{"tok", notBefore}, q.args)
}

func TestUpdateConsumingTokenIsCompareAndSet(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	u := &entity.User{ID: "u-1", Name: "Alice", Email: "a@x.com", PasswordHash: "h", UpdatedAt: now}

	q := &recordingQuerier{tag: pgconn.NewCommandTag("UPDATE 1")}
	r := &UserRepository{q: q}
	require.NoError(t, r.UpdateConsumingToken(context.Background(), u, "expected-tok"))

	require.Contains(t, squash(q.sql), "WHERE id = $1 AND verification_token = $21 AND deleted_at IS NULL")
	require.Len(t, q.args, 21)
	require.Equal(t, "u-1", q.args[0])
	require.Equal(t, "expected-tok", q.args[20])

	// another writer consumed or replaced the token first
	q.tag = pgconn.NewCommandTag("UPDATE 0")
	require.ErrorIs(t, r.UpdateConsumingToken(context.Background(), u, "expected-tok"), repository.ErrStaleToken)
}

func TestUpdateConsumingTokenMapsUniqueViolation(t *testing.T) {
	q := &recordingQuerier{err: &pgconn.PgError{Code: "23505"}}
	r := &UserRepository{q: q}

	err := r.UpdateConsumingToken(context.Background(), &entity.User{ID: "u-1"}, "tok")
	require.ErrorIs(t, err, repository.ErrDuplicateEmail)
	require.False(t, errors.Is(err, repository.ErrStaleToken))
}
