package redisstore

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const blocklistKeyPrefix = "auth:revoked:"

// Blocklist records revoked session token ids until they could no longer be used anyway.
type Blocklist struct {
	rdb redis.Cmdable
	now func() time.Time
}

func NewBlocklist(rdb redis.Cmdable) *Blocklist {
	return &Blocklist{rdb: rdb, now: time.Now}
}

// WithClock replaces the time source; used by tests.
func (b *Blocklist) WithClock(now func() time.Time) *Blocklist {
	b.now = now
	return b
}

func blocklistKey(jti string) string { return blocklistKeyPrefix + jti }

// Add revokes jti until the given instant. Instants in the past are ignored.
func (b *Blocklist) Add(ctx context.Context, jti string, until time.Time) error {
	if jti == "" {
		return fmt.Errorf("blocklist: empty jti")
	}
	ttl := until.Sub(b.now())
	if ttl <= 0 {
		return nil
	}
	if err := b.rdb.Set(ctx, blocklistKey(jti), 1, keyTTL(ttl)).Err(); err != nil {
		return fmt.Errorf("blocklist: set: %w", err)
	}
	return nil
}

// Claim revokes jti with SET NX and reports whether this call was first.
// Concurrent callers racing on the same jti see exactly one true.
func (b *Blocklist) Claim(ctx context.Context, jti string, until time.Time) (bool, error) {
	if jti == "" {
		return false, fmt.Errorf("blocklist: empty jti")
	}
	ok, err := b.rdb.SetNX(ctx, blocklistKey(jti), 1, keyTTL(until.Sub(b.now()))).Result()
	if err != nil {
		return false, fmt.Errorf("blocklist: setnx: %w", err)
	}
	return ok, nil
}

// keyTTL rounds up to whole seconds so the key never expires before the token does.
func keyTTL(d time.Duration) time.Duration {
	if d <= 0 {
		return time.Second
	}
	return d.Truncate(time.Second) + time.Second
}

// Contains reports whether jti has been revoked.
func (b *Blocklist) Contains(ctx context.Context, jti string) (bool, error) {
	if jti == "" {
		return false, nil
	}
	n, err := b.rdb.Exists(ctx, blocklistKey(jti)).Result()
	if err != nil {
		return false, fmt.Errorf("blocklist: exists: %w", err)
	}
	return n > 0, nil
}
