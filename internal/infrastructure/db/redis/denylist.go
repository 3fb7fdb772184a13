package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// keyStore is the subset of the redis client the denylist needs.
type keyStore interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Exists(ctx context.Context, keys ...string) *redis.IntCmd
}

// Denylist records revoked token ids until their natural expiry.
// Key format: denylist:<token_id>
type Denylist struct {
	client keyStore
}

// NewDenylist creates a Denylist wrapping the given Redis client.
func NewDenylist(client keyStore) *Denylist {
	return &Denylist{client: client}
}

// Deny stores tokenID for ttl. Non-positive ttls are ignored since the token
// is already expired.
func (d *Denylist) Deny(ctx context.Context, tokenID string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	if err := d.client.Set(ctx, key(tokenID), "1", ttl).Err(); err != nil {
		return fmt.Errorf("denylist set: %w", err)
	}
	return nil
}

// IsDenied reports whether tokenID has been revoked.
func (d *Denylist) IsDenied(ctx context.Context, tokenID string) (bool, error) {
	n, err := d.client.Exists(ctx, key(tokenID)).Result()
	if err != nil {
		return false, fmt.Errorf("denylist check: %w", err)
	}
	return n > 0, nil
}

func key(tokenID string) string {
	return "denylist:" + tokenID
}
