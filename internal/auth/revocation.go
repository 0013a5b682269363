package auth

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const revokedPrefix = "publazer:revoked:"

// Revoker remembers logged-out token ids until they would have expired.
// A Revoker without a Redis client accepts every token.
type Revoker struct {
	client *redis.Client
}

func NewRevoker(client *redis.Client) *Revoker {
	return &Revoker{client: client}
}

// NewRedisClient parses a redis:// URL and checks the connection.
func NewRedisClient(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return client, nil
}

func (r *Revoker) Enabled() bool {
	return r != nil && r.client != nil
}

func (r *Revoker) Revoke(ctx context.Context, claims *Claims) error {
	if !r.Enabled() {
		return nil
	}
	ttl := time.Minute
	if claims.ExpiresAt != nil {
		ttl = time.Until(claims.ExpiresAt.Time)
	}
	if ttl <= 0 {
		return nil
	}
	return r.client.Set(ctx, revokedPrefix+claims.ID, "1", ttl).Err()
}

// IsRevoked fails open when Redis is unreachable.
func (r *Revoker) IsRevoked(ctx context.Context, tokenID string) bool {
	if !r.Enabled() {
		return false
	}
	n, err := r.client.Exists(ctx, revokedPrefix+tokenID).Result()
	if err != nil {
		slog.WarnContext(ctx, "revocation lookup failed", "error", err)
		return false
	}
	return n > 0
}
