package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/authkeeper/internal/logging"
	redis "github.com/redis/go-redis/v9"
)

const redisDenylistPrefix = "authkeeper:revoked:"

// redisClient is the part of *redis.Client the denylist uses.
type redisClient interface {
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
	Exists(ctx context.Context, keys ...string) *redis.IntCmd
	Close() error
}

// RedisDenylist stores one key per revoked token with a TTL equal to the
// token's remaining lifetime, so Redis does the cleanup.
type RedisDenylist struct {
	client  redisClient
	logger  logging.Logger
	prefix  string
	timeout time.Duration
	now     func() time.Time
}

// NewRedisDenylist connects to Redis and checks the connection with PING.
func NewRedisDenylist(ctx context.Context, addr, password string, db int, logger logging.Logger) (*RedisDenylist, error) {
	client := redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db})

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", addr, err)
	}

	return newRedisDenylist(client, logger, time.Now), nil
}

func newRedisDenylist(client redisClient, logger logging.Logger, now func() time.Time) *RedisDenylist {
	return &RedisDenylist{
		client:  client,
		logger:  logger.With("module", "redis_denylist"),
		prefix:  redisDenylistPrefix,
		timeout: 500 * time.Millisecond,
		now:     now,
	}
}

func (d *RedisDenylist) Revoke(ctx context.Context, tokenID string, until time.Time) error {
	ttl := until.Sub(d.now())
	if ttl <= 0 {
		// already expired, nothing to remember
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	if err := d.client.Set(ctx, d.prefix+tokenID, 1, ttl).Err(); err != nil {
		d.logger.Error(ctx, "redis error", "op", "set", "error", err)
		return fmt.Errorf("revoke token: %w", err)
	}
	return nil
}

// IsRevoked fails closed: a Redis error is returned, never treated as
// "not revoked".
func (d *RedisDenylist) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	n, err := d.client.Exists(ctx, d.prefix+tokenID).Result()
	if err != nil {
		d.logger.Error(ctx, "redis error", "op", "exists", "error", err)
		return false, fmt.Errorf("check revoked token: %w", err)
	}
	return n > 0, nil
}

func (d *RedisDenylist) Close() error {
	return d.client.Close()
}
