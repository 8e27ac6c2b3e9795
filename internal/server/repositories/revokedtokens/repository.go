// Package revokedtokens persists the session-token denylist in PostgreSQL.
// Rows carry the token's own expiry and are purged once it has passed.
package revokedtokens

import (
	"context"
	"time"
)

type Repository interface {
	Revoke(ctx context.Context, tokenID string, until time.Time) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
	PurgeExpired(ctx context.Context, now time.Time) (int64, error)
}
