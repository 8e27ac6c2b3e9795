package auth

import (
	"context"
	"time"
)

// Denylist records token ids revoked before their natural expiry. Entries
// only need to outlive the token they refer to.
type Denylist interface {
	Revoke(ctx context.Context, tokenID string, until time.Time) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

// NopDenylist is the stateless mode: nothing is ever revoked and logout is
// an acknowledgment only.
type NopDenylist struct{}

func (NopDenylist) Revoke(context.Context, string, time.Time) error { return nil }

func (NopDenylist) IsRevoked(context.Context, string) (bool, error) { return false, nil }
