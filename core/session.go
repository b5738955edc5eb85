package core

import (
	"context"
	"time"
)

// RevocationStore remembers signed-out token IDs until the tokens expire.
type RevocationStore interface {
	Revoke(ctx context.Context, tokenID string, expiresAt time.Time) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}
