package repository

import (
	"context"
	"time"
)

// StateStore abstracts short-lived key-value state such as pending admin conversations.
// Implementations: Redis (production) or in-memory (single instance / tests).
type StateStore interface {
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Get(ctx context.Context, key string) ([]byte, error)
	// Take returns the value and removes the key in one step. A missing or
	// expired key yields (nil, nil).
	Take(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, key string) error
}
