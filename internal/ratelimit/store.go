package ratelimit

import (
	"context"
	"time"
)

// Store records one request hit for a client identity and returns how many
// hits that identity has inside the trailing window, the new hit included.
// Implementations prune expired hits before counting.
type Store interface {
	Hit(ctx context.Context, identity string, now time.Time, window time.Duration) (int64, error)
}
