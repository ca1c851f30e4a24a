package ratelimit

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
)

// Limiter admits requests per client identity within a sliding window. It
// counts against the shared store when one is configured and silently
// degrades to the process-local store when the shared store fails; callers
// never see a limiter error.
type Limiter struct {
	shared   Store // nil when no shared store is configured
	fallback Store
	max      int
	window   time.Duration
}

func NewLimiter(shared, fallback Store, max int, window time.Duration) *Limiter {
	return &Limiter{
		shared:   shared,
		fallback: fallback,
		max:      max,
		window:   window,
	}
}

// Admit reports whether a request from the given identity may proceed.
// Exactly max requests are admitted per trailing window; the next one is
// rejected until enough earlier hits age out.
func (l *Limiter) Admit(ctx context.Context, identity string) bool {
	now := time.Now()

	if l.shared != nil {
		count, err := l.shared.Hit(ctx, identity, now, l.window)
		if err == nil {
			return count <= int64(l.max)
		}
		log.Warn().
			Err(err).
			Str("identity", identity).
			Msg("shared rate limit store unavailable, degrading to process-local limiting")
	}

	count, err := l.fallback.Hit(ctx, identity, now, l.window)
	if err != nil {
		// Fail open rather than rejecting traffic on bookkeeping errors
		log.Error().Err(err).Msg("fallback rate limit store error")
		return true
	}

	return count <= int64(l.max)
}
