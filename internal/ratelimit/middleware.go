package ratelimit

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"
)

type rateLimitedResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Middleware rejects requests from over-limit clients with 429 before they
// reach any handler. identify extracts the client identity a request is
// counted against.
func Middleware(limiter *Limiter, identify func(*http.Request) string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity := identify(r)

			if !limiter.Admit(r.Context(), identity) {
				log.Debug().
					Str("identity", identity).
					Str("path", r.URL.Path).
					Msg("rate limit exceeded")

				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusTooManyRequests)
				_ = json.NewEncoder(w).Encode(rateLimitedResponse{
					Code:    "RATE_LIMITED",
					Message: "Rate limit exceeded",
				})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
