package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// Config holds server configuration
type Config struct {
	Port            int           // Port to listen on
	Env             string        // Environment (development | production)
	BaseURL         string        // Base URL used to build short links
	AllowedOrigins  []string      // Origins allowed for cross-origin requests
	RedisURL        string        // Shared rate limit counter store, optional
	RateLimitMax    int           // Maximum requests per client per window
	RateLimitWindow time.Duration // Sliding window size
}

func (c *Config) Log() {
	log.Info().
		Int("port", c.Port).
		Str("env", c.Env).
		Str("base_url", c.BaseURL).
		Strs("allowed_origins", c.AllowedOrigins).
		Bool("redis_configured", c.RedisURL != "").
		Int("rate_limit_max", c.RateLimitMax).
		Dur("rate_limit_window", c.RateLimitWindow).
		Msg("server configuration")
}

// NewConfig creates a server configuration from environment variables
func NewConfig() (*Config, error) {
	portStr := os.Getenv("PORT")
	if portStr == "" {
		portStr = "8000"
	}
	port, err := strconv.Atoi(portStr)
	if err != nil || port <= 0 {
		log.Error().Err(err).Str("port", portStr).Msg("invalid PORT environment variable")
		return nil, fmt.Errorf("invalid PORT: %q", portStr)
	}

	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "production"
	}

	baseURL := os.Getenv("BASE_URL")
	if baseURL == "" {
		baseURL = fmt.Sprintf("http://localhost:%d", port)
	}
	baseURL = strings.TrimRight(baseURL, "/")

	origins := []string{"*"}
	if raw := os.Getenv("ALLOWED_ORIGINS"); raw != "" {
		origins = origins[:0]
		for _, origin := range strings.Split(raw, ",") {
			if origin = strings.TrimSpace(origin); origin != "" {
				origins = append(origins, origin)
			}
		}
	}
	if len(origins) == 0 {
		return nil, fmt.Errorf("ALLOWED_ORIGINS must contain at least one origin")
	}

	rateLimitMax := 10
	if raw := os.Getenv("RATE_LIMIT_MAX"); raw != "" {
		rateLimitMax, err = strconv.Atoi(raw)
		if err != nil || rateLimitMax <= 0 {
			return nil, fmt.Errorf("invalid RATE_LIMIT_MAX: %q", raw)
		}
	}

	rateLimitWindow := time.Minute
	if raw := os.Getenv("RATE_LIMIT_WINDOW"); raw != "" {
		// Bare numbers are treated as seconds
		if _, convErr := strconv.Atoi(raw); convErr == nil {
			raw += "s"
		}
		rateLimitWindow, err = time.ParseDuration(raw)
		if err != nil || rateLimitWindow <= 0 {
			return nil, fmt.Errorf("invalid RATE_LIMIT_WINDOW: %q", raw)
		}
	}

	return &Config{
		Port:            port,
		Env:             env,
		BaseURL:         baseURL,
		AllowedOrigins:  origins,
		RedisURL:        os.Getenv("REDIS_URL"),
		RateLimitMax:    rateLimitMax,
		RateLimitWindow: rateLimitWindow,
	}, nil
}
