package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	_ "github.com/joho/godotenv/autoload"
	"github.com/rs/zerolog/log"

	"nexus-go/internal/analytics"
	"nexus-go/internal/config"
	"nexus-go/internal/database"
	"nexus-go/internal/ratelimit"
	"nexus-go/internal/shortener"
)

// Server represents the HTTP server and its dependencies
type Server struct {
	config           *config.Config
	db               *database.DB
	recorder         *analytics.Recorder
	limiter          *ratelimit.Limiter
	shortenerHandler *shortener.Handler
	analyticsHandler *analytics.Handler
}

// NewServer creates a new server instance
func NewServer(cfg *config.Config, db *database.DB) (*Server, error) {
	// Initialize repositories
	urlRepo := shortener.NewPostgresRepository(db.DB)
	clickRepo := analytics.NewPostgresRepository(db)

	// Click recording runs through a queued-write worker so redirects never
	// wait on analytics persistence
	recorder := analytics.NewRecorder(clickRepo, urlRepo)
	recorder.Start()

	// Initialize services
	shortenerService := shortener.NewService(urlRepo, recorder, cfg.BaseURL)
	analyticsService := analytics.NewService(clickRepo)

	// Rate limiting: shared redis counters when configured, process-local
	// fallback otherwise. Losing redis degrades the limit to per-process.
	var shared ratelimit.Store
	if cfg.RedisURL != "" {
		redisStore, err := ratelimit.NewRedisStore(cfg.RedisURL)
		if err != nil {
			log.Warn().
				Err(err).
				Msg("shared rate limit store unreachable, limits are per-process only")
		} else {
			shared = redisStore
		}
	} else {
		log.Warn().Msg("no REDIS_URL configured, rate limits are per-process only")
	}
	limiter := ratelimit.NewLimiter(shared, ratelimit.NewMemoryStore(), cfg.RateLimitMax, cfg.RateLimitWindow)

	server := &Server{
		config:           cfg,
		db:               db,
		recorder:         recorder,
		limiter:          limiter,
		shortenerHandler: shortener.NewHandler(shortenerService),
		analyticsHandler: analytics.NewHandler(analyticsService, shortenerService),
	}

	return server, nil
}

// Start initializes the HTTP server
func (s *Server) Start() (*http.Server, error) {
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Port),
		Handler:      s.RegisterRoutes(),
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	log.Info().
		Int("port", s.config.Port).
		Str("env", s.config.Env).
		Msg("starting server")

	return srv, nil
}

// Shutdown stops background workers after the HTTP server has drained
func (s *Server) Shutdown() {
	s.recorder.Stop()
}

// sendJSON sends a JSON response with consistent formatting
func (s *Server) sendJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Error().Err(err).Msg("error encoding JSON response")
	}
}
