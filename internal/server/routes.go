package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"nexus-go/internal/ratelimit"
	"nexus-go/internal/shortener"
)

func (s *Server) RegisterRoutes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(RequestLogger)
	r.Use(middleware.Recoverer)

	// CORS configuration
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.config.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Admission check runs before any handler, keyed by client IP
	r.Use(ratelimit.Middleware(s.limiter, shortener.ClientIP))

	r.Get("/", s.handleRoot)
	r.Get("/health", s.handleHealth)

	r.Post("/shorten", s.shortenerHandler.HandleCreateShortURL)

	r.Route("/api", func(r chi.Router) {
		r.Get("/urls", s.shortenerHandler.HandleListURLs)
		r.Get("/urls/{shortCode}", s.shortenerHandler.HandleGetURL)
		r.Get("/analytics/{shortCode}", s.analyticsHandler.HandleGetAnalytics)
	})

	// Catch-all redirect route, registered last
	r.Get("/{shortCode}", s.shortenerHandler.HandleRedirect)

	return r
}
