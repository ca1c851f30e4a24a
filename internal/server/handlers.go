package server

import (
	"net/http"
)

// handleRoot serves the service banner
func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	s.sendJSON(w, http.StatusOK, map[string]string{
		"message": "Nexus URL Shortener API",
		"version": "1.0.0",
		"status":  "active",
	})
}

// handleHealth reports database health
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	health := s.db.Health(r.Context())

	status := http.StatusOK
	if health["status"] != "up" {
		status = http.StatusServiceUnavailable
	}

	s.sendJSON(w, status, health)
}
