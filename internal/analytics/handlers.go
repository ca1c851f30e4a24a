package analytics

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"nexus-go/internal/shortener"
)

type Handler struct {
	service *Service
	urls    *shortener.Service
}

func NewHandler(service *Service, urls *shortener.Service) *Handler {
	return &Handler{service: service, urls: urls}
}

// HandleGetAnalytics returns the analytics summary for a short code.
// An absent or inactive URL is a 404 even though its events may exist.
func (h *Handler) HandleGetAnalytics(w http.ResponseWriter, r *http.Request) {
	shortCode := chi.URLParam(r, "shortCode")

	if _, err := h.urls.Lookup(r.Context(), shortCode); err != nil {
		shortener.HandleServiceError(w, err)
		return
	}

	summary, err := h.service.Summarize(r.Context(), shortCode)
	if err != nil {
		shortener.HandleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(summary)
}
