package shortener

import (
	"encoding/json"
	"net"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"nexus-go/internal/validation"
)

const (
	defaultListLimit = 100
	maxListLimit     = 1000
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// HandleCreateShortURL handles the creation of shortened URLs
func (h *Handler) HandleCreateShortURL(w http.ResponseWriter, r *http.Request) {
	var req CreateURLRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		HandleError(w, &APIError{
			Code:    ErrCodeInvalidInput,
			Message: "Malformed request body",
		}, http.StatusUnprocessableEntity)
		return
	}

	if err := validation.Validate(&req); err != nil {
		HandleError(w, &APIError{
			Code:    ErrCodeInvalidInput,
			Message: "Validation failed",
			Details: validation.FormatError(err),
		}, http.StatusBadRequest)
		return
	}

	response, err := h.service.CreateShortURL(r.Context(), &req, ClientIP(r))
	if err != nil {
		HandleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, response)
}

// HandleRedirect resolves a short code and issues a 302 to the original URL.
// Click recording rides along best-effort and cannot fail the redirect.
func (h *Handler) HandleRedirect(w http.ResponseWriter, r *http.Request) {
	shortCode := chi.URLParam(r, "shortCode")

	info := RequestInfo{
		IPAddress: ClientIP(r),
		UserAgent: r.UserAgent(),
		Referer:   r.Referer(),
	}

	originalURL, err := h.service.ResolveAndRecord(r.Context(), shortCode, info)
	if err != nil {
		HandleServiceError(w, err)
		return
	}

	http.Redirect(w, r, originalURL, http.StatusFound)
}

// HandleGetURL returns URL information without redirecting
func (h *Handler) HandleGetURL(w http.ResponseWriter, r *http.Request) {
	shortCode := chi.URLParam(r, "shortCode")

	response, err := h.service.Lookup(r.Context(), shortCode)
	if err != nil {
		HandleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, response)
}

// HandleListURLs returns paginated URL summaries
func (h *Handler) HandleListURLs(w http.ResponseWriter, r *http.Request) {
	skip := queryInt(r, "skip", 0)
	limit := queryInt(r, "limit", defaultListLimit)
	if limit <= 0 || limit > maxListLimit {
		limit = defaultListLimit
	}
	if skip < 0 {
		skip = 0
	}

	responses, err := h.service.List(r.Context(), skip, limit)
	if err != nil {
		HandleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, responses)
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func queryInt(r *http.Request, key string, fallback int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return value
}

// ClientIP extracts the client host from RemoteAddr. Behind the RealIP
// middleware RemoteAddr already holds the forwarded address.
func ClientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
