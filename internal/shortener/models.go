package shortener

import (
	"time"
)

// ShortURL represents a shortened URL in the system
type ShortURL struct {
	ID          int64     `db:"id" json:"id"`
	OriginalURL string    `db:"original_url" json:"original_url"`
	ShortCode   string    `db:"short_code" json:"short_code"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	ClickCount  int64     `db:"click_count" json:"click_count"`
	IsActive    bool      `db:"is_active" json:"is_active"`
	CreatorIP   string    `db:"creator_ip" json:"-"`
}

// CreateURLRequest represents the request to create a shortened URL
type CreateURLRequest struct {
	OriginalURL string `json:"original_url" validate:"required,absoluteurl"`
	CustomCode  string `json:"custom_code,omitempty" validate:"omitempty,shortcode"`
}

// URLResponse is the API representation of a ShortURL, including the
// resolvable short link built from the configured base URL.
type URLResponse struct {
	ID          int64     `json:"id"`
	OriginalURL string    `json:"original_url"`
	ShortCode   string    `json:"short_code"`
	ShortURL    string    `json:"short_url"`
	CreatedAt   time.Time `json:"created_at"`
	ClickCount  int64     `json:"click_count"`
	IsActive    bool      `json:"is_active"`
}

// RequestInfo carries per-request context handed to click recording
type RequestInfo struct {
	IPAddress string
	UserAgent string
	Referer   string
}
