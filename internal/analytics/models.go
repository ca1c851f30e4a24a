package analytics

import (
	"time"
)

// ClickEvent represents one recorded visit against a short code. Events are
// append-only and reference URLs by short code value rather than a foreign
// key, so they survive deactivation of the URL they belong to.
type ClickEvent struct {
	ID        int64     `db:"id" json:"id"`
	ShortCode string    `db:"short_code" json:"short_code"`
	ClickedAt time.Time `db:"clicked_at" json:"clicked_at"`
	IPAddress string    `db:"ip_address" json:"ip_address,omitempty"`
	UserAgent string    `db:"user_agent" json:"user_agent,omitempty"`
	Referer   string    `db:"referer" json:"referer,omitempty"`
	Country   string    `db:"country" json:"country,omitempty"`
	City      string    `db:"city" json:"city,omitempty"`
}

// Summary holds aggregated statistics for one short code
type Summary struct {
	TotalClicks  int64          `json:"total_clicks"`
	UniqueIPs    int64          `json:"unique_ips"`
	TopCountries []CountryStat  `json:"top_countries"`
	TopReferrers []ReferrerStat `json:"top_referrers"`
	ClickHistory []DailyClicks  `json:"click_history"`
	BrowserStats []BrowserStat  `json:"browser_stats"`
}

// CountryStat represents click frequency for one country
type CountryStat struct {
	Country string `json:"country" db:"country"`
	Count   int64  `json:"count" db:"count"`
}

// ReferrerStat represents click frequency for one referrer
type ReferrerStat struct {
	Referrer string `json:"referrer" db:"referrer"`
	Count    int64  `json:"count" db:"count"`
}

// BrowserStat represents click frequency for one browser family
type BrowserStat struct {
	Browser string `json:"browser" db:"browser"`
	Count   int64  `json:"count" db:"count"`
}

// DailyClicks represents clicks on one calendar date (UTC)
type DailyClicks struct {
	Date   string `json:"date" db:"date"`
	Clicks int64  `json:"clicks" db:"clicks"`
}
