package analytics

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"nexus-go/internal/database"
)

// topN caps the breakdown lists in a summary
const topN = 5

// ClickRepository defines methods for click event persistence and aggregation
type ClickRepository interface {
	Insert(ctx context.Context, event *ClickEvent) error
	Summarize(ctx context.Context, shortCode string, since time.Time) (*Summary, error)
}

type postgresRepository struct {
	db *database.DB
}

func NewPostgresRepository(db *database.DB) ClickRepository {
	return &postgresRepository{db: db}
}

func (r *postgresRepository) Insert(ctx context.Context, event *ClickEvent) error {
	query := `
        INSERT INTO clicks (short_code, clicked_at, ip_address, user_agent, referer, country, city)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
        RETURNING id`

	err := r.db.QueryRowxContext(ctx, query,
		event.ShortCode,
		event.ClickedAt,
		event.IPAddress,
		event.UserAgent,
		event.Referer,
		event.Country,
		event.City,
	).Scan(&event.ID)
	if err != nil {
		return fmt.Errorf("inserting click event: %w", err)
	}
	return nil
}

// Summarize aggregates all click events for a short code. Grouping and
// counting happen in the store so the event list is never materialized in
// memory. A code with no events yields a zeroed summary, never an error.
func (r *postgresRepository) Summarize(ctx context.Context, shortCode string, since time.Time) (*Summary, error) {
	summary := &Summary{
		TopCountries: []CountryStat{},
		TopReferrers: []ReferrerStat{},
		ClickHistory: []DailyClicks{},
		BrowserStats: []BrowserStat{},
	}

	err := r.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		countQuery := `
            SELECT
                COUNT(*) AS total_clicks,
                COUNT(DISTINCT ip_address) FILTER (WHERE ip_address IS NOT NULL AND ip_address <> '') AS unique_ips
            FROM clicks
            WHERE short_code = $1`

		counts := struct {
			TotalClicks int64 `db:"total_clicks"`
			UniqueIPs   int64 `db:"unique_ips"`
		}{}
		if err := tx.GetContext(ctx, &counts, countQuery, shortCode); err != nil {
			return err
		}
		summary.TotalClicks = counts.TotalClicks
		summary.UniqueIPs = counts.UniqueIPs

		// Ties are broken by first-encountered order via MIN(id)
		countryQuery := `
            SELECT country, COUNT(*) AS count
            FROM clicks
            WHERE short_code = $1 AND country IS NOT NULL AND country <> ''
            GROUP BY country
            ORDER BY count DESC, MIN(id)
            LIMIT $2`
		if err := tx.SelectContext(ctx, &summary.TopCountries, countryQuery, shortCode, topN); err != nil {
			return err
		}

		referrerQuery := `
            SELECT referer AS referrer, COUNT(*) AS count
            FROM clicks
            WHERE short_code = $1 AND referer IS NOT NULL AND referer <> ''
            GROUP BY referer
            ORDER BY count DESC, MIN(id)
            LIMIT $2`
		if err := tx.SelectContext(ctx, &summary.TopReferrers, referrerQuery, shortCode, topN); err != nil {
			return err
		}

		browserQuery := `
            SELECT user_agent AS browser, COUNT(*) AS count
            FROM clicks
            WHERE short_code = $1 AND user_agent IS NOT NULL AND user_agent <> ''
            GROUP BY user_agent
            ORDER BY count DESC, MIN(id)
            LIMIT $2`
		if err := tx.SelectContext(ctx, &summary.BrowserStats, browserQuery, shortCode, topN); err != nil {
			return err
		}

		// Sparse series: dates with no clicks are omitted
		historyQuery := `
            SELECT to_char((clicked_at AT TIME ZONE 'UTC')::date, 'YYYY-MM-DD') AS date, COUNT(*) AS clicks
            FROM clicks
            WHERE short_code = $1 AND clicked_at >= $2
            GROUP BY 1
            ORDER BY 1`
		return tx.SelectContext(ctx, &summary.ClickHistory, historyQuery, shortCode, since)
	})
	if err != nil {
		return nil, fmt.Errorf("summarizing clicks: %w", err)
	}

	return summary, nil
}
