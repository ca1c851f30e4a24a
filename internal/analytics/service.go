package analytics

import (
	"context"
	"time"
)

// historyDays is the range of the daily click series
const historyDays = 30

// Service computes on-demand analytics summaries
type Service struct {
	clicks ClickRepository
}

func NewService(clicks ClickRepository) *Service {
	return &Service{clicks: clicks}
}

// Summarize aggregates all recorded clicks for a short code. A code without
// events returns a zeroed summary.
func (s *Service) Summarize(ctx context.Context, shortCode string) (*Summary, error) {
	since := time.Now().UTC().AddDate(0, 0, -historyDays)
	return s.clicks.Summarize(ctx, shortCode, since)
}
