package analytics

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/mileusna/useragent"
	"github.com/rs/zerolog/log"

	"nexus-go/internal/shortener"
)

const (
	// queueSize bounds the number of clicks waiting to be written. When the
	// queue is full new events are dropped rather than blocking a redirect.
	queueSize = 1024

	writeTimeout = 5 * time.Second

	// Placeholder until a geo-IP integration exists
	unknownLocation = "Unknown"
)

// ClickCounter bumps the click counter on the URL record a click belongs to
type ClickCounter interface {
	IncrementClickCount(ctx context.Context, shortCode string) error
}

type pendingClick struct {
	shortCode string
	info      shortener.RequestInfo
	clickedAt time.Time
}

// Recorder persists click events through a queued-write worker. Enqueueing
// never blocks and never fails the caller; all write errors end up in the
// log instead of the redirect path.
type Recorder struct {
	clicks  ClickRepository
	counter ClickCounter
	queue   chan pendingClick
	wg      sync.WaitGroup
	once    sync.Once
}

func NewRecorder(clicks ClickRepository, counter ClickCounter) *Recorder {
	return &Recorder{
		clicks:  clicks,
		counter: counter,
		queue:   make(chan pendingClick, queueSize),
	}
}

// Start launches the worker goroutine
func (r *Recorder) Start() {
	r.wg.Add(1)
	go r.run()
	log.Info().Int("queue_size", queueSize).Msg("click recorder started")
}

// Stop closes the queue and waits for queued events to be written
func (r *Recorder) Stop() {
	r.once.Do(func() {
		close(r.queue)
	})
	r.wg.Wait()
	log.Info().Msg("click recorder stopped")
}

// Record enqueues a click for recording. If the queue is full the event is
// dropped and logged, keeping the redirect latency unaffected.
func (r *Recorder) Record(shortCode string, info shortener.RequestInfo) {
	click := pendingClick{
		shortCode: shortCode,
		info:      info,
		clickedAt: time.Now().UTC(),
	}

	select {
	case r.queue <- click:
	default:
		log.Warn().
			Str("short_code", shortCode).
			Msg("click queue full, dropping event")
	}
}

func (r *Recorder) run() {
	defer r.wg.Done()

	for click := range r.queue {
		r.process(click)
	}
}

func (r *Recorder) process(click pendingClick) {
	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()

	event := &ClickEvent{
		ShortCode: click.shortCode,
		ClickedAt: click.clickedAt,
		IPAddress: click.info.IPAddress,
		UserAgent: NormalizeUserAgent(click.info.UserAgent),
		Referer:   click.info.Referer,
		Country:   unknownLocation,
		City:      unknownLocation,
	}

	if err := r.clicks.Insert(ctx, event); err != nil {
		log.Error().
			Err(err).
			Str("short_code", click.shortCode).
			Msg("error recording click")
		return
	}

	if err := r.counter.IncrementClickCount(ctx, click.shortCode); err != nil {
		log.Error().
			Err(err).
			Str("short_code", click.shortCode).
			Msg("error incrementing click count")
	}
}

// NormalizeUserAgent reduces a raw User-Agent header to "family version".
// Unparseable input yields an empty string, never an error.
func NormalizeUserAgent(raw string) string {
	if raw == "" {
		return ""
	}

	ua := useragent.Parse(raw)
	if ua.Name == "" {
		return ""
	}
	if ua.Version == "" {
		return ua.Name
	}
	return strings.TrimSpace(ua.Name + " " + ua.Version)
}
