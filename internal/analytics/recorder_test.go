package analytics

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nexus-go/internal/shortener"
)

type fakeClickStore struct {
	mu        sync.Mutex
	events    []*ClickEvent
	insertErr error
}

func (s *fakeClickStore) Insert(_ context.Context, event *ClickEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.insertErr != nil {
		return s.insertErr
	}
	stored := *event
	s.events = append(s.events, &stored)
	return nil
}

func (s *fakeClickStore) Summarize(_ context.Context, _ string, _ time.Time) (*Summary, error) {
	return &Summary{}, nil
}

func (s *fakeClickStore) stored() []*ClickEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*ClickEvent(nil), s.events...)
}

type fakeCounter struct {
	mu     sync.Mutex
	counts map[string]int
	err    error
}

func newFakeCounter() *fakeCounter {
	return &fakeCounter{counts: make(map[string]int)}
}

func (c *fakeCounter) IncrementClickCount(_ context.Context, shortCode string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return c.err
	}
	c.counts[shortCode]++
	return nil
}

func (c *fakeCounter) count(shortCode string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.counts[shortCode]
}

func TestRecorder_Record(t *testing.T) {
	t.Run("persists event and increments counter", func(t *testing.T) {
		store := &fakeClickStore{}
		counter := newFakeCounter()
		recorder := NewRecorder(store, counter)
		recorder.Start()

		recorder.Record("abc123", shortener.RequestInfo{
			IPAddress: "192.0.2.1",
			UserAgent: "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
			Referer:   "https://google.com",
		})
		recorder.Stop()

		events := store.stored()
		require.Len(t, events, 1)
		event := events[0]
		assert.Equal(t, "abc123", event.ShortCode)
		assert.Equal(t, "192.0.2.1", event.IPAddress)
		assert.Equal(t, "https://google.com", event.Referer)
		assert.Contains(t, event.UserAgent, "Chrome", "user agent is normalized to the browser family")
		assert.NotContains(t, event.UserAgent, "Mozilla/5.0", "raw header is not stored")
		assert.Equal(t, "Unknown", event.Country)
		assert.Equal(t, "Unknown", event.City)
		assert.False(t, event.ClickedAt.IsZero())

		assert.Equal(t, 1, counter.count("abc123"))
	})

	t.Run("insert failure is swallowed and skips the counter", func(t *testing.T) {
		store := &fakeClickStore{insertErr: errors.New("store down")}
		counter := newFakeCounter()
		recorder := NewRecorder(store, counter)
		recorder.Start()

		recorder.Record("abc123", shortener.RequestInfo{})
		recorder.Stop()

		assert.Empty(t, store.stored())
		assert.Equal(t, 0, counter.count("abc123"))
	})

	t.Run("counter failure is swallowed", func(t *testing.T) {
		store := &fakeClickStore{}
		counter := newFakeCounter()
		counter.err = errors.New("store down")
		recorder := NewRecorder(store, counter)
		recorder.Start()

		recorder.Record("abc123", shortener.RequestInfo{})
		recorder.Stop()

		assert.Len(t, store.stored(), 1, "the event itself is still persisted")
	})

	t.Run("stop flushes queued events", func(t *testing.T) {
		store := &fakeClickStore{}
		counter := newFakeCounter()
		recorder := NewRecorder(store, counter)
		recorder.Start()

		const clicks = 100
		for i := 0; i < clicks; i++ {
			recorder.Record("abc123", shortener.RequestInfo{IPAddress: "192.0.2.1"})
		}
		recorder.Stop()

		assert.Len(t, store.stored(), clicks)
		assert.Equal(t, clicks, counter.count("abc123"))
	})
}

func TestNormalizeUserAgent(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{
			name: "chrome on windows",
			raw:  "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
			want: "Chrome 120.0.0.0",
		},
		{
			name: "firefox on linux",
			raw:  "Mozilla/5.0 (X11; Linux x86_64; rv:121.0) Gecko/20100101 Firefox/121.0",
			want: "Firefox 121.0",
		},
		{
			name: "empty input",
			raw:  "",
			want: "",
		},
		{
			name: "unparseable input",
			raw:  "definitely not a user agent",
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeUserAgent(tt.raw))
		})
	}
}
