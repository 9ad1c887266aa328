package pricing

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"
)

var ErrNoQuote = errors.New("no quote yet")

// DefaultHistory is the number of points a Feed keeps.
const DefaultHistory = 20

// Feed polls a Source on a fixed interval, keeps the most recent quotes
// and fans each new quote out to subscribers. Slow subscribers miss
// quotes rather than stall the feed.
type Feed struct {
	src      Source
	interval time.Duration
	size     int
	log      *slog.Logger

	mu      sync.RWMutex
	history []Quote
	subs    map[chan Quote]struct{}
}

func NewFeed(src Source, interval time.Duration, size int, log *slog.Logger) *Feed {
	if size <= 0 {
		size = DefaultHistory
	}
	if log == nil {
		log = slog.Default()
	}
	return &Feed{
		src:      src,
		interval: interval,
		size:     size,
		log:      log,
		history:  make([]Quote, 0, size),
		subs:     make(map[chan Quote]struct{}),
	}
}

// Run polls immediately and then every interval until ctx is done.
// Source errors are logged and the next tick retried.
func (f *Feed) Run(ctx context.Context) error {
	ticker := time.NewTicker(f.interval)
	defer ticker.Stop()

	for {
		if _, err := f.Poll(ctx); err != nil && ctx.Err() == nil {
			f.log.Warn("price poll failed", "error", err)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// Poll fetches one quote, records it and publishes it.
func (f *Feed) Poll(ctx context.Context) (Quote, error) {
	q, err := f.src.Quote(ctx)
	if err != nil {
		return Quote{}, err
	}

	f.mu.Lock()
	if len(f.history) == f.size {
		copy(f.history, f.history[1:])
		f.history = f.history[:f.size-1]
	}
	f.history = append(f.history, q)
	for ch := range f.subs {
		select {
		case ch <- q:
		default:
		}
	}
	f.mu.Unlock()

	return q, nil
}

func (f *Feed) Latest() (Quote, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if len(f.history) == 0 {
		return Quote{}, ErrNoQuote
	}
	return f.history[len(f.history)-1], nil
}

// History returns a copy of the retained quotes, oldest first.
func (f *Feed) History() []Quote {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := make([]Quote, len(f.history))
	copy(out, f.history)
	return out
}

// Subscribe returns a channel of new quotes and a func that closes it.
func (f *Feed) Subscribe(buf int) (<-chan Quote, func()) {
	ch := make(chan Quote, buf)
	f.mu.Lock()
	f.subs[ch] = struct{}{}
	f.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			f.mu.Lock()
			delete(f.subs, ch)
			close(ch)
			f.mu.Unlock()
		})
	}
}

// Subscribers reports the number of open subscriptions.
func (f *Feed) Subscribers() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.subs)
}
