package agent

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/nstehr/venture/venture-core/rules"
)

// ContentSource produces a fresh set of niches, typically by re-reading the
// content directory.
type ContentSource func() ([]rules.Niche, error)

// Reloader runs in the background and swaps the registry's niche content
// when triggered (SIGHUP) or on a fixed interval.
type Reloader struct {
	mu       sync.Mutex
	registry *rules.Registry
	source   ContentSource
	interval time.Duration // zero disables periodic reloads
	loads    int
	lastErr  error
	ready    chan struct{}
}

func NewReloader(registry *rules.Registry, source ContentSource, interval time.Duration) *Reloader {
	return &Reloader{
		registry: registry,
		source:   source,
		interval: interval,
		ready:    make(chan struct{}, 1),
	}
}

// Trigger requests a reload. Requests made while one is pending coalesce.
func (r *Reloader) Trigger() {
	select {
	case r.ready <- struct{}{}:
	default:
	}
}

// Start blocks until ctx is cancelled.
func (r *Reloader) Start(ctx context.Context) {
	slog.Info("content reloader started", "interval", r.interval)

	var tick <-chan time.Time
	if r.interval > 0 {
		t := time.NewTicker(r.interval)
		defer t.Stop()
		tick = t.C
	}

	for {
		select {
		case <-ctx.Done():
			slog.Info("content reloader stopped")
			return
		case <-r.ready:
			r.reload()
		case <-tick:
			r.reload()
		}
	}
}

// Loads reports how many reloads succeeded and the error of the last attempt.
func (r *Reloader) Loads() (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.loads, r.lastErr
}

func (r *Reloader) reload() {
	niches, err := r.source()
	if err == nil {
		err = r.registry.Swap(niches)
	}

	r.mu.Lock()
	r.lastErr = err
	if err == nil {
		r.loads++
	}
	r.mu.Unlock()

	if err != nil {
		slog.Error("content reload failed, keeping previous niches", "error", err)
	}
}
