// Package poller detects out-of-band server changes with a fixed-interval
// re-fetch. A change only raises an update-available flag; the data the
// caller already rendered is never replaced behind its back.
package poller

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

// Snapshot is the cheap change signal compared between ticks: a row count
// plus a fingerprint of whatever per-row field matters (status, score).
type Snapshot struct {
	Count       int
	Fingerprint string
}

// FetchFunc produces the current snapshot from the server.
type FetchFunc func(ctx context.Context) (Snapshot, error)

// Poller runs at most one polling loop at a time. Starting a new loop stops
// the previous one first, so switching phases can never leak a ticker.
type Poller struct {
	interval time.Duration
	logger   *slog.Logger

	mu     sync.Mutex
	active *Handle
}

func New(interval time.Duration, logger *slog.Logger) *Poller {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Poller{interval: interval, logger: logger}
}

// Start begins polling against the given baseline. onChange, if non-nil, is
// invoked once each time a differing snapshot first raises the flag.
// The returned handle is the single cancellation token for this loop.
func (p *Poller) Start(ctx context.Context, baseline Snapshot, fetch FetchFunc, onChange func(Snapshot)) *Handle {
	// Another Start may install a fresh handle while the mutex is released
	// for Stop, so re-check until the slot is free; the new handle is only
	// installed while holding the lock with no loop active.
	p.mu.Lock()
	for p.active != nil {
		prev := p.active
		p.mu.Unlock()
		prev.Stop()
		p.mu.Lock()
	}

	runCtx, cancel := context.WithCancel(ctx)
	h := &Handle{
		cancel:   cancel,
		done:     make(chan struct{}),
		baseline: baseline,
		latest:   baseline,
	}
	p.active = h
	p.mu.Unlock()

	go p.run(runCtx, h, fetch, onChange)
	return h
}

// Stop cancels the active loop, if any, and waits for it to exit.
func (p *Poller) Stop() {
	p.mu.Lock()
	h := p.active
	p.mu.Unlock()
	if h != nil {
		h.Stop()
	}
}

func (p *Poller) run(ctx context.Context, h *Handle, fetch FetchFunc, onChange func(Snapshot)) {
	defer close(h.done)
	defer p.release(h)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			snap, err := fetch(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				// Keep polling; the next tick may succeed.
				p.logger.Warn("poll fetch failed", slog.Any("error", err))
				continue
			}
			if h.observe(snap) && onChange != nil {
				onChange(snap)
			}
		}
	}
}

func (p *Poller) release(h *Handle) {
	p.mu.Lock()
	if p.active == h {
		p.active = nil
	}
	p.mu.Unlock()
}

// Handle is the cancellation token and flag holder of one polling loop.
type Handle struct {
	cancel   context.CancelFunc
	done     chan struct{}
	stopOnce sync.Once
	update   atomic.Bool

	mu       sync.Mutex
	baseline Snapshot
	latest   Snapshot
}

// Stop cancels the loop and waits for it to exit. Idempotent.
func (h *Handle) Stop() {
	h.stopOnce.Do(h.cancel)
	<-h.done
}

// Done is closed when the loop has exited.
func (h *Handle) Done() <-chan struct{} { return h.done }

// UpdateAvailable reports whether a snapshot differing from the baseline
// has been observed since the last Acknowledge.
func (h *Handle) UpdateAvailable() bool { return h.update.Load() }

// Latest returns the most recently observed snapshot.
func (h *Handle) Latest() Snapshot {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.latest
}

// Acknowledge records that the caller refreshed its view: the given snapshot
// becomes the new baseline and the flag is cleared.
func (h *Handle) Acknowledge(snap Snapshot) {
	h.mu.Lock()
	h.baseline = snap
	h.latest = snap
	h.mu.Unlock()
	h.update.Store(false)
}

// observe returns true when snap first raises the update flag.
func (h *Handle) observe(snap Snapshot) bool {
	h.mu.Lock()
	changed := snap != h.baseline
	h.latest = snap
	h.mu.Unlock()

	if changed {
		return h.update.CompareAndSwap(false, true)
	}
	return false
}
