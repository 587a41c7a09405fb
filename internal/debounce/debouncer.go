// Package debounce turns a raw stream of window move/resize notifications
// into a stream of settled geometry.
//
// A Debouncer waits until an axis (position or size) has been quiet for the
// configured quiet period before emitting the latest value observed on it.
// When both axes are pending they are flushed together, position first.
// Intermediate values are never emitted.
package debounce

import (
	"context"
	"log/slog"
	"time"

	"github.com/1broseidon/winsettle/internal/window"
)

// DefaultQuietPeriod is how long an axis must be idle before it is settled.
const DefaultQuietPeriod = 500 * time.Millisecond

// Config configures a Debouncer.
type Config struct {
	QuietPeriod time.Duration
	Logger      *slog.Logger
}

// Debouncer coalesces raw window events. A Debouncer holds no per-stream
// state, so one value may serve any number of independent streams.
type Debouncer struct {
	quiet  time.Duration
	logger *slog.Logger
}

// New creates a Debouncer. A non-positive quiet period falls back to
// DefaultQuietPeriod.
func New(cfg Config) *Debouncer {
	quiet := cfg.QuietPeriod
	if quiet <= 0 {
		quiet = DefaultQuietPeriod
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Debouncer{quiet: quiet, logger: logger}
}

// QuietPeriod returns the effective quiet period.
func (d *Debouncer) QuietPeriod() time.Duration {
	return d.quiet
}

// Process starts coalescing events read from src and returns the settled
// stream. The returned channel is closed when src is closed or ctx is done;
// in both cases any pending, not yet settled value is dropped.
//
// src must not be read by anyone else while Process runs. Callers that stop
// reading the output must cancel ctx to release the goroutine.
func (d *Debouncer) Process(ctx context.Context, src <-chan window.Event) <-chan window.Event {
	out := make(chan window.Event)
	go d.run(ctx, src, out)
	return out
}

func (d *Debouncer) run(ctx context.Context, src <-chan window.Event, out chan<- window.Event) {
	defer close(out)

	timer := time.NewTimer(d.quiet)
	timer.Stop()
	defer timer.Stop()

	var cur state = idle{}

	// apply feeds one raw event into the machine and re-arms the timer when
	// the event moved it.
	apply := func(ev window.Event) bool {
		next, ok := step(cur, ev)
		if !ok {
			return false
		}
		cur = next
		timer.Reset(d.quiet)
		return true
	}

	for {
		if _, ok := cur.(idle); ok {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-src:
				if !ok {
					return
				}
				apply(ev)
			}
			continue
		}

		select {
		case <-ctx.Done():
			d.drop(cur, "cancelled")
			return

		case ev, ok := <-src:
			if !ok {
				d.drop(cur, "source closed")
				return
			}
			apply(ev)

		case <-timer.C:
			// Events already queued count as activity before the expiry.
			extended, closed := d.drainReady(src, apply)
			if closed {
				d.drop(cur, "source closed")
				return
			}
			if extended {
				continue
			}

			for _, ev := range flush(cur) {
				d.logger.Debug("window settled", "event", ev)
				select {
				case out <- ev:
				case <-ctx.Done():
					return
				}
			}
			cur = idle{}
		}
	}
}

// drainReady consumes events that are ready without blocking, stopping at the
// first one that carries geometry.
func (d *Debouncer) drainReady(src <-chan window.Event, apply func(window.Event) bool) (extended, closed bool) {
	for {
		select {
		case ev, ok := <-src:
			if !ok {
				return false, true
			}
			if apply(ev) {
				return true, false
			}
		default:
			return false, false
		}
	}
}

func (d *Debouncer) drop(s state, reason string) {
	d.logger.Debug("dropping pending window state", "state", s.String(), "reason", reason)
}
