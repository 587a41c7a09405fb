package daemon

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/1broseidon/winsettle/internal/config"
	"github.com/1broseidon/winsettle/internal/debounce"
	"github.com/1broseidon/winsettle/internal/platform"
	"github.com/1broseidon/winsettle/internal/store"
)

// ReconcilerConfig holds configuration for the reconciler.
type ReconcilerConfig struct {
	Interval    time.Duration
	QuietPeriod time.Duration
	Restore     bool
	Windows     []config.WindowMatch
	Logger      *slog.Logger
}

// TrackedWindow describes a window with a running tracker.
type TrackedWindow struct {
	ID    platform.WindowID `json:"id"`
	Key   string            `json:"key"`
	Title string            `json:"title"`
	Since time.Time         `json:"since"`
}

type trackedWindow struct {
	info   TrackedWindow
	cancel context.CancelFunc
}

// Reconciler periodically rescans windows and keeps one tracker running per
// matching window.
type Reconciler struct {
	backend platform.Backend
	store   *store.Store
	logger  *slog.Logger

	mu        sync.Mutex
	ctx       context.Context
	interval  time.Duration
	restore   bool
	matcher   *Matcher
	debouncer *debounce.Debouncer
	pinned    platform.WindowID
	tracked   map[platform.WindowID]*trackedWindow
	wg        sync.WaitGroup
}

// NewReconciler creates a new reconciler with the given configuration.
func NewReconciler(cfg ReconcilerConfig, backend platform.Backend, st *store.Store) *Reconciler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	r := &Reconciler{
		backend: backend,
		store:   st,
		logger:  logger,
		tracked: make(map[platform.WindowID]*trackedWindow),
	}
	r.apply(cfg)
	return r
}

func (r *Reconciler) apply(cfg ReconcilerConfig) {
	interval := cfg.Interval
	if interval <= 0 {
		interval = config.DefaultRescanInterval
	}
	r.interval = interval
	r.restore = cfg.Restore
	r.matcher = NewMatcher(cfg.Windows)
	r.debouncer = debounce.New(debounce.Config{QuietPeriod: cfg.QuietPeriod, Logger: r.logger})
}

// UpdateConfig swaps in new settings. Trackers already running keep their
// quiet period; windows that no longer match are released on the next pass.
func (r *Reconciler) UpdateConfig(cfg ReconcilerConfig) {
	r.mu.Lock()
	r.apply(cfg)
	r.mu.Unlock()
	r.ReconcileNow()
}

// QuietPeriod returns the quiet period new trackers use.
func (r *Reconciler) QuietPeriod() time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.debouncer.QuietPeriod()
}

// Run starts the reconciliation loop. Blocks until context is cancelled and
// every tracker has stopped.
func (r *Reconciler) Run(ctx context.Context) {
	r.mu.Lock()
	r.ctx = ctx
	interval := r.interval
	r.mu.Unlock()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	r.logger.Info("reconciler started", "interval", interval)
	r.reconcile()

	for {
		select {
		case <-ctx.Done():
			r.stopAll()
			r.wg.Wait()
			r.logger.Info("reconciler stopped")
			return
		case <-ticker.C:
			r.reconcile()
			r.mu.Lock()
			if r.interval != interval {
				interval = r.interval
				ticker.Reset(interval)
			}
			r.mu.Unlock()
		}
	}
}

// ReconcileNow triggers an immediate reconciliation pass. It does nothing
// before Run has started.
func (r *Reconciler) ReconcileNow() {
	r.reconcile()
}

// Tracked returns the windows currently being tracked, ordered by ID.
func (r *Reconciler) Tracked() []TrackedWindow {
	r.mu.Lock()
	out := make([]TrackedWindow, 0, len(r.tracked))
	for _, tw := range r.tracked {
		out = append(out, tw.info)
	}
	r.mu.Unlock()

	sort.Slice(out, func(i, j int) bool {
		return out[i].ID < out[j].ID
	})
	return out
}

// reconcile performs a single reconciliation pass.
func (r *Reconciler) reconcile() {
	// Recover from panics to prevent crashing the daemon
	defer func() {
		if err := recover(); err != nil {
			r.logger.Error("reconciler panic recovered", "error", err)
		}
	}()

	r.mu.Lock()
	ctx := r.ctx
	r.mu.Unlock()
	if ctx == nil || ctx.Err() != nil {
		return
	}

	windows, err := r.backend.ListWindows()
	if err != nil {
		r.logger.Error("reconciler: failed to list windows", "error", err)
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	// Run may have stopped every tracker while the windows were listed.
	if ctx.Err() != nil {
		return
	}

	want := make(map[platform.WindowID]platform.Window)
	if r.matcher.Empty() {
		if r.pinned == 0 {
			active, err := r.backend.ActiveWindow()
			if err != nil {
				r.logger.Warn("reconciler: no active window to track", "error", err)
			}
			r.pinned = active
		}
		for _, w := range windows {
			if w.ID == r.pinned {
				want[w.ID] = w
			}
		}
	} else {
		for _, w := range windows {
			if r.matcher.Match(w) {
				want[w.ID] = w
			}
		}
	}

	for id, tw := range r.tracked {
		if _, ok := want[id]; !ok {
			r.logger.Info("reconciler: releasing window", "window_id", id, "key", tw.info.Key)
			tw.cancel()
			delete(r.tracked, id)
		}
	}

	for id, w := range want {
		if _, ok := r.tracked[id]; ok {
			continue
		}
		r.startLocked(ctx, w)
	}
}

func (r *Reconciler) startLocked(ctx context.Context, w platform.Window) {
	tracker := NewTracker(TrackerConfig{
		Backend:   r.backend,
		Store:     r.store,
		Debouncer: r.debouncer,
		Restore:   r.restore,
		Logger:    r.logger,
	}, w)

	tctx, cancel := context.WithCancel(ctx)
	tw := &trackedWindow{
		info: TrackedWindow{
			ID:    w.ID,
			Key:   tracker.Key(),
			Title: w.Title,
			Since: time.Now(),
		},
		cancel: cancel,
	}
	r.tracked[w.ID] = tw

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		defer cancel()

		if err := tracker.Run(tctx); err != nil {
			r.logger.Warn("tracker ended", "window_id", w.ID, "error", err)
		}

		r.mu.Lock()
		if r.tracked[w.ID] == tw {
			delete(r.tracked, w.ID)
		}
		r.mu.Unlock()
	}()
}

func (r *Reconciler) stopAll() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, tw := range r.tracked {
		tw.cancel()
		delete(r.tracked, id)
	}
}
