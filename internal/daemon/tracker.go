package daemon

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/1broseidon/winsettle/internal/debounce"
	"github.com/1broseidon/winsettle/internal/platform"
	"github.com/1broseidon/winsettle/internal/store"
)

// Key returns the store key for w. WM_CLASS is stable across restarts; the
// title is used for windows that do not set one.
func Key(w platform.Window) string {
	if class := strings.TrimSpace(w.AppID); class != "" {
		return class
	}
	if title := strings.TrimSpace(w.Title); title != "" {
		return "title:" + title
	}
	return fmt.Sprintf("window:%d", w.ID)
}

// TrackerConfig holds the collaborators of a Tracker.
type TrackerConfig struct {
	Backend   platform.Backend
	Store     *store.Store
	Debouncer *debounce.Debouncer
	Restore   bool
	Logger    *slog.Logger
}

// Tracker follows one window and persists its settled geometry.
type Tracker struct {
	backend   platform.Backend
	store     *store.Store
	debouncer *debounce.Debouncer
	restore   bool
	logger    *slog.Logger

	win platform.Window
	key string
}

func NewTracker(cfg TrackerConfig, win platform.Window) *Tracker {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	d := cfg.Debouncer
	if d == nil {
		d = debounce.New(debounce.Config{Logger: logger})
	}
	key := Key(win)
	return &Tracker{
		backend:   cfg.Backend,
		store:     cfg.Store,
		debouncer: d,
		restore:   cfg.Restore,
		logger:    logger.With("window_id", win.ID, "key", key),
		win:       win,
		key:       key,
	}
}

// Key returns the store key of the tracked window.
func (t *Tracker) Key() string {
	return t.key
}

// Run tracks the window until it is destroyed or ctx is done.
func (t *Tracker) Run(ctx context.Context) error {
	watch, err := t.backend.Watch(t.win.ID)
	if err != nil {
		return fmt.Errorf("failed to watch window %d: %w", t.win.ID, err)
	}
	defer watch.Close()

	if t.restore {
		if _, err := Restore(t.backend, t.store, t.win); err != nil {
			t.logger.Warn("restore failed", "error", err)
		}
	}

	t.logger.Info("tracking window", "title", t.win.Title)

	seed := t.win.Bounds.Geometry()
	if _, ok := t.store.Get(t.key); !ok && !seed.IsZero() {
		// First sighting: remember where the window opened.
		if err := t.store.Put(t.key, seed); err != nil {
			t.logger.Error("failed to record initial geometry", "error", err)
		} else if err := t.store.Save(); err != nil {
			t.logger.Error("failed to save geometry store", "error", err)
		}
	}
	for ev := range t.debouncer.Process(ctx, watch.Events()) {
		g, err := t.store.Apply(t.key, seed, ev)
		if err != nil {
			t.logger.Error("failed to record geometry", "error", err)
			continue
		}
		if err := t.store.Save(); err != nil {
			t.logger.Error("failed to save geometry store", "error", err)
		}
		t.logger.Info("geometry settled", "event", ev.String(),
			"x", g.Position.X, "y", g.Position.Y,
			"width", g.Size.Width, "height", g.Size.Height)
	}

	t.logger.Info("stopped tracking window")
	return nil
}

// Restore moves w to its stored geometry. It reports false when nothing is
// stored or the stored rectangle is not on any current display.
func Restore(backend platform.Backend, st *store.Store, w platform.Window) (bool, error) {
	g, ok := st.Get(Key(w))
	if !ok || g.IsZero() {
		return false, nil
	}
	rect := platform.RectFromGeometry(g)

	displays, err := backend.Displays()
	if err != nil {
		return false, fmt.Errorf("failed to list displays: %w", err)
	}
	if !platform.OnAnyDisplay(displays, rect) {
		return false, nil
	}
	if rect == w.Bounds {
		return true, nil
	}
	if err := backend.MoveResize(w.ID, rect); err != nil {
		return false, fmt.Errorf("failed to move window %d: %w", w.ID, err)
	}
	return true, nil
}

// ActiveRestorer restores the focused window on demand.
type ActiveRestorer struct {
	Backend platform.Backend
	Store   *store.Store
}

// RestoreActive restores the active window's stored geometry.
func (a ActiveRestorer) RestoreActive() (bool, error) {
	id, err := a.Backend.ActiveWindow()
	if err != nil {
		return false, fmt.Errorf("failed to get active window: %w", err)
	}
	w, err := a.Backend.Window(id)
	if err != nil {
		return false, err
	}
	return Restore(a.Backend, a.Store, w)
}
