package hotkeys

import (
	"log"
	"slices"
	"sync"

	"github.com/1broseidon/winsettle/internal/platform"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/keybind"
	"github.com/BurntSushi/xgbutil/xevent"
)

// Restorer moves the active window back to its stored geometry.
type Restorer interface {
	RestoreActive() (restored bool, err error)
}

// x11Accessor is an optional interface for backends that expose X11 internals.
type x11Accessor interface {
	XUtil() *xgbutil.XUtil
	RootWindow() xproto.Window
}

// Handler manages global keyboard shortcuts
type Handler struct {
	xu       *xgbutil.XUtil
	root     xproto.Window
	restorer Restorer
}

var ignoreModsOnce sync.Once

// NewHandler creates a new hotkey handler.
func NewHandler(backend platform.Backend, restorer Restorer) *Handler {
	var xu *xgbutil.XUtil
	var root xproto.Window
	if accessor, ok := backend.(x11Accessor); ok {
		xu = accessor.XUtil()
		root = accessor.RootWindow()
	}

	if xu != nil {
		ignoreModsOnce.Do(func() {
			configureIgnoreMods(xu)
		})
	}

	return &Handler{
		xu:       xu,
		root:     root,
		restorer: restorer,
	}
}

// Register binds the restore hotkey.
func (h *Handler) Register(keySequence string) error {
	return h.RegisterFunc(keySequence, h.restore)
}

func (h *Handler) restore() {
	log.Println("Restore hotkey triggered")
	restored, err := h.restorer.RestoreActive()
	switch {
	case err != nil:
		log.Printf("Restore failed: %v", err)
	case !restored:
		log.Println("No usable stored geometry for the active window")
	}
}

// RegisterFunc registers an arbitrary hotkey callback.
func (h *Handler) RegisterFunc(keySequence string, callback func()) error {
	return keybind.KeyPressFun(func(xu *xgbutil.XUtil, ev xevent.KeyPressEvent) {
		callback()
	}).Connect(h.xu, h.root, keySequence, true)
}

// configureIgnoreMods makes bindings fire regardless of the lock keys.
func configureIgnoreMods(xu *xgbutil.XUtil) {
	xevent.IgnoreMods = lockCombinations(
		uint16(xproto.ModMaskLock),
		modMaskForKeysym(xu, "Num_Lock"),
		modMaskForKeysym(xu, "Scroll_Lock"),
	)
}

// lockCombinations returns every combination of the given lock masks,
// including the empty one. Zero and duplicate masks are skipped.
func lockCombinations(locks ...uint16) []uint16 {
	var base []uint16
	for _, m := range locks {
		if m != 0 && !slices.Contains(base, m) {
			base = append(base, m)
		}
	}

	out := make([]uint16, 0, 1<<len(base))
	for subset := 0; subset < 1<<len(base); subset++ {
		var mask uint16
		for bit, m := range base {
			if subset&(1<<bit) != 0 {
				mask |= m
			}
		}
		if !slices.Contains(out, mask) {
			out = append(out, mask)
		}
	}
	return out
}

func modMaskForKeysym(xu *xgbutil.XUtil, keysym string) uint16 {
	for _, keycode := range keybind.StrToKeycodes(xu, keysym) {
		if mask := keybind.ModGet(xu, keycode); mask != 0 {
			return mask
		}
	}
	return 0
}
