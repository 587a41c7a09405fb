//go:build linux

package platform

import (
	"fmt"
	"sort"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"

	"github.com/1broseidon/winsettle/internal/x11"
)

// LinuxBackend wraps an existing X11 connection behind the platform Backend interface.
type LinuxBackend struct {
	conn *x11.Connection
}

var _ Backend = (*LinuxBackend)(nil)

// NewLinuxBackendFromDisplay creates a new Linux backend by opening a fresh
// X11 connection. An empty display uses $DISPLAY.
func NewLinuxBackendFromDisplay(display string) (*LinuxBackend, error) {
	conn, err := x11.NewConnectionDisplay(display)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to X11: %w", err)
	}
	return &LinuxBackend{conn: conn}, nil
}

// Disconnect closes the underlying X11 connection.
func (b *LinuxBackend) Disconnect() {
	if b != nil && b.conn != nil {
		b.conn.Close()
	}
}

// EventLoop starts the X11 event loop (blocking).
func (b *LinuxBackend) EventLoop() {
	if b != nil && b.conn != nil {
		b.conn.EventLoop()
	}
}

// Quit stops a running EventLoop.
func (b *LinuxBackend) Quit() {
	if b != nil && b.conn != nil {
		b.conn.Quit()
	}
}

// XUtil returns the underlying xgbutil connection for X11-specific operations.
func (b *LinuxBackend) XUtil() *xgbutil.XUtil {
	if b == nil || b.conn == nil {
		return nil
	}
	return b.conn.XUtil
}

// RootWindow returns the X11 root window ID.
func (b *LinuxBackend) RootWindow() xproto.Window {
	if b == nil || b.conn == nil {
		return 0
	}
	return b.conn.Root
}

// Displays returns all active displays.
func (b *LinuxBackend) Displays() ([]Display, error) {
	conn, err := b.connection()
	if err != nil {
		return nil, err
	}

	monitors, err := conn.GetMonitors()
	if err != nil {
		return nil, err
	}

	displays := make([]Display, 0, len(monitors))
	for _, m := range monitors {
		displays = append(displays, Display{
			ID:   m.ID,
			Name: m.Name,
			Bounds: Rect{
				X:      m.X,
				Y:      m.Y,
				Width:  m.Width,
				Height: m.Height,
			},
		})
	}

	sort.Slice(displays, func(i, j int) bool {
		return displays[i].ID < displays[j].ID
	})
	return displays, nil
}

// ActiveWindow returns the currently active/focused window ID.
func (b *LinuxBackend) ActiveWindow() (WindowID, error) {
	conn, err := b.connection()
	if err != nil {
		return 0, err
	}

	wid, err := conn.GetActiveWindow()
	if err != nil {
		return 0, err
	}
	return WindowID(wid), nil
}

// ListWindows lists normal top-level windows, sorted by ID.
func (b *LinuxBackend) ListWindows() ([]Window, error) {
	conn, err := b.connection()
	if err != nil {
		return nil, err
	}

	clients, err := conn.ClientWindows()
	if err != nil {
		return nil, err
	}

	windows := make([]Window, 0, len(clients))
	for _, windowID := range clients {
		w, err := b.describe(conn, windowID)
		if err != nil {
			// Window vanished between listing and querying.
			continue
		}
		windows = append(windows, w)
	}

	sort.Slice(windows, func(i, j int) bool {
		return windows[i].ID < windows[j].ID
	})
	return windows, nil
}

// Window returns metadata and geometry for one window.
func (b *LinuxBackend) Window(windowID WindowID) (Window, error) {
	conn, err := b.connection()
	if err != nil {
		return Window{}, err
	}
	return b.describe(conn, xproto.Window(windowID))
}

// MoveResize moves and resizes a window to the specified bounds.
func (b *LinuxBackend) MoveResize(windowID WindowID, bounds Rect) error {
	conn, err := b.connection()
	if err != nil {
		return err
	}

	return conn.MoveResizeWindow(
		xproto.Window(windowID),
		bounds.X,
		bounds.Y,
		bounds.Width,
		bounds.Height,
	)
}

// Watch subscribes to raw move/resize notifications of a window.
func (b *LinuxBackend) Watch(windowID WindowID) (Watch, error) {
	conn, err := b.connection()
	if err != nil {
		return nil, err
	}
	sub, err := conn.Watch(xproto.Window(windowID))
	if err != nil {
		return nil, err
	}
	return sub, nil
}

func (b *LinuxBackend) describe(conn *x11.Connection, windowID xproto.Window) (Window, error) {
	x, y, w, h, err := conn.Geometry(windowID)
	if err != nil {
		return Window{}, err
	}
	return Window{
		ID:     WindowID(windowID),
		PID:    conn.WindowPID(windowID),
		AppID:  conn.WindowClass(windowID),
		Title:  conn.WindowTitle(windowID),
		Bounds: Rect{X: x, Y: y, Width: w, Height: h},
	}, nil
}

func (b *LinuxBackend) connection() (*x11.Connection, error) {
	if b == nil || b.conn == nil {
		return nil, fmt.Errorf("x11 backend connection is nil")
	}
	return b.conn, nil
}
