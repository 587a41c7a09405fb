package x11

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"
	"github.com/BurntSushi/xgbutil/icccm"
	"github.com/BurntSushi/xgbutil/xwindow"
)

// MoveResizeWindow moves and resizes a window to the specified geometry
func (c *Connection) MoveResizeWindow(windowID xproto.Window, x, y, width, height int) error {
	// A maximized window ignores move/resize requests on most WMs.
	c.unmaximizeWindow(windowID)

	// Static gravity: x and y address the client window, not its frame,
	// matching what Geometry reports.
	err := ewmh.MoveresizeWindowExtra(c.XUtil, windowID, x, y, width, height,
		int(xproto.GravityStatic), 2, true, true)
	if err != nil {
		// Fallback to direct window manipulation
		xwindow.New(c.XUtil, windowID).MoveResize(x, y, width, height)
	}
	return nil
}

// unmaximizeWindow removes maximized state from a window
func (c *Connection) unmaximizeWindow(windowID xproto.Window) error {
	states, err := ewmh.WmStateGet(c.XUtil, windowID)
	if err != nil {
		return err
	}

	for _, state := range states {
		switch state {
		case "_NET_WM_STATE_MAXIMIZED_HORZ", "_NET_WM_STATE_MAXIMIZED_VERT":
			ewmh.WmStateReq(c.XUtil, windowID, 0, state)
		}
	}
	return nil
}

// Geometry returns the root-relative position and the size of a window.
func (c *Connection) Geometry(windowID xproto.Window) (x, y, width, height int, err error) {
	geom, err := xproto.GetGeometry(c.XUtil.Conn(), xproto.Drawable(windowID)).Reply()
	if err != nil {
		return 0, 0, 0, 0, fmt.Errorf("failed to get geometry of window %d: %w", windowID, err)
	}
	x, y, err = c.rootPosition(windowID)
	if err != nil {
		return 0, 0, 0, 0, err
	}
	return x, y, int(geom.Width), int(geom.Height), nil
}

// rootPosition translates the window origin into root coordinates. Under a
// reparenting WM the coordinates carried by ConfigureNotify are relative to
// the frame, so this is the only reliable source.
func (c *Connection) rootPosition(windowID xproto.Window) (int, int, error) {
	translate, err := xproto.TranslateCoordinates(c.XUtil.Conn(), windowID, c.Root, 0, 0).Reply()
	if err != nil {
		return 0, 0, fmt.Errorf("failed to translate coordinates of window %d: %w", windowID, err)
	}
	return int(translate.DstX), int(translate.DstY), nil
}

// IsNormalWindow checks if a window is a normal application window
func (c *Connection) IsNormalWindow(windowID xproto.Window) bool {
	types, err := ewmh.WmWindowTypeGet(c.XUtil, windowID)
	if err != nil {
		// If we can't determine type, assume it's normal
		return true
	}

	for _, t := range types {
		switch t {
		case "_NET_WM_WINDOW_TYPE_NORMAL":
			return true
		case "_NET_WM_WINDOW_TYPE_DESKTOP",
			"_NET_WM_WINDOW_TYPE_DOCK",
			"_NET_WM_WINDOW_TYPE_SPLASH",
			"_NET_WM_WINDOW_TYPE_NOTIFICATION":
			return false
		}
	}

	// If no specific type is set, assume it's normal
	return len(types) == 0
}

// ClientWindows returns the normal top-level windows from the EWMH client list.
func (c *Connection) ClientWindows() ([]xproto.Window, error) {
	clients, err := ewmh.ClientListGet(c.XUtil)
	if err != nil {
		return nil, fmt.Errorf("failed to get client list: %w", err)
	}
	out := make([]xproto.Window, 0, len(clients))
	for _, win := range clients {
		if c.IsNormalWindow(win) {
			out = append(out, win)
		}
	}
	return out, nil
}

// WindowClass returns the WM_CLASS class of a window, or "".
func (c *Connection) WindowClass(windowID xproto.Window) string {
	wmClass, err := icccm.WmClassGet(c.XUtil, windowID)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(wmClass.Class)
}

// WindowTitle returns _NET_WM_NAME, falling back to WM_NAME.
func (c *Connection) WindowTitle(windowID xproto.Window) string {
	if title, err := ewmh.WmNameGet(c.XUtil, windowID); err == nil {
		if title = strings.TrimSpace(title); title != "" {
			return title
		}
	}
	if title, err := icccm.WmNameGet(c.XUtil, windowID); err == nil {
		return strings.TrimSpace(title)
	}
	return ""
}

// WindowPID returns _NET_WM_PID, or 0 when unset.
func (c *Connection) WindowPID(windowID xproto.Window) int {
	pid, err := ewmh.WmPidGet(c.XUtil, windowID)
	if err != nil {
		return 0
	}
	return int(pid)
}

func (c *Connection) GetActiveWindow() (xproto.Window, error) {
	return ewmh.ActiveWindowGet(c.XUtil)
}
