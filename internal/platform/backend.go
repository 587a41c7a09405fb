package platform

import "github.com/1broseidon/winsettle/internal/window"

// WindowID is a platform-neutral window identifier.
type WindowID uint32

// Rect describes a rectangular region in screen coordinates.
type Rect struct {
	X      int
	Y      int
	Width  int
	Height int
}

// RectFromGeometry converts a settled geometry into a Rect.
func RectFromGeometry(g window.Geometry) Rect {
	return Rect{
		X:      g.Position.X,
		Y:      g.Position.Y,
		Width:  int(g.Size.Width),
		Height: int(g.Size.Height),
	}
}

// Geometry converts r into a window.Geometry. Negative sizes clamp to zero.
func (r Rect) Geometry() window.Geometry {
	return window.Geometry{
		Position: window.Position{X: r.X, Y: r.Y},
		Size:     window.Size{Width: uint(max(r.Width, 0)), Height: uint(max(r.Height, 0))},
	}
}

// Center returns the center point of r.
func (r Rect) Center() (int, int) {
	return r.X + r.Width/2, r.Y + r.Height/2
}

// Display describes a physical display.
type Display struct {
	ID     int
	Name   string
	Bounds Rect
}

// Window contains metadata and geometry for a top-level window.
type Window struct {
	ID     WindowID
	PID    int
	AppID  string
	Title  string
	Bounds Rect
}

// Watch is a live stream of raw notifications for one window.
type Watch interface {
	Events() <-chan window.Event
	Close()
}

// Backend abstracts window-system operations across platforms.
type Backend interface {
	Displays() ([]Display, error)
	ActiveWindow() (WindowID, error)
	ListWindows() ([]Window, error)
	Window(windowID WindowID) (Window, error)
	MoveResize(windowID WindowID, bounds Rect) error
	Watch(windowID WindowID) (Watch, error)
}

// OnAnyDisplay reports whether the center of r lies on one of displays.
func OnAnyDisplay(displays []Display, r Rect) bool {
	cx, cy := r.Center()
	for _, d := range displays {
		if containsPoint(d.Bounds, cx, cy) {
			return true
		}
	}
	return false
}

func containsPoint(r Rect, x, y int) bool {
	return x >= r.X && x < r.X+r.Width && y >= r.Y && y < r.Y+r.Height
}
