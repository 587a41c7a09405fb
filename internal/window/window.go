// Package window defines window geometry and the events that describe how
// it changes.
package window

import "fmt"

// Position is the absolute top-left corner of a window in root coordinates.
type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Size is the outer size of a window.
type Size struct {
	Width  uint `json:"width"`
	Height uint `json:"height"`
}

// Event is a window notification. The set of variants is closed: Moved,
// Resized and Other.
//
// The same variants describe both the raw stream observed from the window
// system and the settled stream produced by the debouncer. On the raw stream
// Moved means "the window is moving"; on the settled stream it means "the
// window came to rest here".
type Event interface {
	isEvent()
	String() string
}

// Moved reports a window position.
type Moved struct {
	Position
}

// Resized reports a window size.
type Resized struct {
	Size
}

// Other is any notification that carries no geometry (map, unmap, ...).
type Other struct {
	Kind string
}

func (Moved) isEvent()   {}
func (Resized) isEvent() {}
func (Other) isEvent()   {}

func (e Moved) String() string {
	return fmt.Sprintf("moved(%d,%d)", e.X, e.Y)
}

func (e Resized) String() string {
	return fmt.Sprintf("resized(%dx%d)", e.Width, e.Height)
}

func (e Other) String() string {
	return "other(" + e.Kind + ")"
}

// Relevant reports whether ev carries geometry.
func Relevant(ev Event) bool {
	switch ev.(type) {
	case Moved, Resized:
		return true
	default:
		return false
	}
}

// Geometry is the last settled position and size of a window.
type Geometry struct {
	Position Position `json:"position"`
	Size     Size     `json:"size"`
}

// Apply folds a settled event into g. Irrelevant events leave g unchanged.
func (g Geometry) Apply(ev Event) Geometry {
	switch e := ev.(type) {
	case Moved:
		g.Position = e.Position
	case Resized:
		g.Size = e.Size
	}
	return g
}

// IsZero reports whether no size has been recorded yet.
func (g Geometry) IsZero() bool {
	return g.Size.Width == 0 || g.Size.Height == 0
}
