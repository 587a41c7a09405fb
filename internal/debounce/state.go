package debounce

import (
	"fmt"

	"github.com/1broseidon/winsettle/internal/window"
)

// state is the coalescing state of one debouncer. Exactly one of idle,
// moving, resizing or both.
type state interface {
	isState()
	String() string
}

// idle has nothing pending; no timer is armed.
type idle struct{}

// moving holds the latest position of a pending move.
type moving struct {
	pos window.Position
}

// resizing holds the latest size of a pending resize.
type resizing struct {
	size window.Size
}

// both holds a pending move and a pending resize.
type both struct {
	pos  window.Position
	size window.Size
}

func (idle) isState()     {}
func (moving) isState()   {}
func (resizing) isState() {}
func (both) isState()     {}

func (idle) String() string       { return "idle" }
func (s moving) String() string   { return fmt.Sprintf("moving(%d,%d)", s.pos.X, s.pos.Y) }
func (s resizing) String() string { return fmt.Sprintf("resizing(%dx%d)", s.size.Width, s.size.Height) }
func (s both) String() string {
	return fmt.Sprintf("both(%d,%d %dx%d)", s.pos.X, s.pos.Y, s.size.Width, s.size.Height)
}

// step applies one raw event to s. The boolean is false when the event
// carries no geometry; the returned state is then s itself and the quiet
// period timer must be left alone.
func step(s state, ev window.Event) (state, bool) {
	switch e := ev.(type) {
	case window.Moved:
		switch cur := s.(type) {
		case idle, moving:
			return moving{pos: e.Position}, true
		case resizing:
			return both{pos: e.Position, size: cur.size}, true
		case both:
			return both{pos: e.Position, size: cur.size}, true
		default:
			panic(fmt.Sprintf("debounce: unknown state %T", s))
		}
	case window.Resized:
		switch cur := s.(type) {
		case idle, resizing:
			return resizing{size: e.Size}, true
		case moving:
			return both{pos: cur.pos, size: e.Size}, true
		case both:
			return both{pos: cur.pos, size: e.Size}, true
		default:
			panic(fmt.Sprintf("debounce: unknown state %T", s))
		}
	default:
		return s, false
	}
}

// flush returns the settled events owed when the quiet period expires in s.
// Position always precedes size.
func flush(s state) []window.Event {
	switch cur := s.(type) {
	case idle:
		return nil
	case moving:
		return []window.Event{window.Moved{Position: cur.pos}}
	case resizing:
		return []window.Event{window.Resized{Size: cur.size}}
	case both:
		return []window.Event{
			window.Moved{Position: cur.pos},
			window.Resized{Size: cur.size},
		}
	default:
		panic(fmt.Sprintf("debounce: unknown state %T", s))
	}
}
