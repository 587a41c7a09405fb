package x11

import (
	"fmt"
	"sync"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/xevent"
	"github.com/BurntSushi/xgbutil/xwindow"

	"github.com/1broseidon/winsettle/internal/window"
)

// Subscription delivers the raw geometry notifications of one window.
//
// X callbacks run on the event loop goroutine and must never block it, so
// notifications are appended to an unbounded queue and a pump goroutine
// forwards them, in order, to Events(). The channel is closed when the
// window is destroyed or Close is called.
type Subscription struct {
	xu  *xgbutil.XUtil
	win xproto.Window

	// Last observed geometry; only touched from the event loop.
	pos  window.Position
	size window.Size

	events chan window.Event
	wake   chan struct{}
	done   chan struct{}

	mu    sync.Mutex
	queue []window.Event
	ended bool

	closeOnce sync.Once
}

func newSubscription(xu *xgbutil.XUtil, win xproto.Window, pos window.Position, size window.Size) *Subscription {
	s := &Subscription{
		xu:     xu,
		win:    win,
		pos:    pos,
		size:   size,
		events: make(chan window.Event),
		wake:   make(chan struct{}, 1),
		done:   make(chan struct{}),
	}
	go s.pump()
	return s
}

// Watch subscribes to structure notifications of a window. Moved and Resized
// are only reported for the axis that actually changed; map and unmap are
// reported as window.Other. The caller must run EventLoop for anything to be
// delivered.
func (c *Connection) Watch(windowID xproto.Window) (*Subscription, error) {
	x, y, w, h, err := c.Geometry(windowID)
	if err != nil {
		return nil, err
	}

	if err := xwindow.New(c.XUtil, windowID).Listen(xproto.EventMaskStructureNotify); err != nil {
		return nil, fmt.Errorf("failed to listen on window %d: %w", windowID, err)
	}

	s := newSubscription(c.XUtil, windowID,
		window.Position{X: x, Y: y},
		window.Size{Width: uint(w), Height: uint(h)},
	)

	xevent.ConfigureNotifyFun(func(xu *xgbutil.XUtil, ev xevent.ConfigureNotifyEvent) {
		x, y := int(ev.X), int(ev.Y)
		if rx, ry, err := c.rootPosition(windowID); err == nil {
			x, y = rx, ry
		}
		s.observe(window.Position{X: x, Y: y}, window.Size{Width: uint(ev.Width), Height: uint(ev.Height)})
	}).Connect(c.XUtil, windowID)

	xevent.MapNotifyFun(func(xu *xgbutil.XUtil, ev xevent.MapNotifyEvent) {
		s.push(window.Other{Kind: "map"})
	}).Connect(c.XUtil, windowID)

	xevent.UnmapNotifyFun(func(xu *xgbutil.XUtil, ev xevent.UnmapNotifyEvent) {
		s.push(window.Other{Kind: "unmap"})
	}).Connect(c.XUtil, windowID)

	xevent.DestroyNotifyFun(func(xu *xgbutil.XUtil, ev xevent.DestroyNotifyEvent) {
		s.end()
		go s.detach()
	}).Connect(c.XUtil, windowID)

	return s, nil
}

// Events returns the raw notification stream.
func (s *Subscription) Events() <-chan window.Event {
	return s.events
}

// Close stops delivery and releases the X callbacks. Queued notifications
// are discarded.
func (s *Subscription) Close() {
	s.closeOnce.Do(func() {
		s.detach()
		close(s.done)
	})
}

func (s *Subscription) detach() {
	if s.xu != nil {
		xevent.Detach(s.xu, s.win)
	}
}

// observe turns one configure notification into per-axis events.
func (s *Subscription) observe(pos window.Position, size window.Size) {
	if pos != s.pos {
		s.pos = pos
		s.push(window.Moved{Position: pos})
	}
	if size != s.size {
		s.size = size
		s.push(window.Resized{Size: size})
	}
}

func (s *Subscription) push(ev window.Event) {
	s.mu.Lock()
	if s.ended {
		s.mu.Unlock()
		return
	}
	s.queue = append(s.queue, ev)
	s.mu.Unlock()
	s.signal()
}

// end marks the stream finished; queued notifications are still delivered.
func (s *Subscription) end() {
	s.mu.Lock()
	s.ended = true
	s.mu.Unlock()
	s.signal()
}

func (s *Subscription) signal() {
	select {
	case s.wake <- struct{}{}:
	default:
	}
}

func (s *Subscription) pump() {
	defer close(s.events)
	for {
		s.mu.Lock()
		batch := s.queue
		s.queue = nil
		ended := s.ended
		s.mu.Unlock()

		for _, ev := range batch {
			select {
			case s.events <- ev:
			case <-s.done:
				return
			}
		}
		if len(batch) > 0 {
			continue
		}
		if ended {
			return
		}

		select {
		case <-s.wake:
		case <-s.done:
			return
		}
	}
}
