package daemon

import (
	"fmt"
	"sync"

	"github.com/1broseidon/winsettle/internal/platform"
	"github.com/1broseidon/winsettle/internal/window"
)

type fakeWatch struct {
	events chan window.Event
	once   sync.Once
}

func newFakeWatch() *fakeWatch {
	return &fakeWatch{events: make(chan window.Event, 64)}
}

func (w *fakeWatch) Events() <-chan window.Event { return w.events }

func (w *fakeWatch) Close() { w.end() }

func (w *fakeWatch) end() {
	w.once.Do(func() { close(w.events) })
}

type moveCall struct {
	id   platform.WindowID
	rect platform.Rect
}

type fakeBackend struct {
	mu       sync.Mutex
	displays []platform.Display
	windows  []platform.Window
	active   platform.WindowID
	watches  map[platform.WindowID]*fakeWatch
	moves    []moveCall
}

func newFakeBackend(windows ...platform.Window) *fakeBackend {
	return &fakeBackend{
		displays: []platform.Display{{ID: 0, Name: "primary", Bounds: platform.Rect{Width: 1920, Height: 1080}}},
		windows:  windows,
		watches:  make(map[platform.WindowID]*fakeWatch),
	}
}

func (b *fakeBackend) Displays() ([]platform.Display, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]platform.Display(nil), b.displays...), nil
}

func (b *fakeBackend) ActiveWindow() (platform.WindowID, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.active == 0 {
		return 0, fmt.Errorf("no active window")
	}
	return b.active, nil
}

func (b *fakeBackend) ListWindows() ([]platform.Window, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]platform.Window(nil), b.windows...), nil
}

func (b *fakeBackend) Window(id platform.WindowID) (platform.Window, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, w := range b.windows {
		if w.ID == id {
			return w, nil
		}
	}
	return platform.Window{}, fmt.Errorf("window %d not found", id)
}

func (b *fakeBackend) MoveResize(id platform.WindowID, rect platform.Rect) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.moves = append(b.moves, moveCall{id: id, rect: rect})
	return nil
}

func (b *fakeBackend) Watch(id platform.WindowID) (platform.Watch, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	w := newFakeWatch()
	b.watches[id] = w
	return w, nil
}

func (b *fakeBackend) watch(id platform.WindowID) *fakeWatch {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.watches[id]
}

func (b *fakeBackend) moveCalls() []moveCall {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]moveCall(nil), b.moves...)
}

func (b *fakeBackend) setWindows(windows ...platform.Window) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.windows = windows
}
