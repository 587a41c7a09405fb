package tui

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/1broseidon/winsettle/internal/daemon"
	"github.com/1broseidon/winsettle/internal/ipc"
	"github.com/1broseidon/winsettle/internal/store"
	"github.com/1broseidon/winsettle/internal/window"
)

type fakeClient struct {
	down     bool
	entries  []store.Entry
	forgot   []string
	reloaded int
}

func (f *fakeClient) GetStatus() (*ipc.StatusData, error) {
	if f.down {
		return nil, errors.New("down")
	}
	return &ipc.StatusData{
		DaemonRunning: true,
		QuietPeriodMS: 500,
		StoredCount:   len(f.entries),
		Tracked:       []daemon.TrackedWindow{{ID: 0x400003, Key: "kitty", Title: "shell"}},
	}, nil
}

func (f *fakeClient) ListGeometry() ([]store.Entry, error) {
	if f.down {
		return nil, errors.New("down")
	}
	return f.entries, nil
}

func (f *fakeClient) ForgetGeometry(key string) (bool, error) {
	if f.down {
		return false, errors.New("down")
	}
	f.forgot = append(f.forgot, key)
	return true, nil
}

func (f *fakeClient) Reload() error {
	if f.down {
		return errors.New("down")
	}
	f.reloaded++
	return nil
}

func key(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func sized(t *testing.T, m model) model {
	t.Helper()
	next, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	return next.(model)
}

func load(t *testing.T, m model) model {
	t.Helper()
	msg := m.fetch(false)()
	next, _ := m.Update(msg)
	return next.(model)
}

func TestModel_TrackedView(t *testing.T) {
	client := &fakeClient{entries: []store.Entry{{Key: "kitty"}}}
	m := load(t, sized(t, newModel(client, "", nil)))

	view := m.View()
	if !strings.Contains(view, "daemon running") {
		t.Fatalf("expected running status in view:\n%s", view)
	}
	if !strings.Contains(view, "0x00400003") || !strings.Contains(view, "kitty") {
		t.Fatalf("expected tracked window in view:\n%s", view)
	}
}

func TestModel_TabSwitching(t *testing.T) {
	m := newModel(&fakeClient{}, "", nil)

	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyTab})
	if got := next.(model).activeTab; got != TabGeometry {
		t.Fatalf("expected geometry tab, got %v", got)
	}
	next, _ = next.Update(tea.KeyMsg{Type: tea.KeyTab})
	if got := next.(model).activeTab; got != TabConfig {
		t.Fatalf("expected config tab, got %v", got)
	}
	next, _ = next.Update(tea.KeyMsg{Type: tea.KeyTab})
	if got := next.(model).activeTab; got != TabTracked {
		t.Fatalf("expected wrap to tracked tab, got %v", got)
	}
	next, _ = next.Update(tea.KeyMsg{Type: tea.KeyShiftTab})
	if got := next.(model).activeTab; got != TabConfig {
		t.Fatalf("expected shift+tab to wrap to config tab, got %v", got)
	}
	next, _ = next.Update(key("2"))
	if got := next.(model).activeTab; got != TabGeometry {
		t.Fatalf("expected geometry tab, got %v", got)
	}
}

func TestModel_ForgetSelected(t *testing.T) {
	client := &fakeClient{entries: []store.Entry{{Key: "emacs"}, {Key: "kitty"}}}
	m := load(t, sized(t, newModel(client, "", nil)))
	m.activeTab = TabGeometry

	if got := m.selectedKey(); got != "emacs" {
		t.Fatalf("expected first entry selected, got %q", got)
	}

	_, cmd := m.Update(key("x"))
	if cmd == nil {
		t.Fatal("expected forget command")
	}
	msg, ok := cmd().(statusMsg)
	if !ok || msg.text != "forgot emacs" {
		t.Fatalf("unexpected message: %#v", msg)
	}
	if len(client.forgot) != 1 || client.forgot[0] != "emacs" {
		t.Fatalf("unexpected forgets: %v", client.forgot)
	}
}

func TestModel_DaemonDownReadsStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "geometry.json")
	st, err := store.Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := st.Put("firefox", window.Geometry{Size: window.Size{Width: 10, Height: 10}}); err != nil {
		t.Fatalf("put: %v", err)
	}
	if err := st.Save(); err != nil {
		t.Fatalf("save: %v", err)
	}

	m := load(t, sized(t, newModel(&fakeClient{down: true}, path, nil)))
	if m.status != nil {
		t.Fatalf("expected no daemon status")
	}
	if len(m.entries) != 1 || m.entries[0].Key != "firefox" {
		t.Fatalf("unexpected entries: %+v", m.entries)
	}
	if !strings.Contains(m.View(), "daemon not running") {
		t.Fatalf("expected offline status bar")
	}
}
