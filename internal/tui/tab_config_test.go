package tui

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/1broseidon/winsettle/internal/config"
)

func TestConfigTab_View(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Windows = []config.WindowMatch{{Class: "kitty"}, {Title: "notes"}}
	m := sized(t, newModel(&fakeClient{}, "", cfg))
	m.activeTab = TabConfig

	view := m.View()
	for _, want := range []string{"Quiet Period", "500ms", "kitty", "title:notes", "Press 'e'"} {
		if !strings.Contains(view, want) {
			t.Fatalf("expected %q in view:\n%s", want, view)
		}
	}
}

func TestConfigTab_StartEditing(t *testing.T) {
	m := sized(t, newModel(&fakeClient{}, "", config.DefaultConfig()))
	m.activeTab = TabConfig

	next, _ := m.Update(key("e"))
	m = next.(model)
	if !m.configTab.editing || m.configTab.form == nil {
		t.Fatal("expected edit form to open")
	}
	if m.configTab.values.quietPeriod != "500ms" || m.configTab.values.logLevel != "info" {
		t.Fatalf("unexpected form values: %q %q", m.configTab.values.quietPeriod, m.configTab.values.logLevel)
	}

	// Tab switching keys belong to the form while editing.
	next, _ = m.Update(key("1"))
	if got := next.(model).activeTab; got != TabConfig {
		t.Fatalf("expected to stay on config tab, got %v", got)
	}

	next, _ = next.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if next.(model).configTab.editing {
		t.Fatal("expected esc to cancel editing")
	}
}

func TestConfigTab_ApplyForm(t *testing.T) {
	base := config.DefaultConfig()
	base.Windows = []config.WindowMatch{{Class: "kitty"}}
	tab := newConfigTab(base)
	tab.startEditing()

	tab.values.quietPeriod = "250ms"
	tab.values.rescanInterval = " 10s "
	tab.values.restoreHotkey = "Mod4-r"
	tab.values.logLevel = "debug"
	tab.values.restoreOnStart = false

	next, err := tab.applyForm()
	if err != nil {
		t.Fatalf("applyForm: %v", err)
	}
	if next.QuietPeriod != 250*time.Millisecond || next.RescanInterval != 10*time.Second {
		t.Fatalf("unexpected durations: %v %v", next.QuietPeriod, next.RescanInterval)
	}
	if next.RestoreHotkey != "Mod4-r" || next.LogLevel != "debug" || next.RestoreOnStart {
		t.Fatalf("unexpected values: %+v", next)
	}
	if len(next.Windows) != 1 || next.Windows[0].Class != "kitty" {
		t.Fatalf("windows not carried over: %+v", next.Windows)
	}
	if base.QuietPeriod != config.DefaultQuietPeriod {
		t.Fatal("applyForm modified the original config")
	}
}

func TestConfigTab_ApplyFormRejectsInvalid(t *testing.T) {
	tests := []struct {
		name   string
		quiet  string
		rescan string
	}{
		{"bad duration", "soon", "5s"},
		{"quiet period too long", "2m", "5s"},
		{"rescan too short", "500ms", "10ms"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tab := newConfigTab(config.DefaultConfig())
			tab.startEditing()
			tab.values.quietPeriod = tt.quiet
			tab.values.rescanInterval = tt.rescan
			if _, err := tab.applyForm(); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestModel_SaveConfigReloadsDaemon(t *testing.T) {
	client := &fakeClient{}
	m := newModel(client, "", config.DefaultConfig())
	m.configPath = filepath.Join(t.TempDir(), "winsettle", "config.yaml")

	cfg := config.DefaultConfig()
	cfg.QuietPeriod = 750 * time.Millisecond

	_, cmd := m.Update(configChangedMsg{cfg: cfg})
	if cmd == nil {
		t.Fatal("expected save command")
	}
	msg, ok := cmd().(statusMsg)
	if !ok || msg.text != "config saved, daemon reloaded" {
		t.Fatalf("unexpected message: %#v", msg)
	}
	if client.reloaded != 1 {
		t.Fatalf("expected one reload, got %d", client.reloaded)
	}

	res, err := config.LoadFromPath(m.configPath)
	if err != nil {
		t.Fatalf("load saved config: %v", err)
	}
	if res.Config.QuietPeriod != 750*time.Millisecond {
		t.Fatalf("saved quiet_period = %v", res.Config.QuietPeriod)
	}
}

func TestModel_SaveConfigDaemonDown(t *testing.T) {
	m := newModel(&fakeClient{down: true}, "", config.DefaultConfig())
	m.configPath = filepath.Join(t.TempDir(), "config.yaml")

	msg, ok := m.saveConfig(config.DefaultConfig())().(statusMsg)
	if !ok || msg.text != "config saved (daemon not reloaded)" {
		t.Fatalf("unexpected message: %#v", msg)
	}
}
