package tui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/1broseidon/winsettle/internal/config"
)

// configChangedMsg carries an edited, validated config to the root model.
type configChangedMsg struct {
	cfg *config.Config
}

// configTab shows the daemon settings and edits the scalar ones.
type configTab struct {
	cfg *config.Config

	width  int
	height int

	editing bool
	form    *huh.Form
	values  *formValues
	err     error
}

// formValues are bound to the huh form. They live behind a pointer so the
// bindings survive copies of the tab.
type formValues struct {
	quietPeriod    string
	rescanInterval string
	restoreHotkey  string
	logLevel       string
	restoreOnStart bool
}

func newConfigTab(cfg *config.Config) configTab {
	return configTab{cfg: cfg}
}

func (c configTab) Update(msg tea.Msg) (configTab, tea.Cmd) {
	if c.editing {
		return c.updateEditing(msg)
	}
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "e" {
			c.startEditing()
			return c, c.form.Init()
		}
	case tea.WindowSizeMsg:
		c.width = msg.Width
		c.height = msg.Height
	}
	return c, nil
}

func (c configTab) updateEditing(msg tea.Msg) (configTab, tea.Cmd) {
	if km, ok := msg.(tea.KeyMsg); ok && km.String() == "esc" {
		c.editing = false
		c.form = nil
		return c, nil
	}

	form, cmd := c.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		c.form = f
	}

	switch c.form.State {
	case huh.StateCompleted:
		c.editing = false
		c.form = nil
		next, err := c.applyForm()
		c.err = err
		if err != nil {
			return c, nil
		}
		c.cfg = next
		return c, func() tea.Msg { return configChangedMsg{cfg: next} }
	case huh.StateAborted:
		c.editing = false
		c.form = nil
		return c, nil
	}
	return c, cmd
}

func durationInput(s string) error {
	d, err := time.ParseDuration(strings.TrimSpace(s))
	if err != nil {
		return fmt.Errorf("not a duration (e.g. 500ms, 5s)")
	}
	if d <= 0 {
		return fmt.Errorf("must be positive")
	}
	return nil
}

func (c *configTab) startEditing() {
	cfg := c.cfg
	if cfg == nil {
		cfg = config.DefaultConfig()
	}

	v := &formValues{
		quietPeriod:    cfg.QuietPeriod.String(),
		rescanInterval: cfg.RescanInterval.String(),
		restoreHotkey:  cfg.RestoreHotkey,
		logLevel:       cfg.LogLevel,
		restoreOnStart: cfg.RestoreOnStart,
	}
	c.values = v

	w := max(c.width-4, 40)

	c.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key("quiet_period").
				Title("Quiet Period").
				Description("How long a window must be still before its geometry is saved").
				Validate(durationInput).
				Value(&v.quietPeriod),

			huh.NewInput().
				Key("rescan_interval").
				Title("Rescan Interval").
				Description("How often new matching windows are looked for").
				Validate(durationInput).
				Value(&v.rescanInterval),

			huh.NewInput().
				Key("restore_hotkey").
				Title("Restore Hotkey").
				Description("X11 keybinding that restores the active window (empty to disable)").
				Value(&v.restoreHotkey),

			huh.NewSelect[string]().
				Key("log_level").
				Title("Log Level").
				Options(huh.NewOptions("debug", "info", "warning", "error")...).
				Value(&v.logLevel),

			huh.NewConfirm().
				Key("restore_on_start").
				Title("Restore On Start").
				Description("Apply stored geometry when a window is first tracked").
				Value(&v.restoreOnStart),
		),
	).WithWidth(w).WithShowHelp(true).WithShowErrors(true)

	c.editing = true
}

// applyForm returns a copy of the config with the form values applied.
func (c *configTab) applyForm() (*config.Config, error) {
	base := c.cfg
	if base == nil {
		base = config.DefaultConfig()
	}
	v := c.values
	if v == nil {
		return nil, fmt.Errorf("no form values")
	}
	next := *base
	next.Windows = append([]config.WindowMatch(nil), base.Windows...)

	quiet, err := time.ParseDuration(strings.TrimSpace(v.quietPeriod))
	if err != nil {
		return nil, fmt.Errorf("quiet_period: %w", err)
	}
	rescan, err := time.ParseDuration(strings.TrimSpace(v.rescanInterval))
	if err != nil {
		return nil, fmt.Errorf("rescan_interval: %w", err)
	}
	next.QuietPeriod = quiet
	next.RescanInterval = rescan
	next.RestoreHotkey = strings.TrimSpace(v.restoreHotkey)
	next.LogLevel = v.logLevel
	next.RestoreOnStart = v.restoreOnStart

	if err := next.Validate(); err != nil {
		return nil, err
	}
	return &next, nil
}

func (c configTab) View() string {
	if c.editing && c.form != nil {
		header := lipgloss.NewStyle().
			Foreground(lipgloss.Color("62")).
			Bold(true).
			Render("Editing Settings") +
			dimStyle.Render("  (esc to cancel)")
		return lipgloss.NewStyle().Padding(1, 2).Render(header + "\n\n" + c.form.View())
	}

	cfg := c.cfg
	if cfg == nil {
		return dimStyle.Render("No config loaded")
	}

	labelStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("250")).
		Width(20).
		Align(lipgloss.Right).
		PaddingRight(2)
	valueStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("15")).
		Bold(true)

	row := func(label, value string) string {
		return labelStyle.Render(label) + valueStyle.Render(value)
	}

	windows := "(active window)"
	if len(cfg.Windows) > 0 {
		parts := make([]string, 0, len(cfg.Windows))
		for _, w := range cfg.Windows {
			switch {
			case w.Class != "" && w.Title != "":
				parts = append(parts, w.Class+"/"+w.Title)
			case w.Class != "":
				parts = append(parts, w.Class)
			default:
				parts = append(parts, "title:"+w.Title)
			}
		}
		windows = strings.Join(parts, ", ")
	}

	lines := []string{
		row("Quiet Period", cfg.QuietPeriod.String()),
		row("Rescan Interval", cfg.RescanInterval.String()),
		row("Restore On Start", fmt.Sprintf("%t", cfg.RestoreOnStart)),
		row("Restore Hotkey", displayOrDefault(cfg.RestoreHotkey, "(none)")),
		row("Log Level", cfg.LogLevel),
		"",
		row("Display", displayOrDefault(cfg.Display, "$DISPLAY")),
		row("State File", displayOrDefault(cfg.StateFile, "(default)")),
		row("Windows", windows),
		"",
	}
	if c.err != nil {
		lines = append(lines, lipgloss.NewStyle().Foreground(lipgloss.Color("203")).Render("  "+c.err.Error()))
	}
	lines = append(lines, dimStyle.Render("  Press 'e' to edit settings"))

	return lipgloss.NewStyle().Padding(1, 2).Render(strings.Join(lines, "\n"))
}

func displayOrDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
