package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/1broseidon/winsettle/internal/config"
	"github.com/1broseidon/winsettle/internal/ipc"
	"github.com/1broseidon/winsettle/internal/store"
)

const refreshInterval = 2 * time.Second

// DaemonClient is the subset of the IPC client the TUI uses.
type DaemonClient interface {
	GetStatus() (*ipc.StatusData, error)
	ListGeometry() ([]store.Entry, error)
	ForgetGeometry(key string) (bool, error)
	Reload() error
}

// geometryItem implements list.Item for one stored geometry.
type geometryItem struct {
	entry store.Entry
}

func (i geometryItem) Title() string { return i.entry.Key }

func (i geometryItem) Description() string {
	g := i.entry.Geometry
	return fmt.Sprintf("%d,%d  %dx%d  %s", g.Position.X, g.Position.Y,
		g.Size.Width, g.Size.Height, i.entry.UpdatedAt.Local().Format(time.DateTime))
}

func (i geometryItem) FilterValue() string { return i.entry.Key }

// dataMsg carries a refreshed snapshot.
type dataMsg struct {
	status  *ipc.StatusData
	entries []store.Entry
	err     error
	tick    bool
}

// tickMsg triggers a periodic refresh.
type tickMsg struct{}

// statusMsg is sent after an action completes.
type statusMsg struct {
	text string
}

// clearStatusMsg clears the status message after a delay.
type clearStatusMsg struct{}

// model is the root bubbletea model for the TUI.
type model struct {
	client     DaemonClient
	storePath  string
	configPath string // empty means the default config path

	activeTab Tab
	status    *ipc.StatusData
	entries   []store.Entry
	list      list.Model
	configTab configTab
	err       error

	statusText string

	width  int
	height int
}

func newModel(client DaemonClient, storePath string, cfg *config.Config) model {
	delegate := list.NewDefaultDelegate()
	delegate.SetSpacing(0)

	l := list.New(nil, delegate, 0, 0)
	l.Title = "Stored geometry"
	l.SetShowStatusBar(false)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)
	l.DisableQuitKeybindings()

	return model{
		client:    client,
		storePath: storePath,
		activeTab: TabTracked,
		list:      l,
		configTab: newConfigTab(cfg),
	}
}

// fetch loads status and geometry from the daemon, falling back to the store
// file when the daemon is not running.
func (m model) fetch(tick bool) tea.Cmd {
	client, storePath := m.client, m.storePath
	return func() tea.Msg {
		msg := dataMsg{tick: tick}
		if status, err := client.GetStatus(); err == nil {
			msg.status = status
			msg.entries, msg.err = client.ListGeometry()
			return msg
		}
		st, err := store.Open(storePath)
		if err != nil {
			msg.err = err
			return msg
		}
		msg.entries = st.List()
		return msg
	}
}

func (m model) forget(key string) tea.Cmd {
	client, storePath := m.client, m.storePath
	return func() tea.Msg {
		removed, err := client.ForgetGeometry(key)
		if err != nil {
			st, openErr := store.Open(storePath)
			if openErr != nil {
				return statusMsg{text: "forget failed: " + openErr.Error()}
			}
			removed = st.Delete(key)
			if removed {
				if err := st.Save(); err != nil {
					return statusMsg{text: "forget failed: " + err.Error()}
				}
			}
		}
		if !removed {
			return statusMsg{text: "nothing stored for " + key}
		}
		return statusMsg{text: "forgot " + key}
	}
}

// saveConfig writes cfg and asks a running daemon to pick it up.
func (m model) saveConfig(cfg *config.Config) tea.Cmd {
	client, path := m.client, m.configPath
	return func() tea.Msg {
		var err error
		if path == "" {
			err = cfg.Save()
		} else {
			err = cfg.SaveTo(path)
		}
		if err != nil {
			return statusMsg{text: "save failed: " + err.Error()}
		}
		if err := client.Reload(); err != nil {
			return statusMsg{text: "config saved (daemon not reloaded)"}
		}
		return statusMsg{text: "config saved, daemon reloaded"}
	}
}

func (m model) selectedKey() string {
	item, ok := m.list.SelectedItem().(geometryItem)
	if !ok {
		return ""
	}
	return item.entry.Key
}

// Init implements tea.Model.
func (m model) Init() tea.Cmd {
	return m.fetch(true)
}

// Update implements tea.Model.
func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.configTab.editing && msg.String() != "ctrl+c" {
			var cmd tea.Cmd
			m.configTab, cmd = m.configTab.Update(msg)
			return m, cmd
		}
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "tab":
			m.activeTab = (m.activeTab + 1) % tabCount
			return m, nil
		case "shift+tab":
			m.activeTab = (m.activeTab - 1 + tabCount) % tabCount
			return m, nil
		case "1":
			m.activeTab = TabTracked
			return m, nil
		case "2":
			m.activeTab = TabGeometry
			return m, nil
		case "3":
			m.activeTab = TabConfig
			return m, nil
		case "r":
			return m, m.fetch(false)
		case "x", "delete":
			if m.activeTab == TabGeometry {
				if key := m.selectedKey(); key != "" {
					return m, m.forget(key)
				}
			}
			return m, nil
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.list.SetSize(msg.Width, m.contentHeight())
		m.configTab.width = msg.Width
		m.configTab.height = m.contentHeight()
		return m, nil

	case dataMsg:
		m.err = msg.err
		m.status = msg.status
		if msg.err == nil {
			m.entries = msg.entries
			items := make([]list.Item, 0, len(msg.entries))
			for _, e := range msg.entries {
				items = append(items, geometryItem{entry: e})
			}
			cmd := m.list.SetItems(items)
			if msg.tick {
				return m, tea.Batch(cmd, tea.Tick(refreshInterval, func(time.Time) tea.Msg {
					return tickMsg{}
				}))
			}
			return m, cmd
		}
		if msg.tick {
			return m, tea.Tick(refreshInterval, func(time.Time) tea.Msg { return tickMsg{} })
		}
		return m, nil

	case tickMsg:
		return m, m.fetch(true)

	case statusMsg:
		m.statusText = msg.text
		return m, tea.Batch(m.fetch(false), tea.Tick(3*time.Second, func(time.Time) tea.Msg {
			return clearStatusMsg{}
		}))

	case clearStatusMsg:
		m.statusText = ""
		return m, nil

	case configChangedMsg:
		return m, m.saveConfig(msg.cfg)
	}

	var cmd tea.Cmd
	switch m.activeTab {
	case TabGeometry:
		m.list, cmd = m.list.Update(msg)
	case TabConfig:
		m.configTab, cmd = m.configTab.Update(msg)
	}
	return m, cmd
}

// contentHeight returns the height available for tab content.
func (m model) contentHeight() int {
	// status bar (1) + tab bar (2 with margin) + help bar (1)
	return max(m.height-4, 1)
}

// View implements tea.Model.
func (m model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}

	statusBar := renderStatusBar(m.status, m.storePath, m.width)
	tabBar := renderTabBar(m.activeTab, m.width)
	helpBar := renderHelpBar(m.activeTab, m.statusText, m.width)

	usedHeight := lipgloss.Height(statusBar) + lipgloss.Height(tabBar) + lipgloss.Height(helpBar)
	contentHeight := max(m.height-usedHeight, 1)

	var content string
	switch {
	case m.activeTab == TabConfig:
		content = m.configTab.View()
	case m.err != nil:
		content = dimStyle.Render("error: " + m.err.Error())
	case m.activeTab == TabTracked:
		content = m.trackedView()
	default:
		if len(m.entries) == 0 {
			content = dimStyle.Render("no stored geometry")
		} else {
			content = m.list.View()
		}
	}
	content = lipgloss.NewStyle().Width(m.width).Height(contentHeight).Render(content)

	return lipgloss.JoinVertical(lipgloss.Left,
		statusBar,
		tabBar,
		content,
		helpBar,
	)
}

func (m model) trackedView() string {
	if m.status == nil {
		return dimStyle.Render("start the daemon to see tracked windows")
	}
	if len(m.status.Tracked) == 0 {
		return dimStyle.Render("no windows tracked")
	}
	var b strings.Builder
	for _, tw := range m.status.Tracked {
		fmt.Fprintf(&b, "0x%08x  %-20s %s\n", uint32(tw.ID), tw.Key, tw.Title)
	}
	return strings.TrimRight(b.String(), "\n")
}
