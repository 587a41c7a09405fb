package tui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/1broseidon/winsettle/internal/ipc"
)

// Tab identifies a TUI tab.
type Tab int

const (
	TabTracked Tab = iota
	TabGeometry
	TabConfig
	tabCount // sentinel for iteration
)

func (t Tab) String() string {
	switch t {
	case TabTracked:
		return "Tracked"
	case TabGeometry:
		return "Geometry"
	case TabConfig:
		return "Config"
	default:
		return "?"
	}
}

var (
	activeTabStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15")).
			Background(lipgloss.Color("62")).
			Padding(0, 2)

	inactiveTabStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("250")).
				Background(lipgloss.Color("236")).
				Padding(0, 2)

	tabBarStyle = lipgloss.NewStyle().
			MarginBottom(1)

	tabGap = lipgloss.NewStyle().
		Background(lipgloss.Color("235")).
		SetString(" ")

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))
)

// renderTabBar renders the tab bar with the given active tab and width.
func renderTabBar(active Tab, width int) string {
	var tabs []string
	for i := Tab(0); i < tabCount; i++ {
		label := fmt.Sprintf("%d:%s", int(i)+1, i)
		if i == active {
			tabs = append(tabs, activeTabStyle.Render(label))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(label))
		}
	}

	row := lipgloss.JoinHorizontal(lipgloss.Top, intersperse(tabs, tabGap.Render())...)
	return tabBarStyle.Width(width).Render(row)
}

// intersperse inserts sep between each element of items.
func intersperse(items []string, sep string) []string {
	if len(items) <= 1 {
		return items
	}
	result := make([]string, 0, len(items)*2-1)
	for i, item := range items {
		if i > 0 {
			result = append(result, sep)
		}
		result = append(result, item)
	}
	return result
}

// renderStatusBar renders the daemon connection status bar.
func renderStatusBar(status *ipc.StatusData, storePath string, width int) string {
	var text string
	if status != nil && status.DaemonRunning {
		dot := lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Render("●")
		text = fmt.Sprintf("%s daemon running  quiet:%dms  tracked:%d  stored:%d",
			dot, status.QuietPeriodMS, len(status.Tracked), status.StoredCount)
	} else {
		dot := lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Render("●")
		text = dot + " daemon not running  store:" + storePath
	}

	style := lipgloss.NewStyle().
		Width(width).
		Background(lipgloss.Color("235")).
		Foreground(lipgloss.Color("250")).
		Padding(0, 1)
	return style.Render(text)
}

// renderHelpBar renders the bottom help/keybinding bar.
func renderHelpBar(active Tab, statusText string, width int) string {
	help := "tab: switch tabs  r: refresh  q/ctrl-c: quit"
	switch active {
	case TabGeometry:
		help = "tab: switch tabs  ↑/↓: select  x: forget  r: refresh  q/ctrl-c: quit"
	case TabConfig:
		help = "tab: switch tabs  e: edit  esc: cancel edit  q/ctrl-c: quit"
	}
	if statusText != "" {
		help = statusText
	}
	style := lipgloss.NewStyle().
		Width(width).
		Foreground(lipgloss.Color("241")).
		Padding(0, 1)
	return style.Render(help)
}
