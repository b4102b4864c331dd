package tui

import "github.com/charmbracelet/lipgloss"

var (
	primary = lipgloss.Color("#7C3AED")
	success = lipgloss.Color("#10B981")
	failure = lipgloss.Color("#EF4444")
	muted   = lipgloss.AdaptiveColor{Light: "#737373", Dark: "#737373"}
	surface = lipgloss.AdaptiveColor{Light: "#E5E5E5", Dark: "#262626"}
)

var (
	titleStyle = lipgloss.NewStyle().Foreground(primary).Bold(true).Padding(0, 1)

	tabStyle       = lipgloss.NewStyle().Padding(0, 2).Foreground(muted)
	activeTabStyle = lipgloss.NewStyle().Padding(0, 2).Bold(true).
			Foreground(primary).Underline(true)

	pathStyle     = lipgloss.NewStyle().Width(32)
	typeStyle     = lipgloss.NewStyle().Width(8).Foreground(muted)
	selectedStyle = lipgloss.NewStyle().Background(surface).Bold(true)
	disabledStyle = lipgloss.NewStyle().Foreground(muted).Faint(true)

	onlineStyle  = lipgloss.NewStyle().Foreground(success)
	offlineStyle = lipgloss.NewStyle().Foreground(failure)

	statusStyle      = lipgloss.NewStyle().Foreground(success).Padding(1, 1, 0)
	statusErrorStyle = lipgloss.NewStyle().Foreground(failure).Padding(1, 1, 0)
	helpStyle        = lipgloss.NewStyle().Padding(1, 1, 0)
)
