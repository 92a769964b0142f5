package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/jaekwang-park/taskboard/internal/board"
)

var (
	blue   = lipgloss.Color("#60A5FA")
	green  = lipgloss.Color("#10B981")
	amber  = lipgloss.Color("#F59E0B")
	red    = lipgloss.Color("#F87171")
	purple = lipgloss.Color("#A78BFA")
)

// Theme holds the styles for one color scheme.
type Theme struct {
	Title    lipgloss.Style
	Text     lipgloss.Style
	Muted    lipgloss.Style
	Selected lipgloss.Style
	Done     lipgloss.Style
	Fading   lipgloss.Style
	Pin      lipgloss.Style
	Tag      lipgloss.Style
	Error    lipgloss.Style
	Info     lipgloss.Style
	Panel    lipgloss.Style
	Bar      lipgloss.Style
	HelpKey  lipgloss.Style

	Due map[board.DueState]lipgloss.Style
}

func newTheme(dark bool) Theme {
	text := lipgloss.Color("#111827")
	muted := lipgloss.Color("#6B7280")
	surface := lipgloss.Color("#E5E7EB")
	if dark {
		text = lipgloss.Color("#F9FAFB")
		muted = lipgloss.Color("#9CA3AF")
		surface = lipgloss.Color("#1F2937")
	}

	return Theme{
		Title:    lipgloss.NewStyle().Bold(true).Foreground(purple).MarginBottom(1),
		Text:     lipgloss.NewStyle().Foreground(text),
		Muted:    lipgloss.NewStyle().Foreground(muted),
		Selected: lipgloss.NewStyle().Foreground(text).Background(surface).Bold(true),
		Done:     lipgloss.NewStyle().Foreground(muted).Strikethrough(true),
		Fading:   lipgloss.NewStyle().Foreground(muted).Faint(true),
		Pin:      lipgloss.NewStyle().Foreground(amber),
		Tag:      lipgloss.NewStyle().Foreground(blue),
		Error:    lipgloss.NewStyle().Foreground(red),
		Info:     lipgloss.NewStyle().Foreground(green),
		Panel: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(muted).
			Padding(0, 1),
		Bar:     lipgloss.NewStyle().Foreground(blue),
		HelpKey: lipgloss.NewStyle().Foreground(purple).Bold(true),
		Due: map[board.DueState]lipgloss.Style{
			board.DueNone:    lipgloss.NewStyle().Foreground(muted),
			board.DueOverdue: lipgloss.NewStyle().Foreground(red).Bold(true),
			board.DueToday:   lipgloss.NewStyle().Foreground(amber).Bold(true),
			board.DueSoon:    lipgloss.NewStyle().Foreground(amber),
			board.DueLater:   lipgloss.NewStyle().Foreground(green),
		},
	}
}
