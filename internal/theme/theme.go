// Package theme holds the lipgloss styles used by the command line output.
package theme

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/taskly/internal/model"
)

// Adaptive color pairs (dark terminal value, light terminal value).
var (
	ColorBlue    = lipgloss.AdaptiveColor{Dark: "#5B9BD5", Light: "#2B6CB0"}
	ColorGreen   = lipgloss.AdaptiveColor{Dark: "#6BCB77", Light: "#2F855A"}
	ColorYellow  = lipgloss.AdaptiveColor{Dark: "#FFD93D", Light: "#B7791F"}
	ColorRed     = lipgloss.AdaptiveColor{Dark: "#FF6B6B", Light: "#C53030"}
	ColorMagenta = lipgloss.AdaptiveColor{Dark: "#CC5DE8", Light: "#805AD5"}
	ColorGray    = lipgloss.AdaptiveColor{Dark: "#868E96", Light: "#718096"}
	ColorWhite   = lipgloss.AdaptiveColor{Dark: "#F8F9FA", Light: "#1A202C"}
	ColorBorder  = lipgloss.AdaptiveColor{Dark: "#495057", Light: "#E2E8F0"}
)

// HeaderStyle is used for bucket headers.
var HeaderStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(ColorWhite).
	Background(ColorBlue).
	Padding(0, 1)

// TaskStyle renders a task title line.
var TaskStyle = lipgloss.NewStyle().
	PaddingLeft(2).
	Bold(true)

// SubtaskStyle renders a subtask line beneath its task.
var SubtaskStyle = lipgloss.NewStyle().
	PaddingLeft(4)

// HintStyle is used for ids, counts and other secondary text.
var HintStyle = lipgloss.NewStyle().
	Foreground(ColorGray).
	Italic(true)

// PanelStyle wraps a whole bucket listing.
var PanelStyle = lipgloss.NewStyle().
	Padding(0, 1).
	Border(lipgloss.RoundedBorder()).
	BorderForeground(ColorBorder)

// CheckMark returns the checkbox glyph for a completion flag.
func CheckMark(completed bool) string {
	if completed {
		return lipgloss.NewStyle().Foreground(ColorGreen).Render("[x]")
	}
	return lipgloss.NewStyle().Foreground(ColorGray).Render("[ ]")
}

// DeadlineStyle colors a deadline relative to today. Both dates are
// YYYY-MM-DD so they compare lexically.
func DeadlineStyle(deadline, today string, completed bool) lipgloss.Style {
	base := lipgloss.NewStyle()

	switch {
	case completed:
		return base.Foreground(ColorGray)
	case deadline < today:
		return base.Foreground(ColorRed).Bold(true)
	case deadline == today:
		return base.Foreground(ColorYellow).Bold(true)
	default:
		return base.Foreground(ColorBlue)
	}
}

// KindLabelStyle returns a color-coded style for the task kind label.
func KindLabelStyle(kind model.Kind) lipgloss.Style {
	base := lipgloss.NewStyle().Bold(true).Padding(0, 1)

	switch kind {
	case model.KindPersonal:
		return base.Foreground(ColorBlue)
	case model.KindGroup:
		return base.Foreground(ColorMagenta)
	default:
		return base.Foreground(ColorGray)
	}
}
