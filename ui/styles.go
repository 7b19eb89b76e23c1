package ui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/ftahirops/xtrend/engine"
	"github.com/ftahirops/xtrend/model"
)

var (
	// Colors
	colorRed     = lipgloss.Color("#FF5555")
	colorYellow  = lipgloss.Color("#F1FA8C")
	colorGreen   = lipgloss.Color("#50FA7B")
	colorCyan    = lipgloss.Color("#8BE9FD")
	colorMagenta = lipgloss.Color("#FF79C6")
	colorWhite   = lipgloss.Color("#F8F8F2")
	colorGray    = lipgloss.Color("#6272A4")
	colorPanel   = lipgloss.Color("#44475A")

	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorGray).
			Padding(0, 1)

	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	valueStyle    = lipgloss.NewStyle().Foreground(colorWhite)
	warnStyle     = lipgloss.NewStyle().Foreground(colorYellow).Bold(true)
	critStyle     = lipgloss.NewStyle().Foreground(colorRed).Bold(true)
	okStyle       = lipgloss.NewStyle().Foreground(colorGreen)
	headerStyle   = lipgloss.NewStyle().Foreground(colorMagenta).Bold(true)
	selectedStyle = lipgloss.NewStyle().Background(colorPanel).Foreground(colorWhite)
	helpStyle     = lipgloss.NewStyle().Foreground(colorGray)
	dimStyle      = lipgloss.NewStyle().Foreground(colorGray)
)

func levelStyle(l model.AlertLevel) lipgloss.Style {
	switch l {
	case model.AlertCritical:
		return critStyle
	case model.AlertWarning:
		return warnStyle
	}
	return okStyle
}

// bandStyle colors v against a warn/crit band.
func bandStyle(v float64, b engine.Band) lipgloss.Style {
	switch {
	case v >= b.Crit:
		return critStyle
	case v >= b.Warn:
		return warnStyle
	default:
		return okStyle
	}
}

func bandColor(v float64, b engine.Band) lipgloss.Color {
	switch {
	case v >= b.Crit:
		return colorRed
	case v >= b.Warn:
		return colorYellow
	default:
		return colorGreen
	}
}
