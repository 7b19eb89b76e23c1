package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"

	"github.com/ftahirops/xtrend/engine"
)

const (
	colName = 10 // resource label
	colVal  = 22 // value column
	barMinW = 10
)

// styledPad pads a styled string to the given visual width using spaces.
// Unlike fmt.Sprintf("%-Xs"), this accounts for ANSI escape codes.
func styledPad(styled string, width int) string {
	visW := lipgloss.Width(styled)
	if visW >= width {
		return styled
	}
	return styled + strings.Repeat(" ", width-visW)
}

// gaugeRow renders "Label  value  [bar] pct%" colored against b. A negative
// pct means the percentage is unknown.
func gaugeRow(label, value string, pct float64, b engine.Band, width int) string {
	barW := width - colName - colVal - 10
	if barW < barMinW {
		barW = barMinW
	}
	row := styledPad(headerStyle.Render(label), colName) + styledPad(valueStyle.Render(value), colVal)
	if pct < 0 {
		return row + dimStyle.Render("n/a")
	}
	bar := progress.New(
		progress.WithWidth(barW),
		progress.WithoutPercentage(),
		progress.WithSolidFill(string(bandColor(pct, b))),
	)
	frac := pct / 100
	if frac > 1 {
		frac = 1
	}
	return row + bar.ViewAs(frac) + " " + bandStyle(pct, b).Render(fmt.Sprintf("%5.1f%%", pct))
}
