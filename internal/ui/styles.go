package ui

import (
	"image/color"

	"charm.land/lipgloss/v2"
)

var (
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("4")).Bold(true)
	noticeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	hintStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).Italic(true)

	dimColor = lipgloss.Color("240") // gray

	// Rainbow gradient for the active form border (wraps back to start).
	rainbowBlend = []color.Color{
		lipgloss.Color("#FF6B9D"), // pink
		lipgloss.Color("#9B59B6"), // purple
		lipgloss.Color("#3498DB"), // blue
		lipgloss.Color("#2ECC71"), // green
		lipgloss.Color("#FF6B9D"), // pink (wrap)
	}
)

// applyBorderColor uses the rainbow blend while input is accepted and a dim
// border while a request is in flight.
func applyBorderColor(s lipgloss.Style, active bool) lipgloss.Style {
	if active {
		return s.BorderForegroundBlend(rainbowBlend...)
	}
	return s.BorderForeground(dimColor)
}
