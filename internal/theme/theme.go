// Package theme provides the Lip Gloss palette and shared styles for the
// MediVault shell. It is a leaf package with no internal imports.
package theme

import "github.com/charmbracelet/lipgloss"

// Brand colors.
var (
	ColorBrand      = lipgloss.Color("#1e3a8a")
	ColorBrandLight = lipgloss.Color("#3b82f6")
	ColorAccent     = lipgloss.Color("#06b6d4")
)

// Connection colors.
var (
	ColorConnected    = lipgloss.Color("#22c55e")
	ColorConnecting   = lipgloss.Color("#d97706")
	ColorDisconnected = lipgloss.Color("#dc2626")
)

// Badge colors.
var (
	ColorBadge   = lipgloss.Color("#dc2626")
	ColorBadgeFg = lipgloss.Color("#f9fafb")
)

// UI chrome colors.
var (
	ColorBorder  = lipgloss.Color("#4b5563")
	ColorDimmed  = lipgloss.Color("#6b7280")
	ColorBright  = lipgloss.Color("#f9fafb")
	ColorBg      = lipgloss.Color("#111827")
	ColorSuccess = lipgloss.Color("#16a34a")
	ColorWarning = lipgloss.Color("#d97706")
	ColorDanger  = lipgloss.Color("#d32f2f")
)

// ConnectionColor returns the indicator color for a channel state name.
func ConnectionColor(state string) lipgloss.Color {
	switch state {
	case "connected":
		return ColorConnected
	case "connecting":
		return ColorConnecting
	default:
		return ColorDisconnected
	}
}

// ConnectionGlyph returns the indicator glyph for a channel state name.
func ConnectionGlyph(state string) string {
	switch state {
	case "connected":
		return "●"
	case "connecting":
		return "◌"
	default:
		return "○"
	}
}

// Reusable styles.
var (
	StyleBorder = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(ColorBorder)

	StyleHeader = lipgloss.NewStyle().
		Bold(true).
		Foreground(ColorBright)

	StyleBrand = lipgloss.NewStyle().
		Bold(true).
		Foreground(ColorBright).
		Background(ColorBrand).
		Padding(0, 1)

	StyleDimmed = lipgloss.NewStyle().
		Foreground(ColorDimmed)

	StyleSelected = lipgloss.NewStyle().
		Bold(true).
		Foreground(ColorBrandLight)

	StyleError = lipgloss.NewStyle().
		Foreground(ColorDanger)

	StyleBadge = lipgloss.NewStyle().
		Bold(true).
		Foreground(ColorBadgeFg).
		Background(ColorBadge).
		Padding(0, 1)
)

// Panel returns the bordered overlay style used by dialogs and panels.
func Panel(width int, border lipgloss.Color) lipgloss.Style {
	return lipgloss.NewStyle().
		Width(width).
		Padding(1, 2).
		BorderStyle(lipgloss.DoubleBorder()).
		BorderForeground(border)
}
