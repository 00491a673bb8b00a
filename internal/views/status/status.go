// Package status renders the top navigation bar: brand, page title,
// connection indicator, unread badge and the signed-in user.
package status

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/medivault/shell/internal/client"
	"github.com/medivault/shell/internal/theme"
)

const (
	brand       = "MediVault"
	placeholder = "Loading..."
)

// Model holds the navigation bar state.
type Model struct {
	Title  string
	State  client.ChannelState
	Unread int
	// Name is the display name; empty shows the placeholder.
	Name      string
	Collapsed bool
	Width     int
}

// New creates a navigation bar model.
func New() Model {
	return Model{}
}

// View renders the navigation bar.
func (m Model) View() string {
	width := m.Width
	if width < 40 {
		width = 40
	}

	state := m.State.String()
	conn := lipgloss.NewStyle().Foreground(theme.ConnectionColor(state)).
		Render(theme.ConnectionGlyph(state) + " " + connLabel(m.State))

	badge := theme.StyleDimmed.Render("✉ 0")
	if m.Unread > 0 {
		badge = theme.StyleBadge.Render(fmt.Sprintf("✉ %d", m.Unread))
	}

	name := m.Name
	if name == "" {
		name = theme.StyleDimmed.Render(placeholder)
	} else {
		name = theme.StyleHeader.Render(name)
	}

	sep := lipgloss.NewStyle().Foreground(theme.ColorBorder).Render(" | ")
	left := theme.StyleBrand.Render(brand)
	if m.Title != "" && !m.Collapsed {
		left += sep + theme.StyleHeader.Render(m.Title)
	}
	right := conn + sep + badge + sep + name
	if m.Collapsed {
		right = badge + sep + "≡"
	}

	inner := width - 4
	gap := inner - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}
	content := left + strings.Repeat(" ", gap) + right

	return lipgloss.NewStyle().
		Width(width).
		Padding(0, 1).
		BorderStyle(lipgloss.DoubleBorder()).
		BorderForeground(theme.ColorBrand).
		Render(content)
}

func connLabel(s client.ChannelState) string {
	switch s {
	case client.StateConnected:
		return "Connected"
	case client.StateConnecting:
		return "Connecting..."
	default:
		return "Offline"
	}
}
