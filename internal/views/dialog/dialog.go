// Package dialog renders blocking modal boxes: confirmations and
// acknowledgments.
package dialog

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/medivault/shell/internal/theme"
)

// Kind selects the buttons a dialog offers.
type Kind int

const (
	// Confirm asks yes or no.
	Confirm Kind = iota
	// Alert only needs to be acknowledged.
	Alert
)

// Tone colors the dialog border.
type Tone int

const (
	Info Tone = iota
	Success
	Failure
)

// Model is one open dialog.
type Model struct {
	Kind    Kind
	Tone    Tone
	Title   string
	Message string
}

// NewConfirm builds a yes/no question.
func NewConfirm(title, message string) Model {
	return Model{Kind: Confirm, Tone: Info, Title: title, Message: message}
}

// NewAlert builds an acknowledgment box.
func NewAlert(tone Tone, title, message string) Model {
	return Model{Kind: Alert, Tone: tone, Title: title, Message: message}
}

// View renders the dialog centered in a width x height area.
func (m Model) View(width, height int) string {
	boxW := min(max(width/2, 36), 64)

	help := "enter:ok"
	if m.Kind == Confirm {
		help = "y:yes  n:no"
	}
	content := lipgloss.JoinVertical(lipgloss.Center,
		theme.StyleHeader.Render(m.Title),
		"",
		lipgloss.NewStyle().Width(boxW-4).Align(lipgloss.Center).Render(m.Message),
		"",
		theme.StyleDimmed.Render(help),
	)
	box := theme.Panel(boxW, m.border()).Render(content)
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, box)
}

func (m Model) border() lipgloss.Color {
	switch m.Tone {
	case Success:
		return theme.ColorSuccess
	case Failure:
		return theme.ColorDanger
	default:
		return theme.ColorBrand
	}
}
