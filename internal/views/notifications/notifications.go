// Package notifications renders the dismissible notification panel.
package notifications

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/medivault/shell/internal/notify"
	"github.com/medivault/shell/internal/theme"
)

// Model is the panel's cursor. The list itself lives in the inbox; the
// cursor follows a notification by its ID so the highlight stays put when
// the list changes under it.
type Model struct {
	Cursor   int
	selected string
}

// New creates a panel model.
func New() Model {
	return Model{}
}

// Up moves the cursor towards older notifications.
func (m *Model) Up(items []notify.Notification) {
	m.Sync(items)
	if m.Cursor > 0 {
		m.Cursor--
	}
	m.pin(items)
}

// Down moves the cursor towards newer notifications.
func (m *Model) Down(items []notify.Notification) {
	m.Sync(items)
	if m.Cursor < len(items)-1 {
		m.Cursor++
	}
	m.pin(items)
}

// Sync puts the cursor back on the selected notification. When it is gone
// the cursor keeps its position, clamped to the list.
func (m *Model) Sync(items []notify.Notification) {
	for i, n := range items {
		if n.ID == m.selected {
			m.Cursor = i
			return
		}
	}
	m.Cursor = max(min(m.Cursor, len(items)-1), 0)
	m.pin(items)
}

// Selected returns the ID under the cursor, or "" for an empty list.
func (m Model) Selected() string { return m.selected }

func (m *Model) pin(items []notify.Notification) {
	m.selected = ""
	if m.Cursor < len(items) {
		m.selected = items[m.Cursor].ID
	}
}

// View renders items with the cursor highlighted.
func (m Model) View(items []notify.Notification, width int) string {
	innerW := max(width-4, 24)
	title := theme.StyleHeader.Render(fmt.Sprintf(" NOTIFICATIONS (%d) ", len(items)))
	help := theme.StyleDimmed.Render("j/k:move  x:dismiss  n:close")

	if len(items) == 0 {
		body := theme.StyleDimmed.Render("  No notifications")
		return theme.Panel(innerW, theme.ColorBrand).
			Render(lipgloss.JoinVertical(lipgloss.Left, title, "", body, "", help))
	}

	lines := make([]string, 0, len(items))
	for i, n := range items {
		ts := theme.StyleDimmed.Render(n.ReceivedAt.Format("15:04"))
		text := n.Content
		if text == "" {
			text = theme.StyleDimmed.Render("(empty)")
		}
		prefix := "  "
		if n.ID == m.selected || (m.selected == "" && i == m.Cursor) {
			prefix = theme.StyleSelected.Render("> ")
			text = theme.StyleSelected.Render(text)
		}
		lines = append(lines, prefix+ts+" "+text)
	}

	content := lipgloss.JoinVertical(lipgloss.Left, title, "", strings.Join(lines, "\n"), "", help)
	return theme.Panel(innerW, theme.ColorBrand).Render(content)
}
