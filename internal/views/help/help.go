// Package help renders the key reference overlay from Markdown.
package help

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/glamour"
	"github.com/medivault/shell/internal/theme"
)

// Section is a titled group of bindings.
type Section struct {
	Title    string
	Bindings []key.Binding
}

// Markdown builds the reference document. Disabled bindings are skipped.
func Markdown(sections []Section) string {
	var b strings.Builder
	b.WriteString("# MediVault keys\n\n")
	for _, s := range sections {
		fmt.Fprintf(&b, "## %s\n\n| Key | Action |\n| --- | --- |\n", s.Title)
		for _, kb := range s.Bindings {
			if !kb.Enabled() {
				continue
			}
			h := kb.Help()
			fmt.Fprintf(&b, "| `%s` | %s |\n", h.Key, h.Desc)
		}
		b.WriteString("\n")
	}
	return b.String()
}

// Model caches the rendered document per width.
type Model struct {
	style    string
	sections []Section
	width    int
	rendered string
}

// New creates a help overlay using a glamour standard style ("dark",
// "light", "notty", ...).
func New(style string, sections []Section) Model {
	if style == "" {
		style = "dark"
	}
	return Model{style: style, sections: sections}
}

// View renders the overlay at width.
func (m *Model) View(width int) string {
	innerW := max(width-8, 30)
	if m.rendered == "" || m.width != innerW {
		m.rendered = m.render(innerW)
		m.width = innerW
	}
	return theme.Panel(innerW+4, theme.ColorBrand).Render(m.rendered)
}

func (m *Model) render(width int) string {
	md := Markdown(m.sections)
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(m.style),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return md
	}
	out, err := r.Render(md)
	if err != nil {
		return md
	}
	return strings.Trim(out, "\n")
}
