// Package itemform renders the new-item form and turns key presses into
// edits on an item.Form.
package itemform

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/medivault/shell/internal/forms/item"
	"github.com/medivault/shell/internal/theme"
)

// SubmitMsg asks the shell to send the form.
type SubmitMsg struct{}

// CancelMsg asks the shell to leave the form.
type CancelMsg struct{}

type keyMap struct {
	Next   key.Binding
	Prev   key.Binding
	Left   key.Binding
	Right  key.Binding
	Submit key.Binding
	Cancel key.Binding
}

var keys = keyMap{
	Next:   key.NewBinding(key.WithKeys("tab", "down"), key.WithHelp("tab", "next field")),
	Prev:   key.NewBinding(key.WithKeys("shift+tab", "up"), key.WithHelp("shift+tab", "previous field")),
	Left:   key.NewBinding(key.WithKeys("left"), key.WithHelp("←", "previous option")),
	Right:  key.NewBinding(key.WithKeys("right"), key.WithHelp("→", "next option")),
	Submit: key.NewBinding(key.WithKeys("ctrl+s"), key.WithHelp("ctrl+s", "save")),
	Cancel: key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
}

// Bindings returns the form's key bindings for the help overlay.
func Bindings() []key.Binding {
	return []key.Binding{keys.Next, keys.Prev, keys.Left, keys.Right, keys.Submit, keys.Cancel}
}

type row struct {
	field   item.Field
	label   string
	options []string // select rows only
}

var rows = []row{
	{field: item.ItemName, label: "Item Name"},
	{field: item.ItemGroup, label: "Item Group", options: groupValues()},
	{field: item.Brand, label: "Brand"},
	{field: item.Model, label: "Model"},
	{field: item.Unit, label: "Unit"},
	{field: item.Dimension, label: "Dimension"},
	{field: item.DimensionUnit, label: "Dimension Unit", options: item.DimensionUnits},
	{field: item.Weight, label: "Weight"},
	{field: item.WeightUnit, label: "Weight Unit", options: item.WeightUnits},
	{field: item.Description, label: "Description"},
	{field: item.Quantity, label: "Quantity"},
	{field: item.Image, label: "Image"},
}

func groupValues() []string {
	out := make([]string, len(item.Groups))
	for i, g := range item.Groups {
		out[i] = string(g.Value)
	}
	return out
}

func groupLabel(v string) string {
	for _, g := range item.Groups {
		if string(g.Value) == v {
			return g.Label
		}
	}
	return v
}

// Model is the form view.
type Model struct {
	form   *item.Form
	inputs map[item.Field]*textinput.Model
	focus  int
	Busy   bool
}

// New creates an empty form view focused on the first field.
func New() Model {
	m := Model{form: item.NewForm(), inputs: make(map[item.Field]*textinput.Model)}
	for _, r := range rows {
		if r.options != nil {
			continue
		}
		ti := textinput.New()
		ti.Prompt = ""
		ti.CharLimit = 120
		ti.Width = 32
		if r.field == item.Image {
			ti.Placeholder = "path to a .jpg or .png (optional)"
		}
		m.inputs[r.field] = &ti
	}
	m.inputs[item.ItemName].Focus()
	return m
}

// Form returns the underlying form state.
func (m Model) Form() *item.Form { return m.form }

// Focused returns the field with focus.
func (m Model) Focused() item.Field { return rows[m.focus].field }

// Update handles a key press.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	km, ok := msg.(tea.KeyMsg)
	if !ok || m.Busy {
		return m, nil
	}

	switch {
	case key.Matches(km, keys.Submit):
		m.blur()
		return m, func() tea.Msg { return SubmitMsg{} }
	case key.Matches(km, keys.Cancel):
		return m, func() tea.Msg { return CancelMsg{} }
	case key.Matches(km, keys.Next):
		m.move(1)
		return m, nil
	case key.Matches(km, keys.Prev):
		m.move(-1)
		return m, nil
	}

	r := rows[m.focus]
	if r.options != nil {
		switch {
		case key.Matches(km, keys.Left):
			m.cycle(r, -1)
		case key.Matches(km, keys.Right):
			m.cycle(r, 1)
		}
		return m, nil
	}

	ti := m.inputs[r.field]
	next, cmd := ti.Update(km)
	*ti = next
	if r.field != item.Image {
		m.form.Set(r.field, ti.Value())
	}
	return m, cmd
}

// visible reports whether row i is shown for the selected group.
func (m Model) visible(i int) bool {
	req := m.form.Requirements()
	switch rows[i].field {
	case item.Dimension, item.DimensionUnit:
		return req.Dimensions
	case item.Weight, item.WeightUnit:
		return req.Weight
	default:
		return true
	}
}

func (m *Model) move(dir int) {
	m.blur()
	for i := m.focus + dir; i >= 0 && i < len(rows); i += dir {
		if m.visible(i) {
			m.focus = i
			break
		}
	}
	if ti, ok := m.inputs[rows[m.focus].field]; ok {
		ti.Focus()
	}
}

// blur validates the focused field as it loses focus.
func (m *Model) blur() {
	f := rows[m.focus].field
	if ti, ok := m.inputs[f]; ok {
		ti.Blur()
	}
	if f == item.Image {
		path := strings.TrimSpace(m.inputs[item.Image].Value())
		if path == "" {
			m.form.ClearImage()
		} else {
			_ = m.form.AttachImageFile(path)
		}
		return
	}
	m.form.Blur(f)
}

func (m *Model) cycle(r row, dir int) {
	cur := m.form.Value(r.field)
	idx := -1
	for i, o := range r.options {
		if o == cur {
			idx = i
		}
	}
	switch {
	case idx < 0 && dir > 0:
		idx = 0
	case idx < 0:
		idx = len(r.options) - 1
	default:
		idx = (idx + dir + len(r.options)) % len(r.options)
	}
	m.form.Set(r.field, r.options[idx])
	if r.field == item.ItemGroup {
		// Measurement inputs mirror the values the group change cleared.
		for _, f := range []item.Field{item.Dimension, item.Weight} {
			m.inputs[f].SetValue(m.form.Value(f))
		}
	}
}

// View renders the form.
func (m Model) View(width int) string {
	innerW := max(width-4, 50)
	errs := m.form.Errors()

	var lines []string
	for i, r := range rows {
		if !m.visible(i) {
			continue
		}
		label := lipgloss.NewStyle().Width(16).Render(r.label)
		if i == m.focus {
			label = theme.StyleSelected.Width(16).Render(r.label)
		}

		var value string
		if r.options != nil {
			v := m.form.Value(r.field)
			if r.field == item.ItemGroup {
				v = groupLabel(v)
			}
			if v == "" {
				v = theme.StyleDimmed.Render("select")
			}
			value = "‹ " + v + " ›"
		} else {
			value = m.inputs[r.field].View()
		}

		line := label + value
		if msg, ok := errs[r.field]; ok {
			line += "  " + theme.StyleError.Render(msg)
		}
		lines = append(lines, line)
	}

	status := theme.StyleDimmed.Render("tab:next  ←/→:choose  ctrl+s:save  esc:cancel")
	switch {
	case m.Busy:
		status = theme.StyleDimmed.Render("Saving...")
	case !m.form.CanSave():
		status = theme.StyleError.Render(fmt.Sprintf("%d field(s) need attention", len(errs))) + "  " + status
	}

	content := lipgloss.JoinVertical(lipgloss.Left,
		theme.StyleBrand.Render(" New Inventory Item "), "",
		strings.Join(lines, "\n"), "",
		status,
	)
	return theme.Panel(innerW, theme.ColorBorder).Render(content)
}
