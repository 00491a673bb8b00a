// Package sidebar renders the profile slide-over: who is signed in and the
// profile menu. Opening and closing are animated with a damped spring.
package sidebar

import (
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/harmonica"
	"github.com/charmbracelet/lipgloss"
	"github.com/medivault/shell/internal/routes"
	"github.com/medivault/shell/internal/session"
	"github.com/medivault/shell/internal/theme"
)

const (
	fps         = 60
	panelWidth  = 34
	settleDelta = 0.001
)

// FrameMsg advances the slide animation by one frame.
type FrameMsg struct{}

// Model is the slide-over state. Position runs from 0 (hidden) to 1 (fully
// shown).
type Model struct {
	Open   bool
	Cursor int
	// Avatar is the profile picture address shown under the user id.
	Avatar string

	pos, vel  float64
	spring    harmonica.Spring
	animating bool
}

// New creates a closed sidebar.
func New() Model {
	return Model{spring: harmonica.NewSpring(harmonica.FPS(fps), 8.0, 0.8)}
}

// Toggle flips the panel and starts the animation if it is not running.
func (m *Model) Toggle() tea.Cmd {
	m.Open = !m.Open
	if m.Open {
		m.Cursor = 0
	}
	if m.animating {
		return nil
	}
	m.animating = true
	return frame()
}

// Close hides the panel; it is a no-op when already closed.
func (m *Model) Close() tea.Cmd {
	if !m.Open {
		return nil
	}
	return m.Toggle()
}

// Animate steps the spring. It returns the next frame command until the
// panel settles.
func (m *Model) Animate(FrameMsg) tea.Cmd {
	if !m.animating {
		return nil
	}
	target := 0.0
	if m.Open {
		target = 1
	}
	m.pos, m.vel = m.spring.Update(m.pos, m.vel, target)
	if math.Abs(m.pos-target) < settleDelta && math.Abs(m.vel) < settleDelta {
		m.pos, m.vel = target, 0
		m.animating = false
		return nil
	}
	return frame()
}

// Visible reports whether any part of the panel is on screen.
func (m Model) Visible() bool { return m.Open || m.pos > settleDelta }

// Animating reports whether frames are still being scheduled.
func (m Model) Animating() bool { return m.animating }

// Position returns the current slide position.
func (m Model) Position() float64 { return m.pos }

// Up moves the menu cursor.
func (m *Model) Up() {
	if m.Cursor > 0 {
		m.Cursor--
	}
}

// Down moves the menu cursor within n entries.
func (m *Model) Down(n int) {
	if m.Cursor < n-1 {
		m.Cursor++
	}
}

// Selected returns the entry under the cursor.
func (m Model) Selected(entries []routes.MenuEntry) (routes.MenuEntry, bool) {
	if m.Cursor < 0 || m.Cursor >= len(entries) {
		return routes.MenuEntry{}, false
	}
	return entries[m.Cursor], true
}

// View renders the panel clipped to the current slide position.
func (m Model) View(s session.Session, entries []routes.MenuEntry, height int) string {
	var info []string
	if s.HasProfile() {
		info = append(info,
			theme.StyleHeader.Render(s.Username),
			theme.StyleDimmed.Render(s.Role),
			theme.StyleDimmed.Render(fmt.Sprintf("User ID: %s", s.UserID)),
		)
		if m.Avatar != "" {
			info = append(info, theme.StyleDimmed.Render("Avatar: "+m.Avatar))
		}
	} else {
		info = append(info, theme.StyleDimmed.Render("Loading..."))
	}

	menu := make([]string, 0, len(entries))
	for i, e := range entries {
		label := e.Label
		if e.Logout {
			label = theme.StyleError.Render(label)
		}
		if i == m.Cursor {
			menu = append(menu, theme.StyleSelected.Render("> ")+theme.StyleSelected.Render(e.Label))
			continue
		}
		menu = append(menu, "  "+label)
	}

	help := theme.StyleDimmed.Render("j/k:move  enter:open  p:close")
	content := lipgloss.JoinVertical(lipgloss.Left,
		theme.StyleHeader.Render(" PROFILE "), "",
		strings.Join(info, "\n"), "",
		strings.Join(menu, "\n"), "",
		help,
	)

	panel := lipgloss.NewStyle().
		Width(panelWidth).
		Height(max(height-2, 8)).
		Padding(1, 2).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(theme.ColorBrand).
		Render(content)

	visible := int(math.Round(m.pos * float64(lipgloss.Width(panel))))
	if m.Open && !m.animating {
		return panel
	}
	if visible <= 0 {
		return ""
	}
	return lipgloss.NewStyle().MaxWidth(visible).Render(panel)
}

func frame() tea.Cmd {
	return tea.Tick(time.Second/fps, func(time.Time) tea.Msg { return FrameMsg{} })
}
