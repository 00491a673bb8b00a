package sidebar

import (
	"strings"
	"testing"

	"github.com/medivault/shell/internal/routes"
	"github.com/medivault/shell/internal/session"
)

// settle drives the animation until it stops scheduling frames.
func settle(t *testing.T, m *Model) int {
	t.Helper()
	for i := 0; i < 1000; i++ {
		if m.Animate(FrameMsg{}) == nil {
			return i + 1
		}
	}
	t.Fatal("animation never settled")
	return 0
}

func TestToggleAnimatesOpenAndClosed(t *testing.T) {
	m := New()
	if m.Visible() {
		t.Fatal("new sidebar should be hidden")
	}

	if cmd := m.Toggle(); cmd == nil {
		t.Fatal("opening should schedule a frame")
	}
	if !m.Visible() || !m.Animating() {
		t.Error("sidebar should be visible and animating after Toggle")
	}
	frames := settle(t, &m)
	if frames < 2 {
		t.Errorf("settled after %d frames, expected a visible slide", frames)
	}
	if m.Position() != 1 {
		t.Errorf("Position() = %v, want 1", m.Position())
	}

	m.Toggle()
	settle(t, &m)
	if m.Position() != 0 || m.Visible() {
		t.Errorf("Position() = %v Visible() = %v after closing", m.Position(), m.Visible())
	}
}

func TestToggleWhileAnimatingReusesFrames(t *testing.T) {
	m := New()
	m.Toggle()
	m.Animate(FrameMsg{})
	if cmd := m.Toggle(); cmd != nil {
		t.Error("a second frame loop was started")
	}
	settle(t, &m)
	if m.Position() != 0 {
		t.Errorf("Position() = %v, want 0", m.Position())
	}
}

func TestCloseWhenClosed(t *testing.T) {
	m := New()
	if m.Close() != nil || m.Open {
		t.Error("Close on a closed sidebar should do nothing")
	}
}

func TestViewPlaceholderAndProfile(t *testing.T) {
	tbl := routes.New()
	m := New()
	m.Toggle()
	settle(t, &m)

	v := m.View(session.Session{UserID: "42", HasToken: true}, tbl.Menu(true, "42"), 30)
	if !strings.Contains(v, "Loading...") {
		t.Error("expected placeholder before the profile loads")
	}

	s := session.Session{UserID: "42", Username: "ada", Role: "ADMIN", HasToken: true}
	m.Avatar = "/user/display/42"
	v = m.View(s, tbl.Menu(true, "42"), 30)
	for _, want := range []string{"ada", "ADMIN", "User ID: 42", "Avatar: /user/display/42", "Edit Profile", "Logout"} {
		if !strings.Contains(v, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestViewHiddenIsEmpty(t *testing.T) {
	m := New()
	if v := m.View(session.Session{}, nil, 30); v != "" {
		t.Errorf("hidden sidebar rendered %q", v)
	}
}

func TestSelected(t *testing.T) {
	entries := routes.New().Menu(true, "42")
	m := New()
	m.Down(len(entries))
	m.Down(len(entries))
	e, ok := m.Selected(entries)
	if !ok || e.Label != "Change Password" {
		t.Errorf("Selected = %+v, %v", e, ok)
	}
	for i := 0; i < 10; i++ {
		m.Down(len(entries))
	}
	if e, _ := m.Selected(entries); !e.Logout {
		t.Errorf("cursor should stop on the last entry, got %+v", e)
	}
	if _, ok := m.Selected(nil); ok {
		t.Error("Selected on an empty menu should fail")
	}
}
