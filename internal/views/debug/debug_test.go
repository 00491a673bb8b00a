package debug

import (
	"strings"
	"testing"
	"time"
)

func TestAddEntry(t *testing.T) {
	m := New()
	m.Add(KindChannel, "connected")
	if len(m.Entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(m.Entries))
	}
	if m.Entries[0].Kind != KindChannel {
		t.Errorf("expected kind %q, got %q", KindChannel, m.Entries[0].Kind)
	}
}

func TestAddf(t *testing.T) {
	m := New()
	m.now = func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) }
	m.Addf(KindAuth, "profile loaded for %s", "ada")
	if m.Entries[0].Message != "profile loaded for ada" {
		t.Errorf("Message = %q", m.Entries[0].Message)
	}
	if !strings.Contains(m.View(80, 20), "03:04:05.000") {
		t.Error("view should show the entry timestamp")
	}
}

func TestMaxEntries(t *testing.T) {
	m := New()
	for i := 0; i < maxEntries+50; i++ {
		m.Add(KindChannel, "msg")
	}
	if len(m.Entries) != maxEntries {
		t.Errorf("expected %d entries, got %d", maxEntries, len(m.Entries))
	}
}

func TestScrollUpDown(t *testing.T) {
	m := New()
	for i := 0; i < 20; i++ {
		m.Add(KindChannel, "msg")
	}

	m.ScrollUp(5)
	if m.Offset != 5 {
		t.Errorf("expected offset 5, got %d", m.Offset)
	}
	m.ScrollDown(3)
	if m.Offset != 2 {
		t.Errorf("expected offset 2, got %d", m.Offset)
	}
	m.ScrollDown(10)
	if m.Offset != 0 {
		t.Errorf("expected offset 0, got %d", m.Offset)
	}
}

func TestScrollUpCapped(t *testing.T) {
	m := New()
	for i := 0; i < 5; i++ {
		m.Add(KindChannel, "msg")
	}
	m.ScrollUp(100)
	if m.Offset != 4 {
		t.Errorf("expected offset 4, got %d", m.Offset)
	}

	empty := New()
	empty.ScrollUp(3)
	if empty.Offset != 0 {
		t.Errorf("empty log offset = %d", empty.Offset)
	}
}

func TestViewEmpty(t *testing.T) {
	if !strings.Contains(New().View(80, 20), "No events") {
		t.Error("empty view should say there are no events")
	}
}

func TestViewWithEntries(t *testing.T) {
	m := New()
	m.Add(KindChannel, "connected")
	m.Add(KindError, "logout failed")
	v := m.View(80, 20)
	for _, want := range []string{"connected", "logout failed", "2 entries"} {
		if !strings.Contains(v, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestAddResetsScroll(t *testing.T) {
	m := New()
	for i := 0; i < 10; i++ {
		m.Add(KindChannel, "msg")
	}
	m.ScrollUp(5)
	m.Add(KindChannel, "new")
	if m.Offset != 0 {
		t.Error("adding an entry should scroll to the bottom")
	}
}
