// Package notify holds the shell's notification list and unread badge.
//
// An Inbox is mutated only from the UI loop. The push channel hands it raw
// payloads; anything that does not decode is logged and dropped without
// touching the list or the counter.
package notify

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// ErrDecode is returned by Decode for payloads that are not a JSON object.
var ErrDecode = errors.New("notify: malformed payload")

// Notification is one decoded push message.
type Notification struct {
	ID         string // stable key the panel cursor follows
	Topic      string
	Content    string
	ReceivedAt time.Time
}

type payload struct {
	Content string `json:"content"`
	Message string `json:"message"`
}

// Decode parses a push payload. The body must be a JSON object; its text is
// taken from "content", or from "message" when content is absent.
func Decode(topic string, raw []byte) (Notification, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return Notification{}, fmt.Errorf("%w: not a JSON object", ErrDecode)
	}
	var p payload
	if err := json.Unmarshal(trimmed, &p); err != nil {
		return Notification{}, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	content := p.Content
	if content == "" {
		content = p.Message
	}
	return Notification{
		ID:      uuid.NewString(),
		Topic:   topic,
		Content: content,
	}, nil
}

// Inbox is the ordered notification list, its unread counter, and the
// panel-open flag.
type Inbox struct {
	items  []Notification
	unread int
	open   bool
	log    *slog.Logger
	now    func() time.Time
}

// NewInbox creates an empty inbox that logs dropped payloads to log.
func NewInbox(log *slog.Logger) Inbox {
	if log == nil {
		log = slog.Default()
	}
	return Inbox{log: log, now: time.Now}
}

// Receive decodes raw and appends it. It reports whether the notification
// was accepted.
func (in *Inbox) Receive(topic string, raw []byte) bool {
	n, err := Decode(topic, raw)
	if err != nil {
		in.log.Warn("dropping notification", "topic", topic, "err", err)
		return false
	}
	n.ReceivedAt = in.now()
	in.items = append(in.items, n)
	in.unread++
	return true
}

// Dismiss removes the notification at index i. Out-of-range indexes are
// ignored.
func (in *Inbox) Dismiss(i int) bool {
	if i < 0 || i >= len(in.items) {
		return false
	}
	in.items = append(in.items[:i:i], in.items[i+1:]...)
	in.unread--
	return true
}

// Toggle flips the panel-open flag.
func (in *Inbox) Toggle() {
	in.open = !in.open
}

// Open reports whether the panel is shown.
func (in Inbox) Open() bool { return in.open }

// Unread returns the badge count.
func (in Inbox) Unread() int { return in.unread }

// Len returns the number of notifications in the list.
func (in Inbox) Len() int { return len(in.items) }

// Items returns a copy of the list in arrival order.
func (in Inbox) Items() []Notification {
	return append([]Notification(nil), in.items...)
}

// Reset empties the inbox and closes the panel.
func (in *Inbox) Reset() {
	in.items = nil
	in.unread = 0
	in.open = false
}
