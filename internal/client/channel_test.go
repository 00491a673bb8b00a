package client_test

import (
	"context"
	"errors"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/medivault/shell/internal/client"
	"github.com/medivault/shell/internal/logging"
	"github.com/medivault/shell/internal/testutil"
)

const (
	broadcastTopic = "/topic/messages"
	privateTopic   = "/user/topic/private-messages"
)

func newChannel(b *testutil.Broker) *client.Channel {
	return client.NewChannel(client.ChannelConfig{
		URL:            b.URL(),
		BroadcastTopic: broadcastTopic,
		PrivateTopic:   privateTopic,
		ReconnectDelay: 20 * time.Millisecond,
		Logger:         logging.Discard(),
	})
}

func nextEvent(t *testing.T, h *client.ChannelHandle) tea.Msg {
	t.Helper()
	select {
	case msg, ok := <-h.Events():
		if !ok {
			return client.ChannelClosedMsg{}
		}
		return msg
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for channel event")
		return nil
	}
}

func waitState(t *testing.T, h *client.ChannelHandle, want client.ChannelState) client.ChannelStateMsg {
	t.Helper()
	for {
		switch msg := nextEvent(t, h).(type) {
		case client.ChannelStateMsg:
			if msg.State == want {
				return msg
			}
		case client.ChannelClosedMsg:
			t.Fatalf("channel closed while waiting for %v", want)
		}
	}
}

func nextMessage(t *testing.T, h *client.ChannelHandle) client.ChannelMessageMsg {
	t.Helper()
	for {
		switch msg := nextEvent(t, h).(type) {
		case client.ChannelMessageMsg:
			return msg
		case client.ChannelClosedMsg:
			t.Fatal("channel closed while waiting for a message")
		}
	}
}

func connect(t *testing.T, b *testutil.Broker, ch *client.Channel, userID string) *client.ChannelHandle {
	t.Helper()
	h, err := ch.Connect(context.Background(), userID)
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}
	t.Cleanup(h.Disconnect)
	waitState(t, h, client.StateConnected)
	testutil.WaitFor(t, 2*time.Second, "two subscriptions", func() bool {
		return b.Stats().Subscribes >= 2
	})
	return h
}

func TestChannelDeliversBothTopicsInOrder(t *testing.T) {
	b := testutil.NewBroker(t)
	ch := newChannel(b)
	h := connect(t, b, ch, "u42")

	if users := b.Stats().Users; len(users) != 1 || users[0] != "u42" {
		t.Fatalf("broker saw users %v, want [u42]", users)
	}

	b.Publish(broadcastTopic, `{"content":"Low stock: Item A"}`)
	b.PublishToUser("u42", privateTopic, `{"content":"Your request was approved"}`)

	first := nextMessage(t, h)
	second := nextMessage(t, h)

	if first.Topic != broadcastTopic || string(first.Body) != `{"content":"Low stock: Item A"}` {
		t.Errorf("first = %s %s", first.Topic, first.Body)
	}
	if second.Topic != privateTopic || string(second.Body) != `{"content":"Your request was approved"}` {
		t.Errorf("second = %s %s", second.Topic, second.Body)
	}
	if h.State() != client.StateConnected {
		t.Errorf("State() = %v, want connected", h.State())
	}
}

func TestPrivateTopicIsScopedToUser(t *testing.T) {
	b := testutil.NewBroker(t)
	h := connect(t, b, newChannel(b), "u42")

	b.PublishToUser("someone-else", privateTopic, `{"content":"not for you"}`)
	b.Publish(broadcastTopic, `{"content":"for everyone"}`)

	msg := nextMessage(t, h)
	if string(msg.Body) != `{"content":"for everyone"}` {
		t.Errorf("got %s, want the broadcast message", msg.Body)
	}
}

func TestConnectTwiceIsRejected(t *testing.T) {
	b := testutil.NewBroker(t)
	ch := newChannel(b)
	connect(t, b, ch, "u42")

	if _, err := ch.Connect(context.Background(), "u42"); !errors.Is(err, client.ErrAlreadyConnected) {
		t.Fatalf("second Connect err = %v, want ErrAlreadyConnected", err)
	}

	time.Sleep(50 * time.Millisecond)
	if got := b.Stats().Subscribes; got != 2 {
		t.Errorf("broker saw %d subscriptions, want 2", got)
	}
}

func TestConnectRequiresUser(t *testing.T) {
	b := testutil.NewBroker(t)
	if _, err := newChannel(b).Connect(context.Background(), ""); err == nil {
		t.Fatal("expected error for empty user id")
	}
	if got := b.Stats().Connects; got != 0 {
		t.Errorf("broker saw %d connects, want 0", got)
	}
}

func TestDisconnectIsIdempotent(t *testing.T) {
	b := testutil.NewBroker(t)
	ch := newChannel(b)
	h := connect(t, b, ch, "u42")

	h.Disconnect()
	h.Disconnect()
	ch.Disconnect()

	st := b.Stats()
	if st.Unsubscribes != 2 {
		t.Errorf("Unsubscribes = %d, want 2", st.Unsubscribes)
	}
	if st.Disconnects != 1 {
		t.Errorf("Disconnects = %d, want 1", st.Disconnects)
	}
	if h.State() != client.StateDisconnected {
		t.Errorf("State() = %v, want disconnected", h.State())
	}
	if ch.State() != client.StateDisconnected {
		t.Errorf("channel State() = %v, want disconnected", ch.State())
	}

	// The event stream ends after teardown.
	for {
		if _, ok := nextEvent(t, h).(client.ChannelClosedMsg); ok {
			break
		}
	}

	// A torn-down channel can be connected again.
	h2 := connect(t, b, ch, "u42")
	if h2 == h {
		t.Error("expected a fresh handle")
	}
}

func TestDisconnectNeverConnected(t *testing.T) {
	var h *client.ChannelHandle
	h.Disconnect()
	h.Disconnect()
	if h.State() != client.StateDisconnected {
		t.Error("nil handle should report disconnected")
	}
	if h.Next() != nil {
		t.Error("nil handle should have no Next command")
	}

	b := testutil.NewBroker(t)
	newChannel(b).Disconnect()
}

func TestDisconnectWhileConnecting(t *testing.T) {
	b := testutil.NewBroker(t)
	b.RejectConnect("broker unavailable")
	ch := newChannel(b)

	h, err := ch.Connect(context.Background(), "u42")
	if err != nil {
		t.Fatal(err)
	}
	waitState(t, h, client.StateConnecting)

	done := make(chan struct{})
	go func() {
		h.Disconnect()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Disconnect did not return")
	}
	if got := b.Stats().Unsubscribes; got != 0 {
		t.Errorf("Unsubscribes = %d, want 0 for a never-subscribed handle", got)
	}
}

func TestReconnectsAfterTransportFailure(t *testing.T) {
	b := testutil.NewBroker(t)
	h := connect(t, b, newChannel(b), "u42")

	b.DropConnections()

	lost := waitState(t, h, client.StateDisconnected)
	if !errors.Is(lost.Err, client.ErrTransport) {
		t.Errorf("disconnect err = %v, want ErrTransport", lost.Err)
	}
	waitState(t, h, client.StateConnecting)
	waitState(t, h, client.StateConnected)

	if got := b.Stats().Connects; got != 2 {
		t.Errorf("Connects = %d, want 2", got)
	}
}

func TestBrokerErrorFrameRetries(t *testing.T) {
	b := testutil.NewBroker(t)
	b.RejectConnect("access denied")
	h, err := newChannel(b).Connect(context.Background(), "u42")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(h.Disconnect)

	lost := waitState(t, h, client.StateDisconnected)
	if !errors.Is(lost.Err, client.ErrTransport) {
		t.Errorf("err = %v, want ErrTransport", lost.Err)
	}

	b.RejectConnect("")
	waitState(t, h, client.StateConnected)
}

func TestMalformedFrameKeepsConnection(t *testing.T) {
	b := testutil.NewBroker(t)
	h := connect(t, b, newChannel(b), "u42")

	b.SendRaw([]byte("garbage"))
	b.SendRaw([]byte("\n"))
	b.Publish(broadcastTopic, `{"content":"still here"}`)

	msg := nextMessage(t, h)
	if string(msg.Body) != `{"content":"still here"}` {
		t.Errorf("Body = %s", msg.Body)
	}
	if h.State() != client.StateConnected {
		t.Errorf("State() = %v, want connected", h.State())
	}
}

func TestNextCommand(t *testing.T) {
	b := testutil.NewBroker(t)
	h := connect(t, b, newChannel(b), "u42")

	b.Publish(broadcastTopic, `{"content":"via command"}`)
	for {
		msg := h.Next()()
		if m, ok := msg.(client.ChannelMessageMsg); ok {
			if string(m.Body) != `{"content":"via command"}` {
				t.Errorf("Body = %s", m.Body)
			}
			break
		}
	}

	h.Disconnect()
	for {
		if _, ok := h.Next()().(client.ChannelClosedMsg); ok {
			break
		}
	}
}
