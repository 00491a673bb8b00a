package testutil

import (
	"bytes"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

// BrokerPath is the WebSocket endpoint the fake broker listens on.
const BrokerPath = "/our-websocket/websocket"

type brokerConn struct {
	conn   *websocket.Conn
	userID string
	send   chan []byte

	mu   sync.Mutex
	subs map[string]string // subscription id -> destination
}

func newBrokerConn(conn *websocket.Conn, userID string) *brokerConn {
	c := &brokerConn{
		conn:   conn,
		userID: userID,
		send:   make(chan []byte, 64),
		subs:   make(map[string]string),
	}
	go c.writePump()
	return c
}

func (c *brokerConn) writePump() {
	defer c.conn.Close()
	for msg := range c.send {
		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			return
		}
	}
}

// Broker is an in-process STOMP 1.2 broker speaking over WebSocket, enough
// of one to exercise the push channel end to end.
type Broker struct {
	t      testing.TB
	server *httptest.Server

	mu            sync.Mutex
	clients       map[*brokerConn]bool
	users         []string
	connects      int
	subscribes    int
	unsubscribes  int
	disconnects   int
	rejectConnect string
	msgID         int
}

// NewBroker starts a broker; it is shut down by t.Cleanup.
func NewBroker(t testing.TB) *Broker {
	t.Helper()
	b := &Broker{t: t, clients: make(map[*brokerConn]bool)}
	mux := http.NewServeMux()
	mux.HandleFunc(BrokerPath, b.handleWS)
	b.server = httptest.NewServer(mux)
	t.Cleanup(func() {
		b.DropConnections()
		b.server.Close()
	})
	return b
}

// URL returns the ws:// address of the endpoint.
func (b *Broker) URL() string {
	return "ws" + strings.TrimPrefix(b.server.URL, "http") + BrokerPath
}

// RejectConnect makes subsequent CONNECT frames fail with an ERROR frame.
// An empty message accepts connections again.
func (b *Broker) RejectConnect(message string) {
	b.mu.Lock()
	b.rejectConnect = message
	b.mu.Unlock()
}

func (b *Broker) handleWS(w http.ResponseWriter, r *http.Request) {
	upgrader := websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	c := newBrokerConn(conn, r.URL.Query().Get("userId"))

	b.mu.Lock()
	b.clients[c] = true
	b.users = append(b.users, c.userID)
	b.mu.Unlock()

	defer b.remove(c)
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		if !b.handleFrame(c, data) {
			return
		}
	}
}

// handleFrame processes one client frame and reports whether to keep reading.
func (b *Broker) handleFrame(c *brokerConn, data []byte) bool {
	command, headers := parseFrame(data)
	switch command {
	case "CONNECT", "STOMP":
		b.mu.Lock()
		b.connects++
		reject := b.rejectConnect
		b.mu.Unlock()
		if reject != "" {
			b.sendTo(c, frame("ERROR", nil, "message", reject))
			return false
		}
		b.sendTo(c, frame("CONNECTED", nil, "version", "1.2", "heart-beat", "0,0"))
	case "SUBSCRIBE":
		c.mu.Lock()
		c.subs[headers["id"]] = headers["destination"]
		c.mu.Unlock()
		b.mu.Lock()
		b.subscribes++
		b.mu.Unlock()
	case "UNSUBSCRIBE":
		c.mu.Lock()
		delete(c.subs, headers["id"])
		c.mu.Unlock()
		b.mu.Lock()
		b.unsubscribes++
		b.mu.Unlock()
	case "DISCONNECT":
		b.mu.Lock()
		b.disconnects++
		b.mu.Unlock()
		if id := headers["receipt"]; id != "" {
			b.sendTo(c, frame("RECEIPT", nil, "receipt-id", id))
		}
	}
	return true
}

// sendTo queues data for c unless c has already been dropped.
func (b *Broker) sendTo(c *brokerConn, data []byte) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.clients[c] {
		c.send <- data
	}
}

func (b *Broker) remove(c *brokerConn) {
	b.mu.Lock()
	if b.clients[c] {
		delete(b.clients, c)
		close(c.send)
	}
	b.mu.Unlock()
}

// Publish delivers body to every subscriber of destination.
func (b *Broker) Publish(destination, body string) {
	b.deliver(destination, body, func(*brokerConn) bool { return true })
}

// PublishToUser delivers body to userID's subscriptions on destination.
func (b *Broker) PublishToUser(userID, destination, body string) {
	b.deliver(destination, body, func(c *brokerConn) bool { return c.userID == userID })
}

func (b *Broker) deliver(destination, body string, match func(*brokerConn) bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for c := range b.clients {
		if !match(c) {
			continue
		}
		c.mu.Lock()
		for id, dest := range c.subs {
			if dest != destination {
				continue
			}
			b.msgID++
			c.send <- frame("MESSAGE", []byte(body),
				"destination", destination,
				"subscription", id,
				"message-id", fmt.Sprint(b.msgID),
				"content-type", "application/json",
			)
		}
		c.mu.Unlock()
	}
}

// SendRaw writes data verbatim to every connection.
func (b *Broker) SendRaw(data []byte) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for c := range b.clients {
		c.send <- data
	}
}

// DropConnections closes every client socket, as a broker restart would.
func (b *Broker) DropConnections() {
	b.mu.Lock()
	defer b.mu.Unlock()
	for c := range b.clients {
		delete(b.clients, c)
		close(c.send)
	}
}

// Stats is a snapshot of broker counters.
type Stats struct {
	Clients      int
	Connects     int
	Subscribes   int
	Unsubscribes int
	Disconnects  int
	Users        []string
}

// Stats returns the current counters.
func (b *Broker) Stats() Stats {
	b.mu.Lock()
	defer b.mu.Unlock()
	return Stats{
		Clients:      len(b.clients),
		Connects:     b.connects,
		Subscribes:   b.subscribes,
		Unsubscribes: b.unsubscribes,
		Disconnects:  b.disconnects,
		Users:        append([]string(nil), b.users...),
	}
}

// WaitFor polls cond until it holds or the timeout elapses.
func WaitFor(t testing.TB, timeout time.Duration, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func frame(command string, body []byte, kv ...string) []byte {
	var buf bytes.Buffer
	buf.WriteString(command)
	buf.WriteByte('\n')
	for i := 0; i+1 < len(kv); i += 2 {
		buf.WriteString(kv[i])
		buf.WriteByte(':')
		buf.WriteString(kv[i+1])
		buf.WriteByte('\n')
	}
	buf.WriteByte('\n')
	buf.Write(body)
	buf.WriteByte(0)
	return buf.Bytes()
}

// parseFrame extracts the command and headers of a client frame.
func parseFrame(data []byte) (string, map[string]string) {
	head, _, _ := bytes.Cut(data, []byte("\n\n"))
	lines := strings.Split(strings.TrimLeft(string(head), "\n"), "\n")
	headers := make(map[string]string)
	for _, line := range lines[1:] {
		if k, v, ok := strings.Cut(line, ":"); ok {
			if _, seen := headers[k]; !seen {
				headers[k] = v
			}
		}
	}
	return lines[0], headers
}
