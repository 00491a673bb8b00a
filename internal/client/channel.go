package client

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"sync"
	"sync/atomic"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/gorilla/websocket"
)

const (
	defaultReconnectDelay = 5 * time.Second
	writeTimeout          = 10 * time.Second
	pongTimeout           = 60 * time.Second
	pingInterval          = 30 * time.Second
	receiptTimeout        = time.Second
	eventBuffer           = 64

	broadcastSubID = "sub-0"
	privateSubID   = "sub-1"
	disconnectID   = "disconnect-0"
)

var (
	// ErrAlreadyConnected is returned by Connect while a handle is active.
	ErrAlreadyConnected = errors.New("channel: already connected")
	// ErrTransport wraps socket and broker failures.
	ErrTransport = errors.New("channel: transport error")

	errNoUser = errors.New("channel: empty user id")
)

// ChannelState is the connection state of the push channel.
type ChannelState int32

const (
	StateDisconnected ChannelState = iota
	StateConnecting
	StateConnected
)

func (s ChannelState) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	default:
		return "disconnected"
	}
}

// --- Bubble Tea messages ---

// ChannelStateMsg is sent on every state transition of the push channel.
type ChannelStateMsg struct {
	State ChannelState
	Err   error
}

// ChannelMessageMsg carries one raw MESSAGE body and the topic it came from.
type ChannelMessageMsg struct {
	Topic string
	Body  []byte
}

// ChannelClosedMsg is sent once after the handle has been torn down.
type ChannelClosedMsg struct{}

// ChannelConfig configures the push channel.
type ChannelConfig struct {
	URL            string
	BroadcastTopic string
	PrivateTopic   string
	ReconnectDelay time.Duration
	Logger         *slog.Logger
	Dialer         *websocket.Dialer
}

// Channel opens STOMP-over-WebSocket subscriptions for one shell. At most one
// handle is active at a time.
type Channel struct {
	cfg ChannelConfig
	log *slog.Logger

	mu     sync.Mutex
	active *ChannelHandle
}

// NewChannel creates a channel. Nothing is dialled until Connect.
func NewChannel(cfg ChannelConfig) *Channel {
	if cfg.ReconnectDelay <= 0 {
		cfg.ReconnectDelay = defaultReconnectDelay
	}
	if cfg.Dialer == nil {
		cfg.Dialer = websocket.DefaultDialer
	}
	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}
	return &Channel{cfg: cfg, log: log.With("component", "channel")}
}

// Connect starts the channel for userID: dial, STOMP handshake, and one
// subscription each on the broadcast and private topics. The connection is
// retried every ReconnectDelay until the handle is disconnected.
func (c *Channel) Connect(ctx context.Context, userID string) (*ChannelHandle, error) {
	if userID == "" {
		return nil, errNoUser
	}
	u, err := url.Parse(c.cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("channel: parse url: %w", err)
	}
	q := u.Query()
	q.Set("userId", userID)
	u.RawQuery = q.Encode()

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.active != nil {
		return nil, ErrAlreadyConnected
	}

	hctx, cancel := context.WithCancel(ctx)
	h := &ChannelHandle{
		channel: c,
		url:     u,
		userID:  userID,
		ctx:     hctx,
		cancel:  cancel,
		events:  make(chan tea.Msg, eventBuffer),
		done:    make(chan struct{}),
		log:     c.log.With("user", userID),
	}
	c.active = h
	go h.run()
	return h, nil
}

// Disconnect tears down the active handle, if any.
func (c *Channel) Disconnect() {
	c.mu.Lock()
	h := c.active
	c.mu.Unlock()
	h.Disconnect()
}

// State returns the state of the active handle.
func (c *Channel) State() ChannelState {
	c.mu.Lock()
	h := c.active
	c.mu.Unlock()
	return h.State()
}

func (c *Channel) release(h *ChannelHandle) {
	c.mu.Lock()
	if c.active == h {
		c.active = nil
	}
	c.mu.Unlock()
}

// ChannelHandle is the resource returned by Connect. Release it with
// Disconnect; every method is safe on a nil handle.
type ChannelHandle struct {
	channel *Channel
	url     *url.URL
	userID  string
	log     *slog.Logger

	ctx     context.Context
	cancel  context.CancelFunc
	events  chan tea.Msg
	done    chan struct{}
	once    sync.Once
	state   atomic.Int32
	closing atomic.Bool

	mu         sync.Mutex
	writeMu    sync.Mutex // serialises all conn writes
	conn       *websocket.Conn
	subscribed bool
	receipt    chan struct{}
}

// State returns the current connection state.
func (h *ChannelHandle) State() ChannelState {
	if h == nil {
		return StateDisconnected
	}
	return ChannelState(h.state.Load())
}

// Events exposes the raw message stream. It is closed after teardown.
func (h *ChannelHandle) Events() <-chan tea.Msg {
	if h == nil {
		return nil
	}
	return h.events
}

// Next returns a Bubble Tea command that waits for the next channel event.
// Re-issue it after each delivered message.
func (h *ChannelHandle) Next() tea.Cmd {
	if h == nil {
		return nil
	}
	return func() tea.Msg {
		msg, ok := <-h.events
		if !ok {
			return ChannelClosedMsg{}
		}
		return msg
	}
}

// Disconnect unsubscribes both topics, sends DISCONNECT, closes the socket
// and stops reconnecting. Repeated calls are no-ops.
func (h *ChannelHandle) Disconnect() {
	if h == nil {
		return
	}
	h.once.Do(func() {
		h.closing.Store(true)
		h.mu.Lock()
		conn := h.conn
		subscribed := h.subscribed
		receipt := h.receipt
		h.subscribed = false
		h.mu.Unlock()

		if conn != nil && subscribed {
			h.write(conn, NewFrame(CmdUnsubscribe, "id", broadcastSubID))
			h.write(conn, NewFrame(CmdUnsubscribe, "id", privateSubID))
			if h.write(conn, NewFrame(CmdDisconnect, "receipt", disconnectID)) == nil {
				select {
				case <-receipt:
				case <-h.done:
				case <-time.After(receiptTimeout):
				}
			}
		}

		h.cancel()
		<-h.done
		h.state.Store(int32(StateDisconnected))
		h.channel.release(h)
		h.log.Info("push channel disconnected")
	})
}

func (h *ChannelHandle) run() {
	defer close(h.done)
	defer close(h.events)

	delay := h.channel.cfg.ReconnectDelay
	for {
		if h.ctx.Err() != nil {
			return
		}
		h.setState(StateConnecting, nil)

		err := h.session()
		if h.ctx.Err() != nil || h.closing.Load() {
			return
		}
		h.log.Warn("push channel transport error", "err", err, "retry_in", delay)
		h.setState(StateDisconnected, err)

		select {
		case <-h.ctx.Done():
			return
		case <-time.After(delay):
		}
	}
}

// session runs one connection from dial to failure.
func (h *ChannelHandle) session() error {
	conn, _, err := h.channel.cfg.Dialer.DialContext(h.ctx, h.url.String(), nil)
	if err != nil {
		return fmt.Errorf("%w: dial: %v", ErrTransport, err)
	}
	stop := context.AfterFunc(h.ctx, func() { conn.Close() })
	defer stop()
	defer conn.Close()

	connect := NewFrame(CmdConnect,
		"accept-version", "1.2",
		"host", h.url.Hostname(),
		"heart-beat", "0,0",
	)
	if err := h.write(conn, connect); err != nil {
		return fmt.Errorf("%w: connect: %v", ErrTransport, err)
	}

	conn.SetReadDeadline(time.Now().Add(pongTimeout))
	f, err := readFrame(conn)
	if err != nil {
		return fmt.Errorf("%w: handshake: %v", ErrTransport, err)
	}
	switch f.Command {
	case CmdConnected:
	case CmdError:
		h.log.Error("broker reported error", "message", f.Get("message"), "details", string(f.Body))
		return fmt.Errorf("%w: broker: %s", ErrTransport, f.Get("message"))
	default:
		return fmt.Errorf("%w: unexpected %s frame during handshake", ErrTransport, f.Command)
	}

	cfg := h.channel.cfg
	for _, sub := range []Frame{
		NewFrame(CmdSubscribe, "id", broadcastSubID, "destination", cfg.BroadcastTopic),
		NewFrame(CmdSubscribe, "id", privateSubID, "destination", cfg.PrivateTopic),
	} {
		if err := h.write(conn, sub); err != nil {
			return fmt.Errorf("%w: subscribe: %v", ErrTransport, err)
		}
	}

	h.mu.Lock()
	h.conn = conn
	h.subscribed = true
	h.receipt = make(chan struct{})
	receipt := h.receipt
	h.mu.Unlock()
	defer func() {
		h.mu.Lock()
		if h.conn == conn {
			h.conn = nil
			h.subscribed = false
		}
		h.mu.Unlock()
	}()

	h.setState(StateConnected, nil)
	h.log.Info("push channel connected", "broadcast", cfg.BroadcastTopic, "private", cfg.PrivateTopic)

	pingCtx, pingCancel := context.WithCancel(h.ctx)
	defer pingCancel()
	go h.pingLoop(pingCtx, conn)

	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongTimeout))
		return nil
	})

	for {
		conn.SetReadDeadline(time.Now().Add(pongTimeout))
		_, data, err := conn.ReadMessage()
		if err != nil {
			return fmt.Errorf("%w: read: %v", ErrTransport, err)
		}
		f, err := DecodeFrame(data)
		if err != nil {
			h.log.Warn("dropping malformed frame", "err", err)
			continue
		}
		switch f.Command {
		case "":
			// heartbeat
		case CmdMessage:
			h.log.Debug("frame received", "destination", f.Get("destination"), "bytes", len(f.Body))
			h.emit(ChannelMessageMsg{Topic: h.topicFor(f), Body: f.Body})
		case CmdReceipt:
			if f.Get("receipt-id") == disconnectID {
				close(receipt)
				return fmt.Errorf("%w: disconnected", ErrTransport)
			}
		case CmdError:
			h.log.Error("broker reported error", "message", f.Get("message"), "details", string(f.Body))
			return fmt.Errorf("%w: broker: %s", ErrTransport, f.Get("message"))
		}
	}
}

// pingLoop sends periodic WebSocket pings on conn until ctx is cancelled.
func (h *ChannelHandle) pingLoop(ctx context.Context, conn *websocket.Conn) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			h.writeMu.Lock()
			conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			err := conn.WriteMessage(websocket.PingMessage, nil)
			h.writeMu.Unlock()
			if err != nil {
				return
			}
		}
	}
}

func (h *ChannelHandle) topicFor(f Frame) string {
	switch f.Get("subscription") {
	case broadcastSubID:
		return h.channel.cfg.BroadcastTopic
	case privateSubID:
		return h.channel.cfg.PrivateTopic
	}
	return f.Get("destination")
}

func (h *ChannelHandle) write(conn *websocket.Conn, f Frame) error {
	h.writeMu.Lock()
	defer h.writeMu.Unlock()
	conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return conn.WriteMessage(websocket.TextMessage, f.Encode())
}

func (h *ChannelHandle) setState(s ChannelState, err error) {
	if ChannelState(h.state.Swap(int32(s))) == s && err == nil {
		return
	}
	h.emit(ChannelStateMsg{State: s, Err: err})
}

func (h *ChannelHandle) emit(msg tea.Msg) {
	select {
	case h.events <- msg:
	case <-h.ctx.Done():
	}
}

func readFrame(conn *websocket.Conn) (Frame, error) {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return Frame{}, err
		}
		f, err := DecodeFrame(data)
		if err != nil {
			return Frame{}, err
		}
		if !f.IsHeartbeat() {
			return f, nil
		}
	}
}
