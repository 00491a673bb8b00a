package app

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/medivault/shell/internal/client"
	"github.com/medivault/shell/internal/credential"
	"github.com/medivault/shell/internal/forms/item"
	"github.com/medivault/shell/internal/notify"
	"github.com/medivault/shell/internal/routes"
	"github.com/medivault/shell/internal/session"
	"github.com/medivault/shell/internal/theme"
	"github.com/medivault/shell/internal/views/debug"
	"github.com/medivault/shell/internal/views/dialog"
	"github.com/medivault/shell/internal/views/help"
	"github.com/medivault/shell/internal/views/itemform"
	"github.com/medivault/shell/internal/views/notifications"
	"github.com/medivault/shell/internal/views/sidebar"
	"github.com/medivault/shell/internal/views/status"
)

// narrowWidth is the terminal width below which the layout collapses.
const narrowWidth = 80

// Overlay identifies which modal is active.
type Overlay int

const (
	OverlayNone Overlay = iota
	OverlayNotifications
	OverlayDebug
	OverlayHelp
	OverlayDialog
)

// Sessions is the session context the shell reads from.
type Sessions interface {
	Resolve(ctx context.Context) (session.Session, error)
	Credential(ctx context.Context) (credential.Credential, error)
	Logout(ctx context.Context) error
}

// Connector opens the push channel.
type Connector interface {
	Connect(ctx context.Context, userID string) (*client.ChannelHandle, error)
}

// Deps are the shell's collaborators. Channel and Items may be nil.
type Deps struct {
	Sessions  Sessions
	Channel   Connector
	Items     item.Creator
	Routes    *routes.Table
	Logger    *slog.Logger
	HelpStyle string
	StartPath string
	// AvatarURL builds the profile picture address for a user id.
	AvatarURL func(userID string) string
}

type pendingAction int

const (
	actionNone pendingAction = iota
	actionLogout
)

// --- internal messages ---

// profileMsg carries a Resolve result tagged with the session epoch it was
// requested in.
type profileMsg struct {
	epoch   int
	session session.Session
	err     error
}

type channelOpenedMsg struct {
	epoch  int
	handle *client.ChannelHandle
	err    error
}

// channelEventMsg wraps a handle event so events from a replaced handle can
// be told apart.
type channelEventMsg struct {
	handle *client.ChannelHandle
	msg    tea.Msg
}

type logoutResultMsg struct{ err error }

type itemSubmittedMsg struct{ err error }

// Model is the root Bubble Tea model.
type Model struct {
	deps   Deps
	log    *slog.Logger
	ctx    context.Context
	cancel context.CancelFunc

	keys   KeyMap
	width  int
	height int

	// Session state. epoch increases on every logout; results requested
	// under an older epoch are dropped.
	epoch         int
	session       session.Session
	authenticated bool

	// Push channel.
	handle    *client.ChannelHandle
	chanState client.ChannelState
	inbox     notify.Inbox

	// Navigation.
	route     string
	overlay   Overlay
	collapsed bool
	pending   pendingAction

	// Sub-views.
	statusBar status.Model
	panel     notifications.Model
	sidebar   sidebar.Model
	form      itemform.Model
	debugLog  debug.Model
	help      *help.Model
	dialog    dialog.Model
}

// New creates the root model.
func New(deps Deps) Model {
	ctx, cancel := context.WithCancel(context.Background())
	log := deps.Logger
	if log == nil {
		log = slog.Default()
	}
	if deps.Routes == nil {
		deps.Routes = routes.New()
	}
	start := deps.StartPath
	if start == "" {
		start = "/item"
	}
	keys := DefaultKeyMap()
	h := help.New(deps.HelpStyle, []help.Section{
		{Title: "Shell", Bindings: keys.shell()},
		{Title: "Item form", Bindings: itemform.Bindings()},
	})
	m := Model{
		deps:      deps,
		log:       log.With("component", "shell"),
		ctx:       ctx,
		cancel:    cancel,
		keys:      keys,
		inbox:     notify.NewInbox(log.With("component", "inbox")),
		statusBar: status.New(),
		panel:     notifications.New(),
		sidebar:   sidebar.New(),
		debugLog:  debug.New(),
		help:      &h,
	}
	m.setRoute(start)
	return m
}

// Init fetches the profile and opens the push channel. Neither blocks the
// first render.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.fetchProfile(), m.openChannel())
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.statusBar.Width = msg.Width
		m.collapsed = msg.Width < narrowWidth
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case sidebar.FrameMsg:
		return m, m.sidebar.Animate(msg)

	case profileMsg:
		return m.handleProfile(msg)

	case channelOpenedMsg:
		return m.handleChannelOpened(msg)

	case channelEventMsg:
		return m.handleChannelEvent(msg)

	case logoutResultMsg:
		return m.handleLogoutResult(msg)

	case itemform.SubmitMsg:
		return m.submitItem()

	case itemform.CancelMsg:
		m.navigate(m.path(routes.Items))
		return m, nil

	case itemSubmittedMsg:
		return m.handleItemSubmitted(msg)
	}

	return m, nil
}

func (m Model) handleProfile(msg profileMsg) (tea.Model, tea.Cmd) {
	if msg.epoch != m.epoch || m.ctx.Err() != nil {
		m.log.Debug("dropping stale profile result", "epoch", msg.epoch)
		return m, nil
	}
	switch {
	case msg.err == nil:
		m.session = msg.session
		m.authenticated = true
		m.debugLog.Addf(debug.KindAuth, "profile loaded for %s", msg.session.Username)
	case session.IsKind(msg.err, session.ProfileFetchFailed):
		m.session = msg.session
		m.authenticated = true
		m.debugLog.Addf(debug.KindError, "profile fetch failed: %v", msg.err)
	default:
		m.session = session.Session{}
		m.authenticated = false
		m.debugLog.Add(debug.KindAuth, "not signed in")
		m.navigate(m.path(routes.Login))
	}
	return m, nil
}

func (m Model) handleChannelOpened(msg channelOpenedMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		if session.IsKind(msg.err, session.Unauthenticated) {
			m.debugLog.Add(debug.KindChannel, "no credential, push channel not opened")
		} else {
			m.log.Error("open push channel", "err", msg.err)
			m.debugLog.Addf(debug.KindError, "open push channel: %v", msg.err)
		}
		return m, nil
	}
	if msg.epoch != m.epoch || m.ctx.Err() != nil {
		return m, disconnect(msg.handle)
	}
	m.handle = msg.handle
	m.chanState = msg.handle.State()
	return m, next(msg.handle)
}

func (m Model) handleChannelEvent(ev channelEventMsg) (tea.Model, tea.Cmd) {
	if ev.handle != m.handle || m.handle == nil {
		return m, nil
	}
	switch msg := ev.msg.(type) {
	case client.ChannelStateMsg:
		m.chanState = msg.State
		if msg.Err != nil {
			m.debugLog.Addf(debug.KindChannel, "%s: %v", msg.State, msg.Err)
		} else {
			m.debugLog.Add(debug.KindChannel, msg.State.String())
		}
	case client.ChannelMessageMsg:
		if !m.inbox.Receive(msg.Topic, msg.Body) {
			m.debugLog.Addf(debug.KindError, "dropped malformed message on %s", msg.Topic)
		} else if m.overlay == OverlayNotifications {
			m.panel.Sync(m.inbox.Items())
		}
	case client.ChannelClosedMsg:
		m.handle = nil
		m.chanState = client.StateDisconnected
		return m, nil
	}
	return m, next(m.handle)
}

func (m Model) handleLogoutResult(msg logoutResultMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		m.log.Warn("logout failed", "err", msg.err)
		m.debugLog.Addf(debug.KindError, "logout failed: %v", msg.err)
		m.dialog = dialog.NewAlert(dialog.Failure, "Error!", "Logout failed. Please try again.")
		m.overlay = OverlayDialog
		return m, nil
	}

	h := m.handle
	m.epoch++
	m.handle = nil
	m.chanState = client.StateDisconnected
	m.session = session.Session{}
	m.authenticated = false
	m.inbox.Reset()
	m.panel = notifications.New()
	m.overlay = OverlayNone
	m.debugLog.Add(debug.KindAuth, "logged out")
	m.navigate(m.path(routes.Login))
	return m, tea.Batch(m.sidebar.Close(), disconnect(h))
}

func (m Model) submitItem() (tea.Model, tea.Cmd) {
	if m.form.Busy || !m.onForm() {
		return m, nil
	}
	fm := m.form.Form()
	payload, img, err := fm.Request()
	if err != nil {
		return m.showOutcome(fm.Apply(err)), nil
	}
	m.form.Busy = true

	ctx, sessions, creator := m.ctx, m.deps.Sessions, m.deps.Items
	return m, func() tea.Msg {
		if creator == nil {
			return itemSubmittedMsg{err: errors.New("item service unavailable")}
		}
		cred, err := sessions.Credential(ctx)
		if err != nil {
			return itemSubmittedMsg{err: err}
		}
		return itemSubmittedMsg{err: item.Submit(ctx, creator, cred.Token, payload, img)}
	}
}

func (m Model) handleItemSubmitted(msg itemSubmittedMsg) (tea.Model, tea.Cmd) {
	if !m.onForm() {
		return m, nil
	}
	m.form.Busy = false
	out := m.form.Form().Apply(msg.err)
	if msg.err != nil {
		m.log.Warn("item submit failed", "err", msg.err)
	}
	if out.Navigate != "" {
		m.navigate(out.Navigate)
	}
	return m.showOutcome(out), nil
}

func (m Model) showOutcome(out item.Outcome) Model {
	tone := dialog.Failure
	if out.OK {
		tone = dialog.Success
	}
	m.dialog = dialog.NewAlert(tone, out.Title, out.Message)
	m.overlay = OverlayDialog
	return m
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		return m, m.quit()
	}

	switch m.overlay {
	case OverlayDialog:
		return m.handleDialogKey(msg)
	case OverlayNotifications:
		return m.handlePanelKey(msg)
	case OverlayDebug:
		switch {
		case key.Matches(msg, m.keys.Escape), key.Matches(msg, m.keys.Debug):
			m.overlay = OverlayNone
		case key.Matches(msg, m.keys.Up):
			m.debugLog.ScrollUp(1)
		case key.Matches(msg, m.keys.Down):
			m.debugLog.ScrollDown(1)
		}
		return m, nil
	case OverlayHelp:
		if key.Matches(msg, m.keys.Escape) || key.Matches(msg, m.keys.Help) {
			m.overlay = OverlayNone
		}
		return m, nil
	}

	if m.sidebar.Open {
		return m.handleSidebarKey(msg)
	}

	if m.onForm() {
		var cmd tea.Cmd
		m.form, cmd = m.form.Update(msg)
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, m.quit()

	case key.Matches(msg, m.keys.Notifications):
		m.inbox.Toggle()
		m.overlay = OverlayNotifications
		m.panel.Sync(m.inbox.Items())
		return m, nil

	case key.Matches(msg, m.keys.Profile):
		return m, m.sidebar.Toggle()

	case key.Matches(msg, m.keys.Menu):
		m.collapsed = !m.collapsed
		return m, nil

	case key.Matches(msg, m.keys.NewItem):
		m.navigate(m.path(routes.NewItem))
		return m, nil

	case key.Matches(msg, m.keys.Items):
		m.navigate(m.path(routes.Items))
		return m, nil

	case key.Matches(msg, m.keys.Retry):
		return m, m.fetchProfile()

	case key.Matches(msg, m.keys.Debug):
		m.overlay = OverlayDebug
		return m, nil

	case key.Matches(msg, m.keys.Help):
		m.overlay = OverlayHelp
		return m, nil
	}

	return m, nil
}

func (m Model) handlePanelKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Escape), key.Matches(msg, m.keys.Notifications):
		m.inbox.Toggle()
		m.overlay = OverlayNone
	case key.Matches(msg, m.keys.Up):
		m.panel.Up(m.inbox.Items())
	case key.Matches(msg, m.keys.Down):
		m.panel.Down(m.inbox.Items())
	case key.Matches(msg, m.keys.Dismiss):
		m.panel.Sync(m.inbox.Items())
		m.inbox.Dismiss(m.panel.Cursor)
		m.panel.Sync(m.inbox.Items())
	}
	return m, nil
}

func (m Model) handleSidebarKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	entries := m.menu()
	switch {
	case key.Matches(msg, m.keys.Escape), key.Matches(msg, m.keys.Profile):
		return m, m.sidebar.Close()
	case key.Matches(msg, m.keys.Quit):
		return m, m.quit()
	case key.Matches(msg, m.keys.Up):
		m.sidebar.Up()
	case key.Matches(msg, m.keys.Down):
		m.sidebar.Down(len(entries))
	case key.Matches(msg, m.keys.Enter):
		e, ok := m.sidebar.Selected(entries)
		if !ok {
			return m, nil
		}
		if e.Logout {
			m.pending = actionLogout
			m.dialog = dialog.NewConfirm("Logout", "Are you sure you want to log out?")
			m.overlay = OverlayDialog
			return m, nil
		}
		m.navigate(e.Path)
		return m, m.sidebar.Close()
	}
	return m, nil
}

func (m Model) handleDialogKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.dialog.Kind == dialog.Alert {
		if key.Matches(msg, m.keys.Yes) || key.Matches(msg, m.keys.Escape) {
			m.overlay = OverlayNone
		}
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Yes):
		action := m.pending
		m.pending = actionNone
		m.overlay = OverlayNone
		if action == actionLogout {
			return m, m.logout()
		}
	case key.Matches(msg, m.keys.No):
		m.pending = actionNone
		m.overlay = OverlayNone
	}
	return m, nil
}

// --- commands ---

func (m Model) fetchProfile() tea.Cmd {
	ctx, sessions, epoch := m.ctx, m.deps.Sessions, m.epoch
	if sessions == nil {
		return nil
	}
	return func() tea.Msg {
		s, err := sessions.Resolve(ctx)
		if ctx.Err() != nil {
			return nil
		}
		return profileMsg{epoch: epoch, session: s, err: err}
	}
}

// openChannel connects the push channel for the stored credential. Without
// a usable credential nothing is dialled.
func (m Model) openChannel() tea.Cmd {
	ctx, sessions, ch, epoch := m.ctx, m.deps.Sessions, m.deps.Channel, m.epoch
	if sessions == nil || ch == nil {
		return nil
	}
	return func() tea.Msg {
		cred, err := sessions.Credential(ctx)
		if err != nil {
			return channelOpenedMsg{epoch: epoch, err: err}
		}
		h, err := ch.Connect(ctx, cred.UserID)
		return channelOpenedMsg{epoch: epoch, handle: h, err: err}
	}
}

func (m Model) logout() tea.Cmd {
	ctx, sessions := m.ctx, m.deps.Sessions
	return func() tea.Msg {
		return logoutResultMsg{err: sessions.Logout(ctx)}
	}
}

// quit releases the channel before leaving the program.
func (m Model) quit() tea.Cmd {
	h, cancel := m.handle, m.cancel
	return tea.Sequence(func() tea.Msg {
		h.Disconnect()
		cancel()
		return nil
	}, tea.Quit)
}

func next(h *client.ChannelHandle) tea.Cmd {
	wait := h.Next()
	if wait == nil {
		return nil
	}
	return func() tea.Msg {
		return channelEventMsg{handle: h, msg: wait()}
	}
}

func disconnect(h *client.ChannelHandle) tea.Cmd {
	if h == nil {
		return nil
	}
	return func() tea.Msg {
		h.Disconnect()
		return nil
	}
}

// --- navigation ---

func (m Model) path(name string, pairs ...string) string {
	p, err := m.deps.Routes.Path(name, pairs...)
	if err != nil {
		m.log.Error("build path", "route", name, "err", err)
		return "/"
	}
	return p
}

func (m *Model) navigate(path string) {
	if path == m.route {
		return
	}
	if r, ok := m.deps.Routes.Resolve(path); ok && r.Auth && !m.authenticated {
		m.debugLog.Addf(debug.KindNav, "%s needs a session", path)
		path = m.path(routes.Login)
	}
	m.debugLog.Addf(debug.KindNav, "%s -> %s", m.route, path)
	m.setRoute(path)
}

func (m *Model) setRoute(path string) {
	m.route = path
	if m.onForm() {
		m.form = itemform.New()
	}
}

func (m Model) onForm() bool {
	r, ok := m.deps.Routes.Resolve(m.route)
	return ok && r.Name == routes.NewItem
}

func (m Model) menu() []routes.MenuEntry {
	return m.deps.Routes.Menu(m.authenticated, m.session.UserID)
}

// --- view ---

// View renders the full shell.
func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return "Initializing..."
	}

	m.statusBar.Title = m.deps.Routes.Title(m.route)
	m.statusBar.State = m.chanState
	m.statusBar.Unread = m.inbox.Unread()
	m.statusBar.Collapsed = m.collapsed
	m.statusBar.Name = ""
	if m.session.HasProfile() {
		m.statusBar.Name = m.session.DisplayName()
	}

	bodyH := max(m.height-5, 5)
	body := m.renderBody(bodyH)

	switch m.overlay {
	case OverlayNotifications:
		body = m.panel.View(m.inbox.Items(), m.width)
	case OverlayDebug:
		body = m.debugLog.View(m.width, bodyH)
	case OverlayHelp:
		body = m.help.View(m.width)
	case OverlayDialog:
		body = m.dialog.View(m.width, bodyH)
	default:
		if m.sidebar.Visible() {
			if m.deps.AvatarURL != nil && m.session.HasProfile() {
				m.sidebar.Avatar = m.deps.AvatarURL(m.session.UserID)
			}
			panel := m.sidebar.View(m.session, m.menu(), bodyH)
			if m.collapsed {
				body = panel
			} else {
				body = lipgloss.JoinHorizontal(lipgloss.Top, body, panel)
			}
		}
	}

	footer := theme.StyleDimmed.Render("  n:notifications  p:profile  a:add item  i:items  m:layout  d:log  ?:help  q:quit")
	return lipgloss.JoinVertical(lipgloss.Left, m.statusBar.View(), body, footer)
}

func (m Model) renderBody(height int) string {
	if m.onForm() {
		return m.form.View(m.width)
	}

	title := theme.StyleHeader.Render(m.deps.Routes.Title(m.route))
	var lines []string
	switch {
	case !m.authenticated && m.route == "/":
		lines = append(lines,
			"Not signed in.",
			theme.StyleDimmed.Render("Run `medivault login --token <jwt>` and start the shell again."),
		)
	default:
		lines = append(lines, theme.StyleDimmed.Render("Route "+m.route))
		if items := m.inbox.Items(); len(items) > 0 && m.inbox.Unread() > 0 {
			lines = append(lines, "", "Latest: "+items[len(items)-1].Content)
		}
	}

	content := lipgloss.JoinVertical(lipgloss.Left, title, "", strings.Join(lines, "\n"))
	return lipgloss.NewStyle().Padding(1, 2).Height(height).Render(content)
}
