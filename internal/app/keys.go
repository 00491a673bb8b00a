package app

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the shell's keyboard bindings.
type KeyMap struct {
	Up            key.Binding
	Down          key.Binding
	Enter         key.Binding
	Escape        key.Binding
	Quit          key.Binding
	Notifications key.Binding
	Dismiss       key.Binding
	Profile       key.Binding
	Menu          key.Binding
	NewItem       key.Binding
	Items         key.Binding
	Retry         key.Binding
	Debug         key.Binding
	Help          key.Binding
	Yes           key.Binding
	No            key.Binding
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("k/↑", "move up"),
		),
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("j/↓", "move down"),
		),
		Enter: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "open / confirm"),
		),
		Escape: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "close overlay"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
		Notifications: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "notifications"),
		),
		Dismiss: key.NewBinding(
			key.WithKeys("x", "delete"),
			key.WithHelp("x", "dismiss notification"),
		),
		Profile: key.NewBinding(
			key.WithKeys("p"),
			key.WithHelp("p", "profile menu"),
		),
		Menu: key.NewBinding(
			key.WithKeys("m"),
			key.WithHelp("m", "compact layout"),
		),
		NewItem: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "add inventory item"),
		),
		Items: key.NewBinding(
			key.WithKeys("i"),
			key.WithHelp("i", "inventory items"),
		),
		Retry: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "reload profile"),
		),
		Debug: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "event log"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Yes: key.NewBinding(
			key.WithKeys("y", "enter"),
			key.WithHelp("y", "yes / ok"),
		),
		No: key.NewBinding(
			key.WithKeys("n", "esc"),
			key.WithHelp("n", "no"),
		),
	}
}

// shell lists the bindings shown in the help overlay's first section.
func (k KeyMap) shell() []key.Binding {
	return []key.Binding{
		k.Notifications, k.Dismiss, k.Profile, k.Menu,
		k.Items, k.NewItem, k.Retry, k.Debug, k.Help, k.Quit,
	}
}
