package keys

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the global keybindings for the application.
type KeyMap struct {
	// Navigation
	Down key.Binding
	Up   key.Binding

	// Selection
	Select key.Binding

	// Back / Quit
	Back key.Binding
	Quit key.Binding

	// Help toggle
	Help key.Binding

	// Manual refresh
	Refresh key.Binding

	// View switching
	Dashboard     key.Binding
	Groups        key.Binding
	Advances      key.Binding
	Credits       key.Binding
	Notifications key.Binding
	History       key.Binding
	Settings      key.Binding

	// Actions
	New          key.Binding
	Edit         key.Binding
	Delete       key.Binding
	GenerateForm key.Binding
	MarkRead     key.Binding
	MarkAllRead  key.Binding
}

// DefaultKeyMap returns the default set of keybindings.
func DefaultKeyMap() *KeyMap {
	return &KeyMap{
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("j/↓", "down"),
		),
		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("k/↑", "up"),
		),
		Select: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "open"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "back"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q"),
			key.WithHelp("q", "quit"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "toggle help"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "refresh"),
		),
		Dashboard: key.NewBinding(
			key.WithKeys("1"),
			key.WithHelp("1", "dashboard"),
		),
		Groups: key.NewBinding(
			key.WithKeys("2"),
			key.WithHelp("2", "groups"),
		),
		Advances: key.NewBinding(
			key.WithKeys("3"),
			key.WithHelp("3", "advances"),
		),
		Credits: key.NewBinding(
			key.WithKeys("4"),
			key.WithHelp("4", "credits"),
		),
		Notifications: key.NewBinding(
			key.WithKeys("5"),
			key.WithHelp("5", "notifications"),
		),
		History: key.NewBinding(
			key.WithKeys("6"),
			key.WithHelp("6", "history"),
		),
		Settings: key.NewBinding(
			key.WithKeys("7"),
			key.WithHelp("7", "settings"),
		),
		New: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "new record"),
		),
		Edit: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "edit"),
		),
		Delete: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "delete"),
		),
		GenerateForm: key.NewBinding(
			key.WithKeys("g"),
			key.WithHelp("g", "generate form"),
		),
		MarkRead: key.NewBinding(
			key.WithKeys("m"),
			key.WithHelp("m", "mark read"),
		),
		MarkAllRead: key.NewBinding(
			key.WithKeys("M"),
			key.WithHelp("M", "mark all read"),
		),
	}
}

// ShortHelp returns the most essential keybindings for the compact help view.
func (k *KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{
		k.Up, k.Down, k.Select, k.Back,
		k.Quit, k.Help, k.Refresh,
	}
}

// FullHelp returns all keybindings grouped by category for the expanded
// help view.
func (k *KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Select, k.Back, k.Quit},
		{k.Dashboard, k.Groups, k.Advances, k.Credits},
		{k.Notifications, k.History, k.Settings, k.Refresh},
		{k.New, k.Edit, k.Delete, k.GenerateForm, k.MarkRead, k.MarkAllRead},
	}
}
