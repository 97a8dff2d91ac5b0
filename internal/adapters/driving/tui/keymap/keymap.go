// Package keymap defines keybindings for the TUI.
package keymap

import (
	"github.com/charmbracelet/bubbles/key"
)

// KeyMap defines all keybindings for the TUI.
type KeyMap struct {
	// Quit exits the application.
	Quit key.Binding

	// Help shows the help view.
	Help key.Binding

	// Back returns to the previous view.
	Back key.Binding

	// Up navigates up in a list.
	Up key.Binding

	// Down navigates down in a list.
	Down key.Binding

	// Select opens the highlighted email.
	Select key.Binding

	// Search focuses the search input.
	Search key.Binding

	// Refresh refetches the email list and analytics.
	Refresh key.Binding

	// Analytics switches to the analytics view.
	Analytics key.Binding

	// Inbox switches to the inbox view.
	Inbox key.Binding

	// Filter dimensions cycle through their values.
	FilterPriority  key.Binding
	FilterSentiment key.Binding
	FilterStatus    key.Binding

	// Presets apply a sidebar quick filter.
	PresetAll      key.Binding
	PresetUrgent   key.Binding
	PresetResolved key.Binding

	// Generate drafts a response for the selected email.
	Generate key.Binding

	// Edit opens the current response in the editor.
	Edit key.Binding

	// Save stores the edited response.
	Save key.Binding

	// Send sends the current response.
	Send key.Binding

	// TimeRange cycles the volume chart window.
	TimeRange key.Binding
}

// DefaultKeyMap returns the default keybindings.
func DefaultKeyMap() *KeyMap {
	return &KeyMap{
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "back"),
		),
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		Select: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "open"),
		),
		Search: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "search"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "refresh"),
		),
		Analytics: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "analytics"),
		),
		Inbox: key.NewBinding(
			key.WithKeys("i"),
			key.WithHelp("i", "inbox"),
		),
		FilterPriority: key.NewBinding(
			key.WithKeys("p"),
			key.WithHelp("p", "priority"),
		),
		FilterSentiment: key.NewBinding(
			key.WithKeys("m"),
			key.WithHelp("m", "sentiment"),
		),
		FilterStatus: key.NewBinding(
			key.WithKeys("f"),
			key.WithHelp("f", "status"),
		),
		PresetAll: key.NewBinding(
			key.WithKeys("1"),
			key.WithHelp("1", "all"),
		),
		PresetUrgent: key.NewBinding(
			key.WithKeys("2"),
			key.WithHelp("2", "urgent"),
		),
		PresetResolved: key.NewBinding(
			key.WithKeys("3"),
			key.WithHelp("3", "resolved"),
		),
		Generate: key.NewBinding(
			key.WithKeys("g"),
			key.WithHelp("g", "generate"),
		),
		Edit: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "edit"),
		),
		Save: key.NewBinding(
			key.WithKeys("ctrl+s"),
			key.WithHelp("ctrl+s", "save"),
		),
		Send: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "send"),
		),
		TimeRange: key.NewBinding(
			key.WithKeys("t"),
			key.WithHelp("t", "range"),
		),
	}
}

// ShortHelp returns a short list of keybindings for the status bar.
func (k *KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Quit, k.Help}
}

// InboxHelp returns keybindings for the inbox view.
func (k *KeyMap) InboxHelp() []key.Binding {
	return []key.Binding{k.Select, k.Search, k.FilterPriority, k.Refresh, k.Analytics}
}

// DetailHelp returns keybindings for the detail view.
func (k *KeyMap) DetailHelp() []key.Binding {
	return []key.Binding{k.Generate, k.Edit, k.Send, k.Back}
}

// EditHelp returns keybindings while editing a response.
func (k *KeyMap) EditHelp() []key.Binding {
	return []key.Binding{k.Save, k.Back}
}

// AnalyticsHelp returns keybindings for the analytics view.
func (k *KeyMap) AnalyticsHelp() []key.Binding {
	return []key.Binding{k.TimeRange, k.Refresh, k.Inbox}
}

// FullHelp returns the full list of keybindings for the help view.
func (k *KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Select, k.Back},
		{k.Search, k.FilterPriority, k.FilterSentiment, k.FilterStatus},
		{k.PresetAll, k.PresetUrgent, k.PresetResolved, k.Refresh},
		{k.Generate, k.Edit, k.Save, k.Send},
		{k.Analytics, k.Inbox, k.TimeRange},
		{k.Help, k.Quit},
	}
}

// Matches checks if a key string matches a binding.
func Matches(keyStr string, binding key.Binding) bool {
	for _, k := range binding.Keys() {
		if k == keyStr {
			return true
		}
	}
	return false
}
