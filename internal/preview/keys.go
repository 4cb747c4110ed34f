package preview

import (
	"github.com/charmbracelet/bubbles/key"
)

// KeyMap defines the key bindings for the preview.
type KeyMap struct {
	New      key.Binding
	NewLink  key.Binding
	Burst    key.Binding
	Click    key.Binding
	Close    key.Binding
	CloseTop key.Binding
	CloseAll key.Binding

	Quit key.Binding
	Help key.Binding
}

// ShortHelp returns a short help message.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.New, k.Close, k.CloseAll, k.Help, k.Quit}
}

// FullHelp returns a full help message.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.New, k.NewLink, k.Burst},
		{k.Click, k.Close, k.CloseTop, k.CloseAll},
		{k.Help, k.Quit},
	}
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		New: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "new notification"),
		),
		NewLink: key.NewBinding(
			key.WithKeys("l"),
			key.WithHelp("l", "new with link"),
		),
		Burst: key.NewBinding(
			key.WithKeys("b"),
			key.WithHelp("b", "burst of five"),
		),
		Click: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "click bottom"),
		),
		Close: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "close bottom"),
		),
		CloseTop: key.NewBinding(
			key.WithKeys("t"),
			key.WithHelp("t", "close top"),
		),
		CloseAll: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "close all"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "toggle help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}
