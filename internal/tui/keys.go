package tui

import (
	"charm.land/bubbles/v2/key"
	"github.com/thenoetrevino/chores/internal/config"
)

// keyMap holds the dashboard bindings built from the configured key mappings
type keyMap struct {
	Up       key.Binding
	Down     key.Binding
	MarkDone key.Binding
	Detail   key.Binding
	Refresh  key.Binding
	Sort     key.Binding
	Filter   key.Binding
	Help     key.Binding
	Back     key.Binding
	Quit     key.Binding
}

func newKeyMap(km config.KeyMappings) keyMap {
	return keyMap{
		Up: key.NewBinding(
			key.WithKeys(km.Up, "up"),
			key.WithHelp(km.Up+"/↑", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys(km.Down, "down"),
			key.WithHelp(km.Down+"/↓", "down"),
		),
		MarkDone: key.NewBinding(
			key.WithKeys(km.MarkDone),
			key.WithHelp(km.MarkDone, "mark done"),
		),
		Detail: key.NewBinding(
			key.WithKeys(km.Detail),
			key.WithHelp(km.Detail, "details"),
		),
		Refresh: key.NewBinding(
			key.WithKeys(km.Refresh),
			key.WithHelp(km.Refresh, "refresh"),
		),
		Sort: key.NewBinding(
			key.WithKeys(km.Sort),
			key.WithHelp(km.Sort, "sort by urgency"),
		),
		Filter: key.NewBinding(
			key.WithKeys(km.Filter),
			key.WithHelp(km.Filter, "cycle filter"),
		),
		Help: key.NewBinding(
			key.WithKeys(km.ShowHelp),
			key.WithHelp(km.ShowHelp, "toggle help"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "back"),
		),
		Quit: key.NewBinding(
			key.WithKeys(km.Quit, "ctrl+c"),
			key.WithHelp(km.Quit, "quit"),
		),
	}
}

// ShortHelp implements help.KeyMap
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.MarkDone, k.Detail, k.Filter, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Detail, k.Back},
		{k.MarkDone, k.Refresh},
		{k.Sort, k.Filter},
		{k.Help, k.Quit},
	}
}
