package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines the [key.Binding] mapping for the TUI.
type keyMap struct {
	login   key.Binding
	demo    key.Binding
	logout  key.Binding
	retry   key.Binding
	reauth  key.Binding
	dismiss key.Binding
	quit    key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		login:   key.NewBinding(key.WithKeys("l"), key.WithHelp("l", "log in")),
		demo:    key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "demo mode")),
		logout:  key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "log out")),
		retry:   key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "retry")),
		reauth:  key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "re-authenticate")),
		dismiss: key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "dismiss")),
		quit:    key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.login, k.demo, k.logout},
		{k.retry, k.reauth, k.dismiss},
		{k.quit},
	}
}
