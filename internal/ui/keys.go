package ui

import "github.com/charmbracelet/bubbles/key"

type KeyMap struct {
	Quit    key.Binding
	Back    key.Binding
	Login   key.Binding
	Logout  key.Binding
	Create  key.Binding
	History key.Binding
	Home    key.Binding
}

var Keys = KeyMap{
	Quit:    key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	Back:    key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
	Login:   key.NewBinding(key.WithKeys("L"), key.WithHelp("L", "login")),
	Logout:  key.NewBinding(key.WithKeys("O"), key.WithHelp("O", "logout")),
	Create:  key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "create DAC")),
	History: key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "transactions")),
	Home:    key.NewBinding(key.WithKeys("g"), key.WithHelp("g", "home")),
}

func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Create, k.History, k.Login, k.Logout, k.Quit}
}

func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Create, k.History, k.Home},
		{k.Login, k.Logout},
		{k.Back, k.Quit},
	}
}
