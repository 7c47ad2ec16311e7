package tui

import "github.com/charmbracelet/bubbles/key"

type KeyMap struct {
	Quit    key.Binding
	Back    key.Binding
	Restart key.Binding

	// Navigation
	Shop      key.Binding
	Warehouse key.Binding
	History   key.Binding
	Ledger    key.Binding

	// Actions
	Accept key.Binding
	Refuse key.Binding
	Buy    key.Binding
	Select key.Binding

	// Movement
	Up   key.Binding
	Down key.Binding
}

var DefaultKeyMap = KeyMap{
	Quit:      key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	Back:      key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
	Restart:   key.NewBinding(key.WithKeys("ctrl+r"), key.WithHelp("ctrl+r", "new shop")),
	Shop:      key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "shop")),
	Warehouse: key.NewBinding(key.WithKeys("w"), key.WithHelp("w", "warehouse")),
	History:   key.NewBinding(key.WithKeys("h"), key.WithHelp("h", "history")),
	Ledger:    key.NewBinding(key.WithKeys("l"), key.WithHelp("l", "ledger")),
	Accept:    key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "accept")),
	Refuse:    key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "refuse")),
	Buy:       key.NewBinding(key.WithKeys("b", "enter"), key.WithHelp("b", "buy")),
	Select:    key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "select")),
	Up:        key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
	Down:      key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
}
