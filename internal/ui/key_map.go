package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines the [key.Binding] mapping for the TUI.
type keyMap struct {
	toggle  key.Binding
	back    key.Binding
	forward key.Binding
	jump    key.Binding
	open    key.Binding
	admin   key.Binding
	reset   key.Binding
	lock    key.Binding
	submit  key.Binding
	cancel  key.Binding
	quit    key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		toggle:  key.NewBinding(key.WithKeys(" ", "p"), key.WithHelp("space", "play/pause")),
		back:    key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "-5s")),
		forward: key.NewBinding(key.WithKeys("right"), key.WithHelp("→", "+5s")),
		jump: key.NewBinding(
			key.WithKeys("0", "1", "2", "3", "4", "5", "6", "7", "8", "9"),
			key.WithHelp("0-9", "jump to 0-90%"),
		),
		open:    key.NewBinding(key.WithKeys("o"), key.WithHelp("o", "choose track")),
		admin:   key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "admin")),
		reset:   key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reset track")),
		lock:    key.NewBinding(key.WithKeys("l"), key.WithHelp("l", "lock")),
		submit:  key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "submit")),
		cancel:  key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
		quit:    key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.toggle, k.quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.toggle, k.back, k.forward, k.jump},
		{k.open, k.admin},
		{k.reset, k.lock, k.quit},
	}
}
