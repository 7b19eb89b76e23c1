package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines the dashboard key bindings.
type keyMap struct {
	Quit       key.Binding
	NextPage   key.Binding
	PrevPage   key.Binding
	Page1      key.Binding
	Page2      key.Binding
	Page3      key.Binding
	ScrollUp   key.Binding
	ScrollDown key.Binding
	Pause      key.Binding
	Help       key.Binding
}

// ShortHelp returns the footer bindings.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Help, k.NextPage, k.Pause, k.Quit}
}

// FullHelp returns every binding grouped for the help overlay.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.NextPage, k.PrevPage, k.Page1, k.Page2, k.Page3},
		{k.ScrollUp, k.ScrollDown},
		{k.Pause, k.Help, k.Quit},
	}
}

var keys = keyMap{
	Quit:       key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	NextPage:   key.NewBinding(key.WithKeys("tab", "right"), key.WithHelp("tab", "next page")),
	PrevPage:   key.NewBinding(key.WithKeys("shift+tab", "left"), key.WithHelp("shift+tab", "prev page")),
	Page1:      key.NewBinding(key.WithKeys("1"), key.WithHelp("1", "overview")),
	Page2:      key.NewBinding(key.WithKeys("2"), key.WithHelp("2", "trends")),
	Page3:      key.NewBinding(key.WithKeys("3"), key.WithHelp("3", "alerts")),
	ScrollUp:   key.NewBinding(key.WithKeys("k", "up"), key.WithHelp("k/up", "scroll up")),
	ScrollDown: key.NewBinding(key.WithKeys("j", "down"), key.WithHelp("j/dn", "scroll down")),
	Pause:      key.NewBinding(key.WithKeys("p", " "), key.WithHelp("p", "pause")),
	Help:       key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
}
