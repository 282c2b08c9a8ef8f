package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Draw   key.Binding
	Toggle key.Binding
	Reset  key.Binding
	Quit   key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		Draw: key.NewBinding(
			key.WithKeys("d", " "),
			key.WithHelp("d/space", "draw one"),
		),
		Toggle: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "auto-draw"),
		),
		Reset: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "reset deck"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c", "esc"),
			key.WithHelp("q", "quit"),
		),
	}
}

// ShortHelp implements help.KeyMap
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Draw, k.Toggle, k.Reset, k.Quit}
}

// FullHelp implements help.KeyMap
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}

// setExhausted disables the bindings that make no sense on an empty deck
func (k *keyMap) setExhausted(exhausted bool) {
	k.Draw.SetEnabled(!exhausted)
	k.Toggle.SetEnabled(!exhausted)
}
