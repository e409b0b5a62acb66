package display

import "github.com/charmbracelet/bubbles/key"

// keyMap is the screen's key bindings. It satisfies help.KeyMap.
type keyMap struct {
	Search     key.Binding
	Voice      key.Binding
	Load       key.Binding
	ScrollUp   key.Binding
	ScrollDown key.Binding
	Help       key.Binding
	Quit       key.Binding
}

func defaultKeys() keyMap {
	return keyMap{
		Search: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "search"),
		),
		Voice: key.NewBinding(
			key.WithKeys("ctrl+t"),
			key.WithHelp("ctrl+t", "voice"),
		),
		Load: key.NewBinding(
			key.WithKeys("ctrl+o"),
			key.WithHelp("ctrl+o", "load saved"),
		),
		ScrollUp: key.NewBinding(
			key.WithKeys("pgup"),
			key.WithHelp("pgup", "scroll up"),
		),
		ScrollDown: key.NewBinding(
			key.WithKeys("pgdown"),
			key.WithHelp("pgdn", "scroll down"),
		),
		Help: key.NewBinding(
			key.WithKeys("f1"),
			key.WithHelp("f1", "help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c", "esc"),
			key.WithHelp("esc", "quit"),
		),
	}
}

// ShortHelp is the action bar.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Search, k.Voice, k.Load, k.Help, k.Quit}
}

// FullHelp is shown after f1.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Search, k.Voice, k.Load},
		{k.ScrollUp, k.ScrollDown},
		{k.Help, k.Quit},
	}
}
