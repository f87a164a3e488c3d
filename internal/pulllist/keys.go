package pulllist

import "github.com/charmbracelet/bubbles/key"

// KeyMap holds the bindings the list adds on top of bubbles/list navigation.
type KeyMap struct {
	Refresh key.Binding
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		Refresh: key.NewBinding(
			key.WithKeys("r", "ctrl+r"),
			key.WithHelp("r", "refresh"),
		),
	}
}

func isZeroKeyMap(k KeyMap) bool {
	return len(k.Refresh.Keys()) == 0
}
