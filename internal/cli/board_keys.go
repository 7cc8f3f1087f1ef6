package cli

import (
	"github.com/alexanderramin/planboard/internal/config"
	"github.com/charmbracelet/bubbles/key"
)

// boardKeyMap is the board's key bindings, built from the config keymap.
type boardKeyMap struct {
	Quit     key.Binding
	Left     key.Binding
	Right    key.Binding
	Up       key.Binding
	Down     key.Binding
	Grab     key.Binding
	Cancel   key.Binding
	Today    key.Binding
	PrevWeek key.Binding
	NextWeek key.Binding
	Complete key.Binding
	Delete   key.Binding
	Undo     key.Binding
	Help     key.Binding
}

// bindingKeys splits a config binding and maps "space" to the rune bubbletea
// reports for the space bar.
func bindingKeys(binding string) []string {
	keys := config.SplitKeys(binding)
	out := make([]string, 0, len(keys)+1)
	for _, k := range keys {
		out = append(out, k)
		if k == "space" {
			out = append(out, " ")
		}
	}
	return out
}

func newBinding(binding, desc string) key.Binding {
	keys := bindingKeys(binding)
	helpKey := binding
	if len(keys) > 0 {
		helpKey = keys[0]
	}
	return key.NewBinding(key.WithKeys(keys...), key.WithHelp(helpKey, desc))
}

func newBoardKeyMap(km config.Keymap) boardKeyMap {
	return boardKeyMap{
		Quit:     newBinding(km.Quit, "quit"),
		Left:     newBinding(km.Left, "prev day"),
		Right:    newBinding(km.Right, "next day"),
		Up:       newBinding(km.Up, "up"),
		Down:     newBinding(km.Down, "down"),
		Grab:     newBinding(km.Grab, "grab/drop"),
		Cancel:   newBinding(km.Cancel, "cancel drag"),
		Today:    newBinding(km.Today, "today"),
		PrevWeek: newBinding(km.PrevWeek, "prev week"),
		NextWeek: newBinding(km.NextWeek, "next week"),
		Complete: newBinding(km.Complete, "toggle done"),
		Delete:   newBinding(km.Delete, "delete"),
		Undo:     newBinding(km.Undo, "undo"),
		Help:     newBinding(km.Help, "help"),
	}
}

func (k boardKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Left, k.Right, k.Grab, k.Today, k.Help, k.Quit}
}

func (k boardKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Left, k.Right, k.Up, k.Down},
		{k.PrevWeek, k.NextWeek, k.Today},
		{k.Grab, k.Cancel},
		{k.Complete, k.Delete, k.Undo},
		{k.Help, k.Quit},
	}
}
