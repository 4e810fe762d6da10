package ui

import (
	"github.com/charmbracelet/bubbles/key"
)

// KeyMap holds the raw-key bindings. The session itself only sees abstract
// commands; everything terminal-specific stays here.
type KeyMap struct {
	Up          key.Binding
	Down        key.Binding
	PageForward key.Binding
	PageBack    key.Binding
	NextChapter key.Binding
	PrevChapter key.Binding
	Start       key.Binding
	End         key.Binding
	Contents    key.Binding
	Search      key.Binding
	Select      key.Binding
	Back        key.Binding
	Quit        key.Binding
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "scroll up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "scroll down"),
		),
		PageForward: key.NewBinding(
			key.WithKeys("pgdown", " ", "f"),
			key.WithHelp("space", "next page"),
		),
		PageBack: key.NewBinding(
			key.WithKeys("pgup", "b"),
			key.WithHelp("b", "prev page"),
		),
		NextChapter: key.NewBinding(
			key.WithKeys("right", "l"),
			key.WithHelp("→/l", "next chapter"),
		),
		PrevChapter: key.NewBinding(
			key.WithKeys("left", "h"),
			key.WithHelp("←/h", "prev chapter"),
		),
		Start: key.NewBinding(
			key.WithKeys("home", "g"),
			key.WithHelp("g", "chapter start"),
		),
		End: key.NewBinding(
			key.WithKeys("end", "G"),
			key.WithHelp("G", "chapter end"),
		),
		Contents: key.NewBinding(
			key.WithKeys("t", "-"),
			key.WithHelp("t", "contents"),
		),
		Search: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "search"),
		),
		Select: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "select"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "back"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// ShortHelp implements help.KeyMap.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Down, k.Up, k.NextChapter, k.PageForward, k.Search, k.Contents, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.PageForward, k.PageBack},
		{k.PrevChapter, k.NextChapter, k.Start, k.End},
		{k.Contents, k.Search, k.Select, k.Back, k.Quit},
	}
}
