package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Up, Down         key.Binding
	Add, Edit        key.Binding
	Toggle, Delete   key.Binding
	MoveUp, MoveDown key.Binding
	Sort, Filter     key.Binding
	Hide, Search     key.Binding
	Clear, Export    key.Binding
	Quit, ForceQuit  key.Binding

	// Forms and dialogs.
	NextField, PrevField key.Binding
	Submit, Cancel       key.Binding
	Confirm, Deny        key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Up:        key.NewBinding(key.WithKeys("k", "up"), key.WithHelp("k", "up")),
		Down:      key.NewBinding(key.WithKeys("j", "down"), key.WithHelp("j", "down")),
		Add:       key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add")),
		Edit:      key.NewBinding(key.WithKeys("e", "enter"), key.WithHelp("e", "edit")),
		Toggle:    key.NewBinding(key.WithKeys(" ", "space"), key.WithHelp("space", "done")),
		Delete:    key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "del")),
		MoveUp:    key.NewBinding(key.WithKeys("K", "shift+up"), key.WithHelp("K", "move up")),
		MoveDown:  key.NewBinding(key.WithKeys("J", "shift+down"), key.WithHelp("J", "move down")),
		Sort:      key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "sort")),
		Filter:    key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "filter")),
		Hide:      key.NewBinding(key.WithKeys("h"), key.WithHelp("h", "hide done")),
		Search:    key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
		Clear:     key.NewBinding(key.WithKeys("C"), key.WithHelp("C", "clear done")),
		Export:    key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "export")),
		Quit:      key.NewBinding(key.WithKeys("q", "esc"), key.WithHelp("q", "quit")),
		ForceQuit: key.NewBinding(key.WithKeys("ctrl+c")),

		NextField: key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next")),
		PrevField: key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("shift+tab", "prev")),
		Submit:    key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "save")),
		Cancel:    key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
		Confirm:   key.NewBinding(key.WithKeys("y", "Y"), key.WithHelp("y", "yes")),
		Deny:      key.NewBinding(key.WithKeys("n", "N", "esc", "q"), key.WithHelp("n", "no")),
	}
}

// listHints returns the bindings worth showing for the current list state.
func (b *Board) listHints() []key.Binding {
	k := b.keys
	hints := []key.Binding{k.Down, k.Up, k.Add}
	if len(b.visible) > 0 {
		hints = append(hints, k.Edit, k.Toggle, k.Delete)
		if !b.overview.Sorted {
			hints = append(hints, k.MoveUp, k.MoveDown)
		}
	}
	hints = append(hints, k.Sort, k.Filter)
	if b.overview.Completed > 0 || b.filter.HideCompleted {
		hints = append(hints, k.Hide)
	}
	hints = append(hints, k.Search)
	if b.overview.Completed > 0 {
		hints = append(hints, k.Clear)
	}
	return append(hints, k.Export, k.Quit)
}
