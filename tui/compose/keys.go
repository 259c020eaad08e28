package compose

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Publish      key.Binding
	Cancel       key.Binding
	NextField    key.Binding
	PrevField    key.Binding
	ToggleCW     key.Binding
	Visibility   key.Binding
	Attach       key.Binding
	Detach       key.Binding
	TogglePoll   key.Binding
	AddOption    key.Binding
	RemoveOption key.Binding
	PollDuration key.Binding
	PollMultiple key.Binding
	ExternalEdit key.Binding
	ForceQuit    key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Publish:      key.NewBinding(key.WithKeys("ctrl+s"), key.WithHelp("ctrl+s", "publish")),
		Cancel:       key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
		NextField:    key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next field")),
		PrevField:    key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("shift+tab", "prev field")),
		ToggleCW:     key.NewBinding(key.WithKeys("ctrl+w"), key.WithHelp("ctrl+w", "content warning")),
		Visibility:   key.NewBinding(key.WithKeys("ctrl+t"), key.WithHelp("ctrl+t", "visibility")),
		Attach:       key.NewBinding(key.WithKeys("ctrl+a"), key.WithHelp("ctrl+a", "attach")),
		Detach:       key.NewBinding(key.WithKeys("ctrl+x"), key.WithHelp("ctrl+x", "drop media")),
		TogglePoll:   key.NewBinding(key.WithKeys("ctrl+p"), key.WithHelp("ctrl+p", "poll")),
		AddOption:    key.NewBinding(key.WithKeys("ctrl+n"), key.WithHelp("ctrl+n", "add option")),
		RemoveOption: key.NewBinding(key.WithKeys("ctrl+r"), key.WithHelp("ctrl+r", "remove option")),
		PollDuration: key.NewBinding(key.WithKeys("ctrl+l"), key.WithHelp("ctrl+l", "duration")),
		PollMultiple: key.NewBinding(key.WithKeys("ctrl+g"), key.WithHelp("ctrl+g", "multiple choice")),
		ExternalEdit: key.NewBinding(key.WithKeys("ctrl+e"), key.WithHelp("ctrl+e", "$EDITOR")),
		ForceQuit:    key.NewBinding(key.WithKeys("ctrl+c")),
	}
}
