package common

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// Prompt is a one-line text question shown at the bottom of a screen.
type Prompt struct {
	input  textinput.Model
	label  string
	tag    string
	active bool
}

// Open shows the prompt with an initial value. Tag tells the caller what the
// answer is for.
func (p *Prompt) Open(label, tag, value string) tea.Cmd {
	p.input = textinput.New()
	p.input.CharLimit = 200
	p.input.Width = 48
	p.input.SetValue(value)
	p.input.CursorEnd()
	p.label = label
	p.tag = tag
	p.active = true
	return tea.Batch(p.input.Focus(), textinput.Blink)
}

// Active reports whether the prompt is reading input.
func (p Prompt) Active() bool { return p.active }

// Tag returns the tag given to Open.
func (p Prompt) Tag() string { return p.tag }

// Update feeds a message to the input. submitted is true once enter was
// pressed with a non-blank value; esc closes the prompt without submitting.
func (p *Prompt) Update(msg tea.Msg) (value string, submitted bool, cmd tea.Cmd) {
	if !p.active {
		return "", false, nil
	}
	if k, ok := msg.(tea.KeyMsg); ok {
		switch k.Type {
		case tea.KeyEsc:
			p.active = false
			return "", false, nil
		case tea.KeyEnter:
			p.active = false
			v := strings.TrimSpace(p.input.Value())
			return v, v != "", nil
		}
	}
	p.input, cmd = p.input.Update(msg)
	return "", false, cmd
}

func (p Prompt) View() string {
	if !p.active {
		return ""
	}
	return ConfirmStyle.Render(p.label+": ") + p.input.View() + "\n" + MutedStyle.Render("enter: ok • esc: cancel")
}
