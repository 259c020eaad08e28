// Package compose is the post editor: inline text with a content warning,
// visibility, media and poll, or a hand-off to $EDITOR.
package compose

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/CrestNiraj12/kabinka/app"
	"github.com/CrestNiraj12/kabinka/domain"
	"github.com/CrestNiraj12/kabinka/tui/common"
	"github.com/CrestNiraj12/kabinka/viewmodel"
)

// Deps are the collaborators of the composer.
type Deps struct {
	Statuses app.StatusService
	Media    app.MediaService
	Session  app.Session
	Editor   app.Editor
	Prefs    app.Preferences
}

// editorFinishedMsg is sent after the external editor exits.
type editorFinishedMsg struct {
	tmpPath string
	err     error
}

type field int

const (
	fieldText field = iota
	fieldSpoiler
	fieldOption
)

const (
	promptPath        = "path"
	promptDescription = "description"
	confirmDiscard    = "discard"
)

// Model holds the state for the compose view.
type Model struct {
	deps Deps
	vm   viewmodel.Compose
	keys keyMap

	textarea textarea.Model
	spoiler  textinput.Model
	options  []textinput.Model
	focus    field
	option   int

	prompt      common.Prompt
	pendingPath string
	confirm     common.Confirm
	bar         progress.Model
	spinner     spinner.Model
	width       int
	external    bool
	hint        string
}

// New returns a composer for msg: a new post, a reply or an edit.
func New(deps Deps, msg common.OpenComposeMsg) Model {
	var vm viewmodel.Compose
	switch msg.Kind {
	case common.ComposeReply:
		vm = viewmodel.NewReply(deps.Statuses, deps.Media, deps.Session, msg.Status)
	case common.ComposeEdit:
		vm = viewmodel.NewEdit(deps.Statuses, deps.Media, deps.Session, msg.Status)
	default:
		vm = viewmodel.NewCompose(deps.Statuses, deps.Media, deps.Session)
	}

	ta := textarea.New()
	ta.Placeholder = "What's on your mind?"
	ta.CharLimit = 0
	ta.ShowLineNumbers = false
	ta.SetWidth(72)
	ta.SetHeight(8)
	ta.SetValue(vm.Text())
	ta.Focus()

	sp := textinput.New()
	sp.Placeholder = "Content warning"
	sp.CharLimit = 200
	sp.Width = 60
	sp.SetValue(vm.SpoilerText())

	m := Model{
		deps:     deps,
		vm:       vm,
		keys:     defaultKeyMap(),
		textarea: ta,
		spoiler:  sp,
		bar:      progress.New(progress.WithDefaultGradient(), progress.WithWidth(20), progress.WithoutPercentage()),
		spinner:  common.NewSpinner(),
		width:    80,
		external: msg.External,
	}
	m.syncOptions()
	return m
}

// Init starts the cursor blink or opens $EDITOR right away.
func (m Model) Init() tea.Cmd {
	if m.external {
		return m.launchEditor()
	}
	return tea.Batch(textarea.Blink, m.spinner.Tick)
}

// Draft exposes the view-model, mostly for tests.
func (m Model) Draft() viewmodel.Compose { return m.vm }

func (m Model) Title() string {
	switch m.vm.Mode() {
	case viewmodel.ComposeReply:
		return "Reply"
	case viewmodel.ComposeEdit:
		return "Edit post"
	}
	return "New post"
}

func (m Model) Capturing() bool { return true }

// Close cancels uploads and a pending publish.
func (m Model) Close() { m.vm.Close() }

// launchEditor writes the draft to a temp file and suspends the program while
// $EDITOR runs on it.
func (m Model) launchEditor() tea.Cmd {
	if m.deps.Editor == nil {
		return common.Notice("No external editor configured")
	}
	_, handle := m.vm.InReplyTo()
	if handle != "" {
		handle = "@" + handle
	}
	cmd, tmpPath, err := m.deps.Editor.Cmd(app.EditorDraft{Text: m.vm.Text(), SpoilerText: m.vm.SpoilerText()}, handle)
	if err != nil {
		return common.NoticeErr("Preparing editor", err)
	}
	return tea.ExecProcess(cmd, func(err error) tea.Msg {
		return editorFinishedMsg{tmpPath: tmpPath, err: err}
	})
}

// syncOptions rebuilds the poll inputs from the draft.
func (m *Model) syncOptions() {
	poll, ok := m.vm.Poll()
	if !ok {
		m.options = nil
		if m.focus == fieldOption {
			m.focusField(fieldText, 0)
		}
		return
	}
	inputs := make([]textinput.Model, len(poll.Options))
	for i, o := range poll.Options {
		in := textinput.New()
		in.Placeholder = fmt.Sprintf("Option %d", i+1)
		in.CharLimit = 50
		in.Width = 40
		in.SetValue(o)
		inputs[i] = in
	}
	m.options = inputs
	if m.focus == fieldOption {
		m.focusField(fieldOption, min(m.option, len(inputs)-1))
	}
}

// fields lists the focusable inputs in tab order.
func (m Model) fields() [][2]int {
	out := [][2]int{}
	if m.vm.ContentWarning() {
		out = append(out, [2]int{int(fieldSpoiler), 0})
	}
	out = append(out, [2]int{int(fieldText), 0})
	for i := range m.options {
		out = append(out, [2]int{int(fieldOption), i})
	}
	return out
}

func (m *Model) cycleFocus(delta int) {
	fs := m.fields()
	cur := 0
	for i, f := range fs {
		if field(f[0]) == m.focus && (m.focus != fieldOption || f[1] == m.option) {
			cur = i
		}
	}
	next := fs[((cur+delta)%len(fs)+len(fs))%len(fs)]
	m.focusField(field(next[0]), next[1])
}

func (m *Model) focusField(f field, option int) {
	m.textarea.Blur()
	m.spoiler.Blur()
	for i := range m.options {
		m.options[i].Blur()
	}
	m.focus, m.option = f, option
	switch f {
	case fieldSpoiler:
		m.spoiler.Focus()
	case fieldOption:
		if option >= 0 && option < len(m.options) {
			m.options[option].Focus()
		}
	default:
		m.focus = fieldText
		m.textarea.Focus()
	}
}

// Update handles messages for the compose view.
func (m Model) Update(msg tea.Msg) (common.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.textarea.SetWidth(max(min(msg.Width-4, 100), 20))
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case viewmodel.UploadProgressMsg, viewmodel.UploadResultMsg:
		return m, m.vm.Update(msg)

	case viewmodel.PublishResultMsg:
		m.vm.Update(msg)
		if m.vm.Phase() != viewmodel.ComposeSuccess {
			return m, nil
		}
		text := "Posted!"
		if msg.Edited {
			text = "Post updated."
		}
		published := common.StatusPublishedMsg{Status: m.vm.Published(), Edited: msg.Edited}
		return m, tea.Batch(common.Cmd(published), common.Notice(text), common.Cmd(common.BackMsg{}))

	case editorFinishedMsg:
		if msg.err != nil {
			return m, common.NoticeErr("Editor", msg.err)
		}
		d, err := m.deps.Editor.ReadContent(msg.tmpPath)
		if err != nil {
			return m, common.NoticeErr("Editor", err)
		}
		if d.Text == "" && d.SpoilerText == "" {
			if m.external {
				return m, common.Cmd(common.BackMsg{})
			}
			return m, nil
		}
		m.external = false
		m.applyEditorDraft(d)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	if m.prompt.Active() {
		_, _, cmd := m.prompt.Update(msg)
		return m, cmd
	}
	return m.updateFocused(msg)
}

func (m *Model) applyEditorDraft(d app.EditorDraft) {
	m.vm.SetText(d.Text)
	m.textarea.SetValue(d.Text)
	if (d.SpoilerText != "") != m.vm.ContentWarning() {
		m.vm.ToggleContentWarning()
	}
	m.vm.SetSpoilerText(d.SpoilerText)
	m.spoiler.SetValue(d.SpoilerText)
}

func (m Model) handleKey(msg tea.KeyMsg) (common.Screen, tea.Cmd) {
	if m.prompt.Active() {
		return m.handlePrompt(msg)
	}
	if m.confirm.Active() {
		yes := m.confirm.Answer(msg)
		m.confirm = common.Confirm{}
		if yes {
			return m, common.Cmd(common.BackMsg{})
		}
		return m, nil
	}
	if m.vm.Phase() == viewmodel.ComposePublishing && !key.Matches(msg, m.keys.ForceQuit) {
		return m, nil
	}
	m.hint = ""
	if m.vm.Phase() == viewmodel.ComposeError && !key.Matches(msg, m.keys.Publish) {
		m.vm.ClearError()
	}

	switch {
	case key.Matches(msg, m.keys.Cancel):
		if m.vm.HasUnsavedChanges() {
			m.confirm = common.Confirm{Text: "Discard this draft?", Tag: confirmDiscard}
			return m, nil
		}
		return m, common.Cmd(common.BackMsg{})

	case key.Matches(msg, m.keys.Publish):
		return m, tea.Batch(m.vm.Publish(), m.spinner.Tick)

	case key.Matches(msg, m.keys.NextField):
		m.cycleFocus(1)
		return m, nil
	case key.Matches(msg, m.keys.PrevField):
		m.cycleFocus(-1)
		return m, nil

	case key.Matches(msg, m.keys.ToggleCW):
		m.vm.ToggleContentWarning()
		if m.vm.ContentWarning() {
			m.focusField(fieldSpoiler, 0)
		} else {
			m.spoiler.SetValue("")
			m.focusField(fieldText, 0)
		}
		return m, nil

	case key.Matches(msg, m.keys.Visibility):
		m.vm.CycleVisibility()
		return m, nil

	case key.Matches(msg, m.keys.Attach):
		return m, m.prompt.Open("File to attach", promptPath, "")
	case key.Matches(msg, m.keys.Detach):
		if atts := m.vm.Attachments(); len(atts) > 0 {
			m.vm.RemoveAttachment(atts[len(atts)-1].Source)
		}
		return m, nil

	case key.Matches(msg, m.keys.TogglePoll):
		if _, ok := m.vm.Poll(); ok {
			m.vm.RemovePoll()
		} else if err := m.vm.AddPoll(); err == nil {
			m.syncOptions()
			m.focusField(fieldOption, 0)
			return m, nil
		}
		m.syncOptions()
		return m, nil
	case key.Matches(msg, m.keys.AddOption):
		if m.vm.AddPollOption() {
			m.syncOptions()
			m.focusField(fieldOption, len(m.options)-1)
		}
		return m, nil
	case key.Matches(msg, m.keys.RemoveOption):
		if m.focus == fieldOption && m.vm.RemovePollOption(m.option) {
			m.syncOptions()
		}
		return m, nil
	case key.Matches(msg, m.keys.PollDuration):
		m.vm.CyclePollDuration()
		return m, nil
	case key.Matches(msg, m.keys.PollMultiple):
		m.vm.TogglePollMultiple()
		return m, nil

	case key.Matches(msg, m.keys.ExternalEdit):
		return m, m.launchEditor()
	}
	return m.updateFocused(msg)
}

func (m Model) handlePrompt(msg tea.KeyMsg) (common.Screen, tea.Cmd) {
	tag := m.prompt.Tag()
	value, submitted, cmd := m.prompt.Update(msg)
	if !submitted {
		if tag == promptDescription && !m.prompt.Active() && msg.Type == tea.KeyEnter {
			return m, m.attach(m.pendingPath, "")
		}
		return m, cmd
	}
	switch tag {
	case promptPath:
		m.pendingPath = value
		return m, m.prompt.Open("Description (alt text)", promptDescription, "")
	case promptDescription:
		return m, m.attach(m.pendingPath, value)
	}
	return m, nil
}

func (m *Model) attach(path, description string) tea.Cmd {
	m.pendingPath = ""
	if description == "" && m.deps.Prefs != nil && m.deps.Prefs.Bool(domain.PrefAltTextReminders, domain.PreferenceDefault(domain.PrefAltTextReminders)) {
		m.hint = "Tip: a description helps people using screen readers"
	}
	return m.vm.AddAttachment(path, description)
}

// updateFocused forwards msg to the focused input and copies its value into the draft.
func (m Model) updateFocused(msg tea.Msg) (common.Screen, tea.Cmd) {
	var cmd tea.Cmd
	switch m.focus {
	case fieldSpoiler:
		m.spoiler, cmd = m.spoiler.Update(msg)
		if m.spoiler.Value() != m.vm.SpoilerText() {
			m.vm.SetSpoilerText(m.spoiler.Value())
		}
	case fieldOption:
		if m.option < len(m.options) {
			m.options[m.option], cmd = m.options[m.option].Update(msg)
			if poll, ok := m.vm.Poll(); ok && m.option < len(poll.Options) && poll.Options[m.option] != m.options[m.option].Value() {
				m.vm.SetPollOption(m.option, m.options[m.option].Value())
			}
		}
	default:
		m.textarea, cmd = m.textarea.Update(msg)
		m.vm.SetText(m.textarea.Value())
	}
	return m, cmd
}
