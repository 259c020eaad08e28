// Package thread shows a conversation: the ancestors of a status, the status
// itself and its replies.
package thread

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/CrestNiraj12/kabinka/app"
	"github.com/CrestNiraj12/kabinka/domain"
	"github.com/CrestNiraj12/kabinka/tui/common"
	"github.com/CrestNiraj12/kabinka/tui/statuses"
	"github.com/CrestNiraj12/kabinka/viewmodel"
)

// Deps are the services the thread reads from.
type Deps struct {
	Timeline app.TimelineService
	Statuses app.StatusService
	Session  app.Session
	Prefs    app.Preferences
}

const chrome = 5

// Model is the thread screen.
type Model struct {
	vm      viewmodel.Thread
	list    statuses.List
	keys    common.KeyMap
	spinner spinner.Model
	width   int
	height  int
	placed  bool
	initCmd tea.Cmd
}

// New returns the thread around st and starts loading it.
func New(deps Deps, st domain.Status) Model {
	m := Model{
		vm:      viewmodel.NewThread(deps.Timeline, deps.Statuses, deps.Session, st),
		list:    statuses.New(statuses.Deps{Statuses: deps.Statuses, Session: deps.Session, Prefs: deps.Prefs}),
		keys:    common.DefaultKeyMap(),
		spinner: common.NewSpinner(),
		width:   80,
		height:  24,
	}
	m.initCmd = m.vm.Load()
	return m
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.initCmd, m.spinner.Tick)
}

// Thread exposes the view-model, mostly for tests.
func (m Model) Thread() viewmodel.Thread { return m.vm }

func (m Model) Cursor() int     { return m.list.Cursor() }
func (m Model) Title() string   { return "Thread" }
func (m Model) Capturing() bool { return false }

func (m Model) Close() {
	m.vm.Close()
	m.list.Close()
}

func (m Model) listHeight() int { return max(m.height-chrome, 3) }

func (m Model) Update(msg tea.Msg) (common.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.list.SetWidth(msg.Width)
		m.list.Scroll(m.vm.Statuses(), m.listHeight())
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case viewmodel.ThreadLoadedMsg:
		cmd := m.vm.Update(msg)
		if m.vm.Screen().Phase() == viewmodel.PhaseContent && !m.placed {
			// Start on the focused status, once; refreshes keep the cursor.
			m.placed = true
			m.list.SetCursor(m.vm.FocusIndex(), len(m.vm.Statuses()))
		}
		m.list.Clamp(len(m.vm.Statuses()))
		m.list.Scroll(m.vm.Statuses(), m.listHeight())
		return m, cmd

	case viewmodel.InteractionResultMsg:
		return m, m.vm.Update(msg)

	case common.StatusPublishedMsg:
		m.vm.Upsert(msg.Status)
		return m, nil

	case common.StatusDeletedMsg:
		mine := m.list.Deleted(msg.ID)
		if msg.Err == nil {
			m.vm.Remove(msg.ID)
			m.list.Clamp(len(m.vm.Statuses()))
		}
		if mine && msg.Err != nil {
			return m, common.NoticeErr("Could not delete", msg.Err)
		}
		if mine {
			return m, common.Notice("Post deleted")
		}
		return m, nil

	case tea.KeyMsg:
		var cmd tea.Cmd
		m, cmd = m.handleKey(msg)
		m.list.Scroll(m.vm.Statuses(), m.listHeight())
		return m, cmd
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	items := m.vm.Statuses()
	if m.list.Confirming() {
		cmd, _ := m.list.HandleKey(msg, items, &m.vm)
		return m, cmd
	}
	switch {
	case key.Matches(msg, m.keys.Back):
		return m, common.Cmd(common.BackMsg{})
	case key.Matches(msg, m.keys.Refresh):
		return m, m.vm.Refresh()
	case key.Matches(msg, m.keys.Enter) && m.vm.Screen().Phase() == viewmodel.PhaseError:
		return m, m.vm.Load()
	case key.Matches(msg, m.keys.Enter) && m.list.Cursor() == m.vm.FocusIndex():
		return m, nil
	}
	cmd, _ := m.list.HandleKey(msg, items, &m.vm)
	return m, cmd
}

func (m Model) View() string {
	var b strings.Builder
	b.WriteString(common.HeaderStyle.Render("Thread") + "\n\n")

	screen := m.vm.Screen()
	switch screen.Phase() {
	case viewmodel.PhaseLoading:
		b.WriteString(fmt.Sprintf("  %s Loading thread...\n", m.spinner.View()))
	case viewmodel.PhaseError:
		b.WriteString(common.ErrorStyle.Render("  Error: "+screen.Message()) + "\n\n")
		b.WriteString(common.MutedStyle.Render("  Press enter or r to retry.") + "\n")
	case viewmodel.PhaseEmpty:
		b.WriteString("  " + screen.Message() + "\n")
	case viewmodel.PhaseContent:
		b.WriteString(m.list.View(m.vm.Statuses(), &m.vm, m.listHeight()))
	}

	if n := m.vm.Notice(); n != "" {
		b.WriteString(common.ErrorStyle.Render("  "+n) + "\n")
	}
	k := m.keys
	b.WriteString("\n" + common.StatusBarStyle.Render(common.HelpLine(k.Up, k.Down, k.Enter, k.Favourite, k.Reblog, k.Reply, k.Profile, k.Back)))
	return b.String()
}
