// Package lists manages the user's lists and their members, and opens lists
// as timelines.
package lists

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/CrestNiraj12/kabinka/app"
	"github.com/CrestNiraj12/kabinka/domain"
	"github.com/CrestNiraj12/kabinka/tui/common"
	"github.com/CrestNiraj12/kabinka/viewmodel"
)

// Deps are the services the screen uses.
type Deps struct {
	Lists   app.ListService
	Session app.Session
}

const (
	promptCreate  = "create"
	promptRename  = "rename"
	confirmDelete = "delete"

	emptyMessage = "No lists yet. Press a to create one."
	chrome       = 6
)

// changedMsg reports a create, rename or delete.
type changedMsg struct {
	owner string
	op    string
	list  domain.FollowList
	err   error
}

// Model is the lists screen.
type Model struct {
	deps    Deps
	coll    common.Collection[domain.FollowList]
	prompt  common.Prompt
	confirm common.Confirm
	keys    common.KeyMap
	spinner spinner.Model
	height  int
	initCmd tea.Cmd
}

// New returns the lists screen and starts loading.
func New(deps Deps) Model {
	m := Model{
		deps:    deps,
		coll:    common.NewCollection[domain.FollowList](),
		keys:    common.DefaultKeyMap(),
		spinner: common.NewSpinner(),
		height:  24,
	}
	m.initCmd = m.load()
	return m
}

func (m Model) Init() tea.Cmd { return tea.Batch(m.initCmd, m.spinner.Tick) }

func (m Model) Title() string   { return common.SectionLists.String() }
func (m Model) Capturing() bool { return m.prompt.Active() }
func (m Model) Close()          { m.coll.Close() }

// Lists returns the loaded lists.
func (m Model) Lists() []domain.FollowList { return m.coll.Items() }

func (m *Model) load() tea.Cmd {
	if _, ok := m.deps.Session.Current(); !ok {
		m.coll.RequireLogin("Log in to manage your lists")
		return nil
	}
	svc := m.deps.Lists
	return m.coll.Load(svc.Lists)
}

func (m Model) change(op string, fn func(ctx context.Context) (domain.FollowList, error)) tea.Cmd {
	ctx, owner := m.coll.Context(), m.coll.Owner()
	return func() tea.Msg {
		l, err := fn(ctx)
		return changedMsg{owner: owner, op: op, list: l, err: err}
	}
}

func (m Model) Update(msg tea.Msg) (common.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.height = msg.Height
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case common.LoadedMsg[domain.FollowList]:
		m.coll.Resolve(msg, emptyMessage)
		return m, nil

	case changedMsg:
		if msg.owner != m.coll.Owner() {
			return m, nil
		}
		return m.applyChange(msg)

	case common.SessionChangedMsg:
		return m, m.load()

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	if m.prompt.Active() {
		_, _, cmd := m.prompt.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) applyChange(msg changedMsg) (common.Screen, tea.Cmd) {
	if msg.err != nil {
		return m, common.NoticeErr("Could not "+msg.op+" list", msg.err)
	}
	same := func(l domain.FollowList) bool { return l.ID == msg.list.ID }
	switch msg.op {
	case promptCreate:
		m.coll.Add(msg.list)
		return m, common.Notice("Created " + msg.list.Title)
	case promptRename:
		m.coll.Replace(same, msg.list)
		return m, common.Notice("Renamed to " + msg.list.Title)
	case confirmDelete:
		m.coll.Remove(same, emptyMessage)
		return m, common.Notice("List deleted")
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (common.Screen, tea.Cmd) {
	if m.prompt.Active() {
		return m.handlePrompt(msg)
	}
	if m.confirm.Active() {
		c := m.confirm
		m.confirm = common.Confirm{}
		if !c.Answer(msg) {
			return m, nil
		}
		svc := m.deps.Lists
		return m, m.change(confirmDelete, func(ctx context.Context) (domain.FollowList, error) {
			return domain.FollowList{ID: c.ID}, svc.DeleteList(ctx, c.ID)
		})
	}

	selected, ok := m.coll.Selected()
	switch {
	case key.Matches(msg, m.keys.Back):
		return m, common.Cmd(common.BackMsg{})
	case key.Matches(msg, m.keys.Refresh):
		return m, m.load()
	case key.Matches(msg, m.keys.Up):
		m.coll.Move(-1)
	case key.Matches(msg, m.keys.Down):
		m.coll.Move(1)
	case key.Matches(msg, m.keys.Top):
		m.coll.Top()

	case key.Matches(msg, m.keys.Enter):
		switch m.coll.Phase() {
		case viewmodel.PhaseEmpty:
			if m.coll.LoginRequired() {
				return m, common.Cmd(common.LoginMsg{})
			}
		case viewmodel.PhaseError:
			return m, m.load()
		case viewmodel.PhaseContent:
			q := domain.TimelineQuery{Kind: domain.TimelineList, ListID: selected.ID}
			return m, common.Cmd(common.OpenTimelineMsg{Query: q, Title: selected.Title})
		}

	case key.Matches(msg, m.keys.New):
		if m.coll.LoginRequired() {
			return m, nil
		}
		return m, m.prompt.Open("New list title", promptCreate, "")
	case key.Matches(msg, m.keys.Rename) && ok:
		return m, m.prompt.Open("Rename list", promptRename, selected.Title)
	case key.Matches(msg, m.keys.Delete) && ok:
		m.confirm = common.Confirm{Text: fmt.Sprintf("Delete list %q?", selected.Title), Tag: confirmDelete, ID: selected.ID}
	case key.Matches(msg, m.keys.Members) && ok:
		return m, common.Cmd(common.OpenMembersMsg{List: selected})
	}
	return m, nil
}

func (m Model) handlePrompt(msg tea.KeyMsg) (common.Screen, tea.Cmd) {
	tag := m.prompt.Tag()
	title, submitted, cmd := m.prompt.Update(msg)
	if !submitted {
		return m, cmd
	}
	svc := m.deps.Lists
	switch tag {
	case promptCreate:
		return m, m.change(promptCreate, func(ctx context.Context) (domain.FollowList, error) {
			return svc.CreateList(ctx, domain.FollowList{Title: title, RepliesPolicy: domain.RepliesList})
		})
	case promptRename:
		l, ok := m.coll.Selected()
		if !ok || l.Title == title {
			return m, nil
		}
		l.Title = title
		return m, m.change(promptRename, func(ctx context.Context) (domain.FollowList, error) {
			return svc.UpdateList(ctx, l)
		})
	}
	return m, nil
}

func (m Model) View() string {
	var b strings.Builder
	b.WriteString(common.HeaderStyle.Render("Lists") + "\n\n")

	if s := common.PhaseView(m.coll.Screen(), m.spinner, "lists"); s != "" {
		b.WriteString(s)
	} else {
		rows := make([]string, 0, len(m.coll.Items()))
		for _, l := range m.coll.Items() {
			row := common.AuthorStyle.Render(l.Title)
			if l.Exclusive {
				row += common.MutedStyle.Render(" (exclusive)")
			}
			rows = append(rows, row)
		}
		b.WriteString(common.RenderRows(rows, m.coll.Cursor(), max(m.height-chrome, 3)))
	}

	b.WriteString("\n")
	switch {
	case m.prompt.Active():
		b.WriteString(m.prompt.View())
	case m.confirm.Active():
		b.WriteString(m.confirm.View())
	default:
		k := m.keys
		b.WriteString(common.StatusBarStyle.Render(common.HelpLine(k.Up, k.Down, k.Enter, k.Members, k.New, k.Rename, k.Delete, k.Refresh)))
	}
	return b.String()
}
