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

// MembersDeps are the services the members screen uses. Search turns a typed
// handle into an account id.
type MembersDeps struct {
	Lists   app.ListService
	Search  app.SearchService
	Session app.Session
}

const (
	promptAdd     = "add"
	confirmRemove = "remove"

	membersEmpty = "Nobody on this list yet. Press a to add an account you follow."
)

type memberChangedMsg struct {
	owner   string
	op      string
	account domain.Account
	err     error
}

// Members shows the accounts on one list and adds or removes them.
type Members struct {
	deps    MembersDeps
	list    domain.FollowList
	coll    common.Collection[domain.Account]
	prompt  common.Prompt
	confirm common.Confirm
	keys    common.KeyMap
	spinner spinner.Model
	height  int
	initCmd tea.Cmd
}

// NewMembers returns the members screen of list and starts loading.
func NewMembers(deps MembersDeps, list domain.FollowList) Members {
	m := Members{
		deps:    deps,
		list:    list,
		coll:    common.NewCollection[domain.Account](),
		keys:    common.DefaultKeyMap(),
		spinner: common.NewSpinner(),
		height:  24,
	}
	m.initCmd = m.load()
	return m
}

func (m Members) Init() tea.Cmd { return tea.Batch(m.initCmd, m.spinner.Tick) }

func (m Members) Title() string   { return m.list.Title + " · members" }
func (m Members) Capturing() bool { return m.prompt.Active() }
func (m Members) Close()          { m.coll.Close() }

// Accounts returns the loaded members.
func (m Members) Accounts() []domain.Account { return m.coll.Items() }

func (m *Members) load() tea.Cmd {
	if _, ok := m.deps.Session.Current(); !ok {
		m.coll.RequireLogin("Log in to manage your lists")
		return nil
	}
	svc, id := m.deps.Lists, m.list.ID
	return m.coll.Load(func(ctx context.Context) ([]domain.Account, error) {
		return svc.ListAccounts(ctx, id)
	})
}

// add looks handle up on the server, then puts the account on the list.
func (m Members) add(handle string) tea.Cmd {
	lists, search := m.deps.Lists, m.deps.Search
	ctx, owner, id := m.coll.Context(), m.coll.Owner(), m.list.ID
	return func() tea.Msg {
		res, err := search.Search(ctx, domain.SearchQuery{Query: handle, Type: domain.SearchAccounts, Resolve: true, Limit: 1})
		if err == nil && len(res.Accounts) == 0 {
			err = fmt.Errorf("%s: %w", handle, domain.ErrNotFound)
		}
		if err != nil {
			return memberChangedMsg{owner: owner, op: promptAdd, err: err}
		}
		acc := res.Accounts[0]
		err = lists.AddListAccounts(ctx, id, []string{acc.ID})
		return memberChangedMsg{owner: owner, op: promptAdd, account: acc, err: err}
	}
}

func (m Members) remove(acc domain.Account) tea.Cmd {
	svc, ctx, owner, id := m.deps.Lists, m.coll.Context(), m.coll.Owner(), m.list.ID
	return func() tea.Msg {
		err := svc.RemoveListAccounts(ctx, id, []string{acc.ID})
		return memberChangedMsg{owner: owner, op: confirmRemove, account: acc, err: err}
	}
}

func (m Members) Update(msg tea.Msg) (common.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.height = msg.Height
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case common.LoadedMsg[domain.Account]:
		m.coll.Resolve(msg, membersEmpty)
		return m, nil

	case memberChangedMsg:
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

func (m Members) applyChange(msg memberChangedMsg) (common.Screen, tea.Cmd) {
	if msg.err != nil {
		return m, common.NoticeErr("Could not "+msg.op+" member", msg.err)
	}
	same := func(a domain.Account) bool { return a.ID == msg.account.ID }
	switch msg.op {
	case promptAdd:
		for _, a := range m.coll.Items() {
			if same(a) {
				return m, common.Notice(common.Handle(msg.account) + " is already on " + m.list.Title)
			}
		}
		m.coll.Add(msg.account)
		return m, common.Notice("Added " + common.Handle(msg.account))
	case confirmRemove:
		m.coll.Remove(same, membersEmpty)
		return m, common.Notice("Removed " + common.Handle(msg.account))
	}
	return m, nil
}

func (m Members) handleKey(msg tea.KeyMsg) (common.Screen, tea.Cmd) {
	if m.prompt.Active() {
		handle, submitted, cmd := m.prompt.Update(msg)
		if !submitted {
			return m, cmd
		}
		return m, m.add(handle)
	}
	if m.confirm.Active() {
		c := m.confirm
		m.confirm = common.Confirm{}
		if !c.Answer(msg) {
			return m, nil
		}
		for _, a := range m.coll.Items() {
			if a.ID == c.ID {
				return m, m.remove(a)
			}
		}
		return m, nil
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
			return m, common.Cmd(common.OpenProfileMsg{Account: selected})
		}

	case key.Matches(msg, m.keys.New):
		if m.coll.LoginRequired() {
			return m, nil
		}
		return m, m.prompt.Open("Add account (@user@server)", promptAdd, "@")
	case key.Matches(msg, m.keys.Delete) && ok:
		m.confirm = common.Confirm{
			Text: fmt.Sprintf("Remove %s from %q?", common.Handle(selected), m.list.Title),
			Tag:  confirmRemove,
			ID:   selected.ID,
		}
	}
	return m, nil
}

func (m Members) View() string {
	var b strings.Builder
	b.WriteString(common.HeaderStyle.Render(m.list.Title) + common.MutedStyle.Render("  members") + "\n\n")

	if s := common.PhaseView(m.coll.Screen(), m.spinner, "members"); s != "" {
		b.WriteString(s)
	} else {
		rows := make([]string, 0, len(m.coll.Items()))
		for _, a := range m.coll.Items() {
			rows = append(rows, common.AuthorStyle.Render(common.DisplayName(a))+" "+common.HandleStyle.Render(common.Handle(a)))
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
		b.WriteString(common.StatusBarStyle.Render(common.HelpLine(k.Up, k.Down, k.Enter, k.New, k.Delete, k.Refresh, k.Back)))
	}
	return b.String()
}
