// Package settings toggles local behavior flags and manages the accounts
// signed in on this device.
package settings

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/CrestNiraj12/kabinka/app"
	"github.com/CrestNiraj12/kabinka/domain"
	"github.com/CrestNiraj12/kabinka/tui/common"
	"github.com/CrestNiraj12/kabinka/viewmodel"
)

// Accounts switches between saved accounts. The session manager implements it.
type Accounts interface {
	Accounts(ctx context.Context) ([]domain.AccountSession, error)
	Current() (domain.AccountSession, bool)
	Switch(ctx context.Context, id string) error
	SignOut(ctx context.Context, id string) error
	SetAnonymous(ctx context.Context, on bool) error
}

// Deps are the collaborators of the settings screen.
type Deps struct {
	Prefs    app.Preferences
	Accounts Accounts
}

const confirmSignOut = "signout"

// sessionMsg reports a switch, sign out or anonymous toggle.
type sessionMsg struct {
	owner string
	what  string
	err   error
}

// Model is the settings screen.
type Model struct {
	deps    Deps
	coll    common.Collection[domain.AccountSession]
	cursor  int
	busy    bool
	confirm common.Confirm
	keys    common.KeyMap
	spinner spinner.Model
	initCmd tea.Cmd
}

// New returns the settings screen and starts loading the saved accounts.
func New(deps Deps) Model {
	m := Model{
		deps:    deps,
		coll:    common.NewCollection[domain.AccountSession](),
		keys:    common.DefaultKeyMap(),
		spinner: common.NewSpinner(),
	}
	m.initCmd = m.load()
	return m
}

func (m Model) Init() tea.Cmd { return tea.Batch(m.initCmd, m.spinner.Tick) }

func (m Model) Title() string   { return common.SectionSettings.String() }
func (m Model) Capturing() bool { return false }
func (m Model) Close()          { m.coll.Close() }

// Cursor returns the selected row: preferences first, then accounts, then
// the add-account row.
func (m Model) Cursor() int { return m.cursor }

func (m *Model) load() tea.Cmd {
	return m.coll.Load(m.deps.Accounts.Accounts)
}

func (m Model) rows() int {
	return len(domain.Preferences) + len(m.coll.Items()) + 1
}

func (m Model) pref(k string) bool {
	return m.deps.Prefs.Bool(k, domain.PreferenceDefault(k))
}

func (m Model) session(what string, fn func(ctx context.Context) error) tea.Cmd {
	ctx, owner := m.coll.Context(), m.coll.Owner()
	return func() tea.Msg {
		return sessionMsg{owner: owner, what: what, err: fn(ctx)}
	}
}

func (m Model) Update(msg tea.Msg) (common.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case common.LoadedMsg[domain.AccountSession]:
		m.coll.Resolve(msg, "")
		m.cursor = common.MoveCursor(m.cursor, 0, m.rows())
		return m, nil

	case sessionMsg:
		if msg.owner != m.coll.Owner() {
			return m, nil
		}
		m.busy = false
		if msg.err != nil {
			return m, common.NoticeErr("Could not "+msg.what, msg.err)
		}
		return m, tea.Batch(m.load(), common.Cmd(common.SessionChangedMsg{}))

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (common.Screen, tea.Cmd) {
	if m.confirm.Active() {
		c := m.confirm
		m.confirm = common.Confirm{}
		if !c.Answer(msg) {
			return m, nil
		}
		m.busy = true
		svc := m.deps.Accounts
		return m, m.session("sign out", func(ctx context.Context) error { return svc.SignOut(ctx, c.ID) })
	}

	switch {
	case key.Matches(msg, m.keys.Back):
		return m, common.Cmd(common.BackMsg{})
	case key.Matches(msg, m.keys.Up):
		m.cursor = common.MoveCursor(m.cursor, -1, m.rows())
	case key.Matches(msg, m.keys.Down):
		m.cursor = common.MoveCursor(m.cursor, 1, m.rows())
	case key.Matches(msg, m.keys.Top):
		m.cursor = 0
	case key.Matches(msg, m.keys.Refresh):
		return m, m.load()
	case m.busy:
		return m, nil
	case key.Matches(msg, m.keys.Enter), key.Matches(msg, m.keys.Toggle):
		return m.activate()
	case key.Matches(msg, m.keys.Delete):
		if a, ok := m.selectedAccount(); ok {
			m.confirm = common.Confirm{Text: "Sign out of " + a.ID + "?", Tag: confirmSignOut, ID: a.ID}
		}
	}
	return m, nil
}

func (m Model) selectedAccount() (domain.AccountSession, bool) {
	i := m.cursor - len(domain.Preferences)
	items := m.coll.Items()
	if i < 0 || i >= len(items) {
		return domain.AccountSession{}, false
	}
	return items[i], true
}

func (m Model) activate() (common.Screen, tea.Cmd) {
	if m.cursor < len(domain.Preferences) {
		p := domain.Preferences[m.cursor]
		next := !m.pref(p.Key)
		if err := m.deps.Prefs.SetBool(p.Key, next); err != nil {
			return m, common.NoticeErr("Could not save setting", err)
		}
		if p.Key != domain.PrefAnonymous {
			return m, nil
		}
		m.busy = true
		svc := m.deps.Accounts
		return m, m.session("change anonymous mode", func(ctx context.Context) error { return svc.SetAnonymous(ctx, next) })
	}
	if a, ok := m.selectedAccount(); ok {
		if cur, active := m.deps.Accounts.Current(); active && cur.ID == a.ID {
			return m, nil
		}
		m.busy = true
		svc := m.deps.Accounts
		return m, m.session("switch account", func(ctx context.Context) error { return svc.Switch(ctx, a.ID) })
	}
	if m.cursor == m.rows()-1 {
		return m, common.Cmd(common.LoginMsg{})
	}
	return m, nil
}

func (m Model) View() string {
	var b strings.Builder
	b.WriteString(common.HeaderStyle.Render("Settings") + "\n\n")

	prefs := make([]string, len(domain.Preferences))
	for i, p := range domain.Preferences {
		box := "[ ]"
		if m.pref(p.Key) {
			box = common.SuccessStyle.Render("[x]")
		}
		prefs[i] = box + " " + p.Label
	}
	b.WriteString(common.RenderRows(prefs, m.cursor, 0))

	b.WriteString("\n" + common.HeaderStyle.Render("Accounts") + "\n")
	offset := len(domain.Preferences)
	if s := common.PhaseView(m.coll.Screen(), m.spinner, "accounts"); s != "" && m.coll.Phase() != viewmodel.PhaseEmpty {
		b.WriteString(s)
	}
	cur, active := m.deps.Accounts.Current()
	rows := make([]string, 0, len(m.coll.Items())+1)
	for _, a := range m.coll.Items() {
		row := common.AuthorStyle.Render("@" + a.ID)
		if active && cur.ID == a.ID {
			row += common.SuccessStyle.Render(" ● active")
		}
		rows = append(rows, row)
	}
	rows = append(rows, common.MutedStyle.Render("+ Add account"))
	b.WriteString(common.RenderRows(rows, m.cursor-offset, 0))

	b.WriteString("\n")
	switch {
	case m.confirm.Active():
		b.WriteString(m.confirm.View())
	case m.busy:
		b.WriteString(m.spinner.View() + " Updating session...")
	default:
		k := m.keys
		b.WriteString(common.StatusBarStyle.Render(common.HelpLine(k.Up, k.Down, k.Toggle, k.Enter, k.Delete)))
	}
	return b.String()
}
