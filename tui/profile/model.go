// Package profile shows an account header, the relationship to it and its posts.
package profile

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

// Deps are the services the profile reads from.
type Deps struct {
	Accounts app.AccountService
	Statuses app.StatusService
	Session  app.Session
	Prefs    app.Preferences
}

const (
	chrome          = 10
	confirmUnfollow = "unfollow"
)

// Model is the profile screen.
type Model struct {
	deps    Deps
	vm      viewmodel.Profile
	list    statuses.List
	confirm common.Confirm
	keys    common.KeyMap
	spinner spinner.Model
	width   int
	height  int
	initCmd tea.Cmd
}

// New returns the profile of account and starts loading it.
func New(deps Deps, account domain.Account) Model {
	m := Model{
		deps:    deps,
		vm:      viewmodel.NewProfile(deps.Accounts, deps.Statuses, deps.Session, account),
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

// Profile exposes the view-model, mostly for tests.
func (m Model) Profile() viewmodel.Profile { return m.vm }

func (m Model) Title() string   { return common.DisplayName(m.vm.Account()) }
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
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case viewmodel.ProfileLoadedMsg, viewmodel.InteractionResultMsg:
		cmd := m.vm.Update(msg)
		m.list.Clamp(len(m.vm.Statuses()))
		return m, cmd

	case viewmodel.FollowResultMsg:
		cmd := m.vm.Update(msg)
		if msg.AccountID == m.vm.Account().ID && msg.Err == nil {
			text := "Unfollowed " + common.Handle(m.vm.Account())
			if msg.Follow {
				text = "Following " + common.Handle(m.vm.Account())
				if msg.Relationship.Requested {
					text = "Follow request sent"
				}
			}
			return m, tea.Batch(cmd, common.Notice(text))
		}
		return m, cmd

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
	if m.confirm.Active() {
		yes := m.confirm.Answer(msg)
		m.confirm = common.Confirm{}
		if yes {
			return m, m.vm.ToggleFollow()
		}
		return m, nil
	}
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
	case key.Matches(msg, m.keys.LoadMore):
		return m, m.vm.LoadMore()
	case key.Matches(msg, m.keys.Enter) && m.vm.Screen().Phase() == viewmodel.PhaseError:
		return m, m.vm.Load()
	case key.Matches(msg, m.keys.Follow):
		return m.follow()
	case key.Matches(msg, m.keys.Profile):
		// Already here.
		if st, ok := m.list.Selected(items); ok && st.Target().Account.ID == m.vm.Account().ID {
			return m, nil
		}
	}

	cmd, _ := m.list.HandleKey(msg, items, &m.vm)
	if key.Matches(msg, m.keys.Down) && m.list.Cursor() == len(items)-1 {
		cmd = tea.Batch(cmd, m.vm.LoadMore())
	}
	return m, cmd
}

func (m Model) follow() (Model, tea.Cmd) {
	if _, ok := m.deps.Session.Current(); !ok {
		return m, common.Notice("Log in to follow accounts")
	}
	if m.vm.Own() {
		return m, nil
	}
	rel, ok := m.vm.Relationship()
	if !ok || m.vm.FollowPending() {
		return m, nil
	}
	following := rel.Following || rel.Requested
	if following && m.pref(domain.PrefConfirmUnfollow) {
		m.confirm = common.Confirm{Text: "Unfollow " + common.Handle(m.vm.Account()) + "?", Tag: confirmUnfollow}
		return m, nil
	}
	return m, m.vm.ToggleFollow()
}

func (m Model) pref(k string) bool {
	if m.deps.Prefs == nil {
		return domain.PreferenceDefault(k)
	}
	return m.deps.Prefs.Bool(k, domain.PreferenceDefault(k))
}

func (m Model) View() string {
	var b strings.Builder
	b.WriteString(m.renderHeader() + "\n")

	screen := m.vm.Screen()
	switch screen.Phase() {
	case viewmodel.PhaseLoading:
		b.WriteString(fmt.Sprintf("  %s Loading profile...\n", m.spinner.View()))
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
	switch {
	case m.confirm.Active():
		b.WriteString("\n" + m.confirm.View())
	default:
		k := m.keys
		b.WriteString("\n" + common.StatusBarStyle.Render(common.HelpLine(k.Up, k.Down, k.Enter, k.Follow, k.Favourite, k.Reply, k.LoadMore, k.Back)))
	}
	return b.String()
}

func (m Model) renderHeader() string {
	a := m.vm.Account()
	var b strings.Builder
	name := common.AuthorStyle.Render(common.DisplayName(a))
	if a.Bot {
		name += common.MutedStyle.Render(" [bot]")
	}
	if a.Locked {
		name += common.MutedStyle.Render(" 🔒")
	}
	b.WriteString(name + " " + common.HandleStyle.Render(common.Handle(a)) + "\n")
	if a.Note != "" {
		b.WriteString(common.ContentStyle.Render(common.Wrap(a.Note, max(m.width-4, 20), 3)) + "\n")
	}
	counts := fmt.Sprintf("%d posts • %d following • %d followers", a.StatusesCount, a.FollowingCount, a.FollowersCount)
	b.WriteString(common.MutedStyle.Render(counts))
	if label := m.relationshipLabel(); label != "" {
		b.WriteString("  " + common.SpoilerStyle.Render(label))
	}
	return b.String() + "\n"
}

func (m Model) relationshipLabel() string {
	if m.vm.Own() {
		return "This is you"
	}
	rel, ok := m.vm.Relationship()
	if !ok {
		return ""
	}
	var parts []string
	switch {
	case m.vm.FollowPending():
		parts = append(parts, "...")
	case rel.Requested:
		parts = append(parts, "Requested")
	case rel.Following:
		parts = append(parts, "Following")
	}
	if rel.FollowedBy {
		parts = append(parts, "Follows you")
	}
	if rel.Blocking {
		parts = append(parts, "Blocked")
	}
	if rel.Muting {
		parts = append(parts, "Muted")
	}
	return strings.Join(parts, " • ")
}
