// Package hashtags lists followed hashtags and opens them as timelines.
package hashtags

import (
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
	Tags    app.TagService
	Session app.Session
}

const (
	promptFollow = "follow"
	emptyMessage = "You don't follow any hashtags. Press a to follow one."
	chrome       = 6
)

type followedMsg struct {
	owner  string
	name   string
	follow bool
	tag    domain.Hashtag
	err    error
}

// Model is the followed hashtags screen.
type Model struct {
	deps    Deps
	coll    common.Collection[domain.Hashtag]
	prompt  common.Prompt
	pending map[string]bool
	keys    common.KeyMap
	spinner spinner.Model
	height  int
	initCmd tea.Cmd
}

// New returns the screen and starts loading.
func New(deps Deps) Model {
	m := Model{
		deps:    deps,
		coll:    common.NewCollection[domain.Hashtag](),
		pending: make(map[string]bool),
		keys:    common.DefaultKeyMap(),
		spinner: common.NewSpinner(),
		height:  24,
	}
	m.initCmd = m.load()
	return m
}

func (m Model) Init() tea.Cmd { return tea.Batch(m.initCmd, m.spinner.Tick) }

func (m Model) Title() string   { return common.SectionHashtags.String() }
func (m Model) Capturing() bool { return m.prompt.Active() }
func (m Model) Close()          { m.coll.Close() }

// Tags returns the loaded hashtags.
func (m Model) Tags() []domain.Hashtag { return m.coll.Items() }

func (m *Model) load() tea.Cmd {
	if _, ok := m.deps.Session.Current(); !ok {
		m.coll.RequireLogin("Log in to see the hashtags you follow")
		return nil
	}
	return m.coll.Load(m.deps.Tags.FollowedTags)
}

func tagKey(name string) string {
	return strings.ToLower(strings.TrimPrefix(strings.TrimSpace(name), "#"))
}

func (m Model) setFollowed(name string, follow bool) tea.Cmd {
	m.pending[tagKey(name)] = true
	svc, ctx, owner := m.deps.Tags, m.coll.Context(), m.coll.Owner()
	return func() tea.Msg {
		tag, err := svc.SetTagFollowed(ctx, name, follow)
		return followedMsg{owner: owner, name: name, follow: follow, tag: tag, err: err}
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

	case common.LoadedMsg[domain.Hashtag]:
		m.coll.Resolve(msg, emptyMessage)
		return m, nil

	case followedMsg:
		if msg.owner != m.coll.Owner() {
			return m, nil
		}
		delete(m.pending, tagKey(msg.name))
		if msg.err != nil {
			verb := "follow"
			if !msg.follow {
				verb = "unfollow"
			}
			return m, common.NoticeErr(fmt.Sprintf("Could not %s #%s", verb, tagKey(msg.name)), msg.err)
		}
		tag := msg.tag
		if tag.Name == "" {
			tag = domain.Hashtag{Name: tagKey(msg.name), Following: msg.follow}
		}
		same := func(h domain.Hashtag) bool { return tagKey(h.Name) == tagKey(tag.Name) }
		known := false
		for _, h := range m.coll.Items() {
			known = known || same(h)
		}
		if known {
			m.coll.Replace(same, tag)
		} else if msg.follow {
			m.coll.Add(tag)
		}
		return m, nil

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

func (m Model) handleKey(msg tea.KeyMsg) (common.Screen, tea.Cmd) {
	if m.prompt.Active() {
		name, submitted, cmd := m.prompt.Update(msg)
		if !submitted || tagKey(name) == "" {
			return m, cmd
		}
		return m, m.setFollowed(tagKey(name), true)
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
			q := domain.TimelineQuery{Kind: domain.TimelineHashtag, Hashtag: selected.Name}
			return m, common.Cmd(common.OpenTimelineMsg{Query: q, Title: "#" + selected.Name})
		}

	case key.Matches(msg, m.keys.New) && !m.coll.LoginRequired():
		return m, m.prompt.Open("Follow hashtag", promptFollow, "#")
	case (key.Matches(msg, m.keys.Toggle) || key.Matches(msg, m.keys.Follow)) && ok:
		if m.pending[tagKey(selected.Name)] {
			return m, nil
		}
		return m, m.setFollowed(selected.Name, !selected.Following)
	}
	return m, nil
}

func (m Model) View() string {
	var b strings.Builder
	b.WriteString(common.HeaderStyle.Render("Followed hashtags") + "\n\n")

	if s := common.PhaseView(m.coll.Screen(), m.spinner, "hashtags"); s != "" {
		b.WriteString(s)
	} else {
		rows := make([]string, 0, len(m.coll.Items()))
		for _, h := range m.coll.Items() {
			rows = append(rows, m.renderRow(h))
		}
		b.WriteString(common.RenderRows(rows, m.coll.Cursor(), max(m.height-chrome, 3)))
	}

	b.WriteString("\n")
	if m.prompt.Active() {
		b.WriteString(m.prompt.View())
	} else {
		k := m.keys
		b.WriteString(common.StatusBarStyle.Render(common.HelpLine(k.Up, k.Down, k.Enter, k.New, k.Toggle, k.Refresh)))
	}
	return b.String()
}

func (m Model) renderRow(h domain.Hashtag) string {
	row := common.AuthorStyle.Render("#" + h.Name)
	switch {
	case m.pending[tagKey(h.Name)]:
		row += common.PendingStyle.Render(" ...")
	case h.Following:
		row += common.SuccessStyle.Render(" following")
	default:
		row += common.MutedStyle.Render(" not following")
	}
	uses, people := 0, 0
	for _, d := range h.History {
		uses += d.Uses
		people += d.Accounts
	}
	if len(h.History) > 0 {
		row += common.MutedStyle.Render(fmt.Sprintf("  %d posts by %d people in %d days", uses, people, len(h.History)))
	}
	return row
}
