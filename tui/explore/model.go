// Package explore searches the server for posts, accounts and hashtags. With
// no search active it shows what is trending.
package explore

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/CrestNiraj12/kabinka/app"
	"github.com/CrestNiraj12/kabinka/domain"
	"github.com/CrestNiraj12/kabinka/tui/common"
	"github.com/CrestNiraj12/kabinka/viewmodel"
)

// Deps are the services the screen reads from.
type Deps struct {
	Search  app.SearchService
	Session app.Session
}

type tab int

const (
	tabPosts tab = iota
	tabAccounts
	tabHashtags
)

var tabLabels = []string{"Posts", "Accounts", "Hashtags"}

const (
	promptSearch = "search"
	trendLimit   = 20
	chrome       = 7
)

// Model is the explore screen. Each tab keeps its own collection so a late
// answer for one tab never lands in another.
type Model struct {
	deps     Deps
	query    string
	active   tab
	posts    common.Collection[domain.Status]
	accounts common.Collection[domain.Account]
	tags     common.Collection[domain.Hashtag]
	prompt   common.Prompt
	keys     common.KeyMap
	spinner  spinner.Model
	width    int
	height   int
	now      func() time.Time
	initCmd  tea.Cmd
}

// New returns the screen on the trending posts tab and starts loading it.
func New(deps Deps) Model {
	m := Model{
		deps:     deps,
		posts:    common.NewCollection[domain.Status](),
		accounts: common.NewCollection[domain.Account](),
		tags:     common.NewCollection[domain.Hashtag](),
		keys:     common.DefaultKeyMap(),
		spinner:  common.NewSpinner(),
		width:    80,
		height:   24,
		now:      time.Now,
	}
	m.initCmd = m.load()
	return m
}

func (m Model) Init() tea.Cmd { return tea.Batch(m.initCmd, m.spinner.Tick) }

func (m Model) Title() string   { return common.SectionExplore.String() }
func (m Model) Capturing() bool { return m.prompt.Active() }

func (m Model) Close() {
	m.posts.Close()
	m.accounts.Close()
	m.tags.Close()
}

// Query returns the active search, empty while showing trends.
func (m Model) Query() string { return m.query }

func (m Model) Posts() []domain.Status     { return m.posts.Items() }
func (m Model) Accounts() []domain.Account { return m.accounts.Items() }
func (m Model) Hashtags() []domain.Hashtag { return m.tags.Items() }

func (m Model) authenticated() bool {
	_, ok := m.deps.Session.Current()
	return ok
}

// load fetches the active tab: trends without a query, search results with one.
func (m *Model) load() tea.Cmd {
	svc := m.deps.Search
	q := domain.SearchQuery{Query: m.query, Resolve: m.authenticated(), Limit: viewmodel.TimelinePageSize}
	search := func(ctx context.Context, t domain.SearchType) (domain.SearchResults, error) {
		q := q
		q.Type = t
		return svc.Search(ctx, q)
	}
	switch m.active {
	case tabPosts:
		if m.query == "" {
			return m.posts.Load(func(ctx context.Context) ([]domain.Status, error) {
				return svc.TrendingStatuses(ctx, trendLimit)
			})
		}
		return m.posts.Load(func(ctx context.Context) ([]domain.Status, error) {
			res, err := search(ctx, domain.SearchStatuses)
			return res.Statuses, err
		})
	case tabAccounts:
		if m.query == "" {
			return m.accounts.Load(func(context.Context) ([]domain.Account, error) { return nil, nil })
		}
		return m.accounts.Load(func(ctx context.Context) ([]domain.Account, error) {
			res, err := search(ctx, domain.SearchAccounts)
			return res.Accounts, err
		})
	default:
		if m.query == "" {
			return m.tags.Load(func(ctx context.Context) ([]domain.Hashtag, error) {
				return svc.TrendingTags(ctx, trendLimit)
			})
		}
		return m.tags.Load(func(ctx context.Context) ([]domain.Hashtag, error) {
			res, err := search(ctx, domain.SearchHashtags)
			return res.Hashtags, err
		})
	}
}

func (m Model) emptyMessage(t tab) string {
	switch {
	case t == tabPosts && m.query == "":
		return "Nothing is trending right now"
	case t == tabPosts:
		return fmt.Sprintf("No posts match %q", m.query)
	case t == tabAccounts && m.query == "":
		return "Press / to search for accounts"
	case t == tabAccounts:
		return fmt.Sprintf("No accounts match %q", m.query)
	case m.query == "":
		return "No hashtags are trending right now"
	}
	return fmt.Sprintf("No hashtags match %q", m.query)
}

func (m Model) Update(msg tea.Msg) (common.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case common.LoadedMsg[domain.Status]:
		m.posts.Resolve(msg, m.emptyMessage(tabPosts))
		return m, nil
	case common.LoadedMsg[domain.Account]:
		m.accounts.Resolve(msg, m.emptyMessage(tabAccounts))
		return m, nil
	case common.LoadedMsg[domain.Hashtag]:
		m.tags.Resolve(msg, m.emptyMessage(tabHashtags))
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

func (m Model) phase() viewmodel.Phase {
	switch m.active {
	case tabPosts:
		return m.posts.Phase()
	case tabAccounts:
		return m.accounts.Phase()
	}
	return m.tags.Phase()
}

func (m *Model) move(delta int) {
	switch m.active {
	case tabPosts:
		m.posts.Move(delta)
	case tabAccounts:
		m.accounts.Move(delta)
	default:
		m.tags.Move(delta)
	}
}

func (m *Model) top() {
	switch m.active {
	case tabPosts:
		m.posts.Top()
	case tabAccounts:
		m.accounts.Top()
	default:
		m.tags.Top()
	}
}

func (m Model) open() tea.Cmd {
	switch m.active {
	case tabPosts:
		if st, ok := m.posts.Selected(); ok {
			return common.Cmd(common.OpenThreadMsg{Status: st})
		}
	case tabAccounts:
		if a, ok := m.accounts.Selected(); ok {
			return common.Cmd(common.OpenProfileMsg{Account: a})
		}
	default:
		if h, ok := m.tags.Selected(); ok {
			q := domain.TimelineQuery{Kind: domain.TimelineHashtag, Hashtag: h.Name}
			return common.Cmd(common.OpenTimelineMsg{Query: q, Title: "#" + h.Name})
		}
	}
	return nil
}

func (m Model) handleKey(msg tea.KeyMsg) (common.Screen, tea.Cmd) {
	if m.prompt.Active() {
		q, submitted, cmd := m.prompt.Update(msg)
		if !submitted {
			return m, cmd
		}
		m.query = q
		return m, m.load()
	}

	switch {
	case key.Matches(msg, m.keys.Back):
		if m.query != "" {
			m.query = ""
			return m, m.load()
		}
		return m, common.Cmd(common.BackMsg{})
	case key.Matches(msg, m.keys.Search):
		return m, m.prompt.Open("Search", promptSearch, m.query)
	case key.Matches(msg, m.keys.NextTab):
		m.active = (m.active + 1) % tab(len(tabLabels))
		return m, m.load()
	case key.Matches(msg, m.keys.PrevTab):
		m.active = (m.active + tab(len(tabLabels)) - 1) % tab(len(tabLabels))
		return m, m.load()
	case key.Matches(msg, m.keys.Refresh):
		return m, m.load()
	case key.Matches(msg, m.keys.Up):
		m.move(-1)
	case key.Matches(msg, m.keys.Down):
		m.move(1)
	case key.Matches(msg, m.keys.Top):
		m.top()
	case key.Matches(msg, m.keys.Enter):
		if m.phase() == viewmodel.PhaseError {
			return m, m.load()
		}
		return m, m.open()
	case key.Matches(msg, m.keys.Profile) && m.active == tabPosts:
		if st, ok := m.posts.Selected(); ok {
			return m, common.Cmd(common.OpenProfileMsg{Account: st.Target().Account})
		}
	}
	return m, nil
}

func (m Model) View() string {
	var b strings.Builder
	parts := make([]string, len(tabLabels))
	for i, label := range tabLabels {
		if tab(i) == m.active {
			parts[i] = common.TabActiveStyle.Render(label)
		} else {
			parts[i] = common.TabInactiveStyle.Render(label)
		}
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, parts...) + "\n")
	if m.query != "" {
		b.WriteString(common.MutedStyle.Render(fmt.Sprintf("Results for %q · esc to clear", m.query)) + "\n\n")
	} else {
		b.WriteString(common.MutedStyle.Render("Trending on "+m.deps.Session.Domain()) + "\n\n")
	}

	avail := max(m.height-chrome, 3)
	noun := strings.ToLower(tabLabels[m.active])
	switch m.active {
	case tabPosts:
		if s := common.PhaseView(m.posts.Screen(), m.spinner, noun); s != "" {
			b.WriteString(s)
			break
		}
		rows := make([]string, 0, len(m.posts.Items()))
		for _, st := range m.posts.Items() {
			rows = append(rows, m.renderPost(st))
		}
		b.WriteString(common.RenderRows(rows, m.posts.Cursor(), avail))
	case tabAccounts:
		if s := common.PhaseView(m.accounts.Screen(), m.spinner, noun); s != "" {
			b.WriteString(s)
			break
		}
		rows := make([]string, 0, len(m.accounts.Items()))
		for _, a := range m.accounts.Items() {
			rows = append(rows, common.AuthorStyle.Render(common.DisplayName(a))+" "+common.HandleStyle.Render(common.Handle(a))+
				common.MutedStyle.Render(fmt.Sprintf("  %d followers", a.FollowersCount)))
		}
		b.WriteString(common.RenderRows(rows, m.accounts.Cursor(), avail))
	default:
		if s := common.PhaseView(m.tags.Screen(), m.spinner, noun); s != "" {
			b.WriteString(s)
			break
		}
		rows := make([]string, 0, len(m.tags.Items()))
		for _, h := range m.tags.Items() {
			rows = append(rows, renderTag(h))
		}
		b.WriteString(common.RenderRows(rows, m.tags.Cursor(), avail))
	}

	b.WriteString("\n")
	if m.prompt.Active() {
		b.WriteString(m.prompt.View())
	} else {
		k := m.keys
		b.WriteString(common.StatusBarStyle.Render(common.HelpLine(k.Up, k.Down, k.Enter, k.Search, k.NextTab, k.Refresh)))
	}
	return b.String()
}

func (m Model) renderPost(st domain.Status) string {
	t := st.Target()
	line := common.AuthorStyle.Render(common.DisplayName(t.Account)) + " "
	excerpt := strings.Join(strings.Fields(t.Content), " ")
	if t.SpoilerText != "" {
		excerpt = "CW: " + t.SpoilerText
	}
	line += common.MutedStyle.Render(common.Truncate(excerpt, max(m.width-lipgloss.Width(line)-12, 10)))
	return line + " " + common.TimestampStyle.Render(common.RelativeTime(t.CreatedAt, m.now()))
}

func renderTag(h domain.Hashtag) string {
	row := common.AuthorStyle.Render("#" + h.Name)
	uses, people := 0, 0
	for _, d := range h.History {
		uses += d.Uses
		people += d.Accounts
	}
	if len(h.History) > 0 {
		row += common.MutedStyle.Render(fmt.Sprintf("  %d posts by %d people", uses, people))
	}
	if h.Following {
		row += common.SuccessStyle.Render("  following")
	}
	return row
}
