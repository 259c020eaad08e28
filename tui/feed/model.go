// Package feed is the timeline screen: tabs over the built-in timelines, or a
// single hashtag or list timeline opened from another screen.
package feed

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/CrestNiraj12/kabinka/app"
	"github.com/CrestNiraj12/kabinka/domain"
	"github.com/CrestNiraj12/kabinka/tui/common"
	"github.com/CrestNiraj12/kabinka/tui/statuses"
	"github.com/CrestNiraj12/kabinka/viewmodel"
)

// Deps are the services the feed reads from.
type Deps struct {
	Timeline app.TimelineService
	Statuses app.StatusService
	Session  app.Session
	Prefs    app.Preferences
}

type tab struct {
	label string
	query domain.TimelineQuery
}

var defaultTabs = []tab{
	{label: "Home", query: domain.TimelineQuery{Kind: domain.TimelineHome}},
	{label: "Local", query: domain.TimelineQuery{Kind: domain.TimelineLocal}},
	{label: "Federated", query: domain.TimelineQuery{Kind: domain.TimelineFederated}},
	{label: "Bookmarks", query: domain.TimelineQuery{Kind: domain.TimelineBookmarks}},
	{label: "Favourites", query: domain.TimelineQuery{Kind: domain.TimelineFavourites}},
}

// chrome is the number of lines taken by the header and footer.
const chrome = 6

// Model holds the state for the feed (timeline) view.
type Model struct {
	deps    Deps
	tl      viewmodel.Timeline
	list    statuses.List
	tabs    []tab
	active  int
	fixed   bool
	title   string
	keys    common.KeyMap
	spinner spinner.Model
	width   int
	height  int
	initCmd tea.Cmd
}

// New returns the tabbed timeline screen starting on q. A hashtag or list
// query gets its own tab after the built-in ones.
func New(deps Deps, q domain.TimelineQuery) Model {
	tabs := append([]tab(nil), defaultTabs...)
	active := -1
	for i, t := range tabs {
		if t.query.Key() == q.Key() {
			active = i
		}
	}
	if active < 0 {
		tabs = append(tabs, tab{label: tabLabel(q), query: q})
		active = len(tabs) - 1
	}
	m := newModel(deps, tabs, active)
	m.title = common.SectionTimelines.String()
	return m
}

// NewFixed returns a screen showing only q, e.g. a list opened from the lists screen.
func NewFixed(deps Deps, q domain.TimelineQuery, title string) Model {
	if title == "" {
		title = tabLabel(q)
	}
	m := newModel(deps, []tab{{label: title, query: q}}, 0)
	m.fixed = true
	m.title = title
	return m
}

func newModel(deps Deps, tabs []tab, active int) Model {
	m := Model{
		deps:    deps,
		tl:      viewmodel.NewTimeline(deps.Timeline, deps.Statuses, deps.Session, tabs[active].query),
		list:    statuses.New(statuses.Deps{Statuses: deps.Statuses, Session: deps.Session, Prefs: deps.Prefs}),
		tabs:    tabs,
		active:  active,
		keys:    common.DefaultKeyMap(),
		spinner: common.NewSpinner(),
		width:   80,
		height:  24,
	}
	m.initCmd = m.tl.Load(tabs[active].query)
	return m
}

func tabLabel(q domain.TimelineQuery) string {
	switch q.Kind {
	case domain.TimelineHashtag:
		return "#" + q.Hashtag
	case domain.TimelineList:
		return "List"
	}
	return q.Kind.String()
}

// Init starts the first fetch.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.initCmd, m.spinner.Tick)
}

// Timeline exposes the view-model, mostly for tests.
func (m Model) Timeline() viewmodel.Timeline { return m.tl }

// Cursor returns the index of the selected status.
func (m Model) Cursor() int { return m.list.Cursor() }

func (m Model) Title() string   { return m.title }
func (m Model) Capturing() bool { return false }

// Close cancels the feed's requests.
func (m Model) Close() {
	m.tl.Close()
	m.list.Close()
}

func (m Model) listHeight() int {
	return max(m.height-chrome, 3)
}

// Update handles messages for the feed view.
func (m Model) Update(msg tea.Msg) (common.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.list.SetWidth(msg.Width)
		m.list.Scroll(m.tl.Statuses(), m.listHeight())
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case viewmodel.TimelineLoadedMsg, viewmodel.InteractionResultMsg:
		cmd := m.tl.Update(msg)
		m.list.Clamp(len(m.tl.Statuses()))
		return m, cmd

	case common.StatusPublishedMsg:
		m.tl.Upsert(msg.Status)
		return m, nil

	case common.StatusDeletedMsg:
		mine := m.list.Deleted(msg.ID)
		if msg.Err == nil {
			m.tl.Remove(msg.ID)
			m.list.Clamp(len(m.tl.Statuses()))
		}
		if !mine {
			return m, nil
		}
		if msg.Err != nil {
			return m, common.NoticeErr("Could not delete", msg.Err)
		}
		return m, common.Notice("Post deleted")

	case tea.KeyMsg:
		var cmd tea.Cmd
		m, cmd = m.handleKey(msg)
		m.list.Scroll(m.tl.Statuses(), m.listHeight())
		return m, cmd
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	items := m.tl.Statuses()
	if m.list.Confirming() {
		cmd, _ := m.list.HandleKey(msg, items, &m.tl)
		return m, cmd
	}

	screen := m.tl.Screen()
	switch {
	case key.Matches(msg, m.keys.Back) && m.fixed:
		return m, common.Cmd(common.BackMsg{})
	case key.Matches(msg, m.keys.NextTab) && !m.fixed:
		return m.switchTab(m.active + 1)
	case key.Matches(msg, m.keys.PrevTab) && !m.fixed:
		return m.switchTab(m.active - 1)
	case key.Matches(msg, m.keys.Refresh):
		return m, m.tl.Refresh()
	case key.Matches(msg, m.keys.LoadMore):
		return m, m.tl.LoadMore()
	case key.Matches(msg, m.keys.Enter) && screen.Phase() == viewmodel.PhaseEmpty && screen.LoginRequired():
		return m, common.Cmd(common.LoginMsg{})
	case key.Matches(msg, m.keys.Enter) && screen.Phase() == viewmodel.PhaseError:
		return m, m.tl.Retry()
	}

	cmd, _ := m.list.HandleKey(msg, items, &m.tl)
	if key.Matches(msg, m.keys.Down) && m.list.Cursor() == len(items)-1 {
		cmd = tea.Batch(cmd, m.tl.LoadMore())
	}
	return m, cmd
}

func (m Model) switchTab(i int) (Model, tea.Cmd) {
	n := len(m.tabs)
	m.active = ((i % n) + n) % n
	m.list.Reset()
	return m, m.tl.Load(m.tabs[m.active].query)
}
