// Package tui is the root Bubble Tea model. It owns a persistent timeline
// feed, the screen of the active section and a stack of screens pushed on
// top of them (threads, profiles, the composer).
package tui

import (
	"log/slog"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/CrestNiraj12/kabinka/app"
	"github.com/CrestNiraj12/kabinka/domain"
	"github.com/CrestNiraj12/kabinka/tui/common"
	"github.com/CrestNiraj12/kabinka/tui/compose"
	"github.com/CrestNiraj12/kabinka/tui/explore"
	"github.com/CrestNiraj12/kabinka/tui/feed"
	"github.com/CrestNiraj12/kabinka/tui/filters"
	"github.com/CrestNiraj12/kabinka/tui/hashtags"
	"github.com/CrestNiraj12/kabinka/tui/lists"
	"github.com/CrestNiraj12/kabinka/tui/notifications"
	"github.com/CrestNiraj12/kabinka/tui/profile"
	"github.com/CrestNiraj12/kabinka/tui/server"
	"github.com/CrestNiraj12/kabinka/tui/settings"
	"github.com/CrestNiraj12/kabinka/tui/thread"
)

// Services are the collaborators bound to the active account. They are
// rebuilt with Deps.Connect whenever the session changes.
type Services struct {
	Timeline      app.TimelineService
	Statuses      app.StatusService
	Media         app.MediaService
	Accounts      app.AccountService
	Lists         app.ListService
	Filters       app.FilterService
	Tags          app.TagService
	Notifications app.NotificationService
	Search        app.SearchService
}

// Session is what the screens need from the session manager.
type Session interface {
	app.Session
	server.Instances
	settings.Accounts
}

// Deps holds all dependencies the TUI needs. Plain struct, not a DI container.
type Deps struct {
	Connect func() Services
	Session Session
	Prefs   app.Preferences
	Editor  app.Editor
	Query   domain.TimelineQuery
	Log     *slog.Logger
}

// chrome is the number of lines the root draws around the active screen.
const chrome = 3

// App is the root Bubble Tea model. It routes between screens.
type App struct {
	deps    Deps
	svc     Services
	keys    common.KeyMap
	feed    common.Screen
	section common.Section
	root    common.Screen // nil while the feed is the section screen
	stack   []common.Screen
	notice  common.NoticeMsg
	width   int
	height  int
	login   bool
}

// NewApp creates the root model with all dependencies wired.
func NewApp(deps Deps) App {
	if deps.Log == nil {
		deps.Log = slog.Default()
	}
	a := App{
		deps:   deps,
		svc:    deps.Connect(),
		keys:   common.DefaultKeyMap(),
		width:  80,
		height: 24,
	}
	a.feed = a.newFeed()
	return a
}

// Init starts the feed.
func (a App) Init() tea.Cmd {
	return a.feed.Init()
}

// LoginRequested reports whether the program quit to run the browser login.
func (a App) LoginRequested() bool { return a.login }

// Top returns the screen receiving keys.
func (a App) Top() common.Screen {
	if n := len(a.stack); n > 0 {
		return a.stack[n-1]
	}
	if a.root != nil {
		return a.root
	}
	return a.feed
}

// Section returns the active section.
func (a App) Section() common.Section { return a.section }

// Close cancels the requests of every screen.
func (a App) Close() {
	for _, s := range a.screens() {
		s.Close()
	}
}

func (a App) screens() []common.Screen {
	out := []common.Screen{a.feed}
	if a.root != nil {
		out = append(out, a.root)
	}
	return append(out, a.stack...)
}

func (a App) authenticated() bool {
	_, ok := a.deps.Session.Current()
	return ok
}

func (a App) newFeed() common.Screen {
	return feed.New(feed.Deps{
		Timeline: a.svc.Timeline,
		Statuses: a.svc.Statuses,
		Session:  a.deps.Session,
		Prefs:    a.deps.Prefs,
	}, a.deps.Query)
}

func (a App) newSection(s common.Section) common.Screen {
	switch s {
	case common.SectionNotifications:
		return notifications.New(notifications.Deps{Notifications: a.svc.Notifications, Session: a.deps.Session})
	case common.SectionLists:
		return lists.New(lists.Deps{Lists: a.svc.Lists, Session: a.deps.Session})
	case common.SectionFilters:
		return filters.New(filters.Deps{Filters: a.svc.Filters, Session: a.deps.Session})
	case common.SectionHashtags:
		return hashtags.New(hashtags.Deps{Tags: a.svc.Tags, Session: a.deps.Session})
	case common.SectionServer:
		return server.New(a.deps.Session)
	case common.SectionSettings:
		return settings.New(settings.Deps{Prefs: a.deps.Prefs, Accounts: a.deps.Session})
	case common.SectionExplore:
		return explore.New(explore.Deps{Search: a.svc.Search, Session: a.deps.Session})
	}
	return nil
}

func (a App) sized(s common.Screen) common.Screen {
	s, _ = s.Update(tea.WindowSizeMsg{Width: a.width, Height: max(a.height-chrome, 5)})
	return s
}

func (a App) push(s common.Screen) (App, tea.Cmd) {
	s = a.sized(s)
	a.stack = append(a.stack, s)
	a.notice = common.NoticeMsg{}
	return a, s.Init()
}

func (a App) pop() App {
	n := len(a.stack)
	if n == 0 {
		return a
	}
	a.stack[n-1].Close()
	a.stack = a.stack[:n-1]
	return a
}

func (a App) clearStack() App {
	for len(a.stack) > 0 {
		a = a.pop()
	}
	return a
}

func (a App) switchSection(s common.Section) (App, tea.Cmd) {
	a = a.clearStack()
	if a.root != nil {
		a.root.Close()
		a.root = nil
	}
	a.section = s
	if s == common.SectionTimelines {
		return a, nil
	}
	a.root = a.sized(a.newSection(s))
	a.deps.Log.Debug("section", "name", s.String())
	return a, a.root.Init()
}

// reconnect rebuilds every screen against the new session.
func (a App) reconnect() (App, tea.Cmd) {
	a.Close()
	a.stack, a.root = nil, nil
	a.svc = a.deps.Connect()
	a.feed = a.sized(a.newFeed())
	cmds := []tea.Cmd{a.feed.Init()}
	if a.section != common.SectionTimelines {
		a.root = a.sized(a.newSection(a.section))
		cmds = append(cmds, a.root.Init())
	}
	return a, tea.Batch(cmds...)
}

// Update handles messages and routes them to screens.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width, a.height = msg.Width, msg.Height
		return a.broadcast(tea.WindowSizeMsg{Width: msg.Width, Height: max(msg.Height-chrome, 5)})

	case common.NoticeMsg:
		a.notice = msg
		return a, nil

	case tea.KeyMsg:
		return a.handleKey(msg)

	case common.BackMsg:
		if len(a.stack) > 0 {
			return a.pop(), nil
		}
		if a.root != nil {
			return a.switchSection(common.SectionTimelines)
		}
		return a, nil

	case common.OpenThreadMsg:
		return a.push(thread.New(thread.Deps{
			Timeline: a.svc.Timeline,
			Statuses: a.svc.Statuses,
			Session:  a.deps.Session,
			Prefs:    a.deps.Prefs,
		}, msg.Status))

	case common.OpenProfileMsg:
		return a.push(profile.New(profile.Deps{
			Accounts: a.svc.Accounts,
			Statuses: a.svc.Statuses,
			Session:  a.deps.Session,
			Prefs:    a.deps.Prefs,
		}, msg.Account))

	case common.OpenTimelineMsg:
		return a.push(feed.NewFixed(feed.Deps{
			Timeline: a.svc.Timeline,
			Statuses: a.svc.Statuses,
			Session:  a.deps.Session,
			Prefs:    a.deps.Prefs,
		}, msg.Query, msg.Title))

	case common.OpenMembersMsg:
		return a.push(lists.NewMembers(lists.MembersDeps{
			Lists:   a.svc.Lists,
			Search:  a.svc.Search,
			Session: a.deps.Session,
		}, msg.List))

	case common.OpenComposeMsg:
		if !a.authenticated() {
			a.notice = common.NoticeMsg{Text: "Log in to post"}
			return a, nil
		}
		return a.push(compose.New(compose.Deps{
			Statuses: a.svc.Statuses,
			Media:    a.svc.Media,
			Session:  a.deps.Session,
			Editor:   a.deps.Editor,
			Prefs:    a.deps.Prefs,
		}, msg))

	case common.LoginMsg:
		a.login = true
		a.deps.Log.Info("login requested")
		return a, tea.Quit

	case common.SessionChangedMsg:
		a.deps.Log.Info("session changed", "domain", a.deps.Session.Domain())
		return a.reconnect()
	}

	return a.broadcast(msg)
}

func (a App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, a.keys.ForceQuit) {
		return a, tea.Quit
	}
	top := a.Top()
	if !top.Capturing() {
		a.notice = common.NoticeMsg{}
		switch {
		case key.Matches(msg, a.keys.Quit) && len(a.stack) == 0:
			return a, tea.Quit
		case key.Matches(msg, a.keys.Compose):
			return a.Update(common.OpenComposeMsg{Kind: common.ComposeNew})
		case key.Matches(msg, a.keys.OwnProfile):
			cur, ok := a.deps.Session.Current()
			if !ok {
				a.notice = common.NoticeMsg{Text: "Log in to see your profile"}
				return a, nil
			}
			return a.Update(common.OpenProfileMsg{Account: domain.Account{ID: cur.AccountID, Acct: cur.Username}})
		}
		if s, ok := a.keys.SectionFor(msg.String()); ok {
			return a.switchSection(s)
		}
	}

	next, cmd := top.Update(msg)
	a = a.replaceTop(next)
	return a, cmd
}

func (a App) replaceTop(s common.Screen) App {
	switch {
	case len(a.stack) > 0:
		a.stack[len(a.stack)-1] = s
	case a.root != nil:
		a.root = s
	default:
		a.feed = s
	}
	return a
}

// broadcast hands msg to every screen so results of requests started by a
// covered screen still land.
func (a App) broadcast(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	var cmd tea.Cmd
	a.feed, cmd = a.feed.Update(msg)
	cmds = append(cmds, cmd)
	if a.root != nil {
		a.root, cmd = a.root.Update(msg)
		cmds = append(cmds, cmd)
	}
	stack := make([]common.Screen, len(a.stack))
	for i, s := range a.stack {
		stack[i], cmd = s.Update(msg)
		cmds = append(cmds, cmd)
	}
	a.stack = stack
	return a, tea.Batch(cmds...)
}

// View renders the title bar, the top screen and the status line.
func (a App) View() string {
	top := a.Top()
	header := common.AppTitleStyle.Render(domain.AppTitle) + " " + common.HeaderStyle.Render(top.Title())
	header += common.MutedStyle.Render("  " + a.account())
	s := header + "\n" + top.View()
	if a.notice.Text != "" {
		style := common.SuccessStyle
		if a.notice.Error {
			style = common.ErrorStyle
		}
		s += "\n" + style.Render(a.notice.Text)
	}
	return s
}

func (a App) account() string {
	if cur, ok := a.deps.Session.Current(); ok {
		return "@" + cur.Username + "@" + cur.Domain
	}
	return "anonymous · " + a.deps.Session.Domain()
}
