package viewmodel

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/CrestNiraj12/kabinka/app"
	"github.com/CrestNiraj12/kabinka/domain"
)

// TimelinePageSize is how many statuses one fetch asks for.
const TimelinePageSize = 40

// TimelineLoadedMsg carries a timeline fetch result.
type TimelineLoadedMsg struct {
	Key      string
	Seq      int
	Page     bool // Result of LoadMore
	Statuses []domain.Status
	Next     string
	Err      error
}

// Timeline holds the statuses of one timeline and the interactions on them.
type Timeline struct {
	timeline app.TimelineService
	statuses app.StatusService
	session  app.Session

	query       domain.TimelineQuery
	screen      Screen[domain.Status]
	inter       Interactions
	hasMore     bool
	loadingMore bool
	next        string
	notice      string

	ctx    context.Context
	cancel context.CancelFunc
}

// NewTimeline returns a timeline in the Loading state. Call Load to fetch.
func NewTimeline(timeline app.TimelineService, statuses app.StatusService, session app.Session, q domain.TimelineQuery) Timeline {
	ctx, cancel := context.WithCancel(context.Background())
	return Timeline{
		timeline: timeline,
		statuses: statuses,
		session:  session,
		query:    q,
		inter:    NewInteractions(),
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Query returns the timeline being shown.
func (t Timeline) Query() domain.TimelineQuery { return t.query }

// Screen returns the load state and statuses.
func (t Timeline) Screen() Screen[domain.Status] { return t.screen }

// Statuses returns the loaded statuses.
func (t Timeline) Statuses() []domain.Status { return t.screen.Items() }

// HasMore reports whether LoadMore may return older statuses.
func (t Timeline) HasMore() bool { return t.hasMore }

// LoadingMore reports whether an older page is being fetched.
func (t Timeline) LoadingMore() bool { return t.loadingMore }

// Notice returns the latest transient message, such as a failed toggle.
func (t Timeline) Notice() string { return t.notice }

// InFlight reports whether a toggle on the target id awaits a response.
func (t Timeline) InFlight(id string, kind domain.Interaction) bool {
	return t.inter.InFlight(id, kind)
}

// Load switches to q and fetches its first page. Timelines that need an
// account enter Empty with a login prompt when browsing anonymously.
func (t *Timeline) Load(q domain.TimelineQuery) tea.Cmd {
	q.Limit = TimelinePageSize
	q.MaxID = ""
	t.query = q
	t.hasMore = false
	t.loadingMore = false
	t.next = ""
	t.notice = ""
	seq := t.screen.Begin()

	if q.Kind.RequiresAuth() && !t.authenticated() {
		t.screen.SetEmpty(loginMessage(q), true)
		return nil
	}

	svc, ctx, key := t.timeline, t.ctx, q.Key()
	return func() tea.Msg {
		statuses, next, err := svc.Fetch(ctx, q)
		return TimelineLoadedMsg{Key: key, Seq: seq, Statuses: statuses, Next: next, Err: err}
	}
}

// Refresh reloads the current timeline.
func (t *Timeline) Refresh() tea.Cmd {
	return t.Load(t.query)
}

// Retry leaves the Error state by reloading.
func (t *Timeline) Retry() tea.Cmd {
	if t.screen.Phase() != PhaseError {
		return nil
	}
	return t.Refresh()
}

// LoadMore fetches the next older page. The cursor from the server's Link
// header wins over the id of the last loaded status.
func (t *Timeline) LoadMore() tea.Cmd {
	items := t.screen.Items()
	if t.screen.Phase() != PhaseContent || t.loadingMore || !t.hasMore || len(items) == 0 {
		return nil
	}
	t.loadingMore = true
	q := t.query
	q.MaxID = t.next
	if q.MaxID == "" {
		q.MaxID = items[len(items)-1].ID
	}
	svc, ctx, key, seq := t.timeline, t.ctx, q.Key(), t.screen.Seq()
	return func() tea.Msg {
		statuses, next, err := svc.Fetch(ctx, q)
		return TimelineLoadedMsg{Key: key, Seq: seq, Page: true, Statuses: statuses, Next: next, Err: err}
	}
}

// ToggleFavorite flips the favourite flag of the status named by id.
func (t *Timeline) ToggleFavorite(id string) tea.Cmd {
	return t.toggle(id, domain.Favourite)
}

// ToggleReblog flips the boost flag of the status named by id.
func (t *Timeline) ToggleReblog(id string) tea.Cmd {
	return t.toggle(id, domain.Reblog)
}

// ToggleBookmark flips the bookmark flag of the status named by id.
func (t *Timeline) ToggleBookmark(id string) tea.Cmd {
	return t.toggle(id, domain.Bookmark)
}

func (t *Timeline) toggle(id string, kind domain.Interaction) tea.Cmd {
	if !t.authenticated() || t.screen.Phase() != PhaseContent {
		return nil
	}
	next, req, ok := t.inter.Begin(t.screen.Items(), id, kind)
	if !ok {
		return nil
	}
	t.notice = ""
	t.screen.SetItems(next)
	return t.inter.Send(t.ctx, t.statuses, req)
}

// Upsert shows a status the user just published or edited.
func (t *Timeline) Upsert(st domain.Status) {
	replaced := false
	t.screen.Map(func(s domain.Status) domain.Status {
		if s.ID == st.ID {
			replaced = true
			return st
		}
		return s
	})
	if !replaced && t.query.Kind == domain.TimelineHome {
		t.screen.Prepend(st)
	}
}

// Remove drops a deleted status and boosts of it.
func (t *Timeline) Remove(id string) {
	t.screen.Remove(func(s domain.Status) bool {
		return s.ID == id || (s.Reblog != nil && s.Reblog.ID == id)
	}, emptyMessage(t.query, t.authenticated(), t.session.Domain()))
}

// Update folds fetch and interaction results into the timeline.
func (t *Timeline) Update(msg tea.Msg) tea.Cmd {
	if t.ctx.Err() != nil {
		return nil
	}
	switch msg := msg.(type) {
	case TimelineLoadedMsg:
		if msg.Key != t.query.Key() || msg.Seq != t.screen.Seq() {
			return nil
		}
		if msg.Page {
			t.applyPage(msg)
			return nil
		}
		empty := emptyMessage(t.query, t.authenticated(), t.session.Domain())
		t.screen.Resolve(msg.Seq, msg.Statuses, msg.Err, empty)
		t.next = msg.Next
		t.hasMore = msg.Err == nil && t.morePages(msg)
		return nil

	case InteractionResultMsg:
		next := t.inter.Settle(t.screen.Items(), msg)
		if t.screen.Phase() == PhaseContent {
			t.screen.SetItems(next)
		}
		if msg.Err != nil && msg.Owner == t.inter.owner {
			t.notice = fmt.Sprintf("Could not %s: %v", msg.Kind, msg.Err)
		}
		return nil
	}
	return nil
}

func (t *Timeline) applyPage(msg TimelineLoadedMsg) {
	t.loadingMore = false
	if msg.Err != nil {
		t.notice = "Could not load more: " + msg.Err.Error()
		return
	}
	seen := make(map[string]struct{}, len(t.screen.Items()))
	for _, s := range t.screen.Items() {
		seen[s.ID] = struct{}{}
	}
	added := t.screen.Append(msg.Statuses, func(s domain.Status) bool {
		_, ok := seen[s.ID]
		return ok
	})
	t.next = msg.Next
	t.hasMore = added > 0 && t.morePages(msg)
}

// morePages decides from a fetched page whether an older one exists.
func (t Timeline) morePages(msg TimelineLoadedMsg) bool {
	if t.query.Kind.LinkPaged() {
		return msg.Next != ""
	}
	return len(msg.Statuses) >= t.query.Limit
}

// Close cancels in-flight requests; later results are ignored.
func (t *Timeline) Close() {
	if t.cancel != nil {
		t.cancel()
	}
}

func (t Timeline) authenticated() bool {
	if t.session == nil {
		return false
	}
	_, ok := t.session.Current()
	return ok
}

func loginMessage(q domain.TimelineQuery) string {
	switch q.Kind {
	case domain.TimelineBookmarks:
		return "Please log in to view your bookmarks"
	case domain.TimelineFavourites:
		return "Please log in to view your favourites"
	case domain.TimelineList:
		return "Please log in to view your lists"
	default:
		return "Please log in to view your home timeline"
	}
}

func emptyMessage(q domain.TimelineQuery, authenticated bool, instance string) string {
	if q.Kind.RequiresAuth() && !authenticated {
		return loginMessage(q)
	}
	switch q.Kind {
	case domain.TimelineHome:
		return "Your home timeline is quiet. Follow some accounts to see their posts here!"
	case domain.TimelineLocal:
		return fmt.Sprintf("No public posts from %s yet", instance)
	case domain.TimelineFederated:
		return "No federated posts available yet"
	case domain.TimelineBookmarks:
		return "No bookmarks yet. Bookmark posts to see them here!"
	case domain.TimelineFavourites:
		return "No favourites yet. Favourite posts to see them here!"
	case domain.TimelineHashtag:
		return fmt.Sprintf("No posts tagged #%s yet", q.Hashtag)
	case domain.TimelineList:
		return "This list has no posts yet"
	}
	return "Nothing to show"
}
