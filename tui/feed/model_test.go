package feed

import (
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/CrestNiraj12/kabinka/domain"
	"github.com/CrestNiraj12/kabinka/tui/common"
	"github.com/CrestNiraj12/kabinka/tui/tuitest"
	"github.com/CrestNiraj12/kabinka/viewmodel"
)

type fixture struct {
	timelines *tuitest.Timelines
	statuses  *tuitest.Statuses
	session   *tuitest.Session
	prefs     *tuitest.Prefs
}

func newFixture(n int) fixture {
	return fixture{
		timelines: &tuitest.Timelines{Result: tuitest.StatusList("s", n)},
		statuses:  &tuitest.Statuses{},
		session:   tuitest.LoggedIn(),
		prefs:     &tuitest.Prefs{},
	}
}

func (f fixture) deps() Deps {
	return Deps{Timeline: f.timelines, Statuses: f.statuses, Session: f.session, Prefs: f.prefs}
}

// feed applies msgs in order and returns the resulting model and the
// messages produced by the last command.
func feed(t *testing.T, m Model, msgs ...tea.Msg) (Model, []tea.Msg) {
	t.Helper()
	var out []tea.Msg
	for _, msg := range msgs {
		next, cmd := m.Update(msg)
		m = next.(Model)
		out = tuitest.Run(cmd)
	}
	return m, out
}

func loaded(t *testing.T, f fixture, q domain.TimelineQuery) Model {
	t.Helper()
	m := New(f.deps(), q)
	msgs := tuitest.Run(m.initCmd)
	m, _ = feed(t, m, msgs...)
	if m.Timeline().Screen().Phase() != viewmodel.PhaseContent {
		t.Fatalf("expected content, got %v", m.Timeline().Screen().Phase())
	}
	return m
}

func TestNewStartsOnRequestedTab(t *testing.T) {
	f := newFixture(3)
	m := New(f.deps(), domain.TimelineQuery{Kind: domain.TimelineLocal})
	if m.tabs[m.active].label != "Local" {
		t.Fatalf("expected Local tab, got %q", m.tabs[m.active].label)
	}
	if !strings.Contains(m.View(), "Loading Local") {
		t.Fatalf("expected loading view, got:\n%s", m.View())
	}

	tagged := New(f.deps(), domain.TimelineQuery{Kind: domain.TimelineHashtag, Hashtag: "golang"})
	if len(tagged.tabs) != len(defaultTabs)+1 || tagged.tabs[tagged.active].label != "#golang" {
		t.Fatalf("expected extra hashtag tab, got %+v", tagged.tabs)
	}
}

func TestCursorMovesAndAutoLoadsMoreAtEnd(t *testing.T) {
	f := newFixture(viewmodel.TimelinePageSize)
	m := loaded(t, f, domain.TimelineQuery{Kind: domain.TimelineLocal})

	m, _ = feed(t, m, tuitest.Key("j"), tuitest.Key("j"), tuitest.Key("k"))
	if m.Cursor() != 1 {
		t.Fatalf("expected cursor 1, got %d", m.Cursor())
	}
	for range viewmodel.TimelinePageSize {
		m, _ = feed(t, m, tuitest.Key("j"))
	}
	if m.Cursor() != viewmodel.TimelinePageSize-1 {
		t.Fatalf("cursor should stop at the last status, got %d", m.Cursor())
	}
	if !m.Timeline().LoadingMore() {
		t.Fatal("reaching the end should load the next page")
	}
	last := f.timelines.Queries[len(f.timelines.Queries)-1]
	if last.MaxID == "" {
		t.Fatalf("expected max_id on page request, got %+v", last)
	}
}

func TestFailedFavouriteRollsBack(t *testing.T) {
	f := newFixture(2)
	f.statuses.InteractErr = errors.New("nope")
	m := loaded(t, f, domain.TimelineQuery{Kind: domain.TimelineLocal})
	before := m.Timeline().Statuses()[0]

	m, msgs := feed(t, m, tuitest.Key("f"))
	if !m.Timeline().Statuses()[0].Favourited {
		t.Fatal("expected optimistic favourite")
	}
	if len(f.statuses.Toggles) != 1 || f.statuses.Toggles[0] != domain.Favourite {
		t.Fatalf("expected one favourite call, got %v", f.statuses.Toggles)
	}
	m, _ = feed(t, m, msgs...)
	got := m.Timeline().Statuses()[0]
	if got.Favourited != before.Favourited || got.FavouritesCount != before.FavouritesCount {
		t.Fatalf("expected rollback to %+v, got %+v", before, got)
	}
	if !strings.Contains(m.View(), "Could not favourite") {
		t.Fatalf("expected failure notice, got:\n%s", m.View())
	}
}

func TestAnonymousToggleShowsNotice(t *testing.T) {
	f := newFixture(2)
	f.session = &tuitest.Session{}
	m := loaded(t, f, domain.TimelineQuery{Kind: domain.TimelineLocal})

	_, msgs := feed(t, m, tuitest.Key("f"))
	if len(msgs) != 1 {
		t.Fatalf("expected a notice, got %v", msgs)
	}
	if n, ok := msgs[0].(common.NoticeMsg); !ok || !strings.Contains(n.Text, "Log in") {
		t.Fatalf("expected login notice, got %#v", msgs[0])
	}
	if len(f.statuses.Toggles) != 0 {
		t.Fatal("no request expected without a session")
	}
}

func TestEnterOpensThreadAndZOpensProfile(t *testing.T) {
	f := newFixture(2)
	m := loaded(t, f, domain.TimelineQuery{Kind: domain.TimelineLocal})

	_, msgs := feed(t, m, tuitest.Key("enter"))
	open, ok := msgs[0].(common.OpenThreadMsg)
	if !ok || open.Status.ID != "s0" {
		t.Fatalf("expected thread of s0, got %#v", msgs)
	}
	_, msgs = feed(t, m, tuitest.Key("z"))
	if p, ok := msgs[0].(common.OpenProfileMsg); !ok || p.Account.ID != "author0" {
		t.Fatalf("expected profile of author0, got %#v", msgs)
	}
}

func TestHomeWithoutSessionOffersLogin(t *testing.T) {
	f := newFixture(0)
	f.session = &tuitest.Session{}
	m := New(f.deps(), domain.TimelineQuery{Kind: domain.TimelineHome})
	if m.initCmd != nil {
		t.Fatal("home must not be fetched anonymously")
	}
	if !strings.Contains(m.View(), "Press enter to log in") {
		t.Fatalf("expected login prompt, got:\n%s", m.View())
	}
	_, msgs := feed(t, m, tuitest.Key("enter"))
	if _, ok := msgs[0].(common.LoginMsg); !ok {
		t.Fatalf("expected LoginMsg, got %#v", msgs)
	}
}

func TestTabSwitchLoadsNextTimeline(t *testing.T) {
	f := newFixture(2)
	m := loaded(t, f, domain.TimelineQuery{Kind: domain.TimelineLocal})
	m, msgs := feed(t, m, tuitest.Key("t"))
	if m.Timeline().Query().Kind != domain.TimelineFederated {
		t.Fatalf("expected federated, got %v", m.Timeline().Query().Kind)
	}
	m, _ = feed(t, m, msgs...)
	if m.Timeline().Screen().Phase() != viewmodel.PhaseContent {
		t.Fatalf("expected content after switch, got %v", m.Timeline().Screen().Phase())
	}
	m, _ = feed(t, m, tuitest.Key("T"), tuitest.Key("T"))
	if m.Timeline().Query().Kind != domain.TimelineHome {
		t.Fatalf("expected wrap to home, got %v", m.Timeline().Query().Kind)
	}
}

func TestDeleteOwnPostAsksFirst(t *testing.T) {
	f := newFixture(0)
	own := tuitest.Status("mine", "me")
	f.timelines.Result = []domain.Status{own, tuitest.Status("other", "x")}
	m := loaded(t, f, domain.TimelineQuery{Kind: domain.TimelineLocal})

	m, msgs := feed(t, m, tuitest.Key("d"))
	if len(msgs) != 0 || !strings.Contains(m.View(), "Delete this post?") {
		t.Fatalf("expected confirmation, got %v", msgs)
	}
	m, msgs = feed(t, m, tuitest.Key("y"))
	if len(f.statuses.Deleted) != 1 || f.statuses.Deleted[0] != "mine" {
		t.Fatalf("expected delete call, got %v", f.statuses.Deleted)
	}
	m, msgs = feed(t, m, msgs...)
	if len(m.Timeline().Statuses()) != 1 {
		t.Fatalf("deleted post should be gone, got %d", len(m.Timeline().Statuses()))
	}
	if n, ok := msgs[0].(common.NoticeMsg); !ok || n.Text != "Post deleted" {
		t.Fatalf("expected notice, got %#v", msgs)
	}

	_, msgs = feed(t, m, tuitest.Key("d"))
	if n, ok := msgs[0].(common.NoticeMsg); !ok || !strings.Contains(n.Text, "own posts") {
		t.Fatalf("deleting others' posts must be refused, got %#v", msgs)
	}
}

func TestFixedFeedGoesBack(t *testing.T) {
	f := newFixture(1)
	m := NewFixed(f.deps(), domain.TimelineQuery{Kind: domain.TimelineHashtag, Hashtag: "go"}, "")
	if m.Title() != "#go" {
		t.Fatalf("unexpected title %q", m.Title())
	}
	_, msgs := feed(t, m, tuitest.Key("esc"))
	if _, ok := msgs[0].(common.BackMsg); !ok {
		t.Fatalf("expected BackMsg, got %#v", msgs)
	}
}

func TestPublishedStatusIsPrependedOnHome(t *testing.T) {
	f := newFixture(1)
	m := loaded(t, f, domain.TimelineQuery{Kind: domain.TimelineHome})
	m, _ = feed(t, m, common.StatusPublishedMsg{Status: tuitest.Status("new", "me")})
	if got := m.Timeline().Statuses()[0].ID; got != "new" {
		t.Fatalf("expected new status first, got %s", got)
	}
}
