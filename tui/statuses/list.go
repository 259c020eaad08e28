// Package statuses renders a scrollable list of status cards and maps keys on
// it to interactions and navigation. The feed, thread and profile screens
// share it.
package statuses

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/CrestNiraj12/kabinka/app"
	"github.com/CrestNiraj12/kabinka/domain"
	"github.com/CrestNiraj12/kabinka/tui/common"
)

// Toggler applies optimistic interactions. The timeline, thread and profile
// view-models implement it.
type Toggler interface {
	ToggleFavorite(id string) tea.Cmd
	ToggleReblog(id string) tea.Cmd
	ToggleBookmark(id string) tea.Cmd
	InFlight(id string, kind domain.Interaction) bool
}

// Deps are the collaborators of a List.
type Deps struct {
	Statuses app.StatusService
	Session  app.Session
	Prefs    app.Preferences
}

const (
	confirmDelete = "delete"
	confirmBoost  = "boost"
)

// List is the cursor, scroll position and pending confirmation over a slice
// of statuses owned by the caller.
type List struct {
	deps     Deps
	keys     common.KeyMap
	cursor   int
	offset   int
	expanded map[string]bool
	confirm  common.Confirm
	deleting map[string]bool
	width    int
	now      func() time.Time

	ctx    context.Context
	cancel context.CancelFunc
}

// New returns an empty list.
func New(deps Deps) List {
	ctx, cancel := context.WithCancel(context.Background())
	return List{
		deps:     deps,
		keys:     common.DefaultKeyMap(),
		expanded: make(map[string]bool),
		deleting: make(map[string]bool),
		now:      time.Now,
		ctx:      ctx,
		cancel:   cancel,
	}
}

func (l List) Cursor() int             { return l.cursor }
func (l List) Confirming() bool        { return l.confirm.Active() }
func (l List) Deleting(id string) bool { return l.deleting[id] }
func (l *List) SetCursor(i, n int)     { l.cursor = common.MoveCursor(i, 0, n) }
func (l *List) SetWidth(width int)     { l.width = width }

// Reset moves the cursor back to the top.
func (l *List) Reset() {
	l.cursor, l.offset = 0, 0
	l.confirm = common.Confirm{}
}

// Selected returns the status under the cursor.
func (l List) Selected(items []domain.Status) (domain.Status, bool) {
	if l.cursor < 0 || l.cursor >= len(items) {
		return domain.Status{}, false
	}
	return items[l.cursor], true
}

func (l List) authenticated() bool {
	if l.deps.Session == nil {
		return false
	}
	_, ok := l.deps.Session.Current()
	return ok
}

func (l List) own(st domain.Status) bool {
	if l.deps.Session == nil || st.Reblog != nil {
		return false
	}
	cur, ok := l.deps.Session.Current()
	return ok && cur.AccountID != "" && cur.AccountID == st.Account.ID
}

func (l List) pref(k string) bool {
	if l.deps.Prefs == nil {
		return domain.PreferenceDefault(k)
	}
	return l.deps.Prefs.Bool(k, domain.PreferenceDefault(k))
}

// HandleKey applies msg to the list. handled is false when the key means
// nothing here and the caller may use it.
func (l *List) HandleKey(msg tea.KeyMsg, items []domain.Status, t Toggler) (cmd tea.Cmd, handled bool) {
	if l.confirm.Active() {
		c := l.confirm
		l.confirm = common.Confirm{}
		if !c.Answer(msg) {
			return nil, true
		}
		switch c.Tag {
		case confirmDelete:
			return l.delete(c.ID), true
		case confirmBoost:
			return t.ToggleReblog(c.ID), true
		}
		return nil, true
	}

	st, ok := l.Selected(items)
	switch {
	case key.Matches(msg, l.keys.Up):
		l.cursor = common.MoveCursor(l.cursor, -1, len(items))
	case key.Matches(msg, l.keys.Down):
		l.cursor = common.MoveCursor(l.cursor, 1, len(items))
	case key.Matches(msg, l.keys.Top):
		l.cursor, l.offset = 0, 0
	case !ok:
		return nil, false

	case key.Matches(msg, l.keys.Enter):
		return common.Cmd(common.OpenThreadMsg{Status: st}), true
	case key.Matches(msg, l.keys.Open):
		id := st.Target().ID
		l.expanded[id] = !l.expanded[id]
	case key.Matches(msg, l.keys.Profile):
		return common.Cmd(common.OpenProfileMsg{Account: st.Target().Account}), true

	case key.Matches(msg, l.keys.Favourite):
		return l.interact(t.ToggleFavorite, st), true
	case key.Matches(msg, l.keys.Bookmark):
		return l.interact(t.ToggleBookmark, st), true
	case key.Matches(msg, l.keys.Reblog):
		if !l.authenticated() {
			return common.Notice("Log in to boost posts"), true
		}
		if l.pref(domain.PrefConfirmBoost) && !st.Target().Reblogged {
			l.confirm = common.Confirm{Text: "Boost this post?", Tag: confirmBoost, ID: st.ID}
			return nil, true
		}
		return t.ToggleReblog(st.ID), true

	case key.Matches(msg, l.keys.Reply):
		if !l.authenticated() {
			return common.Notice("Log in to reply"), true
		}
		return common.Cmd(common.OpenComposeMsg{Kind: common.ComposeReply, Status: st}), true
	case key.Matches(msg, l.keys.Edit):
		if !l.own(st) {
			return common.Notice("You can only edit your own posts"), true
		}
		return common.Cmd(common.OpenComposeMsg{Kind: common.ComposeEdit, Status: st}), true
	case key.Matches(msg, l.keys.Delete):
		if !l.own(st) {
			return common.Notice("You can only delete your own posts"), true
		}
		if l.deleting[st.ID] {
			return nil, true
		}
		if l.pref(domain.PrefConfirmDelete) {
			l.confirm = common.Confirm{Text: "Delete this post?", Tag: confirmDelete, ID: st.ID}
			return nil, true
		}
		return l.delete(st.ID), true
	default:
		return nil, false
	}
	return nil, true
}

func (l *List) interact(fn func(string) tea.Cmd, st domain.Status) tea.Cmd {
	if !l.authenticated() {
		return common.Notice("Log in to interact with posts")
	}
	return fn(st.ID)
}

func (l *List) delete(id string) tea.Cmd {
	if l.deps.Statuses == nil {
		return nil
	}
	l.deleting[id] = true
	svc, ctx := l.deps.Statuses, l.ctx
	return func() tea.Msg {
		return common.StatusDeletedMsg{ID: id, Err: svc.Delete(ctx, id)}
	}
}

// Deleted clears the pending delete of id and reports whether this list
// started it.
func (l *List) Deleted(id string) bool {
	mine := l.deleting[id]
	delete(l.deleting, id)
	return mine
}

// Clamp keeps the cursor inside items after they changed.
func (l *List) Clamp(n int) {
	l.cursor = common.MoveCursor(l.cursor, 0, n)
	if l.offset > l.cursor {
		l.offset = l.cursor
	}
}

// Scroll keeps the cursor visible in avail lines.
func (l *List) Scroll(items []domain.Status, avail int) {
	l.offset = common.ScrollOffset(common.Heights(l.cards(items, nil)), l.cursor, l.offset, avail)
}

func (l List) cards(items []domain.Status, t Toggler) []string {
	out := make([]string, len(items))
	now := l.now()
	collapse := l.pref(domain.PrefShowContentWarnings)
	hideCounts := !l.pref(domain.PrefInteractionCounts)
	width := l.width
	if width <= 0 {
		width = 80
	}
	for i, st := range items {
		target := st.Target().ID
		card := common.RenderStatus(st, common.StatusOptions{
			Width:      width,
			Selected:   i == l.cursor,
			Expanded:   l.expanded[target],
			CollapseCW: collapse,
			HideCounts: hideCounts,
			Now:        now,
			Pending: func(k domain.Interaction) bool {
				return t != nil && t.InFlight(target, k)
			},
		})
		if l.deleting[st.ID] {
			card += "\n" + common.PendingStyle.Render("  deleting...")
		}
		out[i] = card
	}
	return out
}

// View renders the visible window of cards followed by any pending question.
func (l List) View(items []domain.Status, t Toggler, avail int) string {
	var b strings.Builder
	b.WriteString(common.RenderWindow(l.cards(items, t), l.offset, avail))
	if l.confirm.Active() {
		b.WriteString(l.confirm.View() + "\n")
	}
	return b.String()
}

// Close cancels pending deletes.
func (l *List) Close() {
	if l.cancel != nil {
		l.cancel()
	}
}
