package viewmodel

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/CrestNiraj12/kabinka/app"
	"github.com/CrestNiraj12/kabinka/domain"
)

// ThreadLoadedMsg carries the conversation around a status.
type ThreadLoadedMsg struct {
	ID          string
	Seq         int
	Focus       domain.Status
	Ancestors   []domain.Status
	Descendants []domain.Status
	Err         error
}

// Thread shows a status with its ancestors above and its replies below.
type Thread struct {
	timeline app.TimelineService
	statuses app.StatusService
	session  app.Session

	focus      domain.Status
	focusIndex int
	screen     Screen[domain.Status]
	inter      Interactions
	notice     string

	ctx    context.Context
	cancel context.CancelFunc
}

// NewThread returns the thread of focus in the Loading state. A boost opens
// the boosted post.
func NewThread(timeline app.TimelineService, statuses app.StatusService, session app.Session, focus domain.Status) Thread {
	ctx, cancel := context.WithCancel(context.Background())
	return Thread{
		timeline: timeline,
		statuses: statuses,
		session:  session,
		focus:    focus.Target(),
		inter:    NewInteractions(),
		ctx:      ctx,
		cancel:   cancel,
	}
}

func (t Thread) Focus() domain.Status          { return t.focus }
func (t Thread) Screen() Screen[domain.Status] { return t.screen }
func (t Thread) Statuses() []domain.Status     { return t.screen.Items() }
func (t Thread) Notice() string                { return t.notice }

// FocusIndex is the position of the focused status in Statuses.
func (t Thread) FocusIndex() int { return t.focusIndex }

// InFlight reports whether a toggle on the target id awaits a response.
func (t Thread) InFlight(id string, kind domain.Interaction) bool {
	return t.inter.InFlight(id, kind)
}

// Load refetches the focused status and its context.
func (t *Thread) Load() tea.Cmd {
	seq := t.screen.Begin()
	t.notice = ""
	timeline, statuses, ctx, focus := t.timeline, t.statuses, t.ctx, t.focus
	return func() tea.Msg {
		msg := ThreadLoadedMsg{ID: focus.ID, Seq: seq, Focus: focus}
		if fresh, err := statuses.Get(ctx, focus.ID); err == nil && fresh.ID != "" {
			msg.Focus = fresh
		}
		msg.Ancestors, msg.Descendants, msg.Err = timeline.FetchThread(ctx, focus.ID)
		return msg
	}
}

// Refresh reloads the thread.
func (t *Thread) Refresh() tea.Cmd { return t.Load() }

func (t *Thread) ToggleFavorite(id string) tea.Cmd { return t.toggle(id, domain.Favourite) }
func (t *Thread) ToggleReblog(id string) tea.Cmd   { return t.toggle(id, domain.Reblog) }
func (t *Thread) ToggleBookmark(id string) tea.Cmd { return t.toggle(id, domain.Bookmark) }

func (t *Thread) toggle(id string, kind domain.Interaction) tea.Cmd {
	if !authenticated(t.session) || t.screen.Phase() != PhaseContent {
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

// Upsert replaces an edited status or appends a new reply to the focus.
func (t *Thread) Upsert(st domain.Status) {
	replaced := false
	t.screen.Map(func(s domain.Status) domain.Status {
		if s.ID == st.ID {
			replaced = true
			return st
		}
		return s
	})
	if !replaced && st.InReplyToID != "" && t.screen.Phase() == PhaseContent {
		for _, s := range t.screen.Items() {
			if s.ID == st.InReplyToID {
				t.screen.Append([]domain.Status{st}, nil)
				return
			}
		}
	}
}

// Remove drops a deleted status.
func (t *Thread) Remove(id string) {
	if id == t.focus.ID {
		t.screen.SetEmpty("This post was deleted", false)
		return
	}
	for i, s := range t.screen.Items() {
		if s.ID == id && i < t.focusIndex {
			t.focusIndex--
		}
	}
	t.screen.Remove(func(s domain.Status) bool { return s.ID == id }, "")
}

// Update folds thread and interaction results in.
func (t *Thread) Update(msg tea.Msg) tea.Cmd {
	if t.ctx.Err() != nil {
		return nil
	}
	switch msg := msg.(type) {
	case ThreadLoadedMsg:
		if msg.ID != t.focus.ID || msg.Seq != t.screen.Seq() {
			return nil
		}
		if msg.Err != nil {
			t.screen.Fail(msg.Err.Error())
			return nil
		}
		t.focus = msg.Focus
		items := make([]domain.Status, 0, len(msg.Ancestors)+1+len(msg.Descendants))
		items = append(items, msg.Ancestors...)
		items = append(items, msg.Focus)
		items = append(items, msg.Descendants...)
		t.focusIndex = len(msg.Ancestors)
		t.screen.SetItems(items)

	case InteractionResultMsg:
		next := t.inter.Settle(t.screen.Items(), msg)
		if t.screen.Phase() == PhaseContent {
			t.screen.SetItems(next)
		}
		if msg.Err != nil && msg.Owner == t.inter.owner {
			t.notice = fmt.Sprintf("Could not %s: %v", msg.Kind, msg.Err)
		}
	}
	return nil
}

// Close cancels in-flight requests.
func (t *Thread) Close() {
	if t.cancel != nil {
		t.cancel()
	}
}

func authenticated(s app.Session) bool {
	if s == nil {
		return false
	}
	_, ok := s.Current()
	return ok
}
