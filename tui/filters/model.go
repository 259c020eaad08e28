// Package filters manages keyword filters: create, switch between warn and
// hide, delete.
package filters

import (
	"context"
	"fmt"
	"strings"
	"time"

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
	Filters app.FilterService
	Session app.Session
}

const (
	opCreate = "create"
	opUpdate = "update"
	opDelete = "delete"

	emptyMessage = "No filters. Press a to add one."
	chrome       = 6
)

type changedMsg struct {
	owner  string
	op     string
	filter domain.Filter
	err    error
}

// Model is the filters screen.
type Model struct {
	deps    Deps
	coll    common.Collection[domain.Filter]
	prompt  common.Prompt
	confirm common.Confirm
	pending map[string]bool
	keys    common.KeyMap
	spinner spinner.Model
	height  int
	now     func() time.Time
	initCmd tea.Cmd
}

// New returns the filters screen and starts loading.
func New(deps Deps) Model {
	m := Model{
		deps:    deps,
		coll:    common.NewCollection[domain.Filter](),
		pending: make(map[string]bool),
		keys:    common.DefaultKeyMap(),
		spinner: common.NewSpinner(),
		height:  24,
		now:     time.Now,
	}
	m.initCmd = m.load()
	return m
}

func (m Model) Init() tea.Cmd { return tea.Batch(m.initCmd, m.spinner.Tick) }

func (m Model) Title() string   { return common.SectionFilters.String() }
func (m Model) Capturing() bool { return m.prompt.Active() }
func (m Model) Close()          { m.coll.Close() }

// Filters returns the loaded filters.
func (m Model) Filters() []domain.Filter { return m.coll.Items() }

func (m *Model) load() tea.Cmd {
	if _, ok := m.deps.Session.Current(); !ok {
		m.coll.RequireLogin("Log in to manage your filters")
		return nil
	}
	return m.coll.Load(m.deps.Filters.Filters)
}

func (m Model) change(op string, fn func(ctx context.Context) (domain.Filter, error)) tea.Cmd {
	ctx, owner := m.coll.Context(), m.coll.Owner()
	return func() tea.Msg {
		f, err := fn(ctx)
		return changedMsg{owner: owner, op: op, filter: f, err: err}
	}
}

// ParseKeywords splits a comma separated answer into keywords. A keyword in
// double quotes matches whole words only.
func ParseKeywords(s string) []domain.FilterKeyword {
	var out []domain.FilterKeyword
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		whole := len(part) > 1 && strings.HasPrefix(part, `"`) && strings.HasSuffix(part, `"`)
		if whole {
			part = strings.TrimSpace(part[1 : len(part)-1])
		}
		if part == "" {
			continue
		}
		out = append(out, domain.FilterKeyword{Keyword: part, WholeWord: whole})
	}
	return out
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

	case common.LoadedMsg[domain.Filter]:
		m.coll.Resolve(msg, emptyMessage)
		return m, nil

	case changedMsg:
		if msg.owner != m.coll.Owner() {
			return m, nil
		}
		delete(m.pending, msg.filter.ID)
		if msg.err != nil {
			return m, common.NoticeErr("Could not "+msg.op+" filter", msg.err)
		}
		same := func(f domain.Filter) bool { return f.ID == msg.filter.ID }
		switch msg.op {
		case opCreate:
			m.coll.Add(msg.filter)
			return m, common.Notice("Filter added")
		case opUpdate:
			m.coll.Replace(same, msg.filter)
		case opDelete:
			m.coll.Remove(same, emptyMessage)
			return m, common.Notice("Filter deleted")
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
	svc := m.deps.Filters
	if m.prompt.Active() {
		answer, submitted, cmd := m.prompt.Update(msg)
		if !submitted {
			return m, cmd
		}
		keywords := ParseKeywords(answer)
		if len(keywords) == 0 {
			return m, nil
		}
		f := domain.Filter{
			Title:    keywords[0].Keyword,
			Context:  domain.AllFilterContexts,
			Action:   domain.FilterWarn,
			Keywords: keywords,
		}
		return m, m.change(opCreate, func(ctx context.Context) (domain.Filter, error) {
			return svc.CreateFilter(ctx, f)
		})
	}
	if m.confirm.Active() {
		c := m.confirm
		m.confirm = common.Confirm{}
		if !c.Answer(msg) {
			return m, nil
		}
		m.pending[c.ID] = true
		return m, m.change(opDelete, func(ctx context.Context) (domain.Filter, error) {
			return domain.Filter{ID: c.ID}, svc.DeleteFilter(ctx, c.ID)
		})
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
	case key.Matches(msg, m.keys.Enter) && m.coll.LoginRequired():
		return m, common.Cmd(common.LoginMsg{})
	case key.Matches(msg, m.keys.Enter) && m.coll.Phase() == viewmodel.PhaseError:
		return m, m.load()

	case key.Matches(msg, m.keys.New) && !m.coll.LoginRequired():
		return m, m.prompt.Open("Keywords, comma separated", opCreate, "")
	case key.Matches(msg, m.keys.Toggle) && ok && !m.pending[selected.ID]:
		next := selected
		next.Action = domain.FilterHide
		if selected.Action == domain.FilterHide {
			next.Action = domain.FilterWarn
		}
		m.pending[selected.ID] = true
		return m, m.change(opUpdate, func(ctx context.Context) (domain.Filter, error) {
			f, err := svc.UpdateFilter(ctx, next)
			if err != nil {
				return domain.Filter{ID: next.ID}, err
			}
			return f, nil
		})
	case key.Matches(msg, m.keys.Delete) && ok && !m.pending[selected.ID]:
		m.confirm = common.Confirm{Text: fmt.Sprintf("Delete filter %q?", selected.Title), Tag: opDelete, ID: selected.ID}
	}
	return m, nil
}

func (m Model) View() string {
	var b strings.Builder
	b.WriteString(common.HeaderStyle.Render("Filters") + "\n\n")

	if s := common.PhaseView(m.coll.Screen(), m.spinner, "filters"); s != "" {
		b.WriteString(s)
	} else {
		rows := make([]string, 0, len(m.coll.Items()))
		for _, f := range m.coll.Items() {
			rows = append(rows, m.renderRow(f))
		}
		b.WriteString(common.RenderRows(rows, m.coll.Cursor(), max(m.height-chrome, 3)))
	}

	b.WriteString("\n")
	switch {
	case m.prompt.Active():
		b.WriteString(m.prompt.View() + "\n" + common.MutedStyle.Render(`Wrap a keyword in "quotes" to match whole words.`))
	case m.confirm.Active():
		b.WriteString(m.confirm.View())
	default:
		k := m.keys
		b.WriteString(common.StatusBarStyle.Render(common.HelpLine(k.Up, k.Down, k.New, k.Toggle, k.Delete, k.Refresh)))
	}
	return b.String()
}

func (m Model) renderRow(f domain.Filter) string {
	action := common.SpoilerStyle.Render("[warn]")
	if f.Action == domain.FilterHide {
		action = common.ErrorStyle.Render("[hide]")
	}
	words := make([]string, 0, len(f.Keywords))
	for _, k := range f.Keywords {
		if k.WholeWord {
			words = append(words, `"`+k.Keyword+`"`)
		} else {
			words = append(words, k.Keyword)
		}
	}
	row := fmt.Sprintf("%s %s %s", action, common.AuthorStyle.Render(f.Title), common.MutedStyle.Render(common.Truncate(strings.Join(words, ", "), 40)))
	if !f.ExpiresAt.IsZero() {
		if f.ExpiresAt.Before(m.now()) {
			row += common.MutedStyle.Render(" (expired)")
		} else {
			row += common.MutedStyle.Render(" (expires " + f.ExpiresAt.Format("Jan 2") + ")")
		}
	}
	if m.pending[f.ID] {
		row += common.PendingStyle.Render(" ...")
	}
	return row
}
