// Package notifications lists notifications, with a tab for mentions only.
package notifications

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
	Notifications app.NotificationService
	Session       app.Session
}

type tab struct {
	label string
	types []domain.NotificationType
	empty string
}

var tabs = []tab{
	{label: "All", empty: "No notifications yet"},
	{label: "Mentions", types: []domain.NotificationType{domain.NotifyMention}, empty: "No mentions yet"},
}

const chrome = 6

// Model is the notifications screen.
type Model struct {
	deps    Deps
	coll    common.Collection[domain.Notification]
	active  int
	keys    common.KeyMap
	spinner spinner.Model
	width   int
	height  int
	now     func() time.Time
	initCmd tea.Cmd
}

// New returns the screen on the All tab and starts loading it.
func New(deps Deps) Model {
	m := Model{
		deps:    deps,
		coll:    common.NewCollection[domain.Notification](),
		keys:    common.DefaultKeyMap(),
		spinner: common.NewSpinner(),
		width:   80,
		height:  24,
		now:     time.Now,
	}
	m.initCmd = m.load()
	return m
}

func (m Model) Init() tea.Cmd { return tea.Batch(m.initCmd, m.spinner.Tick) }

func (m Model) Title() string   { return common.SectionNotifications.String() }
func (m Model) Capturing() bool { return false }
func (m Model) Close()          { m.coll.Close() }

// Screen exposes the load state, mostly for tests.
func (m Model) Screen() viewmodel.Screen[domain.Notification] { return m.coll.Screen() }

func (m *Model) load() tea.Cmd {
	if _, ok := m.deps.Session.Current(); !ok {
		m.coll.RequireLogin("Log in to see your notifications")
		return nil
	}
	svc, types := m.deps.Notifications, tabs[m.active].types
	return m.coll.Load(func(ctx context.Context) ([]domain.Notification, error) {
		return svc.Notifications(ctx, types, viewmodel.TimelinePageSize)
	})
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

	case common.LoadedMsg[domain.Notification]:
		m.coll.Resolve(msg, tabs[m.active].empty)
		return m, nil

	case common.SessionChangedMsg:
		return m, m.load()

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (common.Screen, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Back):
		return m, common.Cmd(common.BackMsg{})
	case key.Matches(msg, m.keys.NextTab):
		m.active = (m.active + 1) % len(tabs)
		return m, m.load()
	case key.Matches(msg, m.keys.PrevTab):
		m.active = (m.active + len(tabs) - 1) % len(tabs)
		return m, m.load()
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
			n, _ := m.coll.Selected()
			if n.Status != nil {
				return m, common.Cmd(common.OpenThreadMsg{Status: *n.Status})
			}
			return m, common.Cmd(common.OpenProfileMsg{Account: n.Account})
		}
	case key.Matches(msg, m.keys.Profile):
		if n, ok := m.coll.Selected(); ok {
			return m, common.Cmd(common.OpenProfileMsg{Account: n.Account})
		}
	}
	return m, nil
}

func (m Model) View() string {
	var b strings.Builder
	parts := make([]string, len(tabs))
	for i, t := range tabs {
		if i == m.active {
			parts[i] = common.TabActiveStyle.Render(t.label)
		} else {
			parts[i] = common.TabInactiveStyle.Render(t.label)
		}
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, parts...) + "\n\n")

	if s := common.PhaseView(m.coll.Screen(), m.spinner, strings.ToLower(tabs[m.active].label)); s != "" {
		b.WriteString(s)
	} else {
		rows := make([]string, 0, len(m.coll.Items()))
		for _, n := range m.coll.Items() {
			rows = append(rows, m.renderRow(n))
		}
		b.WriteString(common.RenderRows(rows, m.coll.Cursor(), max(m.height-chrome, 3)))
	}

	k := m.keys
	b.WriteString("\n" + common.StatusBarStyle.Render(common.HelpLine(k.Up, k.Down, k.Enter, k.Profile, k.NextTab, k.Refresh)))
	return b.String()
}

func (m Model) renderRow(n domain.Notification) string {
	icon, verb := describe(n.Type)
	line := fmt.Sprintf("%s %s %s", icon, common.AuthorStyle.Render(common.DisplayName(n.Account)), verb)
	if n.Status != nil {
		excerpt := strings.Join(strings.Fields(n.Status.Target().Content), " ")
		line += " " + common.MutedStyle.Render(common.Truncate(excerpt, max(m.width-lipgloss.Width(line)-12, 10)))
	}
	return line + " " + common.TimestampStyle.Render(common.RelativeTime(n.CreatedAt, m.now()))
}

func describe(t domain.NotificationType) (icon, verb string) {
	switch t {
	case domain.NotifyMention:
		return "@", "mentioned you:"
	case domain.NotifyReblog:
		return "⟳", "boosted:"
	case domain.NotifyFavourite:
		return "★", "favourited:"
	case domain.NotifyFollow:
		return "+", "followed you"
	case domain.NotifyFollowRequest:
		return "?", "requested to follow you"
	case domain.NotifyPoll:
		return "▤", "poll ended:"
	case domain.NotifyStatus:
		return "✎", "posted:"
	case domain.NotifyUpdate:
		return "✎", "edited:"
	}
	return "•", string(t)
}
