// Package server shows information about the active instance and its rules.
package server

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/CrestNiraj12/kabinka/domain"
	"github.com/CrestNiraj12/kabinka/tui/common"
	"github.com/CrestNiraj12/kabinka/viewmodel"
)

// Instances resolves and caches server metadata. The session manager implements it.
type Instances interface {
	Domain() string
	InstanceInfo(domain string) (domain.Instance, bool)
	RefreshInstance(ctx context.Context, domain string) (domain.Instance, error)
}

const chrome = 5

// Model is the server information screen.
type Model struct {
	instances Instances
	domain    string
	coll      common.Collection[domain.Instance]
	view      viewport.Model
	keys      common.KeyMap
	spinner   spinner.Model
	width     int
	initCmd   tea.Cmd
}

// New returns the screen for the active domain. Cached metadata is shown
// right away while a fresh copy is fetched.
func New(instances Instances) Model {
	m := Model{
		instances: instances,
		domain:    instances.Domain(),
		coll:      common.NewCollection[domain.Instance](),
		view:      viewport.New(80, 24-chrome),
		keys:      common.DefaultKeyMap(),
		spinner:   common.NewSpinner(),
		width:     80,
	}
	m.initCmd = m.load()
	if inst, ok := instances.InstanceInfo(m.domain); ok {
		m.coll.Resolve(common.LoadedMsg[domain.Instance]{
			Owner:  m.coll.Owner(),
			Loaded: viewmodel.Loaded[domain.Instance]{Seq: m.coll.Screen().Seq(), Items: []domain.Instance{inst}},
		}, "")
		m.view.SetContent(m.render(inst))
	}
	return m
}

func (m Model) Init() tea.Cmd { return tea.Batch(m.initCmd, m.spinner.Tick) }

func (m Model) Title() string   { return common.SectionServer.String() }
func (m Model) Capturing() bool { return false }
func (m Model) Close()          { m.coll.Close() }

// Instance returns the metadata shown, if any.
func (m Model) Instance() (domain.Instance, bool) { return m.coll.Selected() }

func (m *Model) load() tea.Cmd {
	instances, d := m.instances, m.domain
	return m.coll.Load(func(ctx context.Context) ([]domain.Instance, error) {
		inst, err := instances.RefreshInstance(ctx, d)
		if err != nil {
			return nil, fmt.Errorf("fetching %s: %w", d, err)
		}
		return []domain.Instance{inst}, nil
	})
}

func (m Model) Update(msg tea.Msg) (common.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.view.Width = msg.Width
		m.view.Height = max(msg.Height-chrome, 3)
		if inst, ok := m.coll.Selected(); ok {
			m.view.SetContent(m.render(inst))
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case common.LoadedMsg[domain.Instance]:
		if msg.Owner == m.coll.Owner() && msg.Err != nil && m.coll.Phase() == viewmodel.PhaseContent {
			// Keep the cached copy.
			return m, common.NoticeErr("Could not refresh server information", msg.Err)
		}
		if m.coll.Resolve(msg, "No information available") {
			if inst, ok := m.coll.Selected(); ok {
				m.view.SetContent(m.render(inst))
			}
		}
		return m, nil

	case common.SessionChangedMsg:
		m.domain = m.instances.Domain()
		return m, m.load()

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Back):
			return m, common.Cmd(common.BackMsg{})
		case key.Matches(msg, m.keys.Refresh):
			return m, m.load()
		case key.Matches(msg, m.keys.Enter) && m.coll.Phase() == viewmodel.PhaseError:
			return m, m.load()
		case key.Matches(msg, m.keys.Top):
			m.view.GotoTop()
			return m, nil
		}
		var cmd tea.Cmd
		m.view, cmd = m.view.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) View() string {
	var b strings.Builder
	b.WriteString(common.HeaderStyle.Render("Server · "+m.domain) + "\n\n")
	if s := common.PhaseView(m.coll.Screen(), m.spinner, "server information"); s != "" {
		b.WriteString(s)
	} else {
		b.WriteString(m.view.View() + "\n")
	}
	k := m.keys
	b.WriteString(common.StatusBarStyle.Render(common.HelpLine(k.Up, k.Down, k.Top, k.Refresh)))
	return b.String()
}

func (m Model) render(inst domain.Instance) string {
	width := max(m.width-4, 20)
	var b strings.Builder
	title := inst.Title
	if title == "" {
		title = inst.Domain
	}
	b.WriteString(common.AuthorStyle.Render(title))
	if inst.Version != "" {
		b.WriteString(common.MutedStyle.Render("  Mastodon " + inst.Version))
	}
	b.WriteString("\n")
	if inst.Description != "" {
		b.WriteString(common.ContentStyle.Render(common.Wrap(inst.Description, width, 0)) + "\n")
	}
	b.WriteString("\n")

	field := func(label, value string) {
		if value != "" {
			b.WriteString(common.MutedStyle.Render(fmt.Sprintf("%-14s", label)) + value + "\n")
		}
	}
	registrations := "closed"
	if inst.RegistrationOpen {
		registrations = "open"
	}
	field("Registrations", registrations)
	field("Contact", inst.ContactEmail)
	if inst.ContactAccount != "" {
		field("Admin", "@"+inst.ContactAccount)
	}
	field("Post length", fmt.Sprintf("%d characters", inst.CharLimit()))
	field("Attachments", fmt.Sprintf("up to %d per post", inst.AttachmentLimit()))
	field("Poll options", fmt.Sprintf("up to %d", inst.PollOptionLimit()))

	if len(inst.Rules) > 0 {
		b.WriteString("\n" + common.HeaderStyle.Render("Rules") + "\n")
		for i, r := range inst.Rules {
			prefix := fmt.Sprintf("%2d. ", i+1)
			text := common.Wrap(r.Text, width-len(prefix), 0)
			b.WriteString(prefix + strings.ReplaceAll(text, "\n", "\n"+strings.Repeat(" ", len(prefix))) + "\n")
		}
	}
	return b.String()
}
