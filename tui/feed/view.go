package feed

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/CrestNiraj12/kabinka/tui/common"
	"github.com/CrestNiraj12/kabinka/viewmodel"
)

// View renders the feed as a string.
func (m Model) View() string {
	var b strings.Builder
	b.WriteString(m.renderTabs() + "\n\n")

	screen := m.tl.Screen()
	switch screen.Phase() {
	case viewmodel.PhaseLoading:
		b.WriteString(fmt.Sprintf("  %s Loading %s...\n", m.spinner.View(), m.tabs[m.active].label))
	case viewmodel.PhaseError:
		b.WriteString(common.ErrorStyle.Render("  Error: "+screen.Message()) + "\n\n")
		b.WriteString(common.MutedStyle.Render("  Press enter or r to retry.") + "\n")
	case viewmodel.PhaseEmpty:
		b.WriteString("  " + screen.Message() + "\n")
		if screen.LoginRequired() {
			b.WriteString("\n" + common.ConfirmStyle.Render("  Press enter to log in.") + "\n")
		}
	case viewmodel.PhaseContent:
		b.WriteString(m.list.View(m.tl.Statuses(), &m.tl, m.listHeight()))
		if m.tl.LoadingMore() {
			b.WriteString(fmt.Sprintf("  %s Loading more...\n", m.spinner.View()))
		}
	}

	if n := m.tl.Notice(); n != "" {
		b.WriteString(common.ErrorStyle.Render("  "+n) + "\n")
	}
	b.WriteString(m.renderHelp())
	return b.String()
}

func (m Model) renderTabs() string {
	if m.fixed {
		return common.HeaderStyle.Render(m.title)
	}
	parts := make([]string, len(m.tabs))
	for i, t := range m.tabs {
		if i == m.active {
			parts[i] = common.TabActiveStyle.Render(t.label)
		} else {
			parts[i] = common.TabInactiveStyle.Render(t.label)
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func (m Model) renderHelp() string {
	k := m.keys
	help := common.HelpLine(k.Up, k.Down, k.Enter, k.Favourite, k.Reblog, k.Bookmark, k.Reply, k.Profile, k.Refresh)
	if m.fixed {
		help += " • " + common.HelpLine(k.Back)
	} else {
		help += " • " + common.HelpLine(k.NextTab)
	}
	return "\n" + common.StatusBarStyle.Render(help)
}
