package compose

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/CrestNiraj12/kabinka/domain"
	"github.com/CrestNiraj12/kabinka/tui/common"
	"github.com/CrestNiraj12/kabinka/viewmodel"
)

// View renders the composer.
func (m Model) View() string {
	var b strings.Builder
	b.WriteString(common.HeaderStyle.Render(m.heading()) + "\n\n")

	if m.vm.ContentWarning() {
		b.WriteString(common.SpoilerStyle.Render("CW ") + m.spoiler.View() + "\n\n")
	}
	b.WriteString(m.textarea.View() + "\n")

	if atts := m.vm.Attachments(); len(atts) > 0 {
		b.WriteString("\n")
		for _, a := range atts {
			b.WriteString(m.renderAttachment(a) + "\n")
		}
	}
	if poll, ok := m.vm.Poll(); ok {
		b.WriteString("\n" + m.renderPoll(poll))
	}

	b.WriteString("\n" + m.renderStatusLine() + "\n")
	switch {
	case m.prompt.Active():
		b.WriteString(m.prompt.View() + "\n")
	case m.confirm.Active():
		b.WriteString(m.confirm.View() + "\n")
	default:
		b.WriteString(common.StatusBarStyle.Render(m.help()))
	}
	return b.String()
}

func (m Model) heading() string {
	switch m.vm.Mode() {
	case viewmodel.ComposeReply:
		_, handle := m.vm.InReplyTo()
		return "Reply to @" + handle
	case viewmodel.ComposeEdit:
		return "Edit post"
	}
	return "New post"
}

func (m Model) renderAttachment(a domain.DraftAttachment) string {
	name := common.Truncate(filepath.Base(a.Source), 32)
	state := m.bar.ViewAs(a.Progress)
	if a.Uploaded() {
		state = common.SuccessStyle.Render("uploaded")
	}
	line := fmt.Sprintf("  📎 %-32s %s", name, state)
	if a.Description != "" {
		line += "\n     " + common.MutedStyle.Render(common.Truncate(a.Description, 60))
	}
	return line
}

func (m Model) renderPoll(poll domain.DraftPoll) string {
	var b strings.Builder
	kind := "single choice"
	if poll.Multiple {
		kind = "multiple choice"
	}
	b.WriteString(common.MutedStyle.Render(fmt.Sprintf("  Poll • %s • %s", pollDuration(poll.DurationSeconds), kind)) + "\n")
	for _, in := range m.options {
		b.WriteString("  ○ " + in.View() + "\n")
	}
	return b.String()
}

func pollDuration(seconds int) string {
	switch {
	case seconds >= domain.PollDuration1Day:
		n := seconds / domain.PollDuration1Day
		if n == 1 {
			return "1 day"
		}
		return fmt.Sprintf("%d days", n)
	case seconds >= domain.PollDuration1Hour:
		return fmt.Sprintf("%d h", seconds/domain.PollDuration1Hour)
	}
	return fmt.Sprintf("%d min", seconds/60)
}

func (m Model) renderStatusLine() string {
	remaining := m.vm.Remaining()
	count := common.MutedStyle.Render(fmt.Sprintf("%d", remaining))
	if remaining < 0 {
		count = common.ErrorStyle.Render(fmt.Sprintf("%d", remaining))
	}
	parts := []string{"[" + common.VisibilityLabel(m.vm.Visibility()) + "]", count}

	switch m.vm.Phase() {
	case viewmodel.ComposePublishing:
		parts = append(parts, m.spinner.View()+" Publishing...")
	case viewmodel.ComposeError:
		parts = append(parts, common.ErrorStyle.Render(m.vm.Err()))
	}
	if m.hint != "" {
		parts = append(parts, common.MutedStyle.Render(m.hint))
	}
	return "  " + strings.Join(parts, "  ")
}

func (m Model) help() string {
	k := m.keys
	line := common.HelpLine(k.Publish, k.Cancel, k.ToggleCW, k.Visibility, k.Attach, k.TogglePoll, k.ExternalEdit)
	if _, ok := m.vm.Poll(); ok {
		line += "\n" + common.HelpLine(k.NextField, k.AddOption, k.RemoveOption, k.PollDuration, k.PollMultiple)
	} else if len(m.vm.Attachments()) > 0 {
		line += " • " + common.HelpLine(k.Detach)
	}
	return line
}
