package common

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/CrestNiraj12/kabinka/domain"
)

// StatusOptions tunes RenderStatus.
type StatusOptions struct {
	Width    int
	Selected bool
	// Expanded shows the full text and the content behind a content warning.
	Expanded bool
	// CollapseCW hides text behind a content warning unless Expanded.
	CollapseCW bool
	HideCounts bool
	Pending    func(domain.Interaction) bool
	Now        time.Time
}

// RenderStatus renders one status card. Boosts show the booster above the
// boosted post.
func RenderStatus(st domain.Status, o StatusOptions) string {
	if o.Now.IsZero() {
		o.Now = time.Now()
	}
	inner := max(o.Width-4, 16)
	t := st.Target()

	var b strings.Builder
	if st.Reblog != nil {
		b.WriteString(MutedStyle.Render("⟳ " + DisplayName(st.Account) + " boosted"))
		b.WriteString("\n")
	}
	header := AuthorStyle.Render(DisplayName(t.Account)) + " " + HandleStyle.Render(Handle(t.Account))
	meta := TimestampStyle.Render(RelativeTime(t.CreatedAt, o.Now))
	if t.Visibility != domain.VisibilityPublic && t.Visibility != "" {
		meta += " " + MutedStyle.Render("["+VisibilityLabel(t.Visibility)+"]")
	}
	if !t.EditedAt.IsZero() {
		meta += " " + MutedStyle.Render("(edited)")
	}
	b.WriteString(Truncate(header, inner-lipgloss.Width(meta)-1) + " " + meta + "\n")
	if t.IsReply() {
		b.WriteString(MutedStyle.Render("↳ reply") + "\n")
	}

	showBody := true
	if t.SpoilerText != "" {
		b.WriteString(SpoilerStyle.Render("CW: "+t.SpoilerText) + "\n")
		showBody = o.Expanded || !o.CollapseCW
		if !showBody {
			b.WriteString(MutedStyle.Render("(enter to show)") + "\n")
		}
	}
	if showBody {
		lines := 4
		if o.Expanded {
			lines = 0
		}
		b.WriteString(ContentStyle.Render(Wrap(t.Content, inner, lines)) + "\n")
		if len(t.Attachments) > 0 {
			b.WriteString(renderAttachments(t.Attachments, t.Sensitive, inner) + "\n")
		}
		if t.Poll != nil {
			b.WriteString(renderPoll(*t.Poll, inner) + "\n")
		}
	}
	b.WriteString(renderCounts(t, o))

	style := UnselectedStyle
	if o.Selected {
		style = SelectedStyle
	}
	return style.Width(max(o.Width-2, 18)).Render(b.String())
}

func renderAttachments(atts []domain.Attachment, sensitive bool, width int) string {
	parts := make([]string, 0, len(atts))
	for _, a := range atts {
		label := "[" + a.Type + "]"
		if sensitive {
			label = "[sensitive " + a.Type + "]"
		}
		if a.Description != "" {
			label += " " + a.Description
		}
		parts = append(parts, MutedStyle.Render(Truncate(label, width)))
	}
	return strings.Join(parts, "\n")
}

func renderPoll(p domain.Poll, width int) string {
	var b strings.Builder
	for _, o := range p.Options {
		pct := 0
		if p.VotesCount > 0 {
			pct = o.VotesCount * 100 / p.VotesCount
		}
		b.WriteString(Truncate(fmt.Sprintf("%3d%%  %s", pct, o.Title), width) + "\n")
	}
	state := fmt.Sprintf("%d votes", p.VotesCount)
	if p.Expired {
		state += " • closed"
	}
	b.WriteString(MutedStyle.Render(state))
	return b.String()
}

func renderCounts(t domain.Status, o StatusOptions) string {
	pending := func(k domain.Interaction) bool { return o.Pending != nil && o.Pending(k) }
	item := func(icon string, n int, on bool, kind domain.Interaction) string {
		s := icon
		if !o.HideCounts {
			s = fmt.Sprintf("%s %d", icon, n)
		}
		switch {
		case pending(kind):
			return PendingStyle.Render(s)
		case on:
			return ActiveCountStyle.Render(s)
		}
		return MutedStyle.Render(s)
	}
	replies := "↩"
	if !o.HideCounts {
		replies = fmt.Sprintf("↩ %d", t.RepliesCount)
	}
	parts := []string{
		MutedStyle.Render(replies),
		item("⟳", t.ReblogsCount, t.Reblogged, domain.Reblog),
		item("★", t.FavouritesCount, t.Favourited, domain.Favourite),
	}
	bookmark := "🔖"
	switch {
	case pending(domain.Bookmark):
		bookmark = PendingStyle.Render(bookmark)
	case t.Bookmarked:
		bookmark = ActiveCountStyle.Render(bookmark)
	default:
		bookmark = MutedStyle.Render(bookmark)
	}
	parts = append(parts, bookmark)
	return strings.Join(parts, "   ")
}
