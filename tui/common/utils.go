package common

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/CrestNiraj12/kabinka/domain"
)

// Truncate cuts s to width cells, ANSI-aware, with an ellipsis.
func Truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	return ansi.Truncate(s, width, "…")
}

// ClampLines cuts every line of text to width cells.
func ClampLines(text string, width int) string {
	if width <= 0 {
		return text
	}
	lines := strings.Split(text, "\n")
	for i, ln := range lines {
		if ansi.StringWidth(ln) > width {
			lines[i] = ansi.Cut(ln, 0, width)
		}
	}
	return strings.Join(lines, "\n")
}

// Wrap renders text to width and keeps at most maxLines lines, marking the cut.
func Wrap(text string, width, maxLines int) string {
	if width < 12 {
		width = 12
	}
	wrapped := lipgloss.NewStyle().Width(width).Render(text)
	if maxLines <= 0 {
		return wrapped
	}
	lines := strings.Split(wrapped, "\n")
	if len(lines) <= maxLines {
		return wrapped
	}
	return strings.Join(lines[:maxLines], "\n") + "…"
}

// RelativeTime renders t relative to now in a compact form.
func RelativeTime(t, now time.Time) string {
	if t.IsZero() {
		return ""
	}
	d := now.Sub(t)
	switch {
	case d < time.Minute:
		return "now"
	case d < time.Hour:
		return fmt.Sprintf("%dm", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh", int(d.Hours()))
	case d < 7*24*time.Hour:
		return fmt.Sprintf("%dd", int(d.Hours()/24))
	case t.Year() == now.Year():
		return t.Format("Jan 2")
	}
	return t.Format("Jan 2 2006")
}

// DisplayName prefers the display name and falls back to the handle.
func DisplayName(a domain.Account) string {
	if strings.TrimSpace(a.DisplayName) != "" {
		return a.DisplayName
	}
	if a.Username != "" {
		return a.Username
	}
	return a.Acct
}

// Handle renders "@acct".
func Handle(a domain.Account) string {
	if a.Acct == "" {
		return ""
	}
	return "@" + a.Acct
}

// VisibilityLabel is a short marker for v.
func VisibilityLabel(v domain.Visibility) string {
	switch v {
	case domain.VisibilityUnlisted:
		return "unlisted"
	case domain.VisibilityPrivate:
		return "followers"
	case domain.VisibilityDirect:
		return "direct"
	}
	return "public"
}

// HelpLine renders bindings as "k: help • ...".
func HelpLine(bindings ...key.Binding) string {
	parts := make([]string, 0, len(bindings))
	for _, b := range bindings {
		h := b.Help()
		if h.Key == "" || !b.Enabled() {
			continue
		}
		parts = append(parts, h.Key+": "+h.Desc)
	}
	return strings.Join(parts, " • ")
}
