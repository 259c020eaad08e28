package common

import (
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// NewSpinner returns the loading spinner used by every screen.
func NewSpinner() spinner.Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#6364FF"))
	return s
}

// MoveCursor moves cursor by delta within [0, n).
func MoveCursor(cursor, delta, n int) int {
	if n <= 0 {
		return 0
	}
	return min(max(cursor+delta, 0), n-1)
}

// ScrollOffset returns the first item to render so that cursor fits in avail
// lines, given the rendered height of every item.
func ScrollOffset(heights []int, cursor, offset, avail int) int {
	if cursor < offset || avail <= 0 {
		return max(cursor, 0)
	}
	for offset < cursor {
		used := 0
		for i := offset; i <= cursor && i < len(heights); i++ {
			used += heights[i]
		}
		if used <= avail {
			break
		}
		offset++
	}
	return offset
}

// RenderWindow joins items starting at offset until avail lines are used.
// The first item is always shown.
func RenderWindow(items []string, offset, avail int) string {
	var b strings.Builder
	used := 0
	for i := offset; i < len(items); i++ {
		h := lipgloss.Height(items[i])
		if used > 0 && avail > 0 && used+h > avail {
			break
		}
		b.WriteString(items[i])
		b.WriteString("\n")
		used += h
	}
	return b.String()
}

// Heights returns the rendered height of every item.
func Heights(items []string) []int {
	out := make([]int, len(items))
	for i, it := range items {
		out[i] = lipgloss.Height(it) + 1
	}
	return out
}

// Confirm is a pending yes/no question.
type Confirm struct {
	Text string
	Tag  string
	ID   string
}

// Active reports whether a question is pending.
func (c Confirm) Active() bool { return c.Text != "" }

// Answer reads the reply to c. Any key other than y dismisses the question.
func (c Confirm) Answer(msg tea.KeyMsg) bool {
	return msg.String() == "y" || msg.String() == "Y"
}

func (c Confirm) View() string {
	if !c.Active() {
		return ""
	}
	return ConfirmStyle.Render(c.Text + " (y/n)")
}
