package common

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"

	"github.com/CrestNiraj12/kabinka/viewmodel"
)

// PhaseView renders the Loading, Error and Empty states of s. It returns ""
// in Content so the caller renders its items.
func PhaseView[T any](s viewmodel.Screen[T], spin spinner.Model, noun string) string {
	switch s.Phase() {
	case viewmodel.PhaseLoading:
		return fmt.Sprintf("  %s Loading %s...\n", spin.View(), noun)
	case viewmodel.PhaseError:
		return ErrorStyle.Render("  Error: "+s.Message()) + "\n\n" +
			MutedStyle.Render("  Press enter or r to retry.") + "\n"
	case viewmodel.PhaseEmpty:
		out := "  " + s.Message() + "\n"
		if s.LoginRequired() {
			out += "\n" + ConfirmStyle.Render("  Press enter to log in.") + "\n"
		}
		return out
	}
	return ""
}

// RenderRows renders one line per row with a marker on the cursor, scrolled
// so the cursor stays within avail lines.
func RenderRows(rows []string, cursor, avail int) string {
	offset := 0
	if avail > 0 && cursor >= avail {
		offset = cursor - avail + 1
	}
	var b strings.Builder
	for i := offset; i < len(rows) && (avail <= 0 || i < offset+avail); i++ {
		if i == cursor {
			b.WriteString(TabActiveStyle.Render("›") + " " + rows[i] + "\n")
			continue
		}
		b.WriteString("  " + rows[i] + "\n")
	}
	return b.String()
}
