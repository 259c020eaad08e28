package mastodon

import (
	"html"
	"regexp"
	"strings"
	"unicode"

	"github.com/charmbracelet/x/ansi"
)

// Good enough for terminal display; not a security boundary.
var (
	htmlTagRe   = regexp.MustCompile(`<[^>]*>`)
	lineBreakRe = regexp.MustCompile(`(?i)</p>|<br\s*/?>`)
	manyNLRe    = regexp.MustCompile(`\n{3,}`)
)

// stripHTML turns status HTML into terminal-safe plain text.
func stripHTML(s string) string {
	s = lineBreakRe.ReplaceAllString(s, "\n")
	s = htmlTagRe.ReplaceAllString(s, "")
	s = html.UnescapeString(s)
	s = sanitizeForTerminal(s)
	s = manyNLRe.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}

// sanitizeForTerminal removes escape sequences and control characters that
// remote content could use to rewrite the terminal. Newlines and tabs stay.
func sanitizeForTerminal(s string) string {
	s = ansi.Strip(s)
	return strings.Map(func(r rune) rune {
		switch {
		case r == '\n' || r == '\t':
			return r
		case r == '\x1b', unicode.IsControl(r):
			return -1
		}
		return r
	}, s)
}
