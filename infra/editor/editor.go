package editor

import (
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/CrestNiraj12/kabinka/app"
	"github.com/CrestNiraj12/kabinka/domain"
)

// EnvEditor prepares an external editor command using $VISUAL or $EDITOR
// (fallback: "vi"). It does not run the editor itself.
type EnvEditor struct{}

// NewEnvEditor creates an EnvEditor.
func NewEnvEditor() *EnvEditor {
	return &EnvEditor{}
}

const (
	commentEnd = "-->"
	cwPrefix   = "cw:"
)

func header(replyTo string) string {
	var b strings.Builder
	b.WriteString("<!--\n")
	b.WriteString(domain.AppTitle + ": write your post below this comment.\n")
	if replyTo != "" {
		b.WriteString("Replying to " + replyTo + "\n")
	}
	b.WriteString("\n- Put a content warning after \"cw:\"; leave it empty for none.\n")
	b.WriteString("- SAVE and EXIT to use the text (e.g., :wq in vi).\n")
	b.WriteString("- Emptying the file cancels.\n")
	b.WriteString(commentEnd + "\n")
	return b.String()
}

func editorCommand() string {
	for _, env := range []string{"VISUAL", "EDITOR"} {
		if v := strings.TrimSpace(os.Getenv(env)); v != "" {
			return v
		}
	}
	return "vi"
}

// Cmd writes d to a temp file and returns the editor command for it.
func (e *EnvEditor) Cmd(d app.EditorDraft, replyTo string) (*exec.Cmd, string, error) {
	tmpFile, err := os.CreateTemp("", "kabinka-*.md")
	if err != nil {
		return nil, "", fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer tmpFile.Close()

	body := header(replyTo) + cwPrefix + " " + d.SpoilerText + "\n\n" + d.Text
	if _, err := tmpFile.WriteString(body); err != nil {
		os.Remove(tmpPath)
		return nil, "", fmt.Errorf("writing to temp file: %w", err)
	}

	// $EDITOR may carry flags, e.g. "code --wait".
	parts := strings.Fields(editorCommand())
	args := append(parts[1:], tmpPath)
	return exec.Command(parts[0], args...), tmpPath, nil
}

// ReadContent parses the edited file and removes it.
func (e *EnvEditor) ReadContent(path string) (app.EditorDraft, error) {
	defer os.Remove(path)

	data, err := os.ReadFile(path)
	if err != nil {
		return app.EditorDraft{}, fmt.Errorf("reading temp file: %w", err)
	}
	return parse(string(data)), nil
}

func parse(content string) app.EditorDraft {
	if idx := strings.Index(content, commentEnd); idx != -1 {
		content = content[idx+len(commentEnd):]
	}
	content = strings.TrimLeft(content, "\r\n")

	var d app.EditorDraft
	first, rest, _ := strings.Cut(content, "\n")
	if strings.HasPrefix(strings.ToLower(strings.TrimSpace(first)), cwPrefix) {
		d.SpoilerText = strings.TrimSpace(strings.TrimSpace(first)[len(cwPrefix):])
		content = rest
	}
	d.Text = strings.TrimSpace(content)
	return d
}
