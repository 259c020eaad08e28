package app

import "os/exec"

// EditorDraft is what the user wrote in an external editor.
type EditorDraft struct {
	Text        string
	SpoilerText string
}

// Editor hands a draft to an external program. The TUI runs the returned
// command with tea.ExecProcess so the terminal is released while it runs.
type Editor interface {
	Cmd(d EditorDraft, replyTo string) (*exec.Cmd, string, error)
	ReadContent(path string) (EditorDraft, error)
}
