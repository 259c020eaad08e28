package common

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/CrestNiraj12/kabinka/domain"
)

// Screen is a view the root model can push on its stack. Key messages reach
// only the top screen; every other message is broadcast so results of
// requests started by a covered screen still land.
type Screen interface {
	Init() tea.Cmd
	Update(msg tea.Msg) (Screen, tea.Cmd)
	View() string
	Title() string
	// Capturing reports whether the screen is reading text input, in which
	// case global keys such as section numbers must not be intercepted.
	Capturing() bool
	Close()
}

// --- Navigation messages ---

// BackMsg pops the top screen.
type BackMsg struct{}

// OpenThreadMsg shows the conversation around Status.
type OpenThreadMsg struct {
	Status domain.Status
}

// OpenProfileMsg shows an account.
type OpenProfileMsg struct {
	Account domain.Account
}

// OpenTimelineMsg shows a hashtag or list timeline.
type OpenTimelineMsg struct {
	Query domain.TimelineQuery
	Title string
}

// OpenMembersMsg shows the accounts on List.
type OpenMembersMsg struct {
	List domain.FollowList
}

// ComposeKind selects the composer mode.
type ComposeKind int

const (
	ComposeNew ComposeKind = iota
	ComposeReply
	ComposeEdit
)

// OpenComposeMsg opens the composer. Status is the parent for a reply and the
// edited status for an edit.
type OpenComposeMsg struct {
	Kind   ComposeKind
	Status domain.Status
	// External opens $EDITOR right away instead of the inline editor.
	External bool
}

// LoginMsg asks the program to run the browser login and restart.
type LoginMsg struct{}

// SessionChangedMsg is sent after the active account or anonymous mode changed.
type SessionChangedMsg struct{}

// --- Broadcast results ---

// StatusPublishedMsg is broadcast after a status was created or edited.
type StatusPublishedMsg struct {
	Status domain.Status
	Edited bool
}

// StatusDeletedMsg is broadcast after a status was deleted.
type StatusDeletedMsg struct {
	ID  string
	Err error
}

// NoticeMsg sets the status line.
type NoticeMsg struct {
	Text  string
	Error bool
}

// Cmd wraps msg into a command.
func Cmd(msg tea.Msg) tea.Cmd {
	return func() tea.Msg { return msg }
}

// Notice returns a command that sets the status line.
func Notice(text string) tea.Cmd {
	return Cmd(NoticeMsg{Text: text})
}

// NoticeErr returns a command that shows err on the status line.
func NoticeErr(prefix string, err error) tea.Cmd {
	return Cmd(NoticeMsg{Text: prefix + ": " + err.Error(), Error: true})
}
