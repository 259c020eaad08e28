package viewmodel

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"unicode/utf8"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/segmentio/ksuid"

	"github.com/CrestNiraj12/kabinka/app"
	"github.com/CrestNiraj12/kabinka/domain"
)

// ComposeMode is what the composer publishes.
type ComposeMode int

const (
	ComposeNew ComposeMode = iota
	ComposeReply
	ComposeEdit
)

// ComposePhase is the submission state of a draft.
type ComposePhase int

const (
	ComposeIdle ComposePhase = iota
	ComposePublishing
	ComposeSuccess
	ComposeError
)

func (p ComposePhase) String() string {
	switch p {
	case ComposeIdle:
		return "idle"
	case ComposePublishing:
		return "publishing"
	case ComposeSuccess:
		return "success"
	case ComposeError:
		return "error"
	default:
		return fmt.Sprintf("compose(%d)", int(p))
	}
}

const uploadFailed = "Upload failed"

var errPollTooFewOptions = errors.New("a poll needs at least two options")

// PublishResultMsg reports the outcome of Publish.
type PublishResultMsg struct {
	Edited bool
	Status domain.Status
	Err    error
}

// UploadProgressMsg reports bytes sent for the attachment at Source.
type UploadProgressMsg struct {
	Source   string
	Token    string
	Progress float64

	next <-chan tea.Msg
}

// UploadResultMsg reports a finished upload for the attachment at Source.
type UploadResultMsg struct {
	Source     string
	Token      string
	Attachment domain.Attachment
	Err        error
}

type draftSnapshot struct {
	text       string
	spoiler    string
	cw         bool
	visibility domain.Visibility
	media      []string
	poll       *domain.DraftPoll
}

// Compose holds a draft status and submits it.
type Compose struct {
	statuses app.StatusService
	media    app.MediaService
	session  app.Session

	mode        ComposeMode
	inReplyTo   string
	replyHandle string
	editID      string

	text        string
	spoiler     string
	cw          bool
	visibility  domain.Visibility
	attachments []domain.DraftAttachment
	poll        *domain.DraftPoll

	phase     ComposePhase
	errMsg    string
	published domain.Status

	idempotencyKey string
	uploads        map[string]string // source -> upload token
	initial        draftSnapshot

	ctx    context.Context
	cancel context.CancelFunc
}

// NewCompose returns an empty draft for a new status.
func NewCompose(statuses app.StatusService, media app.MediaService, session app.Session) Compose {
	ctx, cancel := context.WithCancel(context.Background())
	c := Compose{
		statuses:   statuses,
		media:      media,
		session:    session,
		visibility: domain.VisibilityPublic,
		uploads:    make(map[string]string),
		ctx:        ctx,
		cancel:     cancel,
	}
	c.initial = c.snapshot()
	return c
}

// NewReply returns a draft answering parent. The boosted post is answered for
// a boost. Visibility is copied and the author is mentioned.
func NewReply(statuses app.StatusService, media app.MediaService, session app.Session, parent domain.Status) Compose {
	c := NewCompose(statuses, media, session)
	target := parent.Target()
	c.mode = ComposeReply
	c.inReplyTo = target.ID
	c.replyHandle = target.Account.Acct
	c.visibility = target.Visibility
	if c.visibility == "" {
		c.visibility = domain.VisibilityPublic
	}
	if target.Account.Acct != "" {
		c.text = "@" + target.Account.Acct + " "
	}
	c.initial = c.snapshot()
	return c
}

// NewEdit returns a draft loaded from an existing status.
func NewEdit(statuses app.StatusService, media app.MediaService, session app.Session, st domain.Status) Compose {
	c := NewCompose(statuses, media, session)
	c.mode = ComposeEdit
	c.editID = st.ID
	c.inReplyTo = st.InReplyToID
	c.text = st.Content
	c.spoiler = st.SpoilerText
	c.cw = st.SpoilerText != ""
	c.visibility = domain.ParseVisibility(string(st.Visibility))
	for _, a := range st.Attachments {
		c.attachments = append(c.attachments, domain.DraftAttachment{
			Source:      a.URL,
			Description: a.Description,
			Progress:    1,
			UploadedID:  a.ID,
		})
	}
	if st.Poll != nil {
		p := domain.NewDraftPoll()
		p.Options = p.Options[:0]
		for _, o := range st.Poll.Options {
			p.Options = append(p.Options, o.Title)
		}
		p.Multiple = st.Poll.Multiple
		c.poll = &p
	}
	c.initial = c.snapshot()
	return c
}

// Mode reports whether the draft is new, a reply or an edit.
func (c Compose) Mode() ComposeMode { return c.mode }

func (c Compose) Text() string                          { return c.text }
func (c Compose) SpoilerText() string                   { return c.spoiler }
func (c Compose) ContentWarning() bool                  { return c.cw }
func (c Compose) Visibility() domain.Visibility         { return c.visibility }
func (c Compose) Attachments() []domain.DraftAttachment { return c.attachments }
func (c Compose) Phase() ComposePhase                   { return c.phase }
func (c Compose) Err() string                           { return c.errMsg }
func (c Compose) EditID() string                        { return c.editID }

// Published returns the server's copy of the status after Success.
func (c Compose) Published() domain.Status { return c.published }

// InReplyTo returns the status being answered and its author's handle.
func (c Compose) InReplyTo() (id, handle string) { return c.inReplyTo, c.replyHandle }

// Poll returns the draft poll, if any.
func (c Compose) Poll() (domain.DraftPoll, bool) {
	if c.poll == nil {
		return domain.DraftPoll{}, false
	}
	return *c.poll, true
}

// CharLimit is the active instance's status length limit.
func (c Compose) CharLimit() int {
	if c.session == nil {
		return domain.DefaultMaxStatusChars
	}
	inst, _ := c.session.InstanceInfo(c.session.Domain())
	return inst.CharLimit()
}

// Remaining is how many characters may still be typed. It goes negative past the limit.
func (c Compose) Remaining() int {
	return c.CharLimit() - utf8.RuneCountInString(c.text)
}

func (c Compose) attachmentLimit() int {
	if c.session == nil {
		return domain.DefaultMaxAttachments
	}
	inst, _ := c.session.InstanceInfo(c.session.Domain())
	return inst.AttachmentLimit()
}

func (c Compose) pollOptionLimit() int {
	if c.session == nil {
		return domain.DefaultMaxPollOptions
	}
	inst, _ := c.session.InstanceInfo(c.session.Domain())
	return inst.PollOptionLimit()
}

// HasUnsavedChanges reports whether the draft differs from how it was opened.
func (c Compose) HasUnsavedChanges() bool {
	now := c.snapshot()
	if now.text != c.initial.text || now.spoiler != c.initial.spoiler || now.cw != c.initial.cw {
		return true
	}
	if now.visibility != c.initial.visibility || !slices.Equal(now.media, c.initial.media) {
		return true
	}
	if (now.poll == nil) != (c.initial.poll == nil) {
		return true
	}
	if now.poll != nil {
		return !slices.Equal(now.poll.Options, c.initial.poll.Options) ||
			now.poll.DurationSeconds != c.initial.poll.DurationSeconds ||
			now.poll.Multiple != c.initial.poll.Multiple
	}
	return false
}

func (c Compose) snapshot() draftSnapshot {
	s := draftSnapshot{
		text:       c.text,
		spoiler:    c.spoiler,
		cw:         c.cw,
		visibility: c.visibility,
	}
	for _, a := range c.attachments {
		s.media = append(s.media, a.Source)
	}
	if c.poll != nil {
		p := *c.poll
		p.Options = slices.Clone(c.poll.Options)
		s.poll = &p
	}
	return s
}

// touch drops the idempotency key so a changed draft is not deduplicated
// against an earlier attempt.
func (c *Compose) touch() {
	c.idempotencyKey = ""
}

// SetText replaces the status text.
func (c *Compose) SetText(s string) {
	if s != c.text {
		c.text = s
		c.touch()
	}
}

// InsertText appends s, e.g. an emoji shortcode.
func (c *Compose) InsertText(s string) {
	c.SetText(c.text + s)
}

// SetVisibility sets who can see the status.
func (c *Compose) SetVisibility(v domain.Visibility) {
	c.visibility = domain.ParseVisibility(string(v))
	c.touch()
}

// CycleVisibility moves to the next visibility.
func (c *Compose) CycleVisibility() {
	c.SetVisibility(c.visibility.Next())
}

// ToggleContentWarning turns the content warning on or off. Turning it off clears its text.
func (c *Compose) ToggleContentWarning() {
	c.cw = !c.cw
	if !c.cw {
		c.spoiler = ""
	}
	c.touch()
}

// SetSpoilerText sets the content warning text.
func (c *Compose) SetSpoilerText(s string) {
	c.spoiler = s
	c.touch()
}

// ClearError leaves the Error state.
func (c *Compose) ClearError() {
	if c.phase == ComposeError {
		c.phase = ComposeIdle
		c.errMsg = ""
	}
}

func (c *Compose) fail(msg string) {
	c.phase = ComposeError
	c.errMsg = msg
}

// AddAttachment queues the file at path and starts uploading it.
func (c *Compose) AddAttachment(path, description string) tea.Cmd {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil
	}
	if c.poll != nil {
		c.fail(domain.ErrPollWithMedia.Error())
		return nil
	}
	if len(c.attachments) >= c.attachmentLimit() {
		c.fail(domain.ErrTooManyAttachments.Error())
		return nil
	}
	for _, a := range c.attachments {
		if a.Source == path {
			return nil
		}
	}
	c.attachments = append(c.attachments, domain.DraftAttachment{Source: path, Description: description})
	token := ksuid.New().String()
	c.uploads[path] = token
	c.touch()
	return c.upload(path, description, token)
}

func (c *Compose) upload(path, description, token string) tea.Cmd {
	ch := make(chan tea.Msg, 8)
	ctx, media := c.ctx, c.media
	go func() {
		defer close(ch)
		att, err := media.Upload(ctx, path, description, func(sent, total int64) {
			if total <= 0 {
				return
			}
			msg := UploadProgressMsg{Source: path, Token: token, Progress: float64(sent) / float64(total), next: ch}
			select {
			case ch <- msg:
			default:
			}
		})
		select {
		case ch <- UploadResultMsg{Source: path, Token: token, Attachment: att, Err: err}:
		case <-ctx.Done():
		}
	}()
	return waitUpload(ch)
}

func waitUpload(ch <-chan tea.Msg) tea.Cmd {
	return func() tea.Msg {
		msg, ok := <-ch
		if !ok {
			return nil
		}
		return msg
	}
}

// RemoveAttachment drops the attachment at source. An upload still running for
// it is ignored when it finishes.
func (c *Compose) RemoveAttachment(source string) {
	idx := slices.IndexFunc(c.attachments, func(a domain.DraftAttachment) bool { return a.Source == source })
	if idx < 0 {
		return
	}
	c.attachments = slices.Delete(c.attachments, idx, idx+1)
	delete(c.uploads, source)
	c.touch()
}

// AddPoll attaches an empty poll.
func (c *Compose) AddPoll() error {
	if len(c.attachments) > 0 {
		c.fail(domain.ErrPollWithMedia.Error())
		return domain.ErrPollWithMedia
	}
	if c.poll == nil {
		p := domain.NewDraftPoll()
		c.poll = &p
		c.touch()
	}
	return nil
}

// RemovePoll detaches the poll.
func (c *Compose) RemovePoll() {
	if c.poll != nil {
		c.poll = nil
		c.touch()
	}
}

// SetPollOption sets the text of option i.
func (c *Compose) SetPollOption(i int, s string) {
	if c.poll == nil || i < 0 || i >= len(c.poll.Options) {
		return
	}
	c.poll.Options = slices.Clone(c.poll.Options)
	c.poll.Options[i] = s
	c.touch()
}

// AddPollOption appends an empty option up to the instance limit.
func (c *Compose) AddPollOption() bool {
	if c.poll == nil || len(c.poll.Options) >= c.pollOptionLimit() {
		return false
	}
	c.poll.Options = append(slices.Clone(c.poll.Options), "")
	c.touch()
	return true
}

// RemovePollOption removes option i, keeping at least two.
func (c *Compose) RemovePollOption(i int) bool {
	if c.poll == nil || len(c.poll.Options) <= domain.MinPollOptions || i < 0 || i >= len(c.poll.Options) {
		return false
	}
	c.poll.Options = slices.Delete(slices.Clone(c.poll.Options), i, i+1)
	c.touch()
	return true
}

// CyclePollDuration moves to the next preset duration.
func (c *Compose) CyclePollDuration() {
	if c.poll != nil {
		c.poll.DurationSeconds = domain.NextPollDuration(c.poll.DurationSeconds)
		c.touch()
	}
}

// TogglePollMultiple switches between single and multiple choice.
func (c *Compose) TogglePollMultiple() {
	if c.poll != nil {
		c.poll.Multiple = !c.poll.Multiple
		c.touch()
	}
}

// Publish validates the draft and sends it. Only attachments whose upload has
// completed by now are included.
func (c *Compose) Publish() tea.Cmd {
	if c.phase == ComposePublishing {
		return nil
	}
	if c.session == nil {
		c.fail(domain.ErrNoSession.Error())
		return nil
	}
	if _, ok := c.session.Current(); !ok {
		c.fail(domain.ErrNoSession.Error())
		return nil
	}
	if strings.TrimSpace(c.text) == "" {
		c.fail(domain.ErrEmptyStatus.Error())
		return nil
	}
	if n, limit := utf8.RuneCountInString(c.text), c.CharLimit(); n > limit {
		c.fail(fmt.Sprintf("%s (%d/%d)", domain.ErrStatusTooLong, n, limit))
		return nil
	}

	params := app.StatusParams{
		Text:        c.text,
		Visibility:  c.visibility,
		InReplyToID: c.inReplyTo,
	}
	if c.cw {
		params.SpoilerText = strings.TrimSpace(c.spoiler)
		params.Sensitive = params.SpoilerText == "" && c.mode != ComposeEdit
	}
	for _, a := range c.attachments {
		if a.Uploaded() {
			params.MediaIDs = append(params.MediaIDs, a.UploadedID)
		}
	}
	if c.poll != nil {
		opts := c.poll.FilledOptions()
		if len(opts) < domain.MinPollOptions {
			c.fail(errPollTooFewOptions.Error())
			return nil
		}
		params.Poll = &app.PollParams{Options: opts, ExpiresIn: c.poll.DurationSeconds, Multiple: c.poll.Multiple}
	}

	c.phase = ComposePublishing
	c.errMsg = ""
	svc, ctx := c.statuses, c.ctx
	if c.mode == ComposeEdit {
		id := c.editID
		return func() tea.Msg {
			st, err := svc.Edit(ctx, id, params)
			return PublishResultMsg{Edited: true, Status: st, Err: err}
		}
	}
	if c.idempotencyKey == "" {
		c.idempotencyKey = ksuid.New().String()
	}
	params.IdempotencyKey = c.idempotencyKey
	return func() tea.Msg {
		st, err := svc.Create(ctx, params)
		return PublishResultMsg{Status: st, Err: err}
	}
}

// Update folds upload and publish results into the draft.
func (c *Compose) Update(msg tea.Msg) tea.Cmd {
	if c.ctx.Err() != nil {
		return nil
	}
	switch msg := msg.(type) {
	case UploadProgressMsg:
		if c.uploads[msg.Source] == msg.Token {
			c.setAttachment(msg.Source, func(a domain.DraftAttachment) domain.DraftAttachment {
				if !a.Uploaded() {
					a.Progress = min(max(msg.Progress, 0), 1)
				}
				return a
			})
		}
		return waitUpload(msg.next)

	case UploadResultMsg:
		if c.uploads[msg.Source] != msg.Token {
			return nil
		}
		delete(c.uploads, msg.Source)
		if msg.Err != nil {
			c.RemoveAttachment(msg.Source)
			c.fail(uploadFailed)
			return nil
		}
		c.setAttachment(msg.Source, func(a domain.DraftAttachment) domain.DraftAttachment {
			a.Progress = 1
			a.UploadedID = msg.Attachment.ID
			return a
		})
		return nil

	case PublishResultMsg:
		if c.phase != ComposePublishing {
			return nil
		}
		if msg.Err != nil {
			c.fail(msg.Err.Error())
			return nil
		}
		c.phase = ComposeSuccess
		c.published = msg.Status
		return nil
	}
	return nil
}

func (c *Compose) setAttachment(source string, fn func(domain.DraftAttachment) domain.DraftAttachment) {
	next := slices.Clone(c.attachments)
	for i, a := range next {
		if a.Source == source {
			next[i] = fn(a)
		}
	}
	c.attachments = next
}

// Close cancels in-flight uploads and requests.
func (c *Compose) Close() {
	if c.cancel != nil {
		c.cancel()
	}
}
