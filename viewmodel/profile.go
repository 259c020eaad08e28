package viewmodel

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/CrestNiraj12/kabinka/app"
	"github.com/CrestNiraj12/kabinka/domain"
)

// ProfileLoadedMsg carries an account, its relationship and a page of its posts.
type ProfileLoadedMsg struct {
	AccountID    string
	Seq          int
	Page         bool
	Account      domain.Account
	Relationship *domain.Relationship
	Statuses     []domain.Status
	Err          error
}

// FollowResultMsg reports a follow or unfollow request.
type FollowResultMsg struct {
	AccountID    string
	Follow       bool
	Relationship domain.Relationship
	Err          error
}

// Profile holds an account header, the relationship to it and its posts.
type Profile struct {
	accounts app.AccountService
	statuses app.StatusService
	session  app.Session

	account       domain.Account
	relationship  *domain.Relationship
	screen        Screen[domain.Status]
	inter         Interactions
	hasMore       bool
	loadingMore   bool
	followPending bool
	notice        string

	ctx    context.Context
	cancel context.CancelFunc
}

// NewProfile returns the profile of account in the Loading state. Only the
// account id has to be set; the rest is shown until the fetch completes.
func NewProfile(accounts app.AccountService, statuses app.StatusService, session app.Session, account domain.Account) Profile {
	ctx, cancel := context.WithCancel(context.Background())
	return Profile{
		accounts: accounts,
		statuses: statuses,
		session:  session,
		account:  account,
		inter:    NewInteractions(),
		ctx:      ctx,
		cancel:   cancel,
	}
}

func (p Profile) Account() domain.Account       { return p.account }
func (p Profile) Screen() Screen[domain.Status] { return p.screen }
func (p Profile) Statuses() []domain.Status     { return p.screen.Items() }
func (p Profile) Notice() string                { return p.notice }
func (p Profile) HasMore() bool                 { return p.hasMore }
func (p Profile) FollowPending() bool           { return p.followPending }

// Relationship returns the relationship once it is known.
func (p Profile) Relationship() (domain.Relationship, bool) {
	if p.relationship == nil {
		return domain.Relationship{}, false
	}
	return *p.relationship, true
}

// Own reports whether the profile belongs to the active account.
func (p Profile) Own() bool {
	if p.session == nil {
		return false
	}
	cur, ok := p.session.Current()
	return ok && cur.AccountID != "" && cur.AccountID == p.account.ID
}

// InFlight reports whether a toggle on the target id awaits a response.
func (p Profile) InFlight(id string, kind domain.Interaction) bool {
	return p.inter.InFlight(id, kind)
}

// Load fetches the account, the relationship when logged in, and the first page of posts.
func (p *Profile) Load() tea.Cmd {
	seq := p.screen.Begin()
	p.hasMore, p.loadingMore, p.notice = false, false, ""
	accounts, ctx, id := p.accounts, p.ctx, p.account.ID
	withRel := authenticated(p.session) && !p.Own()
	return func() tea.Msg {
		msg := ProfileLoadedMsg{AccountID: id, Seq: seq}
		msg.Account, msg.Err = accounts.Account(ctx, id)
		if msg.Err != nil {
			return msg
		}
		if withRel {
			if rel, err := accounts.Relationship(ctx, id); err == nil {
				msg.Relationship = &rel
			}
		}
		msg.Statuses, msg.Err = accounts.Statuses(ctx, id, TimelinePageSize, "")
		return msg
	}
}

// Refresh reloads the profile.
func (p *Profile) Refresh() tea.Cmd { return p.Load() }

// LoadMore fetches posts older than the last one shown.
func (p *Profile) LoadMore() tea.Cmd {
	items := p.screen.Items()
	if p.screen.Phase() != PhaseContent || p.loadingMore || !p.hasMore || len(items) == 0 {
		return nil
	}
	p.loadingMore = true
	accounts, ctx, id, seq := p.accounts, p.ctx, p.account.ID, p.screen.Seq()
	maxID := items[len(items)-1].ID
	return func() tea.Msg {
		statuses, err := accounts.Statuses(ctx, id, TimelinePageSize, maxID)
		return ProfileLoadedMsg{AccountID: id, Seq: seq, Page: true, Statuses: statuses, Err: err}
	}
}

// ToggleFollow follows or unfollows the account. It is a no-op while a
// request is pending, for the own profile, or before the relationship is known.
func (p *Profile) ToggleFollow() tea.Cmd {
	if p.followPending || p.relationship == nil || p.Own() || !authenticated(p.session) {
		return nil
	}
	follow := !(p.relationship.Following || p.relationship.Requested)
	p.followPending = true
	p.notice = ""
	accounts, ctx, id := p.accounts, p.ctx, p.account.ID
	return func() tea.Msg {
		rel, err := accounts.SetFollowing(ctx, id, follow)
		return FollowResultMsg{AccountID: id, Follow: follow, Relationship: rel, Err: err}
	}
}

func (p *Profile) ToggleFavorite(id string) tea.Cmd { return p.toggle(id, domain.Favourite) }
func (p *Profile) ToggleReblog(id string) tea.Cmd   { return p.toggle(id, domain.Reblog) }
func (p *Profile) ToggleBookmark(id string) tea.Cmd { return p.toggle(id, domain.Bookmark) }

func (p *Profile) toggle(id string, kind domain.Interaction) tea.Cmd {
	if !authenticated(p.session) || p.screen.Phase() != PhaseContent {
		return nil
	}
	next, req, ok := p.inter.Begin(p.screen.Items(), id, kind)
	if !ok {
		return nil
	}
	p.notice = ""
	p.screen.SetItems(next)
	return p.inter.Send(p.ctx, p.statuses, req)
}

// Upsert replaces an edited status.
func (p *Profile) Upsert(st domain.Status) {
	p.screen.Map(func(s domain.Status) domain.Status {
		if s.ID == st.ID {
			return st
		}
		return s
	})
}

// Remove drops a deleted status and boosts of it.
func (p *Profile) Remove(id string) {
	p.screen.Remove(func(s domain.Status) bool {
		return s.ID == id || (s.Reblog != nil && s.Reblog.ID == id)
	}, "No posts yet")
}

// Update folds profile, follow and interaction results in.
func (p *Profile) Update(msg tea.Msg) tea.Cmd {
	if p.ctx.Err() != nil {
		return nil
	}
	switch msg := msg.(type) {
	case ProfileLoadedMsg:
		if msg.AccountID != p.account.ID || msg.Seq != p.screen.Seq() {
			return nil
		}
		if msg.Page {
			p.loadingMore = false
			if msg.Err != nil {
				p.notice = "Could not load more: " + msg.Err.Error()
				return nil
			}
			seen := make(map[string]struct{}, len(p.screen.Items()))
			for _, s := range p.screen.Items() {
				seen[s.ID] = struct{}{}
			}
			added := p.screen.Append(msg.Statuses, func(s domain.Status) bool {
				_, ok := seen[s.ID]
				return ok
			})
			p.hasMore = added > 0 && len(msg.Statuses) >= TimelinePageSize
			return nil
		}
		if msg.Account.ID != "" {
			p.account = msg.Account
		}
		if msg.Relationship != nil {
			p.relationship = msg.Relationship
		}
		p.screen.Resolve(msg.Seq, msg.Statuses, msg.Err, "No posts yet")
		p.hasMore = msg.Err == nil && len(msg.Statuses) >= TimelinePageSize

	case FollowResultMsg:
		if msg.AccountID != p.account.ID {
			return nil
		}
		p.followPending = false
		if msg.Err != nil {
			verb := "follow"
			if !msg.Follow {
				verb = "unfollow"
			}
			p.notice = fmt.Sprintf("Could not %s: %v", verb, msg.Err)
			return nil
		}
		rel := msg.Relationship
		p.relationship = &rel

	case InteractionResultMsg:
		next := p.inter.Settle(p.screen.Items(), msg)
		if p.screen.Phase() == PhaseContent {
			p.screen.SetItems(next)
		}
		if msg.Err != nil && msg.Owner == p.inter.owner {
			p.notice = fmt.Sprintf("Could not %s: %v", msg.Kind, msg.Err)
		}
	}
	return nil
}

// Close cancels in-flight requests.
func (p *Profile) Close() {
	if p.cancel != nil {
		p.cancel()
	}
}
