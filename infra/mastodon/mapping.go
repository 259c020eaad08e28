package mastodon

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/CrestNiraj12/kabinka/domain"
)

func parseTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

// optionalID renders a JSON id that may be a string, a number or null.
func optionalID(v any) string {
	switch id := v.(type) {
	case nil:
		return ""
	case string:
		return id
	case float64:
		return strconv.FormatFloat(id, 'f', -1, 64)
	default:
		return fmt.Sprintf("%v", id)
	}
}

func mapAccount(a mastodonAccount) domain.Account {
	return domain.Account{
		ID:             sanitizeForTerminal(a.ID),
		Username:       sanitizeForTerminal(a.Username),
		Acct:           sanitizeForTerminal(a.Acct),
		DisplayName:    sanitizeForTerminal(a.DisplayName),
		Note:           stripHTML(a.Note),
		URL:            sanitizeForTerminal(a.URL),
		Avatar:         a.Avatar,
		Header:         a.Header,
		Locked:         a.Locked,
		Bot:            a.Bot,
		FollowersCount: a.FollowersCount,
		FollowingCount: a.FollowingCount,
		StatusesCount:  a.StatusesCount,
		CreatedAt:      parseTime(a.CreatedAt),
	}
}

func mapMediaAttachments(in []mastodonMediaAttachment) []domain.Attachment {
	if len(in) == 0 {
		return nil
	}
	out := make([]domain.Attachment, 0, len(in))
	for _, m := range in {
		out = append(out, mapAttachment(m))
	}
	return out
}

func mapAttachment(m mastodonMediaAttachment) domain.Attachment {
	u := strings.TrimSpace(m.URL)
	if u == "" {
		u = strings.TrimSpace(m.PreviewURL)
	}
	return domain.Attachment{
		ID:          m.ID,
		Type:        m.Type,
		URL:         sanitizeForTerminal(u),
		PreviewURL:  sanitizeForTerminal(m.PreviewURL),
		Description: sanitizeForTerminal(strings.TrimSpace(m.Description)),
	}
}

func mapPoll(p *mastodonPoll) *domain.Poll {
	if p == nil {
		return nil
	}
	out := &domain.Poll{
		ID:         p.ID,
		ExpiresAt:  parseTime(p.ExpiresAt),
		Expired:    p.Expired,
		Multiple:   p.Multiple,
		VotesCount: p.VotesCount,
		Voted:      p.Voted,
	}
	for _, o := range p.Options {
		out.Options = append(out.Options, domain.PollOption{Title: sanitizeForTerminal(o.Title), VotesCount: o.VotesCount})
	}
	return out
}

func mapStatus(st mastodonStatus) domain.Status {
	out := domain.Status{
		ID:              st.ID,
		Account:         mapAccount(st.Account),
		Content:         stripHTML(st.Content),
		SpoilerText:     sanitizeForTerminal(st.SpoilerText),
		Sensitive:       st.Sensitive,
		Visibility:      domain.ParseVisibility(st.Visibility),
		Language:        st.Language,
		URL:             sanitizeForTerminal(st.URL),
		CreatedAt:       parseTime(st.CreatedAt),
		EditedAt:        parseTime(st.EditedAt),
		InReplyToID:     optionalID(st.InReplyToID),
		Attachments:     mapMediaAttachments(st.MediaAttachments),
		Poll:            mapPoll(st.Poll),
		RepliesCount:    st.RepliesCount,
		ReblogsCount:    st.ReblogsCount,
		FavouritesCount: st.FavouritesCount,
		Favourited:      st.Favourited,
		Reblogged:       st.Reblogged,
		Bookmarked:      st.Bookmarked,
	}
	for _, t := range st.Tags {
		out.Tags = append(out.Tags, sanitizeForTerminal(t.Name))
	}
	if st.Reblog != nil {
		inner := mapStatus(*st.Reblog)
		out.Reblog = &inner
	}
	return out
}

func mapStatuses(in []mastodonStatus) []domain.Status {
	out := make([]domain.Status, 0, len(in))
	for _, st := range in {
		out = append(out, mapStatus(st))
	}
	return out
}

func mapRelationship(r mastodonRelationship) domain.Relationship {
	return domain.Relationship{
		ID:         r.ID,
		Following:  r.Following,
		FollowedBy: r.FollowedBy,
		Requested:  r.Requested,
		Blocking:   r.Blocking,
		Muting:     r.Muting,
	}
}

func mapList(l mastodonList) domain.FollowList {
	policy := domain.RepliesPolicy(l.RepliesPolicy)
	if policy == "" {
		policy = domain.RepliesList
	}
	return domain.FollowList{
		ID:            l.ID,
		Title:         sanitizeForTerminal(l.Title),
		RepliesPolicy: policy,
		Exclusive:     l.Exclusive,
	}
}

func mapFilter(f mastodonFilter) domain.Filter {
	out := domain.Filter{
		ID:        f.ID,
		Title:     sanitizeForTerminal(f.Title),
		Action:    domain.FilterAction(f.FilterAction),
		ExpiresAt: parseTime(f.ExpiresAt),
	}
	if out.Action == "" {
		out.Action = domain.FilterWarn
	}
	for _, c := range f.Context {
		out.Context = append(out.Context, domain.FilterContext(c))
	}
	for _, k := range f.Keywords {
		out.Keywords = append(out.Keywords, domain.FilterKeyword{
			ID:        k.ID,
			Keyword:   sanitizeForTerminal(k.Keyword),
			WholeWord: k.WholeWord,
		})
	}
	return out
}

func mapTag(t mastodonTag) domain.Hashtag {
	out := domain.Hashtag{
		Name:      sanitizeForTerminal(t.Name),
		URL:       sanitizeForTerminal(t.URL),
		Following: t.Following,
	}
	for _, h := range t.History {
		day, _ := strconv.ParseInt(h.Day, 10, 64)
		uses, _ := strconv.Atoi(h.Uses)
		accounts, _ := strconv.Atoi(h.Accounts)
		out.History = append(out.History, domain.TagUsage{
			Day:      time.Unix(day, 0).UTC(),
			Uses:     uses,
			Accounts: accounts,
		})
	}
	return out
}

func mapNotification(n mastodonNotification) domain.Notification {
	out := domain.Notification{
		ID:        n.ID,
		Type:      domain.NotificationType(n.Type),
		CreatedAt: parseTime(n.CreatedAt),
		Account:   mapAccount(n.Account),
	}
	if n.Status != nil {
		st := mapStatus(*n.Status)
		out.Status = &st
	}
	return out
}

func mapInstance(i mastodonInstance) domain.Instance {
	out := domain.Instance{
		Domain:           i.Domain,
		Title:            sanitizeForTerminal(i.Title),
		Description:      stripHTML(i.Description),
		Version:          sanitizeForTerminal(i.Version),
		MaxStatusChars:   i.Configuration.Statuses.MaxCharacters,
		MaxAttachments:   i.Configuration.Statuses.MaxMediaAttached,
		MaxPollOptions:   i.Configuration.Polls.MaxOptions,
		ContactEmail:     sanitizeForTerminal(i.Contact.Email),
		ContactAccount:   sanitizeForTerminal(i.Contact.Account.Acct),
		RegistrationOpen: i.Registrations.Enabled,
	}
	for _, r := range i.Rules {
		out.Rules = append(out.Rules, domain.InstanceRule{ID: r.ID, Text: sanitizeForTerminal(r.Text)})
	}
	return out
}
