package mastodon

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/CrestNiraj12/kabinka/domain"
)

// listService implements app.ListService.
type listService struct {
	client *Client
}

// NewListService creates a ListService backed by Mastodon.
func NewListService(client *Client) *listService {
	return &listService{client: client}
}

func listForm(l domain.FollowList) (url.Values, error) {
	title := strings.TrimSpace(l.Title)
	if title == "" {
		return nil, fmt.Errorf("list title is required")
	}
	form := url.Values{"title": {title}}
	if l.RepliesPolicy != "" {
		form.Set("replies_policy", string(l.RepliesPolicy))
	}
	form.Set("exclusive", strconv.FormatBool(l.Exclusive))
	return form, nil
}

func (s *listService) Lists(ctx context.Context) ([]domain.FollowList, error) {
	data, err := s.client.Get(ctx, "/api/v1/lists")
	if err != nil {
		return nil, fmt.Errorf("fetching lists: %w", err)
	}
	lists, err := decode[[]mastodonList](data, "lists")
	if err != nil {
		return nil, err
	}
	out := make([]domain.FollowList, 0, len(lists))
	for _, l := range lists {
		out = append(out, mapList(l))
	}
	return out, nil
}

func (s *listService) CreateList(ctx context.Context, l domain.FollowList) (domain.FollowList, error) {
	form, err := listForm(l)
	if err != nil {
		return domain.FollowList{}, err
	}
	data, err := s.client.Post(ctx, "/api/v1/lists", form)
	if err != nil {
		return domain.FollowList{}, fmt.Errorf("creating list: %w", err)
	}
	created, err := decode[mastodonList](data, "list")
	if err != nil {
		return domain.FollowList{}, err
	}
	return mapList(created), nil
}

func (s *listService) UpdateList(ctx context.Context, l domain.FollowList) (domain.FollowList, error) {
	form, err := listForm(l)
	if err != nil {
		return domain.FollowList{}, err
	}
	data, err := s.client.Put(ctx, "/api/v1/lists/"+url.PathEscape(l.ID), form)
	if err != nil {
		return domain.FollowList{}, fmt.Errorf("updating list: %w", err)
	}
	updated, err := decode[mastodonList](data, "list")
	if err != nil {
		return domain.FollowList{}, err
	}
	return mapList(updated), nil
}

func (s *listService) DeleteList(ctx context.Context, id string) error {
	if _, err := s.client.Delete(ctx, "/api/v1/lists/"+url.PathEscape(id)); err != nil {
		return fmt.Errorf("deleting list: %w", err)
	}
	return nil
}

func (s *listService) ListAccounts(ctx context.Context, id string) ([]domain.Account, error) {
	data, err := s.client.Get(ctx, "/api/v1/lists/"+url.PathEscape(id)+"/accounts?limit=0")
	if err != nil {
		return nil, fmt.Errorf("fetching list members: %w", err)
	}
	accounts, err := decode[[]mastodonAccount](data, "list members")
	if err != nil {
		return nil, err
	}
	out := make([]domain.Account, 0, len(accounts))
	for _, a := range accounts {
		out = append(out, mapAccount(a))
	}
	return out, nil
}

func (s *listService) AddListAccounts(ctx context.Context, id string, accountIDs []string) error {
	if len(accountIDs) == 0 {
		return nil
	}
	form := url.Values{"account_ids[]": accountIDs}
	if _, err := s.client.Post(ctx, "/api/v1/lists/"+url.PathEscape(id)+"/accounts", form); err != nil {
		return fmt.Errorf("adding list members: %w", err)
	}
	return nil
}

func (s *listService) RemoveListAccounts(ctx context.Context, id string, accountIDs []string) error {
	if len(accountIDs) == 0 {
		return nil
	}
	params := url.Values{"account_ids[]": accountIDs}
	if _, err := s.client.Delete(ctx, "/api/v1/lists/"+url.PathEscape(id)+"/accounts?"+params.Encode()); err != nil {
		return fmt.Errorf("removing list members: %w", err)
	}
	return nil
}

// filterService implements app.FilterService with the v2 filters API.
type filterService struct {
	client *Client
}

// NewFilterService creates a FilterService backed by Mastodon.
func NewFilterService(client *Client) *filterService {
	return &filterService{client: client}
}

func filterForm(f domain.Filter, withKeywords bool) (url.Values, error) {
	title := strings.TrimSpace(f.Title)
	if title == "" {
		return nil, fmt.Errorf("filter title is required")
	}
	form := url.Values{"title": {title}}
	contexts := f.Context
	if len(contexts) == 0 {
		contexts = domain.AllFilterContexts
	}
	for _, c := range contexts {
		form.Add("context[]", string(c))
	}
	action := f.Action
	if action == "" {
		action = domain.FilterWarn
	}
	form.Set("filter_action", string(action))
	if !f.ExpiresAt.IsZero() {
		secs := int(time.Until(f.ExpiresAt).Seconds())
		if secs > 0 {
			form.Set("expires_in", strconv.Itoa(secs))
		}
	}
	if withKeywords {
		for _, k := range f.Keywords {
			if strings.TrimSpace(k.Keyword) == "" {
				continue
			}
			form.Add("keywords_attributes[][keyword]", strings.TrimSpace(k.Keyword))
			form.Add("keywords_attributes[][whole_word]", strconv.FormatBool(k.WholeWord))
		}
	}
	return form, nil
}

func (s *filterService) Filters(ctx context.Context) ([]domain.Filter, error) {
	data, err := s.client.Get(ctx, "/api/v2/filters")
	if err != nil {
		return nil, fmt.Errorf("fetching filters: %w", err)
	}
	filters, err := decode[[]mastodonFilter](data, "filters")
	if err != nil {
		return nil, err
	}
	out := make([]domain.Filter, 0, len(filters))
	for _, f := range filters {
		out = append(out, mapFilter(f))
	}
	return out, nil
}

func (s *filterService) CreateFilter(ctx context.Context, f domain.Filter) (domain.Filter, error) {
	form, err := filterForm(f, true)
	if err != nil {
		return domain.Filter{}, err
	}
	data, err := s.client.Post(ctx, "/api/v2/filters", form)
	if err != nil {
		return domain.Filter{}, fmt.Errorf("creating filter: %w", err)
	}
	created, err := decode[mastodonFilter](data, "filter")
	if err != nil {
		return domain.Filter{}, err
	}
	return mapFilter(created), nil
}

// UpdateFilter changes title, contexts, action and expiry. Keywords are left as they are.
func (s *filterService) UpdateFilter(ctx context.Context, f domain.Filter) (domain.Filter, error) {
	form, err := filterForm(f, false)
	if err != nil {
		return domain.Filter{}, err
	}
	data, err := s.client.Put(ctx, "/api/v2/filters/"+url.PathEscape(f.ID), form)
	if err != nil {
		return domain.Filter{}, fmt.Errorf("updating filter: %w", err)
	}
	updated, err := decode[mastodonFilter](data, "filter")
	if err != nil {
		return domain.Filter{}, err
	}
	return mapFilter(updated), nil
}

func (s *filterService) DeleteFilter(ctx context.Context, id string) error {
	if _, err := s.client.Delete(ctx, "/api/v2/filters/"+url.PathEscape(id)); err != nil {
		return fmt.Errorf("deleting filter: %w", err)
	}
	return nil
}

// tagService implements app.TagService.
type tagService struct {
	client *Client
}

// NewTagService creates a TagService backed by Mastodon.
func NewTagService(client *Client) *tagService {
	return &tagService{client: client}
}

func normalizeTag(name string) (string, error) {
	name = strings.TrimPrefix(strings.TrimSpace(name), "#")
	if name == "" {
		return "", fmt.Errorf("empty hashtag")
	}
	return name, nil
}

func (s *tagService) FollowedTags(ctx context.Context) ([]domain.Hashtag, error) {
	data, err := s.client.Get(ctx, "/api/v1/followed_tags?limit=200")
	if err != nil {
		return nil, fmt.Errorf("fetching followed tags: %w", err)
	}
	tags, err := decode[[]mastodonTag](data, "followed tags")
	if err != nil {
		return nil, err
	}
	out := make([]domain.Hashtag, 0, len(tags))
	for _, t := range tags {
		out = append(out, mapTag(t))
	}
	return out, nil
}

func (s *tagService) Tag(ctx context.Context, name string) (domain.Hashtag, error) {
	name, err := normalizeTag(name)
	if err != nil {
		return domain.Hashtag{}, err
	}
	data, err := s.client.Get(ctx, "/api/v1/tags/"+url.PathEscape(name))
	if err != nil {
		return domain.Hashtag{}, fmt.Errorf("fetching tag: %w", err)
	}
	tag, err := decode[mastodonTag](data, "tag")
	if err != nil {
		return domain.Hashtag{}, err
	}
	return mapTag(tag), nil
}

func (s *tagService) SetTagFollowed(ctx context.Context, name string, follow bool) (domain.Hashtag, error) {
	name, err := normalizeTag(name)
	if err != nil {
		return domain.Hashtag{}, err
	}
	action := "follow"
	if !follow {
		action = "unfollow"
	}
	data, err := s.client.Post(ctx, "/api/v1/tags/"+url.PathEscape(name)+"/"+action, nil)
	if err != nil {
		return domain.Hashtag{}, fmt.Errorf("%s tag: %w", action, err)
	}
	tag, err := decode[mastodonTag](data, "tag")
	if err != nil {
		return domain.Hashtag{}, err
	}
	return mapTag(tag), nil
}

// notificationService implements app.NotificationService.
type notificationService struct {
	client *Client
}

// NewNotificationService creates a NotificationService backed by Mastodon.
func NewNotificationService(client *Client) *notificationService {
	return &notificationService{client: client}
}

func (s *notificationService) Notifications(ctx context.Context, types []domain.NotificationType, limit int) ([]domain.Notification, error) {
	if limit <= 0 {
		limit = defaultPageLimit
	}
	params := url.Values{"limit": {strconv.Itoa(limit)}}
	for _, t := range types {
		params.Add("types[]", string(t))
	}
	data, err := s.client.Get(ctx, "/api/v1/notifications?"+params.Encode())
	if err != nil {
		return nil, fmt.Errorf("fetching notifications: %w", err)
	}
	notes, err := decode[[]mastodonNotification](data, "notifications")
	if err != nil {
		return nil, err
	}
	out := make([]domain.Notification, 0, len(notes))
	for _, n := range notes {
		out = append(out, mapNotification(n))
	}
	return out, nil
}

// instanceService implements app.InstanceService.
type instanceService struct {
	client *Client
}

// NewInstanceService creates an InstanceService backed by Mastodon.
func NewInstanceService(client *Client) *instanceService {
	return &instanceService{client: client}
}

func (s *instanceService) Instance(ctx context.Context) (domain.Instance, error) {
	data, err := s.client.Get(ctx, "/api/v2/instance")
	if err != nil {
		return domain.Instance{}, fmt.Errorf("fetching instance: %w", err)
	}
	inst, err := decode[mastodonInstance](data, "instance")
	if err != nil {
		return domain.Instance{}, err
	}
	return mapInstance(inst), nil
}
