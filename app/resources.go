package app

import (
	"context"

	"github.com/CrestNiraj12/kabinka/domain"
)

// ListService manages the user's lists.
type ListService interface {
	Lists(ctx context.Context) ([]domain.FollowList, error)
	CreateList(ctx context.Context, l domain.FollowList) (domain.FollowList, error)
	UpdateList(ctx context.Context, l domain.FollowList) (domain.FollowList, error)
	DeleteList(ctx context.Context, id string) error
	ListAccounts(ctx context.Context, id string) ([]domain.Account, error)
	// AddListAccounts adds members. The user must already follow them.
	AddListAccounts(ctx context.Context, id string, accountIDs []string) error
	RemoveListAccounts(ctx context.Context, id string, accountIDs []string) error
}

// FilterService manages the user's content filters.
type FilterService interface {
	Filters(ctx context.Context) ([]domain.Filter, error)
	CreateFilter(ctx context.Context, f domain.Filter) (domain.Filter, error)
	UpdateFilter(ctx context.Context, f domain.Filter) (domain.Filter, error)
	DeleteFilter(ctx context.Context, id string) error
}

// TagService manages followed hashtags.
type TagService interface {
	FollowedTags(ctx context.Context) ([]domain.Hashtag, error)
	Tag(ctx context.Context, name string) (domain.Hashtag, error)
	SetTagFollowed(ctx context.Context, name string, follow bool) (domain.Hashtag, error)
}

// NotificationService reads the user's notifications.
type NotificationService interface {
	// Notifications returns the newest notifications; types narrows the kinds when non-empty.
	Notifications(ctx context.Context, types []domain.NotificationType, limit int) ([]domain.Notification, error)
}

// InstanceService reads server metadata.
type InstanceService interface {
	Instance(ctx context.Context) (domain.Instance, error)
}

// SearchService finds accounts, statuses and hashtags, and reads what is
// trending on the server.
type SearchService interface {
	Search(ctx context.Context, q domain.SearchQuery) (domain.SearchResults, error)
	TrendingTags(ctx context.Context, limit int) ([]domain.Hashtag, error)
	TrendingStatuses(ctx context.Context, limit int) ([]domain.Status, error)
}
