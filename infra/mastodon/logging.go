package mastodon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/CrestNiraj12/kabinka/app"
	"github.com/CrestNiraj12/kabinka/domain"
)

// logLevel picks the level for a finished call. Cancellation is routine when
// a screen closes, so it stays at debug.
func logLevel(err error) slog.Level {
	switch {
	case err == nil, errors.Is(err, context.Canceled):
		return slog.LevelDebug
	case errors.Is(err, domain.ErrUnauthorized):
		return slog.LevelWarn
	default:
		return slog.LevelError
	}
}

type timelineLogging struct {
	svc app.TimelineService
	log *slog.Logger
}

// NewTimelineServiceLogging logs every call of svc.
func NewTimelineServiceLogging(svc app.TimelineService, log *slog.Logger) app.TimelineService {
	return timelineLogging{svc: svc, log: log}
}

func (l timelineLogging) Fetch(ctx context.Context, q domain.TimelineQuery) (statuses []domain.Status, next string, err error) {
	statuses, next, err = l.svc.Fetch(ctx, q)
	l.log.Log(ctx, logLevel(err), fmt.Sprintf("timeline.Fetch(key=%s, limit=%d, maxID=%s): %d, next=%s, %v", q.Key(), q.Limit, q.MaxID, len(statuses), next, err))
	return
}

func (l timelineLogging) FetchThread(ctx context.Context, id string) (ancestors, descendants []domain.Status, err error) {
	ancestors, descendants, err = l.svc.FetchThread(ctx, id)
	l.log.Log(ctx, logLevel(err), fmt.Sprintf("timeline.FetchThread(id=%s): %d/%d, %v", id, len(ancestors), len(descendants), err))
	return
}

type statusLogging struct {
	svc app.StatusService
	log *slog.Logger
}

// NewStatusServiceLogging logs every call of svc.
func NewStatusServiceLogging(svc app.StatusService, log *slog.Logger) app.StatusService {
	return statusLogging{svc: svc, log: log}
}

func (l statusLogging) Get(ctx context.Context, id string) (st domain.Status, err error) {
	st, err = l.svc.Get(ctx, id)
	l.log.Log(ctx, logLevel(err), fmt.Sprintf("status.Get(id=%s): %v", id, err))
	return
}

func (l statusLogging) Create(ctx context.Context, p app.StatusParams) (st domain.Status, err error) {
	st, err = l.svc.Create(ctx, p)
	l.log.Log(ctx, logLevel(err), fmt.Sprintf("status.Create(visibility=%s, replyTo=%s, media=%d, poll=%t, key=%s): %s, %v", p.Visibility, p.InReplyToID, len(p.MediaIDs), p.Poll != nil, p.IdempotencyKey, st.ID, err))
	return
}

func (l statusLogging) Edit(ctx context.Context, id string, p app.StatusParams) (st domain.Status, err error) {
	st, err = l.svc.Edit(ctx, id, p)
	l.log.Log(ctx, logLevel(err), fmt.Sprintf("status.Edit(id=%s, media=%d): %v", id, len(p.MediaIDs), err))
	return
}

func (l statusLogging) Delete(ctx context.Context, id string) (err error) {
	err = l.svc.Delete(ctx, id)
	l.log.Log(ctx, logLevel(err), fmt.Sprintf("status.Delete(id=%s): %v", id, err))
	return
}

func (l statusLogging) SetInteraction(ctx context.Context, id string, kind domain.Interaction, on bool) (st domain.Status, err error) {
	st, err = l.svc.SetInteraction(ctx, id, kind, on)
	l.log.Log(ctx, logLevel(err), fmt.Sprintf("status.SetInteraction(id=%s, kind=%s, on=%t): %v", id, kind, on, err))
	return
}

type mediaLogging struct {
	svc app.MediaService
	log *slog.Logger
}

// NewMediaServiceLogging logs every call of svc.
func NewMediaServiceLogging(svc app.MediaService, log *slog.Logger) app.MediaService {
	return mediaLogging{svc: svc, log: log}
}

func (l mediaLogging) Upload(ctx context.Context, path, description string, progress app.ProgressFunc) (att domain.Attachment, err error) {
	att, err = l.svc.Upload(ctx, path, description, progress)
	l.log.Log(ctx, logLevel(err), fmt.Sprintf("media.Upload(path=%s): %s, %v", path, att.ID, err))
	return
}

type accountLogging struct {
	svc app.AccountService
	log *slog.Logger
}

// NewAccountServiceLogging logs every call of svc.
func NewAccountServiceLogging(svc app.AccountService, log *slog.Logger) app.AccountService {
	return accountLogging{svc: svc, log: log}
}

func (l accountLogging) CurrentAccount(ctx context.Context) (a domain.Account, err error) {
	a, err = l.svc.CurrentAccount(ctx)
	l.log.Log(ctx, logLevel(err), fmt.Sprintf("account.CurrentAccount(): %s, %v", a.Acct, err))
	return
}

func (l accountLogging) Account(ctx context.Context, id string) (a domain.Account, err error) {
	a, err = l.svc.Account(ctx, id)
	l.log.Log(ctx, logLevel(err), fmt.Sprintf("account.Account(id=%s): %v", id, err))
	return
}

func (l accountLogging) Statuses(ctx context.Context, id string, limit int, maxID string) (statuses []domain.Status, err error) {
	statuses, err = l.svc.Statuses(ctx, id, limit, maxID)
	l.log.Log(ctx, logLevel(err), fmt.Sprintf("account.Statuses(id=%s, limit=%d, maxID=%s): %d, %v", id, limit, maxID, len(statuses), err))
	return
}

func (l accountLogging) Relationship(ctx context.Context, id string) (r domain.Relationship, err error) {
	r, err = l.svc.Relationship(ctx, id)
	l.log.Log(ctx, logLevel(err), fmt.Sprintf("account.Relationship(id=%s): %v", id, err))
	return
}

func (l accountLogging) SetFollowing(ctx context.Context, id string, follow bool) (r domain.Relationship, err error) {
	r, err = l.svc.SetFollowing(ctx, id, follow)
	l.log.Log(ctx, logLevel(err), fmt.Sprintf("account.SetFollowing(id=%s, follow=%t): %v", id, follow, err))
	return
}

type listLogging struct {
	svc app.ListService
	log *slog.Logger
}

// NewListServiceLogging logs every call of svc.
func NewListServiceLogging(svc app.ListService, log *slog.Logger) app.ListService {
	return listLogging{svc: svc, log: log}
}

func (l listLogging) Lists(ctx context.Context) (lists []domain.FollowList, err error) {
	lists, err = l.svc.Lists(ctx)
	l.log.Log(ctx, logLevel(err), fmt.Sprintf("list.Lists(): %d, %v", len(lists), err))
	return
}

func (l listLogging) CreateList(ctx context.Context, fl domain.FollowList) (created domain.FollowList, err error) {
	created, err = l.svc.CreateList(ctx, fl)
	l.log.Log(ctx, logLevel(err), fmt.Sprintf("list.CreateList(title=%q): %s, %v", fl.Title, created.ID, err))
	return
}

func (l listLogging) UpdateList(ctx context.Context, fl domain.FollowList) (updated domain.FollowList, err error) {
	updated, err = l.svc.UpdateList(ctx, fl)
	l.log.Log(ctx, logLevel(err), fmt.Sprintf("list.UpdateList(id=%s): %v", fl.ID, err))
	return
}

func (l listLogging) DeleteList(ctx context.Context, id string) (err error) {
	err = l.svc.DeleteList(ctx, id)
	l.log.Log(ctx, logLevel(err), fmt.Sprintf("list.DeleteList(id=%s): %v", id, err))
	return
}

func (l listLogging) ListAccounts(ctx context.Context, id string) (accounts []domain.Account, err error) {
	accounts, err = l.svc.ListAccounts(ctx, id)
	l.log.Log(ctx, logLevel(err), fmt.Sprintf("list.ListAccounts(id=%s): %d, %v", id, len(accounts), err))
	return
}

func (l listLogging) AddListAccounts(ctx context.Context, id string, accountIDs []string) (err error) {
	err = l.svc.AddListAccounts(ctx, id, accountIDs)
	l.log.Log(ctx, logLevel(err), fmt.Sprintf("list.AddListAccounts(id=%s, accounts=%v): %v", id, accountIDs, err))
	return
}

func (l listLogging) RemoveListAccounts(ctx context.Context, id string, accountIDs []string) (err error) {
	err = l.svc.RemoveListAccounts(ctx, id, accountIDs)
	l.log.Log(ctx, logLevel(err), fmt.Sprintf("list.RemoveListAccounts(id=%s, accounts=%v): %v", id, accountIDs, err))
	return
}

type filterLogging struct {
	svc app.FilterService
	log *slog.Logger
}

// NewFilterServiceLogging logs every call of svc.
func NewFilterServiceLogging(svc app.FilterService, log *slog.Logger) app.FilterService {
	return filterLogging{svc: svc, log: log}
}

func (l filterLogging) Filters(ctx context.Context) (filters []domain.Filter, err error) {
	filters, err = l.svc.Filters(ctx)
	l.log.Log(ctx, logLevel(err), fmt.Sprintf("filter.Filters(): %d, %v", len(filters), err))
	return
}

func (l filterLogging) CreateFilter(ctx context.Context, f domain.Filter) (created domain.Filter, err error) {
	created, err = l.svc.CreateFilter(ctx, f)
	l.log.Log(ctx, logLevel(err), fmt.Sprintf("filter.CreateFilter(title=%q, keywords=%d): %s, %v", f.Title, len(f.Keywords), created.ID, err))
	return
}

func (l filterLogging) UpdateFilter(ctx context.Context, f domain.Filter) (updated domain.Filter, err error) {
	updated, err = l.svc.UpdateFilter(ctx, f)
	l.log.Log(ctx, logLevel(err), fmt.Sprintf("filter.UpdateFilter(id=%s): %v", f.ID, err))
	return
}

func (l filterLogging) DeleteFilter(ctx context.Context, id string) (err error) {
	err = l.svc.DeleteFilter(ctx, id)
	l.log.Log(ctx, logLevel(err), fmt.Sprintf("filter.DeleteFilter(id=%s): %v", id, err))
	return
}

type tagLogging struct {
	svc app.TagService
	log *slog.Logger
}

// NewTagServiceLogging logs every call of svc.
func NewTagServiceLogging(svc app.TagService, log *slog.Logger) app.TagService {
	return tagLogging{svc: svc, log: log}
}

func (l tagLogging) FollowedTags(ctx context.Context) (tags []domain.Hashtag, err error) {
	tags, err = l.svc.FollowedTags(ctx)
	l.log.Log(ctx, logLevel(err), fmt.Sprintf("tag.FollowedTags(): %d, %v", len(tags), err))
	return
}

func (l tagLogging) Tag(ctx context.Context, name string) (tag domain.Hashtag, err error) {
	tag, err = l.svc.Tag(ctx, name)
	l.log.Log(ctx, logLevel(err), fmt.Sprintf("tag.Tag(name=%s): %v", name, err))
	return
}

func (l tagLogging) SetTagFollowed(ctx context.Context, name string, follow bool) (tag domain.Hashtag, err error) {
	tag, err = l.svc.SetTagFollowed(ctx, name, follow)
	l.log.Log(ctx, logLevel(err), fmt.Sprintf("tag.SetTagFollowed(name=%s, follow=%t): %v", name, follow, err))
	return
}

type notificationLogging struct {
	svc app.NotificationService
	log *slog.Logger
}

// NewNotificationServiceLogging logs every call of svc.
func NewNotificationServiceLogging(svc app.NotificationService, log *slog.Logger) app.NotificationService {
	return notificationLogging{svc: svc, log: log}
}

func (l notificationLogging) Notifications(ctx context.Context, types []domain.NotificationType, limit int) (notes []domain.Notification, err error) {
	notes, err = l.svc.Notifications(ctx, types, limit)
	l.log.Log(ctx, logLevel(err), fmt.Sprintf("notification.Notifications(types=%v, limit=%d): %d, %v", types, limit, len(notes), err))
	return
}

type instanceLogging struct {
	svc app.InstanceService
	log *slog.Logger
}

// NewInstanceServiceLogging logs every call of svc.
func NewInstanceServiceLogging(svc app.InstanceService, log *slog.Logger) app.InstanceService {
	return instanceLogging{svc: svc, log: log}
}

func (l instanceLogging) Instance(ctx context.Context) (inst domain.Instance, err error) {
	inst, err = l.svc.Instance(ctx)
	l.log.Log(ctx, logLevel(err), fmt.Sprintf("instance.Instance(): %s %s, %v", inst.Domain, inst.Version, err))
	return
}

type searchLogging struct {
	svc app.SearchService
	log *slog.Logger
}

// NewSearchServiceLogging logs every call of svc.
func NewSearchServiceLogging(svc app.SearchService, log *slog.Logger) app.SearchService {
	return searchLogging{svc: svc, log: log}
}

func (l searchLogging) Search(ctx context.Context, q domain.SearchQuery) (res domain.SearchResults, err error) {
	res, err = l.svc.Search(ctx, q)
	l.log.Log(ctx, logLevel(err), fmt.Sprintf("search.Search(q=%q, type=%s, resolve=%t): %d/%d/%d, %v", q.Query, q.Type, q.Resolve, len(res.Accounts), len(res.Statuses), len(res.Hashtags), err))
	return
}

func (l searchLogging) TrendingTags(ctx context.Context, limit int) (tags []domain.Hashtag, err error) {
	tags, err = l.svc.TrendingTags(ctx, limit)
	l.log.Log(ctx, logLevel(err), fmt.Sprintf("search.TrendingTags(limit=%d): %d, %v", limit, len(tags), err))
	return
}

func (l searchLogging) TrendingStatuses(ctx context.Context, limit int) (statuses []domain.Status, err error) {
	statuses, err = l.svc.TrendingStatuses(ctx, limit)
	l.log.Log(ctx, logLevel(err), fmt.Sprintf("search.TrendingStatuses(limit=%d): %d, %v", limit, len(statuses), err))
	return
}
