package mastodon

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/CrestNiraj12/kabinka/domain"
)

const defaultPageLimit = 20

// timelineService implements app.TimelineService using the Mastodon API.
type timelineService struct {
	client *Client
}

// NewTimelineService creates a TimelineService backed by Mastodon.
func NewTimelineService(client *Client) *timelineService {
	return &timelineService{client: client}
}

// timelinePath maps a query to its endpoint and query string.
func timelinePath(q domain.TimelineQuery) (string, error) {
	params := url.Values{}
	limit := q.Limit
	if limit <= 0 {
		limit = defaultPageLimit
	}
	params.Set("limit", strconv.Itoa(limit))
	if strings.TrimSpace(q.MaxID) != "" {
		params.Set("max_id", q.MaxID)
	}

	var path string
	switch q.Kind {
	case domain.TimelineHome:
		path = "/api/v1/timelines/home"
	case domain.TimelineLocal:
		path = "/api/v1/timelines/public"
		params.Set("local", "true")
	case domain.TimelineFederated:
		path = "/api/v1/timelines/public"
	case domain.TimelineBookmarks:
		path = "/api/v1/bookmarks"
	case domain.TimelineFavourites:
		path = "/api/v1/favourites"
	case domain.TimelineHashtag:
		tag := strings.TrimPrefix(strings.TrimSpace(q.Hashtag), "#")
		if tag == "" {
			return "", fmt.Errorf("empty hashtag")
		}
		path = "/api/v1/timelines/tag/" + url.PathEscape(tag)
	case domain.TimelineList:
		if strings.TrimSpace(q.ListID) == "" {
			return "", fmt.Errorf("empty list id")
		}
		path = "/api/v1/timelines/list/" + url.PathEscape(q.ListID)
	default:
		return "", fmt.Errorf("unsupported timeline %v", q.Kind)
	}
	return path + "?" + params.Encode(), nil
}

func (s *timelineService) Fetch(ctx context.Context, q domain.TimelineQuery) ([]domain.Status, string, error) {
	path, err := timelinePath(q)
	if err != nil {
		return nil, "", err
	}
	data, next, err := s.client.GetPage(ctx, path)
	if err != nil {
		return nil, "", fmt.Errorf("fetching %s timeline: %w", q.Kind, err)
	}
	statuses, err := decode[[]mastodonStatus](data, "timeline")
	if err != nil {
		return nil, "", err
	}
	return mapStatuses(statuses), next, nil
}

func (s *timelineService) FetchThread(ctx context.Context, id string) ([]domain.Status, []domain.Status, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, nil, fmt.Errorf("invalid status id")
	}
	data, err := s.client.Get(ctx, "/api/v1/statuses/"+url.PathEscape(id)+"/context")
	if err != nil {
		return nil, nil, fmt.Errorf("fetching thread: %w", err)
	}
	thread, err := decode[mastodonContext](data, "thread")
	if err != nil {
		return nil, nil, err
	}
	return mapStatuses(thread.Ancestors), mapStatuses(thread.Descendants), nil
}
