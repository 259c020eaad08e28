package mastodon

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/CrestNiraj12/kabinka/domain"
)

// searchService implements app.SearchService.
type searchService struct {
	client *Client
}

// NewSearchService creates a SearchService backed by Mastodon.
func NewSearchService(client *Client) *searchService {
	return &searchService{client: client}
}

func (s *searchService) Search(ctx context.Context, q domain.SearchQuery) (domain.SearchResults, error) {
	query := strings.TrimSpace(q.Query)
	if query == "" {
		return domain.SearchResults{}, fmt.Errorf("empty search query")
	}
	limit := q.Limit
	if limit <= 0 {
		limit = defaultPageLimit
	}
	params := url.Values{"q": {query}, "limit": {strconv.Itoa(limit)}}
	if q.Type != domain.SearchAll {
		params.Set("type", string(q.Type))
	}
	// Resolving remote content is refused for anonymous requests.
	if q.Resolve && s.client.Authenticated() {
		params.Set("resolve", "true")
	}
	data, err := s.client.Get(ctx, "/api/v2/search?"+params.Encode())
	if err != nil {
		return domain.SearchResults{}, fmt.Errorf("searching: %w", err)
	}
	res, err := decode[mastodonSearch](data, "search results")
	if err != nil {
		return domain.SearchResults{}, err
	}
	out := domain.SearchResults{Statuses: mapStatuses(res.Statuses)}
	for _, a := range res.Accounts {
		out.Accounts = append(out.Accounts, mapAccount(a))
	}
	for _, t := range res.Hashtags {
		out.Hashtags = append(out.Hashtags, mapTag(t))
	}
	return out, nil
}

func (s *searchService) TrendingTags(ctx context.Context, limit int) ([]domain.Hashtag, error) {
	data, err := s.client.Get(ctx, "/api/v1/trends/tags?"+limitParams(limit).Encode())
	if err != nil {
		return nil, fmt.Errorf("fetching trending tags: %w", err)
	}
	tags, err := decode[[]mastodonTag](data, "trending tags")
	if err != nil {
		return nil, err
	}
	out := make([]domain.Hashtag, 0, len(tags))
	for _, t := range tags {
		out = append(out, mapTag(t))
	}
	return out, nil
}

func (s *searchService) TrendingStatuses(ctx context.Context, limit int) ([]domain.Status, error) {
	data, err := s.client.Get(ctx, "/api/v1/trends/statuses?"+limitParams(limit).Encode())
	if err != nil {
		return nil, fmt.Errorf("fetching trending posts: %w", err)
	}
	statuses, err := decode[[]mastodonStatus](data, "trending posts")
	if err != nil {
		return nil, err
	}
	return mapStatuses(statuses), nil
}

func limitParams(limit int) url.Values {
	if limit <= 0 {
		limit = defaultPageLimit
	}
	return url.Values{"limit": {strconv.Itoa(limit)}}
}
