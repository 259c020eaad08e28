package mastodon

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/CrestNiraj12/kabinka/domain"
)

// accountService implements app.AccountService using the Mastodon API.
type accountService struct {
	client *Client
}

// NewAccountService creates an AccountService backed by Mastodon.
func NewAccountService(client *Client) *accountService {
	return &accountService{client: client}
}

func accountPath(id, suffix string) (string, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return "", fmt.Errorf("invalid account id")
	}
	p := "/api/v1/accounts/" + url.PathEscape(id)
	if suffix != "" {
		p += "/" + suffix
	}
	return p, nil
}

func (s *accountService) CurrentAccount(ctx context.Context) (domain.Account, error) {
	data, err := s.client.Get(ctx, "/api/v1/accounts/verify_credentials")
	if err != nil {
		return domain.Account{}, fmt.Errorf("fetching account: %w", err)
	}
	acct, err := decode[mastodonAccount](data, "account")
	if err != nil {
		return domain.Account{}, err
	}
	return mapAccount(acct), nil
}

func (s *accountService) Account(ctx context.Context, id string) (domain.Account, error) {
	path, err := accountPath(id, "")
	if err != nil {
		return domain.Account{}, err
	}
	data, err := s.client.Get(ctx, path)
	if err != nil {
		return domain.Account{}, fmt.Errorf("fetching profile: %w", err)
	}
	acct, err := decode[mastodonAccount](data, "profile")
	if err != nil {
		return domain.Account{}, err
	}
	return mapAccount(acct), nil
}

func (s *accountService) Statuses(ctx context.Context, id string, limit int, maxID string) ([]domain.Status, error) {
	path, err := accountPath(id, "statuses")
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = defaultPageLimit
	}
	params := url.Values{"limit": {strconv.Itoa(limit)}}
	if strings.TrimSpace(maxID) != "" {
		params.Set("max_id", maxID)
	}
	data, err := s.client.Get(ctx, path+"?"+params.Encode())
	if err != nil {
		return nil, fmt.Errorf("fetching profile posts: %w", err)
	}
	statuses, err := decode[[]mastodonStatus](data, "profile posts")
	if err != nil {
		return nil, err
	}
	return mapStatuses(statuses), nil
}

func (s *accountService) Relationship(ctx context.Context, id string) (domain.Relationship, error) {
	if strings.TrimSpace(id) == "" {
		return domain.Relationship{}, fmt.Errorf("invalid account id")
	}
	params := url.Values{"id[]": {id}}
	data, err := s.client.Get(ctx, "/api/v1/accounts/relationships?"+params.Encode())
	if err != nil {
		return domain.Relationship{}, fmt.Errorf("fetching relationship: %w", err)
	}
	rels, err := decode[[]mastodonRelationship](data, "relationships")
	if err != nil {
		return domain.Relationship{}, err
	}
	for _, r := range rels {
		if r.ID == id {
			return mapRelationship(r), nil
		}
	}
	return domain.Relationship{ID: id}, nil
}

func (s *accountService) SetFollowing(ctx context.Context, id string, follow bool) (domain.Relationship, error) {
	action := "follow"
	if !follow {
		action = "unfollow"
	}
	path, err := accountPath(id, action)
	if err != nil {
		return domain.Relationship{}, err
	}
	data, err := s.client.Post(ctx, path, nil)
	if err != nil {
		return domain.Relationship{}, fmt.Errorf("%s: %w", action, err)
	}
	rel, err := decode[mastodonRelationship](data, "relationship")
	if err != nil {
		return domain.Relationship{}, err
	}
	return mapRelationship(rel), nil
}
