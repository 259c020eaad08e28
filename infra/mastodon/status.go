package mastodon

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/CrestNiraj12/kabinka/app"
	"github.com/CrestNiraj12/kabinka/domain"
)

// statusService implements app.StatusService using the Mastodon API.
type statusService struct {
	client *Client
}

// NewStatusService creates a StatusService backed by Mastodon.
func NewStatusService(client *Client) *statusService {
	return &statusService{client: client}
}

func statusPath(id string, suffix string) string {
	p := "/api/v1/statuses/" + url.PathEscape(id)
	if suffix != "" {
		p += "/" + suffix
	}
	return p
}

func statusForm(p app.StatusParams, edit bool) url.Values {
	form := url.Values{}
	form.Set("status", p.Text)
	if p.SpoilerText != "" {
		form.Set("spoiler_text", p.SpoilerText)
	}
	if p.Sensitive || p.SpoilerText != "" {
		form.Set("sensitive", "true")
	}
	if !edit {
		if p.Visibility != "" {
			form.Set("visibility", string(p.Visibility))
		}
		if p.InReplyToID != "" {
			form.Set("in_reply_to_id", p.InReplyToID)
		}
	}
	for _, id := range p.MediaIDs {
		form.Add("media_ids[]", id)
	}
	if p.Poll != nil {
		for _, o := range p.Poll.Options {
			form.Add("poll[options][]", o)
		}
		form.Set("poll[expires_in]", strconv.Itoa(p.Poll.ExpiresIn))
		if p.Poll.Multiple {
			form.Set("poll[multiple]", "true")
		}
	}
	return form
}

func (s *statusService) Get(ctx context.Context, id string) (domain.Status, error) {
	if strings.TrimSpace(id) == "" {
		return domain.Status{}, fmt.Errorf("invalid status id")
	}
	data, err := s.client.Get(ctx, statusPath(id, ""))
	if err != nil {
		return domain.Status{}, fmt.Errorf("fetching status: %w", err)
	}
	return parseStatus(data)
}

func (s *statusService) Create(ctx context.Context, p app.StatusParams) (domain.Status, error) {
	if strings.TrimSpace(p.Text) == "" {
		return domain.Status{}, domain.ErrEmptyStatus
	}
	cl := formCall(http.MethodPost, "/api/v1/statuses", statusForm(p, false))
	if p.IdempotencyKey != "" {
		cl.header = http.Header{"Idempotency-Key": {p.IdempotencyKey}}
	}
	data, err := s.client.do(ctx, cl)
	if err != nil {
		return domain.Status{}, fmt.Errorf("publishing status: %w", err)
	}
	return parseStatus(data)
}

func (s *statusService) Edit(ctx context.Context, id string, p app.StatusParams) (domain.Status, error) {
	if strings.TrimSpace(p.Text) == "" {
		return domain.Status{}, domain.ErrEmptyStatus
	}
	data, err := s.client.Put(ctx, statusPath(id, ""), statusForm(p, true))
	if err != nil {
		return domain.Status{}, fmt.Errorf("editing status: %w", err)
	}
	return parseStatus(data)
}

func (s *statusService) Delete(ctx context.Context, id string) error {
	if _, err := s.client.Delete(ctx, statusPath(id, "")); err != nil {
		return fmt.Errorf("deleting status: %w", err)
	}
	return nil
}

func (s *statusService) SetInteraction(ctx context.Context, id string, kind domain.Interaction, on bool) (domain.Status, error) {
	var action string
	switch kind {
	case domain.Favourite:
		action = "favourite"
	case domain.Reblog:
		action = "reblog"
	case domain.Bookmark:
		action = "bookmark"
	default:
		return domain.Status{}, fmt.Errorf("unsupported interaction %v", kind)
	}
	if !on {
		action = "un" + action
	}
	data, err := s.client.Post(ctx, statusPath(id, action), nil)
	if err != nil {
		return domain.Status{}, fmt.Errorf("%s status: %w", action, err)
	}
	return parseStatus(data)
}

func parseStatus(data []byte) (domain.Status, error) {
	st, err := decode[mastodonStatus](data, "status response")
	if err != nil {
		return domain.Status{}, err
	}
	return mapStatus(st), nil
}
