package viewmodel

import (
	"context"
	"fmt"
	"sync"

	"github.com/brianvoe/gofakeit/v7"

	"github.com/CrestNiraj12/kabinka/app"
	"github.com/CrestNiraj12/kabinka/domain"
)

type fakeSession struct {
	current  *domain.AccountSession
	instance domain.Instance
}

func loggedIn() *fakeSession {
	return &fakeSession{current: &domain.AccountSession{ID: "alice@example.social", Domain: "example.social", Username: "alice"}}
}

func (s *fakeSession) Current() (domain.AccountSession, bool) {
	if s.current == nil {
		return domain.AccountSession{}, false
	}
	return *s.current, true
}

func (s *fakeSession) Domain() string {
	if s.current == nil {
		return domain.DefaultDomain
	}
	return s.current.Domain
}

func (s *fakeSession) InstanceInfo(string) (domain.Instance, bool) {
	return s.instance, s.instance.Domain != ""
}

type fetchCall struct {
	query domain.TimelineQuery
	ctx   context.Context
}

type fakeTimelines struct {
	mu     sync.Mutex
	calls  []fetchCall
	result []domain.Status
	next   string
	err    error

	ancestors   []domain.Status
	descendants []domain.Status
	threadErr   error
}

func (f *fakeTimelines) Fetch(ctx context.Context, q domain.TimelineQuery) ([]domain.Status, string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, fetchCall{query: q, ctx: ctx})
	return f.result, f.next, f.err
}

func (f *fakeTimelines) FetchThread(context.Context, string) ([]domain.Status, []domain.Status, error) {
	return f.ancestors, f.descendants, f.threadErr
}

type interactionCall struct {
	id   string
	kind domain.Interaction
	on   bool
}

type fakeStatuses struct {
	mu           sync.Mutex
	interactions []interactionCall
	created      []app.StatusParams
	edited       []app.StatusParams
	interactErr  error
	publishErr   error
	server       func(id string, kind domain.Interaction, on bool) domain.Status
	get          map[string]domain.Status
}

func (f *fakeStatuses) Get(_ context.Context, id string) (domain.Status, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.get[id], nil
}

func (f *fakeStatuses) Create(_ context.Context, p app.StatusParams) (domain.Status, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.created = append(f.created, p)
	if f.publishErr != nil {
		return domain.Status{}, f.publishErr
	}
	return domain.Status{ID: "new", Content: p.Text, Visibility: p.Visibility}, nil
}

func (f *fakeStatuses) Edit(_ context.Context, id string, p app.StatusParams) (domain.Status, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.edited = append(f.edited, p)
	if f.publishErr != nil {
		return domain.Status{}, f.publishErr
	}
	return domain.Status{ID: id, Content: p.Text}, nil
}

func (f *fakeStatuses) Delete(context.Context, string) error { return nil }

func (f *fakeStatuses) SetInteraction(_ context.Context, id string, kind domain.Interaction, on bool) (domain.Status, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.interactions = append(f.interactions, interactionCall{id: id, kind: kind, on: on})
	if f.interactErr != nil {
		return domain.Status{}, f.interactErr
	}
	if f.server != nil {
		return f.server(id, kind, on), nil
	}
	return domain.Status{}, nil
}

type fakeMedia struct {
	mu      sync.Mutex
	uploads []string
	fail    map[string]error
	release chan struct{} // When set, uploads block until it is closed
}

func (f *fakeMedia) Upload(ctx context.Context, path, _ string, progress app.ProgressFunc) (domain.Attachment, error) {
	f.mu.Lock()
	f.uploads = append(f.uploads, path)
	err := f.fail[path]
	release := f.release
	f.mu.Unlock()

	if release != nil {
		select {
		case <-release:
		case <-ctx.Done():
			return domain.Attachment{}, ctx.Err()
		}
	}
	if err != nil {
		return domain.Attachment{}, err
	}
	if progress != nil {
		progress(10, 10)
	}
	return domain.Attachment{ID: "media-" + path}, nil
}

func fakeStatus(id string) domain.Status {
	return domain.Status{
		ID: id,
		Account: domain.Account{
			ID:       gofakeit.UUID(),
			Username: gofakeit.Username(),
			Acct:     gofakeit.Username(),
		},
		Content:         gofakeit.Sentence(8),
		Visibility:      domain.VisibilityPublic,
		FavouritesCount: gofakeit.IntRange(0, 50),
		ReblogsCount:    gofakeit.IntRange(0, 50),
	}
}

func statusFixtures(prefix string, n int) []domain.Status {
	out := make([]domain.Status, n)
	for i := range out {
		out[i] = fakeStatus(fmt.Sprintf("%s%d", prefix, i))
	}
	return out
}

type fakeAccounts struct {
	mu         sync.Mutex
	account    domain.Account
	rel        domain.Relationship
	statuses   []domain.Status
	err        error
	followErr  error
	follows    []bool
	relCalls   int
	pageMaxIDs []string
}

func (f *fakeAccounts) CurrentAccount(context.Context) (domain.Account, error) {
	return f.account, f.err
}

func (f *fakeAccounts) Account(context.Context, string) (domain.Account, error) {
	return f.account, f.err
}

func (f *fakeAccounts) Statuses(_ context.Context, _ string, _ int, maxID string) ([]domain.Status, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pageMaxIDs = append(f.pageMaxIDs, maxID)
	return f.statuses, nil
}

func (f *fakeAccounts) Relationship(context.Context, string) (domain.Relationship, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.relCalls++
	return f.rel, nil
}

func (f *fakeAccounts) SetFollowing(_ context.Context, id string, follow bool) (domain.Relationship, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.follows = append(f.follows, follow)
	if f.followErr != nil {
		return domain.Relationship{}, f.followErr
	}
	return domain.Relationship{ID: id, Following: follow}, nil
}
