// Package tuitest provides in-memory services and key helpers for testing
// screens without a terminal or a server.
package tuitest

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/brianvoe/gofakeit/v7"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/CrestNiraj12/kabinka/app"
	"github.com/CrestNiraj12/kabinka/domain"
)

// Key builds the key message a terminal would send for s, e.g. "j", "enter"
// or "ctrl+s".
func Key(s string) tea.KeyMsg {
	special := map[string]tea.KeyType{
		"enter":     tea.KeyEnter,
		"esc":       tea.KeyEsc,
		"tab":       tea.KeyTab,
		"shift+tab": tea.KeyShiftTab,
		"up":        tea.KeyUp,
		"down":      tea.KeyDown,
		"backspace": tea.KeyBackspace,
		" ":         tea.KeySpace,
		"ctrl+c":    tea.KeyCtrlC,
	}
	if t, ok := special[s]; ok {
		return tea.KeyMsg{Type: t}
	}
	if c, ok := strings.CutPrefix(s, "ctrl+"); ok && len(c) == 1 {
		return tea.KeyMsg{Type: tea.KeyCtrlA + tea.KeyType(c[0]-'a')}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// Type returns one key message per rune of s.
func Type(s string) []tea.KeyMsg {
	out := make([]tea.KeyMsg, 0, len(s))
	for _, r := range s {
		out = append(out, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	return out
}

// Run executes cmd and returns the messages it produced, expanding batches.
// Only use it on commands that do not wait on timers.
func Run(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, Run(c)...)
		}
		return out
	}
	if msg == nil {
		return nil
	}
	return []tea.Msg{msg}
}

// Session is a fixed app.Session.
type Session struct {
	Account  *domain.AccountSession
	Instance domain.Instance
}

// LoggedIn returns a session for alice whose account id is "me".
func LoggedIn() *Session {
	return &Session{Account: &domain.AccountSession{
		ID: "alice@example.social", AccountID: "me", Domain: "example.social", Username: "alice",
	}}
}

func (s *Session) Current() (domain.AccountSession, bool) {
	if s.Account == nil {
		return domain.AccountSession{}, false
	}
	return *s.Account, true
}

func (s *Session) Domain() string {
	if s.Account == nil {
		return domain.DefaultDomain
	}
	return s.Account.Domain
}

func (s *Session) InstanceInfo(string) (domain.Instance, bool) {
	return s.Instance, s.Instance.Domain != ""
}

// Prefs is an in-memory app.Preferences.
type Prefs struct {
	mu     sync.Mutex
	Values map[string]bool
	Err    error
}

func (p *Prefs) Bool(k string, def bool) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if v, ok := p.Values[k]; ok {
		return v
	}
	return def
}

func (p *Prefs) SetBool(k string, v bool) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.Err != nil {
		return p.Err
	}
	if p.Values == nil {
		p.Values = make(map[string]bool)
	}
	p.Values[k] = v
	return nil
}

// Timelines is an app.TimelineService returning canned statuses.
type Timelines struct {
	mu          sync.Mutex
	Queries     []domain.TimelineQuery
	Result      []domain.Status
	Next        string
	Err         error
	Ancestors   []domain.Status
	Descendants []domain.Status
}

func (t *Timelines) Fetch(_ context.Context, q domain.TimelineQuery) ([]domain.Status, string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.Queries = append(t.Queries, q)
	return t.Result, t.Next, t.Err
}

func (t *Timelines) FetchThread(context.Context, string) ([]domain.Status, []domain.Status, error) {
	return t.Ancestors, t.Descendants, t.Err
}

// Statuses is an app.StatusService recording every call.
type Statuses struct {
	mu          sync.Mutex
	Created     []app.StatusParams
	Edited      []string
	Deleted     []string
	Toggles     []domain.Interaction
	Err         error
	InteractErr error
}

func (s *Statuses) Get(_ context.Context, id string) (domain.Status, error) {
	return domain.Status{}, nil
}

func (s *Statuses) Create(_ context.Context, p app.StatusParams) (domain.Status, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Created = append(s.Created, p)
	if s.Err != nil {
		return domain.Status{}, s.Err
	}
	return domain.Status{ID: "created", Content: p.Text, Visibility: p.Visibility, SpoilerText: p.SpoilerText}, nil
}

func (s *Statuses) Edit(_ context.Context, id string, p app.StatusParams) (domain.Status, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Edited = append(s.Edited, id)
	if s.Err != nil {
		return domain.Status{}, s.Err
	}
	return domain.Status{ID: id, Content: p.Text}, nil
}

func (s *Statuses) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Deleted = append(s.Deleted, id)
	return s.Err
}

func (s *Statuses) SetInteraction(_ context.Context, id string, kind domain.Interaction, on bool) (domain.Status, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Toggles = append(s.Toggles, kind)
	return domain.Status{}, s.InteractErr
}

// Media is an app.MediaService that accepts every file.
type Media struct{}

func (Media) Upload(_ context.Context, path, description string, progress app.ProgressFunc) (domain.Attachment, error) {
	if progress != nil {
		progress(1, 1)
	}
	return domain.Attachment{ID: "m-" + path, Description: description}, nil
}

// Accounts is an app.AccountService for a single account.
type Accounts struct {
	mu      sync.Mutex
	Me      domain.Account
	Rel     domain.Relationship
	Posts   []domain.Status
	Follows []bool
}

func (a *Accounts) CurrentAccount(context.Context) (domain.Account, error) { return a.Me, nil }
func (a *Accounts) Account(context.Context, string) (domain.Account, error) {
	return a.Me, nil
}

func (a *Accounts) Statuses(context.Context, string, int, string) ([]domain.Status, error) {
	return a.Posts, nil
}

func (a *Accounts) Relationship(context.Context, string) (domain.Relationship, error) {
	return a.Rel, nil
}

func (a *Accounts) SetFollowing(_ context.Context, id string, follow bool) (domain.Relationship, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.Follows = append(a.Follows, follow)
	return domain.Relationship{ID: id, Following: follow}, nil
}

// Notifications is an app.NotificationService recording the requested types.
type Notifications struct {
	mu    sync.Mutex
	Items []domain.Notification
	Err   error
	Asked [][]domain.NotificationType
}

func (n *Notifications) Notifications(_ context.Context, types []domain.NotificationType, _ int) ([]domain.Notification, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.Asked = append(n.Asked, types)
	if n.Err != nil {
		return nil, n.Err
	}
	if len(types) == 0 {
		return n.Items, nil
	}
	var out []domain.Notification
	for _, it := range n.Items {
		for _, t := range types {
			if it.Type == t {
				out = append(out, it)
			}
		}
	}
	return out, nil
}

// Lists is an in-memory app.ListService.
type Lists struct {
	mu      sync.Mutex
	Items   []domain.FollowList
	Members map[string][]domain.Account
	Err     error
	next    int
}

func (l *Lists) Lists(context.Context) ([]domain.FollowList, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]domain.FollowList(nil), l.Items...), l.Err
}

func (l *Lists) CreateList(_ context.Context, fl domain.FollowList) (domain.FollowList, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.Err != nil {
		return domain.FollowList{}, l.Err
	}
	l.next++
	fl.ID = fmt.Sprintf("list%d", l.next)
	l.Items = append(l.Items, fl)
	return fl, nil
}

func (l *Lists) UpdateList(_ context.Context, fl domain.FollowList) (domain.FollowList, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.Err != nil {
		return domain.FollowList{}, l.Err
	}
	for i := range l.Items {
		if l.Items[i].ID == fl.ID {
			l.Items[i] = fl
		}
	}
	return fl, nil
}

func (l *Lists) DeleteList(_ context.Context, id string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.Err != nil {
		return l.Err
	}
	for i := range l.Items {
		if l.Items[i].ID == id {
			l.Items = append(l.Items[:i], l.Items[i+1:]...)
			break
		}
	}
	return nil
}

func (l *Lists) ListAccounts(_ context.Context, id string) ([]domain.Account, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]domain.Account(nil), l.Members[id]...), l.Err
}

// AddListAccounts records members by id only.
func (l *Lists) AddListAccounts(_ context.Context, id string, accountIDs []string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.Err != nil {
		return l.Err
	}
	if l.Members == nil {
		l.Members = make(map[string][]domain.Account)
	}
	for _, a := range accountIDs {
		l.Members[id] = append(l.Members[id], domain.Account{ID: a})
	}
	return nil
}

func (l *Lists) RemoveListAccounts(_ context.Context, id string, accountIDs []string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.Err != nil || l.Members == nil {
		return l.Err
	}
	var kept []domain.Account
	for _, m := range l.Members[id] {
		if !slices.Contains(accountIDs, m.ID) {
			kept = append(kept, m)
		}
	}
	l.Members[id] = kept
	return nil
}

// Filters is an in-memory app.FilterService.
type Filters struct {
	mu      sync.Mutex
	Items   []domain.Filter
	Err     error
	Updated []domain.Filter
	next    int
}

func (f *Filters) Filters(context.Context) ([]domain.Filter, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]domain.Filter(nil), f.Items...), f.Err
}

func (f *Filters) CreateFilter(_ context.Context, flt domain.Filter) (domain.Filter, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return domain.Filter{}, f.Err
	}
	f.next++
	flt.ID = fmt.Sprintf("filter%d", f.next)
	if flt.Action == "" {
		flt.Action = domain.FilterWarn
	}
	f.Items = append(f.Items, flt)
	return flt, nil
}

func (f *Filters) UpdateFilter(_ context.Context, flt domain.Filter) (domain.Filter, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Updated = append(f.Updated, flt)
	if f.Err != nil {
		return domain.Filter{}, f.Err
	}
	return flt, nil
}

func (f *Filters) DeleteFilter(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return f.Err
	}
	for i := range f.Items {
		if f.Items[i].ID == id {
			f.Items = append(f.Items[:i], f.Items[i+1:]...)
			break
		}
	}
	return nil
}

// Tags is an in-memory app.TagService.
type Tags struct {
	mu       sync.Mutex
	Followed []domain.Hashtag
	Err      error
	Calls    []string
}

func (t *Tags) FollowedTags(context.Context) ([]domain.Hashtag, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]domain.Hashtag(nil), t.Followed...), t.Err
}

func (t *Tags) Tag(_ context.Context, name string) (domain.Hashtag, error) {
	return domain.Hashtag{Name: strings.TrimPrefix(name, "#")}, t.Err
}

func (t *Tags) SetTagFollowed(_ context.Context, name string, follow bool) (domain.Hashtag, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	name = strings.TrimPrefix(name, "#")
	t.Calls = append(t.Calls, fmt.Sprintf("%s:%t", name, follow))
	if t.Err != nil {
		return domain.Hashtag{}, t.Err
	}
	return domain.Hashtag{Name: name, Following: follow}, nil
}

// Search is an app.SearchService returning canned results.
type Search struct {
	mu       sync.Mutex
	Results  domain.SearchResults
	Tags     []domain.Hashtag
	Trending []domain.Status
	Err      error
	Queries  []domain.SearchQuery
}

func (s *Search) Search(_ context.Context, q domain.SearchQuery) (domain.SearchResults, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Queries = append(s.Queries, q)
	return s.Results, s.Err
}

func (s *Search) TrendingTags(context.Context, int) ([]domain.Hashtag, error) {
	return s.Tags, s.Err
}

func (s *Search) TrendingStatuses(context.Context, int) ([]domain.Status, error) {
	return s.Trending, s.Err
}

// Status returns a public status by author id with generated text.
func Status(id, authorID string) domain.Status {
	return domain.Status{
		ID: id,
		Account: domain.Account{
			ID:          authorID,
			Username:    gofakeit.Username(),
			Acct:        gofakeit.Username(),
			DisplayName: gofakeit.Name(),
		},
		Content:         gofakeit.Sentence(10),
		Visibility:      domain.VisibilityPublic,
		FavouritesCount: gofakeit.IntRange(0, 20),
		ReblogsCount:    gofakeit.IntRange(0, 20),
	}
}

// StatusList returns n statuses with ids prefix0..prefixN-1 by other authors.
func StatusList(prefix string, n int) []domain.Status {
	out := make([]domain.Status, n)
	for i := range out {
		out[i] = Status(fmt.Sprintf("%s%d", prefix, i), fmt.Sprintf("author%d", i))
	}
	return out
}
