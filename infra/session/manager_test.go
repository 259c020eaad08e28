package session

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CrestNiraj12/kabinka/app"
	"github.com/CrestNiraj12/kabinka/domain"
)

type memStore struct {
	mu       sync.Mutex
	accounts map[string]domain.AccountSession
	listErr  error
}

func newMemStore(accounts ...domain.AccountSession) *memStore {
	s := &memStore{accounts: map[string]domain.AccountSession{}}
	for _, a := range accounts {
		s.accounts[a.ID] = a
	}
	return s
}

func (s *memStore) Save(_ context.Context, a domain.AccountSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accounts[a.ID] = a
	return nil
}

func (s *memStore) List(context.Context) ([]domain.AccountSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listErr != nil {
		return nil, s.listErr
	}
	out := make([]domain.AccountSession, 0, len(s.accounts))
	for _, a := range s.accounts {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].LastActive.After(out[j].LastActive) })
	return out, nil
}

func (s *memStore) Touch(_ context.Context, id string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.accounts[id]
	if !ok {
		return domain.ErrNotFound
	}
	a.LastActive = at
	s.accounts[id] = a
	return nil
}

func (s *memStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.accounts, id)
	return nil
}

type countingInstances struct {
	mu    sync.Mutex
	calls map[string]int
	err   error
}

func (c *countingInstances) source(d string) app.InstanceService {
	return instanceFunc(func(context.Context) (domain.Instance, error) {
		c.mu.Lock()
		defer c.mu.Unlock()
		if c.calls == nil {
			c.calls = map[string]int{}
		}
		c.calls[d]++
		if c.err != nil {
			return domain.Instance{}, c.err
		}
		return domain.Instance{Title: d, MaxStatusChars: 1000}, nil
	})
}

type instanceFunc func(context.Context) (domain.Instance, error)

func (f instanceFunc) Instance(ctx context.Context) (domain.Instance, error) { return f(ctx) }

var (
	t0    = time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	alice = domain.AccountSession{ID: "alice@one.social", AccountID: "1", Domain: "one.social", Username: "alice", LastActive: t0}
	bob   = domain.AccountSession{ID: "bob@two.social", AccountID: "2", Domain: "two.social", Username: "bob", LastActive: t0.Add(time.Hour)}
)

func newTestManager(store AccountStore, inst *countingInstances) *Manager {
	if inst == nil {
		inst = &countingInstances{}
	}
	return NewManager(store, inst.source, 4, time.Hour, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestManager_StartsLoading(t *testing.T) {
	m := newTestManager(newMemStore(), nil)
	assert.Equal(t, StateLoading, m.State())
	_, ok := m.Current()
	assert.False(t, ok)
}

func TestManager_LoadPicksMostRecent(t *testing.T) {
	m := newTestManager(newMemStore(alice, bob), nil)
	require.NoError(t, m.Load(context.Background(), ""))

	cur, ok := m.Current()
	require.True(t, ok)
	assert.Equal(t, bob.ID, cur.ID)
	assert.Equal(t, "two.social", m.Domain())
	assert.Equal(t, StateAuthenticated, m.State())
}

func TestManager_LoadWithoutAccountsIsAnonymous(t *testing.T) {
	m := newTestManager(newMemStore(), nil)
	require.NoError(t, m.Load(context.Background(), "https://Fosstodon.org/"))
	assert.Equal(t, StateAnonymous, m.State())
	assert.Equal(t, "fosstodon.org", m.Domain())
}

func TestManager_LoadErrorFallsBackToAnonymous(t *testing.T) {
	store := newMemStore(alice)
	store.listErr = errors.New("disk")
	m := newTestManager(store, nil)
	assert.Error(t, m.Load(context.Background(), ""))
	assert.Equal(t, StateAnonymous, m.State())
	assert.Equal(t, domain.DefaultDomain, m.Domain())
}

func TestManager_SignInSwitchSignOut(t *testing.T) {
	ctx := context.Background()
	store := newMemStore(alice)
	m := newTestManager(store, nil)
	m.now = func() time.Time { return t0.Add(24 * time.Hour) }
	require.NoError(t, m.Load(ctx, ""))

	require.NoError(t, m.SignIn(ctx, domain.AccountSession{AccountID: "3", Domain: "Three.Social", Username: "carol"}))
	cur, _ := m.Current()
	assert.Equal(t, "carol@three.social", cur.ID)

	m.now = func() time.Time { return t0.Add(48 * time.Hour) }
	require.NoError(t, m.Switch(ctx, alice.ID))
	cur, _ = m.Current()
	assert.Equal(t, alice.ID, cur.ID)
	assert.ErrorIs(t, m.Switch(ctx, "nobody@x"), domain.ErrNotFound)

	require.NoError(t, m.SignOut(ctx, alice.ID))
	cur, ok := m.Current()
	require.True(t, ok)
	assert.Equal(t, "carol@three.social", cur.ID)

	require.NoError(t, m.SignOut(ctx, "carol@three.social"))
	assert.Equal(t, StateAnonymous, m.State())
}

func TestManager_SetAnonymous(t *testing.T) {
	ctx := context.Background()
	m := newTestManager(newMemStore(alice), nil)
	require.NoError(t, m.Load(ctx, "public.social"))

	require.NoError(t, m.SetAnonymous(ctx, true))
	_, ok := m.Current()
	assert.False(t, ok)
	assert.Equal(t, "public.social", m.Domain())

	require.NoError(t, m.SetAnonymous(ctx, false))
	cur, ok := m.Current()
	require.True(t, ok)
	assert.Equal(t, alice.ID, cur.ID)
}

func TestManager_InstanceCache(t *testing.T) {
	ctx := context.Background()
	inst := &countingInstances{}
	m := newTestManager(newMemStore(), inst)

	_, ok := m.InstanceInfo("one.social")
	assert.False(t, ok)

	got, err := m.Instance(ctx, "one.social")
	require.NoError(t, err)
	assert.Equal(t, 1000, got.CharLimit())
	assert.Equal(t, "one.social", got.Domain)

	_, err = m.Instance(ctx, "ONE.social")
	require.NoError(t, err)
	assert.Equal(t, 1, inst.calls["one.social"])

	cached, ok := m.InstanceInfo("one.social")
	require.True(t, ok)
	assert.Equal(t, "one.social", cached.Title)

	_, err = m.RefreshInstance(ctx, "one.social")
	require.NoError(t, err)
	assert.Equal(t, 2, inst.calls["one.social"])
}

func TestManager_SessionChangesLoadInstanceLimits(t *testing.T) {
	ctx := context.Background()
	inst := &countingInstances{}
	m := newTestManager(newMemStore(alice), inst)

	require.NoError(t, m.Load(ctx, ""))
	got, ok := m.InstanceInfo("one.social")
	require.True(t, ok, "Load must cache the active server")
	assert.Equal(t, 1000, got.CharLimit())

	require.NoError(t, m.SignIn(ctx, domain.AccountSession{AccountID: "3", Domain: "three.social", Username: "carol"}))
	_, ok = m.InstanceInfo("three.social")
	assert.True(t, ok, "SignIn must cache the new server")

	require.NoError(t, m.Switch(ctx, alice.ID))
	assert.Equal(t, 1, inst.calls["one.social"], "cached metadata is reused")
}

func TestManager_InstanceFailureDoesNotFailSignIn(t *testing.T) {
	m := newTestManager(newMemStore(), &countingInstances{err: errors.New("down")})
	require.NoError(t, m.SignIn(context.Background(), domain.AccountSession{AccountID: "3", Domain: "three.social", Username: "carol"}))
	_, ok := m.InstanceInfo("three.social")
	assert.False(t, ok)
	assert.Equal(t, StateAuthenticated, m.State())
}

func TestManager_InstanceErrorIsNotCached(t *testing.T) {
	inst := &countingInstances{err: errors.New("down")}
	m := newTestManager(newMemStore(), inst)
	_, err := m.Instance(context.Background(), "one.social")
	assert.Error(t, err)
	_, ok := m.InstanceInfo("one.social")
	assert.False(t, ok)
}

func TestManager_ConcurrentReads(t *testing.T) {
	ctx := context.Background()
	m := newTestManager(newMemStore(alice, bob), nil)
	require.NoError(t, m.Load(ctx, ""))

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if i%2 == 0 {
				_ = m.Switch(ctx, alice.ID)
				return
			}
			_, _ = m.Current()
			_ = m.Domain()
		}(i)
	}
	wg.Wait()
	_, ok := m.Current()
	assert.True(t, ok)
}
