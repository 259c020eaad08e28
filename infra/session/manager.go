package session

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/CrestNiraj12/kabinka/app"
	"github.com/CrestNiraj12/kabinka/domain"
)

// State is where the manager is in resolving the active account.
type State int

const (
	StateLoading State = iota
	StateAnonymous
	StateAuthenticated
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateAnonymous:
		return "anonymous"
	case StateAuthenticated:
		return "authenticated"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// AccountStore persists the accounts known to this device.
type AccountStore interface {
	Save(ctx context.Context, s domain.AccountSession) error
	List(ctx context.Context) ([]domain.AccountSession, error)
	Touch(ctx context.Context, id string, at time.Time) error
	Delete(ctx context.Context, id string) error
}

// InstanceSource returns an instance service for the given domain.
type InstanceSource func(domain string) app.InstanceService

// Manager tracks the active account and caches server metadata. It is the
// only state shared between screens and is safe for concurrent use.
type Manager struct {
	store     AccountStore
	instances InstanceSource
	cache     *expirable.LRU[string, domain.Instance]
	log       *slog.Logger
	now       func() time.Time

	mu             sync.RWMutex
	state          State
	current        domain.AccountSession
	anonDomain     string
	forceAnonymous bool
}

// NewManager creates a manager in the loading state. Call Load to resolve it.
func NewManager(store AccountStore, instances InstanceSource, cacheSize int, cacheTTL time.Duration, log *slog.Logger) *Manager {
	if cacheSize <= 0 {
		cacheSize = 16
	}
	return &Manager{
		store:      store,
		instances:  instances,
		cache:      expirable.NewLRU[string, domain.Instance](cacheSize, nil, cacheTTL),
		log:        log,
		now:        time.Now,
		anonDomain: domain.DefaultDomain,
	}
}

// Load selects the most recently active saved account, or falls back to
// anonymous browsing of anonDomain when there is none.
func (m *Manager) Load(ctx context.Context, anonDomain string) error {
	accounts, err := m.store.List(ctx)
	m.mu.Lock()
	if d := normalizeDomain(anonDomain); d != "" {
		m.anonDomain = d
	}
	if err != nil {
		m.state = StateAnonymous
		m.mu.Unlock()
		return fmt.Errorf("loading accounts: %w", err)
	}
	if len(accounts) == 0 || m.forceAnonymous {
		m.state = StateAnonymous
		m.current = domain.AccountSession{}
	} else {
		m.current = accounts[0]
		m.state = StateAuthenticated
	}
	m.mu.Unlock()
	m.warm(ctx)
	return nil
}

func (m *Manager) State() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

func (m *Manager) Current() (domain.AccountSession, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.state != StateAuthenticated {
		return domain.AccountSession{}, false
	}
	return m.current, true
}

func (m *Manager) Domain() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.state == StateAuthenticated {
		return m.current.Domain
	}
	return m.anonDomain
}

// Accounts lists saved accounts, most recent first.
func (m *Manager) Accounts(ctx context.Context) ([]domain.AccountSession, error) {
	return m.store.List(ctx)
}

// SignIn records s and makes it the active account.
func (m *Manager) SignIn(ctx context.Context, s domain.AccountSession) error {
	s.Domain = normalizeDomain(s.Domain)
	if s.ID == "" {
		s.ID = s.Username + "@" + s.Domain
	}
	s.LastActive = m.now()
	if err := m.store.Save(ctx, s); err != nil {
		return err
	}
	m.mu.Lock()
	m.current, m.state, m.forceAnonymous = s, StateAuthenticated, false
	m.mu.Unlock()
	m.log.Info(fmt.Sprintf("session.SignIn(%s)", s.ID))
	m.warm(ctx)
	return nil
}

// Switch activates a previously saved account.
func (m *Manager) Switch(ctx context.Context, id string) error {
	accounts, err := m.store.List(ctx)
	if err != nil {
		return fmt.Errorf("loading accounts: %w", err)
	}
	for _, a := range accounts {
		if a.ID != id {
			continue
		}
		a.LastActive = m.now()
		if err := m.store.Touch(ctx, id, a.LastActive); err != nil {
			return err
		}
		m.mu.Lock()
		m.current, m.state, m.forceAnonymous = a, StateAuthenticated, false
		m.mu.Unlock()
		m.warm(ctx)
		return nil
	}
	return fmt.Errorf("account %s: %w", id, domain.ErrNotFound)
}

// SignOut forgets id. When it was active the next most recent account takes
// over, or the session becomes anonymous.
func (m *Manager) SignOut(ctx context.Context, id string) error {
	if err := m.store.Delete(ctx, id); err != nil {
		return err
	}
	m.mu.RLock()
	active := m.state == StateAuthenticated && m.current.ID == id
	m.mu.RUnlock()
	if !active {
		return nil
	}
	accounts, err := m.store.List(ctx)
	if err != nil {
		return fmt.Errorf("loading accounts: %w", err)
	}
	m.mu.Lock()
	if len(accounts) == 0 {
		m.current, m.state = domain.AccountSession{}, StateAnonymous
	} else {
		m.current = accounts[0]
	}
	m.mu.Unlock()
	m.warm(ctx)
	return nil
}

// SetAnonymous toggles browsing without the saved accounts. Turning it off
// restores the most recently active account.
func (m *Manager) SetAnonymous(ctx context.Context, on bool) error {
	m.mu.Lock()
	m.forceAnonymous = on
	if on {
		m.state, m.current = StateAnonymous, domain.AccountSession{}
		m.mu.Unlock()
		return nil
	}
	anon := m.anonDomain
	m.mu.Unlock()
	return m.Load(ctx, anon)
}

// InstanceInfo returns cached metadata for d.
func (m *Manager) InstanceInfo(d string) (domain.Instance, bool) {
	return m.cache.Get(normalizeDomain(d))
}

// RefreshInstance fetches and caches metadata for d.
func (m *Manager) RefreshInstance(ctx context.Context, d string) (domain.Instance, error) {
	d = normalizeDomain(d)
	if d == "" {
		return domain.Instance{}, fmt.Errorf("empty domain")
	}
	inst, err := m.instances(d).Instance(ctx)
	if err != nil {
		return domain.Instance{}, err
	}
	if inst.Domain == "" {
		inst.Domain = d
	}
	m.cache.Add(d, inst)
	return inst, nil
}

// Instance returns cached metadata for d, fetching it on a miss.
func (m *Manager) Instance(ctx context.Context, d string) (domain.Instance, error) {
	if inst, ok := m.InstanceInfo(d); ok {
		return inst, nil
	}
	return m.RefreshInstance(ctx, d)
}

// warm loads the active server's metadata so compose limits reflect it.
// A failure leaves the defaults in place.
func (m *Manager) warm(ctx context.Context) {
	d := m.Domain()
	if _, err := m.Instance(ctx, d); err != nil {
		m.log.Warn(fmt.Sprintf("session.warm(%s): %v", d, err))
	}
}

func normalizeDomain(d string) string {
	d = strings.TrimSpace(strings.ToLower(d))
	d = strings.TrimPrefix(d, "https://")
	return strings.TrimRight(d, "/")
}
