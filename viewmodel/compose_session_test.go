package viewmodel

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CrestNiraj12/kabinka/app"
	"github.com/CrestNiraj12/kabinka/domain"
	"github.com/CrestNiraj12/kabinka/infra/session"
)

type accountsInMemory struct {
	mu       sync.Mutex
	accounts []domain.AccountSession
}

func (s *accountsInMemory) Save(_ context.Context, a domain.AccountSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accounts = append([]domain.AccountSession{a}, s.accounts...)
	return nil
}

func (s *accountsInMemory) List(context.Context) ([]domain.AccountSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.AccountSession(nil), s.accounts...), nil
}

func (s *accountsInMemory) Touch(context.Context, string, time.Time) error { return nil }
func (s *accountsInMemory) Delete(context.Context, string) error           { return nil }

type fixedInstance domain.Instance

func (f fixedInstance) Instance(context.Context) (domain.Instance, error) {
	return domain.Instance(f), nil
}

func TestCompose_SignedInSessionUsesServerCharLimit(t *testing.T) {
	ctx := context.Background()
	instances := func(string) app.InstanceService {
		return fixedInstance{MaxStatusChars: 5000, MaxAttachments: 6}
	}
	mgr := session.NewManager(&accountsInMemory{}, instances, 4, time.Hour, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, mgr.SignIn(ctx, domain.AccountSession{AccountID: "1", Domain: "big.social", Username: "writer"}))

	statuses := &fakeStatuses{}
	c := NewCompose(statuses, &fakeMedia{}, mgr)
	assert.Equal(t, 5000, c.CharLimit())

	c.SetText(strings.Repeat("a", 600))
	cmd := c.Publish()
	require.NotNil(t, cmd, "a 600 character post fits a 5000 character server")
	c.Update(cmd())
	assert.Equal(t, ComposeSuccess, c.Phase())
	require.Len(t, statuses.created, 1)
}
