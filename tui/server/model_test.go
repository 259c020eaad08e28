package server

import (
	"context"
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/CrestNiraj12/kabinka/domain"
	"github.com/CrestNiraj12/kabinka/tui/common"
	"github.com/CrestNiraj12/kabinka/tui/tuitest"
	"github.com/CrestNiraj12/kabinka/viewmodel"
)

type stubInstances struct {
	domain string
	cached *domain.Instance
	fresh  domain.Instance
	err    error
	asked  []string
}

func (s *stubInstances) Domain() string { return s.domain }

func (s *stubInstances) InstanceInfo(string) (domain.Instance, bool) {
	if s.cached == nil {
		return domain.Instance{}, false
	}
	return *s.cached, true
}

func (s *stubInstances) RefreshInstance(_ context.Context, d string) (domain.Instance, error) {
	s.asked = append(s.asked, d)
	return s.fresh, s.err
}

func send(t *testing.T, m Model, msgs ...tea.Msg) (Model, []tea.Msg) {
	t.Helper()
	var out []tea.Msg
	for _, msg := range msgs {
		next, cmd := m.Update(msg)
		m = next.(Model)
		out = tuitest.Run(cmd)
	}
	return m, out
}

func TestShowsInstanceAndRules(t *testing.T) {
	inst := &stubInstances{domain: "example.social", fresh: domain.Instance{
		Domain:         "example.social",
		Title:          "Example",
		Version:        "4.3.0",
		MaxStatusChars: 1000,
		Rules:          []domain.InstanceRule{{ID: "1", Text: "Be kind"}, {ID: "2", Text: "No spam"}},
	}}
	m := New(inst)
	if m.coll.Phase() != viewmodel.PhaseLoading {
		t.Fatal("nothing cached, expected loading")
	}
	m, _ = send(t, m, tuitest.Run(m.initCmd)...)

	view := m.View()
	for _, want := range []string{"Example", "4.3.0", "1000 characters", "1. Be kind", "2. No spam"} {
		if !strings.Contains(view, want) {
			t.Fatalf("view missing %q:\n%s", want, view)
		}
	}
	if len(inst.asked) != 1 || inst.asked[0] != "example.social" {
		t.Fatalf("unexpected refreshes %v", inst.asked)
	}
}

func TestCachedCopySurvivesFailedRefresh(t *testing.T) {
	cached := domain.Instance{Domain: "example.social", Title: "Cached"}
	inst := &stubInstances{domain: "example.social", cached: &cached, err: errors.New("offline")}
	m := New(inst)
	if got, ok := m.Instance(); !ok || got.Title != "Cached" {
		t.Fatal("cached metadata should show right away")
	}

	m, msgs := send(t, m, tuitest.Run(m.initCmd)...)
	if got, ok := m.Instance(); !ok || got.Title != "Cached" {
		t.Fatal("failed refresh must keep the cached copy")
	}
	if n, ok := msgs[0].(common.NoticeMsg); !ok || !n.Error {
		t.Fatalf("expected an error notice, got %v", msgs)
	}
}

func TestErrorWithoutCache(t *testing.T) {
	inst := &stubInstances{domain: "example.social", err: errors.New("offline")}
	m := New(inst)
	m, _ = send(t, m, tuitest.Run(m.initCmd)...)
	if m.coll.Phase() != viewmodel.PhaseError || !strings.Contains(m.View(), "offline") {
		t.Fatalf("expected error view:\n%s", m.View())
	}
}
