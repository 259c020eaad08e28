package hashtags

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/CrestNiraj12/kabinka/domain"
	"github.com/CrestNiraj12/kabinka/tui/common"
	"github.com/CrestNiraj12/kabinka/tui/tuitest"
)

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

func loaded(t *testing.T, svc *tuitest.Tags) Model {
	t.Helper()
	m := New(Deps{Tags: svc, Session: tuitest.LoggedIn()})
	m, _ = send(t, m, tuitest.Run(m.initCmd)...)
	return m
}

func TestFollowNewTag(t *testing.T) {
	svc := &tuitest.Tags{}
	m := loaded(t, svc)

	m, _ = send(t, m, tuitest.Key("a"))
	for _, k := range tuitest.Type("GoLang") {
		next, _ := m.Update(k)
		m = next.(Model)
	}
	m, msgs := send(t, m, tuitest.Key("enter"))
	m, _ = send(t, m, msgs...)

	if len(svc.Calls) != 1 || svc.Calls[0] != "golang:true" {
		t.Fatalf("unexpected calls %v", svc.Calls)
	}
	if got := m.Tags(); len(got) != 1 || !got[0].Following {
		t.Fatalf("expected followed tag, got %+v", got)
	}
}

func TestUnfollowKeepsRow(t *testing.T) {
	svc := &tuitest.Tags{Followed: []domain.Hashtag{{Name: "golang", Following: true}}}
	m := loaded(t, svc)

	m, msgs := send(t, m, tuitest.Key("F"))
	m, _ = send(t, m, msgs...)
	if svc.Calls[0] != "golang:false" {
		t.Fatalf("unexpected calls %v", svc.Calls)
	}
	if got := m.Tags(); len(got) != 1 || got[0].Following {
		t.Fatalf("row should stay, unfollowed: %+v", got)
	}
	if !strings.Contains(m.View(), "not following") {
		t.Fatal("view should show the new state")
	}

	m, msgs = send(t, m, tuitest.Key(" "))
	m, _ = send(t, m, msgs...)
	if svc.Calls[1] != "golang:true" || !m.Tags()[0].Following {
		t.Fatal("space should follow again")
	}
}

func TestEnterOpensHashtagTimeline(t *testing.T) {
	m := loaded(t, &tuitest.Tags{Followed: []domain.Hashtag{{Name: "golang", Following: true}}})
	_, msgs := send(t, m, tuitest.Key("enter"))
	open, ok := msgs[0].(common.OpenTimelineMsg)
	if !ok || open.Query.Kind != domain.TimelineHashtag || open.Query.Hashtag != "golang" {
		t.Fatalf("unexpected message %v", msgs)
	}
}
