package viewmodel

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CrestNiraj12/kabinka/domain"
)

func TestInteractions_BeginAppliesOptimisticToggle(t *testing.T) {
	in := NewInteractions()
	list := []domain.Status{{ID: "1", FavouritesCount: 2}}

	next, req, ok := in.Begin(list, "1", domain.Favourite)
	require.True(t, ok)
	assert.True(t, next[0].Favourited)
	assert.Equal(t, 3, next[0].FavouritesCount)
	assert.True(t, req.On)
	assert.False(t, list[0].Favourited, "input slice must not be mutated")
	assert.True(t, in.InFlight("1", domain.Favourite))
}

func TestInteractions_SecondToggleWhileInFlightIsDropped(t *testing.T) {
	in := NewInteractions()
	list := []domain.Status{{ID: "1"}}

	next, _, ok := in.Begin(list, "1", domain.Reblog)
	require.True(t, ok)
	again, _, ok := in.Begin(next, "1", domain.Reblog)
	assert.False(t, ok)
	assert.Equal(t, next, again)

	_, _, ok = in.Begin(next, "1", domain.Bookmark)
	assert.True(t, ok, "other kinds on the same status are independent")
}

func TestInteractions_FailureRestoresPreTapSnapshot(t *testing.T) {
	in := NewInteractions()
	list := []domain.Status{{ID: "1", Favourited: true, FavouritesCount: 5}}

	next, req, ok := in.Begin(list, "1", domain.Favourite)
	require.True(t, ok)
	require.False(t, next[0].Favourited)

	req.Err = errors.New("offline")
	settled := in.Settle(next, req)
	assert.True(t, settled[0].Favourited)
	assert.Equal(t, 5, settled[0].FavouritesCount)
	assert.Zero(t, in.Pending())
}

func TestInteractions_SuccessAdoptsServerCounts(t *testing.T) {
	in := NewInteractions()
	list := []domain.Status{{ID: "1", ReblogsCount: 1}}

	next, req, _ := in.Begin(list, "1", domain.Reblog)
	req.Status = domain.Status{ID: "wrapper", Reblog: &domain.Status{ID: "1", Reblogged: true, ReblogsCount: 9}}
	settled := in.Settle(next, req)
	assert.True(t, settled[0].Reblogged)
	assert.Equal(t, 9, settled[0].ReblogsCount)
}

func TestInteractions_BoostAndOriginalStayInSync(t *testing.T) {
	in := NewInteractions()
	original := domain.Status{ID: "orig", FavouritesCount: 1}
	list := []domain.Status{original, {ID: "boost", Reblog: &original}}

	next, req, ok := in.Begin(list, "boost", domain.Favourite)
	require.True(t, ok)
	assert.Equal(t, "orig", req.TargetID)
	assert.True(t, next[0].Favourited)
	assert.True(t, next[1].Reblog.Favourited)
	assert.Equal(t, "boost", next[1].ID)
}

func TestInteractions_ForeignFailureIsIgnored(t *testing.T) {
	mine := NewInteractions()
	other := NewInteractions()
	list := []domain.Status{{ID: "1"}}

	next, _, _ := mine.Begin(list, "1", domain.Bookmark)
	_, foreign, _ := other.Begin(list, "1", domain.Bookmark)
	foreign.Err = errors.New("nope")

	settled := mine.Settle(next, foreign)
	assert.True(t, settled[0].Bookmarked)
	assert.True(t, mine.InFlight("1", domain.Bookmark))
}

func TestInteractions_SendCallsService(t *testing.T) {
	in := NewInteractions()
	svc := &fakeStatuses{server: func(id string, kind domain.Interaction, on bool) domain.Status {
		return domain.Status{ID: id, Bookmarked: on}
	}}
	_, req, _ := in.Begin([]domain.Status{{ID: "1"}}, "1", domain.Bookmark)

	msg := in.Send(context.Background(), svc, req)().(InteractionResultMsg)
	require.NoError(t, msg.Err)
	assert.True(t, msg.Status.Bookmarked)
	assert.Equal(t, []interactionCall{{id: "1", kind: domain.Bookmark, on: true}}, svc.interactions)
}
