package viewmodel

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScreen_ZeroValueIsLoading(t *testing.T) {
	var s Screen[int]
	assert.Equal(t, PhaseLoading, s.Phase())
	assert.Empty(t, s.Items())
}

func TestScreen_ResolveIgnoresStaleSequence(t *testing.T) {
	var s Screen[int]
	first := s.Begin()
	second := s.Begin()

	assert.False(t, s.Resolve(first, []int{1}, nil, "empty"))
	assert.Equal(t, PhaseLoading, s.Phase())

	require.True(t, s.Resolve(second, []int{2, 3}, nil, "empty"))
	assert.Equal(t, PhaseContent, s.Phase())
	assert.Equal(t, []int{2, 3}, s.Items())
}

func TestScreen_ResolveEmptyAndError(t *testing.T) {
	var s Screen[string]
	seq := s.Begin()
	s.Resolve(seq, nil, nil, "nothing here")
	assert.Equal(t, PhaseEmpty, s.Phase())
	assert.Equal(t, "nothing here", s.Message())
	assert.False(t, s.LoginRequired())

	seq = s.Begin()
	s.Resolve(seq, nil, errors.New("boom"), "nothing here")
	assert.Equal(t, PhaseError, s.Phase())
	assert.Equal(t, "boom", s.Message())

	s.Fail("")
	assert.Equal(t, "Something went wrong", s.Message())
}

func TestScreen_BeginClearsPreviousState(t *testing.T) {
	var s Screen[int]
	s.SetEmpty("log in", true)
	s.Begin()
	assert.Equal(t, PhaseLoading, s.Phase())
	assert.Empty(t, s.Message())
	assert.False(t, s.LoginRequired())
}

func TestScreen_AppendSkipsSeen(t *testing.T) {
	var s Screen[int]
	s.SetItems([]int{1, 2})
	added := s.Append([]int{2, 3}, func(v int) bool { return v == 2 })
	assert.Equal(t, 1, added)
	assert.Equal(t, []int{1, 2, 3}, s.Items())
}

func TestScreen_AppendDoesNotShareBackingArray(t *testing.T) {
	var s Screen[int]
	items := make([]int, 2, 8)
	items[0], items[1] = 1, 2
	s.SetItems(items)

	// Bubble Tea models are copied by value; both copies must stay independent.
	other := s
	s.Append([]int{3}, nil)
	other.Append([]int{4}, nil)

	assert.Equal(t, []int{1, 2, 3}, s.Items())
	assert.Equal(t, []int{1, 2, 4}, other.Items())
	assert.Equal(t, []int{1, 2}, items)
}

func TestScreen_RemoveLastEntersEmpty(t *testing.T) {
	var s Screen[int]
	s.SetItems([]int{7})
	s.Remove(func(v int) bool { return v == 7 }, "all gone")
	assert.Equal(t, PhaseEmpty, s.Phase())
	assert.Equal(t, "all gone", s.Message())
}

func TestScreen_PrependFromEmpty(t *testing.T) {
	var s Screen[int]
	s.Prepend(1)
	assert.Equal(t, PhaseLoading, s.Phase(), "prepend must not leave Loading")

	s.SetEmpty("none", false)
	s.Prepend(1)
	assert.Equal(t, PhaseContent, s.Phase())
	assert.Equal(t, []int{1}, s.Items())
}
