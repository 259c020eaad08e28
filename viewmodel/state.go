// Package viewmodel holds UI state that outlives a single render: the
// load-state machine shared by every screen, the timeline and compose
// view-models, and the optimistic interaction reducer.
//
// View-models are plain values owned by a Bubble Tea model. Methods that
// start network work return a tea.Cmd; the resulting message is folded back
// in through Update on the UI goroutine.
package viewmodel

import (
	"fmt"
	"slices"
)

// Phase is the load state of a screen.
type Phase int

const (
	PhaseLoading Phase = iota
	PhaseContent
	PhaseEmpty
	PhaseError
)

func (p Phase) String() string {
	switch p {
	case PhaseLoading:
		return "loading"
	case PhaseContent:
		return "content"
	case PhaseEmpty:
		return "empty"
	case PhaseError:
		return "error"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// Screen is the Loading/Content/Empty/Error state of a fetch-and-render view.
// The zero value is Loading with no items.
type Screen[T any] struct {
	phase         Phase
	items         []T
	message       string
	loginRequired bool
	seq           int
}

// Loaded carries the result of a request started with Screen.Begin.
type Loaded[T any] struct {
	Seq   int
	Items []T
	Err   error
}

// Phase returns the active phase.
func (s Screen[T]) Phase() Phase { return s.phase }

// Items returns the content. It is empty unless the phase is Content.
func (s Screen[T]) Items() []T { return s.items }

// Message returns the empty or error text.
func (s Screen[T]) Message() string { return s.message }

// LoginRequired reports whether the empty state should offer a login action.
func (s Screen[T]) LoginRequired() bool { return s.loginRequired }

// Seq returns the sequence of the latest Begin.
func (s Screen[T]) Seq() int { return s.seq }

// Begin enters Loading and returns the sequence the response must carry.
func (s *Screen[T]) Begin() int {
	s.seq++
	s.phase = PhaseLoading
	s.items = nil
	s.message = ""
	s.loginRequired = false
	return s.seq
}

// Resolve applies a response. Stale sequences are ignored and reported as false.
// An empty successful result enters Empty with emptyMsg.
func (s *Screen[T]) Resolve(seq int, items []T, err error, emptyMsg string) bool {
	if seq != s.seq {
		return false
	}
	if err != nil {
		s.Fail(err.Error())
		return true
	}
	if len(items) == 0 {
		s.SetEmpty(emptyMsg, false)
		return true
	}
	s.SetItems(items)
	return true
}

// SetItems enters Content, or Empty with no message when items is empty.
func (s *Screen[T]) SetItems(items []T) {
	if len(items) == 0 {
		s.SetEmpty(s.message, false)
		return
	}
	s.phase = PhaseContent
	s.items = items
	s.message = ""
	s.loginRequired = false
}

// SetEmpty enters Empty.
func (s *Screen[T]) SetEmpty(msg string, loginRequired bool) {
	s.phase = PhaseEmpty
	s.items = nil
	s.message = msg
	s.loginRequired = loginRequired
}

// Fail enters Error with msg.
func (s *Screen[T]) Fail(msg string) {
	if msg == "" {
		msg = "Something went wrong"
	}
	s.phase = PhaseError
	s.items = nil
	s.message = msg
	s.loginRequired = false
}

// Append adds items in Content, skipping those for which seen reports true.
// It returns how many were added.
func (s *Screen[T]) Append(items []T, seen func(T) bool) int {
	if s.phase != PhaseContent && s.phase != PhaseEmpty {
		return 0
	}
	added := 0
	next := slices.Clone(s.items)
	for _, it := range items {
		if seen != nil && seen(it) {
			continue
		}
		next = append(next, it)
		added++
	}
	if len(next) > 0 {
		s.SetItems(next)
	}
	return added
}

// Map replaces every item with fn(item) in Content.
func (s *Screen[T]) Map(fn func(T) T) {
	if s.phase != PhaseContent {
		return
	}
	next := make([]T, len(s.items))
	for i, it := range s.items {
		next[i] = fn(it)
	}
	s.items = next
}

// Remove drops items matching fn; removing the last item enters Empty with emptyMsg.
func (s *Screen[T]) Remove(fn func(T) bool, emptyMsg string) {
	if s.phase != PhaseContent {
		return
	}
	next := make([]T, 0, len(s.items))
	for _, it := range s.items {
		if !fn(it) {
			next = append(next, it)
		}
	}
	if len(next) == 0 {
		s.SetEmpty(emptyMsg, false)
		return
	}
	s.items = next
}

// Prepend inserts item at the top, entering Content if needed.
func (s *Screen[T]) Prepend(item T) {
	if s.phase == PhaseLoading || s.phase == PhaseError {
		return
	}
	s.SetItems(append([]T{item}, s.items...))
}
