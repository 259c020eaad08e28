package common

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/segmentio/ksuid"

	"github.com/CrestNiraj12/kabinka/viewmodel"
)

// LoadedMsg carries the result of Collection.Load back to its owner.
type LoadedMsg[T any] struct {
	Owner string
	viewmodel.Loaded[T]
}

// Collection is the load state, cursor and request context of a screen
// listing server resources such as lists or filters. Results are tagged with
// an owner so a closed screen's answers never land in its replacement.
type Collection[T any] struct {
	owner  string
	screen viewmodel.Screen[T]
	cursor int

	ctx    context.Context
	cancel context.CancelFunc
}

// NewCollection returns an empty collection in Loading.
func NewCollection[T any]() Collection[T] {
	ctx, cancel := context.WithCancel(context.Background())
	return Collection[T]{owner: ksuid.New().String(), ctx: ctx, cancel: cancel}
}

func (c Collection[T]) Owner() string               { return c.owner }
func (c Collection[T]) Screen() viewmodel.Screen[T] { return c.screen }
func (c Collection[T]) Items() []T                  { return c.screen.Items() }
func (c Collection[T]) Cursor() int                 { return c.cursor }
func (c Collection[T]) Context() context.Context    { return c.ctx }
func (c Collection[T]) Phase() viewmodel.Phase      { return c.screen.Phase() }
func (c Collection[T]) LoginRequired() bool         { return c.screen.LoginRequired() }

// Selected returns the item under the cursor.
func (c Collection[T]) Selected() (T, bool) {
	items := c.screen.Items()
	if c.cursor < 0 || c.cursor >= len(items) {
		var zero T
		return zero, false
	}
	return items[c.cursor], true
}

// Move shifts the cursor by delta; zero just clamps it.
func (c *Collection[T]) Move(delta int) {
	c.cursor = MoveCursor(c.cursor, delta, len(c.screen.Items()))
}

// Top moves the cursor to the first item.
func (c *Collection[T]) Top() { c.cursor = 0 }

// Load enters Loading and runs fetch.
func (c *Collection[T]) Load(fetch func(ctx context.Context) ([]T, error)) tea.Cmd {
	seq := c.screen.Begin()
	c.cursor = 0
	ctx, owner := c.ctx, c.owner
	return func() tea.Msg {
		items, err := fetch(ctx)
		return LoadedMsg[T]{Owner: owner, Loaded: viewmodel.Loaded[T]{Seq: seq, Items: items, Err: err}}
	}
}

// RequireLogin enters Empty with a login action instead of loading.
func (c *Collection[T]) RequireLogin(msg string) {
	c.screen.Begin()
	c.cursor = 0
	c.screen.SetEmpty(msg, true)
}

// Resolve applies msg when it belongs to this collection.
func (c *Collection[T]) Resolve(msg LoadedMsg[T], empty string) bool {
	if msg.Owner != c.owner || c.ctx.Err() != nil {
		return false
	}
	ok := c.screen.Resolve(msg.Seq, msg.Items, msg.Err, empty)
	c.Move(0)
	return ok
}

// Add appends item, leaving Empty if needed.
func (c *Collection[T]) Add(item T) {
	if c.screen.Phase() == viewmodel.PhaseEmpty {
		c.screen.SetItems([]T{item})
		return
	}
	c.screen.Append([]T{item}, nil)
}

// Replace swaps every item matching match for item.
func (c *Collection[T]) Replace(match func(T) bool, item T) {
	c.screen.Map(func(it T) T {
		if match(it) {
			return item
		}
		return it
	})
}

// Remove drops matching items, entering Empty with empty when none remain.
func (c *Collection[T]) Remove(match func(T) bool, empty string) {
	c.screen.Remove(match, empty)
	c.Move(0)
}

// Close cancels the collection's requests.
func (c Collection[T]) Close() { c.cancel() }
