package domain

import "fmt"

// Interaction is a boolean action the user toggles on a status.
type Interaction int

const (
	Favourite Interaction = iota
	Reblog
	Bookmark
)

func (i Interaction) String() string {
	switch i {
	case Favourite:
		return "favourite"
	case Reblog:
		return "reblog"
	case Bookmark:
		return "bookmark"
	default:
		return fmt.Sprintf("interaction(%d)", int(i))
	}
}

// InteractionSnapshot captures one interaction's flag and counter.
type InteractionSnapshot struct {
	On    bool
	Count int
}

// Snapshot returns the current flag and counter for kind.
func (s Status) Snapshot(kind Interaction) InteractionSnapshot {
	switch kind {
	case Favourite:
		return InteractionSnapshot{On: s.Favourited, Count: s.FavouritesCount}
	case Reblog:
		return InteractionSnapshot{On: s.Reblogged, Count: s.ReblogsCount}
	case Bookmark:
		return InteractionSnapshot{On: s.Bookmarked}
	}
	return InteractionSnapshot{}
}

// Restore sets the flag and counter for kind from a snapshot.
// Bookmarks have no public counter so only the flag is restored.
func (s Status) Restore(kind Interaction, snap InteractionSnapshot) Status {
	switch kind {
	case Favourite:
		s.Favourited = snap.On
		s.FavouritesCount = snap.Count
	case Reblog:
		s.Reblogged = snap.On
		s.ReblogsCount = snap.Count
	case Bookmark:
		s.Bookmarked = snap.On
	}
	return s
}

// Toggled returns s with kind flipped and its counter adjusted. Counters never go negative.
func (s Status) Toggled(kind Interaction) Status {
	snap := s.Snapshot(kind)
	next := InteractionSnapshot{On: !snap.On, Count: snap.Count}
	if next.On {
		next.Count++
	} else if next.Count > 0 {
		next.Count--
	}
	return s.Restore(kind, next)
}

// MapTarget applies fn to the status whose Target has the given id, keeping any
// boost wrapper intact. The returned bool reports whether fn ran.
func (s Status) MapTarget(id string, fn func(Status) Status) (Status, bool) {
	if s.Reblog != nil {
		if s.Reblog.ID != id {
			return s, false
		}
		inner := fn(*s.Reblog)
		s.Reblog = &inner
		return s, true
	}
	if s.ID != id {
		return s, false
	}
	return fn(s), true
}

// ResolveTarget finds the interaction target for id in statuses. The id may name
// either a boost wrapper or the boosted status itself.
func ResolveTarget(statuses []Status, id string) (Status, bool) {
	for _, st := range statuses {
		if st.ID == id || (st.Reblog != nil && st.Reblog.ID == id) {
			return st.Target(), true
		}
	}
	return Status{}, false
}
