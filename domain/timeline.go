package domain

import (
	"fmt"
	"strings"
)

// TimelineKind names a feed of statuses.
type TimelineKind int

const (
	TimelineHome TimelineKind = iota
	TimelineLocal
	TimelineFederated
	TimelineBookmarks
	TimelineFavourites
	TimelineHashtag
	TimelineList
)

func (k TimelineKind) String() string {
	switch k {
	case TimelineHome:
		return "home"
	case TimelineLocal:
		return "local"
	case TimelineFederated:
		return "federated"
	case TimelineBookmarks:
		return "bookmarks"
	case TimelineFavourites:
		return "favourites"
	case TimelineHashtag:
		return "hashtag"
	case TimelineList:
		return "list"
	default:
		return fmt.Sprintf("timeline(%d)", int(k))
	}
}

// RequiresAuth reports whether the timeline can only be read by a logged-in account.
func (k TimelineKind) RequiresAuth() bool {
	switch k {
	case TimelineHome, TimelineBookmarks, TimelineFavourites, TimelineList:
		return true
	default:
		return false
	}
}

// LinkPaged reports whether older pages are addressed by an opaque cursor the
// server returns in its Link header rather than by the id of the oldest status.
func (k TimelineKind) LinkPaged() bool {
	return k == TimelineBookmarks || k == TimelineFavourites
}

// TimelineQuery selects a timeline and an optional page.
type TimelineQuery struct {
	Kind    TimelineKind
	Hashtag string // TimelineHashtag only, without '#'
	ListID  string // TimelineList only
	Limit   int
	MaxID   string
}

// Key identifies the feed a query reads, ignoring paging.
func (q TimelineQuery) Key() string {
	switch q.Kind {
	case TimelineHashtag:
		return "hashtag:" + strings.ToLower(q.Hashtag)
	case TimelineList:
		return "list:" + q.ListID
	default:
		return q.Kind.String()
	}
}

// ParseTimelineQuery parses "home", "local", "federated", "bookmarks", "favourites",
// "#tag" or "list:<id>".
func ParseTimelineQuery(s string) (TimelineQuery, error) {
	s = strings.TrimSpace(s)
	switch strings.ToLower(s) {
	case "", "home":
		return TimelineQuery{Kind: TimelineHome}, nil
	case "local":
		return TimelineQuery{Kind: TimelineLocal}, nil
	case "federated", "public":
		return TimelineQuery{Kind: TimelineFederated}, nil
	case "bookmarks":
		return TimelineQuery{Kind: TimelineBookmarks}, nil
	case "favourites", "favorites":
		return TimelineQuery{Kind: TimelineFavourites}, nil
	}
	if tag, ok := strings.CutPrefix(s, "#"); ok && strings.TrimSpace(tag) != "" {
		return TimelineQuery{Kind: TimelineHashtag, Hashtag: strings.TrimSpace(tag)}, nil
	}
	if id, ok := strings.CutPrefix(s, "list:"); ok && strings.TrimSpace(id) != "" {
		return TimelineQuery{Kind: TimelineList, ListID: strings.TrimSpace(id)}, nil
	}
	return TimelineQuery{}, fmt.Errorf("unknown timeline %q", s)
}
