package domain

import "time"

// RepliesPolicy controls which replies a list shows.
type RepliesPolicy string

const (
	RepliesFollowed RepliesPolicy = "followed"
	RepliesList     RepliesPolicy = "list"
	RepliesNone     RepliesPolicy = "none"
)

// FollowList is a user-curated list of accounts.
type FollowList struct {
	ID            string
	Title         string
	RepliesPolicy RepliesPolicy
	Exclusive     bool
}

// FilterContext is where a filter applies.
type FilterContext string

const (
	FilterHome          FilterContext = "home"
	FilterNotifications FilterContext = "notifications"
	FilterPublic        FilterContext = "public"
	FilterThread        FilterContext = "thread"
	FilterAccount       FilterContext = "account"
)

// AllFilterContexts is the default context set for new filters.
var AllFilterContexts = []FilterContext{FilterHome, FilterNotifications, FilterPublic, FilterThread, FilterAccount}

// FilterAction is what happens to a matching status.
type FilterAction string

const (
	FilterWarn FilterAction = "warn"
	FilterHide FilterAction = "hide"
)

// FilterKeyword is a phrase matched by a filter.
type FilterKeyword struct {
	ID        string
	Keyword   string
	WholeWord bool
}

// Filter hides or warns about statuses matching its keywords.
type Filter struct {
	ID        string
	Title     string
	Context   []FilterContext
	Action    FilterAction
	ExpiresAt time.Time // Zero means never
	Keywords  []FilterKeyword
}

// Hashtag is a tag with the user's follow state.
type Hashtag struct {
	Name      string
	URL       string
	Following bool
	History   []TagUsage
}

// TagUsage is one day of hashtag activity.
type TagUsage struct {
	Day      time.Time
	Uses     int
	Accounts int
}

// NotificationType is the kind of event a notification reports.
type NotificationType string

const (
	NotifyMention       NotificationType = "mention"
	NotifyStatus        NotificationType = "status"
	NotifyReblog        NotificationType = "reblog"
	NotifyFollow        NotificationType = "follow"
	NotifyFollowRequest NotificationType = "follow_request"
	NotifyFavourite     NotificationType = "favourite"
	NotifyPoll          NotificationType = "poll"
	NotifyUpdate        NotificationType = "update"
)

// Notification is an event addressed to the authenticated user.
type Notification struct {
	ID        string
	Type      NotificationType
	CreatedAt time.Time
	Account   Account
	Status    *Status
}

// InstanceRule is one server rule.
type InstanceRule struct {
	ID   string
	Text string
}

// Instance is server metadata used for limits and the about screen.
type Instance struct {
	Domain           string
	Title            string
	Description      string
	Version          string
	MaxStatusChars   int
	MaxAttachments   int
	MaxPollOptions   int
	ContactEmail     string
	ContactAccount   string
	Rules            []InstanceRule
	RegistrationOpen bool
}

const (
	// DefaultMaxStatusChars applies when the instance does not advertise a limit.
	DefaultMaxStatusChars = 500
	// DefaultMaxAttachments applies when the instance does not advertise a limit.
	DefaultMaxAttachments = 4
	// DefaultMaxPollOptions applies when the instance does not advertise a limit.
	DefaultMaxPollOptions = 4
	// DefaultDomain is used for anonymous browsing.
	DefaultDomain = "mastodon.social"
)

// CharLimit returns the status character limit, falling back to the default.
func (i Instance) CharLimit() int {
	if i.MaxStatusChars > 0 {
		return i.MaxStatusChars
	}
	return DefaultMaxStatusChars
}

// AttachmentLimit returns the per-status media limit, falling back to the default.
func (i Instance) AttachmentLimit() int {
	if i.MaxAttachments > 0 {
		return i.MaxAttachments
	}
	return DefaultMaxAttachments
}

// PollOptionLimit returns the maximum poll options, falling back to the default.
func (i Instance) PollOptionLimit() int {
	if i.MaxPollOptions > 0 {
		return i.MaxPollOptions
	}
	return DefaultMaxPollOptions
}

// AccountSession is a logged-in account known to this device.
type AccountSession struct {
	ID         string // acct@domain
	AccountID  string
	Domain     string
	Username   string
	TokenPath  string
	LastActive time.Time
}

// SearchType narrows a search to one kind of result. The zero value searches all.
type SearchType string

const (
	SearchAll      SearchType = ""
	SearchAccounts SearchType = "accounts"
	SearchStatuses SearchType = "statuses"
	SearchHashtags SearchType = "hashtags"
)

// SearchQuery is a full-text search request.
type SearchQuery struct {
	Query   string
	Type    SearchType
	Resolve bool // Look up remote handles and URLs through the server
	Limit   int
}

// SearchResults groups search matches by kind.
type SearchResults struct {
	Accounts []Account
	Statuses []Status
	Hashtags []Hashtag
}
