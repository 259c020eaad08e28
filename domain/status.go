package domain

import "time"

// AppTitle is shown in the header and in the OAuth callback page.
const AppTitle = "Kabinka"

// Visibility is who can see a status.
type Visibility string

const (
	VisibilityPublic   Visibility = "public"
	VisibilityUnlisted Visibility = "unlisted"
	VisibilityPrivate  Visibility = "private"
	VisibilityDirect   Visibility = "direct"
)

// Visibilities lists the selectable visibilities in menu order.
var Visibilities = []Visibility{VisibilityPublic, VisibilityUnlisted, VisibilityPrivate, VisibilityDirect}

// ParseVisibility maps an API value to a Visibility, defaulting to public.
func ParseVisibility(s string) Visibility {
	switch Visibility(s) {
	case VisibilityUnlisted, VisibilityPrivate, VisibilityDirect:
		return Visibility(s)
	default:
		return VisibilityPublic
	}
}

// Next cycles to the following visibility.
func (v Visibility) Next() Visibility {
	for i, c := range Visibilities {
		if c == v {
			return Visibilities[(i+1)%len(Visibilities)]
		}
	}
	return VisibilityPublic
}

// Account is a Mastodon user.
type Account struct {
	ID             string
	Username       string
	Acct           string
	DisplayName    string
	Note           string // Plain text, HTML stripped
	URL            string
	Avatar         string
	Header         string
	Locked         bool
	Bot            bool
	FollowersCount int
	FollowingCount int
	StatusesCount  int
	CreatedAt      time.Time
}

// Name returns the display name, falling back to the acct handle.
func (a Account) Name() string {
	if a.DisplayName != "" {
		return a.DisplayName
	}
	return a.Acct
}

// Relationship is the authenticated user's relation to another account.
type Relationship struct {
	ID         string
	Following  bool
	FollowedBy bool
	Requested  bool
	Blocking   bool
	Muting     bool
}

// Attachment is a media file attached to a status.
type Attachment struct {
	ID          string
	Type        string // image, gifv, video, audio, unknown
	URL         string
	PreviewURL  string
	Description string
}

// PollOption is one choice of a poll.
type PollOption struct {
	Title      string
	VotesCount int
}

// Poll is a poll attached to a status.
type Poll struct {
	ID         string
	ExpiresAt  time.Time
	Expired    bool
	Multiple   bool
	VotesCount int
	Options    []PollOption
	Voted      bool
}

// Status is a single post. A boost is a Status whose Reblog points at the boosted post.
type Status struct {
	ID          string
	Account     Account
	Content     string // Plain text, HTML stripped
	SpoilerText string
	Sensitive   bool
	Visibility  Visibility
	Language    string
	URL         string
	CreatedAt   time.Time
	EditedAt    time.Time
	InReplyToID string

	Attachments []Attachment
	Poll        *Poll
	Tags        []string

	RepliesCount    int
	ReblogsCount    int
	FavouritesCount int

	Favourited bool
	Reblogged  bool
	Bookmarked bool

	Reblog *Status
}

// Target returns the status interactions apply to: the boosted post for a boost.
func (s Status) Target() Status {
	if s.Reblog != nil {
		return *s.Reblog
	}
	return s
}

// IsReply reports whether the status answers another one.
func (s Status) IsReply() bool {
	return s.InReplyToID != ""
}
