package mastodon

// Wire shapes of the Mastodon REST entities. Only the fields the client renders
// are declared.

type mastodonAccount struct {
	ID             string `json:"id"`
	Username       string `json:"username"`
	Acct           string `json:"acct"`
	DisplayName    string `json:"display_name"`
	Note           string `json:"note"` // HTML
	URL            string `json:"url"`
	Avatar         string `json:"avatar"`
	Header         string `json:"header"`
	Locked         bool   `json:"locked"`
	Bot            bool   `json:"bot"`
	FollowersCount int    `json:"followers_count"`
	FollowingCount int    `json:"following_count"`
	StatusesCount  int    `json:"statuses_count"`
	CreatedAt      string `json:"created_at"`
}

type mastodonMediaAttachment struct {
	ID          string `json:"id"`
	Type        string `json:"type"`
	URL         string `json:"url"` // null while processing
	PreviewURL  string `json:"preview_url"`
	Description string `json:"description"`
}

type mastodonPoll struct {
	ID         string               `json:"id"`
	ExpiresAt  string               `json:"expires_at"`
	Expired    bool                 `json:"expired"`
	Multiple   bool                 `json:"multiple"`
	VotesCount int                  `json:"votes_count"`
	Voted      bool                 `json:"voted"`
	Options    []mastodonPollOption `json:"options"`
}

type mastodonPollOption struct {
	Title      string `json:"title"`
	VotesCount int    `json:"votes_count"`
}

type mastodonTag struct {
	Name      string               `json:"name"`
	URL       string               `json:"url"`
	Following bool                 `json:"following"`
	History   []mastodonTagHistory `json:"history"`
}

type mastodonTagHistory struct {
	Day      string `json:"day"` // Unix seconds as a string
	Uses     string `json:"uses"`
	Accounts string `json:"accounts"`
}

type mastodonStatus struct {
	ID               string                    `json:"id"`
	CreatedAt        string                    `json:"created_at"`
	EditedAt         string                    `json:"edited_at"`
	InReplyToID      any                       `json:"in_reply_to_id"` // string or null
	Sensitive        bool                      `json:"sensitive"`
	SpoilerText      string                    `json:"spoiler_text"`
	Visibility       string                    `json:"visibility"`
	Language         string                    `json:"language"`
	URL              string                    `json:"url"`
	Content          string                    `json:"content"` // HTML
	RepliesCount     int                       `json:"replies_count"`
	ReblogsCount     int                       `json:"reblogs_count"`
	FavouritesCount  int                       `json:"favourites_count"`
	Favourited       bool                      `json:"favourited"`
	Reblogged        bool                      `json:"reblogged"`
	Bookmarked       bool                      `json:"bookmarked"`
	Account          mastodonAccount           `json:"account"`
	MediaAttachments []mastodonMediaAttachment `json:"media_attachments"`
	Poll             *mastodonPoll             `json:"poll"`
	Tags             []mastodonTag             `json:"tags"`
	Reblog           *mastodonStatus           `json:"reblog"`
}

type mastodonContext struct {
	Ancestors   []mastodonStatus `json:"ancestors"`
	Descendants []mastodonStatus `json:"descendants"`
}

type mastodonRelationship struct {
	ID         string `json:"id"`
	Following  bool   `json:"following"`
	FollowedBy bool   `json:"followed_by"`
	Requested  bool   `json:"requested"`
	Blocking   bool   `json:"blocking"`
	Muting     bool   `json:"muting"`
}

type mastodonList struct {
	ID            string `json:"id"`
	Title         string `json:"title"`
	RepliesPolicy string `json:"replies_policy"`
	Exclusive     bool   `json:"exclusive"`
}

type mastodonFilterKeyword struct {
	ID        string `json:"id"`
	Keyword   string `json:"keyword"`
	WholeWord bool   `json:"whole_word"`
}

type mastodonFilter struct {
	ID           string                  `json:"id"`
	Title        string                  `json:"title"`
	Context      []string                `json:"context"`
	ExpiresAt    string                  `json:"expires_at"`
	FilterAction string                  `json:"filter_action"`
	Keywords     []mastodonFilterKeyword `json:"keywords"`
}

type mastodonNotification struct {
	ID        string          `json:"id"`
	Type      string          `json:"type"`
	CreatedAt string          `json:"created_at"`
	Account   mastodonAccount `json:"account"`
	Status    *mastodonStatus `json:"status"`
}

type mastodonSearch struct {
	Accounts []mastodonAccount `json:"accounts"`
	Statuses []mastodonStatus  `json:"statuses"`
	Hashtags []mastodonTag     `json:"hashtags"`
}

type mastodonInstance struct {
	Domain        string `json:"domain"`
	Title         string `json:"title"`
	Version       string `json:"version"`
	Description   string `json:"description"`
	Configuration struct {
		Statuses struct {
			MaxCharacters    int `json:"max_characters"`
			MaxMediaAttached int `json:"max_media_attachments"`
		} `json:"statuses"`
		Polls struct {
			MaxOptions int `json:"max_options"`
		} `json:"polls"`
	} `json:"configuration"`
	Registrations struct {
		Enabled bool `json:"enabled"`
	} `json:"registrations"`
	Contact struct {
		Email   string          `json:"email"`
		Account mastodonAccount `json:"account"`
	} `json:"contact"`
	Rules []struct {
		ID   string `json:"id"`
		Text string `json:"text"`
	} `json:"rules"`
}
