package domain

// Preference is a locally stored behavior flag shown on the settings screen.
type Preference struct {
	Key     string
	Label   string
	Default bool
}

const (
	PrefShowContentWarnings = "show_cws"
	PrefHideSensitiveMedia  = "hide_sensitive"
	PrefInteractionCounts   = "interaction_counts"
	PrefAltTextReminders    = "alt_text_reminders"
	PrefConfirmUnfollow     = "confirm_unfollow"
	PrefConfirmBoost        = "confirm_boost"
	PrefConfirmDelete       = "confirm_delete"
	PrefAnonymous           = "anonymous"
)

// Preferences lists the settings screen flags in display order.
var Preferences = []Preference{
	{Key: PrefShowContentWarnings, Label: "Collapse posts behind content warnings", Default: true},
	{Key: PrefHideSensitiveMedia, Label: "Hide media marked sensitive", Default: true},
	{Key: PrefInteractionCounts, Label: "Show interaction counts", Default: true},
	{Key: PrefAltTextReminders, Label: "Remind me to add alt text", Default: false},
	{Key: PrefConfirmUnfollow, Label: "Confirm before unfollowing", Default: false},
	{Key: PrefConfirmBoost, Label: "Confirm before boosting", Default: false},
	{Key: PrefConfirmDelete, Label: "Confirm before deleting posts", Default: true},
	{Key: PrefAnonymous, Label: "Browse anonymously", Default: false},
}

// PreferenceDefault returns the default for key, false when unknown.
func PreferenceDefault(key string) bool {
	for _, p := range Preferences {
		if p.Key == key {
			return p.Default
		}
	}
	return false
}
