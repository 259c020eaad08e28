package domain

import "strings"

// Poll durations offered by the composer, in seconds.
const (
	PollDuration5Minutes = 5 * 60
	PollDuration1Hour    = 60 * 60
	PollDuration1Day     = 24 * 60 * 60
	PollDuration3Days    = 3 * PollDuration1Day
	PollDuration7Days    = 7 * PollDuration1Day
)

// PollDurations lists the selectable durations in menu order.
var PollDurations = []int{PollDuration5Minutes, PollDuration1Hour, PollDuration1Day, PollDuration3Days, PollDuration7Days}

// MinPollOptions is the fewest options a poll may have.
const MinPollOptions = 2

// DraftAttachment is a media file selected in the composer. Source identifies it.
type DraftAttachment struct {
	Source      string
	Description string
	Progress    float64 // 0..1
	UploadedID  string  // Set once the upload completed
}

// Uploaded reports whether the server accepted the file.
func (a DraftAttachment) Uploaded() bool {
	return a.UploadedID != ""
}

// DraftPoll is a poll being composed.
type DraftPoll struct {
	Options         []string
	DurationSeconds int
	Multiple        bool
}

// NewDraftPoll returns a poll with two empty options lasting one day.
func NewDraftPoll() DraftPoll {
	return DraftPoll{
		Options:         []string{"", ""},
		DurationSeconds: PollDuration1Day,
	}
}

// FilledOptions returns the non-blank options.
func (p DraftPoll) FilledOptions() []string {
	out := make([]string, 0, len(p.Options))
	for _, o := range p.Options {
		if strings.TrimSpace(o) != "" {
			out = append(out, o)
		}
	}
	return out
}

// NextPollDuration cycles to the following preset duration.
func NextPollDuration(seconds int) int {
	for i, d := range PollDurations {
		if d == seconds {
			return PollDurations[(i+1)%len(PollDurations)]
		}
	}
	return PollDuration1Day
}
