package app

import (
	"context"

	"github.com/CrestNiraj12/kabinka/domain"
)

// PollParams describes a poll attached to a new or edited status.
type PollParams struct {
	Options   []string
	ExpiresIn int // seconds
	Multiple  bool
}

// StatusParams is the body of a create or edit request.
type StatusParams struct {
	Text           string
	Visibility     domain.Visibility
	SpoilerText    string
	Sensitive      bool
	InReplyToID    string
	MediaIDs       []string
	Poll           *PollParams
	IdempotencyKey string // Create only
}

// StatusService publishes statuses and toggles interactions on them.
type StatusService interface {
	// Get returns a single status.
	Get(ctx context.Context, id string) (domain.Status, error)

	// Create publishes a new status.
	Create(ctx context.Context, p StatusParams) (domain.Status, error)

	// Edit replaces the content of an existing status.
	Edit(ctx context.Context, id string, p StatusParams) (domain.Status, error)

	// Delete removes a status.
	Delete(ctx context.Context, id string) error

	// SetInteraction turns kind on or off and returns the server's view of the target.
	SetInteraction(ctx context.Context, id string, kind domain.Interaction, on bool) (domain.Status, error)
}

// ProgressFunc receives upload progress in bytes.
type ProgressFunc func(sent, total int64)

// MediaService uploads attachments.
type MediaService interface {
	// Upload sends the file at path and returns the attachment once the server
	// has finished processing it.
	Upload(ctx context.Context, path, description string, progress ProgressFunc) (domain.Attachment, error)
}
