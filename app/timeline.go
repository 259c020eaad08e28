package app

import (
	"context"

	"github.com/CrestNiraj12/kabinka/domain"
)

// TimelineService fetches statuses from a timeline.
type TimelineService interface {
	// Fetch returns one page of the timeline described by q, newest first,
	// and the MaxID of the following page when the server advertises one.
	Fetch(ctx context.Context, q domain.TimelineQuery) (statuses []domain.Status, next string, err error)

	// FetchThread returns the context of a status (ancestors and replies).
	FetchThread(ctx context.Context, id string) (ancestors, descendants []domain.Status, err error)
}
