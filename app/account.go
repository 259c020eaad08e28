package app

import (
	"context"

	"github.com/CrestNiraj12/kabinka/domain"
)

// AccountService provides account profiles and relationships.
type AccountService interface {
	// CurrentAccount returns the authenticated user's account.
	CurrentAccount(ctx context.Context) (domain.Account, error)

	// Account returns an account by ID.
	Account(ctx context.Context, id string) (domain.Account, error)

	// Statuses returns an account's posts, newest first.
	Statuses(ctx context.Context, id string, limit int, maxID string) ([]domain.Status, error)

	// Relationship returns the authenticated user's relation to id.
	Relationship(ctx context.Context, id string) (domain.Relationship, error)

	// SetFollowing follows or unfollows id.
	SetFollowing(ctx context.Context, id string, follow bool) (domain.Relationship, error)
}
