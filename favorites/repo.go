package favorites

import "context"

// Repo stores each user's favorite country codes in the order they were added.
type Repo interface {
	List(ctx context.Context, userID string) ([]string, error)
	// Add reports false when code was already a favorite.
	Add(ctx context.Context, userID, code string) (bool, error)
	// Remove reports false when code was not a favorite.
	Remove(ctx context.Context, userID, code string) (bool, error)
}
