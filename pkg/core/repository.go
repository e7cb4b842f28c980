package core

import "context"

// Repository defines the contract for storing and retrieving articles.
// Adhering to this interface keeps the service independent of the storage mechanism.
type Repository interface {
	// Initialize ensures the underlying storage is ready (e.g. create the directory).
	Initialize(ctx context.Context) error

	// Create persists a new, complete article. The stored id may differ from a.ID
	// when the adapter had to disambiguate a collision; the receipt carries the final id.
	Create(ctx context.Context, a Article) (Receipt, error)

	// Get returns the first article whose slug equals slug, or ErrNotFound.
	Get(ctx context.Context, slug string) (Article, error)

	// List returns at most limit articles passing filter, newest first.
	// Unreadable records are skipped, not reported.
	List(ctx context.Context, filter StatusFilter, limit int) ([]Article, error)

	// Update applies mutate to the first article matching slug and rewrites it in full.
	Update(ctx context.Context, slug string, mutate func(*Article) error) (Article, error)

	// Delete permanently removes the first article matching slug.
	Delete(ctx context.Context, slug string) error
}

// Watchable is implemented by repositories that can report changes to their storage.
type Watchable interface {
	// Watch emits events for records whose file name matches pattern until ctx is done.
	Watch(ctx context.Context, pattern string) (<-chan Event, error)
}
