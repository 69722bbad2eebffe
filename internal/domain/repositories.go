package domain

import (
	"context"
)

// CatalogRepository provides read access to the remote movie catalog.
// Implementations must report failures as errors wrapping ErrNetwork,
// ErrAuthFailed or ErrNotFound.
type CatalogRepository interface {
	// Search returns items matching a free-text query
	Search(ctx context.Context, query string) ([]Item, error)

	// Discover returns popular items (used when there is no query)
	Discover(ctx context.Context) ([]Item, error)

	// GetDetails returns full metadata for one item
	GetDetails(ctx context.Context, id string) (*Item, error)
}

// KeyValueStore is a durable string key-value store.
// Get reports ok=false when the key is absent.
type KeyValueStore interface {
	Get(key string) (value string, ok bool, err error)
	Set(key, value string) error
}

// CounterStore persists search popularity records.
// FindByKey reports ok=false when no record exists for the pair.
// CreateRecord returns ErrConflict when the pair already exists.
type CounterStore interface {
	FindByKey(ctx context.Context, searchTerm, itemID string) (rec *SearchPopularityRecord, ok bool, err error)
	CreateRecord(ctx context.Context, fields NewPopularityRecord) (*SearchPopularityRecord, error)
	IncrementCount(ctx context.Context, recordID string) (*SearchPopularityRecord, error)

	// TopSearches returns records ordered by count, highest first
	TopSearches(ctx context.Context, limit int) ([]SearchPopularityRecord, error)

	Close() error
}
