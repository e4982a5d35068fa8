package ports

import "github.com/memo-cli/memo/internal/core/domain"

// Store defines the interface for persisting cache entries by key.
//
//go:generate mockgen -source=store.go -destination=mocks/mock_store.go -package=mocks
type Store interface {
	// Read retrieves the entry for a key.
	// Returns nil, nil on a genuine miss. An entry that exists but cannot be
	// read is reported as domain.ErrEntryUnreadable, never as a miss.
	Read(key domain.CacheKey) (*domain.Entry, error)

	// Write persists the entry for a key, atomically replacing any prior one.
	Write(key domain.CacheKey, entry *domain.Entry) error

	// Remove deletes the entry for a key regardless of its freshness.
	// Returns domain.ErrEntryNotFound if no entry exists.
	Remove(key domain.CacheKey) error
}
