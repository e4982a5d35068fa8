package ports

import "github.com/memo-cli/memo/internal/core/domain"

// WatchResolver defines the interface for computing the current values of
// watch declarations.
//
//go:generate mockgen -source=resolver.go -destination=mocks/mock_resolver.go -package=mocks
type WatchResolver interface {
	// Resolve computes the watch values for a spec, in declaration order.
	// A declared watch path that does not exist fails with
	// domain.ErrWatchPathNotFound before any cache interaction happens.
	Resolve(spec domain.WatchSpec) (domain.ResolvedWatches, error)
}
