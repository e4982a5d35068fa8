// Package app implements the per-subcommand decision logic.
package app

import (
	"context"
	"io"
	"time"

	"github.com/memo-cli/memo/internal/core/domain"
	"github.com/memo-cli/memo/internal/core/ports"
	"go.trai.ch/zerr"
)

// Request carries one invocation together with its cache options.
type Request struct {
	Invocation domain.Invocation
	Watch      domain.WatchSpec
	// CacheFor fixes an absolute expiry on entries written by this request.
	CacheFor *time.Duration
	// LookBack bounds how old a stored entry may be to count as a hit. It is
	// a read-time filter only and is never persisted.
	LookBack *time.Duration
	// Policy decides which exit statuses are eligible for caching.
	Policy domain.ExitCodePolicy
}

// App orchestrates watch resolution, key building, the store and the executor
// for each subcommand. One invocation performs a single decision and exits;
// nothing here runs in the background.
type App struct {
	resolver ports.WatchResolver
	store    ports.Store
	executor ports.Executor
	logger   ports.Logger
	stdout   io.Writer
	stderr   io.Writer
	now      func() time.Time
}

// New creates an App writing replayed and live output to stdout/stderr.
func New(
	resolver ports.WatchResolver,
	store ports.Store,
	executor ports.Executor,
	logger ports.Logger,
	stdout, stderr io.Writer,
	opts ...Option,
) *App {
	a := &App{
		resolver: resolver,
		store:    store,
		executor: executor,
		logger:   logger,
		stdout:   stdout,
		stderr:   stderr,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Option configures an App.
type Option func(*App)

// WithClock overrides the clock. Used in tests.
func WithClock(now func() time.Time) Option {
	return func(a *App) { a.now = now }
}

// key resolves the request's watches and derives its cache key. Watch
// resolution failures surface before any cache or command interaction.
func (a *App) key(req Request) (domain.CacheKey, domain.ResolvedWatches, error) {
	watches, err := a.resolver.Resolve(req.Watch)
	if err != nil {
		return "", domain.ResolvedWatches{}, err
	}
	key := domain.BuildKey(req.Invocation, req.Watch, watches)
	a.logger.Debug("computed cache key", "key", key.String())
	return key, watches, nil
}

// lookup returns the stored entry for key if it is fresh, nil otherwise. A
// stale or expired entry is a miss, never an error, and is left in place.
func (a *App) lookup(key domain.CacheKey, lookBack *time.Duration) (*domain.Entry, error) {
	entry, err := a.store.Read(key)
	if err != nil {
		return nil, err
	}
	if entry == nil {
		return nil, nil
	}
	if !entry.Fresh(a.now(), lookBack) {
		a.logger.Debug("stored entry is no longer fresh", "key", key.String())
		return nil, nil
	}
	return entry, nil
}

// record executes the command and, when the policy accepts its exit status,
// writes a new entry that wholly replaces any prior one for the key.
func (a *App) record(ctx context.Context, req Request, key domain.CacheKey) (int, error) {
	capture, err := a.executor.Capture(ctx, req.Invocation, a.stdout, a.stderr)
	if err != nil {
		return 1, err
	}

	if !req.Policy.Match(capture.ExitCode) {
		a.logger.Debug("exit status not eligible for caching", "status", capture.ExitCode)
		return capture.ExitCode, nil
	}

	entry := &domain.Entry{
		CreatedAt: a.now(),
		ExitCode:  capture.ExitCode,
		Output:    capture.Output,
	}
	if req.CacheFor != nil {
		expires := entry.CreatedAt.Add(*req.CacheFor)
		entry.ExpiresAt = &expires
	}

	if err := a.store.Write(key, entry); err != nil {
		return 1, err
	}
	return capture.ExitCode, nil
}

func (a *App) replay(entry *domain.Entry) (int, error) {
	a.logger.Debug("replaying cached result")
	if err := entry.Replay(a.stdout, a.stderr); err != nil {
		return 1, err
	}
	return entry.ExitCode, nil
}

// Run replays a fresh cached result, or executes the command and caches the
// outcome subject to the exit code policy. It returns the command's real exit
// status either way.
func (a *App) Run(ctx context.Context, req Request) (int, error) {
	key, _, err := a.key(req)
	if err != nil {
		return 1, err
	}

	entry, err := a.lookup(key, req.LookBack)
	if err != nil {
		return 1, err
	}
	if entry != nil {
		return a.replay(entry)
	}

	return a.record(ctx, req, key)
}

// Test reports via exit status whether a fresh cached result exists. It never
// executes the command.
func (a *App) Test(req Request) (int, error) {
	key, _, err := a.key(req)
	if err != nil {
		return 1, err
	}

	entry, err := a.lookup(key, req.LookBack)
	if err != nil {
		return 1, err
	}
	if entry == nil {
		return 1, nil
	}
	return 0, nil
}

// Read replays a fresh cached result, or exits with missCode without ever
// executing the command.
func (a *App) Read(req Request, missCode int) (int, error) {
	key, _, err := a.key(req)
	if err != nil {
		return 1, err
	}

	entry, err := a.lookup(key, req.LookBack)
	if err != nil {
		return 1, err
	}
	if entry == nil {
		return missCode, nil
	}
	return a.replay(entry)
}

// Force executes the command without consulting the cache and records the
// outcome, overwriting any prior entry for the key.
func (a *App) Force(ctx context.Context, req Request) (int, error) {
	key, _, err := a.key(req)
	if err != nil {
		return 1, err
	}
	return a.record(ctx, req, key)
}

// Remove deletes the entry for the request's key regardless of freshness.
func (a *App) Remove(req Request) (int, error) {
	key, _, err := a.key(req)
	if err != nil {
		return 1, err
	}

	if err := a.store.Remove(key); err != nil {
		return 1, err
	}
	return 0, nil
}

// Hash prints the cache key for the request. It never touches the store.
func (a *App) Hash(req Request) (int, error) {
	key, _, err := a.key(req)
	if err != nil {
		return 1, err
	}

	if _, err := io.WriteString(a.stdout, key.String()+"\n"); err != nil {
		return 1, zerr.Wrap(err, "failed to print cache key")
	}
	return 0, nil
}
