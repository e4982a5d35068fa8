// Package domain contains the core types for command memoization: the
// invocation identity, watch declarations, cache keys and cache entries.
package domain

// Invocation identifies a single command call to be memoized.
type Invocation struct {
	// Program is the command name as given by the caller.
	Program string
	// Args are the arguments passed to the program, in order.
	Args []string
	// WorkDir is the caller's working directory at invocation time.
	WorkDir string
	// User is the identity of the calling user.
	User string
}

// WatchSpec declares the conditions folded into the cache key beyond the
// invocation itself. Declaration order is significant: the same declarations
// in the same order reproduce the same key, any reordering changes it.
type WatchSpec struct {
	// ExcludePwd removes the working directory from the cache key.
	ExcludePwd bool
	// ExcludeUser removes the calling user from the cache key.
	ExcludeUser bool
	// Paths are filesystem paths whose content hashes become part of the key.
	Paths []string
	// Scopes are literal strings folded into the key verbatim.
	Scopes []string
	// Envs are environment variable names whose current values become part of the key.
	Envs []string
}

// PathHash is the resolved content hash for one watched path.
type PathHash struct {
	Path string
	Hash string
}

// EnvValue is the resolved state of one watched environment variable.
// A variable set to the empty string is distinct from an unset variable.
type EnvValue struct {
	Name  string
	Value string
	Set   bool
}

// ResolvedWatches holds the watch values computed for a WatchSpec, in
// declaration order.
type ResolvedWatches struct {
	Paths  []PathHash
	Scopes []string
	Envs   []EnvValue
}
