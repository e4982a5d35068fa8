package domain

import "go.trai.ch/zerr"

var (
	// ErrWatchPathNotFound is returned when a declared watch path does not exist.
	ErrWatchPathNotFound = zerr.New("watch path not found")

	// ErrEntryNotFound is returned when removing a key that has no stored entry.
	ErrEntryNotFound = zerr.New("no cache entry found")

	// ErrCacheUnwritable is returned when the cache root cannot be created or written.
	ErrCacheUnwritable = zerr.New("unable to write to cache")

	// ErrEntryUnreadable is returned when an entry file exists but cannot be read.
	ErrEntryUnreadable = zerr.New("unable to read cache entry")

	// ErrInvalidDuration is returned when a duration flag does not parse.
	ErrInvalidDuration = zerr.New("invalid duration, use values like 15s, 30m, 3h, 4d")

	// ErrInvalidExitCodeSpec is returned when a --record-exit-codes value does not parse.
	ErrInvalidExitCodeSpec = zerr.New("invalid exit code spec, use values like 0, 1-10, 100+")

	// ErrCommandNotFound is returned when the target command cannot be resolved.
	ErrCommandNotFound = zerr.New("command not found")

	// ErrCommandNotPermitted is returned when the target command is not executable by the caller.
	ErrCommandNotPermitted = zerr.New("permission denied running command")
)
