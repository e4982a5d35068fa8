package domain

import (
	"io"
	"time"

	"go.trai.ch/zerr"
)

// Stream identifies which output stream a chunk was read from.
type Stream string

const (
	// StreamStdout marks a chunk read from the child's standard output.
	StreamStdout Stream = "stdout"
	// StreamStderr marks a chunk read from the child's standard error.
	StreamStderr Stream = "stderr"
)

// Chunk is one captured run of bytes from a single stream.
type Chunk struct {
	Stream Stream `json:"stream"`
	Data   []byte `json:"data"`
}

// Entry is one cached command result. Entries are immutable once written; a
// recapture replaces the whole entry for its key.
type Entry struct {
	// CreatedAt is the instant the capture completed.
	CreatedAt time.Time `json:"created_at"`
	// ExpiresAt is the absolute expiry fixed at write time from --cache-for.
	// It is never recomputed or extended by later invocations.
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
	// ExitCode is the captured exit status of the command.
	ExitCode int `json:"exit_code"`
	// Output holds the captured chunks of both streams in arrival order.
	Output []Chunk `json:"output"`
}

// Capture is the raw result of one command execution before it becomes an
// Entry.
type Capture struct {
	ExitCode int
	Output   []Chunk
}

// Fresh reports whether the entry is still usable at the given instant. A
// look-back, when present, bounds how old the entry may be at read time; it
// is supplied fresh on every read and never persisted.
func (e *Entry) Fresh(now time.Time, lookBack *time.Duration) bool {
	if e.ExpiresAt != nil && !now.Before(*e.ExpiresAt) {
		return false
	}
	if lookBack != nil && now.Sub(e.CreatedAt) > *lookBack {
		return false
	}
	return true
}

// Replay writes the captured chunks to their corresponding streams in stored
// order, unmodified. The caller is expected to terminate with ExitCode.
func (e *Entry) Replay(stdout, stderr io.Writer) error {
	for _, chunk := range e.Output {
		w := stdout
		if chunk.Stream == StreamStderr {
			w = stderr
		}
		if _, err := w.Write(chunk.Data); err != nil {
			return zerr.Wrap(err, "failed to replay cached output")
		}
	}
	return nil
}
