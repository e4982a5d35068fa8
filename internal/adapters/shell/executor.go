// Package shell implements command execution with live, tagged output capture.
package shell

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"os/exec"
	"sync"

	"github.com/memo-cli/memo/internal/core/domain"
	"github.com/memo-cli/memo/internal/core/ports"
	"go.trai.ch/zerr"
	"golang.org/x/sync/errgroup"
)

var _ ports.Executor = (*Executor)(nil)

// Executor implements ports.Executor using os/exec with piped streams.
type Executor struct {
	logger ports.Logger
	stdin  io.Reader
}

// NewExecutor creates an Executor. stdin is handed to the child unchanged and
// may be nil.
func NewExecutor(logger ports.Logger, stdin io.Reader) *Executor {
	return &Executor{logger: logger, stdin: stdin}
}

// recorder collects tagged chunks from both stream readers. The mutex makes
// each append atomic relative to the other stream, so the recorded order is
// the arrival order as observed by this process.
type recorder struct {
	mu     sync.Mutex
	chunks []domain.Chunk
}

func (r *recorder) append(stream domain.Stream, data []byte) {
	buf := make([]byte, len(data))
	copy(buf, data)

	r.mu.Lock()
	r.chunks = append(r.chunks, domain.Chunk{Stream: stream, Data: buf})
	r.mu.Unlock()
}

// Capture spawns the invocation's program with inherited environment and
// working directory, reads both output streams concurrently, forwards each
// chunk live to stdout/stderr and records it tagged with its source stream.
func (e *Executor) Capture(
	ctx context.Context,
	inv domain.Invocation,
	stdout, stderr io.Writer,
) (*domain.Capture, error) {
	cmd := exec.CommandContext(ctx, inv.Program, inv.Args...) //nolint:gosec // user provided command
	cmd.Dir = inv.WorkDir
	cmd.Stdin = e.stdin

	outPipe, err := cmd.StdoutPipe()
	if err != nil {
		return nil, zerr.Wrap(err, "unable to capture stdout")
	}
	errPipe, err := cmd.StderrPipe()
	if err != nil {
		return nil, zerr.Wrap(err, "unable to capture stderr")
	}

	e.logger.Debug("spawning command", "command", inv.Program)

	if err := cmd.Start(); err != nil {
		return nil, spawnError(inv.Program, err)
	}

	rec := &recorder{}
	var g errgroup.Group
	g.Go(func() error { return tee(outPipe, stdout, domain.StreamStdout, rec) })
	g.Go(func() error { return tee(errPipe, stderr, domain.StreamStderr, rec) })

	readErr := g.Wait()
	waitErr := cmd.Wait()

	if ctx.Err() != nil {
		return nil, zerr.With(zerr.Wrap(ctx.Err(), "command interrupted"), "command", inv.Program)
	}
	if readErr != nil {
		return nil, zerr.With(zerr.Wrap(readErr, "error capturing command output"), "command", inv.Program)
	}

	status := 0
	if waitErr != nil {
		var exitErr *exec.ExitError
		if !errors.As(waitErr, &exitErr) {
			return nil, zerr.With(zerr.Wrap(waitErr, "error waiting for command"), "command", inv.Program)
		}
		status = exitErr.ExitCode()
		if status < 0 {
			// Terminated by signal.
			status = 1
		}
	}

	return &domain.Capture{ExitCode: status, Output: rec.chunks}, nil
}

// tee forwards every chunk to the live writer as it arrives and records the
// same bytes tagged with their stream.
func tee(r io.Reader, live io.Writer, stream domain.Stream, rec *recorder) error {
	buf := make([]byte, 32*1024)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			if _, werr := live.Write(buf[:n]); werr != nil {
				return werr
			}
			rec.append(stream, buf[:n])
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
	}
}

func spawnError(name string, err error) error {
	switch {
	// A bare name failing PATH lookup reports exec.ErrNotFound, a missing
	// direct path reports ENOENT. Both mean the target does not exist.
	case errors.Is(err, exec.ErrNotFound), errors.Is(err, fs.ErrNotExist):
		return zerr.With(domain.ErrCommandNotFound, "command", name)
	case errors.Is(err, fs.ErrPermission):
		return zerr.With(domain.ErrCommandNotPermitted, "command", name)
	default:
		return zerr.With(zerr.Wrap(err, "error running command"), "command", name)
	}
}
