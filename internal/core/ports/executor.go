// Package ports defines the core interfaces for the application.
package ports

import (
	"context"
	"io"

	"github.com/memo-cli/memo/internal/core/domain"
)

// Executor defines the interface for running the target command while
// capturing its output.
//
//go:generate mockgen -source=executor.go -destination=mocks/mock_executor.go -package=mocks
type Executor interface {
	// Capture spawns the invocation's program and concurrently reads both of
	// its output streams, forwarding each chunk to stdout/stderr as it
	// arrives and recording it tagged with its source stream in arrival
	// order. A nonzero exit from a launched process is a result, not an
	// error.
	Capture(ctx context.Context, inv domain.Invocation, stdout, stderr io.Writer) (*domain.Capture, error)
}
