// Package main is the entry point for the memo execution cache.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/memo-cli/memo/cmd/memo/commands"
	"github.com/memo-cli/memo/internal/adapters/config"
	"github.com/memo-cli/memo/internal/adapters/fs"
	"github.com/memo-cli/memo/internal/adapters/logger"
	"github.com/memo-cli/memo/internal/adapters/shell"
	"github.com/memo-cli/memo/internal/adapters/store"
	"github.com/memo-cli/memo/internal/app"
	"github.com/memo-cli/memo/internal/core/domain"
)

func main() {
	os.Exit(run(context.Background(), os.Args[1:]))
}

func run(ctx context.Context, args []string) int {
	// Interrupts cancel the context, which kills a running child command.
	// Nothing is persisted for an interrupted capture.
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	defaults, err := config.Load("memo")
	if err != nil {
		logger.New(os.Stderr, false).Error(err)
		return 1
	}

	cli := commands.New(newApp, defaults)
	cli.SetArgs(args)

	if err := cli.Execute(ctx); err != nil {
		logger.New(os.Stderr, false).Error(err)
		return 1
	}
	return cli.ExitCode()
}

// newApp assembles the application for one invocation.
func newApp(cfg domain.StoreConfig, debug bool) commands.Application {
	log := logger.New(os.Stderr, debug)
	return app.New(
		fs.NewResolver(nil),
		store.NewDisk(cfg, log),
		shell.NewExecutor(log, os.Stdin),
		log,
		os.Stdout,
		os.Stderr,
	)
}
