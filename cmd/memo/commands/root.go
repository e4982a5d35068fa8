// Package commands implements the CLI commands for the memo execution cache.
package commands

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/memo-cli/memo/internal/adapters/config"
	"github.com/memo-cli/memo/internal/app"
	"github.com/memo-cli/memo/internal/build"
	"github.com/memo-cli/memo/internal/core/domain"
	"github.com/spf13/cobra"
)

// Application represents the per-subcommand application logic.
type Application interface {
	Run(ctx context.Context, req app.Request) (int, error)
	Read(req app.Request, missCode int) (int, error)
	Test(req app.Request) (int, error)
	Force(ctx context.Context, req app.Request) (int, error)
	Remove(req app.Request) (int, error)
	Explain(req app.Request) (int, error)
	Hash(req app.Request) (int, error)
}

// AppFactory builds the application for one invocation, once the store
// configuration and debug setting are known from the parsed flags.
type AppFactory func(cfg domain.StoreConfig, debug bool) Application

// CLI represents the command line interface for memo.
type CLI struct {
	newApp   AppFactory
	defaults config.Defaults
	rootCmd  *cobra.Command
	stdout   io.Writer
	exitCode int
}

// New creates a new CLI instance using the given application factory and
// user-level defaults.
func New(factory AppFactory, defaults config.Defaults) *CLI {
	rootCmd := &cobra.Command{
		Use:           "memo",
		Short:         "Cache the output and exit status of commands",
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       build.Version,
	}

	rootCmd.SetVersionTemplate(fmt.Sprintf(
		"{{.Name}} version {{.Version}} (commit: %s, date: %s)\n",
		build.Commit,
		build.Date,
	))
	rootCmd.InitDefaultVersionFlag()
	rootCmd.Flags().Lookup("version").Usage = "Print the application version"

	rootCmd.InitDefaultHelpFlag()
	rootCmd.Flags().Lookup("help").Usage = "Show help for command"

	rootCmd.PersistentFlags().Bool("debug", false, "Print cache decision diagnostics")

	c := &CLI{
		newApp:   factory,
		defaults: defaults,
		rootCmd:  rootCmd,
		stdout:   os.Stdout,
	}

	rootCmd.AddCommand(c.newRunCmd())
	rootCmd.AddCommand(c.newReadCmd())
	rootCmd.AddCommand(c.newForceCmd())
	rootCmd.AddCommand(c.newRemoveCmd())
	rootCmd.AddCommand(c.newTestCmd())
	rootCmd.AddCommand(c.newExplainCmd())
	rootCmd.AddCommand(c.newHashCmd())
	rootCmd.AddCommand(c.newCompletionsCmd())
	rootCmd.AddCommand(c.newVersionCmd())

	return c
}

// Execute runs the root command with the given context.
func (c *CLI) Execute(ctx context.Context) error {
	c.rootCmd.SetContext(ctx)
	return c.rootCmd.Execute()
}

// ExitCode returns the process exit status decided by the executed command.
func (c *CLI) ExitCode() int {
	return c.exitCode
}

// SetArgs sets the arguments for the root command. Used for testing.
func (c *CLI) SetArgs(args []string) {
	c.rootCmd.SetArgs(args)
}

// SetOutput sets the output and error streams for the root command. Used for testing.
func (c *CLI) SetOutput(out, err io.Writer) {
	c.stdout = out
	c.rootCmd.SetOut(out)
	c.rootCmd.SetErr(err)
}

// application builds the app for this invocation from the parsed flags.
func (c *CLI) application(cmd *cobra.Command, cfg domain.StoreConfig) Application {
	debug, _ := cmd.Flags().GetBool("debug")
	return c.newApp(cfg, debug)
}

func (c *CLI) newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the application version",
		Run: func(cmd *cobra.Command, _ []string) {
			cmd.Printf("memo version %s (commit: %s, date: %s)\n", build.Version, build.Commit, build.Date)
		},
	}
}
