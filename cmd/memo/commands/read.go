package commands

import "github.com/spf13/cobra"

func (c *CLI) newReadCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "read [flags] -- COMMAND [ARGS...]",
		Short: "Return the cached result or exit without running the command",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req, cfg, err := c.collect(cmd, args)
			if err != nil {
				return err
			}
			missCode, err := missExitCode(cmd.Flags())
			if err != nil {
				return err
			}
			code, err := c.application(cmd, cfg).Read(req, missCode)
			c.exitCode = code
			return err
		},
	}
	addCacheFlags(cmd, true)
	return cmd
}
