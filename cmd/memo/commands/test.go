package commands

import "github.com/spf13/cobra"

func (c *CLI) newTestCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "test [flags] -- COMMAND [ARGS...]",
		Short: "Test whether a fresh cached result exists for the command",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req, cfg, err := c.collect(cmd, args)
			if err != nil {
				return err
			}
			code, err := c.application(cmd, cfg).Test(req)
			c.exitCode = code
			return err
		},
	}
	addCacheFlags(cmd, false)
	return cmd
}
