package commands

import "github.com/spf13/cobra"

func (c *CLI) newForceCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "force [flags] -- COMMAND [ARGS...]",
		Short: "Run and cache the command, replacing any cached result",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req, cfg, err := c.collect(cmd, args)
			if err != nil {
				return err
			}
			code, err := c.application(cmd, cfg).Force(cmd.Context(), req)
			c.exitCode = code
			return err
		},
	}
	addCacheFlags(cmd, false)
	return cmd
}
