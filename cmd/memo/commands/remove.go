package commands

import "github.com/spf13/cobra"

func (c *CLI) newRemoveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "remove [flags] -- COMMAND [ARGS...]",
		Short: "Remove the cached result for the command",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req, cfg, err := c.collect(cmd, args)
			if err != nil {
				return err
			}
			code, err := c.application(cmd, cfg).Remove(req)
			c.exitCode = code
			return err
		},
	}
	addCacheFlags(cmd, false)
	return cmd
}
