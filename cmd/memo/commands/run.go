package commands

import "github.com/spf13/cobra"

func (c *CLI) newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run [flags] -- COMMAND [ARGS...]",
		Short: "Return the cached result or run and cache the command",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req, cfg, err := c.collect(cmd, args)
			if err != nil {
				return err
			}
			code, err := c.application(cmd, cfg).Run(cmd.Context(), req)
			c.exitCode = code
			return err
		},
	}
	addCacheFlags(cmd, false)
	return cmd
}
