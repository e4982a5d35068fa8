package commands

import "github.com/spf13/cobra"

func (c *CLI) newHashCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "hash [flags] -- COMMAND [ARGS...]",
		Short: "Print the cache key generated for the command and options",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req, cfg, err := c.collect(cmd, args)
			if err != nil {
				return err
			}
			code, err := c.application(cmd, cfg).Hash(req)
			c.exitCode = code
			return err
		},
	}
	addCacheFlags(cmd, false)
	return cmd
}
