package commands

import "github.com/spf13/cobra"

func (c *CLI) newExplainCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:    "explain [flags] -- COMMAND [ARGS...]",
		Short:  "Explain the cache key and lookup outcome for the command",
		Hidden: true,
		Args:   cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req, cfg, err := c.collect(cmd, args)
			if err != nil {
				return err
			}
			code, err := c.application(cmd, cfg).Explain(req)
			c.exitCode = code
			return err
		},
	}
	addCacheFlags(cmd, false)
	return cmd
}
