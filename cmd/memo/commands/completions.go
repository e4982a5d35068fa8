package commands

import (
	"github.com/spf13/cobra"
	"go.trai.ch/zerr"
)

func (c *CLI) newCompletionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completions --shell SHELL",
		Short: "Generate shell completion scripts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			shell, _ := cmd.Flags().GetString("shell")
			switch shell {
			case "bash":
				return cmd.Root().GenBashCompletionV2(c.stdout, true)
			case "zsh":
				return cmd.Root().GenZshCompletion(c.stdout)
			case "fish":
				return cmd.Root().GenFishCompletion(c.stdout, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(c.stdout)
			default:
				return zerr.With(zerr.New("unsupported shell, expected bash, zsh, fish or powershell"), "shell", shell)
			}
		},
	}
	cmd.Flags().String("shell", "", "Shell to generate completions for (bash, zsh, fish, powershell)")
	_ = cmd.MarkFlagRequired("shell")
	return cmd
}
