package main

import (
	"fmt"

	"github.com/spf13/cobra"

	clierrors "github.com/sunoctl/sunoctl/internal/errors"
)

func newCompletionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "completion <bash|zsh|fish|powershell>",
		Short: "Generate a shell completion script",
		Long: `Print a completion script for the given shell to stdout. Source it from
your shell profile to complete sunoctl commands and flags.`,
		Example: `  sunoctl completion bash > /etc/bash_completion.d/sunoctl
  sunoctl completion zsh > "${fpath[1]}/_sunoctl"
  sunoctl completion fish > ~/.config/fish/completions/sunoctl.fish`,
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"bash", "zsh", "fish", "powershell"},
		RunE: func(cmd *cobra.Command, args []string) error {
			root := cmd.Root()
			w := cmd.OutOrStdout()

			switch args[0] {
			case "bash":
				return root.GenBashCompletionV2(w, true)
			case "zsh":
				return root.GenZshCompletion(w)
			case "fish":
				return root.GenFishCompletion(w, true)
			case "powershell":
				return root.GenPowerShellCompletionWithDesc(w)
			default:
				return &clierrors.CLIError{
					Message: fmt.Sprintf("Unsupported shell %q", args[0]),
					Hint:    "Choose one of: bash, zsh, fish, powershell",
					Code:    clierrors.ExitUsage,
				}
			}
		},
	}
}
