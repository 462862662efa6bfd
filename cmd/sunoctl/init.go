package main

import (
	"github.com/spf13/cobra"

	"github.com/sunoctl/sunoctl/internal/config"
	"github.com/sunoctl/sunoctl/internal/output"
	"github.com/sunoctl/sunoctl/internal/prompt"
	"github.com/sunoctl/sunoctl/internal/wizard"
)

func newInitCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Set up sunoctl for first use",
		Long: `Initialize sunoctl with a guided setup wizard.

The wizard will:
  1. Ask for the automation server URL and check that it answers
  2. Offer simulation mode when the server is not reachable
  3. Ask for the download directory and generation defaults
  4. Save everything to the config file

If a config file already exists, use --force to overwrite it without asking.`,
		Example: `  sunoctl init
  sunoctl init --force`,
		Args: noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := output.FromContext(cmd.Context())

			// Answers are saved, so start from the file and environment only.
			w := wizard.New(out, prompt.New(out), config.Load(), force)

			return w.Run(cmd.Context())
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Overwrite an existing config file without prompting")

	return cmd
}
