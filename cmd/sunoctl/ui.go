package main

import (
	"github.com/spf13/cobra"

	clierrors "github.com/sunoctl/sunoctl/internal/errors"
	"github.com/sunoctl/sunoctl/internal/output"
	"github.com/sunoctl/sunoctl/internal/tui"
)

func newUICmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ui",
		Short: "Open the interactive terminal UI",
		Long: `Open a full-screen terminal UI for composing songs. It shows the live
connection state of the automation server, a form for prompt, style, title
and the instrumental/download toggles, the result of the last submission,
and the songs generated during this session.

Press ctrl+g inside the UI for the full list of key bindings.`,
		Example: `  sunoctl ui
  sunoctl ui --simulate
  sunoctl ui --backend-url http://192.168.1.20:8000`,
		Args: noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := output.FromContext(ctx)
			cfg := configFrom(ctx)

			if !out.Terminal().InteractiveEnabled() || out.JSON {
				return clierrors.New(clierrors.ExitUsage, "The terminal UI needs an interactive terminal").
					WithHint("Use 'sunoctl generate' or 'sunoctl batch' from scripts")
			}

			s := newSession(ctx, cfg)
			if err := s.Start(ctx); err != nil {
				return err
			}
			defer s.Stop()

			err := tui.Run(ctx, s, tui.Options{
				Defaults:   defaultRequest(cfg),
				Refresh:    cfg.UIRefresh(),
				BackendURL: cfg.BackendURL(),
			})
			if err != nil {
				return clierrors.Wrap(clierrors.ExitGeneral, "Terminal UI exited with an error", err)
			}

			return nil
		},
	}
}
