package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/sunoctl/sunoctl/internal/client"
	"github.com/sunoctl/sunoctl/internal/config"
	"github.com/sunoctl/sunoctl/internal/doctor"
	"github.com/sunoctl/sunoctl/internal/output"
	"github.com/sunoctl/sunoctl/internal/paths"
)

// DoctorReport is the JSON shape of a doctor run.
type DoctorReport struct {
	Results  []doctor.Result `json:"results"`
	Passed   int             `json:"passed"`
	Failed   int             `json:"failed"`
	Warnings int             `json:"warnings"`
}

func newDoctorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Diagnose common issues",
		Long: `Run diagnostic checks to identify configuration and connectivity issues.

Checks performed:
  - Automation server health endpoint and response time
  - Browser connection and Suno.ai login state
  - Download directory exists and is writable
  - Config file parses
  - CLI version`,
		Example: `  sunoctl doctor
  sunoctl doctor --backend-url http://localhost:9000
  sunoctl doctor --json`,
		Args: noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := output.FromContext(ctx)

			results := runDoctor(ctx, configFrom(ctx))

			if out.JSON {
				passed, failed, warnings := doctor.Summary(results)

				return out.PrintJSON(DoctorReport{Results: results, Passed: passed, Failed: failed, Warnings: warnings})
			}

			renderDoctor(out, results)

			return nil
		},
	}
}

func runDoctor(ctx context.Context, cfg *config.Config) []doctor.Result {
	configFile := cfg.ConfigFileUsed()
	if configFile == "" {
		configFile, _ = paths.ConfigFile()
	}

	runner := doctor.New(client.New(cfg.BackendURL()), doctor.Options{
		DownloadDir: cfg.DownloadDir(),
		ConfigFile:  configFile,
		Timeout:     cfg.MonitorTimeout(),
	})

	return runner.Run(ctx)
}

// renderDoctor writes the human-readable report.
func renderDoctor(out *output.Writer, results []doctor.Result) {
	out.Println("sunoctl doctor")
	out.Println("==============")
	out.Println()

	doctor.RenderResults(results, out.Print, out.Success, out.Warning, out.Failure, out.Muted)

	passed, failed, warnings := doctor.Summary(results)

	out.Println()
	out.Print("%d passed", passed)

	if failed > 0 {
		out.Print(", %d failed", failed)
	}

	if warnings > 0 {
		out.Print(", %d warning(s)", warnings)
	}

	out.Println()
}
