package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/sunoctl/sunoctl/internal/batch"
	clierrors "github.com/sunoctl/sunoctl/internal/errors"
	"github.com/sunoctl/sunoctl/internal/generation"
	"github.com/sunoctl/sunoctl/internal/output"
)

// BatchReport is the JSON shape of a batch run.
type BatchReport struct {
	Results   []generation.Result `json:"results"`
	Succeeded int                 `json:"succeeded"`
	Failed    int                 `json:"failed"`
	Skipped   int                 `json:"skipped"`
}

func newBatchCmd() *cobra.Command {
	var (
		stopOnError bool
		dryRun      bool
	)

	cmd := &cobra.Command{
		Use:   "batch <file>",
		Short: "Generate every song listed in a YAML or TOML file",
		Long: `Read a batch file and generate its songs one after another. Songs are
submitted strictly in sequence; each waits for the previous one to finish.

The file has an optional 'defaults' table (style, instrumental, download)
and a 'songs' list whose entries take prompt, style, title, instrumental,
and download. Every entry is validated before anything is sent.`,
		Example: `  sunoctl batch songs.yaml
  sunoctl batch songs.toml --stop-on-error
  sunoctl batch songs.yaml --dry-run
  sunoctl batch songs.yaml --simulate --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := output.FromContext(ctx)
			cfg := configFrom(ctx)
			path := args[0]

			file, err := batch.Load(path)
			if err != nil {
				return clierrors.BatchFileInvalid(path, err)
			}

			reqs, err := file.Requests(defaultRequest(cfg))
			if err != nil {
				return clierrors.BatchFileInvalid(path, err)
			}

			if dryRun {
				return printBatchPlan(out, reqs)
			}

			s := newSession(ctx, cfg)
			primeConnection(ctx, s)

			// Generations take minutes, so keep the connectivity reading fresh.
			if !s.Simulation() {
				if err := s.Start(ctx); err == nil {
					defer s.Stop()
				}
			}

			report := BatchReport{Results: make([]generation.Result, 0, len(reqs))}

			for i, req := range reqs {
				if ctx.Err() != nil {
					report.Skipped = len(reqs) - i
					break
				}

				spin := out.Spinner(fmt.Sprintf("[%d/%d] %s", i+1, len(reqs), songLabel(req)))
				spin.Start()

				res, err := s.Submit(ctx, req)
				if err != nil {
					spin.Stop()
					return submitError(err)
				}

				report.Results = append(report.Results, res)

				if song, ok := res.Song(); ok {
					report.Succeeded++

					spin.StopWithSuccess(song.URL)

					continue
				}

				report.Failed++

				failure, _ := res.Failure()
				spin.StopWithFailure(failure.Reason)

				if stopOnError {
					report.Skipped = len(reqs) - i - 1
					break
				}
			}

			if out.JSON {
				if err := out.PrintJSON(report); err != nil {
					return err
				}
			} else {
				printBatchReport(out, report)
			}

			if report.Failed > 0 || report.Skipped > 0 {
				msg := fmt.Sprintf("%d of %d songs were not generated", report.Failed+report.Skipped, len(reqs))

				return clierrors.New(clierrors.ExitExecution, msg).
					WithHint("Run with --log-level=debug for details on each failure")
			}

			return nil
		},
	}

	cmd.Flags().BoolVar(&stopOnError, "stop-on-error", false, "Stop at the first failed song")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Validate the file and list the songs without generating")

	return cmd
}

func songLabel(req generation.Request) string {
	if req.Title != "" {
		return req.Title
	}

	return output.Truncate(req.Prompt, 40)
}

func yesNo(v bool) string {
	if v {
		return "yes"
	}

	return "no"
}

func printBatchPlan(out *output.Writer, reqs []generation.Request) error {
	if out.JSON {
		return out.PrintJSON(reqs)
	}

	rows := make([][]string, 0, len(reqs))
	for i, req := range reqs {
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			req.Title,
			req.Style,
			yesNo(req.Instrumental),
			yesNo(req.AutoDownload),
			req.Prompt,
		})
	}

	out.Table([]string{"#", "TITLE", "STYLE", "INSTRUMENTAL", "DOWNLOAD", "PROMPT"}, rows)
	out.Println()
	out.Info("%d song(s) ready to generate", len(reqs))

	return nil
}

func printBatchReport(out *output.Writer, report BatchReport) {
	rows := make([][]string, 0, len(report.Results))

	for i, res := range report.Results {
		status, detail := "ok", ""

		if song, ok := res.Song(); ok {
			detail = song.URL
		} else if failure, ok := res.Failure(); ok {
			status, detail = "failed", failure.Reason
		}

		rows = append(rows, []string{strconv.Itoa(i + 1), status, songLabel(generation.Request{Prompt: res.Prompt, Title: res.Title}), detail})
	}

	out.Println()
	out.Table([]string{"#", "STATUS", "SONG", "RESULT"}, rows)
	out.Println()
	out.Print("%d succeeded", report.Succeeded)

	if report.Failed > 0 {
		out.Print(", %d failed", report.Failed)
	}

	if report.Skipped > 0 {
		out.Print(", %d skipped", report.Skipped)
	}

	out.Println()
}
