package main

import (
	"strings"

	"github.com/spf13/cobra"

	clierrors "github.com/sunoctl/sunoctl/internal/errors"
	"github.com/sunoctl/sunoctl/internal/generation"
	"github.com/sunoctl/sunoctl/internal/monitor"
	"github.com/sunoctl/sunoctl/internal/output"
	"github.com/sunoctl/sunoctl/internal/prompt"
)

func newGenerateCmd() *cobra.Command {
	var (
		style        string
		title        string
		instrumental bool
		download     bool
	)

	cmd := &cobra.Command{
		Use:   "generate [prompt]",
		Short: "Generate one song",
		Long: `Submit one song generation request to the automation server and wait for
the result. The prompt is required; when it is omitted on an interactive
terminal, sunoctl asks for it along with the optional style and title.

With --simulate no request is sent: a placeholder song is returned after a
short delay.`,
		Example: `  sunoctl generate "A happy techno song"
  sunoctl generate "rainy day piano" --style lo-fi --title "Drizzle"
  sunoctl generate "sea shanty" --instrumental=false --download=false
  sunoctl generate --simulate "test prompt" --json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := output.FromContext(ctx)
			cfg := configFrom(ctx)

			req := defaultRequest(cfg)
			req.Style = style
			req.Title = title

			if cmd.Flags().Changed("instrumental") {
				req.Instrumental = instrumental
			}

			if cmd.Flags().Changed("download") {
				req.AutoDownload = download
			}

			if len(args) == 1 {
				req.Prompt = args[0]
			}

			if strings.TrimSpace(req.Prompt) == "" {
				p := prompt.New(out)
				if !p.CanPrompt() || out.JSON {
					return clierrors.CannotPrompt("the prompt as an argument")
				}

				asked, err := p.Request(req)
				if err != nil {
					if prompt.IsCanceled(err) {
						return nil
					}

					return err
				}

				req = asked
			}

			if err := req.Validate(); err != nil {
				return clierrors.InvalidPrompt(err)
			}

			s := newSession(ctx, cfg)
			snap := primeConnection(ctx, s)

			if !s.Simulation() && !out.JSON && snap.State == monitor.ConnectedNoSession {
				out.Warning("%s", snap.Message)
			}

			message := "Generating song"
			if s.Simulation() {
				message = "Simulating song generation"
			}

			spin := out.Spinner(message)
			spin.Start()

			res, err := s.Submit(ctx, req)
			if err != nil {
				spin.Stop()
				return submitError(err)
			}

			if resErr := resultError(res, cfg.BackendURL(), s.Connection()); resErr != nil {
				spin.Stop()

				if out.JSON {
					_ = out.PrintJSON(res)
				}

				return resErr
			}

			spin.StopWithSuccess("Song generated")

			if out.JSON {
				return out.PrintJSON(res)
			}

			printSong(out, res)

			return nil
		},
	}

	cmd.Flags().StringVarP(&style, "style", "s", "", "Musical style (at most 200 characters)")
	cmd.Flags().StringVarP(&title, "title", "t", "", "Song title (at most 80 characters)")
	cmd.Flags().BoolVarP(&instrumental, "instrumental", "i", true, "Generate without vocals (default from generate.instrumental)")
	cmd.Flags().BoolVarP(&download, "download", "d", true, "Download the finished song (default from generate.download)")

	return cmd
}

// printSong writes the details of a successful result.
func printSong(out *output.Writer, res generation.Result) {
	song, ok := res.Song()
	if !ok {
		return
	}

	pairs := [][2]string{{"URL", song.URL}}

	if res.Title != "" {
		pairs = append(pairs, [2]string{"Title", res.Title})
	}

	if res.Style != "" {
		pairs = append(pairs, [2]string{"Style", res.Style})
	}

	pairs = append(pairs, [2]string{"Prompt", output.Truncate(res.Prompt, 60)})

	if song.FilePath != "" {
		pairs = append(pairs, [2]string{"File", song.FilePath})
	}

	out.KeyValue(pairs)

	if song.DownloadError != "" {
		out.Warning("Download failed: %s", song.DownloadError)
	}

	if res.Simulated {
		out.Muted("Simulated result, nothing was sent to the backend")
	}
}
