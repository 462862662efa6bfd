// Package wizard provides the first-run setup flow behind `sunoctl init`.
//
// The wizard walks through:
//  1. Backend URL entry and a live health check
//  2. Download directory
//  3. Generation defaults (instrumental, auto-download)
//  4. Saving everything to the config file
package wizard

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/sunoctl/sunoctl/internal/client"
	"github.com/sunoctl/sunoctl/internal/config"
	"github.com/sunoctl/sunoctl/internal/monitor"
	"github.com/sunoctl/sunoctl/internal/output"
	"github.com/sunoctl/sunoctl/internal/paths"
	"github.com/sunoctl/sunoctl/internal/prompt"
)

const probeTimeout = 5 * time.Second

// Wizard handles the initialization flow.
type Wizard struct {
	out      *output.Writer
	prompter *prompt.Prompter
	cfg      *config.Config
	force    bool
}

// New creates a wizard that reads answers through prompter and saves to cfg.
func New(out *output.Writer, prompter *prompt.Prompter, cfg *config.Config, force bool) *Wizard {
	return &Wizard{
		out:      out,
		prompter: prompter,
		cfg:      cfg,
		force:    force,
	}
}

// answers collects everything the wizard will persist.
type answers struct {
	backendURL   string
	downloadDir  string
	instrumental bool
	download     bool
	simulate     bool
}

// Run executes the wizard. Closing input (Ctrl-D) aborts without saving.
func (w *Wizard) Run(ctx context.Context) error {
	w.out.Println("Welcome to sunoctl!")
	w.out.Println("===================")
	w.out.Println()
	w.out.Println("sunoctl drives a local Suno automation server to generate songs")
	w.out.Println("from the command line or a terminal UI.")
	w.out.Println()

	if !w.prompter.CanPrompt() {
		w.showManualSetup()
		return nil
	}

	proceed, err := w.confirmOverwrite()
	if err != nil {
		return w.abort(err)
	}

	if !proceed {
		return nil
	}

	a, err := w.ask(ctx)
	if err != nil {
		return w.abort(err)
	}

	if err := w.save(a); err != nil {
		return err
	}

	w.out.Println()
	w.out.Success("sunoctl is ready!")
	w.showNextSteps()

	return nil
}

func (w *Wizard) confirmOverwrite() (bool, error) {
	configFile, found := existingConfig()
	if !found || w.force {
		return true, nil
	}

	w.out.Warning("Existing configuration found at %s", configFile)

	overwrite, err := w.prompter.Confirm("Overwrite it?", false)
	if err != nil {
		return false, err
	}

	if !overwrite {
		w.out.Println()
		w.out.Success("Keeping existing configuration")
		w.showNextSteps()
	}

	return overwrite, nil
}

func (w *Wizard) ask(ctx context.Context) (answers, error) {
	var a answers

	w.out.Println("Step 1: Backend")
	w.out.Println("---------------")
	w.out.Println("Enter the address of the Suno automation server.")
	w.out.Println()

	backendURL, err := w.askBackendURL()
	if err != nil {
		return a, err
	}

	a.backendURL = backendURL

	reachable := w.probe(ctx, backendURL)
	if !reachable {
		w.out.Muted("Simulation mode fakes successful generations without contacting the server.")

		a.simulate, err = w.prompter.Confirm("Start in simulation mode by default?", false)
		if err != nil {
			return a, err
		}
	}

	w.out.Println()
	w.out.Println("Step 2: Downloads")
	w.out.Println("-----------------")

	a.downloadDir, err = w.prompter.Text("Download directory", w.cfg.DownloadDir())
	if err != nil {
		return a, err
	}

	w.out.Println()
	w.out.Println("Step 3: Defaults")
	w.out.Println("----------------")

	a.instrumental, err = w.prompter.Confirm("Generate instrumentals by default?", w.cfg.DefaultInstrumental())
	if err != nil {
		return a, err
	}

	a.download, err = w.prompter.Confirm("Download finished songs by default?", w.cfg.DefaultDownload())
	if err != nil {
		return a, err
	}

	return a, nil
}

func (w *Wizard) askBackendURL() (string, error) {
	for {
		raw, err := w.prompter.Text("Backend URL", w.cfg.BackendURL())
		if err != nil {
			return "", err
		}

		parsed, err := config.ParseBackendURL(raw)
		if err == nil {
			return parsed, nil
		}

		w.out.Warning("%s", err.Error())
	}
}

// probe checks /health and /status and reports whether the server answered.
// A reachable server without a logged-in browser still counts as reachable.
func (w *Wizard) probe(ctx context.Context, backendURL string) bool {
	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	c := client.New(backendURL)

	w.out.Println()

	spin := w.out.Spinner("Contacting " + backendURL)
	spin.Start()

	if _, err := c.Health(ctx); err != nil {
		spin.StopWithFailure("Backend is not reachable")
		w.out.Muted("%s", err.Error())

		return false
	}

	snap := monitor.Derive(c.Status(ctx))

	switch snap.State {
	case monitor.ConnectedWithSession:
		spin.StopWithSuccess("Backend is ready")
	case monitor.ConnectedNoSession:
		spin.StopWithWarning("Backend is up but not logged into Suno.ai")
		w.out.Muted("Log in through the automation browser before generating.")
	default:
		spin.StopWithWarning("Backend is healthy but not connected")
		w.out.Muted("%s", snap.Message)
	}

	return true
}

func (w *Wizard) save(a answers) error {
	settings := []struct {
		key   string
		value any
	}{
		{"backend.url", a.backendURL},
		{"download.dir", a.downloadDir},
		{"generate.instrumental", a.instrumental},
		{"generate.download", a.download},
		{"simulation.enabled", a.simulate},
	}

	for _, s := range settings {
		if err := w.cfg.Set(s.key, s.value); err != nil {
			return fmt.Errorf("save %s: %w", s.key, err)
		}
	}

	if configFile, err := paths.ConfigFile(); err == nil {
		w.out.Println()
		w.out.Success("Saved configuration to %s", configFile)
	}

	return nil
}

// abort turns a closed input stream or interrupt into a clean exit.
func (w *Wizard) abort(err error) error {
	if prompt.IsCanceled(err) || errors.Is(err, context.Canceled) {
		w.out.Warning("Setup canceled, nothing was saved")
		return nil
	}

	return err
}

func existingConfig() (string, bool) {
	configFile, err := paths.ConfigFile()
	if err != nil {
		return "", false
	}

	if _, err := os.Stat(configFile); err != nil {
		return "", false
	}

	return configFile, true
}

func (w *Wizard) showManualSetup() {
	w.out.Failure("Cannot run init wizard in non-interactive mode")
	w.out.Println()
	w.out.Info("Either:")
	w.out.Print("  1. Run without --no-input from a terminal\n")
	w.out.Print("  2. Set SUNOCTL_BACKEND_URL (and other SUNOCTL_* variables)\n")
	w.out.Print("  3. Run 'sunoctl config set backend.url http://localhost:8000'\n")
}

func (w *Wizard) showNextSteps() {
	w.out.Println()
	w.out.Println("Next steps:")
	w.out.Println("  sunoctl doctor          Check your setup")
	w.out.Println("  sunoctl generate        Generate a song")
	w.out.Println("  sunoctl ui              Open the terminal UI")
	w.out.Println("  sunoctl --help          See all commands")
}
