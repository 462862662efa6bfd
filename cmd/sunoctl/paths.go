package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sunoctl/sunoctl/internal/output"
	"github.com/sunoctl/sunoctl/internal/paths"
)

// PathsInfo holds all resolved paths for JSON output.
type PathsInfo struct {
	ConfigRoot  string `json:"config_root"`
	StateRoot   string `json:"state_root"`
	ConfigFile  string `json:"config_file"`
	LogFile     string `json:"log_file"`
	DownloadDir string `json:"download_dir"`
	BackendURL  string `json:"backend_url"`
}

func newPathsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "paths",
		Short: "Show where sunoctl stores files",
		Long: `Display all file and directory paths used by sunoctl.

Useful for debugging, scripting, and understanding where configuration,
logs, and downloaded songs live on this system.`,
		Example: `  sunoctl paths
  sunoctl paths --json`,
		Args: noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := output.FromContext(cmd.Context())
			cfg := configFrom(cmd.Context())

			info := PathsInfo{
				ConfigRoot:  resolveOrError(paths.ConfigRoot),
				StateRoot:   resolveOrError(paths.StateRoot),
				ConfigFile:  resolveOrError(paths.ConfigFile),
				LogFile:     resolveOrError(paths.DefaultLogFile),
				DownloadDir: cfg.DownloadDir(),
				BackendURL:  cfg.BackendURL(),
			}

			if out.JSON {
				return out.PrintJSON(info)
			}

			out.KeyValue([][2]string{
				{"Config root", info.ConfigRoot},
				{"State root", info.StateRoot},
				{"Config file", info.ConfigFile},
				{"Log file", info.LogFile},
				{"Download dir", info.DownloadDir},
				{"Backend URL", info.BackendURL},
			})

			return nil
		},
	}
}

func resolveOrError(fn func() (string, error)) string {
	val, err := fn()
	if err != nil {
		return fmt.Sprintf("<error: %v>", err)
	}

	return val
}
