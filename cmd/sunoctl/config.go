package main

import (
	"slices"

	"github.com/spf13/cobra"

	"github.com/sunoctl/sunoctl/internal/config"
	clierrors "github.com/sunoctl/sunoctl/internal/errors"
	"github.com/sunoctl/sunoctl/internal/output"
	"github.com/sunoctl/sunoctl/internal/paths"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage configuration",
		Long:  `View and modify sunoctl configuration settings.`,
	}

	cmd.AddCommand(newConfigListCmd())
	cmd.AddCommand(newConfigGetCmd())
	cmd.AddCommand(newConfigSetCmd())
	cmd.AddCommand(newConfigPathCmd())

	return cmd
}

func newConfigListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all configuration settings",
		Long: `Display every configuration setting and its effective value, after the
config file, SUNOCTL_* environment variables, and command-line flags have
been applied.`,
		Example: `  sunoctl config list
  sunoctl config list --json`,
		Args: noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := output.FromContext(cmd.Context())
			cfg := configFrom(cmd.Context())

			if out.JSON {
				return out.PrintJSON(cfg.All())
			}

			for _, key := range cfg.Keys() {
				out.Print("%s = %v\n", key, cfg.Get(key))
			}

			return nil
		},
	}
}

func newConfigGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "get <key>",
		Short:   "Get a configuration value",
		Long:    `Retrieve and display the effective value of a single configuration key.`,
		Example: `  sunoctl config get backend.url
  sunoctl config get generate.timeout --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := output.FromContext(cmd.Context())
			key := args[0]
			cfg := configFrom(cmd.Context())
			value := cfg.Get(key)

			if out.JSON {
				return out.PrintJSON(map[string]any{"key": key, "value": value})
			}

			if value == nil {
				out.Muted("%s is not set", key)
				return nil
			}

			out.Print("%s = %v\n", key, value)

			return nil
		},
	}
}

func newConfigSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a configuration value",
		Long: `Set a configuration key to the given value. The value is persisted to the
config file. backend.url must be an absolute http(s) URL.`,
		Example: `  sunoctl config set backend.url http://localhost:8000
  sunoctl config set generate.timeout 10m
  sunoctl config set simulation.enabled true`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := output.FromContext(cmd.Context())
			key, value := args[0], args[1]

			// Load without flag overrides so they are not written to disk.
			cfg := config.Load()

			if key == "backend.url" {
				parsed, err := config.ParseBackendURL(value)
				if err != nil {
					return clierrors.InvalidBackendURL(value, err)
				}

				value = parsed
			}

			if !slices.Contains(cfg.Keys(), key) {
				out.Warning("%s is not a known setting; saving it anyway", key)
			}

			if err := cfg.Set(key, value); err != nil {
				return clierrors.ConfigFailed("set config", err)
			}

			out.Success("Set %s = %s", key, value)

			return nil
		},
	}
}

func newConfigPathCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "path",
		Short:   "Print the config file location",
		Long:    `Print the path of the YAML config file, whether or not it exists yet.`,
		Example: `  sunoctl config path`,
		Args:    noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := output.FromContext(cmd.Context())

			path, err := paths.ConfigFile()
			if err != nil {
				return clierrors.ConfigFailed("resolve config path", err)
			}

			out.Print("%s\n", path)

			return nil
		},
	}
}
