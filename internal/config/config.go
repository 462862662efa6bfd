// Package config handles sunoctl configuration using Viper.
//
// Configuration sources (in priority order):
//  1. Environment variables (SUNOCTL_*)
//  2. Config file ($XDG_CONFIG_HOME/sunoctl/config.yaml)
//  3. Built-in defaults
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/sunoctl/sunoctl/internal/paths"
)

const (
	// DefaultBackendURL is where the automation server listens by default.
	DefaultBackendURL = "http://localhost:8000"
	// DefaultMonitorInterval matches the status poll cadence of the web UI.
	DefaultMonitorInterval = 5 * time.Second
	// DefaultMonitorTimeout bounds a single status check.
	DefaultMonitorTimeout = 5 * time.Second
	// DefaultGenerateTimeout bounds a single generation call. The backend
	// drives a real browser session and waits for Suno to render the song.
	DefaultGenerateTimeout = 5 * time.Minute
	// DefaultSimulationDelay is the artificial latency of simulated submissions.
	DefaultSimulationDelay = 2 * time.Second
	// DefaultUIRefresh is how often the terminal UI re-reads core state.
	DefaultUIRefresh = 500 * time.Millisecond
)

// Config holds the sunoctl configuration.
type Config struct {
	v *viper.Viper
}

// Load reads configuration from all sources.
func Load() *Config {
	v := viper.New()

	v.SetDefault("backend.url", DefaultBackendURL)
	v.SetDefault("monitor.interval", DefaultMonitorInterval.String())
	v.SetDefault("monitor.timeout", DefaultMonitorTimeout.String())
	v.SetDefault("generate.timeout", DefaultGenerateTimeout.String())
	v.SetDefault("generate.instrumental", true)
	v.SetDefault("generate.download", true)
	v.SetDefault("simulation.enabled", false)
	v.SetDefault("simulation.delay", DefaultSimulationDelay.String())
	v.SetDefault("ui.refresh", DefaultUIRefresh.String())

	if dir, err := paths.DefaultDownloadDir(); err == nil {
		v.SetDefault("download.dir", dir)
	}

	if root, err := paths.ConfigRoot(); err == nil {
		v.AddConfigPath(root)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix("SUNOCTL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read config file (ignore if not found, but warn on other errors)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			fmt.Fprintf(os.Stderr, "Warning: error reading config file: %v\n", err)
		}
	}

	return &Config{v: v}
}

// Get returns a configuration value.
func (c *Config) Get(key string) any {
	return c.v.Get(key)
}

// GetString returns a configuration value as string.
func (c *Config) GetString(key string) string {
	return c.v.GetString(key)
}

// GetBool returns a configuration value as bool.
func (c *Config) GetBool(key string) bool {
	return c.v.GetBool(key)
}

// IsSet reports whether key has a value from any source, defaults included.
func (c *Config) IsSet(key string) bool {
	return c.v.IsSet(key)
}

// Set sets a configuration value and persists it to the config file.
func (c *Config) Set(key string, value any) error {
	c.v.Set(key, value)

	configFile, err := paths.ConfigFile()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(configFile), 0o700); err != nil {
		return err
	}

	return c.v.WriteConfigAs(configFile)
}

// Override sets a value for this process only. Command-line flags use it so
// they win over the environment and the config file without being saved.
func (c *Config) Override(key string, value any) {
	c.v.Set(key, value)
}

// ConfigFileUsed returns the config file that was read, or "" when none was.
func (c *Config) ConfigFileUsed() string {
	return c.v.ConfigFileUsed()
}

// All returns all configuration as a nested map.
func (c *Config) All() map[string]any {
	return c.v.AllSettings()
}

// Keys returns every known key in sorted order.
func (c *Config) Keys() []string {
	keys := c.v.AllKeys()
	sort.Strings(keys)

	return keys
}

// BackendURL returns the automation backend base URL.
func (c *Config) BackendURL() string {
	return c.GetString("backend.url")
}

// MonitorInterval returns the status poll interval.
func (c *Config) MonitorInterval() time.Duration {
	return c.duration("monitor.interval", DefaultMonitorInterval)
}

// MonitorTimeout returns the timeout of a single status check.
func (c *Config) MonitorTimeout() time.Duration {
	return c.duration("monitor.timeout", DefaultMonitorTimeout)
}

// GenerateTimeout returns the timeout of a single generation call.
func (c *Config) GenerateTimeout() time.Duration {
	return c.duration("generate.timeout", DefaultGenerateTimeout)
}

// DefaultInstrumental returns the initial instrumental setting for new requests.
func (c *Config) DefaultInstrumental() bool {
	return c.GetBool("generate.instrumental")
}

// DefaultDownload returns the initial auto-download setting for new requests.
func (c *Config) DefaultDownload() bool {
	return c.GetBool("generate.download")
}

// SimulationEnabled reports whether simulation mode starts active.
func (c *Config) SimulationEnabled() bool {
	return c.GetBool("simulation.enabled")
}

// SimulationDelay returns the artificial latency of simulated submissions.
func (c *Config) SimulationDelay() time.Duration {
	return c.duration("simulation.delay", DefaultSimulationDelay)
}

// DownloadDir returns the directory songs are downloaded into.
func (c *Config) DownloadDir() string {
	return c.GetString("download.dir")
}

// UIRefresh returns the terminal UI refresh interval.
func (c *Config) UIRefresh() time.Duration {
	return c.duration("ui.refresh", DefaultUIRefresh)
}

// duration reads key as a duration and falls back to def when the value is
// missing, unparseable, or not positive.
func (c *Config) duration(key string, def time.Duration) time.Duration {
	d := c.v.GetDuration(key)
	if d <= 0 {
		return def
	}

	return d
}

// ParseBackendURL validates raw as an absolute http(s) URL and returns it
// without a trailing slash.
func ParseBackendURL(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)

	u, err := url.Parse(trimmed)
	if err != nil {
		return "", fmt.Errorf("parse backend url: %w", err)
	}

	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("backend url must use http or https, got %q", u.Scheme)
	}

	if u.Host == "" {
		return "", fmt.Errorf("backend url has no host")
	}

	return strings.TrimRight(trimmed, "/"), nil
}
