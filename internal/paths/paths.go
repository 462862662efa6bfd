// Package paths resolves where sunoctl keeps its files on this machine.
package paths

import (
	"errors"
	"os"
	"path/filepath"
)

const appName = "sunoctl"

var errNoHome = errors.New("resolve user home directory")

// root resolves an application directory. An absolute $xdgEnv wins, then the
// OS default (when osDir is non-nil), then ~/<homeRel>.
func root(xdgEnv string, osDir func() (string, error), homeRel string) (string, error) {
	if xdg := os.Getenv(xdgEnv); xdg != "" && filepath.IsAbs(xdg) {
		return filepath.Join(xdg, appName), nil
	}

	var osErr error

	if osDir != nil {
		dir, err := osDir()
		if err == nil && dir != "" {
			return filepath.Join(dir, appName), nil
		}

		osErr = err
	}

	if home, err := os.UserHomeDir(); err == nil && home != "" {
		return filepath.Join(home, homeRel, appName), nil
	}

	if osErr != nil {
		return "", osErr
	}

	return "", errNoHome
}

func join(base func() (string, error), elem ...string) (string, error) {
	dir, err := base()
	if err != nil {
		return "", err
	}

	return filepath.Join(append([]string{dir}, elem...)...), nil
}

// ConfigRoot returns the user config root directory.
func ConfigRoot() (string, error) {
	return root("XDG_CONFIG_HOME", os.UserConfigDir, ".config")
}

// StateRoot returns the user state root directory. Go has no OS state dir,
// so it is $XDG_STATE_HOME or ~/.local/state everywhere.
func StateRoot() (string, error) {
	return root("XDG_STATE_HOME", nil, filepath.Join(".local", "state"))
}

// ConfigFile returns the path of the YAML config file.
func ConfigFile() (string, error) {
	return join(ConfigRoot, "config.yaml")
}

// LogsDir returns the default log directory.
func LogsDir() (string, error) {
	return join(StateRoot, "logs")
}

// DefaultLogFile returns the default log file path.
func DefaultLogFile() (string, error) {
	return join(StateRoot, "logs", appName+".log")
}

// DefaultDownloadDir returns the directory the automation browser saves songs
// into, which is the user's Downloads folder.
func DefaultDownloadDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}

	return filepath.Join(home, "Downloads"), nil
}
