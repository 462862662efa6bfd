// Package buildinfo stores build-time metadata shared across packages.
package buildinfo

import (
	"fmt"

	"github.com/Masterminds/semver/v3"
)

// Version and Commit are set via ldflags during build.
var (
	Version = "dev"
	Commit  = ""
)

// IsDev reports whether this is an unreleased local build.
func IsDev() bool {
	return Version == "" || Version == "dev"
}

// Semver parses Version. Release builds carry a semantic version; a leading
// "v" is accepted.
func Semver() (*semver.Version, error) {
	if IsDev() {
		return nil, fmt.Errorf("development build has no semantic version")
	}

	v, err := semver.NewVersion(Version)
	if err != nil {
		return nil, fmt.Errorf("parse build version %q: %w", Version, err)
	}

	return v, nil
}
