// Package version exposes the build-time version of the m2t CLI.
//
// The values are injected with -ldflags at build time:
//
//	go build -ldflags "-X github.com/rshade/m2t/pkg/version.version=1.2.0 \
//	  -X github.com/rshade/m2t/pkg/version.gitCommit=$(git rev-parse --short HEAD)" ./cmd/m2t
package version

import (
	"github.com/Masterminds/semver/v3"
)

// devVersion is reported when no valid version was injected at build time.
const devVersion = "0.0.0-dev"

//nolint:gochecknoglobals // Set via -ldflags at build time.
var (
	version   = devVersion
	gitCommit = ""
)

// GetVersion returns the semantic version of the binary.
// An injected value that does not parse as semver falls back to the dev version.
func GetVersion() string {
	v, err := semver.NewVersion(version)
	if err != nil {
		return devVersion
	}
	return v.String()
}

// GetGitCommit returns the short commit hash the binary was built from, if known.
func GetGitCommit() string {
	return gitCommit
}

// CLIString formats ver as the line printed by `m2t version` and `m2t --version`.
func CLIString(ver string) string {
	return "M2T CLI Version: " + ver
}
