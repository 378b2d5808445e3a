package version

import (
	"fmt"
	"time"

	"github.com/carlmjohnson/versioninfo"
)

var (
	// Version is the release of the packager binary. It can be overridden via ldflags.
	Version = ""
	// Commit is the short git SHA embedded at build time.
	Commit = ""
	// BuildTime is the UTC build timestamp embedded at build time.
	BuildTime = ""
)

// shortCommitLength is the number of revision characters shown to users.
const shortCommitLength = 8

// Short returns only the semantic version string.
// Without ldflags it falls back to the module version recorded by the Go toolchain.
func Short() string {
	if Version != "" {
		return Version
	}

	return versioninfo.Version
}

// ShortCommit returns the embedded commit, trimmed for display.
func ShortCommit() string {
	return shortCommit(Commit, versioninfo.Revision)
}

// shortCommit prefers the ldflags commit as given, cut to shortCommitLength.
// The VCS revision is used only when it is a full hash.
func shortCommit(commit, revision string) string {
	if commit != "" {
		if len(commit) > shortCommitLength {
			return commit[:shortCommitLength]
		}

		return commit
	}

	if len(revision) < shortCommitLength {
		return "none"
	}

	return revision[:shortCommitLength]
}

// Built returns the build timestamp or "unknown" when nothing was embedded.
func Built() string {
	if BuildTime != "" {
		return BuildTime
	}

	if versioninfo.LastCommit.IsZero() {
		return "unknown"
	}

	return versioninfo.LastCommit.UTC().Format(time.RFC3339)
}

// Full returns a human-readable version string with commit and build time.
func Full() string {
	dirty := ""
	if Commit == "" && versioninfo.DirtyBuild {
		dirty = " (dirty)"
	}

	return fmt.Sprintf("version: %s, commit: %s%s, built at: %s", Short(), ShortCommit(), dirty, Built())
}
