// Package version records build information injected at link time via
// -ldflags "-X github.com/rijpm101/nocr/version.GitRelease=...".
package version

import "runtime"

var (
	// GitRelease is the release tag or branch name.
	GitRelease = "dev"

	// GitCommit is the short commit hash.
	GitCommit = "unknown"

	// GitCommitDate is the commit date.
	GitCommitDate = "unknown"

	// GoInfo is the Go toolchain version used for the build.
	GoInfo = runtime.Version()
)
