// Package version holds build information injected at link time.
package version

import "runtime"

// Populated via -ldflags at build time, e.g.:
//
//	go build -ldflags "-X github.com/jackzampolin/scribe/version.GitRelease=v0.2.0"
var (
	GitRelease    = "dev"
	GitCommit     = "unknown"
	GitCommitDate = "unknown"
)

// GoInfo reports the Go toolchain the binary was built with.
var GoInfo = runtime.Version()
