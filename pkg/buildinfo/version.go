// Package buildinfo provides build-time version information.
//
// Variables are set via ldflags during build:
//
//	go build -ldflags "-X github.com/lingo-build/lingo/pkg/buildinfo.Version=v0.3.0 \
//	    -X github.com/lingo-build/lingo/pkg/buildinfo.Commit=$(git rev-parse HEAD) \
//	    -X github.com/lingo-build/lingo/pkg/buildinfo.Date=$(date -u +%Y-%m-%dT%H:%M:%SZ)"
package buildinfo

import (
	"fmt"
	"runtime"
)

var (
	// Version is the semantic version (e.g., "v0.3.0").
	Version = "dev"

	// Commit is the git commit SHA.
	Commit = "none"

	// Date is the build timestamp.
	Date = "unknown"
)

// String returns the formatted build information.
func String() string {
	return fmt.Sprintf("version: %s\ncommit: %s\nbuilt: %s\ngo: %s %s/%s",
		Version, Commit, Date, runtime.Version(), runtime.GOOS, runtime.GOARCH)
}

// Template returns the version template string for cobra.
func Template() string {
	return fmt.Sprintf("{{.Name}} version %s\ncommit: %s\nbuilt: %s\n", Version, Commit, Date)
}

// UserAgent identifies lingo in outgoing HTTP requests.
func UserAgent() string {
	return fmt.Sprintf("lingo/%s (%s/%s)", Version, runtime.GOOS, runtime.GOARCH)
}
