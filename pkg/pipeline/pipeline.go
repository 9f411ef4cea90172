// Package pipeline runs lingo's commands end to end.
//
// Every command follows the same stages:
//
//  1. Load: read Lingo.toml and select the requested apps
//  2. Resolve: validate Lingo.lock or pull, flatten and lock dependencies
//  3. Execute: merge library properties into each app and hand the batch
//     to the build orchestrator
//
// Clean skips the resolve stage. Update forces it. Run executes every app
// that built successfully.
//
// # Usage
//
//	runner := pipeline.NewRunner(fetcher, orchestrator, logger)
//	cfg, err := runner.Load(".")
//	if err != nil {
//	    return err
//	}
//	result, err := runner.Build(ctx, cfg, pipeline.Options{
//	    Apps:  []string{"blinky"},
//	    Build: build.Build{Profile: build.Release, CompileTargetCode: true},
//	})
//	if err != nil {
//	    return err // load or resolve failed; nothing was built
//	}
//	for _, o := range result.Results.Outcomes() {
//	    fmt.Println(o.App.Name, o.Err)
//	}
//
// Resolution errors are returned directly. Build failures are recorded per
// app in [Result.Results], so one failing app never hides the outcome of
// the others.
package pipeline

import (
	"fmt"
	"strings"
	"time"

	"github.com/lingo-build/lingo/pkg/build"
	"github.com/lingo-build/lingo/pkg/lock"
	"github.com/lingo-build/lingo/pkg/manifest"
)

// Format constants for `lingo tree` output.
const (
	FormatText = "text"
	FormatDOT  = "dot"
	FormatSVG  = "svg"
	FormatPNG  = "png"
	FormatPDF  = "pdf"
)

// DefaultFormat is the default tree format.
const DefaultFormat = FormatText

// ValidFormats is the set of supported tree formats.
var ValidFormats = map[string]bool{
	FormatText: true,
	FormatDOT:  true,
	FormatSVG:  true,
	FormatPNG:  true,
	FormatPDF:  true,
}

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return fmt.Errorf("invalid format: %q (must be one of: %s)", format, strings.Join(formatNames(), ", "))
	}
	return nil
}

func formatNames() []string {
	return []string{FormatText, FormatDOT, FormatSVG, FormatPNG, FormatPDF}
}

// Options configures one command.
type Options struct {
	// Apps limits the command to the named apps. Empty means all apps.
	Apps []string

	// Build carries the build settings. Run builds with it too.
	Build build.Build

	// Force re-resolves dependencies even when the lock is valid.
	Force bool
}

// Result is the outcome of one command.
type Result struct {
	Config     *manifest.Config
	Resolution *lock.Resolution // nil for clean
	Results    *build.Results
	Stats      Stats
}

// Stats contains timing and size information.
type Stats struct {
	Packages    int  // locked dependencies
	FromLock    bool // the lock was reused without resolving
	ResolveTime time.Duration
	ExecuteTime time.Duration
}

// Err returns the joined per-app failures, or nil.
func (r *Result) Err() error {
	if r == nil || r.Results == nil {
		return nil
	}
	return r.Results.Err()
}
