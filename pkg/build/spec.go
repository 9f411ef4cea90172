package build

import (
	"runtime"

	"github.com/lingo-build/lingo/pkg/fetch"
	"github.com/lingo-build/lingo/pkg/manifest"
)

// Profile selects the optimization level of a build.
type Profile int

const (
	Debug Profile = iota
	Release
)

func (p Profile) String() string {
	if p == Release {
		return "release"
	}
	return "debug"
}

// CMakeBuildType returns the CMAKE_BUILD_TYPE value for p.
func (p Profile) CMakeBuildType() string {
	if p == Release {
		return "RELEASE"
	}
	return "DEBUG"
}

// CommandSpec is the operation applied to a batch. It is one of [Build],
// [Update] or [Clean].
type CommandSpec interface {
	commandName() string
}

// Build compiles apps.
type Build struct {
	Profile Profile

	// CompileTargetCode runs the target toolchain after code generation.
	// When false only lfc runs.
	CompileTargetCode bool

	// LFCPath is the lfc executable. Empty means "lfc" on the search path.
	LFCPath string

	// Threads bounds parallel stages. Zero means runtime.NumCPU().
	Threads int

	// KeepGoing isolates failures per app instead of aborting the batch.
	KeepGoing bool
}

// Update refreshes dependencies and toolchain state. Backends treat it as a
// no-op; dependency updates happen before the batch runs.
type Update struct{}

// Clean removes build artifacts.
type Clean struct{}

func (Build) commandName() string  { return "build" }
func (Update) commandName() string { return "update" }
func (Clean) commandName() string  { return "clean" }

// lfc returns the lfc executable to run.
func (b Build) lfc() string {
	if b.LFCPath != "" {
		return b.LFCPath
	}
	return "lfc"
}

// policy returns the failure policy and pool size a spec runs with. Only
// builds can abort early; update and clean always keep going.
func policy(spec CommandSpec) (keepGoing bool, threads int) {
	keepGoing, threads = true, 0
	if b, ok := spec.(Build); ok {
		keepGoing, threads = b.KeepGoing, b.Threads
	}
	if threads <= 0 {
		threads = runtime.NumCPU()
	}
	return keepGoing, threads
}

// BuildSystem is the toolchain family that builds an app.
type BuildSystem int

const (
	LFC BuildSystem = iota
	CMake
	Npm
	Pnpm
	Cargo
)

func (s BuildSystem) String() string {
	switch s {
	case LFC:
		return "lfc"
	case CMake:
		return "cmake"
	case Npm:
		return "npm"
	case Pnpm:
		return "pnpm"
	case Cargo:
		return "cargo"
	default:
		return "unknown"
	}
}

// SystemFor picks the build system of app. TypeScript apps prefer pnpm when
// which finds it. A nil which uses [fetch.Which].
func SystemFor(app *manifest.App, which fetch.WhichFunc) BuildSystem {
	if which == nil {
		which = fetch.Which
	}
	switch app.Target {
	case manifest.C, manifest.Cpp:
		return CMake
	case manifest.TypeScript:
		if _, err := which("pnpm"); err == nil {
			return Pnpm
		}
		return Npm
	case manifest.Rust:
		return Cargo
	default:
		return LFC
	}
}
