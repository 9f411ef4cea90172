// Package properties holds the build properties apps and libraries declare
// in Lingo.toml and merges library properties into their consumers.
//
// The only property that propagates is the CMake include snippet: each
// library's snippet is appended to its consumer's, separated by [Marker].
// Appending is associative but not idempotent, so an [Aggregator] with
// Dedupe set skips a library whose contribution was already merged (diamond
// dependencies).
package properties

import (
	"fmt"
	"os"
	"path/filepath"
)

// Marker separates merged snippets.
const Marker = "\n# ------------------------- \n"

// AggregatedCMakeInclude is the file name written by [App.WriteArtifacts].
const AggregatedCMakeInclude = "aggregated_cmake_include.cmake"

// Snippet is a fragment of CMake code injected into a generated build.
type Snippet string

// Merge returns s with parent appended after [Marker].
func (s Snippet) Merge(parent Snippet) Snippet {
	return s + Marker + parent
}

// Library is the resolved property set a library exports.
type Library struct {
	CMakeInclude Snippet
	Sources      []string // files compiled and linked into consumers
	Artifacts    []string // files made available to consumers
}

// Merge appends parent's snippet to l's.
func (l *Library) Merge(parent Library) {
	l.CMakeInclude = l.CMakeInclude.Merge(parent.CMakeInclude)
}

// App is the resolved property set of an app.
type App struct {
	CMakeInclude Snippet
	Fast         bool // do not wait for physical time to catch up
}

// Merge appends the library's snippet to the app's.
func (a *App) Merge(lib Library) {
	a.CMakeInclude = a.CMakeInclude.Merge(lib.CMakeInclude)
}

// WriteArtifacts writes the aggregated CMake include into dir.
func (a App) WriteArtifacts(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, AggregatedCMakeInclude), []byte(a.CMakeInclude), 0o644)
}

// Aggregator folds library properties from many contributors into one.
type Aggregator struct {
	// Dedupe skips contributors whose identity was already added.
	Dedupe bool

	acc  Library
	seen map[string]struct{}
}

// Add merges lib, contributed by the package identified by id (usually its
// content checksum). It reports whether lib was merged.
func (g *Aggregator) Add(id string, lib Library) bool {
	if g.Dedupe {
		if g.seen == nil {
			g.seen = make(map[string]struct{})
		}
		if _, ok := g.seen[id]; ok {
			return false
		}
		g.seen[id] = struct{}{}
	}
	g.acc.Merge(lib)
	return true
}

// Result returns the merged properties.
func (g *Aggregator) Result() Library {
	return g.acc
}

// ReadFileFunc reads a file by path.
type ReadFileFunc func(path string) ([]byte, error)

// LibraryFile is the [lib.properties] table of Lingo.toml.
type LibraryFile struct {
	CMakeInclude string   `toml:"cmake-include,omitempty"`
	Sources      []string `toml:"sources,omitempty"`
	Artifacts    []string `toml:"artifacts,omitempty"`
}

// Resolve reads the referenced include file relative to base.
func (f LibraryFile) Resolve(base string, readFile ReadFileFunc) (Library, error) {
	snippet, err := readSnippet(base, f.CMakeInclude, readFile)
	if err != nil {
		return Library{}, err
	}
	return Library{CMakeInclude: snippet, Sources: f.Sources, Artifacts: f.Artifacts}, nil
}

// AppFile is the [app.properties] table of Lingo.toml.
type AppFile struct {
	CMakeInclude string `toml:"cmake-include,omitempty"`
	Fast         bool   `toml:"fast,omitempty"`
}

// Resolve reads the referenced include file relative to base.
func (f AppFile) Resolve(base string, readFile ReadFileFunc) (App, error) {
	snippet, err := readSnippet(base, f.CMakeInclude, readFile)
	if err != nil {
		return App{}, err
	}
	return App{CMakeInclude: snippet, Fast: f.Fast}, nil
}

func readSnippet(base, rel string, readFile ReadFileFunc) (Snippet, error) {
	if rel == "" {
		return "", nil
	}
	if readFile == nil {
		readFile = os.ReadFile
	}
	path := rel
	if !filepath.IsAbs(path) {
		path = filepath.Join(base, rel)
	}
	data, err := readFile(path)
	if err != nil {
		return "", fmt.Errorf("read cmake-include %s: %w", path, err)
	}
	return Snippet(data), nil
}
