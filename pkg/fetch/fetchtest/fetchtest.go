// Package fetchtest provides an in-memory [fetch.Fetcher] for tests.
package fetchtest

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/lingo-build/lingo/pkg/errors"
	"github.com/lingo-build/lingo/pkg/manifest"
)

// Package describes the content served for one source URI.
type Package struct {
	Name    string
	Version string

	// Deps maps dependency names to inline TOML tables, for example
	// `{ version = ">=1.0", git = "https://example.com/b.git" }`.
	Deps map[string]string

	NoLibrary bool              // omit the [lib] table
	Files     map[string]string // extra files, slash-separated paths
	Rev       string            // revision reported for git sources
}

// Manifest renders the package's Lingo.toml.
func (p Package) Manifest() string {
	var b strings.Builder
	fmt.Fprintf(&b, "[package]\nname = %q\nversion = %q\n", p.Name, p.Version)
	if !p.NoLibrary {
		b.WriteString("\n[lib]\ntarget = \"C\"\n")
	}
	if len(p.Deps) > 0 {
		b.WriteString("\n[dependencies]\n")
		names := make([]string, 0, len(p.Deps))
		for n := range p.Deps {
			names = append(names, n)
		}
		sort.Strings(names)
		for _, n := range names {
			fmt.Fprintf(&b, "%s = %s\n", n, p.Deps[n])
		}
	}
	return b.String()
}

// Fetcher serves packages keyed by source URI and counts fetches.
type Fetcher struct {
	Packages map[string]Package

	mu    sync.Mutex
	calls map[string]int
}

// New returns a Fetcher serving pkgs.
func New(pkgs map[string]Package) *Fetcher {
	return &Fetcher{Packages: pkgs}
}

// Fetch implements fetch.Fetcher.
func (f *Fetcher) Fetch(_ context.Context, name string, details manifest.PackageDetails, dst string) (string, error) {
	f.mu.Lock()
	if f.calls == nil {
		f.calls = make(map[string]int)
	}
	f.calls[details.Source.URI]++
	f.mu.Unlock()

	p, ok := f.Packages[details.Source.URI]
	if !ok {
		return "", errors.New(errors.ErrCodeFetchFailed, "fetch %s from %s: not found", name, details.Source)
	}

	files := map[string]string{
		manifest.FileName: p.Manifest(),
		"src/lib/" + p.Name + ".lf": "target C;\nreactor " + p.Name + " {}\n",
	}
	for k, v := range p.Files {
		files[k] = v
	}
	for rel, content := range files {
		path := filepath.Join(dst, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return "", err
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			return "", err
		}
	}

	if details.Source.Kind != manifest.SourceGit {
		return "", nil
	}
	if p.Rev != "" {
		return p.Rev, nil
	}
	return "0000000000000000000000000000000000000000", nil
}

// Calls returns how often uri was fetched.
func (f *Fetcher) Calls(uri string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[uri]
}

// Total returns the number of fetches across all sources.
func (f *Fetcher) Total() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		n += c
	}
	return n
}
