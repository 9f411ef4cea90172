package manifest

import (
	"fmt"

	"github.com/lingo-build/lingo/pkg/version"
)

// SourceKind identifies where a dependency is fetched from.
type SourceKind int

// Source kinds.
const (
	SourceGit SourceKind = iota + 1
	SourceTarball
	SourcePath
)

func (k SourceKind) String() string {
	switch k {
	case SourceGit:
		return "git"
	case SourceTarball:
		return "tarball"
	case SourcePath:
		return "path"
	}
	return "unknown"
}

// Source is the location a dependency is fetched from. Exactly one kind is
// active per dependency.
type Source struct {
	Kind SourceKind
	URI  string // URL for git and tarball sources, filesystem path for path sources
}

// GitSource returns a git source.
func GitSource(url string) Source { return Source{Kind: SourceGit, URI: url} }

// TarballSource returns a tarball source.
func TarballSource(url string) Source { return Source{Kind: SourceTarball, URI: url} }

// PathSource returns a local path source.
func PathSource(path string) Source { return Source{Kind: SourcePath, URI: path} }

func (s Source) String() string {
	return s.Kind.String() + "+" + s.URI
}

// LockKind identifies how a git source is pinned.
type LockKind int

// Lock kinds.
const (
	LockTag LockKind = iota + 1
	LockBranch
	LockRev
)

func (k LockKind) String() string {
	switch k {
	case LockTag:
		return "tag"
	case LockBranch:
		return "branch"
	case LockRev:
		return "rev"
	}
	return "unknown"
}

// VersionLock pins a git source to a tag, branch or revision. Branch locks
// float and resolve to a concrete revision at fetch time.
type VersionLock struct {
	Kind LockKind
	Name string
}

func (l VersionLock) String() string {
	return fmt.Sprintf("%s=%s", l.Kind, l.Name)
}

// PackageDetails is one dependency requirement.
type PackageDetails struct {
	Requirement version.Requirement
	Source      Source
	Lock        *VersionLock

	// ResolvedRev is the concrete git revision, set after a successful fetch.
	ResolvedRev string
}

// Identity returns a string that distinguishes this source from every other
// source of the same package name.
func (d PackageDetails) Identity() string {
	id := d.Source.String()
	if d.Lock != nil {
		id += "@" + d.Lock.String()
	}
	return id
}

// Dependency is a named requirement.
type Dependency struct {
	Name    string
	Details PackageDetails
}

// DependencyFile is the on-disk form of one [dependencies] entry.
type DependencyFile struct {
	Version string `toml:"version"`
	Git     string `toml:"git,omitempty"`
	Tarball string `toml:"tarball,omitempty"`
	Path    string `toml:"path,omitempty"`
	Tag     string `toml:"tag,omitempty"`
	Branch  string `toml:"branch,omitempty"`
	Rev     string `toml:"rev,omitempty"`
}

// Details validates f and converts it into PackageDetails.
func (f DependencyFile) Details() (PackageDetails, error) {
	req, err := version.ParseRequirement(f.Version)
	if err != nil {
		return PackageDetails{}, err
	}

	var sources []Source
	if f.Git != "" {
		sources = append(sources, GitSource(f.Git))
	}
	if f.Tarball != "" {
		sources = append(sources, TarballSource(f.Tarball))
	}
	if f.Path != "" {
		sources = append(sources, PathSource(f.Path))
	}
	if len(sources) != 1 {
		return PackageDetails{}, fmt.Errorf("exactly one of git, tarball or path is required, got %d", len(sources))
	}

	var locks []VersionLock
	if f.Tag != "" {
		locks = append(locks, VersionLock{Kind: LockTag, Name: f.Tag})
	}
	if f.Branch != "" {
		locks = append(locks, VersionLock{Kind: LockBranch, Name: f.Branch})
	}
	if f.Rev != "" {
		locks = append(locks, VersionLock{Kind: LockRev, Name: f.Rev})
	}
	if len(locks) > 1 {
		return PackageDetails{}, fmt.Errorf("at most one of tag, branch or rev may be set")
	}

	d := PackageDetails{Requirement: req, Source: sources[0]}
	if len(locks) == 1 {
		if d.Source.Kind != SourceGit {
			return PackageDetails{}, fmt.Errorf("%s lock requires a git source", locks[0].Kind)
		}
		d.Lock = &locks[0]
	}
	return d, nil
}

// File converts d back into its on-disk form.
func (d PackageDetails) File() DependencyFile {
	f := DependencyFile{Version: d.Requirement.String()}
	switch d.Source.Kind {
	case SourceGit:
		f.Git = d.Source.URI
	case SourceTarball:
		f.Tarball = d.Source.URI
	case SourcePath:
		f.Path = d.Source.URI
	}
	if d.Lock != nil {
		switch d.Lock.Kind {
		case LockTag:
			f.Tag = d.Lock.Name
		case LockBranch:
			f.Branch = d.Lock.Name
		case LockRev:
			f.Rev = d.Lock.Name
		}
	}
	return f
}
