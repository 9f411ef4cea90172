// Package lock reads, writes and validates Lingo.lock.
//
// A lock records the flat package selection of a successful resolution. Each
// entry is keyed by package name:
//
//	[mqtt]
//	name = "mqtt"
//	version = "1.2.0"
//	source = "git+https://github.com/lf-lang/mqtt.git#4f1c2d0e..."
//	checksum = "9b2e0d4f..."
//
// While a lock is valid, builds never contact the network: [DependencyLock.Validate]
// only refetches packages missing from the include directory and verifies
// every checksum. [Manager] ties lock validation and fresh resolution
// together.
package lock

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/log"

	"github.com/lingo-build/lingo/pkg/checksum"
	"github.com/lingo-build/lingo/pkg/deps"
	"github.com/lingo-build/lingo/pkg/errors"
	"github.com/lingo-build/lingo/pkg/fetch"
	"github.com/lingo-build/lingo/pkg/manifest"
	"github.com/lingo-build/lingo/pkg/observability"
	"github.com/lingo-build/lingo/pkg/properties"
	"github.com/lingo-build/lingo/pkg/store"
	"github.com/lingo-build/lingo/pkg/version"
)

// PackageLock is one locked package.
type PackageLock struct {
	Name     string           `toml:"name"`
	Version  version.Version  `toml:"version"`
	Source   SourceDescriptor `toml:"source"`
	Checksum checksum.Sum     `toml:"checksum"`

	// Pin is the tag, branch or revision the manifest declared for a git
	// source, in "kind=name" form.
	Pin string `toml:"pin,omitempty"`
}

// DependencyLock is the content of a lock file.
type DependencyLock struct {
	Entries map[string]PackageLock

	// loaded is populated by Create and Validate.
	loaded []*deps.TreeNode
}

// Create builds a lock from a flat selection as returned by deps.Flatten.
func Create(selection []*deps.TreeNode) (*DependencyLock, error) {
	l := &DependencyLock{Entries: make(map[string]PackageLock, len(selection))}
	for _, n := range selection {
		src, err := DescriptorFor(n.Details)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidLock, err, "lock %s", n.Name)
		}
		if _, dup := l.Entries[n.Name]; dup {
			return nil, errors.New(errors.ErrCodeInvalidLock, "package %s selected twice", n.Name)
		}
		e := PackageLock{Name: n.Name, Version: n.Version, Source: src, Checksum: n.Hash}
		if n.Details.Lock != nil {
			e.Pin = n.Details.Lock.String()
		}
		l.Entries[n.Name] = e
		l.loaded = append(l.loaded, n)
	}
	return l, nil
}

// Names returns the locked package names in sorted order.
func (l *DependencyLock) Names() []string {
	names := make([]string, 0, len(l.Entries))
	for n := range l.Entries {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Loaded returns the nodes backing the lock, sorted by name. It is empty
// until the lock was created from a resolution or validated.
func (l *DependencyLock) Loaded() []*deps.TreeNode {
	out := append([]*deps.TreeNode(nil), l.loaded...)
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Marshal encodes the lock as TOML. Output is deterministic.
func (l *DependencyLock) Marshal() ([]byte, error) {
	for name, e := range l.Entries {
		if e.Source.Kind == SourceGit && e.Source.Rev == "" {
			return nil, errors.New(errors.ErrCodeInvalidLock, "%s: git source without revision", name)
		}
	}
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(l.Entries); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidLock, err, "encode lock")
	}
	return buf.Bytes(), nil
}

// Unmarshal decodes a lock file.
func Unmarshal(data []byte) (*DependencyLock, error) {
	entries := make(map[string]PackageLock)
	if err := toml.Unmarshal(data, &entries); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidLock, err, "parse %s", manifest.LockFileName)
	}
	for key, e := range entries {
		if e.Name == "" {
			e.Name = key
		}
		if e.Name != key {
			return nil, errors.New(errors.ErrCodeInvalidLock, "entry %q is named %q", key, e.Name)
		}
		if err := errors.ValidatePackageName(key); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidLock, err, "entry %q", key)
		}
		if e.Version.IsZero() {
			return nil, errors.New(errors.ErrCodeInvalidLock, "entry %q has no version", key)
		}
		if e.Checksum.IsZero() {
			return nil, errors.New(errors.ErrCodeInvalidLock, "entry %q has no checksum", key)
		}
		if e.Source.Kind == "" {
			return nil, errors.New(errors.ErrCodeInvalidLock, "entry %q has no source", key)
		}
		entries[key] = e
	}
	return &DependencyLock{Entries: entries}, nil
}

// Load reads the lock file at path.
func Load(path string) (*DependencyLock, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Unmarshal(data)
}

// Save writes the lock atomically using a temp file and rename.
func (l *DependencyLock) Save(path string) error {
	data, err := l.Marshal()
	if err != nil {
		return err
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "write temp lock file %s", tmp)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return errors.Wrap(errors.ErrCodeInternal, err, "rename temp lock file to %s", path)
	}
	return nil
}

// ValidateOptions configures [DependencyLock.Validate].
type ValidateOptions struct {
	Fetcher  fetch.Fetcher           // fetches packages missing from the include directory
	ReadFile properties.ReadFileFunc // nil means os.ReadFile
	Workers  int                     // checksum workers
	Logger   *log.Logger
}

// Validate checks the include directory against the lock. Packages whose
// Lingo.toml is missing are fetched from their locked source first. Every
// package is then checksummed; any difference is a CHECKSUM_MISMATCH error.
// On success the loaded nodes are populated.
func (l *DependencyLock) Validate(ctx context.Context, includeDir string, opts ValidateOptions) error {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}

	var loaded []*deps.TreeNode
	requires := make(map[string][]manifest.Dependency)
	for _, name := range l.Names() {
		if err := ctx.Err(); err != nil {
			return err
		}
		entry := l.Entries[name]
		dir := filepath.Join(includeDir, name)

		details, err := entry.Source.Details()
		if err != nil {
			return errors.Wrap(errors.GetCode(err), err, "locked package %s", name)
		}
		if _, err := os.Stat(filepath.Join(dir, manifest.FileName)); err != nil {
			if opts.Fetcher == nil {
				return errors.New(errors.ErrCodeFetchFailed, "locked package %s is missing from %s", name, includeDir)
			}
			logger.Info("fetching locked package", "name", name, "source", entry.Source)
			if err := os.RemoveAll(dir); err != nil {
				return err
			}
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return err
			}
			hooks := observability.Resolve()
			hooks.OnFetch(ctx, name, entry.Source.String())
			start := time.Now()
			_, err := opts.Fetcher.Fetch(ctx, name, details, dir)
			hooks.OnFetchComplete(ctx, name, time.Since(start), err)
			if err != nil {
				return err
			}
		}

		sum, err := checksum.Dir(ctx, dir, checksum.Options{Workers: opts.Workers})
		if err != nil {
			return errors.Wrap(errors.ErrCodeChecksumMismatch, err, "checksum %s", name)
		}
		if sum != entry.Checksum {
			return errors.New(errors.ErrCodeChecksumMismatch, "%s: locked checksum %s, found %s", name, entry.Checksum, sum)
		}

		f, err := manifest.Load(filepath.Join(dir, manifest.FileName), opts.ReadFile)
		if err != nil {
			return err
		}
		cfg, err := f.ToConfig(dir, opts.ReadFile)
		if err != nil {
			return err
		}
		if cfg.Library == nil {
			return errors.New(errors.ErrCodeNoLibraryExported, "locked package %s does not export a library", name)
		}
		logger.Debug("read locked package", "name", name, "version", cfg.Package.Version)

		rel, err := filepath.Rel(dir, cfg.Library.Location)
		if err != nil {
			rel = cfg.Library.Location
		}
		loaded = append(loaded, &deps.TreeNode{
			Name:        name,
			Version:     cfg.Package.Version,
			Details:     details,
			Location:    dir,
			IncludePath: filepath.ToSlash(rel),
			Hash:        sum,
			Properties:  cfg.Library.Properties,
		})
		requires[name] = cfg.Dependencies
	}
	link(loaded, requires)
	l.loaded = loaded
	return nil
}

// link rebuilds the edges between locked packages from their manifests.
func link(nodes []*deps.TreeNode, requires map[string][]manifest.Dependency) {
	byName := make(map[string]*deps.TreeNode, len(nodes))
	for _, n := range nodes {
		byName[n.Name] = n
	}
	for _, n := range nodes {
		for _, dep := range requires[n.Name] {
			child, ok := byName[dep.Name]
			if !ok {
				continue
			}
			child.Requirements = append(child.Requirements, dep.Details.Requirement)
			n.Children = append(n.Children, child)
		}
	}
}

// CreateLibraryFolder materializes every locked package from the store into
// includeDir/<name>, replacing previous content. Directories of packages no
// longer locked are removed.
func (l *DependencyLock) CreateLibraryFolder(s *store.Store, includeDir string) error {
	if err := os.MkdirAll(includeDir, 0o755); err != nil {
		return err
	}

	entries, err := os.ReadDir(includeDir)
	if err != nil {
		return err
	}
	for _, e := range entries {
		if _, ok := l.Entries[e.Name()]; !ok {
			if err := os.RemoveAll(filepath.Join(includeDir, e.Name())); err != nil {
				return err
			}
		}
	}

	for _, name := range l.Names() {
		entry := l.Entries[name]
		if !s.Has(entry.Checksum) {
			return errors.New(errors.ErrCodeInternal, "%s (%s) is not in the store", name, entry.Checksum)
		}
		dst := filepath.Join(includeDir, name)
		if err := os.RemoveAll(dst); err != nil {
			return err
		}
		if err := store.CopyTree(s.Path(entry.Checksum), dst); err != nil {
			return errors.Wrap(errors.ErrCodeInternal, err, "materialize %s", name)
		}
	}

	for _, n := range l.loaded {
		n.Location = filepath.Join(includeDir, n.Name)
	}
	return nil
}

// AggregateProperties merges the library properties of every loaded
// package, skipping repeated content.
func (l *DependencyLock) AggregateProperties() properties.Library {
	agg := properties.Aggregator{Dedupe: true}
	for _, n := range l.Loaded() {
		agg.Add(n.Hash.String(), n.Properties)
	}
	return agg.Result()
}

// Satisfies reports whether the lock covers every dependency with a version
// matching its requirement, fetched from the source the manifest declares.
func (l *DependencyLock) Satisfies(required []manifest.Dependency) bool {
	for _, d := range required {
		e, ok := l.Entries[d.Name]
		if !ok || !d.Details.Requirement.Matches(e.Version) || !e.From(d.Details) {
			return false
		}
	}
	return true
}

// From reports whether e was locked from the source described by details.
// Git sources must also carry the same tag, branch or revision pin.
func (e PackageLock) From(details manifest.PackageDetails) bool {
	var kind SourceKind
	switch details.Source.Kind {
	case manifest.SourceGit:
		kind = SourceGit
	case manifest.SourceTarball:
		kind = SourceTar
	case manifest.SourcePath:
		kind = SourcePath
	default:
		return false
	}
	if e.Source.Kind != kind || e.Source.URI != details.Source.URI {
		return false
	}
	pin := ""
	if details.Lock != nil {
		pin = details.Lock.String()
	}
	return e.Pin == pin
}

// Roots returns the loaded nodes of the project's direct dependencies. Node
// depths are set to their shortest distance from a root.
func (l *DependencyLock) Roots(direct []manifest.Dependency) []*deps.TreeNode {
	byName := make(map[string]*deps.TreeNode, len(l.loaded))
	for _, n := range l.loaded {
		byName[n.Name] = n
	}

	var roots []*deps.TreeNode
	for _, d := range direct {
		if n, ok := byName[d.Name]; ok {
			roots = append(roots, n)
		}
	}

	seen := make(map[*deps.TreeNode]bool)
	queue := append([]*deps.TreeNode(nil), roots...)
	for _, n := range roots {
		n.Depth = 0
		seen[n] = true
	}
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		for _, c := range n.Children {
			if !seen[c] {
				seen[c] = true
				c.Depth = n.Depth + 1
				queue = append(queue, c)
			}
		}
	}
	return roots
}
