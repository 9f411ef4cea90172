package deps

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/lingo-build/lingo/pkg/checksum"
	"github.com/lingo-build/lingo/pkg/errors"
	"github.com/lingo-build/lingo/pkg/fetch"
	"github.com/lingo-build/lingo/pkg/manifest"
	"github.com/lingo-build/lingo/pkg/observability"
	"github.com/lingo-build/lingo/pkg/properties"
	"github.com/lingo-build/lingo/pkg/store"
	"github.com/lingo-build/lingo/pkg/version"
)

const (
	DefaultMaxNodes = 1000 // Default maximum packages to pull
	DefaultMemoSize = 256  // Default number of parsed manifests kept in memory
)

// Options configures a [Puller].
type Options struct {
	MaxNodes int // Maximum packages to pull (default: 1000)
	MemoSize int // Parsed manifests kept in memory (default: 256)
	Workers  int // Checksum workers per package (default: GOMAXPROCS)
}

// WithDefaults returns a copy of Options with zero values replaced by defaults.
func (o Options) WithDefaults() Options {
	opts := o
	if opts.MaxNodes <= 0 {
		opts.MaxNodes = DefaultMaxNodes
	}
	if opts.MemoSize <= 0 {
		opts.MemoSize = DefaultMemoSize
	}
	return opts
}

// Puller fetches dependency trees into a [store.Store].
type Puller struct {
	Fetcher  fetch.Fetcher
	Store    *store.Store
	ReadFile properties.ReadFileFunc // nil means os.ReadFile

	// ScratchDir receives in-flight fetches. Empty means the store directory,
	// which keeps the final rename on one file system.
	ScratchDir string

	Options Options
	Logger  *log.Logger

	memo *lru.Cache[checksum.Sum, *manifest.Config]
}

type pullItem struct {
	dep    manifest.Dependency
	parent *TreeNode
	depth  int
}

type visitKey struct {
	name, identity string
}

// Pull resolves deps and everything they depend on. It returns one root
// node per entry of deps, in the same order.
//
// Work proceeds breadth first from an explicit queue. A (name, source)
// pair already pulled is linked again instead of being fetched twice.
func (p *Puller) Pull(ctx context.Context, deps []manifest.Dependency) ([]*TreeNode, error) {
	opts := p.Options.WithDefaults()
	logger := p.logger()
	if p.memo == nil {
		memo, err := lru.New[checksum.Sum, *manifest.Config](opts.MemoSize)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInternal, err, "manifest memo")
		}
		p.memo = memo
	}

	queue := make([]pullItem, 0, len(deps))
	for _, d := range deps {
		queue = append(queue, pullItem{dep: d})
	}

	var roots []*TreeNode
	visited := make(map[visitKey]*TreeNode)
	order := 0

	for len(queue) > 0 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		item := queue[0]
		queue = queue[1:]

		key := visitKey{item.dep.Name, item.dep.Details.Identity()}
		if node, ok := visited[key]; ok {
			if err := checkRequirement(item.dep, node); err != nil {
				return nil, err
			}
			node.Requirements = append(node.Requirements, item.dep.Details.Requirement)
			attach(&roots, item.parent, node)
			logger.Debug("dependency already pulled", "name", node.Name, "version", node.Version)
			continue
		}
		if len(visited) >= opts.MaxNodes {
			return nil, errors.New(errors.ErrCodeInternal, "dependency graph exceeds %d packages", opts.MaxNodes)
		}

		node, cfg, err := p.pullOne(ctx, item, opts)
		if err != nil {
			return nil, err
		}
		node.Order = order
		order++
		visited[key] = node
		attach(&roots, item.parent, node)

		for _, d := range cfg.Dependencies {
			queue = append(queue, pullItem{dep: d, parent: node, depth: item.depth + 1})
		}
	}
	return roots, nil
}

func (p *Puller) pullOne(ctx context.Context, item pullItem, opts Options) (*TreeNode, *manifest.Config, error) {
	dep := item.dep
	logger := p.logger()

	scratchRoot := p.ScratchDir
	if scratchRoot == "" {
		scratchRoot = p.Store.Dir()
	}
	scratch := filepath.Join(scratchRoot, ".pull-"+uuid.NewString())
	if err := os.MkdirAll(scratch, 0o755); err != nil {
		return nil, nil, errors.Wrap(errors.ErrCodeFetchFailed, err, "create scratch directory for %s", dep.Name)
	}
	defer os.RemoveAll(scratch)

	hooks := observability.Resolve()
	hooks.OnFetch(ctx, dep.Name, dep.Details.Source.String())
	start := time.Now()
	rev, err := p.Fetcher.Fetch(ctx, dep.Name, dep.Details, scratch)
	hooks.OnFetchComplete(ctx, dep.Name, time.Since(start), err)
	if err != nil {
		return nil, nil, err
	}

	sum, err := checksum.Dir(ctx, scratch, checksum.Options{Workers: opts.Workers})
	if err != nil {
		return nil, nil, errors.Wrap(errors.ErrCodeFetchFailed, err, "checksum %s", dep.Name)
	}
	location, err := p.Store.Put(sum, scratch)
	if err != nil {
		return nil, nil, errors.Wrap(errors.ErrCodeFetchFailed, err, "store %s", dep.Name)
	}

	cfg, err := p.config(sum, location)
	if err != nil {
		return nil, nil, errors.Wrap(errors.ErrCodeInvalidManifest, err, "package %s", dep.Name)
	}
	if cfg.Library == nil {
		return nil, nil, errors.New(errors.ErrCodeNoLibraryExported, "package %s (%s) does not export a library", dep.Name, dep.Details.Source)
	}

	details := dep.Details
	details.ResolvedRev = rev
	node := &TreeNode{
		Name:         dep.Name,
		Version:      cfg.Package.Version,
		Details:      details,
		Requirements: []version.Requirement{dep.Details.Requirement},
		Location:     location,
		IncludePath:  relOrAbs(location, cfg.Library.Location),
		Hash:         sum,
		Properties:   cfg.Library.Properties,
		Depth:        item.depth,
	}
	if err := checkRequirement(dep, node); err != nil {
		return nil, nil, err
	}

	logger.Info("pulled dependency", "name", dep.Name, "version", node.Version, "checksum", sum.String()[:12])
	return node, cfg, nil
}

// config parses the manifest of a stored package, memoized by content hash.
func (p *Puller) config(sum checksum.Sum, location string) (*manifest.Config, error) {
	if cfg, ok := p.memo.Get(sum); ok {
		return cfg, nil
	}
	f, err := manifest.Load(filepath.Join(location, manifest.FileName), p.ReadFile)
	if err != nil {
		return nil, err
	}
	cfg, err := f.ToConfig(location, p.ReadFile)
	if err != nil {
		return nil, err
	}
	p.memo.Add(sum, cfg)
	return cfg, nil
}

func (p *Puller) logger() *log.Logger {
	if p.Logger != nil {
		return p.Logger
	}
	return log.Default()
}

func checkRequirement(dep manifest.Dependency, node *TreeNode) error {
	if dep.Details.Requirement.Matches(node.Version) {
		return nil
	}
	return errors.New(errors.ErrCodeVersionMismatch,
		"%s: requested version %s got version %s", dep.Name, dep.Details.Requirement, node.Version)
}

func attach(roots *[]*TreeNode, parent, node *TreeNode) {
	if parent == nil {
		*roots = append(*roots, node)
		return
	}
	for _, c := range parent.Children {
		if c == node {
			return
		}
	}
	parent.Children = append(parent.Children, node)
}

func relOrAbs(base, path string) string {
	rel, err := filepath.Rel(base, path)
	if err != nil {
		return path
	}
	return filepath.ToSlash(rel)
}
