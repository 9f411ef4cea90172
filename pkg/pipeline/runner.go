package pipeline

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"

	"github.com/lingo-build/lingo/pkg/build"
	"github.com/lingo-build/lingo/pkg/deps"
	"github.com/lingo-build/lingo/pkg/fetch"
	"github.com/lingo-build/lingo/pkg/lock"
	"github.com/lingo-build/lingo/pkg/manifest"
	"github.com/lingo-build/lingo/pkg/properties"
	"github.com/lingo-build/lingo/pkg/render/nodelink"
	"github.com/lingo-build/lingo/pkg/render/tree"
)

// Runner executes lingo commands against a project.
//
// The Runner holds no per-project state; the same Runner can serve several
// commands in sequence.
type Runner struct {
	Fetcher      fetch.Fetcher
	ReadFile     properties.ReadFileFunc
	Orchestrator *build.Orchestrator

	// Exec runs built executables for [Runner.Run].
	Exec build.Runner

	// Resolve bounds dependency pulling.
	Resolve deps.Options

	// Strict turns version ties between different sources into errors.
	Strict bool

	Logger *log.Logger
}

// NewRunner creates a runner. A nil logger uses log.Default().
func NewRunner(fetcher fetch.Fetcher, orchestrator *build.Orchestrator, logger *log.Logger) *Runner {
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Fetcher:      fetcher,
		Orchestrator: orchestrator,
		Exec:         &build.ExecRunner{Logger: logger},
		Logger:       logger,
	}
}

// Load finds Lingo.toml in dir or its parents and converts it to a config.
func (r *Runner) Load(dir string) (*manifest.Config, error) {
	path, err := manifest.Find(dir)
	if err != nil {
		return nil, err
	}
	f, err := manifest.Load(path, r.ReadFile)
	if err != nil {
		return nil, err
	}
	return f.ToConfig(filepath.Dir(path), r.ReadFile)
}

// Build resolves dependencies and builds the selected apps.
func (r *Runner) Build(ctx context.Context, cfg *manifest.Config, opts Options) (*Result, error) {
	return r.execute(ctx, cfg, opts, opts.Build)
}

// Update re-resolves dependencies, ignoring any existing lock, then lets
// each backend refresh its toolchain state.
func (r *Runner) Update(ctx context.Context, cfg *manifest.Config, opts Options) (*Result, error) {
	opts.Force = true
	return r.execute(ctx, cfg, opts, build.Update{})
}

// Clean removes the build artifacts of the selected apps. Dependencies are
// not resolved.
func (r *Runner) Clean(ctx context.Context, cfg *manifest.Config, opts Options) (*Result, error) {
	apps, err := cfg.SelectApps(opts.Apps)
	if err != nil {
		return nil, err
	}
	start := time.Now()
	results := r.Orchestrator.Execute(ctx, build.Clean{}, apps)
	return &Result{
		Config:  cfg,
		Results: results,
		Stats:   Stats{ExecuteTime: time.Since(start)},
	}, nil
}

// Run builds the selected apps and executes each one that built. An app
// that fails to build is not run; a run failure is recorded like a build
// failure.
func (r *Runner) Run(ctx context.Context, cfg *manifest.Config, opts Options) (*Result, error) {
	opts.Build.CompileTargetCode = true
	res, err := r.Build(ctx, cfg, opts)
	if err != nil {
		return nil, err
	}

	exec := r.Exec
	if exec == nil {
		exec = &build.ExecRunner{Logger: r.logger()}
	}
	res.Results.Map(ctx, func(ctx context.Context, app *manifest.App) error {
		r.logger().Info("running app", "app", app.Name)
		return exec.Run(ctx, runCommand(app))
	})
	return res, nil
}

// runCommand returns the command that starts a built app.
func runCommand(app *manifest.App) build.Command {
	if app.Target == manifest.TypeScript {
		return build.Command{Name: "node", Args: []string{app.ExecutablePath()}, Dir: app.Root}
	}
	return build.Command{Name: app.ExecutablePath(), Dir: app.Root}
}

// Tree resolves dependencies and renders the dependency graph in format.
func (r *Runner) Tree(ctx context.Context, cfg *manifest.Config, format string, detailed bool) ([]byte, error) {
	if err := ValidateFormat(format); err != nil {
		return nil, err
	}
	res, err := r.resolve(ctx, cfg, false)
	if err != nil {
		return nil, err
	}

	roots := res.Roots
	if res.FromLock {
		roots = res.Lock.Roots(cfg.Dependencies)
	}
	g := deps.Graph(roots)

	if format == FormatText {
		return []byte(tree.String(g, cfg.Package.Name)), nil
	}
	dot := nodelink.ToDOT(g, nodelink.Options{Detailed: detailed, Title: cfg.Package.Name})
	switch format {
	case FormatDOT:
		return []byte(dot), nil
	case FormatSVG:
		return nodelink.RenderSVG(ctx, dot)
	case FormatPNG:
		return nodelink.RenderPNG(ctx, dot, 2.0)
	default:
		return nodelink.RenderPDF(ctx, dot)
	}
}

func (r *Runner) execute(ctx context.Context, cfg *manifest.Config, opts Options, spec build.CommandSpec) (*Result, error) {
	apps, err := cfg.SelectApps(opts.Apps)
	if err != nil {
		return nil, err
	}

	resolveStart := time.Now()
	res, err := r.resolve(ctx, cfg, opts.Force)
	if err != nil {
		return nil, fmt.Errorf("resolve: %w", err)
	}
	result := &Result{
		Config:     cfg,
		Resolution: res,
		Stats: Stats{
			Packages:    len(res.Lock.Entries),
			FromLock:    res.FromLock,
			ResolveTime: time.Since(resolveStart),
		},
	}
	r.logger().Info("resolved dependencies",
		"packages", result.Stats.Packages,
		"from_lock", res.FromLock,
		"duration", result.Stats.ResolveTime)

	apps = withLibraryProperties(apps, res)

	executeStart := time.Now()
	result.Results = r.Orchestrator.Execute(ctx, spec, apps)
	result.Stats.ExecuteTime = time.Since(executeStart)
	r.logger().Debug("executed batch",
		"apps", result.Results.Len(),
		"failed", result.Results.Failed(),
		"duration", result.Stats.ExecuteTime)
	return result, nil
}

func (r *Runner) resolve(ctx context.Context, cfg *manifest.Config, force bool) (*lock.Resolution, error) {
	m := &lock.Manager{
		Fetcher:  r.Fetcher,
		ReadFile: r.ReadFile,
		Options:  r.Resolve,
		Strict:   r.Strict,
		Logger:   r.logger(),
	}
	return m.Resolve(ctx, cfg, force)
}

// withLibraryProperties returns copies of apps with the aggregated
// properties of every locked library merged in.
func withLibraryProperties(apps []*manifest.App, res *lock.Resolution) []*manifest.App {
	if len(res.Lock.Entries) == 0 {
		return apps
	}
	lib := res.Properties()
	out := make([]*manifest.App, len(apps))
	for i, app := range apps {
		cp := *app
		cp.Properties.Merge(lib)
		out[i] = &cp
	}
	return out
}

func (r *Runner) logger() *log.Logger {
	if r.Logger == nil {
		return log.Default()
	}
	return r.Logger
}
