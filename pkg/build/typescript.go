package build

import (
	"context"
	"path/filepath"

	"github.com/lingo-build/lingo/pkg/manifest"
)

// Tool describes a Node.js package manager.
type Tool struct {
	Binary        string
	Install       string
	ReleaseFlag   string
	BuildsRuntime bool // the runtime must be built by hand after install
}

// Package managers the TypeScript backend can drive.
var (
	NpmTool  = Tool{Binary: "npm", Install: "install", ReleaseFlag: "--production", BuildsRuntime: true}
	PnpmTool = Tool{Binary: "pnpm", Install: "install", ReleaseFlag: "--prod"}
)

// runtimePackage is the reactor-ts checkout npm leaves unbuilt.
var runtimePackage = filepath.Join("node_modules", "@lf-lang", "reactor-ts")

// TypeScriptBackend builds TypeScript apps: lfc generates a Node.js project,
// the package manager installs its dependencies and the compiled entry
// point is copied to the app's executable path.
type TypeScriptBackend struct {
	Runner Runner
	Tool   Tool
}

// Execute implements [Backend].
func (b *TypeScriptBackend) Execute(ctx context.Context, spec CommandSpec, r *Results) {
	switch s := spec.(type) {
	case Build:
		b.build(ctx, s, r)
	case Clean:
		r.ParallelMap(ctx, func(_ context.Context, app *manifest.App) error {
			return cleanOutput(app.OutputRoot, "node_modules", "dist")
		})
	}
}

func (b *TypeScriptBackend) build(ctx context.Context, opts Build, r *Results) {
	r.ParallelMap(ctx, func(ctx context.Context, app *manifest.App) error {
		return codegen(ctx, b.Runner, app, opts, false)
	})
	if !opts.CompileTargetCode {
		return
	}

	r.Map(ctx, func(ctx context.Context, app *manifest.App) error {
		args := []string{b.Tool.Install}
		if opts.Profile == Release {
			args = append(args, b.Tool.ReleaseFlag)
		}
		return b.Runner.Run(ctx, Command{Name: b.Tool.Binary, Args: args, Dir: appGenDir(app)})
	})

	if b.Tool.BuildsRuntime {
		r.Map(ctx, func(ctx context.Context, app *manifest.App) error {
			dir := filepath.Join(appGenDir(app), runtimePackage)
			return b.Runner.Run(ctx, Command{Name: b.Tool.Binary, Args: []string{"run", "build"}, Dir: dir})
		})
	}

	r.Map(ctx, func(ctx context.Context, app *manifest.App) error {
		return b.Runner.Run(ctx, Command{Name: b.Tool.Binary, Args: []string{"run", "build"}, Dir: appGenDir(app)})
	}).Map(ctx, func(_ context.Context, app *manifest.App) error {
		return installExecutable(app, filepath.Join(appGenDir(app), "dist", app.MainReactorName+".js"))
	})
}
