package build

import (
	"context"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/lingo-build/lingo/pkg/manifest"
)

// CargoBackend builds Rust apps: lfc generates a crate per app and cargo
// compiles it.
type CargoBackend struct {
	Runner Runner
}

// Execute implements [Backend].
func (b *CargoBackend) Execute(ctx context.Context, spec CommandSpec, r *Results) {
	switch s := spec.(type) {
	case Build:
		b.build(ctx, s, r)
	case Clean:
		r.ParallelMap(ctx, func(_ context.Context, app *manifest.App) error {
			return cleanOutput(app.OutputRoot)
		})
	}
}

func (b *CargoBackend) build(ctx context.Context, opts Build, r *Results) {
	r.ParallelMap(ctx, func(ctx context.Context, app *manifest.App) error {
		return codegen(ctx, b.Runner, app, opts, false)
	})
	if !opts.CompileTargetCode {
		return
	}

	r.ParallelMap(ctx, func(ctx context.Context, app *manifest.App) error {
		args := []string{"build"}
		if opts.Profile == Release {
			args = append(args, "--release")
		}
		return b.Runner.Run(ctx, Command{Name: "cargo", Args: args, Dir: appGenDir(app)})
	}).Map(ctx, func(_ context.Context, app *manifest.App) error {
		built := filepath.Join(appGenDir(app), "target", opts.Profile.String(), crateName(app.MainReactorName))
		return installExecutable(app, built)
	})
}

// crateName converts a reactor name to the snake_case crate name the Rust
// code generator uses.
func crateName(reactor string) string {
	var sb strings.Builder
	runes := []rune(reactor)
	for i, r := range runes {
		if unicode.IsUpper(r) {
			if i > 0 && (unicode.IsLower(runes[i-1]) || (i+1 < len(runes) && unicode.IsLower(runes[i+1]))) {
				sb.WriteByte('_')
			}
			r = unicode.ToLower(r)
		}
		sb.WriteRune(r)
	}
	return sb.String()
}
