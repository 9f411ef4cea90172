package build

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/lingo-build/lingo/pkg/manifest"
)

// buildDirs are the directories under an app's output root that clean
// removes.
var buildDirs = []string{"bin", "include", "src-gen", "lib64", "share", "build"}

// LFCBackend builds apps whose target the lfc compiler handles end to end.
type LFCBackend struct {
	Runner Runner
}

// Execute implements [Backend].
func (b *LFCBackend) Execute(ctx context.Context, spec CommandSpec, r *Results) {
	switch s := spec.(type) {
	case Build:
		r.ParallelMap(ctx, func(ctx context.Context, app *manifest.App) error {
			return codegen(ctx, b.Runner, app, s, s.CompileTargetCode)
		})
	case Clean:
		r.ParallelMap(ctx, func(_ context.Context, app *manifest.App) error {
			return cleanOutput(app.OutputRoot)
		})
	}
}

// codegen runs lfc on the app's main reactor. With compile false lfc only
// generates sources and leaves compilation to the caller.
func codegen(ctx context.Context, runner Runner, app *manifest.App, opts Build, compile bool) error {
	args := []string{"-o", app.SrcGenDir(), app.Main}
	if !compile {
		args = append(args, "--no-compile")
	}
	return runner.Run(ctx, Command{Name: opts.lfc(), Args: args, Dir: app.Root})
}

// appGenDir is where lfc places the generated project of app.
func appGenDir(app *manifest.App) string {
	return filepath.Join(app.SrcGenDir(), app.MainReactorName)
}

// cleanOutput removes the build directories under root plus any extra
// subdirectories. Missing directories are fine.
func cleanOutput(root string, extra ...string) error {
	for _, dir := range append(append([]string(nil), buildDirs...), extra...) {
		if err := os.RemoveAll(filepath.Join(root, dir)); err != nil {
			return fmt.Errorf("clean %s: %w", dir, err)
		}
	}
	return nil
}

// installExecutable moves a built binary to the app's executable path.
func installExecutable(app *manifest.App, built string) error {
	if err := os.MkdirAll(app.BinDir(), 0o755); err != nil {
		return err
	}
	if err := os.Rename(built, app.ExecutablePath()); err != nil {
		return fmt.Errorf("install %s: %w", app.Name, err)
	}
	return nil
}
