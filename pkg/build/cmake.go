package build

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/lingo-build/lingo/pkg/errors"
	"github.com/lingo-build/lingo/pkg/manifest"
	"github.com/lingo-build/lingo/pkg/properties"
)

// CMakeBackend builds C and C++ apps. lfc generates a CMake project per app,
// the aggregated library snippet is included into it and CMake compiles it.
//
// C projects are configured and built one app at a time. C++ projects share
// one build tree, so a single cmake --build invocation compiles every app of
// the group.
type CMakeBackend struct {
	Runner Runner
}

// Execute implements [Backend].
func (b *CMakeBackend) Execute(ctx context.Context, spec CommandSpec, r *Results) {
	switch s := spec.(type) {
	case Build:
		b.build(ctx, s, r)
	case Clean:
		r.ParallelMap(ctx, func(_ context.Context, app *manifest.App) error {
			return cleanOutput(app.OutputRoot)
		})
	}
}

func (b *CMakeBackend) build(ctx context.Context, opts Build, r *Results) {
	r.ParallelMap(ctx, func(ctx context.Context, app *manifest.App) error {
		return codegen(ctx, b.Runner, app, opts, false)
	})
	if !opts.CompileTargetCode {
		return
	}

	r.Map(ctx, func(ctx context.Context, app *manifest.App) error {
		return b.configure(ctx, app, opts)
	})

	if cpp(r) {
		r.Gather(ctx, func(ctx context.Context, apps []*manifest.App) error {
			args := []string{"--build", "."}
			for _, app := range apps {
				args = append(args, "--target", app.MainReactorName)
			}
			return b.Runner.Run(ctx, Command{Name: "cmake", Args: args, Dir: cmakeBuildDir(apps[0])})
		}).Map(ctx, func(ctx context.Context, app *manifest.App) error {
			return b.Runner.Run(ctx, Command{Name: "cmake", Args: []string{"--install", "."}, Dir: cmakeBuildDir(app)})
		}).Map(ctx, func(_ context.Context, app *manifest.App) error {
			return installExecutable(app, filepath.Join(app.BinDir(), app.MainReactorName))
		})
		return
	}

	r.Map(ctx, func(ctx context.Context, app *manifest.App) error {
		args := []string{"--build", ".", "--target", app.MainReactorName}
		return b.Runner.Run(ctx, Command{Name: "cmake", Args: args, Dir: appGenDir(app)})
	}).Map(ctx, func(_ context.Context, app *manifest.App) error {
		return installExecutable(app, filepath.Join(appGenDir(app), app.MainReactorName))
	})
}

// configure writes the app's aggregated include, hooks it into the
// generated CMakeLists.txt and runs the CMake configure step.
func (b *CMakeBackend) configure(ctx context.Context, app *manifest.App, opts Build) error {
	buildDir := cmakeBuildDir(app)
	if err := os.MkdirAll(buildDir, 0o755); err != nil {
		return err
	}
	folder := appGenDir(app)
	if err := app.Properties.WriteArtifacts(folder); err != nil {
		return fmt.Errorf("write properties: %w", err)
	}

	include := "./" + properties.AggregatedCMakeInclude
	if app.Target == manifest.Cpp {
		include = filepath.ToSlash(filepath.Join(folder, properties.AggregatedCMakeInclude))
	}
	if err := appendInclude(filepath.Join(folder, "CMakeLists.txt"), include); err != nil {
		return err
	}

	srcDir, ok := app.SrcDir()
	if !ok {
		return errors.New(errors.ErrCodeInvalidManifest, "main reactor %s is not inside a src directory", app.Main)
	}

	args := []string{
		"-DCMAKE_BUILD_TYPE=" + opts.Profile.CMakeBuildType(),
		"-DCMAKE_INSTALL_PREFIX=" + app.OutputRoot,
		"-DCMAKE_INSTALL_BINDIR=bin",
	}
	if app.Target == manifest.Cpp {
		args = append(args,
			"-DREACTOR_CPP_VALIDATE=ON",
			"-DREACTOR_CPP_TRACE=OFF",
			"-DREACTOR_CPP_LOG_LEVEL=3",
			"-DLF_SRC_PKG_PATH="+srcDir,
			app.SrcGenDir(), "-B", buildDir,
		)
	} else {
		args = append(args,
			"-DLF_SOURCE_DIRECTORY="+srcDir,
			"-DLF_PACKAGE_DIRECTORY="+app.Root,
			"-DLF_SOURCE_GEN_DIRECTORY="+folder,
			"-DLF_FILE_SEPARATOR="+string(filepath.Separator),
			folder, "-B", folder,
		)
	}
	return b.Runner.Run(ctx, Command{Name: "cmake", Args: args, Dir: buildDir})
}

func cmakeBuildDir(app *manifest.App) string {
	return filepath.Join(app.OutputRoot, "build")
}

// cpp reports whether the batch holds C++ apps. Groups never mix targets.
func cpp(r *Results) bool {
	return r.Len() > 0 && r.outcomes[0].App.Target == manifest.Cpp
}

// appendInclude adds an include() of path to the end of a CMakeLists.txt.
func appendInclude(cmakeLists, path string) error {
	f, err := os.OpenFile(cmakeLists, os.O_WRONLY|os.O_APPEND, 0)
	if err != nil {
		return fmt.Errorf("open generated CMakeLists.txt: %w", err)
	}
	if _, err := fmt.Fprintf(f, "\ninclude(%s)", path); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
