package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lingo-build/lingo/pkg/build"
	"github.com/lingo-build/lingo/pkg/errors"
	"github.com/lingo-build/lingo/pkg/pipeline"
)

// buildFlags holds the flags shared by build and run.
type buildFlags struct {
	apps      []string
	release   bool
	noCompile bool
	lfc       string
	jobs      int
	keepGoing bool
}

func (f *buildFlags) register(cmd *cobra.Command, compileFlag bool) {
	cmd.Flags().StringSliceVarP(&f.apps, "app", "a", nil, "apps to build (default: all)")
	cmd.Flags().BoolVar(&f.release, "release", false, "build with the release profile")
	cmd.Flags().StringVar(&f.lfc, "lfc", "", "path to the lfc code generator (default: lfc on PATH)")
	cmd.Flags().IntVarP(&f.jobs, "jobs", "j", 0, "parallel jobs per stage (default: $"+envMaxThreads+" or CPU count)")
	cmd.Flags().BoolVar(&f.keepGoing, "keep-going", false, "continue with other apps after a failure (default: $"+envKeepGoing+")")
	if compileFlag {
		cmd.Flags().BoolVar(&f.noCompile, "no-compile", false, "only generate code, do not invoke the target toolchain")
	}
}

// options merges the flags over the project settings. A flag that was not
// given falls back to its environment default.
func (f *buildFlags) options(cmd *cobra.Command, s settings) pipeline.Options {
	spec := build.Build{
		CompileTargetCode: !f.noCompile,
		LFCPath:           f.lfc,
		Threads:           s.Threads,
		KeepGoing:         s.KeepGoing,
	}
	if f.release {
		spec.Profile = build.Release
	}
	if cmd.Flags().Changed("jobs") {
		spec.Threads = f.jobs
	}
	if cmd.Flags().Changed("keep-going") {
		spec.KeepGoing = f.keepGoing
	}
	return pipeline.Options{Apps: f.apps, Build: spec}
}

// stageFunc runs one pipeline command.
type stageFunc func(ctx context.Context, p *project) (*pipeline.Result, error)

// buildCommand creates the build command.
func (c *CLI) buildCommand() *cobra.Command {
	var flags buildFlags
	cmd := &cobra.Command{
		Use:   "build",
		Short: "Resolve dependencies and build apps",
		Long: `Build resolves the dependencies of the current project, reusing Lingo.lock when
it is still valid, and builds the selected apps with the toolchain of their target.`,
		Example: `  lingo build
  lingo build -a blinky --release
  lingo build --no-compile -j 4`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.execute(cmd, "built", func(ctx context.Context, p *project) (*pipeline.Result, error) {
				return p.runner.Build(ctx, p.cfg, flags.options(cmd, p.settings))
			})
		},
	}
	flags.register(cmd, true)
	return cmd
}

// updateCommand creates the update command.
func (c *CLI) updateCommand() *cobra.Command {
	var apps []string
	cmd := &cobra.Command{
		Use:   "update",
		Short: "Re-resolve dependencies and rewrite Lingo.lock",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.execute(cmd, "updated", func(ctx context.Context, p *project) (*pipeline.Result, error) {
				return p.runner.Update(ctx, p.cfg, pipeline.Options{Apps: apps})
			})
		},
	}
	cmd.Flags().StringSliceVarP(&apps, "app", "a", nil, "apps to update (default: all)")
	return cmd
}

// cleanCommand creates the clean command.
func (c *CLI) cleanCommand() *cobra.Command {
	var apps []string
	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Remove build artifacts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.execute(cmd, "cleaned", func(ctx context.Context, p *project) (*pipeline.Result, error) {
				return p.runner.Clean(ctx, p.cfg, pipeline.Options{Apps: apps})
			})
		},
	}
	cmd.Flags().StringSliceVarP(&apps, "app", "a", nil, "apps to clean (default: all)")
	return cmd
}

// runCommand creates the run command.
func (c *CLI) runCommand() *cobra.Command {
	var flags buildFlags
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Build apps and run them",
		Example: `  lingo run
  lingo run -a blinky --release`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.execute(cmd, "ran", func(ctx context.Context, p *project) (*pipeline.Result, error) {
				return p.runner.Run(ctx, p.cfg, flags.options(cmd, p.settings))
			})
		},
	}
	flags.register(cmd, false)
	return cmd
}

// execute opens the project, runs stage and reports one line per app. It
// fails when any app failed.
func (c *CLI) execute(cmd *cobra.Command, verb string, stage stageFunc) error {
	p, err := c.openProject()
	if err != nil {
		return err
	}

	prog := newProgress(c.Logger)
	res, err := stage(cmd.Context(), p)
	if err != nil {
		return err
	}

	if res.Resolution != nil {
		printResolution(c.Out, res.Stats)
	}
	printOutcomes(c.Out, res.Results, verb)
	if n := res.Results.Failed(); n > 0 {
		if err := cmd.Context().Err(); err != nil {
			return err
		}
		if aborted(res.Results) {
			printWarning(c.Out, "stopped after the first failure; use --keep-going to build the remaining apps")
		}
		return fmt.Errorf("%d of %s failed", n, plural(res.Results.Len(), "app"))
	}
	prog.done(fmt.Sprintf("%s %s", verb, plural(res.Results.Len(), "app")))
	return nil
}

// aborted reports whether any app was skipped because another one failed.
func aborted(results *build.Results) bool {
	for _, o := range results.Outcomes() {
		if errors.Is(o.Err, errors.ErrCodeAborted) {
			return true
		}
	}
	return false
}
