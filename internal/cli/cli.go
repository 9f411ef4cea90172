// Package cli implements the lingo command-line interface.
package cli

import (
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/lingo-build/lingo/pkg/build"
	"github.com/lingo-build/lingo/pkg/buildinfo"
	"github.com/lingo-build/lingo/pkg/cache"
	"github.com/lingo-build/lingo/pkg/fetch"
	"github.com/lingo-build/lingo/pkg/httputil"
	"github.com/lingo-build/lingo/pkg/manifest"
	"github.com/lingo-build/lingo/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = "lingo"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	// Out receives status lines and command output. Err receives the
	// output of external tools.
	Out io.Writer
	Err io.Writer

	// Environment capabilities. Tests replace them with fakes.
	exec  build.Runner
	which fetch.WhichFunc
	clone fetch.CloneAndCheckoutFunc
	getwd func() (string, error)
}

// New creates a new CLI instance with a default logger writing to w.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		Out:    os.Stdout,
		Err:    w,
		which:  fetch.Which,
		clone:  fetch.GitCloneAndCheckout,
		getwd:  os.Getwd,
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
	if level == LogDebug {
		registerLogHooks(c.Logger)
	}
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "Lingo manages Lingua Franca packages and builds their apps",
		Long:         `Lingo is the package manager and build tool for Lingua Franca. It resolves the dependencies declared in Lingo.toml, locks them in Lingo.lock and drives lfc, CMake, npm, pnpm and Cargo to build every app of a project.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.SetOut(c.Out)

	root.AddCommand(c.initCommand())
	root.AddCommand(c.buildCommand())
	root.AddCommand(c.updateCommand())
	root.AddCommand(c.cleanCommand())
	root.AddCommand(c.runCommand())
	root.AddCommand(c.treeCommand())
	root.AddCommand(c.storeCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Project Session
// =============================================================================

// project is a loaded Lingo.toml together with the runner that serves it.
type project struct {
	cfg      *manifest.Config
	settings settings
	runner   *pipeline.Runner
}

// openProject loads the manifest above the working directory and wires a
// pipeline runner for it.
func (c *CLI) openProject() (*project, error) {
	wd, err := c.getwd()
	if err != nil {
		return nil, err
	}

	runner := pipeline.NewRunner(nil, nil, c.Logger)
	cfg, err := runner.Load(wd)
	if err != nil {
		return nil, err
	}
	s, err := loadSettings(cfg.Root, os.LookupEnv)
	if err != nil {
		return nil, err
	}
	c.Logger.Debug("loaded project", "root", cfg.Root, "apps", len(cfg.Apps), "dependencies", len(cfg.Dependencies))

	exec := c.runner()
	runner.Fetcher = &fetch.Sources{
		Root:             cfg.Root,
		CloneAndCheckout: c.clone,
		Downloader: &httputil.Downloader{
			Cache:     newCache(s.CacheDir),
			UserAgent: buildinfo.UserAgent(),
		},
		Logger: c.Logger,
	}
	runner.Orchestrator = build.NewOrchestrator(exec, c.which, c.Logger)
	runner.Exec = exec

	return &project{cfg: cfg, settings: s, runner: runner}, nil
}

func (c *CLI) runner() build.Runner {
	if c.exec != nil {
		return c.exec
	}
	return &build.ExecRunner{Stdout: c.Out, Stderr: c.Err, Logger: c.Logger}
}

// newCache opens the download cache, falling back to no cache when the
// directory cannot be created.
func newCache(dir string) cache.Cache {
	fc, err := cache.NewFileCache(dir)
	if err != nil {
		return cache.NewNullCache()
	}
	return fc
}
