package build

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/lingo-build/lingo/pkg/errors"
	"github.com/lingo-build/lingo/pkg/fetch"
	"github.com/lingo-build/lingo/pkg/manifest"
	"github.com/lingo-build/lingo/pkg/observability"
)

// Backend applies a command to one group of apps sharing a build system and
// target language. Failures are recorded in r, never returned.
type Backend interface {
	Execute(ctx context.Context, spec CommandSpec, r *Results)
}

// DefaultBackends returns a backend for every build system, all running
// their commands through runner.
func DefaultBackends(runner Runner) map[BuildSystem]Backend {
	return map[BuildSystem]Backend{
		LFC:   &LFCBackend{Runner: runner},
		CMake: &CMakeBackend{Runner: runner},
		Npm:   &TypeScriptBackend{Runner: runner, Tool: NpmTool},
		Pnpm:  &TypeScriptBackend{Runner: runner, Tool: PnpmTool},
		Cargo: &CargoBackend{Runner: runner},
	}
}

// Orchestrator partitions a batch of apps and dispatches each group to its
// backend.
type Orchestrator struct {
	Which    fetch.WhichFunc
	Backends map[BuildSystem]Backend
	Logger   *log.Logger
}

// NewOrchestrator returns an orchestrator using the default backends over
// runner. Nil which and logger fall back to defaults.
func NewOrchestrator(runner Runner, which fetch.WhichFunc, logger *log.Logger) *Orchestrator {
	if which == nil {
		which = fetch.Which
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Orchestrator{
		Which:    which,
		Backends: DefaultBackends(runner),
		Logger:   logger,
	}
}

type groupKey struct {
	system BuildSystem
	target manifest.TargetLanguage
}

type group struct {
	key  groupKey
	apps []*manifest.App
}

// partition groups apps by build system and target language. Groups appear
// in the order their first app does.
func (o *Orchestrator) partition(apps []*manifest.App) []group {
	var groups []group
	index := make(map[groupKey]int)
	for _, app := range apps {
		k := groupKey{SystemFor(app, o.Which), app.Target}
		i, ok := index[k]
		if !ok {
			i = len(groups)
			index[k] = i
			groups = append(groups, group{key: k})
		}
		groups[i].apps = append(groups[i].apps, app)
	}
	return groups
}

// Execute runs spec over apps and returns one outcome per app, sorted by
// app name. With keep-going disabled a failed group aborts every group
// after it.
func (o *Orchestrator) Execute(ctx context.Context, spec CommandSpec, apps []*manifest.App) *Results {
	logger := o.Logger
	if logger == nil {
		logger = log.Default()
	}
	logger = logger.With("run", uuid.NewString()[:8])
	keepGoing, threads := policy(spec)
	hooks := observability.Build()

	merged := NewResults(nil, keepGoing, threads)
	var failed error
	for _, g := range o.partition(apps) {
		r := NewResults(g.apps, keepGoing, threads)
		names := appNames(g.apps)

		switch {
		case failed != nil:
			r.Abort(failed)
		default:
			backend, ok := o.Backends[g.key.system]
			if !ok {
				err := errors.New(errors.ErrCodeUnsupported, "no backend for build system %s", g.key.system)
				for i := range r.outcomes {
					r.outcomes[i].Err = err
				}
				break
			}
			logger.Debug("running group", "command", spec.commandName(),
				"system", g.key.system, "target", g.key.target, "apps", names)
			hooks.OnGroupStart(ctx, g.key.system.String(), names)

			start := time.Now()
			backend.Execute(ctx, spec, r)
			elapsed := time.Since(start)
			for _, out := range r.outcomes {
				hooks.OnAppComplete(ctx, out.App.Name, elapsed, out.Err)
			}
		}

		if !keepGoing && failed == nil {
			failed = firstErr(r)
		}
		merged.Merge(r)
	}

	merged.Sort()
	logger.Debug("batch finished", "command", spec.commandName(),
		"apps", merged.Len(), "failed", merged.Failed())
	return merged
}

func firstErr(r *Results) error {
	for _, o := range r.outcomes {
		if o.Err != nil {
			return o.Err
		}
	}
	return nil
}

func appNames(apps []*manifest.App) []string {
	names := make([]string, len(apps))
	for i, app := range apps {
		names[i] = app.Name
	}
	return names
}
