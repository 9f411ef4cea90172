package lock

import (
	"context"
	"os"
	"time"

	"github.com/charmbracelet/log"

	"github.com/lingo-build/lingo/pkg/deps"
	"github.com/lingo-build/lingo/pkg/errors"
	"github.com/lingo-build/lingo/pkg/fetch"
	"github.com/lingo-build/lingo/pkg/manifest"
	"github.com/lingo-build/lingo/pkg/observability"
	"github.com/lingo-build/lingo/pkg/properties"
	"github.com/lingo-build/lingo/pkg/store"
)

// Manager resolves the dependencies of a project, preferring a valid lock.
type Manager struct {
	Fetcher  fetch.Fetcher
	ReadFile properties.ReadFileFunc
	Options  deps.Options

	// Strict makes equal-version candidates with different content an
	// AMBIGUOUS_VERSION error instead of applying the tie-break.
	Strict bool

	Logger *log.Logger
}

// Resolution is the outcome of [Manager.Resolve].
type Resolution struct {
	Lock     *DependencyLock
	FromLock bool             // the existing lock was valid
	Roots    []*deps.TreeNode // pulled trees; nil when FromLock
}

// Properties returns the aggregated library properties of all locked packages.
func (r *Resolution) Properties() properties.Library {
	return r.Lock.AggregateProperties()
}

// Resolve makes cfg's include directory match a lock.
//
// Unless force is set, an existing lock that covers the manifest's
// dependencies and validates is used as is. Otherwise the dependency
// trees are pulled and flattened, and only then is the new lock written
// and the include directory rebuilt. A failed resolution leaves the
// previous lock file untouched.
func (m *Manager) Resolve(ctx context.Context, cfg *manifest.Config, force bool) (res *Resolution, err error) {
	logger := m.logger()
	hooks := observability.Resolve()
	start := time.Now()
	hooks.OnResolveStart(ctx, cfg.Root, len(cfg.Dependencies))
	defer func() {
		n := 0
		if res != nil {
			n = len(res.Lock.Entries)
		}
		hooks.OnResolveComplete(ctx, cfg.Root, n, time.Since(start), err)
	}()

	if !force {
		if l, ok := m.tryLock(ctx, cfg); ok {
			hooks.OnLockHit(ctx, cfg.Root, len(l.Entries))
			return &Resolution{Lock: l, FromLock: true}, nil
		}
	}

	s, err := store.New(cfg.StoreDir())
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "open store")
	}
	puller := &deps.Puller{
		Fetcher:  m.Fetcher,
		Store:    s,
		ReadFile: m.ReadFile,
		Options:  m.Options,
		Logger:   logger,
	}
	roots, err := puller.Pull(ctx, cfg.Dependencies)
	if err != nil {
		return nil, err
	}

	flatten := deps.Flatten
	if m.Strict {
		flatten = deps.FlattenStrict
	}
	selection, err := flatten(roots)
	if err != nil {
		return nil, err
	}

	l, err := Create(selection)
	if err != nil {
		return nil, err
	}
	if err := l.Save(cfg.LockPath()); err != nil {
		return nil, err
	}
	if err := l.CreateLibraryFolder(s, cfg.IncludeDir()); err != nil {
		return nil, err
	}
	logger.Info("resolved dependencies", "packages", len(l.Entries), "duration", time.Since(start).Round(time.Millisecond))
	return &Resolution{Lock: l, Roots: roots}, nil
}

// tryLock loads and validates the existing lock. Any problem is logged and
// reported as a miss so the caller re-resolves.
func (m *Manager) tryLock(ctx context.Context, cfg *manifest.Config) (*DependencyLock, bool) {
	logger := m.logger()
	l, err := Load(cfg.LockPath())
	if err != nil {
		if !os.IsNotExist(err) {
			logger.Warn("ignoring unreadable lock file", "path", cfg.LockPath(), "err", err)
		}
		return nil, false
	}
	if !l.Satisfies(cfg.Dependencies) {
		logger.Info("lock file is out of date with the manifest, resolving")
		return nil, false
	}
	err = l.Validate(ctx, cfg.IncludeDir(), ValidateOptions{
		Fetcher:  m.Fetcher,
		ReadFile: m.ReadFile,
		Workers:  m.Options.Workers,
		Logger:   logger,
	})
	if err != nil {
		logger.Warn("lock file validation failed, resolving", "err", errors.UserMessage(err))
		return nil, false
	}
	return l, true
}

func (m *Manager) logger() *log.Logger {
	if m.Logger != nil {
		return m.Logger
	}
	return log.Default()
}
