package build

import (
	"context"
	stderrors "errors"
	"fmt"
	"runtime"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/lingo-build/lingo/pkg/errors"
	"github.com/lingo-build/lingo/pkg/manifest"
)

// Outcome is the recorded result of one app. A nil Err means the app is
// still pending or succeeded.
type Outcome struct {
	App *manifest.App
	Err error
}

// AppFunc is a per-app stage.
type AppFunc func(ctx context.Context, app *manifest.App) error

// GroupFunc is a stage that runs once for a group of apps.
type GroupFunc func(ctx context.Context, apps []*manifest.App) error

// Results tracks one outcome per app through the stages of a batch.
//
// Stages must not run concurrently with each other. Within
// [Results.ParallelMap] each worker only writes its own app's slot.
type Results struct {
	outcomes  []Outcome
	keepGoing bool
	threads   int
}

// NewResults returns a batch over apps with every app pending. Threads below
// one default to runtime.NumCPU().
func NewResults(apps []*manifest.App, keepGoing bool, threads int) *Results {
	if threads <= 0 {
		threads = runtime.NumCPU()
	}
	r := &Results{
		outcomes:  make([]Outcome, len(apps)),
		keepGoing: keepGoing,
		threads:   threads,
	}
	for i, app := range apps {
		r.outcomes[i].App = app
	}
	return r
}

// KeepGoing reports whether failures are isolated per app.
func (r *Results) KeepGoing() bool { return r.keepGoing }

// Threads returns the worker pool size of parallel stages.
func (r *Results) Threads() int { return r.threads }

// Map runs f on each pending app in order.
func (r *Results) Map(ctx context.Context, f AppFunc) *Results {
	for i := range r.outcomes {
		o := &r.outcomes[i]
		if o.Err != nil {
			continue
		}
		if err := ctx.Err(); err != nil {
			r.abortPending(err)
			return r
		}
		if err := f(ctx, o.App); err != nil {
			o.Err = err
			if !r.keepGoing {
				r.abortPending(err)
				return r
			}
		}
	}
	return r
}

// ParallelMap runs f on every pending app concurrently, at most Threads at
// a time, and returns once all of them finished.
func (r *Results) ParallelMap(ctx context.Context, f AppFunc) *Results {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.threads)

	for i := range r.outcomes {
		o := &r.outcomes[i]
		if o.Err != nil {
			continue
		}
		g.Go(func() error {
			if gctx.Err() != nil {
				return nil
			}
			if err := f(gctx, o.App); err != nil {
				o.Err = err
				if !r.keepGoing {
					return err
				}
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		r.abortPending(err)
	} else if err := ctx.Err(); err != nil {
		r.abortPending(err)
	}
	return r
}

// Gather runs f once with every pending app. If f fails, the same error
// value is recorded for each of them.
func (r *Results) Gather(ctx context.Context, f GroupFunc) *Results {
	var idx []int
	var apps []*manifest.App
	for i, o := range r.outcomes {
		if o.Err == nil {
			idx = append(idx, i)
			apps = append(apps, o.App)
		}
	}
	if len(apps) == 0 {
		return r
	}
	if err := ctx.Err(); err != nil {
		r.abortPending(err)
		return r
	}

	if err := f(ctx, apps); err != nil {
		shared := errors.Wrap(errors.ErrCodeSharedGroupFailure, err, "group of %d apps failed", len(apps))
		for _, i := range idx {
			r.outcomes[i].Err = shared
		}
	}
	return r
}

// abortPending marks every pending app as aborted because of cause.
func (r *Results) abortPending(cause error) {
	for i := range r.outcomes {
		if r.outcomes[i].Err == nil {
			r.outcomes[i].Err = errors.Wrap(errors.ErrCodeAborted, cause, "batch aborted")
		}
	}
}

// Abort marks every pending app as aborted because of cause.
func (r *Results) Abort(cause error) {
	r.abortPending(cause)
}

// Merge appends other's outcomes to r.
func (r *Results) Merge(other *Results) {
	r.outcomes = append(r.outcomes, other.outcomes...)
}

// Sort orders outcomes by app name, keeping the relative order of equal
// names.
func (r *Results) Sort() {
	sort.SliceStable(r.outcomes, func(i, j int) bool {
		return r.outcomes[i].App.Name < r.outcomes[j].App.Name
	})
}

// Outcomes returns a copy of the recorded outcomes.
func (r *Results) Outcomes() []Outcome {
	return append([]Outcome(nil), r.outcomes...)
}

// Len returns the number of apps in the batch.
func (r *Results) Len() int { return len(r.outcomes) }

// Failed returns the number of apps with an error.
func (r *Results) Failed() int {
	n := 0
	for _, o := range r.outcomes {
		if o.Err != nil {
			n++
		}
	}
	return n
}

// Lookup returns the outcome recorded for the named app.
func (r *Results) Lookup(name string) (Outcome, bool) {
	for _, o := range r.outcomes {
		if o.App.Name == name {
			return o, true
		}
	}
	return Outcome{}, false
}

// Err joins the errors of every failed app, or returns nil if all
// succeeded.
func (r *Results) Err() error {
	var errs []error
	for _, o := range r.outcomes {
		if o.Err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", o.App.Name, o.Err))
		}
	}
	return stderrors.Join(errs...)
}
