package cli

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/lingo-build/lingo/pkg/observability"
)

// newLogger creates a new logger with timestamp formatting.
// Timestamps are formatted as "HH:MM:SS.ms" (e.g., "14:32:01.45").
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// progress tracks the start time of an operation and reports the elapsed
// duration when it completes.
type progress struct {
	logger *log.Logger
	start  time.Time
}

func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// elapsed returns the time since the progress was created, rounded to the
// millisecond.
func (p *progress) elapsed() time.Duration {
	return time.Since(p.start).Round(time.Millisecond)
}

// done logs msg along with the elapsed time.
// Example output: "Resolved 4 packages (1.234s)"
func (p *progress) done(msg string) {
	p.logger.Infof("%s (%s)", msg, p.elapsed())
}

// =============================================================================
// Debug Hooks
// =============================================================================

// logHooks reports observability events as debug log lines.
type logHooks struct {
	logger *log.Logger
}

// registerLogHooks installs logHooks for every hook family.
func registerLogHooks(l *log.Logger) {
	h := logHooks{logger: l}
	observability.SetResolveHooks(h)
	observability.SetBuildHooks(h)
	observability.SetCacheHooks(h)
	observability.SetHTTPHooks(h)
}

func (h logHooks) OnResolveStart(_ context.Context, project string, roots int) {
	h.logger.Debug("resolve start", "project", project, "roots", roots)
}

func (h logHooks) OnResolveComplete(_ context.Context, project string, packages int, d time.Duration, err error) {
	h.logger.Debug("resolve complete", "project", project, "packages", packages, "duration", d, "err", err)
}

func (h logHooks) OnFetch(_ context.Context, name, source string) {
	h.logger.Debug("fetch", "name", name, "source", source)
}

func (h logHooks) OnFetchComplete(_ context.Context, name string, d time.Duration, err error) {
	h.logger.Debug("fetch complete", "name", name, "duration", d, "err", err)
}

func (h logHooks) OnLockHit(_ context.Context, project string, entries int) {
	h.logger.Debug("lock hit", "project", project, "entries", entries)
}

func (h logHooks) OnGroupStart(_ context.Context, system string, apps []string) {
	h.logger.Debug("group start", "system", system, "apps", apps)
}

func (h logHooks) OnAppComplete(_ context.Context, app string, d time.Duration, err error) {
	h.logger.Debug("app complete", "app", app, "duration", d, "err", err)
}

func (h logHooks) OnCacheHit(_ context.Context, keyType string) {
	h.logger.Debug("cache hit", "type", keyType)
}

func (h logHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.logger.Debug("cache miss", "type", keyType)
}

func (h logHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.logger.Debug("cache set", "type", keyType, "bytes", size)
}

func (h logHooks) OnRequest(_ context.Context, method, host, path string) {
	h.logger.Debug("http request", "method", method, "host", host, "path", path)
}

func (h logHooks) OnResponse(_ context.Context, method, host, path string, status int, d time.Duration) {
	h.logger.Debug("http response", "method", method, "host", host, "path", path, "status", status, "duration", d)
}

func (h logHooks) OnError(_ context.Context, method, host, path string, err error) {
	h.logger.Debug("http error", "method", method, "host", host, "path", path, "err", err)
}

var (
	_ observability.ResolveHooks = logHooks{}
	_ observability.BuildHooks   = logHooks{}
	_ observability.CacheHooks   = logHooks{}
	_ observability.HTTPHooks    = logHooks{}
)
