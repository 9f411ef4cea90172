package httputil

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/lingo-build/lingo/pkg/cache"
	"github.com/lingo-build/lingo/pkg/observability"
)

const cacheKeyType = "tarball"

// Defaults for [Downloader].
const (
	DefaultAttempts = 3
	DefaultDelay    = time.Second
	DefaultMaxSize  = 512 << 20
)

// Doer executes HTTP requests. *http.Client satisfies it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Downloader fetches whole response bodies.
type Downloader struct {
	Client   Doer          // nil means http.DefaultClient
	Cache    cache.Cache   // nil disables caching
	TTL      time.Duration // cache entry lifetime; zero never expires
	Attempts int           // zero means DefaultAttempts
	Delay    time.Duration // initial backoff; zero means DefaultDelay
	MaxSize  int64         // response size limit; zero means DefaultMaxSize

	// UserAgent is sent with every request when set.
	UserAgent string
}

// Get downloads url, consulting the cache first.
func (d *Downloader) Get(ctx context.Context, url string) ([]byte, error) {
	if d.Cache != nil {
		if data, ok, err := d.Cache.Get(ctx, url); err == nil && ok {
			observability.Cache().OnCacheHit(ctx, cacheKeyType)
			return data, nil
		}
		observability.Cache().OnCacheMiss(ctx, cacheKeyType)
	}

	attempts, delay := d.Attempts, d.Delay
	if attempts <= 0 {
		attempts = DefaultAttempts
	}
	if delay <= 0 {
		delay = DefaultDelay
	}

	var body []byte
	err := Retry(ctx, attempts, delay, func() error {
		var err error
		body, err = d.fetch(ctx, url)
		return err
	})
	if err != nil {
		return nil, err
	}

	if d.Cache != nil {
		if err := d.Cache.Set(ctx, url, body, d.TTL); err == nil {
			observability.Cache().OnCacheSet(ctx, cacheKeyType, len(body))
		}
	}
	return body, nil
}

func (d *Downloader) fetch(ctx context.Context, url string) ([]byte, error) {
	client := d.Client
	if client == nil {
		client = http.DefaultClient
	}
	limit := d.MaxSize
	if limit <= 0 {
		limit = DefaultMaxSize
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	if d.UserAgent != "" {
		req.Header.Set("User-Agent", d.UserAgent)
	}
	hooks := observability.HTTP()
	host, path := req.URL.Host, req.URL.Path
	hooks.OnRequest(ctx, req.Method, host, path)
	start := time.Now()
	resp, err := client.Do(req)
	if err != nil {
		hooks.OnError(ctx, req.Method, host, path, err)
		if ctx.Err() != nil {
			return nil, err
		}
		return nil, Retryable(fmt.Errorf("fetching %s: %w", url, err))
	}
	defer resp.Body.Close()
	hooks.OnResponse(ctx, req.Method, host, path, resp.StatusCode, time.Since(start))

	if resp.StatusCode != http.StatusOK {
		err := fmt.Errorf("HTTP %d from %s", resp.StatusCode, url)
		if resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests {
			return nil, Retryable(err)
		}
		return nil, err
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, limit+1))
	if err != nil {
		return nil, Retryable(fmt.Errorf("reading response: %w", err))
	}
	if int64(len(body)) > limit {
		return nil, fmt.Errorf("%s exceeds max size %d bytes", url, limit)
	}
	return body, nil
}
