// Package httputil provides the HTTP plumbing used to download tarball
// dependencies.
//
// # Overview
//
//   - [Downloader]: GET with retry, size limit and an optional blob cache
//   - [Retry]: Automatic retry with exponential backoff
//
// # Retry
//
// [Retry] re-runs an operation only when it fails with a [RetryableError].
// [Downloader] marks network errors, 5xx and 429 responses as retryable;
// 4xx responses fail immediately:
//
//	err := httputil.Retry(ctx, 3, time.Second, func() error {
//	    return fetchOnce()
//	})
//
// # Caching
//
// When [Downloader.Cache] is set, successful downloads are stored under their
// URL and served from the cache on later calls, so re-resolving a project
// does not download the same archive again. The cache lives under
// ~/.cache/lingo/ by default and can be cleared with `lingo store clear`.
package httputil
