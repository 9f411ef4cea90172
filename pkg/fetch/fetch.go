// Package fetch retrieves dependency sources into a local directory.
//
// The resolver only depends on the [Fetcher] contract. [Sources] is the
// production implementation: it copies path dependencies, clones git
// dependencies through a [CloneAndCheckoutFunc] and downloads and unpacks
// tarballs. The capabilities it needs from the environment are plain
// function values so tests can replace them:
//
//	f := &fetch.Sources{
//	    Root:             projectRoot,
//	    CloneAndCheckout: fetch.GitCloneAndCheckout,
//	    Downloader:       &httputil.Downloader{Cache: downloads},
//	}
//	rev, err := f.Fetch(ctx, "mqtt", details, scratchDir)
package fetch

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/charmbracelet/log"

	"github.com/lingo-build/lingo/pkg/errors"
	"github.com/lingo-build/lingo/pkg/httputil"
	"github.com/lingo-build/lingo/pkg/manifest"
	"github.com/lingo-build/lingo/pkg/store"
)

// WhichFunc looks up a binary on the search path.
type WhichFunc func(name string) (string, error)

// CloneAndCheckoutFunc clones url into the empty directory dst, checks out
// lock (the default branch when nil) and returns the concrete revision of
// HEAD.
type CloneAndCheckoutFunc func(ctx context.Context, url, dst string, lock *manifest.VersionLock) (string, error)

// Which is the default WhichFunc.
func Which(name string) (string, error) {
	return exec.LookPath(name)
}

// Fetcher places the sources of one dependency into a directory.
type Fetcher interface {
	// Fetch populates the existing, empty directory dst with the package
	// described by details. For git sources it returns the checked out
	// revision; otherwise the revision is empty.
	Fetch(ctx context.Context, name string, details manifest.PackageDetails, dst string) (string, error)
}

// Sources fetches path, git and tarball dependencies.
type Sources struct {
	// Root resolves relative path sources. Empty means the working directory.
	Root string

	// CloneAndCheckout clones git sources. Nil means GitCloneAndCheckout.
	CloneAndCheckout CloneAndCheckoutFunc

	// Downloader fetches tarballs. Nil means a Downloader without cache.
	Downloader *httputil.Downloader

	// KeepGitDir keeps the .git directory of clones. It is removed by
	// default so the content checksum depends only on the checked out tree.
	KeepGitDir bool

	Logger *log.Logger
}

// Fetch implements Fetcher.
func (s *Sources) Fetch(ctx context.Context, name string, details manifest.PackageDetails, dst string) (string, error) {
	logger := s.Logger
	if logger == nil {
		logger = log.Default()
	}
	logger.Debug("fetching dependency", "name", name, "source", details.Source)

	var (
		rev string
		err error
	)
	switch details.Source.Kind {
	case manifest.SourcePath:
		err = s.fetchPath(details.Source.URI, dst)
	case manifest.SourceGit:
		rev, err = s.fetchGit(ctx, details, dst)
	case manifest.SourceTarball:
		err = s.fetchTarball(ctx, details.Source.URI, dst)
	default:
		err = fmt.Errorf("unsupported source kind %v", details.Source.Kind)
	}
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeFetchFailed, err, "fetch %s from %s", name, details.Source)
	}
	return rev, nil
}

func (s *Sources) fetchPath(path, dst string) error {
	if !filepath.IsAbs(path) {
		path = filepath.Join(s.Root, path)
	}
	return store.CopyTree(path, dst)
}

func (s *Sources) fetchGit(ctx context.Context, details manifest.PackageDetails, dst string) (string, error) {
	clone := s.CloneAndCheckout
	if clone == nil {
		clone = GitCloneAndCheckout
	}
	rev, err := clone(ctx, details.Source.URI, dst, details.Lock)
	if err != nil {
		return "", err
	}
	if rev == "" {
		return "", fmt.Errorf("clone of %s returned no revision", details.Source.URI)
	}
	if !s.KeepGitDir {
		if err := os.RemoveAll(filepath.Join(dst, ".git")); err != nil {
			return "", err
		}
	}
	return rev, nil
}

func (s *Sources) fetchTarball(ctx context.Context, url, dst string) error {
	if err := errors.ValidateURL(url); err != nil {
		return err
	}
	d := s.Downloader
	if d == nil {
		d = &httputil.Downloader{}
	}
	data, err := d.Get(ctx, url)
	if err != nil {
		return err
	}
	return ExtractTarball(data, dst)
}

// Ensure Sources implements Fetcher.
var _ Fetcher = (*Sources)(nil)
