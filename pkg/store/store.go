// Package store is the append-only, content-addressed package store.
//
// Every fetched package is stored once under the hex form of its directory
// checksum. Entries are immutable: putting a checksum that already exists is a
// no-op, and new entries are staged in a temporary directory and renamed into
// place so a crash never leaves a half-copied entry behind.
package store

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/lingo-build/lingo/pkg/checksum"
)

// Store is a directory of immutable package trees keyed by checksum.
type Store struct {
	dir string
}

// New creates a Store rooted at dir, creating it if needed.
func New(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating store directory %s: %w", dir, err)
	}
	return &Store{dir: dir}, nil
}

// Dir returns the store's root directory.
func (s *Store) Dir() string { return s.dir }

// Path returns where the entry for sum lives, whether or not it exists.
func (s *Store) Path(sum checksum.Sum) string {
	return filepath.Join(s.dir, sum.String())
}

// Has reports whether an entry for sum exists.
func (s *Store) Has(sum checksum.Sum) bool {
	info, err := os.Stat(s.Path(sum))
	return err == nil && info.IsDir()
}

// Put copies the tree at src into the store under sum and returns the entry
// path. The caller is responsible for sum matching src's content. If the
// entry already exists it is reused without copying.
func (s *Store) Put(sum checksum.Sum, src string) (string, error) {
	dst := s.Path(sum)
	if s.Has(sum) {
		return dst, nil
	}

	tmp, err := os.MkdirTemp(s.dir, ".tmp-*")
	if err != nil {
		return "", fmt.Errorf("creating store temp directory: %w", err)
	}
	success := false
	defer func() {
		if !success {
			_ = os.RemoveAll(tmp)
		}
	}()

	if err := CopyTree(src, tmp); err != nil {
		return "", fmt.Errorf("copying %s into store: %w", src, err)
	}
	if err := os.Rename(tmp, dst); err != nil {
		// Lost a race with an identical entry.
		if s.Has(sum) {
			return dst, nil
		}
		return "", fmt.Errorf("renaming store entry %s: %w", sum, err)
	}

	success = true
	return dst, nil
}

// Clear removes every entry.
func (s *Store) Clear() error {
	entries, err := os.ReadDir(s.dir)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}
	for _, e := range entries {
		if err := os.RemoveAll(filepath.Join(s.dir, e.Name())); err != nil {
			return err
		}
	}
	return nil
}

// Size returns the total size of all entries in bytes.
func (s *Store) Size() (int64, error) {
	var total int64
	err := filepath.Walk(s.dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.Mode().IsRegular() {
			total += info.Size()
		}
		return nil
	})
	return total, err
}
