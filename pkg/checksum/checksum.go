package checksum

import (
	"context"
	"crypto/sha1"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sync"

	"golang.org/x/sync/errgroup"
)

// Size is the length of a [Sum] in bytes.
const Size = sha1.Size

// Entry kind tags mixed into each per-entry digest.
const (
	kindFile    byte = 'f'
	kindSymlink byte = 'l'
	kindDir     byte = 'd'
)

// Sum is the digest of a directory tree.
type Sum [Size]byte

// String returns the lowercase hex encoding of the sum.
func (s Sum) String() string {
	return hex.EncodeToString(s[:])
}

// IsZero reports whether s is the zero sum (an empty tree).
func (s Sum) IsZero() bool {
	return s == Sum{}
}

// ParseSum parses a 40 character hex string as produced by [Sum.String].
func ParseSum(s string) (Sum, error) {
	var sum Sum
	if len(s) != 2*Size {
		return sum, fmt.Errorf("checksum %q: want %d hex characters, got %d", s, 2*Size, len(s))
	}
	if _, err := hex.Decode(sum[:], []byte(s)); err != nil {
		return sum, fmt.Errorf("checksum %q: %w", s, err)
	}
	return sum, nil
}

// MarshalText implements encoding.TextMarshaler.
func (s Sum) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Sum) UnmarshalText(text []byte) error {
	sum, err := ParseSum(string(text))
	if err != nil {
		return err
	}
	*s = sum
	return nil
}

// Options configures [Dir].
type Options struct {
	// Workers bounds the number of entries hashed concurrently.
	// Zero means runtime.GOMAXPROCS(0).
	Workers int

	// IgnoreUnknown skips entries that are neither regular files, symlinks
	// nor directories (sockets, devices, pipes). When false such entries are
	// an error.
	IgnoreUnknown bool
}

// WithDefaults returns a copy of opts with zero values replaced by defaults.
func (o Options) WithDefaults() Options {
	if o.Workers <= 0 {
		o.Workers = runtime.GOMAXPROCS(0)
	}
	return o
}

// accumulator XOR-combines entry digests.
type accumulator struct {
	mu  sync.Mutex
	sum Sum
}

func (a *accumulator) add(d []byte) {
	a.mu.Lock()
	for i := range a.sum {
		a.sum[i] ^= d[i]
	}
	a.mu.Unlock()
}

// Dir returns the digest of the tree rooted at root. The root itself does not
// contribute an entry. Any I/O error aborts the walk and no sum is returned.
func Dir(ctx context.Context, root string, opts Options) (Sum, error) {
	opts = opts.WithDefaults()

	info, err := os.Stat(root)
	if err != nil {
		return Sum{}, fmt.Errorf("checksum %s: %w", root, err)
	}
	if !info.IsDir() {
		return Sum{}, fmt.Errorf("checksum %s: not a directory", root)
	}

	var acc accumulator
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Workers)

	walkErr := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if path == root {
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)

		kind, ok := kindOf(d.Type())
		if !ok {
			if opts.IgnoreUnknown {
				return nil
			}
			return fmt.Errorf("%s: unsupported file type %s", rel, d.Type())
		}

		g.Go(func() error {
			digest, err := hashEntry(path, rel, kind)
			if err != nil {
				return err
			}
			acc.add(digest)
			return nil
		})
		return nil
	})

	if err := g.Wait(); err != nil {
		return Sum{}, fmt.Errorf("checksum %s: %w", root, err)
	}
	if walkErr != nil {
		return Sum{}, fmt.Errorf("checksum %s: %w", root, walkErr)
	}
	return acc.sum, nil
}

func kindOf(mode fs.FileMode) (byte, bool) {
	switch {
	case mode.IsRegular():
		return kindFile, true
	case mode&fs.ModeSymlink != 0:
		return kindSymlink, true
	case mode.IsDir():
		return kindDir, true
	default:
		return 0, false
	}
}

// hashEntry digests one entry: kind, uint32 little-endian path length, path,
// then content (files) or link target (symlinks).
func hashEntry(path, rel string, kind byte) ([]byte, error) {
	h := sha1.New()
	var hdr [5]byte
	hdr[0] = kind
	binary.LittleEndian.PutUint32(hdr[1:], uint32(len(rel)))
	h.Write(hdr[:])
	io.WriteString(h, rel)

	switch kind {
	case kindFile:
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		_, err = io.Copy(h, f)
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", rel, err)
		}
	case kindSymlink:
		target, err := os.Readlink(path)
		if err != nil {
			return nil, err
		}
		io.WriteString(h, target)
	}
	return h.Sum(nil), nil
}
