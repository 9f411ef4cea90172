package fetch

import (
	"archive/tar"
	"bytes"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"

	"github.com/lingo-build/lingo/pkg/errors"
)

// ExtractTarball unpacks a tar archive, gzip-compressed or not, into dst.
// When every entry shares one top-level directory that directory is
// stripped, matching the layout of release archives. Entries escaping dst
// are rejected.
func ExtractTarball(data []byte, dst string) error {
	var r io.Reader = bytes.NewReader(data)
	if len(data) >= 2 && data[0] == 0x1f && data[1] == 0x8b {
		zr, err := gzip.NewReader(r)
		if err != nil {
			return fmt.Errorf("gzip: %w", err)
		}
		defer zr.Close()
		r = zr
	}

	type entry struct {
		hdr  *tar.Header
		body []byte
	}
	var entries []entry
	tr := tar.NewReader(r)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("tar: %w", err)
		}
		name := strings.TrimPrefix(path.Clean(hdr.Name), "./")
		if name == "." || name == "pax_global_header" {
			continue
		}
		if err := errors.ValidatePath(name); err != nil {
			return fmt.Errorf("tar entry %q: %w", hdr.Name, err)
		}
		hdr.Name = name
		var body []byte
		if hdr.Typeflag == tar.TypeReg {
			if body, err = io.ReadAll(tr); err != nil {
				return fmt.Errorf("tar entry %q: %w", name, err)
			}
		}
		entries = append(entries, entry{hdr: hdr, body: body})
	}

	hdrs := make([]*tar.Header, len(entries))
	for i, e := range entries {
		hdrs[i] = e.hdr
	}
	prefix := stripRoot(hdrs)

	for _, e := range entries {
		name := e.hdr.Name
		if prefix != "" {
			if name == prefix {
				continue
			}
			name = strings.TrimPrefix(name, prefix+"/")
		}
		target := filepath.Join(dst, filepath.FromSlash(name))

		switch e.hdr.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, 0o755); err != nil {
				return err
			}
		case tar.TypeReg:
			if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
				return err
			}
			mode := os.FileMode(e.hdr.Mode).Perm() | 0o600
			if err := os.WriteFile(target, e.body, mode); err != nil {
				return err
			}
		case tar.TypeSymlink:
			if filepath.IsAbs(e.hdr.Linkname) || escapes(path.Join(path.Dir(name), e.hdr.Linkname)) {
				return fmt.Errorf("tar entry %q: symlink escapes archive", e.hdr.Name)
			}
			if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
				return err
			}
			if err := os.Symlink(e.hdr.Linkname, target); err != nil {
				return err
			}
		default:
			// Hard links, devices and FIFOs are not part of source packages.
		}
	}
	return nil
}

// stripRoot returns the single top-level directory shared by all headers,
// or "" if there is none.
func stripRoot(hdrs []*tar.Header) string {
	root := ""
	nested := false
	for _, h := range hdrs {
		first, _, hasRest := strings.Cut(h.Name, "/")
		if !hasRest && h.Typeflag != tar.TypeDir {
			return ""
		}
		if root != "" && root != first {
			return ""
		}
		root = first
		nested = nested || hasRest
	}
	if !nested {
		return ""
	}
	return root
}

func escapes(p string) bool {
	p = path.Clean(p)
	return p == ".." || strings.HasPrefix(p, "../")
}
