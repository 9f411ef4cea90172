package checksum

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		path := filepath.Join(root, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
}

func mustDir(t *testing.T, root string, opts Options) Sum {
	t.Helper()
	sum, err := Dir(context.Background(), root, opts)
	if err != nil {
		t.Fatalf("Dir(%s) error: %v", root, err)
	}
	return sum
}

var baseTree = map[string]string{
	"Lingo.toml":      "[package]\nname = \"mqtt\"\nversion = \"1.0.0\"\n",
	"src/lib/Mqtt.lf": "target C;\nreactor Mqtt {}\n",
	"src/lib/util.h":  "#pragma once\n",
}

func TestDirDeterministic(t *testing.T) {
	a, b := t.TempDir(), t.TempDir()
	writeTree(t, a, baseTree)
	writeTree(t, b, baseTree)

	sumA := mustDir(t, a, Options{})
	sumB := mustDir(t, b, Options{})
	if sumA != sumB {
		t.Errorf("equal trees: %s != %s", sumA, sumB)
	}
	if sumA.IsZero() {
		t.Error("non-empty tree produced zero sum")
	}
}

func TestDirWorkerCountInvariant(t *testing.T) {
	root := t.TempDir()
	files := map[string]string{}
	for i := range 64 {
		files[filepath.ToSlash(filepath.Join("d", string(rune('a'+i%26)), string(rune('A'+i%26))+".lf"))] = string(rune(i))
	}
	writeTree(t, root, files)

	want := mustDir(t, root, Options{Workers: 1})
	for _, workers := range []int{2, 8, runtime.NumCPU() * 4} {
		if got := mustDir(t, root, Options{Workers: workers}); got != want {
			t.Errorf("Workers=%d: %s, want %s", workers, got, want)
		}
	}
}

func TestDirSensitivity(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, baseTree)
	base := mustDir(t, root, Options{})

	tests := []struct {
		name   string
		mutate func(t *testing.T, dir string)
	}{
		{"file content", func(t *testing.T, dir string) {
			writeTree(t, dir, map[string]string{"src/lib/util.h": "#pragma once\n// x\n"})
		}},
		{"file renamed", func(t *testing.T, dir string) {
			if err := os.Rename(filepath.Join(dir, "src/lib/util.h"), filepath.Join(dir, "src/lib/util2.h")); err != nil {
				t.Fatal(err)
			}
		}},
		{"empty directory added", func(t *testing.T, dir string) {
			if err := os.Mkdir(filepath.Join(dir, "empty"), 0o755); err != nil {
				t.Fatal(err)
			}
		}},
		{"file added", func(t *testing.T, dir string) {
			writeTree(t, dir, map[string]string{"README.md": ""})
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			writeTree(t, dir, baseTree)
			tt.mutate(t, dir)
			if got := mustDir(t, dir, Options{}); got == base {
				t.Errorf("sum unchanged after %s", tt.name)
			}
		})
	}
}

func TestDirContentMovedBetweenFiles(t *testing.T) {
	a, b := t.TempDir(), t.TempDir()
	writeTree(t, a, map[string]string{"x": "ab", "y": ""})
	writeTree(t, b, map[string]string{"x": "a", "y": "b"})
	if mustDir(t, a, Options{}) == mustDir(t, b, Options{}) {
		t.Error("moving bytes between files did not change the sum")
	}
}

func TestDirSymlink(t *testing.T) {
	a, b := t.TempDir(), t.TempDir()
	writeTree(t, a, baseTree)
	writeTree(t, b, baseTree)
	if err := os.Symlink("src/lib/util.h", filepath.Join(a, "link")); err != nil {
		t.Skipf("symlinks unsupported: %v", err)
	}
	if err := os.Symlink("src/lib/Mqtt.lf", filepath.Join(b, "link")); err != nil {
		t.Fatal(err)
	}
	if mustDir(t, a, Options{}) == mustDir(t, b, Options{}) {
		t.Error("different link targets produced equal sums")
	}
}

func TestDirEmpty(t *testing.T) {
	if sum := mustDir(t, t.TempDir(), Options{}); !sum.IsZero() {
		t.Errorf("empty dir = %s, want zero", sum)
	}
}

func TestDirErrors(t *testing.T) {
	t.Run("missing", func(t *testing.T) {
		if _, err := Dir(context.Background(), filepath.Join(t.TempDir(), "nope"), Options{}); err == nil {
			t.Error("expected error for missing directory")
		}
	})

	t.Run("not a directory", func(t *testing.T) {
		root := t.TempDir()
		writeTree(t, root, map[string]string{"f": "x"})
		if _, err := Dir(context.Background(), filepath.Join(root, "f"), Options{}); err == nil {
			t.Error("expected error for regular file")
		}
	})

	t.Run("canceled", func(t *testing.T) {
		root := t.TempDir()
		writeTree(t, root, baseTree)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		if _, err := Dir(ctx, root, Options{}); err == nil {
			t.Error("expected error for canceled context")
		}
	})
}

func TestParseSum(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, baseTree)
	sum := mustDir(t, root, Options{})

	parsed, err := ParseSum(sum.String())
	if err != nil {
		t.Fatalf("ParseSum: %v", err)
	}
	if parsed != sum {
		t.Errorf("ParseSum(%s) = %s", sum, parsed)
	}

	for _, bad := range []string{"", "abc", sum.String()[:39] + "z"} {
		if _, err := ParseSum(bad); err == nil {
			t.Errorf("ParseSum(%q) expected error", bad)
		}
	}
}
