package cli

import (
	"bytes"
	"context"
	stderrors "errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/lingo-build/lingo/pkg/build"
	"github.com/lingo-build/lingo/pkg/errors"
	"github.com/lingo-build/lingo/pkg/manifest"
)

// toolchain records commands and fails lfc for any main file listed in
// failMain.
type toolchain struct {
	mu       sync.Mutex
	cmds     []build.Command
	failMain map[string]bool
}

func (tc *toolchain) Run(_ context.Context, cmd build.Command) error {
	tc.mu.Lock()
	tc.cmds = append(tc.cmds, cmd)
	tc.mu.Unlock()

	if cmd.Name == "lfc" && tc.failMain[filepath.Base(cmd.Args[2])] {
		return errors.New(errors.ErrCodeCommandFailed, "lfc %s failed", cmd.Args[2])
	}
	return nil
}

func (tc *toolchain) count(name string) int {
	tc.mu.Lock()
	defer tc.mu.Unlock()
	n := 0
	for _, c := range tc.cmds {
		if c.Name == name {
			n++
		}
	}
	return n
}

type harness struct {
	cli *CLI
	dir string
	out *bytes.Buffer
	tc  *toolchain
}

func newHarness(t *testing.T, dir string) *harness {
	t.Helper()
	t.Setenv(envCacheDir, t.TempDir())
	t.Setenv(envMaxThreads, "")
	t.Setenv(envKeepGoing, "")

	var out bytes.Buffer
	tc := &toolchain{}
	c := New(io.Discard, LogInfo)
	c.Out = &out
	c.exec = tc
	c.which = func(string) (string, error) { return "", stderrors.New("not found") }
	c.clone = func(context.Context, string, string, *manifest.VersionLock) (string, error) {
		return "", stderrors.New("network disabled")
	}
	c.getwd = func() (string, error) { return dir, nil }
	return &harness{cli: c, dir: dir, out: &out, tc: tc}
}

func (h *harness) run(args ...string) error {
	root := h.cli.RootCommand()
	root.SetArgs(args)
	root.SetErr(io.Discard)
	return root.ExecuteContext(context.Background())
}

const projectManifest = `[package]
name = "blinky"
version = "0.1.0"

[[app]]
name = "monitor"
main = "src/Monitor.lf"
target = "Python"

[[app]]
name = "logger"
main = "src/Logger.lf"
target = "Python"

[dependencies]
mqtt = { version = ">=1.0", path = "vendor/mqtt" }
`

func writeFiles(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
}

func setupProject(t *testing.T) *harness {
	t.Helper()
	root := t.TempDir()
	writeFiles(t, root, map[string]string{
		manifest.FileName:             projectManifest,
		"src/Monitor.lf":              "target Python;\nmain reactor Monitor {}\n",
		"src/Logger.lf":               "target Python;\nmain reactor Logger {}\n",
		"vendor/mqtt/Lingo.toml":      "[package]\nname = \"mqtt\"\nversion = \"1.2.0\"\n\n[lib]\ntarget = \"C\"\n",
		"vendor/mqtt/src/lib/mqtt.lf": "target C;\nreactor Mqtt {}\n",
	})
	return newHarness(t, filepath.Join(root, "src"))
}

func TestBuildCommand(t *testing.T) {
	h := setupProject(t)

	if err := h.run("build"); err != nil {
		t.Fatalf("build: %v", err)
	}
	out := h.out.String()
	for _, want := range []string{"1 package", "resolved", "monitor built", "logger built"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if n := h.tc.count("lfc"); n != 2 {
		t.Errorf("lfc ran %d times, want 2", n)
	}
	if _, err := os.Stat(filepath.Join(filepath.Dir(h.dir), manifest.LockFileName)); err != nil {
		t.Errorf("lock not written: %v", err)
	}

	h.out.Reset()
	if err := h.run("build", "-a", "logger"); err != nil {
		t.Fatal(err)
	}
	if out := h.out.String(); !strings.Contains(out, "locked") || strings.Contains(out, "monitor") {
		t.Errorf("second build output:\n%s", out)
	}
}

func TestBuildCommandReportsFailures(t *testing.T) {
	h := setupProject(t)
	h.tc.failMain = map[string]bool{"Monitor.lf": true}

	err := h.run("build", "--keep-going")
	if err == nil || err.Error() != "1 of 2 apps failed" {
		t.Fatalf("err = %v", err)
	}
	out := h.out.String()
	if !strings.Contains(out, "monitor: ") || !strings.Contains(out, "logger built") {
		t.Errorf("output:\n%s", out)
	}
}

func TestBuildCommandUnknownApp(t *testing.T) {
	h := setupProject(t)

	err := h.run("build", "-a", "ghost")
	if !errors.Is(err, errors.ErrCodeUnknownAppName) {
		t.Fatalf("err = %v, want UNKNOWN_APP_NAME", err)
	}
	if h.tc.count("lfc") != 0 {
		t.Error("apps built after an invalid selection")
	}
}

func TestCleanCommand(t *testing.T) {
	h := setupProject(t)
	bin := filepath.Join(filepath.Dir(h.dir), manifest.OutputDir, "bin")
	if err := os.MkdirAll(bin, 0o755); err != nil {
		t.Fatal(err)
	}

	if err := h.run("clean"); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(bin); !os.IsNotExist(err) {
		t.Error("bin survived clean")
	}
	if !strings.Contains(h.out.String(), "monitor cleaned") {
		t.Errorf("output:\n%s", h.out.String())
	}
}

func TestTreeCommand(t *testing.T) {
	h := setupProject(t)

	if err := h.run("tree"); err != nil {
		t.Fatal(err)
	}
	if got, want := h.out.String(), "blinky\n└── mqtt 1.2.0\n"; got != want {
		t.Errorf("tree =\n%s\nwant\n%s", got, want)
	}

	if err := h.run("tree", "--format", "json"); err == nil {
		t.Error("tree accepted an unknown format")
	}

	h.out.Reset()
	path := filepath.Join(t.TempDir(), "deps.dot")
	if err := h.run("tree", "-f", "dot", "-o", path); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(data), "digraph") {
		t.Errorf("dot output = %q", data)
	}
}

func TestStoreCommands(t *testing.T) {
	h := setupProject(t)
	root := filepath.Dir(h.dir)

	if err := h.run("store", "path"); err != nil {
		t.Fatal(err)
	}
	want := filepath.Join(root, manifest.OutputDir, manifest.LibraryDir)
	if got := strings.TrimSpace(h.out.String()); got != want {
		t.Errorf("store path = %s, want %s", got, want)
	}

	if err := h.run("build", "--no-compile"); err != nil {
		t.Fatal(err)
	}
	entries, _ := os.ReadDir(want)
	if len(entries) == 0 {
		t.Fatal("build stored nothing")
	}

	h.out.Reset()
	if err := h.run("store", "clear"); err != nil {
		t.Fatal(err)
	}
	entries, _ = os.ReadDir(want)
	if len(entries) != 0 {
		t.Errorf("store holds %d entries after clear", len(entries))
	}
	if !strings.Contains(h.out.String(), "Cleared package store") {
		t.Errorf("output:\n%s", h.out.String())
	}
}

func TestInitNative(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "Blinky")
	if err := os.Mkdir(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	h := newHarness(t, dir)

	if err := h.run("init", "--language", "cpp"); err != nil {
		t.Fatal(err)
	}
	f, err := manifest.Load(filepath.Join(dir, manifest.FileName), nil)
	if err != nil {
		t.Fatal(err)
	}
	if f.Package.Name != "blinky" || len(f.Apps) != 1 {
		t.Fatalf("manifest = %+v", f)
	}
	if app := f.Apps[0]; app.Target != manifest.Cpp || app.Main != manifest.DefaultMain || app.Platform != manifest.Native {
		t.Errorf("app = %+v", app)
	}
	if _, err := os.Stat(filepath.Join(dir, "src", "Main.lf")); err != nil {
		t.Errorf("hello world missing: %v", err)
	}

	err = h.run("init")
	if !errors.Is(err, errors.ErrCodeInvalidProjectLocation) {
		t.Errorf("second init err = %v, want INVALID_PROJECT_LOCATION", err)
	}
}

func TestInitRejectsBadFlags(t *testing.T) {
	h := newHarness(t, t.TempDir())

	for _, args := range [][]string{
		{"init", "--language", "cobol"},
		{"init", "--platform", "arduino"},
	} {
		if err := h.run(args...); !errors.Is(err, errors.ErrCodeInvalidInput) {
			t.Errorf("%v: err = %v, want INVALID_INPUT", args, err)
		}
	}
}

func TestInitZephyrTemplate(t *testing.T) {
	dir := t.TempDir()
	h := newHarness(t, dir)
	var cloned string
	h.cli.clone = func(_ context.Context, url, dst string, lock *manifest.VersionLock) (string, error) {
		cloned = url
		writeFiles(t, dst, map[string]string{
			".git/HEAD":      "ref: refs/heads/main\n",
			".gitignore":     "build/\n",
			"west.yml":       "manifest: {}\n",
			"src/Blink.lf":   "target C {\n  platform: Zephyr\n};\nmain reactor Blink {}\n",
			"src/lib/Led.lf": "target C;\nreactor Led {}\n",
		})
		return "0123456789abcdef", nil
	}

	if err := h.run("init", "--platform", "zephyr"); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(cloned, "lf-west-template") {
		t.Errorf("cloned %q", cloned)
	}
	for _, p := range []string{".git", ".gitignore"} {
		if _, err := os.Stat(filepath.Join(dir, p)); !os.IsNotExist(err) {
			t.Errorf("%s copied from the template", p)
		}
	}
	if _, err := os.Stat(filepath.Join(dir, "west.yml")); err != nil {
		t.Errorf("template file missing: %v", err)
	}

	f, err := manifest.Load(filepath.Join(dir, manifest.FileName), nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(f.Apps) != 1 {
		t.Fatalf("apps = %+v", f.Apps)
	}
	if app := f.Apps[0]; app.Name != "Blink" || app.Main != "src/Blink.lf" || app.Platform != manifest.Zephyr {
		t.Errorf("app = %+v", app)
	}
}

func TestCompletionCommand(t *testing.T) {
	h := newHarness(t, t.TempDir())

	if err := h.run("completion", "bash"); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(h.out.String(), "lingo") {
		t.Error("bash completion does not mention lingo")
	}
	if err := h.run("completion", "tcsh"); err == nil {
		t.Error("completion accepted an unknown shell")
	}
}

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		n    int64
		want string
	}{
		{0, "0 B"},
		{1023, "1023 B"},
		{1024, "1.0 KiB"},
		{5 << 20, "5.0 MiB"},
	}
	for _, tt := range tests {
		if got := formatBytes(tt.n); got != tt.want {
			t.Errorf("formatBytes(%d) = %q, want %q", tt.n, got, tt.want)
		}
	}
}
