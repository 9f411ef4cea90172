package lock

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/lingo-build/lingo/pkg/checksum"
	"github.com/lingo-build/lingo/pkg/deps"
	"github.com/lingo-build/lingo/pkg/errors"
	"github.com/lingo-build/lingo/pkg/manifest"
	"github.com/lingo-build/lingo/pkg/version"
)

func sum(b byte) checksum.Sum {
	var s checksum.Sum
	for i := range s {
		s[i] = b
	}
	return s
}

func sameEntry(a, b PackageLock) bool {
	return a.Name == b.Name && a.Version.Equal(b.Version) && a.Source == b.Source && a.Checksum == b.Checksum
}

func sampleSelection() []*deps.TreeNode {
	return []*deps.TreeNode{
		{
			Name:    "mqtt",
			Version: version.MustParse("1.2.0"),
			Details: manifest.PackageDetails{Source: manifest.GitSource("https://example.com/mqtt.git"), ResolvedRev: "4f1c2d0e"},
			Hash:    sum(0xab),
		},
		{
			Name:    "ascii",
			Version: version.MustParse("0.1.0"),
			Details: manifest.PackageDetails{Source: manifest.PathSource("../ascii")},
			Hash:    sum(0x01),
		},
	}
}

func TestCreateMarshalRoundTrip(t *testing.T) {
	l, err := Create(sampleSelection())
	if err != nil {
		t.Fatal(err)
	}
	data, err := l.Marshal()
	if err != nil {
		t.Fatal(err)
	}
	text := string(data)
	for _, want := range []string{
		`[ascii]`,
		`source = "path+../ascii"`,
		`[mqtt]`,
		`source = "git+https://example.com/mqtt.git#4f1c2d0e"`,
		`checksum = "` + sum(0xab).String() + `"`,
		`version = "1.2.0"`,
	} {
		if !strings.Contains(text, want) {
			t.Errorf("lock missing %q:\n%s", want, text)
		}
	}
	if strings.Index(text, "[ascii]") > strings.Index(text, "[mqtt]") {
		t.Error("entries should be sorted by name")
	}

	back, err := Unmarshal(data)
	if err != nil {
		t.Fatal(err)
	}
	if len(back.Entries) != 2 || !sameEntry(back.Entries["mqtt"], l.Entries["mqtt"]) || !sameEntry(back.Entries["ascii"], l.Entries["ascii"]) {
		t.Errorf("round trip mismatch: %+v", back.Entries)
	}

	again, _ := back.Marshal()
	if !bytes.Equal(again, data) {
		t.Error("Marshal is not deterministic")
	}
}

func TestCreateRejectsUnresolvedGit(t *testing.T) {
	sel := sampleSelection()
	sel[0].Details.ResolvedRev = ""
	if _, err := Create(sel); !errors.Is(err, errors.ErrCodeInvalidLock) {
		t.Fatalf("err = %v, want INVALID_LOCK", err)
	}
}

func TestUnmarshalErrors(t *testing.T) {
	good := `name = "a"
version = "1.0.0"
source = "path+a"
checksum = "` + sum(1).String() + `"`
	tests := []struct {
		name string
		data string
	}{
		{"not toml", "[[["},
		{"git without rev", "[a]\nname = \"a\"\nversion = \"1.0.0\"\nsource = \"git+https://x\"\nchecksum = \"" + sum(1).String() + "\""},
		{"name mismatch", "[a]\n" + strings.Replace(good, `name = "a"`, `name = "b"`, 1)},
		{"short checksum", "[a]\n" + strings.Replace(good, sum(1).String(), "abc", 1)},
		{"missing version", "[a]\nname = \"a\"\nsource = \"path+a\"\nchecksum = \"" + sum(1).String() + "\""},
		{"missing source", "[a]\nname = \"a\"\nversion = \"1.0.0\"\nchecksum = \"" + sum(1).String() + "\""},
		{"bad name", "[\"../a\"]\n" + strings.Replace(good, `name = "a"`, `name = "../a"`, 1)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Unmarshal([]byte(tt.data)); !errors.Is(err, errors.ErrCodeInvalidLock) {
				t.Errorf("err = %v, want INVALID_LOCK", err)
			}
		})
	}

	l, err := Unmarshal([]byte("[a]\n" + good))
	if err != nil {
		t.Fatalf("valid lock: %v", err)
	}
	if l.Entries["a"].Source.Kind != SourcePath {
		t.Errorf("entry = %+v", l.Entries["a"])
	}
}

func TestSaveAtomic(t *testing.T) {
	path := filepath.Join(t.TempDir(), manifest.LockFileName)
	l, err := Create(sampleSelection())
	if err != nil {
		t.Fatal(err)
	}
	if err := l.Save(path); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Error("temp file left behind")
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if got := strings.Join(loaded.Names(), ","); got != "ascii,mqtt" {
		t.Errorf("Names() = %s", got)
	}
}

func TestSatisfies(t *testing.T) {
	sel := sampleSelection()
	sel[0].Details.Lock = &manifest.VersionLock{Kind: manifest.LockTag, Name: "v1.2.0"}
	l, err := Create(sel)
	if err != nil {
		t.Fatal(err)
	}

	mqttGit := manifest.GitSource("https://example.com/mqtt.git")
	tag := func(name string) *manifest.VersionLock {
		return &manifest.VersionLock{Kind: manifest.LockTag, Name: name}
	}
	dep := func(name, req string, src manifest.Source, lock *manifest.VersionLock) manifest.Dependency {
		return manifest.Dependency{Name: name, Details: manifest.PackageDetails{
			Requirement: version.MustParseRequirement(req),
			Source:      src,
			Lock:        lock,
		}}
	}

	tests := []struct {
		name string
		deps []manifest.Dependency
		want bool
	}{
		{"matching", []manifest.Dependency{
			dep("mqtt", "^1.0", mqttGit, tag("v1.2.0")),
			dep("ascii", "*", manifest.PathSource("../ascii"), nil),
		}, true},
		{"newer requirement", []manifest.Dependency{dep("mqtt", ">=2", mqttGit, tag("v1.2.0"))}, false},
		{"unknown package", []manifest.Dependency{dep("json", "*", manifest.PathSource("json"), nil)}, false},
		{"moved path", []manifest.Dependency{dep("ascii", "*", manifest.PathSource("../ascii-fork"), nil)}, false},
		{"path became tarball", []manifest.Dependency{dep("ascii", "*", manifest.TarballSource("../ascii"), nil)}, false},
		{"new git url", []manifest.Dependency{dep("mqtt", "*", manifest.GitSource("https://example.com/fork.git"), tag("v1.2.0"))}, false},
		{"new tag", []manifest.Dependency{dep("mqtt", "*", mqttGit, tag("v1.3.0"))}, false},
		{"tag became branch", []manifest.Dependency{dep("mqtt", "*", mqttGit, &manifest.VersionLock{Kind: manifest.LockBranch, Name: "v1.2.0"})}, false},
		{"pin dropped", []manifest.Dependency{dep("mqtt", "*", mqttGit, nil)}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := l.Satisfies(tt.deps); got != tt.want {
				t.Errorf("Satisfies() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPinRoundTrip(t *testing.T) {
	sel := sampleSelection()
	sel[0].Details.Lock = &manifest.VersionLock{Kind: manifest.LockBranch, Name: "main"}
	l, err := Create(sel)
	if err != nil {
		t.Fatal(err)
	}
	data, err := l.Marshal()
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `pin = "branch=main"`) {
		t.Errorf("lock does not record the pin:\n%s", data)
	}
	loaded, err := Unmarshal(data)
	if err != nil {
		t.Fatal(err)
	}
	if got := loaded.Entries["mqtt"].Pin; got != "branch=main" {
		t.Errorf("Pin = %q", got)
	}
	if got := loaded.Entries["ascii"].Pin; got != "" {
		t.Errorf("path entry Pin = %q, want empty", got)
	}
}
