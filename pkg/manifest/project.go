package manifest

import (
	"bufio"
	"bytes"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/lingo-build/lingo/pkg/errors"
	"github.com/lingo-build/lingo/pkg/version"
)

// Find walks upward from start and returns the path of the first Lingo.toml.
func Find(start string) (string, error) {
	dir, err := filepath.Abs(start)
	if err != nil {
		return "", err
	}
	for {
		path := filepath.Join(dir, FileName)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", errors.New(errors.ErrCodeNotFound, "no %s found in %s or any parent directory", FileName, start)
		}
		dir = parent
	}
}

var (
	targetRe      = regexp.MustCompile(`\btarget\s+(\w+)\s*[{;]`)
	mainReactorRe = regexp.MustCompile(`\bmain\s+reactor\s+(\w+)\s*[{(]`)
)

// MainReactor is a main reactor declaration found in a source file.
type MainReactor struct {
	Name   string
	Path   string // relative to the scanned root's parent, slash-separated
	Target TargetLanguage
}

// FindMainReactors scans every .lf file below dir for a main reactor
// declaration. Files without a recognizable target default to C. Results are
// sorted by path.
func FindMainReactors(dir string) ([]MainReactor, error) {
	base := filepath.Dir(dir)
	var found []MainReactor
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || filepath.Ext(path) != ".lf" {
			return nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		mr, ok := scanMainReactor(data)
		if !ok {
			return nil
		}
		rel, err := filepath.Rel(base, path)
		if err != nil {
			return err
		}
		mr.Path = filepath.ToSlash(rel)
		found = append(found, mr)
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(found, func(i, j int) bool { return found[i].Path < found[j].Path })
	return found, nil
}

func scanMainReactor(data []byte) (MainReactor, bool) {
	mr := MainReactor{Target: C}
	var ok bool
	sc := bufio.NewScanner(bytes.NewReader(data))
	for sc.Scan() {
		line := sc.Text()
		if m := targetRe.FindStringSubmatch(line); m != nil {
			if t, err := ParseTargetLanguage(m[1]); err == nil {
				mr.Target = t
			}
		}
		if m := mainReactorRe.FindStringSubmatch(line); m != nil {
			mr.Name = m[1]
			ok = true
		}
	}
	return mr, ok
}

// IsValidProjectLocation reports whether dir can be initialized: it must not
// already contain sources, a library folder or a git checkout.
func IsValidProjectLocation(dir string) bool {
	for _, p := range []string{DefaultSourceDir, ".git", DefaultLibraryLocation} {
		if _, err := os.Stat(filepath.Join(dir, p)); err == nil {
			return false
		}
	}
	return true
}

// NewForInit returns the manifest written by "lingo init" for a project
// named name. When reactors is empty a single app using DefaultMain is
// declared.
func NewForInit(name string, target TargetLanguage, platform Platform, reactors []MainReactor) *File {
	if len(reactors) == 0 {
		reactors = []MainReactor{{Name: "Main", Path: DefaultMain, Target: target}}
	}
	f := &File{
		Package: Package{
			Name:    strings.ToLower(name),
			Version: initialVersion(),
		},
		Dependencies: map[string]DependencyFile{},
	}
	for _, r := range reactors {
		f.Apps = append(f.Apps, AppFile{
			Name:     r.Name,
			Main:     r.Path,
			Target:   r.Target,
			Platform: platform,
		})
	}
	return f
}

// InitialVersion is the package version of a freshly initialized project.
const InitialVersion = "0.1.0"

func initialVersion() version.Version {
	return version.MustParse(InitialVersion)
}
