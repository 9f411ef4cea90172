package manifest

import (
	"path/filepath"
	"sort"
	"strings"

	"github.com/lingo-build/lingo/pkg/errors"
	"github.com/lingo-build/lingo/pkg/properties"
)

// Config is a manifest with every default filled in.
type Config struct {
	Root         string // absolute directory containing Lingo.toml
	Package      Package
	Apps         []*App
	Library      *Library
	Dependencies []Dependency // sorted by name
}

// App is a buildable unit producing one executable.
type App struct {
	Root            string // project root
	Name            string // unique within the project; also the binary name
	OutputRoot      string // where src-gen, bin and friends are placed
	Main            string // absolute path of the main reactor file
	MainReactorName string // file stem of Main
	Target          TargetLanguage
	Platform        Platform
	Properties      properties.App
}

// Library is the reusable part a package exports to its dependents.
type Library struct {
	Name       string
	Location   string // absolute directory of the library sources
	Target     TargetLanguage
	Platform   Platform
	Properties properties.Library
	OutputRoot string
}

// ToConfig applies defaults relative to root and reads property files. A nil
// readFile uses os.ReadFile.
func (f *File) ToConfig(root string, readFile properties.ReadFileFunc) (*Config, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	cfg := &Config{Root: abs, Package: f.Package}

	seen := make(map[string]bool)
	for _, af := range f.Apps {
		app, err := af.convert(f.Package.Name, abs, readFile)
		if err != nil {
			return nil, err
		}
		if seen[app.Name] {
			return nil, errors.New(errors.ErrCodeInvalidManifest, "duplicate app name %q", app.Name)
		}
		seen[app.Name] = true
		cfg.Apps = append(cfg.Apps, app)
	}

	if f.Library != nil {
		lib, err := f.Library.convert(f.Package.Name, abs, readFile)
		if err != nil {
			return nil, err
		}
		cfg.Library = lib
	}

	for name, df := range f.Dependencies {
		d, err := df.Details()
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidManifest, err, "dependency %q", name)
		}
		cfg.Dependencies = append(cfg.Dependencies, Dependency{Name: name, Details: d})
	}
	sort.Slice(cfg.Dependencies, func(i, j int) bool {
		return cfg.Dependencies[i].Name < cfg.Dependencies[j].Name
	})
	return cfg, nil
}

func (af AppFile) convert(pkgName, root string, readFile properties.ReadFileFunc) (*App, error) {
	main := af.Main
	if main == "" {
		main = DefaultMain
	}
	stem := fileStem(main)

	name := af.Name
	switch {
	case name != "":
	case af.Main != "":
		name = stem
	default:
		name = pkgName
	}
	if err := errors.ValidatePackageName(name); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidManifest, err, "app %q", name)
	}

	platform := af.Platform
	if platform == "" {
		platform = Native
	}

	props, err := af.Properties.Resolve(root, readFile)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidManifest, err, "app %q", name)
	}

	return &App{
		Root:            root,
		Name:            name,
		OutputRoot:      filepath.Join(root, OutputDir),
		Main:            joinAbs(root, main),
		MainReactorName: stem,
		Target:          af.Target,
		Platform:        platform,
		Properties:      props,
	}, nil
}

func (lf LibraryFile) convert(pkgName, root string, readFile properties.ReadFileFunc) (*Library, error) {
	location := lf.Location
	if location == "" {
		location = DefaultLibraryLocation
	}

	name := lf.Name
	switch {
	case name != "":
	case lf.Location != "":
		name = fileStem(lf.Location)
	default:
		name = pkgName
	}

	platform := lf.Platform
	if platform == "" {
		platform = Native
	}

	props, err := lf.Properties.Resolve(root, readFile)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidManifest, err, "lib %q", name)
	}

	return &Library{
		Name:       name,
		Location:   joinAbs(root, location),
		Target:     lf.Target,
		Platform:   platform,
		Properties: props,
		OutputRoot: filepath.Join(root, OutputDir),
	}, nil
}

// OutputRoot returns the project's build directory.
func (c *Config) OutputRoot() string { return filepath.Join(c.Root, OutputDir) }

// StoreDir returns the content-addressed library store.
func (c *Config) StoreDir() string { return filepath.Join(c.OutputRoot(), LibraryDir) }

// IncludeDir returns the directory holding one folder per locked dependency.
func (c *Config) IncludeDir() string { return filepath.Join(c.OutputRoot(), IncludeDir) }

// LockPath returns the path of Lingo.lock.
func (c *Config) LockPath() string { return filepath.Join(c.Root, LockFileName) }

// SelectApps returns the apps named in names, in manifest order. An empty
// filter selects every app. Unknown names are reported together.
func (c *Config) SelectApps(names []string) ([]*App, error) {
	if len(names) == 0 {
		return c.Apps, nil
	}
	want := make(map[string]bool, len(names))
	for _, n := range names {
		want[n] = true
	}

	var selected []*App
	for _, app := range c.Apps {
		if want[app.Name] {
			selected = append(selected, app)
			delete(want, app.Name)
		}
	}
	if len(want) > 0 {
		var unknown []string
		for _, n := range names {
			if want[n] {
				unknown = append(unknown, n)
				delete(want, n)
			}
		}
		return nil, errors.New(errors.ErrCodeUnknownAppName, "Unknown app names: %s", strings.Join(unknown, ", "))
	}
	return selected, nil
}

// SrcGenDir returns the directory code generation writes to.
func (a *App) SrcGenDir() string { return filepath.Join(a.OutputRoot, "src-gen") }

// BinDir returns the directory executables are installed into.
func (a *App) BinDir() string { return filepath.Join(a.OutputRoot, "bin") }

// ExecutablePath returns where a successful build leaves the executable.
// TypeScript apps produce a JavaScript entry point.
func (a *App) ExecutablePath() string {
	name := a.Name
	if a.Target == TypeScript {
		name += ".js"
	}
	return filepath.Join(a.BinDir(), name)
}

// SrcDir returns the nearest ancestor of Main named "src".
func (a *App) SrcDir() (string, bool) {
	for dir := filepath.Dir(a.Main); ; dir = filepath.Dir(dir) {
		if filepath.Base(dir) == DefaultSourceDir {
			return dir, true
		}
		if parent := filepath.Dir(dir); parent == dir {
			return "", false
		}
	}
}

func fileStem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func joinAbs(root, path string) string {
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	return filepath.Join(root, path)
}
