// Package manifest reads and writes Lingo.toml, the project manifest.
//
// A manifest declares one package, any number of apps (each producing one
// executable from one main reactor), an optional exported library and the
// package's dependencies:
//
//	[package]
//	name = "blinky"
//	version = "0.1.0"
//
//	[[app]]
//	name = "blinky"
//	main = "src/Blinky.lf"
//	target = "C"
//
//	[lib]
//	location = "src/lib"
//	target = "C"
//
//	[lib.properties]
//	cmake-include = "cmake/blinky.cmake"
//
//	[dependencies]
//	mqtt = { version = "^1.0", git = "https://github.com/lf-lang/mqtt.git", tag = "v1.2.0" }
//	utils = { version = ">=0.3", path = "../utils" }
//
// [Parse] validates the file form; [File.ToConfig] fills in defaults relative
// to the project root and reads referenced property files.
package manifest

import (
	"bytes"
	"os"

	"github.com/BurntSushi/toml"

	"github.com/lingo-build/lingo/pkg/errors"
	"github.com/lingo-build/lingo/pkg/properties"
	"github.com/lingo-build/lingo/pkg/version"
)

// File and directory names used inside a project.
const (
	FileName     = "Lingo.toml"
	LockFileName = "Lingo.lock"

	// OutputDir holds all build artifacts, relative to the project root.
	OutputDir = "build"
	// LibraryDir is the content-addressed store, relative to OutputDir.
	LibraryDir = "libraries"
	// IncludeDir holds one directory per locked dependency, relative to OutputDir.
	IncludeDir = "lfc_include"

	DefaultMain            = "src/Main.lf"
	DefaultSourceDir       = "src"
	DefaultLibraryLocation = "src/lib"
)

// File is the on-disk form of Lingo.toml.
type File struct {
	Package      Package                   `toml:"package"`
	Apps         []AppFile                 `toml:"app,omitempty"`
	Library      *LibraryFile              `toml:"lib,omitempty"`
	Dependencies map[string]DependencyFile `toml:"dependencies"`
}

// Package is the [package] table.
type Package struct {
	Name        string          `toml:"name"`
	Version     version.Version `toml:"version"`
	Authors     []string        `toml:"authors,omitempty"`
	Website     string          `toml:"website,omitempty"`
	License     string          `toml:"license,omitempty"`
	Description string          `toml:"description,omitempty"`
}

// AppFile is one [[app]] entry.
type AppFile struct {
	Name       string             `toml:"name,omitempty"`
	Main       string             `toml:"main,omitempty"`
	Target     TargetLanguage     `toml:"target"`
	Platform   Platform           `toml:"platform,omitempty"`
	Properties properties.AppFile `toml:"properties"`
}

// LibraryFile is the [lib] table.
type LibraryFile struct {
	Name       string                 `toml:"name,omitempty"`
	Location   string                 `toml:"location,omitempty"`
	Target     TargetLanguage         `toml:"target"`
	Platform   Platform               `toml:"platform,omitempty"`
	Properties properties.LibraryFile `toml:"properties"`
}

// Parse decodes and validates a manifest.
func Parse(data []byte) (*File, error) {
	var f File
	if err := toml.Unmarshal(data, &f); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidManifest, err, "parse %s", FileName)
	}
	if err := f.Validate(); err != nil {
		return nil, err
	}
	return &f, nil
}

// Load reads and parses the manifest at path. A nil readFile uses os.ReadFile.
func Load(path string, readFile properties.ReadFileFunc) (*File, error) {
	if readFile == nil {
		readFile = os.ReadFile
	}
	data, err := readFile(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidManifest, err, "read %s", path)
	}
	f, err := Parse(data)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidManifest, err, "%s", path)
	}
	return f, nil
}

// Validate checks the invariants the TOML decoder cannot express.
func (f *File) Validate() error {
	if f.Package.Name == "" {
		return errors.New(errors.ErrCodeInvalidManifest, "package.name is required")
	}
	if f.Package.Version.IsZero() {
		return errors.New(errors.ErrCodeInvalidManifest, "package.version is required")
	}
	for i, app := range f.Apps {
		if app.Target == "" {
			return errors.New(errors.ErrCodeInvalidManifest, "app[%d]: target is required", i)
		}
	}
	if f.Library != nil && f.Library.Target == "" {
		return errors.New(errors.ErrCodeInvalidManifest, "lib: target is required")
	}
	for name, dep := range f.Dependencies {
		if err := errors.ValidatePackageName(name); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidManifest, err, "dependency %q", name)
		}
		if _, err := dep.Details(); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidManifest, err, "dependency %q", name)
		}
	}
	return nil
}

// Marshal encodes f as TOML.
func (f *File) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(f); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Write encodes f to path.
func (f *File) Write(path string) error {
	data, err := f.Marshal()
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
