// Package templates provides the starter sources written by "lingo init".
//
// The templates are embedded directly into the binary using go:embed, so
// initializing a native project needs no network access.
package templates

import (
	"embed"
	"fmt"

	"github.com/lingo-build/lingo/pkg/manifest"
)

//go:embed files/*.lf
var files embed.FS

var helloFiles = map[manifest.TargetLanguage]string{
	manifest.C:          "files/HelloC.lf",
	manifest.Cpp:        "files/HelloCpp.lf",
	manifest.Python:     "files/HelloPy.lf",
	manifest.TypeScript: "files/HelloTS.lf",
	manifest.Rust:       "files/HelloRust.lf",
}

// Hello returns a hello-world main reactor for target.
func Hello(target manifest.TargetLanguage) ([]byte, error) {
	name, ok := helloFiles[target]
	if !ok {
		return nil, fmt.Errorf("no template for target %q", target)
	}
	return files.ReadFile(name)
}

// Template repositories cloned for embedded platforms.
const (
	ZephyrTemplateURL = "https://github.com/lf-lang/lf-west-template"
	RP2040TemplateURL = "https://github.com/lf-lang/lf-pico-template"
)

// RepositoryFor returns the template repository for platform, if it has one.
func RepositoryFor(platform manifest.Platform) (string, bool) {
	switch platform {
	case manifest.Zephyr:
		return ZephyrTemplateURL, true
	case manifest.RP2040:
		return RP2040TemplateURL, true
	}
	return "", false
}
