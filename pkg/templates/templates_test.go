package templates

import (
	"strings"
	"testing"

	"github.com/lingo-build/lingo/pkg/manifest"
)

func TestHello(t *testing.T) {
	for _, target := range manifest.TargetLanguages {
		t.Run(string(target), func(t *testing.T) {
			data, err := Hello(target)
			if err != nil {
				t.Fatalf("Hello(%s): %v", target, err)
			}
			if !strings.HasPrefix(string(data), "target "+string(target)+";") {
				t.Errorf("template does not declare target %s:\n%s", target, data)
			}
			if !strings.Contains(string(data), "main reactor") {
				t.Error("template has no main reactor")
			}
		})
	}

	if _, err := Hello("Cobol"); err == nil {
		t.Error("expected error for unknown target")
	}
}

func TestRepositoryFor(t *testing.T) {
	if _, ok := RepositoryFor(manifest.Native); ok {
		t.Error("native has no template repository")
	}
	if url, ok := RepositoryFor(manifest.Zephyr); !ok || url != ZephyrTemplateURL {
		t.Errorf("Zephyr = %q, %v", url, ok)
	}
}
