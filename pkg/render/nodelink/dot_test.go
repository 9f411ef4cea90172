package nodelink

import (
	"context"
	"strings"
	"testing"

	"github.com/lingo-build/lingo/pkg/dag"
)

func TestToDOT_Basic(t *testing.T) {
	g := dag.New(nil)
	_ = g.AddNode(dag.Node{ID: "mqtt@1.2.0", Row: 0, Meta: dag.Metadata{"version": "1.2.0"}})
	_ = g.AddNode(dag.Node{ID: "paho@0.9.1", Row: 1, Meta: dag.Metadata{"version": "0.9.1"}})
	_ = g.AddEdge(dag.Edge{From: "mqtt@1.2.0", To: "paho@0.9.1"})

	dot := ToDOT(g, Options{Title: "blinky"})

	if !strings.Contains(dot, "digraph G") {
		t.Error("ToDOT() output missing digraph declaration")
	}
	if !strings.Contains(dot, `label="blinky"`) {
		t.Error("ToDOT() output missing title")
	}
	if !strings.Contains(dot, `label="mqtt\n1.2.0"`) {
		t.Errorf("ToDOT() output missing mqtt label:\n%s", dot)
	}
	if !strings.Contains(dot, `"mqtt@1.2.0" -> "paho@0.9.1"`) {
		t.Error("ToDOT() output missing edge")
	}
}

func TestFmtLabel(t *testing.T) {
	n := dag.Node{
		ID:   "paho@0.9.1",
		Row:  2,
		Meta: dag.Metadata{"version": "0.9.1", "source": "git+https://example.com/paho.git"},
	}

	if got := fmtLabel(n, false); got != "paho\n0.9.1" {
		t.Errorf("fmtLabel() simple = %q", got)
	}

	label := fmtLabel(n, true)
	if !strings.HasPrefix(label, "paho\n0.9.1\n") {
		t.Errorf("fmtLabel() detailed should start with name and version: %q", label)
	}
	if !strings.Contains(label, "depth: 2") {
		t.Errorf("fmtLabel() detailed missing depth: %q", label)
	}
	if !strings.Contains(label, "source: git+https://example.com/paho.git") {
		t.Errorf("fmtLabel() detailed missing metadata: %q", label)
	}

	plain := dag.Node{ID: "plain"}
	if got := fmtLabel(plain, false); got != "plain" {
		t.Errorf("fmtLabel() without version = %q", got)
	}
}

func TestFmtAttrs(t *testing.T) {
	if attrs := fmtAttrs(dag.Node{ID: "direct", Row: 0}, "x"); len(attrs) != 2 {
		t.Errorf("fmtAttrs() direct dependency = %v, want bold outline", attrs)
	}
	if attrs := fmtAttrs(dag.Node{ID: "transitive", Row: 1}, "x"); len(attrs) != 1 {
		t.Errorf("fmtAttrs() transitive dependency = %v", attrs)
	}
}

func TestNormalizeViewBox(t *testing.T) {
	tests := []struct {
		name string
		svg  string
		want string
	}{
		{
			name: "with viewBox",
			svg:  `<svg viewBox="10 20 800 600" xmlns="http://www.w3.org/2000/svg">content</svg>`,
			want: `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 800.00 600.00" width="800" height="600">content</svg>`,
		},
		{
			name: "no viewBox",
			svg:  `<svg xmlns="http://www.w3.org/2000/svg">content</svg>`,
			want: `<svg xmlns="http://www.w3.org/2000/svg">content</svg>`,
		},
		{
			name: "zero dimensions",
			svg:  `<svg viewBox="0 0 0 0">content</svg>`,
			want: `<svg viewBox="0 0 0 0">content</svg>`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := normalizeViewBox([]byte(tt.svg))
			if string(got) != tt.want {
				t.Errorf("normalizeViewBox() = %q, want %q", string(got), tt.want)
			}
		})
	}
}

func TestRenderSVG(t *testing.T) {
	svg, err := RenderSVG(context.Background(), `digraph G { a -> b; }`)
	if err != nil {
		t.Fatalf("RenderSVG() error: %v", err)
	}
	if !strings.Contains(string(svg), "<svg") {
		t.Error("RenderSVG() output missing <svg> tag")
	}
}

func TestRenderSVG_InvalidDOT(t *testing.T) {
	if _, err := RenderSVG(context.Background(), `not valid DOT {{{`); err == nil {
		t.Error("RenderSVG() should return error for invalid DOT")
	}
}
