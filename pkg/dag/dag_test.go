package dag

import (
	"errors"
	"slices"
	"testing"
)

func TestAddNode(t *testing.T) {
	g := New(nil)
	if err := g.AddNode(Node{}); !errors.Is(err, ErrInvalidNodeID) {
		t.Errorf("empty ID: err = %v", err)
	}
	if err := g.AddNode(Node{ID: "a"}); err != nil {
		t.Fatal(err)
	}
	if err := g.AddNode(Node{ID: "a"}); !errors.Is(err, ErrDuplicateNodeID) {
		t.Errorf("duplicate: err = %v", err)
	}
	n, ok := g.Node("a")
	if !ok || n.Meta == nil {
		t.Errorf("Node(a) = %v, %v; want non-nil meta", n, ok)
	}
}

func TestAddEdge(t *testing.T) {
	g := New(nil)
	_ = g.AddNode(Node{ID: "a"})
	_ = g.AddNode(Node{ID: "b", Row: 1})

	tests := []struct {
		name string
		edge Edge
		want error
	}{
		{"ok", Edge{From: "a", To: "b"}, nil},
		{"duplicate is noop", Edge{From: "a", To: "b"}, nil},
		{"unknown source", Edge{From: "x", To: "b"}, ErrUnknownSourceNode},
		{"unknown target", Edge{From: "a", To: "x"}, ErrUnknownTargetNode},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := g.AddEdge(tt.edge); !errors.Is(err, tt.want) {
				t.Errorf("AddEdge() = %v, want %v", err, tt.want)
			}
		})
	}
	if g.EdgeCount() != 1 {
		t.Errorf("EdgeCount = %d, want 1", g.EdgeCount())
	}
}

func TestNodesOrder(t *testing.T) {
	g := New(nil)
	for _, n := range []Node{{ID: "z", Row: 1}, {ID: "b"}, {ID: "a", Row: 1}, {ID: "c"}} {
		_ = g.AddNode(n)
	}
	got := NodeIDs(g.Nodes())
	want := []string{"b", "c", "a", "z"}
	if !slices.Equal(got, want) {
		t.Errorf("Nodes() = %v, want %v", got, want)
	}
	if g.MaxRow() != 1 {
		t.Errorf("MaxRow() = %d, want 1", g.MaxRow())
	}
}

func TestLabel(t *testing.T) {
	if got := (Node{ID: "mqtt@1.0.0"}).Label(); got != "mqtt@1.0.0" {
		t.Errorf("Label() = %q", got)
	}
	if got := (Node{ID: "x", Meta: Metadata{"label": "mqtt 1.0.0"}}).Label(); got != "mqtt 1.0.0" {
		t.Errorf("Label() = %q", got)
	}
}

func TestSourcesSinks(t *testing.T) {
	g := New(nil)
	_ = g.AddNode(Node{ID: "app"})
	_ = g.AddNode(Node{ID: "cli"})
	_ = g.AddNode(Node{ID: "shared", Row: 1})
	_ = g.AddEdge(Edge{From: "app", To: "shared"})
	_ = g.AddEdge(Edge{From: "cli", To: "shared"})

	if got := NodeIDs(g.Sources()); !slices.Equal(got, []string{"app", "cli"}) {
		t.Errorf("Sources() = %v", got)
	}
	if got := NodeIDs(g.Sinks()); !slices.Equal(got, []string{"shared"}) {
		t.Errorf("Sinks() = %v", got)
	}
}
