// Package tree prints a dependency graph as an indented text tree.
//
//	blinky
//	├── mqtt 1.2.0
//	│   └── paho 0.9.1
//	└── utils 0.3.0
//	    └── paho 0.9.1 (*)
//
// A package reached a second time is marked with (*) and not expanded again.
package tree

import (
	"fmt"
	"io"
	"strings"

	"github.com/lingo-build/lingo/pkg/dag"
)

const (
	branch = "├── "
	last   = "└── "
	pipe   = "│   "
	space  = "    "
)

// Write prints g below title. Trees start at the row 0 nodes (the direct
// dependencies) in ID order.
func Write(w io.Writer, g *dag.DAG, title string) error {
	p := &printer{w: w, g: g, seen: make(map[string]bool)}
	if title != "" {
		p.line("", title)
	}
	var roots []string
	for _, n := range g.Nodes() {
		if n.Row == 0 {
			roots = append(roots, n.ID)
		}
	}
	for i, id := range roots {
		p.node("", id, i == len(roots)-1)
	}
	return p.err
}

// String is [Write] into a string.
func String(g *dag.DAG, title string) string {
	var sb strings.Builder
	_ = Write(&sb, g, title)
	return sb.String()
}

type printer struct {
	w    io.Writer
	g    *dag.DAG
	seen map[string]bool
	err  error
}

func (p *printer) line(prefix, text string) {
	if p.err != nil {
		return
	}
	_, p.err = fmt.Fprintf(p.w, "%s%s\n", prefix, text)
}

func (p *printer) node(prefix, id string, isLast bool) {
	connector, indent := branch, pipe
	if isLast {
		connector, indent = last, space
	}

	label := id
	if n, ok := p.g.Node(id); ok {
		label = n.Label()
		if v, ok := n.Meta["version"]; ok {
			label = strings.TrimSuffix(label, "@"+fmt.Sprint(v)) + " " + fmt.Sprint(v)
		}
	}
	if p.seen[id] {
		p.line(prefix+connector, label+" (*)")
		return
	}
	p.seen[id] = true
	p.line(prefix+connector, label)

	children := p.g.Children(id)
	for i, c := range children {
		p.node(prefix+indent, c, i == len(children)-1)
	}
}
