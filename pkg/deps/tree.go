package deps

import (
	"fmt"
	"slices"

	"github.com/lingo-build/lingo/pkg/checksum"
	"github.com/lingo-build/lingo/pkg/dag"
	"github.com/lingo-build/lingo/pkg/manifest"
	"github.com/lingo-build/lingo/pkg/properties"
	"github.com/lingo-build/lingo/pkg/version"
)

// TreeNode is a fetched package and the packages it pulled in.
type TreeNode struct {
	Name    string
	Version version.Version         // version declared in the package's Lingo.toml
	Details manifest.PackageDetails // requirement, source and resolved revision of the first declaration

	// Requirements holds the requirement of every declaration that reached
	// this node, in discovery order.
	Requirements []version.Requirement

	Location    string // directory of the package in the store
	IncludePath string // library sources, relative to Location
	Hash        checksum.Sum
	Properties  properties.Library

	Depth int // 0 for direct dependencies of the project
	Order int // position in pull order

	Children []*TreeNode
}

// ID returns "name@version".
func (n *TreeNode) ID() string {
	return fmt.Sprintf("%s@%s", n.Name, n.Version)
}

// ShallowClone returns a copy of n without children.
func (n *TreeNode) ShallowClone() *TreeNode {
	c := *n
	c.Requirements = slices.Clone(n.Requirements)
	c.Children = nil
	return &c
}

// Aggregate returns shallow clones of n and every node reachable from it in
// depth-first pre-order. Each node appears once even if it is reachable
// through several paths or a cycle.
func (n *TreeNode) Aggregate() []*TreeNode {
	return aggregate([]*TreeNode{n}, make(map[*TreeNode]bool))
}

func aggregate(nodes []*TreeNode, seen map[*TreeNode]bool) []*TreeNode {
	var out []*TreeNode
	for _, n := range nodes {
		if seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, n.ShallowClone())
		out = append(out, aggregate(n.Children, seen)...)
	}
	return out
}

// AggregateAll aggregates several roots, visiting shared subtrees once.
func AggregateAll(roots []*TreeNode) []*TreeNode {
	return aggregate(roots, make(map[*TreeNode]bool))
}

// Graph converts the pulled tree into a [dag.DAG] keyed by [TreeNode.ID].
// Nodes carry version, source and checksum metadata; rows are depths.
//
// Distinct nodes sharing a name and version (equal versions pulled from
// different sources) get the short checksum appended to their ID and keep
// "name@version" as their label.
func Graph(roots []*TreeNode) *dag.DAG {
	g := dag.New(nil)
	ids := make(map[*TreeNode]string)
	taken := make(map[string]bool)

	idOf := func(n *TreeNode) string {
		id := n.ID()
		if taken[id] {
			id += "+" + n.Hash.String()[:8]
			for i := 2; taken[id]; i++ {
				id = fmt.Sprintf("%s+%s-%d", n.ID(), n.Hash.String()[:8], i)
			}
		}
		taken[id] = true
		ids[n] = id
		return id
	}

	var add func(n *TreeNode) string
	add = func(n *TreeNode) string {
		if id, ok := ids[n]; ok {
			return id
		}
		id := idOf(n)
		meta := dag.Metadata{
			"version":  n.Version.String(),
			"source":   n.Details.Source.String(),
			"checksum": n.Hash.String(),
		}
		if id != n.ID() {
			meta["label"] = n.ID()
		}
		// IDs are unique and non-empty, and both edge endpoints exist.
		_ = g.AddNode(dag.Node{ID: id, Row: n.Depth, Meta: meta})
		for _, c := range n.Children {
			_ = g.AddEdge(dag.Edge{From: id, To: add(c)})
		}
		return id
	}
	for _, r := range roots {
		add(r)
	}
	return g
}
