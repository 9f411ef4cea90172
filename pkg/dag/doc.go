// Package dag provides the directed graph lingo uses to present resolved
// dependencies.
//
// # Overview
//
// Nodes are packages and edges point from a dependent to its dependency.
// Each node carries a row, its depth below the project, so renderers can lay
// the graph out top to bottom the way the resolver discovered it.
//
// # Basic Usage
//
// Create a new graph with [New], add nodes with [DAG.AddNode], and edges with
// [DAG.AddEdge]:
//
//	g := dag.New(nil)
//	g.AddNode(dag.Node{ID: "mqtt@1.2.0", Row: 0})
//	g.AddNode(dag.Node{ID: "paho@0.9.1", Row: 1})
//	g.AddEdge(dag.Edge{From: "mqtt@1.2.0", To: "paho@0.9.1"})
//
// Query the structure with [DAG.Children], [DAG.Parents], [DAG.Sources] and
// [DAG.Sinks]. Iteration via [DAG.Nodes] is deterministic, ordered by row and
// then ID, so printed trees and DOT output are stable across runs.
//
// # Cycles
//
// Lingo packages may depend on each other. The resolver records such
// relations instead of rejecting them, so the graph is not guaranteed to be
// acyclic. [DAG.Validate] reports [ErrGraphHasCycle] for callers that need
// to know.
package dag
