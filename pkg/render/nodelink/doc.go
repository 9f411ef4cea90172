// Package nodelink renders dependency graphs as node-link diagrams.
//
// Packages appear as boxes labelled with name and version, connected by
// arrows from dependent to dependency. Direct dependencies of the project
// are drawn with a bold outline.
//
// # Usage
//
// Convert a graph to DOT format, then render to SVG:
//
//	g := deps.Graph(roots)
//	dot := nodelink.ToDOT(g, nodelink.Options{Title: "blinky"})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// For PDF or PNG output:
//
//	pdf, err := nodelink.RenderPDF(ctx, dot)
//	png, err := nodelink.RenderPNG(ctx, dot, 2.0)
//
// With Detailed set, labels also carry the depth, source and checksum of
// each package.
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG
// rendering. PDF and PNG conversion requires librsvg (rsvg-convert).
package nodelink
