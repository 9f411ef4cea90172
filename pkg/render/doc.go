// Package render turns resolved dependency graphs into something a person
// can read.
//
// The [nodelink] subpackage draws the graph with Graphviz and the [tree]
// subpackage prints it as an indented text tree. This package holds the
// shared format conversion:
//
//	svg, err := nodelink.RenderSVG(ctx, dot)
//	pdf, err := render.ToPDF(ctx, svg)
//	png, err := render.ToPNG(ctx, svg, 2.0) // 2x scale
//
// [ToPDF] and [ToPNG] run the external rsvg-convert tool from librsvg and
// fail with UNSUPPORTED when it is not installed.
package render
