// Package render draws interactive mind maps.
//
// # Overview
//
// [Render] turns a positioned [graph.Graph] into one of several outputs:
//
//   - json: the graph itself, as stored
//   - mermaid: the portable graph syntax
//   - dot: Graphviz DOT source
//   - svg: a drawing of the canvas, boxes at their positions and edges as
//     quadratic curves through their control points
//   - png, pdf: the SVG converted with rsvg-convert
//
// The native engine draws the canvas as the user arranged it. The graphviz
// engine hands the DOT source to [github.com/goccy/go-graphviz], which lays
// the tree out again; with pinned positions it uses neato and keeps the
// canvas coordinates.
//
//	svg, err := render.Render(ctx, g, render.Options{Format: render.FormatSVG})
//	dot := render.ToDOT(g, render.DOTOptions{Direction: layout.DirectionRight})
//
// # Dependencies
//
// PDF output, and PNG output from the native engine, require librsvg
// (rsvg-convert).
package render
