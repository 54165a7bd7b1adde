package render

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/kobex777/anymaps/pkg/graph"
	"github.com/kobex777/anymaps/pkg/layout"
	"github.com/kobex777/anymaps/pkg/topology"
)

// pointsPerInch converts canvas pixels to Graphviz inches.
const pointsPerInch = 72.0

// DOTOptions configures DOT generation.
type DOTOptions struct {
	// Direction sets rankdir: right gives LR, down gives TB.
	Direction layout.Direction

	// Pinned writes each node's canvas position as a fixed pos attribute.
	Pinned bool
}

var kindFill = map[topology.Kind]string{
	topology.KindRoot:      "#1f2937",
	topology.KindPrimary:   "#fde68a",
	topology.KindSecondary: "#ffffff",
}

// ToDOT converts a graph to Graphviz DOT source. Node boxes keep their
// canvas size; edge styles map onto Graphviz line styles.
func ToDOT(g graph.Graph, opts DOTOptions) string {
	rankdir := "LR"
	if opts.Direction == layout.DirectionDown {
		rankdir = "TB"
	}

	var buf bytes.Buffer
	buf.WriteString("digraph mindmap {\n")
	fmt.Fprintf(&buf, "  rankdir=%s;\n", rankdir)
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontname=\"Helvetica\", fixedsize=true];\n")
	buf.WriteString("  edge [arrowsize=0.7, color=\"#94a3b8\"];\n")
	buf.WriteString("  ranksep=1.2;\n")
	buf.WriteString("  nodesep=0.4;\n")
	buf.WriteString("\n")

	for i := range g.Nodes {
		n := &g.Nodes[i]
		fmt.Fprintf(&buf, "  %q [%s];\n", n.ID, strings.Join(nodeAttrs(n, opts.Pinned), ", "))
	}

	buf.WriteString("\n")
	for _, e := range g.Edges {
		attrs := edgeAttrs(e)
		if len(attrs) == 0 {
			fmt.Fprintf(&buf, "  %q -> %q;\n", e.Source, e.Target)
			continue
		}
		fmt.Fprintf(&buf, "  %q -> %q [%s];\n", e.Source, e.Target, strings.Join(attrs, ", "))
	}

	buf.WriteString("}\n")
	return buf.String()
}

func nodeAttrs(n *graph.Node, pinned bool) []string {
	size := n.EffectiveSize()
	attrs := []string{
		fmt.Sprintf("label=%q", n.DisplayLabel()),
		fmt.Sprintf("width=%s", inches(size.Width)),
		fmt.Sprintf("height=%s", inches(size.Height)),
	}
	if fill, ok := kindFill[n.Kind]; ok && n.Kind != topology.KindSecondary {
		attrs = append(attrs, fmt.Sprintf("fillcolor=%q", fill))
	}
	if n.Kind == topology.KindRoot {
		attrs = append(attrs, "fontcolor=white", "fontsize=20")
	}
	if n.Description != "" {
		attrs = append(attrs, fmt.Sprintf("tooltip=%q", n.Description))
	}
	if pinned {
		c := n.Box().Center()
		// Graphviz y grows upward.
		attrs = append(attrs, fmt.Sprintf("pos=\"%s,%s!\"", num(c.X), num(-c.Y)))
	}
	return attrs
}

func edgeAttrs(e graph.Edge) []string {
	var attrs []string
	if e.Label != "" {
		attrs = append(attrs, fmt.Sprintf("label=%q", e.Label))
	}
	switch e.Style {
	case topology.StyleDashed:
		attrs = append(attrs, "style=dashed")
	case topology.StyleDotted:
		attrs = append(attrs, "style=dotted")
	}
	return attrs
}

func inches(px float64) string { return strconv.FormatFloat(px/pointsPerInch, 'f', 3, 64) }

func num(v float64) string { return strconv.FormatFloat(v, 'f', 2, 64) }

// GraphvizSVG renders DOT source to SVG in process. pinned selects the neato
// engine so pos attributes from [DOTOptions.Pinned] are honoured.
func GraphvizSVG(ctx context.Context, dot string, pinned bool) ([]byte, error) {
	var buf bytes.Buffer
	if err := graphvizRender(ctx, dot, pinned, graphviz.SVG, &buf); err != nil {
		return nil, err
	}
	return normalizeViewBox(buf.Bytes()), nil
}

// GraphvizPNG renders DOT source to PNG in process.
func GraphvizPNG(ctx context.Context, dot string, pinned bool) ([]byte, error) {
	var buf bytes.Buffer
	if err := graphvizRender(ctx, dot, pinned, graphviz.PNG, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func graphvizRender(ctx context.Context, dot string, pinned bool, format graphviz.Format, buf *bytes.Buffer) error {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()
	if pinned {
		gv.SetLayout(graphviz.NEATO)
	}

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	if err := gv.Render(ctx, g, format, buf); err != nil {
		return fmt.Errorf("render: %w", err)
	}
	return nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces Graphviz's pt-sized root element with a plain
// pixel-sized one so the drawing scales in browsers.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	root := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`, w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(root))
}
