package render

import (
	"bytes"
	"fmt"
	"math"

	"github.com/kobex777/anymaps/pkg/geometry"
	"github.com/kobex777/anymaps/pkg/graph"
	"github.com/kobex777/anymaps/pkg/topology"
)

// DefaultPadding surrounds the drawing.
const DefaultPadding = 40.0

// SVGOptions configures native SVG rendering.
type SVGOptions struct {
	// Padding around the drawing, in canvas pixels.
	Padding float64

	// Handles draws the draggable midpoint of every edge.
	Handles bool
}

type nodeStyle struct {
	fill, stroke, text string
}

var nodeStyles = map[topology.Kind]nodeStyle{
	topology.KindRoot:      {fill: "#1f2937", stroke: "#111827", text: "#ffffff"},
	topology.KindPrimary:   {fill: "#fde68a", stroke: "#d97706", text: "#1f2937"},
	topology.KindSecondary: {fill: "#ffffff", stroke: "#cbd5e1", text: "#334155"},
}

var dashArrays = map[string]string{
	topology.StyleDashed: "8 6",
	topology.StyleDotted: "2 5",
}

// RenderSVG draws g as laid out on the canvas. Edges run from the right
// side of their source to the left side of their target along their curve.
func RenderSVG(g graph.Graph, opts SVGOptions) []byte {
	if opts.Padding <= 0 {
		opts.Padding = DefaultPadding
	}
	curves := make(map[string]geometry.Curve, len(g.Edges))
	for _, e := range g.Edges {
		if c, err := g.Curve(e.ID); err == nil {
			curves[e.ID] = c
		}
	}

	box := drawingBounds(g, curves)
	minX, minY := box.Min.X-opts.Padding, box.Min.Y-opts.Padding
	w, h := box.Width+2*opts.Padding, box.Height+2*opts.Padding

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="%.1f %.1f %.1f %.1f" width="%.0f" height="%.0f">`+"\n",
		minX, minY, w, h, w, h)
	buf.WriteString(`  <defs><marker id="arrow" viewBox="0 0 10 10" refX="9" refY="5" markerWidth="7" markerHeight="7" orient="auto-start-reverse">` +
		`<path d="M 0 0 L 10 5 L 0 10 z" fill="#94a3b8"/></marker></defs>` + "\n")

	buf.WriteString(`  <g class="edges">` + "\n")
	for _, e := range g.Edges {
		if c, ok := curves[e.ID]; ok {
			renderEdge(&buf, e, c, opts.Handles)
		}
	}
	buf.WriteString("  </g>\n")

	buf.WriteString(`  <g class="nodes">` + "\n")
	for i := range g.Nodes {
		renderNode(&buf, &g.Nodes[i])
	}
	buf.WriteString("  </g>\n")

	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

func renderEdge(buf *bytes.Buffer, e graph.Edge, c geometry.Curve, handles bool) {
	dash := ""
	if d, ok := dashArrays[e.Style]; ok {
		dash = fmt.Sprintf(` stroke-dasharray="%s"`, d)
	}
	fmt.Fprintf(buf, `    <path id="edge-%s" class="edge" d="%s" fill="none" stroke="#94a3b8" stroke-width="2"%s marker-end="url(#arrow)"/>`+"\n",
		escapeXML(e.ID), c.Path(), dash)

	m := c.Midpoint()
	if e.Label != "" {
		fmt.Fprintf(buf, `    <text class="edge-label" x="%.2f" y="%.2f" text-anchor="middle" font-family="Helvetica, Arial, sans-serif" font-size="12" fill="#64748b">%s</text>`+"\n",
			m.X, m.Y-8, escapeXML(e.Label))
	}
	if handles {
		fmt.Fprintf(buf, `    <circle class="handle" data-edge="%s" cx="%.2f" cy="%.2f" r="5" fill="#ffffff" stroke="#64748b" stroke-width="1.5"/>`+"\n",
			escapeXML(e.ID), m.X, m.Y)
	}
}

func renderNode(buf *bytes.Buffer, n *graph.Node) {
	style, ok := nodeStyles[n.Kind]
	if !ok {
		style = nodeStyles[topology.KindSecondary]
	}
	b := n.Box()
	rx := 12.0
	if n.Kind == topology.KindRoot {
		rx = min(b.Height/2, 40)
	}

	fmt.Fprintf(buf, `    <g id="node-%s" class="node %s">`+"\n", escapeXML(n.ID), n.Kind)
	if n.Description != "" {
		fmt.Fprintf(buf, "      <title>%s</title>\n", escapeXML(n.Description))
	}
	fmt.Fprintf(buf, `      <rect x="%.2f" y="%.2f" width="%.2f" height="%.2f" rx="%.1f" fill="%s" stroke="%s" stroke-width="2"/>`+"\n",
		b.Min.X, b.Min.Y, b.Width, b.Height, rx, style.fill, style.stroke)

	label := n.DisplayLabel()
	if n.Icon != "" {
		label = n.Icon + " " + label
	}
	lines := wrapLabel(label, max(8, int(b.Width/14)))
	size := fontSize(b.Width, b.Height, lines)
	c := b.Center()
	top := c.Y - float64(len(lines)-1)*size*lineHeight/2
	fmt.Fprintf(buf, `      <text x="%.2f" y="%.2f" text-anchor="middle" dominant-baseline="middle" font-family="Helvetica, Arial, sans-serif" font-size="%.1f" fill="%s">`,
		c.X, top, size, style.text)
	for i, l := range lines {
		dy := 0.0
		if i > 0 {
			dy = size * lineHeight
		}
		fmt.Fprintf(buf, `<tspan x="%.2f" dy="%.2f">%s</tspan>`, c.X, dy, escapeXML(l))
	}
	buf.WriteString("</text>\n    </g>\n")
}

// drawingBounds encloses every node box and the control point of every curve,
// which bounds the curve with its anchors.
func drawingBounds(g graph.Graph, curves map[string]geometry.Curve) geometry.Rect {
	if len(g.Nodes) == 0 {
		return geometry.Rect{}
	}
	b := g.Bounds()
	minX, minY := b.Min.X, b.Min.Y
	maxX, maxY := b.Min.X+b.Width, b.Min.Y+b.Height
	for _, c := range curves {
		minX, minY = math.Min(minX, c.P1.X), math.Min(minY, c.P1.Y)
		maxX, maxY = math.Max(maxX, c.P1.X), math.Max(maxY, c.P1.Y)
	}
	return geometry.Rect{Min: geometry.Pt(minX, minY), Width: maxX - minX, Height: maxY - minY}
}
