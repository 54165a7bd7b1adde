package render

import (
	"context"
	"io"
	"slices"
	"time"

	"github.com/charmbracelet/log"

	errs "github.com/kobex777/anymaps/pkg/errors"
	"github.com/kobex777/anymaps/pkg/graph"
	"github.com/kobex777/anymaps/pkg/layout"
	"github.com/kobex777/anymaps/pkg/topology"
)

// Format is an output format.
type Format string

// Output formats.
const (
	FormatJSON    Format = "json"
	FormatMermaid Format = "mermaid"
	FormatDOT     Format = "dot"
	FormatSVG     Format = "svg"
	FormatPNG     Format = "png"
	FormatPDF     Format = "pdf"
)

// Formats lists every supported format.
var Formats = []Format{FormatJSON, FormatMermaid, FormatDOT, FormatSVG, FormatPNG, FormatPDF}

// Engine selects who draws the picture.
type Engine string

// Drawing engines.
const (
	EngineNative   Engine = "native"
	EngineGraphviz Engine = "graphviz"
)

// Default values.
const (
	DefaultFormat = FormatSVG
	DefaultEngine = EngineNative
	DefaultScale  = 2.0
)

// ContentType returns the MIME type of f.
func (f Format) ContentType() string {
	switch f {
	case FormatJSON:
		return "application/json"
	case FormatSVG:
		return "image/svg+xml"
	case FormatPNG:
		return "image/png"
	case FormatPDF:
		return "application/pdf"
	default:
		return "text/plain; charset=utf-8"
	}
}

// Options configures [Render].
type Options struct {
	Format    Format           `json:"format"`
	Engine    Engine           `json:"engine"`
	Scale     float64          `json:"scale,omitempty"`
	Padding   float64          `json:"padding,omitempty"`
	Handles   bool             `json:"handles,omitempty"`
	Pinned    bool             `json:"pinned,omitempty"`
	Direction layout.Direction `json:"direction,omitempty"`

	Logger *log.Logger `json:"-"`

	validated bool
}

// ValidateAndSetDefaults validates options and applies defaults.
// This method is idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if o.Format == "" {
		o.Format = DefaultFormat
	}
	if !slices.Contains(Formats, o.Format) {
		return errs.New(errs.ErrCodeInvalidInput, "unknown format %q (want json, mermaid, dot, svg, png or pdf)", o.Format)
	}
	if o.Engine == "" {
		o.Engine = DefaultEngine
	}
	if o.Engine != EngineNative && o.Engine != EngineGraphviz {
		return errs.New(errs.ErrCodeInvalidInput, "unknown engine %q (want native or graphviz)", o.Engine)
	}
	if o.Scale <= 0 {
		o.Scale = DefaultScale
	}
	if o.Direction == "" {
		o.Direction = layout.DefaultDirection
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	o.validated = true
	return nil
}

// Render draws g in the requested format.
func Render(ctx context.Context, g graph.Graph, opts Options) ([]byte, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	if err := g.Validate(); err != nil {
		return nil, err
	}

	start := time.Now()
	out, err := render(ctx, g, opts)
	if err != nil {
		return nil, err
	}
	opts.Logger.Debug("rendered map", "format", opts.Format, "engine", opts.Engine, "bytes", len(out), "duration", time.Since(start))
	return out, nil
}

func render(ctx context.Context, g graph.Graph, opts Options) ([]byte, error) {
	switch opts.Format {
	case FormatJSON:
		return graph.Marshal(g)
	case FormatMermaid:
		return []byte(topology.Format(g.Topology()) + "\n"), nil
	case FormatDOT:
		return []byte(dot(g, opts)), nil
	}

	if opts.Engine == EngineGraphviz {
		switch opts.Format {
		case FormatSVG:
			return GraphvizSVG(ctx, dot(g, opts), opts.Pinned)
		case FormatPNG:
			return GraphvizPNG(ctx, dot(g, opts), opts.Pinned)
		}
	}

	var svg []byte
	if opts.Engine == EngineGraphviz {
		var err error
		if svg, err = GraphvizSVG(ctx, dot(g, opts), opts.Pinned); err != nil {
			return nil, err
		}
	} else {
		svg = RenderSVG(g, SVGOptions{Padding: opts.Padding, Handles: opts.Handles})
	}

	switch opts.Format {
	case FormatPNG:
		return ToPNG(ctx, svg, opts.Scale)
	case FormatPDF:
		return ToPDF(ctx, svg)
	default:
		return svg, nil
	}
}

func dot(g graph.Graph, opts Options) string {
	return ToDOT(g, DOTOptions{Direction: opts.Direction, Pinned: opts.Pinned})
}
