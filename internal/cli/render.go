package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	errs "github.com/kobex777/anymaps/pkg/errors"
	"github.com/kobex777/anymaps/pkg/graph"
	"github.com/kobex777/anymaps/pkg/layout"
	"github.com/kobex777/anymaps/pkg/render"
	"github.com/kobex777/anymaps/pkg/store"
)

// renderOpts holds the flags of the render command.
type renderOpts struct {
	output  string
	formats []render.Format
	engine  string
	scale   float64
	padding float64
	handles bool
	pinned  bool
}

// renderCommand creates the render command.
func (c *CLI) renderCommand() *cobra.Command {
	var formatsStr string
	var opts renderOpts

	cmd := &cobra.Command{
		Use:   "render <map-id|graph.json|file.mmd>",
		Short: "Render a mind map to SVG, PNG, PDF, DOT or mermaid",
		Long: `Render a mind map.

The input is a saved map id, a positioned graph JSON file from 'layout', or
mermaid syntax (laid out on the fly).

The native engine draws curved edges and honours manual positions, sizes and
control points. The graphviz engine lays the map out again with dot, or with
neato at the current positions when --pinned is set.

Examples:
  anymaps render 3f2a... -f svg,png
  anymaps render notes.mmd -f pdf -o notes
  anymaps render map.graph.json --engine graphviz --pinned`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			formats, err := parseFormats(formatsStr)
			if err != nil {
				return err
			}
			opts.formats = formats
			return c.runRender(cmd.Context(), args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): svg (default), png, pdf, dot, mermaid, json (comma-separated)")
	cmd.Flags().StringVar(&opts.engine, "engine", string(render.DefaultEngine), "drawing engine: native, graphviz")
	cmd.Flags().Float64Var(&opts.scale, "scale", render.DefaultScale, "PNG scale factor")
	cmd.Flags().Float64Var(&opts.padding, "padding", 0, "SVG padding around the map (native engine)")
	cmd.Flags().BoolVar(&opts.handles, "handles", false, "draw edge midpoint handles (native engine)")
	cmd.Flags().BoolVar(&opts.pinned, "pinned", false, "keep current positions (graphviz engine)")

	return cmd
}

func (c *CLI) runRender(ctx context.Context, input string, opts renderOpts) error {
	g, name, err := c.loadGraph(ctx, input)
	if err != nil {
		return err
	}

	cfg, err := c.config()
	if err != nil {
		return err
	}

	base := basePath(opts.output, name)
	single := len(opts.formats) == 1 && opts.output != ""
	for _, f := range opts.formats {
		path := base + extensionOf(f)
		if single {
			path = opts.output
		}
		if err := c.writeRendered(ctx, g, f, opts, layout.Direction(cfg.Layout.Direction), path); err != nil {
			return err
		}
		printFile(path)
	}
	printStats(len(g.Nodes), len(g.Edges))
	return nil
}

// writeRendered renders g in format f and writes it to path.
func (c *CLI) writeRendered(ctx context.Context, g graph.Graph, f render.Format, opts renderOpts, dir layout.Direction, path string) error {
	data, err := render.Render(ctx, g, render.Options{
		Format:    f,
		Engine:    render.Engine(opts.engine),
		Scale:     opts.scale,
		Padding:   opts.padding,
		Handles:   opts.handles,
		Pinned:    opts.pinned,
		Direction: dir,
		Logger:    c.Logger,
	})
	if err != nil {
		return fmt.Errorf("render %s: %w", f, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// loadGraph resolves the render input to a positioned graph and a name used
// to derive output paths.
func (c *CLI) loadGraph(ctx context.Context, input string) (graph.Graph, string, error) {
	if input != "-" {
		if _, err := os.Stat(input); os.IsNotExist(err) {
			return c.loadSavedGraph(ctx, input)
		}
	}

	data, err := readInput(input)
	if err != nil {
		return graph.Graph{}, "", fmt.Errorf("read %s: %w", input, err)
	}
	name := input
	if input == "-" {
		name = "map"
	}
	if isGraphJSON(data) {
		g, err := graph.Unmarshal(data)
		return g, name, err
	}

	t, spec, err := topologyFrom(data, input)
	if err != nil {
		return graph.Graph{}, "", err
	}
	cfg, err := c.config()
	if err != nil {
		return graph.Graph{}, "", err
	}
	pos, err := layout.Compute(t, layout.Sizes(t, nil), cfg.LayoutOptions(c.Logger))
	if err != nil {
		return graph.Graph{}, "", fmt.Errorf("compute layout: %w", err)
	}
	return graph.Build(t, pos, spec), name, nil
}

func (c *CLI) loadSavedGraph(ctx context.Context, mapID string) (graph.Graph, string, error) {
	if err := errs.ValidateMapID(mapID); err != nil {
		return graph.Graph{}, "", fmt.Errorf("%s is neither a file nor a map id: %w", mapID, err)
	}
	st, err := c.openStore(ctx)
	if err != nil {
		return graph.Graph{}, "", err
	}
	defer st.Close()

	v, err := st.LatestVersion(ctx, mapID)
	if err != nil {
		return graph.Graph{}, "", err
	}
	if v == nil {
		return graph.Graph{}, "", store.MapNotFound(mapID)
	}
	m, err := st.GetMap(ctx, mapID)
	if err != nil {
		return graph.Graph{}, "", err
	}
	name := mapID
	if m != nil && m.Title != "" {
		name = slugify(m.Title)
	}
	return v.Content.Graph(), name, nil
}

// isGraphJSON reports whether data is a positioned graph rather than mermaid
// syntax or a specification, which carries a title.
func isGraphJSON(data []byte) bool {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || data[0] != '{' {
		return false
	}
	var probe struct {
		Title *string         `json:"title"`
		Nodes json.RawMessage `json:"nodes"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return false
	}
	return probe.Title == nil && probe.Nodes != nil
}

// parseFormats parses the --format flag. Empty selects svg.
func parseFormats(s string) ([]render.Format, error) {
	if s == "" {
		return []render.Format{render.DefaultFormat}, nil
	}
	var out []render.Format
	for _, part := range strings.Split(s, ",") {
		f := render.Format(strings.TrimSpace(part))
		if !slices.Contains(render.Formats, f) {
			return nil, fmt.Errorf("invalid format: %s (must be svg, png, pdf, dot, mermaid or json)", f)
		}
		out = append(out, f)
	}
	return out, nil
}

// extensionOf returns the file extension for a format.
func extensionOf(f render.Format) string {
	switch f {
	case render.FormatMermaid:
		return ".mmd"
	case render.FormatDOT:
		return ".dot"
	case render.FormatJSON:
		return ".graph.json"
	default:
		return "." + string(f)
	}
}

// basePath derives the output base path. Without an output it strips the
// extension from input; with one it strips a known format extension.
func basePath(output, input string) string {
	if output == "" {
		input = strings.TrimSuffix(input, ".graph.json")
		return strings.TrimSuffix(input, filepath.Ext(input))
	}
	for _, f := range render.Formats {
		if ext := extensionOf(f); strings.HasSuffix(output, ext) {
			return strings.TrimSuffix(output, ext)
		}
	}
	return output
}

// slugify turns a title into a file name.
func slugify(title string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(title) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			dash = false
		case !dash && b.Len() > 0:
			b.WriteByte('-')
			dash = true
		}
	}
	s := strings.TrimSuffix(b.String(), "-")
	if s == "" {
		return "map"
	}
	return s
}
