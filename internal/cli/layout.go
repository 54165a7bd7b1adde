package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kobex777/anymaps/pkg/graph"
	"github.com/kobex777/anymaps/pkg/layout"
	"github.com/kobex777/anymaps/pkg/topology"
)

// layoutOpts holds the flags of the layout command.
type layoutOpts struct {
	output       string
	direction    string
	nodeSpacing  float64
	layerSpacing float64
}

// layoutCommand creates the layout command, which positions a map as a tree.
func (c *CLI) layoutCommand() *cobra.Command {
	var opts layoutOpts

	cmd := &cobra.Command{
		Use:   "layout <file.mmd|spec.json>",
		Short: "Compute a tree layout for a mind map",
		Long: `Compute a tree layout for a mind map.

The input is mermaid mind map syntax or a specification JSON file as printed by
'parse -f spec'. The output is the positioned graph JSON that 'render' accepts.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runLayout(args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default: <input>.graph.json)")
	cmd.Flags().StringVar(&opts.direction, "direction", "", "tree direction: right, down (default from config)")
	cmd.Flags().Float64Var(&opts.nodeSpacing, "node-spacing", 0, "gap between siblings (default from config)")
	cmd.Flags().Float64Var(&opts.layerSpacing, "layer-spacing", 0, "gap between levels (default from config)")

	return cmd
}

func (c *CLI) runLayout(input string, opts layoutOpts) error {
	cfg, err := c.config()
	if err != nil {
		return err
	}
	lopts := cfg.LayoutOptions(c.Logger)
	if opts.direction != "" {
		lopts.Direction = layout.Direction(opts.direction)
	}
	if opts.nodeSpacing > 0 {
		lopts.NodeSpacing = opts.nodeSpacing
	}
	if opts.layerSpacing > 0 {
		lopts.LayerSpacing = opts.layerSpacing
	}

	t, spec, err := loadTopology(input)
	if err != nil {
		return err
	}

	prog := newProgress(c.Logger)
	pos, err := layout.Compute(t, layout.Sizes(t, nil), lopts)
	if err != nil {
		return fmt.Errorf("compute layout: %w", err)
	}
	g := graph.Build(t, pos, spec)
	prog.done("computed layout", "nodes", len(g.Nodes))

	output := opts.output
	if output == "" {
		if input == "-" {
			output = "map.graph.json"
		} else {
			output = strings.TrimSuffix(input, filepath.Ext(input)) + ".graph.json"
		}
	}
	if err := graph.WriteFile(g, output); err != nil {
		return fmt.Errorf("write %s: %w", output, err)
	}

	printSuccess("Layout complete")
	printFile(output)
	printStats(len(g.Nodes), len(g.Edges))
	printNewline()
	printNextStep("Render", appName+" render "+output)
	return nil
}

// loadTopology reads mermaid syntax or a specification JSON file. The spec
// is nil for mermaid input.
func loadTopology(input string) (*topology.Topology, *topology.Spec, error) {
	data, err := readInput(input)
	if err != nil {
		return nil, nil, fmt.Errorf("read %s: %w", input, err)
	}
	return topologyFrom(data, input)
}

func topologyFrom(data []byte, input string) (*topology.Topology, *topology.Spec, error) {
	if trimmed := bytes.TrimSpace(data); len(trimmed) > 0 && trimmed[0] == '{' {
		var spec topology.Spec
		if err := json.Unmarshal(trimmed, &spec); err != nil {
			return nil, nil, fmt.Errorf("decode spec %s: %w", input, err)
		}
		return topology.Normalize(&spec), &spec, nil
	}
	t, err := topology.Parse(topology.CleanSyntax(string(data)))
	if err != nil {
		return nil, nil, fmt.Errorf("parse %s: %w", input, err)
	}
	return t, nil, nil
}
