package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kobex777/anymaps/pkg/topology"
)

// Parse output formats.
const (
	parseFormatMermaid  = "mermaid"
	parseFormatSpec     = "spec"
	parseFormatTopology = "topology"
)

// parseOpts holds the flags of the parse command.
type parseOpts struct {
	output string
	format string
	title  string
}

// parseCommand creates the parse command, which checks and normalizes
// mermaid mind map syntax.
func (c *CLI) parseCommand() *cobra.Command {
	opts := parseOpts{format: parseFormatMermaid}

	cmd := &cobra.Command{
		Use:   "parse <file.mmd|spec.json|->",
		Short: "Parse mermaid mind map syntax",
		Long: `Parse mermaid mind map syntax and print it back in canonical form.

Markdown fences and preambles are stripped. A specification JSON file is
normalized into a tree the same way a generated map is. Use -f spec to print the
specification the generation service exchanges, or -f topology for the parsed
tree with node ids and kinds.

Examples:
  anymaps parse notes.mmd
  pbpaste | anymaps parse - -f spec --title "Reading list"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runParse(args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (stdout if empty)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", opts.format, "output format: mermaid, spec, topology")
	cmd.Flags().StringVar(&opts.title, "title", "", "map title for -f spec (default: root label)")

	return cmd
}

func (c *CLI) runParse(input string, opts parseOpts) error {
	t, spec, err := loadTopology(input)
	if err != nil {
		return err
	}
	if opts.title == "" && spec != nil {
		opts.title = spec.Title
	}
	c.Logger.Debug("parsed map", "nodes", len(t.Nodes), "edges", len(t.Edges))

	out, err := formatTopology(t, opts.format, opts.title)
	if err != nil {
		return err
	}
	return writeOutput(opts.output, out)
}

func formatTopology(t *topology.Topology, format, title string) ([]byte, error) {
	switch format {
	case parseFormatMermaid:
		return []byte(topology.Format(t) + "\n"), nil
	case parseFormatSpec:
		if title == "" {
			if root := t.Root(); root != nil {
				title = root.Label
			}
		}
		return marshalIndent(topology.FromTopology(t, title))
	case parseFormatTopology:
		return marshalIndent(t)
	default:
		return nil, fmt.Errorf("unknown format %q (want mermaid, spec or topology)", format)
	}
}

func marshalIndent(v any) ([]byte, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}
