package cli

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kobex777/anymaps/pkg/canvas"
	errs "github.com/kobex777/anymaps/pkg/errors"
	"github.com/kobex777/anymaps/pkg/generate"
	"github.com/kobex777/anymaps/pkg/layout"
	"github.com/kobex777/anymaps/pkg/render"
)

// generateCommand creates the generate command.
func (c *CLI) generateCommand() *cobra.Command {
	var image, output string

	cmd := &cobra.Command{
		Use:   "generate <prompt>...",
		Short: "Generate a new mind map from a prompt",
		Long: `Generate a new mind map from a prompt and save it.

The prompt can be a topic, pasted notes, or "-" to read it from stdin. Attach a
sketch or whiteboard photo with --image.

Examples:
  anymaps generate "History of jazz"
  anymaps generate --image board.png "Turn this into a project plan"
  anymaps generate --offline "Rust ownership" -o rust.svg`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			prompt, err := promptFrom(args)
			if err != nil {
				return err
			}
			return c.runGenerate(cmd.Context(), prompt, image, output)
		},
	}

	cmd.Flags().StringVar(&image, "image", "", "attach a sketch image")
	cmd.Flags().StringVarP(&output, "output", "o", "", "also render the map to this file (format from extension)")

	return cmd
}

func (c *CLI) runGenerate(ctx context.Context, prompt, image, output string) error {
	imageBase64, err := encodeImage(image)
	if err != nil {
		return err
	}

	st, err := c.openStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close()

	spinner := newSpinnerWithContext(ctx, "Generating map...")
	sess, err := c.newSession(st, spinner.OnStatus)
	if err != nil {
		return err
	}

	prog := newProgress(c.Logger)
	spinner.Start()
	err = sess.Generate(ctx, prompt, imageBase64)
	if err != nil {
		spinner.StopWithError(errs.UserMessage(err))
		return err
	}
	spinner.Stop()
	snap := sess.Snapshot()
	prog.done("generated map", "nodes", len(snap.Graph.Nodes))

	printSuccess("Generated %s", StyleHighlight.Render(snap.Title))
	printSnapshot(snap)
	c.afterRun(ctx, sess, snap, output)
	return nil
}

// afterRun reports the save state, renders the optional output and suggests
// next steps.
func (c *CLI) afterRun(ctx context.Context, sess *canvas.Session, snap canvas.Snapshot, output string) {
	if err := sess.Wait(); err != nil {
		printWarning("Background save failed: %s", errs.UserMessage(err))
	}
	if snap.LastSavedAt == nil {
		printWarning("The map was not saved")
	}
	if output != "" {
		if err := c.renderFile(ctx, snap, output); err != nil {
			printWarning("Render failed: %s", errs.UserMessage(err))
		} else {
			printFile(output)
		}
	}
	if snap.MapID != "" {
		printNewline()
		printNextStep("Refine", fmt.Sprintf("%s enhance %s \"add examples\"", appName, snap.MapID))
		printNextStep("Render", fmt.Sprintf("%s render %s -f svg", appName, snap.MapID))
	}
}

// renderFile renders snap to path in the format implied by its extension,
// using the native engine defaults.
func (c *CLI) renderFile(ctx context.Context, snap canvas.Snapshot, path string) error {
	formats, err := parseFormats(formatFromPath(path))
	if err != nil {
		return err
	}
	cfg, err := c.config()
	if err != nil {
		return err
	}
	opts := renderOpts{engine: string(render.DefaultEngine), scale: render.DefaultScale}
	return c.writeRendered(ctx, snap.Graph, formats[0], opts, layout.Direction(cfg.Layout.Direction), path)
}

func formatFromPath(path string) string {
	switch {
	case strings.HasSuffix(path, ".json"):
		return "json"
	case strings.HasSuffix(path, ".mmd"):
		return "mermaid"
	}
	if i := strings.LastIndexByte(path, '.'); i >= 0 {
		return strings.ToLower(path[i+1:])
	}
	return ""
}

// promptFrom joins the prompt arguments, reading stdin for "-".
func promptFrom(args []string) (string, error) {
	if len(args) == 1 && args[0] == "-" {
		data, err := readInput("-")
		if err != nil {
			return "", fmt.Errorf("read prompt: %w", err)
		}
		return string(data), nil
	}
	return strings.Join(args, " "), nil
}

// encodeImage reads an image file as base64. An empty path yields "".
func encodeImage(path string) (string, error) {
	if path == "" {
		return "", nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read image: %w", err)
	}
	return base64.StdEncoding.EncodeToString(data), nil
}

// =============================================================================
// Enhance
// =============================================================================

// enhanceCommand creates the enhance command.
func (c *CLI) enhanceCommand() *cobra.Command {
	var mode, output string

	cmd := &cobra.Command{
		Use:   "enhance <map-id> <prompt>...",
		Short: "Refine a saved mind map with a follow-up prompt",
		Long: `Refine a saved mind map with a follow-up prompt.

Modes:
  expand    add subtopics (default)
  refine    improve labels and descriptions
  focus     elaborate one branch named in the prompt
  simplify  prune detail

Manual sizes, edge curves and node data survive the merge.`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			prompt, err := promptFrom(args[1:])
			if err != nil {
				return err
			}
			return c.runEnhance(cmd.Context(), args[0], prompt, mode, output)
		},
	}

	cmd.Flags().StringVarP(&mode, "mode", "m", string(generate.ModeExpand), "enhance mode: expand, refine, focus, simplify")
	cmd.Flags().StringVarP(&output, "output", "o", "", "also render the map to this file (format from extension)")

	return cmd
}

func (c *CLI) runEnhance(ctx context.Context, mapID, prompt, mode, output string) error {
	if _, err := generate.ParseMode(mode); err != nil {
		return err
	}

	st, err := c.openStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close()

	spinner := newSpinnerWithContext(ctx, "Enhancing map...")
	sess, err := c.newSession(st, spinner.OnStatus)
	if err != nil {
		return err
	}
	if err := sess.Load(ctx, mapID); err != nil {
		return err
	}

	spinner.Start()
	if err := sess.Enhance(ctx, prompt, mode); err != nil {
		spinner.StopWithError(errs.UserMessage(err))
		return err
	}
	spinner.Stop()

	snap := sess.Snapshot()
	if n := len(snap.Chat); n > 0 {
		printSuccess("%s", snap.Chat[n-1].Content)
	}
	printSnapshot(snap)
	c.afterRun(ctx, sess, snap, output)
	return nil
}
