// Package cli implements the anymaps command-line interface.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/kobex777/anymaps/pkg/buildinfo"
	"github.com/kobex777/anymaps/pkg/canvas"
	"github.com/kobex777/anymaps/pkg/config"
	"github.com/kobex777/anymaps/pkg/store"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for display and hints.
const appName = "anymaps"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	configPath string
	offline    bool
	backend    string

	cfg *config.Config
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "AnyMaps turns prompts into editable mind maps",
		Long: `AnyMaps turns a prompt, notes or a sketch into a mind map, lays it out as a
tidy tree, and lets you refine it with follow-up prompts and manual edits.

Maps are saved to the configured store and can be rendered to SVG, PNG, PDF,
DOT or mermaid syntax.`,
		Version:      buildinfo.Get().Version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(buildinfo.Template())

	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default: "+config.DefaultPath()+")")
	root.PersistentFlags().BoolVar(&c.offline, "offline", false, "use the built-in offline generator")
	root.PersistentFlags().StringVar(&c.backend, "store", "", "store backend: file, memory, redis, mongo")

	root.AddCommand(c.parseCommand())
	root.AddCommand(c.layoutCommand())
	root.AddCommand(c.generateCommand())
	root.AddCommand(c.enhanceCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.mapsCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.configCommand())
	root.AddCommand(c.versionCommand())

	return root
}

// =============================================================================
// Configuration
// =============================================================================

// config loads the configuration once and applies global flag overrides.
func (c *CLI) config() (*config.Config, error) {
	if c.cfg != nil {
		return c.cfg, nil
	}
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return nil, err
	}
	if c.offline {
		cfg.Generator.Offline = true
	}
	if c.backend != "" {
		cfg.Store.Backend = c.backend
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}
	if cfg.Source != "" {
		c.Logger.Debug("loaded config", "path", cfg.Source)
	}
	c.cfg = cfg
	return cfg, nil
}

// openStore connects to the configured store.
func (c *CLI) openStore(ctx context.Context) (store.Store, error) {
	cfg, err := c.config()
	if err != nil {
		return nil, err
	}
	st, err := cfg.OpenStore(ctx)
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", cfg.Store.Backend, err)
	}
	c.Logger.Debug("opened store", "backend", cfg.Store.Backend)
	return st, nil
}

// newSession creates a canvas session over st. onStatus, if set, observes
// pipeline status transitions.
func (c *CLI) newSession(st store.Store, onStatus func(canvas.Status)) (*canvas.Session, error) {
	cfg, err := c.config()
	if err != nil {
		return nil, err
	}
	gen, err := cfg.OpenGenerator(c.Logger)
	if err != nil {
		return nil, fmt.Errorf("initialize generator: %w", err)
	}
	opts := cfg.SessionOptions(c.Logger)
	opts.OnStatus = onStatus
	return canvas.New(gen, st, opts)
}

// =============================================================================
// Input Helpers
// =============================================================================

// readInput reads a file, or stdin when path is "-".
func readInput(path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(path)
}

// writeOutput writes data to path, or stdout when path is empty or "-".
func writeOutput(path string, data []byte) error {
	if path == "" || path == "-" {
		_, err := os.Stdout.Write(data)
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
