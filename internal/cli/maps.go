package cli

import (
	"context"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	errs "github.com/kobex777/anymaps/pkg/errors"
	"github.com/kobex777/anymaps/pkg/store"
)

// mapsCommand creates the saved-map management command.
func (c *CLI) mapsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "maps",
		Aliases: []string{"map"},
		Short:   "List, inspect and delete saved maps",
	}

	cmd.AddCommand(c.mapsListCommand())
	cmd.AddCommand(c.mapsShowCommand())
	cmd.AddCommand(c.mapsDeleteCommand())

	return cmd
}

func (c *CLI) mapsListCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List your saved maps, most recently updated first",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			maps, err := c.listMaps(cmd.Context())
			if err != nil {
				return err
			}
			if len(maps) == 0 {
				printInfo("No saved maps")
				printNextStep("Create one", appName+" generate \"a topic\"")
				return nil
			}
			rows := make([][]string, len(maps))
			for i, m := range maps {
				rows[i] = mapRow(m)
			}
			fmt.Println(mapTable(rows, nil, "Title", "Updated", "Map").Render())
			printDetail("%s", plural(len(maps), "map"))
			return nil
		},
	}
}

func (c *CLI) mapsShowCommand() *cobra.Command {
	var chat bool

	cmd := &cobra.Command{
		Use:     "show [map-id]",
		Aliases: []string{"open"},
		Short:   "Show a saved map and its conversation",
		Long: `Show a saved map and its conversation.

Without a map id an interactive picker lists your maps.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			mapID, err := c.mapArg(ctx, args)
			if err != nil || mapID == "" {
				return err
			}
			return c.runShow(ctx, mapID, chat)
		},
	}

	cmd.Flags().BoolVar(&chat, "chat", true, "print the conversation")

	return cmd
}

func (c *CLI) runShow(ctx context.Context, mapID string, chat bool) error {
	st, err := c.openStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close()

	sess, err := c.newSession(st, nil)
	if err != nil {
		return err
	}
	if err := sess.Load(ctx, mapID); err != nil {
		return err
	}

	snap := sess.Snapshot()
	fmt.Println(StyleTitle.Render(snap.Title))
	printSnapshot(snap)
	if chat && len(snap.Chat) > 0 {
		printNewline()
		printChat(snap.Chat)
	}
	printNewline()
	printNextStep("Render", fmt.Sprintf("%s render %s -f svg", appName, mapID))
	return nil
}

func (c *CLI) mapsDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "delete <map-id>",
		Aliases: []string{"rm"},
		Short:   "Delete a saved map and all of its versions",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			mapID := args[0]
			if err := errs.ValidateMapID(mapID); err != nil {
				return err
			}
			st, err := c.openStore(ctx)
			if err != nil {
				return err
			}
			defer st.Close()

			m, err := st.GetMap(ctx, mapID)
			if err != nil {
				return err
			}
			if m == nil {
				return store.MapNotFound(mapID)
			}
			if err := st.DeleteMap(ctx, mapID); err != nil {
				return err
			}
			printSuccess("Deleted %s", StyleHighlight.Render(m.Title))
			return nil
		},
	}
}

// listMaps returns the configured owner's maps.
func (c *CLI) listMaps(ctx context.Context) ([]store.Map, error) {
	cfg, err := c.config()
	if err != nil {
		return nil, err
	}
	st, err := c.openStore(ctx)
	if err != nil {
		return nil, err
	}
	defer st.Close()
	return st.ListMaps(ctx, cfg.Owner)
}

// mapArg returns the map id argument, or runs the interactive picker when
// none is given. An empty id means the user quit the picker.
func (c *CLI) mapArg(ctx context.Context, args []string) (string, error) {
	if len(args) == 1 {
		return args[0], errs.ValidateMapID(args[0])
	}
	maps, err := c.listMaps(ctx)
	if err != nil {
		return "", err
	}
	if len(maps) == 0 {
		printInfo("No saved maps")
		return "", nil
	}

	p := tea.NewProgram(NewMapListModel(maps), tea.WithContext(ctx), tea.WithOutput(os.Stderr))
	final, err := p.Run()
	if err != nil {
		return "", fmt.Errorf("map picker: %w", err)
	}
	if sel := final.(MapListModel).Selected; sel != nil {
		return sel.ID, nil
	}
	return "", nil
}
