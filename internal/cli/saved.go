package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/mmcdole/marquee/internal/favorites"
	"github.com/spf13/cobra"
)

// NewSavedCommand creates the saved command and its add/rm subcommands.
func NewSavedCommand(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "saved [FILTER]",
		Short: "List saved movies",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(e.cfg, e.logger)
			if err != nil {
				return err
			}
			defer a.Close()

			ctx, cancel := context.WithTimeout(cmd.Context(), loadTimeout)
			defer cancel()
			if err := a.waitSaved(ctx); err != nil {
				return err
			}

			query := ""
			if len(args) == 1 {
				query = args[0]
			}
			printEntries(cmd.OutOrStdout(), a.saved.Filter(query))
			return nil
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "add ID",
		Short: "Save a movie by catalog id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(e.cfg, e.logger)
			if err != nil {
				return err
			}
			defer a.Close()

			catalog, err := a.requireCatalog()
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), loadTimeout)
			defer cancel()

			item, err := catalog.GetDetails(ctx, args[0])
			if err != nil {
				return fmt.Errorf("failed to load movie %s: %w", args[0], err)
			}
			if err := a.waitSaved(ctx); err != nil {
				return err
			}
			if a.saved.IsSaved(item.ID) {
				fmt.Fprintf(cmd.OutOrStdout(), "%s is already saved\n", item.Title)
				return nil
			}
			a.saved.Add(favorites.EntryFromItem(*item))
			fmt.Fprintf(cmd.OutOrStdout(), "Saved %s\n", item.Title)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:     "rm ID",
		Aliases: []string{"remove"},
		Short:   "Remove a saved movie",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(e.cfg, e.logger)
			if err != nil {
				return err
			}
			defer a.Close()

			ctx, cancel := context.WithTimeout(cmd.Context(), loadTimeout)
			defer cancel()
			if err := a.waitSaved(ctx); err != nil {
				return err
			}
			if !a.saved.IsSaved(args[0]) {
				return fmt.Errorf("movie %s is not saved", args[0])
			}
			a.saved.Remove(args[0])
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %s\n", args[0])
			return nil
		},
	})

	return cmd
}

func printEntries(w io.Writer, entries []favorites.Entry) {
	if len(entries) == 0 {
		fmt.Fprintln(w, "No saved movies.")
		return
	}
	rows := make([][]string, len(entries))
	for i, e := range entries {
		rows[i] = []string{e.ItemID, e.Title, e.SavedAt.Local().Format("2006-01-02 15:04")}
	}
	fmt.Fprintln(w, renderTable([]string{"ID", "TITLE", "SAVED"}, rows))
}
