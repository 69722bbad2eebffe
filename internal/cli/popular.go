package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

// NewPopularCommand creates the popular command.
func NewPopularCommand(e *env) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "popular",
		Short: "Show the most popular searches",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(e.cfg, e.logger)
			if err != nil {
				return err
			}
			defer a.Close()

			if a.tracking == nil {
				return fmt.Errorf("search analytics are disabled (analytics.backend = %s)", e.cfg.Analytics.Backend)
			}
			if limit <= 0 {
				limit = e.cfg.Search.PopularLimit
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), loadTimeout)
			defer cancel()

			records, err := a.tracking.TopSearches(ctx, limit)
			if err != nil {
				return fmt.Errorf("failed to load popular searches: %w", err)
			}

			out := cmd.OutOrStdout()
			if len(records) == 0 {
				fmt.Fprintln(out, "No searches recorded yet.")
				return nil
			}
			rows := make([][]string, len(records))
			for i, r := range records {
				rows[i] = []string{fmt.Sprint(i + 1), r.SearchTerm, r.ItemTitle, r.ItemID, fmt.Sprint(r.Count)}
			}
			fmt.Fprintln(out, renderTable([]string{"#", "SEARCH", "TITLE", "ID", "COUNT"}, rows))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "Number of searches to show (default from config)")
	return cmd
}
