package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/mmcdole/marquee/internal/domain"
	"github.com/mmcdole/marquee/internal/service"
	"github.com/mmcdole/marquee/internal/tui"
	"github.com/spf13/cobra"
)

// SearchOptions holds options for the search command.
type SearchOptions struct {
	Limit   int
	NoTrack bool
}

// NewSearchCommand creates the search command.
func NewSearchCommand(e *env) *cobra.Command {
	opts := &SearchOptions{}

	cmd := &cobra.Command{
		Use:   "search QUERY...",
		Short: "Search the catalog",
		Long:  "Run one search against the catalog and record its top result in the search analytics.",
		Args:  cobra.MinimumNArgs(1),
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
			tracker := a.tracker()
			if opts.NoTrack {
				tracker = nil
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), loadTimeout)
			defer cancel()

			snap, err := runSearch(ctx, catalog, tracker, e.cfg.Search.RankResults, strings.Join(args, " "))
			if err != nil {
				return err
			}
			if err := a.waitSaved(ctx); err != nil {
				return err
			}
			printItems(cmd.OutOrStdout(), snap.Results, opts.Limit, a.saved.IsSaved)
			return nil
		},
	}

	cmd.Flags().IntVarP(&opts.Limit, "limit", "n", 20, "Maximum results to print")
	cmd.Flags().BoolVar(&opts.NoTrack, "no-track", false, "Do not record this search in analytics")

	return cmd
}

// runSearch drives a search session to a settled result. The session is
// closed before returning, so tracking has finished too.
func runSearch(ctx context.Context, catalog domain.CatalogRepository, tracker service.Tracker, rank bool, query string) (service.SearchSnapshot, error) {
	if strings.TrimSpace(query) == "" {
		return service.SearchSnapshot{}, fmt.Errorf("query cannot be empty")
	}

	notifier := tui.NewChangeNotifier()
	session := service.NewSearchSession(catalog, tracker, service.SearchOptions{Rank: rank}, nil, notifier.Notify)
	defer session.Close()

	session.SetQuery(query)
	for {
		snap := session.Snapshot()
		if snap.Query == query && !snap.Typing && !snap.Loading {
			if snap.Err != nil {
				return snap, fmt.Errorf("search failed: %w", snap.Err)
			}
			return snap, nil
		}
		select {
		case <-notifier.Changes():
		case <-ctx.Done():
			return snap, ctx.Err()
		}
	}
}

func printItems(w io.Writer, items []domain.Item, limit int, isSaved func(string) bool) {
	if len(items) == 0 {
		fmt.Fprintln(w, "No movies found.")
		return
	}
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}

	rows := make([][]string, 0, len(items))
	for _, it := range items {
		year := ""
		if y := it.Year(); y > 0 {
			year = fmt.Sprint(y)
		}
		mark := ""
		if isSaved != nil && isSaved(it.ID) {
			mark = "★"
		}
		rows = append(rows, []string{it.ID, it.Title, year, fmt.Sprintf("%.1f", it.Rating), mark})
	}
	fmt.Fprintln(w, renderTable([]string{"ID", "TITLE", "YEAR", "RATING", "SAVED"}, rows))
}
