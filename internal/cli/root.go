package cli

import (
	"fmt"
	"log/slog"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mmcdole/marquee/internal/adapter"
	"github.com/mmcdole/marquee/internal/service"
	"github.com/mmcdole/marquee/internal/tui"
	"github.com/spf13/cobra"
)

// env carries configuration loaded once for every command
type env struct {
	cfg    *adapter.Config
	logger *slog.Logger
	debug  bool
}

// NewRootCommand creates the root command.
func NewRootCommand(version string) *cobra.Command {
	e := &env{}

	cmd := &cobra.Command{
		Use:     "marquee",
		Short:   "Marquee - a terminal movie catalog",
		Long:    "Marquee browses and searches the movie catalog, keeps a saved list and reports popular searches.",
		Version: version,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return e.load(version)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(e)
		},
		SilenceUsage: true,
	}

	cmd.PersistentFlags().BoolVar(&e.debug, "debug", false, "Write debug logs")

	cmd.AddCommand(NewSearchCommand(e))
	cmd.AddCommand(NewPopularCommand(e))
	cmd.AddCommand(NewSavedCommand(e))
	cmd.AddCommand(NewSetupCommand(e))

	return cmd
}

func (e *env) load(version string) error {
	cfg, err := adapter.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if e.debug {
		cfg.Logging.Level = "DEBUG"
	}

	logger, err := adapter.SetupLogger(&cfg.Logging)
	if err != nil {
		// Fall back to null logger if file logging fails
		logger = adapter.NullLogger()
	}
	slog.SetDefault(logger)
	logger.Info("starting marquee", "version", version)

	e.cfg = cfg
	e.logger = logger
	return nil
}

// runTUI starts the TUI application
func runTUI(e *env) error {
	a, err := openApp(e.cfg, e.logger)
	if err != nil {
		return err
	}
	defer a.Close()

	catalog, err := a.requireCatalog()
	if err != nil {
		return err
	}

	notifier := tui.NewChangeNotifier()
	a.saved.OnChange(notifier.Notify)

	search := service.NewSearchSession(catalog, a.tracker(), service.SearchOptions{
		Debounce: time.Duration(e.cfg.Search.DebounceMS) * time.Millisecond,
		Rank:     e.cfg.Search.RankResults,
	}, e.logger, notifier.Notify)
	defer search.Close()

	browser := service.NewBrowser(catalog, a.popularSource(), e.cfg.Search.PopularLimit, e.logger, notifier.Notify)
	defer browser.Close()

	launcher := adapter.NewLauncher(e.cfg.Launcher, e.logger)
	model := tui.NewModel(search, browser, a.saved, launcher, notifier.Changes())
	p := tea.NewProgram(model, tea.WithAltScreen())

	e.logger.Info("starting TUI")
	if _, err := p.Run(); err != nil {
		e.logger.Error("TUI error", "error", err)
		return fmt.Errorf("TUI error: %w", err)
	}

	e.logger.Info("shutting down")
	return nil
}
