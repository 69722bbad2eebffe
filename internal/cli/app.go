package cli

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/mmcdole/marquee/internal/adapter"
	"github.com/mmcdole/marquee/internal/adapter/source"
	"github.com/mmcdole/marquee/internal/domain"
	"github.com/mmcdole/marquee/internal/favorites"
	"github.com/mmcdole/marquee/internal/popularity"
	"github.com/mmcdole/marquee/internal/service"
	"github.com/mmcdole/marquee/internal/store"
)

const loadTimeout = 30 * time.Second

// app holds the components shared by the TUI and the subcommands
type app struct {
	cfg    *adapter.Config
	logger *slog.Logger

	kv       *store.KVStore
	saved    *favorites.Store
	catalog  domain.CatalogRepository
	counters domain.CounterStore
	tracking *popularity.Service
}

// openApp wires the stores and clients described by cfg. The catalog is
// optional so the saved list stays usable before setup.
func openApp(cfg *adapter.Config, logger *slog.Logger) (*app, error) {
	a := &app{cfg: cfg, logger: logger}

	dataDir, err := adapter.ExpandPath(cfg.Storage.Path)
	if err != nil {
		return nil, err
	}
	kv, err := store.NewKVStore(dataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to open local store: %w", err)
	}
	a.kv = kv
	a.saved = favorites.New(kv, logger)
	a.saved.Init()

	if cfg.IsConfigured() {
		a.catalog, err = source.NewCatalog(cfg, logger)
		if err != nil {
			a.Close()
			return nil, err
		}
	}

	counters, err := source.NewCounterStore(cfg, logger)
	if err != nil {
		// Analytics are advisory; the app runs without them
		logger.Warn("search analytics disabled", "backend", cfg.Analytics.Backend, "error", err)
	} else if counters != nil {
		a.counters = counters
		a.tracking = popularity.NewService(counters, logger)
	}

	return a, nil
}

// requireCatalog returns the catalog or a setup hint
func (a *app) requireCatalog() (domain.CatalogRepository, error) {
	if a.catalog == nil {
		return nil, fmt.Errorf("no catalog token configured; run 'marquee setup' or set MARQUEE_CATALOG_TOKEN")
	}
	return a.catalog, nil
}

// tracker returns the popularity tracker, or nil when analytics are off
func (a *app) tracker() service.Tracker {
	if a.tracking == nil {
		return nil
	}
	return a.tracking
}

// popularSource returns the popular-searches reader, or nil when analytics are off
func (a *app) popularSource() service.PopularSource {
	if a.tracking == nil {
		return nil
	}
	return a.tracking
}

// waitSaved blocks until the saved list has loaded
func (a *app) waitSaved(ctx context.Context) error {
	select {
	case <-a.saved.Init():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close flushes pending writes and releases stores
func (a *app) Close() {
	if a.saved != nil {
		a.saved.Close()
	}
	if a.counters != nil {
		if err := a.counters.Close(); err != nil {
			a.logger.Warn("failed to close counter store", "error", err)
		}
	}
	if a.kv != nil {
		if err := a.kv.Close(); err != nil {
			a.logger.Warn("failed to close local store", "error", err)
		}
	}
}
