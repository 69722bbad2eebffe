package source

import (
	"fmt"
	"log/slog"

	"github.com/mmcdole/marquee/internal/adapter"
	"github.com/mmcdole/marquee/internal/adapter/source/tmdb"
	"github.com/mmcdole/marquee/internal/domain"
	"github.com/mmcdole/marquee/internal/popularity/appwrite"
	"github.com/mmcdole/marquee/internal/popularity/sqlite"
)

// NewCatalog creates the catalog repository from the application config
func NewCatalog(cfg *adapter.Config, logger *slog.Logger) (domain.CatalogRepository, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is nil")
	}
	if cfg.Catalog.Token == "" {
		return nil, fmt.Errorf("catalog token is required (run marquee setup)")
	}

	return tmdb.NewClient(cfg.Catalog.BaseURL, cfg.Catalog.Token, tmdb.Options{
		ImageBase:    cfg.Catalog.ImageBaseURL,
		Language:     cfg.Catalog.Language,
		IncludeAdult: cfg.Catalog.IncludeAdult,
	}, logger), nil
}

// NewCounterStore creates the search popularity store selected by
// analytics.backend. It returns (nil, nil) when analytics are disabled.
func NewCounterStore(cfg *adapter.Config, logger *slog.Logger) (domain.CounterStore, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is nil")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	switch cfg.Analytics.Backend {
	case adapter.AnalyticsNone:
		return nil, nil

	case adapter.AnalyticsSQLite:
		path, err := adapter.ExpandPath(cfg.Analytics.DBPath)
		if err != nil {
			return nil, err
		}
		if path == "" {
			return sqlite.NewInMemory()
		}
		return sqlite.New(path)

	case adapter.AnalyticsAppwrite:
		return appwrite.NewClient(appwrite.Config{
			Endpoint:     cfg.Analytics.Endpoint,
			ProjectID:    cfg.Analytics.ProjectID,
			DatabaseID:   cfg.Analytics.DatabaseID,
			CollectionID: cfg.Analytics.CollectionID,
			APIKey:       cfg.Analytics.APIKey,
		}, logger)

	default:
		return nil, fmt.Errorf("unknown analytics backend: %s", cfg.Analytics.Backend)
	}
}
