package service

import (
	"context"
	"log/slog"

	"github.com/mmcdole/marquee/internal/domain"
	"github.com/mmcdole/marquee/internal/fetch"
)

const defaultPopularLimit = 10

// PopularSource lists the most tracked searches
type PopularSource interface {
	TopSearches(ctx context.Context, limit int) ([]domain.SearchPopularityRecord, error)
}

// Browser owns the coordinators behind the home, details and popular screens
type Browser struct {
	catalog      domain.CatalogRepository
	popular      PopularSource
	popularLimit int
	logger       *slog.Logger

	home     *fetch.Coordinator[[]domain.Item]
	details  *fetch.Coordinator[*domain.Item]
	trending *fetch.Coordinator[[]domain.SearchPopularityRecord]
}

// NewBrowser creates a Browser and starts loading the home listing and,
// when popular is set, the trending searches. popular may be nil when
// analytics are disabled.
func NewBrowser(catalog domain.CatalogRepository, popular PopularSource, popularLimit int, logger *slog.Logger, onChange func()) *Browser {
	if logger == nil {
		logger = slog.Default()
	}
	if onChange == nil {
		onChange = func() {}
	}
	if popularLimit <= 0 {
		popularLimit = defaultPopularLimit
	}
	b := &Browser{
		catalog:      catalog,
		popular:      popular,
		popularLimit: popularLimit,
		logger:       logger,
	}

	trendingOpts := []fetch.Option[[]domain.SearchPopularityRecord]{
		fetch.WithObserver(func(fetch.State[[]domain.SearchPopularityRecord]) { onChange() }),
		fetch.WithLogger[[]domain.SearchPopularityRecord](logger),
		fetch.WithName[[]domain.SearchPopularityRecord]("popular"),
	}
	if popular != nil {
		// The home screen shows the trending strip on launch.
		trendingOpts = append(trendingOpts, fetch.WithAutoRun[[]domain.SearchPopularityRecord]())
	}
	b.trending = fetch.New[[]domain.SearchPopularityRecord](b.loadPopular, trendingOpts...)
	b.details = fetch.New[*domain.Item](nil,
		fetch.WithObserver(func(fetch.State[*domain.Item]) { onChange() }),
		fetch.WithLogger[*domain.Item](logger),
		fetch.WithName[*domain.Item]("details"),
	)
	b.home = fetch.New[[]domain.Item](catalog.Discover,
		fetch.WithAutoRun[[]domain.Item](),
		fetch.WithObserver(func(fetch.State[[]domain.Item]) { onChange() }),
		fetch.WithLogger[[]domain.Item](logger),
		fetch.WithName[[]domain.Item]("home"),
	)
	return b
}

// Home returns the discover listing state
func (b *Browser) Home() fetch.State[[]domain.Item] {
	return b.home.State()
}

// RefreshHome reloads the discover listing
func (b *Browser) RefreshHome() {
	b.home.Execute()
}

// OpenDetails starts loading one item; a previous pending load is superseded
func (b *Browser) OpenDetails(id string) {
	b.details.ExecuteWith(func(ctx context.Context) (*domain.Item, error) {
		return b.catalog.GetDetails(ctx, id)
	})
}

// Details returns the details screen state
func (b *Browser) Details() fetch.State[*domain.Item] {
	return b.details.State()
}

// CloseDetails clears the details screen
func (b *Browser) CloseDetails() {
	b.details.Reset()
}

// Popular returns the popular searches state
func (b *Browser) Popular() fetch.State[[]domain.SearchPopularityRecord] {
	return b.trending.State()
}

// RefreshPopular reloads the popular searches
func (b *Browser) RefreshPopular() {
	b.trending.Execute()
}

// PopularEnabled reports whether a popularity source is configured
func (b *Browser) PopularEnabled() bool {
	return b.popular != nil
}

func (b *Browser) loadPopular(ctx context.Context) ([]domain.SearchPopularityRecord, error) {
	if b.popular == nil {
		return nil, nil
	}
	return b.popular.TopSearches(ctx, b.popularLimit)
}

// Close discards in-flight loads and waits for their goroutines
func (b *Browser) Close() {
	for _, c := range []interface {
		Close()
		Wait()
	}{b.home, b.details, b.trending} {
		c.Close()
		c.Wait()
	}
}
