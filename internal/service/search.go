package service

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/mmcdole/marquee/internal/debounce"
	"github.com/mmcdole/marquee/internal/domain"
	"github.com/mmcdole/marquee/internal/fetch"
	"github.com/mmcdole/marquee/internal/popularity"
)

const trackTimeout = 10 * time.Second

// Tracker records that a settled query led to an item
type Tracker interface {
	Track(ctx context.Context, query string, item domain.Item) (popularity.TrackResult, error)
}

// SearchResults is the data committed for one settled query
type SearchResults struct {
	Query string
	Items []domain.Item
	Top   domain.Item // catalog's first hit, before ranking
}

// SearchSnapshot is what the search screen renders
type SearchSnapshot struct {
	Input   string // Raw text in the search box
	Query   string // Last settled query
	Typing  bool   // Input has not settled yet
	Results []domain.Item
	Loading bool
	Err     error
}

// SearchOptions configures a SearchSession
type SearchOptions struct {
	Debounce time.Duration
	Rank     bool
}

// SearchSession wires the search box to the catalog: raw input is debounced,
// each settled query replaces the in-flight search, and the first result of a
// committed search is reported to the tracker once per settled query.
type SearchSession struct {
	catalog  domain.CatalogRepository
	tracker  Tracker
	rank     bool
	logger   *slog.Logger
	onChange func()

	input   *debounce.Debouncer[string]
	results *fetch.Coordinator[SearchResults]
	gate    popularity.Gate

	trackWG sync.WaitGroup
}

// NewSearchSession creates a search session. tracker may be nil to disable
// popularity tracking; onChange (optional) is called after every state change.
func NewSearchSession(catalog domain.CatalogRepository, tracker Tracker, opts SearchOptions, logger *slog.Logger, onChange func()) *SearchSession {
	if logger == nil {
		logger = slog.Default()
	}
	if onChange == nil {
		onChange = func() {}
	}
	s := &SearchSession{
		catalog:  catalog,
		tracker:  tracker,
		rank:     opts.Rank,
		logger:   logger,
		onChange: onChange,
	}
	s.results = fetch.New[SearchResults](nil,
		fetch.WithObserver(s.onResults),
		fetch.WithLogger[SearchResults](logger),
		fetch.WithName[SearchResults]("search"),
	)
	s.input = debounce.New("", opts.Debounce, s.onSettled)
	return s
}

// SetQuery records new raw input from the search box
func (s *SearchSession) SetQuery(q string) {
	s.input.Set(q)
	s.onChange()
}

// Refresh re-runs the current settled query, e.g. after an error
func (s *SearchSession) Refresh() {
	q := s.input.Settled()
	if strings.TrimSpace(q) == "" {
		return
	}
	s.results.ExecuteWith(s.producer(q))
}

// Snapshot returns the current screen state
func (s *SearchSession) Snapshot() SearchSnapshot {
	st := s.results.State()
	return SearchSnapshot{
		Input:   s.input.Input(),
		Query:   s.input.Settled(),
		Typing:  s.input.Pending(),
		Results: st.Data.Items,
		Loading: st.Loading,
		Err:     st.Err,
	}
}

// Close stops debouncing, discards in-flight searches and waits for pending
// tracking calls to finish.
func (s *SearchSession) Close() {
	s.input.Stop()
	s.results.Close()
	s.results.Wait()
	s.trackWG.Wait()
}

func (s *SearchSession) onSettled(q string) {
	s.gate.Settle(q)
	if strings.TrimSpace(q) == "" {
		s.results.Reset()
		return
	}
	s.logger.Debug("search settled", "query", q)
	s.results.ExecuteWith(s.producer(q))
}

func (s *SearchSession) producer(q string) fetch.Producer[SearchResults] {
	query := strings.TrimSpace(q)
	return func(ctx context.Context) (SearchResults, error) {
		items, err := s.catalog.Search(ctx, query)
		if err != nil {
			return SearchResults{}, err
		}
		res := SearchResults{Query: q, Items: items}
		if len(items) > 0 {
			res.Top = items[0]
		}
		if s.rank {
			res.Items = RankResults(items, query)
		}
		s.logger.Debug("search complete", "query", query, "results", len(items))
		return res, nil
	}
}

func (s *SearchSession) onResults(st fetch.State[SearchResults]) {
	if !st.Loading && st.Err == nil && len(st.Data.Items) > 0 {
		s.track(st.Data)
	}
	s.onChange()
}

// track reports the top result in the background. Failures are logged only.
func (s *SearchSession) track(res SearchResults) {
	if s.tracker == nil || !s.gate.Acquire(res.Query) {
		return
	}
	item := res.Top
	query := strings.TrimSpace(res.Query)

	s.trackWG.Add(1)
	go func() {
		defer s.trackWG.Done()
		ctx, cancel := context.WithTimeout(context.Background(), trackTimeout)
		defer cancel()

		result, err := s.tracker.Track(ctx, query, item)
		if err != nil {
			s.logger.Warn("search tracking failed", "query", query, "item", item.ID, "error", err)
			return
		}
		s.logger.Debug("search tracked", "query", query, "item", item.ID,
			"action", result.Action, "count", result.NewCount)
	}()
}

// RankResults orders catalog results by how closely their titles match
// query. Equal scores keep catalog order.
func RankResults(items []domain.Item, query string) []domain.Item {
	if len(items) == 0 {
		return items
	}

	query = strings.ToLower(strings.TrimSpace(query))

	type rankedItem struct {
		item  domain.Item
		score int
	}

	ranked := make([]rankedItem, 0, len(items))
	for _, item := range items {
		title := strings.ToLower(item.Title)
		ranked = append(ranked, rankedItem{item: item, score: calculateMatchScore(title, query)})
	}

	// Sort by score (lower is better)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].score < ranked[j].score
	})

	results := make([]domain.Item, len(ranked))
	for i, r := range ranked {
		results[i] = r.item
	}
	return results
}

// calculateMatchScore calculates a match score for ranking
// Lower score = better match
func calculateMatchScore(title, query string) int {
	if title == query {
		return 0
	}
	if strings.HasPrefix(title, query) {
		return 10
	}
	if strings.Contains(title, query) {
		return 50
	}
	return 100 + fuzzy.LevenshteinDistance(query, title)
}
