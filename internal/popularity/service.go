// Package popularity turns settled search queries into per-(query, item)
// popularity counts. Tracking is best-effort telemetry.
package popularity

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mmcdole/marquee/internal/domain"
)

// ErrInvalidInput indicates a blank query or an item without an id.
var ErrInvalidInput = errors.New("query and item id are required")

// TrackResult describes the outcome of a successful Track call.
type TrackResult struct {
	Action   domain.TrackAction
	NewCount int
	RecordID string
}

// Service upserts popularity records in a CounterStore.
type Service struct {
	store  domain.CounterStore
	logger *slog.Logger
}

// NewService creates a popularity service.
func NewService(store domain.CounterStore, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{store: store, logger: logger}
}

// Track creates the (query, item) record with count 1, or increments it if it
// exists. The lookup and the write are separate calls; two clients racing on
// the same key may lose an increment, which is accepted for advisory counts.
func (s *Service) Track(ctx context.Context, query string, item domain.Item) (TrackResult, error) {
	query = strings.TrimSpace(query)
	if query == "" || item.ID == "" {
		return TrackResult{}, ErrInvalidInput
	}

	res, err := s.increment(ctx, query, item.ID)
	if err != nil {
		return TrackResult{}, err
	}
	if res != nil {
		return *res, nil
	}

	rec, err := s.store.CreateRecord(ctx, domain.NewPopularityRecord{
		SearchTerm: query,
		ItemID:     item.ID,
		ItemTitle:  item.Title,
		PosterURL:  item.PosterURL,
	})
	if errors.Is(err, domain.ErrConflict) {
		// Another writer created the key after our lookup; count on top of it.
		s.logger.Debug("popularity record created concurrently", "query", query, "item", item.ID)
		res, err := s.increment(ctx, query, item.ID)
		if err != nil {
			return TrackResult{}, err
		}
		if res == nil {
			return TrackResult{}, fmt.Errorf("popularity record vanished after conflict: %w", domain.ErrNotFound)
		}
		return *res, nil
	}
	if err != nil {
		return TrackResult{}, fmt.Errorf("create popularity record: %w", err)
	}

	s.logger.Debug("popularity record created", "query", query, "item", item.ID, "id", rec.ID)
	return TrackResult{Action: domain.TrackCreated, NewCount: 1, RecordID: rec.ID}, nil
}

// increment bumps an existing record. It returns nil, nil when none exists.
func (s *Service) increment(ctx context.Context, query, itemID string) (*TrackResult, error) {
	existing, ok, err := s.store.FindByKey(ctx, query, itemID)
	if err != nil {
		return nil, fmt.Errorf("look up popularity record: %w", err)
	}
	if !ok {
		return nil, nil
	}

	rec, err := s.store.IncrementCount(ctx, existing.ID)
	if err != nil {
		return nil, fmt.Errorf("increment popularity record: %w", err)
	}

	s.logger.Debug("popularity record updated", "query", query, "item", itemID, "count", rec.Count)
	return &TrackResult{Action: domain.TrackUpdated, NewCount: rec.Count, RecordID: rec.ID}, nil
}

// TopSearches returns the most popular (query, item) records.
func (s *Service) TopSearches(ctx context.Context, limit int) ([]domain.SearchPopularityRecord, error) {
	if limit <= 0 {
		limit = 10
	}
	recs, err := s.store.TopSearches(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("list popular searches: %w", err)
	}
	return recs, nil
}
