// Package favorites keeps the user's saved items. Memory is authoritative
// for the running session; the persisted blob is a best-effort mirror that
// is restored at startup.
package favorites

import (
	"encoding/json"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/mmcdole/marquee/internal/domain"
	"github.com/sahilm/fuzzy"
)

// StorageKey is the key under which the full collection is persisted.
const StorageKey = "saved_movies"

// Entry is one saved item.
type Entry struct {
	ItemID    string    `json:"item_id"`
	Title     string    `json:"title"`
	PosterURL string    `json:"poster_url"`
	SavedAt   time.Time `json:"saved_at"`
}

// EntryFromItem builds an unsaved entry (SavedAt is stamped by Add).
func EntryFromItem(item domain.Item) Entry {
	return Entry{ItemID: item.ID, Title: item.Title, PosterURL: item.PosterURL}
}

// Store is an ordered, deduplicated collection of saved items.
type Store struct {
	kv     domain.KeyValueStore
	logger *slog.Logger
	now    func() time.Time

	mu      sync.RWMutex
	entries []Entry
	index   map[string]int // ItemID -> position in entries
	loading bool
	loaded  chan struct{}
	closed  bool

	writes     chan []Entry // holds at most the latest pending snapshot
	writerDone chan struct{}
	onChange   func()
}

// New creates a store backed by kv. Call Init to restore persisted entries.
func New(kv domain.KeyValueStore, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Store{
		kv:         kv,
		logger:     logger,
		now:        time.Now,
		index:      make(map[string]int),
		writes:     make(chan []Entry, 1),
		writerDone: make(chan struct{}),
	}
	go s.writer()
	return s
}

// OnChange registers a callback fired after every membership change and
// after the initial load completes.
func (s *Store) OnChange(fn func()) {
	s.mu.Lock()
	s.onChange = fn
	s.mu.Unlock()
}

// Init starts loading persisted entries in the background. The returned
// channel is closed when loading is finished. Init is not re-entrant; calls
// after the first return the same channel.
func (s *Store) Init() <-chan struct{} {
	s.mu.Lock()
	if s.loaded != nil {
		ch := s.loaded
		s.mu.Unlock()
		return ch
	}
	s.loading = true
	s.loaded = make(chan struct{})
	ch := s.loaded
	s.mu.Unlock()

	go s.load(ch)
	return ch
}

func (s *Store) load(done chan struct{}) {
	defer close(done)

	persisted := s.readPersisted()

	s.mu.Lock()
	// Mutations made while loading sit on top of what was persisted.
	pending := s.entries
	merged := make([]Entry, 0, len(persisted)+len(pending))
	index := make(map[string]int, len(persisted)+len(pending))
	for _, e := range append(persisted, pending...) {
		if _, dup := index[e.ItemID]; dup || e.ItemID == "" {
			continue
		}
		index[e.ItemID] = len(merged)
		merged = append(merged, e)
	}
	s.entries = merged
	s.index = index
	s.loading = false
	// Close waits for the load, so the writer is still running here.
	if len(pending) > 0 {
		s.enqueueLocked()
	}
	cb := s.onChange
	s.mu.Unlock()

	s.logger.Info("loaded saved items", "count", len(merged), "pending", len(pending))
	if cb != nil {
		cb()
	}
}

func (s *Store) readPersisted() []Entry {
	raw, ok, err := s.kv.Get(StorageKey)
	if err != nil {
		s.logger.Error("failed to load saved items", "error", err)
		return nil
	}
	if !ok || raw == "" {
		return nil
	}
	var entries []Entry
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		s.logger.Error("failed to decode saved items", "error", err)
		return nil
	}
	return entries
}

// IsLoading reports whether the initial load is still running.
func (s *Store) IsLoading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

// Add saves item unless it is already saved.
func (s *Store) Add(e Entry) {
	s.mutate(func() bool { return s.addLocked(e) })
}

// Remove deletes the entry for itemID if present.
func (s *Store) Remove(itemID string) {
	s.mutate(func() bool { return s.removeLocked(itemID) })
}

// Toggle removes e if it is saved, otherwise adds it. Membership is decided
// at call time. Returns true when the item is saved afterwards.
func (s *Store) Toggle(e Entry) bool {
	var saved bool
	applied := s.mutate(func() bool {
		if _, ok := s.index[e.ItemID]; ok {
			saved = false
			return s.removeLocked(e.ItemID)
		}
		saved = s.addLocked(e)
		return saved
	})
	if !applied {
		return s.IsSaved(e.ItemID)
	}
	return saved
}

// mutate applies fn under the lock and reports whether it ran at all.
func (s *Store) mutate(fn func() bool) bool {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		s.logger.Warn("mutation on closed favorites store ignored")
		return false
	}
	changed := fn()
	if changed && !s.loading {
		s.enqueueLocked()
	}
	cb := s.onChange
	s.mu.Unlock()

	if changed && cb != nil {
		cb()
	}
	return true
}

func (s *Store) addLocked(e Entry) bool {
	if e.ItemID == "" {
		return false
	}
	if _, ok := s.index[e.ItemID]; ok {
		return false
	}
	e.SavedAt = s.now()
	s.index[e.ItemID] = len(s.entries)
	s.entries = append(s.entries, e)
	return true
}

func (s *Store) removeLocked(itemID string) bool {
	pos, ok := s.index[itemID]
	if !ok {
		return false
	}
	next := make([]Entry, 0, len(s.entries)-1)
	next = append(next, s.entries[:pos]...)
	next = append(next, s.entries[pos+1:]...)
	s.entries = next
	s.reindexLocked()
	return true
}

func (s *Store) reindexLocked() {
	s.index = make(map[string]int, len(s.entries))
	for i, e := range s.entries {
		s.index[e.ItemID] = i
	}
}

// IsSaved reports whether itemID is currently saved. While the initial load
// runs only entries added during this session are visible.
func (s *Store) IsSaved(itemID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.index[itemID]
	return ok
}

// Entries returns a copy of the saved entries in the order they were saved.
func (s *Store) Entries() []Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Entry, len(s.entries))
	copy(out, s.entries)
	return out
}

// Count returns the number of saved entries.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Filter fuzzy-matches query against saved titles, best match first.
// An empty query returns every entry.
func (s *Store) Filter(query string) []Entry {
	entries := s.Entries()
	query = strings.TrimSpace(query)
	if query == "" {
		return entries
	}

	titles := make([]string, len(entries))
	for i, e := range entries {
		titles[i] = strings.ToLower(e.Title)
	}
	matches := fuzzy.Find(strings.ToLower(query), titles)

	out := make([]Entry, len(matches))
	for i, m := range matches {
		out[i] = entries[m.Index]
	}
	return out
}

// enqueueLocked hands the current snapshot to the writer, replacing any
// snapshot it has not picked up yet. Caller holds s.mu.
func (s *Store) enqueueLocked() {
	snap := make([]Entry, len(s.entries))
	copy(snap, s.entries)

	select {
	case s.writes <- snap:
	default:
		// Writer is behind; drop the stale snapshot in favour of this one.
		select {
		case <-s.writes:
		default:
		}
		s.writes <- snap
	}
}

func (s *Store) writer() {
	defer close(s.writerDone)
	for snap := range s.writes {
		s.persist(snap)
	}
}

func (s *Store) persist(snap []Entry) {
	data, err := json.Marshal(snap)
	if err != nil {
		s.logger.Error("failed to encode saved items", "error", err)
		return
	}
	if err := s.kv.Set(StorageKey, string(data)); err != nil {
		// Memory stays authoritative; the next mutation retries with a full snapshot.
		s.logger.Error("failed to persist saved items", "error", err, "count", len(snap))
		return
	}
	s.logger.Debug("persisted saved items", "count", len(snap))
}

// Close flushes the latest snapshot and stops the writer. If the initial
// load is still running, Close waits for it so that mutations made during
// loading are persisted with the merged set. Mutations after Close are ignored.
func (s *Store) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	loaded := s.loaded
	s.mu.Unlock()

	if loaded != nil {
		<-loaded
	}

	s.mu.Lock()
	close(s.writes)
	s.mu.Unlock()

	<-s.writerDone
}
