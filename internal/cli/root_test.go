package cli

import (
	"bytes"
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/mmcdole/marquee/internal/adapter"
	"github.com/mmcdole/marquee/internal/domain"
	"github.com/mmcdole/marquee/internal/favorites"
	"github.com/mmcdole/marquee/internal/popularity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRootCommand(t *testing.T) {
	t.Run("creates root command", func(t *testing.T) {
		cmd := NewRootCommand("1.0.0")
		assert.NotNil(t, cmd)
		assert.Equal(t, "marquee", cmd.Use)
		assert.Equal(t, "1.0.0", cmd.Version)
	})

	t.Run("has debug flag", func(t *testing.T) {
		cmd := NewRootCommand("1.0.0")
		assert.NotNil(t, cmd.PersistentFlags().Lookup("debug"))
	})

	for _, name := range []string{"search", "popular", "saved", "setup"} {
		t.Run("has "+name+" subcommand", func(t *testing.T) {
			cmd := NewRootCommand("1.0.0")
			sub, _, err := cmd.Find([]string{name})
			require.NoError(t, err)
			assert.Contains(t, sub.Use, name)
		})
	}

	t.Run("saved has add and rm", func(t *testing.T) {
		cmd := NewRootCommand("1.0.0")
		add, _, err := cmd.Find([]string{"saved", "add"})
		require.NoError(t, err)
		assert.Contains(t, add.Use, "add")
		rm, _, err := cmd.Find([]string{"saved", "remove"})
		require.NoError(t, err)
		assert.Contains(t, rm.Use, "rm")
	})
}

type fakeCatalog struct {
	items []domain.Item
	err   error
}

func (f fakeCatalog) Search(context.Context, string) ([]domain.Item, error) { return f.items, f.err }
func (f fakeCatalog) Discover(context.Context) ([]domain.Item, error)       { return f.items, f.err }
func (f fakeCatalog) GetDetails(_ context.Context, id string) (*domain.Item, error) {
	return &domain.Item{ID: id, Title: "Heat"}, f.err
}

type recordingTracker struct {
	mu    sync.Mutex
	calls []string
}

func (r *recordingTracker) Track(_ context.Context, q string, item domain.Item) (popularity.TrackResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, q+"|"+item.ID)
	return popularity.TrackResult{Action: domain.TrackCreated, NewCount: 1}, nil
}

func TestRunSearch(t *testing.T) {
	catalog := fakeCatalog{items: []domain.Item{
		{ID: "1", Title: "Heat Wave"},
		{ID: "949", Title: "Heat", ReleaseDate: "1995-12-15"},
	}}
	tracker := &recordingTracker{}

	snap, err := runSearch(context.Background(), catalog, tracker, true, "heat")
	require.NoError(t, err)
	require.Len(t, snap.Results, 2)
	assert.Equal(t, "949", snap.Results[0].ID, "exact title ranks first")

	// runSearch closes the session, which waits for tracking
	assert.Equal(t, []string{"heat|949"}, tracker.calls)
}

func TestRunSearch_Errors(t *testing.T) {
	_, err := runSearch(context.Background(), fakeCatalog{}, nil, false, "  ")
	assert.Error(t, err)

	_, err = runSearch(context.Background(), fakeCatalog{err: domain.ErrNetwork}, nil, false, "heat")
	assert.ErrorIs(t, err, domain.ErrNetwork)
}

func TestPrintItems(t *testing.T) {
	var buf bytes.Buffer
	printItems(&buf, []domain.Item{
		{ID: "949", Title: "Heat", ReleaseDate: "1995-12-15", Rating: 7.9},
		{ID: "1", Title: "Other"},
	}, 1, func(id string) bool { return id == "949" })

	out := buf.String()
	assert.Contains(t, out, "Heat")
	assert.Contains(t, out, "1995")
	assert.Contains(t, out, "★")
	assert.NotContains(t, out, "Other")

	buf.Reset()
	printItems(&buf, nil, 0, nil)
	assert.Contains(t, buf.String(), "No movies found")
}

func TestPrintEntries(t *testing.T) {
	var buf bytes.Buffer
	printEntries(&buf, []favorites.Entry{{ItemID: "949", Title: "Heat", SavedAt: time.Now()}})
	assert.Contains(t, buf.String(), "Heat")

	buf.Reset()
	printEntries(&buf, nil)
	assert.Contains(t, buf.String(), "No saved movies")
}

func TestOpenApp(t *testing.T) {
	cfg := adapter.DefaultConfig()
	cfg.Storage.Path = t.TempDir()
	cfg.Analytics.DBPath = filepath.Join(t.TempDir(), "analytics.db")

	a, err := openApp(cfg, adapter.NullLogger())
	require.NoError(t, err)

	_, err = a.requireCatalog()
	assert.Error(t, err, "no token configured")
	assert.NotNil(t, a.tracker())
	assert.NotNil(t, a.popularSource())

	require.NoError(t, a.waitSaved(context.Background()))
	a.saved.Add(favorites.Entry{ItemID: "949", Title: "Heat"})
	a.Close()

	// Saved entries survive a restart
	b, err := openApp(cfg, adapter.NullLogger())
	require.NoError(t, err)
	defer b.Close()
	require.NoError(t, b.waitSaved(context.Background()))
	assert.True(t, b.saved.IsSaved("949"))
}

func TestOpenApp_AnalyticsDisabled(t *testing.T) {
	cfg := adapter.DefaultConfig()
	cfg.Storage.Path = ""
	cfg.Analytics.Backend = adapter.AnalyticsNone
	cfg.Catalog.Token = "abc"

	a, err := openApp(cfg, adapter.NullLogger())
	require.NoError(t, err)
	defer a.Close()

	_, err = a.requireCatalog()
	assert.NoError(t, err)
	assert.Nil(t, a.tracker())
	assert.Nil(t, a.popularSource())
}
