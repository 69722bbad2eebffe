package tui

import (
	"context"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mmcdole/marquee/internal/domain"
	"github.com/mmcdole/marquee/internal/favorites"
	"github.com/mmcdole/marquee/internal/service"
	"github.com/mmcdole/marquee/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubCatalog struct{}

func (stubCatalog) Search(_ context.Context, q string) ([]domain.Item, error) {
	return []domain.Item{{ID: "1", Title: "Result for " + q}}, nil
}

func (stubCatalog) Discover(context.Context) ([]domain.Item, error) {
	return []domain.Item{{ID: "603", Title: "The Matrix", ReleaseDate: "1999-03-31"}}, nil
}

func (stubCatalog) GetDetails(_ context.Context, id string) (*domain.Item, error) {
	return &domain.Item{ID: id, Title: "The Matrix"}, nil
}

func newTestModel(t *testing.T, opener URLOpener) Model {
	t.Helper()
	notifier := NewChangeNotifier()

	kv, err := store.NewKVStore("")
	require.NoError(t, err)
	saved := favorites.New(kv, nil)
	<-saved.Init()

	search := service.NewSearchSession(stubCatalog{}, nil, service.SearchOptions{}, nil, notifier.Notify)
	browser := service.NewBrowser(stubCatalog{}, nil, 0, nil, notifier.Notify)
	t.Cleanup(func() {
		search.Close()
		browser.Close()
		saved.Close()
		_ = kv.Close()
	})

	m := NewModel(search, browser, saved, opener, notifier.Changes())
	next, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	return next.(Model)
}

func press(m Model, keys ...string) Model {
	for _, k := range keys {
		var msg tea.KeyMsg
		switch k {
		case "tab":
			msg = tea.KeyMsg{Type: tea.KeyTab}
		case "enter":
			msg = tea.KeyMsg{Type: tea.KeyEnter}
		case "esc":
			msg = tea.KeyMsg{Type: tea.KeyEsc}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		}
		next, _ := m.Update(msg)
		m = next.(Model)
	}
	return m
}

func TestModel_TypingDrivesSearch(t *testing.T) {
	m := newTestModel(t, nil)
	m = press(m, "tab")
	require.Equal(t, TabSearch, m.Tab)

	m = press(m, "h", "e", "a", "t")
	require.Eventually(t, func() bool {
		snap := m.Search.Snapshot()
		return snap.Query == "heat" && len(snap.Results) == 1
	}, time.Second, 5*time.Millisecond)
	assert.Contains(t, m.View(), "Result for heat")
}

func TestModel_SaveFromHome(t *testing.T) {
	m := newTestModel(t, nil)
	require.Eventually(t, func() bool { return len(m.Browser.Home().Data) == 1 }, time.Second, 5*time.Millisecond)

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("s")})
	require.NotNil(t, cmd)
	msg := cmd()
	assert.Equal(t, SavedToggledMsg{Title: "The Matrix", Saved: true}, msg)
	assert.True(t, m.Saved.IsSaved("603"))
}

func TestModel_OpenAndCloseDetails(t *testing.T) {
	m := newTestModel(t, nil)
	require.Eventually(t, func() bool { return len(m.Browser.Home().Data) == 1 }, time.Second, 5*time.Millisecond)

	m = press(m, "enter")
	require.True(t, m.ShowDetails)
	require.Eventually(t, func() bool { return m.Browser.Details().Data != nil }, time.Second, 5*time.Millisecond)
	assert.Contains(t, m.View(), "The Matrix")

	m = press(m, "esc")
	assert.False(t, m.ShowDetails)
	assert.Nil(t, m.Browser.Details().Data)
}

type stubPopular struct {
	records []domain.SearchPopularityRecord
}

func (s stubPopular) TopSearches(_ context.Context, limit int) ([]domain.SearchPopularityRecord, error) {
	if len(s.records) > limit {
		return s.records[:limit], nil
	}
	return s.records, nil
}

func TestModel_HomeShowsTrendingSearches(t *testing.T) {
	notifier := NewChangeNotifier()
	kv, err := store.NewKVStore("")
	require.NoError(t, err)
	saved := favorites.New(kv, nil)
	<-saved.Init()

	popular := stubPopular{records: []domain.SearchPopularityRecord{
		{SearchTerm: "heat", ItemTitle: "Heat", Count: 9},
		{SearchTerm: "alien", ItemTitle: "Alien", Count: 4},
		{SearchTerm: "dune", ItemTitle: "Dune", Count: 3},
		{SearchTerm: "up", ItemTitle: "Up", Count: 1},
	}}
	search := service.NewSearchSession(stubCatalog{}, nil, service.SearchOptions{}, nil, notifier.Notify)
	browser := service.NewBrowser(stubCatalog{}, popular, 10, nil, notifier.Notify)
	t.Cleanup(func() {
		search.Close()
		browser.Close()
		saved.Close()
		_ = kv.Close()
	})

	m := NewModel(search, browser, saved, nil, notifier.Changes())
	next, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	m = next.(Model)

	require.Eventually(t, func() bool {
		return len(m.Browser.Popular().Data) == 4 && len(m.Browser.Home().Data) == 1
	}, time.Second, 5*time.Millisecond)

	view := m.View()
	assert.Contains(t, view, "Trending searches")
	assert.Contains(t, view, "Heat")
	assert.Contains(t, view, "Dune")
	assert.NotContains(t, view, `"up"`)
	assert.Contains(t, view, "The Matrix")
}

type recordingOpener struct {
	urls []string
}

func (o *recordingOpener) Open(url string) error {
	o.urls = append(o.urls, url)
	return nil
}

func TestModel_OpenPageFromDetails(t *testing.T) {
	opener := &recordingOpener{}
	m := newTestModel(t, opener)
	require.Eventually(t, func() bool { return len(m.Browser.Home().Data) == 1 }, time.Second, 5*time.Millisecond)

	m = press(m, "enter")
	require.Eventually(t, func() bool { return m.Browser.Details().Data != nil }, time.Second, 5*time.Millisecond)

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("o")})
	require.NotNil(t, cmd)
	assert.Equal(t, URLOpenedMsg{URL: "https://www.themoviedb.org/movie/603"}, cmd())
	assert.Equal(t, []string{"https://www.themoviedb.org/movie/603"}, opener.urls)
}

func TestChangeNotifier_Coalesces(t *testing.T) {
	n := NewChangeNotifier()
	n.Notify()
	n.Notify()

	msg := WaitForChangeCmd(n.Changes())()
	assert.Equal(t, StateChangedMsg{}, msg)
	select {
	case <-n.Changes():
		t.Fatal("expected a single pending signal")
	default:
	}
}
