package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mmcdole/marquee/internal/adapter/source/tmdb"
	"github.com/mmcdole/marquee/internal/favorites"
	"github.com/mmcdole/marquee/internal/service"
	"github.com/mmcdole/marquee/internal/tui/components"
	"github.com/mmcdole/marquee/internal/tui/styles"
)

// Tab identifies a top-level screen
type Tab int

const (
	TabHome Tab = iota
	TabSearch
	TabSaved
	TabPopular
)

var tabNames = []string{"Home", "Search", "Saved", "Popular"}

// Layout: tab bar + blank line on top, footer line at the bottom
const ChromeHeight = 3

// Model is the main Bubble Tea model for the application
type Model struct {
	// Services
	Search  *service.SearchSession
	Browser *service.Browser
	Saved   *favorites.Store
	Opener  URLOpener
	changes <-chan struct{}

	keys KeyMap

	// Screen state
	Tab         Tab
	ShowDetails bool
	ShowHelp    bool
	Filtering   bool

	searchInput textinput.Model
	filterInput textinput.Model
	spinner     spinner.Model
	cursors     map[Tab]*components.ListCursor

	// Dimensions
	Width  int
	Height int

	// UI state
	StatusMsg   string
	StatusIsErr bool
}

// URLOpener opens a web page outside the terminal
type URLOpener interface {
	Open(url string) error
}

// NewModel creates the application model. changes delivers redraw signals
// from the background components; opener may be nil.
func NewModel(search *service.SearchSession, browser *service.Browser, saved *favorites.Store, opener URLOpener, changes <-chan struct{}) Model {
	si := textinput.New()
	si.Placeholder = "Search for a movie..."
	si.Prompt = "🔍 "
	si.PromptStyle = styles.PromptStyle
	si.PlaceholderStyle = styles.DimStyle
	si.CharLimit = 100

	fi := textinput.New()
	fi.Placeholder = "filter saved titles"
	fi.Prompt = "/"
	fi.PromptStyle = styles.PromptStyle
	fi.PlaceholderStyle = styles.DimStyle
	fi.CharLimit = 50

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = styles.SpinnerStyle

	cursors := make(map[Tab]*components.ListCursor, len(tabNames))
	for i := range tabNames {
		cursors[Tab(i)] = &components.ListCursor{}
	}

	return Model{
		Search:      search,
		Browser:     browser,
		Saved:       saved,
		Opener:      opener,
		changes:     changes,
		keys:        DefaultKeyMap(),
		searchInput: si,
		filterInput: fi,
		spinner:     sp,
		cursors:     cursors,
	}
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		WaitForChangeCmd(m.changes),
		m.spinner.Tick,
		textinput.Blink,
	)
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		m.searchInput.Width = max(msg.Width-8, 10)
		return m, nil

	case StateChangedMsg:
		m.clampCursors()
		return m, WaitForChangeCmd(m.changes)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case URLOpenedMsg:
		m.StatusMsg = "Opened " + msg.URL
		m.StatusIsErr = false
		return m, ClearStatusCmd(3 * time.Second)

	case SavedToggledMsg:
		if msg.Saved {
			m.StatusMsg = fmt.Sprintf("Saved %s", msg.Title)
		} else {
			m.StatusMsg = fmt.Sprintf("Removed %s", msg.Title)
		}
		m.StatusIsErr = false
		m.clampCursors()
		return m, ClearStatusCmd(3 * time.Second)

	case ErrMsg:
		m.StatusMsg = msg.Error()
		m.StatusIsErr = true
		return m, ClearStatusCmd(5 * time.Second)

	case ClearStatusMsg:
		m.StatusMsg = ""
		m.StatusIsErr = false
		return m, nil

	case tea.KeyMsg:
		return m.handleKeyMsg(msg)
	}

	return m, nil
}

func (m Model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.ForceQuit) {
		return m, tea.Quit
	}

	if m.ShowHelp {
		m.ShowHelp = false
		return m, nil
	}

	if m.ShowDetails {
		return m.handleDetailsKey(msg)
	}

	switch {
	case key.Matches(msg, m.keys.NextTab):
		return m.switchTab(Tab((int(m.Tab) + 1) % len(tabNames)))
	case key.Matches(msg, m.keys.PrevTab):
		return m.switchTab(Tab((int(m.Tab) + len(tabNames) - 1) % len(tabNames)))
	}

	// Text inputs swallow plain keys
	if m.Tab == TabSearch {
		return m.handleSearchKey(msg)
	}
	if m.Tab == TabSaved && m.Filtering {
		return m.handleFilterKey(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.ShowHelp = true
		return m, nil
	case key.Matches(msg, m.keys.Filter) && m.Tab == TabSaved:
		m.Filtering = true
		return m, m.filterInput.Focus()
	case key.Matches(msg, m.keys.Back) && m.Tab == TabSaved:
		m.filterInput.SetValue("")
		m.clampCursors()
		return m, nil
	case key.Matches(msg, m.keys.Refresh):
		m.refresh()
		return m, nil
	case key.Matches(msg, m.keys.ToggleSave):
		return m, m.toggleSelected()
	}

	return m.handleListKey(msg)
}

// handleListKey moves the cursor or opens the selected row
func (m Model) handleListKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	n := m.rowCount(m.Tab)
	cursor := m.cursors[m.Tab]
	page := max(m.bodyHeight()-2, 1)

	switch {
	case key.Matches(msg, m.keys.Up):
		cursor.Move(-1, n)
	case key.Matches(msg, m.keys.Down):
		cursor.Move(1, n)
	case key.Matches(msg, m.keys.PageUp):
		cursor.Move(-page, n)
	case key.Matches(msg, m.keys.PageDown):
		cursor.Move(page, n)
	case key.Matches(msg, m.keys.Enter):
		if id := m.selectedID(); id != "" {
			m.ShowDetails = true
			m.Browser.OpenDetails(id)
		}
	}
	return m, nil
}

func (m Model) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Up, m.keys.Down, m.keys.PageUp, m.keys.PageDown, m.keys.Enter):
		return m.handleListKey(msg)
	case key.Matches(msg, m.keys.Back):
		if m.searchInput.Value() == "" {
			return m, nil
		}
		m.searchInput.SetValue("")
		m.Search.SetQuery("")
		m.cursors[TabSearch].Reset()
		return m, nil
	case msg.Type == tea.KeyCtrlS:
		return m, m.toggleSelected()
	case msg.Type == tea.KeyCtrlR:
		m.Search.Refresh()
		return m, nil
	}

	before := m.searchInput.Value()
	var cmd tea.Cmd
	m.searchInput, cmd = m.searchInput.Update(msg)
	if after := m.searchInput.Value(); after != before {
		m.Search.SetQuery(after)
		m.cursors[TabSearch].Reset()
	}
	return m, cmd
}

func (m Model) handleFilterKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Back):
		m.Filtering = false
		m.filterInput.Blur()
		m.filterInput.SetValue("")
		m.clampCursors()
		return m, nil
	case key.Matches(msg, m.keys.Enter):
		m.Filtering = false
		m.filterInput.Blur()
		return m, nil
	case key.Matches(msg, m.keys.Up, m.keys.Down):
		return m.handleListKey(msg)
	}

	var cmd tea.Cmd
	m.filterInput, cmd = m.filterInput.Update(msg)
	m.cursors[TabSaved].Reset()
	return m, cmd
}

func (m Model) handleDetailsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Back):
		m.ShowDetails = false
		m.Browser.CloseDetails()
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Refresh):
		if st := m.Browser.Details(); st.Data != nil {
			m.Browser.OpenDetails(st.Data.ID)
		}
	case key.Matches(msg, m.keys.ToggleSave):
		if item := m.Browser.Details().Data; item != nil {
			return m, ToggleSavedCmd(m.Saved, favorites.EntryFromItem(*item))
		}
	case key.Matches(msg, m.keys.OpenPage):
		if item := m.Browser.Details().Data; item != nil && m.Opener != nil {
			return m, OpenURLCmd(m.Opener, tmdb.MoviePageURL(item.ID))
		}
	case key.Matches(msg, m.keys.OpenPoster):
		if item := m.Browser.Details().Data; item != nil && m.Opener != nil {
			return m, OpenURLCmd(m.Opener, item.PosterURL)
		}
	}
	return m, nil
}

func (m Model) switchTab(tab Tab) (tea.Model, tea.Cmd) {
	m.Tab = tab
	m.Filtering = false
	m.filterInput.Blur()

	var cmd tea.Cmd
	if tab == TabSearch {
		cmd = m.searchInput.Focus()
	} else {
		m.searchInput.Blur()
	}
	if tab == TabPopular {
		m.Browser.RefreshPopular()
	}
	m.clampCursors()
	return m, cmd
}

func (m Model) refresh() {
	switch m.Tab {
	case TabHome:
		m.Browser.RefreshHome()
		if m.Browser.PopularEnabled() {
			m.Browser.RefreshPopular()
		}
	case TabSearch:
		m.Search.Refresh()
	case TabPopular:
		m.Browser.RefreshPopular()
	}
}

// toggleSelected saves or unsaves the row under the cursor
func (m Model) toggleSelected() tea.Cmd {
	idx := m.cursors[m.Tab].Index()
	switch m.Tab {
	case TabHome:
		if items := m.Browser.Home().Data; idx < len(items) {
			return ToggleSavedCmd(m.Saved, favorites.EntryFromItem(items[idx]))
		}
	case TabSearch:
		if items := m.Search.Snapshot().Results; idx < len(items) {
			return ToggleSavedCmd(m.Saved, favorites.EntryFromItem(items[idx]))
		}
	case TabSaved:
		if entries := m.savedEntries(); idx < len(entries) {
			return ToggleSavedCmd(m.Saved, entries[idx])
		}
	case TabPopular:
		if recs := m.Browser.Popular().Data; idx < len(recs) {
			r := recs[idx]
			return ToggleSavedCmd(m.Saved, favorites.Entry{ItemID: r.ItemID, Title: r.ItemTitle, PosterURL: r.PosterURL})
		}
	}
	return nil
}

// selectedID returns the catalog id of the row under the cursor
func (m Model) selectedID() string {
	idx := m.cursors[m.Tab].Index()
	switch m.Tab {
	case TabHome:
		if items := m.Browser.Home().Data; idx < len(items) {
			return items[idx].ID
		}
	case TabSearch:
		if items := m.Search.Snapshot().Results; idx < len(items) {
			return items[idx].ID
		}
	case TabSaved:
		if entries := m.savedEntries(); idx < len(entries) {
			return entries[idx].ItemID
		}
	case TabPopular:
		if recs := m.Browser.Popular().Data; idx < len(recs) {
			return recs[idx].ItemID
		}
	}
	return ""
}

func (m Model) savedEntries() []favorites.Entry {
	return m.Saved.Filter(m.filterInput.Value())
}

func (m Model) rowCount(tab Tab) int {
	switch tab {
	case TabHome:
		return len(m.Browser.Home().Data)
	case TabSearch:
		return len(m.Search.Snapshot().Results)
	case TabSaved:
		return len(m.savedEntries())
	case TabPopular:
		return len(m.Browser.Popular().Data)
	}
	return 0
}

func (m Model) clampCursors() {
	for tab, c := range m.cursors {
		c.Clamp(m.rowCount(tab))
	}
}

func (m Model) bodyHeight() int {
	return max(m.Height-ChromeHeight, 1)
}

// View renders the UI
func (m Model) View() string {
	if m.Width == 0 {
		return "Loading..."
	}

	var body string
	switch {
	case m.ShowHelp:
		body = m.renderHelp()
	case m.ShowDetails:
		body = m.renderDetails()
	default:
		body = m.renderTab()
	}

	body = lipgloss.NewStyle().Height(m.bodyHeight()).MaxHeight(m.bodyHeight()).Render(body)
	return lipgloss.JoinVertical(lipgloss.Left, m.renderTabs(), "", body, m.renderFooter())
}

func (m Model) renderTabs() string {
	parts := make([]string, len(tabNames))
	for i, name := range tabNames {
		label := name
		if Tab(i) == TabSaved {
			label = fmt.Sprintf("%s (%d)", name, m.Saved.Count())
		}
		if Tab(i) == m.Tab {
			parts[i] = styles.ActiveTabStyle.Render(label)
		} else {
			parts[i] = styles.TabStyle.Render(label)
		}
	}
	return styles.AccentStyle.Render(" marquee ") + strings.Join(parts, " ")
}

func (m Model) renderFooter() string {
	if m.StatusMsg != "" {
		if m.StatusIsErr {
			return styles.ErrorStyle.Render(m.StatusMsg)
		}
		return styles.SuccessStyle.Render(m.StatusMsg)
	}

	var bindings []key.Binding
	switch {
	case m.ShowDetails:
		bindings = []key.Binding{m.keys.Back, m.keys.ToggleSave, m.keys.OpenPage, m.keys.OpenPoster, m.keys.Refresh, m.keys.Quit}
	case m.Tab == TabSearch:
		bindings = []key.Binding{m.keys.Enter, m.keys.NextTab, m.keys.Back}
	case m.Tab == TabSaved:
		bindings = []key.Binding{m.keys.Enter, m.keys.Filter, m.keys.ToggleSave, m.keys.NextTab, m.keys.Quit}
	default:
		bindings = []key.Binding{m.keys.Enter, m.keys.ToggleSave, m.keys.Refresh, m.keys.NextTab, m.keys.Help, m.keys.Quit}
	}

	parts := make([]string, 0, len(bindings))
	for _, b := range bindings {
		h := b.Help()
		parts = append(parts, styles.HelpKeyStyle.Render(h.Key)+" "+styles.HelpDescStyle.Render(h.Desc))
	}
	return strings.Join(parts, "  ")
}

func (m Model) renderHelp() string {
	all := []key.Binding{
		m.keys.Up, m.keys.Down, m.keys.PageUp, m.keys.PageDown, m.keys.Enter, m.keys.Back,
		m.keys.NextTab, m.keys.PrevTab, m.keys.ToggleSave, m.keys.Filter, m.keys.Refresh,
		m.keys.OpenPage, m.keys.OpenPoster, m.keys.Quit,
	}
	var b strings.Builder
	b.WriteString(styles.TitleStyle.Render("Keys"))
	b.WriteString("\n\n")
	for _, binding := range all {
		h := binding.Help()
		b.WriteString(fmt.Sprintf("  %s  %s\n", styles.HelpKeyStyle.Render(fmt.Sprintf("%-10s", h.Key)), styles.HelpDescStyle.Render(h.Desc)))
	}
	return styles.InactiveBorder.Padding(1, 2).Render(b.String())
}

func (m Model) renderDetails() string {
	st := m.Browser.Details()
	switch {
	case st.Loading && st.Data == nil:
		return m.spinner.View() + " Loading details..."
	case st.Err != nil:
		return styles.ErrorStyle.Render("Failed to load details: "+st.Err.Error()) + "\n\n" +
			styles.DimStyle.Render("r to retry, esc to go back")
	case st.Data == nil:
		return ""
	}
	content := components.RenderDetails(st.Data, m.Saved.IsSaved(st.Data.ID), m.Width)
	return styles.ActiveBorder.Padding(0, 1).Width(max(m.Width-2, 20)).Render(content)
}

func (m Model) renderTab() string {
	switch m.Tab {
	case TabHome:
		return m.renderHome()
	case TabSearch:
		return m.renderSearch()
	case TabSaved:
		return m.renderSaved()
	case TabPopular:
		return m.renderPopular()
	}
	return ""
}
