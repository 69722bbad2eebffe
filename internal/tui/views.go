package tui

import (
	"fmt"
	"strings"

	"github.com/mmcdole/marquee/internal/domain"
	"github.com/mmcdole/marquee/internal/tui/components"
	"github.com/mmcdole/marquee/internal/tui/styles"
)

// homeTrendingRows is how many popular searches the home screen shows
const homeTrendingRows = 3

func (m Model) renderHome() string {
	trending := m.renderTrendingStrip()
	used := 0
	if trending != "" {
		used = strings.Count(trending, "\n") + 2
		trending += "\n\n"
	}

	st := m.Browser.Home()
	header := styles.TitleStyle.Render("Popular right now")
	switch {
	case st.Loading && len(st.Data) == 0:
		return trending + header + "\n\n" + m.spinner.View() + " Loading..."
	case st.Err != nil:
		return trending + header + "\n\n" + renderError(st.Err)
	}
	return trending + header + "\n\n" + m.renderItems(TabHome, st.Data, m.bodyHeight()-2-used)
}

// renderTrendingStrip lists the top tracked searches, or nothing when
// analytics are off or no searches have been recorded.
func (m Model) renderTrendingStrip() string {
	if !m.Browser.PopularEnabled() {
		return ""
	}
	records := m.Browser.Popular().Data
	if len(records) == 0 {
		return ""
	}
	if len(records) > homeTrendingRows {
		records = records[:homeTrendingRows]
	}

	lines := []string{styles.SubtitleStyle.Render("Trending searches")}
	for i, r := range records {
		lines = append(lines, fmt.Sprintf("%s %s %s",
			styles.AccentStyle.Render(fmt.Sprintf("%d.", i+1)),
			styles.Truncate(r.ItemTitle, m.Width-30),
			styles.DimStyle.Render(fmt.Sprintf("%q", r.SearchTerm))))
	}
	return strings.Join(lines, "\n")
}

func (m Model) renderSearch() string {
	snap := m.Search.Snapshot()

	var status string
	switch {
	case snap.Typing:
		status = styles.DimStyle.Render("…")
	case snap.Loading:
		status = m.spinner.View()
	}
	lines := []string{m.searchInput.View() + " " + status, ""}

	switch {
	case snap.Err != nil:
		lines = append(lines, renderError(snap.Err))
	case strings.TrimSpace(snap.Query) == "":
		lines = append(lines, styles.DimStyle.Render("Type to search the catalog."))
	case !snap.Loading && !snap.Typing && len(snap.Results) == 0:
		lines = append(lines, styles.DimStyle.Render(fmt.Sprintf("No movies found for %q", strings.TrimSpace(snap.Query))))
	default:
		lines = append(lines,
			styles.SubtitleStyle.Render(fmt.Sprintf("Results for %q", strings.TrimSpace(snap.Query))),
			m.renderItems(TabSearch, snap.Results, m.bodyHeight()-3))
	}
	return strings.Join(lines, "\n")
}

func (m Model) renderSaved() string {
	if m.Saved.IsLoading() {
		return m.spinner.View() + " Loading saved movies..."
	}

	header := styles.TitleStyle.Render("Saved movies")
	if m.Filtering || m.filterInput.Value() != "" {
		header += "  " + m.filterInput.View()
	}

	entries := m.savedEntries()
	if len(entries) == 0 {
		if m.Saved.Count() == 0 {
			return header + "\n\n" + styles.DimStyle.Render("Nothing saved yet. Press s on any movie to save it.")
		}
		return header + "\n\n" + styles.DimStyle.Render("No saved titles match the filter.")
	}

	body := components.RenderList(m.cursors[TabSaved], len(entries), m.Width, m.bodyHeight()-2, func(i int, selected bool) string {
		e := entries[i]
		return styles.RenderListRow([]styles.RowPart{
			{Text: styles.SavedChar + " ", Foreground: &styles.MarqueeGold},
			{Text: styles.Truncate(e.Title, m.Width-30)},
			{Text: "  saved " + e.SavedAt.Local().Format("Jan 2, 2006"), Foreground: &styles.DimGray},
		}, selected, m.Width)
	})
	return header + "\n\n" + body
}

func (m Model) renderPopular() string {
	header := styles.TitleStyle.Render("Trending searches")
	if !m.Browser.PopularEnabled() {
		return header + "\n\n" + styles.DimStyle.Render("Search analytics are disabled (analytics.backend = none).")
	}

	st := m.Browser.Popular()
	switch {
	case st.Loading && len(st.Data) == 0:
		return header + "\n\n" + m.spinner.View() + " Loading..."
	case st.Err != nil:
		return header + "\n\n" + renderError(st.Err)
	case len(st.Data) == 0:
		return header + "\n\n" + styles.DimStyle.Render("No searches recorded yet.")
	}

	body := components.RenderList(m.cursors[TabPopular], len(st.Data), m.Width, m.bodyHeight()-2, func(i int, selected bool) string {
		r := st.Data[i]
		return styles.RenderListRow([]styles.RowPart{
			{Text: fmt.Sprintf("%2d. ", i+1), Foreground: &styles.MarqueeGold},
			{Text: styles.Truncate(r.ItemTitle, m.Width-40)},
			{Text: fmt.Sprintf("  %q", r.SearchTerm), Foreground: &styles.DimGray},
			{Text: fmt.Sprintf("  ×%d", r.Count), Foreground: &styles.LightGray},
		}, selected, m.Width)
	})
	return header + "\n\n" + body
}

func (m Model) renderItems(tab Tab, items []domain.Item, height int) string {
	return components.RenderList(m.cursors[tab], len(items), m.Width, height, func(i int, selected bool) string {
		return m.itemRow(items[i], selected)
	})
}

func (m Model) itemRow(item domain.Item, selected bool) string {
	mark := "  "
	if m.Saved.IsSaved(item.ID) {
		mark = styles.SavedChar + " "
	}
	year := ""
	if y := item.Year(); y > 0 {
		year = fmt.Sprintf(" (%d)", y)
	}
	rating := ""
	if item.Rating > 0 {
		rating = fmt.Sprintf("  ★ %.1f", item.Rating)
	}
	return styles.RenderListRow([]styles.RowPart{
		{Text: mark, Foreground: &styles.MarqueeGold},
		{Text: styles.Truncate(item.Title, m.Width-24)},
		{Text: year, Foreground: &styles.DimGray},
		{Text: rating, Foreground: &styles.MarqueeGold},
	}, selected, m.Width)
}

func renderError(err error) string {
	return styles.ErrorStyle.Render("Error: "+err.Error()) + "\n" + styles.DimStyle.Render("Press r to retry.")
}
