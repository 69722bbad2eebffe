package components

import (
	"fmt"
	"strings"

	"github.com/mmcdole/marquee/internal/domain"
	"github.com/mmcdole/marquee/internal/tui/styles"
)

// RenderDetails renders the details pane for one item
func RenderDetails(item *domain.Item, saved bool, width int) string {
	contentWidth := width - 4
	if contentWidth < 20 {
		contentWidth = 20
	}

	var b strings.Builder

	title := item.Title
	if y := item.Year(); y > 0 {
		title = fmt.Sprintf("%s (%d)", title, y)
	}
	b.WriteString(styles.TitleStyle.Render(styles.Truncate(title, contentWidth)))
	if saved {
		b.WriteString(" " + styles.SavedMark)
	}
	b.WriteString("\n")

	if item.Tagline != "" {
		b.WriteString(styles.SubtitleStyle.Render(wordWrap(item.Tagline, contentWidth)))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	var meta []string
	if item.Rating > 0 {
		meta = append(meta, fmt.Sprintf("★ %.1f/10 (%d votes)", item.Rating, item.VoteCount))
	}
	if rt := item.FormattedRuntime(); rt != "" {
		meta = append(meta, rt)
	}
	if item.ReleaseDate != "" {
		meta = append(meta, item.ReleaseDate)
	}
	if item.Status != "" {
		meta = append(meta, item.Status)
	}
	if len(meta) > 0 {
		b.WriteString(styles.AccentStyle.Render(strings.Join(meta, "  •  ")))
		b.WriteString("\n")
	}

	if genres := item.GenreNames(); len(genres) > 0 {
		if len(genres) > 3 {
			genres = genres[:3]
		}
		for _, g := range genres {
			b.WriteString(styles.DimBadgeStyle.Render(g) + " ")
		}
		b.WriteString("\n")
	}

	if item.Overview != "" {
		b.WriteString("\n")
		b.WriteString(styles.SubtitleStyle.Render("Overview"))
		b.WriteString("\n")
		b.WriteString(wordWrap(item.Overview, contentWidth))
		b.WriteString("\n")
	}

	if budget := domain.FormattedMoney(item.Budget); budget != "" {
		b.WriteString("\n")
		b.WriteString(styles.DimStyle.Render("Budget: " + budget))
		if revenue := domain.FormattedMoney(item.Revenue); revenue != "" {
			b.WriteString(styles.DimStyle.Render("   Revenue: " + revenue))
		}
		b.WriteString("\n")
	}

	if len(item.Companies) > 0 {
		names := make([]string, 0, 4)
		for i, c := range item.Companies {
			if i == 4 {
				break
			}
			names = append(names, c.Name)
		}
		b.WriteString(styles.DimStyle.Render(wordWrap("Production: "+strings.Join(names, ", "), contentWidth)))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(styles.DimStyle.Render("Poster: " + item.PosterURL))

	return b.String()
}

// wordWrap wraps text to the specified width
func wordWrap(text string, width int) string {
	if width <= 0 {
		return text
	}

	var result strings.Builder
	words := strings.Fields(text)
	lineLen := 0

	for i, word := range words {
		wordLen := len([]rune(word))

		if lineLen+wordLen+1 > width && lineLen > 0 {
			result.WriteString("\n")
			lineLen = 0
		}

		if i > 0 && lineLen > 0 {
			result.WriteString(" ")
			lineLen++
		}

		result.WriteString(word)
		lineLen += wordLen
	}

	return result.String()
}
