package components

import (
	"strings"

	"github.com/mmcdole/marquee/internal/tui/styles"
)

// ListCursor tracks the selection and scroll window of a vertical list
type ListCursor struct {
	cursor int
	offset int
}

// Index returns the selected row
func (l ListCursor) Index() int {
	return l.cursor
}

// Move shifts the selection by delta rows, clamped to [0, n)
func (l *ListCursor) Move(delta, n int) {
	l.cursor += delta
	l.Clamp(n)
}

// Clamp keeps the selection valid after the list changes size
func (l *ListCursor) Clamp(n int) {
	if l.cursor >= n {
		l.cursor = n - 1
	}
	if l.cursor < 0 {
		l.cursor = 0
	}
}

// Reset moves the selection to the top
func (l *ListCursor) Reset() {
	l.cursor = 0
	l.offset = 0
}

// window returns the [start, end) rows visible in height lines
func (l *ListCursor) window(n, height int) (int, int) {
	if height < 1 {
		height = 1
	}
	if l.cursor < l.offset {
		l.offset = l.cursor
	}
	if l.cursor >= l.offset+height {
		l.offset = l.cursor - height + 1
	}
	if l.offset > n-height {
		l.offset = max(n-height, 0)
	}
	end := min(l.offset+height, n)
	return l.offset, end
}

// RenderList renders rows in a window around the cursor. row renders one
// entry; selected is true for the cursor row.
func RenderList(l *ListCursor, n, width, height int, row func(i int, selected bool) string) string {
	if n == 0 {
		return ""
	}
	start, end := l.window(n, height)

	lines := make([]string, 0, end-start+2)
	if start > 0 {
		lines = append(lines, styles.DimStyle.Render("  ↑ more"))
	}
	for i := start; i < end; i++ {
		lines = append(lines, row(i, i == l.cursor))
	}
	if end < n {
		lines = append(lines, styles.DimStyle.Render("  ↓ more"))
	}
	return strings.Join(lines, "\n")
}
