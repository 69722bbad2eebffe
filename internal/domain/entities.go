package domain

import (
	"fmt"
	"time"
)

// Genre is a catalog genre tag
type Genre struct {
	ID   int
	Name string
}

// Company is a production company credited on an item
type Company struct {
	ID      int
	Name    string
	Country string
}

// Item is a catalog entry (a movie). Items are read-only once fetched.
type Item struct {
	ID           string  // Catalog identifier
	Title        string  // Display title
	Overview     string  // Plot synopsis
	PosterPath   string  // Catalog-relative poster path ("" when absent)
	BackdropPath string  // Catalog-relative backdrop path ("" when absent)
	PosterURL    string  // Absolute poster URL (placeholder when PosterPath is empty)
	BackdropURL  string  // Absolute backdrop URL ("" when absent)
	Rating       float64 // Average vote (0-10)
	VoteCount    int
	ReleaseDate  string // YYYY-MM-DD as reported by the catalog
	Runtime      time.Duration

	// Details-only metadata (zero on search/discover results)
	Genres    []Genre
	Companies []Company
	Budget    int64
	Revenue   int64
	Tagline   string
	Status    string
}

// Year returns the release year, or 0 when the release date is unknown
func (i Item) Year() int {
	if len(i.ReleaseDate) < 4 {
		return 0
	}
	var y int
	if _, err := fmt.Sscanf(i.ReleaseDate[:4], "%d", &y); err != nil {
		return 0
	}
	return y
}

// FormattedRuntime returns the runtime in a human-readable format
func (i Item) FormattedRuntime() string {
	if i.Runtime <= 0 {
		return ""
	}
	h := int(i.Runtime.Hours())
	mins := int(i.Runtime.Minutes()) % 60
	if h > 0 {
		return fmt.Sprintf("%dh %dm", h, mins)
	}
	return fmt.Sprintf("%dm", mins)
}

// FormattedMoney renders budget/revenue figures ("$1.2M", "$350K")
func FormattedMoney(amount int64) string {
	switch {
	case amount <= 0:
		return ""
	case amount >= 1_000_000_000:
		return fmt.Sprintf("$%.1fB", float64(amount)/1e9)
	case amount >= 1_000_000:
		return fmt.Sprintf("$%.1fM", float64(amount)/1e6)
	case amount >= 1_000:
		return fmt.Sprintf("$%dK", amount/1_000)
	default:
		return fmt.Sprintf("$%d", amount)
	}
}

// GenreNames returns the genre names in catalog order
func (i Item) GenreNames() []string {
	names := make([]string, len(i.Genres))
	for idx, g := range i.Genres {
		names[idx] = g.Name
	}
	return names
}

// TrackAction describes what an upsert did to a popularity record
type TrackAction string

const (
	TrackCreated TrackAction = "created"
	TrackUpdated TrackAction = "updated"
)

// SearchPopularityRecord counts how often a search term led to an item.
// Unique on (SearchTerm, ItemID); Count is always >= 1.
type SearchPopularityRecord struct {
	ID         string
	SearchTerm string
	ItemID     string
	ItemTitle  string
	PosterURL  string
	Count      int
	UpdatedAt  time.Time
}

// NewPopularityRecord holds the fields needed to create a popularity record
type NewPopularityRecord struct {
	SearchTerm string
	ItemID     string
	ItemTitle  string
	PosterURL  string
}
