package tmdb

import (
	"strconv"
	"strings"
	"time"

	"github.com/mmcdole/marquee/internal/domain"
)

// PlaceholderPoster is used when an item has no poster artwork
const PlaceholderPoster = "https://via.placeholder.com/500x750?text=No+Poster"

// MapSummaries converts list results to domain items
func MapSummaries(results []movieSummary, imageBase string) []domain.Item {
	items := make([]domain.Item, 0, len(results))
	for _, m := range results {
		items = append(items, mapSummary(m, imageBase))
	}
	return items
}

func mapSummary(m movieSummary, imageBase string) domain.Item {
	return domain.Item{
		ID:           strconv.FormatInt(m.ID, 10),
		Title:        m.Title,
		Overview:     m.Overview,
		PosterPath:   m.PosterPath,
		BackdropPath: m.BackdropPath,
		PosterURL:    PosterURL(imageBase, m.PosterPath),
		BackdropURL:  imageURL(imageBase, m.BackdropPath),
		Rating:       m.VoteAverage,
		VoteCount:    m.VoteCount,
		ReleaseDate:  m.ReleaseDate,
	}
}

// MapDetails converts a details payload to a fully populated domain item
func MapDetails(d movieDetails, imageBase string) *domain.Item {
	item := mapSummary(d.movieSummary, imageBase)
	item.Runtime = time.Duration(d.Runtime) * time.Minute
	item.Budget = d.Budget
	item.Revenue = d.Revenue
	item.Tagline = d.Tagline
	item.Status = d.Status

	if len(d.Genres) > 0 {
		item.Genres = make([]domain.Genre, len(d.Genres))
		for i, g := range d.Genres {
			item.Genres[i] = domain.Genre{ID: g.ID, Name: g.Name}
		}
	}
	if len(d.ProductionCompanies) > 0 {
		item.Companies = make([]domain.Company, len(d.ProductionCompanies))
		for i, c := range d.ProductionCompanies {
			item.Companies[i] = domain.Company{ID: c.ID, Name: c.Name, Country: c.OriginCountry}
		}
	}
	return &item
}

// PosterURL builds an absolute poster URL, falling back to the placeholder
func PosterURL(imageBase, path string) string {
	if u := imageURL(imageBase, path); u != "" {
		return u
	}
	return PlaceholderPoster
}

func imageURL(imageBase, path string) string {
	if path == "" {
		return ""
	}
	return strings.TrimRight(imageBase, "/") + "/" + strings.TrimLeft(path, "/")
}

// MoviePageURL returns the public catalog page for an item
func MoviePageURL(id string) string {
	return "https://www.themoviedb.org/movie/" + id
}
