package tmdb

// pagedResponse is the envelope returned by /search/movie and /discover/movie
type pagedResponse struct {
	Page         int            `json:"page"`
	Results      []movieSummary `json:"results"`
	TotalPages   int            `json:"total_pages"`
	TotalResults int            `json:"total_results"`
}

// movieSummary is a movie as listed in search and discover results
type movieSummary struct {
	ID           int64   `json:"id"`
	Title        string  `json:"title"`
	Overview     string  `json:"overview"`
	PosterPath   string  `json:"poster_path"`
	BackdropPath string  `json:"backdrop_path"`
	ReleaseDate  string  `json:"release_date"`
	VoteAverage  float64 `json:"vote_average"`
	VoteCount    int     `json:"vote_count"`
	Adult        bool    `json:"adult"`
}

// movieDetails is the full /movie/{id} payload
type movieDetails struct {
	movieSummary
	Runtime             int       `json:"runtime"`
	Budget              int64     `json:"budget"`
	Revenue             int64     `json:"revenue"`
	Tagline             string    `json:"tagline"`
	Status              string    `json:"status"`
	Genres              []genre   `json:"genres"`
	ProductionCompanies []company `json:"production_companies"`
}

type genre struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type company struct {
	ID            int    `json:"id"`
	Name          string `json:"name"`
	OriginCountry string `json:"origin_country"`
}

// errorResponse is the body TMDB sends with non-2xx statuses
type errorResponse struct {
	StatusCode    int    `json:"status_code"`
	StatusMessage string `json:"status_message"`
}
