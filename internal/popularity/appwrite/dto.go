package appwrite

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/mmcdole/marquee/internal/domain"
)

// documentList is the response of a list-documents call
type documentList struct {
	Total     int        `json:"total"`
	Documents []document `json:"documents"`
}

// document is a search popularity document. Attribute names follow the
// collection schema shared with the mobile client.
type document struct {
	ID         string `json:"$id"`
	UpdatedAt  string `json:"$updatedAt,omitempty"`
	SearchTerm string `json:"searchTerm"`
	MovieID    flexID `json:"movie_id"`
	MovieTitle string `json:"movie_title"`
	PosterURL  string `json:"poster_url"`
	Count      int    `json:"count"`
	Timestamp  string `json:"timestamp"`
}

// flexID accepts the movie id as either a JSON number or a string.
type flexID string

func (f *flexID) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	if s == "null" {
		*f = ""
		return nil
	}
	if strings.HasPrefix(s, `"`) {
		var str string
		if err := json.Unmarshal(b, &str); err != nil {
			return err
		}
		*f = flexID(str)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*f = flexID(n.String())
	return nil
}

// movieIDValue sends numeric catalog ids as integers, matching the schema.
func movieIDValue(id string) any {
	if n, err := strconv.ParseInt(id, 10, 64); err == nil {
		return n
	}
	return id
}

// createRequest is the body of a create-document call
type createRequest struct {
	DocumentID string         `json:"documentId"`
	Data       map[string]any `json:"data"`
}

// updateRequest is the body of an update-document call
type updateRequest struct {
	Data map[string]any `json:"data"`
}

// query is one entry of the queries[] list parameter
type query struct {
	Method    string `json:"method"`
	Attribute string `json:"attribute,omitempty"`
	Values    []any  `json:"values,omitempty"`
}

func (q query) String() string {
	b, _ := json.Marshal(q)
	return string(b)
}

func equal(attr string, value any) query {
	return query{Method: "equal", Attribute: attr, Values: []any{value}}
}

func orderDesc(attr string) query {
	return query{Method: "orderDesc", Attribute: attr}
}

func limit(n int) query {
	return query{Method: "limit", Values: []any{n}}
}

// toRecord maps a document to the domain record
func toRecord(d document) domain.SearchPopularityRecord {
	rec := domain.SearchPopularityRecord{
		ID:         d.ID,
		SearchTerm: d.SearchTerm,
		ItemID:     string(d.MovieID),
		ItemTitle:  d.MovieTitle,
		PosterURL:  d.PosterURL,
		Count:      d.Count,
	}
	for _, ts := range []string{d.Timestamp, d.UpdatedAt} {
		if t, err := time.Parse(time.RFC3339Nano, ts); err == nil {
			rec.UpdatedAt = t
			break
		}
	}
	return rec
}
