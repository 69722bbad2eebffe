package tmdb

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/mmcdole/marquee/internal/domain"
)

const (
	defaultTimeout   = 15 * time.Second
	userAgent        = "Marquee/1.0"
	DefaultBaseURL   = "https://api.themoviedb.org/3"
	DefaultImageBase = "https://image.tmdb.org/t/p/w500"
)

// Options tunes catalog requests
type Options struct {
	ImageBase    string
	Language     string
	IncludeAdult bool
}

// Client implements domain.CatalogRepository for the TMDB v3 API
type Client struct {
	baseURL    string
	token      string
	opts       Options
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a new TMDB API client. token is a v4 read access token
// sent as a bearer credential.
func NewClient(baseURL, token string, opts Options, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if opts.ImageBase == "" {
		opts.ImageBase = DefaultImageBase
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		opts:    opts,
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
		logger: logger,
	}
}

// doRequest performs an authenticated GET and returns the body
func (c *Client) doRequest(ctx context.Context, path string, query url.Values) ([]byte, error) {
	if query == nil {
		query = url.Values{}
	}
	if c.opts.Language != "" {
		query.Set("language", c.opts.Language)
	}
	reqURL := c.baseURL + path
	if len(query) > 0 {
		reqURL = reqURL + "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("User-Agent", userAgent)

	c.logger.Debug("tmdb request", "url", reqURL)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("tmdb request failed", "error", err)
		return nil, fmt.Errorf("%w: %v", domain.ErrNetwork, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read response: %v", domain.ErrNetwork, err)
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return nil, domain.ErrAuthFailed
	case resp.StatusCode == http.StatusNotFound:
		return nil, domain.ErrNotFound
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		var apiErr errorResponse
		_ = json.Unmarshal(body, &apiErr)
		c.logger.Error("tmdb request error", "status", resp.StatusCode, "message", apiErr.StatusMessage)
		return nil, fmt.Errorf("%w: unexpected status code %d", domain.ErrNetwork, resp.StatusCode)
	}

	return body, nil
}

func (c *Client) list(ctx context.Context, path string, query url.Values) ([]domain.Item, error) {
	body, err := c.doRequest(ctx, path, query)
	if err != nil {
		return nil, err
	}

	var page pagedResponse
	if err := json.Unmarshal(body, &page); err != nil {
		c.logger.Error("JSON parse error", "error", err, "bodyLen", len(body))
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	return MapSummaries(page.Results, c.opts.ImageBase), nil
}

// Search returns catalog items matching a free-text query
func (c *Client) Search(ctx context.Context, query string) ([]domain.Item, error) {
	q := url.Values{}
	q.Set("query", query)
	q.Set("include_adult", strconv.FormatBool(c.opts.IncludeAdult))
	return c.list(ctx, "/search/movie", q)
}

// Discover returns the popularity-sorted default listing
func (c *Client) Discover(ctx context.Context) ([]domain.Item, error) {
	q := url.Values{}
	q.Set("sort_by", "popularity.desc")
	q.Set("include_adult", strconv.FormatBool(c.opts.IncludeAdult))
	q.Set("include_video", "false")
	return c.list(ctx, "/discover/movie", q)
}

// GetDetails returns the full record for one item
func (c *Client) GetDetails(ctx context.Context, id string) (*domain.Item, error) {
	if _, err := strconv.ParseInt(id, 10, 64); err != nil {
		return nil, fmt.Errorf("invalid item id %q: %w", id, domain.ErrNotFound)
	}

	body, err := c.doRequest(ctx, "/movie/"+id, nil)
	if err != nil {
		return nil, err
	}

	var d movieDetails
	if err := json.Unmarshal(body, &d); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	return MapDetails(d, c.opts.ImageBase), nil
}
