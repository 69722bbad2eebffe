package appwrite

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mmcdole/marquee/internal/domain"
)

const (
	defaultTimeout = 15 * time.Second
	userAgent      = "Marquee/1.0"
)

// Config identifies the popularity collection on an Appwrite server
type Config struct {
	Endpoint     string // e.g. https://cloud.appwrite.io/v1
	ProjectID    string
	DatabaseID   string
	CollectionID string
	APIKey       string // optional; sent as an opaque credential
}

// Client implements domain.CounterStore against the Appwrite documents API.
type Client struct {
	cfg        Config
	httpClient *http.Client
	logger     *slog.Logger
	now        func() time.Time
}

// NewClient creates a new Appwrite counter store client
func NewClient(cfg Config, logger *slog.Logger) (*Client, error) {
	if logger == nil {
		logger = slog.Default()
	}
	cfg.Endpoint = strings.TrimRight(cfg.Endpoint, "/")
	switch {
	case cfg.Endpoint == "":
		return nil, fmt.Errorf("appwrite endpoint is required")
	case cfg.ProjectID == "":
		return nil, fmt.Errorf("appwrite project id is required")
	case cfg.DatabaseID == "":
		return nil, fmt.Errorf("appwrite database id is required")
	case cfg.CollectionID == "":
		return nil, fmt.Errorf("appwrite collection id is required")
	}
	return &Client{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
		logger: logger,
		now:    time.Now,
	}, nil
}

func (c *Client) documentsPath() string {
	return fmt.Sprintf("/databases/%s/collections/%s/documents",
		url.PathEscape(c.cfg.DatabaseID), url.PathEscape(c.cfg.CollectionID))
}

// doRequest performs an authenticated request and decodes the JSON response into out
func (c *Client) doRequest(ctx context.Context, method, path string, query url.Values, body, out any) error {
	reqURL := c.cfg.Endpoint + path
	if len(query) > 0 {
		reqURL += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("X-Appwrite-Project", c.cfg.ProjectID)
	if c.cfg.APIKey != "" {
		req.Header.Set("X-Appwrite-Key", c.cfg.APIKey)
	}

	c.logger.Debug("appwrite request", "method", method, "path", path)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("appwrite request failed", "error", err)
		return fmt.Errorf("%w: %v", domain.ErrNetwork, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: read response: %v", domain.ErrNetwork, err)
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return domain.ErrAuthFailed
	case resp.StatusCode == http.StatusNotFound:
		return domain.ErrNotFound
	case resp.StatusCode == http.StatusConflict:
		return domain.ErrConflict
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		c.logger.Error("appwrite request error", "status", resp.StatusCode, "body", string(respBody))
		return fmt.Errorf("%w: unexpected status code: %d", domain.ErrNetwork, resp.StatusCode)
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}

func (c *Client) listDocuments(ctx context.Context, queries ...query) ([]document, error) {
	params := url.Values{}
	for _, q := range queries {
		params.Add("queries[]", q.String())
	}
	var list documentList
	if err := c.doRequest(ctx, http.MethodGet, c.documentsPath(), params, nil, &list); err != nil {
		return nil, err
	}
	return list.Documents, nil
}

// FindByKey looks up the document for (searchTerm, itemID)
func (c *Client) FindByKey(ctx context.Context, searchTerm, itemID string) (*domain.SearchPopularityRecord, bool, error) {
	docs, err := c.listDocuments(ctx,
		equal("searchTerm", searchTerm),
		equal("movie_id", movieIDValue(itemID)),
		limit(1),
	)
	if err != nil {
		return nil, false, err
	}
	if len(docs) == 0 {
		return nil, false, nil
	}
	rec := toRecord(docs[0])
	return &rec, true, nil
}

// CreateRecord creates a document with count 1
func (c *Client) CreateRecord(ctx context.Context, fields domain.NewPopularityRecord) (*domain.SearchPopularityRecord, error) {
	body := createRequest{
		DocumentID: uuid.New().String(),
		Data: map[string]any{
			"searchTerm":  fields.SearchTerm,
			"movie_id":    movieIDValue(fields.ItemID),
			"movie_title": fields.ItemTitle,
			"poster_url":  fields.PosterURL,
			"count":       1,
			"timestamp":   c.now().UTC().Format(time.RFC3339Nano),
		},
	}

	var doc document
	if err := c.doRequest(ctx, http.MethodPost, c.documentsPath(), nil, body, &doc); err != nil {
		return nil, err
	}
	rec := toRecord(doc)
	return &rec, nil
}

// IncrementCount reads the document and writes back count+1. The server has
// no atomic increment, so concurrent writers may lose an update.
func (c *Client) IncrementCount(ctx context.Context, recordID string) (*domain.SearchPopularityRecord, error) {
	path := c.documentsPath() + "/" + url.PathEscape(recordID)

	var current document
	if err := c.doRequest(ctx, http.MethodGet, path, nil, nil, &current); err != nil {
		return nil, err
	}

	body := updateRequest{Data: map[string]any{
		"count":     current.Count + 1,
		"timestamp": c.now().UTC().Format(time.RFC3339Nano),
	}}
	var updated document
	if err := c.doRequest(ctx, http.MethodPatch, path, nil, body, &updated); err != nil {
		return nil, err
	}
	rec := toRecord(updated)
	return &rec, nil
}

// TopSearches lists documents by count, highest first
func (c *Client) TopSearches(ctx context.Context, n int) ([]domain.SearchPopularityRecord, error) {
	docs, err := c.listDocuments(ctx, orderDesc("count"), limit(n))
	if err != nil {
		return nil, err
	}
	out := make([]domain.SearchPopularityRecord, len(docs))
	for i, d := range docs {
		out[i] = toRecord(d)
	}
	return out, nil
}

// Close releases idle connections
func (c *Client) Close() error {
	c.httpClient.CloseIdleConnections()
	return nil
}
