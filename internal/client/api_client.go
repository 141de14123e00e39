// Package client implements the REST contract against the gallery
// backend. It only speaks the wire protocol; all interpretation of the
// payloads happens in the sync worker and the dispatcher.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/hsa00000/urocissa/internal/errors"
	"github.com/hsa00000/urocissa/internal/model"
)

// ShareHeaders are attached to requests issued inside a share context
type ShareHeaders struct {
	AlbumId  string
	ShareId  string
	Password string
}

// Config holds API client configuration
type Config struct {
	BaseURL        string
	RequestTimeout time.Duration
	BatchRateLimit float64
	BatchRateBurst int
}

// Client is the gallery backend API client. TokenProvider supplies the
// current timestamp token; ShareProvider supplies share headers when a
// share context is active.
type Client struct {
	baseURL       string
	httpClient    *http.Client
	batchLimiter  *rate.Limiter
	logger        *zap.Logger
	TokenProvider func() string
	ShareProvider func() *ShareHeaders
}

// NewClient creates a new API client
func NewClient(cfg Config, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 30 * time.Second
	}
	limit := rate.Limit(cfg.BatchRateLimit)
	if cfg.BatchRateLimit <= 0 {
		limit = rate.Inf
	}
	burst := cfg.BatchRateBurst
	if burst <= 0 {
		burst = 1
	}
	return &Client{
		baseURL:      cfg.BaseURL,
		httpClient:   &http.Client{Timeout: cfg.RequestTimeout},
		batchLimiter: rate.NewLimiter(limit, burst),
		logger:       logger,
	}
}

// WithProviders returns a copy of the client bound to its own token
// and share providers. The transport and the batch rate limiter stay
// shared, so engines built from one client each call this to keep
// their authorization state independent.
func (c *Client) WithProviders(token func() string, share func() *ShareHeaders) *Client {
	clone := *c
	clone.TokenProvider = token
	clone.ShareProvider = share
	return &clone
}

// BatchRecord is one raw entity record of a batch fetch: the payload is
// left undecoded for the worker's validation pipeline.
type BatchRecord struct {
	AbstractData json.RawMessage `json:"abstractData"`
	Timestamp    int64           `json:"timestamp"`
	Token        string          `json:"token"`
}

// AppConfig is the application configuration served by the backend
type AppConfig struct {
	ReadOnlyMode bool   `json:"readOnlyMode"`
	DisableImg   bool   `json:"disableImg"`
	Version      string `json:"version"`
}

// Prefetch runs the data-window fetch that opens a data generation
func (c *Client) Prefetch(ctx context.Context, filter *string, priorityId, reverse string, locate *string) (model.PrefetchReturn, error) {
	q := url.Values{}
	if filter != nil {
		q.Set("filter", *filter)
	}
	if priorityId != "" {
		q.Set("priority_id", priorityId)
	}
	if reverse != "" {
		q.Set("reverse", reverse)
	}
	if locate != nil {
		q.Set("locate", *locate)
	}

	var out model.PrefetchReturn
	if err := c.getJSON(ctx, "/get/get-prefetch", q, &out); err != nil {
		return model.PrefetchReturn{}, err
	}
	return out, nil
}

// FetchBatch fetches the raw entity records for indices [start, end)
// of the given data generation. Rate limited so a fast scroll does not
// flood the backend.
func (c *Client) FetchBatch(ctx context.Context, timestamp int64, start, end int) ([]BatchRecord, error) {
	if err := c.batchLimiter.Wait(ctx); err != nil {
		return nil, err
	}
	q := url.Values{}
	q.Set("timestamp", strconv.FormatInt(timestamp, 10))
	q.Set("start", strconv.Itoa(start))
	q.Set("end", strconv.Itoa(end))

	var out []BatchRecord
	if err := c.getJSON(ctx, "/get/get-data", q, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// FetchScrollbar fetches the scrollbar summary for a data generation.
// Requires the timestamp token issued by the matching prefetch.
func (c *Client) FetchScrollbar(ctx context.Context, timestamp int64) ([]model.ScrollbarMark, error) {
	q := url.Values{}
	q.Set("timestamp", strconv.FormatInt(timestamp, 10))

	var out []model.ScrollbarMark
	if err := c.getJSON(ctx, "/get/get-scroll-bar", q, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// FetchTags fetches the full tag index
func (c *Client) FetchTags(ctx context.Context) ([]model.TagInfo, error) {
	var out []model.TagInfo
	if err := c.getJSON(ctx, "/get/get-tags", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// FetchAlbums fetches the full album index
func (c *Client) FetchAlbums(ctx context.Context) ([]model.AlbumInfo, error) {
	var out []model.AlbumInfo
	if err := c.getJSON(ctx, "/get/get-albums", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// FetchConfig fetches the application configuration
func (c *Client) FetchConfig(ctx context.Context) (AppConfig, error) {
	var out AppConfig
	if err := c.getJSON(ctx, "/get/get-config", nil, &out); err != nil {
		return AppConfig{}, err
	}
	return out, nil
}

// EditTagsRequest is the payload of a tag-edit round trip
type EditTagsRequest struct {
	IndexArray      []int    `json:"indexArray"`
	AddTagsArray    []string `json:"addTagsArray"`
	RemoveTagsArray []string `json:"removeTagsArray"`
	Timestamp       int64    `json:"timestamp"`
}

// EditTags applies a tag edit and returns the refreshed tag index,
// nil when the server omits it.
func (c *Client) EditTags(ctx context.Context, req EditTagsRequest) ([]model.TagInfo, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal edit tags request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPut, c.baseURL+"/put/edit_tag", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	c.setAuthHeaders(httpReq)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, errors.NetworkFailure("edit tags", err)
	}
	defer resp.Body.Close()

	if err := checkStatus(resp); err != nil {
		return nil, err
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.NetworkFailure("edit tags", err)
	}
	if len(data) == 0 {
		return nil, nil
	}
	var tags []model.TagInfo
	if err := json.Unmarshal(data, &tags); err != nil {
		// Older servers return no body on success.
		return nil, nil
	}
	return tags, nil
}

func (c *Client) getJSON(ctx context.Context, path string, q url.Values, out interface{}) error {
	endpoint := c.baseURL + path
	if len(q) > 0 {
		endpoint += "?" + q.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	c.setAuthHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errors.NetworkFailure(path, err)
	}
	defer resp.Body.Close()

	if err := checkStatus(resp); err != nil {
		return err
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.NetworkFailure(path, fmt.Errorf("failed to decode response: %w", err))
	}
	return nil
}

func (c *Client) setAuthHeaders(req *http.Request) {
	if c.TokenProvider != nil {
		if token := c.TokenProvider(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}
	if c.ShareProvider != nil {
		if share := c.ShareProvider(); share != nil {
			req.Header.Set("x-album-id", share.AlbumId)
			req.Header.Set("x-share-id", share.ShareId)
			if share.Password != "" {
				req.Header.Set("x-share-password", share.Password)
			}
		}
	}
}

func checkStatus(resp *http.Response) error {
	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return errors.Unauthorized(fmt.Sprintf("server rejected request: %s", resp.Status))
	case resp.StatusCode >= 400:
		return errors.NetworkFailure(resp.Request.URL.Path, fmt.Errorf("unexpected status: %s", resp.Status))
	}
	return nil
}
