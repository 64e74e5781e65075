// Package notion is a small read-only client for the Notion REST API,
// covering database queries, page retrieval and block content.
package notion

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	DefaultBaseURL          = "https://api.notion.com"
	DefaultVersion          = "2022-06-28"
	DefaultTimeout          = 30 * time.Second
	DefaultExposureProperty = "exposure"
	MaxPageSize             = 100
)

// Observer receives one call per upstream request.
type Observer func(op string, d time.Duration, err error)

// Options configures a Client. Token and DatabaseID are required.
type Options struct {
	Token            string
	DatabaseID       string
	BaseURL          string
	Version          string
	UserAgent        string
	Timeout          time.Duration
	ExposureProperty string
	HTTPClient       *http.Client
	Observer         Observer
}

// Client issues authenticated requests against one Notion database.
type Client struct {
	token      string
	databaseID string
	baseURL    string
	version    string
	userAgent  string
	exposure   string
	http       *http.Client
	observe    Observer
}

// New creates a client. It performs no network calls.
func New(opts Options) (*Client, error) {
	if strings.TrimSpace(opts.Token) == "" {
		return nil, errors.New("notion: token is required")
	}
	if strings.TrimSpace(opts.DatabaseID) == "" {
		return nil, errors.New("notion: database id is required")
	}

	c := &Client{
		token:      opts.Token,
		databaseID: opts.DatabaseID,
		baseURL:    strings.TrimRight(opts.BaseURL, "/"),
		version:    opts.Version,
		userAgent:  opts.UserAgent,
		exposure:   opts.ExposureProperty,
		http:       opts.HTTPClient,
		observe:    opts.Observer,
	}
	if c.baseURL == "" {
		c.baseURL = DefaultBaseURL
	}
	if c.version == "" {
		c.version = DefaultVersion
	}
	if c.userAgent == "" {
		c.userAgent = "folio/1.0"
	}
	if c.exposure == "" {
		c.exposure = DefaultExposureProperty
	}
	if c.http == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		c.http = &http.Client{Timeout: timeout}
	}
	return c, nil
}

type queryRequest struct {
	Filter      *Filter `json:"filter,omitempty"`
	Sorts       []Sort  `json:"sorts,omitempty"`
	StartCursor string  `json:"start_cursor,omitempty"`
	PageSize    int     `json:"page_size,omitempty"`
}

type listResponse struct {
	Results    []json.RawMessage `json:"results"`
	NextCursor *string           `json:"next_cursor"`
	HasMore    bool              `json:"has_more"`
}

type apiError struct {
	Object  string `json:"object"`
	Status  int    `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// QueryDatabase runs one page of a database query restricted to exposed
// records. The cursor and page size are forwarded untouched.
func (c *Client) QueryDatabase(ctx context.Context, q Query) (QueryResult, error) {
	body := queryRequest{
		Filter:      And(CheckboxEquals(c.exposure, true), q.Filter),
		Sorts:       q.Sorts,
		StartCursor: q.StartCursor,
		PageSize:    q.PageSize,
	}
	if body.PageSize > MaxPageSize {
		body.PageSize = MaxPageSize
	}

	var resp listResponse
	path := "/v1/databases/" + url.PathEscape(c.databaseID) + "/query"
	if err := c.do(ctx, "query", http.MethodPost, path, body, &resp); err != nil {
		return QueryResult{}, err
	}

	result := QueryResult{
		Pages:   make([]Page, 0, len(resp.Results)),
		HasMore: resp.HasMore,
	}
	if resp.HasMore && resp.NextCursor != nil {
		result.NextCursor = *resp.NextCursor
	}
	for _, raw := range resp.Results {
		page, err := DecodePage(raw)
		if err != nil {
			return QueryResult{}, err
		}
		result.Pages = append(result.Pages, page)
	}
	return result, nil
}

// GetPage retrieves one page by id. Pages outside the client's database
// are reported as ErrNotFound.
func (c *Client) GetPage(ctx context.Context, id string) (Page, error) {
	if strings.TrimSpace(id) == "" {
		return Page{}, fmt.Errorf("notion: page id is required: %w", ErrNotFound)
	}
	var raw json.RawMessage
	if err := c.do(ctx, "page", http.MethodGet, "/v1/pages/"+url.PathEscape(id), nil, &raw); err != nil {
		return Page{}, err
	}
	page, err := DecodePage(raw)
	if err != nil {
		return Page{}, err
	}
	if !page.InDatabase(c.databaseID) {
		return Page{}, fmt.Errorf("notion page %s: not in database: %w", id, ErrNotFound)
	}
	return page, nil
}

// do performs one request and decodes a 2xx JSON body into out.
func (c *Client) do(ctx context.Context, op, method, path string, in, out any) (err error) {
	start := time.Now()
	if c.observe != nil {
		defer func() { c.observe(op, time.Since(start), err) }()
	}

	var reqBody io.Reader
	if in != nil {
		buf, err := json.Marshal(in)
		if err != nil {
			return &QueryError{Op: op, Err: fmt.Errorf("encode request: %w", err)}
		}
		reqBody = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return &QueryError{Op: op, Err: fmt.Errorf("create request: %w", err)}
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Notion-Version", c.version)
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return &QueryError{Op: op, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var apiErr apiError
		_ = json.NewDecoder(io.LimitReader(resp.Body, 64<<10)).Decode(&apiErr)
		if resp.StatusCode == http.StatusNotFound || apiErr.Code == "object_not_found" {
			return fmt.Errorf("notion %s %s: %w", op, path, ErrNotFound)
		}
		msg := apiErr.Message
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return &QueryError{Op: op, Status: resp.StatusCode, Code: apiErr.Code, Err: errors.New(msg)}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &QueryError{Op: op, Status: resp.StatusCode, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}
