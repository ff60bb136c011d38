package httpcache

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"net/http"
)

// Doer is satisfied by *http.Client.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client serves GET and POST requests from a Store when possible. Only
// 200 responses are cached; POST requests are keyed by URL and body.
type Client struct {
	store  *Store
	next   Doer
	logger *slog.Logger
}

// NewClient wraps next with store. A nil store disables caching.
func NewClient(store *Store, next Doer, logger *slog.Logger) *Client {
	if next == nil {
		next = http.DefaultClient
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{store: store, next: next, logger: logger}
}

// Do performs req, consulting the cache first.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	if c.store == nil || (req.Method != http.MethodGet && req.Method != http.MethodPost) {
		return c.next.Do(req)
	}

	var body []byte
	if req.Method == http.MethodPost && req.Body != nil {
		var err error
		body, err = io.ReadAll(req.Body)
		if err != nil {
			return nil, fmt.Errorf("reading request body: %w", err)
		}
		if err := req.Body.Close(); err != nil {
			c.logger.Debug("failed to close request body", "error", err)
		}
		req.Body = io.NopCloser(bytes.NewReader(body))
	}

	key := Key(req.Method+" "+req.URL.String(), body)
	if data, ok := c.store.Get(key); ok {
		c.logger.Debug("cache hit", "url", req.URL.Redacted())
		resp := &http.Response{
			Status:        "200 OK",
			StatusCode:    http.StatusOK,
			Body:          io.NopCloser(bytes.NewReader(data)),
			ContentLength: int64(len(data)),
			Header:        make(http.Header),
			Request:       req,
		}
		resp.Header.Set("X-From-Cache", "true")
		return resp, nil
	}

	resp, err := c.next.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return resp, nil
	}

	data, err := io.ReadAll(resp.Body)
	if closeErr := resp.Body.Close(); closeErr != nil {
		c.logger.Debug("failed to close response body", "error", closeErr)
	}
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}
	c.store.Set(key, data)
	resp.Body = io.NopCloser(bytes.NewReader(data))
	return resp, nil
}
