package extract

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// DefaultEndpoint is the public endpoint of the text-extraction service.
// The service renders a live URL into plain text with absolute URLs kept
// inline, which is what the link extractor scans for.
const DefaultEndpoint = "https://r.jina.ai"

// Client fetches the rendered plain-text form of a web page from the
// text-extraction service. The service is an opaque collaborator: we send
// GET <endpoint>/<target-url> and expect a text body back.
//
// Design decision: We use a struct with the http.Client rather than
// passing the client on each call because:
//  1. Client configuration (timeout, transport) should be consistent
//  2. Connection pooling works better with a shared client
//  3. Easier to test with httptest servers
type Client struct {
	// client is the underlying HTTP client.
	client *http.Client

	// endpoint is the base URL of the extraction service, without a
	// trailing slash.
	endpoint string

	// token is the optional API credential. When set, requests carry an
	// Authorization: Bearer header and the caller may fetch with higher
	// concurrency.
	token string

	// headers are extra headers sent with every request, e.g. from a
	// site-specific configuration.
	headers map[string]string

	// maxBodySize limits the response body size to prevent memory
	// exhaustion from unexpectedly large responses.
	maxBodySize int64
}

// Option configures a Client.
type Option func(*Client)

// WithEndpoint overrides the extraction service endpoint.
// A trailing slash is trimmed so URL joining stays predictable.
func WithEndpoint(endpoint string) Option {
	return func(c *Client) {
		c.endpoint = strings.TrimSuffix(endpoint, "/")
	}
}

// WithToken sets the API credential sent as a Bearer token.
func WithToken(token string) Option {
	return func(c *Client) {
		c.token = token
	}
}

// WithHeaders sets extra headers sent with every extraction request.
func WithHeaders(headers map[string]string) Option {
	return func(c *Client) {
		c.headers = headers
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.client.Timeout = timeout
	}
}

// WithMaxBodySize sets the maximum response body size in bytes.
func WithMaxBodySize(size int64) Option {
	return func(c *Client) {
		c.maxBodySize = size
	}
}

// WithHTTPClient replaces the underlying HTTP client.
// Mainly useful for tests that need a custom transport.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.client = hc
	}
}

// NewClient creates an extraction service client.
// The default timeout is 20 seconds; the service renders pages server-side,
// so responses are slower than a plain GET of the target.
func NewClient(opts ...Option) *Client {
	c := &Client{
		client:      &http.Client{Timeout: 20 * time.Second},
		endpoint:    DefaultEndpoint,
		maxBodySize: 10 * 1024 * 1024, // 10MB
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Extract fetches the plain-text rendering of pageURL.
// It returns an error for network failures, timeouts, and non-2xx
// responses. Callers decide the failure policy; the crawl treats any
// error here as "no links discovered" rather than aborting.
func (c *Client) Extract(ctx context.Context, pageURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+"/"+pageURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to build extraction request: %w", err)
	}

	req.Header.Set("Accept", "text/plain")
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("extraction request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		// Drain so the connection can be reused.
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("extraction service returned status %d for %s", resp.StatusCode, pageURL)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBodySize))
	if err != nil {
		return "", fmt.Errorf("failed to read extraction response: %w", err)
	}

	return string(body), nil
}

// Authenticated reports whether the client carries an API credential.
func (c *Client) Authenticated() bool {
	return c.token != ""
}
