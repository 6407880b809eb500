// Package apiclient holds the JSON-over-HTTP plumbing shared by the public API clients.
package apiclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	// DefaultUserAgent identifies mariam to the public APIs.
	DefaultUserAgent = "mariam/0.1"
	requestTimeout   = 15 * time.Second
)

// HTTPError reports a response with status >= 400.
type HTTPError struct {
	Path       string
	StatusCode int
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("api %s returned status %d", e.Path, e.StatusCode)
}

// Retryable reports whether the status is worth retrying: rate limits and server errors.
func (e *HTTPError) Retryable() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}

// IsRetryable classifies err as transient. Transport failures, including
// per-request timeouts, count as transient; once ctx is done nothing does.
func IsRetryable(ctx context.Context, err error) bool {
	if err == nil || ctx.Err() != nil {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return false
	}
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.Retryable()
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	var urlErr *url.Error
	return errors.As(err, &urlErr)
}

// Client resolves relative paths against a base URL and decodes JSON responses.
type Client struct {
	baseURL   *url.URL
	http      *http.Client
	userAgent string
}

// New builds a Client for rawBase. A nil httpClient gets a default with a timeout.
func New(rawBase string, httpClient *http.Client) (*Client, error) {
	base, err := ParseBaseURL(rawBase)
	if err != nil {
		return nil, err
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: requestTimeout}
	}
	return &Client{baseURL: base, http: httpClient, userAgent: DefaultUserAgent}, nil
}

// ParseBaseURL validates rawBase and strips any path, query or fragment.
func ParseBaseURL(rawBase string) (*url.URL, error) {
	trimmed := strings.TrimSpace(rawBase)
	if trimmed == "" {
		return nil, fmt.Errorf("base url is empty")
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "https://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("base url %q has no host", rawBase)
	}
	u.Path = ""
	u.RawPath = ""
	u.RawQuery = ""
	u.Fragment = ""
	return u, nil
}

// Get fetches path with the query values and decodes the JSON body into dest.
func (c *Client) Get(ctx context.Context, path string, query url.Values, dest any) error {
	if c == nil {
		return fmt.Errorf("client is nil")
	}
	rel := &url.URL{Path: path}
	if len(query) > 0 {
		rel.RawQuery = query.Encode()
	}
	reqURL := c.baseURL.ResolveReference(rel)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL.String(), nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 400 {
		return &HTTPError{Path: path, StatusCode: resp.StatusCode}
	}
	if dest == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
