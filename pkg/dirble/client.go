// Package dirble is a client for the Dirble radio directory API (v2).
//
// Every endpoint is a method on Client. Requests are plain GETs carrying the
// API key as the token query parameter; responses are JSON.
package dirble

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/samvad-hq/dirble-go/pkg/httpclient"
)

const (
	// DefaultBaseURL is the public Dirble v2 endpoint.
	DefaultBaseURL   = "http://api.dirble.com/v2"
	DefaultUserAgent = "dirble-go/1.0"

	tokenParam = "token"
)

// Client talks to the Dirble HTTP API.
type Client struct {
	apiKey    string
	baseURL   string
	userAgent string
	timeout   time.Duration
	http      httpclient.Client
	log       Logger
}

// Option customizes a Client.
type Option func(*Client)

// WithBaseURL points the client at a different API root (tests, proxies).
func WithBaseURL(raw string) Option {
	return func(c *Client) {
		if raw = strings.TrimSpace(raw); raw != "" {
			c.baseURL = strings.TrimRight(raw, "/")
		}
	}
}

// WithHTTPClient injects the transport used for requests.
func WithHTTPClient(client httpclient.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.http = client
		}
	}
}

// WithTimeout sets the per-request timeout of the default transport.
// It has no effect when WithHTTPClient is also given.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithUserAgent sets the User-Agent header sent with every request.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		if ua = strings.TrimSpace(ua); ua != "" {
			c.userAgent = ua
		}
	}
}

// WithLogger routes request logs to log; nil discards them.
func WithLogger(log Logger) Option {
	return func(c *Client) {
		c.log = ensureLogger(log)
	}
}

// New builds a Client for the given API key.
func New(apiKey string, opts ...Option) (*Client, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}

	c := &Client{
		apiKey:    apiKey,
		baseURL:   DefaultBaseURL,
		userAgent: DefaultUserAgent,
		timeout:   httpclient.DefaultTimeout,
		log:       noopLogger{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	if c.http == nil {
		c.http = httpclient.NewRestyClient(c.timeout)
	}

	if _, err := url.Parse(c.baseURL); err != nil {
		return nil, fmt.Errorf("parse base url %q: %w", c.baseURL, err)
	}
	return c, nil
}

// BaseURL returns the API root the client sends requests to.
func (c *Client) BaseURL() string { return c.baseURL }

// Get sends a GET request to path with params (plus the API token) and decodes
// the JSON body into dest. dest may be nil to discard the body.
func (c *Client) Get(ctx context.Context, path string, params url.Values, dest any) error {
	if c == nil {
		return fmt.Errorf("dirble client is nil")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	reqURL := c.requestURL(path, params)
	start := time.Now()

	resp, err := c.http.Get(ctx, reqURL, map[string]string{
		"Accept":     "application/json",
		"User-Agent": c.userAgent,
	})
	if err != nil {
		c.log.WarnObj("dirble request failed", "dirble_request_error", map[string]any{
			"path":  path,
			"error": err.Error(),
		})
		return fmt.Errorf("dirble request %s: %w", path, err)
	}

	c.log.DebugObj("dirble request completed", "dirble_request", map[string]any{
		"path":       path,
		"status":     resp.StatusCode(),
		"elapsed_ms": time.Since(start).Milliseconds(),
	})

	return decodeResponse(path, resp, dest)
}

// requestURL never leaks the caller's params map: the token is set on a copy.
func (c *Client) requestURL(path string, params url.Values) string {
	q := make(url.Values, len(params)+1)
	for k, v := range params {
		q[k] = append([]string(nil), v...)
	}
	q.Set(tokenParam, c.apiKey)

	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return c.baseURL + path + sep + q.Encode()
}

func decodeResponse(path string, resp httpclient.Response, dest any) error {
	body := resp.Body()
	status := httpclient.ReasonPhrase(resp.StatusCode(), resp.Status())

	if !json.Valid(body) {
		return &APIError{
			Path:       path,
			StatusCode: resp.StatusCode(),
			Status:     status,
			Message:    status,
		}
	}

	if resp.StatusCode() != http.StatusOK {
		var payload struct {
			Error string `json:"error"`
		}
		msg := status
		if err := json.Unmarshal(body, &payload); err == nil && strings.TrimSpace(payload.Error) != "" {
			msg = strings.TrimSpace(payload.Error)
		}
		return &APIError{
			Path:       path,
			StatusCode: resp.StatusCode(),
			Status:     status,
			Message:    msg,
		}
	}

	if dest == nil {
		return nil
	}
	if err := json.Unmarshal(body, dest); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}
