package proxy

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"sync/atomic"
	"time"

	"golang.org/x/net/publicsuffix"
)

const (
	// DefaultAddress is the scrape.do forwarding proxy.
	DefaultAddress = "proxy.scrape.do:8080"

	// DefaultMaxBodySize limits how much of a response body is read.
	DefaultMaxBodySize = 10 * 1024 * 1024

	// maxRedirects stops redirect loops.
	maxRedirects = 10
)

// Response is a fetched page. Any HTTP status is a Response, not an error.
type Response struct {
	// StatusCode is the HTTP status of the final response.
	StatusCode int

	// Body is the response body, truncated at the client's max body size.
	Body string
}

// Client fetches pages through the forwarding proxy.
// It is safe for concurrent use, although the crawler keeps a single fetch
// in flight.
type Client struct {
	// proxyAddress is the proxy in "host:port" format.
	proxyAddress string

	// httpClient routes every request through the proxy.
	httpClient *http.Client

	// headers are injected into every request.
	headers map[string]string

	timeout     time.Duration
	maxBodySize int64
	logger      *slog.Logger

	// calls counts Fetch invocations, successful or not.
	calls atomic.Int64
}

// Option configures a Client.
type Option func(*Client)

// WithProxyAddress sets the proxy address in "host:port" format.
func WithProxyAddress(address string) Option {
	return func(c *Client) {
		c.proxyAddress = address
	}
}

// WithHeaders merges headers over DefaultHeaders.
// An empty value removes a default header.
func WithHeaders(headers map[string]string) Option {
	return func(c *Client) {
		c.headers = mergeHeaders(headers)
	}
}

// WithTimeout sets the per-request timeout. Zero means no client timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.timeout = timeout
	}
}

// WithLogger sets the logger used for per-fetch log lines.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithMaxBodySize sets the maximum number of body bytes read per response.
func WithMaxBodySize(size int64) Option {
	return func(c *Client) {
		if size > 0 {
			c.maxBodySize = size
		}
	}
}

// NewClient creates a Client that authenticates to the proxy with token.
//
// The proxy address is validated but not contacted; the first Fetch is the
// first network operation.
func NewClient(token string, opts ...Option) (*Client, error) {
	if token == "" {
		return nil, ErrEmptyToken
	}

	c := &Client{
		proxyAddress: DefaultAddress,
		headers:      mergeHeaders(nil),
		maxBodySize:  DefaultMaxBodySize,
		logger:       slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}

	if !isValidProxyAddress(c.proxyAddress) {
		return nil, ErrInvalidProxyAddress
	}

	proxyURL := &url.URL{
		Scheme: "http",
		User:   url.UserPassword(token, ""),
		Host:   c.proxyAddress,
	}
	c.httpClient = newHTTPClient(proxyURL, c.timeout, c.headers)

	return c, nil
}

// newHTTPClient builds an HTTP client whose transport sends every request
// to proxyURL and injects headers.
func newHTTPClient(proxyURL *url.URL, timeout time.Duration, headers map[string]string) *http.Client {
	transport := &http.Transport{
		Proxy: http.ProxyURL(proxyURL),
		// The proxy re-signs TLS for https targets.
		TLSClientConfig: &tls.Config{
			InsecureSkipVerify: true, //nolint:gosec // proxy terminates TLS
		},
		MaxIdleConns:        10,
		MaxIdleConnsPerHost: 2,
		IdleConnTimeout:     30 * time.Second,
	}

	// publicsuffix keeps cookies scoped to the registrable domain.
	jar, _ := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List}) //nolint:errcheck // cookiejar.New never fails

	return &http.Client{
		Transport: &headerInjectingTransport{
			base:    transport,
			headers: headers,
		},
		Timeout: timeout,
		Jar:     jar,
		CheckRedirect: func(_ *http.Request, via []*http.Request) error {
			if len(via) >= maxRedirects {
				return http.ErrUseLastResponse
			}
			return nil
		},
	}
}

// isValidProxyAddress checks if the address is in valid "host:port" format.
// We use a simple check rather than a full URL parser because the format
// is very specific (no scheme, no path, just host and port).
func isValidProxyAddress(address string) bool {
	parts := strings.Split(address, ":")
	if len(parts) != 2 {
		return false
	}

	host := parts[0]
	port := parts[1]

	if host == "" || port == "" {
		return false
	}

	portNum := 0
	for _, c := range port {
		if c < '0' || c > '9' {
			return false
		}
		portNum = portNum*10 + int(c-'0')
		if portNum > 65535 {
			return false
		}
	}

	return portNum >= 1
}

// Fetch retrieves target through the proxy.
// The call counter is incremented before the request is sent, so failed
// requests are counted too. Transport failures are returned as errors; a
// non-2xx status is returned as a Response.
func (c *Client) Fetch(ctx context.Context, target string) (*Response, error) {
	n := c.calls.Add(1)
	c.logger.Info("fetching via proxy", "url", target, "callCount", n)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", target, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("failed to read body of %s: %w", target, err)
	}

	return &Response{
		StatusCode: resp.StatusCode,
		Body:       string(body),
	}, nil
}

// Calls returns the number of Fetch calls made so far.
func (c *Client) Calls() int64 {
	return c.calls.Load()
}

// ProxyAddress returns the configured proxy address.
func (c *Client) ProxyAddress() string {
	return c.proxyAddress
}

// Headers returns a copy of the headers injected into every request.
func (c *Client) Headers() map[string]string {
	return maps.Clone(c.headers)
}

// headerInjectingTransport wraps an http.RoundTripper to inject
// the configured headers into every request, redirects included.
type headerInjectingTransport struct {
	base    http.RoundTripper
	headers map[string]string
}

// RoundTrip implements http.RoundTripper.
func (t *headerInjectingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	clone := req.Clone(req.Context())
	for key, value := range t.headers {
		clone.Header.Set(key, value)
	}
	return t.base.RoundTrip(clone)
}
