// Package webfetch fetches lead websites over HTTP with permissive
// TLS. Many target sites run misconfigured certificates; a broken
// cert should not stop gap analysis.
package webfetch

import (
	"context"
	"crypto/tls"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/rotisserie/eris"
)

const maxBodyBytes = 2 * 1024 * 1024

// Page is one fetched HTML document.
type Page struct {
	URL        string
	FinalURL   string
	StatusCode int
	HTML       string
}

// Option configures the client.
type Option func(*Client)

// WithTimeout overrides the default request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.http.Timeout = d
	}
}

// WithUserAgent overrides the default User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// WithAcceptLanguage overrides the Accept-Language header.
func WithAcceptLanguage(lang string) Option {
	return func(c *Client) {
		c.acceptLanguage = lang
	}
}

// Client fetches pages with browser-like headers. Redirects are
// followed, any certificate is accepted.
type Client struct {
	http           *http.Client
	userAgent      string
	acceptLanguage string
}

// NewClient creates a Client with sensible defaults.
func NewClient(opts ...Option) *Client {
	c := &Client{
		http: &http.Client{
			Timeout: 15 * time.Second,
			Transport: &http.Transport{
				DialContext: (&net.Dialer{
					Timeout: 10 * time.Second,
				}).DialContext,
				TLSHandshakeTimeout: 10 * time.Second,
				TLSClientConfig: &tls.Config{
					InsecureSkipVerify: true, //nolint:gosec // target sites often misconfigure certs
				},
			},
		},
		userAgent:      "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
		acceptLanguage: "es-AR,es;q=0.9,en;q=0.8",
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// NormalizeURL prefixes https:// when no scheme is given.
func NormalizeURL(raw string) string {
	if raw == "" {
		return raw
	}
	if !strings.HasPrefix(raw, "http://") && !strings.HasPrefix(raw, "https://") {
		return "https://" + raw
	}
	return raw
}

// Get fetches a URL and returns the page. Non-2xx statuses are
// returned as errors so callers can treat them as unreachable.
func (c *Client) Get(ctx context.Context, targetURL string) (*Page, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, targetURL, nil)
	if err != nil {
		return nil, eris.Wrap(err, "webfetch: create request")
	}
	c.setHeaders(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "webfetch: fetch")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, eris.Errorf("webfetch: status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, eris.Wrap(err, "webfetch: read body")
	}

	return &Page{
		URL:        targetURL,
		FinalURL:   resp.Request.URL.String(),
		StatusCode: resp.StatusCode,
		HTML:       string(body),
	}, nil
}

// Probe issues a HEAD request and reports whether the connection
// succeeded. Any HTTP status counts as success: a listener that
// completes the TLS handshake is enough for the SSL check, valid
// certificate or not.
func (c *Client) Probe(ctx context.Context, targetURL string) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, targetURL, nil)
	if err != nil {
		return false
	}
	c.setHeaders(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return false
	}
	_ = resp.Body.Close()
	return true
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", c.acceptLanguage)
}
