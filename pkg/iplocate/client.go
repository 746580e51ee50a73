// Package iplocate resolves an approximate position from an IP address using
// an ip-api.com style JSON endpoint.
package iplocate

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"
)

// DefaultBaseURL is the free ip-api.com JSON endpoint.
const DefaultBaseURL = "http://ip-api.com/json"

// Client looks up the position of an IP address.
type Client interface {
	// Lookup resolves ip. An empty ip resolves the caller's public address.
	Lookup(ctx context.Context, ip string) (*Result, error)
}

// Result is the subset of the lookup response used for centering a map.
type Result struct {
	Status  string  `json:"status"`
	Message string  `json:"message,omitempty"`
	Query   string  `json:"query"`
	City    string  `json:"city"`
	Country string  `json:"country"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
}

// Option configures the client.
type Option func(*client)

// WithBaseURL sets the lookup endpoint.
func WithBaseURL(u string) Option {
	return func(c *client) {
		c.baseURL = strings.TrimRight(u, "/")
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *client) {
		c.httpClient = hc
	}
}

// WithRateLimit sets the requests-per-second limit. The free ip-api.com tier
// allows 45 requests per minute.
func WithRateLimit(rps float64) Option {
	return func(c *client) {
		burst := int(rps)
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

type client struct {
	httpClient *http.Client
	baseURL    string
	limiter    *rate.Limiter
}

// NewClient creates a new lookup Client with the given options.
func NewClient(opts ...Option) Client {
	c := &client{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		baseURL:    DefaultBaseURL,
		limiter:    rate.NewLimiter(0.75, 1),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Lookup implements Client.
func (c *client) Lookup(ctx context.Context, ip string) (*Result, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, eris.Wrap(err, "iplocate: rate limit")
	}

	reqURL := c.baseURL
	if ip != "" {
		reqURL += "/" + url.PathEscape(ip)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, eris.Wrap(err, "iplocate: build request")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "iplocate: request")
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		return nil, eris.Errorf("iplocate: lookup returned status %d", resp.StatusCode)
	}

	var r Result
	if err := json.NewDecoder(resp.Body).Decode(&r); err != nil {
		return nil, eris.Wrap(err, "iplocate: parse response")
	}
	if r.Status != "success" {
		return nil, eris.Errorf("iplocate: lookup failed: %s", r.Message)
	}
	return &r, nil
}
