// Package rest implements the low-level HTTP transport for the SAHMK API:
// authenticated GET requests against a fixed base URL.
//
// The client attaches the API key header, applies the configured timeout and
// optionally paces requests through a rate limiter. It deliberately performs
// no retries and no response interpretation; status-code mapping lives in the
// domain layer.
package rest

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/veiloq/sahmk-go/pkg/logging"
	"github.com/veiloq/sahmk-go/pkg/ratelimit"
)

// APIKeyHeader is the header the SAHMK API authenticates with.
const APIKeyHeader = "X-API-Key"

// Config holds configuration for the HTTP client.
type Config struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration

	// RateLimit enables client-side request pacing when non-zero.
	// The zero value leaves requests unpaced.
	RateLimit ratelimit.Rate

	// Transport overrides the underlying round tripper. Used by tests.
	Transport http.RoundTripper

	Logger logging.Logger
}

// Client issues authenticated requests to the SAHMK API.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
	limiter ratelimit.RateLimiter
	logger  logging.Logger
}

// NewClient creates an HTTP client for the given configuration.
func NewClient(config Config) *Client {
	if config.Timeout <= 0 {
		config.Timeout = 30 * time.Second
	}
	if config.Logger == nil {
		config.Logger = logging.NewNop()
	}

	var limiter ratelimit.RateLimiter
	if !config.RateLimit.IsZero() {
		limiter = ratelimit.NewTokenBucketLimiter(config.RateLimit)
	}

	return &Client{
		baseURL: strings.TrimRight(config.BaseURL, "/"),
		apiKey:  config.APIKey,
		http: &http.Client{
			Timeout:   config.Timeout,
			Transport: config.Transport,
		},
		limiter: limiter,
		logger:  config.Logger,
	}
}

// Get issues a GET request for path (relative to the base URL) with the given
// query parameters. The caller owns the response body.
func (c *Client) Get(ctx context.Context, path string, query url.Values) (*http.Response, error) {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}
	return c.Do(ctx, req)
}

// Do executes the request with the API key header attached, waiting on the
// rate limiter first when one is configured.
func (c *Client) Do(ctx context.Context, req *http.Request) (*http.Response, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limit wait error: %w", err)
		}
	}

	req.Header.Set(APIKeyHeader, c.apiKey)

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn("http request failed",
			logging.String("url", req.URL.String()),
			logging.Error(err),
		)
		return nil, fmt.Errorf("http request error: %w", err)
	}

	c.logger.Debug("http request",
		logging.String("method", req.Method),
		logging.String("url", req.URL.String()),
		logging.Int("status", resp.StatusCode),
		logging.Duration("duration", time.Since(start)),
	)
	return resp, nil
}

// SetRateLimit updates the rate limiter configuration, installing a limiter
// if none was configured at construction time.
func (c *Client) SetRateLimit(rate ratelimit.Rate) error {
	if c.limiter == nil {
		c.limiter = ratelimit.NewTokenBucketLimiter(rate)
		return nil
	}
	return c.limiter.SetLimit(rate)
}
