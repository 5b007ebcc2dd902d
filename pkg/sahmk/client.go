// Package sahmk is a client for the SAHMK developer API: stock quotes,
// historical price series, market-wide rankings, company data and a
// real-time quote stream over WebSocket.
//
// All REST methods translate into a single authenticated GET request and
// surface non-200 responses as *APIError. The client never caches, retries
// or reinterprets provider data.
package sahmk

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/veiloq/sahmk-go/pkg/logging"
	"github.com/veiloq/sahmk-go/pkg/ratelimit"
	"github.com/veiloq/sahmk-go/pkg/rest"
)

const (
	// DefaultBaseURL is the hosted REST endpoint.
	DefaultBaseURL = "https://app.sahmk.sa/api/v1"

	// DefaultWSURL is the hosted streaming endpoint.
	DefaultWSURL = "wss://app.sahmk.sa/ws/v1/stocks/"

	// MaxBatchSymbols is the per-request symbol limit of the batch quote
	// endpoint.
	MaxBatchSymbols = 50

	// MaxSubscribeBatch is the per-frame symbol limit of the streaming
	// subscribe action.
	MaxSubscribeBatch = 20
)

// Client is a SAHMK API client. Create one with New; the zero value is not
// usable.
type Client struct {
	apiKey string
	wsURL  string
	rest   *rest.Client
	logger logging.Logger

	pingInterval      time.Duration
	reconnectInterval time.Duration
	maxRetries        int
}

// Option configures a Client.
type Option func(*settings)

type settings struct {
	baseURL           string
	wsURL             string
	timeout           time.Duration
	transport         http.RoundTripper
	rateLimit         ratelimit.Rate
	logger            logging.Logger
	pingInterval      time.Duration
	reconnectInterval time.Duration
	maxRetries        int
}

// WithBaseURL overrides the REST endpoint, e.g. to point at a sandbox.
func WithBaseURL(baseURL string) Option {
	return func(s *settings) { s.baseURL = baseURL }
}

// WithWSURL overrides the streaming endpoint.
func WithWSURL(wsURL string) Option {
	return func(s *settings) { s.wsURL = wsURL }
}

// WithTimeout sets the per-request HTTP timeout. The default is 30 seconds.
func WithTimeout(timeout time.Duration) Option {
	return func(s *settings) { s.timeout = timeout }
}

// WithTransport overrides the HTTP round tripper, e.g. with
// rest.NewDebugTransport or a test double.
func WithTransport(rt http.RoundTripper) Option {
	return func(s *settings) { s.transport = rt }
}

// WithRateLimit enables client-side request pacing. Requests are not paced
// unless this option is given.
func WithRateLimit(rate ratelimit.Rate) Option {
	return func(s *settings) { s.rateLimit = rate }
}

// WithLogger sets the logger. The default discards all output.
func WithLogger(logger logging.Logger) Option {
	return func(s *settings) { s.logger = logger }
}

// WithPingInterval sets the keep-alive period of streaming sessions.
// The default is 30 seconds.
func WithPingInterval(interval time.Duration) Option {
	return func(s *settings) { s.pingInterval = interval }
}

// WithReconnect configures streaming reconnection: the base delay between
// redial attempts and how many attempts are made. maxRetries 0 disables
// reconnection.
func WithReconnect(interval time.Duration, maxRetries int) Option {
	return func(s *settings) {
		s.reconnectInterval = interval
		s.maxRetries = maxRetries
	}
}

// New creates a client for the given API key (shmk_live_* or shmk_test_*).
func New(apiKey string, opts ...Option) *Client {
	s := settings{
		baseURL:           DefaultBaseURL,
		wsURL:             DefaultWSURL,
		timeout:           30 * time.Second,
		logger:            logging.NewNop(),
		pingInterval:      30 * time.Second,
		reconnectInterval: 5 * time.Second,
		maxRetries:        3,
	}
	for _, opt := range opts {
		opt(&s)
	}

	return &Client{
		apiKey: apiKey,
		wsURL:  s.wsURL,
		rest: rest.NewClient(rest.Config{
			BaseURL:   s.baseURL,
			APIKey:    apiKey,
			Timeout:   s.timeout,
			RateLimit: s.rateLimit,
			Transport: s.transport,
			Logger:    s.logger,
		}),
		logger:            s.logger,
		pingInterval:      s.pingInterval,
		reconnectInterval: s.reconnectInterval,
		maxRetries:        s.maxRetries,
	}
}

// get issues a GET request and decodes a 200 response into out. Non-200
// responses become *APIError.
func (c *Client) get(ctx context.Context, path string, query url.Values, out interface{}) error {
	resp, err := c.rest.Get(ctx, path, query)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return newAPIError(resp)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
