package meraki

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/opteama/wifi-aps/internal/httpclient"
	"github.com/opteama/wifi-aps/internal/middleware"
	"github.com/opteama/wifi-aps/internal/ratelimit"
	"github.com/opteama/wifi-aps/internal/response"
	"github.com/opteama/wifi-aps/observability"
)

const (
	// DefaultBaseURL is the Meraki Dashboard API v0 base URL.
	DefaultBaseURL = "https://api.meraki.com/api/v0/"

	// DefaultRateLimit is the default request budget (requests per second).
	DefaultRateLimit = ratelimit.DefaultRequestsPerSecond

	// DefaultTimeout is the default HTTP client timeout.
	DefaultTimeout = httpclient.DefaultTimeout
)

// Client is the Meraki request gateway: it sends authenticated JSON requests
// and hands back the status code with the body when it parsed as JSON.
// It never retries.
type Client struct {
	http    *httpclient.Client
	baseURL *url.URL
	logger  observability.Logger
}

// Compile-time check to ensure Client implements DashboardAPIClient interface.
var _ DashboardAPIClient = (*Client)(nil)

// ClientConfig holds configuration for the Meraki client.
type ClientConfig struct {
	// APIKey is the Meraki Dashboard API key
	APIKey string

	// BaseURL is the base URL for the API (defaults to https://api.meraki.com/api/v0/)
	BaseURL string

	// HTTPClient is the HTTP client to use (optional)
	HTTPClient *http.Client

	// Proxy routes every call through an HTTP proxy (optional)
	Proxy *url.URL

	// RateLimitPerSecond caps outgoing requests (defaults to 5)
	RateLimitPerSecond int

	// Timeout sets the HTTP client timeout
	Timeout time.Duration

	// Logger for observability (optional, uses noop logger if nil)
	Logger observability.Logger

	// Metrics recorder for observability (optional, uses noop recorder if nil)
	Metrics observability.MetricsRecorder
}

// New creates a Meraki client with default settings.
//
// Example:
//
//	client, err := meraki.New("your-api-key")
func New(apiKey string) (*Client, error) {
	return NewWithConfig(&ClientConfig{
		APIKey: apiKey,
	})
}

// NewWithConfig creates a Meraki client with custom configuration.
//
// Example:
//
//	client, err := meraki.NewWithConfig(&meraki.ClientConfig{
//	    APIKey: "your-api-key",
//	    Proxy:  proxyURL,
//	    Logger: logger,
//	})
func NewWithConfig(cfg *ClientConfig) (*Client, error) {
	if cfg == nil {
		return nil, errors.New("config is required")
	}
	if cfg.APIKey == "" {
		return nil, errors.New("API key is required")
	}

	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.RateLimitPerSecond == 0 {
		cfg.RateLimitPerSecond = DefaultRateLimit
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.Logger == nil {
		cfg.Logger = observability.NoopLogger()
	}

	baseURL, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid base URL %q", cfg.BaseURL)
	}
	if baseURL.Scheme == "" || baseURL.Host == "" {
		return nil, errors.Newf("base URL %q must be absolute", cfg.BaseURL)
	}

	// Outside to inside: Observability -> RateLimit -> Auth -> Proxy
	httpClient := httpclient.New(
		httpclient.WithHTTPClient(cfg.HTTPClient),
		httpclient.WithTimeout(cfg.Timeout),
		httpclient.WithMiddleware(
			middleware.Observability(cfg.Logger, cfg.Metrics),
			middleware.RateLimit(middleware.RateLimitConfig{
				Limiter: ratelimit.NewRateLimiter(cfg.RateLimitPerSecond),
				Logger:  cfg.Logger,
				Metrics: cfg.Metrics,
			}),
			middleware.Auth(cfg.APIKey),
			middleware.Proxy(cfg.Proxy),
		),
	)

	return &Client{
		http:    httpClient,
		baseURL: baseURL,
		logger:  cfg.Logger,
	}, nil
}

// Call sends one request to path (relative to the base URL) with body encoded
// as JSON when non-nil. The returned error covers transport failures only:
// any status code is a valid outcome, and a body that is not JSON yields a
// Result without body.
func (c *Client) Call(ctx context.Context, method, path string, body any) (*response.Result, error) {
	endpoint := c.resolve(path)

	reply, err := c.http.SendJSON(ctx, method, endpoint, body)
	if err != nil {
		c.logger.Error("meraki request failed",
			observability.Field{Key: "method", Value: method},
			observability.Field{Key: "url", Value: endpoint},
			observability.Err(err),
		)
		return nil, errors.Wrapf(err, "%s %s", method, endpoint)
	}

	fields := []observability.Field{
		{Key: "method", Value: method},
		{Key: "url", Value: endpoint},
		{Key: "status", Value: reply.StatusCode},
	}
	if reply.Sent != nil {
		fields = append(fields, observability.Field{Key: "body", Value: prettyJSON(reply.Sent)})
	}
	c.logger.Info("meraki request", fields...)

	return response.NewResult(reply.StatusCode, reply.Body), nil
}

// resolve joins path onto the base URL. A leading slash does not escape the
// base path.
func (c *Client) resolve(path string) string {
	return c.baseURL.JoinPath(strings.TrimPrefix(path, "/")).String()
}

func prettyJSON(payload []byte) string {
	var buf bytes.Buffer
	if err := json.Indent(&buf, payload, "", "  "); err != nil {
		return string(payload)
	}
	return buf.String()
}
