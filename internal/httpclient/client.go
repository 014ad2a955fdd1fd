// Package httpclient sends JSON exchanges to the Meraki API over a chain of
// RoundTripper middleware.
package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/cockroachdb/errors"
)

const (
	// DefaultTimeout bounds a single vendor call when no timeout is configured.
	DefaultTimeout = 30 * time.Second

	// MaxReplyBytes caps how much of a reply body is read. Device lists of
	// large networks stay well below it.
	MaxReplyBytes = 8 << 20
)

// ErrEncode is returned when a request body cannot be encoded as JSON.
var ErrEncode = errors.New("request body is not JSON-encodable")

// Client sends requests through the middleware chain.
type Client struct {
	base       *http.Client
	middleware []Middleware
}

// Middleware wraps an http.RoundTripper to add behavior.
// Middleware is applied in order: first middleware is outermost.
type Middleware func(http.RoundTripper) http.RoundTripper

// Reply is a finished exchange.
type Reply struct {
	// StatusCode of the response.
	StatusCode int

	// Body holds the raw reply, nil when it could not be read.
	Body []byte

	// Sent holds the encoded request body, nil when none was sent.
	Sent []byte
}

// New creates a client. The middleware chain wraps the transport of the
// configured http.Client (or http.DefaultTransport) once, here.
func New(opts ...Option) *Client {
	c := &Client{
		base: &http.Client{
			Timeout: DefaultTimeout,
		},
	}

	for _, opt := range opts {
		opt(c)
	}

	if len(c.middleware) > 0 {
		transport := c.base.Transport
		if transport == nil {
			transport = http.DefaultTransport
		}

		for i := len(c.middleware) - 1; i >= 0; i-- {
			transport = c.middleware[i](transport)
		}

		c.base.Transport = transport
	}

	return c
}

// Do executes an HTTP request using the configured middleware chain.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	//nolint:wrapcheck // Callers wrap transport errors with request context
	return c.base.Do(req)
}

// SendJSON sends body, encoded as JSON when non-nil, to endpoint and reads
// the whole reply. Any status code is a valid outcome; errors cover encoding
// and transport failures only.
func (c *Client) SendJSON(ctx context.Context, method, endpoint string, body any) (*Reply, error) {
	var (
		sent   []byte
		reader io.Reader = http.NoBody
	)
	if body != nil {
		var err error
		sent, err = json.Marshal(body)
		if err != nil {
			return nil, errors.Mark(errors.Wrapf(err, "%T", body), ErrEncode)
		}
		reader = bytes.NewReader(sent)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, errors.Wrap(err, "failed to build request")
	}

	resp, err := c.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, MaxReplyBytes))
	if err != nil {
		raw = nil
	}

	return &Reply{StatusCode: resp.StatusCode, Body: raw, Sent: sent}, nil
}

// HTTPClient returns the underlying http.Client.
func (c *Client) HTTPClient() *http.Client {
	return c.base
}
