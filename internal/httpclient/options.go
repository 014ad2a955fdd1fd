package httpclient

import (
	"net/http"
	"time"
)

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient starts from a copy of client, so the caller's client keeps
// its own transport once the middleware chain is installed. Nil is ignored.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			copied := *client
			c.base = &copied
		}
	}
}

// WithTimeout sets the request timeout. Zero keeps the current value.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.base.Timeout = timeout
		}
	}
}

// WithMiddleware appends to the chain. WithMiddleware(A, B, C) sends each
// request through A, then B, then C, then the transport. The Meraki client
// installs observability, rate limit, API key and proxy in that order.
func WithMiddleware(middleware ...Middleware) Option {
	return func(c *Client) {
		c.middleware = append(c.middleware, middleware...)
	}
}
