// Package middleware provides the RoundTripper middleware used by the Meraki client.
package middleware

import (
	"maps"
	"net/http"
)

// APIKeyHeader carries the Meraki Dashboard API key.
const APIKeyHeader = "X-Cisco-Meraki-API-Key"

// Auth returns a middleware that adds the Meraki API key and the fixed request
// headers (JSON content negotiation, no caching) to every request.
func Auth(apiKey string) func(http.RoundTripper) http.RoundTripper {
	return func(next http.RoundTripper) http.RoundTripper {
		return &authTransport{
			next:   next,
			apiKey: apiKey,
		}
	}
}

type authTransport struct {
	next   http.RoundTripper
	apiKey string
}

func (t *authTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = cloneRequest(req)

	req.Header.Set(APIKeyHeader, t.apiKey)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Cache-Control", "no-cache")
	if req.Body != nil && req.Body != http.NoBody {
		req.Header.Set("Content-Type", "application/json")
	}

	//nolint:wrapcheck // Middleware passes through errors from next handler in chain
	return t.next.RoundTrip(req)
}

// cloneRequest creates a shallow copy of the request with a cloned header map.
func cloneRequest(req *http.Request) *http.Request {
	r := new(http.Request)
	*r = *req
	r.Header = make(http.Header, len(req.Header))
	maps.Copy(r.Header, req.Header)
	return r
}
