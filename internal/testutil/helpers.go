// Package testutil provides mock Meraki servers for tests.
package testutil

import (
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// APIKeyHeader mirrors the header the Meraki client authenticates with.
const APIKeyHeader = "X-Cisco-Meraki-API-Key"

// NewMockServer creates a test HTTP server with predefined response.
// It validates the request path and API key header, then returns the specified response.
func NewMockServer(t *testing.T, expectedPath, apiKey, responseBody string, statusCode int) *httptest.Server {
	t.Helper()

	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, expectedPath, r.URL.Path, "Request path should match expected")

		if apiKey != "" {
			assert.Equal(t, apiKey, r.Header.Get(APIKeyHeader), "API key header should be set")
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(statusCode)
		_, err := w.Write([]byte(responseBody))
		require.NoError(t, err, "Failed to write response body")
	}))
}

// Route keys a handler by HTTP method and URL path, e.g. "GET /api/v0/organizations".
type Route = string

// CountingServer dispatches requests by method and path and counts hits per route.
type CountingServer struct {
	*httptest.Server

	hits map[Route]*atomic.Int64
}

// NewMockServerMulti creates a test HTTP server with one handler per "METHOD /path" key.
func NewMockServerMulti(t *testing.T, handlers map[Route]http.HandlerFunc) *CountingServer {
	t.Helper()

	hits := make(map[Route]*atomic.Int64, len(handlers))
	for route := range handlers {
		hits[route] = &atomic.Int64{}
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		route := r.Method + " " + r.URL.Path
		handler, ok := handlers[route]
		if !ok {
			t.Errorf("Unexpected request: %s", route)
			w.WriteHeader(http.StatusNotFound)
			return
		}
		hits[route].Add(1)
		handler(w, r)
	}))

	return &CountingServer{Server: server, hits: hits}
}

// Hits returns how many times route was served.
func (s *CountingServer) Hits(route Route) int {
	counter, ok := s.hits[route]
	if !ok {
		return 0
	}
	return int(counter.Load())
}

// JSON returns a handler that writes body with the given status.
func JSON(statusCode int, body string) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(statusCode)
		_, _ = w.Write([]byte(body))
	}
}
