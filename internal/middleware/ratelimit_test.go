package middleware_test

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opteama/wifi-aps/internal/middleware"
	"github.com/opteama/wifi-aps/internal/ratelimit"
	"github.com/opteama/wifi-aps/internal/testutil"
	"github.com/opteama/wifi-aps/observability"
)

const (
	routeListDevices = "GET /api/v0/networks/N_24329156/devices"
	routeClaim       = "POST /api/v0/networks/N_24329156/devices/claim"
	routeRemove      = "POST /api/v0/networks/N_24329156/devices/Q2KD-23RT-XR3D/remove"
)

// rateLimitMetrics records rate limit waits by endpoint.
type rateLimitMetrics struct {
	observability.MetricsRecorder

	mu    sync.Mutex
	waits map[string]int
}

func newRateLimitMetrics() *rateLimitMetrics {
	return &rateLimitMetrics{
		MetricsRecorder: observability.NoopMetricsRecorder(),
		waits:           map[string]int{},
	}
}

func (m *rateLimitMetrics) RecordRateLimit(endpoint string, _ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.waits[endpoint]++
}

func (m *rateLimitMetrics) snapshot() map[string]int {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]int, len(m.waits))
	for k, v := range m.waits {
		out[k] = v
	}
	return out
}

func newMerakiServer(t *testing.T) *testutil.CountingServer {
	t.Helper()

	return testutil.NewMockServerMulti(t, map[testutil.Route]http.HandlerFunc{
		routeListDevices: testutil.JSON(http.StatusOK, `[{"serial":"Q2KD-23RT-XR3D","name":"TLS-AP-SKP-1c-1"}]`),
		routeClaim:       testutil.JSON(http.StatusCreated, ``),
		routeRemove: func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusNoContent)
		},
	})
}

func send(t *testing.T, ctx context.Context, transport http.RoundTripper, baseURL string, route testutil.Route) (time.Duration, error) {
	t.Helper()

	method, path, _ := strings.Cut(route, " ")
	req, err := http.NewRequestWithContext(ctx, method, baseURL+path, http.NoBody)
	require.NoError(t, err)

	start := time.Now()
	resp, err := transport.RoundTrip(req)
	if resp != nil {
		resp.Body.Close()
	}
	return time.Since(start), err
}

func TestRateLimitSharedAcrossEndpoints(t *testing.T) {
	t.Parallel()

	server := newMerakiServer(t)
	defer server.Close()

	metrics := newRateLimitMetrics()
	transport := middleware.RateLimit(middleware.RateLimitConfig{
		Limiter: ratelimit.NewRateLimiter(2),
		Metrics: metrics,
	})(http.DefaultTransport)

	for _, route := range []testutil.Route{routeListDevices, routeClaim} {
		duration, err := send(t, context.Background(), transport, server.URL, route)
		require.NoError(t, err)
		assert.Less(t, duration, 100*time.Millisecond, "%s within the burst", route)
	}

	duration, err := send(t, context.Background(), transport, server.URL, routeRemove)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, duration, 100*time.Millisecond, "a third endpoint still waits for the shared budget")

	assert.Equal(t, map[string]int{"/api/v0/networks/:network/devices/:serial/remove": 1}, metrics.snapshot())
	assert.Equal(t, 1, server.Hits(routeRemove))
}

func TestRateLimitDisabled(t *testing.T) {
	t.Parallel()

	server := newMerakiServer(t)
	defer server.Close()

	transport := middleware.RateLimit(middleware.RateLimitConfig{})(http.DefaultTransport)

	for range 10 {
		duration, err := send(t, context.Background(), transport, server.URL, routeListDevices)
		require.NoError(t, err)
		assert.Less(t, duration, 100*time.Millisecond)
	}
	assert.Equal(t, 10, server.Hits(routeListDevices))
}

func TestRateLimitCancelledWait(t *testing.T) {
	t.Parallel()

	server := newMerakiServer(t)
	defer server.Close()

	limiter := ratelimit.NewRateLimiter(1)
	require.True(t, limiter.Allow())

	transport := middleware.RateLimit(middleware.RateLimitConfig{Limiter: limiter})(http.DefaultTransport)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := send(t, ctx, transport, server.URL, routeClaim)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
	assert.Zero(t, server.Hits(routeClaim), "the claim never reached Meraki")
}
