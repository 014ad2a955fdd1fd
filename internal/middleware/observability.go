package middleware

import (
	"net/http"
	"regexp"
	"sync"
	"time"

	"github.com/opteama/wifi-aps/observability"
)

// Error types recorded for Meraki calls.
const (
	ErrorTypeNetwork     = "NetworkError"
	ErrorTypeRateLimited = "RateLimited"
	ErrorTypeServer      = "ServerError"
)

// Observability returns a middleware that logs each Meraki call and records
// its status against the normalized endpoint.
//
// A 404 is logged at debug: the inventory looks devices up before claiming
// them, so a miss is routine. A 429 means the organization budget was
// exceeded despite the local limiter and is logged with Retry-After.
func Observability(logger observability.Logger, metrics observability.MetricsRecorder) func(http.RoundTripper) http.RoundTripper {
	if logger == nil {
		logger = observability.NoopLogger()
	}
	if metrics == nil {
		metrics = observability.NoopMetricsRecorder()
	}

	return func(next http.RoundTripper) http.RoundTripper {
		return &observabilityTransport{
			next:    next,
			logger:  logger,
			metrics: metrics,
		}
	}
}

type observabilityTransport struct {
	next    http.RoundTripper
	logger  observability.Logger
	metrics observability.MetricsRecorder
}

func (t *observabilityTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()
	endpoint := normalizePath(req.URL.Path)

	fields := []observability.Field{
		{Key: "method", Value: req.Method},
		{Key: "endpoint", Value: endpoint},
		{Key: "url", Value: req.URL.String()},
	}
	t.logger.Debug("meraki call started", fields...)

	resp, err := t.next.RoundTrip(req)
	duration := time.Since(start)
	fields = append(fields, observability.Field{Key: "duration", Value: duration})

	if err != nil {
		t.logger.Error("meraki call failed", append(fields, observability.Err(err))...)
		t.metrics.RecordError(endpoint, ErrorTypeNetwork)

		//nolint:wrapcheck // Observability middleware logs error but passes it through unchanged
		return nil, err
	}

	fields = append(fields, observability.Field{Key: "status", Value: resp.StatusCode})

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		fields = append(fields, observability.Field{Key: "retry_after", Value: resp.Header.Get("Retry-After")})
		t.logger.Warn("meraki rate limit exceeded", fields...)
		t.metrics.RecordError(endpoint, ErrorTypeRateLimited)
	case resp.StatusCode >= http.StatusInternalServerError:
		t.logger.Warn("meraki call completed with server error", fields...)
		t.metrics.RecordError(endpoint, ErrorTypeServer)
	case resp.StatusCode == http.StatusNotFound:
		t.logger.Debug("meraki call found nothing", fields...)
	case resp.StatusCode >= http.StatusBadRequest:
		t.logger.Warn("meraki call rejected", fields...)
	default:
		t.logger.Debug("meraki call completed", fields...)
	}

	t.metrics.RecordHTTPRequest(req.Method, endpoint, resp.StatusCode, duration)

	return resp, nil
}

var (
	// Meraki identifiers: organization and network ids after their collection
	// segment, device serials (XXXX-XXXX-XXXX) anywhere.
	organizationPattern = regexp.MustCompile(`/organizations/[^/]+(/|$)`)
	networkPattern      = regexp.MustCompile(`/networks/[^/]+(/|$)`)
	serialPattern       = regexp.MustCompile(`/[A-Za-z0-9]{4}-[A-Za-z0-9]{4}-[A-Za-z0-9]{4}(/|$)`)

	// normalizedPathCache maps serial-free paths to their normalized form. Keys
	// only vary by organization and network, so the cache stays bounded.
	normalizedPathCache sync.Map
)

// normalizePath replaces Meraki identifiers in a path with placeholders so
// metrics keep a bounded label cardinality.
//
// Examples:
//   - /api/v0/organizations/549236/networks → /api/v0/organizations/:org/networks
//   - /api/v0/networks/N_24329156/devices/Q2KD-23RT-XR3D → /api/v0/networks/:network/devices/:serial
//   - /api/v0/networks/L_6434/devices/claim → /api/v0/networks/:network/devices/claim
func normalizePath(path string) string {
	key := serialPattern.ReplaceAllString(path, "/:serial$1")

	if cached, ok := normalizedPathCache.Load(key); ok {
		//nolint:forcetypeassert // Cache only stores strings
		return cached.(string)
	}

	normalized := organizationPattern.ReplaceAllString(key, "/organizations/:org$1")
	normalized = networkPattern.ReplaceAllString(normalized, "/networks/:network$1")

	normalizedPathCache.Store(key, normalized)

	return normalized
}
