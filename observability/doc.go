// Package observability provides interfaces for logging and metrics collection
// in the AP inventory service and its Meraki client.
//
// # Logger Interface
//
// The Logger interface supports structured logging with key-value pairs:
//
//	logger := observability.NewZapLogger(zap.Must(zap.NewProduction()))
//	client, err := meraki.NewWithConfig(&meraki.ClientConfig{
//		APIKey: apiKey,
//		Logger: logger,
//	})
//
// Supported log levels:
//   - Debug: Detailed diagnostic information
//   - Info: General informational messages (every Meraki call is logged here)
//   - Warn: Warning messages for potentially problematic situations
//   - Error: Error messages for failures
//
// # MetricsRecorder Interface
//
// The MetricsRecorder interface tracks client metrics:
//   - HTTP request count, status codes, and duration
//   - Rate limiting events and wait times
//   - Error occurrences by type
//   - Network cache refreshes
//
// # Default Behavior
//
// If no logger or metrics recorder is provided, no-op implementations are used
// that discard all events.
package observability
