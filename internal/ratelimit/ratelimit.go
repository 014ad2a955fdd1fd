// Package ratelimit builds the token bucket used against the Meraki API.
package ratelimit

import "golang.org/x/time/rate"

// DefaultRequestsPerSecond is the Meraki Dashboard API budget per organization.
const DefaultRequestsPerSecond = 5

// NewRateLimiter creates a token bucket refilled at requestsPerSecond with a
// burst of the same size. A non-positive value yields DefaultRequestsPerSecond.
func NewRateLimiter(requestsPerSecond int) *rate.Limiter {
	if requestsPerSecond <= 0 {
		requestsPerSecond = DefaultRequestsPerSecond
	}
	return rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond)
}
