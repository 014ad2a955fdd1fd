// Package response normalizes Meraki API replies and checks them against the
// exact status code each operation expects.
package response

import (
	"encoding/json"
	"fmt"

	"github.com/cockroachdb/errors"
)

var (
	// ErrUnexpectedStatus marks replies whose status differs from the expected one.
	ErrUnexpectedStatus = errors.New("unexpected status")
	// ErrEmptyBody marks replies that carry no parseable JSON body when one is required.
	ErrEmptyBody = errors.New("empty response from API")
	// ErrMalformedBody marks JSON bodies that do not match the expected shape.
	ErrMalformedBody = errors.New("malformed response body")
)

// StatusCoder is an interface for response types that can return HTTP status code.
type StatusCoder interface {
	StatusCode() int
}

// Result is a normalized vendor reply: the status code plus the body when it
// parsed as JSON. Body is nil for empty or non-JSON bodies.
type Result struct {
	Status int
	Body   json.RawMessage
}

// NewResult builds a Result from a raw body, dropping bodies that are not valid JSON.
func NewResult(status int, raw []byte) *Result {
	res := &Result{Status: status}
	if len(raw) > 0 && json.Valid(raw) {
		res.Body = json.RawMessage(raw)
	}
	return res
}

// StatusCode returns the HTTP status code of the reply.
func (r *Result) StatusCode() int {
	return r.Status
}

// HasBody reports whether the reply carried a JSON body.
func (r *Result) HasBody() bool {
	return r != nil && r.Body != nil
}

// StatusError reports a reply whose status code was not the expected one.
type StatusError struct {
	StatusCode int
	Expected   int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("API error: status=%d, expected=%d", e.StatusCode, e.Expected)
}

// Is makes every StatusError match ErrUnexpectedStatus.
func (e *StatusError) Is(target error) bool {
	return target == ErrUnexpectedStatus
}

// Handle decodes a reply that must come back 200 OK with a JSON body.
//
// Usage:
//
//	res, err := c.Call(ctx, http.MethodGet, "organizations", nil)
//	orgs, err := response.Handle[[]Organization](res, err, "failed to list organizations")
func Handle[T any](res *Result, err error, errorMsg string) (*T, error) {
	return HandleWithStatus[T](res, err, errorMsg, 200)
}

// HandleWithStatus is like Handle but allows specifying the expected status code.
func HandleWithStatus[T any](res *Result, err error, errorMsg string, expectedStatus int) (*T, error) {
	if err := HandleNoContentWithStatus(res, err, errorMsg, expectedStatus); err != nil {
		return nil, err
	}

	if !res.HasBody() {
		return nil, errors.Wrap(ErrEmptyBody, errorMsg)
	}

	data := new(T)
	if err := json.Unmarshal(res.Body, data); err != nil {
		return nil, errors.Wrap(errors.Mark(err, ErrMalformedBody), errorMsg)
	}

	return data, nil
}

// HandleNoContentWithStatus checks a reply whose body is irrelevant (claim, removal).
func HandleNoContentWithStatus(res *Result, err error, errorMsg string, expectedStatus int) error {
	if err != nil {
		return errors.Wrap(err, errorMsg)
	}

	if res == nil {
		return errors.Wrap(ErrEmptyBody, errorMsg)
	}

	if res.StatusCode() != expectedStatus {
		return errors.Wrap(&StatusError{StatusCode: res.StatusCode(), Expected: expectedStatus}, errorMsg)
	}

	return nil
}

// StatusOf extracts the vendor status code carried by err, or 0.
func StatusOf(err error) int {
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.StatusCode
	}
	return 0
}
