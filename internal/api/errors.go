package api

import (
	"errors"
	"fmt"
)

// TransportError means the request never produced an HTTP response:
// connection refused, DNS failure, TLS error, cancelled context.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: transport error: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// APIError is a non-2xx response. Body is the decoded JSON value, or the
// raw text when the body was not JSON, or nil when it was empty.
type APIError struct {
	Op     string
	Status int
	Body   interface{}
	Raw    []byte
}

func (e *APIError) Error() string {
	if msg := firstMatch(e.Body, DefaultMessageRules); msg != "" {
		return fmt.Sprintf("%s failed: status %d: %s", e.Op, e.Status, msg)
	}
	return fmt.Sprintf("%s failed: status %d", e.Op, e.Status)
}

// DecodeError means a 2xx response body did not match the expected shape.
type DecodeError struct {
	Op  string
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("%s: failed to decode response: %v", e.Op, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// IsStatus reports whether err is an APIError with the given status.
func IsStatus(err error, status int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == status
}

// IsTransport reports whether err is a TransportError.
func IsTransport(err error) bool {
	var tErr *TransportError
	return errors.As(err, &tErr)
}
