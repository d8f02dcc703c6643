package backend

import (
	"errors"
	"fmt"
)

// TransportError is returned when the request to the backend could not complete
// (dial failure, timeout, aborted context, open circuit breaker).
type TransportError struct {
	Path string
	Err  error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("backend %s: transport error: %v", e.Path, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// HTTPStatusError is returned when the backend answers with a non-2xx status.
type HTTPStatusError struct {
	Path string
	Code int
	Body string
}

func (e *HTTPStatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("backend %s: status %d", e.Path, e.Code)
	}
	return fmt.Sprintf("backend %s: status %d: %s", e.Path, e.Code, e.Body)
}

// DecodeError is returned when the response body is not the expected JSON.
type DecodeError struct {
	Path string
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("backend %s: decode error: %v", e.Path, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

func IsTransport(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}

// StatusCode returns the HTTP status carried by err, or 0.
func StatusCode(err error) int {
	var se *HTTPStatusError
	if errors.As(err, &se) {
		return se.Code
	}
	return 0
}

func IsStatus(err error) bool {
	return StatusCode(err) != 0
}

func IsDecode(err error) bool {
	var de *DecodeError
	return errors.As(err, &de)
}

// Kind classifies err for logs and metrics: transport, status, decode or other.
func Kind(err error) string {
	switch {
	case err == nil:
		return "ok"
	case IsTransport(err):
		return "transport"
	case IsStatus(err):
		return "status"
	case IsDecode(err):
		return "decode"
	default:
		return "other"
	}
}
