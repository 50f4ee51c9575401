// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package gateway

import (
	"errors"
	"fmt"
	"net/http"
)

// TransportError means the request never produced an HTTP response:
// connection failure, timeout, or cancellation.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: transport error: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// UpstreamError means the gateway answered, but with a non-2xx status or a
// body that could not be decoded. StatusCode is zero for decode failures.
type UpstreamError struct {
	Op         string
	StatusCode int
	Body       string
	Err        error
}

func (e *UpstreamError) Error() string {
	switch {
	case e.StatusCode != 0 && e.Body != "":
		return fmt.Sprintf("%s: upstream returned HTTP %d: %s", e.Op, e.StatusCode, e.Body)
	case e.StatusCode != 0:
		return fmt.Sprintf("%s: upstream returned HTTP %d", e.Op, e.StatusCode)
	default:
		return fmt.Sprintf("%s: malformed upstream response: %v", e.Op, e.Err)
	}
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// IsRetryable reports whether repeating the same request could succeed.
// Transport failures, throttling, server errors and malformed bodies are
// retryable; other 4xx responses (bad key, unknown user) are not.
func IsRetryable(err error) bool {
	var te *TransportError
	if errors.As(err, &te) {
		return true
	}
	var ue *UpstreamError
	if errors.As(err, &ue) {
		if ue.StatusCode == 0 || ue.StatusCode == http.StatusTooManyRequests {
			return true
		}
		return ue.StatusCode >= http.StatusInternalServerError
	}
	return false
}
