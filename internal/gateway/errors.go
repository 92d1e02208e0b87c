package gateway

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
)

// RemoteError is a non-2xx response from the management API.
type RemoteError struct {
	Op         string
	StatusCode int
	Body       string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("%s: management API returned %d: %s", e.Op, e.StatusCode, e.Body)
}

// Retryable reports whether the response class is worth retrying.
// 5xx, request timeout and throttling are transient; other 4xx responses are
// permanent rejections of the payload and must not be retried.
func (e *RemoteError) Retryable() bool {
	if e.StatusCode >= 500 {
		return true
	}
	return e.StatusCode == http.StatusRequestTimeout || e.StatusCode == http.StatusTooManyRequests
}

// IsRetryable classifies an error from the client. Network failures,
// timeouts and retryable remote statuses may be retried with backoff;
// anything else is permanent.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	var remote *RemoteError
	if errors.As(err, &remote) {
		return remote.Retryable()
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	// Transport-level failures from http.Client.Do arrive as *url.Error.
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return true
	}
	return false
}

// IsNotFound reports whether the error is a 404 from the management API.
func IsNotFound(err error) bool {
	var remote *RemoteError
	return errors.As(err, &remote) && remote.StatusCode == http.StatusNotFound
}
