package httputil

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"google.golang.org/api/googleapi"
)

const DefaultTimeout = 30 * time.Second

// NewClient returns a client whose requests give up after timeout. Failed
// requests are never retried; callers surface the error and use IsTransient
// to tell the operator whether a rerun is likely to help.
func NewClient(base http.RoundTripper, timeout time.Duration) *http.Client {
	if base == nil {
		base = http.DefaultTransport
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	return &http.Client{
		Transport: base,
		Timeout:   timeout,
	}
}

func IsTransient(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return true
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return true
	}

	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		return transientStatus(apiErr.Code)
	}

	return false
}

func transientStatus(code int) bool {
	if code == http.StatusTooManyRequests {
		return true
	}
	return code >= 500 && code < 600
}
