package httputil

import (
	"fmt"
	"net/http"

	"golang.org/x/time/rate"
)

// LimitedTransport paces outgoing requests with a token bucket. A request
// waits for a token until its context is done.
type LimitedTransport struct {
	base    http.RoundTripper
	limiter *rate.Limiter
}

// NewLimitedTransport returns base unchanged when requestsPerSecond is not positive.
func NewLimitedTransport(base http.RoundTripper, requestsPerSecond float64) http.RoundTripper {
	if base == nil {
		base = http.DefaultTransport
	}
	if requestsPerSecond <= 0 {
		return base
	}

	return &LimitedTransport{
		base:    base,
		limiter: rate.NewLimiter(rate.Limit(requestsPerSecond), 1),
	}
}

func (t *LimitedTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if err := t.limiter.Wait(req.Context()); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}
	return t.base.RoundTrip(req)
}
