// Package httpclient builds the traced HTTP clients used by provider adapters.
package httpclient

import (
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// New returns a client whose requests are recorded as OpenTelemetry client
// spans. A zero timeout means no client-side deadline beyond the request context.
func New(timeout time.Duration) *http.Client {
	return &http.Client{
		Transport: otelhttp.NewTransport(http.DefaultTransport),
		Timeout:   timeout,
	}
}

// OrNew returns c when it is non-nil, otherwise a new traced client.
func OrNew(c *http.Client, timeout time.Duration) *http.Client {
	if c != nil {
		return c
	}
	return New(timeout)
}
