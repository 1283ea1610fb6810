// Package httputil configures the outbound HTTP client shared by the
// open-meteo endpoints.
package httputil

import (
	"net/http"
	"time"
)

const (
	DefaultTimeout = 30 * time.Second

	// userAgent identifies us to the open-meteo operators, as their usage
	// policy asks of non-browser clients.
	userAgent = "skycast/1.0"
)

type userAgentTransport struct {
	base http.RoundTripper
}

func (t *userAgentTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Header.Get("User-Agent") == "" {
		req = req.Clone(req.Context())
		req.Header.Set("User-Agent", userAgent)
	}
	return t.base.RoundTrip(req)
}

// NewClient returns an HTTP client with standard timeout configuration and
// the project User-Agent applied to every request.
func NewClient() *http.Client {
	return &http.Client{
		Timeout:   DefaultTimeout,
		Transport: &userAgentTransport{base: http.DefaultTransport},
	}
}
