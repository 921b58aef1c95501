package sheets

import (
	"fmt"
	"net/http"
	"net/url"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// ProxyTransport sends every request to Prefix followed by the full original
// URL, the scheme used by CORS-anywhere style relays. An empty Prefix passes
// requests through unchanged.
type ProxyTransport struct {
	Base   http.RoundTripper
	Prefix string
}

func (t *ProxyTransport) base() http.RoundTripper {
	if t.Base != nil {
		return t.Base
	}
	return http.DefaultTransport
}

// RoundTrip implements http.RoundTripper.
func (t *ProxyTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if t.Prefix == "" {
		return t.base().RoundTrip(req)
	}

	target, err := url.Parse(t.Prefix + req.URL.String())
	if err != nil {
		return nil, fmt.Errorf("failed to build proxy URL: %w", err)
	}

	out := req.Clone(req.Context())
	out.URL = target
	out.Host = target.Host
	if out.Header.Get("X-Requested-With") == "" {
		out.Header.Set("X-Requested-With", "XMLHttpRequest")
	}
	return t.base().RoundTrip(out)
}

// NewHTTPClient builds the HTTP client used for Sheets calls: an optional
// proxy prefix, OpenTelemetry instrumentation, and an overall timeout.
func NewHTTPClient(timeout time.Duration, proxyPrefix string) *http.Client {
	var rt http.RoundTripper = http.DefaultTransport
	if proxyPrefix != "" {
		rt = &ProxyTransport{Base: rt, Prefix: proxyPrefix}
	}
	return &http.Client{
		Transport: otelhttp.NewTransport(rt),
		Timeout:   timeout,
	}
}
