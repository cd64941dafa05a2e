package infrastructure

import (
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/yourusername/mediafetch-go/internal/domain"
)

// HeaderTransport sets the configured user agent and extra headers on every request
type HeaderTransport struct {
	base      http.RoundTripper
	userAgent string
	headers   map[string]string
}

// RoundTrip implements http.RoundTripper
func (t *HeaderTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	if t.userAgent != "" {
		req.Header.Set("User-Agent", t.userAgent)
	}
	for k, v := range t.headers {
		req.Header.Set(k, v)
	}
	return t.base.RoundTrip(req)
}

// NewHTTPClient builds the client shared by the metadata and provider clients.
// There is no overall client timeout since media streams can run for a long
// time; only the wait for response headers is bounded.
func NewHTTPClient(cfg domain.HTTPConfig) *http.Client {
	if cfg.KeepAliveTimeout == 0 {
		cfg.KeepAliveTimeout = 90 * time.Second
	}

	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   30 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		IdleConnTimeout:       cfg.KeepAliveTimeout,
		ResponseHeaderTimeout: cfg.ResponseHeaderTimeout,
		MaxIdleConns:          16,
		MaxIdleConnsPerHost:   4,
		DisableCompression:    true,
	}
	if cfg.ProxyURL != "" {
		if proxyURL, err := url.Parse(cfg.ProxyURL); err == nil {
			transport.Proxy = http.ProxyURL(proxyURL)
		}
	}

	return &http.Client{
		Transport: &HeaderTransport{
			base:      transport,
			userAgent: cfg.UserAgent,
			headers:   cfg.Headers,
		},
	}
}
