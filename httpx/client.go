package httpx

import (
	"net"
	"net/http"
	"time"
)

// clientConfig holds configuration for HTTP client creation.
type clientConfig struct {
	timeout time.Duration

	dialTimeout         time.Duration
	tlsHandshakeTimeout time.Duration

	maxIdleConns        int
	maxIdleConnsPerHost int
	idleConnTimeout     time.Duration

	// Base transport (before OTel wrapping)
	baseTransport http.RoundTripper
}

// ClientOption configures an HTTP client.
type ClientOption func(*clientConfig)

// WithTimeout sets the request timeout for the client.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *clientConfig) {
		c.timeout = d
	}
}

// WithDialTimeout sets the timeout for dialing TCP connections.
func WithDialTimeout(d time.Duration) ClientOption {
	return func(c *clientConfig) {
		c.dialTimeout = d
	}
}

// WithTLSHandshakeTimeout sets the timeout for TLS handshakes.
func WithTLSHandshakeTimeout(d time.Duration) ClientOption {
	return func(c *clientConfig) {
		c.tlsHandshakeTimeout = d
	}
}

// WithMaxIdleConns sets the max idle connections across all hosts.
func WithMaxIdleConns(n int) ClientOption {
	return func(c *clientConfig) {
		c.maxIdleConns = n
	}
}

// WithMaxIdleConnsPerHost sets the max idle connections to keep per-host.
func WithMaxIdleConnsPerHost(n int) ClientOption {
	return func(c *clientConfig) {
		c.maxIdleConnsPerHost = n
	}
}

// WithIdleConnTimeout sets the maximum amount of time an idle (keep-alive)
// connection will remain idle before closing itself.
func WithIdleConnTimeout(d time.Duration) ClientOption {
	return func(c *clientConfig) {
		c.idleConnTimeout = d
	}
}

// WithTransport sets a custom base transport.
func WithTransport(rt http.RoundTripper) ClientOption {
	return func(c *clientConfig) {
		c.baseTransport = rt
	}
}

// NewClient creates an http.Client with suppression-aware OTel tracing,
// suitable as the HTTP layer of an instrumented vendor SDK.
//
// This client uses the globally registered providers; ensure they have
// been initialized.
//
// Usage:
//
//	client := httpx.NewClient(
//	    httpx.WithTimeout(30 * time.Second),
//	    httpx.WithMaxIdleConnsPerHost(10),
//	)
func NewClient(opts ...ClientOption) *http.Client {
	config := &clientConfig{
		baseTransport: http.DefaultTransport,
	}

	for _, opt := range opts {
		opt(config)
	}

	return &http.Client{
		Transport: Transport(buildTransport(config)),
		Timeout:   config.timeout,
	}
}

// buildTransport configures the underlying transport based on config.
func buildTransport(c *clientConfig) http.RoundTripper {
	var transport *http.Transport

	if c.baseTransport == http.DefaultTransport {
		t, ok := http.DefaultTransport.(*http.Transport)
		if !ok {
			return http.DefaultTransport
		}
		transport = t.Clone()
	} else if t, ok := c.baseTransport.(*http.Transport); ok {
		transport = t.Clone()
	} else {
		// Not an *http.Transport: transport-level settings cannot apply.
		return c.baseTransport
	}

	if c.dialTimeout > 0 {
		transport.DialContext = (&net.Dialer{
			Timeout:   c.dialTimeout,
			KeepAlive: 30 * time.Second,
		}).DialContext
	}

	if c.tlsHandshakeTimeout > 0 {
		transport.TLSHandshakeTimeout = c.tlsHandshakeTimeout
	}

	if c.maxIdleConns > 0 {
		transport.MaxIdleConns = c.maxIdleConns
	}

	if c.maxIdleConnsPerHost > 0 {
		transport.MaxIdleConnsPerHost = c.maxIdleConnsPerHost
	}

	if c.idleConnTimeout > 0 {
		transport.IdleConnTimeout = c.idleConnTimeout
	}

	return transport
}
