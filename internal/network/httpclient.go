// File: internal/network/httpclient.go
package network

import (
	"crypto/tls"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"
	"golang.org/x/net/http2"
	"golang.org/x/time/rate"
)

// Defaults for fetching snapshot pages.
const (
	DefaultDialTimeout           = 5 * time.Second
	DefaultKeepAliveInterval     = 15 * time.Second
	DefaultTLSHandshakeTimeout   = 5 * time.Second
	DefaultResponseHeaderTimeout = 10 * time.Second
	DefaultRequestTimeout        = 30 * time.Second
	DefaultMaxRedirects          = 10
	DefaultIdleConnTimeout       = 30 * time.Second
	DefaultUserAgent             = "locus"

	requiredMinTLSVersion = tls.VersionTLS12
)

var defaultSecureCipherSuites = []uint16{
	tls.TLS_AES_256_GCM_SHA384,
	tls.TLS_CHACHA20_POLY1305_SHA256,
	tls.TLS_ECDHE_ECDSA_WITH_AES_256_GCM_SHA384,
	tls.TLS_ECDHE_RSA_WITH_AES_256_GCM_SHA384,
	tls.TLS_ECDHE_ECDSA_WITH_CHACHA20_POLY1305,
	tls.TLS_ECDHE_RSA_WITH_CHACHA20_POLY1305,
}

// ClientConfig holds the configuration for the HTTP client and transport layers.
type ClientConfig struct {
	IgnoreTLSErrors bool
	TLSConfig       *tls.Config

	RequestTimeout        time.Duration
	DialTimeout           time.Duration
	TLSHandshakeTimeout   time.Duration
	ResponseHeaderTimeout time.Duration
	IdleConnTimeout       time.Duration

	// MaxRedirects bounds how many redirects are followed. Zero disables
	// following, the response is returned as is.
	MaxRedirects int
	UserAgent    string
	ForceHTTP2   bool
	ProxyURL     *url.URL

	// RequestsPerSecond throttles outgoing requests. Zero means unlimited.
	RequestsPerSecond float64

	Logger *zap.Logger
}

// NewDefaultClientConfig creates a configuration suited to fetching single pages.
func NewDefaultClientConfig() *ClientConfig {
	return &ClientConfig{
		RequestTimeout:        DefaultRequestTimeout,
		DialTimeout:           DefaultDialTimeout,
		TLSHandshakeTimeout:   DefaultTLSHandshakeTimeout,
		ResponseHeaderTimeout: DefaultResponseHeaderTimeout,
		IdleConnTimeout:       DefaultIdleConnTimeout,
		MaxRedirects:          DefaultMaxRedirects,
		UserAgent:             DefaultUserAgent,
		ForceHTTP2:            true,
		Logger:                zap.NewNop(),
	}
}

// NewHTTPTransport creates an http.Transport from config.
func NewHTTPTransport(config *ClientConfig) *http.Transport {
	if config == nil {
		config = NewDefaultClientConfig()
	}
	logger := config.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	dialer := &net.Dialer{Timeout: config.DialTimeout, KeepAlive: DefaultKeepAliveInterval}
	tlsConfig := configureTLS(config)

	transport := &http.Transport{
		DialContext:           dialer.DialContext,
		TLSClientConfig:       tlsConfig,
		TLSHandshakeTimeout:   config.TLSHandshakeTimeout,
		ResponseHeaderTimeout: config.ResponseHeaderTimeout,
		IdleConnTimeout:       config.IdleConnTimeout,
		ForceAttemptHTTP2:     config.ForceHTTP2,
		Proxy:                 http.ProxyFromEnvironment,
	}
	if config.ProxyURL != nil {
		transport.Proxy = http.ProxyURL(config.ProxyURL)
	}

	if config.ForceHTTP2 {
		if err := http2.ConfigureTransport(transport); err != nil {
			logger.Warn("Failed to configure HTTP/2 transport, falling back to HTTP/1.1.", zap.Error(err))
		}
	} else if len(tlsConfig.NextProtos) == 0 {
		tlsConfig.NextProtos = []string{"http/1.1"}
	}
	return transport
}

// NewClient creates an http.Client that follows up to MaxRedirects redirects,
// decodes brotli and gzip bodies and stamps every request with the configured
// User-Agent.
func NewClient(config *ClientConfig) *http.Client {
	if config == nil {
		config = NewDefaultClientConfig()
	}

	var rt http.RoundTripper = &compressionTransport{next: NewHTTPTransport(config)}
	if config.RequestsPerSecond > 0 {
		rt = &rateLimitedTransport{next: rt, limiter: rate.NewLimiter(rate.Limit(config.RequestsPerSecond), 1)}
	}
	if config.UserAgent != "" {
		rt = &userAgentTransport{next: rt, agent: config.UserAgent}
	}

	maxRedirects := config.MaxRedirects
	return &http.Client{
		Transport: rt,
		Timeout:   config.RequestTimeout,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if maxRedirects <= 0 {
				return http.ErrUseLastResponse
			}
			if len(via) > maxRedirects {
				return fmt.Errorf("stopped after %d redirects", maxRedirects)
			}
			return nil
		},
	}
}

// rateLimitedTransport waits for a token before every request, redirects included.
type rateLimitedTransport struct {
	next    http.RoundTripper
	limiter *rate.Limiter
}

func (t *rateLimitedTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if err := t.limiter.Wait(req.Context()); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}
	return t.next.RoundTrip(req)
}

type userAgentTransport struct {
	next  http.RoundTripper
	agent string
}

func (t *userAgentTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Header.Get("User-Agent") != "" {
		return t.next.RoundTrip(req)
	}
	// RoundTrippers must not modify the caller's request.
	clone := req.Clone(req.Context())
	clone.Header.Set("User-Agent", t.agent)
	return t.next.RoundTrip(clone)
}

// configureTLS clones any custom config, fills in secure defaults for unset
// fields and never allows a version below TLS 1.2.
func configureTLS(config *ClientConfig) *tls.Config {
	var tlsConfig *tls.Config
	if config.TLSConfig != nil {
		tlsConfig = config.TLSConfig.Clone()
	} else {
		tlsConfig = &tls.Config{}
	}

	if tlsConfig.MinVersion < requiredMinTLSVersion {
		tlsConfig.MinVersion = requiredMinTLSVersion
	}
	if len(tlsConfig.CipherSuites) == 0 {
		tlsConfig.CipherSuites = defaultSecureCipherSuites
	}
	if tlsConfig.ClientSessionCache == nil {
		tlsConfig.ClientSessionCache = tls.NewLRUClientSessionCache(64)
	}

	// Useful for self signed certificates on staging hosts.
	if config.IgnoreTLSErrors {
		tlsConfig.InsecureSkipVerify = true
	}
	return tlsConfig
}
