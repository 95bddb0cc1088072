// Package client provides the HTTP transport, JSON decoding and the error
// taxonomy shared by every WordPress reader operation.
package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/Sternrassler/wp-reader/pkg/logging"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
)

// Prometheus metrics for WordPress transport operations.
var (
	wpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "wp_requests_total",
		Help: "Total WordPress requests by endpoint and status",
	}, []string{"endpoint", "status"})

	wpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "wp_request_duration_seconds",
		Help:    "WordPress request duration in seconds by endpoint",
		Buckets: []float64{0.1, 0.5, 1, 2, 5, 10},
	}, []string{"endpoint"})

	wpErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "wp_errors_total",
		Help: "Total WordPress errors by class",
	}, []string{"class"})
)

// Transport issues a single HTTP request and returns the complete response.
// Implementations must be safe for concurrent use and honour ctx.
type Transport interface {
	Do(ctx context.Context, method, rawURL string) (*Response, error)
}

// Response is a fully read HTTP response.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// Config holds the HTTP transport configuration.
type Config struct {
	// User-Agent header sent with every request.
	UserAgent string

	// Timeout applied by the underlying http.Client. Zero means no timeout.
	Timeout time.Duration

	// HTTPClient overrides the client built from Timeout.
	HTTPClient *http.Client
}

// DefaultConfig returns a safe default configuration.
func DefaultConfig(userAgent string) Config {
	return Config{
		UserAgent: userAgent,
		Timeout:   30 * time.Second,
	}
}

// HTTPTransport is the net/http implementation of Transport.
type HTTPTransport struct {
	httpClient *http.Client
	config     Config
	logger     zerolog.Logger
}

// NewHTTPTransport creates a transport from cfg.
func NewHTTPTransport(cfg Config) (*HTTPTransport, error) {
	if cfg.UserAgent == "" {
		return nil, fmt.Errorf("user-agent is required")
	}

	if cfg.Timeout < 0 {
		return nil, fmt.Errorf("timeout must be >= 0 (got %s)", cfg.Timeout)
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}

	return &HTTPTransport{
		httpClient: httpClient,
		config:     cfg,
		logger:     logging.NewLogger("wp-transport"),
	}, nil
}

// Do performs a request and reads the whole body. Any status code is a
// successful round trip; interpreting it is up to the caller.
func (t *HTTPTransport) Do(ctx context.Context, method, rawURL string) (*Response, error) {
	u, err := ParseHTTPURL(rawURL)
	if err != nil {
		wpErrorsTotal.WithLabelValues(string(ClassURL)).Inc()
		return nil, err
	}
	endpoint := u.Path

	startTime := time.Now()
	defer func() {
		wpRequestDuration.WithLabelValues(endpoint).Observe(time.Since(startTime).Seconds())
	}()

	req, err := http.NewRequestWithContext(ctx, method, u.String(), nil)
	if err != nil {
		wpErrorsTotal.WithLabelValues(string(ClassURL)).Inc()
		return nil, NewError(ErrBadURL, rawURL, err)
	}
	req.Header.Set("User-Agent", t.config.UserAgent)
	req.Header.Set("Accept", "application/json")

	t.logger.Debug().
		Str("url", rawURL).
		Str("method", method).
		Msg("Executing WordPress request")

	resp, err := t.httpClient.Do(req)
	if err != nil {
		t.logger.Debug().Err(err).Str("url", rawURL).Msg("HTTP request failed")
		wpErrorsTotal.WithLabelValues(string(ClassTransport)).Inc()
		wpRequestsTotal.WithLabelValues(endpoint, "network_error").Inc()
		return nil, NewError(ErrNetwork, rawURL, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		wpErrorsTotal.WithLabelValues(string(ClassTransport)).Inc()
		wpRequestsTotal.WithLabelValues(endpoint, "network_error").Inc()
		return nil, &Error{
			Class:      ClassTransport,
			StatusCode: resp.StatusCode,
			URL:        rawURL,
			Err:        ErrNetwork,
			Cause:      fmt.Errorf("read body: %w", err),
		}
	}

	wpRequestsTotal.WithLabelValues(endpoint, strconv.Itoa(resp.StatusCode)).Inc()

	return &Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       body,
	}, nil
}

// SetHTTPClient sets a custom HTTP client (for testing).
func (t *HTTPTransport) SetHTTPClient(client *http.Client) {
	t.httpClient = client
}

// ParseHTTPURL parses rawURL and requires an absolute http or https URL.
func ParseHTTPURL(rawURL string) (*url.URL, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, NewError(ErrBadURL, rawURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, NewError(ErrNonHTTPURL, rawURL, nil)
	}
	if u.Host == "" {
		return nil, NewError(ErrBadURL, rawURL, errors.New("missing host"))
	}
	return u, nil
}
