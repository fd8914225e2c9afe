// Package httpds fetches remote CSV exports over HTTP with retry and
// exponential backoff. A Source wraps one URL so remote inputs plug into
// extraction exactly like local files.
package httpds

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Config configures the client. Zero values get defaults:
// Timeout 60s, InitialBackoff 200ms, MaxBackoff 5s. MaxRetries 0 means a
// single attempt.
type Config struct {
	Timeout        time.Duration
	MaxRetries     int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration

	// Header is sent with every request (e.g. an API key for a catalogue export).
	Header http.Header

	// Transport overrides http.DefaultTransport; tests inject one here.
	Transport http.RoundTripper
}

// Client is an http.Client with retry on transport errors, 429 and 5xx.
type Client struct {
	httpClient     *http.Client
	maxRetries     int
	initialBackoff time.Duration
	maxBackoff     time.Duration
	header         http.Header
}

// NewClient builds a Client from cfg.
func NewClient(cfg Config) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.InitialBackoff <= 0 {
		cfg.InitialBackoff = 200 * time.Millisecond
	}
	if cfg.MaxBackoff <= 0 {
		cfg.MaxBackoff = 5 * time.Second
	}
	transport := cfg.Transport
	if transport == nil {
		transport = http.DefaultTransport
	}
	return &Client{
		httpClient:     &http.Client{Timeout: cfg.Timeout, Transport: transport},
		maxRetries:     cfg.MaxRetries,
		initialBackoff: cfg.InitialBackoff,
		maxBackoff:     cfg.MaxBackoff,
		header:         cfg.Header.Clone(),
	}
}

// Get fetches url and returns the response body for a 2xx status. Any other
// final status is an error. The caller closes the body.
func (c *Client) Get(ctx context.Context, url string) (io.ReadCloser, error) {
	if url == "" {
		return nil, fmt.Errorf("httpds: url must not be empty")
	}

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			if err := sleepCtx(ctx, backoffDuration(c.initialBackoff, attempt-1, c.maxBackoff)); err != nil {
				return nil, err
			}
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, fmt.Errorf("httpds: build request: %w", err)
		}
		for k, vs := range c.header {
			for _, v := range vs {
				req.Header.Add(k, v)
			}
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("httpds: GET %s: %w", url, err)
			continue
		}
		switch {
		case resp.StatusCode >= 200 && resp.StatusCode <= 299:
			return resp.Body, nil
		case isRetryableStatus(resp.StatusCode):
			_ = resp.Body.Close()
			lastErr = fmt.Errorf("httpds: GET %s: retryable status %d", url, resp.StatusCode)
		default:
			_ = resp.Body.Close()
			return nil, fmt.Errorf("httpds: GET %s: status %d", url, resp.StatusCode)
		}
	}
	return nil, lastErr
}

// isRetryableStatus treats 429 and 5xx as transient.
func isRetryableStatus(code int) bool {
	return code == http.StatusTooManyRequests || (code >= 500 && code <= 599)
}

// backoffDuration is initial * 2^retry, clamped to max.
func backoffDuration(initial time.Duration, retry int, max time.Duration) time.Duration {
	if retry > 30 {
		return max
	}
	d := initial << retry
	if d > max || d <= 0 {
		return max
	}
	return d
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Source is a datasource bound to one URL.
type Source struct {
	client *Client
	url    string
}

// NewSource returns a Source that fetches url with client.
func NewSource(client *Client, url string) *Source {
	return &Source{client: client, url: url}
}

// URL returns the bound URL.
func (s *Source) URL() string { return s.url }

// Open performs the GET.
func (s *Source) Open(ctx context.Context) (io.ReadCloser, error) {
	return s.client.Get(ctx, s.url)
}
