// Package httpds fetches raw input over HTTP with retry and exponential
// backoff. Transport errors, 429 and 5xx are retried; any other non-2xx
// status fails the fetch.
package httpds

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/dustin/go-humanize"

	"passclean/internal/datasource"
)

// Config configures the HTTP source. Zero values get defaults:
// Timeout 30s, InitialBackoff 200ms, MaxBackoff 5s. MaxRetries 0 means a
// single attempt.
type Config struct {
	Timeout        time.Duration
	MaxRetries     int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration

	// InsecureSkipVerify disables TLS certificate checks. Ignored when
	// Transport is set.
	InsecureSkipVerify bool

	Headers   http.Header
	Transport http.RoundTripper
}

// Source downloads one URL per Open.
type Source struct {
	url            string
	httpClient     *http.Client
	maxRetries     int
	initialBackoff time.Duration
	maxBackoff     time.Duration
	headers        http.Header
	logger         *slog.Logger

	// wait is replaced in tests to skip real backoff delays.
	wait func(ctx context.Context, d time.Duration) error
}

// NewSource returns a Source for url. A nil logger uses slog.Default.
func NewSource(url string, cfg Config, logger *slog.Logger) *Source {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
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
		transport = &http.Transport{
			TLSClientConfig: &tls.Config{InsecureSkipVerify: cfg.InsecureSkipVerify}, //nolint:gosec // opt-in
		}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Source{
		url:            url,
		httpClient:     &http.Client{Timeout: cfg.Timeout, Transport: transport},
		maxRetries:     cfg.MaxRetries,
		initialBackoff: cfg.InitialBackoff,
		maxBackoff:     cfg.MaxBackoff,
		headers:        cfg.Headers.Clone(),
		logger:         logger,
		wait:           sleepContext,
	}
}

// Open performs the GET and returns the decoded response body.
func (s *Source) Open(ctx context.Context) (io.ReadCloser, error) {
	if s.url == "" {
		return nil, fmt.Errorf("httpds: url must not be empty")
	}

	var lastErr error
	for attempt := 0; attempt <= s.maxRetries; attempt++ {
		if attempt > 0 {
			d := backoffDuration(s.initialBackoff, attempt-1, s.maxBackoff)
			s.logger.Warn("retrying download", "url", s.url, "attempt", attempt, "backoff", d, "err", lastErr)
			if err := s.wait(ctx, d); err != nil {
				return nil, err
			}
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
		if err != nil {
			return nil, fmt.Errorf("httpds: build request: %w", err)
		}
		for k, vs := range s.headers {
			for _, v := range vs {
				req.Header.Add(k, v)
			}
		}

		resp, err := s.httpClient.Do(req)
		if err != nil {
			lastErr = err
			continue
		}
		if isRetryableStatus(resp.StatusCode) {
			_ = resp.Body.Close()
			lastErr = fmt.Errorf("httpds: GET %s: status %d", s.url, resp.StatusCode)
			continue
		}
		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			_ = resp.Body.Close()
			return nil, fmt.Errorf("httpds: GET %s: status %d", s.url, resp.StatusCode)
		}

		size := "unknown"
		if resp.ContentLength >= 0 {
			size = humanize.Bytes(uint64(resp.ContentLength))
		}
		s.logger.Info("downloading input", "url", s.url, "size", size)
		return datasource.DecodeUTF8(resp.Body), nil
	}
	return nil, fmt.Errorf("httpds: giving up after %d attempt(s): %w", s.maxRetries+1, lastErr)
}

func isRetryableStatus(code int) bool {
	return code == http.StatusTooManyRequests || (code >= 500 && code <= 599)
}

// backoffDuration is initial * 2^retry, clamped to max.
func backoffDuration(initial time.Duration, retry int, max time.Duration) time.Duration {
	d := initial
	for i := 0; i < retry && d < max; i++ {
		d *= 2
	}
	if d > max {
		return max
	}
	return d
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
