// Package ptcg implements the primary card catalog client against the
// Pokemon TCG API v2.
package ptcg

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"
)

const (
	defaultBaseURL = "https://api.pokemontcg.io/v2"

	// Without an API key the server allows 1000 requests a day, so pace
	// outbound calls conservatively.
	defaultRPS   = 2.0
	defaultBurst = 5

	defaultTimeout = 30 * time.Second

	// Transient failures get a couple of retries with exponential backoff
	// before the caller falls back to the secondary provider.
	maxAttempts    = 3
	initialBackoff = 500 * time.Millisecond

	defaultPageSize = 20
	maxPageSize     = 250
)

// Client is a rate-limited Pokemon TCG API client.
type Client struct {
	http    *http.Client
	limiter *rate.Limiter
	logger  *slog.Logger
	baseURL string
	apiKey  string
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the API base URL. Used in tests.
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = u }
}

// WithAPIKey sets the X-Api-Key header on every request. Keyed clients
// get a much higher daily quota.
func WithAPIKey(key string) Option {
	return func(c *Client) { c.apiKey = key }
}

// New creates a new client.
func New(logger *slog.Logger, opts ...Option) *Client {
	c := &Client{
		http: &http.Client{
			Timeout: defaultTimeout,
		},
		limiter: rate.NewLimiter(rate.Limit(defaultRPS), defaultBurst),
		logger:  logger,
		baseURL: defaultBaseURL,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Close releases resources. Currently a no-op but included for interface
// consistency with the fallback client.
func (c *Client) Close() {
	// No persistent resources to close
}

// doRequest executes a GET with rate limiting and bounded retries.
// Only rate-limit and server errors are retried.
func (c *Client) doRequest(ctx context.Context, path string, query url.Values) ([]byte, error) {
	var lastErr error
	backoff := initialBackoff

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limit wait: %w", err)
		}

		body, err := c.doOnce(ctx, path, query)
		if err == nil {
			return body, nil
		}
		lastErr = err

		if !Retryable(err) || attempt == maxAttempts {
			return nil, err
		}

		if c.logger != nil {
			c.logger.Debug("retrying catalog request",
				"path", path,
				"attempt", attempt,
				"backoff", backoff,
				"error", err,
			)
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(backoff):
		}
		backoff *= 2
	}

	return nil, lastErr
}

// doOnce executes a single HTTP request.
func (c *Client) doOnce(ctx context.Context, path string, query url.Values) ([]byte, error) {
	reqURL := c.baseURL + path
	if len(query) > 0 {
		reqURL += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "BinderServer/1.0")
	if c.apiKey != "" {
		req.Header.Set("X-Api-Key", c.apiKey)
	}

	if c.logger != nil {
		c.logger.Debug("catalog request", "path", path)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		// Transport failures look like server errors to callers so the
		// fallback provider kicks in.
		return nil, errors.Join(ErrServer, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	switch resp.StatusCode {
	case http.StatusOK:
		return body, nil
	case http.StatusNotFound:
		return nil, ErrNotFound
	case http.StatusTooManyRequests:
		return nil, ErrRateLimited
	case http.StatusBadRequest:
		return nil, ErrBadRequest
	default:
		if resp.StatusCode >= 500 {
			return nil, ErrServer
		}
		return nil, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(body))
	}
}
