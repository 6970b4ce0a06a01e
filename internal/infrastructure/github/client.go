// Package github implements the work item and history services on top of
// the GitHub REST v3 API.
package github

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
)

const (
	defaultBaseURL   = "https://api.github.com"
	defaultUserAgent = "GoldenTickets/1.0"
	defaultTimeout   = 10 * time.Second
	defaultRetryBase = 500 * time.Millisecond
	defaultJitter    = 0.5
	maxBackoff       = 30 * time.Second
	retryLimit       = 10
	maxBodyBytes     = 4 << 20
)

// Options configures the Client.
type Options struct {
	BaseURL    string
	Token      string
	UserAgent  string
	Timeout    time.Duration
	MaxRetries int
	RetryBase  time.Duration
	HTTPClient *http.Client
	Logger     *slog.Logger
}

// Client is a small GitHub REST client that retries transient failures.
type Client struct {
	baseURL    string
	token      string
	userAgent  string
	maxRetries int
	retryBase  time.Duration
	http       *http.Client
	logger     *slog.Logger
	jitter     float64

	// newTimer replaces the backoff wait timer in tests.
	newTimer func() backoff.Timer
}

// StatusError is returned for non-2xx responses once retries are exhausted
// or when the status is not retryable.
type StatusError struct {
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("github returned %d: %s", e.Status, e.Body)
}

// NewClient creates a client with defaults for unset options.
func NewClient(o Options) *Client {
	if o.BaseURL == "" {
		o.BaseURL = defaultBaseURL
	}
	if o.UserAgent == "" {
		o.UserAgent = defaultUserAgent
	}
	if o.Timeout <= 0 {
		o.Timeout = defaultTimeout
	}
	if o.RetryBase <= 0 {
		o.RetryBase = defaultRetryBase
	}
	o.MaxRetries = min(max(o.MaxRetries, 0), retryLimit)
	if o.HTTPClient == nil {
		o.HTTPClient = &http.Client{Timeout: o.Timeout}
	}
	if o.Logger == nil {
		o.Logger = slog.New(slog.DiscardHandler)
	}

	return &Client{
		baseURL:    strings.TrimRight(o.BaseURL, "/"),
		token:      o.Token,
		userAgent:  o.UserAgent,
		maxRetries: o.MaxRetries,
		retryBase:  o.RetryBase,
		http:       o.HTTPClient,
		logger:     o.Logger,
		jitter:     defaultJitter,
	}
}

// getJSON issues a GET for path with query and decodes the body into v.
func (c *Client) getJSON(ctx context.Context, path string, query url.Values, accept string, v any) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}
	if accept == "" {
		accept = "application/vnd.github+json"
	}

	attempt := 0
	opts := []backoff.RetryOption{
		backoff.WithBackOff(c.newBackOff()),
		backoff.WithMaxTries(uint(c.maxRetries) + 1),
		backoff.WithNotify(func(err error, wait time.Duration) {
			c.logger.Warn("github request retrying", "path", path, "error", err, "attempt", attempt, "retry_in", wait)
		}),
	}
	if c.newTimer != nil {
		opts = append(opts, backoff.WithTimer(c.newTimer()))
	}

	_, err := backoff.Retry(ctx, func() (struct{}, error) {
		defer func() { attempt++ }()
		return struct{}{}, c.fetch(ctx, endpoint, accept, v)
	}, opts...)
	return err
}

// fetch performs one attempt. Errors that must not be retried are marked
// permanent.
func (c *Client) fetch(ctx context.Context, endpoint, accept string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return backoff.Permanent(fmt.Errorf("new request: %w", err))
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("X-GitHub-Api-Version", "2022-11-28")
	req.Header.Set("Accept", accept)
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		err = fmt.Errorf("do request: %w", err)
		if ctx.Err() != nil {
			return backoff.Permanent(err)
		}
		return err
	}

	switch {
	case resp.StatusCode == http.StatusOK:
		err := json.NewDecoder(io.LimitReader(resp.Body, maxBodyBytes)).Decode(v)
		_ = resp.Body.Close()
		if err != nil {
			return backoff.Permanent(fmt.Errorf("decode response: %w", err))
		}
		return nil

	case retryable(resp):
		wait := retryAfter(resp.Header)
		drainAndClose(resp.Body)
		statusErr := &StatusError{Status: resp.StatusCode}
		if wait > 0 {
			return fmt.Errorf("%w: %w", statusErr, backoff.RetryAfter(int(wait/time.Second)))
		}
		return statusErr

	default:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		_ = resp.Body.Close()
		return backoff.Permanent(&StatusError{Status: resp.StatusCode, Body: strings.TrimSpace(string(body))})
	}
}

func (c *Client) newBackOff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = c.retryBase
	b.MaxInterval = maxBackoff
	b.RandomizationFactor = c.jitter
	return b
}

func retryable(resp *http.Response) bool {
	switch resp.StatusCode {
	case http.StatusTooManyRequests, http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true
	case http.StatusForbidden:
		return resp.Header.Get("X-RateLimit-Remaining") == "0"
	}
	return false
}

// retryAfter reads a Retry-After header in whole seconds, capped at maxBackoff.
func retryAfter(h http.Header) time.Duration {
	secs, err := strconv.Atoi(strings.TrimSpace(h.Get("Retry-After")))
	if err != nil || secs <= 0 {
		return 0
	}
	return min(time.Duration(secs)*time.Second, maxBackoff)
}

func drainAndClose(body io.ReadCloser) {
	_, _ = io.Copy(io.Discard, io.LimitReader(body, 64<<10))
	_ = body.Close()
}
