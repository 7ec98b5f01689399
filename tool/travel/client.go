package travel

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"golang.org/x/time/rate"
)

const (
	defaultTimeout      = 30 * time.Second
	defaultMaxRetries   = 3
	defaultMaxBodyBytes = 4 << 20
	defaultUserAgent    = "tripgraph/1.0"
)

// StatusError reports a non-2xx upstream response.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("HTTP %d: %s", e.StatusCode, http.StatusText(e.StatusCode))
	}
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Body)
}

// Retryable reports whether the status indicates a transient failure.
func (e *StatusError) Retryable() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}

// ClientOptions configure the shared HTTP client.
type ClientOptions struct {
	HTTPClient      *http.Client
	RatePerSecond   float64 // <= 0 disables rate limiting
	Burst           int
	MaxRetries      uint64
	InitialInterval time.Duration // first backoff delay
	MaxBodyBytes    int64
	UserAgent       string
}

// Client performs rate limited JSON/HTML requests with retry.
type Client struct {
	http    *http.Client
	limiter *rate.Limiter
	opts    ClientOptions
}

// NewClient creates a Client.
func NewClient(optFns ...func(o *ClientOptions)) *Client {
	opts := ClientOptions{
		Burst:           1,
		MaxRetries:      defaultMaxRetries,
		InitialInterval: 500 * time.Millisecond,
		MaxBodyBytes:    defaultMaxBodyBytes,
		UserAgent:       defaultUserAgent,
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{Timeout: defaultTimeout}
	}

	limit := rate.Inf
	if opts.RatePerSecond > 0 {
		limit = rate.Limit(opts.RatePerSecond)
	}
	if opts.Burst < 1 {
		opts.Burst = 1
	}

	return &Client{
		http:    opts.HTTPClient,
		limiter: rate.NewLimiter(limit, opts.Burst),
		opts:    opts,
	}
}

// Do sends a request and returns the response body. Rate limiting is applied
// per attempt; 429 and 5xx responses as well as transport errors are retried.
func (c *Client) Do(ctx context.Context, method, url string, header http.Header, body []byte) ([]byte, error) {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = c.opts.InitialInterval

	policy := backoff.WithContext(backoff.WithMaxRetries(b, c.opts.MaxRetries), ctx)

	var out []byte

	err := backoff.Retry(func() error {
		if err := c.limiter.Wait(ctx); err != nil {
			return backoff.Permanent(err)
		}

		var rdr io.Reader
		if body != nil {
			rdr = bytes.NewReader(body)
		}

		req, err := http.NewRequestWithContext(ctx, method, url, rdr)
		if err != nil {
			return backoff.Permanent(fmt.Errorf("create request: %w", err))
		}
		for k, vs := range header {
			for _, v := range vs {
				req.Header.Add(k, v)
			}
		}
		if req.Header.Get("User-Agent") == "" {
			req.Header.Set("User-Agent", c.opts.UserAgent)
		}

		resp, err := c.http.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return backoff.Permanent(ctx.Err())
			}
			return err
		}
		defer resp.Body.Close()

		data, err := io.ReadAll(io.LimitReader(resp.Body, c.opts.MaxBodyBytes+1))
		if err != nil {
			return fmt.Errorf("read body: %w", err)
		}

		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			se := &StatusError{StatusCode: resp.StatusCode, Body: truncate(string(data), 512)}
			if se.Retryable() {
				return se
			}
			return backoff.Permanent(se)
		}

		if int64(len(data)) > c.opts.MaxBodyBytes {
			return backoff.Permanent(fmt.Errorf("response too large (exceeds %d bytes)", c.opts.MaxBodyBytes))
		}

		out = data
		return nil
	}, policy)
	if err != nil {
		return nil, err
	}

	return out, nil
}

// GetJSON issues a GET and decodes the JSON response into out.
func (c *Client) GetJSON(ctx context.Context, url string, header http.Header, out any) error {
	h := cloneHeader(header)
	h.Set("Accept", "application/json")

	data, err := c.Do(ctx, http.MethodGet, url, h, nil)
	if err != nil {
		return err
	}
	return decode(data, out)
}

// PostJSON encodes in as JSON, POSTs it and decodes the response into out.
func (c *Client) PostJSON(ctx context.Context, url string, header http.Header, in, out any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}

	h := cloneHeader(header)
	h.Set("Accept", "application/json")
	h.Set("Content-Type", "application/json")

	data, err := c.Do(ctx, http.MethodPost, url, h, body)
	if err != nil {
		return err
	}
	return decode(data, out)
}

func decode(data []byte, out any) error {
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func cloneHeader(h http.Header) http.Header {
	if h == nil {
		return http.Header{}
	}
	return h.Clone()
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

// IsStatus reports whether err is a StatusError with the given code.
func IsStatus(err error, code int) bool {
	var se *StatusError
	return errors.As(err, &se) && se.StatusCode == code
}
