// Package fetch retrieves raw marketplace pages over HTTP with a browser-like
// header set, bounded retries, per-host rate limiting and circuit breaking.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"

	"github.com/shopsmart/shopsmart-cli/internal/config"
	"github.com/shopsmart/shopsmart-cli/internal/resilience"
)

// ErrDisabled is returned when the process-wide fetch kill switch is off.
var ErrDisabled = errors.New("web fetch disabled by configuration")

// maxBodyBytes caps how much of a page body is read.
const maxBodyBytes = 2 << 20

// Browser-like headers reduce trivial bot blocking on marketplace pages.
var defaultHeaders = map[string]string{
	"User-Agent":      "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36",
	"Accept-Language": "en-US,en;q=0.9,ar;q=0.8",
}

// FetchError describes a failed page fetch. StatusCode is zero for
// network-level failures.
type FetchError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("fetch: HTTP %d for %s", e.StatusCode, e.URL)
	}
	return fmt.Sprintf("fetch: %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// Client fetches pages. Construct with NewClient; the zero value is not usable.
type Client struct {
	http  *http.Client
	cfg   config.FetchConfig
	retry resilience.RetryConfig

	breakers *resilience.HostBreakers

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

// Option configures the Client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithRetryConfig overrides the retry envelope (used by tests to avoid
// real backoff sleeps).
func WithRetryConfig(rc resilience.RetryConfig) Option {
	return func(c *Client) { c.retry = rc }
}

// NewClient creates a fetch client from configuration. The retry envelope is
// three attempts with backoff doubling from 1s, capped at 8s.
func NewClient(cfg config.FetchConfig, opts ...Option) *Client {
	timeout := time.Duration(cfg.TimeoutSecs) * time.Second
	if timeout <= 0 {
		timeout = 20 * time.Second
	}

	retry := resilience.DefaultRetryConfig()
	if cfg.MaxAttempts > 0 {
		retry.MaxAttempts = cfg.MaxAttempts
	}
	// Every fetch failure, HTTP status included, shares the same envelope.
	retry.ShouldRetry = func(err error) bool { return !errors.Is(err, ErrDisabled) }
	retry.OnRetry = resilience.RetryLogger("marketplace", "fetch")

	c := &Client{
		http: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 4,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		cfg:      cfg,
		retry:    retry,
		breakers: resilience.NewHostBreakers(resilience.DefaultCircuitBreakerConfig()),
		limiters: make(map[string]*rate.Limiter),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Fetch retrieves the raw document text for an absolute URL. The kill switch
// is checked before any network I/O. The error from the final attempt is
// returned after the retry envelope is exhausted.
func (c *Client) Fetch(ctx context.Context, rawURL string) (string, error) {
	if !c.cfg.Enabled {
		return "", &FetchError{URL: rawURL, Err: ErrDisabled}
	}

	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return "", &FetchError{URL: rawURL, Err: eris.Errorf("invalid url: %s", rawURL)}
	}
	host := strings.ToLower(u.Host)

	breaker := c.breakers.Get(host)
	return resilience.ExecuteVal(ctx, breaker, func(ctx context.Context) (string, error) {
		return resilience.DoVal(ctx, c.retry, func(ctx context.Context) (string, error) {
			if err := c.limiter(host).Wait(ctx); err != nil {
				return "", &FetchError{URL: rawURL, Err: err}
			}
			return c.doFetch(ctx, rawURL)
		})
	})
}

func (c *Client) doFetch(ctx context.Context, rawURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", &FetchError{URL: rawURL, Err: err}
	}
	for k, v := range defaultHeaders {
		req.Header.Set(k, v)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return "", &FetchError{URL: rawURL, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return "", &FetchError{URL: rawURL, Err: err}
	}

	if resp.StatusCode >= 400 {
		return "", &FetchError{URL: rawURL, StatusCode: resp.StatusCode, Err: eris.Errorf("status %d", resp.StatusCode)}
	}

	return string(body), nil
}

func (c *Client) limiter(host string) *rate.Limiter {
	c.mu.Lock()
	defer c.mu.Unlock()
	if l, ok := c.limiters[host]; ok {
		return l
	}
	rps := c.cfg.PerHostRPS
	if rps <= 0 {
		rps = 1
	}
	l := rate.NewLimiter(rate.Limit(rps), 2)
	c.limiters[host] = l
	return l
}
