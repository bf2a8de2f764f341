package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/fjod/yofoo_cart/internal/storage"
	"github.com/fjod/yofoo_cart/pkg/circuitbreaker"
	"github.com/sony/gobreaker/v2"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const (
	DefaultTimeout = 10 * time.Second
	maxBodySize    = 4 << 20
)

type response struct {
	status int
	body   []byte
}

// Client talks to the REST backend. Every call gets its own timeout and goes
// through a circuit breaker that only counts transport and 5xx failures.
type Client struct {
	baseURL string
	http    *http.Client
	timeout time.Duration
	session storage.Storage
	breaker *gobreaker.CircuitBreaker[response]
	log     *slog.Logger
	now     func() time.Time
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// WithSessionStore reads the auth cookie blob from s on every request.
func WithSessionStore(s storage.Storage) Option {
	return func(c *Client) { c.session = s }
}

func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.log = l }
}

func WithBreaker(cfg circuitbreaker.Config) Option {
	return func(c *Client) {
		cfg.IsSuccessful = breakerSuccess
		c.breaker = circuitbreaker.New[response](cfg)
	}
}

func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)},
		timeout: DefaultTimeout,
		log:     slog.Default(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.breaker == nil {
		cfg := circuitbreaker.DefaultConfig("backend")
		cfg.Logger = c.log
		WithBreaker(cfg)(c)
	}
	return c
}

func breakerSuccess(err error) bool {
	var apiErr *APIError
	return err == nil || (errors.As(err, &apiErr) && apiErr.IsClientError())
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var body []byte
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshal %s %s request failed: %w", method, path, err)
		}
		body = b
	}

	res, err := c.breaker.Execute(func() (response, error) {
		return c.send(ctx, method, path, body)
	})
	if err != nil {
		if circuitbreaker.IsOpen(err) {
			return fmt.Errorf("%w: %s %s: %v", ErrNetwork, method, path, err)
		}
		return err
	}

	if out == nil || len(res.body) == 0 {
		return nil
	}
	if err := json.Unmarshal(res.body, out); err != nil {
		return fmt.Errorf("decode %s %s response failed: %w", method, path, err)
	}
	return nil
}

func (c *Client) send(ctx context.Context, method, path string, body []byte) (response, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return response{}, fmt.Errorf("build %s %s request failed: %w", method, path, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if cookie := c.sessionCookie(ctx); cookie != "" {
		req.Header.Set("Cookie", cookie)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return response{}, fmt.Errorf("%w: %s %s", ErrTimeout, method, path)
		}
		return response{}, fmt.Errorf("%w: %s %s: %v", ErrNetwork, method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return response{}, fmt.Errorf("%w: reading %s %s: %v", ErrNetwork, method, path, err)
	}

	if resp.StatusCode == http.StatusUnauthorized {
		c.log.WarnContext(ctx, "session expired or invalid", "path", path)
	}
	if resp.StatusCode >= 400 {
		return response{}, &APIError{StatusCode: resp.StatusCode, Message: errorMessage(data)}
	}
	return response{status: resp.StatusCode, body: data}, nil
}
