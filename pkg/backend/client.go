package backend

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

const maxErrorBody = 256

// Client is the HTTP adapter towards the dispensadoras backend API.
// It performs GET requests, maps failures to TransportError, HTTPStatusError
// and DecodeError, and never retries: the caller owns the retry policy.
type Client struct {
	baseURL string
	http    *resty.Client
	breaker *gobreaker.CircuitBreaker
	logger  *zap.Logger
}

// ClientOption configures a Client
type ClientOption func(*Client)

// NewClient creates a client for the API rooted at baseURL (e.g. http://host:5000/api)
func NewClient(baseURL string, opts ...ClientOption) *Client {
	base := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	c := &Client{
		baseURL: base,
		http: resty.New().
			SetBaseURL(base).
			SetTimeout(10*time.Second).
			SetHeader("Accept", "application/json"),
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// WithTimeout sets the per-request timeout
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		if timeout > 0 {
			c.http.SetTimeout(timeout)
		}
	}
}

// WithHTTPClient swaps the underlying *http.Client (tests, custom transports).
// A timeout set earlier is kept unless hc carries its own.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		if hc.Timeout == 0 {
			hc.Timeout = c.http.GetClient().Timeout
		}
		c.http = resty.NewWithClient(hc).
			SetBaseURL(c.baseURL).
			SetHeader("Accept", "application/json").
			SetLogger(c.logger.Sugar())
	}
}

// WithLogger sets the logger used for request tracing and breaker transitions
func WithLogger(l *zap.Logger) ClientOption {
	return func(c *Client) {
		if l != nil {
			c.logger = l
			c.http.SetLogger(l.Sugar())
		}
	}
}

// WithBreaker enables a circuit breaker that opens after `failures`
// consecutive transport/5xx errors and stays open for openFor.
func WithBreaker(failures int, openFor time.Duration) ClientOption {
	return func(c *Client) {
		if failures < 1 {
			return
		}
		if openFor <= 0 {
			openFor = 10 * time.Second
		}
		c.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:    "backend",
			Timeout: openFor,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= uint32(failures)
			},
			IsSuccessful: breakerSuccess,
			OnStateChange: func(name string, from, to gobreaker.State) {
				c.logger.Warn("breaker state change",
					zap.String("breaker", name),
					zap.String("from", from.String()),
					zap.String("to", to.String()),
				)
			},
		})
	}
}

// 4xx and malformed bodies are answers from a live backend: they do not trip
// the breaker. Neither does a request the caller cancelled.
func breakerSuccess(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return true
	}
	if code := StatusCode(err); code > 0 && code < 500 {
		return true
	}
	return IsDecode(err)
}

// BaseURL returns the normalised API root
func (c *Client) BaseURL() string { return c.baseURL }

// BreakerState returns the breaker state name, or "disabled".
func (c *Client) BreakerState() string {
	if c.breaker == nil {
		return "disabled"
	}
	return c.breaker.State().String()
}

// Request performs GET path?query and decodes the JSON body into out.
func (c *Client) Request(ctx context.Context, path string, query url.Values, out any) error {
	path = "/" + strings.TrimLeft(path, "/")

	var (
		body []byte
		err  error
	)
	if c.breaker != nil {
		var res any
		res, err = c.breaker.Execute(func() (any, error) {
			return c.do(ctx, path, query)
		})
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return &TransportError{Path: path, Err: err}
		}
		if b, ok := res.([]byte); ok {
			body = b
		}
	} else {
		body, err = c.do(ctx, path, query)
	}
	if err != nil {
		return err
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return &DecodeError{Path: path, Err: err}
	}
	return nil
}

func (c *Client) do(ctx context.Context, path string, query url.Values) ([]byte, error) {
	req := c.http.R().SetContext(ctx)
	if len(query) > 0 {
		req.SetQueryParamsFromValues(query)
	}

	start := time.Now()
	resp, err := req.Get(path)
	if err != nil {
		return nil, &TransportError{Path: path, Err: err}
	}
	c.logger.Debug("backend request",
		zap.String("path", path),
		zap.Int("status", resp.StatusCode()),
		zap.Duration("elapsed", time.Since(start)),
	)

	if !resp.IsSuccess() {
		msg := strings.TrimSpace(string(resp.Body()))
		if len(msg) > maxErrorBody {
			msg = msg[:maxErrorBody]
		}
		return nil, &HTTPStatusError{Path: path, Code: resp.StatusCode(), Body: msg}
	}
	return resp.Body(), nil
}
