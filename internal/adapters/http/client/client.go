// Package client talks to the HR backend over HTTP+JSON.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/okian/skillmatrix/pkg/logger"
	"github.com/okian/skillmatrix/pkg/metrics"
)

const (
	defaultTimeout  = 10 * time.Second
	maxResponseSize = 8 << 20
)

// Client is a thin, stateless wrapper around the backend endpoints.
// It never retries.
type Client struct {
	base    *url.URL
	http    *http.Client
	timeout time.Duration
	log     logger.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client. Its transport is
// wrapped for metrics.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithLogger sets the logger used for request tracing.
func WithLogger(l logger.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.log = l
		}
	}
}

// New creates a Client for the backend at baseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if !u.IsAbs() {
		return nil, fmt.Errorf("base url %q is not absolute", baseURL)
	}
	c := &Client{
		base:    u,
		http:    &http.Client{},
		timeout: defaultTimeout,
		log:     logger.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	hc := *c.http
	hc.Timeout = c.timeout
	hc.Transport = &metricsTransport{next: transportOrDefault(c.http.Transport)}
	c.http = &hc
	return c, nil
}

// BaseURL returns the backend root.
func (c *Client) BaseURL() string { return c.base.String() }

type opKey struct{}

// metricsTransport records every backend round trip under the operation name.
type metricsTransport struct {
	next http.RoundTripper
}

func (t *metricsTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()
	op, _ := req.Context().Value(opKey{}).(string)
	if op == "" {
		op = req.URL.Path
	}
	resp, err := t.next.RoundTrip(req)
	durationMs := float64(time.Since(start).Milliseconds())
	status := "error"
	if err == nil {
		status = strconv.Itoa(resp.StatusCode)
	}
	metrics.RecordAPIRequest(op, req.Method, status, durationMs)
	return resp, err
}

func transportOrDefault(rt http.RoundTripper) http.RoundTripper {
	if rt == nil {
		return http.DefaultTransport
	}
	return rt
}

// envelope is the common shape of every backend JSON answer.
type envelope struct {
	Success *bool          `json:"success"`
	Message string         `json:"message"`
	Error   string         `json:"error"`
	Errors  map[string]any `json:"errors"`
}

func (e envelope) message() string {
	if e.Message != "" {
		return e.Message
	}
	return e.Error
}

func (e envelope) fields() map[string]string {
	if len(e.Errors) == 0 {
		return nil
	}
	out := make(map[string]string, len(e.Errors))
	for k, v := range e.Errors {
		switch t := v.(type) {
		case string:
			out[k] = t
		case []any:
			parts := make([]string, 0, len(t))
			for _, p := range t {
				parts = append(parts, fmt.Sprint(p))
			}
			out[k] = strings.Join(parts, "; ")
		default:
			out[k] = fmt.Sprint(t)
		}
	}
	return out
}

// do sends a JSON request and decodes a JSON answer into out.
func (c *Client) do(ctx context.Context, op, method, path string, query url.Values, body, out any) error {
	raw, status, err := c.send(ctx, op, method, path, query, body, "application/json")
	if err != nil {
		return err
	}

	var env envelope
	parseErr := json.Unmarshal(raw, &env)

	if status < 200 || status > 299 {
		return classify(op, status, env, parseErr)
	}
	if parseErr != nil {
		return &APIError{Op: op, Status: status, Kind: ErrTransport, Err: fmt.Errorf("decode response: %w", parseErr)}
	}
	if env.Success != nil && !*env.Success {
		msg := env.message()
		if fields := env.fields(); len(fields) > 0 {
			return &APIError{Op: op, Status: status, Kind: ErrValidation, Message: msg, Fields: fields}
		}
		if msg == "" {
			msg = ErrApplication.Error()
		}
		return NewKind(op, ErrApplication, status, msg)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return &APIError{Op: op, Status: status, Kind: ErrTransport, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}

// download fetches a non-JSON body such as a CSV export.
func (c *Client) download(ctx context.Context, op, path string, query url.Values) ([]byte, error) {
	raw, status, err := c.send(ctx, op, http.MethodGet, path, query, nil, "*/*")
	if err != nil {
		return nil, err
	}
	if status < 200 || status > 299 {
		var env envelope
		parseErr := json.Unmarshal(raw, &env)
		return nil, classify(op, status, env, parseErr)
	}
	return raw, nil
}

func (c *Client) send(ctx context.Context, op, method, path string, query url.Values, body any, accept string) ([]byte, int, error) {
	u := c.base.JoinPath(path)
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, 0, Wrap(op, fmt.Errorf("marshal request body: %w", err))
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(context.WithValue(ctx, opKey{}, op), method, u.String(), reader)
	if err != nil {
		return nil, 0, Wrap(op, fmt.Errorf("create request: %w", err))
	}
	req.Header.Set("Accept", accept)
	req.Header.Set("X-Requested-With", "XMLHttpRequest")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Warn(ctx, "backend request failed",
			logger.String("op", op),
			logger.String("method", method),
			logger.Error(err))
		return nil, 0, WrapKind(op, ErrTransport, err)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, resp.StatusCode, &APIError{Op: op, Status: resp.StatusCode, Kind: ErrTransport, Err: fmt.Errorf("read response: %w", err)}
	}
	c.log.Debug(ctx, "backend request",
		logger.String("op", op),
		logger.String("method", method),
		logger.Int("status", resp.StatusCode),
		logger.Int("bytes", len(raw)))
	return raw, resp.StatusCode, nil
}

// classify maps a non-2xx answer onto an error kind.
func classify(op string, status int, env envelope, parseErr error) error {
	msg := env.message()
	fields := env.fields()
	if parseErr != nil || (msg == "" && len(fields) == 0) {
		return &APIError{Op: op, Status: status, Kind: ErrTransport,
			Err: errors.New(http.StatusText(status))}
	}
	switch {
	case status == http.StatusConflict:
		return NewKind(op, ErrConflict, status, msg)
	case len(fields) > 0:
		return &APIError{Op: op, Status: status, Kind: ErrValidation, Message: msg, Fields: fields}
	default:
		return NewKind(op, ErrApplication, status, msg)
	}
}
