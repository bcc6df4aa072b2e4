package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sony/gobreaker"

	"github.com/unischedule/dashboard/internal/config"
	"github.com/unischedule/dashboard/internal/core/domain"
	"github.com/unischedule/dashboard/internal/core/ports"
)

const (
	apiPrefix       = "/api/"
	maxResponseBody = 10 << 20
	defaultTimeout  = 15 * time.Second
)

// Client talks JSON to the scheduling backend under /api. Credentials are
// fixed at construction; there is no process-wide request hook.
type Client struct {
	baseURL *url.URL
	http    *http.Client
	creds   Credentials
	cb      *gobreaker.CircuitBreaker
	metrics *Metrics
}

var _ ports.HealthProbe = (*Client)(nil)

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

func WithMetrics(m *Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

func WithCircuitBreaker(cb *gobreaker.CircuitBreaker) Option {
	return func(c *Client) { c.cb = cb }
}

func NewClient(baseURL string, creds Credentials, opts ...Option) (*Client, error) {
	if creds == nil {
		return nil, errors.New("rest: credentials are required, use Anonymous() for none")
	}
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("rest: invalid base url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("rest: base url %q must be absolute", baseURL)
	}
	c := &Client{
		baseURL: u,
		http:    &http.Client{Timeout: defaultTimeout},
		creds:   creds,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.cb == nil {
		c.cb = config.NewCircuitBreaker("Scheduling-API")
	}
	return c, nil
}

// Health calls GET /api/health.
func (c *Client) Health(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "health", nil, nil)
}

type response struct {
	status      int
	contentType string
	body        []byte
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	auth, err := c.creds.Authorization()
	if err != nil {
		return err
	}

	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("rest: encode %s body: %w", path, err)
		}
		body = bytes.NewReader(payload)
	}

	target := c.baseURL.String() + apiPrefix + path
	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return fmt.Errorf("rest: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}

	resource := strings.SplitN(path, "/", 2)[0]
	started := time.Now()

	// Server errors and transport failures count against the breaker;
	// 4xx responses are the caller's problem and pass through as results.
	result, err := c.cb.Execute(func() (interface{}, error) {
		resp, err := c.http.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
		if err != nil {
			return nil, err
		}
		r := &response{status: resp.StatusCode, contentType: resp.Header.Get("Content-Type"), body: data}
		if r.status >= http.StatusInternalServerError {
			return r, c.apiError(method, path, r)
		}
		return r, nil
	})

	var status int
	if r, ok := result.(*response); ok && r != nil {
		status = r.status
	}
	c.metrics.observe(resource, method, status, time.Since(started))

	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) {
			return apiErr
		}
		return &TransportError{Method: method, Path: apiPrefix + path, Err: err}
	}

	r := result.(*response)
	if r.status < 200 || r.status > 299 {
		return c.apiError(method, path, r)
	}
	if out == nil || len(bytes.TrimSpace(r.body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(r.body, out); err != nil {
		return fmt.Errorf("%w: %s %s: %v", domain.ErrUnexpectedShape, method, apiPrefix+path, err)
	}
	return nil
}

func (c *Client) apiError(method, path string, r *response) *APIError {
	return &APIError{
		Method:  method,
		Path:    apiPrefix + path,
		Status:  r.status,
		Message: errorMessage(r.contentType, r.body),
	}
}
