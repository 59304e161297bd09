// Package recommend is the HTTP client for the restaurant recommendation
// backend.
package recommend

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
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

const (
	recommendPath = "/api/recommend"
	feedbackPath  = "/api/feedback"

	// DefaultTimeout bounds one request so a hung backend cannot leave the
	// form disabled.
	DefaultTimeout = 30 * time.Second

	maxBodyBytes = 4 << 20
)

// Client talks to the backend. It makes exactly one attempt per call.
type Client struct {
	baseURL *url.URL
	http    *http.Client
	timeout time.Duration
	log     *zap.Logger
	reg     prometheus.Registerer
	metrics *clientMetrics
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithTimeout sets the per-request deadline. Zero or negative disables it.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// WithLogger enables request logging.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.log = l
		}
	}
}

// WithPrometheus registers request counters and durations on reg.
func WithPrometheus(reg prometheus.Registerer) Option {
	return func(c *Client) { c.reg = reg }
}

// New builds a client for the backend at baseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(strings.TrimSpace(baseURL), "/"))
	if err != nil {
		return nil, fmt.Errorf("recommend: parse base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("recommend: base url %q must be http or https", baseURL)
	}
	c := &Client{
		baseURL: u,
		http:    &http.Client{},
		timeout: DefaultTimeout,
		log:     zap.NewNop(),
	}
	for _, o := range opts {
		o(c)
	}
	if c.reg != nil {
		m, err := newClientMetrics(c.reg)
		if err != nil {
			return nil, err
		}
		c.metrics = m
	}
	return c, nil
}

// Recommend posts the filter criteria. requestID is sent as X-Request-ID; an
// empty value gets a fresh one.
func (c *Client) Recommend(ctx context.Context, req Request, requestID string) (resp Response, err error) {
	start := time.Now()
	defer func() { c.observe("recommend", start, err, resp.Empty()) }()

	if requestID == "" {
		requestID = uuid.NewString()
	}
	status, body, err := c.post(ctx, "recommend", recommendPath, req, requestID)
	if err != nil {
		return Response{}, err
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return Response{}, &RequestError{Op: "recommend", Status: status, Err: fmt.Errorf("decode response: %w", err)}
	}
	c.log.Debug("recommendations received",
		zap.String("request_id", requestID),
		zap.Int("count", resp.Count),
	)
	return resp, nil
}

// SendFeedback posts a rating for one recommended restaurant.
func (c *Client) SendFeedback(ctx context.Context, fb Feedback) (err error) {
	start := time.Now()
	defer func() { c.observe("feedback", start, err, false) }()

	_, _, err = c.post(ctx, "feedback", feedbackPath, fb, uuid.NewString())
	return err
}

func (c *Client) post(ctx context.Context, op, path string, payload any, requestID string) (int, []byte, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return 0, nil, &RequestError{Op: op, Err: fmt.Errorf("encode request: %w", err)}
	}
	endpoint := c.baseURL.JoinPath(path)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint.String(), bytes.NewReader(data))
	if err != nil {
		return 0, nil, &RequestError{Op: op, Err: err}
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("X-Request-ID", requestID)

	c.log.Debug("backend request",
		zap.String("op", op),
		zap.String("url", endpoint.String()),
		zap.String("request_id", requestID),
	)

	httpResp, err := c.http.Do(httpReq)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return 0, nil, &RequestError{Op: op, Err: fmt.Errorf("request timed out after %s: %w", c.timeout, context.DeadlineExceeded)}
		}
		return 0, nil, &RequestError{Op: op, Err: err}
	}
	defer httpResp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(httpResp.Body, maxBodyBytes))
	if err != nil {
		return httpResp.StatusCode, nil, &RequestError{Op: op, Status: httpResp.StatusCode, Err: fmt.Errorf("read response: %w", err)}
	}
	if httpResp.StatusCode < 200 || httpResp.StatusCode > 299 {
		var eb errorBody
		if err := json.Unmarshal(body, &eb); err != nil {
			return httpResp.StatusCode, nil, &RequestError{Op: op, Status: httpResp.StatusCode, Err: fmt.Errorf("decode error response: %w", err)}
		}
		return httpResp.StatusCode, nil, &RequestError{Op: op, Status: httpResp.StatusCode, Detail: eb.Detail}
	}
	return httpResp.StatusCode, body, nil
}

func (c *Client) observe(op string, start time.Time, err error, empty bool) {
	dur := time.Since(start)
	outcome := "ok"
	switch {
	case err != nil:
		outcome = "error"
	case empty:
		outcome = "empty"
	}
	if c.metrics != nil {
		c.metrics.requests.WithLabelValues(op, outcome).Inc()
		c.metrics.duration.WithLabelValues(op).Observe(dur.Seconds())
	}
	if err != nil {
		c.log.Warn("backend request failed",
			zap.String("op", op),
			zap.Duration("duration", dur),
			zap.Error(err),
		)
		return
	}
	c.log.Debug("backend request completed",
		zap.String("op", op),
		zap.String("outcome", outcome),
		zap.Duration("duration", dur),
	)
}
