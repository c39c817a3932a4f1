// Package relay forwards outbound messages to the external workflow service.
//
// A call resolves the environment, short-circuits to a queued echo when real
// delivery is not configured, and otherwise POSTs a signed JSON body with a
// bounded number of retries and exponential backoff.
package relay

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/jmehdipour/workflow-relay/internal/environment"
	"github.com/jmehdipour/workflow-relay/internal/metrics"
	"github.com/jmehdipour/workflow-relay/internal/model"
	"github.com/jmehdipour/workflow-relay/internal/util"
	"go.uber.org/zap"
)

const (
	DefaultTimeout        = 10 * time.Second
	DefaultRetries        = 2
	DefaultInitialBackoff = 500 * time.Millisecond

	maxResponseBody = 1 << 20
)

type Config struct {
	APIKey         string
	WebhookSecret  string
	Timeout        time.Duration
	InitialBackoff time.Duration

	// Retries is the number of extra attempts. The zero value means no
	// retries; a negative value selects DefaultRetries. config.Load supplies
	// DefaultRetries from defaults.yaml.
	Retries int

	// BreakerThreshold 0 disables the per-environment circuit breaker.
	BreakerThreshold int
	BreakerOpenFor   time.Duration
}

type Client struct {
	cfg      Config
	resolver *environment.Resolver
	http     *http.Client
	log      *zap.Logger
	sleep    func(context.Context, time.Duration) error
	newID    func() string

	mu       sync.Mutex
	breakers map[string]*Breaker
}

type ClientOption func(*Client)

func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) { c.http = hc }
}

// WithSleep replaces the backoff sleep.
func WithSleep(fn func(context.Context, time.Duration) error) ClientOption {
	return func(c *Client) { c.sleep = fn }
}

func WithIDFunc(fn func() string) ClientOption {
	return func(c *Client) { c.newID = fn }
}

func NewClient(cfg Config, resolver *environment.Resolver, log *zap.Logger, opts ...ClientOption) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.Retries < 0 {
		cfg.Retries = DefaultRetries
	}
	if cfg.InitialBackoff <= 0 {
		cfg.InitialBackoff = DefaultInitialBackoff
	}
	if log == nil {
		log = zap.NewNop()
	}

	c := &Client{
		cfg:      cfg,
		resolver: resolver,
		http:     &http.Client{},
		log:      log,
		sleep:    sleepCtx,
		newID:    util.NewKey,
		breakers: make(map[string]*Breaker),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// CallOption tunes a single Relay call.
type CallOption func(*callOptions)

type callOptions struct {
	environment string
	timeout     time.Duration
	retries     int
}

// WithEnvironment forces the environment instead of resolving it from config.
func WithEnvironment(env string) CallOption {
	return func(o *callOptions) { o.environment = env }
}

// WithTimeout bounds each attempt, not the whole call.
func WithTimeout(d time.Duration) CallOption {
	return func(o *callOptions) {
		if d > 0 {
			o.timeout = d
		}
	}
}

// WithRetries sets the number of extra attempts; total attempts = n+1.
func WithRetries(n int) CallOption {
	return func(o *callOptions) {
		if n >= 0 {
			o.retries = n
		}
	}
}

// Relay delivers msg and never returns an error: every outcome is a model.Result.
func (c *Client) Relay(ctx context.Context, path string, msg model.OutboundMessage, opts ...CallOption) model.Result {
	o := callOptions{timeout: c.cfg.Timeout, retries: c.cfg.Retries}
	for _, opt := range opts {
		opt(&o)
	}

	env := c.resolver.Resolve(o.environment)
	payload := msg.Payload(env)

	if !c.resolver.Configured() {
		res := model.Queued(c.newID(), env, payload)
		c.log.Info("workflow service not configured, echoing message",
			zap.String("env", env),
			zap.String("id", res.ID),
			zap.String("template", msg.Template),
		)
		record(env, res)
		return res
	}

	body, err := encodeBody(payload)
	if err != nil {
		res := model.FailedNoResponse(model.ErrorInvalidPayload, err.Error())
		record(env, res)
		return res
	}

	br := c.breaker(env)
	if br != nil && !br.Allow() {
		res := model.FailedNoResponse(model.ErrorCircuitOpen, fmt.Sprintf("circuit open for environment %s", env))
		c.log.Warn("workflow circuit open", zap.String("env", env))
		record(env, res)
		return res
	}

	res := c.deliver(ctx, c.target(env, path), c.headers(env, body), body, env, o)
	if br != nil {
		if transient(res) {
			br.Failure()
		} else {
			br.Success()
		}
	}
	record(env, res)
	return res
}

func (c *Client) deliver(ctx context.Context, url string, h http.Header, body []byte, env string, o callOptions) model.Result {
	attempts := o.retries + 1
	backoff := c.cfg.InitialBackoff

	for attempt := 1; attempt <= attempts; attempt++ {
		last := attempt == attempts

		status, resp, err := c.post(ctx, url, h, body, o.timeout)
		if err != nil {
			metrics.RelayAttemptsTotal.WithLabelValues(env, "network_error").Inc()
			c.log.Warn("workflow attempt failed",
				zap.String("env", env),
				zap.Int("attempt", attempt),
				zap.Error(err),
			)
			if !last {
				if err = c.sleep(ctx, backoff); err == nil {
					backoff *= 2
					continue
				}
			}
			return model.FailedNoResponse(model.ErrorNetwork, err.Error())
		}

		switch {
		case status/100 == 2:
			metrics.RelayAttemptsTotal.WithLabelValues(env, "success").Inc()
			trimmed := bytes.TrimSpace(resp)
			if len(trimmed) > 0 && !json.Valid(trimmed) {
				return model.Failed(status, model.ErrorInvalidResponse, string(resp))
			}
			return model.Delivered(trimmed)

		case retryableStatus(status) && !last:
			metrics.RelayAttemptsTotal.WithLabelValues(env, "retryable").Inc()
			c.log.Warn("workflow attempt returned retryable status",
				zap.String("env", env),
				zap.Int("attempt", attempt),
				zap.Int("status", status),
				zap.Duration("backoff", backoff),
			)
			if err := c.sleep(ctx, backoff); err != nil {
				return model.Failed(status, model.ErrorWorkflowFailed, string(resp))
			}
			backoff *= 2

		default:
			metrics.RelayAttemptsTotal.WithLabelValues(env, "rejected").Inc()
			return model.Failed(status, model.ErrorWorkflowFailed, string(resp))
		}
	}

	// attempts >= 1, so the loop always returns
	return model.FailedNoResponse(model.ErrorNetwork, "no attempt made")
}

func (c *Client) post(ctx context.Context, url string, h http.Header, body []byte, timeout time.Duration) (int, []byte, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return 0, nil, err
	}
	req.Header = h.Clone()

	res, err := c.http.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer res.Body.Close()

	b, err := io.ReadAll(io.LimitReader(res.Body, maxResponseBody))
	if err != nil {
		return 0, nil, fmt.Errorf("read response: %w", err)
	}
	return res.StatusCode, b, nil
}

// headers are built once per logical call, so the Idempotency-Key is the
// same on every retry.
func (c *Client) headers(env string, body []byte) http.Header {
	h := make(http.Header, 6)
	h.Set("Authorization", "Bearer "+c.cfg.APIKey)
	h.Set("Content-Type", "application/json")
	h.Set("X-Env", env)
	h.Set("Idempotency-Key", c.newID())
	if c.cfg.WebhookSecret != "" {
		h.Set("X-Signature", Sign(c.cfg.WebhookSecret, body))
	}
	return h
}

func (c *Client) target(env, path string) string {
	url := c.resolver.Endpoint(env)
	if path == "" {
		return url
	}
	return strings.TrimRight(url, "/") + "/" + strings.TrimLeft(path, "/")
}

func (c *Client) breaker(env string) *Breaker {
	if c.cfg.BreakerThreshold <= 0 {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	b, ok := c.breakers[env]
	if !ok {
		b = NewBreaker(c.cfg.BreakerThreshold, c.cfg.BreakerOpenFor)
		c.breakers[env] = b
	}
	return b
}

func retryableStatus(status int) bool {
	switch status {
	case http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	}
	return false
}

// transient results count against the breaker; a 4xx means the service is up.
func transient(r model.Result) bool {
	if r.Kind != model.ResultFailed {
		return false
	}
	if r.Error == model.ErrorNetwork {
		return true
	}
	return r.Status != nil && retryableStatus(*r.Status)
}

func record(env string, r model.Result) {
	label := r.Kind.String()
	if r.Kind == model.ResultFailed {
		label = r.Error.String()
	}
	metrics.RelayResultsTotal.WithLabelValues(env, label).Inc()
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
