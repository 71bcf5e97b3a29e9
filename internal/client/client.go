package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"carrental-client/internal/model"
)

// Config configures the rental backend client
type Config struct {
	BaseURL   string
	Timeout   time.Duration
	RateLimit float64 // requests per second, 0 disables limiting
	Retry     RetryConfig
	UserAgent string
}

// RetryConfig defines transport-level retry behavior for idempotent
// requests. MaxRetries 0 disables retrying.
type RetryConfig struct {
	MaxRetries     int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
	Multiplier     float64
}

// DefaultConfig returns the client defaults for a backend
func DefaultConfig(baseURL string) Config {
	return Config{
		BaseURL: baseURL,
		Timeout: 30 * time.Second,
		Retry: RetryConfig{
			MaxRetries:     0,
			InitialBackoff: 500 * time.Millisecond,
			MaxBackoff:     10 * time.Second,
			Multiplier:     2.0,
		},
		UserAgent: "carrental-client/1.0",
	}
}

// TokenSource provides the session token attached to requests
type TokenSource interface {
	Get(ctx context.Context) (string, error)
}

// CarClient handles communication with the rental backend
type CarClient struct {
	httpClient  *http.Client
	baseURL     string
	tokens      TokenSource
	rateLimiter *RateLimiter
	retryConfig RetryConfig
	userAgent   string
	logger      *slog.Logger
}

// NewCarClient creates a new backend client. tokens may be nil, in which
// case every call is anonymous.
func NewCarClient(cfg Config, tokens TokenSource, logger *slog.Logger) *CarClient {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Retry.Multiplier < 1 {
		cfg.Retry.Multiplier = 1
	}

	return &CarClient{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		tokens:      tokens,
		rateLimiter: NewRateLimiter(cfg.RateLimit),
		retryConfig: cfg.Retry,
		userAgent:   cfg.UserAgent,
		logger:      logger,
	}
}

type authMode int

const (
	authOptional authMode = iota // attach the token when one is stored
	authRequired                 // fail without a network call when no token is stored
	authNone                     // never attach a token
)

type request struct {
	op     string
	method string
	path   string
	query  url.Values
	body   any
	auth   authMode
}

func (r request) idempotent() bool {
	switch r.method {
	case http.MethodGet, http.MethodHead, http.MethodPut, http.MethodDelete:
		return true
	}
	return false
}

// do performs the request and decodes a JSON response into out. Every
// returned error is a *model.Error.
func (c *CarClient) do(ctx context.Context, req request, out any) error {
	token, err := c.token(ctx, req)
	if err != nil {
		return err
	}

	var payload []byte
	if req.body != nil {
		payload, err = json.Marshal(req.body)
		if err != nil {
			return &model.Error{Op: req.op, Kind: model.KindUnknown, Message: "failed to encode request", Err: err}
		}
	}

	backoff := c.retryConfig.InitialBackoff

	for attempt := 0; ; attempt++ {
		if err := c.rateLimiter.Wait(ctx); err != nil {
			return model.AsError(req.op, err)
		}

		status, body, err := c.send(ctx, req, token, payload)

		retryable := err != nil || status == http.StatusTooManyRequests ||
			status == http.StatusBadGateway || status == http.StatusServiceUnavailable ||
			status == http.StatusGatewayTimeout
		if retryable && req.idempotent() && attempt < c.retryConfig.MaxRetries && ctx.Err() == nil {
			c.logger.Warn("retrying request",
				"op", req.op,
				"attempt", attempt+1,
				"status", status,
				"error", err,
				"backoff", backoff,
			)
			if err := sleep(ctx, backoff); err != nil {
				return model.AsError(req.op, err)
			}
			backoff = min(time.Duration(float64(backoff)*c.retryConfig.Multiplier), c.retryConfig.MaxBackoff)
			continue
		}

		if err != nil {
			return model.AsError(req.op, err)
		}

		if status < 200 || status >= 300 {
			return statusError(req.op, status, body)
		}

		if out == nil || len(bytes.TrimSpace(body)) == 0 {
			return nil
		}

		if err := json.Unmarshal(body, out); err != nil {
			return &model.Error{Op: req.op, Kind: model.KindDecode, Status: status, Message: "failed to parse response", Err: err}
		}

		return nil
	}
}

func (c *CarClient) token(ctx context.Context, req request) (string, error) {
	if req.auth == authNone {
		return "", nil
	}

	var token string
	if c.tokens != nil {
		t, err := c.tokens.Get(ctx)
		if err != nil {
			return "", &model.Error{Op: req.op, Kind: model.KindUnknown, Message: "failed to read session token", Err: err}
		}
		token = t
	}

	if token == "" && req.auth == authRequired {
		return "", model.NewError(req.op, model.KindUnauthenticated, "sign in required")
	}

	return token, nil
}

func (c *CarClient) send(ctx context.Context, req request, token string, payload []byte) (int, []byte, error) {
	target := c.baseURL + req.path
	if len(req.query) > 0 {
		target += "?" + req.query.Encode()
	}

	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.method, target, body)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to create request: %w", err)
	}

	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("X-Request-ID", uuid.NewString())
	if payload != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if c.userAgent != "" {
		httpReq.Header.Set("User-Agent", c.userAgent)
	}
	if token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("failed to read response: %w", err)
	}

	c.logger.Debug("backend response",
		"op", req.op,
		"method", req.method,
		"path", req.path,
		"status", resp.StatusCode,
	)

	return resp.StatusCode, data, nil
}

// statusError builds the error for a non-2xx answer, keeping the server's
// message when the body is an ErrorResponse
func statusError(op string, status int, body []byte) *model.Error {
	msg := http.StatusText(status)

	var errResp model.ErrorResponse
	if err := json.Unmarshal(body, &errResp); err == nil {
		switch {
		case errResp.Message != "":
			msg = errResp.Message
		case errResp.Error != "":
			msg = errResp.Error
		}
	}

	return &model.Error{
		Op:      op,
		Kind:    model.StatusKind(status),
		Status:  status,
		Message: msg,
	}
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close closes the client
func (c *CarClient) Close() {
	c.rateLimiter.Stop()
}
