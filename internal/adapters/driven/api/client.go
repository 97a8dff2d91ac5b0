// Package api provides the HTTP Resource Client for the support API.
package api

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
	"golang.org/x/time/rate"

	"github.com/custodia-labs/deskpilot/internal/core/domain"
	"github.com/custodia-labs/deskpilot/internal/core/ports/driven"
	"github.com/custodia-labs/deskpilot/internal/logger"
)

// Ensure Client implements the interface.
var _ driven.ResourceClient = (*Client)(nil)

// Default configuration values.
const (
	DefaultTimeout   = 30 * time.Second
	DefaultRateLimit = 10.0
	DefaultBurst     = 20

	// RequestIDHeader carries a fresh id per request for server-side tracing.
	RequestIDHeader = "X-Request-ID"

	// maxBodySize bounds how much of a reply is read.
	maxBodySize = 8 << 20
)

// Config holds configuration for the API client.
type Config struct {
	// BaseURL is the API root, e.g. http://localhost:5000/api.
	BaseURL string

	// Timeout bounds a single request (default: 30s).
	Timeout time.Duration

	// RateLimit is the sustained requests per second (default: 10).
	RateLimit float64

	// Burst is the maximum burst size (default: 20).
	Burst int

	// HTTPClient overrides the transport. Its Timeout is replaced by Timeout.
	HTTPClient *http.Client
}

// ConfigFromSettings maps API settings onto a client config.
func ConfigFromSettings(s domain.APISettings) Config {
	return Config{
		BaseURL:   s.BaseURL,
		Timeout:   s.Timeout,
		RateLimit: s.RateLimit,
		Burst:     s.Burst,
	}
}

// Client issues JSON requests against the support API. Requests share a
// token bucket so a refresh-all storm cannot flood the server. There is
// no caching and no retrying here; both belong to the query cache.
type Client struct {
	http    *http.Client
	base    *url.URL
	limiter *rate.Limiter
}

// NewClient creates a new API client.
func NewClient(cfg Config) (*Client, error) {
	base, err := url.Parse(strings.TrimSuffix(cfg.BaseURL, "/") + "/")
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("%w: api base url %q", domain.ErrInvalidInput, cfg.BaseURL)
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.RateLimit <= 0 {
		cfg.RateLimit = DefaultRateLimit
	}
	if cfg.Burst <= 0 {
		cfg.Burst = DefaultBurst
	}

	hc := &http.Client{}
	if cfg.HTTPClient != nil {
		copied := *cfg.HTTPClient
		hc = &copied
	}
	hc.Timeout = cfg.Timeout

	return &Client{
		http:    hc,
		base:    base,
		limiter: rate.NewLimiter(rate.Limit(cfg.RateLimit), cfg.Burst),
	}, nil
}

// BaseURL returns the API root requests are resolved against.
func (c *Client) BaseURL() string {
	return c.base.String()
}

// Do performs req and returns the body of a 2xx reply.
func (c *Client) Do(ctx context.Context, req driven.ResourceRequest) ([]byte, error) {
	method := req.Method
	if method == "" {
		method = http.MethodGet
	}
	fail := func(status int, err error) error {
		return &domain.RequestError{Method: method, Resource: req.Path, StatusCode: status, Err: err}
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fail(0, err)
	}

	target, err := c.resolve(req)
	if err != nil {
		return nil, fail(0, err)
	}

	var body io.Reader
	if req.Body != nil {
		payload, err := json.Marshal(req.Body)
		if err != nil {
			return nil, fail(0, fmt.Errorf("marshal request: %w", err))
		}
		body = bytes.NewReader(payload)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, fail(0, fmt.Errorf("create request: %w", err))
	}
	httpReq.Header.Set("Accept", "application/json")
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	requestID := uuid.NewString()
	httpReq.Header.Set(RequestIDHeader, requestID)

	start := time.Now()
	resp, err := c.http.Do(httpReq)
	if err != nil {
		logger.Warn("api: %s %s [%s]: %v", method, req.Path, requestID, err)
		return nil, fail(0, unwrapURLError(err))
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fail(0, fmt.Errorf("read response: %w", err))
	}
	logger.Debug("api: %s %s [%s] %d in %s", method, req.Path, requestID, resp.StatusCode, time.Since(start).Round(time.Millisecond))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var cause error
		if msg := errorMessage(data); msg != "" {
			cause = errors.New(msg)
		}
		return nil, fail(resp.StatusCode, cause)
	}
	return data, nil
}

func (c *Client) resolve(req driven.ResourceRequest) (string, error) {
	rel, err := url.Parse(strings.TrimPrefix(req.Path, "/"))
	if err != nil {
		return "", fmt.Errorf("invalid path %q: %w", req.Path, err)
	}
	u := c.base.ResolveReference(rel)
	if len(req.Query) > 0 {
		u.RawQuery = req.Query.Encode()
	}
	return u.String(), nil
}

// errorMessage extracts {"error": "..."} or {"message": "..."} from a reply.
func errorMessage(data []byte) string {
	var body struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if json.Unmarshal(data, &body) != nil {
		return ""
	}
	if body.Error != "" {
		return body.Error
	}
	return body.Message
}

// unwrapURLError drops the *url.Error wrapper, whose text repeats the URL.
func unwrapURLError(err error) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return urlErr.Err
	}
	return err
}
