package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"cropsense/internal/logging"
	"cropsense/internal/metrics"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const maxBodyBytes = 4 << 20

// Client is a client for the advisory backend REST API
type Client struct {
	baseURL string
	client  *http.Client
	logger  *zap.Logger

	mu    sync.RWMutex
	token string
}

// NewClient creates a new backend client. A zero timeout disables the request cap.
func NewClient(baseURL string, timeout time.Duration, logger *zap.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
		logger:  logging.OrNop(logger),
	}
}

// BaseURL returns the backend root the client talks to
func (c *Client) BaseURL() string { return c.baseURL }

// SetToken attaches "Authorization: Bearer <token>" to every later request
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

// ClearToken stops sending the Authorization header
func (c *Client) ClearToken() {
	c.mu.Lock()
	c.token = ""
	c.mu.Unlock()
}

// Token returns the bearer token currently attached, if any
func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// BuildURL joins path and query onto the base URL
func (c *Client) BuildURL(path string, query url.Values) string {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	return u
}

type validator interface {
	Validate() error
}

// request describes one call; endpoint is the metrics/log label
type request struct {
	endpoint    string
	method      string
	path        string
	query       url.Values
	body        []byte
	contentType string
}

func (c *Client) getJSON(ctx context.Context, endpoint, path string, query url.Values, out interface{}) error {
	return c.do(ctx, request{endpoint: endpoint, method: http.MethodGet, path: path, query: query}, out)
}

func (c *Client) postJSON(ctx context.Context, endpoint, path string, in, out interface{}) error {
	body, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("%s: failed to encode request: %w", endpoint, err)
	}
	return c.do(ctx, request{
		endpoint:    endpoint,
		method:      http.MethodPost,
		path:        path,
		body:        body,
		contentType: "application/json",
	}, out)
}

func (c *Client) postForm(ctx context.Context, endpoint, path string, form url.Values, out interface{}) error {
	return c.do(ctx, request{
		endpoint:    endpoint,
		method:      http.MethodPost,
		path:        path,
		body:        []byte(form.Encode()),
		contentType: "application/x-www-form-urlencoded",
	}, out)
}

// do sends one request and decodes a 2xx JSON body into out.
// Failures are *NetworkError, *StatusError or *MalformedError. There are no retries.
func (c *Client) do(ctx context.Context, r request, out interface{}) error {
	var body io.Reader
	if r.body != nil {
		body = bytes.NewReader(r.body)
	}
	req, err := http.NewRequestWithContext(ctx, r.method, c.BuildURL(r.path, r.query), body)
	if err != nil {
		return fmt.Errorf("%s: failed to build request: %w", r.endpoint, err)
	}
	requestID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	if r.contentType != "" {
		req.Header.Set("Content-Type", r.contentType)
	}
	if tok := c.Token(); tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		metrics.RecordAPIRequest(r.endpoint, "error", time.Since(start))
		c.logger.Debug("backend request failed",
			zap.String("endpoint", r.endpoint),
			zap.String("request_id", requestID),
			zap.Error(err))
		return &NetworkError{Endpoint: r.endpoint, Timeout: isTimeout(err), Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	elapsed := time.Since(start)
	metrics.RecordAPIRequest(r.endpoint, strconv.Itoa(resp.StatusCode), elapsed)
	c.logger.Debug("backend request",
		zap.String("endpoint", r.endpoint),
		zap.String("method", r.method),
		zap.String("request_id", requestID),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", elapsed))
	if err != nil {
		return &NetworkError{Endpoint: r.endpoint, Timeout: isTimeout(err), Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &StatusError{Endpoint: r.endpoint, Code: resp.StatusCode, Message: errorMessage(resp.StatusCode, data)}
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return &MalformedError{Endpoint: r.endpoint, Err: err}
	}
	if v, ok := out.(validator); ok {
		if err := v.Validate(); err != nil {
			return &MalformedError{Endpoint: r.endpoint, Err: err}
		}
	}
	return nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}
