// Package backend talks to the workout-program REST API.
//
// Every failure leaving this package is an *apperror.AppError: HTTP-level
// failures carry the response status and body, transport failures are
// NetworkFailure.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strings"
	"time"

	"fitdash/internal/adapters/http/perf"
	"fitdash/internal/adapters/http/requestid"
	"fitdash/internal/domain/apperror"
)

// DefaultSlowThreshold is the default duration above which a backend call logs at WARN.
const DefaultSlowThreshold = 500 * time.Millisecond

// maxErrorTextLen bounds how much of a plain-text error body becomes the message.
const maxErrorTextLen = 200

// Client is a thin JSON-over-HTTP wrapper around the backend API.
// Safe for concurrent use.
type Client struct {
	baseURL       string
	httpClient    *http.Client
	timeout       time.Duration
	collector     *perf.Collector
	slowThreshold time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithTimeout bounds every call; zero means only the caller's context applies.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// WithCollector records every call into the perf ring buffer.
func WithCollector(collector *perf.Collector) Option {
	return func(c *Client) { c.collector = collector }
}

// WithSlowThreshold sets the duration above which a call logs slow_backend_call.
func WithSlowThreshold(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.slowThreshold = d
		}
	}
}

// New creates a Client for the API rooted at baseURL.
// PRE: baseURL is an absolute http(s) URL
// POST: Returns a ready client; no network traffic is issued
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:       strings.TrimRight(baseURL, "/"),
		httpClient:    http.DefaultClient,
		slowThreshold: DefaultSlowThreshold,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the API root the client was built with.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Get issues a GET and decodes the response into T.
func Get[T any](ctx context.Context, c *Client, path, token string) (T, error) {
	return call[T](ctx, c, http.MethodGet, path, nil, token)
}

// Post issues a POST with body serialized as JSON (nil sends no body).
func Post[T any](ctx context.Context, c *Client, path string, body any, token string) (T, error) {
	return call[T](ctx, c, http.MethodPost, path, body, token)
}

// Put issues a PUT with body serialized as JSON (nil sends no body).
func Put[T any](ctx context.Context, c *Client, path string, body any, token string) (T, error) {
	return call[T](ctx, c, http.MethodPut, path, body, token)
}

// Delete issues a DELETE and decodes the response into T.
func Delete[T any](ctx context.Context, c *Client, path, token string) (T, error) {
	return call[T](ctx, c, http.MethodDelete, path, nil, token)
}

// response is a fully read backend reply.
type response struct {
	status int
	isJSON bool
	body   []byte
}

// call performs one request attempt and decodes a 2xx body into T.
// PRE: path is backend-relative; token may be empty
// POST: Returns the decoded value, or an *apperror.AppError
func call[T any](ctx context.Context, c *Client, method, path string, body any, token string) (T, error) {
	var out T

	resp, err := c.do(ctx, method, path, body, token)
	if err != nil {
		return out, err
	}

	if resp.status < 200 || resp.status >= 300 {
		payload := resp.payload()
		return out, apperror.FromStatus(resp.status, errorMessage(resp.status, payload), payload)
	}

	if raw, ok := any(&out).(*string); ok && !resp.isJSON {
		*raw = string(resp.body)
		return out, nil
	}
	if len(bytes.TrimSpace(resp.body)) == 0 {
		return out, nil
	}
	if !resp.isJSON {
		return out, apperror.FromStatus(http.StatusBadGateway, "unexpected non-JSON response from backend", string(resp.body))
	}
	if err := json.Unmarshal(resp.body, &out); err != nil {
		return out, apperror.FromStatus(http.StatusBadGateway, "invalid JSON response from backend", string(resp.body))
	}
	return out, nil
}

// do sends the request and reads the whole response.
// Transport and read failures come back as NetworkFailure.
func (c *Client) do(ctx context.Context, method, path string, body any, token string) (response, error) {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}

	var bodyReader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return response{}, apperror.ServerFailure(fmt.Sprintf("encode request body: %v", err))
		}
		bodyReader = bytes.NewReader(encoded)
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return response{}, apperror.ServerFailure(fmt.Sprintf("build request: %v", err))
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if id := requestid.FromContext(ctx); id != "" {
		req.Header.Set(requestid.Header, id)
	}

	start := time.Now()
	status := 0
	defer func() { c.observe(ctx, method, path, status, start) }()

	res, err := c.httpClient.Do(req)
	if err != nil {
		return response{}, apperror.NetworkFailure(err)
	}
	defer res.Body.Close()

	data, err := io.ReadAll(res.Body)
	if err != nil {
		return response{}, apperror.NetworkFailure(err)
	}
	status = res.StatusCode

	return response{
		status: res.StatusCode,
		isJSON: isJSONContentType(res.Header.Get("Content-Type")),
		body:   data,
	}, nil
}

// observe logs and records the timing of one call.
func (c *Client) observe(ctx context.Context, method, path string, status int, start time.Time) {
	elapsed := time.Since(start)
	durationMs := float64(elapsed.Microseconds()) / 1000.0

	attrs := []any{
		"request_id", requestid.FromContext(ctx),
		"method", method,
		"path", path,
		"status", status,
		"duration_ms", durationMs,
	}
	if elapsed >= c.slowThreshold {
		slog.Warn("slow_backend_call", attrs...)
	} else {
		slog.Debug("backend_call", attrs...)
	}

	if c.collector != nil {
		c.collector.Record(perf.Entry{
			Kind:       perf.KindBackend,
			Path:       method + " " + path,
			StatusCode: status,
			DurationMs: durationMs,
			Timestamp:  start,
		})
	}
}

// payload returns the decoded JSON body, or the raw text when the body is not JSON.
// An empty body yields nil.
func (r response) payload() any {
	if len(bytes.TrimSpace(r.body)) == 0 {
		return nil
	}
	if r.isJSON {
		var v any
		if err := json.Unmarshal(r.body, &v); err == nil {
			return v
		}
	}
	return string(r.body)
}

func isJSONContentType(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return mediaType == "application/json" || strings.HasSuffix(mediaType, "+json")
}

// errorMessage picks the most useful human-readable message for a failed call.
func errorMessage(status int, payload any) string {
	switch p := payload.(type) {
	case map[string]any:
		for _, key := range []string{"error", "message", "title", "detail"} {
			if s, ok := p[key].(string); ok && strings.TrimSpace(s) != "" {
				return s
			}
		}
	case string:
		text := strings.TrimSpace(p)
		if text != "" && len(text) <= maxErrorTextLen && !strings.ContainsAny(text, "<\n") {
			return text
		}
	}
	return "API Error: " + http.StatusText(status)
}
