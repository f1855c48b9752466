// Copyright 2026 CareOps
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package transport

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/careops/notebridge/internal/log"
)

const defaultTimeout = 30 * time.Second

// Config configures a Client.
type Config struct {
	// Timeout is the default per-request timeout (default: 30s).
	Timeout time.Duration

	// UserAgent is sent on every request when non-empty.
	UserAgent string

	// RequestsPerSecond limits the outbound request rate. Zero disables
	// rate limiting. Vendor portals lock accounts on rapid login bursts,
	// so adapters normally run with a limiter.
	RequestsPerSecond float64

	// Logger receives request/response logs. Nil disables logging.
	Logger *slog.Logger
}

// Client executes requests over HTTP with cookie injection, timeout
// enforcement, and redirect control.
type Client struct {
	follow   *http.Client
	noFollow *http.Client
	timeout  time.Duration
	agent    string
	limiter  *rate.Limiter
	logger   *slog.Logger
}

// NewClient creates a transport client.
func NewClient(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	base := &http.Transport{
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}

	var limiter *rate.Limiter
	if cfg.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1)
	}

	return &Client{
		follow: &http.Client{Transport: base},
		noFollow: &http.Client{
			Transport: base,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
		timeout: timeout,
		agent:   cfg.UserAgent,
		limiter: limiter,
		logger:  cfg.Logger,
	}
}

// Do executes the request and returns the normalized response.
// HTTP responses of any status are returned as a Response; an error is
// returned only for invalid requests and network-level failures.
func (c *Client) Do(ctx context.Context, req *Request) (*Response, error) {
	if err := validate(req); err != nil {
		return nil, &Error{
			Type:      ErrorTypeInvalidReq,
			Message:   fmt.Sprintf("invalid request: %s", err.Error()),
			Retryable: false,
			Cause:     err,
		}
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, &Error{
				Type:      ErrorTypeCancelled,
				Message:   "rate limit wait cancelled",
				Retryable: false,
				Cause:     err,
			}
		}
	}

	timeout := req.Timeout
	if timeout <= 0 {
		timeout = c.timeout
	}
	reqCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	httpReq, err := c.build(reqCtx, req)
	if err != nil {
		return nil, &Error{
			Type:      ErrorTypeInvalidReq,
			Message:   fmt.Sprintf("failed to build request: %s", err.Error()),
			Retryable: false,
			Cause:     err,
		}
	}

	start := time.Now()
	var logger *slog.Logger
	if c.logger != nil {
		logger = log.WithRequestID(c.logger, uuid.NewString())
		logger.Debug("request",
			slog.String("method", req.Method),
			slog.String("url", sanitizeURL(req.URL)))
	}

	client := c.noFollow
	if req.FollowRedirects {
		client = c.follow
	}

	httpResp, err := client.Do(httpReq)
	if err != nil {
		return nil, c.classify(ctx, err, timeout)
	}
	defer httpResp.Body.Close()

	body, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, &Error{
			Type:      ErrorTypeConnection,
			Message:   fmt.Sprintf("failed to read response body: %s", err.Error()),
			Retryable: true,
			Cause:     err,
		}
	}

	resp := &Response{
		Status:     httpResp.StatusCode,
		StatusText: strings.TrimSpace(strings.TrimPrefix(httpResp.Status, fmt.Sprintf("%d", httpResp.StatusCode))),
		Headers:    httpResp.Header,
		Body:       body,
		Cookies:    reduceSetCookies(httpResp.Header),
	}

	if logger != nil {
		logger.Debug("response",
			slog.Int(log.StatusCodeKey, resp.Status),
			slog.Int64(log.DurationKey, time.Since(start).Milliseconds()),
			slog.Any("set_cookies", sanitizeCookies(resp.Cookies)))
	}

	return resp, nil
}

// sanitizeCookies redacts cookie values for logging, keeping the names.
func sanitizeCookies(cookies []string) []string {
	if len(cookies) == 0 {
		return nil
	}
	out := make([]string, len(cookies))
	for i, ck := range cookies {
		out[i] = log.SanitizeCookie(ck)
	}
	return out
}

func validate(req *Request) error {
	if req.Method == "" {
		return fmt.Errorf("method is required")
	}
	if req.URL == "" {
		return fmt.Errorf("URL is required")
	}
	parsed, err := url.Parse(req.URL)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("URL scheme must be http or https, got %q", parsed.Scheme)
	}
	return nil
}

func (c *Client) build(ctx context.Context, req *Request) (*http.Request, error) {
	var bodyReader io.Reader
	if req.Body != nil {
		bodyReader = bytes.NewReader(req.Body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, req.URL, bodyReader)
	if err != nil {
		return nil, err
	}

	if c.agent != "" {
		httpReq.Header.Set("User-Agent", c.agent)
	}
	for key, value := range req.Headers {
		httpReq.Header.Set(key, value)
	}

	// Pre-encoded payloads keep their own content type; everything else
	// with a body defaults to JSON.
	if req.Body != nil && httpReq.Header.Get("Content-Type") == "" {
		if req.ContentType != "" {
			httpReq.Header.Set("Content-Type", req.ContentType)
		} else {
			httpReq.Header.Set("Content-Type", "application/json")
		}
	}

	if len(req.Cookies) > 0 {
		httpReq.Header.Set("Cookie", strings.Join(req.Cookies, "; "))
	}

	return httpReq, nil
}

// classify maps low-level HTTP client errors onto transport error types.
// A deadline hit on the per-request context is a timeout; a cancelled
// parent context is a cancellation and never retried.
func (c *Client) classify(ctx context.Context, err error, timeout time.Duration) *Error {
	if ctx.Err() != nil {
		return &Error{
			Type:      ErrorTypeCancelled,
			Message:   "request cancelled",
			Retryable: false,
			Cause:     err,
		}
	}

	if isTimeout(err) {
		return &Error{
			Type:      ErrorTypeTimeout,
			Message:   fmt.Sprintf("request timeout after %v", timeout),
			Retryable: true,
			Cause:     err,
		}
	}

	return &Error{
		Type:      ErrorTypeConnection,
		Message:   fmt.Sprintf("connection error: %s", err.Error()),
		Retryable: true,
		Cause:     err,
	}
}

func isTimeout(err error) bool {
	if netErr, ok := err.(net.Error); ok && netErr.Timeout() {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "context deadline exceeded") ||
		strings.Contains(msg, "Client.Timeout exceeded")
}

// reduceSetCookies extracts all Set-Cookie headers and reduces each to
// its "name=value" prefix, preserving header order.
func reduceSetCookies(h http.Header) []string {
	values := h.Values("Set-Cookie")
	if len(values) == 0 {
		return nil
	}
	cookies := make([]string, 0, len(values))
	for _, v := range values {
		if idx := strings.IndexByte(v, ';'); idx >= 0 {
			v = v[:idx]
		}
		v = strings.TrimSpace(v)
		if v != "" {
			cookies = append(cookies, v)
		}
	}
	return cookies
}

// sanitizeURL strips query values from a URL before logging; login URLs
// carry next/ts parameters that are harmless, but form payloads must
// never end up in the log through a mis-built GET.
func sanitizeURL(raw string) string {
	parsed, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	if parsed.RawQuery != "" {
		parsed.RawQuery = "..."
	}
	return parsed.String()
}
