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

// Package transport executes HTTP requests against vendor portals.
//
// The transport normalizes responses (status, headers, body, set-cookies),
// serializes session cookies into the Cookie header, applies per-request
// timeouts, and controls redirect following so callers can inspect
// redirect targets. It never interprets HTTP status codes as failures;
// classification is the adapter's job.
package transport

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"
)

// Request represents a single outbound request.
type Request struct {
	// Method is the HTTP method (GET, POST, ...). Required.
	Method string

	// URL is the full request URL. Required.
	URL string

	// Headers are request headers. Optional.
	Headers map[string]string

	// Body is the request body. Optional.
	Body []byte

	// ContentType is the value for the Content-Type header. When empty
	// and Body is non-nil, application/json is assumed.
	ContentType string

	// Cookies are "name=value" strings joined into a single Cookie header.
	Cookies []string

	// Timeout overrides the client default for this request.
	Timeout time.Duration

	// FollowRedirects controls whether 3xx responses are followed
	// transparently. When false the redirect response itself is returned
	// so the caller can inspect the Location target.
	FollowRedirects bool
}

// Response represents a normalized response.
type Response struct {
	// Status is the HTTP status code of the final response.
	Status int

	// StatusText is the HTTP status line text.
	StatusText string

	// Headers contains response headers.
	Headers http.Header

	// Body is the raw response body.
	Body []byte

	// Cookies holds each Set-Cookie value reduced to its "name=value"
	// prefix, in header order. Attributes (Path, Expires, ...) are dropped.
	Cookies []string
}

// Location returns the Location header, normally set on 3xx responses.
func (r *Response) Location() string {
	return r.Headers.Get("Location")
}

// IsRedirect reports whether the response carries a 3xx status.
func (r *Response) IsRedirect() bool {
	return r.Status >= 300 && r.Status < 400
}

// IsJSON reports whether the response declares a JSON content type.
func (r *Response) IsJSON() bool {
	ct := r.Headers.Get("Content-Type")
	return strings.Contains(ct, "application/json")
}

// JSON decodes the body into v when the response declares a JSON content
// type. It returns false without touching v for non-JSON responses, so
// callers can tolerate either shape.
func (r *Response) JSON(v interface{}) bool {
	if !r.IsJSON() {
		return false
	}
	return json.Unmarshal(r.Body, v) == nil
}

// Text returns the body as a string.
func (r *Response) Text() string {
	return string(r.Body)
}

// Doer executes requests. Implemented by *Client; adapters accept the
// interface so tests can substitute fakes.
type Doer interface {
	Do(ctx context.Context, req *Request) (*Response, error)
}
