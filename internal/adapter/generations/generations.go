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

// Package generations implements the vendor adapter for the Generations
// homecare scheduling portal.
//
// The portal has no API: authentication reproduces its browser login
// sequence (token scraping, cookie accumulation, redirect-based success
// detection) and visit notes are submitted through its HTML form
// endpoint. Anti-forgery tokens rotate per page view, so every
// submission re-fetches the scheduling page before posting.
package generations

import (
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/careops/notebridge/internal/adapter"
	"github.com/careops/notebridge/internal/log"
	"github.com/careops/notebridge/internal/retry"
	"github.com/careops/notebridge/internal/session"
	"github.com/careops/notebridge/internal/transport"
)

// VendorID identifies this adapter in the registry.
const VendorID = "generations"

// tokenSlot is the session token name the CSRF value is stored under.
const tokenSlot = "csrf"

// postLoginPath is the path fragment the primary login redirect must
// target for authentication to count as successful. The portal has no
// stable session-ready signal other than this redirect destination.
const postLoginPath = "/dashboard"

// Portal paths. Fixed; only the base URL is configurable.
const (
	loginPagePath  = "/login/?next=/dashboard/"
	multiloginPath = "/multilogin/"
	loginPath      = "/login/"
	dashboardPath  = "/dashboard/live/"
	schedulingPath = "/scheduling/"
	noteAddPath    = "/scheduling/note/add/"
)

// authState tracks the adapter's position in the login state machine.
// There is no automatic transition out of loggedIn except an explicit
// expiry check or a failed authenticated call.
type authState int

const (
	stateUnauthenticated authState = iota
	stateTokenAcquired
	stateLoggedIn
	stateExpired
)

// Config configures the adapter.
type Config struct {
	// BaseURL is the portal base URL, e.g. https://app.example-hc.com.
	BaseURL string

	// Timeout is the per-request timeout passed to the transport.
	Timeout time.Duration

	// Retry configures the submission retry policy.
	Retry retry.Config

	// RequestsPerSecond limits the outbound request rate. Zero disables
	// rate limiting.
	RequestsPerSecond float64

	// Logger receives structured logs. Nil disables logging.
	Logger *slog.Logger

	// Client overrides the transport, used by tests. When nil a real
	// HTTP client is constructed.
	Client transport.Doer
}

// Adapter submits visit notes to one Generations portal. Each instance
// owns its transport and session state; callers must serialize calls
// against a single instance.
type Adapter struct {
	baseURL string
	client  transport.Doer
	session *session.State
	policy  *retry.Policy
	logger  *slog.Logger
	state   authState
	now     func() time.Time
}

// New creates an adapter for the portal at cfg.BaseURL.
func New(cfg Config) (*Adapter, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("generations adapter requires a base URL")
	}
	base, err := url.Parse(cfg.BaseURL)
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("invalid base URL %q", cfg.BaseURL)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	client := cfg.Client
	if client == nil {
		client = transport.NewClient(transport.Config{
			Timeout:           cfg.Timeout,
			UserAgent:         "notebridge/1.0",
			RequestsPerSecond: cfg.RequestsPerSecond,
			Logger:            logger,
		})
	}

	retryCfg := cfg.Retry
	if retryCfg.MaxAttempts == 0 {
		retryCfg = retry.DefaultConfig()
	}

	return &Adapter{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		client:  client,
		session: session.NewState(),
		policy:  retry.New(retryCfg),
		logger:  log.WithVendor(logger, VendorID),
		state:   stateUnauthenticated,
		now:     time.Now,
	}, nil
}

// VendorID returns the vendor identifier.
func (a *Adapter) VendorID() string {
	return VendorID
}

// ResumeSession restores a previously persisted session. A non-expired
// session puts the adapter straight into the logged-in state.
func (a *Adapter) ResumeSession(sess session.Session) {
	a.session.Set(sess)
	if a.session.Empty() || a.session.IsExpired(a.now()) {
		a.state = stateExpired
		return
	}
	a.state = stateLoggedIn
}

// ExportSession returns a snapshot of the current session for
// persistence.
func (a *Adapter) ExportSession() session.Session {
	return a.session.Get()
}

// SessionExpired reports whether the adapter holds no usable session.
func (a *Adapter) SessionExpired(now time.Time) bool {
	if a.state != stateLoggedIn {
		return true
	}
	return a.session.IsExpired(now)
}

// ClearSession drops all session state, forcing re-authentication.
func (a *Adapter) ClearSession() {
	a.session.Clear()
	a.state = stateUnauthenticated
}

func (a *Adapter) url(path string) string {
	return a.baseURL + path
}

// resolve turns a possibly relative redirect target into an absolute URL.
func (a *Adapter) resolve(location string) string {
	if strings.HasPrefix(location, "http://") || strings.HasPrefix(location, "https://") {
		return location
	}
	if !strings.HasPrefix(location, "/") {
		location = "/" + location
	}
	return a.baseURL + location
}

// netError tags a transport failure as a network adapter error.
func (a *Adapter) netError(op string, err error) *adapter.Error {
	return &adapter.Error{
		Kind:    adapter.KindNetwork,
		Vendor:  VendorID,
		Message: fmt.Sprintf("%s: %s", op, err.Error()),
		Cause:   err,
	}
}

// authError tags an authentication failure.
func (a *Adapter) authError(message string, status int, cause error) *adapter.Error {
	return &adapter.Error{
		Kind:       adapter.KindAuthentication,
		Vendor:     VendorID,
		Message:    message,
		StatusCode: status,
		Cause:      cause,
	}
}
