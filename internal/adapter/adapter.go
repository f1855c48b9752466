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

// Package adapter defines the vendor adapter contract and registry.
//
// An Adapter translates canonical visit records to one backend's wire
// format and owns that backend's session. Each instance holds its own
// transport and session state, so concurrent use of different instances
// needs no locking; calls against a single instance must be serialized
// by the caller.
package adapter

import (
	"context"
	"net/url"
	"time"

	"github.com/careops/notebridge/internal/record"
	"github.com/careops/notebridge/internal/session"
)

// Credentials authenticate one login call. Never persisted.
type Credentials struct {
	Username string
	Password string

	// BaseURL overrides the vendor's configured base URL when non-empty.
	BaseURL string
}

// Result is the outcome of one submission attempt sequence (not one
// retry). It always carries the literal outbound payload for audit, even
// on failure paths where a payload was constructed.
type Result struct {
	Success   bool      `json:"success"`
	VisitID   string    `json:"visitId"`
	Timestamp time.Time `json:"timestamp"`
	Request   string    `json:"request"`
	Response  string    `json:"response"`
	Error     string    `json:"error,omitempty"`
}

// Adapter is the per-vendor capability set. Implementations are a sealed
// set of variants selected through the Registry; adding a vendor never
// requires modifying existing ones.
type Adapter interface {
	// VendorID returns the vendor identifier this adapter serves.
	VendorID() string

	// Authenticate performs the vendor's login flow, populating the
	// adapter's session.
	Authenticate(ctx context.Context, creds Credentials) error

	// Transform maps a canonical record to the vendor's form fields.
	// Pure; no side effects.
	Transform(rec record.VisitRecord) (url.Values, error)

	// PostVisitNote submits the record as a visit note. Requires a
	// logged-in session.
	PostVisitNote(ctx context.Context, rec record.VisitRecord) (*Result, error)
}

// SessionHolder is implemented by adapters whose session can be resumed
// from and exported to an external store.
type SessionHolder interface {
	// ResumeSession restores a previously persisted session.
	ResumeSession(sess session.Session)

	// ExportSession returns a snapshot of the current session for
	// persistence.
	ExportSession() session.Session

	// SessionExpired reports whether the adapter currently holds no
	// usable session.
	SessionExpired(now time.Time) bool

	// ClearSession drops all session state.
	ClearSession()
}
