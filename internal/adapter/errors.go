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

package adapter

import "fmt"

// Kind classifies adapter errors for routing and retry decisions.
type Kind string

const (
	// KindAuthentication indicates login, session or token failures.
	// Requires re-authentication rather than a blind retry.
	KindAuthentication Kind = "authentication"

	// KindNetwork indicates timeouts and connection failures. Retryable.
	KindNetwork Kind = "network"

	// KindValidation indicates a malformed canonical record. Fails
	// before any network call; never retried.
	KindValidation Kind = "validation"

	// KindVendor indicates any other non-2xx/3xx vendor response.
	KindVendor Kind = "vendor"
)

// Error is the tagged error crossing every layer boundary. It is never
// silently dropped: layers either handle the failure completely or
// rethrow it wrapped in one of these.
type Error struct {
	// Kind classifies the failure.
	Kind Kind

	// Vendor is the vendor identifier the failure belongs to.
	Vendor string

	// Message describes the failure. Safe to log; credentials redacted.
	Message string

	// StatusCode is the HTTP status code when one was observed.
	StatusCode int

	// Cause is the original failure.
	Cause error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: %s error (status %d): %s", e.Vendor, e.Kind, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s: %s error: %s", e.Vendor, e.Kind, e.Message)
}

// Unwrap returns the original cause for errors.Is/As support.
func (e *Error) Unwrap() error {
	return e.Cause
}

// HTTPStatus returns the observed status code, satisfying the retry
// package's classification helpers.
func (e *Error) HTTPStatus() int {
	return e.StatusCode
}

// IsKind reports whether the error carries the given kind.
func (e *Error) IsKind(k Kind) bool {
	return e.Kind == k
}

// NewError constructs a tagged adapter error.
func NewError(kind Kind, vendor, message string, cause error) *Error {
	return &Error{Kind: kind, Vendor: vendor, Message: message, Cause: cause}
}
