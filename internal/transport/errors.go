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
	"errors"
	"fmt"
)

// ErrorType classifies transport errors for routing and retry decisions.
type ErrorType string

const (
	// ErrorTypeConnection indicates network or DNS errors
	ErrorTypeConnection ErrorType = "connection"

	// ErrorTypeTimeout indicates request timeout or deadline exceeded
	ErrorTypeTimeout ErrorType = "timeout"

	// ErrorTypeInvalidReq indicates request validation error (invalid method, URL, etc.)
	ErrorTypeInvalidReq ErrorType = "invalid_request"

	// ErrorTypeCancelled indicates context was cancelled
	ErrorTypeCancelled ErrorType = "cancelled"
)

// Error represents a structured failure from transport execution.
// The transport only fails for request construction and network-level
// problems; HTTP responses of any status are returned as a Response so
// adapters can inspect redirects and error pages themselves.
type Error struct {
	// Type classifies the error for retry decisions
	Type ErrorType

	// Message is a user-facing error message with credentials redacted
	Message string

	// Retryable indicates whether the error is retryable
	Retryable bool

	// Cause is the underlying error. May contain sensitive data;
	// use Message for user-facing output.
	Cause error
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("%s error: %s", e.Type, e.Message)
}

// Unwrap returns the underlying error for error chain inspection.
func (e *Error) Unwrap() error {
	return e.Cause
}

// IsRetryable returns true if the error should be retried.
func (e *Error) IsRetryable() bool {
	return e.Retryable
}

// IsType returns true if the error is of the given type.
func (e *Error) IsType(t ErrorType) bool {
	return e.Type == t
}

// IsTimeout reports whether err is a transport timeout. Timeouts carry
// the elapsed timeout value in their message so retry policies can
// distinguish them from other network failures.
func IsTimeout(err error) bool {
	var te *Error
	return errors.As(err, &te) && te.Type == ErrorTypeTimeout
}

// IsConnection reports whether err is a transport connection failure.
func IsConnection(err error) bool {
	var te *Error
	return errors.As(err, &te) && te.Type == ErrorTypeConnection
}
