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

package shared

import (
	"errors"
	"fmt"
	"os"

	"github.com/careops/notebridge/internal/adapter"
)

// Exit codes for the notebridge CLI.
const (
	ExitSuccess          = 0
	ExitSubmissionFailed = 1
	ExitInvalidRecord    = 2
	ExitAuthFailed       = 3
	ExitNetworkError     = 4
)

// ExitError is an error that carries an exit code.
type ExitError struct {
	Code    int
	Message string
	Cause   error
}

func (e *ExitError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Cause
}

// ExitCodeFor maps an adapter error to its CLI exit code.
func ExitCodeFor(err error) int {
	var ae *adapter.Error
	if !errors.As(err, &ae) {
		return ExitSubmissionFailed
	}
	switch ae.Kind {
	case adapter.KindValidation:
		return ExitInvalidRecord
	case adapter.KindAuthentication:
		return ExitAuthFailed
	case adapter.KindNetwork:
		return ExitNetworkError
	default:
		return ExitSubmissionFailed
	}
}

// HandleExitError prints the error and exits with the appropriate code.
func HandleExitError(err error) {
	if err == nil {
		return
	}

	fmt.Fprintln(os.Stderr, "Error:", err.Error())

	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		os.Exit(exitErr.Code)
	}
	os.Exit(ExitCodeFor(err))
}
