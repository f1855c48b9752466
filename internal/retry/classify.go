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

package retry

import (
	"errors"
	"strings"
)

// StatusCoder is implemented by errors that carry an HTTP status code.
// Both transport and adapter errors satisfy it.
type StatusCoder interface {
	HTTPStatus() int
}

var networkMarkers = []string{
	"timeout",
	"timed out",
	"connection refused",
	"connection reset",
	"no such host",
	"host not found",
	"network unreachable",
}

// IsNetworkError reports whether err looks like a transient network
// failure (timeouts, refused connections, DNS misses).
func IsNetworkError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	for _, marker := range networkMarkers {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}

// IsServerError reports whether err carries a 5xx status code.
func IsServerError(err error) bool {
	return statusOf(err) >= 500 && statusOf(err) <= 599
}

// IsAuthError reports whether err carries a 401 or 403 status code.
func IsAuthError(err error) bool {
	status := statusOf(err)
	return status == 401 || status == 403
}

func statusOf(err error) int {
	var sc StatusCoder
	if errors.As(err, &sc) {
		return sc.HTTPStatus()
	}
	return 0
}
