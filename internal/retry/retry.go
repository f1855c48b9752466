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

// Package retry wraps operations with bounded attempts and exponential
// backoff. Retryability is decided by a caller-supplied predicate when
// present, otherwise by matching the failure message against configured
// substring patterns.
package retry

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Config configures retry behavior. Immutable once constructed; one
// instance per adapter.
type Config struct {
	// MaxAttempts is the maximum number of attempts, counting the first
	// (default: 3).
	MaxAttempts int

	// Backoff is the base backoff duration (default: 1s). The wait before
	// attempt n+1 is Backoff × 2^(n-1).
	Backoff time.Duration

	// RetryablePatterns are substrings identifying retryable error
	// messages, used only when no predicate is supplied to Execute.
	RetryablePatterns []string
}

// DefaultConfig returns the default retry configuration.
func DefaultConfig() Config {
	return Config{
		MaxAttempts: 3,
		Backoff:     1 * time.Second,
		RetryablePatterns: []string{
			"timeout",
			"connection refused",
			"connection reset",
			"no such host",
			"temporarily unavailable",
		},
	}
}

// Validate checks if the configuration is valid.
func (c Config) Validate() error {
	if c.MaxAttempts < 1 {
		return fmt.Errorf("max_attempts must be at least 1, got %d", c.MaxAttempts)
	}
	if c.Backoff < 0 {
		return fmt.Errorf("backoff must be non-negative, got %v", c.Backoff)
	}
	return nil
}

// Operation is a single attempt of the wrapped work.
type Operation func(ctx context.Context) error

// Predicate decides whether a failure is retryable. When supplied to
// Execute it is authoritative: a false verdict stops retrying even if
// the configured patterns would match.
type Predicate func(err error) bool

// Policy executes operations under a retry configuration.
type Policy struct {
	cfg Config

	// sleep is swapped in tests to avoid real waits.
	sleep func(ctx context.Context, d time.Duration) error
}

// New creates a Policy from cfg, applying defaults for zero values.
func New(cfg Config) *Policy {
	if cfg.MaxAttempts == 0 {
		cfg.MaxAttempts = DefaultConfig().MaxAttempts
	}
	if cfg.Backoff == 0 {
		cfg.Backoff = DefaultConfig().Backoff
	}
	return &Policy{cfg: cfg, sleep: sleepCtx}
}

// Execute runs op until it succeeds, the attempt budget is exhausted, or
// a failure is classified non-retryable. Exhaustion returns the last
// failure unchanged so the caller sees the true root cause.
func (p *Policy) Execute(ctx context.Context, op Operation, isRetryable Predicate) error {
	var lastErr error

	for attempt := 1; attempt <= p.cfg.MaxAttempts; attempt++ {
		lastErr = op(ctx)
		if lastErr == nil {
			return nil
		}

		if attempt >= p.cfg.MaxAttempts {
			return lastErr
		}

		if isRetryable != nil {
			if !isRetryable(lastErr) {
				return lastErr
			}
		} else if !p.matches(lastErr) {
			return lastErr
		}

		delay := p.cfg.Backoff * (1 << (attempt - 1))
		if err := p.sleep(ctx, delay); err != nil {
			return fmt.Errorf("retry aborted: %w", err)
		}
	}

	return lastErr
}

func (p *Policy) matches(err error) bool {
	msg := strings.ToLower(err.Error())
	for _, pattern := range p.cfg.RetryablePatterns {
		if strings.Contains(msg, strings.ToLower(pattern)) {
			return true
		}
	}
	return false
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
