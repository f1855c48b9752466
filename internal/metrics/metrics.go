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

// Package metrics exposes Prometheus instrumentation for submissions
// and authentication attempts.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Outcome labels for counters.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// Collector registers and records notebridge metrics.
type Collector struct {
	submissions  *prometheus.CounterVec
	authAttempts *prometheus.CounterVec
	duration     *prometheus.HistogramVec
	gatherer     prometheus.Gatherer
}

// NewCollector creates a collector registered against reg. Pass
// prometheus.DefaultRegisterer outside of tests.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		submissions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "notebridge_submissions_total",
			Help: "Visit note submissions by vendor and outcome.",
		}, []string{"vendor", "outcome"}),
		authAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "notebridge_auth_attempts_total",
			Help: "Authentication attempts by vendor and outcome.",
		}, []string{"vendor", "outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "notebridge_request_duration_seconds",
			Help:    "Duration of adapter operations.",
			Buckets: prometheus.DefBuckets,
		}, []string{"vendor", "operation"}),
	}
	reg.MustRegister(c.submissions, c.authAttempts, c.duration)
	if g, ok := reg.(prometheus.Gatherer); ok {
		c.gatherer = g
	}
	return c
}

// WriteSnapshot dumps the current metric families to path in the
// Prometheus textfile-collector exposition format. CLI invocations are
// short-lived, so the snapshot written at exit is the export surface;
// a node_exporter textfile collector picks it up from there.
func (c *Collector) WriteSnapshot(path string) error {
	if c.gatherer == nil {
		return fmt.Errorf("metrics registry is not gatherable")
	}
	return prometheus.WriteToTextfile(path, c.gatherer)
}

// RecordSubmission counts one submission attempt sequence.
func (c *Collector) RecordSubmission(vendor string, success bool) {
	c.submissions.WithLabelValues(vendor, outcome(success)).Inc()
}

// RecordAuth counts one authentication attempt.
func (c *Collector) RecordAuth(vendor string, success bool) {
	c.authAttempts.WithLabelValues(vendor, outcome(success)).Inc()
}

// ObserveDuration records how long an adapter operation took.
func (c *Collector) ObserveDuration(vendor, operation string, d time.Duration) {
	c.duration.WithLabelValues(vendor, operation).Observe(d.Seconds())
}

func outcome(success bool) string {
	if success {
		return OutcomeSuccess
	}
	return OutcomeFailure
}
