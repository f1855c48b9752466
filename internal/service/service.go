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

// Package service orchestrates visit note submissions: it validates the
// canonical record, obtains an adapter from the registry, manages session
// resume and persistence, and delegates to the adapter, translating
// low-level failures into the tagged error taxonomy.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/careops/notebridge/internal/adapter"
	"github.com/careops/notebridge/internal/audit"
	"github.com/careops/notebridge/internal/log"
	"github.com/careops/notebridge/internal/metrics"
	"github.com/careops/notebridge/internal/record"
	"github.com/careops/notebridge/internal/session"
	"github.com/careops/notebridge/internal/tracing"
)

// Auditor records submission attempts. Satisfied by *audit.Store.
type Auditor interface {
	Record(ctx context.Context, e audit.Entry) error
}

// Config assembles a Service. Registry is required; everything else is
// optional and nil-safe.
type Config struct {
	Registry *adapter.Registry
	Sessions session.Store
	Audit    Auditor
	Metrics  *metrics.Collector
	Logger   *slog.Logger
	Now      func() time.Time
}

// Service is the orchestration layer. One instance serves any number of
// vendors; each call constructs its own adapter, so calls are independent.
type Service struct {
	registry *adapter.Registry
	sessions session.Store
	audit    Auditor
	metrics  *metrics.Collector
	logger   *slog.Logger
	now      func() time.Time
}

// New creates a service from cfg.
func New(cfg Config) (*Service, error) {
	if cfg.Registry == nil {
		return nil, fmt.Errorf("service requires an adapter registry")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &Service{
		registry: cfg.Registry,
		sessions: cfg.Sessions,
		audit:    cfg.Audit,
		metrics:  cfg.Metrics,
		logger:   logger,
		now:      now,
	}, nil
}

// Vendors lists the registered vendor identifiers.
func (s *Service) Vendors() []string {
	return s.registry.List()
}

// Login authenticates against the vendor and persists the resulting
// session for later submissions.
func (s *Service) Login(ctx context.Context, vendorID string, creds adapter.Credentials) error {
	ad, err := s.registry.New(vendorID)
	if err != nil {
		return err
	}
	if err := s.authenticate(ctx, ad, creds); err != nil {
		return err
	}
	s.saveSession(ad)
	return nil
}

// Logout drops the persisted session for the vendor. Logging out of a
// vendor with no session is not an error.
func (s *Service) Logout(vendorID string) error {
	if !s.registry.Has(vendorID) {
		return &adapter.Error{
			Kind:    adapter.KindValidation,
			Vendor:  vendorID,
			Message: fmt.Sprintf("unknown vendor %q", vendorID),
		}
	}
	if s.sessions == nil {
		return nil
	}
	return s.sessions.Clear(vendorID)
}

// SessionStatus reports whether a usable persisted session exists for the
// vendor, and its expiry if one is set.
func (s *Service) SessionStatus(vendorID string) (bool, time.Time, error) {
	if !s.registry.Has(vendorID) {
		return false, time.Time{}, &adapter.Error{
			Kind:    adapter.KindValidation,
			Vendor:  vendorID,
			Message: fmt.Sprintf("unknown vendor %q", vendorID),
		}
	}
	if s.sessions == nil {
		return false, time.Time{}, nil
	}
	sess, err := s.sessions.Load(vendorID)
	if err != nil || sess == nil {
		return false, time.Time{}, err
	}
	if sess.IsExpired(s.now()) {
		return false, sess.ExpiresAt, nil
	}
	return true, sess.ExpiresAt, nil
}

// Submit validates rec and submits it to the vendor. A persisted session
// is resumed when usable; otherwise creds must be able to authenticate.
// When a submission fails because the session expired mid-flight and
// credentials are available, the service re-authenticates once and
// repeats the submission.
func (s *Service) Submit(ctx context.Context, vendorID string, creds adapter.Credentials, rec record.VisitRecord) (*adapter.Result, error) {
	rec.ApplyDefaults(s.now())
	if err := rec.Validate(); err != nil {
		return nil, &adapter.Error{
			Kind:    adapter.KindValidation,
			Vendor:  vendorID,
			Message: fmt.Sprintf("invalid record: %s", err.Error()),
			Cause:   err,
		}
	}

	ad, err := s.registry.New(vendorID)
	if err != nil {
		return nil, err
	}

	if err := s.ensureSession(ctx, ad, creds); err != nil {
		s.recordAudit(ctx, vendorID, rec.VisitID, nil, err)
		return nil, err
	}

	result, err := s.submit(ctx, ad, rec)
	if isAuthFailure(err) && creds.Username != "" && creds.Password != "" {
		s.logger.Info("session rejected mid-submission, re-authenticating",
			slog.String(log.VendorKey, vendorID))
		if authErr := s.authenticate(ctx, ad, creds); authErr != nil {
			s.recordAudit(ctx, vendorID, rec.VisitID, result, authErr)
			return result, authErr
		}
		result, err = s.submit(ctx, ad, rec)
	}

	s.saveSession(ad)
	s.recordAudit(ctx, vendorID, rec.VisitID, result, err)

	if s.metrics != nil {
		s.metrics.RecordSubmission(vendorID, err == nil)
	}
	if err != nil {
		return result, tagError(vendorID, err)
	}
	return result, nil
}

// ensureSession puts the adapter into a logged-in state, resuming a
// persisted session when one is still live and authenticating otherwise.
func (s *Service) ensureSession(ctx context.Context, ad adapter.Adapter, creds adapter.Credentials) error {
	holder, _ := ad.(adapter.SessionHolder)

	if holder != nil && s.sessions != nil {
		if sess, err := s.sessions.Load(ad.VendorID()); err == nil && sess != nil {
			holder.ResumeSession(*sess)
			if !holder.SessionExpired(s.now()) {
				return nil
			}
			holder.ClearSession()
		}
	}

	if creds.Username == "" || creds.Password == "" {
		return &adapter.Error{
			Kind:    adapter.KindAuthentication,
			Vendor:  ad.VendorID(),
			Message: "no usable session and no credentials provided",
		}
	}
	return s.authenticate(ctx, ad, creds)
}

func (s *Service) authenticate(ctx context.Context, ad adapter.Adapter, creds adapter.Credentials) error {
	ctx, span := tracing.Start(ctx, "adapter.authenticate",
		tracing.AttrVendor.String(ad.VendorID()))
	defer span.End()

	start := s.now()
	err := ad.Authenticate(ctx, creds)
	if s.metrics != nil {
		s.metrics.RecordAuth(ad.VendorID(), err == nil)
		s.metrics.ObserveDuration(ad.VendorID(), "authenticate", s.now().Sub(start))
	}
	if err != nil {
		tracing.RecordError(span, err)
		return tagError(ad.VendorID(), err)
	}
	return nil
}

func (s *Service) submit(ctx context.Context, ad adapter.Adapter, rec record.VisitRecord) (*adapter.Result, error) {
	ctx, span := tracing.Start(ctx, "adapter.submit",
		tracing.AttrVendor.String(ad.VendorID()),
		tracing.AttrVisitID.String(rec.VisitID))
	defer span.End()

	start := s.now()
	result, err := ad.PostVisitNote(ctx, rec)
	if s.metrics != nil {
		s.metrics.ObserveDuration(ad.VendorID(), "submit", s.now().Sub(start))
	}
	tracing.RecordError(span, err)
	return result, err
}

// saveSession persists the adapter's current session. Best effort: a
// failed save costs a re-login, not the submission.
func (s *Service) saveSession(ad adapter.Adapter) {
	holder, ok := ad.(adapter.SessionHolder)
	if !ok || s.sessions == nil {
		return
	}
	if err := s.sessions.Save(ad.VendorID(), holder.ExportSession()); err != nil {
		s.logger.Warn("failed to persist session",
			slog.String(log.VendorKey, ad.VendorID()),
			log.Error(err))
	}
}

func (s *Service) recordAudit(ctx context.Context, vendorID, visitID string, result *adapter.Result, err error) {
	if s.audit == nil {
		return
	}
	entry := audit.Entry{
		Vendor:    vendorID,
		VisitID:   visitID,
		Success:   err == nil,
		CreatedAt: s.now(),
	}
	if err != nil {
		entry.Error = err.Error()
	}
	if result != nil {
		entry.Request = result.Request
		entry.Response = result.Response
	}
	if auditErr := s.audit.Record(ctx, entry); auditErr != nil {
		s.logger.Warn("failed to record audit entry",
			slog.String(log.VendorKey, vendorID),
			log.Error(auditErr))
	}
}

// tagError wraps an untagged error into a vendor-specific adapter error,
// preserving the original cause. Already-tagged errors pass through
// unchanged.
func tagError(vendorID string, err error) error {
	var ae *adapter.Error
	if errors.As(err, &ae) {
		return err
	}
	return &adapter.Error{
		Kind:    adapter.KindVendor,
		Vendor:  vendorID,
		Message: err.Error(),
		Cause:   err,
	}
}

func isAuthFailure(err error) bool {
	var ae *adapter.Error
	return errors.As(err, &ae) && ae.Kind == adapter.KindAuthentication
}
