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

package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"testing"
	"time"

	"github.com/careops/notebridge/internal/adapter"
	"github.com/careops/notebridge/internal/audit"
	"github.com/careops/notebridge/internal/record"
	"github.com/careops/notebridge/internal/session"
)

// fakeAdapter is a scriptable adapter with session-holder support.
type fakeAdapter struct {
	vendor string

	authErr    error
	submitErr  error
	submitErrs []error // consumed one per call when non-empty
	result     *adapter.Result

	authCalls   int
	submitCalls int

	sess     session.Session
	loggedIn bool
}

func (f *fakeAdapter) VendorID() string { return f.vendor }

func (f *fakeAdapter) Authenticate(ctx context.Context, creds adapter.Credentials) error {
	f.authCalls++
	if f.authErr != nil {
		return f.authErr
	}
	f.loggedIn = true
	f.sess = session.Session{
		Cookies: []string{"sessionid=fresh"},
		Tokens:  map[string]string{"csrf": "fresh"},
	}
	return nil
}

func (f *fakeAdapter) Transform(rec record.VisitRecord) (url.Values, error) {
	return url.Values{"patient": {rec.PatientID}}, nil
}

func (f *fakeAdapter) PostVisitNote(ctx context.Context, rec record.VisitRecord) (*adapter.Result, error) {
	f.submitCalls++
	if len(f.submitErrs) > 0 {
		err := f.submitErrs[0]
		f.submitErrs = f.submitErrs[1:]
		if err != nil {
			return nil, err
		}
	} else if f.submitErr != nil {
		return f.result, f.submitErr
	}
	if f.result != nil {
		return f.result, nil
	}
	return &adapter.Result{Success: true, VisitID: rec.VisitID, Timestamp: time.Now()}, nil
}

func (f *fakeAdapter) ResumeSession(sess session.Session) {
	f.sess = sess
	f.loggedIn = !sess.IsExpired(time.Now())
}

func (f *fakeAdapter) ExportSession() session.Session { return f.sess }

func (f *fakeAdapter) SessionExpired(now time.Time) bool {
	return !f.loggedIn || f.sess.IsExpired(now)
}

func (f *fakeAdapter) ClearSession() {
	f.sess = session.Session{}
	f.loggedIn = false
}

// memStore is an in-memory session.Store.
type memStore struct {
	sessions map[string]session.Session
}

func newMemStore() *memStore {
	return &memStore{sessions: make(map[string]session.Session)}
}

func (m *memStore) Load(vendorID string) (*session.Session, error) {
	sess, ok := m.sessions[vendorID]
	if !ok {
		return nil, nil
	}
	return &sess, nil
}

func (m *memStore) Save(vendorID string, sess session.Session) error {
	m.sessions[vendorID] = sess
	return nil
}

func (m *memStore) Clear(vendorID string) error {
	delete(m.sessions, vendorID)
	return nil
}

// memAudit captures audit entries in memory.
type memAudit struct {
	entries []audit.Entry
}

func (m *memAudit) Record(ctx context.Context, e audit.Entry) error {
	m.entries = append(m.entries, e)
	return nil
}

func testRecord() record.VisitRecord {
	return record.VisitRecord{
		VisitID:     "123",
		PatientID:   "p1",
		CaregiverID: "c1",
		VisitDate:   "2025-12-22",
		Note:        "ok",
	}
}

func creds() adapter.Credentials {
	return adapter.Credentials{Username: "nurse", Password: "secret"}
}

type fixture struct {
	svc     *Service
	fake    *fakeAdapter
	store   *memStore
	audit   *memAudit
	factory int
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	fx := &fixture{
		fake:  &fakeAdapter{vendor: "generations"},
		store: newMemStore(),
		audit: &memAudit{},
	}

	registry := adapter.NewRegistry()
	err := registry.Register("generations", func() (adapter.Adapter, error) {
		fx.factory++
		return fx.fake, nil
	})
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	fx.svc, err = New(Config{
		Registry: registry,
		Sessions: fx.store,
		Audit:    fx.audit,
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return fx
}

func TestSubmit_ValidatesBeforeAdapterConstruction(t *testing.T) {
	fx := newFixture(t)

	rec := testRecord()
	rec.Note = ""

	_, err := fx.svc.Submit(context.Background(), "generations", creds(), rec)
	var ae *adapter.Error
	if !errors.As(err, &ae) || ae.Kind != adapter.KindValidation {
		t.Fatalf("error = %v, want validation adapter error", err)
	}
	if fx.factory != 0 {
		t.Error("adapter constructed for an invalid record")
	}
	if fx.fake.submitCalls != 0 {
		t.Error("network-facing call made for an invalid record")
	}
}

func TestSubmit_UnknownVendor(t *testing.T) {
	fx := newFixture(t)

	_, err := fx.svc.Submit(context.Background(), "nosuch", creds(), testRecord())
	var ae *adapter.Error
	if !errors.As(err, &ae) || ae.Kind != adapter.KindValidation {
		t.Fatalf("error = %v, want validation adapter error", err)
	}
	if ae.Vendor != "nosuch" {
		t.Errorf("vendor = %q, want nosuch", ae.Vendor)
	}
}

func TestSubmit_AuthenticatesWhenNoSession(t *testing.T) {
	fx := newFixture(t)

	res, err := fx.svc.Submit(context.Background(), "generations", creds(), testRecord())
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if !res.Success || res.VisitID != "123" {
		t.Errorf("result = %+v, want success for visit 123", res)
	}
	if fx.fake.authCalls != 1 {
		t.Errorf("authCalls = %d, want 1", fx.fake.authCalls)
	}

	// The fresh session is persisted for the next invocation.
	if _, ok := fx.store.sessions["generations"]; !ok {
		t.Error("session not persisted after submission")
	}
}

func TestSubmit_ResumesLiveSession(t *testing.T) {
	fx := newFixture(t)
	fx.store.sessions["generations"] = session.Session{
		Cookies:   []string{"sessionid=stored"},
		Tokens:    map[string]string{"csrf": "stored"},
		ExpiresAt: time.Now().Add(time.Hour),
	}

	_, err := fx.svc.Submit(context.Background(), "generations", adapter.Credentials{}, testRecord())
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if fx.fake.authCalls != 0 {
		t.Errorf("authCalls = %d, want 0 with a live session", fx.fake.authCalls)
	}
}

func TestSubmit_ExpiredSessionForcesLogin(t *testing.T) {
	fx := newFixture(t)
	fx.store.sessions["generations"] = session.Session{
		Cookies:   []string{"sessionid=stale"},
		ExpiresAt: time.Now().Add(-time.Hour),
	}

	_, err := fx.svc.Submit(context.Background(), "generations", creds(), testRecord())
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if fx.fake.authCalls != 1 {
		t.Errorf("authCalls = %d, want 1 after expired session", fx.fake.authCalls)
	}
}

func TestSubmit_NoSessionNoCredentials(t *testing.T) {
	fx := newFixture(t)

	_, err := fx.svc.Submit(context.Background(), "generations", adapter.Credentials{}, testRecord())
	var ae *adapter.Error
	if !errors.As(err, &ae) || ae.Kind != adapter.KindAuthentication {
		t.Fatalf("error = %v, want authentication adapter error", err)
	}
	if fx.fake.submitCalls != 0 {
		t.Error("submission attempted without a session or credentials")
	}
}

func TestSubmit_ReauthenticatesOnMidflightExpiry(t *testing.T) {
	fx := newFixture(t)
	fx.store.sessions["generations"] = session.Session{
		Cookies:   []string{"sessionid=stored"},
		ExpiresAt: time.Now().Add(time.Hour),
	}
	fx.fake.submitErrs = []error{
		&adapter.Error{Kind: adapter.KindAuthentication, Vendor: "generations", Message: "session expired"},
		nil,
	}

	res, err := fx.svc.Submit(context.Background(), "generations", creds(), testRecord())
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if !res.Success {
		t.Error("Success = false after re-authentication")
	}
	if fx.fake.authCalls != 1 {
		t.Errorf("authCalls = %d, want 1 re-authentication", fx.fake.authCalls)
	}
	if fx.fake.submitCalls != 2 {
		t.Errorf("submitCalls = %d, want 2", fx.fake.submitCalls)
	}
}

func TestSubmit_WrapsUntaggedErrors(t *testing.T) {
	fx := newFixture(t)
	cause := fmt.Errorf("connection reset by peer")
	fx.fake.submitErr = cause

	_, err := fx.svc.Submit(context.Background(), "generations", creds(), testRecord())
	var ae *adapter.Error
	if !errors.As(err, &ae) || ae.Kind != adapter.KindVendor {
		t.Fatalf("error = %v, want vendor adapter error", err)
	}
	if !errors.Is(err, cause) {
		t.Error("original cause lost in wrapping")
	}
}

func TestSubmit_TaggedErrorsPassThrough(t *testing.T) {
	fx := newFixture(t)
	orig := &adapter.Error{Kind: adapter.KindVendor, Vendor: "generations", Message: "rejected", StatusCode: 422}
	fx.fake.submitErr = orig

	_, err := fx.svc.Submit(context.Background(), "generations", creds(), testRecord())
	var ae *adapter.Error
	if !errors.As(err, &ae) {
		t.Fatalf("error = %v, want adapter error", err)
	}
	if ae != orig {
		t.Error("tagged error rewrapped instead of passed through")
	}
}

func TestSubmit_AuditTrail(t *testing.T) {
	fx := newFixture(t)
	fx.fake.result = &adapter.Result{
		Success: true, VisitID: "123",
		Request: "patient=p1", Response: "created",
	}

	if _, err := fx.svc.Submit(context.Background(), "generations", creds(), testRecord()); err != nil {
		t.Fatalf("Submit() error = %v", err)
	}

	fx.fake.result = nil
	fx.fake.submitErr = &adapter.Error{Kind: adapter.KindVendor, Vendor: "generations", Message: "rejected"}
	fx.svc.Submit(context.Background(), "generations", creds(), testRecord())

	if len(fx.audit.entries) != 2 {
		t.Fatalf("audit entries = %d, want 2", len(fx.audit.entries))
	}
	if !fx.audit.entries[0].Success || fx.audit.entries[0].Request != "patient=p1" {
		t.Errorf("first entry = %+v, want successful with payload", fx.audit.entries[0])
	}
	if fx.audit.entries[1].Success || fx.audit.entries[1].Error == "" {
		t.Errorf("second entry = %+v, want failure with error text", fx.audit.entries[1])
	}
}

func TestLoginAndLogout(t *testing.T) {
	fx := newFixture(t)

	if err := fx.svc.Login(context.Background(), "generations", creds()); err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if _, ok := fx.store.sessions["generations"]; !ok {
		t.Error("session not persisted after login")
	}

	if err := fx.svc.Logout("generations"); err != nil {
		t.Fatalf("Logout() error = %v", err)
	}
	if _, ok := fx.store.sessions["generations"]; ok {
		t.Error("session survives logout")
	}
}

func TestLogin_AuthFailure(t *testing.T) {
	fx := newFixture(t)
	fx.fake.authErr = &adapter.Error{Kind: adapter.KindAuthentication, Vendor: "generations", Message: "bad password"}

	err := fx.svc.Login(context.Background(), "generations", creds())
	var ae *adapter.Error
	if !errors.As(err, &ae) || ae.Kind != adapter.KindAuthentication {
		t.Fatalf("error = %v, want authentication adapter error", err)
	}
	if len(fx.store.sessions) != 0 {
		t.Error("session persisted after failed login")
	}
}

func TestSessionStatus(t *testing.T) {
	fx := newFixture(t)

	live, _, err := fx.svc.SessionStatus("generations")
	if err != nil || live {
		t.Errorf("SessionStatus() = (%v, %v), want no session", live, err)
	}

	expiry := time.Now().Add(time.Hour)
	fx.store.sessions["generations"] = session.Session{
		Cookies:   []string{"sessionid=stored"},
		ExpiresAt: expiry,
	}
	live, got, err := fx.svc.SessionStatus("generations")
	if err != nil {
		t.Fatalf("SessionStatus() error = %v", err)
	}
	if !live {
		t.Error("live session reported absent")
	}
	if !got.Equal(expiry) {
		t.Errorf("expiry = %v, want %v", got, expiry)
	}

	fx.store.sessions["generations"] = session.Session{
		Cookies:   []string{"sessionid=stale"},
		ExpiresAt: time.Now().Add(-time.Hour),
	}
	live, _, _ = fx.svc.SessionStatus("generations")
	if live {
		t.Error("expired session reported live")
	}
}

func TestVendors(t *testing.T) {
	fx := newFixture(t)
	vendors := fx.svc.Vendors()
	if len(vendors) != 1 || vendors[0] != "generations" {
		t.Errorf("Vendors() = %v, want [generations]", vendors)
	}
}
