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

package generations

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/careops/notebridge/internal/retry"
	"github.com/careops/notebridge/internal/session"
)

// portal is a configurable stand-in for the vendor's web surface.
type portal struct {
	srv *httptest.Server

	mu       sync.Mutex
	requests []string

	// Login flow behavior.
	loginPageBody  string // served on GET /login/
	multiloginBody string // served on POST /multilogin/ as JSON
	loginStatus    int    // status for POST /login/?ts=
	loginLocation  string // Location header for the login redirect

	// Submission flow behavior.
	schedStatus   int
	schedBody     string
	schedLocation string
	dashStatus    int
	dashLocation  string
	noteHandler   func(n int, w http.ResponseWriter, r *http.Request)
	noteCalls     int
}

func newPortal(t *testing.T) *portal {
	t.Helper()
	p := &portal{
		loginPageBody:  `<form><input name="csrfmiddlewaretoken" value="login-token"></form>`,
		multiloginBody: `{"success": true}`,
		loginStatus:    http.StatusFound,
		loginLocation:  "/dashboard/",
		schedStatus:    http.StatusOK,
		schedBody:      `<form><input name="csrfmiddlewaretoken" value="fresh-token"></form>`,
		dashStatus:     http.StatusOK,
		noteHandler: func(n int, w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			fmt.Fprint(w, "note created")
		},
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /login/", func(w http.ResponseWriter, r *http.Request) {
		p.record(r)
		http.SetCookie(w, &http.Cookie{Name: "csrftoken", Value: "cookie-a", Path: "/"})
		fmt.Fprint(w, p.loginPageBody)
	})
	mux.HandleFunc("POST /multilogin/", func(w http.ResponseWriter, r *http.Request) {
		p.record(r)
		http.SetCookie(w, &http.Cookie{Name: "prelogin", Value: "1"})
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, p.multiloginBody)
	})
	mux.HandleFunc("POST /login/", func(w http.ResponseWriter, r *http.Request) {
		p.record(r)
		http.SetCookie(w, &http.Cookie{Name: "sessionid", Value: "sess-1", Path: "/", HttpOnly: true})
		if p.loginLocation != "" {
			w.Header().Set("Location", p.loginLocation)
		}
		w.WriteHeader(p.loginStatus)
	})
	mux.HandleFunc("GET /dashboard/", func(w http.ResponseWriter, r *http.Request) {
		p.record(r)
		fmt.Fprint(w, "<html>dashboard</html>")
	})
	mux.HandleFunc("GET /dashboard/live/", func(w http.ResponseWriter, r *http.Request) {
		p.record(r)
		if p.dashLocation != "" {
			w.Header().Set("Location", p.dashLocation)
		}
		w.WriteHeader(p.dashStatus)
	})
	mux.HandleFunc("GET /scheduling/", func(w http.ResponseWriter, r *http.Request) {
		p.record(r)
		http.SetCookie(w, &http.Cookie{Name: "csrftoken", Value: "cookie-b", Path: "/"})
		if p.schedLocation != "" {
			w.Header().Set("Location", p.schedLocation)
		}
		w.WriteHeader(p.schedStatus)
		fmt.Fprint(w, p.schedBody)
	})
	mux.HandleFunc("POST /scheduling/note/add/", func(w http.ResponseWriter, r *http.Request) {
		p.record(r)
		p.mu.Lock()
		p.noteCalls++
		n := p.noteCalls
		p.mu.Unlock()
		p.noteHandler(n, w, r)
	})

	p.srv = httptest.NewServer(mux)
	t.Cleanup(p.srv.Close)
	return p
}

func (p *portal) record(r *http.Request) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.requests = append(p.requests, r.Method+" "+r.URL.Path)
}

func (p *portal) requestCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.requests)
}

func (p *portal) sawRequest(methodPath string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, req := range p.requests {
		if req == methodPath {
			return true
		}
	}
	return false
}

func sessionFixture(expiry time.Time) session.Session {
	return session.Session{
		Cookies:   []string{"csrftoken=resumed-cookie", "sessionid=resumed"},
		Tokens:    map[string]string{tokenSlot: "resumed-token"},
		ExpiresAt: expiry,
	}
}

func newTestAdapter(t *testing.T, p *portal) *Adapter {
	t.Helper()
	a, err := New(Config{
		BaseURL: p.srv.URL,
		Retry:   retry.Config{MaxAttempts: 3, Backoff: time.Millisecond},
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return a
}
