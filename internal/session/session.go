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

// Package session holds the cookies and tokens that make up one
// authenticated context with a vendor portal.
//
// A State is owned by exactly one adapter instance and mutated only
// through merge operations; callers serialize access (single-writer
// discipline) rather than relying on internal locking.
package session

import (
	"sort"
	"strings"
	"time"
)

// Session is the externalizable snapshot of an authenticated context.
type Session struct {
	// Cookies are "name=value" strings, ordered by name.
	Cookies []string `json:"cookies"`

	// Tokens maps named auxiliary tokens (e.g. "csrf") to their values.
	Tokens map[string]string `json:"tokens"`

	// ExpiresAt is the optional expiry instant. Zero means no expiry.
	ExpiresAt time.Time `json:"expiresAt,omitzero"`
}

// IsExpired reports whether the session has expired at now. A session
// without an expiry never expires.
func (s Session) IsExpired(now time.Time) bool {
	if s.ExpiresAt.IsZero() {
		return false
	}
	return !now.Before(s.ExpiresAt)
}

// State accumulates cookies and tokens for one adapter instance.
type State struct {
	cookies map[string]string // name -> "name=value"
	tokens  map[string]string
	expires time.Time
}

// NewState creates an empty session state.
func NewState() *State {
	return &State{
		cookies: make(map[string]string),
		tokens:  make(map[string]string),
	}
}

// UpdateCookies merges incoming "name=value" cookies into the state.
// The last write per name wins; unaffected cookies survive. Repeated
// updates never grow the state beyond one entry per distinct name.
func (s *State) UpdateCookies(cookies []string) {
	for _, cookie := range cookies {
		name := cookieName(cookie)
		if name == "" {
			continue
		}
		s.cookies[name] = cookie
	}
}

// UpdateTokens overlays incoming tokens onto existing ones: new keys are
// added, existing keys overwritten, unrelated keys preserved.
func (s *State) UpdateTokens(tokens map[string]string) {
	for name, value := range tokens {
		s.tokens[name] = value
	}
}

// Cookies returns the current cookies ordered by name.
func (s *State) Cookies() []string {
	names := make([]string, 0, len(s.cookies))
	for name := range s.cookies {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]string, len(names))
	for i, name := range names {
		out[i] = s.cookies[name]
	}
	return out
}

// Tokens returns a copy of the current token map.
func (s *State) Tokens() map[string]string {
	out := make(map[string]string, len(s.tokens))
	for name, value := range s.tokens {
		out[name] = value
	}
	return out
}

// Token returns the named token and whether it is set to a non-empty value.
func (s *State) Token(name string) (string, bool) {
	value, ok := s.tokens[name]
	return value, ok && value != ""
}

// SetToken stores a single named token.
func (s *State) SetToken(name, value string) {
	s.tokens[name] = value
}

// SetExpiry sets the session expiry instant.
func (s *State) SetExpiry(at time.Time) {
	s.expires = at
}

// IsExpired reports whether the session has expired. A session without
// an expiry never expires.
func (s *State) IsExpired(now time.Time) bool {
	if s.expires.IsZero() {
		return false
	}
	return !now.Before(s.expires)
}

// Set replaces the whole session. This is the only wholesale mutation;
// everything else goes through merges.
func (s *State) Set(sess Session) {
	s.cookies = make(map[string]string, len(sess.Cookies))
	s.UpdateCookies(sess.Cookies)
	s.tokens = make(map[string]string, len(sess.Tokens))
	s.UpdateTokens(sess.Tokens)
	s.expires = sess.ExpiresAt
}

// Get returns a snapshot of the session.
func (s *State) Get() Session {
	return Session{
		Cookies:   s.Cookies(),
		Tokens:    s.Tokens(),
		ExpiresAt: s.expires,
	}
}

// Clear resets the state to empty.
func (s *State) Clear() {
	s.cookies = make(map[string]string)
	s.tokens = make(map[string]string)
	s.expires = time.Time{}
}

// Empty reports whether the state holds no cookies and no tokens.
func (s *State) Empty() bool {
	return len(s.cookies) == 0 && len(s.tokens) == 0
}

func cookieName(cookie string) string {
	idx := strings.IndexByte(cookie, '=')
	if idx <= 0 {
		return ""
	}
	return strings.TrimSpace(cookie[:idx])
}
