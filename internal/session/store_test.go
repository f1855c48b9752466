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

package session

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"
)

func TestFileStore_RoundTrip(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore() error = %v", err)
	}

	orig := Session{
		Cookies:   []string{"csrftoken=a", "sessionid=b"},
		Tokens:    map[string]string{"csrf": "a"},
		ExpiresAt: time.Date(2026, 8, 28, 15, 4, 5, 0, time.UTC),
	}
	if err := store.Save("generations", orig); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	got, err := store.Load("generations")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got == nil {
		t.Fatal("Load() = nil, want session")
	}
	if !reflect.DeepEqual(got.Cookies, orig.Cookies) {
		t.Errorf("Cookies = %v, want %v", got.Cookies, orig.Cookies)
	}
	if !reflect.DeepEqual(got.Tokens, orig.Tokens) {
		t.Errorf("Tokens = %v, want %v", got.Tokens, orig.Tokens)
	}
	if !got.ExpiresAt.Equal(orig.ExpiresAt) {
		t.Errorf("ExpiresAt = %v, want the same instant %v", got.ExpiresAt, orig.ExpiresAt)
	}

	// Expiry verdict must survive the round trip.
	now := time.Date(2026, 8, 28, 16, 0, 0, 0, time.UTC)
	a, b := NewState(), NewState()
	a.Set(orig)
	b.Set(*got)
	if a.IsExpired(now) != b.IsExpired(now) {
		t.Error("IsExpired verdict changed across round trip")
	}
}

func TestFileStore_LoadMissing(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore() error = %v", err)
	}
	got, err := store.Load("generations")
	if err != nil {
		t.Errorf("Load() error = %v, want nil", err)
	}
	if got != nil {
		t.Errorf("Load() = %v, want nil for missing session", got)
	}
}

func TestFileStore_LoadCorrupt(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileStore(dir)
	if err != nil {
		t.Fatalf("NewFileStore() error = %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "generations.json"), []byte("{not json"), 0o600); err != nil {
		t.Fatal(err)
	}

	got, err := store.Load("generations")
	if err != nil {
		t.Errorf("Load() error = %v, want nil for corrupt session", err)
	}
	if got != nil {
		t.Errorf("Load() = %v, want nil for corrupt session", got)
	}
}

func TestFileStore_Clear(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore() error = %v", err)
	}

	if err := store.Clear("generations"); err != nil {
		t.Errorf("Clear() on missing session error = %v, want nil", err)
	}

	if err := store.Save("generations", Session{Cookies: []string{"a=1"}}); err != nil {
		t.Fatal(err)
	}
	if err := store.Clear("generations"); err != nil {
		t.Fatalf("Clear() error = %v", err)
	}
	got, _ := store.Load("generations")
	if got != nil {
		t.Error("session still loadable after Clear")
	}
}
