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

package secrets

import (
	"errors"
	"testing"

	"github.com/zalando/go-keyring"
)

func TestStoreAndLookup(t *testing.T) {
	keyring.MockInit()

	creds := Credentials{Username: "nurse", Password: "secret"}
	if err := Store("generations", creds); err != nil {
		t.Fatalf("Store() error = %v", err)
	}

	got, err := Lookup("generations")
	if err != nil {
		t.Fatalf("Lookup() error = %v", err)
	}
	if got != creds {
		t.Errorf("Lookup() = %+v, want %+v", got, creds)
	}
}

func TestLookup_NotFound(t *testing.T) {
	keyring.MockInit()

	_, err := Lookup("nosuch")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Lookup() error = %v, want ErrNotFound", err)
	}
}

func TestDelete(t *testing.T) {
	keyring.MockInit()

	if err := Store("generations", Credentials{Username: "a", Password: "b"}); err != nil {
		t.Fatalf("Store() error = %v", err)
	}
	if err := Delete("generations"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := Lookup("generations"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Lookup() after delete error = %v, want ErrNotFound", err)
	}

	// Deleting again is not an error.
	if err := Delete("generations"); err != nil {
		t.Errorf("Delete() of absent credentials error = %v", err)
	}
}

func TestStore_RequiresVendor(t *testing.T) {
	keyring.MockInit()

	if err := Store("", Credentials{}); err == nil {
		t.Error("Store() accepted an empty vendor identifier")
	}
}
