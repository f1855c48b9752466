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

// Package secrets stores vendor portal credentials in the system
// keychain.
//
// Supported platforms:
//   - macOS: Keychain Access
//   - Linux: Secret Service API (GNOME Keyring, KWallet)
//   - Windows: Credential Manager
package secrets

import (
	"errors"
	"fmt"

	"github.com/zalando/go-keyring"
)

// keychainService is the service name used for keychain entries.
const keychainService = "notebridge"

// ErrNotFound is returned when no credentials are stored for a vendor.
var ErrNotFound = errors.New("credentials not found")

// Credentials is a stored username/password pair for one vendor.
type Credentials struct {
	Username string
	Password string
}

// Store saves credentials for the vendor in the system keychain.
func Store(vendorID string, creds Credentials) error {
	if vendorID == "" {
		return fmt.Errorf("vendor identifier is required")
	}
	if err := keyring.Set(keychainService, vendorID+"/username", creds.Username); err != nil {
		return fmt.Errorf("keychain error: %w", err)
	}
	if err := keyring.Set(keychainService, vendorID+"/password", creds.Password); err != nil {
		return fmt.Errorf("keychain error: %w", err)
	}
	return nil
}

// Lookup retrieves stored credentials for the vendor. Returns ErrNotFound
// when nothing is stored.
func Lookup(vendorID string) (Credentials, error) {
	username, err := keyring.Get(keychainService, vendorID+"/username")
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return Credentials{}, fmt.Errorf("%w: %s", ErrNotFound, vendorID)
		}
		return Credentials{}, fmt.Errorf("keychain error: %w", err)
	}
	password, err := keyring.Get(keychainService, vendorID+"/password")
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return Credentials{}, fmt.Errorf("%w: %s", ErrNotFound, vendorID)
		}
		return Credentials{}, fmt.Errorf("keychain error: %w", err)
	}
	return Credentials{Username: username, Password: password}, nil
}

// Delete removes stored credentials for the vendor. Deleting credentials
// that do not exist is not an error.
func Delete(vendorID string) error {
	for _, key := range []string{vendorID + "/username", vendorID + "/password"} {
		if err := keyring.Delete(keychainService, key); err != nil && !errors.Is(err, keyring.ErrNotFound) {
			return fmt.Errorf("keychain error: %w", err)
		}
	}
	return nil
}
