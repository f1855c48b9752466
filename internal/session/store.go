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
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// Store persists sessions keyed by vendor identifier.
//
// Load returns (nil, nil) when no usable session exists: a missing,
// corrupt, or unreadable entry is treated as absent so a bad file forces
// re-authentication instead of crashing the caller.
type Store interface {
	Load(vendorID string) (*Session, error)
	Save(vendorID string, sess Session) error
	Clear(vendorID string) error
}

// FileStore persists one JSON session file per vendor identifier.
type FileStore struct {
	dir string
}

// NewFileStore creates a store rooted at dir, creating it if needed.
func NewFileStore(dir string) (*FileStore, error) {
	if dir == "" {
		return nil, fmt.Errorf("session store directory is required")
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("failed to create session directory: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

// Load reads the session for vendorID. Corrupt or missing files yield
// (nil, nil).
func (s *FileStore) Load(vendorID string) (*Session, error) {
	data, err := os.ReadFile(s.path(vendorID))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		// Unreadable counts as absent too; the session is recoverable
		// by logging in again.
		return nil, nil
	}

	var sess Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, nil
	}
	if sess.Tokens == nil {
		sess.Tokens = make(map[string]string)
	}
	return &sess, nil
}

// Save writes the session for vendorID with owner-only permissions.
func (s *FileStore) Save(vendorID string, sess Session) error {
	data, err := json.MarshalIndent(sess, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}
	if err := os.WriteFile(s.path(vendorID), data, 0o600); err != nil {
		return fmt.Errorf("failed to write session file: %w", err)
	}
	return nil
}

// Clear removes the persisted session for vendorID. Removing a session
// that does not exist is not an error.
func (s *FileStore) Clear(vendorID string) error {
	err := os.Remove(s.path(vendorID))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to remove session file: %w", err)
	}
	return nil
}

func (s *FileStore) path(vendorID string) string {
	return filepath.Join(s.dir, vendorID+".json")
}
