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

package adapter

import (
	"fmt"
	"sort"
	"sync"
)

// Factory creates a fresh adapter instance for one vendor.
type Factory func() (Adapter, error)

// Registry maps vendor identifiers to adapter factories. Unknown
// identifiers fail immediately and synchronously, before any network
// access.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// Register adds a vendor factory. Registering the same identifier twice
// is an error.
func (r *Registry) Register(vendorID string, factory Factory) error {
	if vendorID == "" {
		return fmt.Errorf("vendor identifier cannot be empty")
	}
	if factory == nil {
		return fmt.Errorf("adapter factory cannot be nil")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.factories[vendorID]; exists {
		return fmt.Errorf("vendor %q is already registered", vendorID)
	}
	r.factories[vendorID] = factory
	return nil
}

// New constructs a fresh adapter for the vendor identifier.
func (r *Registry) New(vendorID string) (Adapter, error) {
	r.mu.RLock()
	factory, exists := r.factories[vendorID]
	r.mu.RUnlock()

	if !exists {
		return nil, &Error{
			Kind:    KindValidation,
			Vendor:  vendorID,
			Message: fmt.Sprintf("unknown vendor %q", vendorID),
		}
	}
	return factory()
}

// Has reports whether the vendor identifier is registered.
func (r *Registry) Has(vendorID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, exists := r.factories[vendorID]
	return exists
}

// List returns the registered vendor identifiers, sorted.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, 0, len(r.factories))
	for id := range r.factories {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
