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

package vendors

import (
	"errors"
	"testing"
	"time"

	"github.com/careops/notebridge/internal/adapter"
	"github.com/careops/notebridge/internal/config"
)

func TestNewRegistry_RegistersGenerations(t *testing.T) {
	cfg := config.Default()
	cfg.Vendors["generations"] = config.VendorConfig{
		BaseURL: "https://app.example-hc.com",
		Timeout: 10 * time.Second,
		Retry:   config.RetryConfig{MaxAttempts: 3, Backoff: time.Second},
	}

	registry, err := NewRegistry(cfg, nil)
	if err != nil {
		t.Fatalf("NewRegistry() error = %v", err)
	}

	ad, err := registry.New("generations")
	if err != nil {
		t.Fatalf("registry.New() error = %v", err)
	}
	if ad.VendorID() != "generations" {
		t.Errorf("VendorID() = %q", ad.VendorID())
	}
}

func TestNewRegistry_UnconfiguredVendorFailsAtConstruction(t *testing.T) {
	registry, err := NewRegistry(config.Default(), nil)
	if err != nil {
		t.Fatalf("NewRegistry() error = %v", err)
	}

	// Registered but unusable until configured.
	if !registry.Has("generations") {
		t.Fatal("generations not registered")
	}
	_, err = registry.New("generations")
	var ae *adapter.Error
	if !errors.As(err, &ae) || ae.Kind != adapter.KindValidation {
		t.Fatalf("error = %v, want validation adapter error", err)
	}
}
