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

// Package vendors assembles the adapter registry from configuration.
// Each supported vendor is registered unconditionally; a vendor whose
// configuration is missing or unusable fails at adapter construction
// time, before any network access.
package vendors

import (
	"log/slog"

	"github.com/careops/notebridge/internal/adapter"
	"github.com/careops/notebridge/internal/adapter/generations"
	"github.com/careops/notebridge/internal/config"
	"github.com/careops/notebridge/internal/retry"
)

// NewRegistry builds the registry of all supported vendors.
func NewRegistry(cfg *config.Config, logger *slog.Logger) (*adapter.Registry, error) {
	registry := adapter.NewRegistry()

	err := registry.Register(generations.VendorID, func() (adapter.Adapter, error) {
		vc, ok := cfg.Vendor(generations.VendorID)
		if !ok {
			return nil, &adapter.Error{
				Kind:    adapter.KindValidation,
				Vendor:  generations.VendorID,
				Message: "vendor is not configured; add it to the config file",
			}
		}
		return generations.New(generations.Config{
			BaseURL:           vc.BaseURL,
			Timeout:           vc.Timeout,
			RequestsPerSecond: vc.RequestsPerSecond,
			Retry: retry.Config{
				MaxAttempts: vc.Retry.MaxAttempts,
				Backoff:     vc.Retry.Backoff,
			},
			Logger: logger,
		})
	})
	if err != nil {
		return nil, err
	}

	return registry, nil
}
