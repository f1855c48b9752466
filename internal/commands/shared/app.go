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

package shared

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/careops/notebridge/internal/adapter"
	"github.com/careops/notebridge/internal/audit"
	"github.com/careops/notebridge/internal/config"
	"github.com/careops/notebridge/internal/log"
	"github.com/careops/notebridge/internal/metrics"
	"github.com/careops/notebridge/internal/secrets"
	"github.com/careops/notebridge/internal/service"
	"github.com/careops/notebridge/internal/session"
	"github.com/careops/notebridge/internal/vendors"
)

// App bundles the wired-up application for one CLI invocation.
type App struct {
	Config  *config.Config
	Logger  *slog.Logger
	Service *service.Service
	Audit   *audit.Store

	metrics     *metrics.Collector
	metricsPath string
}

// Close writes the metrics snapshot and releases resources held by the
// app. The snapshot is best effort: losing it costs observability, not
// the submission.
func (a *App) Close() error {
	if a.metrics != nil && a.metricsPath != "" {
		if err := a.metrics.WriteSnapshot(a.metricsPath); err != nil {
			a.Logger.Warn("failed to write metrics snapshot",
				slog.String("path", a.metricsPath), log.Error(err))
		}
	}
	if a.Audit != nil {
		return a.Audit.Close()
	}
	return nil
}

// BuildApp loads configuration and assembles the service stack. The
// returned App must be closed by the caller.
func BuildApp() (*App, error) {
	cfg, err := config.Load(GetConfigPath())
	if err != nil {
		return nil, err
	}

	logCfg := log.FromEnv()
	if os.Getenv("LOG_LEVEL") == "" && os.Getenv("NOTEBRIDGE_DEBUG") == "" {
		logCfg.Level = cfg.Log.Level
	}
	if os.Getenv("LOG_FORMAT") == "" {
		logCfg.Format = log.Format(cfg.Log.Format)
	}
	logger := log.New(logCfg)

	registry, err := vendors.NewRegistry(cfg, log.WithComponent(logger, "adapter"))
	if err != nil {
		return nil, err
	}

	sessionDir, err := cfg.SessionDir()
	if err != nil {
		return nil, err
	}
	sessions, err := session.NewFileStore(sessionDir)
	if err != nil {
		return nil, err
	}

	app := &App{Config: cfg, Logger: logger}

	var auditor service.Auditor
	if !cfg.Audit.Disabled {
		auditPath, err := cfg.AuditPath()
		if err != nil {
			return nil, err
		}
		store, err := audit.New(audit.Config{Path: auditPath})
		if err != nil {
			return nil, fmt.Errorf("failed to open audit store: %w", err)
		}
		app.Audit = store
		auditor = store
	}

	collector := metrics.NewCollector(prometheus.NewRegistry())
	if !cfg.Metrics.Disabled {
		metricsPath, err := cfg.MetricsPath()
		if err != nil {
			return nil, err
		}
		app.metrics = collector
		app.metricsPath = metricsPath
	}

	svc, err := service.New(service.Config{
		Registry: registry,
		Sessions: sessions,
		Audit:    auditor,
		Metrics:  collector,
		Logger:   log.WithComponent(logger, "service"),
	})
	if err != nil {
		app.Close()
		return nil, err
	}
	app.Service = svc

	return app, nil
}

// ResolveCredentials picks credentials for a vendor: explicit flags win,
// then NOTEBRIDGE_USERNAME/NOTEBRIDGE_PASSWORD, then the system keychain.
// Missing credentials are not an error here; a persisted session may
// still cover the call.
func ResolveCredentials(vendorID, username, password string) adapter.Credentials {
	creds := adapter.Credentials{Username: username, Password: password}

	if creds.Username == "" {
		creds.Username = os.Getenv("NOTEBRIDGE_USERNAME")
	}
	if creds.Password == "" {
		creds.Password = os.Getenv("NOTEBRIDGE_PASSWORD")
	}

	if creds.Username == "" || creds.Password == "" {
		stored, err := secrets.Lookup(vendorID)
		if err == nil {
			if creds.Username == "" {
				creds.Username = stored.Username
			}
			if creds.Password == "" {
				creds.Password = stored.Password
			}
		} else if !errors.Is(err, secrets.ErrNotFound) {
			// Keychain trouble is not fatal; the session may suffice.
			slog.Debug("keychain lookup failed", "vendor", vendorID, "error", err)
		}
	}

	return creds
}
