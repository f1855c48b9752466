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

// Package cli assembles the root command for the notebridge CLI.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/careops/notebridge/internal/commands/shared"
)

// SetVersion sets the version information (called from main).
func SetVersion(v, c, b string) {
	shared.SetVersion(v, c, b)
}

// NewRootCommand creates the root Cobra command for notebridge.
func NewRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "notebridge",
		Short: "notebridge - push visit notes into homecare scheduling portals",
		Long: `notebridge submits structured visit notes to homecare scheduling
portals that have no API, by reproducing their browser login flow and
posting through their HTML form endpoints.

Run 'notebridge login' to authenticate against a portal, then
'notebridge submit record.json' to push a visit note.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	json, config, trace := shared.RegisterFlagPointers()
	cmd.PersistentFlags().BoolVar(json, "json", false, "Output in JSON format")
	cmd.PersistentFlags().StringVar(config, "config", "", "Path to config file (default: ~/.config/notebridge/config.yaml)")
	cmd.PersistentFlags().BoolVar(trace, "trace", false, "Emit OpenTelemetry spans to stdout")

	return cmd
}

// HandleExitError prints the error and exits with the mapped code.
func HandleExitError(err error) {
	shared.HandleExitError(err)
}
