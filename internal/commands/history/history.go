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

// Package history implements the notebridge history command.
package history

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/careops/notebridge/internal/audit"
	"github.com/careops/notebridge/internal/commands/shared"
)

// NewCommand creates the history command.
func NewCommand() *cobra.Command {
	var (
		visitID string
		limit   int
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recorded submission attempts",
		Long: `History lists submission attempts from the audit database, newest
first. With --visit it shows every attempt for one visit in order.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := shared.BuildApp()
			if err != nil {
				return err
			}
			defer app.Close()

			if app.Audit == nil {
				return fmt.Errorf("audit recording is disabled in the configuration")
			}

			var entries []audit.Entry
			if visitID != "" {
				entries, err = app.Audit.ByVisit(cmd.Context(), visitID)
			} else {
				entries, err = app.Audit.Recent(cmd.Context(), limit)
			}
			if err != nil {
				return err
			}

			if shared.GetJSON() {
				data, err := json.MarshalIndent(entries, "", "  ")
				if err != nil {
					return fmt.Errorf("failed to marshal history: %w", err)
				}
				cmd.Println(string(data))
				return nil
			}

			if len(entries) == 0 {
				cmd.Println(shared.RenderLabel("no submissions recorded"))
				return nil
			}
			for _, e := range entries {
				line := fmt.Sprintf("%s %s visit=%s vendor=%s",
					shared.RenderStatus(e.Success, statusLabel(e.Success)),
					e.CreatedAt.Format("2006-01-02 15:04:05"),
					e.VisitID, e.Vendor)
				cmd.Println(line)
				if e.Error != "" {
					cmd.Printf("    %s %s\n", shared.RenderLabel("error:"), e.Error)
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&visitID, "visit", "", "Show all attempts for one visit identifier")
	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum entries to show")

	return cmd
}

func statusLabel(ok bool) string {
	if ok {
		return "OK"
	}
	return "FAIL"
}
