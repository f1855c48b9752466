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

// Package vendorlist implements the notebridge vendors command.
package vendorlist

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/careops/notebridge/internal/commands/shared"
)

// NewCommand creates the vendors command.
func NewCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "vendors",
		Short: "List supported vendors",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := shared.BuildApp()
			if err != nil {
				return err
			}
			defer app.Close()

			ids := app.Service.Vendors()

			if shared.GetJSON() {
				data, err := json.MarshalIndent(ids, "", "  ")
				if err != nil {
					return fmt.Errorf("failed to marshal vendor list: %w", err)
				}
				cmd.Println(string(data))
				return nil
			}

			for _, id := range ids {
				_, configured := app.Config.Vendor(id)
				cmd.Printf("%s %s\n", shared.RenderStatus(configured, label(configured)), id)
			}
			return nil
		},
	}
}

func label(configured bool) string {
	if configured {
		return "CONFIGURED"
	}
	return "UNCONFIGURED"
}
