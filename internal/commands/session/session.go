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

// Package session implements the notebridge session commands.
package session

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/careops/notebridge/internal/commands/shared"
	"github.com/careops/notebridge/internal/secrets"
)

// NewCommand creates the session command group.
func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "session",
		Short: "Inspect and manage persisted vendor sessions",
	}

	cmd.AddCommand(newStatusCommand())
	cmd.AddCommand(newClearCommand())

	return cmd
}

func newStatusCommand() *cobra.Command {
	var vendorID string

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show whether a usable session exists",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := shared.BuildApp()
			if err != nil {
				return err
			}
			defer app.Close()

			live, expiry, err := app.Service.SessionStatus(vendorID)
			if err != nil {
				return err
			}

			if !live {
				cmd.Println(shared.RenderStatus(false, "EXPIRED"), vendorID)
				cmd.Println(shared.RenderLabel("run 'notebridge login' to re-authenticate"))
				return nil
			}

			cmd.Println(shared.RenderStatus(true, "LIVE"), vendorID)
			if !expiry.IsZero() {
				cmd.Printf("  %s %s\n", shared.RenderLabel("expires:"), expiry.Format("2006-01-02 15:04:05"))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&vendorID, "vendor", "generations", "Vendor identifier")
	return cmd
}

func newClearCommand() *cobra.Command {
	var (
		vendorID    string
		credentials bool
	)

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Drop the persisted session, forcing re-authentication",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := shared.BuildApp()
			if err != nil {
				return err
			}
			defer app.Close()

			if err := app.Service.Logout(vendorID); err != nil {
				return err
			}
			cmd.Println(shared.RenderOK(fmt.Sprintf("session cleared for %s", vendorID)))

			if credentials {
				if err := secrets.Delete(vendorID); err != nil {
					return err
				}
				cmd.Println(shared.RenderOK("stored credentials removed"))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&vendorID, "vendor", "generations", "Vendor identifier")
	cmd.Flags().BoolVar(&credentials, "credentials", false, "Also remove keychain credentials")
	return cmd
}
