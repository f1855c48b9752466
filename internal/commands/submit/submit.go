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

// Package submit implements the notebridge submit command.
package submit

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/careops/notebridge/internal/commands/shared"
	"github.com/careops/notebridge/internal/record"
)

// NewCommand creates the submit command.
func NewCommand() *cobra.Command {
	var (
		vendorID string
		username string
		password string
	)

	cmd := &cobra.Command{
		Use:   "submit [record-file]",
		Short: "Submit a visit note to a vendor portal",
		Long: `Submit reads a canonical visit record (JSON) from a file or stdin
and pushes it to the vendor's portal as a visit note. A persisted session
is reused when still valid; otherwise credentials are taken from flags,
the NOTEBRIDGE_USERNAME/NOTEBRIDGE_PASSWORD environment variables, or
the system keychain (see 'notebridge login').

Pass "-" or no argument to read the record from stdin.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rec, err := readRecord(cmd.InOrStdin(), args)
			if err != nil {
				return &shared.ExitError{
					Code:    shared.ExitInvalidRecord,
					Message: "cannot read record",
					Cause:   err,
				}
			}
			return run(cmd, vendorID, username, password, rec)
		},
	}

	cmd.Flags().StringVar(&vendorID, "vendor", "generations", "Vendor identifier")
	cmd.Flags().StringVar(&username, "username", "", "Portal username (overrides keychain)")
	cmd.Flags().StringVar(&password, "password", "", "Portal password (overrides keychain)")

	return cmd
}

func readRecord(stdin io.Reader, args []string) (record.VisitRecord, error) {
	var rec record.VisitRecord

	source := stdin
	if len(args) == 1 && args[0] != "-" {
		f, err := os.Open(args[0])
		if err != nil {
			return rec, err
		}
		defer f.Close()
		source = f
	}

	dec := json.NewDecoder(source)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&rec); err != nil {
		return rec, fmt.Errorf("invalid record JSON: %w", err)
	}
	return rec, nil
}

func run(cmd *cobra.Command, vendorID, username, password string, rec record.VisitRecord) error {
	app, err := shared.BuildApp()
	if err != nil {
		return err
	}
	defer app.Close()

	creds := shared.ResolveCredentials(vendorID, username, password)

	result, err := app.Service.Submit(cmd.Context(), vendorID, creds, rec)
	if err != nil {
		if result != nil && shared.GetJSON() {
			printJSON(cmd, result)
		}
		return err
	}

	if shared.GetJSON() {
		return printJSON(cmd, result)
	}

	cmd.Println(shared.RenderOK(fmt.Sprintf("visit note %s submitted to %s", result.VisitID, vendorID)))
	cmd.Printf("  %s %s\n", shared.RenderLabel("submitted at:"), result.Timestamp.Format("2006-01-02 15:04:05"))
	return nil
}

func printJSON(cmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal result: %w", err)
	}
	cmd.Println(string(data))
	return nil
}
