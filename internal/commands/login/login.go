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

// Package login implements the notebridge login command.
package login

import (
	"fmt"

	"github.com/AlecAivazis/survey/v2"
	"github.com/spf13/cobra"

	"github.com/careops/notebridge/internal/adapter"
	"github.com/careops/notebridge/internal/commands/shared"
	"github.com/careops/notebridge/internal/secrets"
)

// NewCommand creates the login command.
func NewCommand() *cobra.Command {
	var (
		vendorID string
		username string
		password string
		save     bool
	)

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Authenticate against a vendor portal",
		Long: `Login performs the vendor's browser login flow and persists the
resulting session for later submissions. Credentials are prompted for
interactively unless supplied via flags.

With --save the credentials are also stored in the system keychain so
future submissions can re-authenticate without prompting.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, vendorID, username, password, save)
		},
	}

	cmd.Flags().StringVar(&vendorID, "vendor", "generations", "Vendor identifier")
	cmd.Flags().StringVar(&username, "username", "", "Portal username")
	cmd.Flags().StringVar(&password, "password", "", "Portal password")
	cmd.Flags().BoolVar(&save, "save", false, "Store credentials in the system keychain")

	return cmd
}

func run(cmd *cobra.Command, vendorID, username, password string, save bool) error {
	if username == "" {
		prompt := &survey.Input{Message: "Username:"}
		if err := survey.AskOne(prompt, &username, survey.WithValidator(survey.Required)); err != nil {
			return err
		}
	}
	if password == "" {
		prompt := &survey.Password{Message: "Password:"}
		if err := survey.AskOne(prompt, &password, survey.WithValidator(survey.Required)); err != nil {
			return err
		}
	}

	app, err := shared.BuildApp()
	if err != nil {
		return err
	}
	defer app.Close()

	creds := adapter.Credentials{Username: username, Password: password}
	if err := app.Service.Login(cmd.Context(), vendorID, creds); err != nil {
		return err
	}

	cmd.Println(shared.RenderOK(fmt.Sprintf("logged in to %s as %s", vendorID, username)))

	if save {
		err := secrets.Store(vendorID, secrets.Credentials{Username: username, Password: password})
		if err != nil {
			return fmt.Errorf("logged in, but storing credentials failed: %w", err)
		}
		cmd.Println(shared.RenderOK("credentials stored in the system keychain"))
	}
	return nil
}
