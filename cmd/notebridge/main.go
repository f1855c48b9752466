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

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/careops/notebridge/internal/cli"
	"github.com/careops/notebridge/internal/commands/history"
	"github.com/careops/notebridge/internal/commands/login"
	sessioncmd "github.com/careops/notebridge/internal/commands/session"
	"github.com/careops/notebridge/internal/commands/shared"
	"github.com/careops/notebridge/internal/commands/submit"
	"github.com/careops/notebridge/internal/commands/vendorlist"
	versioncmd "github.com/careops/notebridge/internal/commands/version"
	"github.com/careops/notebridge/internal/tracing"
)

// Version information (injected via ldflags at build time).
var (
	version   = "dev"
	commit    = "unknown"
	buildDate = "unknown"
)

func main() {
	cli.SetVersion(version, commit, buildDate)

	rootCmd := cli.NewRootCommand()

	rootCmd.AddCommand(submit.NewCommand())
	rootCmd.AddCommand(login.NewCommand())
	rootCmd.AddCommand(sessioncmd.NewCommand())
	rootCmd.AddCommand(history.NewCommand())
	rootCmd.AddCommand(vendorlist.NewCommand())
	rootCmd.AddCommand(versioncmd.NewCommand())

	var shutdownTracing func(context.Context) error
	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if !shared.GetTrace() {
			return nil
		}
		var err error
		shutdownTracing, err = tracing.InitStdout()
		return err
	}

	err := rootCmd.Execute()

	if shutdownTracing != nil {
		if flushErr := shutdownTracing(context.Background()); flushErr != nil {
			fmt.Fprintln(os.Stderr, "Warning: failed to flush spans:", flushErr)
		}
	}

	if err != nil {
		cli.HandleExitError(err)
	}
}
