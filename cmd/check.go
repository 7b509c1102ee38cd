// SPDX-FileCopyrightText: Copyright © 2024-2026 crosspub developers
//
// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"os"

	"github.com/DataDrake/waterlog"
	"github.com/spf13/cobra"

	"github.com/arvikon/crosspub/checks"
	"github.com/arvikon/crosspub/config"
)

var (
	cmdCheck = &cobra.Command{
		Use:   "check",
		Short: "Run the prerequisite checks without publishing anything",
		Run:   runCheck,
	}
)

func init() {
	descriptorInit(cmdCheck)
}

func runCheck(cmd *cobra.Command, args []string) {
	nexus, err := config.NexusFromEnv()
	if err != nil {
		waterlog.Fatalf("Failed to read Nexus environment: %s\n", err)
	}

	root, err := os.Getwd()
	if err != nil {
		waterlog.Fatalf("Failed to determine working directory: %s\n", err)
	}

	if err := checks.Run(root, descriptorPath, nexus); err != nil {
		waterlog.Fatalf("Prerequisite check failed: %s\n", err)
	}
	waterlog.Goodln("All checks passed!")
}
