// SPDX-FileCopyrightText: Copyright © 2024-2026 crosspub developers
//
// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"github.com/DataDrake/waterlog"
	"github.com/spf13/cobra"

	"github.com/arvikon/crosspub/descriptor"
	"github.com/arvikon/crosspub/utils"
)

var (
	cmdTargets = &cobra.Command{
		Use:   "targets",
		Short: "List the cross-version targets parsed from the build descriptor",
		Run:   runTargets,
	}
)

func init() {
	descriptorInit(cmdTargets)
	cmdTargets.Flags().String("version-file", "version.sbt", "path to the project version file")
}

func runTargets(cmd *cobra.Command, args []string) {
	versions, err := descriptor.Targets(descriptorPath)
	if err != nil {
		waterlog.Fatalf("Failed to parse build descriptor %s: %s\n", descriptorPath, err)
	}

	versionFile, _ := cmd.Flags().GetString("version-file")
	if utils.PathExists(versionFile) {
		if version, verr := descriptor.ProjectVersion(versionFile); verr == nil {
			waterlog.Infof("Project version: %s\n", version)
		}
	}

	for _, v := range versions {
		waterlog.Println(v)
	}
}
