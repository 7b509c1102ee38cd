// SPDX-FileCopyrightText: Copyright © 2024-2026 crosspub developers
//
// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"time"

	"github.com/DataDrake/waterlog"
	"github.com/spf13/cobra"

	"github.com/arvikon/crosspub/publish"
)

var (
	keepRuns int
	compress bool

	cmdLogs = &cobra.Command{
		Use:   "logs",
		Short: "List and prune publish run logs",
		Run:   runLogs,
	}
)

func init() {
	logsInit(cmdLogs)
	cmdLogs.Flags().IntVar(&keepRuns, "prune", 0, "keep only the newest N runs, pruning the rest")
	cmdLogs.Flags().BoolVar(&compress, "compress", false, "xz-compress pruned attempt logs instead of deleting them")
}

func runLogs(cmd *cobra.Command, args []string) {
	runs, err := publish.ScanRuns(logsDir)
	if err != nil {
		waterlog.Fatalf("Failed to scan logs directory %s: %s\n", logsDir, err)
	}
	if len(runs) == 0 {
		waterlog.Infoln("No publish runs recorded yet")
		return
	}

	for _, run := range runs {
		waterlog.Infof("%s  %d file(s), %d bytes, last written %s\n",
			run.ID, run.Files, run.Size, run.ModTime.Format(time.RFC3339))
	}

	if !cmd.Flags().Changed("prune") {
		return
	}
	pruned, err := publish.PruneRuns(logsDir, keepRuns, compress)
	if err != nil {
		waterlog.Fatalf("Failed to prune runs: %s\n", err)
	}
	verb := "Deleted"
	if compress {
		verb = "Compressed"
	}
	waterlog.Goodf("%s %d old run(s)!\n", verb, len(pruned))
}
