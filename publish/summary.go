// SPDX-FileCopyrightText: Copyright © 2024-2026 crosspub developers
//
// SPDX-License-Identifier: MPL-2.0

package publish

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fatih/color"
)

// Summary is the aggregate report of one orchestration run. It is built once
// by the aggregator and read-only afterwards; Completed+Failed always equals
// Total.
type Summary struct {
	RunID     string        `json:"run_id"`
	Total     int           `json:"total"`
	Completed int           `json:"completed"`
	Failed    int           `json:"failed"`
	Elapsed   time.Duration `json:"elapsed_ns"`
	LogsDir   string        `json:"logs_dir"`
	Targets   []*Target     `json:"targets"`
}

// String renders the one-line report printed at the end of a run.
func (s *Summary) String() string {
	green := color.New(color.FgGreen).SprintFunc()
	red := color.New(color.FgRed).SprintFunc()

	failed := fmt.Sprint(s.Failed)
	if s.Failed > 0 {
		failed = red(failed)
	}
	return fmt.Sprintf("%s completed, %s failed out of %d target(s) in %s",
		green(fmt.Sprint(s.Completed)), failed, s.Total, s.Elapsed.Round(time.Millisecond))
}

// WriteManifest stores the run manifest next to the attempt logs.
func (s *Summary) WriteManifest() (path string, err error) {
	path = filepath.Join(s.LogsDir, "manifest.json")
	raw, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return
	}
	err = os.WriteFile(path, raw, 0o644)
	return
}
