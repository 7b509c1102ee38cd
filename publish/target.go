// SPDX-FileCopyrightText: Copyright © 2024-2026 crosspub developers
//
// SPDX-License-Identifier: MPL-2.0

package publish

import (
	"fmt"
	"slices"
	"strings"
	"time"

	mapset "github.com/deckarep/golang-set/v2"

	"github.com/arvikon/crosspub/utils"
)

type Status string

const (
	StatusPending    Status = "pending"
	StatusAttempting Status = "attempting"
	StatusSucceeded  Status = "succeeded"
	StatusFailed     Status = "failed"
)

// Attempt is one execution of the publish action for a target.
type Attempt struct {
	Number    int           `json:"number"`
	Started   time.Time     `json:"started"`
	Duration  time.Duration `json:"duration_ns"`
	LogPath   string        `json:"log_path"`
	LogDigest string        `json:"log_digest,omitempty"`
	Error     string        `json:"error,omitempty"`
	OK        bool          `json:"ok"`
}

// Target is one cross-version identifier to publish. A target is Failed only
// after every allowed attempt has been spent.
type Target struct {
	Version  string    `json:"version"`
	Status   Status    `json:"status"`
	Attempts []Attempt `json:"attempts,omitempty"`
}

func NewTargets(versions []string) []*Target {
	targets := make([]*Target, 0, len(versions))
	for _, v := range versions {
		targets = append(targets, &Target{Version: v, Status: StatusPending})
	}
	return targets
}

// Select narrows the descriptor versions down to the requested ones, keeping
// descriptor order. Requesting a version the descriptor does not carry is an
// error naming the offenders.
func Select(versions, requested []string) ([]string, error) {
	if len(requested) == 0 {
		return versions, nil
	}

	available := mapset.NewSet(versions...)
	want := mapset.NewSet(requested...)

	if unknown := want.Difference(available); unknown.Cardinality() > 0 {
		names := unknown.ToSlice()
		slices.Sort(names)
		return nil, fmt.Errorf("publish.Select: unknown cross-version(s): %s", strings.Join(names, ", "))
	}

	return utils.Filter(versions, func(v string) bool { return want.Contains(v) }), nil
}
