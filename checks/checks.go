// SPDX-FileCopyrightText: Copyright © 2024-2026 crosspub developers
//
// SPDX-License-Identifier: MPL-2.0

package checks

import (
	"errors"
	"fmt"

	"github.com/DataDrake/waterlog"
	git "github.com/go-git/go-git/v5"

	"github.com/arvikon/crosspub/config"
	"github.com/arvikon/crosspub/descriptor"
	"github.com/arvikon/crosspub/sbt"
)

// Run performs every prerequisite check and returns the first failure.
// Failures here are fatal: nothing may be published after one.
func Run(root, descriptorPath string, nexus config.Nexus) error {
	if err := sbt.Available(); err != nil {
		return err
	}
	waterlog.Goodln("Docker daemon is reachable!")

	if err := Credentials(nexus); err != nil {
		return err
	}
	waterlog.Goodln("Nexus credentials are present!")

	targets, err := descriptor.Targets(descriptorPath)
	if err != nil {
		return err
	}
	waterlog.Goodf("Build descriptor yields %d cross-version target(s)!\n", len(targets))

	hash, err := Worktree(root)
	if err != nil {
		return err
	}
	waterlog.Goodf("Worktree is clean at %s!\n", hash)

	return nil
}

func Credentials(nexus config.Nexus) error {
	if nexus.Username == "" || nexus.Password == "" {
		return errors.New("checks: NEXUS_USERNAME and NEXUS_PASSWORD must both be set")
	}
	return nil
}

// Worktree refuses to publish from a dirty repository. A branch other than
// main is allowed but called out.
func Worktree(root string) (hash string, err error) {
	repo, err := git.PlainOpen(root)
	if err != nil {
		err = fmt.Errorf("checks.Worktree: failed to open git repository at %s: %w", root, err)
		return
	}

	ref, err := repo.Head()
	if err != nil {
		err = fmt.Errorf("checks.Worktree: failed to get HEAD of repository at %s: %w", root, err)
		return
	}
	hash = ref.Hash().String()

	if ref.Name().String() != "refs/heads/main" {
		waterlog.Warnf("Not on main branch (%s), publishing anyway\n", ref.Name().Short())
	}

	wt, err := repo.Worktree()
	if err != nil {
		err = fmt.Errorf("checks.Worktree: failed to open worktree at %s: %w", root, err)
		return
	}

	status, err := wt.Status()
	if err != nil {
		err = fmt.Errorf("checks.Worktree: failed to get worktree status: %w", err)
		return
	}
	if !status.IsClean() {
		err = errors.New("checks.Worktree: worktree has uncommitted changes, refusing to publish")
	}

	return
}
