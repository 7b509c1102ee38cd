// SPDX-FileCopyrightText: Copyright © 2024-2026 crosspub developers
//
// SPDX-License-Identifier: MPL-2.0

package sbt

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"sort"
)

const workspace = "/workspace"

// Invocation describes one publish run for one cross Scala version.
type Invocation struct {
	Version string
	Command string            // sbt task, "publish" when empty
	Workdir string            // project root mounted into the container
	Env     map[string]string // passed through to sbt verbatim
}

// Runner executes one publish invocation, streaming the combined sbt output
// to log. A non-zero exit reports as an error.
type Runner interface {
	Publish(ctx context.Context, inv Invocation, log io.Writer) error
}

// DockerRunner runs sbt inside a disposable container with the project
// mounted at /workspace.
type DockerRunner struct {
	Image string
}

func (r DockerRunner) Publish(ctx context.Context, inv Invocation, log io.Writer) error {
	cmd := exec.CommandContext(ctx, "docker", Args(r.Image, inv)...)
	cmd.Stdout = log
	cmd.Stderr = log

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return fmt.Errorf("sbt.Publish: publish for %s exited with code %d", inv.Version, exitErr.ExitCode())
		}
		return fmt.Errorf("sbt.Publish: failed to start docker: %w", err)
	}

	return nil
}

// Args builds the full docker argument list for an invocation. Environment
// pairs are emitted in sorted key order so the command line is deterministic.
func Args(image string, inv Invocation) []string {
	args := []string{"run", "--rm"}

	if inv.Workdir != "" {
		args = append(args, "-v", fmt.Sprintf("%s:%s", inv.Workdir, workspace), "-w", workspace)
	}

	keys := make([]string, 0, len(inv.Env))
	for k := range inv.Env {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		args = append(args, "-e", fmt.Sprintf("%s=%s", k, inv.Env[k]))
	}

	command := inv.Command
	if command == "" {
		command = "publish"
	}

	return append(args, image, "sbt", fmt.Sprintf("++%s", inv.Version), command)
}

// Available reports whether the docker daemon can be reached at all.
func Available() error {
	if err := exec.Command("docker", "version").Run(); err != nil {
		return fmt.Errorf("sbt: docker is not available: %w", err)
	}
	return nil
}
