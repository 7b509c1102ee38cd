// SPDX-FileCopyrightText: Copyright © 2024-2026 crosspub developers
//
// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/DataDrake/waterlog"
	"github.com/briandowns/spinner"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/arvikon/crosspub/checks"
	"github.com/arvikon/crosspub/config"
	"github.com/arvikon/crosspub/descriptor"
	"github.com/arvikon/crosspub/publish"
	"github.com/arvikon/crosspub/sbt"
	"github.com/arvikon/crosspub/utils"
)

var (
	cmdPublish = &cobra.Command{
		Use:   "publish",
		Short: "Publish every cross-version target to Nexus",
		Long: `Publish the library to the configured Nexus Maven repository, once per
cross Scala version found in the build descriptor.

Each target is attempted up to --max-retries times with --retry-delay seconds
between attempts; a target that exhausts its retries is recorded as failed and
the remaining targets still run. One log file is written per attempt under the
logs directory, together with a manifest.json for the whole run.

Credentials are taken from NEXUS_USERNAME, NEXUS_PASSWORD, NEXUS_HOST and
NEXUS_URL and passed through to the sbt container unchanged.`,
		Run: runPublish,
	}
)

func init() {
	descriptorInit(cmdPublish)
	logsInit(cmdPublish)
	cmdPublish.Flags().BoolP("dry-run", "n", false, "simulate publishing without invoking sbt")
	cmdPublish.Flags().StringArray("version", nil, "publish only the given cross-version (repeatable)")
	cmdPublish.Flags().Int("parallel", 1, "number of concurrent publish jobs")
	cmdPublish.Flags().Int("max-retries", 3, "publish attempts per target before giving up")
	cmdPublish.Flags().Int("retry-delay", 10, "seconds to wait between attempts")
	cmdPublish.Flags().Bool("skip-validation", false, "skip the prerequisite checks")
	cmdPublish.Flags().String("image", "sbtscala/scala-sbt:eclipse-temurin-17.0.10_7_1.9.9_3.4.1", "docker image used to run sbt")
	cmdPublish.Flags().String("config", ".crosspub.yml", "path to the run defaults file")
}

func runPublish(cmd *cobra.Command, args []string) {
	dryRun, _ := cmd.Flags().GetBool("dry-run")
	only, _ := cmd.Flags().GetStringArray("version")
	parallel, _ := cmd.Flags().GetInt("parallel")
	maxRetries, _ := cmd.Flags().GetInt("max-retries")
	retryDelay, _ := cmd.Flags().GetInt("retry-delay")
	skipValidation, _ := cmd.Flags().GetBool("skip-validation")
	image, _ := cmd.Flags().GetString("image")
	cfgPath, _ := cmd.Flags().GetString("config")

	settings := config.Settings{
		Image:      image,
		Command:    "publish",
		Descriptor: descriptorPath,
		LogsDir:    logsDir,
		Parallel:   parallel,
		MaxRetries: maxRetries,
		RetryDelay: retryDelay,
	}
	if utils.PathExists(cfgPath) {
		fileCfg, err := config.Load(cfgPath)
		if err != nil {
			waterlog.Fatalf("Failed to load config file %s: %s\n", cfgPath, err)
		}
		// File values only fill in flags the user left alone.
		settings = config.Merge(settings, fileCfg, cmd.Flags().Changed)
	}

	nexus, err := config.NexusFromEnv()
	if err != nil {
		waterlog.Fatalf("Failed to read Nexus environment: %s\n", err)
	}

	versions, err := descriptor.Targets(settings.Descriptor)
	if err != nil {
		waterlog.Fatalf("Failed to parse build descriptor %s: %s\n", settings.Descriptor, err)
	}
	waterlog.Goodf("Found %d cross-version target(s)!\n", len(versions))

	versions, err = publish.Select(versions, only)
	if err != nil {
		waterlog.Fatalf("Invalid target selection: %s\n", err)
	}

	workdir, err := os.Getwd()
	if err != nil {
		waterlog.Fatalf("Failed to determine working directory: %s\n", err)
	}

	if skipValidation {
		waterlog.Warnln("Skipping prerequisite checks as requested")
	} else if dryRun {
		waterlog.Infoln("Dry run, skipping prerequisite checks")
	} else if err := checks.Run(workdir, settings.Descriptor, nexus); err != nil {
		waterlog.Fatalf("Prerequisite check failed: %s\n", err)
	}

	orch := publish.Orchestrator{
		Runner: sbt.DockerRunner{Image: settings.Image},
		Opts: publish.Options{
			MaxRetries:  settings.MaxRetries,
			RetryDelay:  time.Duration(settings.RetryDelay) * time.Second,
			Parallel:    settings.Parallel,
			DryRun:      dryRun,
			DryRunDelay: time.Second,
			LogsDir:     settings.LogsDir,
			Workdir:     workdir,
			Command:     settings.Command,
			Env:         nexus.Environ(),
		},
		OnEvent: newReporter(settings.Parallel <= 1 && !quiet),
	}

	summary, err := orch.Run(context.Background(), publish.NewTargets(versions))
	if err != nil {
		waterlog.Fatalf("Publish run failed to start: %s\n", err)
	}

	if path, werr := summary.WriteManifest(); werr != nil {
		waterlog.Warnf("Failed to write run manifest: %s\n", werr)
	} else {
		waterlog.Infof("Run manifest written to %s\n", path)
	}

	waterlog.Println(summary.String())
	if summary.Failed > 0 {
		os.Exit(1)
	}
}

// newReporter renders per-target progress. Sequential interactive runs get a
// spinner; parallel runs get plain log lines since targets interleave.
func newReporter(spin bool) func(publish.Event) {
	red := color.New(color.FgRed).SprintFunc()
	green := color.New(color.FgGreen).SprintFunc()

	if !spin {
		return func(ev publish.Event) {
			switch ev.Kind {
			case publish.EventAttemptStarted:
				waterlog.Infof("Publishing %s (attempt %d)\n", ev.Target.Version, ev.Attempt.Number)
			case publish.EventAttemptFinished:
				if !ev.Attempt.OK {
					waterlog.Warnf("Attempt %d for %s failed: %s\n", ev.Attempt.Number, ev.Target.Version, ev.Attempt.Error)
				}
			case publish.EventTargetFinished:
				if ev.Target.Status == publish.StatusSucceeded {
					waterlog.Goodf("%s published successfully!\n", ev.Target.Version)
				} else {
					waterlog.Errorf("%s failed after %d attempt(s)\n", ev.Target.Version, len(ev.Target.Attempts))
				}
			}
		}
	}

	var s *spinner.Spinner
	return func(ev publish.Event) {
		switch ev.Kind {
		case publish.EventAttemptStarted:
			if s == nil {
				s = spinner.New(spinner.CharSets[14], 100*time.Millisecond)
			}
			s.Prefix = " "
			s.Suffix = fmt.Sprintf("  Publishing %s (attempt %d)", ev.Target.Version, ev.Attempt.Number)
			s.Color("white")
			s.Restart()
		case publish.EventAttemptFinished:
			if !ev.Attempt.OK && !ev.Final {
				s.Color("yellow")
				s.Suffix = fmt.Sprintf("  Attempt %d for %s failed, retrying", ev.Attempt.Number, ev.Target.Version)
				s.Restart()
			}
		case publish.EventTargetFinished:
			if ev.Target.Status == publish.StatusSucceeded {
				s.FinalMSG = fmt.Sprintf("%s %s published successfully!\n", green("[✓]"), ev.Target.Version)
			} else {
				s.FinalMSG = fmt.Sprintf("%s %s failed after %d attempt(s)\n", red("[x]"), ev.Target.Version, len(ev.Target.Attempts))
			}
			s.Stop()
			s = nil
		}
	}
}
