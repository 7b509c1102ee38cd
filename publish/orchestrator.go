// SPDX-FileCopyrightText: Copyright © 2024-2026 crosspub developers
//
// SPDX-License-Identifier: MPL-2.0

package publish

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/arvikon/crosspub/sbt"
)

// Options controls one orchestration run.
type Options struct {
	MaxRetries  int           // attempts per target, minimum 1
	RetryDelay  time.Duration // sleep between attempts, never after the last
	Parallel    int           // concurrent targets, <= 1 means sequential
	DryRun      bool          // simulate success without invoking the runner
	DryRunDelay time.Duration // simulated publish duration in dry runs
	LogsDir     string        // root under which the per-run directory is made
	Workdir     string        // project root handed to the runner
	Command     string        // sbt task, "publish" when empty
	Env         map[string]string
}

type EventKind int

const (
	EventAttemptStarted EventKind = iota
	EventAttemptFinished
	EventTargetFinished
)

// Event is emitted for every state transition of a target. Events are
// delivered from a single goroutine, but the owning worker keeps mutating
// the Target until EventTargetFinished: on attempt events handlers must only
// read Target.Version and the Attempt copy. The full Target is safe to
// inspect once EventTargetFinished arrives.
type Event struct {
	Kind    EventKind
	Target  *Target
	Attempt Attempt
	Final   bool // no further attempt follows for this target
}

// Orchestrator drives one publish invocation per target with bounded retries
// and optional bounded concurrency. Outcomes flow over a channel to a single
// aggregator that owns the counters, so no counter update can be lost.
type Orchestrator struct {
	Runner  sbt.Runner
	Opts    Options
	OnEvent func(Event)
}

// Run publishes every target and reports the aggregate outcome. A failed
// target never stops the remaining ones; only a failure to set up the run
// directory aborts.
func (o *Orchestrator) Run(ctx context.Context, targets []*Target) (Summary, error) {
	start := time.Now()

	runID := uuid.NewString()
	runDir := filepath.Join(o.Opts.LogsDir, runID)
	if err := os.MkdirAll(runDir, 0o755); err != nil {
		return Summary{}, fmt.Errorf("publish: failed to create run directory %s: %w", runDir, err)
	}

	workers := o.Opts.Parallel
	if workers < 1 {
		workers = 1
	}

	workCh := make(chan *Target)
	evCh := make(chan Event, workers)
	var wg sync.WaitGroup

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for t := range workCh {
				o.publishOne(ctx, t, runDir, evCh)
			}
		}()
	}

	go func() {
		for _, t := range targets {
			workCh <- t
		}
		close(workCh)
		wg.Wait()
		close(evCh)
	}()

	summary := Summary{RunID: runID, Total: len(targets), LogsDir: runDir}
	for ev := range evCh {
		if o.OnEvent != nil {
			o.OnEvent(ev)
		}
		if ev.Kind != EventTargetFinished {
			continue
		}
		if ev.Target.Status == StatusSucceeded {
			summary.Completed++
		} else {
			summary.Failed++
		}
	}

	summary.Targets = targets
	summary.Elapsed = time.Since(start)
	return summary, nil
}

func (o *Orchestrator) publishOne(ctx context.Context, t *Target, runDir string, evCh chan<- Event) {
	retries := o.Opts.MaxRetries
	if retries < 1 {
		retries = 1
	}

	t.Status = StatusAttempting
	for n := 1; n <= retries; n++ {
		att := Attempt{
			Number:  n,
			Started: time.Now(),
			LogPath: AttemptLogPath(runDir, t.Version, n),
		}
		evCh <- Event{Kind: EventAttemptStarted, Target: t, Attempt: att}

		err := o.attempt(ctx, t, att.LogPath)
		att.Duration = time.Since(att.Started)
		if digest, derr := DigestFile(att.LogPath); derr == nil {
			att.LogDigest = digest
		}
		if err != nil {
			att.Error = err.Error()
		} else {
			att.OK = true
		}

		t.Attempts = append(t.Attempts, att)
		evCh <- Event{Kind: EventAttemptFinished, Target: t, Attempt: att, Final: att.OK || n == retries}

		if att.OK {
			t.Status = StatusSucceeded
			break
		}
		if n < retries {
			time.Sleep(o.Opts.RetryDelay)
		}
	}

	if t.Status != StatusSucceeded {
		t.Status = StatusFailed
	}
	evCh <- Event{Kind: EventTargetFinished, Target: t}
}

func (o *Orchestrator) attempt(ctx context.Context, t *Target, logPath string) error {
	log, err := os.Create(logPath)
	if err != nil {
		return fmt.Errorf("publish: failed to create attempt log %s: %w", logPath, err)
	}
	defer log.Close()

	if o.Opts.DryRun {
		if o.Opts.DryRunDelay > 0 {
			time.Sleep(o.Opts.DryRunDelay)
		}
		fmt.Fprintf(log, "dry run: would publish %s\n", t.Version)
		return nil
	}

	inv := sbt.Invocation{
		Version: t.Version,
		Command: o.Opts.Command,
		Workdir: o.Opts.Workdir,
		Env:     o.Opts.Env,
	}
	return o.Runner.Publish(ctx, inv, log)
}
