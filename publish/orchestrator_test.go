package publish

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/arvikon/crosspub/sbt"
	"github.com/arvikon/crosspub/utils"
)

// fakeRunner fails the first failures[version] calls for a version and
// records call counts, start order, and the concurrency high-water mark.
type fakeRunner struct {
	mu        sync.Mutex
	calls     map[string]int
	failures  map[string]int
	order     []string
	delay     time.Duration
	active    int32
	maxActive int32
}

func (f *fakeRunner) Publish(ctx context.Context, inv sbt.Invocation, log io.Writer) error {
	cur := atomic.AddInt32(&f.active, 1)
	defer atomic.AddInt32(&f.active, -1)
	for {
		old := atomic.LoadInt32(&f.maxActive)
		if cur <= old || atomic.CompareAndSwapInt32(&f.maxActive, old, cur) {
			break
		}
	}

	f.mu.Lock()
	if f.calls == nil {
		f.calls = make(map[string]int)
	}
	f.calls[inv.Version]++
	n := f.calls[inv.Version]
	if n == 1 {
		f.order = append(f.order, inv.Version)
	}
	limit := f.failures[inv.Version]
	f.mu.Unlock()

	if f.delay > 0 {
		time.Sleep(f.delay)
	}

	fmt.Fprintf(log, "publish %s attempt %d\n", inv.Version, n)
	if n <= limit {
		return fmt.Errorf("publish %s failed", inv.Version)
	}
	return nil
}

func (f *fakeRunner) total() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	sum := 0
	for _, n := range f.calls {
		sum += n
	}
	return sum
}

func readJSON(t *testing.T, path string, v any) error {
	t.Helper()
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, v)
}

func newOrchestrator(t *testing.T, runner sbt.Runner, opts Options) *Orchestrator {
	t.Helper()
	opts.LogsDir = t.TempDir()
	return &Orchestrator{Runner: runner, Opts: opts}
}

func TestRetryUntilSuccess(t *testing.T) {
	runner := &fakeRunner{failures: map[string]int{"2.13.12": 2}}
	orch := newOrchestrator(t, runner, Options{MaxRetries: 3})

	summary, err := orch.Run(context.Background(), NewTargets([]string{"2.13.12"}))
	require.NoError(t, err)

	require.Equal(t, 1, summary.Completed)
	require.Equal(t, 0, summary.Failed)

	target := summary.Targets[0]
	require.Equal(t, StatusSucceeded, target.Status)
	require.Len(t, target.Attempts, 3)
	require.False(t, target.Attempts[0].OK)
	require.False(t, target.Attempts[1].OK)
	require.True(t, target.Attempts[2].OK)
}

func TestRetriesExhaustedContinues(t *testing.T) {
	runner := &fakeRunner{failures: map[string]int{"2.12.18": 100}}
	orch := newOrchestrator(t, runner, Options{MaxRetries: 2})

	summary, err := orch.Run(context.Background(), NewTargets([]string{"2.12.18", "3.3.1"}))
	require.NoError(t, err)

	require.Equal(t, 1, summary.Completed)
	require.Equal(t, 1, summary.Failed)
	require.Equal(t, summary.Total, summary.Completed+summary.Failed)

	require.Equal(t, StatusFailed, summary.Targets[0].Status)
	require.Len(t, summary.Targets[0].Attempts, 2)
	require.Equal(t, 2, runner.calls["2.12.18"])
	require.Equal(t, StatusSucceeded, summary.Targets[1].Status)
}

func TestDryRunSkipsRunner(t *testing.T) {
	runner := &fakeRunner{}
	orch := newOrchestrator(t, runner, Options{MaxRetries: 3, DryRun: true})

	targets := NewTargets([]string{"2.12.18", "2.13.12", "3.3.1"})
	summary, err := orch.Run(context.Background(), targets)
	require.NoError(t, err)

	require.Equal(t, 0, runner.total())
	require.Equal(t, 3, summary.Completed)
	require.Equal(t, 0, summary.Failed)
	for _, target := range summary.Targets {
		require.Equal(t, StatusSucceeded, target.Status)
		require.Len(t, target.Attempts, 1)
		require.True(t, utils.PathExists(target.Attempts[0].LogPath))
	}
}

func TestParallelBound(t *testing.T) {
	runner := &fakeRunner{delay: 30 * time.Millisecond}
	orch := newOrchestrator(t, runner, Options{MaxRetries: 1, Parallel: 2})

	summary, err := orch.Run(context.Background(), NewTargets([]string{"a", "b", "c", "d"}))
	require.NoError(t, err)

	require.Equal(t, 4, summary.Completed)
	require.LessOrEqual(t, int(runner.maxActive), 2)
}

func TestSequentialStartsInOrder(t *testing.T) {
	runner := &fakeRunner{}
	orch := newOrchestrator(t, runner, Options{MaxRetries: 1, Parallel: 1})

	versions := []string{"2.11.12", "2.12.18", "2.13.12", "3.3.1"}
	_, err := orch.Run(context.Background(), NewTargets(versions))
	require.NoError(t, err)

	require.Equal(t, versions, runner.order)
}

func TestEventsDeliveredPerAttempt(t *testing.T) {
	runner := &fakeRunner{failures: map[string]int{"2.13.12": 1}}
	orch := newOrchestrator(t, runner, Options{MaxRetries: 2})

	// Attempt events may only read Target.Version and the Attempt copy;
	// the worker still owns the rest of the Target at that point.
	var kinds []EventKind
	var attempts []int
	orch.OnEvent = func(ev Event) {
		kinds = append(kinds, ev.Kind)
		if ev.Kind != EventTargetFinished {
			require.Equal(t, "2.13.12", ev.Target.Version)
			attempts = append(attempts, ev.Attempt.Number)
		}
	}

	_, err := orch.Run(context.Background(), NewTargets([]string{"2.13.12"}))
	require.NoError(t, err)

	require.Equal(t, []EventKind{
		EventAttemptStarted, EventAttemptFinished,
		EventAttemptStarted, EventAttemptFinished,
		EventTargetFinished,
	}, kinds)
	require.Equal(t, []int{1, 1, 2, 2}, attempts)
}

func TestFinalMarkedOnLastAttempt(t *testing.T) {
	runner := &fakeRunner{failures: map[string]int{"2.13.12": 100}}
	orch := newOrchestrator(t, runner, Options{MaxRetries: 2})

	var finals []bool
	orch.OnEvent = func(ev Event) {
		if ev.Kind == EventAttemptFinished {
			finals = append(finals, ev.Final)
		}
	}

	_, err := orch.Run(context.Background(), NewTargets([]string{"2.13.12"}))
	require.NoError(t, err)
	require.Equal(t, []bool{false, true}, finals)
}

func TestFinalMarkedOnEarlySuccess(t *testing.T) {
	runner := &fakeRunner{}
	orch := newOrchestrator(t, runner, Options{MaxRetries: 3})

	var finals []bool
	orch.OnEvent = func(ev Event) {
		if ev.Kind == EventAttemptFinished {
			finals = append(finals, ev.Final)
		}
	}

	_, err := orch.Run(context.Background(), NewTargets([]string{"3.3.1"}))
	require.NoError(t, err)
	require.Equal(t, []bool{true}, finals)
}

func TestManifestRoundTrip(t *testing.T) {
	runner := &fakeRunner{}
	orch := newOrchestrator(t, runner, Options{MaxRetries: 1})

	summary, err := orch.Run(context.Background(), NewTargets([]string{"3.3.1"}))
	require.NoError(t, err)

	path, err := summary.WriteManifest()
	require.NoError(t, err)
	require.Equal(t, filepath.Join(summary.LogsDir, "manifest.json"), path)

	var decoded Summary
	require.NoError(t, readJSON(t, path, &decoded))
	require.Equal(t, summary.RunID, decoded.RunID)
	require.Equal(t, summary.Total, decoded.Total)
	require.Equal(t, summary.Completed, decoded.Completed)
	require.Equal(t, summary.Failed, decoded.Failed)
}
