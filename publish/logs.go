// SPDX-FileCopyrightText: Copyright © 2024-2026 crosspub developers
//
// SPDX-License-Identifier: MPL-2.0

package publish

import (
	"encoding/hex"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/charlievieth/fastwalk"
	"github.com/ulikunitz/xz"
	"github.com/zeebo/blake3"

	"github.com/arvikon/crosspub/utils"
)

var unsafeRe = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// AttemptLogPath names the log file of one (target, attempt) pair inside a
// run directory.
func AttemptLogPath(runDir, version string, attempt int) string {
	name := fmt.Sprintf("%s.attempt-%d.log", unsafeRe.ReplaceAllString(version, "_"), attempt)
	return filepath.Join(runDir, name)
}

// DigestFile returns the hex blake3 digest of a finished attempt log.
func DigestFile(path string) (string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	sum := blake3.Sum256(raw)
	return hex.EncodeToString(sum[:]), nil
}

// RunInfo describes one past run directory under the logs root.
type RunInfo struct {
	ID      string
	Path    string
	Files   int
	Size    int64
	ModTime time.Time
}

// ScanRuns walks the logs root and aggregates file counts and sizes per run
// directory, newest run first.
func ScanRuns(root string) (runs []RunInfo, err error) {
	if !utils.PathExists(root) {
		return
	}

	byID := make(map[string]*RunInfo)
	var mutex sync.Mutex

	walkConf := fastwalk.Config{
		Follow: false,
	}
	err = fastwalk.Walk(&walkConf, root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if path == root {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		id := strings.Split(rel, string(filepath.Separator))[0]

		mutex.Lock()
		defer mutex.Unlock()

		run, ok := byID[id]
		if !ok {
			run = &RunInfo{ID: id, Path: filepath.Join(root, id)}
			byID[id] = run
		}
		if d.IsDir() {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return err
		}
		run.Files++
		run.Size += info.Size()
		if info.ModTime().After(run.ModTime) {
			run.ModTime = info.ModTime()
		}
		return nil
	})
	if err != nil {
		return
	}

	for _, run := range byID {
		runs = append(runs, *run)
	}
	sort.Slice(runs, func(i, j int) bool {
		return runs[i].ModTime.After(runs[j].ModTime)
	})
	return
}

// PruneRuns keeps the newest `keep` run directories and prunes the rest.
// With compress set, attempt logs of pruned runs are rewritten as .log.xz in
// place instead of being deleted.
func PruneRuns(root string, keep int, compress bool) (pruned []RunInfo, err error) {
	runs, err := ScanRuns(root)
	if err != nil || len(runs) <= keep {
		return
	}
	if keep < 0 {
		keep = 0
	}

	for _, run := range runs[keep:] {
		if compress {
			err = compressRun(run.Path)
		} else {
			err = os.RemoveAll(run.Path)
		}
		if err != nil {
			return
		}
		pruned = append(pruned, run)
	}
	return
}

func compressRun(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".log") {
			continue
		}
		if err := compressFile(filepath.Join(dir, entry.Name())); err != nil {
			return err
		}
	}
	return nil
}

func compressFile(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	out, err := os.Create(path + ".xz")
	if err != nil {
		return err
	}

	w, err := xz.NewWriter(out)
	if err != nil {
		out.Close()
		return err
	}
	if _, err = w.Write(raw); err == nil {
		err = w.Close()
	} else {
		w.Close()
	}
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return err
	}

	return os.Remove(path)
}
