// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package runner

import (
	"fmt"
	"sync"
	"time"

	"github.com/jinterlante1206/SummarizeBench/services/evalserver/datatypes"
)

// Run owns all state for one run identity: the mutable run state and the
// pending request table. Both are guarded by the run's own mutex so
// concurrent runs under different identities never contend.
type Run struct {
	mu sync.Mutex

	isRunning       bool
	currentArticle  int
	totalArticles   int
	results         []datatypes.ScoredResult
	logs            []string
	mode            datatypes.EvaluationMode
	selectedConfig  string
	selectedDataset string

	logMaxEntries int
	table         *PendingTable
}

// Table returns the run's pending request table. The table has its own
// lock; callers never need the run lock to use it.
func (r *Run) Table() *PendingTable {
	return r.table
}

// IsRunning reports whether the run loop is active. The loop re-checks this
// at the top of every article iteration so a stop takes effect within one
// article's processing.
func (r *Run) IsRunning() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.isRunning
}

// tryStart transitions Idle -> Running and resets run-scoped state.
// Returns false without touching state when a run is already active.
func (r *Run) tryStart(dataset, selectedConfig string, mode datatypes.EvaluationMode) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.isRunning {
		return false
	}
	r.isRunning = true
	r.currentArticle = 0
	r.totalArticles = 0
	r.results = nil
	r.logs = nil
	r.mode = mode
	r.selectedConfig = selectedConfig
	r.selectedDataset = dataset
	return true
}

// stop flips the running flag. Already-appended results are retained.
func (r *Run) stop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.isRunning = false
}

func (r *Run) setTotalArticles(n int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.totalArticles = n
}

func (r *Run) advanceArticle(n int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.currentArticle = n
}

func (r *Run) appendResult(result datatypes.ScoredResult) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.results = append(r.results, result)
}

// appendLog records a timestamped log line, dropping the oldest entries
// once the cap is reached. Returns the formatted line for broadcast.
func (r *Run) appendLog(message string) string {
	line := fmt.Sprintf("[%s] %s", time.Now().Format("15:04:05"), message)
	r.mu.Lock()
	defer r.mu.Unlock()
	r.logs = append(r.logs, line)
	if r.logMaxEntries > 0 && len(r.logs) > r.logMaxEntries {
		r.logs = r.logs[len(r.logs)-r.logMaxEntries:]
	}
	return line
}

// Results returns a copy of the result sequence in append order.
func (r *Run) Results() []datatypes.ScoredResult {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]datatypes.ScoredResult, len(r.results))
	copy(out, r.results)
	return out
}

// Snapshot returns a point-in-time copy of the run state.
func (r *Run) Snapshot() datatypes.RunSnapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	results := make([]datatypes.ScoredResult, len(r.results))
	copy(results, r.results)
	logs := make([]string, len(r.logs))
	copy(logs, r.logs)
	return datatypes.RunSnapshot{
		IsRunning:       r.isRunning,
		CurrentArticle:  r.currentArticle,
		TotalArticles:   r.totalArticles,
		Results:         results,
		Logs:            logs,
		Mode:            r.mode,
		SelectedConfig:  r.selectedConfig,
		SelectedDataset: r.selectedDataset,
	}
}

// Registry is the process-wide table of runs keyed by session identity.
// Entries are created lazily on first access and persist for the process
// lifetime; completed runs stay queryable.
type Registry struct {
	mu            sync.RWMutex
	runs          map[string]*Run
	logMaxEntries int
}

// NewRegistry creates an empty registry. logMaxEntries caps each run's log
// trail.
func NewRegistry(logMaxEntries int) *Registry {
	return &Registry{
		runs:          make(map[string]*Run),
		logMaxEntries: logMaxEntries,
	}
}

// Get returns the run for the given session identity, creating it on first
// access.
func (g *Registry) Get(session string) *Run {
	g.mu.RLock()
	run, ok := g.runs[session]
	g.mu.RUnlock()
	if ok {
		return run
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	if run, ok := g.runs[session]; ok {
		return run
	}
	run = &Run{
		table:         NewPendingTable(),
		logMaxEntries: g.logMaxEntries,
	}
	g.runs[session] = run
	return run
}
