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
	"sync"
	"time"

	"github.com/jinterlante1206/SummarizeBench/services/evalserver/datatypes"
)

// PendingRequest correlates one issued summarization attempt with its
// eventual reply. Entries are mutated exactly once (result populated,
// completed flipped) by whichever reply handler matches them first, and
// deleted after consumption or final timeout.
type PendingRequest struct {
	ID           string
	Article      datatypes.Article
	Config       datatypes.Configuration
	Result       *datatypes.ScoredResult
	Completed    bool
	IssuedAt     time.Time
	RetryAttempt int

	// seq is the explicit issuance counter used for last-issued-wins
	// correlation. Request ids embed an issue timestamp, which can
	// collide under fast retries; the counter cannot.
	seq uint64
}

// PendingTable is one run's registry of outstanding requests.
//
// # Thread Safety
//
// All operations serialize on the table's own mutex, scoped to the run, so
// the run loop's poll path and the websocket reply path can interleave
// safely without blocking unrelated runs.
type PendingTable struct {
	mu      sync.Mutex
	entries map[string]*PendingRequest
	nextSeq uint64
}

// NewPendingTable creates an empty table.
func NewPendingTable() *PendingTable {
	return &PendingTable{entries: make(map[string]*PendingRequest)}
}

// Register adds a new incomplete entry and stamps its issuance sequence
// number. The caller owns id uniqueness (ids embed the attempt timestamp).
func (t *PendingTable) Register(req *PendingRequest) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.nextSeq++
	req.seq = t.nextSeq
	req.Completed = false
	req.Result = nil
	t.entries[req.ID] = req
}

// LookupLatest returns the id of the most recently issued entry for the
// given (article, configuration) pair. When retries have left duplicate
// entries, last-issued wins, decided by sequence number rather than by
// comparing id strings.
func (t *PendingTable) LookupLatest(articleID int, config string) (string, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	var best *PendingRequest
	for _, e := range t.entries {
		if e.Article.ID != articleID || e.Config.String() != config {
			continue
		}
		if best == nil || e.seq > best.seq {
			best = e
		}
	}
	if best == nil {
		return "", false
	}
	return best.ID, true
}

// Get returns a copy of the entry, preserving the data the reply handler
// needs (article, configuration, issue time) without leaking the live
// pointer outside the lock.
func (t *PendingTable) Get(id string) (PendingRequest, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	e, ok := t.entries[id]
	if !ok {
		return PendingRequest{}, false
	}
	return *e, true
}

// Complete marks the entry completed with its result. Returns false and
// mutates nothing when the id is unknown or already completed; this is the
// at-most-once guarantee under duplicate or late delivery.
func (t *PendingTable) Complete(id string, result datatypes.ScoredResult) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	e, ok := t.entries[id]
	if !ok || e.Completed {
		return false
	}
	e.Result = &result
	e.Completed = true
	return true
}

// TakeCompleted consumes a completed entry: it returns the result and
// removes the entry so a late duplicate can never be consumed twice.
// Returns false while the entry is still pending or already gone.
func (t *PendingTable) TakeCompleted(id string) (datatypes.ScoredResult, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	e, ok := t.entries[id]
	if !ok || !e.Completed || e.Result == nil {
		return datatypes.ScoredResult{}, false
	}
	result := *e.Result
	delete(t.entries, id)
	return result, true
}

// Delete removes an entry regardless of state. Used by the dispatch
// protocol to clear a stale entry after an attempt times out.
func (t *PendingTable) Delete(id string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.entries, id)
}

// PurgeCompleted removes every completed entry and returns how many were
// dropped. Run completion triggers this so abandoned replies do not
// accumulate for the process lifetime.
func (t *PendingTable) PurgeCompleted() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	count := 0
	for id, e := range t.entries {
		if e.Completed {
			delete(t.entries, id)
			count++
		}
	}
	return count
}

// Len returns the number of outstanding entries.
func (t *PendingTable) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.entries)
}
