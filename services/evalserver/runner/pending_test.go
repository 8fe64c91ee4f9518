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
	"testing"
	"time"

	"github.com/jinterlante1206/SummarizeBench/services/evalserver/datatypes"
)

func testConfig() datatypes.Configuration {
	return datatypes.Configuration{Type: "tldr", Length: "short", Format: "plain-text"}
}

func registerEntry(t *testing.T, table *PendingTable, id string, articleID int) {
	t.Helper()
	table.Register(&PendingRequest{
		ID:       id,
		Article:  datatypes.Article{ID: articleID, Text: "body"},
		Config:   testConfig(),
		IssuedAt: time.Now(),
	})
}

func TestPendingTable_CompleteAtMostOnce(t *testing.T) {
	table := NewPendingTable()
	registerEntry(t, table, "req_1", 1)

	result := datatypes.ScoredResult{ArticleID: 1, GeneratedSummary: "first"}
	if !table.Complete("req_1", result) {
		t.Fatal("first Complete should succeed")
	}

	dup := datatypes.ScoredResult{ArticleID: 1, GeneratedSummary: "second"}
	if table.Complete("req_1", dup) {
		t.Fatal("second Complete must be rejected")
	}

	got, ok := table.TakeCompleted("req_1")
	if !ok {
		t.Fatal("TakeCompleted should find the completed entry")
	}
	if got.GeneratedSummary != "first" {
		t.Errorf("stored result = %q, want the first delivery", got.GeneratedSummary)
	}
}

func TestPendingTable_CompleteUnknownID(t *testing.T) {
	table := NewPendingTable()
	if table.Complete("nope", datatypes.ScoredResult{}) {
		t.Error("completing an unknown id must fail")
	}
}

func TestPendingTable_TakeCompletedConsumes(t *testing.T) {
	table := NewPendingTable()
	registerEntry(t, table, "req_1", 1)
	table.Complete("req_1", datatypes.ScoredResult{ArticleID: 1})

	if _, ok := table.TakeCompleted("req_1"); !ok {
		t.Fatal("first take should succeed")
	}
	if _, ok := table.TakeCompleted("req_1"); ok {
		t.Error("second take must fail: the entry was consumed")
	}
	if table.Len() != 0 {
		t.Errorf("table should be empty after consumption, has %d", table.Len())
	}
}

func TestPendingTable_TakeCompletedWhilePending(t *testing.T) {
	table := NewPendingTable()
	registerEntry(t, table, "req_1", 1)

	if _, ok := table.TakeCompleted("req_1"); ok {
		t.Error("taking a still-pending entry must fail")
	}
	if table.Len() != 1 {
		t.Error("a failed take must not remove the entry")
	}
}

func TestPendingTable_LookupLatestLastIssuedWins(t *testing.T) {
	table := NewPendingTable()

	// Deliberately register ids whose lexicographic order contradicts the
	// issue order; correlation must follow the sequence counter.
	registerEntry(t, table, "req_1_tldr_short_plain-text_999", 1)
	registerEntry(t, table, "req_1_tldr_short_plain-text_111", 1)

	id, ok := table.LookupLatest(1, testConfig().String())
	if !ok {
		t.Fatal("LookupLatest should find an entry")
	}
	if id != "req_1_tldr_short_plain-text_111" {
		t.Errorf("LookupLatest = %s, want the most recently issued id", id)
	}
}

func TestPendingTable_LookupLatestFiltersPair(t *testing.T) {
	table := NewPendingTable()
	registerEntry(t, table, "req_a", 1)
	table.Register(&PendingRequest{
		ID:      "req_b",
		Article: datatypes.Article{ID: 2},
		Config:  testConfig(),
	})

	id, ok := table.LookupLatest(1, testConfig().String())
	if !ok || id != "req_a" {
		t.Errorf("LookupLatest(1) = %s/%v, want req_a", id, ok)
	}
	if _, ok := table.LookupLatest(3, testConfig().String()); ok {
		t.Error("LookupLatest for an unknown article must miss")
	}
}

func TestPendingTable_PurgeCompleted(t *testing.T) {
	table := NewPendingTable()
	registerEntry(t, table, "done_1", 1)
	registerEntry(t, table, "done_2", 2)
	registerEntry(t, table, "pending", 3)
	table.Complete("done_1", datatypes.ScoredResult{})
	table.Complete("done_2", datatypes.ScoredResult{})

	if purged := table.PurgeCompleted(); purged != 2 {
		t.Errorf("PurgeCompleted() = %d, want 2", purged)
	}
	if table.Len() != 1 {
		t.Errorf("table should keep the pending entry, has %d", table.Len())
	}
	if _, ok := table.Get("pending"); !ok {
		t.Error("the pending entry must survive the purge")
	}
}

func TestPendingTable_ConcurrentCompletion(t *testing.T) {
	table := NewPendingTable()
	registerEntry(t, table, "req_1", 1)

	var wins int64
	var mu sync.Mutex
	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			if table.Complete("req_1", datatypes.ScoredResult{ArticleID: n}) {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}(i)
	}
	wg.Wait()

	if wins != 1 {
		t.Errorf("exactly one concurrent completion must win, got %d", wins)
	}
}
