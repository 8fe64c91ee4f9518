// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package export

import (
	"bytes"
	"encoding/csv"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/jinterlante1206/SummarizeBench/services/evalserver/datatypes"
)

func sampleResults() []datatypes.ScoredResult {
	return []datatypes.ScoredResult{
		{
			ArticleID:        0,
			Configuration:    "tldr_short_plain-text",
			ArticleLength:    120,
			ReferenceSummary: "Reference one.",
			GeneratedSummary: "Generated, with a comma.",
			Scores:           map[string]float64{"rouge1": 0.5, "rouge2": 0.25, "rougeL": 0.4},
			CompressionRatio: 0.2,
			ProcessingTimeMs: 1500,
			Timestamp:        time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
			Provenance:       datatypes.ProvenanceRemote,
		},
		{
			ArticleID:        1,
			Configuration:    "headline_long_markdown",
			ArticleLength:    300,
			ReferenceSummary: "Reference two.",
			GeneratedSummary: "Line with \"quotes\".",
			Scores:           map[string]float64{"rouge1": 0.1, "rouge2": 0, "rougeL": 0.1},
			CompressionRatio: 0.1,
			ProcessingTimeMs: 900,
			Timestamp:        time.Date(2026, 3, 1, 12, 1, 0, 0, time.UTC),
			Provenance:       datatypes.ProvenanceFallback,
		},
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, "xsum", sampleResults()); err != nil {
		t.Fatalf("WriteCSV() error = %v", err)
	}

	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("output is not valid CSV: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("got %d rows, want header + 2 results", len(records))
	}
	if records[0][0] != "article_id" {
		t.Errorf("header row starts with %q", records[0][0])
	}

	first := records[1]
	if first[0] != "0" || first[1] != "tldr_short_plain-text" || first[2] != "xsum" {
		t.Errorf("unexpected first row prefix: %v", first[:3])
	}
	if first[4] != "Generated, with a comma." {
		t.Errorf("comma-containing field mangled: %q", first[4])
	}
	if first[6] != "0.5000" {
		t.Errorf("rouge1 = %q, want 0.5000", first[6])
	}
	if got := records[2][11]; got != "fallback" {
		t.Errorf("provenance column = %q, want fallback", got)
	}
}

func TestExport_WritesTimestampedFile(t *testing.T) {
	dir := t.TempDir()
	w, err := NewWriter(filepath.Join(dir, "results"))
	if err != nil {
		t.Fatalf("NewWriter() error = %v", err)
	}

	path, err := w.Export("sample", sampleResults())
	if err != nil {
		t.Fatalf("Export() error = %v", err)
	}

	base := filepath.Base(path)
	if !strings.HasPrefix(base, "summarization_results_") || !strings.HasSuffix(base, ".csv") {
		t.Errorf("unexpected export filename %q", base)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading export: %v", err)
	}
	if !strings.Contains(string(raw), "tldr_short_plain-text") {
		t.Error("export file missing result data")
	}
}

func TestExport_EmptyResults(t *testing.T) {
	w, err := NewWriter(t.TempDir())
	if err != nil {
		t.Fatalf("NewWriter() error = %v", err)
	}
	if _, err := w.Export("sample", nil); !errors.Is(err, ErrNoResults) {
		t.Errorf("Export(empty) error = %v, want ErrNoResults", err)
	}
}
