// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package export writes evaluation results to disk as CSV snapshots.
package export

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/jinterlante1206/SummarizeBench/services/evalserver/datatypes"
)

// ErrNoResults means an export was requested before any results existed.
var ErrNoResults = errors.New("no results to export")

// header is the fixed CSV column order. Score columns follow the metric
// names the scorer produces.
var header = []string{
	"article_id",
	"configuration",
	"dataset",
	"article_length",
	"generated_summary",
	"reference_summary",
	"rouge1_f",
	"rouge2_f",
	"rougeL_f",
	"compression_ratio",
	"processing_time_ms",
	"provenance",
	"timestamp",
}

// Writer persists result snapshots under a results directory.
type Writer struct {
	dir string
}

// NewWriter creates the results directory if needed.
func NewWriter(dir string) (*Writer, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating results directory %s: %w", dir, err)
	}
	return &Writer{dir: dir}, nil
}

// Export writes all results to a timestamped CSV file and returns its path.
// Returns ErrNoResults when the slice is empty.
func (w *Writer) Export(dataset string, results []datatypes.ScoredResult) (string, error) {
	if len(results) == 0 {
		return "", ErrNoResults
	}

	name := fmt.Sprintf("summarization_results_%s.csv", time.Now().Format("20060102_150405"))
	path := filepath.Join(w.dir, name)

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("creating export file: %w", err)
	}
	defer f.Close()

	if err := WriteCSV(f, dataset, results); err != nil {
		return "", err
	}
	return path, nil
}

// WriteCSV streams results as CSV to any writer. Split out from Export so
// handlers can also stream the payload directly in a response body.
func WriteCSV(out io.Writer, dataset string, results []datatypes.ScoredResult) error {
	cw := csv.NewWriter(out)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("writing csv header: %w", err)
	}

	for _, r := range results {
		row := []string{
			strconv.Itoa(r.ArticleID),
			r.Configuration,
			dataset,
			strconv.Itoa(r.ArticleLength),
			r.GeneratedSummary,
			r.ReferenceSummary,
			formatScore(r.Scores["rouge1"]),
			formatScore(r.Scores["rouge2"]),
			formatScore(r.Scores["rougeL"]),
			strconv.FormatFloat(r.CompressionRatio, 'f', 4, 64),
			strconv.FormatInt(r.ProcessingTimeMs, 10),
			string(r.Provenance),
			r.Timestamp.Format(time.RFC3339),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("writing csv row for article %d: %w", r.ArticleID, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

func formatScore(v float64) string {
	return strconv.FormatFloat(v, 'f', 4, 64)
}
