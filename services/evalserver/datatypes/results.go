// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package datatypes

import "time"

// Provenance records where a generated summary came from.
type Provenance string

const (
	// ProvenanceRemote marks a summary produced by a connected browser worker.
	ProvenanceRemote Provenance = "remote"

	// ProvenanceFallback marks a synthesized placeholder summary, used when
	// no worker replied within the retry budget or the worker reported an
	// error payload.
	ProvenanceFallback Provenance = "fallback"
)

// ScoredResult is one scored (article, configuration) outcome. Results are
// appended once to the run's result sequence and never mutated afterwards.
type ScoredResult struct {
	ArticleID        int                `json:"article_id"`
	Configuration    string             `json:"configuration"`
	ArticleLength    int                `json:"article_length"`
	ReferenceSummary string             `json:"reference_summary"`
	GeneratedSummary string             `json:"generated_summary"`
	Scores           map[string]float64 `json:"scores"`
	CompressionRatio float64            `json:"compression_ratio"`
	ProcessingTimeMs int64              `json:"processing_time_ms"`
	Timestamp        time.Time          `json:"timestamp"`
	Provenance       Provenance         `json:"provenance"`
}

// RunSnapshot is a point-in-time copy of a run's state, safe to hand to
// HTTP handlers and websocket observers without exposing the live state to
// concurrent mutation.
type RunSnapshot struct {
	IsRunning       bool           `json:"is_running"`
	CurrentArticle  int            `json:"current_article"`
	TotalArticles   int            `json:"total_articles"`
	Results         []ScoredResult `json:"results"`
	Logs            []string       `json:"logs"`
	Mode            EvaluationMode `json:"evaluation_mode"`
	SelectedConfig  string         `json:"selected_config"`
	SelectedDataset string         `json:"selected_dataset"`
}
