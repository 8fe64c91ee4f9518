// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package dataset

// Info describes one dataset in the static catalog: its display name, the
// upstream source it was snapshotted from, and which record fields hold the
// article body and reference summary.
type Info struct {
	Name         string `json:"name"`
	SourceName   string `json:"dataset_name"`
	Version      string `json:"version,omitempty"`
	Split        string `json:"split,omitempty"`
	ArticleField string `json:"article_field"`
	SummaryField string `json:"summary_field"`
	Description  string `json:"description"`
}

// SampleKey is the built-in dataset that needs no on-disk snapshot.
const SampleKey = "sample"

// Catalog is the static dataset catalog. Keys are the selection values the
// control surface accepts; an unknown key yields the sample fallback.
var Catalog = map[string]Info{
	"cnn_dailymail": {
		Name:         "CNN/DailyMail",
		SourceName:   "cnn_dailymail",
		Version:      "3.0.0",
		Split:        "test",
		ArticleField: "article",
		SummaryField: "highlights",
		Description:  "News articles with human-written summaries",
	},
	"xsum": {
		Name:         "XSum (BBC)",
		SourceName:   "xsum",
		Split:        "test",
		ArticleField: "document",
		SummaryField: "summary",
		Description:  "BBC articles with single-sentence summaries",
	},
	"reddit_tifu": {
		Name:         "Reddit TIFU",
		SourceName:   "reddit_tifu",
		Version:      "long",
		Split:        "test",
		ArticleField: "documents",
		SummaryField: "tldr",
		Description:  "Reddit posts with TL;DR summaries",
	},
	"multi_news": {
		Name:         "Multi-News",
		SourceName:   "multi_news",
		Split:        "test",
		ArticleField: "document",
		SummaryField: "summary",
		Description:  "Multi-document news summarization",
	},
	SampleKey: {
		Name:         "Sample Articles",
		SourceName:   "sample",
		ArticleField: "article",
		SummaryField: "reference_summary",
		Description:  "Built-in sample articles for testing",
	},
}

// Known reports whether key names a cataloged dataset.
func Known(key string) bool {
	_, ok := Catalog[key]
	return ok
}

// DisplayName returns the catalog display name, or the key itself when the
// key is unknown.
func DisplayName(key string) string {
	if info, ok := Catalog[key]; ok {
		return info.Name
	}
	return key
}
