// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package dataset loads article sequences for evaluation runs.
//
// The loader's contract is that Load never fails past this boundary: any
// internal problem (unknown key, missing snapshot file, parse error) yields
// the bundled sample articles instead of an error. The run controller can
// therefore always start.
package dataset

import (
	"bufio"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/jinterlante1206/SummarizeBench/services/evalserver/datatypes"
)

// Loader reads dataset snapshots from a data directory. Snapshots are JSONL
// files named "<key>.jsonl" whose records carry the fields named by the
// catalog entry.
type Loader struct {
	dataDir          string
	maxArticleLength int
}

// NewLoader builds a loader rooted at dataDir. Articles longer than
// maxArticleLength characters are filtered out, matching the browser
// summarizer's practical input ceiling.
func NewLoader(dataDir string, maxArticleLength int) *Loader {
	return &Loader{dataDir: dataDir, maxArticleLength: maxArticleLength}
}

// Load returns up to maxCount articles for the given dataset key.
// Never returns an empty slice unless maxCount is zero: failures fall back
// to the bundled samples.
func (l *Loader) Load(key string, maxCount int) []datatypes.Article {
	info, ok := Catalog[key]
	if !ok {
		slog.Warn("unknown dataset, falling back to sample articles", "dataset", key)
		return l.samples(maxCount)
	}
	if key == SampleKey {
		return l.samples(maxCount)
	}

	articles, err := l.loadSnapshot(key, info, maxCount)
	if err != nil {
		slog.Error("dataset snapshot load failed, falling back to sample articles",
			"dataset", key, "error", err)
		return l.samples(maxCount)
	}
	if len(articles) == 0 {
		slog.Warn("dataset snapshot yielded no usable articles, falling back to sample articles",
			"dataset", key)
		return l.samples(maxCount)
	}

	slog.Info("loaded articles from dataset snapshot",
		"dataset", info.Name, "count", len(articles))
	return articles
}

func (l *Loader) loadSnapshot(key string, info Info, maxCount int) ([]datatypes.Article, error) {
	path := filepath.Join(l.dataDir, key+".jsonl")
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var articles []datatypes.Article
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	for i := 0; scanner.Scan() && len(articles) < maxCount; i++ {
		var record map[string]any
		if err := json.Unmarshal(scanner.Bytes(), &record); err != nil {
			slog.Warn("skipping malformed dataset record", "dataset", key, "line", i+1, "error", err)
			continue
		}

		text := fieldAsString(record[info.ArticleField])
		summary := fieldAsString(record[info.SummaryField])
		if text == "" || summary == "" {
			continue
		}
		if len(text) >= l.maxArticleLength {
			continue
		}

		articles = append(articles, datatypes.Article{
			ID:               i,
			Text:             text,
			ReferenceSummary: summary,
			Dataset:          key,
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return articles, nil
}

func (l *Loader) samples(maxCount int) []datatypes.Article {
	n := maxCount
	if n > len(datatypes.SampleArticles) {
		n = len(datatypes.SampleArticles)
	}
	if n < 0 {
		n = 0
	}
	out := make([]datatypes.Article, n)
	copy(out, datatypes.SampleArticles[:n])
	return out
}

// fieldAsString handles records that store the field as either a string or
// a list of strings (some upstream datasets split documents into segments).
func fieldAsString(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case []any:
		parts := make([]string, 0, len(val))
		for _, p := range val {
			if s, ok := p.(string); ok {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, " ")
	default:
		return ""
	}
}
