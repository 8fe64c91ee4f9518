// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package scoring implements ROUGE evaluation of candidate summaries
// against reference summaries.
//
// # Description
//
// The scorer is a pure function: identical inputs always produce identical
// outputs, and scoring has no side effects. Supported metrics are the
// f-measures of ROUGE-1 (unigram overlap), ROUGE-2 (bigram overlap), and
// ROUGE-L (longest common subsequence).
//
// # Thread Safety
//
// A RougeScorer is immutable after construction and safe for concurrent use.
package scoring

import (
	"fmt"
	"strings"
	"unicode"
)

// Known metric names.
const (
	MetricRouge1 = "rouge1"
	MetricRouge2 = "rouge2"
	MetricRougeL = "rougeL"
)

// DefaultMetrics is the standard metric set computed per result.
var DefaultMetrics = []string{MetricRouge1, MetricRouge2, MetricRougeL}

// RougeScorer computes ROUGE f-measures for a fixed metric set.
type RougeScorer struct {
	metrics    []string
	useStemmer bool
}

// NewRougeScorer builds a scorer for the given metric names.
// Unknown metric names are rejected so misconfiguration fails at startup,
// not mid-run.
func NewRougeScorer(metrics []string, useStemmer bool) (*RougeScorer, error) {
	if len(metrics) == 0 {
		metrics = DefaultMetrics
	}
	for _, m := range metrics {
		switch m {
		case MetricRouge1, MetricRouge2, MetricRougeL:
		default:
			return nil, fmt.Errorf("unknown rouge metric %q", m)
		}
	}
	out := make([]string, len(metrics))
	copy(out, metrics)
	return &RougeScorer{metrics: out, useStemmer: useStemmer}, nil
}

// Metrics returns the metric names this scorer computes, in order.
func (s *RougeScorer) Metrics() []string {
	out := make([]string, len(s.metrics))
	copy(out, s.metrics)
	return out
}

// Score computes the configured metrics for one (reference, candidate) pair.
func (s *RougeScorer) Score(reference, candidate string) map[string]float64 {
	refTokens := s.tokenize(reference)
	candTokens := s.tokenize(candidate)

	scores := make(map[string]float64, len(s.metrics))
	for _, m := range s.metrics {
		switch m {
		case MetricRouge1:
			scores[m] = ngramFMeasure(refTokens, candTokens, 1)
		case MetricRouge2:
			scores[m] = ngramFMeasure(refTokens, candTokens, 2)
		case MetricRougeL:
			scores[m] = lcsFMeasure(refTokens, candTokens)
		}
	}
	return scores
}

// tokenize lowercases, splits on non-alphanumeric runes, and optionally
// stems each token.
func (s *RougeScorer) tokenize(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	if !s.useStemmer {
		return fields
	}
	for i, tok := range fields {
		fields[i] = stem(tok)
	}
	return fields
}

// stem applies a small suffix-stripping stemmer. It covers the plural and
// participle suffixes that dominate news-summary vocabulary; it is not a
// full Porter implementation.
func stem(tok string) string {
	if len(tok) <= 3 {
		return tok
	}
	switch {
	case strings.HasSuffix(tok, "sses"):
		return tok[:len(tok)-2]
	case strings.HasSuffix(tok, "ies"):
		return tok[:len(tok)-2]
	case strings.HasSuffix(tok, "ss"):
		return tok
	case strings.HasSuffix(tok, "ing") && len(tok) > 5:
		return tok[:len(tok)-3]
	case strings.HasSuffix(tok, "ed") && len(tok) > 4:
		return tok[:len(tok)-2]
	case strings.HasSuffix(tok, "s"):
		return tok[:len(tok)-1]
	}
	return tok
}

// ngramFMeasure computes the clipped n-gram overlap f-measure.
func ngramFMeasure(ref, cand []string, n int) float64 {
	refGrams := countNgrams(ref, n)
	candGrams := countNgrams(cand, n)
	if len(refGrams) == 0 || len(candGrams) == 0 {
		return 0
	}

	var overlap, refTotal, candTotal int
	for gram, count := range refGrams {
		refTotal += count
		if c, ok := candGrams[gram]; ok {
			overlap += minInt(count, c)
		}
	}
	for _, count := range candGrams {
		candTotal += count
	}
	if overlap == 0 {
		return 0
	}

	precision := float64(overlap) / float64(candTotal)
	recall := float64(overlap) / float64(refTotal)
	return 2 * precision * recall / (precision + recall)
}

// lcsFMeasure computes the f-measure of the longest common subsequence.
func lcsFMeasure(ref, cand []string) float64 {
	if len(ref) == 0 || len(cand) == 0 {
		return 0
	}
	lcs := lcsLength(ref, cand)
	if lcs == 0 {
		return 0
	}
	precision := float64(lcs) / float64(len(cand))
	recall := float64(lcs) / float64(len(ref))
	return 2 * precision * recall / (precision + recall)
}

// lcsLength is the classic dynamic-programming LCS with a rolling row.
func lcsLength(a, b []string) int {
	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			if a[i-1] == b[j-1] {
				curr[j] = prev[j-1] + 1
			} else if prev[j] >= curr[j-1] {
				curr[j] = prev[j]
			} else {
				curr[j] = curr[j-1]
			}
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}

func countNgrams(tokens []string, n int) map[string]int {
	grams := make(map[string]int)
	for i := 0; i+n <= len(tokens); i++ {
		grams[strings.Join(tokens[i:i+n], " ")]++
	}
	return grams
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
