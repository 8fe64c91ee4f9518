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

import (
	"fmt"
	"strings"
)

// Summary types, lengths, and formats follow the browser Summarizer API
// surface. The enumerations are closed: a configuration is always one value
// from each axis.
var (
	SummaryTypes   = []string{"tldr", "key-points", "teaser", "headline"}
	SummaryLengths = []string{"short", "medium", "long"}
	SummaryFormats = []string{"plain-text", "markdown"}
)

// EvaluationMode selects how many configurations each article is summarized
// under.
type EvaluationMode string

const (
	// ModeSingle applies one configuration to every article.
	ModeSingle EvaluationMode = "single"

	// ModeSweep applies the full type x length x format cross-product
	// (24 configurations) to every article.
	ModeSweep EvaluationMode = "sweep"
)

// DefaultConfiguration matches the browser summarizer defaults.
const DefaultConfiguration = "tldr_short_plain-text"

// Configuration is the (type, length, format) triple sent to the browser
// worker. Its wire form is the underscore-joined string,
// e.g. "tldr_short_plain-text".
type Configuration struct {
	Type   string `json:"type"`
	Length string `json:"length"`
	Format string `json:"format"`
}

// String returns the wire form of the configuration.
func (c Configuration) String() string {
	return c.Type + "_" + c.Length + "_" + c.Format
}

// ParseConfiguration parses the wire form back into a Configuration.
// The format axis may itself contain an underscore-free token only, so the
// string splits unambiguously into exactly three parts.
func ParseConfiguration(s string) (Configuration, error) {
	parts := strings.Split(s, "_")
	if len(parts) != 3 {
		return Configuration{}, fmt.Errorf("malformed configuration %q: want type_length_format", s)
	}
	cfg := Configuration{Type: parts[0], Length: parts[1], Format: parts[2]}
	if !contains(SummaryTypes, cfg.Type) {
		return Configuration{}, fmt.Errorf("unknown summary type %q", cfg.Type)
	}
	if !contains(SummaryLengths, cfg.Length) {
		return Configuration{}, fmt.Errorf("unknown summary length %q", cfg.Length)
	}
	if !contains(SummaryFormats, cfg.Format) {
		return Configuration{}, fmt.Errorf("unknown summary format %q", cfg.Format)
	}
	return cfg, nil
}

// SweepConfigurations returns the full cross-product in a fixed order:
// types outermost, formats innermost. The run controller relies on this
// order being stable so sweep results append deterministically.
func SweepConfigurations() []Configuration {
	out := make([]Configuration, 0, len(SummaryTypes)*len(SummaryLengths)*len(SummaryFormats))
	for _, t := range SummaryTypes {
		for _, l := range SummaryLengths {
			for _, f := range SummaryFormats {
				out = append(out, Configuration{Type: t, Length: l, Format: f})
			}
		}
	}
	return out
}

func contains(set []string, v string) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}
