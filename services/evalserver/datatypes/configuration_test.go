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
	"testing"
)

func TestSweepConfigurations(t *testing.T) {
	configs := SweepConfigurations()

	if len(configs) != 24 {
		t.Fatalf("sweep should produce 24 configurations, got %d", len(configs))
	}

	seen := make(map[string]bool, len(configs))
	for _, cfg := range configs {
		key := cfg.String()
		if seen[key] {
			t.Errorf("duplicate configuration %s in sweep", key)
		}
		seen[key] = true
	}

	// Order must be stable: types outermost, formats innermost.
	if configs[0].String() != "tldr_short_plain-text" {
		t.Errorf("first sweep configuration = %s, want tldr_short_plain-text", configs[0])
	}
	if configs[1].String() != "tldr_short_markdown" {
		t.Errorf("second sweep configuration = %s, want tldr_short_markdown", configs[1])
	}
	if configs[23].String() != "headline_long_markdown" {
		t.Errorf("last sweep configuration = %s, want headline_long_markdown", configs[23])
	}
}

func TestParseConfiguration_RoundTrip(t *testing.T) {
	for _, cfg := range SweepConfigurations() {
		parsed, err := ParseConfiguration(cfg.String())
		if err != nil {
			t.Fatalf("ParseConfiguration(%q) error = %v", cfg.String(), err)
		}
		if parsed != cfg {
			t.Errorf("round trip mismatch: %v != %v", parsed, cfg)
		}
	}
}

func TestParseConfiguration_Rejects(t *testing.T) {
	tests := []string{
		"",
		"tldr_short",
		"tldr_short_plain-text_extra",
		"bogus_short_plain-text",
		"tldr_bogus_plain-text",
		"tldr_short_bogus",
	}
	for _, in := range tests {
		t.Run(in, func(t *testing.T) {
			if _, err := ParseConfiguration(in); err == nil {
				t.Errorf("ParseConfiguration(%q) should fail", in)
			}
		})
	}
}

func TestDefaultConfigurationParses(t *testing.T) {
	if _, err := ParseConfiguration(DefaultConfiguration); err != nil {
		t.Fatalf("the default configuration must parse: %v", err)
	}
}
