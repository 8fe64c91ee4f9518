// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg := Load()

	if cfg.Server.Port != "12230" {
		t.Errorf("default port = %s", cfg.Server.Port)
	}
	if cfg.Evaluation.DefaultMaxArticles != 20 {
		t.Errorf("DefaultMaxArticles = %d", cfg.Evaluation.DefaultMaxArticles)
	}
	if cfg.Evaluation.MaxAllowedArticles != 50 {
		t.Errorf("MaxAllowedArticles = %d", cfg.Evaluation.MaxAllowedArticles)
	}
	if got := cfg.Evaluation.SummarizerTimeout(); got != 240*time.Second {
		t.Errorf("SummarizerTimeout() = %v", got)
	}
	if got := cfg.Evaluation.PollInterval(); got != 100*time.Millisecond {
		t.Errorf("PollInterval() = %v", got)
	}
	if len(cfg.Scoring.Metrics) != 3 {
		t.Errorf("default metrics = %v", cfg.Scoring.Metrics)
	}
}

func TestLoad_YAMLFileWithEnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yaml := `
server:
  port: "9999"
evaluation:
  max_retries: 3
datasets:
  default: xsum
`
	if err := os.WriteFile(path, []byte(yaml), 0o644); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	t.Setenv("SUMMARIZE_BENCH_CONFIG", path)
	t.Setenv("EVALSERVER_PORT", "7777")
	t.Setenv("SUMMARIZER_TIMEOUT_SECONDS", "30")

	cfg := Load()

	if cfg.Server.Port != "7777" {
		t.Errorf("env override lost: port = %s", cfg.Server.Port)
	}
	if cfg.Evaluation.MaxRetries != 3 {
		t.Errorf("yaml value lost: max_retries = %d", cfg.Evaluation.MaxRetries)
	}
	if cfg.Datasets.Default != "xsum" {
		t.Errorf("yaml value lost: default dataset = %s", cfg.Datasets.Default)
	}
	if cfg.Evaluation.SummarizerTimeoutSeconds != 30 {
		t.Errorf("env override lost: timeout = %d", cfg.Evaluation.SummarizerTimeoutSeconds)
	}
	// Fields the partial file never mentioned keep their defaults.
	if cfg.Evaluation.MaxArticleLength != 4000 {
		t.Errorf("unset field lost its default: max_article_length = %d",
			cfg.Evaluation.MaxArticleLength)
	}
}

func TestLoad_UnreadableFileFallsBack(t *testing.T) {
	t.Setenv("SUMMARIZE_BENCH_CONFIG", filepath.Join(t.TempDir(), "missing.yaml"))

	cfg := Load()
	if cfg.Server.Port != "12230" {
		t.Errorf("missing file should fall back to defaults, port = %s", cfg.Server.Port)
	}
}

func TestLoad_InvalidEnvValuesIgnored(t *testing.T) {
	t.Setenv("SUMMARIZER_TIMEOUT_SECONDS", "not-a-number")
	t.Setenv("SUMMARIZER_MAX_RETRIES", "-5")

	cfg := Load()
	if cfg.Evaluation.SummarizerTimeoutSeconds != 240 {
		t.Errorf("invalid timeout env should be ignored, got %d",
			cfg.Evaluation.SummarizerTimeoutSeconds)
	}
	if cfg.Evaluation.MaxRetries != 1 {
		t.Errorf("negative retries env should be ignored, got %d", cfg.Evaluation.MaxRetries)
	}
}
