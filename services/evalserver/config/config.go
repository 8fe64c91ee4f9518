// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package config loads evalserver settings from an optional YAML file with
// environment overrides. A missing or unparsable file falls back to the
// compiled defaults; the server never refuses to start over configuration.
package config

import (
	"log/slog"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	configPathEnv = "SUMMARIZE_BENCH_CONFIG"
	portEnv       = "EVALSERVER_PORT"
	resultsDirEnv = "RESULTS_DIR"
	dataDirEnv    = "DATASET_DATA_DIR"
	timeoutEnv    = "SUMMARIZER_TIMEOUT_SECONDS"
	retriesEnv    = "SUMMARIZER_MAX_RETRIES"
)

// Config holds all evalserver settings.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Evaluation EvaluationConfig `yaml:"evaluation"`
	Scoring    ScoringConfig    `yaml:"scoring"`
	Datasets   DatasetsConfig   `yaml:"datasets"`
	Export     ExportConfig     `yaml:"export"`
}

// ServerConfig describes the HTTP listener.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port string `yaml:"port"`
}

// EvaluationConfig holds the run-level knobs for the dispatch protocol and
// the run controller. Durations are plain integers in the written config;
// use the accessor methods in code.
type EvaluationConfig struct {
	DefaultMaxArticles int `yaml:"default_max_articles"`
	MaxAllowedArticles int `yaml:"max_allowed_articles"`
	MaxArticleLength   int `yaml:"max_article_length"`

	SummarizerTimeoutSeconds int `yaml:"summarizer_timeout_seconds"`
	MaxRetries               int `yaml:"max_retries"`
	RetryDelaySeconds        int `yaml:"retry_delay_seconds"`
	PollIntervalMs           int `yaml:"poll_interval_ms"`
	ProgressIntervalSeconds  int `yaml:"progress_interval_seconds"`

	LogMaxEntries int `yaml:"log_max_entries"`
}

// SummarizerTimeout is the per-attempt wall-clock ceiling.
func (e EvaluationConfig) SummarizerTimeout() time.Duration {
	return time.Duration(e.SummarizerTimeoutSeconds) * time.Second
}

// RetryDelay is the pause before issuing a retry attempt.
func (e EvaluationConfig) RetryDelay() time.Duration {
	return time.Duration(e.RetryDelaySeconds) * time.Second
}

// PollInterval is how often the dispatch wait re-checks the pending table.
func (e EvaluationConfig) PollInterval() time.Duration {
	return time.Duration(e.PollIntervalMs) * time.Millisecond
}

// ProgressInterval is the pause between article iterations.
func (e EvaluationConfig) ProgressInterval() time.Duration {
	return time.Duration(e.ProgressIntervalSeconds) * time.Second
}

// ScoringConfig selects the metric set.
type ScoringConfig struct {
	Metrics    []string `yaml:"metrics"`
	UseStemmer bool     `yaml:"use_stemmer"`
}

// DatasetsConfig points the loader at on-disk dataset snapshots.
type DatasetsConfig struct {
	DataDir string `yaml:"data_dir"`
	Default string `yaml:"default"`
}

// ExportConfig controls CSV export.
type ExportConfig struct {
	ResultsDir string `yaml:"results_dir"`
}

// Load reads the YAML file named by SUMMARIZE_BENCH_CONFIG (if any), merges
// it over the defaults, and applies environment overrides.
func Load() Config {
	cfg := Default()

	if path := os.Getenv(configPathEnv); path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			slog.Warn("cannot read config file, using defaults", "path", path, "error", err)
		} else if err := yaml.Unmarshal(raw, &cfg); err != nil {
			slog.Warn("cannot parse config file, using defaults", "path", path, "error", err)
			cfg = Default()
		}
	}

	cfg.applyEnvOverrides()
	cfg.fillZeroes()
	return cfg
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(portEnv); v != "" {
		c.Server.Port = v
	}
	if v := os.Getenv(resultsDirEnv); v != "" {
		c.Export.ResultsDir = v
	}
	if v := os.Getenv(dataDirEnv); v != "" {
		c.Datasets.DataDir = v
	}
	if v := os.Getenv(timeoutEnv); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.Evaluation.SummarizerTimeoutSeconds = n
		}
	}
	if v := os.Getenv(retriesEnv); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			c.Evaluation.MaxRetries = n
		}
	}
}

// fillZeroes restores defaults for fields a partial YAML file left unset.
func (c *Config) fillZeroes() {
	def := Default()
	if c.Server.Port == "" {
		c.Server.Port = def.Server.Port
	}
	if c.Evaluation.DefaultMaxArticles <= 0 {
		c.Evaluation.DefaultMaxArticles = def.Evaluation.DefaultMaxArticles
	}
	if c.Evaluation.MaxAllowedArticles <= 0 {
		c.Evaluation.MaxAllowedArticles = def.Evaluation.MaxAllowedArticles
	}
	if c.Evaluation.MaxArticleLength <= 0 {
		c.Evaluation.MaxArticleLength = def.Evaluation.MaxArticleLength
	}
	if c.Evaluation.SummarizerTimeoutSeconds <= 0 {
		c.Evaluation.SummarizerTimeoutSeconds = def.Evaluation.SummarizerTimeoutSeconds
	}
	if c.Evaluation.PollIntervalMs <= 0 {
		c.Evaluation.PollIntervalMs = def.Evaluation.PollIntervalMs
	}
	if c.Evaluation.LogMaxEntries <= 0 {
		c.Evaluation.LogMaxEntries = def.Evaluation.LogMaxEntries
	}
	if len(c.Scoring.Metrics) == 0 {
		c.Scoring.Metrics = def.Scoring.Metrics
	}
	if c.Datasets.Default == "" {
		c.Datasets.Default = def.Datasets.Default
	}
	if c.Export.ResultsDir == "" {
		c.Export.ResultsDir = def.Export.ResultsDir
	}
}

// Default returns the compiled defaults.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: "12230",
		},
		Evaluation: EvaluationConfig{
			DefaultMaxArticles:       20,
			MaxAllowedArticles:       50,
			MaxArticleLength:         4000,
			SummarizerTimeoutSeconds: 240,
			MaxRetries:               1,
			RetryDelaySeconds:        2,
			PollIntervalMs:           100,
			ProgressIntervalSeconds:  1,
			LogMaxEntries:            1000,
		},
		Scoring: ScoringConfig{
			Metrics:    []string{"rouge1", "rouge2", "rougeL"},
			UseStemmer: true,
		},
		Datasets: DatasetsConfig{
			DataDir: "data",
			Default: "cnn_dailymail",
		},
		Export: ExportConfig{
			ResultsDir: "results",
		},
	}
}
