// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"log"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/jinterlante1206/SummarizeBench/pkg/logging"
)

// CLIConfig is the optional client-side config file. Everything has a
// default so the CLI works with no file at all.
type CLIConfig struct {
	ServerURL string `yaml:"server_url"`
	SessionID string `yaml:"session_id"`
	LogDir    string `yaml:"log_dir"`
}

var (
	cliConfig CLIConfig
	logger    *logging.Logger
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("Error executing command: %v", err)
	}
}

func init() {
	rootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		cliConfig = CLIConfig{ServerURL: "http://localhost:12230"}

		configPath := os.Getenv("SUMMABENCH_CONFIG")
		if configPath == "" {
			configPath = "summabench.yaml"
		}
		if raw, err := os.ReadFile(configPath); err == nil {
			if err := yaml.Unmarshal(raw, &cliConfig); err != nil {
				log.Fatalf("Error parsing %s: %v", configPath, err)
			}
		}
		if cliConfig.ServerURL == "" {
			cliConfig.ServerURL = "http://localhost:12230"
		}
		if v := os.Getenv("SUMMABENCH_SERVER_URL"); v != "" {
			cliConfig.ServerURL = v
		}

		logger = logging.New(logging.Config{
			Level:   logging.LevelInfo,
			LogDir:  cliConfig.LogDir,
			Service: "cli",
		})
	}
	rootCmd.PersistentPostRun = func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Close()
		}
	}
}
