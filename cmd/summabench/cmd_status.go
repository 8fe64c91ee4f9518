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
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
)

var (
	statusJSONOutput bool
	statusShowLogs   bool
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the current run state",
	Run:   runStatusCommand,
}

func init() {
	statusCmd.Flags().BoolVar(&statusJSONOutput, "json", false,
		"Output as JSON for scripting")
	statusCmd.Flags().BoolVarP(&statusShowLogs, "logs", "l", false,
		"Include the run's log trail")
}

type statusSnapshot struct {
	IsRunning       bool     `json:"is_running"`
	CurrentArticle  int      `json:"current_article"`
	TotalArticles   int      `json:"total_articles"`
	Mode            string   `json:"mode"`
	SelectedConfig  string   `json:"selected_config"`
	SelectedDataset string   `json:"selected_dataset"`
	Logs            []string `json:"logs"`
	Results         []any    `json:"results"`
}

func runStatusCommand(cmd *cobra.Command, args []string) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var snap statusSnapshot
	if err := newClient().Get(ctx, "/api/evaluation/status", &snap); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to fetch status: %v\n", err)
		os.Exit(1)
	}

	if statusJSONOutput {
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(snap); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to encode JSON: %v\n", err)
			os.Exit(1)
		}
		return
	}

	state := "idle"
	if snap.IsRunning {
		state = "running"
	}
	fmt.Printf("State:    %s\n", state)
	if snap.SelectedDataset != "" {
		fmt.Printf("Dataset:  %s\n", snap.SelectedDataset)
		fmt.Printf("Mode:     %s (%s)\n", snap.Mode, snap.SelectedConfig)
		fmt.Printf("Progress: %d/%d articles, %d results\n",
			snap.CurrentArticle, snap.TotalArticles, len(snap.Results))
	}

	if statusShowLogs && len(snap.Logs) > 0 {
		fmt.Println("\nRecent log entries:")
		start := len(snap.Logs) - 20
		if start < 0 {
			start = 0
		}
		for _, line := range snap.Logs[start:] {
			fmt.Printf("  %s\n", line)
		}
	}
}
