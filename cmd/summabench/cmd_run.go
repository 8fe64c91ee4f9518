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
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"
)

// =============================================================================
// COMMAND FLAGS
// =============================================================================

var (
	runDataset     string // Dataset key to evaluate against
	runMaxArticles int    // Article cap for this run
	runMode        string // "single" or "sweep"
	runConfig      string // Configuration for single mode
)

// =============================================================================
// COMMAND DEFINITIONS
// =============================================================================

// runCmd starts an evaluation run.
//
// # Description
//
// Sends the start request and returns immediately; the run executes on the
// server in the background and a connected browser tab does the actual
// summarization. Progress is observable via "summabench status" or the
// websocket channel.
//
// # Examples
//
//	summabench run                              # defaults: single mode, default dataset
//	summabench run --dataset xsum -n 10         # 10 XSum articles
//	summabench run --mode sweep                 # full 24-configuration sweep
//	summabench run --config tldr_long_markdown  # one specific configuration
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start an evaluation run",
	Run:   runRunCommand,
}

var stopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Request a cooperative stop of the active run",
	Long: `Requests a stop of the active evaluation run.

The stop takes effect at the next article boundary; the article currently
being processed finishes first. Results accumulated so far are retained.`,
	Run: runStopCommand,
}

func init() {
	runCmd.Flags().StringVarP(&runDataset, "dataset", "d", "",
		"Dataset key (see 'summabench datasets'; server default when unset)")
	runCmd.Flags().IntVarP(&runMaxArticles, "max-articles", "n", 0,
		"Maximum articles to evaluate (server default when unset)")
	runCmd.Flags().StringVarP(&runMode, "mode", "m", "single",
		"Evaluation mode: single or sweep")
	runCmd.Flags().StringVarP(&runConfig, "config", "c", "",
		"Configuration for single mode, e.g. tldr_short_plain-text")
}

// =============================================================================
// COMMAND IMPLEMENTATION
// =============================================================================

func runRunCommand(cmd *cobra.Command, args []string) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	body := map[string]any{
		"evaluation_mode": runMode,
	}
	if runDataset != "" {
		body["dataset"] = runDataset
	}
	if runMaxArticles > 0 {
		body["max_articles"] = runMaxArticles
	}
	if runConfig != "" {
		body["selected_config"] = runConfig
	}

	var resp struct {
		Status  string `json:"status"`
		Dataset string `json:"dataset"`
	}
	err := newClient().Post(ctx, "/api/evaluation/start", body, &resp)
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusConflict {
		fmt.Fprintln(os.Stderr, "An evaluation is already running. Stop it first with 'summabench stop'.")
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to start evaluation: %v\n", err)
		os.Exit(1)
	}

	logger.Info("evaluation started", "dataset", resp.Dataset, "mode", runMode)
	fmt.Printf("Evaluation started on dataset %s (mode: %s).\n", resp.Dataset, runMode)
	fmt.Println("Keep a summarizer browser tab connected; watch progress with 'summabench status'.")
}

func runStopCommand(cmd *cobra.Command, args []string) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := newClient().Post(ctx, "/api/evaluation/stop", nil, nil); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to stop evaluation: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("Stop requested. The run halts at the next article boundary.")
}
