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

var resultsJSONOutput bool

var resultsCmd = &cobra.Command{
	Use:   "results",
	Short: "Print the results accumulated by the current or last run",
	Run:   runResultsCommand,
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write accumulated results to a CSV file on the server",
	Run:   runExportCommand,
}

func init() {
	resultsCmd.Flags().BoolVar(&resultsJSONOutput, "json", false,
		"Output as JSON for scripting")
}

type resultRow struct {
	ArticleID        int                `json:"article_id"`
	Configuration    string             `json:"configuration"`
	Scores           map[string]float64 `json:"scores"`
	CompressionRatio float64            `json:"compression_ratio"`
	ProcessingTimeMs int64              `json:"processing_time_ms"`
	Provenance       string             `json:"provenance"`
}

func runResultsCommand(cmd *cobra.Command, args []string) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var resp struct {
		Results []resultRow `json:"results"`
		Count   int         `json:"count"`
	}
	if err := newClient().Get(ctx, "/api/evaluation/results", &resp); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to fetch results: %v\n", err)
		os.Exit(1)
	}

	if resultsJSONOutput {
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(resp); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to encode JSON: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if resp.Count == 0 {
		fmt.Println("No results yet.")
		return
	}

	fmt.Printf("%-8s %-28s %-8s %-8s %-8s %-6s %-10s\n",
		"article", "configuration", "rouge1", "rouge2", "rougeL", "ratio", "provenance")
	for _, r := range resp.Results {
		fmt.Printf("%-8d %-28s %-8.4f %-8.4f %-8.4f %-6.2f %-10s\n",
			r.ArticleID, r.Configuration,
			r.Scores["rouge1"], r.Scores["rouge2"], r.Scores["rougeL"],
			r.CompressionRatio, r.Provenance)
	}
	fmt.Printf("\n%d results total.\n", resp.Count)
}

func runExportCommand(cmd *cobra.Command, args []string) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	var resp struct {
		Status string `json:"status"`
		Path   string `json:"path"`
		Count  int    `json:"count"`
	}
	if err := newClient().Post(ctx, "/api/evaluation/export", nil, &resp); err != nil {
		fmt.Fprintf(os.Stderr, "Export failed: %v\n", err)
		os.Exit(1)
	}

	logger.Info("results exported", "path", resp.Path, "count", resp.Count)
	fmt.Printf("Exported %d results to %s (on the server).\n", resp.Count, resp.Path)
}
