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

var datasetsJSONOutput bool

var datasetsCmd = &cobra.Command{
	Use:   "datasets",
	Short: "List the datasets the server can evaluate against",
	Run:   runDatasetsCommand,
}

func init() {
	datasetsCmd.Flags().BoolVar(&datasetsJSONOutput, "json", false,
		"Output as JSON for scripting")
}

type datasetListing struct {
	Datasets []struct {
		Key         string `json:"key"`
		Name        string `json:"name"`
		Description string `json:"description"`
	} `json:"datasets"`
	Default       string `json:"default"`
	DefaultConfig string `json:"default_config"`
}

func runDatasetsCommand(cmd *cobra.Command, args []string) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var listing datasetListing
	if err := newClient().Get(ctx, "/api/datasets", &listing); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to list datasets: %v\n", err)
		os.Exit(1)
	}

	if datasetsJSONOutput {
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(listing); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to encode JSON: %v\n", err)
			os.Exit(1)
		}
		return
	}

	fmt.Println("Available datasets:")
	for _, d := range listing.Datasets {
		marker := " "
		if d.Key == listing.Default {
			marker = "*"
		}
		fmt.Printf("  %s %-16s %s\n", marker, d.Key, d.Description)
	}
	fmt.Printf("\nDefault configuration: %s\n", listing.DefaultConfig)
}
