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
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "summabench",
	Short: "Control the SummarizeBench evaluation server",
	Long: `summabench drives the summarization evaluation server from the terminal.

The server pairs with a browser tab that performs the actual summarization;
this CLI starts and stops runs, watches progress, and pulls results.

Examples:
  summabench datasets                       # List available datasets
  summabench run --dataset xsum -n 10       # Start a single-config run
  summabench run --mode sweep               # Start a full 24-config sweep
  summabench status                         # Show the current run state
  summabench stop                           # Request a cooperative stop
  summabench results                        # Print accumulated results
  summabench export                         # Write results to CSV on the server`,
}

func init() {
	rootCmd.AddCommand(datasetsCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(stopCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(resultsCmd)
	rootCmd.AddCommand(exportCmd)
}
