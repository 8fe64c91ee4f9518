// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package handlers

import (
	"net/http"
	"sort"

	"github.com/gin-gonic/gin"

	"github.com/jinterlante1206/SummarizeBench/services/evalserver/dataset"
	"github.com/jinterlante1206/SummarizeBench/services/evalserver/datatypes"
)

// DatasetEntry is one catalog row in the listing response.
type DatasetEntry struct {
	Key         string `json:"key"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// ListDatasets returns the dataset catalog plus the configuration axes the
// UI needs to build its selection controls.
func ListDatasets(defaultDataset string) gin.HandlerFunc {
	return func(c *gin.Context) {
		entries := make([]DatasetEntry, 0, len(dataset.Catalog))
		for key, info := range dataset.Catalog {
			entries = append(entries, DatasetEntry{
				Key:         key,
				Name:        info.SourceName,
				Description: info.Description,
			})
		}
		sort.Slice(entries, func(i, j int) bool { return entries[i].Key < entries[j].Key })

		c.JSON(http.StatusOK, gin.H{
			"datasets":        entries,
			"default":         defaultDataset,
			"summary_types":   datatypes.SummaryTypes,
			"summary_lengths": datatypes.SummaryLengths,
			"summary_formats": datatypes.SummaryFormats,
			"default_config":  datatypes.DefaultConfiguration,
		})
	}
}
