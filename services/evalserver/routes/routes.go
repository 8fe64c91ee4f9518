// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jinterlante1206/SummarizeBench/services/evalserver/export"
	"github.com/jinterlante1206/SummarizeBench/services/evalserver/handlers"
	"github.com/jinterlante1206/SummarizeBench/services/evalserver/notify"
	"github.com/jinterlante1206/SummarizeBench/services/evalserver/runner"
)

func SetupRoutes(router *gin.Engine, ctrl *runner.Controller, hub *notify.Hub,
	exporter *export.Writer, defaultDataset string) {

	router.GET("/health", handlers.HealthCheck)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api")
	{
		api.GET("/datasets", handlers.ListDatasets(defaultDataset))

		evaluation := api.Group("/evaluation")
		{
			evaluation.POST("/start", handlers.StartEvaluation(ctrl, defaultDataset))
			evaluation.POST("/stop", handlers.StopEvaluation(ctrl))
			evaluation.GET("/status", handlers.GetStatus(ctrl))
			evaluation.GET("/results", handlers.GetResults(ctrl))
			evaluation.POST("/export", handlers.ExportResults(ctrl, exporter))
			evaluation.GET("/ws", handlers.HandleEventWebSocket(hub, ctrl))
		}
	}
}
