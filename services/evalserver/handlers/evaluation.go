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
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jinterlante1206/SummarizeBench/services/evalserver/datatypes"
	"github.com/jinterlante1206/SummarizeBench/services/evalserver/export"
	"github.com/jinterlante1206/SummarizeBench/services/evalserver/runner"
)

// StartEvaluationRequest is the body of POST /api/evaluation/start. All
// fields are optional; unset values fall back to server defaults.
type StartEvaluationRequest struct {
	Dataset        string `json:"dataset"`
	MaxArticles    int    `json:"max_articles" binding:"omitempty,gte=1"`
	Mode           string `json:"evaluation_mode" binding:"omitempty,oneof=single sweep"`
	SelectedConfig string `json:"selected_config"`
}

// StartEvaluation accepts a run request and launches it in the background.
// Responds 409 when a run is already active for the session and 400 for an
// unknown dataset or malformed configuration. Acceptance means started, not
// finished; progress streams over the websocket channel.
func StartEvaluation(ctrl *runner.Controller, defaultDataset string) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req StartEvaluationRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
			return
		}
		if req.Dataset == "" {
			req.Dataset = defaultDataset
		}

		session := sessionFromRequest(c)
		err := ctrl.StartRun(session, runner.StartParams{
			Dataset:        req.Dataset,
			MaxArticles:    req.MaxArticles,
			Mode:           datatypes.EvaluationMode(req.Mode),
			SelectedConfig: req.SelectedConfig,
		})
		switch {
		case errors.Is(err, runner.ErrRunActive):
			c.JSON(http.StatusConflict, gin.H{"error": "evaluation already running"})
		case errors.Is(err, runner.ErrUnknownDataset), errors.Is(err, runner.ErrInvalidConfig):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case err != nil:
			slog.Error("failed to start evaluation", "session", session, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to start evaluation"})
		default:
			c.JSON(http.StatusAccepted, gin.H{"status": "started", "dataset": req.Dataset})
		}
	}
}

// StopEvaluation requests a cooperative stop. Always succeeds; stopping an
// idle run is a no-op.
func StopEvaluation(ctrl *runner.Controller) gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessionFromRequest(c)
		ctrl.StopRun(session)
		c.JSON(http.StatusOK, gin.H{"status": "stopping"})
	}
}

// GetResults returns the session's accumulated results in append order,
// usable mid-run and after completion.
func GetResults(ctrl *runner.Controller) gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessionFromRequest(c)
		results := ctrl.Results(session)
		c.JSON(http.StatusOK, gin.H{
			"results": results,
			"count":   len(results),
		})
	}
}

// GetStatus returns a point-in-time snapshot of the session's run state.
func GetStatus(ctrl *runner.Controller) gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessionFromRequest(c)
		c.JSON(http.StatusOK, ctrl.Snapshot(session))
	}
}

// ExportResults writes the session's results to a timestamped CSV file and
// returns its path. Responds 400 when there is nothing to export.
func ExportResults(ctrl *runner.Controller, writer *export.Writer) gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessionFromRequest(c)
		snapshot := ctrl.Snapshot(session)

		path, err := writer.Export(snapshot.SelectedDataset, snapshot.Results)
		if errors.Is(err, export.ErrNoResults) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "no results to export"})
			return
		}
		if err != nil {
			slog.Error("csv export failed", "session", session, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "export failed"})
			return
		}

		slog.Info("results exported", "session", session, "path", path, "count", len(snapshot.Results))
		c.JSON(http.StatusOK, gin.H{"status": "exported", "path": path, "count": len(snapshot.Results)})
	}
}
