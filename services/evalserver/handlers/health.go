// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package handlers exposes the evaluation control surface over HTTP and the
// event channel over websockets.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// HealthCheck reports liveness.
func HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "service": "evalserver"})
}

// sessionFromRequest resolves the run identity for an HTTP request. The
// websocket channel hands the browser its session id on connect; HTTP calls
// echo it back here. Callers without one share the default identity, which
// matches single-browser usage.
func sessionFromRequest(c *gin.Context) string {
	if s := c.GetHeader("X-Session-ID"); s != "" {
		return s
	}
	if s := c.Query("session_id"); s != "" {
		return s
	}
	return "default"
}
