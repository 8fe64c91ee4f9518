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
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/jinterlante1206/SummarizeBench/services/evalserver/datatypes"
	"github.com/jinterlante1206/SummarizeBench/services/evalserver/notify"
	"github.com/jinterlante1206/SummarizeBench/services/evalserver/runner"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
	ReadBufferSize:  1024 * 1024,
	WriteBufferSize: 1024 * 1024,
}

// HandleEventWebSocket upgrades the connection, registers it with the hub,
// and runs the read loop. A connection may present an existing session id
// via the session_id query parameter to rejoin a run; otherwise it gets a
// fresh identity. Inbound traffic is worker replies; everything else on the
// wire is outbound.
func HandleEventWebSocket(hub *notify.Hub, ctrl *runner.Controller) gin.HandlerFunc {
	return func(c *gin.Context) {
		ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			slog.Error("failed to upgrade the websocket", "error", err)
			return
		}
		defer ws.Close()

		sessionID := c.Query("session_id")
		if sessionID == "" {
			sessionID = uuid.New().String()
		}

		sender := hub.Subscribe(sessionID, ws)
		defer hub.Unsubscribe(sessionID, ws)

		if err := sender.Send(datatypes.EventSessionCreated, gin.H{"session_id": sessionID}); err != nil {
			return
		}
		// Rejoining clients need the current run state immediately, not at
		// the next broadcast.
		if err := sender.Send(datatypes.EventStatusUpdate, ctrl.Snapshot(sessionID)); err != nil {
			return
		}

		for {
			var envelope datatypes.Envelope
			if err := ws.ReadJSON(&envelope); err != nil {
				slog.Info("websocket client disconnected", "session", sessionID, "error", err.Error())
				return
			}

			switch envelope.Event {
			case datatypes.EventSummarizationResult:
				var result datatypes.SummarizeResult
				if err := reparse(envelope.Data, &result); err != nil {
					slog.Warn("malformed summarization result", "session", sessionID, "error", err)
					continue
				}

				ctrl.HandleReply(sessionID, result)

				// Acknowledge unconditionally so the worker can release the
				// request, duplicate or not.
				if err := sender.Send(datatypes.EventSummarizationAck, datatypes.SummarizeAck{
					RequestID: result.RequestID,
					ArticleID: result.ArticleID,
				}); err != nil {
					return
				}

			case datatypes.EventStatusUpdate:
				if err := sender.Send(datatypes.EventStatusUpdate, ctrl.Snapshot(sessionID)); err != nil {
					return
				}

			default:
				slog.Warn("ignoring unknown websocket event",
					"session", sessionID, "event", envelope.Event)
			}
		}
	}
}

// reparse remarshals the envelope's loosely-typed data field into a concrete
// message struct.
func reparse(data any, out any) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, out)
}
