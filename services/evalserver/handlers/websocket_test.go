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
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/jinterlante1206/SummarizeBench/services/evalserver/dataset"
	"github.com/jinterlante1206/SummarizeBench/services/evalserver/datatypes"
	"github.com/jinterlante1206/SummarizeBench/services/evalserver/notify"
	"github.com/jinterlante1206/SummarizeBench/services/evalserver/runner"
	"github.com/jinterlante1206/SummarizeBench/services/evalserver/scoring"
)

func newWSServer(t *testing.T) (*httptest.Server, *runner.Controller, *runner.Registry) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	scorer, err := scoring.NewRougeScorer(nil, false)
	if err != nil {
		t.Fatalf("building scorer: %v", err)
	}
	hub := notify.NewHub()
	registry := runner.NewRegistry(100)
	dispatcher := runner.NewDispatcher(hub, scorer,
		time.Millisecond, time.Millisecond, time.Millisecond, 0)
	loader := dataset.NewLoader(t.TempDir(), 4000)
	ctrl := runner.NewController(registry, loader, dispatcher, hub, 20, 50, 0)

	router := gin.New()
	router.GET("/ws", HandleEventWebSocket(hub, ctrl))

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv, ctrl, registry
}

func dialWS(t *testing.T, srv *httptest.Server, query string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws" + query
	ws, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dialing websocket: %v", err)
	}
	t.Cleanup(func() { ws.Close() })
	return ws
}

func readWSEnvelope(t *testing.T, ws *websocket.Conn) datatypes.Envelope {
	t.Helper()
	ws.SetReadDeadline(time.Now().Add(2 * time.Second))
	var envelope datatypes.Envelope
	if err := ws.ReadJSON(&envelope); err != nil {
		t.Fatalf("reading envelope: %v", err)
	}
	return envelope
}

func TestWebSocket_ConnectHandshake(t *testing.T) {
	srv, _, _ := newWSServer(t)
	ws := dialWS(t, srv, "")

	first := readWSEnvelope(t, ws)
	if first.Event != datatypes.EventSessionCreated {
		t.Fatalf("first event = %s, want %s", first.Event, datatypes.EventSessionCreated)
	}
	data := first.Data.(map[string]any)
	if data["session_id"] == "" {
		t.Error("session_created must carry a session id")
	}

	second := readWSEnvelope(t, ws)
	if second.Event != datatypes.EventStatusUpdate {
		t.Errorf("second event = %s, want %s", second.Event, datatypes.EventStatusUpdate)
	}
}

func TestWebSocket_RejoinKeepsSessionID(t *testing.T) {
	srv, _, _ := newWSServer(t)
	ws := dialWS(t, srv, "?session_id=rejoiner")

	first := readWSEnvelope(t, ws)
	data := first.Data.(map[string]any)
	if data["session_id"] != "rejoiner" {
		t.Errorf("session_id = %v, want the presented identity", data["session_id"])
	}
}

func TestWebSocket_ReplyIsAcknowledged(t *testing.T) {
	srv, _, registry := newWSServer(t)
	ws := dialWS(t, srv, "?session_id=worker")

	readWSEnvelope(t, ws) // session_created
	readWSEnvelope(t, ws) // status_update

	registry.Get("worker").Table().Register(&runner.PendingRequest{
		ID:       "req_9",
		Article:  datatypes.Article{ID: 9, Text: "body", ReferenceSummary: "ref"},
		Config:   datatypes.Configuration{Type: "tldr", Length: "short", Format: "plain-text"},
		IssuedAt: time.Now(),
	})

	err := ws.WriteJSON(datatypes.Envelope{
		Event: datatypes.EventSummarizationResult,
		Data: datatypes.SummarizeResult{
			RequestID: "req_9",
			ArticleID: 9,
			Summary:   "a summary",
		},
	})
	if err != nil {
		t.Fatalf("sending reply: %v", err)
	}

	ack := readWSEnvelope(t, ws)
	if ack.Event != datatypes.EventSummarizationAck {
		t.Fatalf("event = %s, want %s", ack.Event, datatypes.EventSummarizationAck)
	}
	data := ack.Data.(map[string]any)
	if data["request_id"] != "req_9" {
		t.Errorf("ack request_id = %v", data["request_id"])
	}

	// The reply must have completed the pending entry.
	result, ok := registry.Get("worker").Table().TakeCompleted("req_9")
	if !ok {
		t.Fatal("pending entry was not completed")
	}
	if result.GeneratedSummary != "a summary" {
		t.Errorf("stored summary = %q", result.GeneratedSummary)
	}
}

func TestWebSocket_UnknownReplyStillAcked(t *testing.T) {
	srv, _, _ := newWSServer(t)
	ws := dialWS(t, srv, "?session_id=worker")
	readWSEnvelope(t, ws)
	readWSEnvelope(t, ws)

	err := ws.WriteJSON(datatypes.Envelope{
		Event: datatypes.EventSummarizationResult,
		Data:  datatypes.SummarizeResult{RequestID: "ghost", ArticleID: 1, Summary: "late"},
	})
	if err != nil {
		t.Fatalf("sending reply: %v", err)
	}

	ack := readWSEnvelope(t, ws)
	if ack.Event != datatypes.EventSummarizationAck {
		t.Errorf("stale replies are still acknowledged, got event %s", ack.Event)
	}
}
