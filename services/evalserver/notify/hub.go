// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package notify fans run events out to the websocket connections attached
// to each session. The hub implements runner.EventSink, so the run loop and
// the reply handler publish through it without knowing about websockets.
package notify

import (
	"log/slog"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/jinterlante1206/SummarizeBench/services/evalserver/datatypes"
	"github.com/jinterlante1206/SummarizeBench/services/evalserver/observability"
)

// conn wraps one websocket connection with its own write lock. gorilla
// permits only one concurrent writer per connection, and the run loop, the
// reply acknowledger, and progress events all write from different
// goroutines.
type conn struct {
	writeMu sync.Mutex
	ws      *websocket.Conn
}

// Send marshals one event envelope onto the connection.
func (c *conn) Send(event string, data any) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.ws.WriteJSON(datatypes.Envelope{Event: event, Data: data})
}

// Hub tracks live connections per session identity. Publishing is
// fire-and-forget: a failed write logs and unsubscribes the dead connection,
// and a session with no connections drops events silently. The run loop must
// never block on a slow browser.
type Hub struct {
	mu    sync.RWMutex
	conns map[string]map[*websocket.Conn]*conn
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{conns: make(map[string]map[*websocket.Conn]*conn)}
}

// Subscribe attaches a connection to a session and returns a sender bound to
// it. The caller must Unsubscribe when the read loop exits.
func (h *Hub) Subscribe(session string, ws *websocket.Conn) *Sender {
	c := &conn{ws: ws}
	h.mu.Lock()
	if h.conns[session] == nil {
		h.conns[session] = make(map[*websocket.Conn]*conn)
	}
	h.conns[session][ws] = c
	h.mu.Unlock()

	observability.Metrics().ConnectedClients.Inc()
	slog.Info("websocket client subscribed", "session", session)
	return &Sender{conn: c}
}

// Unsubscribe detaches a connection. Safe to call twice.
func (h *Hub) Unsubscribe(session string, ws *websocket.Conn) {
	h.mu.Lock()
	set, ok := h.conns[session]
	if ok {
		if _, present := set[ws]; present {
			delete(set, ws)
			if len(set) == 0 {
				delete(h.conns, session)
			}
			observability.Metrics().ConnectedClients.Dec()
			slog.Info("websocket client unsubscribed", "session", session)
		}
	}
	h.mu.Unlock()
}

// Broadcast sends one event to every connection attached to the session.
// Implements runner.EventSink.
func (h *Hub) Broadcast(session string, event string, data any) {
	h.mu.RLock()
	targets := make([]*conn, 0, len(h.conns[session]))
	for _, c := range h.conns[session] {
		targets = append(targets, c)
	}
	h.mu.RUnlock()

	for _, c := range targets {
		if err := c.Send(event, data); err != nil {
			slog.Warn("dropping event for unwritable connection",
				"session", session, "event", event, "error", err)
			h.Unsubscribe(session, c.ws)
		}
	}
}

// Sender is the per-connection write handle returned by Subscribe. Direct
// replies (session_created, acknowledgements, status snapshots) go through
// it so they reach only the requesting connection, not the whole session.
type Sender struct {
	conn *conn
}

// Send writes one event envelope to this connection only.
func (s *Sender) Send(event string, data any) error {
	return s.conn.Send(event, data)
}
