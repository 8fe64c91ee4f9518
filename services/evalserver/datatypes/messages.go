// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package datatypes

// Websocket event names. Browser workers listen for EventSummarizeRequest
// and reply with EventSummarizationResult; everything else is observer
// traffic (progress, logs, lifecycle).
const (
	EventSessionCreated      = "session_created"
	EventStatusUpdate        = "status_update"
	EventSummarizeRequest    = "summarize_request"
	EventSummarizationResult = "summarization_result"
	EventSummarizationAck    = "summarization_acknowledged"
	EventStarted             = "evaluation_started"
	EventProgress            = "progress_update"
	EventArticleCompleted    = "article_completed"
	EventLogUpdate           = "log_update"
	EventCompleted           = "evaluation_completed"
)

// Envelope is the wire frame for every message on the websocket channel,
// in both directions.
type Envelope struct {
	Event string `json:"event"`
	Data  any    `json:"data,omitempty"`
}

// SummarizeRequest is published to every connected worker when the dispatch
// protocol issues an attempt. RetryAttempt is 0 for the initial try.
type SummarizeRequest struct {
	RequestID     string `json:"request_id"`
	ArticleID     int    `json:"article_id"`
	Text          string `json:"text"`
	Configuration string `json:"configuration"`
	RetryAttempt  int    `json:"retry_attempt,omitempty"`
}

// SummarizeResult is the worker's asynchronous reply. Error, when set,
// carries the browser-side failure message; the reply is then resolved to a
// fallback result rather than surfaced as a run failure.
type SummarizeResult struct {
	RequestID string `json:"request_id"`
	ArticleID int    `json:"article_id"`
	Summary   string `json:"summary"`
	Error     string `json:"error,omitempty"`
}

// SummarizeAck is sent back to the worker for every reply, whether it was
// consumed, a duplicate, or resolved to a fallback.
type SummarizeAck struct {
	RequestID string `json:"request_id"`
	ArticleID int    `json:"article_id"`
}

// ProgressUpdate is broadcast at the top of each article iteration.
type ProgressUpdate struct {
	Current   int `json:"current"`
	Total     int `json:"total"`
	ArticleID int `json:"article_id"`
}

// StartedEvent is broadcast when a run enters the Running state.
type StartedEvent struct {
	TotalArticles int    `json:"total_articles"`
	Dataset       string `json:"dataset"`
}

// CompletedEvent is broadcast when the article sequence is exhausted.
type CompletedEvent struct {
	TotalResults int `json:"total_results"`
}

// LogUpdate carries one timestamped log line.
type LogUpdate struct {
	Message string `json:"message"`
}
