// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package runner

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/jinterlante1206/SummarizeBench/services/evalserver/datatypes"
	"github.com/jinterlante1206/SummarizeBench/services/evalserver/observability"
	"github.com/jinterlante1206/SummarizeBench/services/evalserver/scoring"
)

// EventSink fans an event out to every connection attached to a session.
// Publishing is fire-and-forget: the sink never blocks the caller on slow
// or absent consumers.
type EventSink interface {
	Broadcast(session string, event string, data any)
}

// Dispatcher obtains exactly one candidate summary per (article,
// configuration), tolerating an unreliable remote worker. Each attempt
// registers a pending entry, publishes the request out-of-band, and polls
// the table until the reply handler completes the entry or the attempt's
// wall-clock timeout elapses. When the whole budget (initial attempt plus
// retries) is exhausted, a deterministic fallback result is synthesized so
// the run always produces one result per pair.
type Dispatcher struct {
	sink   EventSink
	scorer *scoring.RougeScorer

	timeout      time.Duration
	retryDelay   time.Duration
	pollInterval time.Duration
	maxRetries   int
}

// NewDispatcher wires a dispatcher. timeout bounds each attempt; the
// worst-case latency per pair is (maxRetries+1)*timeout plus retry delays,
// which callers may use to bound total run duration.
func NewDispatcher(sink EventSink, scorer *scoring.RougeScorer,
	timeout, retryDelay, pollInterval time.Duration, maxRetries int) *Dispatcher {

	if pollInterval <= 0 {
		pollInterval = 100 * time.Millisecond
	}
	return &Dispatcher{
		sink:         sink,
		scorer:       scorer,
		timeout:      timeout,
		retryDelay:   retryDelay,
		pollInterval: pollInterval,
		maxRetries:   maxRetries,
	}
}

// Obtain blocks until a summary for (article, cfg) is available, remote or
// fallback. It is called from the run loop's goroutine only; reply delivery
// happens on the websocket read goroutines and meets this code solely
// through the table's mutex.
func (d *Dispatcher) Obtain(session string, table *PendingTable,
	article datatypes.Article, cfg datatypes.Configuration) datatypes.ScoredResult {

	start := time.Now()

	for attempt := 0; attempt <= d.maxRetries; attempt++ {
		if attempt > 0 {
			time.Sleep(d.retryDelay)
		}

		id := newRequestID(article.ID, cfg)
		table.Register(&PendingRequest{
			ID:           id,
			Article:      article,
			Config:       cfg,
			IssuedAt:     time.Now(),
			RetryAttempt: attempt,
		})

		d.sink.Broadcast(session, datatypes.EventSummarizeRequest, datatypes.SummarizeRequest{
			RequestID:     id,
			ArticleID:     article.ID,
			Text:          article.Text,
			Configuration: cfg.String(),
			RetryAttempt:  attempt,
		})
		if attempt == 0 {
			observability.Metrics().RequestsTotal.WithLabelValues("initial").Inc()
		} else {
			observability.Metrics().RequestsTotal.WithLabelValues("retry").Inc()
		}

		// Replies correlate last-issued-wins: wait on whichever entry for
		// this pair was issued most recently, which is the one we just
		// registered unless a concurrent duplicate exists.
		if latest, ok := table.LookupLatest(article.ID, cfg.String()); ok {
			id = latest
		}

		if result, ok := d.wait(table, id); ok {
			observability.Metrics().DispatchWaitSeconds.
				WithLabelValues(string(result.Provenance)).
				Observe(time.Since(start).Seconds())
			return result
		}

		table.Delete(id)
		slog.Warn("summarization attempt timed out",
			"article_id", article.ID,
			"configuration", cfg.String(),
			"attempt", attempt,
			"timeout", d.timeout.String(),
		)
	}

	slog.Warn("retry budget exhausted, synthesizing fallback result",
		"article_id", article.ID,
		"configuration", cfg.String(),
		"attempts", d.maxRetries+1,
	)
	result := d.FallbackResult(article, cfg, time.Since(start))
	observability.Metrics().FallbacksTotal.Inc()
	observability.Metrics().DispatchWaitSeconds.
		WithLabelValues(string(datatypes.ProvenanceFallback)).
		Observe(time.Since(start).Seconds())
	return result
}

// wait polls the table until the entry is completed and consumed, or the
// attempt timeout elapses. The fixed interval is coarse enough not to
// busy-spin and fine enough to stay invisible next to multi-second
// summarization latency.
func (d *Dispatcher) wait(table *PendingTable, id string) (datatypes.ScoredResult, bool) {
	deadline := time.Now().Add(d.timeout)
	for {
		if result, ok := table.TakeCompleted(id); ok {
			return result, true
		}
		if !time.Now().Before(deadline) {
			return datatypes.ScoredResult{}, false
		}
		time.Sleep(d.pollInterval)
	}
}

// FallbackResult synthesizes the deterministic placeholder candidate and
// scores it like any other summary.
func (d *Dispatcher) FallbackResult(article datatypes.Article,
	cfg datatypes.Configuration, elapsed time.Duration) datatypes.ScoredResult {

	summary := fmt.Sprintf(
		"This article discusses key topics related to article %d using %s configuration. "+
			"The main points cover important aspects of the subject matter.",
		article.ID, cfg.String(),
	)
	return d.buildResult(article, cfg, summary, datatypes.ProvenanceFallback, elapsed)
}

// buildResult assembles a ScoredResult from a candidate summary.
func (d *Dispatcher) buildResult(article datatypes.Article, cfg datatypes.Configuration,
	summary string, provenance datatypes.Provenance, elapsed time.Duration) datatypes.ScoredResult {

	ratio := 0.0
	if len(article.Text) > 0 {
		ratio = float64(len(summary)) / float64(len(article.Text))
	}
	return datatypes.ScoredResult{
		ArticleID:        article.ID,
		Configuration:    cfg.String(),
		ArticleLength:    len(article.Text),
		ReferenceSummary: article.ReferenceSummary,
		GeneratedSummary: summary,
		Scores:           d.scorer.Score(article.ReferenceSummary, summary),
		CompressionRatio: ratio,
		ProcessingTimeMs: elapsed.Milliseconds(),
		Timestamp:        time.Now(),
		Provenance:       provenance,
	}
}

// newRequestID builds the composite request identifier. Retries of the same
// (article, configuration) pair get distinct ids because the issue time is
// embedded; correlation order is still decided by the table's sequence
// counter, not by this string.
func newRequestID(articleID int, cfg datatypes.Configuration) string {
	return fmt.Sprintf("req_%d_%s_%d", articleID, cfg.String(), time.Now().UnixNano())
}
