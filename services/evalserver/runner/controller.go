// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package runner drives evaluation runs: the per-run pending request table,
// the dispatch/wait protocol against browser workers, and the run
// controller state machine (Idle -> Running -> Completed or Stopped).
package runner

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jinterlante1206/SummarizeBench/services/evalserver/dataset"
	"github.com/jinterlante1206/SummarizeBench/services/evalserver/datatypes"
	"github.com/jinterlante1206/SummarizeBench/services/evalserver/observability"
)

// Control-surface error conditions, rejected synchronously with no state
// change.
var (
	// ErrRunActive means a run is already Running for this session.
	ErrRunActive = errors.New("evaluation already running")

	// ErrUnknownDataset means the requested dataset key is not in the
	// catalog.
	ErrUnknownDataset = errors.New("unknown dataset")

	// ErrInvalidConfig means the mode or configuration selection failed to
	// parse.
	ErrInvalidConfig = errors.New("invalid evaluation configuration")
)

// ArticleLoader yields the article sequence for a run. Implementations must
// not fail past this boundary; see the dataset package.
type ArticleLoader interface {
	Load(key string, maxCount int) []datatypes.Article
}

// StartParams are the caller-supplied knobs for one run.
type StartParams struct {
	Dataset        string
	MaxArticles    int
	Mode           datatypes.EvaluationMode
	SelectedConfig string
}

// Controller drives runs for all sessions. One background goroutine runs
// each session's main loop; replies arrive on websocket read goroutines and
// meet the loop only through each run's serialized table access.
type Controller struct {
	registry   *Registry
	loader     ArticleLoader
	dispatcher *Dispatcher
	sink       EventSink

	defaultMaxArticles int
	maxAllowedArticles int
	progressInterval   time.Duration
}

// NewController wires a controller. defaultMaxArticles applies when a start
// request leaves the count unset; maxAllowedArticles is the hard ceiling
// requests are clamped to.
func NewController(registry *Registry, loader ArticleLoader, dispatcher *Dispatcher,
	sink EventSink, defaultMaxArticles, maxAllowedArticles int,
	progressInterval time.Duration) *Controller {

	return &Controller{
		registry:           registry,
		loader:             loader,
		dispatcher:         dispatcher,
		sink:               sink,
		defaultMaxArticles: defaultMaxArticles,
		maxAllowedArticles: maxAllowedArticles,
		progressInterval:   progressInterval,
	}
}

// StartRun validates the request and, if accepted, launches the run loop in
// the background. Returns ErrRunActive, ErrUnknownDataset, or
// ErrInvalidConfig without any state change on rejection.
func (c *Controller) StartRun(session string, params StartParams) error {
	if !dataset.Known(params.Dataset) {
		return fmt.Errorf("%w: %s", ErrUnknownDataset, params.Dataset)
	}

	mode := params.Mode
	if mode == "" {
		mode = datatypes.ModeSingle
	}
	if mode != datatypes.ModeSingle && mode != datatypes.ModeSweep {
		return fmt.Errorf("%w: unknown mode %q", ErrInvalidConfig, params.Mode)
	}

	selected := params.SelectedConfig
	if selected == "" {
		selected = datatypes.DefaultConfiguration
	}
	var singleConfig datatypes.Configuration
	if mode == datatypes.ModeSingle {
		cfg, err := datatypes.ParseConfiguration(selected)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
		}
		singleConfig = cfg
	}

	maxArticles := params.MaxArticles
	if maxArticles <= 0 {
		maxArticles = c.defaultMaxArticles
	}
	if maxArticles > c.maxAllowedArticles {
		maxArticles = c.maxAllowedArticles
	}

	run := c.registry.Get(session)
	if !run.tryStart(params.Dataset, selected, mode) {
		return ErrRunActive
	}

	slog.Info("evaluation run accepted",
		"session", session,
		"dataset", params.Dataset,
		"max_articles", maxArticles,
		"mode", string(mode),
		"configuration", selected,
	)
	go c.runLoop(session, run, params.Dataset, maxArticles, mode, singleConfig)
	return nil
}

// StopRun requests a cooperative stop. The loop observes the flag at its
// next article boundary; an in-flight dispatch still honors its timeout and
// retry budget before control returns.
func (c *Controller) StopRun(session string) {
	run := c.registry.Get(session)
	run.stop()
	c.logEvent(session, run, "Evaluation stop requested")
}

// Results returns the session's result sequence in append order. Remains
// available after the run finishes.
func (c *Controller) Results(session string) []datatypes.ScoredResult {
	return c.registry.Get(session).Results()
}

// Snapshot returns the session's current run state.
func (c *Controller) Snapshot(session string) datatypes.RunSnapshot {
	return c.registry.Get(session).Snapshot()
}

// runLoop is the run's main loop: one article at a time, one dispatch per
// configuration, re-checking the running flag at every article boundary.
func (c *Controller) runLoop(session string, run *Run, datasetKey string,
	maxArticles int, mode datatypes.EvaluationMode, singleConfig datatypes.Configuration) {

	observability.Metrics().ActiveRuns.Inc()
	defer observability.Metrics().ActiveRuns.Dec()

	articles := c.loader.Load(datasetKey, maxArticles)
	run.setTotalArticles(len(articles))

	displayName := dataset.DisplayName(datasetKey)
	c.logEvent(session, run, fmt.Sprintf("Starting evaluation process with %s dataset...", displayName))
	c.sink.Broadcast(session, datatypes.EventStarted, datatypes.StartedEvent{
		TotalArticles: len(articles),
		Dataset:       displayName,
	})

	configs := configsFor(mode, singleConfig)
	stopped := false

	for i, article := range articles {
		if !run.IsRunning() {
			stopped = true
			break
		}
		run.advanceArticle(i + 1)

		c.logEvent(session, run, fmt.Sprintf("Processing article %d/%d", i+1, len(articles)))
		c.sink.Broadcast(session, datatypes.EventProgress, datatypes.ProgressUpdate{
			Current:   i + 1,
			Total:     len(articles),
			ArticleID: article.ID,
		})

		c.processArticle(session, run, article, configs)

		time.Sleep(c.progressInterval)
	}

	run.stop()
	if purged := run.Table().PurgeCompleted(); purged > 0 {
		slog.Debug("purged completed pending requests", "session", session, "count", purged)
	}

	if stopped {
		observability.Metrics().RunsTotal.WithLabelValues("stopped").Inc()
		c.logEvent(session, run, "Evaluation stopped")
		return
	}

	total := len(run.Results())
	observability.Metrics().RunsTotal.WithLabelValues("completed").Inc()
	c.logEvent(session, run, "Evaluation completed!")
	c.sink.Broadcast(session, datatypes.EventCompleted, datatypes.CompletedEvent{
		TotalResults: total,
	})
}

// processArticle dispatches every configuration for one article. Faults are
// contained at this boundary: a panic is logged and the article contributes
// nothing, but the run keeps going.
func (c *Controller) processArticle(session string, run *Run,
	article datatypes.Article, configs []datatypes.Configuration) {

	defer func() {
		if r := recover(); r != nil {
			slog.Error("article processing failed",
				"session", session, "article_id", article.ID, "panic", r)
			c.logEvent(session, run, fmt.Sprintf("Error processing article %d: %v", article.ID, r))
		}
	}()

	for _, cfg := range configs {
		c.logEvent(session, run, fmt.Sprintf("Requesting %s summarization for article %d",
			cfg.String(), article.ID))

		result := c.dispatcher.Obtain(session, run.Table(), article, cfg)
		run.appendResult(result)
		c.sink.Broadcast(session, datatypes.EventArticleCompleted, result)
	}
}

// HandleReply is the asynchronous reply-delivery path. It runs on the
// websocket read goroutine, concurrently with the loop's polling, and uses
// the same serialized table access. Duplicate or stale replies are
// discarded; the caller acknowledges regardless of outcome. Returns true
// when the reply was consumed into a pending entry.
func (c *Controller) HandleReply(session string, msg datatypes.SummarizeResult) bool {
	run := c.registry.Get(session)
	table := run.Table()

	req, ok := table.Get(msg.RequestID)
	if !ok {
		slog.Info("discarding reply for unknown or expired request",
			"session", session, "request_id", msg.RequestID, "article_id", msg.ArticleID)
		observability.Metrics().RepliesTotal.WithLabelValues(observability.ReplyStale).Inc()
		return false
	}
	if req.Completed {
		slog.Info("discarding duplicate reply",
			"session", session, "request_id", msg.RequestID, "article_id", msg.ArticleID)
		observability.Metrics().RepliesTotal.WithLabelValues(observability.ReplyDuplicate).Inc()
		return false
	}

	elapsed := time.Since(req.IssuedAt)

	var result datatypes.ScoredResult
	if msg.Error != "" {
		slog.Warn("worker reported summarization error, falling back",
			"session", session, "request_id", msg.RequestID, "error", msg.Error)
		observability.Metrics().RepliesTotal.WithLabelValues(observability.ReplyError).Inc()
		result = c.dispatcher.FallbackResult(req.Article, req.Config, elapsed)
	} else {
		result = c.dispatcher.buildResult(req.Article, req.Config, msg.Summary,
			datatypes.ProvenanceRemote, elapsed)
	}

	if !table.Complete(msg.RequestID, result) {
		// Lost the race against a duplicate or a timeout deletion.
		slog.Info("reply arrived too late to complete its request",
			"session", session, "request_id", msg.RequestID)
		observability.Metrics().RepliesTotal.WithLabelValues(observability.ReplyDuplicate).Inc()
		return false
	}

	if msg.Error == "" {
		observability.Metrics().RepliesTotal.WithLabelValues(observability.ReplyConsumed).Inc()
	}
	slog.Info("reply consumed",
		"session", session,
		"request_id", msg.RequestID,
		"article_id", msg.ArticleID,
		"processing_time_ms", elapsed.Milliseconds(),
	)
	return true
}

// logEvent appends to the run's log trail and fans the line out to
// observers.
func (c *Controller) logEvent(session string, run *Run, message string) {
	line := run.appendLog(message)
	slog.Info(message, "session", session)
	c.sink.Broadcast(session, datatypes.EventLogUpdate, datatypes.LogUpdate{Message: line})
}

// configsFor expands the run mode into the configuration list attempted per
// article: one for single mode, the full 24-element cross-product for sweep.
func configsFor(mode datatypes.EvaluationMode, single datatypes.Configuration) []datatypes.Configuration {
	if mode == datatypes.ModeSweep {
		return datatypes.SweepConfigurations()
	}
	return []datatypes.Configuration{single}
}
