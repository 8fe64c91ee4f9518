// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package observability provides Prometheus metrics for the evaluation
// server.
//
// # Description
//
// Metrics cover the dispatch protocol (requests issued, replies by outcome,
// fallbacks), run lifecycle, and worker connectivity. All operations are
// thread-safe via Prometheus's internal locking. Metrics are exposed on the
// /metrics endpoint for Prometheus + Grafana.
package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const metricsNamespace = "summarizebench"

const evalSubsystem = "evaluation"

// EvalMetrics holds all Prometheus metrics for evaluation runs.
type EvalMetrics struct {
	// RequestsTotal counts summarization requests published to workers.
	// Labels: attempt (initial, retry)
	RequestsTotal *prometheus.CounterVec

	// RepliesTotal counts inbound worker replies by outcome.
	// Labels: outcome (consumed, duplicate, stale, error)
	RepliesTotal *prometheus.CounterVec

	// FallbacksTotal counts results synthesized after the retry budget
	// was exhausted.
	FallbacksTotal prometheus.Counter

	// RunsTotal counts finished runs by how they ended.
	// Labels: outcome (completed, stopped)
	RunsTotal *prometheus.CounterVec

	// DispatchWaitSeconds measures how long one (article, configuration)
	// dispatch took end to end.
	// Labels: provenance (remote, fallback)
	DispatchWaitSeconds *prometheus.HistogramVec

	// ActiveRuns tracks runs currently in the Running state.
	ActiveRuns prometheus.Gauge

	// ConnectedClients tracks open websocket connections.
	ConnectedClients prometheus.Gauge
}

var (
	defaultMetrics *EvalMetrics
	metricsOnce    sync.Once
)

// Metrics returns the process-wide metrics instance, registering it on the
// default registry on first use. Lazy registration keeps package tests from
// tripping duplicate-registration panics.
func Metrics() *EvalMetrics {
	metricsOnce.Do(func() {
		defaultMetrics = &EvalMetrics{
			RequestsTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Namespace: metricsNamespace,
					Subsystem: evalSubsystem,
					Name:      "requests_total",
					Help:      "Summarization requests published to workers, by attempt kind",
				},
				[]string{"attempt"},
			),
			RepliesTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Namespace: metricsNamespace,
					Subsystem: evalSubsystem,
					Name:      "replies_total",
					Help:      "Worker replies received, by outcome",
				},
				[]string{"outcome"},
			),
			FallbacksTotal: promauto.NewCounter(
				prometheus.CounterOpts{
					Namespace: metricsNamespace,
					Subsystem: evalSubsystem,
					Name:      "fallbacks_total",
					Help:      "Results synthesized after the retry budget was exhausted",
				},
			),
			RunsTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Namespace: metricsNamespace,
					Subsystem: evalSubsystem,
					Name:      "runs_total",
					Help:      "Finished evaluation runs, by outcome",
				},
				[]string{"outcome"},
			),
			DispatchWaitSeconds: promauto.NewHistogramVec(
				prometheus.HistogramOpts{
					Namespace: metricsNamespace,
					Subsystem: evalSubsystem,
					Name:      "dispatch_wait_seconds",
					Help:      "End-to-end dispatch duration per (article, configuration)",
					Buckets:   []float64{0.1, 0.5, 1, 5, 15, 60, 120, 300},
				},
				[]string{"provenance"},
			),
			ActiveRuns: promauto.NewGauge(
				prometheus.GaugeOpts{
					Namespace: metricsNamespace,
					Subsystem: evalSubsystem,
					Name:      "active_runs",
					Help:      "Runs currently in the Running state",
				},
			),
			ConnectedClients: promauto.NewGauge(
				prometheus.GaugeOpts{
					Namespace: metricsNamespace,
					Subsystem: evalSubsystem,
					Name:      "connected_clients",
					Help:      "Open websocket connections (workers and observers)",
				},
			),
		}
	})
	return defaultMetrics
}

// Reply outcome labels.
const (
	ReplyConsumed  = "consumed"
	ReplyDuplicate = "duplicate"
	ReplyStale     = "stale"
	ReplyError     = "error"
)
