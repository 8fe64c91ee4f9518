// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/jinterlante1206/SummarizeBench/services/evalserver/config"
	"github.com/jinterlante1206/SummarizeBench/services/evalserver/dataset"
	"github.com/jinterlante1206/SummarizeBench/services/evalserver/export"
	"github.com/jinterlante1206/SummarizeBench/services/evalserver/notify"
	"github.com/jinterlante1206/SummarizeBench/services/evalserver/routes"
	"github.com/jinterlante1206/SummarizeBench/services/evalserver/runner"
	"github.com/jinterlante1206/SummarizeBench/services/evalserver/scoring"

	// --- OpenTelemetry imports ---
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"google.golang.org/grpc"
)

func initTracer() (func(context.Context), error) {
	ctx := context.Background()

	otelEndpoint := os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT")
	if otelEndpoint == "" {
		// No collector configured; tracing stays off and the service runs
		// standalone.
		slog.Info("OTEL_EXPORTER_OTLP_ENDPOINT not set, tracing disabled")
		return func(context.Context) {}, nil
	}
	conn, err := grpc.NewClient(otelEndpoint,
		grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, err
	}
	traceExporter, err := otlptracegrpc.New(ctx, otlptracegrpc.WithGRPCConn(conn))
	if err != nil {
		return nil, err
	}
	res, err := resource.New(ctx,
		resource.WithAttributes(semconv.ServiceNameKey.String("evalserver")))
	if err != nil {
		return nil, err
	}
	bsp := sdktrace.NewBatchSpanProcessor(traceExporter)
	traceProvider := sdktrace.NewTracerProvider(
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
		sdktrace.WithResource(res),
		sdktrace.WithSpanProcessor(bsp))
	otel.SetTracerProvider(traceProvider)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(propagation.
		TraceContext{}, propagation.Baggage{}))

	return func(ctx context.Context) {
		ctx, cancel := context.WithTimeout(ctx, time.Second*5)
		defer cancel()
		if err := traceExporter.Shutdown(ctx); err != nil {
			slog.Error("failed to shutdown OTLP exporter", "error", err)
		}
	}, nil
}

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg := config.Load()

	cleanup, err := initTracer()
	if err != nil {
		log.Fatalf("failed to setup the OTLP tracer: %v", err)
	}
	defer cleanup(context.Background())

	scorer, err := scoring.NewRougeScorer(cfg.Scoring.Metrics, cfg.Scoring.UseStemmer)
	if err != nil {
		log.Fatalf("failed to build the ROUGE scorer: %v", err)
	}

	loader := dataset.NewLoader(cfg.Datasets.DataDir, cfg.Evaluation.MaxArticleLength)
	exporter, err := export.NewWriter(cfg.Export.ResultsDir)
	if err != nil {
		log.Fatalf("failed to prepare the results directory: %v", err)
	}

	hub := notify.NewHub()
	registry := runner.NewRegistry(cfg.Evaluation.LogMaxEntries)
	dispatcher := runner.NewDispatcher(hub, scorer,
		cfg.Evaluation.SummarizerTimeout(),
		cfg.Evaluation.RetryDelay(),
		cfg.Evaluation.PollInterval(),
		cfg.Evaluation.MaxRetries)
	ctrl := runner.NewController(registry, loader, dispatcher, hub,
		cfg.Evaluation.DefaultMaxArticles,
		cfg.Evaluation.MaxAllowedArticles,
		cfg.Evaluation.ProgressInterval())

	router := gin.Default()
	router.Use(otelgin.Middleware("evalserver"))
	routes.SetupRoutes(router, ctrl, hub, exporter, cfg.Datasets.Default)

	addr := cfg.Server.Host + ":" + cfg.Server.Port
	slog.Info("starting the evaluation server", "addr", addr,
		"default_dataset", cfg.Datasets.Default,
		"summarizer_timeout", cfg.Evaluation.SummarizerTimeout().String())
	if err := router.Run(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
