// Copyright (C) 2025 SwarmCraft contributors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/swarmcraft/swarmcraft/services/coordinator/config"
	"github.com/swarmcraft/swarmcraft/services/coordinator/engine"
	"github.com/swarmcraft/swarmcraft/services/coordinator/hub"
	"github.com/swarmcraft/swarmcraft/services/coordinator/routes"
	"github.com/swarmcraft/swarmcraft/services/coordinator/store"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc/credentials/insecure"

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

func initTracer(endpoint string) (func(context.Context), error) {
	ctx := context.Background()

	conn, err := grpc.NewClient(endpoint,
		grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, err
	}
	traceExporter, err := otlptracegrpc.New(ctx, otlptracegrpc.WithGRPCConn(conn))
	if err != nil {
		return nil, err
	}
	res, err := resource.New(ctx,
		resource.WithAttributes(semconv.ServiceNameKey.String("coordinator-service")))
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

	if err := config.Load(); err != nil {
		log.Fatalf("FATAL: could not load the coordinator config: %v", err)
	}
	cfg := config.Global

	if cfg.OTLPEndpoint != "" {
		cleanup, err := initTracer(cfg.OTLPEndpoint)
		if err != nil {
			log.Fatalf("failed to setup the OTLP tracer: %v", err)
		}
		defer cleanup(context.Background())
	} else {
		slog.Info("otlp_endpoint not set, tracing disabled")
	}

	var (
		st  *store.BadgerStore
		err error
	)
	if cfg.DataDir == "" {
		slog.Info("data_dir not set, running with an in-memory store")
		st, err = store.OpenInMemory()
	} else {
		st, err = store.Open(store.DefaultConfig(cfg.DataDir))
	}
	if err != nil {
		log.Fatalf("FATAL: could not open the session store: %v", err)
	}
	defer st.Close()

	h := hub.New(hub.Config{
		SendBuffer:   cfg.SendBuffer,
		WriteTimeout: cfg.WriteTimeout.Std(),
	}, logger)

	eng := engine.New(st, h, engine.Config{
		SessionTTL:      cfg.SessionTTL.Std(),
		LivenessTimeout: cfg.LivenessTimeout.Std(),
		RetryBudget:     cfg.RetryBudget,
		RetryBackoff:    cfg.RetryBackoff.Std(),
	}, logger)

	router := gin.Default()
	router.Use(otelgin.Middleware("coordinator-service"))
	routes.Setup(router, eng, h, cfg.AdminKey)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	ctx, stop := signal.NotifyContext(context.Background(),
		syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	group, gctx := errgroup.WithContext(ctx)

	group.Go(func() error {
		slog.Info("starting the coordinator server", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	group.Go(func() error {
		eng.RunSweeper(gctx, cfg.SweepInterval.Std())
		return nil
	})
	group.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := group.Wait(); err != nil {
		log.Fatalf("coordinator exited with error: %v", err)
	}
	slog.Info("coordinator shut down cleanly")
}
