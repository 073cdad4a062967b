// Package main provides the entrypoint for the AireClaro collector.
//
// The collector polls the provider for every monitoring point on a fixed
// cadence and stores the canonical readings. Runs can also be triggered
// through Pub/Sub, which is how backfills are requested in production.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/aireclaro/aireclaro/internal/collector"
	"github.com/aireclaro/aireclaro/internal/collector/openweather"
	"github.com/aireclaro/aireclaro/internal/database"
	"github.com/aireclaro/aireclaro/internal/history"
	"github.com/aireclaro/aireclaro/internal/telemetry"
)

// Version and BuildTime are set at compile time via ldflags.
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	const serviceName = "aireclaro-collector"

	// Setup structured logging
	log := zerolog.New(os.Stdout).
		With().
		Timestamp().
		Str("service", serviceName).
		Str("version", Version).
		Logger()

	log.Info().
		Str("build_time", BuildTime).
		Msg("starting AireClaro collector")

	port := os.Getenv("APP_PORT")
	if port == "" {
		port = "8080"
	}

	apiKey := os.Getenv("OPENWEATHER_API_KEY")
	if apiKey == "" {
		log.Fatal().Msg("OPENWEATHER_API_KEY is required")
	}

	// Initialize OpenTelemetry
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	telemetryConfig := telemetry.ConfigFromEnv(serviceName, Version)
	tp, err := telemetry.Init(ctx, telemetryConfig)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize telemetry")
	}
	defer func() {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		if shutdownErr := tp.Shutdown(shutdownCtx); shutdownErr != nil {
			log.Error().Err(shutdownErr).Msg("failed to shutdown telemetry")
		}
	}()

	// Connect to database
	dbConfig := database.ConfigFromEnv()
	pool, err := database.Connect(ctx, dbConfig)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()
	log.Info().
		Str("host", dbConfig.Host).
		Str("database", dbConfig.Database).
		Msg("database connected")

	// Wire provider, store, and collection service
	provider := openweather.NewClient(openweather.ClientConfig{
		APIKey: apiKey,
	})

	config := collector.DefaultConfig()
	if raw := os.Getenv("COLLECT_INTERVAL"); raw != "" {
		interval, parseErr := time.ParseDuration(raw)
		if parseErr != nil {
			log.Fatal().Err(parseErr).Str("value", raw).Msg("invalid COLLECT_INTERVAL")
		}
		config.Interval = interval
	}

	service := collector.NewService(collector.ServiceConfig{
		Config:     config,
		Provider:   provider,
		Repository: history.NewPostgresRepository(pool),
		Logger:     log,
	})

	// Health check server for Cloud Run
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, `{"status":"healthy","version":%q}`, Version)
	})
	mux.HandleFunc("/metrics", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(service.MetricsSnapshot())
	})

	server := &http.Server{
		Addr:         ":" + port,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Info().Str("addr", server.Addr).Msg("health server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("health server error")
		}
	}()

	// Scheduled collection loop
	go service.RunScheduled(ctx)

	// Optional Pub/Sub trigger for on-demand jobs and backfills
	if projectID := os.Getenv("GOOGLE_CLOUD_PROJECT"); projectID != "" {
		subscription := os.Getenv("PUBSUB_SUBSCRIPTION")
		if subscription == "" {
			subscription = "collector-jobs"
		}

		handler, err := collector.NewPubSubHandler(ctx, collector.PubSubConfig{
			ProjectID:        projectID,
			SubscriptionName: subscription,
			Service:          service,
			Logger:           log,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("failed to create pubsub handler")
		}
		defer handler.Close()

		go func() {
			if err := handler.Start(ctx); err != nil {
				log.Error().Err(err).Msg("pubsub handler stopped")
			}
		}()
	} else {
		log.Info().Msg("GOOGLE_CLOUD_PROJECT not set, pubsub trigger disabled")
	}

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down collector")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("health server forced to shutdown")
	}

	log.Info().Msg("collector stopped")
}
