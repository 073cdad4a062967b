// Package api provides the HTTP API for AireClaro.
package api

import (
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/aireclaro/aireclaro/internal/analytics"
	"github.com/aireclaro/aireclaro/internal/api/handler"
	"github.com/aireclaro/aireclaro/internal/api/middleware"
)

// RouterConfig holds configuration for the router.
type RouterConfig struct {
	Version     string
	BuildTime   string
	Logger      zerolog.Logger
	ServiceName string
	Metrics     *middleware.Metrics
	Analytics   *analytics.Service

	// ReadyDB probes the database for readiness checks; nil disables it.
	ReadyDB handler.ReadyCheck
}

// NewRouter creates a new chi router with all API routes configured.
func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	// Set default service name if not provided
	serviceName := cfg.ServiceName
	if serviceName == "" {
		serviceName = "aireclaro-api"
	}

	// Global middleware - order matters
	r.Use(middleware.RequestID)            // Generate/propagate request ID first
	r.Use(middleware.Tracing(serviceName)) // Distributed tracing
	if cfg.Metrics != nil {
		r.Use(cfg.Metrics.Middleware()) // HTTP metrics
	}
	r.Use(middleware.Logger(cfg.Logger))   // Structured logging
	r.Use(middleware.Recovery(cfg.Logger)) // Panic recovery
	r.Use(chimiddleware.RealIP)            // Real IP extraction
	r.Use(middleware.SecurityHeaders)      // Security headers (HSTS, CSP, etc.)
	r.Use(middleware.RequireTLS)           // TLS enforcement (enabled via REQUIRE_TLS=true)
	r.Use(middleware.ContentTypeJSON)      // JSON content type

	// Initialize handlers
	opsHandler := handler.NewOpsHandler(cfg.Version, cfg.BuildTime, cfg.ReadyDB)
	locationsHandler := handler.NewLocationsHandler()
	analyticsHandler := handler.NewAnalyticsHandler(cfg.Analytics)

	// Create rate limit middleware for different endpoint categories
	expensiveRateLimit := middleware.RateLimitByIP(middleware.ExpensiveRateLimit) // 30 req/min
	standardRateLimit := middleware.RateLimitByIP(middleware.StandardRateLimit)   // 100 req/min

	// API v1 routes
	r.Route("/v1", func(r chi.Router) {
		// Ops endpoints (public)
		r.Route("/ops", func(r chi.Router) {
			r.Get("/health", opsHandler.HealthCheck)
			r.Get("/ready", opsHandler.ReadinessCheck)
			r.Get("/status", opsHandler.SystemStatus)
		})

		// Location catalog and per-location reports
		r.Route("/locations", func(r chi.Router) {
			r.Use(standardRateLimit)
			r.Get("/", locationsHandler.ListLocations)

			r.Route("/{locationId}", func(r chi.Router) {
				r.Get("/", locationsHandler.GetLocation)
				r.Get("/current", analyticsHandler.GetCurrent)
				r.Get("/summary", analyticsHandler.GetDailySummary)
				r.Get("/anomalies", analyticsHandler.GetAnomalies)
				r.Get("/distribution", analyticsHandler.GetAQIDistribution)

				// Heavier queries - strict rate limiting
				r.With(expensiveRateLimit).Get("/monthly", analyticsHandler.GetMonthlyReport)
				r.With(expensiveRateLimit).Get("/export", analyticsHandler.ExportReadings)
			})
		})

		// City-wide analytics - fans out over the whole catalog
		r.Route("/analytics", func(r chi.Router) {
			r.With(expensiveRateLimit).Get("/trends/hourly", analyticsHandler.GetHourlyTrends)
		})
	})

	return r
}
