// Package handler provides HTTP handlers for the AireClaro API.
package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/aireclaro/aireclaro/internal/api/models"
	"github.com/aireclaro/aireclaro/internal/api/response"
)

// ReadyCheck probes a hard dependency, typically the database pool.
type ReadyCheck func(ctx context.Context) error

// OpsHandler handles operational endpoints.
type OpsHandler struct {
	version   string
	buildTime string
	readyDB   ReadyCheck
}

// NewOpsHandler creates a new OpsHandler. readyDB may be nil when the API
// runs without a database, e.g. in tests.
func NewOpsHandler(version, buildTime string, readyDB ReadyCheck) *OpsHandler {
	return &OpsHandler{
		version:   version,
		buildTime: buildTime,
		readyDB:   readyDB,
	}
}

// HealthCheck handles GET /v1/ops/health - liveness check.
func (h *OpsHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	health := models.Health{
		Status: models.HealthStatusOK,
		Time:   models.Timestamp(time.Now()),
		Details: map[string]interface{}{
			"version":   h.version,
			"buildTime": h.buildTime,
		},
	}
	response.JSON(w, r, http.StatusOK, health)
}

// ReadinessCheck handles GET /v1/ops/ready - readiness check. Fails when the
// database cannot be reached so load balancers stop routing here.
func (h *OpsHandler) ReadinessCheck(w http.ResponseWriter, r *http.Request) {
	if h.readyDB != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := h.readyDB(ctx); err != nil {
			response.ServiceUnavailable(w, r, "database is not reachable")
			return
		}
	}

	health := models.Health{
		Status: models.HealthStatusOK,
		Time:   models.Timestamp(time.Now()),
	}
	response.JSON(w, r, http.StatusOK, health)
}

// SystemStatus handles GET /v1/ops/status - subsystem status.
func (h *OpsHandler) SystemStatus(w http.ResponseWriter, r *http.Request) {
	overall := models.HealthStatusOK

	postgres := models.SubsystemStatus{Name: "postgres", Status: models.HealthStatusOK}
	if h.readyDB != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := h.readyDB(ctx); err != nil {
			detail := err.Error()
			postgres.Status = models.HealthStatusFail
			postgres.Detail = &detail
			overall = models.HealthStatusDegraded
		}
	}

	status := models.SystemStatus{
		Status:     overall,
		Time:       models.Timestamp(time.Now()),
		Subsystems: []models.SubsystemStatus{postgres},
	}
	response.JSON(w, r, http.StatusOK, status)
}
