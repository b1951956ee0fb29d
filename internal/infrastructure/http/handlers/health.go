package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/defm/console/internal/core/domain"
	"github.com/defm/console/internal/core/ports"
)

// HealthHandler handles GET /health, the liveness probe.
// Returns 200 immediately; confirms the process is alive.
type HealthHandler struct{}

func NewHealthHandler() *HealthHandler {
	return &HealthHandler{}
}

func (h *HealthHandler) Liveness(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status": "ok",
	})
}

// UpstreamChecker probes the DEFM backend without credentials.
type UpstreamChecker interface {
	Health(ctx context.Context) (*domain.Health, error)
}

// HealthDependenciesHandler handles GET /health/ready, the readiness probe.
// Checks the token store and the upstream backend before declaring ready.
type HealthDependenciesHandler struct {
	store    ports.KeyValueStore
	upstream UpstreamChecker
}

func NewHealthDependenciesHandler(store ports.KeyValueStore, upstream UpstreamChecker) *HealthDependenciesHandler {
	return &HealthDependenciesHandler{
		store:    store,
		upstream: upstream,
	}
}

type dependencyStatus struct {
	Status  string `json:"status"`
	Version string `json:"version,omitempty"`
	Error   string `json:"error,omitempty"`
}

type readinessResponse struct {
	Status       string                      `json:"status"`
	Dependencies map[string]dependencyStatus `json:"dependencies"`
}

func (h *HealthDependenciesHandler) Readiness(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 3*time.Second)
	defer cancel()

	deps := make(map[string]dependencyStatus)
	healthy := true

	// --- Token store ping ---
	if err := h.store.Ping(ctx); err != nil {
		deps["store"] = dependencyStatus{Status: "unhealthy", Error: err.Error()}
		healthy = false
	} else {
		deps["store"] = dependencyStatus{Status: "ok"}
	}

	// --- DEFM backend ---
	if hl, err := h.upstream.Health(ctx); err != nil {
		deps["backend"] = dependencyStatus{Status: "unhealthy", Error: domain.UserMessage(err)}
		healthy = false
	} else {
		deps["backend"] = dependencyStatus{Status: hl.Status, Version: hl.Version}
	}

	status := "ok"
	httpStatus := http.StatusOK
	if !healthy {
		status = "degraded"
		httpStatus = http.StatusServiceUnavailable
	}

	return c.JSON(httpStatus, readinessResponse{
		Status:       status,
		Dependencies: deps,
	})
}
