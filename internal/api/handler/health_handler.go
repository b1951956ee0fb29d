package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/defm/console/internal/core/domain"
)

// HealthHandler answers GET /health; no authentication.
type HealthHandler struct {
	version string
	now     func() time.Time
}

func NewHealthHandler(version string) *HealthHandler {
	return &HealthHandler{version: version, now: time.Now}
}

func (h *HealthHandler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, domain.Health{
		Status:    "healthy",
		Timestamp: h.now().UTC().Format("2006-01-02T15:04:05.000000"),
		Version:   h.version,
	})
}
