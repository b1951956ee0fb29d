package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/defm/console/internal/core/domain"
	"github.com/defm/console/internal/core/ports"
)

type AuditHandler struct {
	svc ports.BackendService
}

func NewAuditHandler(svc ports.BackendService) *AuditHandler {
	return &AuditHandler{svc: svc}
}

func (h *AuditHandler) List(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	opts, err := listOptions(c)
	if err != nil {
		return err
	}
	filter := domain.AuditFilter{
		Skip:       opts.Skip,
		Limit:      opts.Limit,
		Action:     c.QueryParam("action"),
		EntityType: c.QueryParam("entity_type"),
	}
	err = echo.QueryParamsBinder(c).
		Int64("user_id", &filter.UserID).
		Time("start_date", &filter.StartDate, "2006-01-02T15:04:05Z07:00").
		Time("end_date", &filter.EndDate, "2006-01-02T15:04:05Z07:00").
		BindError()
	if err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, "invalid query parameters")
	}
	logs, err := h.svc.ListAudit(c.Request().Context(), actor, filter)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, logs)
}

func (h *AuditHandler) Recent(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	limit := domain.DefaultRecentLimit
	if err := echo.QueryParamsBinder(c).Int("limit", &limit).BindError(); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, "limit must be an integer")
	}
	logs, err := h.svc.RecentAudit(c.Request().Context(), actor, limit)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, logs)
}

func (h *AuditHandler) ForUser(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	userID, err := pathID(c, "userId")
	if err != nil {
		return err
	}
	opts, err := listOptions(c)
	if err != nil {
		return err
	}
	logs, err := h.svc.AuditForUser(c.Request().Context(), actor, userID, opts)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, logs)
}

func (h *AuditHandler) ForEntity(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	entityID, err := pathID(c, "entityId")
	if err != nil {
		return err
	}
	logs, err := h.svc.AuditForEntity(c.Request().Context(), actor, c.Param("entityType"), entityID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, logs)
}
