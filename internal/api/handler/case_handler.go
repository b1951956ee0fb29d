package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/defm/console/internal/core/domain"
	"github.com/defm/console/internal/core/ports"
)

type CaseHandler struct {
	svc ports.BackendService
}

func NewCaseHandler(svc ports.BackendService) *CaseHandler {
	return &CaseHandler{svc: svc}
}

// Dashboard returns headline counters and the last week of activity.
func (h *CaseHandler) Dashboard(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	data, err := h.svc.Dashboard(c.Request().Context(), actor)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, data)
}

func (h *CaseHandler) List(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	opts, err := listOptions(c)
	if err != nil {
		return err
	}
	filter := domain.CaseFilter{
		Skip:   opts.Skip,
		Limit:  opts.Limit,
		Status: domain.CaseStatus(c.QueryParam("status")),
	}
	if err := echo.QueryParamsBinder(c).Bool("assigned_to_me", &filter.AssignedToMe).BindError(); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, "assigned_to_me must be a boolean")
	}
	cases, err := h.svc.ListCases(c.Request().Context(), actor, filter)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, cases)
}

func (h *CaseHandler) Get(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	cs, err := h.svc.GetCase(c.Request().Context(), actor, id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, cs)
}

func (h *CaseHandler) Create(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	var req domain.CaseInput
	if err := bind(c, &req); err != nil {
		return err
	}
	cs, err := h.svc.CreateCase(c.Request().Context(), actor, req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, cs)
}

// Update applies a partial update; the title is not required here.
func (h *CaseHandler) Update(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req domain.CaseInput
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, "invalid request body")
	}
	cs, err := h.svc.UpdateCase(c.Request().Context(), actor, id, req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, cs)
}

func (h *CaseHandler) Delete(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	if err := h.svc.DeleteCase(c.Request().Context(), actor, id); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, domain.StatusMessage{Message: "Case deleted successfully"})
}
