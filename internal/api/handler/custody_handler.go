package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/defm/console/internal/core/domain"
	"github.com/defm/console/internal/core/ports"
)

type CustodyHandler struct {
	svc ports.BackendService
}

func NewCustodyHandler(svc ports.BackendService) *CustodyHandler {
	return &CustodyHandler{svc: svc}
}

func (h *CustodyHandler) List(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	opts, err := listOptions(c)
	if err != nil {
		return err
	}
	filter := domain.CustodyFilter{Skip: opts.Skip, Limit: opts.Limit}
	if err := echo.QueryParamsBinder(c).Int64("evidence_id", &filter.EvidenceID).BindError(); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, "evidence_id must be an integer")
	}
	recs, err := h.svc.ListCustody(c.Request().Context(), actor, filter)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, recs)
}

func (h *CustodyHandler) Get(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	rec, err := h.svc.GetCustody(c.Request().Context(), actor, id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, rec)
}

func (h *CustodyHandler) ForEvidence(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "evidenceId")
	if err != nil {
		return err
	}
	recs, err := h.svc.CustodyForEvidence(c.Request().Context(), actor, id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, recs)
}

func (h *CustodyHandler) Create(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	var req domain.CustodyInput
	if err := bind(c, &req); err != nil {
		return err
	}
	rec, err := h.svc.CreateCustody(c.Request().Context(), actor, req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, rec)
}

// transferQuery mirrors the query parameters of POST /chain-of-custody/transfer.
type transferQuery struct {
	EvidenceID    int64  `query:"evidence_id"    validate:"required"`
	TransferredTo int64  `query:"transferred_to" validate:"required"`
	Location      string `query:"location"       validate:"required"`
	Purpose       string `query:"purpose"        validate:"required"`
	Notes         string `query:"notes"`
}

func (h *CustodyHandler) Transfer(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	var q transferQuery
	if err := (&echo.DefaultBinder{}).BindQueryParams(c, &q); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, "invalid query parameters")
	}
	if err := c.Validate(&q); err != nil {
		return err
	}
	rec, err := h.svc.TransferCustody(c.Request().Context(), actor, domain.TransferInput{
		EvidenceID:    q.EvidenceID,
		TransferredTo: q.TransferredTo,
		Location:      q.Location,
		Purpose:       q.Purpose,
		Notes:         q.Notes,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, rec)
}

func (h *CustodyHandler) Delete(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	if err := h.svc.DeleteCustody(c.Request().Context(), actor, id); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, domain.StatusMessage{Message: "Custody record deleted successfully"})
}
