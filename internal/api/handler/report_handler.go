package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/defm/console/internal/core/domain"
	"github.com/defm/console/internal/core/ports"
)

type ReportHandler struct {
	svc ports.BackendService
}

func NewReportHandler(svc ports.BackendService) *ReportHandler {
	return &ReportHandler{svc: svc}
}

func (h *ReportHandler) List(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	opts, err := listOptions(c)
	if err != nil {
		return err
	}
	var caseID int64
	if err := echo.QueryParamsBinder(c).Int64("case_id", &caseID).BindError(); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, "case_id must be an integer")
	}
	reports, err := h.svc.ListReports(c.Request().Context(), actor, opts, caseID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, reports)
}

func (h *ReportHandler) Get(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	r, err := h.svc.GetReport(c.Request().Context(), actor, id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, r)
}

func (h *ReportHandler) Create(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	var req domain.ReportInput
	if err := bind(c, &req); err != nil {
		return err
	}
	r, err := h.svc.CreateReport(c.Request().Context(), actor, req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, r)
}

// Generate renders a case report. Options arrive as query parameters and
// fall back to summary/pdf with evidence and custody included.
func (h *ReportHandler) Generate(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	caseID, err := pathID(c, "caseId")
	if err != nil {
		return err
	}
	opts := domain.DefaultGenerateOptions()
	err = echo.QueryParamsBinder(c).
		String("report_type", &opts.ReportType).
		Bool("include_evidence", &opts.IncludeEvidence).
		Bool("include_custody", &opts.IncludeCustody).
		String("format", &opts.Format).
		BindError()
	if err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, "invalid query parameters")
	}
	out, err := h.svc.GenerateReport(c.Request().Context(), actor, caseID, opts)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, out)
}

func (h *ReportHandler) Download(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	dl, err := h.svc.DownloadReport(c.Request().Context(), actor, id)
	if err != nil {
		return err
	}
	return sendDownload(c, dl)
}

func (h *ReportHandler) Delete(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	if err := h.svc.DeleteReport(c.Request().Context(), actor, id); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, domain.StatusMessage{Message: "Report deleted successfully"})
}
