package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/defm/console/internal/core/domain"
	"github.com/defm/console/internal/core/ports"
)

type EvidenceHandler struct {
	svc ports.BackendService
}

func NewEvidenceHandler(svc ports.BackendService) *EvidenceHandler {
	return &EvidenceHandler{svc: svc}
}

func (h *EvidenceHandler) List(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	opts, err := listOptions(c)
	if err != nil {
		return err
	}
	filter := domain.EvidenceFilter{
		Skip:         opts.Skip,
		Limit:        opts.Limit,
		EvidenceType: domain.EvidenceType(c.QueryParam("evidence_type")),
		Status:       domain.EvidenceStatus(c.QueryParam("status")),
	}
	if err := echo.QueryParamsBinder(c).Int64("case_id", &filter.CaseID).BindError(); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, "case_id must be an integer")
	}
	items, err := h.svc.ListEvidence(c.Request().Context(), actor, filter)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, items)
}

func (h *EvidenceHandler) Get(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	e, err := h.svc.GetEvidence(c.Request().Context(), actor, id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, e)
}

func (h *EvidenceHandler) Create(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	var req domain.EvidenceInput
	if err := bind(c, &req); err != nil {
		return err
	}
	e, err := h.svc.CreateEvidence(c.Request().Context(), actor, req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, e)
}

func (h *EvidenceHandler) Update(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req domain.EvidenceInput
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, "invalid request body")
	}
	e, err := h.svc.UpdateEvidence(c.Request().Context(), actor, id, req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, e)
}

func (h *EvidenceHandler) Delete(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	if err := h.svc.DeleteEvidence(c.Request().Context(), actor, id); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, domain.StatusMessage{Message: "Evidence deleted successfully"})
}

// Upload accepts a multipart form with the file in field "file".
func (h *EvidenceHandler) Upload(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	fh, err := c.FormFile("file")
	if err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, "file is required")
	}
	f, err := fh.Open()
	if err != nil {
		return err
	}
	defer f.Close()

	up, err := h.svc.UploadEvidence(c.Request().Context(), actor, id, fh.Filename, fh.Header.Get(echo.HeaderContentType), f)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, up)
}

func (h *EvidenceHandler) Download(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	dl, err := h.svc.DownloadEvidence(c.Request().Context(), actor, id)
	if err != nil {
		return err
	}
	return sendDownload(c, dl)
}

func (h *EvidenceHandler) VerifyIntegrity(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	report, err := h.svc.VerifyIntegrity(c.Request().Context(), actor, id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, report)
}
