package apiclient

import (
	"context"
	"fmt"
	"net/http"

	"github.com/defm/console/internal/core/domain"
)

// ReportsAPI wraps /reports.
type ReportsAPI struct{ c *Client }

func (a *ReportsAPI) List(ctx context.Context, opts domain.ListOptions, caseID int64) ([]domain.Report, error) {
	q := params{}.page(opts.Skip, opts.Limit).num("case_id", caseID)
	var out []domain.Report
	err := a.c.do(ctx, request{resource: "reports", method: http.MethodGet, path: "reports", query: q.values()}, &out)
	return out, err
}

func (a *ReportsAPI) Get(ctx context.Context, id int64) (*domain.Report, error) {
	var out domain.Report
	if err := a.c.do(ctx, request{resource: "reports", method: http.MethodGet, path: "reports/" + itoa(id)}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (a *ReportsAPI) Create(ctx context.Context, in domain.ReportInput) (*domain.Report, error) {
	var out domain.Report
	if err := a.c.do(ctx, request{resource: "reports", method: http.MethodPost, path: "reports", body: in}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Generate renders a report for a case. Options travel as query parameters.
func (a *ReportsAPI) Generate(ctx context.Context, caseID int64, opts domain.GenerateOptions) (*domain.GeneratedReport, error) {
	q := params{}.
		str("report_type", opts.ReportType).
		boolean("include_evidence", opts.IncludeEvidence).
		boolean("include_custody", opts.IncludeCustody).
		str("format", opts.Format)
	var out domain.GeneratedReport
	err := a.c.do(ctx, request{resource: "reports", method: http.MethodPost, path: "reports/generate/" + itoa(caseID), query: q.values()}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (a *ReportsAPI) Download(ctx context.Context, id int64) (*domain.Download, error) {
	return a.c.download(ctx, request{
		resource: "reports",
		method:   http.MethodGet,
		path:     "reports/" + itoa(id) + "/download",
	}, fmt.Sprintf("report-%d", id))
}

func (a *ReportsAPI) Delete(ctx context.Context, id int64) (*domain.StatusMessage, error) {
	var out domain.StatusMessage
	if err := a.c.do(ctx, request{resource: "reports", method: http.MethodDelete, path: "reports/" + itoa(id)}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
