package apiclient

import (
	"context"
	"net/http"

	"github.com/defm/console/internal/core/domain"
)

// CasesAPI wraps /cases.
type CasesAPI struct{ c *Client }

func (a *CasesAPI) Dashboard(ctx context.Context) (*domain.DashboardData, error) {
	var out domain.DashboardData
	if err := a.c.do(ctx, request{resource: "cases", method: http.MethodGet, path: "cases/dashboard"}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (a *CasesAPI) List(ctx context.Context, f domain.CaseFilter) ([]domain.Case, error) {
	q := params{}.page(f.Skip, f.Limit).str("status", string(f.Status)).flag("assigned_to_me", f.AssignedToMe)
	var out []domain.Case
	err := a.c.do(ctx, request{resource: "cases", method: http.MethodGet, path: "cases", query: q.values()}, &out)
	return out, err
}

func (a *CasesAPI) Get(ctx context.Context, id int64) (*domain.Case, error) {
	var out domain.Case
	if err := a.c.do(ctx, request{resource: "cases", method: http.MethodGet, path: "cases/" + itoa(id)}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (a *CasesAPI) Create(ctx context.Context, in domain.CaseInput) (*domain.Case, error) {
	var out domain.Case
	if err := a.c.do(ctx, request{resource: "cases", method: http.MethodPost, path: "cases", body: in}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (a *CasesAPI) Update(ctx context.Context, id int64, in domain.CaseInput) (*domain.Case, error) {
	var out domain.Case
	if err := a.c.do(ctx, request{resource: "cases", method: http.MethodPut, path: "cases/" + itoa(id), body: in}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (a *CasesAPI) Delete(ctx context.Context, id int64) (*domain.StatusMessage, error) {
	var out domain.StatusMessage
	if err := a.c.do(ctx, request{resource: "cases", method: http.MethodDelete, path: "cases/" + itoa(id)}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
