package apiclient

import (
	"context"
	"net/http"

	"github.com/defm/console/internal/core/domain"
)

// AuditAPI wraps /audit-logs.
type AuditAPI struct{ c *Client }

func (a *AuditAPI) List(ctx context.Context, f domain.AuditFilter) ([]domain.AuditLog, error) {
	q := params{}.page(f.Skip, f.Limit).
		num("user_id", f.UserID).
		str("action", f.Action).
		str("entity_type", f.EntityType).
		at("start_date", f.StartDate).
		at("end_date", f.EndDate)
	var out []domain.AuditLog
	err := a.c.do(ctx, request{resource: "audit", method: http.MethodGet, path: "audit-logs", query: q.values()}, &out)
	return out, err
}

// Recent returns the newest entries. limit <= 0 means domain.DefaultRecentLimit.
func (a *AuditAPI) Recent(ctx context.Context, limit int) ([]domain.AuditLog, error) {
	if limit <= 0 {
		limit = domain.DefaultRecentLimit
	}
	q := params{}.num("limit", int64(limit))
	var out []domain.AuditLog
	err := a.c.do(ctx, request{resource: "audit", method: http.MethodGet, path: "audit-logs/recent", query: q.values()}, &out)
	return out, err
}

func (a *AuditAPI) ForUser(ctx context.Context, userID int64, opts domain.ListOptions) ([]domain.AuditLog, error) {
	var out []domain.AuditLog
	err := a.c.do(ctx, request{resource: "audit", method: http.MethodGet, path: "audit-logs/user/" + itoa(userID), query: listQuery(opts)}, &out)
	return out, err
}

func (a *AuditAPI) ForEntity(ctx context.Context, entityType string, entityID int64) ([]domain.AuditLog, error) {
	seg, err := pathSegment("entity type", entityType)
	if err != nil {
		return nil, err
	}
	var out []domain.AuditLog
	err = a.c.do(ctx, request{
		resource: "audit",
		method:   http.MethodGet,
		rawPath:  "audit-logs/entity/" + seg + "/" + itoa(entityID),
	}, &out)
	return out, err
}
