package apiclient

import (
	"context"
	"net/http"

	"github.com/defm/console/internal/core/domain"
)

// CustodyAPI wraps /chain-of-custody.
type CustodyAPI struct{ c *Client }

func (a *CustodyAPI) List(ctx context.Context, f domain.CustodyFilter) ([]domain.CustodyRecord, error) {
	q := params{}.page(f.Skip, f.Limit).num("evidence_id", f.EvidenceID)
	var out []domain.CustodyRecord
	err := a.c.do(ctx, request{resource: "custody", method: http.MethodGet, path: "chain-of-custody", query: q.values()}, &out)
	return out, err
}

func (a *CustodyAPI) Get(ctx context.Context, id int64) (*domain.CustodyRecord, error) {
	var out domain.CustodyRecord
	if err := a.c.do(ctx, request{resource: "custody", method: http.MethodGet, path: "chain-of-custody/" + itoa(id)}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ForEvidence returns the full chain of one evidence item.
func (a *CustodyAPI) ForEvidence(ctx context.Context, evidenceID int64) ([]domain.CustodyRecord, error) {
	var out []domain.CustodyRecord
	err := a.c.do(ctx, request{resource: "custody", method: http.MethodGet, path: "chain-of-custody/evidence/" + itoa(evidenceID)}, &out)
	return out, err
}

func (a *CustodyAPI) Create(ctx context.Context, in domain.CustodyInput) (*domain.CustodyRecord, error) {
	var out domain.CustodyRecord
	if err := a.c.do(ctx, request{resource: "custody", method: http.MethodPost, path: "chain-of-custody", body: in}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Transfer hands an evidence item to another user. The backend takes its
// arguments as query parameters, not a body.
func (a *CustodyAPI) Transfer(ctx context.Context, in domain.TransferInput) (*domain.CustodyRecord, error) {
	q := params{}.
		num("evidence_id", in.EvidenceID).
		num("transferred_to", in.TransferredTo).
		str("location", in.Location).
		str("purpose", in.Purpose).
		str("notes", in.Notes)
	var out domain.CustodyRecord
	err := a.c.do(ctx, request{resource: "custody", method: http.MethodPost, path: "chain-of-custody/transfer", query: q.values()}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (a *CustodyAPI) Delete(ctx context.Context, id int64) (*domain.StatusMessage, error) {
	var out domain.StatusMessage
	if err := a.c.do(ctx, request{resource: "custody", method: http.MethodDelete, path: "chain-of-custody/" + itoa(id)}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
