package apiclient

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/defm/console/internal/core/domain"
)

// EvidenceAPI wraps /evidence.
type EvidenceAPI struct{ c *Client }

func (a *EvidenceAPI) List(ctx context.Context, f domain.EvidenceFilter) ([]domain.Evidence, error) {
	q := params{}.page(f.Skip, f.Limit).
		num("case_id", f.CaseID).
		str("evidence_type", string(f.EvidenceType)).
		str("status", string(f.Status))
	var out []domain.Evidence
	err := a.c.do(ctx, request{resource: "evidence", method: http.MethodGet, path: "evidence", query: q.values()}, &out)
	return out, err
}

func (a *EvidenceAPI) Get(ctx context.Context, id int64) (*domain.Evidence, error) {
	var out domain.Evidence
	if err := a.c.do(ctx, request{resource: "evidence", method: http.MethodGet, path: "evidence/" + itoa(id)}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (a *EvidenceAPI) Create(ctx context.Context, in domain.EvidenceInput) (*domain.Evidence, error) {
	var out domain.Evidence
	if err := a.c.do(ctx, request{resource: "evidence", method: http.MethodPost, path: "evidence", body: in}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (a *EvidenceAPI) Update(ctx context.Context, id int64, in domain.EvidenceInput) (*domain.Evidence, error) {
	var out domain.Evidence
	if err := a.c.do(ctx, request{resource: "evidence", method: http.MethodPut, path: "evidence/" + itoa(id), body: in}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (a *EvidenceAPI) Delete(ctx context.Context, id int64) (*domain.StatusMessage, error) {
	var out domain.StatusMessage
	if err := a.c.do(ctx, request{resource: "evidence", method: http.MethodDelete, path: "evidence/" + itoa(id)}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Upload attaches a file to an evidence item as multipart field "file".
func (a *EvidenceAPI) Upload(ctx context.Context, id int64, filename string, content io.Reader) (*domain.FileUpload, error) {
	var out domain.FileUpload
	err := a.c.do(ctx, request{
		resource: "evidence",
		method:   http.MethodPost,
		path:     "evidence/" + itoa(id) + "/upload",
		form:     &multipartFile{field: "file", filename: filename, content: content},
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Download fetches the raw file attached to an evidence item.
func (a *EvidenceAPI) Download(ctx context.Context, id int64) (*domain.Download, error) {
	return a.c.download(ctx, request{
		resource: "evidence",
		method:   http.MethodGet,
		path:     "evidence/" + itoa(id) + "/download",
	}, fmt.Sprintf("evidence-%d", id))
}

// VerifyIntegrity asks the backend to rehash the stored file.
func (a *EvidenceAPI) VerifyIntegrity(ctx context.Context, id int64) (*domain.IntegrityReport, error) {
	var out domain.IntegrityReport
	err := a.c.do(ctx, request{resource: "evidence", method: http.MethodPost, path: "evidence/" + itoa(id) + "/verify-integrity"}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}
