package ports

import (
	"context"
	"io"

	"github.com/defm/console/internal/core/domain"
)

// BackendService is the business layer of the development backend. Every
// call is made on behalf of an authenticated actor; mutations are audited.
type BackendService interface {
	ListUsers(ctx context.Context, actor domain.Actor, opts domain.ListOptions) ([]domain.User, error)
	GetUser(ctx context.Context, actor domain.Actor, id int64) (*domain.User, error)
	CreateUser(ctx context.Context, actor domain.Actor, in domain.UserCreate) (*domain.User, error)
	UpdateUser(ctx context.Context, actor domain.Actor, id int64, in domain.UserUpdate) (*domain.User, error)
	DeleteUser(ctx context.Context, actor domain.Actor, id int64) error

	Dashboard(ctx context.Context, actor domain.Actor) (*domain.DashboardData, error)
	ListCases(ctx context.Context, actor domain.Actor, filter domain.CaseFilter) ([]domain.Case, error)
	GetCase(ctx context.Context, actor domain.Actor, id int64) (*domain.Case, error)
	CreateCase(ctx context.Context, actor domain.Actor, in domain.CaseInput) (*domain.Case, error)
	UpdateCase(ctx context.Context, actor domain.Actor, id int64, in domain.CaseInput) (*domain.Case, error)
	DeleteCase(ctx context.Context, actor domain.Actor, id int64) error

	ListEvidence(ctx context.Context, actor domain.Actor, filter domain.EvidenceFilter) ([]domain.Evidence, error)
	GetEvidence(ctx context.Context, actor domain.Actor, id int64) (*domain.Evidence, error)
	CreateEvidence(ctx context.Context, actor domain.Actor, in domain.EvidenceInput) (*domain.Evidence, error)
	UpdateEvidence(ctx context.Context, actor domain.Actor, id int64, in domain.EvidenceInput) (*domain.Evidence, error)
	DeleteEvidence(ctx context.Context, actor domain.Actor, id int64) error
	UploadEvidence(ctx context.Context, actor domain.Actor, id int64, filename, mimeType string, content io.Reader) (*domain.FileUpload, error)
	DownloadEvidence(ctx context.Context, actor domain.Actor, id int64) (*domain.Download, error)
	VerifyIntegrity(ctx context.Context, actor domain.Actor, id int64) (*domain.IntegrityReport, error)

	ListCustody(ctx context.Context, actor domain.Actor, filter domain.CustodyFilter) ([]domain.CustodyRecord, error)
	GetCustody(ctx context.Context, actor domain.Actor, id int64) (*domain.CustodyRecord, error)
	CustodyForEvidence(ctx context.Context, actor domain.Actor, evidenceID int64) ([]domain.CustodyRecord, error)
	CreateCustody(ctx context.Context, actor domain.Actor, in domain.CustodyInput) (*domain.CustodyRecord, error)
	TransferCustody(ctx context.Context, actor domain.Actor, in domain.TransferInput) (*domain.CustodyRecord, error)
	DeleteCustody(ctx context.Context, actor domain.Actor, id int64) error

	ListReports(ctx context.Context, actor domain.Actor, opts domain.ListOptions, caseID int64) ([]domain.Report, error)
	GetReport(ctx context.Context, actor domain.Actor, id int64) (*domain.Report, error)
	CreateReport(ctx context.Context, actor domain.Actor, in domain.ReportInput) (*domain.Report, error)
	GenerateReport(ctx context.Context, actor domain.Actor, caseID int64, opts domain.GenerateOptions) (*domain.GeneratedReport, error)
	DownloadReport(ctx context.Context, actor domain.Actor, id int64) (*domain.Download, error)
	DeleteReport(ctx context.Context, actor domain.Actor, id int64) error

	ListAudit(ctx context.Context, actor domain.Actor, filter domain.AuditFilter) ([]domain.AuditLog, error)
	RecentAudit(ctx context.Context, actor domain.Actor, limit int) ([]domain.AuditLog, error)
	AuditForUser(ctx context.Context, actor domain.Actor, userID int64, opts domain.ListOptions) ([]domain.AuditLog, error)
	AuditForEntity(ctx context.Context, actor domain.Actor, entityType string, entityID int64) ([]domain.AuditLog, error)
}
