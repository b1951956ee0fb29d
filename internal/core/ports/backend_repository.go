package ports

import (
	"context"
	"time"

	"github.com/defm/console/internal/core/domain"
)

// StoredUser pairs a user with its password hash. The hash never leaves the
// development backend.
type StoredUser struct {
	domain.User
	PasswordHash string
}

// UserRepository persists backend users.
type UserRepository interface {
	CreateUser(ctx context.Context, u *StoredUser) (*domain.User, error)
	FindUserByUsername(ctx context.Context, username string) (*StoredUser, error)
	FindUserByID(ctx context.Context, id int64) (*domain.User, error)
	ListUsers(ctx context.Context, opts domain.ListOptions) ([]domain.User, error)
	UpdateUser(ctx context.Context, id int64, upd domain.UserUpdate) (*domain.User, error)
	TouchLastLogin(ctx context.Context, id int64, at time.Time) error
	DeleteUser(ctx context.Context, id int64) error
}

// CaseRepository persists cases.
type CaseRepository interface {
	CreateCase(ctx context.Context, in domain.CaseInput, createdBy int64) (*domain.Case, error)
	FindCase(ctx context.Context, id int64) (*domain.Case, error)
	ListCases(ctx context.Context, filter domain.CaseFilter, userID int64) ([]domain.Case, error)
	UpdateCase(ctx context.Context, id int64, in domain.CaseInput) (*domain.Case, error)
	DeleteCase(ctx context.Context, id int64) error
	Dashboard(ctx context.Context, now time.Time) (*domain.DashboardData, error)
}

// EvidenceRepository persists evidence items and their attached files.
type EvidenceRepository interface {
	CreateEvidence(ctx context.Context, in domain.EvidenceInput, collectedBy int64) (*domain.Evidence, error)
	FindEvidence(ctx context.Context, id int64) (*domain.Evidence, error)
	ListEvidence(ctx context.Context, filter domain.EvidenceFilter) ([]domain.Evidence, error)
	UpdateEvidence(ctx context.Context, id int64, in domain.EvidenceInput) (*domain.Evidence, error)
	DeleteEvidence(ctx context.Context, id int64) error
	AttachFile(ctx context.Context, id int64, name, mimeType string, content []byte) (*domain.FileUpload, error)
	ReadFile(ctx context.Context, id int64) (*domain.Download, error)
}

// CustodyRepository persists chain-of-custody records.
type CustodyRepository interface {
	CreateCustody(ctx context.Context, in domain.CustodyInput, handlerID int64) (*domain.CustodyRecord, error)
	FindCustody(ctx context.Context, id int64) (*domain.CustodyRecord, error)
	ListCustody(ctx context.Context, filter domain.CustodyFilter) ([]domain.CustodyRecord, error)
	DeleteCustody(ctx context.Context, id int64) error
}

// ReportRepository persists reports and their rendered files.
type ReportRepository interface {
	CreateReport(ctx context.Context, in domain.ReportInput, generatedBy int64, file []byte) (*domain.Report, error)
	FindReport(ctx context.Context, id int64) (*domain.Report, error)
	ListReports(ctx context.Context, opts domain.ListOptions, caseID int64) ([]domain.Report, error)
	ReadReportFile(ctx context.Context, id int64) (*domain.Download, error)
	DeleteReport(ctx context.Context, id int64) error
}

// AuditRepository appends and queries the audit trail.
type AuditRepository interface {
	AppendAudit(ctx context.Context, entry domain.AuditLog) error
	ListAudit(ctx context.Context, filter domain.AuditFilter) ([]domain.AuditLog, error)
	ListAuditForEntity(ctx context.Context, entityType string, entityID int64) ([]domain.AuditLog, error)
}

// BackendRepository is the full persistence surface of the development backend.
type BackendRepository interface {
	UserRepository
	CaseRepository
	EvidenceRepository
	CustodyRepository
	ReportRepository
	AuditRepository
}
