package domain

import "time"

// Report is a document produced for a case.
type Report struct {
	ID          int64     `json:"id"                    yaml:"id"`
	CaseID      int64     `json:"case_id"               yaml:"case_id"`
	Title       string    `json:"title"                 yaml:"title"`
	Content     string    `json:"content,omitempty"     yaml:"content,omitempty"`
	ReportType  string    `json:"report_type,omitempty" yaml:"report_type,omitempty"`
	GeneratedBy int64     `json:"generated_by"          yaml:"generated_by"`
	GeneratedAt time.Time `json:"generated_at"          yaml:"generated_at"`
	FilePath    string    `json:"file_path,omitempty"   yaml:"file_path,omitempty"`
}

// ReportInput is the payload of POST /reports.
type ReportInput struct {
	CaseID     int64  `json:"case_id"               validate:"required"`
	Title      string `json:"title"                 validate:"required"`
	Content    string `json:"content,omitempty"`
	ReportType string `json:"report_type,omitempty"`
}

// GenerateOptions carries the query parameters of POST /reports/generate/{caseId}.
type GenerateOptions struct {
	ReportType      string
	IncludeEvidence bool
	IncludeCustody  bool
	Format          string
}

// DefaultGenerateOptions mirrors the backend defaults.
func DefaultGenerateOptions() GenerateOptions {
	return GenerateOptions{ReportType: "summary", IncludeEvidence: true, IncludeCustody: true, Format: "pdf"}
}

// GeneratedReport is the response of POST /reports/generate/{caseId}.
type GeneratedReport struct {
	ReportID    int64  `json:"report_id"    yaml:"report_id"`
	CaseID      int64  `json:"case_id"      yaml:"case_id"`
	CaseNumber  string `json:"case_number"  yaml:"case_number"`
	ReportType  string `json:"report_type"  yaml:"report_type"`
	Format      string `json:"format"       yaml:"format"`
	FilePath    string `json:"file_path"    yaml:"file_path"`
	GeneratedAt string `json:"generated_at" yaml:"generated_at"`
	GeneratedBy string `json:"generated_by" yaml:"generated_by"`
}
