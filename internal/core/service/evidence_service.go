package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/defm/console/internal/core/domain"
)

// maxUploadSize bounds a single evidence file held by the development backend.
const maxUploadSize = 100 << 20

// ── Evidence ──────────────────────────────────────────────────────────────────

func (s *BackendService) ListEvidence(ctx context.Context, _ domain.Actor, filter domain.EvidenceFilter) ([]domain.Evidence, error) {
	return s.repo.ListEvidence(ctx, filter)
}

func (s *BackendService) GetEvidence(ctx context.Context, _ domain.Actor, id int64) (*domain.Evidence, error) {
	return s.repo.FindEvidence(ctx, id)
}

// CreateEvidence records the item and opens its chain of custody with a
// "collected" entry held by the collector.
func (s *BackendService) CreateEvidence(ctx context.Context, actor domain.Actor, in domain.EvidenceInput) (*domain.Evidence, error) {
	e, err := s.repo.CreateEvidence(ctx, in, actor.User.ID)
	if err != nil {
		return nil, err
	}
	if _, err := s.repo.CreateCustody(ctx, domain.CustodyInput{
		EvidenceID: e.ID,
		Action:     "collected",
		Location:   in.CollectionLocation,
		Purpose:    "Initial collection",
	}, actor.User.ID); err != nil {
		s.logger.Error().Err(err).Str("evidence_number", e.EvidenceNumber).Msg("initial custody record failed")
	}
	s.audit(ctx, actor, "evidence_created", "evidence", e.ID, "Created evidence "+e.EvidenceNumber)
	return e, nil
}

func (s *BackendService) UpdateEvidence(ctx context.Context, actor domain.Actor, id int64, in domain.EvidenceInput) (*domain.Evidence, error) {
	e, err := s.repo.UpdateEvidence(ctx, id, in)
	if err != nil {
		return nil, err
	}
	s.audit(ctx, actor, "evidence_updated", "evidence", id, "Updated evidence "+e.EvidenceNumber)
	return e, nil
}

func (s *BackendService) DeleteEvidence(ctx context.Context, actor domain.Actor, id int64) error {
	if err := requireRole(actor, domain.RoleAdmin, domain.RoleManager); err != nil {
		return err
	}
	e, err := s.repo.FindEvidence(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.DeleteEvidence(ctx, id); err != nil {
		return err
	}
	s.audit(ctx, actor, "evidence_deleted", "evidence", id, "Deleted evidence "+e.EvidenceNumber)
	return nil
}

func (s *BackendService) UploadEvidence(ctx context.Context, actor domain.Actor, id int64, filename, mimeType string, content io.Reader) (*domain.FileUpload, error) {
	if filename == "" {
		return nil, fmt.Errorf("upload: %w", domain.ErrFileNotFound)
	}
	data, err := io.ReadAll(io.LimitReader(content, maxUploadSize+1))
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	if len(data) > maxUploadSize {
		return nil, fmt.Errorf("upload of %s exceeds %d bytes", filename, maxUploadSize)
	}
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}
	up, err := s.repo.AttachFile(ctx, id, filename, mimeType, data)
	if err != nil {
		return nil, err
	}
	s.audit(ctx, actor, "file_uploaded", "evidence", id, "Uploaded file: "+filename)
	return up, nil
}

func (s *BackendService) DownloadEvidence(ctx context.Context, _ domain.Actor, id int64) (*domain.Download, error) {
	if _, err := s.repo.FindEvidence(ctx, id); err != nil {
		return nil, err
	}
	return s.repo.ReadFile(ctx, id)
}

// VerifyIntegrity rehashes the stored file and compares it with the hash
// recorded at upload.
func (s *BackendService) VerifyIntegrity(ctx context.Context, actor domain.Actor, id int64) (*domain.IntegrityReport, error) {
	e, err := s.repo.FindEvidence(ctx, id)
	if err != nil {
		return nil, err
	}
	if e.FileName == "" || e.FileHash == "" {
		return nil, domain.ErrNoIntegrityData
	}
	file, err := s.repo.ReadFile(ctx, id)
	if err != nil {
		return nil, err
	}
	sum := sha256.Sum256(file.Content)
	current := hex.EncodeToString(sum[:])
	verified := current == e.FileHash

	result := "PASSED"
	if !verified {
		result = "FAILED"
		s.logger.Warn().Str("evidence_number", e.EvidenceNumber).Msg("integrity check failed")
	}
	s.audit(ctx, actor, "integrity_check", "evidence", id, fmt.Sprintf("Integrity check for %s: %s", e.EvidenceNumber, result))

	return &domain.IntegrityReport{
		EvidenceID:        id,
		EvidenceNumber:    e.EvidenceNumber,
		IntegrityVerified: verified,
		OriginalHash:      e.FileHash,
		CurrentHash:       current,
		CheckedAt:         s.now().UTC().Format("2006-01-02T15:04:05.000000"),
	}, nil
}

// ── Chain of custody ──────────────────────────────────────────────────────────

func (s *BackendService) ListCustody(ctx context.Context, _ domain.Actor, filter domain.CustodyFilter) ([]domain.CustodyRecord, error) {
	return s.repo.ListCustody(ctx, filter)
}

func (s *BackendService) GetCustody(ctx context.Context, _ domain.Actor, id int64) (*domain.CustodyRecord, error) {
	return s.repo.FindCustody(ctx, id)
}

func (s *BackendService) CustodyForEvidence(ctx context.Context, _ domain.Actor, evidenceID int64) ([]domain.CustodyRecord, error) {
	if _, err := s.repo.FindEvidence(ctx, evidenceID); err != nil {
		return nil, err
	}
	return s.repo.ListCustody(ctx, domain.CustodyFilter{EvidenceID: evidenceID, Limit: 1000})
}

func (s *BackendService) CreateCustody(ctx context.Context, actor domain.Actor, in domain.CustodyInput) (*domain.CustodyRecord, error) {
	rec, err := s.repo.CreateCustody(ctx, in, actor.User.ID)
	if err != nil {
		return nil, err
	}
	s.audit(ctx, actor, "custody_record_created", "chain_of_custody", rec.ID, "Created custody record: "+in.Action)
	return rec, nil
}

func (s *BackendService) TransferCustody(ctx context.Context, actor domain.Actor, in domain.TransferInput) (*domain.CustodyRecord, error) {
	e, err := s.repo.FindEvidence(ctx, in.EvidenceID)
	if err != nil {
		return nil, err
	}
	target, err := s.repo.FindUserByID(ctx, in.TransferredTo)
	if errors.Is(err, domain.ErrUserNotFound) {
		return nil, domain.ErrTargetNotFound
	}
	if err != nil {
		return nil, err
	}
	if in.TransferredTo == actor.User.ID {
		return nil, domain.ErrSelfTransfer
	}

	from := actor.User.ID
	to := in.TransferredTo
	rec, err := s.repo.CreateCustody(ctx, domain.CustodyInput{
		EvidenceID:      in.EvidenceID,
		Action:          "transferred",
		Location:        in.Location,
		Purpose:         in.Purpose,
		Notes:           in.Notes,
		TransferredFrom: &from,
		TransferredTo:   &to,
	}, actor.User.ID)
	if err != nil {
		return nil, err
	}
	s.audit(ctx, actor, "evidence_transferred", "chain_of_custody", rec.ID,
		fmt.Sprintf("Transferred evidence %s from %s to %s", e.EvidenceNumber, actor.User.FullName, target.FullName))
	return rec, nil
}

func (s *BackendService) DeleteCustody(ctx context.Context, actor domain.Actor, id int64) error {
	if err := requireRole(actor, domain.RoleAdmin, domain.RoleManager); err != nil {
		return err
	}
	if err := s.repo.DeleteCustody(ctx, id); err != nil {
		return err
	}
	s.audit(ctx, actor, "custody_record_deleted", "chain_of_custody", id, fmt.Sprintf("Deleted custody record #%d", id))
	return nil
}

// ── Reports ───────────────────────────────────────────────────────────────────

func (s *BackendService) ListReports(ctx context.Context, _ domain.Actor, opts domain.ListOptions, caseID int64) ([]domain.Report, error) {
	return s.repo.ListReports(ctx, opts, caseID)
}

func (s *BackendService) GetReport(ctx context.Context, _ domain.Actor, id int64) (*domain.Report, error) {
	return s.repo.FindReport(ctx, id)
}

func (s *BackendService) CreateReport(ctx context.Context, actor domain.Actor, in domain.ReportInput) (*domain.Report, error) {
	r, err := s.repo.CreateReport(ctx, in, actor.User.ID, nil)
	if err != nil {
		return nil, err
	}
	s.audit(ctx, actor, "report_created", "report", r.ID, "Created report: "+r.Title)
	return r, nil
}

// GenerateReport renders a plain-text case report. The requested format is
// echoed back; the development backend always renders text.
func (s *BackendService) GenerateReport(ctx context.Context, actor domain.Actor, caseID int64, opts domain.GenerateOptions) (*domain.GeneratedReport, error) {
	c, err := s.repo.FindCase(ctx, caseID)
	if err != nil {
		return nil, err
	}
	if opts.ReportType == "" {
		opts.ReportType = "summary"
	}
	if opts.Format == "" {
		opts.Format = "pdf"
	}

	var evidence []domain.Evidence
	if opts.IncludeEvidence {
		if evidence, err = s.repo.ListEvidence(ctx, domain.EvidenceFilter{CaseID: caseID, Limit: 1000}); err != nil {
			return nil, err
		}
	}
	custody := make(map[int64][]domain.CustodyRecord)
	if opts.IncludeCustody {
		for _, e := range evidence {
			recs, err := s.repo.ListCustody(ctx, domain.CustodyFilter{EvidenceID: e.ID, Limit: 1000})
			if err != nil {
				return nil, err
			}
			custody[e.ID] = recs
		}
	}

	body := renderCaseReport(c, opts, evidence, custody, actor.User.FullName)
	r, err := s.repo.CreateReport(ctx, domain.ReportInput{
		CaseID:     caseID,
		Title:      fmt.Sprintf("%s Report - %s", titleCase(opts.ReportType), c.CaseNumber),
		Content:    fmt.Sprintf("Generated %s report for case %s", opts.ReportType, c.CaseNumber),
		ReportType: opts.ReportType,
	}, actor.User.ID, []byte(body))
	if err != nil {
		return nil, err
	}
	s.audit(ctx, actor, "report_generated", "report", r.ID,
		fmt.Sprintf("Generated %s %s report for case %s", strings.ToUpper(opts.Format), opts.ReportType, c.CaseNumber))

	return &domain.GeneratedReport{
		ReportID:    r.ID,
		CaseID:      caseID,
		CaseNumber:  c.CaseNumber,
		ReportType:  opts.ReportType,
		Format:      opts.Format,
		FilePath:    r.FilePath,
		GeneratedAt: r.GeneratedAt.Format("2006-01-02T15:04:05.000000"),
		GeneratedBy: actor.User.FullName,
	}, nil
}

func (s *BackendService) DownloadReport(ctx context.Context, actor domain.Actor, id int64) (*domain.Download, error) {
	r, err := s.repo.FindReport(ctx, id)
	if err != nil {
		return nil, err
	}
	file, err := s.repo.ReadReportFile(ctx, id)
	if err != nil {
		return nil, err
	}
	s.audit(ctx, actor, "report_downloaded", "report", id, "Downloaded report: "+r.Title)
	return file, nil
}

func (s *BackendService) DeleteReport(ctx context.Context, actor domain.Actor, id int64) error {
	if err := requireRole(actor, domain.RoleAdmin, domain.RoleManager); err != nil {
		return err
	}
	if err := s.repo.DeleteReport(ctx, id); err != nil {
		return err
	}
	s.audit(ctx, actor, "report_deleted", "report", id, fmt.Sprintf("Deleted report #%d", id))
	return nil
}

func renderCaseReport(c *domain.Case, opts domain.GenerateOptions, evidence []domain.Evidence, custody map[int64][]domain.CustodyRecord, author string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "DIGITAL EVIDENCE CASE REPORT\n")
	fmt.Fprintf(&b, "%s\n\n", strings.Repeat("=", 50))
	fmt.Fprintf(&b, "Case Number: %s\n", c.CaseNumber)
	fmt.Fprintf(&b, "Title: %s\n", c.Title)
	fmt.Fprintf(&b, "Status: %s\n", c.Status)
	fmt.Fprintf(&b, "Priority: %s\n", c.Priority)
	fmt.Fprintf(&b, "Report Type: %s\n", opts.ReportType)
	fmt.Fprintf(&b, "Generated By: %s\n", author)
	if c.Description != "" {
		fmt.Fprintf(&b, "\nDescription:\n%s\n", c.Description)
	}

	if opts.IncludeEvidence {
		fmt.Fprintf(&b, "\nEVIDENCE (%d items)\n%s\n", len(evidence), strings.Repeat("-", 50))
		for _, e := range evidence {
			fmt.Fprintf(&b, "%s  %s  [%s/%s]\n", e.EvidenceNumber, e.Title, e.EvidenceType, e.Status)
			if e.FileHash != "" {
				fmt.Fprintf(&b, "    file: %s  sha256: %s\n", e.FileName, e.FileHash)
			}
			if opts.IncludeCustody {
				for _, rec := range custody[e.ID] {
					fmt.Fprintf(&b, "    %s  %s  handler #%d  %s\n",
						rec.Timestamp.Format("2006-01-02 15:04"), rec.Action, rec.HandlerID, rec.Location)
				}
			}
		}
	}
	return b.String()
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
