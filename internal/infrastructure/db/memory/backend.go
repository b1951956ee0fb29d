package memory

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/defm/console/internal/core/domain"
	"github.com/defm/console/internal/core/ports"
)

const defaultLimit = 100

// Backend is an in-memory ports.BackendRepository used by the development
// backend. All records live in maps guarded by one mutex.
type Backend struct {
	mu     sync.RWMutex
	now    func() time.Time
	nextID map[string]int64

	users    map[int64]*ports.StoredUser
	cases    map[int64]*domain.Case
	evidence map[int64]*domain.Evidence
	files    map[int64]*domain.Download
	custody  map[int64]*domain.CustodyRecord
	reports  map[int64]*domain.Report
	rfiles   map[int64]*domain.Download
	audit    []domain.AuditLog
}

var _ ports.BackendRepository = (*Backend)(nil)

func NewBackend() *Backend {
	return &Backend{
		now:      time.Now,
		nextID:   make(map[string]int64),
		users:    make(map[int64]*ports.StoredUser),
		cases:    make(map[int64]*domain.Case),
		evidence: make(map[int64]*domain.Evidence),
		files:    make(map[int64]*domain.Download),
		custody:  make(map[int64]*domain.CustodyRecord),
		reports:  make(map[int64]*domain.Report),
		rfiles:   make(map[int64]*domain.Download),
	}
}

func (b *Backend) id(kind string) int64 {
	b.nextID[kind]++
	return b.nextID[kind]
}

// --- Users ---

func (b *Backend) CreateUser(_ context.Context, u *ports.StoredUser) (*domain.User, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, existing := range b.users {
		if strings.EqualFold(existing.Username, u.Username) || strings.EqualFold(existing.Email, u.Email) {
			return nil, domain.ErrUserExists
		}
	}

	stored := *u
	stored.ID = b.id("user")
	stored.CreatedAt = b.now().UTC()
	if stored.Role == "" {
		stored.Role = domain.RoleInvestigator
	}
	b.users[stored.ID] = &stored
	out := stored.User
	return &out, nil
}

func (b *Backend) FindUserByUsername(_ context.Context, username string) (*ports.StoredUser, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, u := range b.users {
		if u.Username == username {
			clone := *u
			return &clone, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (b *Backend) FindUserByID(_ context.Context, id int64) (*domain.User, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	u, ok := b.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	out := u.User
	return &out, nil
}

func (b *Backend) ListUsers(_ context.Context, opts domain.ListOptions) ([]domain.User, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]domain.User, 0, len(b.users))
	for _, id := range sortedKeys(b.users) {
		out = append(out, b.users[id].User)
	}
	return page(out, opts.Skip, opts.Limit), nil
}

func (b *Backend) UpdateUser(_ context.Context, id int64, upd domain.UserUpdate) (*domain.User, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	u, ok := b.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	if upd.Email != nil {
		u.Email = *upd.Email
	}
	if upd.FullName != nil {
		u.FullName = *upd.FullName
	}
	if upd.Role != nil {
		u.Role = *upd.Role
	}
	if upd.IsActive != nil {
		u.IsActive = *upd.IsActive
	}
	now := b.now().UTC()
	u.UpdatedAt = &now
	out := u.User
	return &out, nil
}

func (b *Backend) TouchLastLogin(_ context.Context, id int64, at time.Time) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	u, ok := b.users[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.LastLogin = &at
	return nil
}

func (b *Backend) DeleteUser(_ context.Context, id int64) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.users[id]; !ok {
		return domain.ErrUserNotFound
	}
	delete(b.users, id)
	return nil
}

// --- Cases ---

func (b *Backend) CreateCase(_ context.Context, in domain.CaseInput, createdBy int64) (*domain.Case, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := b.now().UTC()
	c := &domain.Case{
		ID:            b.id("case"),
		Title:         in.Title,
		Description:   in.Description,
		Status:        in.Status,
		Priority:      in.Priority,
		AssignedTo:    in.AssignedTo,
		IncidentDate:  in.IncidentDate,
		Location:      in.Location,
		ClientName:    in.ClientName,
		ClientContact: in.ClientContact,
		CreatedBy:     createdBy,
		CreatedAt:     now,
	}
	if c.Status == "" {
		c.Status = domain.CaseOpen
	}
	if c.Priority == "" {
		c.Priority = domain.PriorityMedium
	}
	c.CaseNumber = fmt.Sprintf("CASE-%s-%04d", now.Format("2006"), c.ID)
	b.cases[c.ID] = c
	return b.caseView(c), nil
}

func (b *Backend) FindCase(_ context.Context, id int64) (*domain.Case, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	c, ok := b.cases[id]
	if !ok {
		return nil, domain.ErrCaseNotFound
	}
	return b.caseView(c), nil
}

func (b *Backend) ListCases(_ context.Context, filter domain.CaseFilter, userID int64) ([]domain.Case, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]domain.Case, 0, len(b.cases))
	for _, id := range sortedKeys(b.cases) {
		c := b.cases[id]
		if filter.Status != "" && c.Status != filter.Status {
			continue
		}
		if filter.AssignedToMe && (c.AssignedTo == nil || *c.AssignedTo != userID) {
			continue
		}
		out = append(out, *b.caseView(c))
	}
	return page(out, filter.Skip, filter.Limit), nil
}

func (b *Backend) UpdateCase(_ context.Context, id int64, in domain.CaseInput) (*domain.Case, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	c, ok := b.cases[id]
	if !ok {
		return nil, domain.ErrCaseNotFound
	}
	if in.Title != "" {
		c.Title = in.Title
	}
	if in.Description != "" {
		c.Description = in.Description
	}
	if in.Priority != "" {
		c.Priority = in.Priority
	}
	if in.AssignedTo != nil {
		c.AssignedTo = in.AssignedTo
	}
	if in.IncidentDate != nil {
		c.IncidentDate = in.IncidentDate
	}
	if in.Location != "" {
		c.Location = in.Location
	}
	if in.ClientName != "" {
		c.ClientName = in.ClientName
	}
	if in.ClientContact != "" {
		c.ClientContact = in.ClientContact
	}
	now := b.now().UTC()
	if in.Status != "" && in.Status != c.Status {
		c.Status = in.Status
		if in.Status == domain.CaseClosed {
			c.ClosedAt = &now
		}
	}
	c.UpdatedAt = &now
	return b.caseView(c), nil
}

func (b *Backend) DeleteCase(_ context.Context, id int64) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.cases[id]; !ok {
		return domain.ErrCaseNotFound
	}
	delete(b.cases, id)
	for eid, e := range b.evidence {
		if e.CaseID == id {
			delete(b.evidence, eid)
			delete(b.files, eid)
		}
	}
	return nil
}

// Dashboard counts cases and evidence and turns the last week of audit
// entries into the activity feed.
func (b *Backend) Dashboard(_ context.Context, now time.Time) (*domain.DashboardData, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	data := &domain.DashboardData{RecentActivities: []domain.RecentActivity{}}
	data.Stats.TotalCases = len(b.cases)
	data.Stats.ActiveEvidence = len(b.evidence)
	for _, c := range b.cases {
		if c.Status == domain.CaseInProgress {
			data.Stats.PendingActions++
		}
	}
	for _, e := range b.evidence {
		if e.FileName != "" && e.FileHash == "" {
			data.Stats.IntegrityAlerts++
		}
	}

	weekAgo := now.Add(-7 * 24 * time.Hour)
	for i := len(b.audit) - 1; i >= 0 && len(data.RecentActivities) < 10; i-- {
		entry := b.audit[i]
		if entry.Timestamp.Before(weekAgo) {
			break
		}
		act := domain.RecentActivity{
			ID:           entry.ID,
			Action:       titleize(entry.Action),
			CaseNumber:   "System",
			Officer:      "System",
			TimeAgo:      timeAgo(now.Sub(entry.Timestamp)),
			ActivityType: "system",
		}
		if entry.EntityType != "" {
			act.ActivityType = entry.EntityType
		}
		if entry.EntityType == "case" && entry.EntityID != nil {
			act.CaseNumber = fmt.Sprintf("Case #%d", *entry.EntityID)
		}
		if u, ok := b.users[entry.UserID]; ok {
			act.Officer = u.FullName
		}
		data.RecentActivities = append(data.RecentActivities, act)
	}
	return data, nil
}

func (b *Backend) caseView(c *domain.Case) *domain.Case {
	out := *c
	if u, ok := b.users[c.CreatedBy]; ok {
		creator := u.User
		out.CreatedByUser = &creator
	}
	if c.AssignedTo != nil {
		if u, ok := b.users[*c.AssignedTo]; ok {
			assignee := u.User
			out.AssignedToUser = &assignee
		}
	}
	return &out
}

// --- Evidence ---

func (b *Backend) CreateEvidence(_ context.Context, in domain.EvidenceInput, collectedBy int64) (*domain.Evidence, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.cases[in.CaseID]; !ok {
		return nil, domain.ErrCaseNotFound
	}
	now := b.now().UTC()
	e := &domain.Evidence{
		ID:                 b.id("evidence"),
		EvidenceNumber:     "EVI" + now.Format("20060102150405"),
		CaseID:             in.CaseID,
		Title:              in.Title,
		Description:        in.Description,
		EvidenceType:       in.EvidenceType,
		Status:             in.Status,
		CollectionLocation: in.CollectionLocation,
		CollectionMethod:   in.CollectionMethod,
		CollectedBy:        collectedBy,
		CollectedAt:        now,
		CreatedAt:          now,
	}
	if e.Status == "" {
		e.Status = domain.EvidenceCollected
	}
	e.EvidenceNumber = fmt.Sprintf("%s-%d", e.EvidenceNumber, e.ID)
	b.evidence[e.ID] = e
	out := *e
	return &out, nil
}

func (b *Backend) FindEvidence(_ context.Context, id int64) (*domain.Evidence, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	e, ok := b.evidence[id]
	if !ok {
		return nil, domain.ErrEvidenceNotFound
	}
	out := *e
	return &out, nil
}

func (b *Backend) ListEvidence(_ context.Context, filter domain.EvidenceFilter) ([]domain.Evidence, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]domain.Evidence, 0, len(b.evidence))
	for _, id := range sortedKeys(b.evidence) {
		e := b.evidence[id]
		if filter.CaseID != 0 && e.CaseID != filter.CaseID {
			continue
		}
		if filter.EvidenceType != "" && e.EvidenceType != filter.EvidenceType {
			continue
		}
		if filter.Status != "" && e.Status != filter.Status {
			continue
		}
		out = append(out, *e)
	}
	return page(out, filter.Skip, filter.Limit), nil
}

func (b *Backend) UpdateEvidence(_ context.Context, id int64, in domain.EvidenceInput) (*domain.Evidence, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	e, ok := b.evidence[id]
	if !ok {
		return nil, domain.ErrEvidenceNotFound
	}
	if in.Title != "" {
		e.Title = in.Title
	}
	if in.Description != "" {
		e.Description = in.Description
	}
	if in.EvidenceType != "" {
		e.EvidenceType = in.EvidenceType
	}
	if in.Status != "" {
		e.Status = in.Status
	}
	if in.CollectionLocation != "" {
		e.CollectionLocation = in.CollectionLocation
	}
	if in.CollectionMethod != "" {
		e.CollectionMethod = in.CollectionMethod
	}
	now := b.now().UTC()
	e.UpdatedAt = &now
	out := *e
	return &out, nil
}

func (b *Backend) DeleteEvidence(_ context.Context, id int64) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.evidence[id]; !ok {
		return domain.ErrEvidenceNotFound
	}
	delete(b.evidence, id)
	delete(b.files, id)
	return nil
}

// AttachFile stores content for an evidence item and records its sha256.
func (b *Backend) AttachFile(_ context.Context, id int64, name, mimeType string, content []byte) (*domain.FileUpload, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	e, ok := b.evidence[id]
	if !ok {
		return nil, domain.ErrEvidenceNotFound
	}
	sum := sha256.Sum256(content)
	e.FileName = name
	e.FileSize = int64(len(content))
	e.FileHash = hex.EncodeToString(sum[:])
	e.MimeType = mimeType
	b.files[id] = &domain.Download{Filename: name, ContentType: mimeType, Content: append([]byte(nil), content...)}
	return &domain.FileUpload{Filename: name, ContentType: mimeType, FileSize: e.FileSize, FileHash: e.FileHash}, nil
}

func (b *Backend) ReadFile(_ context.Context, id int64) (*domain.Download, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	f, ok := b.files[id]
	if !ok {
		return nil, domain.ErrFileNotFound
	}
	out := *f
	out.Content = append([]byte(nil), f.Content...)
	return &out, nil
}

// --- Chain of custody ---

func (b *Backend) CreateCustody(_ context.Context, in domain.CustodyInput, handlerID int64) (*domain.CustodyRecord, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.evidence[in.EvidenceID]; !ok {
		return nil, domain.ErrEvidenceNotFound
	}
	rec := &domain.CustodyRecord{
		ID:              b.id("custody"),
		EvidenceID:      in.EvidenceID,
		HandlerID:       handlerID,
		Action:          in.Action,
		Location:        in.Location,
		Purpose:         in.Purpose,
		Notes:           in.Notes,
		TransferredFrom: in.TransferredFrom,
		TransferredTo:   in.TransferredTo,
		Timestamp:       b.now().UTC(),
	}
	b.custody[rec.ID] = rec
	return b.custodyView(rec), nil
}

func (b *Backend) FindCustody(_ context.Context, id int64) (*domain.CustodyRecord, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	rec, ok := b.custody[id]
	if !ok {
		return nil, domain.ErrCustodyNotFound
	}
	return b.custodyView(rec), nil
}

// ListCustody returns records oldest first, which is the order a chain reads in.
func (b *Backend) ListCustody(_ context.Context, filter domain.CustodyFilter) ([]domain.CustodyRecord, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]domain.CustodyRecord, 0, len(b.custody))
	for _, id := range sortedKeys(b.custody) {
		rec := b.custody[id]
		if filter.EvidenceID != 0 && rec.EvidenceID != filter.EvidenceID {
			continue
		}
		out = append(out, *b.custodyView(rec))
	}
	return page(out, filter.Skip, filter.Limit), nil
}

func (b *Backend) DeleteCustody(_ context.Context, id int64) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.custody[id]; !ok {
		return domain.ErrCustodyNotFound
	}
	delete(b.custody, id)
	return nil
}

func (b *Backend) custodyView(rec *domain.CustodyRecord) *domain.CustodyRecord {
	out := *rec
	if u, ok := b.users[rec.HandlerID]; ok {
		handler := u.User
		out.HandlerUser = &handler
	}
	return &out
}

// --- Reports ---

func (b *Backend) CreateReport(_ context.Context, in domain.ReportInput, generatedBy int64, file []byte) (*domain.Report, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	c, ok := b.cases[in.CaseID]
	if !ok {
		return nil, domain.ErrCaseNotFound
	}
	now := b.now().UTC()
	r := &domain.Report{
		ID:          b.id("report"),
		CaseID:      in.CaseID,
		Title:       in.Title,
		Content:     in.Content,
		ReportType:  in.ReportType,
		GeneratedBy: generatedBy,
		GeneratedAt: now,
	}
	if file != nil {
		name := fmt.Sprintf("report_%s_%s.txt", c.CaseNumber, now.Format("20060102_150405"))
		r.FilePath = "reports/" + name
		b.rfiles[r.ID] = &domain.Download{Filename: name, ContentType: "text/plain", Content: append([]byte(nil), file...)}
	}
	b.reports[r.ID] = r
	out := *r
	return &out, nil
}

func (b *Backend) FindReport(_ context.Context, id int64) (*domain.Report, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	r, ok := b.reports[id]
	if !ok {
		return nil, domain.ErrReportNotFound
	}
	out := *r
	return &out, nil
}

func (b *Backend) ListReports(_ context.Context, opts domain.ListOptions, caseID int64) ([]domain.Report, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]domain.Report, 0, len(b.reports))
	for _, id := range sortedKeys(b.reports) {
		r := b.reports[id]
		if caseID != 0 && r.CaseID != caseID {
			continue
		}
		out = append(out, *r)
	}
	return page(out, opts.Skip, opts.Limit), nil
}

func (b *Backend) ReadReportFile(_ context.Context, id int64) (*domain.Download, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	f, ok := b.rfiles[id]
	if !ok {
		return nil, fmt.Errorf("report file: %w", domain.ErrReportNotFound)
	}
	out := *f
	out.Content = append([]byte(nil), f.Content...)
	return &out, nil
}

func (b *Backend) DeleteReport(_ context.Context, id int64) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.reports[id]; !ok {
		return domain.ErrReportNotFound
	}
	delete(b.reports, id)
	delete(b.rfiles, id)
	return nil
}

// --- Audit ---

func (b *Backend) AppendAudit(_ context.Context, entry domain.AuditLog) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	entry.ID = b.id("audit")
	if entry.Timestamp.IsZero() {
		entry.Timestamp = b.now().UTC()
	}
	b.audit = append(b.audit, entry)
	return nil
}

// ListAudit returns matching entries newest first.
func (b *Backend) ListAudit(_ context.Context, filter domain.AuditFilter) ([]domain.AuditLog, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]domain.AuditLog, 0)
	action := strings.ToLower(filter.Action)
	for i := len(b.audit) - 1; i >= 0; i-- {
		e := b.audit[i]
		if filter.UserID != 0 && e.UserID != filter.UserID {
			continue
		}
		if action != "" && !strings.Contains(strings.ToLower(e.Action), action) {
			continue
		}
		if filter.EntityType != "" && e.EntityType != filter.EntityType {
			continue
		}
		if !filter.StartDate.IsZero() && e.Timestamp.Before(filter.StartDate) {
			continue
		}
		if !filter.EndDate.IsZero() && e.Timestamp.After(filter.EndDate) {
			continue
		}
		out = append(out, e)
	}
	return page(out, filter.Skip, filter.Limit), nil
}

func (b *Backend) ListAuditForEntity(_ context.Context, entityType string, entityID int64) ([]domain.AuditLog, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]domain.AuditLog, 0)
	for i := len(b.audit) - 1; i >= 0; i-- {
		e := b.audit[i]
		if e.EntityType == entityType && e.EntityID != nil && *e.EntityID == entityID {
			out = append(out, e)
		}
	}
	return out, nil
}

// --- helpers ---

func sortedKeys[V any](m map[int64]V) []int64 {
	keys := make([]int64, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

func page[T any](items []T, skip, limit int) []T {
	if limit <= 0 {
		limit = defaultLimit
	}
	if skip < 0 {
		skip = 0
	}
	if skip >= len(items) {
		return []T{}
	}
	end := skip + limit
	if end > len(items) {
		end = len(items)
	}
	return items[skip:end]
}

func titleize(action string) string {
	words := strings.Fields(strings.ReplaceAll(action, "_", " "))
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

func timeAgo(d time.Duration) string {
	plural := func(n int, unit string) string {
		if n == 1 {
			return fmt.Sprintf("1 %s ago", unit)
		}
		return fmt.Sprintf("%d %ss ago", n, unit)
	}
	switch {
	case d >= 24*time.Hour:
		return plural(int(d/(24*time.Hour)), "day")
	case d > time.Hour:
		return plural(int(d/time.Hour), "hour")
	default:
		return plural(max(1, int(d/time.Minute)), "minute")
	}
}
