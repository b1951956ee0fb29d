package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/defm/console/internal/api/metrics"
	"github.com/defm/console/internal/core/domain"
	"github.com/defm/console/internal/core/ports"
)

// BackendService implements ports.BackendService over a BackendRepository.
type BackendService struct {
	repo   ports.BackendRepository
	logger zerolog.Logger
	now    func() time.Time
}

var _ ports.BackendService = (*BackendService)(nil)

func NewBackendService(repo ports.BackendRepository, logger zerolog.Logger) *BackendService {
	return &BackendService{repo: repo, logger: logger, now: time.Now}
}

// audit appends an entry for a completed mutation. A failing audit write is
// logged and never fails the operation it describes.
func (s *BackendService) audit(ctx context.Context, actor domain.Actor, action, entityType string, entityID int64, details string) {
	entry := domain.AuditLog{
		Action:     action,
		EntityType: entityType,
		Timestamp:  s.now().UTC(),
		IPAddress:  actor.IPAddress,
		UserAgent:  actor.UserAgent,
		Details:    details,
	}
	if actor.User != nil {
		entry.UserID = actor.User.ID
	}
	if entityID != 0 {
		id := entityID
		entry.EntityID = &id
	}
	if err := s.repo.AppendAudit(ctx, entry); err != nil {
		s.logger.Error().Err(err).Str("action", action).Msg("audit append failed")
		return
	}
	metrics.BackendAuditEntriesTotal.WithLabelValues(entityType).Inc()
}

func requireRole(actor domain.Actor, roles ...string) error {
	if !actor.HasRole(roles...) {
		return domain.ErrPermissionDenied
	}
	return nil
}

func requireSelfOrAdmin(actor domain.Actor, userID int64) error {
	if actor.User != nil && actor.User.ID == userID {
		return nil
	}
	return requireRole(actor, domain.RoleAdmin)
}

// ── Users ─────────────────────────────────────────────────────────────────────

func (s *BackendService) ListUsers(ctx context.Context, actor domain.Actor, opts domain.ListOptions) ([]domain.User, error) {
	if err := requireRole(actor, domain.RoleAdmin); err != nil {
		return nil, err
	}
	return s.repo.ListUsers(ctx, opts)
}

func (s *BackendService) GetUser(ctx context.Context, actor domain.Actor, id int64) (*domain.User, error) {
	if err := requireSelfOrAdmin(actor, id); err != nil {
		return nil, err
	}
	return s.repo.FindUserByID(ctx, id)
}

func (s *BackendService) CreateUser(ctx context.Context, actor domain.Actor, in domain.UserCreate) (*domain.User, error) {
	if err := requireRole(actor, domain.RoleAdmin); err != nil {
		return nil, err
	}
	hash, err := HashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	role := in.Role
	if role == "" {
		role = domain.RoleInvestigator
	}
	active := true
	if in.IsActive != nil {
		active = *in.IsActive
	}
	user, err := s.repo.CreateUser(ctx, &ports.StoredUser{
		User: domain.User{
			Username: in.Username,
			Email:    in.Email,
			FullName: in.FullName,
			Role:     role,
			IsActive: active,
		},
		PasswordHash: hash,
	})
	if err != nil {
		return nil, err
	}
	s.audit(ctx, actor, "user_created", "user", user.ID, fmt.Sprintf("Created user: %s (%s)", user.Username, user.Role))
	return user, nil
}

// UpdateUser lets users edit their own profile; only admins may change roles,
// activation, or other users.
func (s *BackendService) UpdateUser(ctx context.Context, actor domain.Actor, id int64, in domain.UserUpdate) (*domain.User, error) {
	if err := requireSelfOrAdmin(actor, id); err != nil {
		return nil, err
	}
	if (in.Role != nil || in.IsActive != nil) && !actor.HasRole(domain.RoleAdmin) {
		return nil, domain.ErrPermissionDenied
	}
	user, err := s.repo.UpdateUser(ctx, id, in)
	if err != nil {
		return nil, err
	}
	s.audit(ctx, actor, "user_updated", "user", id, "Updated user: "+user.Username)
	return user, nil
}

func (s *BackendService) DeleteUser(ctx context.Context, actor domain.Actor, id int64) error {
	if err := requireRole(actor, domain.RoleAdmin); err != nil {
		return err
	}
	if actor.User.ID == id {
		return fmt.Errorf("delete own account: %w", domain.ErrPermissionDenied)
	}
	if err := s.repo.DeleteUser(ctx, id); err != nil {
		return err
	}
	s.audit(ctx, actor, "user_deleted", "user", id, fmt.Sprintf("Deleted user #%d", id))
	return nil
}

// ── Cases ─────────────────────────────────────────────────────────────────────

func (s *BackendService) Dashboard(ctx context.Context, _ domain.Actor) (*domain.DashboardData, error) {
	return s.repo.Dashboard(ctx, s.now().UTC())
}

func (s *BackendService) ListCases(ctx context.Context, actor domain.Actor, filter domain.CaseFilter) ([]domain.Case, error) {
	return s.repo.ListCases(ctx, filter, actor.User.ID)
}

func (s *BackendService) GetCase(ctx context.Context, _ domain.Actor, id int64) (*domain.Case, error) {
	return s.repo.FindCase(ctx, id)
}

func (s *BackendService) CreateCase(ctx context.Context, actor domain.Actor, in domain.CaseInput) (*domain.Case, error) {
	if in.AssignedTo != nil {
		if _, err := s.repo.FindUserByID(ctx, *in.AssignedTo); err != nil {
			return nil, err
		}
	}
	c, err := s.repo.CreateCase(ctx, in, actor.User.ID)
	if err != nil {
		return nil, err
	}
	s.audit(ctx, actor, "case_created", "case", c.ID, "Created case "+c.CaseNumber)
	s.logger.Info().Str("case_number", c.CaseNumber).Str("username", actor.User.Username).Msg("case created")
	return c, nil
}

func (s *BackendService) UpdateCase(ctx context.Context, actor domain.Actor, id int64, in domain.CaseInput) (*domain.Case, error) {
	c, err := s.repo.UpdateCase(ctx, id, in)
	if err != nil {
		return nil, err
	}
	s.audit(ctx, actor, "case_updated", "case", id, "Updated case "+c.CaseNumber)
	return c, nil
}

func (s *BackendService) DeleteCase(ctx context.Context, actor domain.Actor, id int64) error {
	if err := requireRole(actor, domain.RoleAdmin, domain.RoleManager); err != nil {
		return err
	}
	c, err := s.repo.FindCase(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.DeleteCase(ctx, id); err != nil {
		return err
	}
	s.audit(ctx, actor, "case_deleted", "case", id, "Deleted case "+c.CaseNumber)
	return nil
}

// ── Audit logs ────────────────────────────────────────────────────────────────

func (s *BackendService) ListAudit(ctx context.Context, actor domain.Actor, filter domain.AuditFilter) ([]domain.AuditLog, error) {
	if err := requireRole(actor, domain.RoleAdmin); err != nil {
		return nil, err
	}
	return s.repo.ListAudit(ctx, filter)
}

func (s *BackendService) RecentAudit(ctx context.Context, actor domain.Actor, limit int) ([]domain.AuditLog, error) {
	if err := requireRole(actor, domain.RoleAdmin); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = domain.DefaultRecentLimit
	}
	if limit > 100 {
		limit = 100
	}
	return s.repo.ListAudit(ctx, domain.AuditFilter{Limit: limit})
}

func (s *BackendService) AuditForUser(ctx context.Context, actor domain.Actor, userID int64, opts domain.ListOptions) ([]domain.AuditLog, error) {
	if err := requireSelfOrAdmin(actor, userID); err != nil {
		return nil, err
	}
	return s.repo.ListAudit(ctx, domain.AuditFilter{Skip: opts.Skip, Limit: opts.Limit, UserID: userID})
}

func (s *BackendService) AuditForEntity(ctx context.Context, _ domain.Actor, entityType string, entityID int64) ([]domain.AuditLog, error) {
	return s.repo.ListAuditForEntity(ctx, entityType, entityID)
}
