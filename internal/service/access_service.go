package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/is0060hf/qa-web-system-sub002/internal/domain"
	"github.com/is0060hf/qa-web-system-sub002/internal/repository"
	apperrors "github.com/is0060hf/qa-web-system-sub002/pkg/util/errorutil"
)

// AccessResult is the outcome of a project access check.
type AccessResult struct {
	Level      domain.AccessLevel
	Project    *domain.Project
	Membership *domain.ProjectMember
}

// Allowed reports whether any access was granted.
func (r *AccessResult) Allowed() bool {
	return r != nil && r.Level != domain.AccessNone
}

// AccessService resolves what a user may do on a project. It only reads.
type AccessService struct {
	store  repository.Store
	logger *zap.Logger
}

// NewAccessService constructs the service.
func NewAccessService(store repository.Store, logger *zap.Logger) *AccessService {
	return &AccessService{store: store, logger: logger}
}

// CanAccess allows global admins, the project creator and any member.
// A missing project is NotFound regardless of caller; a non-member is Forbidden.
func (s *AccessService) CanAccess(ctx context.Context, projectID string, identity *domain.Identity) (*AccessResult, error) {
	if identity == nil {
		return nil, apperrors.NewUnauthenticated("authentication required")
	}
	project, err := s.store.Projects().GetWithMembers(ctx, projectID)
	if err != nil {
		return nil, apperrors.StorageOrNotFound(err, "project", map[string]any{"project_id": projectID})
	}

	result := &AccessResult{
		Level:      ResolveAccessLevel(project, identity),
		Project:    project,
		Membership: project.Member(identity.ID),
	}
	if !result.Allowed() {
		s.logger.Debug("project access denied",
			zap.String("project_id", projectID),
			zap.String("user_id", identity.ID))
		return nil, apperrors.NewForbidden("not a member of this project")
	}
	return result, nil
}

// CanManage additionally requires admin, creator or MANAGER membership.
func (s *AccessService) CanManage(ctx context.Context, projectID string, identity *domain.Identity) (*AccessResult, error) {
	result, err := s.CanAccess(ctx, projectID, identity)
	if err != nil {
		return nil, err
	}
	switch result.Level {
	case domain.AccessAdmin, domain.AccessManager:
		return result, nil
	case domain.AccessMember, domain.AccessNone:
		return nil, apperrors.NewForbidden("project manager role required")
	default:
		return nil, apperrors.NewForbidden("unknown access level")
	}
}

// ResolveAccessLevel computes the caller's level on an already loaded project.
// The project creator counts as a manager without a membership row.
func ResolveAccessLevel(project *domain.Project, identity *domain.Identity) domain.AccessLevel {
	if project == nil || identity == nil {
		return domain.AccessNone
	}
	switch identity.Role {
	case domain.GlobalRoleAdmin:
		return domain.AccessAdmin
	case domain.GlobalRoleUser:
	default:
		return domain.AccessNone
	}

	if project.CreatorID == identity.ID {
		return domain.AccessManager
	}
	member := project.Member(identity.ID)
	if member == nil {
		return domain.AccessNone
	}
	switch member.Role {
	case domain.ProjectRoleManager:
		return domain.AccessManager
	case domain.ProjectRoleMember:
		return domain.AccessMember
	default:
		return domain.AccessNone
	}
}
