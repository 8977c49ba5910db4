package service

import (
	"context"
	"testing"

	"go.uber.org/zap"

	"github.com/is0060hf/qa-web-system-sub002/internal/domain"
	apperrors "github.com/is0060hf/qa-web-system-sub002/pkg/util/errorutil"
)

func TestAccessService_CanAccess(t *testing.T) {
	f := newFixture(t)
	svc := NewAccessService(f.store, zap.NewNop())

	tests := []struct {
		name      string
		user      domain.User
		wantLevel domain.AccessLevel
		wantCode  string
	}{
		{name: "admin without membership", user: f.admin, wantLevel: domain.AccessAdmin},
		{name: "creator without membership", user: f.owner, wantLevel: domain.AccessManager},
		{name: "manager", user: f.manager, wantLevel: domain.AccessManager},
		{name: "member", user: f.member, wantLevel: domain.AccessMember},
		{name: "outsider", user: f.outsider, wantCode: apperrors.CodeForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := svc.CanAccess(context.Background(), f.project.ID, identityOf(tt.user))
			if tt.wantCode != "" {
				assertCode(t, err, tt.wantCode)
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if result.Level != tt.wantLevel {
				t.Fatalf("expected level %s, got %s", tt.wantLevel, result.Level)
			}
			if result.Project == nil || result.Project.ID != f.project.ID {
				t.Fatalf("expected project %s in result", f.project.ID)
			}
		})
	}
}

func TestAccessService_CanAccessMembership(t *testing.T) {
	f := newFixture(t)
	svc := NewAccessService(f.store, zap.NewNop())

	result, err := svc.CanAccess(context.Background(), f.project.ID, identityOf(f.member))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Membership == nil || result.Membership.Role != domain.ProjectRoleMember {
		t.Fatalf("expected MEMBER membership, got %+v", result.Membership)
	}

	result, err = svc.CanAccess(context.Background(), f.project.ID, identityOf(f.admin))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Membership != nil {
		t.Fatalf("admin should have no membership row, got %+v", result.Membership)
	}
}

func TestAccessService_MissingProject(t *testing.T) {
	f := newFixture(t)
	svc := NewAccessService(f.store, zap.NewNop())

	for _, u := range []domain.User{f.admin, f.owner, f.member, f.outsider} {
		_, err := svc.CanAccess(context.Background(), "missing", identityOf(u))
		assertCode(t, err, apperrors.CodeNotFound)

		_, err = svc.CanManage(context.Background(), "missing", identityOf(u))
		assertCode(t, err, apperrors.CodeNotFound)
	}
}

func TestAccessService_Unauthenticated(t *testing.T) {
	f := newFixture(t)
	svc := NewAccessService(f.store, zap.NewNop())

	_, err := svc.CanAccess(context.Background(), f.project.ID, nil)
	assertCode(t, err, apperrors.CodeUnauthenticated)
}

func TestAccessService_CanManage(t *testing.T) {
	f := newFixture(t)
	svc := NewAccessService(f.store, zap.NewNop())

	for _, u := range []domain.User{f.admin, f.owner, f.manager} {
		if _, err := svc.CanManage(context.Background(), f.project.ID, identityOf(u)); err != nil {
			t.Fatalf("expected %s to manage, got %v", u.ID, err)
		}
	}
	for _, u := range []domain.User{f.member, f.outsider} {
		_, err := svc.CanManage(context.Background(), f.project.ID, identityOf(u))
		assertCode(t, err, apperrors.CodeForbidden)
	}
}

func TestResolveAccessLevel_UnknownRoles(t *testing.T) {
	project := &domain.Project{
		ID:        "p",
		CreatorID: "creator",
		Members: []domain.ProjectMember{
			{ProjectID: "p", UserID: "odd", Role: domain.ProjectRole("OWNER")},
		},
	}
	if got := ResolveAccessLevel(project, &domain.Identity{ID: "odd", Role: domain.GlobalRoleUser}); got != domain.AccessNone {
		t.Fatalf("unknown project role should resolve to none, got %s", got)
	}
	if got := ResolveAccessLevel(project, &domain.Identity{ID: "creator", Role: domain.GlobalRole("ROOT")}); got != domain.AccessNone {
		t.Fatalf("unknown global role should resolve to none, got %s", got)
	}
}
