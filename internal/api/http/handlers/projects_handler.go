package handlers

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/is0060hf/qa-web-system-sub002/internal/api/dto"
	"github.com/is0060hf/qa-web-system-sub002/internal/auth"
	"github.com/is0060hf/qa-web-system-sub002/internal/domain"
	"github.com/is0060hf/qa-web-system-sub002/internal/service"
)

// ProjectsHandler exposes project access probes.
type ProjectsHandler struct {
	access *service.AccessService
}

// NewProjectsHandler constructs handler.
func NewProjectsHandler(access *service.AccessService) *ProjectsHandler {
	return &ProjectsHandler{access: access}
}

// Access handles GET /projects/:id/access.
func (h *ProjectsHandler) Access(c *fiber.Ctx) error {
	return h.probe(c, h.access.CanAccess)
}

// Manage handles GET /projects/:id/manage.
func (h *ProjectsHandler) Manage(c *fiber.Ctx) error {
	return h.probe(c, h.access.CanManage)
}

type accessCheck func(ctx context.Context, projectID string, identity *domain.Identity) (*service.AccessResult, error)

func (h *ProjectsHandler) probe(c *fiber.Ctx, check accessCheck) error {
	identity, err := auth.RequireIdentity(c)
	if err != nil {
		return err
	}
	projectID, err := pathID(c, "project")
	if err != nil {
		return err
	}

	result, err := check(c.UserContext(), projectID, identity)
	if err != nil {
		return err
	}

	resp := dto.ProjectAccessResponse{
		ProjectID: result.Project.ID,
		Allowed:   result.Allowed(),
		Level:     string(result.Level),
	}
	if result.Membership != nil {
		role := string(result.Membership.Role)
		resp.Role = &role
	}
	return c.JSON(fiber.Map{"data": resp})
}
