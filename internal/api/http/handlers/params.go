package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	apperrors "github.com/is0060hf/qa-web-system-sub002/pkg/util/errorutil"
)

// pathID reads a UUID route parameter. Malformed ids cannot exist, so they
// are reported as NotFound for resource.
func pathID(c *fiber.Ctx, resource string) (string, error) {
	raw := c.Params("id")
	id, err := uuid.Parse(raw)
	if err != nil {
		return "", apperrors.NewNotFound(resource, map[string]any{resource + "_id": raw})
	}
	return id.String(), nil
}
