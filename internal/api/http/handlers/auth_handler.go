package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/is0060hf/qa-web-system-sub002/internal/api/dto"
	"github.com/is0060hf/qa-web-system-sub002/internal/service"
	apperrors "github.com/is0060hf/qa-web-system-sub002/pkg/util/errorutil"
)

// AuthHandler exposes login.
type AuthHandler struct {
	auth *service.AuthService
}

// NewAuthHandler constructs handler.
func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{auth: authService}
}

// Login handles POST /auth/login.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := dto.Validate(req); err != nil {
		return err
	}

	result, err := h.auth.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"data": fiber.Map{
			"user": dto.UserSummary{
				ID:    result.User.ID,
				Name:  result.User.Name,
				Email: result.User.Email,
				Role:  string(result.User.Role),
			},
			"auth": dto.AuthResponse{Token: result.Token, ExpiresAt: result.ExpiresAt},
		},
	})
}
