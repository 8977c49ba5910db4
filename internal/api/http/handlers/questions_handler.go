package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/is0060hf/qa-web-system-sub002/internal/api/dto"
	"github.com/is0060hf/qa-web-system-sub002/internal/auth"
	"github.com/is0060hf/qa-web-system-sub002/internal/domain"
	"github.com/is0060hf/qa-web-system-sub002/internal/service"
	apperrors "github.com/is0060hf/qa-web-system-sub002/pkg/util/errorutil"
)

// QuestionsHandler exposes question status changes.
type QuestionsHandler struct {
	questions *service.QuestionService
}

// NewQuestionsHandler constructs handler.
func NewQuestionsHandler(questions *service.QuestionService) *QuestionsHandler {
	return &QuestionsHandler{questions: questions}
}

// ChangeStatus handles PATCH /questions/:id/status.
func (h *QuestionsHandler) ChangeStatus(c *fiber.Ctx) error {
	identity, err := auth.RequireIdentity(c)
	if err != nil {
		return err
	}
	questionID, err := pathID(c, "question")
	if err != nil {
		return err
	}

	var req dto.ChangeQuestionStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := dto.Validate(req); err != nil {
		return err
	}

	question, err := h.questions.ChangeStatus(c.UserContext(), identity, questionID, domain.QuestionStatus(req.Status))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewQuestionResponse(question)})
}
