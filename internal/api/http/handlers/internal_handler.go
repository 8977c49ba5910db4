package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/is0060hf/qa-web-system-sub002/internal/api/dto"
	"github.com/is0060hf/qa-web-system-sub002/internal/observability"
	"github.com/is0060hf/qa-web-system-sub002/internal/service"
)

// InternalHandler serves scheduler-facing endpoints guarded by the API key.
type InternalHandler struct {
	deadlines *service.DeadlineService
	metrics   *observability.Metrics
}

// NewInternalHandler constructs handler.
func NewInternalHandler(deadlines *service.DeadlineService, metrics *observability.Metrics) *InternalHandler {
	return &InternalHandler{deadlines: deadlines, metrics: metrics}
}

// DeadlineScan handles POST /internal/deadline-scan.
func (h *InternalHandler) DeadlineScan(c *fiber.Ctx) error {
	result, err := h.deadlines.Scan(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(dto.DeadlineScanResponse{
		ProcessedCount: result.ProcessedCount,
		QuestionIDs:    result.QuestionIDs,
		SkippedCount:   result.SkippedCount,
		FailedCount:    result.FailedCount,
	})
}

// Metrics handles GET /internal/metrics.
func (h *InternalHandler) Metrics(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"data": h.metrics.Snapshot()})
}
