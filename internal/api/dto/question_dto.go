package dto

import (
	"time"

	"github.com/is0060hf/qa-web-system-sub002/internal/domain"
)

// ChangeQuestionStatusRequest payload.
type ChangeQuestionStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=NEW IN_PROGRESS PENDING_APPROVAL CLOSED"`
}

// QuestionResponse is the serialized question.
type QuestionResponse struct {
	ID                 string     `json:"id"`
	ProjectID          string     `json:"project_id"`
	Title              string     `json:"title"`
	CreatorID          string     `json:"creator_id"`
	AssigneeID         string     `json:"assignee_id"`
	Status             string     `json:"status"`
	Priority           string     `json:"priority"`
	Deadline           *time.Time `json:"deadline,omitempty"`
	IsDeadlineNotified bool       `json:"is_deadline_notified"`
	UpdatedAt          time.Time  `json:"updated_at"`
}

// NewQuestionResponse maps a domain question.
func NewQuestionResponse(q *domain.Question) QuestionResponse {
	return QuestionResponse{
		ID:                 q.ID,
		ProjectID:          q.ProjectID,
		Title:              q.Title,
		CreatorID:          q.CreatorID,
		AssigneeID:         q.AssigneeID,
		Status:             string(q.Status),
		Priority:           string(q.Priority),
		Deadline:           q.Deadline,
		IsDeadlineNotified: q.IsDeadlineNotified,
		UpdatedAt:          q.UpdatedAt,
	}
}
