package events

import (
	"time"

	"github.com/is0060hf/qa-web-system-sub002/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventQuestionStatusChanged EventType = "question_status_changed"
	EventNotificationCreated   EventType = "notification_created"
)

// Event represents a domain event published after a successful commit.
type Event struct {
	ID         string    `json:"id"`
	Type       EventType `json:"type"`
	QuestionID string    `json:"question_id"`
	ActorID    *string   `json:"actor_id,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
	Payload    any       `json:"payload"`
}

// QuestionStatusChangedPayload payload.
type QuestionStatusChangedPayload struct {
	ProjectID string                `json:"project_id"`
	OldStatus domain.QuestionStatus `json:"old_status"`
	NewStatus domain.QuestionStatus `json:"new_status"`
}

// NotificationCreatedPayload payload.
type NotificationCreatedPayload struct {
	NotificationID string                  `json:"notification_id"`
	RecipientID    string                  `json:"recipient_id"`
	Type           domain.NotificationType `json:"type"`
	Message        string                  `json:"message"`
	RelatedID      *string                 `json:"related_id,omitempty"`
	CreatedAt      time.Time               `json:"created_at"`
}
