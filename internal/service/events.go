package service

import (
	"time"

	"github.com/google/uuid"

	"github.com/is0060hf/qa-web-system-sub002/internal/events"
)

func newEvent(eventType events.EventType, questionID string, actorID *string, payload any) events.Event {
	return events.Event{
		ID:         uuid.NewString(),
		Type:       eventType,
		QuestionID: questionID,
		ActorID:    actorID,
		Timestamp:  time.Now(),
		Payload:    payload,
	}
}
