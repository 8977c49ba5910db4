package notify

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/is0060hf/qa-web-system-sub002/internal/domain"
	"github.com/is0060hf/qa-web-system-sub002/internal/events"
)

type published struct {
	channel string
	payload []byte
}

type fakePublisher struct {
	sent []published
	err  error
}

func (p *fakePublisher) Publish(_ context.Context, channel string, payload []byte) error {
	if p.err != nil {
		return p.err
	}
	p.sent = append(p.sent, published{channel: channel, payload: payload})
	return nil
}

func notificationEvent(recipient string) events.Event {
	related := "q-1"
	return events.Event{
		ID:         "evt-1",
		Type:       events.EventNotificationCreated,
		QuestionID: related,
		Timestamp:  time.Now(),
		Payload: events.NotificationCreatedPayload{
			NotificationID: "n-1",
			RecipientID:    recipient,
			Type:           domain.NotificationQuestionClosed,
			Message:        "closed",
			RelatedID:      &related,
			CreatedAt:      time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		},
	}
}

func TestRedisNotifier_PublishesToRecipientChannel(t *testing.T) {
	publisher := &fakePublisher{}
	dispatcher := events.NewInMemoryDispatcher()
	NewRedisNotifier(publisher, "qa", zap.NewNop()).Register(dispatcher)

	if err := dispatcher.Publish(context.Background(), notificationEvent("u-42")); err != nil {
		t.Fatalf("publish: %v", err)
	}
	if len(publisher.sent) != 1 {
		t.Fatalf("expected one message, got %d", len(publisher.sent))
	}
	if publisher.sent[0].channel != "qa:u-42" {
		t.Fatalf("unexpected channel %s", publisher.sent[0].channel)
	}

	var msg Message
	if err := json.Unmarshal(publisher.sent[0].payload, &msg); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if msg.ID != "n-1" || msg.Type != "QUESTION_CLOSED" || msg.RelatedID == nil || *msg.RelatedID != "q-1" {
		t.Fatalf("unexpected message %+v", msg)
	}
}

func TestRedisNotifier_DefaultPrefix(t *testing.T) {
	n := NewRedisNotifier(&fakePublisher{}, "", zap.NewNop())
	if got := n.Channel("u-1"); got != "notifications:u-1" {
		t.Fatalf("unexpected channel %s", got)
	}
}

func TestRedisNotifier_ReportsFailures(t *testing.T) {
	dispatcher := events.NewInMemoryDispatcher()
	NewRedisNotifier(&fakePublisher{err: errors.New("conn refused")}, "qa", zap.NewNop()).Register(dispatcher)

	if err := dispatcher.Publish(context.Background(), notificationEvent("u-1")); err == nil {
		t.Fatalf("expected publish error to surface")
	}

	bad := notificationEvent("u-1")
	bad.Payload = "not a payload"
	if err := dispatcher.Publish(context.Background(), bad); err == nil {
		t.Fatalf("expected payload type error")
	}
}
