// Package notify fans committed notifications out to Redis pub/sub so that
// connected clients learn about them without polling.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/is0060hf/qa-web-system-sub002/internal/events"
)

// Publisher sends a payload on a channel.
type Publisher interface {
	Publish(ctx context.Context, channel string, payload []byte) error
}

// Message is the JSON published per notification.
type Message struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	Message   string    `json:"message"`
	RelatedID *string   `json:"related_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// RedisNotifier publishes notification_created events to
// "<prefix>:<recipient id>".
type RedisNotifier struct {
	publisher Publisher
	prefix    string
	logger    *zap.Logger
}

// NewRedisNotifier constructs the notifier.
func NewRedisNotifier(publisher Publisher, prefix string, logger *zap.Logger) *RedisNotifier {
	if prefix == "" {
		prefix = "notifications"
	}
	return &RedisNotifier{publisher: publisher, prefix: prefix, logger: logger}
}

// Register subscribes the notifier to the dispatcher.
func (n *RedisNotifier) Register(dispatcher events.Dispatcher) {
	dispatcher.Subscribe(events.EventNotificationCreated, n.handle)
}

// Channel returns the channel for a recipient.
func (n *RedisNotifier) Channel(recipientID string) string {
	return fmt.Sprintf("%s:%s", n.prefix, recipientID)
}

func (n *RedisNotifier) handle(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.NotificationCreatedPayload)
	if !ok {
		return fmt.Errorf("unexpected payload %T for %s", event.Payload, event.Type)
	}
	body, err := json.Marshal(Message{
		ID:        payload.NotificationID,
		Type:      string(payload.Type),
		Message:   payload.Message,
		RelatedID: payload.RelatedID,
		CreatedAt: payload.CreatedAt.UTC(),
	})
	if err != nil {
		return err
	}
	channel := n.Channel(payload.RecipientID)
	if err := n.publisher.Publish(ctx, channel, body); err != nil {
		return fmt.Errorf("publish %s: %w", channel, err)
	}
	n.logger.Debug("notification published", zap.String("channel", channel), zap.String("notification_id", payload.NotificationID))
	return nil
}
