package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/is0060hf/qa-web-system-sub002/internal/domain"
	"github.com/is0060hf/qa-web-system-sub002/internal/events"
	"github.com/is0060hf/qa-web-system-sub002/internal/repository"
	apperrors "github.com/is0060hf/qa-web-system-sub002/pkg/util/errorutil"
)

// EmitInput describes one notification to create.
type EmitInput struct {
	RecipientID string
	Type        domain.NotificationType
	Message     string
	RelatedID   string
}

// NotificationListFilter describes inbox listing filters.
type NotificationListFilter struct {
	UnreadOnly bool
	Limit      int
	Offset     int
}

// NotificationService creates notifications and serves the recipient inbox.
// It never deduplicates; callers guarantee one call per logical event.
type NotificationService struct {
	store      repository.Store
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// NewNotificationService creates the service.
func NewNotificationService(store repository.Store, dispatcher events.Dispatcher, logger *zap.Logger) *NotificationService {
	return &NotificationService{
		store:      store,
		dispatcher: dispatcher,
		logger:     logger,
	}
}

// Emit writes one notification through tx, which should be the Store of the
// enclosing transaction; nil uses the service's own Store. A failed write is
// a StorageError and must roll the enclosing transaction back.
func (n *NotificationService) Emit(ctx context.Context, tx repository.Store, input EmitInput) (*domain.Notification, error) {
	if tx == nil {
		tx = n.store
	}
	notification := &domain.Notification{
		UserID:  input.RecipientID,
		Type:    input.Type,
		Message: input.Message,
	}
	if input.RelatedID != "" {
		relatedID := input.RelatedID
		notification.RelatedID = &relatedID
	}
	if err := tx.Notifications().Create(ctx, notification); err != nil {
		return nil, apperrors.NewStorageError(err)
	}
	return notification, nil
}

// Announce publishes notification_created events for notifications that
// are already committed. Failures are logged only.
func (n *NotificationService) Announce(ctx context.Context, notifications []domain.Notification) {
	if n.dispatcher == nil {
		return
	}
	for _, notification := range notifications {
		var questionID string
		if notification.RelatedID != nil {
			questionID = *notification.RelatedID
		}
		event := newEvent(events.EventNotificationCreated, questionID, nil, events.NotificationCreatedPayload{
			NotificationID: notification.ID,
			RecipientID:    notification.UserID,
			Type:           notification.Type,
			Message:        notification.Message,
			RelatedID:      notification.RelatedID,
			CreatedAt:      notification.CreatedAt,
		})
		if err := n.dispatcher.Publish(ctx, event); err != nil {
			n.logger.Warn("notification fan-out failed",
				zap.String("notification_id", notification.ID),
				zap.String("recipient_id", notification.UserID),
				zap.Error(err))
		}
	}
}

// List returns the caller's notifications, newest first.
func (n *NotificationService) List(ctx context.Context, identity *domain.Identity, filter NotificationListFilter) ([]domain.Notification, error) {
	if identity == nil {
		return nil, apperrors.NewUnauthenticated("authentication required")
	}
	items, err := n.store.Notifications().List(ctx, repository.NotificationFilter{
		UserID:     identity.ID,
		UnreadOnly: filter.UnreadOnly,
		Limit:      filter.Limit,
		Offset:     filter.Offset,
	})
	if err != nil {
		return nil, apperrors.NewStorageError(err)
	}
	if items == nil {
		items = []domain.Notification{}
	}
	return items, nil
}

// UnreadCount returns how many of the caller's notifications are unread.
func (n *NotificationService) UnreadCount(ctx context.Context, identity *domain.Identity) (int, error) {
	if identity == nil {
		return 0, apperrors.NewUnauthenticated("authentication required")
	}
	count, err := n.store.Notifications().CountUnread(ctx, identity.ID)
	if err != nil {
		return 0, apperrors.NewStorageError(err)
	}
	return count, nil
}

// MarkRead sets the read flag. Only the recipient may do so.
func (n *NotificationService) MarkRead(ctx context.Context, identity *domain.Identity, notificationID string) (*domain.Notification, error) {
	if identity == nil {
		return nil, apperrors.NewUnauthenticated("authentication required")
	}
	notification, err := n.store.Notifications().GetByID(ctx, notificationID)
	if err != nil {
		return nil, apperrors.StorageOrNotFound(err, "notification", map[string]any{"notification_id": notificationID})
	}
	if notification.UserID != identity.ID {
		return nil, apperrors.NewForbidden("notification belongs to another user")
	}
	if notification.IsRead {
		return notification, nil
	}
	if _, err := n.store.Notifications().MarkRead(ctx, notification.ID, identity.ID); err != nil {
		return nil, apperrors.NewStorageError(err)
	}
	notification.IsRead = true
	return notification, nil
}

// MarkAllRead marks every unread notification of the caller as read.
func (n *NotificationService) MarkAllRead(ctx context.Context, identity *domain.Identity) (int64, error) {
	if identity == nil {
		return 0, apperrors.NewUnauthenticated("authentication required")
	}
	changed, err := n.store.Notifications().MarkAllRead(ctx, identity.ID)
	if err != nil {
		return 0, apperrors.NewStorageError(err)
	}
	return changed, nil
}
